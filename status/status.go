// Package status derives a delivery-lifecycle state from a tracking
// record's dates. Classification is stateless: it is recomputed from
// scratch on every call and holds no memory across refreshes.
package status

import (
	"time"

	"github.com/totemtrack/go-track-sheets/dates"
	"github.com/totemtrack/go-track-sheets/models"
)

// State identifies one point in the delivery lifecycle.
type State string

const (
	StateDelivered State = "delivered"
	StateDelayed   State = "delayed"
	StateInTransit State = "in_transit"
	StatePending   State = "pending"
)

// Status is the display descriptor consumed by the presentation layer:
// the lifecycle state plus the label and style hints shown to the user.
type Status struct {
	State      State  `json:"state"`
	Label      string `json:"label"`
	Color      string `json:"color"`
	Background string `json:"background"`
}

var descriptors = map[State]Status{
	StateDelivered: {
		State:      StateDelivered,
		Label:      "Entregue",
		Color:      "text-green-700 dark:text-green-400",
		Background: "bg-green-100 dark:bg-green-900/30",
	},
	StateDelayed: {
		State:      StateDelayed,
		Label:      "Atrasado",
		Color:      "text-red-700 dark:text-red-400",
		Background: "bg-red-100 dark:bg-red-900/30",
	},
	StateInTransit: {
		State:      StateInTransit,
		Label:      "Em Trânsito",
		Color:      "text-blue-700 dark:text-blue-400",
		Background: "bg-blue-100 dark:bg-blue-900/30",
	},
	StatePending: {
		State:      StatePending,
		Label:      "Processando",
		Color:      "text-yellow-700 dark:text-yellow-400",
		Background: "bg-yellow-100 dark:bg-yellow-900/30",
	},
}

// Classify evaluates rec's dates against the current time, most specific
// state first: a valid delivery date wins outright, then an expected date
// already in the past, then a valid shipping date, then pending.
func Classify(rec *models.TrackingRecord) Status {
	return ClassifyAt(rec, time.Now())
}

// ClassifyAt is Classify with an explicit current time.
func ClassifyAt(rec *models.TrackingRecord, now time.Time) Status {
	if rec == nil {
		return descriptors[StatePending]
	}

	if _, ok := dates.Parse(rec.DeliveredOn); ok {
		return descriptors[StateDelivered]
	}

	if expected, ok := dates.Parse(rec.ExpectedDeliveryOn); ok && beforeDay(expected, now) {
		return descriptors[StateDelayed]
	}

	if _, ok := dates.Parse(rec.ShippedOn); ok {
		return descriptors[StateInTransit]
	}

	return descriptors[StatePending]
}

// beforeDay reports whether a's calendar date is strictly before b's,
// ignoring time of day.
func beforeDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	if ay != by {
		return ay < by
	}
	if am != bm {
		return am < bm
	}
	return ad < bd
}
