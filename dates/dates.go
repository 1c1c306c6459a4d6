// Package dates parses the heterogeneous date representations found in the
// tracking spreadsheets and computes whole-day durations between them.
//
// Cells arrive either as dd/mm/yyyy text or as a bare number, the serial
// day-offset convention spreadsheet exports use for date-typed cells. Both
// forms resolve to a calendar date; anything else is reported as unparsable
// through the ok result, never as a panic or error.
package dates

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Unknown is the sentinel the sheets use for an absent date.
const Unknown = "N/A"

// serialEpoch is the day-zero of spreadsheet serial dates, 30 December 1899.
// Anchored at noon so that day-difference arithmetic cannot slip a day on
// timezone boundaries.
var serialEpoch = time.Date(1899, time.December, 30, 12, 0, 0, 0, time.Local)

// maxSerial is the highest day-offset spreadsheets themselves produce,
// 31 December 9999.
const maxSerial = 2958465

// Parse resolves a spreadsheet cell into a calendar date at local noon.
// The second result is false when the value is empty, the "N/A" sentinel,
// or not a recognizable date.
func Parse(value string) (time.Time, bool) {
	v := strings.TrimSpace(value)
	if v == "" || v == Unknown {
		return time.Time{}, false
	}

	// Bare integers are serial day-offsets from the spreadsheet epoch.
	// Values outside the range spreadsheets emit are not date cells.
	if serial, err := strconv.Atoi(v); err == nil {
		if serial < 0 || serial > maxSerial {
			return time.Time{}, false
		}
		return serialEpoch.AddDate(0, 0, serial), true
	}

	parts := strings.Split(v, "/")
	if len(parts) < 3 {
		return time.Time{}, false
	}
	day, err1 := strconv.Atoi(strings.TrimSpace(parts[0]))
	month, err2 := strconv.Atoi(strings.TrimSpace(parts[1]))
	year, err3 := strconv.Atoi(strings.TrimSpace(parts[2]))
	if err1 != nil || err2 != nil || err3 != nil {
		return time.Time{}, false
	}
	if day < 1 || day > 31 || month < 1 || month > 12 || year < 1 {
		return time.Time{}, false
	}

	parsed := time.Date(year, time.Month(month), day, 12, 0, 0, 0, time.Local)

	// time.Date normalizes out-of-range composites (31/04 becomes 01/05),
	// so require an exact round-trip before accepting the date.
	if parsed.Day() != day || parsed.Month() != time.Month(month) || parsed.Year() != year {
		return time.Time{}, false
	}
	return parsed, true
}

// DaysBetween computes the whole days elapsed from start to end. An empty
// end means "now". The second result is false when either date fails to
// parse or when end precedes start (inverted inputs are treated as not yet
// determinable rather than a negative count).
func DaysBetween(start, end string) (int, bool) {
	return DaysBetweenAt(start, end, time.Now())
}

// DaysBetweenAt is DaysBetween with an explicit current time.
func DaysBetweenAt(start, end string, now time.Time) (int, bool) {
	startDate, ok := Parse(start)
	if !ok {
		return 0, false
	}

	endDate := now
	if strings.TrimSpace(end) != "" {
		if endDate, ok = Parse(end); !ok {
			return 0, false
		}
	}

	// Truncate both sides to their civil date before differencing so the
	// count is a calendar-day delta, independent of the noon anchoring.
	diff := civilDate(endDate).Sub(civilDate(startDate))
	days := int(math.Floor(diff.Hours() / 24))
	if days < 0 {
		return 0, false
	}
	return days, true
}

// civilDate rebuilds t as midnight UTC so that subtracting two of them
// always yields an exact multiple of 24 hours, DST shifts included.
func civilDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
