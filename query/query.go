// Package query matches normalized tracking records against user-supplied
// search keys. Both lookups operate on an immutable snapshot slice and
// never fail on malformed input: a key that matches nothing is a normal
// empty result.
package query

import (
	"strconv"
	"strings"

	"github.com/totemtrack/go-track-sheets/models"
	"github.com/totemtrack/go-track-sheets/normalize"
)

// FindByKey returns the first record whose order number, secondary id, or
// invoice number equals key (compared as trimmed decimal text). The second
// result is false when the key is blank or matches nothing.
//
// Duplicate keys across shipments resolve to the first occurrence in input
// order; later matches are intentionally not surfaced.
func FindByKey(records []*models.TrackingRecord, key string) (*models.TrackingRecord, bool) {
	k := strings.TrimSpace(key)
	if k == "" {
		return nil, false
	}

	for _, rec := range records {
		if rec == nil {
			continue
		}
		if matchesID(rec.OrderID, k) || matchesID(rec.SecondaryID, k) || matchesID(rec.TaxDocumentID, k) {
			return rec, true
		}
	}
	return nil, false
}

// FindAllByDocument returns every record whose customer tax id equals key
// after stripping formatting noise (dots, slashes, dashes). Matching is
// exact, never prefix-based, and preserves input order. A blank or
// digit-free key yields no matches.
func FindAllByDocument(records []*models.TrackingRecord, key string) []*models.TrackingRecord {
	digits := normalize.DigitsOnly(key)
	if digits == "" {
		return nil
	}

	var matches []*models.TrackingRecord
	for _, rec := range records {
		if rec == nil || rec.CustomerTaxID == "" {
			continue
		}
		if rec.CustomerTaxID == digits {
			matches = append(matches, rec)
		}
	}
	return matches
}

// matchesID compares an id field against the key in textual decimal form.
// Zero means "absent" and never matches, so a key of "0" cannot hit every
// record missing that field.
func matchesID(id int, key string) bool {
	return id != 0 && strconv.Itoa(id) == key
}
