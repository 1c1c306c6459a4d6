// Package store holds the most recent normalized snapshot of each dataset
// and exposes the query boundary consumed by the presentation layer.
//
// Every refresh is a full replace: a query observes either the prior
// complete snapshot or the next one, never a partial mix. Nothing is
// persisted; the in-memory snapshot is the whole state.
package store

import (
	"errors"
	"sync"
	"time"

	"github.com/totemtrack/go-track-sheets/models"
	"github.com/totemtrack/go-track-sheets/query"
	"github.com/totemtrack/go-track-sheets/sheet"
)

// ErrSourceUnavailable reports that no snapshot exists because the data
// source could not be reached. Distinct from a lookup that finds nothing,
// which is a normal empty result.
var ErrSourceUnavailable = errors.New("store: data source unavailable")

// Snapshot is one complete, immutable normalization result.
type Snapshot struct {
	Dataset     sheet.Dataset
	Records     []*models.TrackingRecord
	FetchedAt   time.Time
	RowsRead    int
	RowsDropped int
}

// Store is a concurrency-safe holder of the latest snapshot per dataset.
type Store struct {
	metrics *sheet.Metrics

	mu        sync.RWMutex
	snapshots map[sheet.Dataset]*Snapshot
	lastErr   map[sheet.Dataset]error
}

// NewStore builds an empty store. metrics may be nil.
func NewStore(metrics *sheet.Metrics) *Store {
	return &Store{
		metrics:   metrics,
		snapshots: make(map[sheet.Dataset]*Snapshot),
		lastErr:   make(map[sheet.Dataset]error),
	}
}

// Replace installs snap as the complete state of its dataset and clears
// any recorded refresh error.
func (s *Store) Replace(snap *Snapshot) {
	if snap == nil {
		return
	}
	s.mu.Lock()
	s.snapshots[snap.Dataset] = snap
	delete(s.lastErr, snap.Dataset)
	s.mu.Unlock()
}

// SetError records a refresh failure. The previous snapshot, if any, stays
// queryable.
func (s *Store) SetError(dataset sheet.Dataset, err error) {
	if err == nil {
		return
	}
	s.mu.Lock()
	s.lastErr[dataset] = err
	s.mu.Unlock()
}

// Snapshot returns the latest snapshot of a dataset. When no snapshot has
// ever been installed, the last refresh error (or ErrSourceUnavailable) is
// returned instead.
func (s *Store) Snapshot(dataset sheet.Dataset) (*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if snap, ok := s.snapshots[dataset]; ok {
		return snap, nil
	}
	if err, ok := s.lastErr[dataset]; ok {
		return nil, err
	}
	return nil, ErrSourceUnavailable
}

// LastError returns the most recent refresh failure for a dataset, nil
// when the last refresh succeeded.
func (s *Store) LastError(dataset sheet.Dataset) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr[dataset]
}

// SearchByOrderKey looks up a single record by order number, secondary id,
// or invoice number. A nil record with a nil error means no match, a
// normal outcome.
func (s *Store) SearchByOrderKey(key string) (*models.TrackingRecord, error) {
	snap, err := s.Snapshot(sheet.DatasetOrders)
	if err != nil {
		s.metrics.IncQuery("order", "unavailable")
		return nil, err
	}

	rec, found := query.FindByKey(snap.Records, key)
	if !found {
		s.metrics.IncQuery("order", "miss")
		return nil, nil
	}
	s.metrics.IncQuery("order", "hit")
	return rec, nil
}

// SearchByDocument returns every record matching a customer tax id. An
// empty slice with a nil error means the document has no orders.
func (s *Store) SearchByDocument(key string) ([]*models.TrackingRecord, error) {
	snap, err := s.Snapshot(sheet.DatasetDocuments)
	if err != nil {
		s.metrics.IncQuery("document", "unavailable")
		return nil, err
	}

	matches := query.FindAllByDocument(snap.Records, key)
	if len(matches) == 0 {
		s.metrics.IncQuery("document", "miss")
		return nil, nil
	}
	s.metrics.IncQuery("document", "hit")
	return matches, nil
}
