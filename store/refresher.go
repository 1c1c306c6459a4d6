package store

import (
	"context"
	"log/slog"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/totemtrack/go-track-sheets/config"
	"github.com/totemtrack/go-track-sheets/models"
	"github.com/totemtrack/go-track-sheets/normalize"
	"github.com/totemtrack/go-track-sheets/sheet"
)

// Refresher periodically rebuilds the store's snapshots from the sheet
// exports. Each cycle is fetch, normalize, full replace; a failed cycle
// records the error and leaves the previous snapshot in place.
type Refresher struct {
	store    *Store
	fetcher  *sheet.Fetcher
	datasets []sheet.Dataset
	interval time.Duration

	// fresh marks datasets refreshed within the staleness window, so
	// on-demand refreshes don't hammer the export endpoint.
	fresh *expirable.LRU[sheet.Dataset, time.Time]
}

// NewRefresher builds a refresher for the given datasets.
func NewRefresher(st *Store, fetcher *sheet.Fetcher, cfg *config.Config, datasets ...sheet.Dataset) *Refresher {
	return &Refresher{
		store:    st,
		fetcher:  fetcher,
		datasets: datasets,
		interval: cfg.RefreshInterval,
		fresh:    expirable.NewLRU[sheet.Dataset, time.Time](len(datasets)+1, nil, cfg.StaleTTL),
	}
}

// Run refreshes immediately and then on every interval tick until ctx is
// canceled. Intended to run on its own goroutine.
func (r *Refresher) Run(ctx context.Context) {
	r.RefreshAll(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			slog.Info("refresher stopping", slog.Any("cause", ctx.Err()))
			return
		case <-ticker.C:
			r.RefreshAll(ctx)
		}
	}
}

// RefreshAll refreshes every configured dataset once.
func (r *Refresher) RefreshAll(ctx context.Context) {
	for _, dataset := range r.datasets {
		if ctx.Err() != nil {
			return
		}
		r.refresh(ctx, dataset)
	}
}

// EnsureFresh refreshes a dataset only when its last refresh is outside
// the staleness window. Used by one-shot callers.
func (r *Refresher) EnsureFresh(ctx context.Context, dataset sheet.Dataset) error {
	if _, ok := r.fresh.Get(dataset); ok {
		return nil
	}
	return r.refresh(ctx, dataset)
}

func (r *Refresher) refresh(ctx context.Context, dataset sheet.Dataset) error {
	rows, err := r.fetcher.Fetch(ctx, dataset)
	if err != nil {
		r.store.SetError(dataset, err)
		slog.Error("refresh failed",
			slog.String("dataset", string(dataset)),
			slog.Any("error", err),
		)
		return err
	}

	records := normalizeRows(dataset, rows)
	dropped := len(rows) - len(records)
	r.fetcher.Metrics.AddDropped(dataset, "unusable", dropped)

	r.store.Replace(&Snapshot{
		Dataset:     dataset,
		Records:     records,
		FetchedAt:   time.Now(),
		RowsRead:    len(rows),
		RowsDropped: dropped,
	})
	r.fresh.Add(dataset, time.Now())

	slog.Info("snapshot replaced",
		slog.String("dataset", string(dataset)),
		slog.Int("rows", len(rows)),
		slog.Int("records", len(records)),
		slog.Int("dropped", dropped),
	)
	return nil
}

func normalizeRows(dataset sheet.Dataset, rows []models.RawRow) []*models.TrackingRecord {
	if dataset == sheet.DatasetDocuments {
		return normalize.Documents(rows)
	}
	return normalize.Orders(rows)
}
