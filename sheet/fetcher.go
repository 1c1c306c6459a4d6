// Package sheet fetches and decodes the spreadsheet exports backing the
// tracking datasets.
package sheet

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gocolly/colly/v2"
	"github.com/totemtrack/go-track-sheets/config"
	"github.com/totemtrack/go-track-sheets/models"
)

// Dataset selects which sheet an operation targets.
type Dataset string

const (
	// DatasetOrders is the primary tracking sheet, keyed by order,
	// secondary, and invoice numbers.
	DatasetOrders Dataset = "orders"
	// DatasetDocuments is the partner-channel sheet, keyed by customer
	// tax id.
	DatasetDocuments Dataset = "documents"
)

// Fetcher retrieves raw rows from the configured sheet exports, with
// retry/backoff on transport failures.
type Fetcher struct {
	cfg       *config.Config
	collector *colly.Collector
	transport http.RoundTripper
	Metrics   *Metrics
}

// NewFetcher builds a fetcher configured from cfg.
func NewFetcher(cfg *config.Config) (*Fetcher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("fetcher config: %w", err)
	}

	collector := colly.NewCollector(
		colly.UserAgent(cfg.UserAgent),
		colly.AllowURLRevisit(),
	)
	collector.SetRequestTimeout(cfg.Timeout)
	collector.IgnoreRobotsTxt = true

	f := &Fetcher{
		cfg:       cfg,
		collector: collector,
		Metrics:   NewMetrics(),
	}
	f.WithTransport(&http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   cfg.Timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	})
	return f, nil
}

// WithTransport replaces the HTTP transport. Exposed so tests can inject a
// mock round tripper.
func (f *Fetcher) WithTransport(rt http.RoundTripper) {
	f.transport = rt
	f.collector.WithTransport(rt)
}

// URL resolves the export URL for a dataset.
func (f *Fetcher) URL(dataset Dataset) (string, error) {
	switch dataset {
	case DatasetOrders:
		if f.cfg.OrdersSheetURL == "" {
			return "", fmt.Errorf("orders sheet URL not configured")
		}
		return f.cfg.OrdersSheetURL, nil
	case DatasetDocuments:
		if f.cfg.DocumentSheetURL == "" {
			return "", fmt.Errorf("document sheet URL not configured")
		}
		return ExportURL(f.cfg.DocumentSheetURL, f.cfg.DocumentSheetGID), nil
	default:
		return "", fmt.Errorf("unknown dataset %q", dataset)
	}
}

// Fetch retrieves and decodes one dataset's export. Transport failures and
// empty payloads are retried up to the configured limit with exponential
// backoff; the last classified error is returned when all attempts fail.
func (f *Fetcher) Fetch(ctx context.Context, dataset Dataset) ([]models.RawRow, error) {
	url, err := f.URL(dataset)
	if err != nil {
		return nil, err
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var lastErr error
	for attempt := 0; attempt <= f.cfg.MaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if attempt > 0 {
			f.Metrics.IncRetries()
			if err := sleepCtx(ctx, f.backoff(attempt)); err != nil {
				return nil, err
			}
		}

		f.Metrics.IncFetch(dataset, "started")
		start := time.Now()
		body, err := f.get(url)
		f.Metrics.ObserveFetchDuration(time.Since(start))

		if err == nil {
			var rows []models.RawRow
			rows, err = DecodeRows(body)
			if err == nil {
				f.Metrics.IncFetch(dataset, "succeeded")
				f.Metrics.AddRows(dataset, len(rows))
				return rows, nil
			}
		}

		lastErr = err
		category := errorTypeLabel(err)
		f.Metrics.IncError(category)
		slog.Error("sheet fetch failed",
			slog.String("dataset", string(dataset)),
			slog.String("category", category),
			slog.Int("attempt", attempt+1),
			slog.Any("error", err),
		)
	}
	return nil, lastErr
}

// get performs a single GET against the export URL on a fresh collector
// clone, so per-call handlers never accumulate on the shared instance.
func (f *Fetcher) get(url string) ([]byte, error) {
	c := f.collector.Clone()
	if f.transport != nil {
		c.WithTransport(f.transport)
	}

	var (
		body   []byte
		status int
		reqErr error
	)
	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("Cache-Control", "no-cache")
	})
	c.OnResponse(func(r *colly.Response) {
		status = r.StatusCode
		body = r.Body
	})
	c.OnError(func(r *colly.Response, err error) {
		if r != nil {
			status = r.StatusCode
		}
		reqErr = err
	})

	if err := c.Visit(url); err != nil && reqErr == nil {
		reqErr = err
	}
	c.Wait()

	if reqErr != nil || status >= http.StatusBadRequest {
		return nil, classifyError(reqErr, status)
	}
	return body, nil
}

func (f *Fetcher) backoff(attempt int) time.Duration {
	if attempt <= 0 {
		attempt = 1
	}

	base := f.cfg.RetryBackoff
	if base <= 0 {
		base = 100 * time.Millisecond
	}

	delay := base * time.Duration(1<<(attempt-1))
	if max := f.cfg.RetryBackoffMax; max > 0 && delay > max {
		delay = max
	}
	return delay
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func classifyError(err error, statusCode int) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout{Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrTimeout{Err: err}
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return ErrConnection{Err: err}
	}

	if statusCode >= http.StatusBadRequest {
		wrapped := err
		if wrapped == nil {
			wrapped = fmt.Errorf("http status %d", statusCode)
		}
		switch statusCode {
		case http.StatusForbidden:
			return ErrForbidden{Err: wrapped}
		case http.StatusNotFound:
			return ErrNotFound{Err: wrapped}
		case http.StatusTooManyRequests:
			return ErrRateLimited{Err: wrapped}
		}
		return wrapped
	}

	if err == nil {
		return fmt.Errorf("request failed")
	}
	return err
}
