package fetcher

import (
	"context"
	"time"
)

// Fetcher is the core interface for retrieving one day of provider metrics.
// Implementations issue exactly one remote call per Fetch.
type Fetcher interface {
	// Fetch returns the provider records whose metric observations were
	// created strictly after cutoff, limited to one observation per
	// requested metric key.
	Fetch(ctx context.Context, slugs, metricKeys []string, cutoff time.Time) ([]ProviderRecord, error)
}

// FetcherFunc adapts an ordinary function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, slugs, metricKeys []string, cutoff time.Time) ([]ProviderRecord, error)

// Fetch calls f.
func (f FetcherFunc) Fetch(ctx context.Context, slugs, metricKeys []string, cutoff time.Time) ([]ProviderRecord, error) {
	return f(ctx, slugs, metricKeys, cutoff)
}
