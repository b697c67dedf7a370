package testutil

import (
	"context"
	"sync"
	"time"

	"stakingfetcher/internal/fetcher"
)

// Call records the arguments of one MockFetcher.Fetch invocation.
type Call struct {
	Slugs      []string
	MetricKeys []string
	Cutoff     time.Time
}

// MockFetcher is a mock implementation of the Fetcher interface for testing
type MockFetcher struct {
	FetchFunc func(ctx context.Context, slugs, metricKeys []string, cutoff time.Time) ([]fetcher.ProviderRecord, error)

	mu    sync.Mutex
	calls []Call
}

// Fetch implements the Fetcher interface
func (m *MockFetcher) Fetch(ctx context.Context, slugs, metricKeys []string, cutoff time.Time) ([]fetcher.ProviderRecord, error) {
	m.mu.Lock()
	m.calls = append(m.calls, Call{Slugs: slugs, MetricKeys: metricKeys, Cutoff: cutoff})
	m.mu.Unlock()

	if m.FetchFunc != nil {
		return m.FetchFunc(ctx, slugs, metricKeys, cutoff)
	}
	return nil, nil
}

// Calls returns the recorded invocations in order.
func (m *MockFetcher) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Call(nil), m.calls...)
}

// NewMockFetcher returns a mock that answers every day with one record per
// slug, each holding one observation per metric key. Labels equal the keys
// and createdAt is the day after cutoff at midnight UTC.
func NewMockFetcher() *MockFetcher {
	return &MockFetcher{
		FetchFunc: func(_ context.Context, slugs, metricKeys []string, cutoff time.Time) ([]fetcher.ProviderRecord, error) {
			return DailyProviders(slugs, metricKeys, cutoff), nil
		},
	}
}

// NewFailingMockFetcher returns a mock that fails on the n-th call (1-based).
func NewFailingMockFetcher(n int, err error) *MockFetcher {
	m := &MockFetcher{}
	m.FetchFunc = func(_ context.Context, slugs, metricKeys []string, cutoff time.Time) ([]fetcher.ProviderRecord, error) {
		if len(m.Calls()) == n {
			return nil, err
		}
		return DailyProviders(slugs, metricKeys, cutoff), nil
	}
	return m
}

// DailyProviders builds the canned response used by NewMockFetcher.
func DailyProviders(slugs, metricKeys []string, cutoff time.Time) []fetcher.ProviderRecord {
	createdAt := cutoff.AddDate(0, 0, 1).Format(time.RFC3339)
	providers := make([]fetcher.ProviderRecord, 0, len(slugs))
	for _, slug := range slugs {
		rec := fetcher.ProviderRecord{Name: slug}
		for _, key := range metricKeys {
			rec.Metrics = append(rec.Metrics, fetcher.Observation{
				Label:     key,
				Value:     fetcher.StringValue(slug + ":" + key + ":" + cutoff.Format(fetcher.DateLayout)),
				CreatedAt: createdAt,
			})
		}
		providers = append(providers, rec)
	}
	return providers
}
