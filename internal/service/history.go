package service

import (
	"context"
	"fmt"

	"stakingfetcher/internal/coordinator"
	"stakingfetcher/internal/fetcher"
	"stakingfetcher/internal/logger"
	"stakingfetcher/internal/table"
)

// ClientFactory builds a Fetcher bound to one API key.
type ClientFactory func(apiKey string) fetcher.Fetcher

// HistoryService runs a complete historical fetch and flattens the result.
type HistoryService interface {
	// Fetch queries every day of q with apiKey and returns the flat table.
	// An empty apiKey falls back to the service default.
	Fetch(ctx context.Context, apiKey string, q fetcher.Query, sink coordinator.ProgressSink) (*table.Table, error)
}

type historyService struct {
	newClient     ClientFactory
	defaultAPIKey string
}

// NewHistoryService constructs the default HistoryService. defaultAPIKey
// may be empty.
func NewHistoryService(newClient ClientFactory, defaultAPIKey string) HistoryService {
	return &historyService{newClient: newClient, defaultAPIKey: defaultAPIKey}
}

// Fetch implements HistoryService. Every call uses a fresh client and a
// fresh accumulator.
func (s *historyService) Fetch(ctx context.Context, apiKey string, q fetcher.Query, sink coordinator.ProgressSink) (*table.Table, error) {
	if apiKey == "" {
		apiKey = s.defaultAPIKey
	}

	daily, err := coordinator.New(s.newClient(apiKey)).Run(ctx, q, sink)
	if err != nil {
		return nil, err
	}

	t, err := table.Build(daily, q.MetricKeys)
	if err != nil {
		logger.L().Error().Err(err).Msg("table build failed")
		return nil, fmt.Errorf("build table: %w", err)
	}

	logger.L().Info().Int("rows", t.Len()).Int("columns", len(t.Columns)).Msg("table built")
	return t, nil
}
