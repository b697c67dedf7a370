package coordinator

import (
	"context"
	"fmt"
	"iter"
	"time"

	"stakingfetcher/internal/fetcher"
	"stakingfetcher/internal/logger"
)

// Progress is the state of a range fetch after a day has been consumed.
type Progress struct {
	Done  int
	Total int
}

// Fraction returns Done/Total in [0, 1].
func (p Progress) Fraction() float64 {
	if p.Total <= 0 {
		return 0
	}
	return float64(p.Done) / float64(p.Total)
}

// ProgressSink receives a report after every fetched day.
type ProgressSink interface {
	Report(p Progress)
}

// ProgressFunc adapts a function to ProgressSink.
type ProgressFunc func(p Progress)

// Report calls f.
func (f ProgressFunc) Report(p Progress) { f(p) }

// Coordinator drives a Fetcher over a date range, one day at a time.
type Coordinator struct {
	fetcher fetcher.Fetcher
}

// New creates a new Coordinator around f
func New(f fetcher.Fetcher) *Coordinator {
	return &Coordinator{
		fetcher: f,
	}
}

// Days yields every calendar day of [start, end] with its zero-based index.
// Nothing is yielded when end is before start.
func Days(start, end time.Time) iter.Seq2[int, time.Time] {
	return func(yield func(int, time.Time) bool) {
		first, last := fetcher.Day(start), fetcher.Day(end)
		for i, d := 0, first; !d.After(last); i, d = i+1, d.AddDate(0, 0, 1) {
			if !yield(i, d) {
				return
			}
		}
	}
}

// Stream fetches q one day at a time and yields one Result per day.
// Calls are strictly sequential. Iteration stops after the first error,
// which is yielded with a zero Result.
func (c *Coordinator) Stream(ctx context.Context, q fetcher.Query) iter.Seq2[fetcher.Result, error] {
	return func(yield func(fetcher.Result, error) bool) {
		total := q.TotalDays()
		for i, day := range Days(q.Start, q.End) {
			if err := ctx.Err(); err != nil {
				yield(fetcher.Result{}, fmt.Errorf("fetch cancelled before %s: %w", day.Format(fetcher.DateLayout), err))
				return
			}

			providers, err := c.fetcher.Fetch(ctx, q.Slugs, q.MetricKeys, day)
			if err != nil {
				yield(fetcher.Result{}, fmt.Errorf("fetch %s (day %d of %d): %w", day.Format(fetcher.DateLayout), i+1, total, err))
				return
			}

			if !yield(fetcher.Result{Day: day, Index: i, Total: total, Providers: providers}, nil) {
				return
			}
		}
	}
}

// Run fetches every day of q and returns the per-day results in
// chronological order. sink, if non-nil, is told about each completed day.
// On error nothing accumulated so far is returned.
func (c *Coordinator) Run(ctx context.Context, q fetcher.Query, sink ProgressSink) ([][]fetcher.ProviderRecord, error) {
	total := q.TotalDays()
	results := make([][]fetcher.ProviderRecord, 0, total)

	logger.L().Info().
		Str("start", q.Start.Format(fetcher.DateLayout)).
		Str("end", q.End.Format(fetcher.DateLayout)).
		Int("days", total).
		Int("slugs", len(q.Slugs)).
		Int("metrics", len(q.MetricKeys)).
		Msg("range fetch start")

	started := time.Now()
	for res, err := range c.Stream(ctx, q) {
		if err != nil {
			logger.L().Error().Err(err).Str("type", string(fetcher.TypeOf(err))).Msg("range fetch failed")
			return nil, err
		}

		results = append(results, res.Providers)

		p := Progress{Done: res.Done(), Total: res.Total}
		logger.L().Debug().
			Str("day", res.Day.Format(fetcher.DateLayout)).
			Int("providers", len(res.Providers)).
			Float64("progress", p.Fraction()).
			Msg("day fetched")
		if sink != nil {
			sink.Report(p)
		}
	}

	logger.L().Info().Int("days", len(results)).Dur("elapsed", time.Since(started)).Msg("range fetch done")
	return results, nil
}
