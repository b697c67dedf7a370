package fetcher

import "time"

// Result is the outcome of fetching a single day of the requested range.
// It is yielded by the range driver once per calendar day, in order.
type Result struct {
	// Day is the cutoff date passed to the Fetcher.
	Day time.Time

	// Index is the zero-based position of Day within the range.
	Index int

	// Total is the number of days in the range.
	Total int

	// Providers is the raw per-provider data returned for Day.
	Providers []ProviderRecord
}

// Done reports how many days have been processed once this result is consumed.
func (r Result) Done() int {
	return r.Index + 1
}
