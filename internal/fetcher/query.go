package fetcher

import (
	"strings"
	"time"
)

// DateLayout is the calendar date format used for cutoff dates and user input.
const DateLayout = "2006-01-02"

// Query describes one historical fetch over an inclusive date range.
type Query struct {
	Slugs      []string
	MetricKeys []string
	Start      time.Time
	End        time.Time
	ActiveOnly bool
}

// NewQuery builds a Query from raw comma-separated inputs. The lists are
// split on "," only; entries are neither trimmed nor validated.
func NewQuery(slugs, metrics string, start, end time.Time) Query {
	return Query{
		Slugs:      SplitList(slugs),
		MetricKeys: SplitList(metrics),
		Start:      Day(start),
		End:        Day(end),
		ActiveOnly: true,
	}
}

// SplitList splits a comma-separated input.
func SplitList(s string) []string {
	return strings.Split(s, ",")
}

// TotalDays returns the number of calendar days in [Start, End], or zero
// when End is before Start.
func (q Query) TotalDays() int {
	n := DaysBetween(q.Start, q.End) + 1
	if n < 0 {
		return 0
	}
	return n
}

// Day truncates t to midnight UTC of its calendar date.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the whole number of calendar days from a to b.
func DaysBetween(a, b time.Time) int {
	return int(Day(b).Sub(Day(a)).Hours() / 24)
}

// ParseDay parses a YYYY-MM-DD date.
func ParseDay(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, strings.TrimSpace(s), time.UTC)
}
