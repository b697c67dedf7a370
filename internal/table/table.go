package table

import (
	"errors"
	"fmt"

	"stakingfetcher/internal/fetcher"
)

// Fixed leading columns of every table.
const (
	ColumnAssetName = "Asset Name"
	ColumnDate      = "Date"
)

// ErrNoObservations is returned when a provider has no metric observations
// for a day, so the row has no date to take.
var ErrNoObservations = errors.New("provider has no metric observations")

// EmptyObservationsError locates the record that triggered ErrNoObservations.
type EmptyObservationsError struct {
	Day      int // zero-based index into the daily results
	Provider string
}

func (e *EmptyObservationsError) Error() string {
	return fmt.Sprintf("day %d, provider %q: %v", e.Day+1, e.Provider, ErrNoObservations)
}

func (e *EmptyObservationsError) Unwrap() error {
	return ErrNoObservations
}

// Row is one provider on one day.
type Row struct {
	AssetName string
	Date      string
	Values    map[string]fetcher.Value
}

// Value returns the cell for label and whether it was present that day.
func (r Row) Value(label string) (fetcher.Value, bool) {
	v, ok := r.Values[label]
	return v, ok
}

// Table is the flattened result of a range fetch.
type Table struct {
	Columns []string
	Rows    []Row
}

// Build flattens per-day provider records into one row per provider per
// day, in input order. The date of a row is the createdAt of the provider's
// first observation that day; every observation becomes a cell keyed by
// its label, a repeated label overwriting the earlier one. Metric columns
// follow the two fixed columns in the order labels are first seen.
//
// metricKeys only sizes the per-row maps; columns come from the labels
// actually returned.
func Build(daily [][]fetcher.ProviderRecord, metricKeys []string) (*Table, error) {
	t := &Table{Columns: []string{ColumnAssetName, ColumnDate}}
	seen := map[string]bool{ColumnAssetName: true, ColumnDate: true}

	for d, providers := range daily {
		for _, p := range providers {
			if len(p.Metrics) == 0 {
				return nil, &EmptyObservationsError{Day: d, Provider: p.Name}
			}

			row := Row{
				AssetName: p.Name,
				Date:      p.Metrics[0].CreatedAt,
				Values:    make(map[string]fetcher.Value, len(metricKeys)),
			}
			for _, obs := range p.Metrics {
				row.Values[obs.Label] = obs.Value
				if !seen[obs.Label] {
					seen[obs.Label] = true
					t.Columns = append(t.Columns, obs.Label)
				}
			}
			t.Rows = append(t.Rows, row)
		}
	}

	return t, nil
}

// Labels returns the metric columns, without the fixed leading ones.
func (t *Table) Labels() []string {
	return t.Columns[2:]
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// Cell returns the formatted cell at row i, column col. Absent and null
// values format as "".
func (t *Table) Cell(i int, col string) string {
	r := t.Rows[i]
	switch col {
	case ColumnAssetName:
		return r.AssetName
	case ColumnDate:
		return r.Date
	}
	if v, ok := r.Values[col]; ok {
		return v.String()
	}
	return ""
}

// Records returns the header followed by one formatted record per row.
func (t *Table) Records() [][]string {
	out := make([][]string, 0, len(t.Rows)+1)
	out = append(out, append([]string(nil), t.Columns...))
	for i := range t.Rows {
		rec := make([]string, len(t.Columns))
		for j, col := range t.Columns {
			rec[j] = t.Cell(i, col)
		}
		out = append(out, rec)
	}
	return out
}

// Objects returns each row as a column→value map for JSON output. Absent
// cells are omitted; fixed columns are strings.
func (t *Table) Objects() []map[string]any {
	out := make([]map[string]any, 0, len(t.Rows))
	for _, r := range t.Rows {
		obj := make(map[string]any, len(r.Values)+2)
		obj[ColumnAssetName] = r.AssetName
		obj[ColumnDate] = r.Date
		for label, v := range r.Values {
			obj[label] = v
		}
		out = append(out, obj)
	}
	return out
}
