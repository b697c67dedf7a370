package table

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"stakingfetcher/internal/fetcher"
	"stakingfetcher/internal/testutil"
)

var day0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func num(s string) fetcher.Value {
	return fetcher.NumberValue(decimal.RequireFromString(s))
}

func obs(label, value, createdAt string) fetcher.Observation {
	return fetcher.Observation{Label: label, Value: num(value), CreatedAt: createdAt}
}

// threeDays returns the two-asset, two-metric, three-day fixture.
func threeDays() [][]fetcher.ProviderRecord {
	var daily [][]fetcher.ProviderRecord
	for i := 0; i < 3; i++ {
		daily = append(daily, testutil.DailyProviders([]string{"A", "B"}, []string{"m1", "m2"}, day0.AddDate(0, 0, i)))
	}
	return daily
}

func TestBuild_TwoAssetsTwoMetricsThreeDays(t *testing.T) {
	tbl, err := Build(threeDays(), []string{"m1", "m2"})
	if err != nil {
		t.Fatalf("Build() returned unexpected error: %v", err)
	}

	if tbl.Len() != 6 {
		t.Errorf("Len() = %d, want 6", tbl.Len())
	}
	want := []string{ColumnAssetName, ColumnDate, "m1", "m2"}
	if !reflect.DeepEqual(tbl.Columns, want) {
		t.Errorf("Columns = %q, want %q", tbl.Columns, want)
	}

	// Day-major, then provider order.
	wantOrder := []string{"A", "B", "A", "B", "A", "B"}
	for i, name := range wantOrder {
		if tbl.Rows[i].AssetName != name {
			t.Errorf("row %d asset = %q, want %q", i, tbl.Rows[i].AssetName, name)
		}
	}
}

func TestBuild_MissingMetricOneDay(t *testing.T) {
	daily := threeDays()
	a := &daily[1][0]
	a.Metrics = a.Metrics[:1]

	tbl, err := Build(daily, []string{"m1", "m2"})
	if err != nil {
		t.Fatalf("Build() returned unexpected error: %v", err)
	}

	// Row 2 is (A, day 1).
	if _, ok := tbl.Rows[2].Value("m2"); ok {
		t.Error("(A, D+1) has an m2 cell, want it absent")
	}
	if got := tbl.Cell(2, "m2"); got != "" {
		t.Errorf("Cell(m2) = %q, want empty", got)
	}
	if got := tbl.Cell(2, "m1"); got != "A:m1:2024-01-02" {
		t.Errorf("Cell(m1) = %q, want %q", got, "A:m1:2024-01-02")
	}
	if len(tbl.Columns) != 4 {
		t.Errorf("len(Columns) = %d, want 4", len(tbl.Columns))
	}
}

func TestBuild_EmptyObservations(t *testing.T) {
	daily := threeDays()
	daily[2][1].Metrics = nil

	tbl, err := Build(daily, []string{"m1", "m2"})
	if tbl != nil {
		t.Errorf("Build() table = %v, want nil on error", tbl)
	}
	if !errors.Is(err, ErrNoObservations) {
		t.Fatalf("Build() error = %v, want ErrNoObservations", err)
	}

	var empty *EmptyObservationsError
	if !errors.As(err, &empty) {
		t.Fatalf("Build() error = %T, want *EmptyObservationsError", err)
	}
	if empty.Day != 2 || empty.Provider != "B" {
		t.Errorf("error location = day %d provider %q, want day 2 provider B", empty.Day, empty.Provider)
	}
	if want := `day 3, provider "B": provider has no metric observations`; err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestBuild_DateFromFirstObservation(t *testing.T) {
	daily := [][]fetcher.ProviderRecord{{
		{Name: "Allnodes", Metrics: []fetcher.Observation{
			obs("Staking Wallets", "10", "2024-01-02T03:00:00Z"),
			obs("AUM", "20", "2024-01-02T01:00:00Z"),
		}},
	}}

	tbl, err := Build(daily, nil)
	if err != nil {
		t.Fatalf("Build() returned unexpected error: %v", err)
	}
	if got := tbl.Rows[0].Date; got != "2024-01-02T03:00:00Z" {
		t.Errorf("Date = %q, want the first observation's createdAt", got)
	}
}

func TestBuild_LaterLabelOverwrites(t *testing.T) {
	daily := [][]fetcher.ProviderRecord{{
		{Name: "A", Metrics: []fetcher.Observation{
			obs("m1", "1", "t1"),
			obs("m1", "2", "t2"),
		}},
	}}

	tbl, err := Build(daily, []string{"m1"})
	if err != nil {
		t.Fatalf("Build() returned unexpected error: %v", err)
	}
	if got := tbl.Cell(0, "m1"); got != "2" {
		t.Errorf("Cell(m1) = %q, want %q", got, "2")
	}
	if len(tbl.Columns) != 3 {
		t.Errorf("Columns = %q, want a single m1 column", tbl.Columns)
	}
}

func TestBuild_ColumnCompleteness(t *testing.T) {
	daily := [][]fetcher.ProviderRecord{
		{{Name: "A", Metrics: []fetcher.Observation{obs("m1", "1", "t")}}},
		{{Name: "A", Metrics: []fetcher.Observation{obs("m3", "1", "t")}}, {Name: "B", Metrics: []fetcher.Observation{obs("m2", "1", "t")}}},
	}

	tbl, err := Build(daily, nil)
	if err != nil {
		t.Fatalf("Build() returned unexpected error: %v", err)
	}
	want := []string{ColumnAssetName, ColumnDate, "m1", "m3", "m2"}
	if !reflect.DeepEqual(tbl.Columns, want) {
		t.Errorf("Columns = %q, want %q", tbl.Columns, want)
	}
	if !reflect.DeepEqual(tbl.Labels(), want[2:]) {
		t.Errorf("Labels() = %q, want %q", tbl.Labels(), want[2:])
	}
}

func TestBuild_RowCountMatchesRecords(t *testing.T) {
	daily := [][]fetcher.ProviderRecord{
		testutil.DailyProviders([]string{"A"}, []string{"m"}, day0),
		testutil.DailyProviders([]string{"A", "B", "C"}, []string{"m"}, day0),
		{},
		testutil.DailyProviders([]string{"A", "A"}, []string{"m"}, day0),
	}

	tbl, err := Build(daily, []string{"m"})
	if err != nil {
		t.Fatalf("Build() returned unexpected error: %v", err)
	}
	if tbl.Len() != 6 {
		t.Errorf("Len() = %d, want 6 (no dedup)", tbl.Len())
	}
}

func TestBuild_Empty(t *testing.T) {
	tbl, err := Build(nil, []string{"m1"})
	if err != nil {
		t.Fatalf("Build() returned unexpected error: %v", err)
	}
	if tbl.Len() != 0 {
		t.Errorf("Len() = %d, want 0", tbl.Len())
	}
	if got := tbl.Records(); len(got) != 1 {
		t.Errorf("Records() = %q, want only the header", got)
	}
}

func TestBuild_Idempotent(t *testing.T) {
	daily := threeDays()
	first, err := Build(daily, []string{"m1", "m2"})
	if err != nil {
		t.Fatalf("Build() returned unexpected error: %v", err)
	}
	second, err := Build(daily, []string{"m1", "m2"})
	if err != nil {
		t.Fatalf("Build() returned unexpected error: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("Build() is not idempotent")
	}
}

func TestTable_Records(t *testing.T) {
	daily := [][]fetcher.ProviderRecord{{
		{Name: "Allnodes", Metrics: []fetcher.Observation{
			obs("Staking Wallets", "1520", "2024-01-02"),
			{Label: "AUM", Value: fetcher.NullValue(), CreatedAt: "2024-01-02"},
		}},
		{Name: "P2P", Metrics: []fetcher.Observation{
			{Label: "AUM", Value: fetcher.StringValue("n/a"), CreatedAt: "2024-01-03"},
		}},
	}}

	tbl, err := Build(daily, nil)
	if err != nil {
		t.Fatalf("Build() returned unexpected error: %v", err)
	}

	want := [][]string{
		{"Asset Name", "Date", "Staking Wallets", "AUM"},
		{"Allnodes", "2024-01-02", "1520", ""},
		{"P2P", "2024-01-03", "", "n/a"},
	}
	if got := tbl.Records(); !reflect.DeepEqual(got, want) {
		t.Errorf("Records() = %q, want %q", got, want)
	}
}

func TestTable_Objects(t *testing.T) {
	daily := [][]fetcher.ProviderRecord{{
		{Name: "A", Metrics: []fetcher.Observation{obs("m1", "1.5", "d")}},
	}}

	tbl, err := Build(daily, nil)
	if err != nil {
		t.Fatalf("Build() returned unexpected error: %v", err)
	}
	objs := tbl.Objects()
	if len(objs) != 1 {
		t.Fatalf("len(Objects()) = %d, want 1", len(objs))
	}
	if objs[0][ColumnAssetName] != "A" || objs[0][ColumnDate] != "d" {
		t.Errorf("unexpected fixed columns: %v", objs[0])
	}
	v, ok := objs[0]["m1"].(fetcher.Value)
	if !ok || !v.Equal(num("1.5")) {
		t.Errorf("m1 = %v, want 1.5", objs[0]["m1"])
	}
}
