package model

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func sampleReport() *StatusReport {
	return &StatusReport{
		Release: "R1",
		Status: []StatusRow{
			{Identifier: "S1", WorkPackages: 2, WorkPackagesReleased: 1, Assets: 3, AssetsReleased: 2, Status: "open", Release: "R1", InScope: true},
			{Identifier: "S2", Release: "R0"},
		},
		Maturity: []MaturityRow{
			{Identifier: "S1", Maturity: "high", SixtyDays: "yes"},
			{Identifier: "S2"},
		},
	}
}

// TestIdentifier tests the identifier fallback chain.
func TestIdentifier(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		candidates []string
		want       string
	}{
		{name: "first non-empty wins", candidates: []string{"ID-1", "Name", "x1"}, want: "ID-1"},
		{name: "falls back to name", candidates: []string{"", "Name", "x1"}, want: "Name"},
		{name: "falls back to element id", candidates: []string{"", "", "x1"}, want: "x1"},
		{name: "all empty", candidates: []string{"", ""}, want: ""},
		{name: "no candidates", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Identifier(tt.candidates...); got != tt.want {
				t.Errorf("Identifier() = %q, want %q", got, tt.want)
			}
		})
	}
}

// TestSummary tests the column totals.
func TestSummary(t *testing.T) {
	t.Parallel()

	want := Summary{Solutions: 2, InScope: 1, WorkPackages: 2, WorkPackagesReleased: 1, Assets: 3, AssetsReleased: 2}
	if diff := cmp.Diff(want, sampleReport().Summary()); diff != "" {
		t.Errorf("Summary() mismatch (-want +got):\n%s", diff)
	}

	if got := (&StatusReport{}).Summary(); got != (Summary{}) {
		t.Errorf("expected zero summary for empty report, got %+v", got)
	}
}

// TestTables tests rendering of both tables.
func TestTables(t *testing.T) {
	t.Parallel()

	labels := DefaultLabels()
	labels.Identifier = "ID"
	tables := sampleReport().Tables(labels)
	if len(tables) != 2 {
		t.Fatalf("expected 2 tables, got %d", len(tables))
	}

	want := []Table{
		{
			Title:  "Status",
			Header: []string{"ID", "Work packages", "Work packages released", "Assets", "Assets released", "Status", "Release"},
			Rows: [][]string{
				{"S1", "2", "1", "3", "2", "open", "R1"},
				{"S2", "0", "0", "0", "0", "", "R0"},
			},
		},
		{
			Title:  "Maturity",
			Header: []string{"ID", "Maturity", "60 days"},
			Rows: [][]string{
				{"S1", "high", "yes"},
				{"S2", "", ""},
			},
		},
	}
	if diff := cmp.Diff(want, tables); diff != "" {
		t.Errorf("Tables() mismatch (-want +got):\n%s", diff)
	}
}

// TestLabelsMerge tests that empty labels take the fallback.
func TestLabelsMerge(t *testing.T) {
	t.Parallel()

	t.Run("empty labels become defaults", func(t *testing.T) {
		t.Parallel()
		if diff := cmp.Diff(DefaultLabels(), Labels{}.Merge(DefaultLabels())); diff != "" {
			t.Errorf("mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("set labels are kept", func(t *testing.T) {
		t.Parallel()
		got := Labels{Maturity: "Reife", SixtyDays: "60 Tage"}.Merge(DefaultLabels())
		if got.Maturity != "Reife" || got.SixtyDays != "60 Tage" {
			t.Errorf("custom labels lost: %+v", got)
		}
		if got.Assets != "Assets" {
			t.Errorf("expected default Assets label, got %q", got.Assets)
		}
	})
}
