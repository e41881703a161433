package pipeline

import (
	"github.com/nao1215/methodstatus/internal/model"
	"github.com/nao1215/methodstatus/internal/repository"
)

// Run carries one report run through the pipeline.
// Steps read what earlier steps stored and add their own results.
type Run struct {
	// Source is the snapshot file path.
	Source string

	// Graph is the loaded model repository.
	Graph *repository.Graph

	// Report is the aggregated status report.
	Report *model.StatusReport

	// ReportID is the history database ID, zero when not saved.
	ReportID int64

	// Unchanged is set when history already holds a report built from
	// the same snapshot content for the same release.
	Unchanged bool

	// Err is the last step error.
	Err error

	// PerformedSteps lists the names of executed steps in order.
	PerformedSteps []string
}

// NewRun creates a Run for a snapshot file.
func NewRun(source string) *Run {
	return &Run{Source: source}
}

// Failed reports whether any step failed.
func (r *Run) Failed() bool {
	return r.Err != nil
}
