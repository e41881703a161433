package aggregate

import (
	"errors"
	"fmt"

	"github.com/nao1215/methodstatus/internal/model"
	"golang.org/x/text/language"
)

// WorkPackageLabel is the classification value marking a function node on a
// value-added chain diagram as a work package.
const WorkPackageLabel = "Work Package"

var (
	// ErrNoRelease is returned when the run has no release tag.
	ErrNoRelease = errors.New("no release tag configured")

	// ErrMissingKind is returned when a required attribute kind is empty.
	ErrMissingKind = errors.New("attribute kind not configured")

	// ErrCollaborator wraps every repository failure that aborts a run.
	ErrCollaborator = errors.New("model repository failure")
)

// Kinds maps the report's attribute roles to host attribute kinds.
type Kinds struct {
	Identifier     model.AttributeKind
	Name           model.AttributeKind
	Status         model.AttributeKind
	ReleasedStatus model.AttributeKind
	Release        model.AttributeKind
	Classification model.AttributeKind
	Maturity       model.AttributeKind
	SixtyDays      model.AttributeKind
}

// RunConfig is fixed for the whole run and read-only.
type RunConfig struct {
	// Release is the tag of the release in scope. Compared exactly.
	Release string

	// Language selects the attribute language and the sort collation.
	Language language.Tag

	// Kinds names the attributes the report reads.
	Kinds Kinds
}

// Validate checks that the run can be executed.
func (c RunConfig) Validate() error {
	if c.Release == "" {
		return ErrNoRelease
	}
	required := []struct {
		name string
		kind model.AttributeKind
	}{
		{"identifier", c.Kinds.Identifier},
		{"name", c.Kinds.Name},
		{"status", c.Kinds.Status},
		{"releasedStatus", c.Kinds.ReleasedStatus},
		{"release", c.Kinds.Release},
		{"classification", c.Kinds.Classification},
		{"maturity", c.Kinds.Maturity},
		{"sixtyDays", c.Kinds.SixtyDays},
	}
	for _, r := range required {
		if r.kind == "" {
			return fmt.Errorf("%w: %s", ErrMissingKind, r.name)
		}
	}
	return nil
}
