// Package modeltest provides model.Element and model.Repository doubles for tests.
package modeltest

import (
	"context"

	"github.com/nao1215/methodstatus/internal/model"
)

// Faulty wraps an Element and fails every relation lookup with Err.
// Identity and attributes are served by the wrapped element.
type Faulty struct {
	model.Element
	Err error
}

// AssignedModels implements model.Element.
func (f Faulty) AssignedModels(model.ModelType) ([]model.Element, error) {
	return nil, f.Err
}

// Objects implements model.Element.
func (f Faulty) Objects(model.ObjectFilter) ([]model.Element, error) {
	return nil, f.Err
}

// Connections implements model.Element.
func (f Faulty) Connections(model.Direction, model.RelationKind) ([]model.Connection, error) {
	return nil, f.Err
}

// Repository is a fixed selection, or a failure when Err is set.
type Repository struct {
	Elements []model.Element
	Err      error
}

// Selected implements model.Repository.
func (r Repository) Selected(context.Context) ([]model.Element, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	return r.Elements, nil
}

// IDs returns the IDs of elements in order.
func IDs(elements []model.Element) []string {
	ids := make([]string, len(elements))
	for i, e := range elements {
		ids[i] = e.ID()
	}
	return ids
}
