package walker

import (
	"errors"
	"fmt"
	"slices"

	"github.com/nao1215/methodstatus/internal/attribute"
	"github.com/nao1215/methodstatus/internal/model"
	"golang.org/x/text/collate"
)

// ErrInvalidDirection is returned for a direction other than Incoming or Outgoing.
var ErrInvalidDirection = errors.New("invalid direction")

// Walker looks up neighbors, assigned diagrams and diagram objects.
type Walker struct {
	attrs attribute.Accessor
}

// New creates a Walker reading attributes through attrs.
func New(attrs attribute.Accessor) *Walker {
	return &Walker{attrs: attrs}
}

// Neighbors returns the elements connected to e by an edge of kind in
// direction d whose type equals targetType.
// For Outgoing the neighbor is the edge target; for Incoming it is the source.
func (w *Walker) Neighbors(e model.Element, d model.Direction, kind model.RelationKind, targetType model.ElementType) ([]model.Element, error) {
	if !usable(e) {
		return nil, nil
	}
	if !d.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDirection, d)
	}

	conns, err := e.Connections(d, kind)
	if err != nil {
		return nil, fmt.Errorf("connections of %s: %w", e.ID(), err)
	}

	neighbors := make([]model.Element, 0, len(conns))
	for _, c := range conns {
		if c.Kind != kind {
			continue
		}
		n := c.Neighbor(d)
		if n == nil || n.Type() != targetType {
			continue
		}
		neighbors = append(neighbors, n)
	}
	return neighbors, nil
}

// FirstNeighbor returns the first element Neighbors would return.
func (w *Walker) FirstNeighbor(e model.Element, d model.Direction, kind model.RelationKind, targetType model.ElementType) (model.Element, bool, error) {
	neighbors, err := w.Neighbors(e, d, kind, targetType)
	if err != nil || len(neighbors) == 0 {
		return nil, false, err
	}
	return neighbors[0], true, nil
}

// NeighborsSorted returns Neighbors ordered by name.
// The ordering is for listings only; counts never depend on it.
func (w *Walker) NeighborsSorted(e model.Element, d model.Direction, kind model.RelationKind, targetType model.ElementType) ([]model.Element, error) {
	neighbors, err := w.Neighbors(e, d, kind, targetType)
	if err != nil {
		return nil, err
	}
	return w.Sort(neighbors, model.AttributeName), nil
}

// AssignedModels returns the diagrams of modelType assigned to e.
func (w *Walker) AssignedModels(e model.Element, modelType model.ModelType) ([]model.Element, error) {
	if !usable(e) {
		return nil, nil
	}
	models, err := e.AssignedModels(modelType)
	if err != nil {
		return nil, fmt.Errorf("models assigned to %s: %w", e.ID(), err)
	}
	return models, nil
}

// ObjectsOfType returns the objects of typ placed on diagram.
// When attr is non-empty only objects whose attr equals value are returned.
func (w *Walker) ObjectsOfType(diagram model.Element, typ model.ElementType, attr model.AttributeKind, value string) ([]model.Element, error) {
	if !usable(diagram) {
		return nil, nil
	}
	objects, err := diagram.Objects(model.ObjectFilter{
		Type:      typ,
		Attribute: attr,
		Value:     value,
		Language:  w.attrs.Language(),
	})
	if err != nil {
		return nil, fmt.Errorf("objects of %s: %w", diagram.ID(), err)
	}
	return objects, nil
}

// Sort returns a copy of elements ordered by the given attribute kinds,
// compared with the collation rules of the run language. Later kinds break
// ties of earlier ones; remaining ties keep their input order.
func (w *Walker) Sort(elements []model.Element, kinds ...model.AttributeKind) []model.Element {
	sorted := slices.Clone(elements)
	if len(kinds) == 0 {
		return sorted
	}

	col := collate.New(w.attrs.Language())
	slices.SortStableFunc(sorted, func(a, b model.Element) int {
		for _, kind := range kinds {
			if c := col.CompareString(w.attrs.Get(a, kind), w.attrs.Get(b, kind)); c != 0 {
				return c
			}
		}
		return 0
	})
	return sorted
}

// usable reports whether e can be queried for relations.
func usable(e model.Element) bool {
	return e != nil && e.IsValid()
}
