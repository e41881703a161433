package repository

import (
	"context"
	"fmt"

	"github.com/nao1215/methodstatus/internal/model"
	"golang.org/x/text/language"
)

// Graph is an in-memory model repository.
// It is not safe for concurrent mutation; reads after building are safe.
type Graph struct {
	nodes    map[string]*Node
	order    []string
	selected []string
	source   string
	digest   string
}

// New creates an empty Graph.
func New() *Graph {
	return &Graph{nodes: make(map[string]*Node)}
}

// Source names where the graph was loaded from, empty for built graphs.
func (g *Graph) Source() string { return g.source }

// Digest is the snapshot fingerprint, empty for built graphs.
func (g *Graph) Digest() string { return g.digest }

// Len returns the number of elements in the graph.
func (g *Graph) Len() int { return len(g.order) }

// Add inserts a new element and returns it for further setup.
// Adding an ID twice replaces nothing and returns the existing node.
func (g *Graph) Add(id string, typ model.ElementType) *Node {
	if n, ok := g.nodes[id]; ok {
		return n
	}
	n := &Node{
		graph: g,
		id:    id,
		typ:   typ,
		attrs: make(map[model.AttributeKind]map[string]string),
	}
	g.nodes[id] = n
	g.order = append(g.order, id)
	return n
}

// Node returns the element with the given ID.
func (g *Graph) Node(id string) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Connect adds a directed edge of kind from source to target.
func (g *Graph) Connect(kind model.RelationKind, source, target string) error {
	src, ok := g.nodes[source]
	if !ok {
		return fmt.Errorf("connection source %q: %w", source, ErrUnknownElement)
	}
	dst, ok := g.nodes[target]
	if !ok {
		return fmt.Errorf("connection target %q: %w", target, ErrUnknownElement)
	}
	e := edge{kind: kind, source: source, target: target}
	src.out = append(src.out, e)
	dst.in = append(dst.in, e)
	return nil
}

// Select appends elements to the selection returned by Selected.
func (g *Graph) Select(ids ...string) {
	g.selected = append(g.selected, ids...)
}

// Selected returns the selected elements in selection order.
// Deleted elements are returned too; they read as invalid.
func (g *Graph) Selected(_ context.Context) ([]model.Element, error) {
	return g.resolve(g.selected, "selection")
}

// Validate checks that every reference in the graph names a known element.
func (g *Graph) Validate() error {
	if _, err := g.resolve(g.selected, "selection"); err != nil {
		return err
	}
	for _, id := range g.order {
		n := g.nodes[id]
		if _, err := g.resolve(n.assigned, "assignment of "+id); err != nil {
			return err
		}
		if _, err := g.resolve(n.objects, "object of "+id); err != nil {
			return err
		}
	}
	return nil
}

// resolve maps IDs to elements, failing on the first unknown ID.
func (g *Graph) resolve(ids []string, what string) ([]model.Element, error) {
	out := make([]model.Element, 0, len(ids))
	for _, id := range ids {
		n, ok := g.nodes[id]
		if !ok {
			return nil, fmt.Errorf("%s %q: %w", what, id, ErrUnknownElement)
		}
		out = append(out, n)
	}
	return out, nil
}

// edge is a stored connection; ends are resolved on lookup.
type edge struct {
	kind   model.RelationKind
	source string
	target string
}

// Node is an element of a Graph. It implements model.Element.
type Node struct {
	graph    *Graph
	id       string
	typ      model.ElementType
	deleted  bool
	attrs    map[model.AttributeKind]map[string]string
	assigned []string
	objects  []string
	in       []edge
	out      []edge
}

var _ model.Element = (*Node)(nil)

// Set stores an attribute value for lang.
func (n *Node) Set(kind model.AttributeKind, lang language.Tag, value string) *Node {
	values, ok := n.attrs[kind]
	if !ok {
		values = make(map[string]string)
		n.attrs[kind] = values
	}
	values[lang.String()] = value
	return n
}

// Assign records diagrams documenting this element.
func (n *Node) Assign(models ...string) *Node {
	n.assigned = append(n.assigned, models...)
	return n
}

// Place records objects shown on this diagram.
func (n *Node) Place(objects ...string) *Node {
	n.objects = append(n.objects, objects...)
	return n
}

// Delete marks the element as deleted.
func (n *Node) Delete() *Node {
	n.deleted = true
	return n
}

// ID implements model.Element.
func (n *Node) ID() string { return n.id }

// Type implements model.Element.
func (n *Node) Type() model.ElementType { return n.typ }

// IsValid implements model.Element.
func (n *Node) IsValid() bool { return !n.deleted }

// Attribute implements model.Element.
func (n *Node) Attribute(kind model.AttributeKind, lang language.Tag) (string, bool) {
	if n.deleted {
		return "", false
	}
	v, ok := n.attrs[kind][lang.String()]
	return v, ok
}

// AssignedModels implements model.Element.
func (n *Node) AssignedModels(modelType model.ModelType) ([]model.Element, error) {
	if n.deleted {
		return nil, nil
	}
	models, err := n.graph.resolve(n.assigned, "assignment of "+n.id)
	if err != nil {
		return nil, err
	}
	return keep(models, func(e model.Element) bool {
		return e.Type() == model.ElementType(modelType)
	}), nil
}

// Objects implements model.Element.
func (n *Node) Objects(filter model.ObjectFilter) ([]model.Element, error) {
	if n.deleted {
		return nil, nil
	}
	objects, err := n.graph.resolve(n.objects, "object of "+n.id)
	if err != nil {
		return nil, err
	}
	return keep(objects, func(e model.Element) bool {
		if e.Type() != filter.Type {
			return false
		}
		if filter.Attribute == "" {
			return true
		}
		v, _ := e.Attribute(filter.Attribute, filter.Language)
		return v == filter.Value
	}), nil
}

// Connections implements model.Element.
func (n *Node) Connections(d model.Direction, kind model.RelationKind) ([]model.Connection, error) {
	if n.deleted {
		return nil, nil
	}
	edges := n.out
	if d == model.Incoming {
		edges = n.in
	}
	conns := make([]model.Connection, 0, len(edges))
	for _, e := range edges {
		if e.kind != kind {
			continue
		}
		src, ok := n.graph.nodes[e.source]
		if !ok {
			return nil, fmt.Errorf("connection source %q: %w", e.source, ErrUnknownElement)
		}
		dst, ok := n.graph.nodes[e.target]
		if !ok {
			return nil, fmt.Errorf("connection target %q: %w", e.target, ErrUnknownElement)
		}
		if src.deleted || dst.deleted {
			continue
		}
		conns = append(conns, model.Connection{Kind: e.kind, Source: src, Target: dst})
	}
	return conns, nil
}

// keep returns the valid elements of in that satisfy pred.
func keep(in []model.Element, pred func(model.Element) bool) []model.Element {
	out := make([]model.Element, 0, len(in))
	for _, e := range in {
		if e.IsValid() && pred(e) {
			out = append(out, e)
		}
	}
	return out
}
