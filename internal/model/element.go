package model

import (
	"context"

	"golang.org/x/text/language"
)

// ElementType is the host repository's object type key (for example OT_FUNC).
type ElementType string

// Object types used by the status report.
const (
	// TypeSolution is the top-level business capability being reported on.
	TypeSolution ElementType = "OT_SOLUTION"

	// TypeFunction covers work packages and the function nodes of process diagrams.
	TypeFunction ElementType = "OT_FUNC"

	// TypeInformationCarrier covers artifacts such as assets and documents.
	TypeInformationCarrier ElementType = "OT_INFO_CARR"
)

// ModelType is the host repository's diagram type key.
// Diagrams are elements too; their Type() returns ElementType(ModelType).
type ModelType string

// Diagram types used by the status report.
const (
	// ModelValueAddedChain is a value-added chain diagram listing work packages.
	ModelValueAddedChain ModelType = "MT_VAL_ADD_CHN_DGM"

	// ModelEPC is an extended event-driven process chain.
	ModelEPC ModelType = "MT_EEPC"
)

// RelationKind is the host repository's connection type key.
type RelationKind string

// RelationProvidesInputFor connects an information carrier to the function it feeds.
const RelationProvidesInputFor RelationKind = "CT_PROV_INP_FOR"

// Direction selects which end of a connection is the neighbor.
type Direction string

const (
	// Incoming connections end at the element; the neighbor is the source.
	Incoming Direction = "in"

	// Outgoing connections start at the element; the neighbor is the target.
	Outgoing Direction = "out"
)

// Valid reports whether d is one of the known directions.
func (d Direction) Valid() bool {
	return d == Incoming || d == Outgoing
}

// AttributeKind is the host repository's attribute type key.
// Built-in attributes use AT_* keys; user-defined attributes use GUIDs.
type AttributeKind string

// Built-in attribute kinds.
const (
	AttributeIdentifier AttributeKind = "AT_ID"
	AttributeName       AttributeKind = "AT_NAME"
)

// Connection is a directed, typed edge between two elements.
type Connection struct {
	Kind   RelationKind
	Source Element
	Target Element
}

// Neighbor returns the end of the connection opposite to the element the
// connection was queried from in direction d.
func (c Connection) Neighbor(d Direction) Element {
	if d == Outgoing {
		return c.Target
	}
	return c.Source
}

// ObjectFilter restricts the objects listed on a diagram.
//
// Type is required. When Attribute is set, only objects whose Attribute value
// in the queried language equals Value are returned.
type ObjectFilter struct {
	Type      ElementType
	Attribute AttributeKind
	Value     string
	Language  language.Tag
}

// Element is a handle onto an object in the host model repository.
//
// Implementations must answer IsValid and Attribute without failing.
// The relation methods return an error only when the repository itself fails;
// an element without matching relations returns an empty slice.
type Element interface {
	// ID is the element's identity. Two handles with the same ID are the same element.
	ID() string

	// Type is the object or diagram type key.
	Type() ElementType

	// IsValid is false for stale or deleted elements.
	IsValid() bool

	// Attribute returns the value of kind in lang and whether it is maintained.
	Attribute(kind AttributeKind, lang language.Tag) (string, bool)

	// AssignedModels returns diagrams of modelType documenting this element.
	AssignedModels(modelType ModelType) ([]Element, error)

	// Objects returns the objects placed on this diagram that match filter.
	Objects(filter ObjectFilter) ([]Element, error)

	// Connections returns the edges of kind in direction d.
	Connections(d Direction, kind RelationKind) ([]Connection, error)
}

// Repository is the host collaborator a report run reads from.
type Repository interface {
	// Selected returns the solutions chosen for the report.
	Selected(ctx context.Context) ([]Element, error)
}
