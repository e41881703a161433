package repository

import (
	"encoding/hex"
	"fmt"
	"os"

	"github.com/nao1215/methodstatus/internal/model"
	"golang.org/x/crypto/sha3"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// Snapshot is the YAML form of a Graph.
type Snapshot struct {
	// Selected lists the IDs of the solutions to report on, in selection order.
	Selected []string `yaml:"selected"`

	// Elements holds every object and diagram of the snapshot.
	Elements []SnapshotElement `yaml:"elements"`

	// Connections holds the typed edges between elements.
	Connections []SnapshotConnection `yaml:"connections,omitempty"`
}

// SnapshotElement is one element of a Snapshot.
type SnapshotElement struct {
	ID   string `yaml:"id"`
	Type string `yaml:"type"`

	// Attributes maps attribute kind to language tag to value.
	Attributes map[string]map[string]string `yaml:"attributes,omitempty"`

	// Assigned lists diagrams documenting this element.
	Assigned []string `yaml:"assigned,omitempty"`

	// Objects lists the objects placed on this element when it is a diagram.
	Objects []string `yaml:"objects,omitempty"`

	// Deleted marks a stale element.
	Deleted bool `yaml:"deleted,omitempty"`
}

// SnapshotConnection is one edge of a Snapshot.
type SnapshotConnection struct {
	Kind   string `yaml:"kind"`
	Source string `yaml:"source"`
	Target string `yaml:"target"`
}

// Load reads and parses a YAML snapshot file.
func Load(path string) (*Graph, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided snapshot path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", path, ErrSnapshotNotFound)
		}
		return nil, err
	}
	return Parse(data, path)
}

// Parse builds a Graph from YAML snapshot data.
// source is recorded on the graph for reporting.
func Parse(data []byte, source string) (*Graph, error) {
	var snap Snapshot
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot: %w", err)
	}

	g, err := Build(&snap)
	if err != nil {
		return nil, err
	}
	g.source = source
	g.digest = Digest(data)
	return g, nil
}

// Build turns a decoded Snapshot into a validated Graph.
func Build(snap *Snapshot) (*Graph, error) {
	g := New()
	for _, se := range snap.Elements {
		if se.ID == "" {
			return nil, ErrEmptyID
		}
		if se.Type == "" {
			return nil, fmt.Errorf("%q: %w", se.ID, ErrEmptyType)
		}
		if _, exists := g.nodes[se.ID]; exists {
			return nil, fmt.Errorf("%q: %w", se.ID, ErrDuplicateElement)
		}

		n := g.Add(se.ID, model.ElementType(se.Type))
		for kind, values := range se.Attributes {
			for lang, value := range values {
				tag, err := language.Parse(lang)
				if err != nil {
					return nil, fmt.Errorf("element %q attribute %s: invalid language %q: %w", se.ID, kind, lang, err)
				}
				n.Set(model.AttributeKind(kind), tag, value)
			}
		}
		n.Assign(se.Assigned...)
		n.Place(se.Objects...)
		if se.Deleted {
			n.Delete()
		}
	}

	for _, sc := range snap.Connections {
		if err := g.Connect(model.RelationKind(sc.Kind), sc.Source, sc.Target); err != nil {
			return nil, err
		}
	}

	g.Select(snap.Selected...)

	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

// Digest returns the hex SHA3-256 fingerprint of snapshot data.
func Digest(data []byte) string {
	sum := sha3.Sum256(data)
	return hex.EncodeToString(sum[:])
}
