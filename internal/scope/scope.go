// Package scope narrows element collections to the release in scope.
package scope

import (
	"github.com/nao1215/methodstatus/internal/attribute"
	"github.com/nao1215/methodstatus/internal/model"
)

// Asset is the classification value of information carriers counted as assets.
const Asset = "Asset"

// Kinds names the attributes the filter reads.
type Kinds struct {
	// Release holds the element's release tag.
	Release model.AttributeKind

	// Classification holds the artifact classification (for example "Asset").
	Classification model.AttributeKind
}

// Filter selects elements by release and classification.
type Filter struct {
	attrs attribute.Accessor
	kinds Kinds
}

// NewFilter creates a Filter.
func NewFilter(attrs attribute.Accessor, kinds Kinds) *Filter {
	return &Filter{attrs: attrs, kinds: kinds}
}

// InRelease returns the elements whose release attribute equals tag exactly,
// in input order. Applying it twice with the same tag changes nothing.
func (f *Filter) InRelease(elements []model.Element, tag string) []model.Element {
	return keep(elements, func(e model.Element) bool {
		return f.attrs.Equals(e, f.kinds.Release, tag)
	})
}

// IsAsset reports whether e is classified as an Asset of release tag.
func (f *Filter) IsAsset(e model.Element, tag string) bool {
	return f.attrs.Equals(e, f.kinds.Classification, Asset) &&
		f.attrs.Equals(e, f.kinds.Release, tag)
}

// Assets returns the elements for which IsAsset holds, in input order.
func (f *Filter) Assets(elements []model.Element, tag string) []model.Element {
	return keep(elements, func(e model.Element) bool {
		return f.IsAsset(e, tag)
	})
}

// CountEqual counts the elements whose attribute kind equals value.
func (f *Filter) CountEqual(elements []model.Element, kind model.AttributeKind, value string) int {
	n := 0
	for _, e := range elements {
		if f.attrs.Equals(e, kind, value) {
			n++
		}
	}
	return n
}

// Dedupe returns elements with duplicates removed by identity, keeping the
// first occurrence of each. Nil entries are dropped.
func Dedupe(elements []model.Element) []model.Element {
	seen := make(map[string]struct{}, len(elements))
	out := make([]model.Element, 0, len(elements))
	for _, e := range elements {
		if e == nil {
			continue
		}
		if _, dup := seen[e.ID()]; dup {
			continue
		}
		seen[e.ID()] = struct{}{}
		out = append(out, e)
	}
	return out
}

func keep(in []model.Element, pred func(model.Element) bool) []model.Element {
	out := make([]model.Element, 0, len(in))
	for _, e := range in {
		if pred(e) {
			out = append(out, e)
		}
	}
	return out
}
