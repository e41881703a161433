// Package attribute reads element attributes in the run's language.
package attribute

import (
	"github.com/nao1215/methodstatus/internal/model"
	"golang.org/x/text/language"
)

// Accessor reads attribute values in one language.
type Accessor struct {
	lang language.Tag
}

// NewAccessor creates an Accessor for lang.
func NewAccessor(lang language.Tag) Accessor {
	return Accessor{lang: lang}
}

// Language returns the language attributes are read in.
func (a Accessor) Language() language.Tag { return a.lang }

// Get returns the value of kind on e.
// A nil or invalid element, or an attribute that is not maintained, yields "".
func (a Accessor) Get(e model.Element, kind model.AttributeKind) string {
	if e == nil || !e.IsValid() {
		return ""
	}
	v, _ := e.Attribute(kind, a.lang)
	return v
}

// Equals reports whether kind on e is exactly want.
func (a Accessor) Equals(e model.Element, kind model.AttributeKind, want string) bool {
	return a.Get(e, kind) == want
}
