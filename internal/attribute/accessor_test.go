package attribute

import (
	"testing"

	"github.com/nao1215/methodstatus/internal/model"
	"github.com/nao1215/methodstatus/internal/repository"
	"golang.org/x/text/language"
)

func TestAccessorGet(t *testing.T) {
	t.Parallel()

	g := repository.New()
	live := g.Add("E1", model.TypeFunction).
		Set(model.AttributeName, language.English, "Invoice").
		Set(model.AttributeName, language.German, "Rechnung")
	deleted := g.Add("E2", model.TypeFunction).
		Set(model.AttributeName, language.English, "Stale").
		Delete()

	a := NewAccessor(language.English)

	t.Run("returns value in configured language", func(t *testing.T) {
		t.Parallel()
		if got := a.Get(live, model.AttributeName); got != "Invoice" {
			t.Errorf("expected %q, got %q", "Invoice", got)
		}
		if got := NewAccessor(language.German).Get(live, model.AttributeName); got != "Rechnung" {
			t.Errorf("expected %q, got %q", "Rechnung", got)
		}
	})

	t.Run("missing attribute yields empty string", func(t *testing.T) {
		t.Parallel()
		if got := a.Get(live, model.AttributeIdentifier); got != "" {
			t.Errorf("expected empty string, got %q", got)
		}
	})

	t.Run("missing language yields empty string", func(t *testing.T) {
		t.Parallel()
		if got := NewAccessor(language.French).Get(live, model.AttributeName); got != "" {
			t.Errorf("expected empty string, got %q", got)
		}
	})

	t.Run("invalid element yields empty string for any kind", func(t *testing.T) {
		t.Parallel()
		for _, kind := range []model.AttributeKind{model.AttributeName, model.AttributeIdentifier, "any"} {
			if got := a.Get(deleted, kind); got != "" {
				t.Errorf("%s: expected empty string, got %q", kind, got)
			}
		}
	})

	t.Run("nil element yields empty string", func(t *testing.T) {
		t.Parallel()
		if got := a.Get(nil, model.AttributeName); got != "" {
			t.Errorf("expected empty string, got %q", got)
		}
	})
}

func TestAccessorEquals(t *testing.T) {
	t.Parallel()

	g := repository.New()
	e := g.Add("E1", model.TypeFunction).Set("status", language.English, "released")
	a := NewAccessor(language.English)

	if !a.Equals(e, "status", "released") {
		t.Error("expected exact match")
	}
	if a.Equals(e, "status", "Released") {
		t.Error("expected case-sensitive comparison")
	}
	if a.Equals(e, "status", "released ") {
		t.Error("expected no whitespace normalization")
	}
}
