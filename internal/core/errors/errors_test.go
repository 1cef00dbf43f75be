package errors

import (
	"errors"
	"testing"
)

func TestDomainError(t *testing.T) {
	t.Run("New", func(t *testing.T) {
		err := New(CodeNotFound, "namespace not found")
		if err.Error() != "[NOT_FOUND] namespace not found" {
			t.Errorf("expected [NOT_FOUND] namespace not found, got %s", err.Error())
		}
	})

	t.Run("Newf", func(t *testing.T) {
		err := Newf(CodeValidationError, "bridge.root %q is malformed", "gi..repository")
		expected := `[VALIDATION_ERROR] bridge.root "gi..repository" is malformed`
		if err.Error() != expected {
			t.Errorf("expected %s, got %s", expected, err.Error())
		}
	})

	t.Run("Wrap", func(t *testing.T) {
		original := errors.New("unexpected EOF")
		err := Wrap(original, CodeMalformedMetadata, "decode Gtk.json")
		expected := "[MALFORMED_METADATA] decode Gtk.json: unexpected EOF"
		if err.Error() != expected {
			t.Errorf("expected %s, got %s", expected, err.Error())
		}
		if !errors.Is(err, original) {
			t.Error("expected wrapped error to unwrap to the original")
		}
	})

	t.Run("IsCode", func(t *testing.T) {
		err := New(CodeValidationError, "invalid input")
		if !IsCode(err, CodeValidationError) {
			t.Error("expected IsCode to return true for CodeValidationError")
		}
		if IsCode(err, CodeNotFound) {
			t.Error("expected IsCode to return false for CodeNotFound")
		}
	})

	t.Run("AddContextWrapsForeignErrors", func(t *testing.T) {
		err := AddContext(errors.New("boom"), CtxNamespace, "Gtk")
		if !IsCode(err, CodeInternal) {
			t.Fatalf("expected foreign error to become internal, got %v", err)
		}
		var de *DomainError
		if !errors.As(err, &de) || de.Context[CtxNamespace] != "Gtk" {
			t.Fatalf("expected namespace context, got %v", err)
		}
	})
}
