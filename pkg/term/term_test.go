package term

import (
	"strings"
	"testing"

	"eidos.dev/eidos/pkg/diag"
)

func TestRaiseThrowsReturnsDiagnostic(t *testing.T) {
	s := NewStream("test", "x = 1", Throws)
	s.PushPosition(diag.Ranging{From: 0, To: 1})
	err := s.Raise(IdentifierUndefined, `undefined identifier "x"`)
	var d *Diagnostic
	if !errorsAs(err, &d) {
		t.Fatalf("Raise did not return a *Diagnostic: %v", err)
	}
	if d.Kind != IdentifierUndefined {
		t.Errorf("Kind = %v, want IdentifierUndefined", d.Kind)
	}
	if !strings.HasPrefix(err.Error(), "ERROR (IdentifierUndefined):") {
		t.Errorf("Error() = %q, want ERROR (...) prefix", err.Error())
	}
}

func TestPositionStack(t *testing.T) {
	s := NewStream("test", "abc", Throws)
	s.PushPosition(diag.Ranging{From: 0, To: 1})
	s.PushPosition(diag.Ranging{From: 1, To: 2})
	err := s.Raise(TypeError, "boom")
	d := err.(*Diagnostic)
	if d.Context.From != 1 || d.Context.To != 2 {
		t.Errorf("Raise used %d-%d, want 1-2 (top of stack)", d.Context.From, d.Context.To)
	}
	s.PopPosition()
	err = s.Raise(TypeError, "boom again")
	d = err.(*Diagnostic)
	if d.Context.From != 0 || d.Context.To != 1 {
		t.Errorf("Raise used %d-%d after pop, want 0-1", d.Context.From, d.Context.To)
	}
}

func TestRaiseWithEmptyStackUsesUnknown(t *testing.T) {
	s := NewStream("test", "abc", Throws)
	err := s.Raise(InternalInvariant, "boom")
	d := err.(*Diagnostic)
	if d.Context.From != diag.Unknown.From {
		t.Errorf("expected unknown position, got %d-%d", d.Context.From, d.Context.To)
	}
}

func errorsAs(err error, target **Diagnostic) bool {
	d, ok := err.(*Diagnostic)
	if ok {
		*target = d
	}
	return ok
}
