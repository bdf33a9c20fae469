package diagnostic

import (
	"strings"
	"testing"
)

func TestDiagnostic_String(t *testing.T) {
	d := Diagnostic{
		Severity: SeverityError,
		Category: KindTypeMismatch,
		File:     "src/user.doof",
		Line:     10,
		Column:   5,
		Message:  "cannot assign 'string' to 'int'",
		Hint:     "convert with int(x)",
	}

	s := d.String()
	if !strings.Contains(s, "src/user.doof:10:5") {
		t.Errorf("expected file:line:col, got %q", s)
	}
	if !strings.Contains(s, "error") {
		t.Errorf("expected 'error', got %q", s)
	}
	if !strings.Contains(s, "[type-mismatch]") {
		t.Errorf("expected category, got %q", s)
	}
	if !strings.Contains(s, "hint:") {
		t.Errorf("expected hint, got %q", s)
	}
}

func TestCollector_AccumulatesWithoutHalting(t *testing.T) {
	c := NewCollector()
	c.Error(KindUnknownIdentifier, "a.doof", 1, 1, "unknown identifier 'x'")
	c.Warn(KindReadonlyViolation, "a.doof", 2, 1, "mutating readonly collection")
	c.Error(KindArityViolation, "a.doof", 3, 1, "missing required parameter 'y'")

	if got := len(c.Diagnostics()); got != 3 {
		t.Fatalf("expected 3 diagnostics, got %d", got)
	}
	if got := c.ErrorCount(); got != 2 {
		t.Errorf("expected 2 errors, got %d", got)
	}
	if !c.HasErrors() {
		t.Error("expected HasErrors() = true")
	}
}

func TestCollector_Append(t *testing.T) {
	a := NewCollector()
	a.Error(KindTypeMismatch, "a.doof", 1, 1, "bad")
	b := NewCollector()
	b.Error(KindUnknownMember, "b.doof", 2, 1, "bad2")

	a.Append(b)
	if got := len(a.Diagnostics()); got != 2 {
		t.Fatalf("expected 2 diagnostics after append, got %d", got)
	}
}

func TestCollector_NilSafe(t *testing.T) {
	var c *Collector
	c.Error(KindInternalError, "", 0, 0, "should not panic")
	if c.HasErrors() {
		t.Error("nil collector should report no errors")
	}
	if len(c.Diagnostics()) != 0 {
		t.Error("nil collector should report no diagnostics")
	}
}
