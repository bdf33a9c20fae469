package config

import "testing"

func TestValidateDefaultOptions(t *testing.T) {
	opts := DefaultOptions()
	if err := opts.Validate(); err != nil {
		t.Errorf("expected default options to be valid, got: %v", err)
	}
}

func TestValidateRejectsUnknownTarget(t *testing.T) {
	opts := DefaultOptions()
	opts.Target = "rust"
	if err := opts.Validate(); err == nil {
		t.Error("expected error for unknown target")
	}
}

func TestValidateRejectsNoEmitForCpp(t *testing.T) {
	opts := DefaultOptions()
	opts.EmitHeader = false
	opts.EmitSource = false
	if err := opts.Validate(); err == nil {
		t.Error("expected error when neither header nor source is emitted for cpp")
	}
}

func TestValidateAllowsVMWithNoHeaderEmission(t *testing.T) {
	opts := Options{Target: TargetVM, EmitSource: true}
	if err := opts.Validate(); err != nil {
		t.Errorf("expected vm target without header emission to be valid, got: %v", err)
	}
}

func TestValidateRejectsEmptySourceRoot(t *testing.T) {
	opts := DefaultOptions()
	opts.SourceRoots = []string{"src", ""}
	if err := opts.Validate(); err == nil {
		t.Error("expected error for empty source root entry")
	}
}
