// Package config defines the compiler's host-facing options (spec §6):
// target backend, header/source emission toggles, namespace override, and
// project source roots. It keeps the plain-struct-plus-json-tag loading
// idiom the rest of the pack uses for its own config files, trimmed down
// to what a compiler invocation actually needs.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Target names a backend (spec §4.5-§4.7).
type Target string

const (
	TargetCPP Target = "cpp"
	TargetJS  Target = "js"
	TargetTS  Target = "ts"
	TargetVM  Target = "vm"
)

// Options configures one compile invocation.
type Options struct {
	Target Target `json:"target"`

	EmitHeader bool `json:"emitHeader"`
	EmitSource bool `json:"emitSource"`

	// Namespace overrides the filename-derived default (C++ namespace /
	// module name); empty means derive it.
	Namespace string `json:"namespace,omitempty"`

	// AllowTopLevelStatements permits var declarations and expression
	// statements at file scope, for REPL-style files.
	AllowTopLevelStatements bool `json:"allowTopLevelStatements,omitempty"`

	// SourceRoots is the project mode search path used to derive module
	// names and resolve relative imports.
	SourceRoots []string `json:"sourceRoots,omitempty"`
}

// DefaultOptions returns the conventional single-file C++ invocation: both
// header and source emitted, no namespace override, no top-level
// statements.
func DefaultOptions() Options {
	return Options{
		Target:     TargetCPP,
		EmitHeader: true,
		EmitSource: true,
	}
}

// Discover searches dir for a doofc config file.
func Discover(dir string) string {
	p := filepath.Join(dir, "doofc.config.json")
	if _, err := os.Stat(p); err == nil {
		return p
	}
	return ""
}

// Load reads and validates a JSON options file, starting from
// DefaultOptions so an omitted field keeps its default.
func Load(path string) (*Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %q: %w", path, err)
	}
	opts := DefaultOptions()
	if err := json.Unmarshal(data, &opts); err != nil {
		return nil, fmt.Errorf("failed to parse config file %q: %w", path, err)
	}
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config in %q: %w", path, err)
	}
	return &opts, nil
}
