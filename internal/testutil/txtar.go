// Package testutil provides fixture helpers for compiler tests: a
// txtar-backed multi-file source tree standing in for project-mode's
// readFile callback, the same "many named files in one source blob" shape
// the teacher's OverlayVFS served for tsgo programs.
package testutil

import (
	"fmt"

	"golang.org/x/tools/txtar"
)

// Fixture is a named set of in-memory files parsed from a txtar archive,
// each section header a file path and its body the file's content.
type Fixture struct {
	Files map[string]string
}

// ParseFixture parses data as a txtar archive into a Fixture.
func ParseFixture(data string) Fixture {
	arc := txtar.Parse([]byte(data))
	files := make(map[string]string, len(arc.Files))
	for _, f := range arc.Files {
		files[f.Name] = string(f.Data)
	}
	return Fixture{Files: files}
}

// ReadFile implements the func(string) (string, error) shape
// compile.CompileProject expects, returning an error for any path the
// fixture didn't define.
func (f Fixture) ReadFile(name string) (string, error) {
	content, ok := f.Files[name]
	if !ok {
		return "", fmt.Errorf("fixture has no file %q", name)
	}
	return content, nil
}

// Has reports whether the fixture defines name.
func (f Fixture) Has(name string) bool {
	_, ok := f.Files[name]
	return ok
}
