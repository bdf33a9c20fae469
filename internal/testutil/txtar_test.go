package testutil

import "testing"

const sampleArchive = `
-- main.doof --
import { helper } from "./lib"
-- lib.doof --
export function helper(): void {}
`

func TestParseFixture(t *testing.T) {
	fx := ParseFixture(sampleArchive)

	if !fx.Has("main.doof") || !fx.Has("lib.doof") {
		t.Fatalf("expected both files, got %v", fx.Files)
	}

	content, err := fx.ReadFile("main.doof")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if content != `import { helper } from "./lib"`+"\n" {
		t.Errorf("unexpected content: %q", content)
	}
}

func TestReadFileMissing(t *testing.T) {
	fx := ParseFixture(sampleArchive)
	if _, err := fx.ReadFile("missing.doof"); err == nil {
		t.Error("expected an error for a file the fixture doesn't define")
	}
}
