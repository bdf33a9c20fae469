package jsgen

import (
	"strings"
	"testing"

	"github.com/andrew24601/doofc/internal/ast"
	"github.com/andrew24601/doofc/internal/context"
)

func TestGenerateImportsAreSortedDeterministically(t *testing.T) {
	fc := context.NewFileContext("main.doof")
	fc.Imports["Zebra"] = &context.ImportedSymbol{LocalName: "Zebra", ModulePath: "animals/zebra.doof", Exported: "Zebra"}
	fc.Imports["Apple"] = &context.ImportedSymbol{LocalName: "Apple", ModulePath: "fruit/apple.doof", Exported: "Apple"}

	prog := &ast.Node{Kind: ast.KindProgram}
	out := Generate(fc, prog, false)

	appleIdx := strings.Index(out, `import { Apple }`)
	zebraIdx := strings.Index(out, `import { Zebra }`)
	if appleIdx == -1 || zebraIdx == -1 {
		t.Fatalf("expected both imports present, got:\n%s", out)
	}
	if appleIdx > zebraIdx {
		t.Errorf("expected Apple import before Zebra import for deterministic output, got:\n%s", out)
	}
}

func TestGenerateUsesTypeScriptExtension(t *testing.T) {
	fc := context.NewFileContext("main.doof")
	fc.Imports["Widget"] = &context.ImportedSymbol{LocalName: "Widget", ModulePath: "widgets/widget.doof", Exported: "Widget"}
	prog := &ast.Node{Kind: ast.KindProgram}

	out := Generate(fc, prog, true)
	if !strings.Contains(out, `from "./widget.ts"`) {
		t.Errorf("expected .ts extension for typescript=true, got:\n%s", out)
	}
}

func TestGenerateAliasedImport(t *testing.T) {
	fc := context.NewFileContext("main.doof")
	fc.Imports["W"] = &context.ImportedSymbol{LocalName: "W", ModulePath: "widgets/widget.doof", Exported: "Widget"}
	prog := &ast.Node{Kind: ast.KindProgram}

	out := Generate(fc, prog, false)
	if !strings.Contains(out, "import { Widget as W }") {
		t.Errorf("expected aliased import specifier, got:\n%s", out)
	}
}

func TestGenerateExportsAreSortedDeterministically(t *testing.T) {
	fc := context.NewFileContext("main.doof")
	fc.Exports["zFn"] = true
	fc.Exports["aFn"] = true
	prog := &ast.Node{Kind: ast.KindProgram}

	out := Generate(fc, prog, false)
	aIdx := strings.Index(out, "export { aFn }")
	zIdx := strings.Index(out, "export { zFn }")
	if aIdx == -1 || zIdx == -1 {
		t.Fatalf("expected both exports present, got:\n%s", out)
	}
	if aIdx > zIdx {
		t.Errorf("expected aFn export before zFn for deterministic output, got:\n%s", out)
	}
}

func TestGenerateTopLevelStatementsGatedByOption(t *testing.T) {
	stmt := &ast.Node{Kind: ast.KindExprStmt, Expr: &ast.Node{Kind: ast.KindCall, Callee: &ast.Node{Kind: ast.KindIdentifier, IdentName: "println"}, Args: []ast.Arg{{Value: &ast.Node{Kind: ast.KindLiteral, LiteralValue: "hi"}}}}}
	prog := &ast.Node{Kind: ast.KindProgram, Decls: []*ast.Node{stmt}}

	disallowed := context.NewFileContext("main.doof")
	out := Generate(disallowed, prog, false)
	if strings.Contains(out, "println") {
		t.Errorf("top-level statement should be suppressed when AllowTopLevelStatements is false, got:\n%s", out)
	}

	allowed := context.NewFileContext("main.doof")
	allowed.AllowTopLevelStatements = true
	out = Generate(allowed, prog, false)
	if !strings.Contains(out, "hi") {
		t.Errorf("top-level statement should render when AllowTopLevelStatements is true, got:\n%s", out)
	}
}
