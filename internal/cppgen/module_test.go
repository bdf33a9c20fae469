package cppgen

import (
	"strings"
	"testing"

	"github.com/andrew24601/doofc/internal/ast"
	"github.com/andrew24601/doofc/internal/context"
	"github.com/andrew24601/doofc/internal/emit"
)

func TestGuardNameUppercasesAndSanitizes(t *testing.T) {
	if got := guardName("widgets/my-widget.h"); got != "MY_WIDGET_H_H" {
		t.Errorf("guardName = %q, want MY_WIDGET_H_H", got)
	}
}

func TestIncludeForImportSwapsExtensionToHeader(t *testing.T) {
	if got := includeForImport("shapes/circle.doof"); got != "circle.h" {
		t.Errorf("includeForImport = %q, want circle.h", got)
	}
}

func TestGenerateHeaderIncludesAreSortedDeterministically(t *testing.T) {
	g := context.NewGlobalContext()
	fc := context.NewFileContext("main.doof")
	fc.Imports["Zebra"] = &context.ImportedSymbol{LocalName: "Zebra", ModulePath: "animals/zebra.doof", Exported: "Zebra"}
	fc.Imports["Apple"] = &context.ImportedSymbol{LocalName: "Apple", ModulePath: "fruit/apple.doof", Exported: "Apple"}
	g.Files["main.doof"] = fc
	prog := &ast.Node{Kind: ast.KindProgram}

	out := Generate(g, fc, prog, "app", "main.h", true, false)

	appleIdx := strings.Index(out.Header, `#include "apple.h"`)
	zebraIdx := strings.Index(out.Header, `#include "zebra.h"`)
	if appleIdx == -1 || zebraIdx == -1 {
		t.Fatalf("expected both includes present, got:\n%s", out.Header)
	}
	if appleIdx > zebraIdx {
		t.Errorf("expected apple.h before zebra.h for deterministic output, got:\n%s", out.Header)
	}
}

func TestGenerateHeaderWrapsDeclarationsInNamespace(t *testing.T) {
	g := context.NewGlobalContext()
	fc := context.NewFileContext("main.doof")
	g.Files["main.doof"] = fc
	prog := &ast.Node{Kind: ast.KindProgram, Decls: []*ast.Node{
		{Kind: ast.KindClassDecl, Name: "Widget"},
	}}

	out := Generate(g, fc, prog, "shapes", "main.h", true, false)
	if !strings.Contains(out.Header, "namespace shapes") {
		t.Errorf("expected namespace wrapper, got:\n%s", out.Header)
	}
	if !strings.Contains(out.Header, "class Widget;") {
		t.Errorf("expected forward declaration of Widget, got:\n%s", out.Header)
	}
}

func TestGenerateOnlyEmitsRequestedOutputs(t *testing.T) {
	g := context.NewGlobalContext()
	fc := context.NewFileContext("main.doof")
	g.Files["main.doof"] = fc
	prog := &ast.Node{Kind: ast.KindProgram}

	headerOnly := Generate(g, fc, prog, "app", "main.h", true, false)
	if headerOnly.Header == "" || headerOnly.Source != "" {
		t.Errorf("expected header only, got header=%q source=%q", headerOnly.Header, headerOnly.Source)
	}

	sourceOnly := Generate(g, fc, prog, "app", "main.h", false, true)
	if sourceOnly.Source == "" || sourceOnly.Header != "" {
		t.Errorf("expected source only, got header=%q source=%q", sourceOnly.Header, sourceOnly.Source)
	}
}

func TestGenerateSourceIncludesOwnHeaderOnlyWhenHeaderEmitted(t *testing.T) {
	g := context.NewGlobalContext()
	fc := context.NewFileContext("main.doof")
	g.Files["main.doof"] = fc
	prog := &ast.Node{Kind: ast.KindProgram}

	withHeader := Generate(g, fc, prog, "app", "main.h", true, true)
	if !strings.Contains(withHeader.Source, `#include "main.h"`) {
		t.Errorf("expected source to include its own header, got:\n%s", withHeader.Source)
	}

	withoutHeader := Generate(g, fc, prog, "app", "main.h", false, true)
	if strings.Contains(withoutHeader.Source, `#include "main.h"`) {
		t.Errorf("expected no self-include when header isn't emitted, got:\n%s", withoutHeader.Source)
	}
}

func TestUsesRuntimeDetectsBuiltinCalls(t *testing.T) {
	withCall := &ast.Node{Kind: ast.KindProgram, Decls: []*ast.Node{
		{Kind: ast.KindFunctionDecl, Name: "main", Body: &ast.Node{Kind: ast.KindBlock, Stmts: []*ast.Node{
			{Kind: ast.KindExprStmt, Expr: &ast.Node{Kind: ast.KindCall, Callee: &ast.Node{Kind: ast.KindIdentifier, IdentName: "println"}}},
		}}},
	}}
	if !usesRuntime(withCall) {
		t.Error("expected usesRuntime to detect a println call")
	}

	withoutCall := &ast.Node{Kind: ast.KindProgram, Decls: []*ast.Node{
		{Kind: ast.KindFunctionDecl, Name: "main", Body: &ast.Node{Kind: ast.KindBlock}},
	}}
	if usesRuntime(withoutCall) {
		t.Error("expected usesRuntime to be false with no builtin calls")
	}
}

func TestDeclareEnumEmitsNameLookupFunction(t *testing.T) {
	e := emit.NewEmitter()
	decl := &ast.Node{
		Kind: ast.KindEnumDecl,
		Name: "Color",
		EnumMembers: []ast.EnumMemberDecl{
			{Name: "Red"},
			{Name: "Green"},
		},
	}
	declareEnum(e, decl)
	out := e.String()
	if !strings.Contains(out, "enum class Color") {
		t.Errorf("expected enum class declaration, got:\n%s", out)
	}
	if !strings.Contains(out, `case Color::Red: return "Red";`) {
		t.Errorf("expected name lookup case for Red, got:\n%s", out)
	}
}
