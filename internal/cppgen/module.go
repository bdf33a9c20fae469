package cppgen

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/andrew24601/doofc/internal/ast"
	"github.com/andrew24601/doofc/internal/context"
	"github.com/andrew24601/doofc/internal/emit"
)

// Output is the pair of generated files for one source file, matching the
// external interface's `{header?, source?}` result (spec §6): EmitHeader/
// EmitSource configuration decide which are populated.
type Output struct {
	Header string
	Source string
}

// Generate renders prog's declarations into a C++ header and/or source
// file. g resolves cross-module class lookups (imports); fc is prog's own
// validated context; namespace wraps every declaration, matching the
// source module's dotted name; headerName is the file name the source
// file #includes (ignored when emitHeader is false, since declarations
// then live entirely in the source file).
func Generate(g *context.GlobalContext, fc *context.FileContext, prog *ast.Node, namespace, headerName string, emitHeader, emitSource bool) Output {
	lookup := classLookup(g, fc)
	var out Output
	if emitHeader {
		out.Header = generateHeader(g, fc, prog, namespace, lookup)
	}
	if emitSource {
		out.Source = generateSource(fc, prog, namespace, headerName, lookup, emitHeader)
	}
	return out
}

// classLookup builds a ClassLookup closure that checks fc's own classes
// first, then every imported module, the same resolution LookupClass uses.
func classLookup(g *context.GlobalContext, fc *context.FileContext) ClassLookup {
	return func(name string) (*ast.Node, bool) {
		if sym, ok := fc.Classes[name]; ok {
			return sym.Decl, true
		}
		if imp, ok := fc.Imports[name]; ok {
			if other := g.Files[imp.ModulePath]; other != nil {
				if sym, ok := other.Classes[imp.Exported]; ok {
					return sym.Decl, true
				}
			}
		}
		return nil, false
	}
}

func guardName(headerName string) string {
	base := filepath.Base(headerName)
	base = strings.ToUpper(base)
	base = strings.Map(func(r rune) rune {
		if r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' {
			return r
		}
		return '_'
	}, base)
	return base + "_H"
}

// includeForImport maps an import's module path to the header file this
// generator would have produced for it: same base name, .h extension.
func includeForImport(modulePath string) string {
	base := filepath.Base(modulePath)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return base + ".h"
}

func generateHeader(g *context.GlobalContext, fc *context.FileContext, prog *ast.Node, namespace string, lookup ClassLookup) string {
	e := emit.NewEmitter()
	guard := guardName(fc.FileName)
	e.Line("#ifndef %s", guard)
	e.Line("#define %s", guard)
	e.Blank()
	e.Line("#include <iostream>")
	e.Line("#include <string>")
	e.Line("#include <vector>")
	e.Line("#include <memory>")
	e.Line("#include <cmath>")
	if usesRuntime(prog) {
		e.Line(`#include "doof_runtime.h"`)
	}

	importNames := make([]string, 0, len(fc.Imports))
	for name := range fc.Imports {
		importNames = append(importNames, name)
	}
	sort.Strings(importNames)

	seen := map[string]bool{}
	for _, name := range importNames {
		inc := includeForImport(fc.Imports[name].ModulePath)
		if seen[inc] {
			continue
		}
		seen[inc] = true
		e.Line(`#include %q`, inc)
	}
	e.Blank()

	e.Block("namespace %s", namespace)

	for _, d := range prog.Decls {
		switch d.Kind {
		case ast.KindClassDecl, ast.KindExternClass:
			e.Line("class %s;", d.Name)
		}
	}
	e.Blank()

	gen := &ClassGen{stmtGen: stmtGen{exprGen: exprGen{fc: fc, lookup: lookup}}}
	for _, d := range prog.Decls {
		switch d.Kind {
		case ast.KindEnumDecl:
			declareEnum(e, d)
			e.Blank()
		case ast.KindClassDecl:
			gen.DeclareHeader(e, d, fc.Hints.JSONPrintTypes[d.Name], fc.Hints.JSONFromTypes[d.Name])
			e.Blank()
		case ast.KindFunctionDecl:
			ret := "void"
			if d.ReturnType != nil {
				ret = MapType(d.ReturnType)
			}
			e.Line("%s %s(%s);", ret, d.Name, paramList(d.Params))
		}
	}

	e.EndBlock()
	e.Line("// namespace %s", namespace)
	e.Blank()
	e.Line("#endif // %s", guard)
	return e.String()
}

func generateSource(fc *context.FileContext, prog *ast.Node, namespace, headerName string, lookup ClassLookup, includesOwnHeader bool) string {
	e := emit.NewEmitter()
	if includesOwnHeader {
		e.Line(`#include %q`, headerName)
	}
	e.Line("#include <sstream>")
	if usesRuntime(prog) {
		e.Line(`#include "doof_runtime.h"`)
	}
	e.Blank()
	e.Block("namespace %s", namespace)

	gen := &ClassGen{stmtGen: stmtGen{exprGen: exprGen{fc: fc, lookup: lookup}}}
	for _, d := range prog.Decls {
		switch d.Kind {
		case ast.KindClassDecl:
			gen.DefineSource(e, d)
			if fc.Hints.JSONPrintTypes[d.Name] {
				EmitToJSON(e, d)
				e.Blank()
			}
			if fc.Hints.JSONFromTypes[d.Name] {
				EmitFromJSON(e, d, lookup)
				e.Blank()
			}
		case ast.KindFunctionDecl:
			ret := "void"
			if d.ReturnType != nil {
				ret = MapType(d.ReturnType)
			}
			e.Block("%s %s(%s)", ret, d.Name, paramList(d.Params))
			gen.Stmt(e, d.Body)
			e.EndBlock()
			e.Blank()
		}
	}

	e.EndBlock()
	e.Line("// namespace %s", namespace)
	return e.String()
}

func declareEnum(e *emit.Emitter, d *ast.Node) {
	e.Block("enum class %s", d.Name)
	for i, m := range d.EnumMembers {
		sep := ","
		if i == len(d.EnumMembers)-1 {
			sep = ""
		}
		if m.Value != nil {
			e.Line("%s = %v%s", m.Name, m.Value, sep)
		} else {
			e.Line("%s%s", m.Name, sep)
		}
	}
	e.EndBlockSuffix(";")
	e.Blank()
	e.Line("inline const char* %s_name(%s v) {", d.Name, d.Name)
	e.Indent()
	e.Block("switch (v)")
	for _, m := range d.EnumMembers {
		e.Line("case %s::%s: return %q;", d.Name, m.Name, m.Name)
	}
	e.EndBlock()
	e.Line(`return "";`)
	e.Dedent()
	e.Line("}")
}

// usesRuntime reports whether prog calls one of the builtins print,
// println, assert or len by name. It is a syntactic walk of the AST only:
// the doof_json_* helpers used by emitted JSON methods and the
// doof_stringify wrapper used by string concatenation are not detected.
func usesRuntime(prog *ast.Node) bool {
	found := false
	check := func(n *ast.Node) {
		if n.Kind == ast.KindCall && n.Callee != nil && n.Callee.Kind == ast.KindIdentifier {
			switch n.Callee.IdentName {
			case "print", "println", "assert", "len":
				found = true
			}
		}
	}
	for _, d := range prog.Decls {
		ast.Walk(d, check)
	}
	return found
}
