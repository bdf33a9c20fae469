package jsgen

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/andrew24601/doofc/internal/ast"
	"github.com/andrew24601/doofc/internal/context"
	"github.com/andrew24601/doofc/internal/emit"
)

// Generate renders prog's declarations into a single ES module source
// file (spec §4.6): no separate header, since JS has no declaration/
// definition split. typescript selects a `.ts` vs `.js` import suffix.
func Generate(fc *context.FileContext, prog *ast.Node, typescript bool) string {
	e := emit.NewEmitter()

	ext := ".js"
	if typescript {
		ext = ".ts"
	}
	importNames := make([]string, 0, len(fc.Imports))
	for name := range fc.Imports {
		importNames = append(importNames, name)
	}
	sort.Strings(importNames)
	for _, name := range importNames {
		imp := fc.Imports[name]
		e.Line("import { %s } from %q;", importedSpecifier(fc, imp), importPath(imp.ModulePath)+ext)
	}
	if len(fc.Imports) > 0 {
		e.Blank()
	}

	sg := stmtGen{exprGen: exprGen{fc: fc}}
	for _, d := range prog.Decls {
		switch d.Kind {
		case ast.KindEnumDecl:
			declareEnum(e, d)
			e.Blank()
		case ast.KindClassDecl:
			cg := &ClassGen{stmtGen: sg}
			cg.Define(e, d, fc.Hints.JSONPrintTypes[d.Name], fc.Hints.JSONFromTypes[d.Name])
			e.Blank()
		case ast.KindFunctionDecl:
			params := make([]string, len(d.Params))
			for i, p := range d.Params {
				params[i] = p.Name
			}
			e.Block("function %s(%s)", d.Name, strings.Join(params, ", "))
			sg.Stmt(e, d.Body)
			e.EndBlock()
			e.Blank()
		case ast.KindExprStmt, ast.KindVarDeclStmt:
			if fc.AllowTopLevelStatements {
				sg.Stmt(e, d)
			}
		}
	}

	for _, name := range exportedNames(fc) {
		e.Line("export { %s };", name)
	}

	return e.String()
}

func exportedNames(fc *context.FileContext) []string {
	names := make([]string, 0, len(fc.Exports))
	for name := range fc.Exports {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func importedSpecifier(fc *context.FileContext, imp *context.ImportedSymbol) string {
	if imp.LocalName != imp.Exported {
		return fmt.Sprintf("%s as %s", imp.Exported, imp.LocalName)
	}
	return imp.Exported
}

func importPath(modulePath string) string {
	base := filepath.Base(modulePath)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return "./" + base
}

func declareEnum(e *emit.Emitter, d *ast.Node) {
	e.Block("const %s = Object.freeze(", d.Name)
	next := 0
	for i, m := range d.EnumMembers {
		sep := ","
		if i == len(d.EnumMembers)-1 {
			sep = ""
		}
		val := m.Value
		if val == nil {
			val = next
		}
		if iv, ok := val.(int); ok {
			next = iv + 1
		} else {
			next++
		}
		e.Line("%s: %v%s", m.Name, val, sep)
	}
	e.EndBlockSuffix(");")
}
