package validator

import (
	"github.com/andrew24601/doofc/internal/ast"
	"github.com/andrew24601/doofc/internal/context"
	"github.com/andrew24601/doofc/internal/types"
)

// CollectDeclarations populates fc's symbol tables from prog's top-level
// declarations, in source order, before any file's body is validated:
// declaration collection precedes body checking so forward references
// within and across files resolve. It runs independently of
// ValidateProgram so a GlobalContext can finish collecting every file
// before any file's bodies are checked.
func CollectDeclarations(fc *context.FileContext, prog *ast.Node) {
	if prog == nil {
		return
	}
	for _, decl := range prog.Decls {
		switch decl.Kind {
		case ast.KindFunctionDecl:
			fc.Functions[decl.Name] = &context.FuncSymbol{Decl: decl, Type: functionType(decl)}
		case ast.KindClassDecl, ast.KindExternClass:
			fc.Classes[decl.Name] = &context.ClassSymbol{Decl: decl, Type: types.Class(decl.Name, false)}
		case ast.KindEnumDecl:
			fc.Enums[decl.Name] = &context.EnumSymbol{Decl: decl, Type: types.Enum(decl.Name)}
		case ast.KindTypeAliasDecl:
			fc.TypeAliases[decl.Name] = &context.AliasSymbol{Decl: decl, Target: decl.AliasTarget}
		case ast.KindImportDecl:
			for _, name := range decl.ImportNames {
				local := name.Alias
				if local == "" {
					local = name.Name
				}
				fc.Imports[local] = &context.ImportedSymbol{
					LocalName:  local,
					ModulePath: decl.ModulePath,
					Exported:   name.Name,
				}
			}
		case ast.KindExportDecl:
			if decl.ExportedName != "" {
				fc.Exports[decl.ExportedName] = true
			}
			if decl.ExportExpr != nil {
				collectExportedInner(fc, decl.ExportExpr)
			}
		}
	}
}

// collectExportedInner handles `export function f() {}` / `export class C
// {}` forms where the declaration itself is carried on the ExportDecl
// rather than appearing separately at top level.
func collectExportedInner(fc *context.FileContext, decl *ast.Node) {
	switch decl.Kind {
	case ast.KindFunctionDecl:
		fc.Functions[decl.Name] = &context.FuncSymbol{Decl: decl, Type: functionType(decl)}
		fc.Exports[decl.Name] = true
	case ast.KindClassDecl, ast.KindExternClass:
		fc.Classes[decl.Name] = &context.ClassSymbol{Decl: decl, Type: types.Class(decl.Name, false)}
		fc.Exports[decl.Name] = true
	case ast.KindEnumDecl:
		fc.Enums[decl.Name] = &context.EnumSymbol{Decl: decl, Type: types.Enum(decl.Name)}
		fc.Exports[decl.Name] = true
	case ast.KindTypeAliasDecl:
		fc.TypeAliases[decl.Name] = &context.AliasSymbol{Decl: decl, Target: decl.AliasTarget}
		fc.Exports[decl.Name] = true
	}
}

func functionType(decl *ast.Node) *types.Type {
	params := make([]*types.Type, len(decl.Params))
	names := make([]string, len(decl.Params))
	for i, p := range decl.Params {
		params[i] = p.Type
		names[i] = p.Name
	}
	ret := decl.ReturnType
	if ret == nil {
		ret = types.Void
	}
	t := types.Function(params, ret, false)
	t.ParamNames = names
	return t
}
