// Package validator implements the bidirectional expression/statement type
// checker: narrowing, definite-assignment analysis, call
// dispatch and arity/named-argument checking.
package validator

import (
	"fmt"

	"github.com/andrew24601/doofc/internal/ast"
	"github.com/andrew24601/doofc/internal/context"
	"github.com/andrew24601/doofc/internal/diagnostic"
	"github.com/andrew24601/doofc/internal/types"
)

// Validator walks one file's AST against its FileContext, recording
// diagnostics and codegen hints. A Validator is single-file; the caller
// (internal/compile) owns the GlobalContext that ties files together for
// import resolution.
type Validator struct {
	Global *context.GlobalContext
	File   *context.FileContext

	// currentFunc is the function, method or constructor currently being
	// validated; its ReturnType is used to type-check `return` statements.
	currentFunc *ast.Node

	// locals maps a local variable/parameter name to its static type within
	// the function currently being validated. ScopeTracker tracks
	// assignment state; locals tracks type, kept as a separate flat map
	// since the source language has no block-level name shadowing.
	locals map[string]*types.Type

	// loopDepth and switchDepth let checkStmt reject break/continue outside
	// their enclosing construct.
	loopDepth   int
	switchDepth int

	// narrowed maps a narrowKey path to its currently active narrowed
	// member subset, pushed/popped around if/while/switch branches (spec
	// §4.3). Absent keys mean "use the path's ordinary static type".
	narrowed map[string][]*types.Type
}

// New creates a Validator for file fc within program g.
func New(g *context.GlobalContext, fc *context.FileContext) *Validator {
	return &Validator{Global: g, File: fc}
}

func (v *Validator) errorf(node *ast.Node, kind diagnostic.Kind, format string, args ...any) {
	line, col := 0, 0
	if node != nil {
		line, col = node.Pos.Line, node.Pos.Column
	}
	v.File.Diagnostics.Error(kind, v.File.FileName, line, col, fmt.Sprintf(format, args...))
}

// ValidateProgram validates every top-level declaration in source order
// Declarations are visited in source order. It assumes the file's
// class/enum/function/alias symbol tables
// were already populated by a prior declaration-collection pass (see
// CollectDeclarations).
func (v *Validator) ValidateProgram(prog *ast.Node) {
	if prog == nil || prog.Kind != ast.KindProgram {
		v.File.Diagnostics.Internal(v.File.FileName, 0, 0, "ValidateProgram given a non-program node")
		return
	}
	for _, decl := range prog.Decls {
		v.validateDecl(decl)
	}
}

func (v *Validator) validateDecl(decl *ast.Node) {
	switch decl.Kind {
	case ast.KindFunctionDecl:
		v.validateFunctionBody(decl)
	case ast.KindClassDecl:
		v.validateClass(decl)
	case ast.KindEnumDecl, ast.KindTypeAliasDecl, ast.KindImportDecl, ast.KindExportDecl, ast.KindExternClass:
		// Structural only; nothing to bidirectionally check beyond what
		// CollectDeclarations and the import/export resolver already do.
	case ast.KindVarDeclStmt, ast.KindExprStmt:
		if !v.File.AllowTopLevelStatements {
			v.errorf(decl, diagnostic.KindControlFlowViolation, "top-level statements are not allowed in this file")
			return
		}
		v.checkStmt(decl)
	default:
		v.File.Diagnostics.Internal(v.File.FileName, decl.Pos.Line, decl.Pos.Column, "unexpected top-level declaration kind "+string(decl.Kind))
	}
}

func (v *Validator) validateClass(cls *ast.Node) {
	for _, ctor := range cls.Constructors {
		v.validateFunctionBody(ctor)
	}
	for _, m := range cls.Methods {
		v.validateFunctionBody(m)
	}
}

// validateFunctionBody type-checks one function/method/constructor body
// under a fresh definite-assignment scope seeded with its parameters.
func (v *Validator) validateFunctionBody(fn *ast.Node) {
	if fn.Body == nil {
		return // extern or abstract: no body to check
	}

	prevFunc := v.currentFunc
	prevScope := v.File.Hints.Scope
	prevLocals := v.locals
	v.currentFunc = fn
	v.File.Hints.Scope = context.NewScopeTracker()
	v.locals = make(map[string]*types.Type, len(fn.Params))
	for _, p := range fn.Params {
		v.File.Hints.Scope.Declare(p.Name, context.Assigned)
		v.locals[p.Name] = p.Type
	}

	v.checkStmt(fn.Body)

	v.currentFunc = prevFunc
	v.File.Hints.Scope = prevScope
	v.locals = prevLocals
}

// resolveTypeAlias eagerly resolves a type-alias reference to its target,
// following chains; aliases are resolved eagerly in most contexts.
func (v *Validator) resolveTypeAlias(t *types.Type) *types.Type {
	seen := map[string]bool{}
	for t != nil && t.Kind == types.KindTypeAlias {
		if seen[t.Name] {
			return t // cyclic alias: leave as-is, a declaration-time error elsewhere
		}
		seen[t.Name] = true
		alias := v.File.TypeAliases[t.Name]
		if alias == nil {
			return t
		}
		t = alias.Target
	}
	return t
}
