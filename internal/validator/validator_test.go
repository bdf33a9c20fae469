package validator

import (
	"testing"

	"github.com/andrew24601/doofc/internal/ast"
	"github.com/andrew24601/doofc/internal/context"
	"github.com/andrew24601/doofc/internal/diagnostic"
	"github.com/andrew24601/doofc/internal/types"
)

func newTestFile(name string) (*context.GlobalContext, *context.FileContext) {
	g := context.NewGlobalContext()
	fc := context.NewFileContext(name)
	g.AddFile(fc)
	return g, fc
}

func runValidator(prog *ast.Node) *context.FileContext {
	g, fc := newTestFile("test.doof")
	CollectDeclarations(fc, prog)
	New(g, fc).ValidateProgram(prog)
	return fc
}

func TestValidator_DefiniteAssignmentViolation(t *testing.T) {
	// func f(): int { let x: int; return x }
	fn := &ast.Node{
		Kind:       ast.KindFunctionDecl,
		Name:       "f",
		ReturnType: types.Prim(types.PrimInt),
		Body: &ast.Node{
			Kind: ast.KindBlock,
			Stmts: []*ast.Node{
				{Kind: ast.KindVarDeclStmt, VarName: "x", VarType: types.Prim(types.PrimInt)},
				{Kind: ast.KindReturnStmt, Expr: &ast.Node{Kind: ast.KindIdentifier, IdentName: "x"}},
			},
		},
	}
	prog := &ast.Node{Kind: ast.KindProgram, Decls: []*ast.Node{fn}}

	fc := runValidator(prog)
	if !fc.Diagnostics.HasErrors() {
		t.Fatal("expected a definite-assignment error")
	}
	found := false
	for _, d := range fc.Diagnostics.Diagnostics() {
		if d.Category == diagnostic.KindDefiniteAssignment {
			found = true
		}
	}
	if !found {
		t.Errorf("expected KindDefiniteAssignment, got %+v", fc.Diagnostics.Diagnostics())
	}
}

func TestValidator_DefiniteAssignment_OkAfterInit(t *testing.T) {
	// func f(): int { let x: int = 1; return x }
	fn := &ast.Node{
		Kind:       ast.KindFunctionDecl,
		Name:       "f",
		ReturnType: types.Prim(types.PrimInt),
		Body: &ast.Node{
			Kind: ast.KindBlock,
			Stmts: []*ast.Node{
				{
					Kind: ast.KindVarDeclStmt, VarName: "x", VarType: types.Prim(types.PrimInt),
					VarInit: &ast.Node{Kind: ast.KindLiteral, LiteralType: types.Prim(types.PrimInt), LiteralValue: float64(1)},
				},
				{Kind: ast.KindReturnStmt, Expr: &ast.Node{Kind: ast.KindIdentifier, IdentName: "x"}},
			},
		},
	}
	prog := &ast.Node{Kind: ast.KindProgram, Decls: []*ast.Node{fn}}

	fc := runValidator(prog)
	if fc.Diagnostics.HasErrors() {
		t.Fatalf("expected no errors, got %s", fc.Diagnostics.FormatAll())
	}
}

func TestValidator_BinaryArithmetic(t *testing.T) {
	// func add(a: int, b: int): int { return a + b }
	fn := &ast.Node{
		Kind: ast.KindFunctionDecl, Name: "add",
		Params:     []ast.ParamDecl{{Name: "a", Type: types.Prim(types.PrimInt)}, {Name: "b", Type: types.Prim(types.PrimInt)}},
		ReturnType: types.Prim(types.PrimInt),
		Body: &ast.Node{
			Kind: ast.KindBlock,
			Stmts: []*ast.Node{
				{Kind: ast.KindReturnStmt, Expr: &ast.Node{
					Kind: ast.KindBinary, BinOp: ast.OpAdd,
					Left:  &ast.Node{Kind: ast.KindIdentifier, IdentName: "a"},
					Right: &ast.Node{Kind: ast.KindIdentifier, IdentName: "b"},
				}},
			},
		},
	}
	prog := &ast.Node{Kind: ast.KindProgram, Decls: []*ast.Node{fn}}

	fc := runValidator(prog)
	if fc.Diagnostics.HasErrors() {
		t.Fatalf("expected no errors, got %s", fc.Diagnostics.FormatAll())
	}
}

// classDecl builds a minimal discriminated-union class for narrowing tests:
// class Adult { const kind = "Adult"; income: double }
func adultDecl() *ast.Node {
	return &ast.Node{
		Kind: ast.KindClassDecl, Name: "Adult",
		Fields: []ast.FieldDecl{
			{Name: "kind", IsConst: true, ConstValue: "Adult", Type: types.Prim(types.PrimString)},
			{Name: "income", Type: types.Prim(types.PrimDouble)},
		},
	}
}

func childDecl() *ast.Node {
	return &ast.Node{
		Kind: ast.KindClassDecl, Name: "Child",
		Fields: []ast.FieldDecl{
			{Name: "kind", IsConst: true, ConstValue: "Child", Type: types.Prim(types.PrimString)},
			{Name: "candy", Type: types.Prim(types.PrimString)},
		},
	}
}

func TestValidator_IsNarrowingAllowsFieldAccess(t *testing.T) {
	union := types.Union(types.Class("Adult", false), types.Class("Child", false))
	// func income(p: Adult | Child): double {
	//   if (p is Adult) { return p.income }
	//   return 0.0
	// }
	fn := &ast.Node{
		Kind: ast.KindFunctionDecl, Name: "income",
		Params:     []ast.ParamDecl{{Name: "p", Type: union}},
		ReturnType: types.Prim(types.PrimDouble),
		Body: &ast.Node{
			Kind: ast.KindBlock,
			Stmts: []*ast.Node{
				{
					Kind: ast.KindIfStmt,
					Cond: &ast.Node{
						Kind: ast.KindBinary, BinOp: ast.OpIs,
						Left:  &ast.Node{Kind: ast.KindIdentifier, IdentName: "p"},
						Right: &ast.Node{Kind: ast.KindLiteral, LiteralType: types.Class("Adult", false)},
					},
					Then: &ast.Node{
						Kind: ast.KindBlock,
						Stmts: []*ast.Node{
							{Kind: ast.KindReturnStmt, Expr: &ast.Node{
								Kind: ast.KindMember,
								Object: &ast.Node{Kind: ast.KindIdentifier, IdentName: "p"},
								Property: "income",
							}},
						},
					},
				},
				{Kind: ast.KindReturnStmt, Expr: &ast.Node{Kind: ast.KindLiteral, LiteralType: types.Prim(types.PrimDouble), LiteralValue: 0.0}},
			},
		},
	}
	prog := &ast.Node{Kind: ast.KindProgram, Decls: []*ast.Node{adultDecl(), childDecl(), fn}}

	fc := runValidator(prog)
	if fc.Diagnostics.HasErrors() {
		t.Fatalf("expected no errors, got %s", fc.Diagnostics.FormatAll())
	}
}

func TestValidator_UnnarrowedUnionMemberAccessRejected(t *testing.T) {
	union := types.Union(types.Class("Adult", false), types.Class("Child", false))
	fn := &ast.Node{
		Kind: ast.KindFunctionDecl, Name: "income",
		Params:     []ast.ParamDecl{{Name: "p", Type: union}},
		ReturnType: types.Prim(types.PrimDouble),
		Body: &ast.Node{
			Kind: ast.KindBlock,
			Stmts: []*ast.Node{
				{Kind: ast.KindReturnStmt, Expr: &ast.Node{
					Kind:     ast.KindMember,
					Object:   &ast.Node{Kind: ast.KindIdentifier, IdentName: "p"},
					Property: "income",
				}},
			},
		},
	}
	prog := &ast.Node{Kind: ast.KindProgram, Decls: []*ast.Node{adultDecl(), childDecl(), fn}}

	fc := runValidator(prog)
	if !fc.Diagnostics.HasErrors() {
		t.Fatal("expected an ambiguous-member error for unnarrowed union field access")
	}
}

func TestValidator_NamedArgumentReorderNeedsTemporaries(t *testing.T) {
	// func make(a: int, b: int): int { return a }
	// make(b: g(), a: 1)   -- g() is not side-effect free, reorder needed
	fn := &ast.Node{
		Kind: ast.KindFunctionDecl, Name: "make",
		Params:     []ast.ParamDecl{{Name: "a", Type: types.Prim(types.PrimInt)}, {Name: "b", Type: types.Prim(types.PrimInt)}},
		ReturnType: types.Prim(types.PrimInt),
		Body: &ast.Node{
			Kind: ast.KindBlock,
			Stmts: []*ast.Node{
				{Kind: ast.KindReturnStmt, Expr: &ast.Node{Kind: ast.KindIdentifier, IdentName: "a"}},
			},
		},
	}
	g := &ast.Node{Kind: ast.KindFunctionDecl, Name: "g", ReturnType: types.Prim(types.PrimInt), Body: &ast.Node{Kind: ast.KindBlock}}

	callNode := &ast.Node{
		Kind:   ast.KindCall,
		Callee: &ast.Node{Kind: ast.KindIdentifier, IdentName: "make"},
		Args: []ast.Arg{
			{Name: "b", Value: &ast.Node{Kind: ast.KindCall, Callee: &ast.Node{Kind: ast.KindIdentifier, IdentName: "g"}}},
			{Name: "a", Value: &ast.Node{Kind: ast.KindLiteral, LiteralType: types.Prim(types.PrimInt), LiteralValue: float64(1)}},
		},
	}
	caller := &ast.Node{
		Kind: ast.KindFunctionDecl, Name: "caller",
		ReturnType: types.Prim(types.PrimInt),
		Body: &ast.Node{
			Kind:  ast.KindBlock,
			Stmts: []*ast.Node{{Kind: ast.KindReturnStmt, Expr: callNode}},
		},
	}
	prog := &ast.Node{Kind: ast.KindProgram, Decls: []*ast.Node{fn, g, caller}}

	fc := runValidator(prog)
	if fc.Diagnostics.HasErrors() {
		t.Fatalf("expected no errors, got %s", fc.Diagnostics.FormatAll())
	}
	dispatch := fc.Hints.CallDispatch[callNode]
	if dispatch == nil {
		t.Fatal("expected a recorded call dispatch")
	}
	if !dispatch.IsReordered() {
		t.Errorf("expected PositionalOrder to reflect the named-argument reorder, got %v", dispatch.PositionalOrder)
	}
	if !dispatch.NeedsTemporaries {
		t.Error("expected NeedsTemporaries since one reordered argument is a call")
	}
}

func TestValidator_ArityViolation_MissingRequiredArgument(t *testing.T) {
	fn := &ast.Node{
		Kind: ast.KindFunctionDecl, Name: "make",
		Params:     []ast.ParamDecl{{Name: "a", Type: types.Prim(types.PrimInt)}},
		ReturnType: types.Prim(types.PrimInt),
		Body:       &ast.Node{Kind: ast.KindBlock, Stmts: []*ast.Node{{Kind: ast.KindReturnStmt, Expr: &ast.Node{Kind: ast.KindIdentifier, IdentName: "a"}}}},
	}
	caller := &ast.Node{
		Kind: ast.KindFunctionDecl, Name: "caller",
		ReturnType: types.Prim(types.PrimInt),
		Body: &ast.Node{
			Kind: ast.KindBlock,
			Stmts: []*ast.Node{{Kind: ast.KindReturnStmt, Expr: &ast.Node{
				Kind:   ast.KindCall,
				Callee: &ast.Node{Kind: ast.KindIdentifier, IdentName: "make"},
			}}},
		},
	}
	prog := &ast.Node{Kind: ast.KindProgram, Decls: []*ast.Node{fn, caller}}

	fc := runValidator(prog)
	if !fc.Diagnostics.HasErrors() {
		t.Fatal("expected an arity violation for the missing required argument")
	}
}
