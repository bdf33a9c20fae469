package jsgen

import (
	"testing"

	"github.com/andrew24601/doofc/internal/ast"
	"github.com/andrew24601/doofc/internal/context"
	"github.com/andrew24601/doofc/internal/types"
)

func newExprGen() *exprGen {
	return &exprGen{fc: context.NewFileContext("test.doof")}
}

func TestLiteralRendering(t *testing.T) {
	g := newExprGen()
	tests := []struct {
		n    *ast.Node
		want string
	}{
		{&ast.Node{Kind: ast.KindLiteral, LiteralValue: "hi"}, `"hi"`},
		{&ast.Node{Kind: ast.KindLiteral, LiteralValue: true}, "true"},
		{&ast.Node{Kind: ast.KindLiteral, LiteralValue: nil}, "null"},
	}
	for _, tc := range tests {
		if got := g.Expr(tc.n); got != tc.want {
			t.Errorf("Expr(%v) = %q, want %q", tc.n.LiteralValue, got, tc.want)
		}
	}
}

// Unions have no runtime representation in the JS backend: narrowing is
// elided entirely, so a member access renders as a plain dotted read
// regardless of any narrowing hint recorded by the validator.
func TestMemberAccessIgnoresNarrowing(t *testing.T) {
	g := newExprGen()
	subject := &ast.Node{Kind: ast.KindIdentifier, IdentName: "p"}
	g.fc.Hints.Narrowing[subject] = &context.Narrowing{Members: []*types.Type{types.Class("Adult", false)}}
	member := &ast.Node{Kind: ast.KindMember, Object: subject, Property: "income"}
	if got := g.Expr(member); got != "p.income" {
		t.Errorf("member access = %q, want plain p.income", got)
	}
}

func TestIsExprClassUsesInstanceof(t *testing.T) {
	g := newExprGen()
	n := &ast.Node{
		Kind:  ast.KindBinary,
		BinOp: ast.OpIs,
		Left:  &ast.Node{Kind: ast.KindIdentifier, IdentName: "p"},
		Right: &ast.Node{Kind: ast.KindLiteral, LiteralType: types.Class("Adult", false)},
	}
	if got := g.Expr(n); got != "(p instanceof Adult)" {
		t.Errorf("is-expr = %q, want (p instanceof Adult)", got)
	}
}

func TestIsExprNullUsesEquality(t *testing.T) {
	g := newExprGen()
	n := &ast.Node{
		Kind:  ast.KindBinary,
		BinOp: ast.OpIs,
		Left:  &ast.Node{Kind: ast.KindIdentifier, IdentName: "p"},
		Right: &ast.Node{Kind: ast.KindLiteral, LiteralType: types.Prim(types.PrimNull)},
	}
	if got := g.Expr(n); got != "(p == null)" {
		t.Errorf("null is-expr = %q, want (p == null)", got)
	}
}

// Spec §4.6: the source language's reduce takes (initial, callback); JS's
// native reduce takes (callback, initial). The backend must swap them.
func TestReduceCallSwapsArgumentOrder(t *testing.T) {
	g := newExprGen()
	call := &ast.Node{
		Kind: ast.KindCall,
		Callee: &ast.Node{
			Kind:     ast.KindMember,
			Object:   &ast.Node{Kind: ast.KindIdentifier, IdentName: "nums"},
			Property: "reduce",
		},
		Args: []ast.Arg{
			{Value: &ast.Node{Kind: ast.KindLiteral, LiteralValue: float64(0)}},
			{Value: &ast.Node{Kind: ast.KindIdentifier, IdentName: "sumFn"}},
		},
	}
	g.fc.Hints.CallDispatch[call] = &context.CallDispatch{Kind: context.CalleeMethod}
	got := g.Expr(call)
	if got != "nums.reduce(sumFn, 0)" {
		t.Errorf("reduce call = %q, want nums.reduce(sumFn, 0)", got)
	}
}

func TestLenCallPicksLengthOrSize(t *testing.T) {
	g := newExprGen()
	arrIdent := &ast.Node{Kind: ast.KindIdentifier, IdentName: "arr"}
	mapIdent := &ast.Node{Kind: ast.KindIdentifier, IdentName: "m"}
	g.fc.Hints.Types[arrIdent] = types.Array(types.Prim(types.PrimInt))
	g.fc.Hints.Types[mapIdent] = types.Map(types.Prim(types.PrimString), types.Prim(types.PrimInt))

	arrCall := &ast.Node{Kind: ast.KindCall, Callee: &ast.Node{Kind: ast.KindIdentifier, IdentName: "len"}, Args: []ast.Arg{{Value: arrIdent}}}
	g.fc.Hints.CallDispatch[arrCall] = &context.CallDispatch{Kind: context.CalleeBuiltin, Builtin: "len"}
	if got := g.Expr(arrCall); got != "arr.length" {
		t.Errorf("len(array) = %q, want arr.length", got)
	}

	mapCall := &ast.Node{Kind: ast.KindCall, Callee: &ast.Node{Kind: ast.KindIdentifier, IdentName: "len"}, Args: []ast.Arg{{Value: mapIdent}}}
	g.fc.Hints.CallDispatch[mapCall] = &context.CallDispatch{Kind: context.CalleeBuiltin, Builtin: "len"}
	if got := g.Expr(mapCall); got != "m.size" {
		t.Errorf("len(map) = %q, want m.size", got)
	}
}

func TestPrintlnBuiltinLowersToConsoleLog(t *testing.T) {
	g := newExprGen()
	call := &ast.Node{Kind: ast.KindCall, Callee: &ast.Node{Kind: ast.KindIdentifier, IdentName: "println"}, Args: []ast.Arg{{Value: &ast.Node{Kind: ast.KindIdentifier, IdentName: "x"}}}}
	g.fc.Hints.CallDispatch[call] = &context.CallDispatch{Kind: context.CalleeBuiltin, Builtin: "println"}
	if got := g.Expr(call); got != "console.log(x)" {
		t.Errorf("println = %q, want console.log(x)", got)
	}
}

func TestConstructorCallUsesNew(t *testing.T) {
	g := newExprGen()
	call := &ast.Node{
		Kind:   ast.KindCall,
		Callee: &ast.Node{Kind: ast.KindIdentifier, IdentName: "Widget"},
		Args:   []ast.Arg{{Value: &ast.Node{Kind: ast.KindLiteral, LiteralValue: float64(1)}}},
	}
	g.fc.Hints.CallDispatch[call] = &context.CallDispatch{Kind: context.CalleeConstructor, PositionalOrder: []int{0}}
	if got := g.Expr(call); got != "new Widget(1)" {
		t.Errorf("constructor call = %q, want new Widget(1)", got)
	}
}

func TestInterpolatedStringUsesTemplateLiteral(t *testing.T) {
	g := newExprGen()
	n := &ast.Node{
		Kind: ast.KindInterpolatedStr,
		TemplateParts: []ast.TemplatePart{
			{Literal: "count: "},
			{Expr: &ast.Node{Kind: ast.KindIdentifier, IdentName: "n"}},
		},
	}
	if got := g.Expr(n); got != "`count: ${n}`" {
		t.Errorf("interpolated string = %q", got)
	}
}

func TestShortFormLambdaUsesImplicitIt(t *testing.T) {
	g := newExprGen()
	n := &ast.Node{
		Kind:        ast.KindLambda,
		IsShortForm: true,
		ExprBody:    &ast.Node{Kind: ast.KindIdentifier, IdentName: "it"},
	}
	if got := g.Expr(n); got != "(it) => (it)" {
		t.Errorf("short-form lambda = %q, want (it) => (it)", got)
	}
}
