package ast

import (
	"testing"

	"github.com/andrew24601/doofc/internal/types"
)

func TestIsCompoundAssign(t *testing.T) {
	compound := []BinaryOp{OpAddAssn, OpSubAssn, OpMulAssn, OpDivAssn, OpModAssn}
	for _, op := range compound {
		if !op.IsCompoundAssign() {
			t.Errorf("%s should be a compound assignment", op)
		}
	}
	plain := []BinaryOp{OpAdd, OpEq, OpAssign, OpAnd, OpIs}
	for _, op := range plain {
		if op.IsCompoundAssign() {
			t.Errorf("%s should not be a compound assignment", op)
		}
	}
}

func countNodes(n *Node) int {
	count := 0
	Walk(n, func(*Node) { count++ })
	return count
}

func buildSample() *Node {
	ident := &Node{Kind: KindIdentifier, IdentName: "x"}
	lit := &Node{Kind: KindLiteral, LiteralValue: int64(1), LiteralType: types.Prim(types.PrimInt)}
	bin := &Node{Kind: KindBinary, BinOp: OpAdd, Left: ident, Right: lit}
	call := &Node{
		Kind:   KindCall,
		Callee: &Node{Kind: KindIdentifier, IdentName: "f"},
		Args:   []Arg{{Name: "", Value: bin}, {Name: "y", Value: lit}},
	}
	body := &Node{Kind: KindBlock, Stmts: []*Node{
		{Kind: KindExprStmt, Expr: call},
		{Kind: KindReturnStmt, Expr: ident},
	}}
	fn := &Node{
		Kind:   KindFunctionDecl,
		Name:   "doStuff",
		Params: []ParamDecl{{Name: "x", Type: types.Prim(types.PrimInt)}},
		Body:   body,
	}
	return &Node{Kind: KindProgram, Decls: []*Node{fn}}
}

func TestWalkVisitsEveryReachableNode(t *testing.T) {
	prog := buildSample()
	n := countNodes(prog)
	// program, fn, block, exprStmt, call, callee-ident, binary, ident, lit,
	// lit(arg y), returnStmt, ident(return) = 12
	if n != 12 {
		t.Errorf("expected 12 reachable nodes, got %d", n)
	}
}

func TestCloneIsDeepAndIndependent(t *testing.T) {
	orig := buildSample()
	cp := Clone(orig)

	if cp == orig {
		t.Fatal("Clone returned the same pointer")
	}
	if countNodes(cp) != countNodes(orig) {
		t.Fatalf("clone has different node count: got %d want %d", countNodes(cp), countNodes(orig))
	}

	// Mutate a deeply nested field on the clone and ensure the original is
	// untouched.
	origFn := orig.Decls[0]
	cpFn := cp.Decls[0]
	if cpFn == origFn {
		t.Fatal("function decl was not cloned")
	}
	cpFn.Body.Stmts[1].Expr.IdentName = "mutated"
	if origFn.Body.Stmts[1].Expr.IdentName == "mutated" {
		t.Error("mutating the clone affected the original")
	}

	cpFn.Params[0].Name = "renamed"
	if origFn.Params[0].Name == "renamed" {
		t.Error("mutating a cloned param slice affected the original")
	}
}

func TestCloneNilIsNil(t *testing.T) {
	if Clone(nil) != nil {
		t.Error("Clone(nil) should return nil")
	}
}

func TestCloneHandlesSwitchCasesAndArgs(t *testing.T) {
	n := &Node{
		Kind: KindSwitchStmt,
		SwitchCases: []SwitchCase{
			{Values: []*Node{{Kind: KindLiteral, LiteralValue: "Adult"}}, Body: []*Node{{Kind: KindExprStmt}}},
			{Values: nil, Body: []*Node{{Kind: KindExprStmt}}},
		},
	}
	cp := Clone(n)
	cp.SwitchCases[0].Values[0].LiteralValue = "Child"
	if n.SwitchCases[0].Values[0].LiteralValue != "Adult" {
		t.Error("cloned switch case values should not alias the original")
	}
}

func TestWalkNilNodeIsNoop(t *testing.T) {
	called := false
	Walk(nil, func(*Node) { called = true })
	if called {
		t.Error("Walk(nil, ...) should never invoke visit")
	}
}
