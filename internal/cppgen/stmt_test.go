package cppgen

import (
	"strings"
	"testing"

	"github.com/andrew24601/doofc/internal/ast"
	"github.com/andrew24601/doofc/internal/context"
	"github.com/andrew24601/doofc/internal/emit"
	"github.com/andrew24601/doofc/internal/types"
)

// circleClass and squareClass are two class declarations sharing a
// discriminant field "kind", used by the discriminated-union switch tests.
func circleClass() *ast.Node {
	return &ast.Node{
		Kind: ast.KindClassDecl,
		Name: "Circle",
		Fields: []ast.FieldDecl{
			{Name: "kind", IsConst: true, ConstValue: "circle"},
			{Name: "radius", Type: types.Prim(types.PrimDouble)},
		},
	}
}

func squareClass() *ast.Node {
	return &ast.Node{
		Kind: ast.KindClassDecl,
		Name: "Square",
		Fields: []ast.FieldDecl{
			{Name: "kind", IsConst: true, ConstValue: "square"},
			{Name: "side", Type: types.Prim(types.PrimDouble)},
		},
	}
}

func newStmtGen(classes ...*ast.Node) *stmtGen {
	byName := make(map[string]*ast.Node, len(classes))
	for _, c := range classes {
		byName[c.Name] = c
	}
	lookup := ClassLookup(func(name string) (*ast.Node, bool) {
		c, ok := byName[name]
		return c, ok
	})
	return &stmtGen{exprGen: exprGen{fc: context.NewFileContext("test.doof"), lookup: lookup}}
}

func stringLit(s string) *ast.Node {
	return &ast.Node{Kind: ast.KindLiteral, LiteralValue: s}
}

func shapeIdent(fc *context.FileContext, subject *ast.Node, union *types.Type) {
	fc.Hints.Types[subject] = union
}

func TestSwitchStmtDiscriminatedUnionEmitsHoldsAlternativeChain(t *testing.T) {
	g := newStmtGen(circleClass(), squareClass())
	union := types.Union(types.Class("Circle", false), types.Class("Square", false))
	subject := &ast.Node{Kind: ast.KindIdentifier, IdentName: "shape"}
	shapeIdent(g.fc, subject, union)

	n := &ast.Node{
		Kind:          ast.KindSwitchStmt,
		SwitchSubject: subject,
		SwitchCases: []ast.SwitchCase{
			{
				Values: []*ast.Node{stringLit("circle")},
				Body:   []*ast.Node{{Kind: ast.KindBreakStmt}},
			},
			{
				Values: []*ast.Node{stringLit("square")},
				Body:   []*ast.Node{{Kind: ast.KindContinueStmt}},
			},
		},
	}

	e := emit.NewEmitter()
	g.Stmt(e, n)
	out := e.String()

	if strings.Contains(out, "switch (") {
		t.Errorf("expected no native switch for a union subject, got:\n%s", out)
	}
	if !strings.Contains(out, "std::holds_alternative<std::shared_ptr<Circle>>(shape)") {
		t.Errorf("expected a Circle holds_alternative check, got:\n%s", out)
	}
	if !strings.Contains(out, "else if (std::holds_alternative<std::shared_ptr<Square>>(shape))") {
		t.Errorf("expected a Square holds_alternative check chained with else if, got:\n%s", out)
	}
}

func TestSwitchStmtDiscriminatedUnionDefaultBecomesTrailingElse(t *testing.T) {
	g := newStmtGen(circleClass(), squareClass())
	union := types.Union(types.Class("Circle", false), types.Class("Square", false))
	subject := &ast.Node{Kind: ast.KindIdentifier, IdentName: "shape"}
	shapeIdent(g.fc, subject, union)

	n := &ast.Node{
		Kind:          ast.KindSwitchStmt,
		SwitchSubject: subject,
		SwitchCases: []ast.SwitchCase{
			{
				Values: []*ast.Node{stringLit("circle")},
				Body:   []*ast.Node{{Kind: ast.KindBreakStmt}},
			},
			{
				Values: nil,
				Body:   []*ast.Node{{Kind: ast.KindContinueStmt}},
			},
		},
	}

	e := emit.NewEmitter()
	g.Stmt(e, n)
	out := e.String()

	if !strings.Contains(out, "} else {") {
		t.Errorf("expected the default case to become a trailing else, got:\n%s", out)
	}
}

func TestSwitchStmtDiscriminatedUnionMergesFallthroughCases(t *testing.T) {
	g := newStmtGen(circleClass(), squareClass())
	union := types.Union(types.Class("Circle", false), types.Class("Square", false))
	subject := &ast.Node{Kind: ast.KindIdentifier, IdentName: "shape"}
	shapeIdent(g.fc, subject, union)

	n := &ast.Node{
		Kind:          ast.KindSwitchStmt,
		SwitchSubject: subject,
		SwitchCases: []ast.SwitchCase{
			{
				Values:   []*ast.Node{stringLit("circle")},
				Fallthru: true,
			},
			{
				Values: []*ast.Node{stringLit("square")},
				Body:   []*ast.Node{{Kind: ast.KindBreakStmt}},
			},
		},
	}

	e := emit.NewEmitter()
	g.Stmt(e, n)
	out := e.String()

	if !strings.Contains(out, "std::holds_alternative<std::shared_ptr<Circle>>(shape) || std::holds_alternative<std::shared_ptr<Square>>(shape)") {
		t.Errorf("expected the fallthrough case merged into one condition covering both members, got:\n%s", out)
	}
	if strings.Contains(out, "else if") {
		t.Errorf("expected the merged cases to collapse into a single link with no else-if, got:\n%s", out)
	}
}

func TestSwitchStmtNonUnionSubjectEmitsNativeSwitch(t *testing.T) {
	g := newStmtGen()
	subject := &ast.Node{Kind: ast.KindIdentifier, IdentName: "n"}
	g.fc.Hints.Types[subject] = types.Prim(types.PrimInt)

	n := &ast.Node{
		Kind:          ast.KindSwitchStmt,
		SwitchSubject: subject,
		SwitchCases: []ast.SwitchCase{
			{
				Values: []*ast.Node{{Kind: ast.KindLiteral, LiteralValue: float64(1), LiteralType: types.Prim(types.PrimInt)}},
				Body:   []*ast.Node{{Kind: ast.KindBreakStmt}},
			},
		},
	}

	e := emit.NewEmitter()
	g.Stmt(e, n)
	out := e.String()

	if !strings.Contains(out, "switch (n)") {
		t.Errorf("expected a native switch for a primitive subject, got:\n%s", out)
	}
	if !strings.Contains(out, "case 1:") {
		t.Errorf("expected a native case label, got:\n%s", out)
	}
}
