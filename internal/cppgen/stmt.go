package cppgen

import (
	"fmt"
	"strings"

	"github.com/andrew24601/doofc/internal/ast"
	"github.com/andrew24601/doofc/internal/emit"
	"github.com/andrew24601/doofc/internal/types"
	"github.com/andrew24601/doofc/internal/unions"
)

// stmtGen emits statements, delegating expressions to the embedded
// exprGen.
type stmtGen struct {
	exprGen
}

// Stmt writes n onto e. Block delimiters are the caller's responsibility
// for the outermost function body (Class/Module wrap it in `{ ... }`).
func (g *stmtGen) Stmt(e *emit.Emitter, n *ast.Node) {
	if n == nil {
		return
	}
	switch n.Kind {
	case ast.KindBlock:
		for _, s := range n.Stmts {
			g.Stmt(e, s)
		}
	case ast.KindVarDeclStmt:
		g.varDecl(e, n)
	case ast.KindExprStmt:
		e.Line("%s;", g.Expr(n.Expr))
	case ast.KindIfStmt:
		g.ifStmt(e, n)
	case ast.KindWhileStmt:
		e.Block("while (%s)", g.Expr(n.Cond))
		g.Stmt(e, n.Body)
		e.EndBlock()
	case ast.KindForStmt:
		g.forStmt(e, n)
	case ast.KindForOfStmt:
		g.forOfStmt(e, n)
	case ast.KindReturnStmt:
		if n.Expr == nil {
			e.Line("return;")
		} else {
			e.Line("return %s;", g.returnExpr(n.Expr))
		}
	case ast.KindBreakStmt:
		e.Line("break;")
	case ast.KindContinueStmt:
		e.Line("continue;")
	case ast.KindSwitchStmt:
		g.switchStmt(e, n)
	default:
		e.Line("/* unsupported stmt kind %s */", n.Kind)
	}
}

// returnExpr lowers `return this;` to `return shared_from_this();`
// (§4.5's ownership rule 2); every other return expression is emitted as
// usual.
func (g *stmtGen) returnExpr(n *ast.Node) string {
	if n.Kind == ast.KindIdentifier && n.IdentName == "this" {
		return "shared_from_this()"
	}
	return g.Expr(n)
}

func (g *stmtGen) varDecl(e *emit.Emitter, n *ast.Node) {
	typ := "auto"
	if n.VarType != nil {
		typ = MapType(n.VarType)
	} else if t := g.fc.Hints.Types[n.VarInit]; t != nil {
		typ = MapType(t)
	}
	if n.VarInit == nil {
		e.Line("%s %s{};", typ, n.VarName)
		return
	}
	e.Line("%s %s = %s;", typ, n.VarName, g.Expr(n.VarInit))
}

func (g *stmtGen) ifStmt(e *emit.Emitter, n *ast.Node) {
	e.Block("if (%s)", g.Expr(n.Cond))
	g.Stmt(e, n.Then)
	g.elseTail(e, n.Else)
}

// elseTail closes the brace its caller opened (via Block or a prior
// elseTail call) and, for a chained `else if`/`else`, reopens the next
// link flattened onto the same closing line (`} else if (...) {`) so a
// whole if/else-if/.../else chain stays at one indentation level instead
// of nesting deeper with every link.
func (g *stmtGen) elseTail(e *emit.Emitter, n *ast.Node) {
	if n == nil {
		e.EndBlock()
		return
	}
	if n.Kind == ast.KindIfStmt {
		e.EndBlockSuffix(fmt.Sprintf(" else if (%s) {", g.Expr(n.Cond)))
		e.Indent()
		g.Stmt(e, n.Then)
		g.elseTail(e, n.Else)
		return
	}
	e.EndBlockSuffix(" else {")
	e.Indent()
	g.Stmt(e, n)
	e.EndBlock()
}

func (g *stmtGen) forStmt(e *emit.Emitter, n *ast.Node) {
	init, cond, post := "", "", ""
	if n.ForInit != nil {
		init = g.forInitExpr(n.ForInit)
	}
	if n.ForCond != nil {
		cond = g.Expr(n.ForCond)
	}
	if n.ForPost != nil {
		post = g.Expr(n.ForPost)
	}
	e.Block("for (%s; %s; %s)", init, cond, post)
	g.Stmt(e, n.Body)
	e.EndBlock()
}

func (g *stmtGen) forInitExpr(n *ast.Node) string {
	if n.Kind == ast.KindVarDeclStmt {
		typ := "auto"
		if n.VarType != nil {
			typ = MapType(n.VarType)
		}
		return fmt.Sprintf("%s %s = %s", typ, n.VarName, g.Expr(n.VarInit))
	}
	return g.Expr(n.Expr)
}

// forOfStmt lowers the accepted iterable shapes (§4.2): arrays/sets by
// range-for over the dereferenced container, strings by character, ranges
// by an explicit counting loop, and maps destructured into (key, value)
// per the resolved Open Question.
func (g *stmtGen) forOfStmt(e *emit.Emitter, n *ast.Node) {
	iterT := g.fc.Hints.Types[n.Iterable]
	if iterT != nil && iterT.Kind == types.KindMap {
		e.Block("for (auto& [%s, %s] : *%s)", n.LoopVarName, n.LoopVarName2, g.Expr(n.Iterable))
		g.Stmt(e, n.Body)
		e.EndBlock()
		return
	}
	if n.Iterable.Kind == ast.KindRange {
		op := "<="
		if n.Iterable.RangeKind == ast.RangeExclusive {
			op = "<"
		}
		e.Block("for (int %s = %s; %s %s %s; %s++)", n.LoopVarName, g.Expr(n.Iterable.RangeFrom), n.LoopVarName, op, g.Expr(n.Iterable.RangeTo), n.LoopVarName)
		g.Stmt(e, n.Body)
		e.EndBlock()
		return
	}
	if iterT != nil && iterT.Kind == types.KindPrimitive && iterT.Primitive == types.PrimString {
		e.Block("for (char %s : %s)", n.LoopVarName, g.Expr(n.Iterable))
		g.Stmt(e, n.Body)
		e.EndBlock()
		return
	}
	e.Block("for (auto& %s : *%s)", n.LoopVarName, g.Expr(n.Iterable))
	g.Stmt(e, n.Body)
	e.EndBlock()
}

func (g *stmtGen) switchStmt(e *emit.Emitter, n *ast.Node) {
	subjT := g.fc.Hints.Types[n.SwitchSubject]
	if subjT != nil && subjT.Kind == types.KindUnion {
		if disc := unions.DetectDiscriminant(subjT.Members, g.classFields); disc != nil {
			g.unionSwitchStmt(e, n, subjT, disc)
			return
		}
	}
	e.Block("switch (%s)", g.Expr(n.SwitchSubject))
	for _, c := range n.SwitchCases {
		if len(c.Values) == 0 {
			e.Line("default:")
		}
		for _, v := range c.Values {
			e.Line("case %s:", g.Expr(v))
		}
		e.Indent()
		for _, s := range c.Body {
			g.Stmt(e, s)
		}
		if !c.Fallthru {
			e.Line("break;")
		}
		e.Dedent()
	}
	e.EndBlock()
}

// unionSwitchStmt lowers a switch over a discriminated-union subject to an
// if/else-if chain on std::holds_alternative, since a std::variant can't be
// a C++ switch operand and discriminant literals (often strings) aren't
// valid case labels either. Each case's literal values resolve to member
// classes through disc.Mapping; a Fallthru case's body runs in addition to
// the next case's, so consecutive fallthrough cases are merged into one
// link sharing every merged case's values and bodies in order.
func (g *stmtGen) unionSwitchStmt(e *emit.Emitter, n *ast.Node, subjT *types.Type, disc *unions.Discriminant) {
	subject := g.Expr(n.SwitchSubject)
	links := mergeFallthroughCases(n.SwitchCases)
	for i, c := range links {
		var opener string
		if len(c.Values) == 0 {
			opener = "true"
		} else {
			var classNames []string
			for _, v := range c.Values {
				idx, ok := disc.Mapping[unions.LiteralKey(v.LiteralValue)]
				if !ok {
					continue
				}
				classNames = append(classNames, subjT.Members[idx].Name)
			}
			opener = holdsAlternativeCond(subject, classNames)
		}
		if i == 0 {
			e.Block("if (%s)", opener)
		} else if len(c.Values) == 0 {
			e.EndBlockSuffix(" else {")
			e.Indent()
		} else {
			e.EndBlockSuffix(fmt.Sprintf(" else if (%s) {", opener))
			e.Indent()
		}
		for _, s := range c.Body {
			g.Stmt(e, s)
		}
	}
	if len(links) > 0 {
		e.EndBlock()
	}
}

func holdsAlternativeCond(subject string, classNames []string) string {
	if len(classNames) == 0 {
		return "false"
	}
	conds := make([]string, len(classNames))
	for i, name := range classNames {
		conds[i] = fmt.Sprintf("std::holds_alternative<std::shared_ptr<%s>>(%s)", name, subject)
	}
	return strings.Join(conds, " || ")
}

// mergeFallthroughCases folds a run of Fallthru cases into the link they
// fall into, concatenating their Values and Body in source order so the
// merged link's condition covers every folded case and its body runs every
// folded case's statements in sequence.
func mergeFallthroughCases(cases []ast.SwitchCase) []ast.SwitchCase {
	var out []ast.SwitchCase
	var pendingValues []*ast.Node
	var pendingBody []*ast.Node
	for _, c := range cases {
		pendingValues = append(pendingValues, c.Values...)
		pendingBody = append(pendingBody, c.Body...)
		if c.Fallthru {
			continue
		}
		out = append(out, ast.SwitchCase{Values: pendingValues, Body: pendingBody})
		pendingValues, pendingBody = nil, nil
	}
	if len(pendingValues) > 0 || len(pendingBody) > 0 {
		out = append(out, ast.SwitchCase{Values: pendingValues, Body: pendingBody})
	}
	return out
}
