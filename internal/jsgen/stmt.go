package jsgen

import (
	"strings"

	"github.com/andrew24601/doofc/internal/ast"
	"github.com/andrew24601/doofc/internal/emit"
)

type stmtGen struct {
	exprGen
}

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
			e.Line("return %s;", g.Expr(n.Expr))
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

func (g *stmtGen) varDecl(e *emit.Emitter, n *ast.Node) {
	kw := "let"
	if n.IsConst {
		kw = "const"
	}
	if n.VarInit == nil {
		e.Line("%s %s;", kw, n.VarName)
		return
	}
	e.Line("%s %s = %s;", kw, n.VarName, g.Expr(n.VarInit))
}

func (g *stmtGen) ifStmt(e *emit.Emitter, n *ast.Node) {
	e.Block("if (%s)", g.Expr(n.Cond))
	g.Stmt(e, n.Then)
	g.elseTail(e, n.Else)
}

func (g *stmtGen) elseTail(e *emit.Emitter, n *ast.Node) {
	if n == nil {
		e.EndBlock()
		return
	}
	if n.Kind == ast.KindIfStmt {
		e.EndBlockSuffix(" else if (" + g.Expr(n.Cond) + ") {")
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
		if n.ForInit.Kind == ast.KindVarDeclStmt {
			kw := "let"
			if n.ForInit.IsConst {
				kw = "const"
			}
			init = kw + " " + n.ForInit.VarName + " = " + g.Expr(n.ForInit.VarInit)
		} else {
			init = g.Expr(n.ForInit.Expr)
		}
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

// forOfStmt lowers every accepted iterable shape to JS's native for-of,
// which (unlike C++) already destructures Map entries and iterates
// Set/array/string uniformly — no shape-specific loop form is needed
// except the source language's own numeric range.
func (g *stmtGen) forOfStmt(e *emit.Emitter, n *ast.Node) {
	if n.Iterable.Kind == ast.KindRange {
		op := "<="
		if n.Iterable.RangeKind == ast.RangeExclusive {
			op = "<"
		}
		e.Block("for (let %s = %s; %s %s %s; %s++)", n.LoopVarName, g.Expr(n.Iterable.RangeFrom), n.LoopVarName, op, g.Expr(n.Iterable.RangeTo), n.LoopVarName)
		g.Stmt(e, n.Body)
		e.EndBlock()
		return
	}
	if n.LoopVarName2 != "" {
		e.Block("for (const [%s, %s] of %s)", n.LoopVarName, n.LoopVarName2, g.Expr(n.Iterable))
		g.Stmt(e, n.Body)
		e.EndBlock()
		return
	}
	e.Block("for (const %s of %s)", n.LoopVarName, g.Expr(n.Iterable))
	g.Stmt(e, n.Body)
	e.EndBlock()
}

func (g *stmtGen) switchStmt(e *emit.Emitter, n *ast.Node) {
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

// lambdaBody renders a block-bodied lambda as a multi-line arrow function.
func (g *stmtGen) lambdaBody(params []string, body *ast.Node) string {
	e := emit.NewEmitter()
	e.Block("(%s) =>", strings.Join(params, ", "))
	g.Stmt(e, body)
	e.EndBlock()
	return strings.TrimRight(e.String(), "\n")
}
