// Package jsgen is the JavaScript/TypeScript backend (spec §4.6): simpler
// than the C++ backend because JS needs no ownership lowering and unions
// have no runtime representation, so narrowing is elided entirely —
// `x is T` just becomes an `instanceof` (or `== null`) check and member access on a union
// value is a plain `.prop` read. Grounded on the teacher's
// internal/codegen/emitter.go (the two-space Emitter this package reuses
// directly from internal/emit) and internal/codegen/serialize.go's
// accessor-threading style for JSON.
package jsgen

import (
	"fmt"
	"strings"

	"github.com/andrew24601/doofc/internal/ast"
	"github.com/andrew24601/doofc/internal/context"
	"github.com/andrew24601/doofc/internal/types"
)

// exprGen renders expressions as JavaScript. Unlike the C++ backend, no
// ClassLookup is needed: `new ClassName(...)` never branches on whether the
// class declares a constructor.
type exprGen struct {
	fc *context.FileContext
}

func (g *exprGen) Expr(n *ast.Node) string {
	if n == nil {
		return ""
	}
	switch n.Kind {
	case ast.KindLiteral:
		return g.literal(n)
	case ast.KindIdentifier:
		return n.IdentName
	case ast.KindBinary:
		return g.binary(n)
	case ast.KindUnary:
		return g.unary(n)
	case ast.KindCall:
		return g.call(n)
	case ast.KindMember:
		return g.member(n)
	case ast.KindArrayLit:
		return g.arrayLit(n)
	case ast.KindObjectLit:
		return g.objectLit(n)
	case ast.KindPositionalObject:
		return g.positionalObject(n)
	case ast.KindConditional:
		return fmt.Sprintf("(%s ? %s : %s)", g.Expr(n.CondTest), g.Expr(n.CondThen), g.Expr(n.CondElse))
	case ast.KindInterpolatedStr:
		return g.interpolated(n)
	case ast.KindLambda, ast.KindTrailingLambda:
		return g.lambda(n)
	case ast.KindEnumShorthand:
		return g.enumShorthand(n)
	case ast.KindRange:
		return fmt.Sprintf("/* range %s..%s */", g.Expr(n.RangeFrom), g.Expr(n.RangeTo))
	}
	return fmt.Sprintf("/* unsupported expr kind %s */", n.Kind)
}

func (g *exprGen) literal(n *ast.Node) string {
	switch v := n.LiteralValue.(type) {
	case string:
		return fmt.Sprintf("%q", v)
	case bool:
		if v {
			return "true"
		}
		return "false"
	case float64:
		return fmt.Sprintf("%v", v)
	case nil:
		return "null"
	default:
		return fmt.Sprintf("%v", v)
	}
}

func (g *exprGen) binary(n *ast.Node) string {
	if n.BinOp == ast.OpIs {
		return g.isExpr(n)
	}
	if n.BinOp == ast.OpAssign {
		return fmt.Sprintf("%s = %s", g.Expr(n.Left), g.Expr(n.Right))
	}
	if n.BinOp.IsCompoundAssign() {
		return fmt.Sprintf("%s %s %s", g.Expr(n.Left), string(n.BinOp), g.Expr(n.Right))
	}
	return fmt.Sprintf("(%s %s %s)", g.Expr(n.Left), string(n.BinOp), g.Expr(n.Right))
}

// isExpr lowers `x is T` without any variant machinery: a class check uses
// `instanceof`, a null check uses `== null`. Nothing narrows at runtime —
// narrowing exists only in the validator's static hints, which this backend
// ignores entirely (spec §4.6: "unions have no runtime representation").
func (g *exprGen) isExpr(n *ast.Node) string {
	target := n.Right.LiteralType
	if target == nil {
		return "true"
	}
	if target.Kind == types.KindPrimitive && target.Primitive == types.PrimNull {
		return fmt.Sprintf("(%s == null)", g.Expr(n.Left))
	}
	if target.Kind == types.KindClass {
		return fmt.Sprintf("(%s instanceof %s)", g.Expr(n.Left), target.Name)
	}
	return "true"
}

func (g *exprGen) unary(n *ast.Node) string {
	switch n.UnOp {
	case ast.OpPreInc:
		return fmt.Sprintf("++%s", g.Expr(n.Operand))
	case ast.OpPreDec:
		return fmt.Sprintf("--%s", g.Expr(n.Operand))
	case ast.OpPostInc:
		return fmt.Sprintf("%s++", g.Expr(n.Operand))
	case ast.OpPostDec:
		return fmt.Sprintf("%s--", g.Expr(n.Operand))
	case ast.OpNeg:
		return fmt.Sprintf("(-%s)", g.Expr(n.Operand))
	case ast.OpNot:
		return fmt.Sprintf("(!%s)", g.Expr(n.Operand))
	}
	return g.Expr(n.Operand)
}

func (g *exprGen) member(n *ast.Node) string {
	if n.Computed {
		return fmt.Sprintf("%s[%s]", g.Expr(n.Object), g.Expr(n.Index))
	}
	return fmt.Sprintf("%s.%s", g.Expr(n.Object), n.Property)
}

func (g *exprGen) arrayLit(n *ast.Node) string {
	elems := make([]string, len(n.Elements))
	for i, el := range n.Elements {
		elems[i] = g.Expr(el)
	}
	if n.IsSetLit {
		return fmt.Sprintf("new Set([%s])", strings.Join(elems, ", "))
	}
	return "[" + strings.Join(elems, ", ") + "]"
}

func (g *exprGen) objectLit(n *ast.Node) string {
	if n.IsMapLit {
		pairs := make([]string, len(n.Fields2))
		for i, f := range n.Fields2 {
			pairs[i] = fmt.Sprintf("[%q, %s]", f.Name, g.Expr(f.Value))
		}
		return fmt.Sprintf("new Map([%s])", strings.Join(pairs, ", "))
	}
	args := make([]string, len(n.Fields2))
	for i, f := range n.Fields2 {
		args[i] = g.Expr(f.Value)
	}
	return fmt.Sprintf("new %s(%s)", n.ClassName, strings.Join(args, ", "))
}

func (g *exprGen) positionalObject(n *ast.Node) string {
	args := make([]string, len(n.CtorArgs))
	for i, a := range n.CtorArgs {
		args[i] = g.Expr(a)
	}
	return fmt.Sprintf("new %s(%s)", n.ClassName, strings.Join(args, ", "))
}

func (g *exprGen) interpolated(n *ast.Node) string {
	var b strings.Builder
	b.WriteByte('`')
	for _, p := range n.TemplateParts {
		if p.Expr == nil {
			b.WriteString(strings.ReplaceAll(p.Literal, "`", "\\`"))
			continue
		}
		b.WriteString("${")
		b.WriteString(g.Expr(p.Expr))
		b.WriteString("}")
	}
	b.WriteByte('`')
	return b.String()
}

func (g *exprGen) lambda(n *ast.Node) string {
	params := make([]string, len(n.Params))
	for i, p := range n.Params {
		params[i] = p.Name
	}
	if n.IsShortForm {
		params = []string{"it"}
	}
	if n.ExprBody != nil {
		return fmt.Sprintf("(%s) => (%s)", strings.Join(params, ", "), g.Expr(n.ExprBody))
	}
	// Block-bodied lambdas render their statements via stmtGen; see
	// stmtGen.lambdaBody for the multi-line form this single-line renderer
	// defers to.
	sg := &stmtGen{exprGen: *g}
	return sg.lambdaBody(params, n.Body)
}

// enumShorthand resolves `.MEMBER` using the per-expression type table,
// same as the C++ backend: the validator already inferred which enum the
// contextual target names. JS enums are plain frozen objects
// (`EnumName.MEMBER`), not a distinct runtime kind.
func (g *exprGen) enumShorthand(n *ast.Node) string {
	t := g.fc.Hints.Types[n]
	if t != nil && t.Kind == types.KindEnum {
		return fmt.Sprintf("%s.%s", t.Name, n.ShorthandMember)
	}
	return n.ShorthandMember
}

func (g *exprGen) call(n *ast.Node) string {
	dispatch := g.fc.Hints.CallDispatch[n]
	if dispatch == nil {
		return fmt.Sprintf("%s(%s)", g.Expr(n.Callee), g.argList(n.Args, identityOrder(len(n.Args))))
	}
	if dispatch.Kind == context.CalleeBuiltin {
		return g.builtinCall(n, dispatch)
	}
	if n.Callee.Kind == ast.KindMember && n.Callee.Property == "reduce" && len(n.Args) == 2 {
		return g.reduceCall(n)
	}
	if dispatch.Kind == context.CalleeConstructor {
		return fmt.Sprintf("new %s(%s)", n.Callee.IdentName, g.argList(n.Args, dispatch.PositionalOrder))
	}
	return fmt.Sprintf("%s(%s)", g.Expr(n.Callee), g.argList(n.Args, dispatch.PositionalOrder))
}

// reduceCall swaps the source language's (initial, callback) argument
// order to JS's native (callback, initial) order (spec §4.6).
func (g *exprGen) reduceCall(n *ast.Node) string {
	initial := g.Expr(n.Args[0].Value)
	callback := g.Expr(n.Args[1].Value)
	return fmt.Sprintf("%s.reduce(%s, %s)", g.Expr(n.Callee.Object), callback, initial)
}

func (g *exprGen) builtinCall(n *ast.Node, dispatch *context.CallDispatch) string {
	if strings.HasPrefix(dispatch.Builtin, "fromJSON:") {
		className := strings.TrimPrefix(dispatch.Builtin, "fromJSON:")
		return fmt.Sprintf("%s.fromJSON(%s)", className, g.Expr(n.Args[0].Value))
	}
	switch dispatch.Builtin {
	case "println":
		return fmt.Sprintf("console.log(%s)", g.Expr(n.Args[0].Value))
	case "print":
		return fmt.Sprintf("process.stdout.write(String(%s))", g.Expr(n.Args[0].Value))
	case "assert":
		return fmt.Sprintf("__doof_assert(%s)", g.Expr(n.Args[0].Value))
	case "len":
		return g.lenCall(n.Args[0].Value)
	}
	return fmt.Sprintf("%s(%s)", dispatch.Builtin, g.argList(n.Args, identityOrder(len(n.Args))))
}

// lenCall picks the right JS accessor for `len(x)`: arrays and strings
// expose `.length`, Map/Set expose `.size`.
func (g *exprGen) lenCall(n *ast.Node) string {
	t := g.fc.Hints.Types[n]
	expr := g.Expr(n)
	if t != nil && (t.Kind == types.KindMap || t.Kind == types.KindSet) {
		return fmt.Sprintf("%s.size", expr)
	}
	return fmt.Sprintf("%s.length", expr)
}

func (g *exprGen) argList(args []ast.Arg, order []int) string {
	parts := make([]string, 0, len(order))
	for _, idx := range order {
		if idx < 0 || idx >= len(args) {
			continue
		}
		parts = append(parts, g.Expr(args[idx].Value))
	}
	return strings.Join(parts, ", ")
}

func identityOrder(n int) []int {
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	return order
}
