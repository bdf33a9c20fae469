package cppgen

import (
	"fmt"
	"strings"

	"github.com/andrew24601/doofc/internal/ast"
	"github.com/andrew24601/doofc/internal/context"
	"github.com/andrew24601/doofc/internal/emit"
	"github.com/andrew24601/doofc/internal/types"
)

// exprGen carries the per-file state an expression emitter needs: the
// codegen hints recorded during validation (call dispatch, narrowing,
// per-expression types) and a lookup from class name to declaration for
// union-member and factory-call lowering.
type exprGen struct {
	fc     *context.FileContext
	lookup ClassLookup
}

// Expr renders n as a C++ expression.
func (g *exprGen) Expr(n *ast.Node) string {
	if n == nil {
		return ""
	}
	switch n.Kind {
	case ast.KindLiteral:
		return g.literal(n)
	case ast.KindIdentifier:
		return g.identifier(n)
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
		if n.LiteralType != nil && n.LiteralType.Kind == types.KindPrimitive && n.LiteralType.Primitive == types.PrimInt {
			return fmt.Sprintf("%d", int64(v))
		}
		return fmt.Sprintf("%v", v)
	case nil:
		return "nullptr"
	default:
		return fmt.Sprintf("%v", v)
	}
}

// identifier renders a bare name reference. "this" used as an r-value
// (everywhere except as the object of a non-computed member access, which
// `member` handles directly) lowers to shared_from_this() per §4.5's
// ownership rule 2; every other identifier — local, parameter, or field —
// resolves exactly the way it would in the source, since C++'s own
// unqualified-name lookup inside a method finds fields the same way.
func (g *exprGen) identifier(n *ast.Node) string {
	if n.IdentName == "this" {
		return "shared_from_this()"
	}
	return n.IdentName
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
	if n.BinOp == ast.OpAdd {
		leftT := g.fc.Hints.Types[n.Left]
		rightT := g.fc.Hints.Types[n.Right]
		if isStringOperand(leftT) || isStringOperand(rightT) {
			return fmt.Sprintf("(%s + %s)", g.stringifyOperand(n.Left, leftT), g.stringifyOperand(n.Right, rightT))
		}
	}
	return fmt.Sprintf("(%s %s %s)", g.Expr(n.Left), string(n.BinOp), g.Expr(n.Right))
}

func isStringOperand(t *types.Type) bool {
	return t != nil && t.Kind == types.KindPrimitive && t.Primitive == types.PrimString
}

// stringifyOperand wraps a non-string operand of a `+` whose other side is
// a string with doof_stringify, the runtime's coercion wrapper (spec
// §4.2's "string concatenation coerces non-string operands").
func (g *exprGen) stringifyOperand(n *ast.Node, t *types.Type) string {
	expr := g.Expr(n)
	if isStringOperand(t) {
		return expr
	}
	return fmt.Sprintf("doof_stringify(%s)", expr)
}

// isExpr lowers `x is T`: a class-valued union narrows via
// std::holds_alternative, a nullable narrows via a null check.
func (g *exprGen) isExpr(n *ast.Node) string {
	staticT := g.fc.Hints.Types[n.Left]
	target := n.Right.LiteralType
	if target != nil && target.Kind == types.KindPrimitive && target.Primitive == types.PrimNull {
		return fmt.Sprintf("(%s == nullptr)", g.Expr(n.Left))
	}
	if staticT != nil && staticT.Kind == types.KindUnion && target != nil && target.Kind == types.KindClass {
		return fmt.Sprintf("std::holds_alternative<std::shared_ptr<%s>>(%s)", target.Name, g.Expr(n.Left))
	}
	if target != nil && target.Kind == types.KindClass {
		return fmt.Sprintf("(%s != nullptr)", g.Expr(n.Left))
	}
	return fmt.Sprintf("/* is %s */ true", target)
}

// classFields adapts g.lookup into the unions.ClassFields shape so
// internal/unions can resolve discriminants without depending on how this
// package stores class declarations.
func (g *exprGen) classFields(name string) ([]ast.FieldDecl, bool) {
	decl, ok := g.lookup(name)
	if !ok {
		return nil, false
	}
	return decl.Fields, true
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

// member renders a property access, consulting the narrowing hint recorded
// on n.Object and n.Object's static type to choose between a plain access, a std::get narrowed access, and a
// std::visit common-member visitor access (§4.5's union access lowering).
func (g *exprGen) member(n *ast.Node) string {
	if n.Computed {
		return fmt.Sprintf("(*%s)[%s]", g.Expr(n.Object), g.Expr(n.Index))
	}
	if n.Object.Kind == ast.KindIdentifier && n.Object.IdentName == "this" {
		return fmt.Sprintf("this->%s", n.Property)
	}
	objT := g.fc.Hints.Types[n.Object]
	if narrow, ok := g.fc.Hints.Narrowing[n.Object]; ok && narrow.IsFlat() && narrow.Members[0].Kind == types.KindClass {
		return fmt.Sprintf("std::get<std::shared_ptr<%s>>(%s)->%s", narrow.Members[0].Name, g.Expr(n.Object), n.Property)
	}
	if objT != nil && objT.Kind == types.KindUnion {
		return fmt.Sprintf("std::visit([](auto&& _v) { return _v->%s; }, %s)", n.Property, g.Expr(n.Object))
	}
	return fmt.Sprintf("%s->%s", g.Expr(n.Object), n.Property)
}

func (g *exprGen) arrayLit(n *ast.Node) string {
	elems := make([]string, len(n.Elements))
	for i, el := range n.Elements {
		elems[i] = g.Expr(el)
	}
	elemType := "auto"
	if t := g.fc.Hints.Types[n]; t != nil && t.Elem != nil {
		elemType = MapType(t.Elem)
	}
	if n.IsSetLit {
		return fmt.Sprintf("std::make_shared<std::unordered_set<%s>>(std::initializer_list<%s>{%s})", elemType, elemType, joinComma(elems))
	}
	return fmt.Sprintf("std::make_shared<std::vector<%s>>(std::initializer_list<%s>{%s})", elemType, elemType, joinComma(elems))
}

func (g *exprGen) objectLit(n *ast.Node) string {
	if n.IsMapLit {
		valueType := "auto"
		if t := g.fc.Hints.Types[n]; t != nil && t.Value != nil {
			valueType = MapType(t.Value)
		}
		pairs := make([]string, len(n.Fields2))
		for i, f := range n.Fields2 {
			pairs[i] = fmt.Sprintf("{%q, %s}", f.Name, g.Expr(f.Value))
		}
		return fmt.Sprintf("std::make_shared<std::map<std::string, %s>>(std::initializer_list<std::pair<const std::string, %s>>{%s})", valueType, valueType, joinComma(pairs))
	}
	args := make([]string, len(n.Fields2))
	for i, f := range n.Fields2 {
		args[i] = g.Expr(f.Value)
	}
	return fmt.Sprintf("%s(%s)", factoryCall(n.ClassName, g.lookup), joinComma(args))
}

func (g *exprGen) positionalObject(n *ast.Node) string {
	args := make([]string, len(n.CtorArgs))
	for i, a := range n.CtorArgs {
		args[i] = g.Expr(a)
	}
	return fmt.Sprintf("%s(%s)", factoryCall(n.ClassName, g.lookup), joinComma(args))
}

// factoryCall chooses between the synthesized `_new` factory (when the
// class declares a constructor) and a bare std::make_shared (aggregate
// fields in declaration order), per §4.5's ownership rule 4.
func factoryCall(className string, lookup ClassLookup) string {
	if decl, ok := lookup(className); ok && len(decl.Constructors) > 0 {
		return fmt.Sprintf("%s::_new", className)
	}
	return fmt.Sprintf("std::make_shared<%s>", className)
}

func (g *exprGen) interpolated(n *ast.Node) string {
	var parts []string
	for _, p := range n.TemplateParts {
		if p.Expr == nil {
			parts = append(parts, fmt.Sprintf("%q", p.Literal))
			continue
		}
		t := g.fc.Hints.Types[p.Expr]
		parts = append(parts, g.stringifyOperand(p.Expr, t))
	}
	if len(parts) == 0 {
		return `std::string("")`
	}
	return "(" + strings.Join(parts, " + ") + ")"
}

func (g *exprGen) lambda(n *ast.Node) string {
	params := make([]string, len(n.Params))
	for i, p := range n.Params {
		params[i] = fmt.Sprintf("%s %s", ParamType(p.Type), p.Name)
	}
	if n.ExprBody != nil {
		return fmt.Sprintf("[&](%s) { return %s; }", joinComma(params), g.Expr(n.ExprBody))
	}
	body := emit.NewEmitter()
	sg := &stmtGen{exprGen: *g}
	body.Block("[&](%s)", joinComma(params))
	sg.Stmt(body, n.Body)
	body.EndBlock()
	return strings.TrimRight(body.String(), "\n")
}

// enumShorthand resolves `.MEMBER` using the per-expression type table: the
// validator already inferred which enum the contextual target names.
func (g *exprGen) enumShorthand(n *ast.Node) string {
	t := g.fc.Hints.Types[n]
	if t != nil && t.Kind == types.KindEnum {
		return fmt.Sprintf("%s::%s", t.Name, n.ShorthandMember)
	}
	return n.ShorthandMember
}

func (g *exprGen) call(n *ast.Node) string {
	dispatch := g.fc.Hints.CallDispatch[n]
	if dispatch == nil {
		return fmt.Sprintf("%s(%s)", g.Expr(n.Callee), g.argList(n.Args, identityArgOrder(len(n.Args))))
	}
	if dispatch.Kind == context.CalleeBuiltin {
		return g.builtinCall(n, dispatch)
	}
	callee := g.calleeExpr(n, dispatch)
	if dispatch.IsReordered() && dispatch.NeedsTemporaries {
		return g.iifeCall(callee, n.Args, dispatch.PositionalOrder)
	}
	return fmt.Sprintf("%s(%s)", callee, g.argList(n.Args, dispatch.PositionalOrder))
}

// iifeCall builds the IIFE wrapper for a named-argument reorder whose
// arguments are not side-effect-free: one `_argN` temporary per parameter
// position, bound in the call's original lexical order, then passed
// positionally (§4.5, testable property 4).
func (g *exprGen) iifeCall(callee string, args []ast.Arg, order []int) string {
	argPos := make([]int, len(args))
	for pos, idx := range order {
		if idx >= 0 && idx < len(args) {
			argPos[idx] = pos
		}
	}
	var bindings []string
	for i, a := range args {
		bindings = append(bindings, fmt.Sprintf("auto _arg%d = %s;", argPos[i], g.Expr(a.Value)))
	}
	positional := make([]string, len(order))
	for pos := range order {
		positional[pos] = fmt.Sprintf("_arg%d", pos)
	}
	return fmt.Sprintf("[&]() { %s return %s(%s); }()", strings.Join(bindings, " "), callee, joinComma(positional))
}

func (g *exprGen) calleeExpr(n *ast.Node, dispatch *context.CallDispatch) string {
	switch dispatch.Kind {
	case context.CalleeConstructor:
		return factoryCall(n.Callee.IdentName, g.lookup)
	case context.CalleeMethod:
		return g.Expr(n.Callee) // Callee is the Member node: obj->method
	default:
		return g.Expr(n.Callee)
	}
}

func (g *exprGen) builtinCall(n *ast.Node, dispatch *context.CallDispatch) string {
	if strings.HasPrefix(dispatch.Builtin, "fromJSON:") {
		className := strings.TrimPrefix(dispatch.Builtin, "fromJSON:")
		return fmt.Sprintf("%s::fromJSON(%s)", className, g.Expr(n.Args[0].Value))
	}
	switch dispatch.Builtin {
	case "print", "println":
		return fmt.Sprintf("(std::cout << %s << std::endl)", g.Expr(n.Args[0].Value))
	case "assert":
		return fmt.Sprintf("doof_assert(%s)", g.Expr(n.Args[0].Value))
	case "len":
		return fmt.Sprintf("doof_len(%s)", g.Expr(n.Args[0].Value))
	}
	return fmt.Sprintf("%s(%s)", dispatch.Builtin, g.argList(n.Args, identityArgOrder(len(n.Args))))
}

func (g *exprGen) argList(args []ast.Arg, order []int) string {
	parts := make([]string, 0, len(order))
	for _, idx := range order {
		if idx < 0 || idx >= len(args) {
			continue
		}
		parts = append(parts, g.Expr(args[idx].Value))
	}
	return joinComma(parts)
}

func identityArgOrder(n int) []int {
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	return order
}
