package validator

import (
	"github.com/andrew24601/doofc/internal/ast"
	"github.com/andrew24601/doofc/internal/context"
	"github.com/andrew24601/doofc/internal/diagnostic"
	"github.com/andrew24601/doofc/internal/types"
	"github.com/andrew24601/doofc/internal/unions"
)

// checkCall resolves a call expression's callee and dispatches arity/
// named-argument checking, recording a context.CallDispatch hint so the
// backends don't have to re-derive the resolution.
func (v *Validator) checkCall(e *ast.Node, expected *types.Type) *types.Type {
	switch e.Callee.Kind {
	case ast.KindIdentifier:
		return v.checkCallByName(e, e.Callee.IdentName)
	case ast.KindMember:
		if ret, ok := v.checkStaticFromJSON(e); ok {
			return ret
		}
		return v.checkMethodCall(e)
	default:
		calleeT, _ := v.checkExpr(e.Callee, nil)
		return v.checkCallValue(e, calleeT)
	}
}

// checkStaticFromJSON recognizes the one static-method call form the
// language has, `ClassName.fromJSON(text)`: the callee's object names a
// class rather than a class-typed value. Marks the class (and everything
// reachable from it) in jsonFromTypes so the C++ backend emits the
// deserializer, per spec §4.5.
func (v *Validator) checkStaticFromJSON(e *ast.Node) (*types.Type, bool) {
	member := e.Callee
	if member.Computed || member.Property != "fromJSON" || member.Object.Kind != ast.KindIdentifier {
		return nil, false
	}
	decl, ok := v.lookupClassDecl(member.Object.IdentName)
	if !ok {
		return nil, false
	}
	className := member.Object.IdentName
	for _, a := range e.Args {
		v.checkExpr(a.Value, types.Prim(types.PrimString))
	}
	reachable := map[string]bool{}
	unions.ReachableClasses(types.Class(className, false), v.classFieldsLookup(), reachable)
	for name := range reachable {
		v.File.Hints.MarkJSONFrom(name)
	}
	v.File.Hints.CallDispatch[e] = &context.CallDispatch{
		Kind:            context.CalleeBuiltin,
		Builtin:         "fromJSON:" + className,
		PositionalOrder: identityOrder(len(e.Args)),
	}
	_ = decl
	return types.Class(className, false), true
}

func (v *Validator) checkCallByName(e *ast.Node, name string) *types.Type {
	if t, ok := v.locals[name]; ok && t != nil && t.Kind == types.KindFunction {
		return v.checkCallValue(e, t)
	}
	if fn, ok := v.File.Functions[name]; ok {
		v.dispatch(e, context.CalleeFunction, fn.Decl, "", fn.Decl.Params)
		return fn.Type.Return
	}
	if decl, ok := v.lookupClassDecl(name); ok {
		var params []ast.ParamDecl
		if len(decl.Constructors) > 0 {
			params = decl.Constructors[0].Params
		}
		v.dispatch(e, context.CalleeConstructor, decl, "", params)
		return types.Class(name, false)
	}
	if imp, ok := v.File.Imports[name]; ok {
		if other := v.Global.Files[imp.ModulePath]; other != nil {
			if fn, ok := other.Functions[imp.Exported]; ok {
				v.dispatch(e, context.CalleeFunction, fn.Decl, "", fn.Decl.Params)
				return fn.Type.Return
			}
		}
	}
	if ret, ok := builtinReturn(name); ok {
		v.File.Hints.CallDispatch[e] = &context.CallDispatch{
			Kind:            context.CalleeBuiltin,
			Builtin:         name,
			PositionalOrder: identityOrder(len(e.Args)),
		}
		for _, a := range e.Args {
			argT, _ := v.checkExpr(a.Value, nil)
			if name == "print" || name == "println" {
				reachable := map[string]bool{}
				unions.ReachableClasses(argT, v.classFieldsLookup(), reachable)
				for n := range reachable {
					v.File.Hints.MarkJSONPrint(n)
				}
			}
		}
		return ret
	}
	v.errorf(e, diagnostic.KindUnknownIdentifier, "unknown function %q", name)
	for _, a := range e.Args {
		v.checkExpr(a.Value, nil)
	}
	return types.Void
}

func (v *Validator) checkMethodCall(e *ast.Node) *types.Type {
	member := e.Callee
	objType, _ := v.checkExpr(member.Object, nil)
	objType = v.narrowedType(member.Object, objType)
	if objType.Kind != types.KindClass {
		v.errorf(member, diagnostic.KindUnknownMember, "%s has no method %q", objType, member.Property)
		for _, a := range e.Args {
			v.checkExpr(a.Value, nil)
		}
		return types.Void
	}
	cls := v.File.LookupClass(v.Global, objType.Name)
	if cls == nil {
		v.errorf(member, diagnostic.KindUnknownIdentifier, "unknown class %q", objType.Name)
		return types.Void
	}
	for _, m := range cls.Decl.Methods {
		if m.Name == member.Property {
			v.dispatch(e, context.CalleeMethod, m, "", m.Params)
			if m.ReturnType != nil {
				return m.ReturnType
			}
			return types.Void
		}
	}
	v.errorf(member, diagnostic.KindUnknownMember, "%s has no method %q", objType, member.Property)
	for _, a := range e.Args {
		v.checkExpr(a.Value, nil)
	}
	return types.Void
}

// checkCallValue handles calling a value of function type directly (a
// parameter, a lambda expression result, or any other non-named callee).
func (v *Validator) checkCallValue(e *ast.Node, calleeT *types.Type) *types.Type {
	if calleeT == nil || calleeT.Kind != types.KindFunction {
		v.errorf(e, diagnostic.KindTypeMismatch, "%s is not callable", calleeT)
		for _, a := range e.Args {
			v.checkExpr(a.Value, nil)
		}
		return types.Void
	}
	if len(e.Args) != len(calleeT.Params) {
		v.errorf(e, diagnostic.KindArityViolation, "expected %d arguments, got %d", len(calleeT.Params), len(e.Args))
	}
	for i, a := range e.Args {
		var pt *types.Type
		if i < len(calleeT.Params) {
			pt = calleeT.Params[i]
		}
		val, litKind := v.checkExpr(a.Value, pt)
		if pt != nil && !types.AssignableFrom(val, pt, litKind) {
			v.errorf(a.Value, diagnostic.KindTypeMismatch, "argument %d expects %s, got %s", i+1, pt, val)
		}
	}
	order := identityOrder(len(e.Args))
	v.File.Hints.CallDispatch[e] = &context.CallDispatch{Kind: context.CalleeFunction, PositionalOrder: order}
	return calleeT.Return
}

// dispatch resolves named-argument reordering against params, type-checks
// every argument in resolved order, flags arity/named-argument violations,
// and records the resulting context.CallDispatch hint.
func (v *Validator) dispatch(e *ast.Node, kind context.CalleeKind, calleeDecl *ast.Node, builtin string, params []ast.ParamDecl) {
	order, unmatched, duplicate := resolveArgOrder(params, e.Args)
	for _, idx := range unmatched {
		v.errorf(e.Args[idx].Value, diagnostic.KindArityViolation, "no parameter named %q", e.Args[idx].Name)
	}
	for _, idx := range duplicate {
		v.errorf(e.Args[idx].Value, diagnostic.KindArityViolation, "argument %q supplied more than once", e.Args[idx].Name)
	}

	for pos, argIdx := range order {
		if argIdx < 0 {
			if pos < len(params) && params[pos].Default == nil {
				v.errorf(e, diagnostic.KindArityViolation, "missing required argument %q", params[pos].Name)
			}
			continue
		}
		var pt *types.Type
		if pos < len(params) {
			pt = params[pos].Type
		}
		val, litKind := v.checkExpr(e.Args[argIdx].Value, pt)
		if pt != nil && !types.AssignableFrom(val, pt, litKind) {
			name := ""
			if pos < len(params) {
				name = params[pos].Name
			}
			v.errorf(e.Args[argIdx].Value, diagnostic.KindTypeMismatch, "argument %q expects %s, got %s", name, pt, val)
		}
	}

	needsTemps := false
	if !isIdentityOrder(order) {
		for _, argIdx := range order {
			if argIdx < 0 {
				continue
			}
			if !isSideEffectFree(e.Args[argIdx].Value) {
				needsTemps = true
				break
			}
		}
	}

	v.File.Hints.CallDispatch[e] = &context.CallDispatch{
		Kind:             kind,
		Callee:           calleeDecl,
		Builtin:          builtin,
		PositionalOrder:  order,
		NeedsTemporaries: needsTemps,
	}
}

// resolveArgOrder assigns each of e's arguments to a parameter position.
// Positional arguments fill the earliest unfilled position in declaration
// order; named arguments fill their matching position directly — the
// named-argument reorder. order[pos] is the
// argument-slice index feeding parameter pos, or -1 if unfilled.
// unmatched lists argument indices whose name matches no parameter;
// duplicate lists named-argument indices that collide with an already
// filled position.
func resolveArgOrder(params []ast.ParamDecl, args []ast.Arg) (order []int, unmatched, duplicate []int) {
	order = identityOrder(len(params))
	for i := range order {
		order[i] = -1
	}
	next := 0
	for i, a := range args {
		if a.Name == "" {
			for next < len(order) && order[next] != -1 {
				next++
			}
			if next >= len(order) {
				unmatched = append(unmatched, i)
				continue
			}
			order[next] = i
			next++
			continue
		}
		idx := -1
		for pi, p := range params {
			if p.Name == a.Name {
				idx = pi
				break
			}
		}
		if idx == -1 {
			unmatched = append(unmatched, i)
			continue
		}
		if order[idx] != -1 {
			duplicate = append(duplicate, i)
			continue
		}
		order[idx] = i
	}
	return order, unmatched, duplicate
}

func identityOrder(n int) []int {
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	return order
}

func isIdentityOrder(order []int) bool {
	for i, idx := range order {
		if idx != i && idx != -1 {
			return false
		}
	}
	return true
}

// isSideEffectFree conservatively predicts whether evaluating n can observe
// or cause a mutation, for deciding when a named-argument
// reorder needs temporaries: calls and increment/decrement are never free,
// everything else is free only if every subexpression is.
func isSideEffectFree(n *ast.Node) bool {
	if n == nil {
		return true
	}
	switch n.Kind {
	case ast.KindLiteral, ast.KindIdentifier, ast.KindEnumShorthand:
		return true
	case ast.KindMember:
		if n.Computed {
			return isSideEffectFree(n.Object) && isSideEffectFree(n.Index)
		}
		return isSideEffectFree(n.Object)
	case ast.KindBinary:
		if n.BinOp == ast.OpAssign || n.BinOp.IsCompoundAssign() {
			return false
		}
		return isSideEffectFree(n.Left) && isSideEffectFree(n.Right)
	case ast.KindUnary:
		switch n.UnOp {
		case ast.OpPreInc, ast.OpPreDec, ast.OpPostInc, ast.OpPostDec:
			return false
		}
		return isSideEffectFree(n.Operand)
	case ast.KindConditional:
		return isSideEffectFree(n.CondTest) && isSideEffectFree(n.CondThen) && isSideEffectFree(n.CondElse)
	case ast.KindArrayLit:
		for _, el := range n.Elements {
			if !isSideEffectFree(el) {
				return false
			}
		}
		return true
	case ast.KindRange:
		return isSideEffectFree(n.RangeFrom) && isSideEffectFree(n.RangeTo)
	}
	return false
}

// builtinReturn resolves the handful of builtin free functions the
// language provides without a declaration; codegen maps these by name
// directly rather than through a decl.
func builtinReturn(name string) (*types.Type, bool) {
	switch name {
	case "print", "println", "assert":
		return types.Void, true
	case "len":
		return types.Prim(types.PrimInt), true
	}
	return nil, false
}
