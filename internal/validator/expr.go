package validator

import (
	"github.com/andrew24601/doofc/internal/ast"
	"github.com/andrew24601/doofc/internal/context"
	"github.com/andrew24601/doofc/internal/diagnostic"
	"github.com/andrew24601/doofc/internal/types"
	"github.com/andrew24601/doofc/internal/unions"
)

// checkExpr bidirectionally type-checks e, propagating expected as the
// contextual target type. expected may be nil when no target
// type is known (e.g. a bare expression statement). It returns e's static
// type and, for a bare literal, the LiteralKind used by the literal
// widening rule in types.AssignableFrom.
func (v *Validator) checkExpr(e *ast.Node, expected *types.Type) (*types.Type, types.LiteralKind) {
	t, lit := v.checkExprKind(e, expected)
	if e != nil {
		v.File.Hints.Types[e] = t
	}
	return t, lit
}

// checkExprKind dispatches on e's kind; checkExpr wraps it to record the
// result in the per-expression type table every caller shares.
func (v *Validator) checkExprKind(e *ast.Node, expected *types.Type) (*types.Type, types.LiteralKind) {
	if e == nil {
		return types.Void, types.NotLiteral
	}
	switch e.Kind {
	case ast.KindLiteral:
		return v.checkLiteral(e)
	case ast.KindIdentifier:
		return v.checkIdentifier(e), types.NotLiteral
	case ast.KindBinary:
		return v.checkBinary(e, expected), types.NotLiteral
	case ast.KindUnary:
		return v.checkUnary(e), types.NotLiteral
	case ast.KindCall:
		return v.checkCall(e, expected), types.NotLiteral
	case ast.KindMember:
		return v.checkMember(e), types.NotLiteral
	case ast.KindArrayLit:
		return v.checkArrayLit(e, expected), types.NotLiteral
	case ast.KindObjectLit:
		return v.checkObjectLit(e, expected), types.NotLiteral
	case ast.KindPositionalObject:
		return v.checkPositionalObject(e), types.NotLiteral
	case ast.KindRange:
		return v.checkRange(e), types.NotLiteral
	case ast.KindConditional:
		return v.checkConditional(e, expected), types.NotLiteral
	case ast.KindInterpolatedStr:
		return v.checkInterpolatedStr(e), types.NotLiteral
	case ast.KindTaggedTemplate:
		return v.checkTaggedTemplate(e), types.NotLiteral
	case ast.KindLambda, ast.KindTrailingLambda:
		return v.checkLambda(e, expected), types.NotLiteral
	case ast.KindEnumShorthand:
		return v.checkEnumShorthand(e, expected), types.NotLiteral
	case ast.KindXMLCall:
		return v.checkXMLCall(e), types.NotLiteral
	case ast.KindMarkdownTable:
		return v.checkMarkdownTable(e), types.NotLiteral
	default:
		v.File.Diagnostics.Internal(v.File.FileName, e.Pos.Line, e.Pos.Column, "unexpected expression kind "+string(e.Kind))
		return types.Void, types.NotLiteral
	}
}

func (v *Validator) checkLiteral(e *ast.Node) (*types.Type, types.LiteralKind) {
	t := e.LiteralType
	if t == nil {
		t = types.Void
	}
	switch {
	case t.Kind == types.KindPrimitive && t.Primitive == types.PrimInt:
		return t, types.IntLiteral
	case t.Kind == types.KindPrimitive && t.Primitive == types.PrimFloat:
		return t, types.FloatLiteral
	}
	return t, types.NotLiteral
}

func (v *Validator) checkIdentifier(e *ast.Node) *types.Type {
	if t, ok := v.locals[e.IdentName]; ok {
		if st, known := v.File.Hints.Scope.Get(e.IdentName); known && st == context.Unassigned {
			v.errorf(e, diagnostic.KindDefiniteAssignment, "%q is used before it is definitely assigned", e.IdentName)
		}
		return v.narrowedType(e, t)
	}
	if fn, ok := v.File.Functions[e.IdentName]; ok {
		return fn.Type
	}
	if cls, ok := v.File.Classes[e.IdentName]; ok {
		return cls.Type
	}
	if en, ok := v.File.Enums[e.IdentName]; ok {
		return en.Type
	}
	if imp, ok := v.File.Imports[e.IdentName]; ok {
		if other := v.Global.Files[imp.ModulePath]; other != nil {
			if fn, ok := other.Functions[imp.Exported]; ok {
				return fn.Type
			}
			if cls, ok := other.Classes[imp.Exported]; ok {
				return cls.Type
			}
		}
	}
	v.errorf(e, diagnostic.KindUnknownIdentifier, "unknown identifier %q", e.IdentName)
	return types.Void
}

func (v *Validator) checkBinary(e *ast.Node, expected *types.Type) *types.Type {
	if e.BinOp == ast.OpIs {
		return v.checkIsExpr(e)
	}
	if e.BinOp == ast.OpAssign {
		return v.checkAssign(e)
	}
	if e.BinOp.IsCompoundAssign() {
		return v.checkCompoundAssign(e)
	}

	left, _ := v.checkExpr(e.Left, nil)
	right, _ := v.checkExpr(e.Right, nil)
	result, ok := BinaryOpResult(string(e.BinOp), left, right)
	if !ok {
		v.errorf(e, diagnostic.KindTypeMismatch, "operator %s is not defined for %s and %s", e.BinOp, left, right)
		return types.Void
	}
	return result
}

// checkIsExpr checks `x is T`. The target type T is a type reference, not
// an expression; it rides on e.Right as a literal-shaped node carrying
// LiteralType, since the AST has no separate type-reference node kind.
func (v *Validator) checkIsExpr(e *ast.Node) *types.Type {
	staticType, _ := v.checkExpr(e.Left, nil)
	target := e.Right.LiteralType
	if target == nil {
		v.File.Diagnostics.Internal(v.File.FileName, e.Pos.Line, e.Pos.Column, "`is` expression missing target type")
		return types.Prim(types.PrimBool)
	}
	if !types.NarrowingCompatible(staticType, target) {
		v.errorf(e, diagnostic.KindNarrowingViolation, "%s is never a member of %s", target, staticType)
	} else {
		thenM, _ := unions.NarrowIs(types.UnionMembers(staticType), target)
		v.File.Hints.Narrowing[e.Left] = &context.Narrowing{Members: thenM}
	}
	return types.Prim(types.PrimBool)
}

func (v *Validator) checkAssign(e *ast.Node) *types.Type {
	target, _ := v.checkExpr(e.Left, nil)
	value, litKind := v.checkExpr(e.Right, target)
	if !types.AssignableFrom(value, target, litKind) {
		v.errorf(e, diagnostic.KindTypeMismatch, "cannot assign %s to %s", value, target)
	}
	v.checkReadonlyAssignTarget(e.Left)
	if e.Left.Kind == ast.KindIdentifier {
		v.File.Hints.Scope.Set(e.Left.IdentName, context.Assigned)
	}
	return target
}

func (v *Validator) checkCompoundAssign(e *ast.Node) *types.Type {
	target, _ := v.checkExpr(e.Left, nil)
	value, _ := v.checkExpr(e.Right, nil)
	op := map[ast.BinaryOp]string{
		ast.OpAddAssn: "+", ast.OpSubAssn: "-", ast.OpMulAssn: "*",
		ast.OpDivAssn: "/", ast.OpModAssn: "%",
	}[e.BinOp]
	result, ok := BinaryOpResult(op, target, value)
	if !ok || !types.AssignableFrom(result, target, types.NotLiteral) {
		v.errorf(e, diagnostic.KindTypeMismatch, "operator %s is not defined for %s and %s", e.BinOp, target, value)
	}
	v.checkReadonlyAssignTarget(e.Left)
	return target
}

func (v *Validator) checkReadonlyAssignTarget(target *ast.Node) {
	if target.Kind != ast.KindMember {
		return
	}
	objType, _ := v.checkExpr(target.Object, nil)
	if types.IsReadonlyTainted(objType) {
		v.errorf(target, diagnostic.KindReadonlyViolation, "cannot assign to %q of a readonly value", target.Property)
	}
}

func (v *Validator) checkUnary(e *ast.Node) *types.Type {
	operand, _ := v.checkExpr(e.Operand, nil)
	switch e.UnOp {
	case ast.OpPreInc, ast.OpPreDec, ast.OpPostInc, ast.OpPostDec:
		if e.Operand.Kind == ast.KindMember {
			v.checkReadonlyAssignTarget(e.Operand)
		}
	}
	result, ok := UnaryOpResult(string(e.UnOp), operand)
	if !ok {
		v.errorf(e, diagnostic.KindTypeMismatch, "operator %s is not defined for %s", e.UnOp, operand)
		return types.Void
	}
	return result
}

func (v *Validator) checkMember(e *ast.Node) *types.Type {
	objType, _ := v.checkExpr(e.Object, nil)
	if e.Computed {
		v.checkExpr(e.Index, nil)
		switch objType.Kind {
		case types.KindArray:
			return objType.Elem
		case types.KindMap:
			return objType.Value
		}
		v.errorf(e, diagnostic.KindTypeMismatch, "%s is not indexable", objType)
		return types.Void
	}

	// If a prior `is`/equality/null-check narrowed this path within the
	// current branch, resolve against the narrowed type instead of the
	// object's ordinary static type.
	objType = v.narrowedType(e.Object, objType)

	if objType.Kind == types.KindUnion {
		// Unnarrowed union: only a field common to every member (a
		// "visitor access") is legal.
		if t, ok := unions.HasCommonMember(objType.Members, e.Property, v.classFieldsLookup()); ok {
			return t
		}
		v.errorf(e, diagnostic.KindAmbiguousMember, "%q is not common to every member of %s", e.Property, objType)
		return types.Void
	}

	if objType.Kind == types.KindClass {
		if cls := v.File.LookupClass(v.Global, objType.Name); cls != nil {
			for _, f := range cls.Decl.Fields {
				if f.Name == e.Property {
					return f.Type
				}
			}
			for _, m := range cls.Decl.Methods {
				if m.Name == e.Property {
					return m.ReturnType
				}
			}
		}
	}

	v.errorf(e, diagnostic.KindUnknownMember, "%s has no member %q", objType, e.Property)
	return types.Void
}

func (v *Validator) classFieldsLookup() unions.ClassFields {
	return func(name string) ([]ast.FieldDecl, bool) {
		decl, ok := v.lookupClassDecl(name)
		if !ok {
			return nil, false
		}
		return decl.Fields, true
	}
}

func (v *Validator) lookupClassDecl(name string) (*ast.Node, bool) {
	if c, ok := v.File.Classes[name]; ok {
		return c.Decl, true
	}
	for _, fc := range v.Global.Files {
		if c, ok := fc.Classes[name]; ok {
			return c.Decl, true
		}
	}
	return nil, false
}

func (v *Validator) checkArrayLit(e *ast.Node, expected *types.Type) *types.Type {
	var elemExpected *types.Type
	if expected != nil && expected.Kind == types.KindArray {
		elemExpected = expected.Elem
	}
	var elemType *types.Type
	for _, el := range e.Elements {
		t, _ := v.checkExpr(el, elemExpected)
		elemType = mergeType(elemType, t)
	}
	if elemType == nil {
		if elemExpected != nil {
			elemType = elemExpected
		} else {
			elemType = types.Void
		}
	}
	return types.Array(elemType)
}

func (v *Validator) checkObjectLit(e *ast.Node, expected *types.Type) *types.Type {
	if e.IsMapLit {
		var vT *types.Type
		for _, f := range e.Fields2 {
			t, _ := v.checkExpr(f.Value, nil)
			vT = mergeType(vT, t)
		}
		if vT == nil {
			vT = types.Void
		}
		return types.Map(types.Prim(types.PrimString), vT)
	}
	if e.IsSetLit {
		var eT *types.Type
		for _, f := range e.Fields2 {
			t, _ := v.checkExpr(f.Value, nil)
			eT = mergeType(eT, t)
		}
		if eT == nil {
			eT = types.Void
		}
		return types.Set(eT)
	}

	// Class object literal: e.ClassName set directly, or disambiguated
	// against a union-of-classes `expected` target.
	className := e.ClassName
	if className == "" && expected != nil {
		className = v.disambiguateObjectLit(e, expected)
	}
	if className == "" {
		v.errorf(e, diagnostic.KindTypeMismatch, "cannot determine the class of this object literal")
		return types.Void
	}
	decl, ok := v.lookupClassDecl(className)
	if !ok {
		v.errorf(e, diagnostic.KindUnknownIdentifier, "unknown class %q", className)
		return types.Void
	}
	fieldTypes := make(map[string]*types.Type, len(decl.Fields))
	for _, f := range decl.Fields {
		fieldTypes[f.Name] = f.Type
	}
	for _, f := range e.Fields2 {
		ft, ok := fieldTypes[f.Name]
		if !ok {
			v.errorf(e, diagnostic.KindUnknownMember, "%s has no field %q", className, f.Name)
			continue
		}
		val, litKind := v.checkExpr(f.Value, ft)
		if !types.AssignableFrom(val, ft, litKind) {
			v.errorf(f.Value, diagnostic.KindTypeMismatch, "field %q expects %s, got %s", f.Name, ft, val)
		}
	}
	return types.Class(className, false)
}

func (v *Validator) disambiguateObjectLit(e *ast.Node, expected *types.Type) string {
	members := types.UnionMembers(expected)
	var classNames []string
	for _, m := range members {
		if m.Kind == types.KindClass {
			classNames = append(classNames, m.Name)
		}
	}
	provided := make(map[string]*ast.Node, len(e.Fields2))
	for _, f := range e.Fields2 {
		provided[f.Name] = f.Value
	}
	selected, outcome := unions.DisambiguateLiteral(classNames, v.classFieldsLookup(), provided)
	switch outcome {
	case unions.Disambiguated:
		v.File.Hints.ObjectInstantiation[e] = &context.ObjectInstantiation{SelectedClass: selected}
		return selected
	case unions.AmbiguousLiteral:
		v.errorf(e, diagnostic.KindAmbiguousMember, "this object literal matches more than one member of %s", expected)
	case unions.MissingRequiredField:
		v.errorf(e, diagnostic.KindTypeMismatch, "this object literal is missing required fields for every member of %s", expected)
	default:
		v.errorf(e, diagnostic.KindTypeMismatch, "this object literal matches no member of %s", expected)
	}
	return ""
}

func (v *Validator) checkPositionalObject(e *ast.Node) *types.Type {
	className := e.ClassName
	decl, ok := v.lookupClassDecl(className)
	if !ok {
		v.errorf(e, diagnostic.KindUnknownIdentifier, "unknown class %q", className)
		return types.Void
	}
	var params []ast.ParamDecl
	if len(decl.Constructors) > 0 {
		params = decl.Constructors[0].Params
	}
	if len(e.CtorArgs) > len(params) {
		v.errorf(e, diagnostic.KindArityViolation, "%s takes %d positional arguments, got %d", className, len(params), len(e.CtorArgs))
	}
	for i, arg := range e.CtorArgs {
		if i >= len(params) {
			v.checkExpr(arg, nil)
			continue
		}
		val, litKind := v.checkExpr(arg, params[i].Type)
		if !types.AssignableFrom(val, params[i].Type, litKind) {
			v.errorf(arg, diagnostic.KindTypeMismatch, "argument %d expects %s, got %s", i+1, params[i].Type, val)
		}
	}
	for i := len(e.CtorArgs); i < len(params); i++ {
		if params[i].Default == nil {
			v.errorf(e, diagnostic.KindArityViolation, "missing required argument %q", params[i].Name)
		}
	}
	return types.Class(className, false)
}

func (v *Validator) checkRange(e *ast.Node) *types.Type {
	v.checkExpr(e.RangeFrom, types.Prim(types.PrimInt))
	v.checkExpr(e.RangeTo, types.Prim(types.PrimInt))
	return types.Array(types.Prim(types.PrimInt))
}

func (v *Validator) checkConditional(e *ast.Node, expected *types.Type) *types.Type {
	v.checkExpr(e.CondTest, types.Prim(types.PrimBool))
	thenT, _ := v.checkExpr(e.CondThen, expected)
	elseT, _ := v.checkExpr(e.CondElse, expected)
	if types.Equal(thenT, elseT) {
		return thenT
	}
	return types.Union(thenT, elseT)
}

func (v *Validator) checkInterpolatedStr(e *ast.Node) *types.Type {
	for _, part := range e.TemplateParts {
		if part.Expr != nil {
			v.checkExpr(part.Expr, nil)
		}
	}
	return types.Prim(types.PrimString)
}

func (v *Validator) checkTaggedTemplate(e *ast.Node) *types.Type {
	calleeT, _ := v.checkExpr(e.TagCallee, nil)
	for _, part := range e.TemplateParts {
		if part.Expr != nil {
			v.checkExpr(part.Expr, nil)
		}
	}
	if calleeT.Kind == types.KindFunction {
		return calleeT.Return
	}
	return types.Prim(types.PrimString)
}

func (v *Validator) checkLambda(e *ast.Node, expected *types.Type) *types.Type {
	prevLocals := v.locals
	v.locals = make(map[string]*types.Type, len(prevLocals)+len(e.Params))
	for k, val := range prevLocals {
		v.locals[k] = val
	}
	var paramTypes []*types.Type
	for i, p := range e.Params {
		pt := p.Type
		if pt == nil && expected != nil && expected.Kind == types.KindFunction && i < len(expected.Params) {
			pt = expected.Params[i]
		}
		if pt == nil && e.IsShortForm && len(e.Params) == 0 && expected != nil && expected.Kind == types.KindFunction && len(expected.Params) == 1 {
			pt = expected.Params[0]
		}
		v.locals[p.Name] = pt
		paramTypes = append(paramTypes, pt)
	}
	var ret *types.Type
	if e.ExprBody != nil {
		ret, _ = v.checkExpr(e.ExprBody, nil)
	} else if e.Body != nil {
		v.checkStmt(e.Body)
		ret = e.ReturnType
		if ret == nil {
			ret = types.Void
		}
	}
	v.locals = prevLocals
	return types.Function(paramTypes, ret, e.ExprBody != nil)
}

func (v *Validator) checkEnumShorthand(e *ast.Node, expected *types.Type) *types.Type {
	if expected == nil || expected.Kind != types.KindEnum {
		v.errorf(e, diagnostic.KindTypeMismatch, "enum shorthand %q has no contextual enum type", e.ShorthandMember)
		return types.Void
	}
	return expected
}

func (v *Validator) checkXMLCall(e *ast.Node) *types.Type {
	for _, a := range e.XMLAttrs {
		v.checkExpr(a.Value, nil)
	}
	for _, c := range e.XMLChildren {
		v.checkExpr(c, nil)
	}
	return types.Class("Node", false)
}

func (v *Validator) checkMarkdownTable(e *ast.Node) *types.Type {
	for _, row := range e.TableRows {
		for _, cell := range row {
			v.checkExpr(cell, nil)
		}
	}
	return types.Array(types.Class("Row", false))
}

func mergeType(acc, t *types.Type) *types.Type {
	if acc == nil {
		return t
	}
	if types.Equal(acc, t) {
		return acc
	}
	return types.Union(acc, t)
}
