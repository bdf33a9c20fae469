package validator

import "github.com/andrew24601/doofc/internal/types"

// numericKind reports whether t is one of the numeric primitives and which.
func numericKind(t *types.Type) (types.Primitive, bool) {
	if t.Kind != types.KindPrimitive {
		return "", false
	}
	switch t.Primitive {
	case types.PrimInt, types.PrimFloat, types.PrimDouble:
		return t.Primitive, true
	}
	return "", false
}

// widen picks the common numeric type of two operands for arithmetic,
// widening int -> float -> double. Returns ("", false) if either operand
// isn't numeric.
func widen(a, b types.Primitive) (types.Primitive, bool) {
	rank := map[types.Primitive]int{types.PrimInt: 0, types.PrimFloat: 1, types.PrimDouble: 2}
	ra, aok := rank[a]
	rb, bok := rank[b]
	if !aok || !bok {
		return "", false
	}
	if ra >= rb {
		return a, true
	}
	return b, true
}

// BinaryOpResult resolves the result type of an arithmetic/compare/logical
// binary operator over the given static operand types, per the small,
// explicit overload table below. ok is false when no overload
// matches.
func BinaryOpResult(op string, left, right *types.Type) (result *types.Type, ok bool) {
	switch op {
	case "+":
		// String concatenation coerces non-string operands via a
		// stringify wrapper.
		if isString(left) || isString(right) {
			return types.Prim(types.PrimString), true
		}
		if lk, lok := numericKind(left); lok {
			if rk, rok := numericKind(right); rok {
				if w, wok := widen(lk, rk); wok {
					return types.Prim(w), true
				}
			}
		}
		return nil, false
	case "-", "*", "/", "%":
		lk, lok := numericKind(left)
		rk, rok := numericKind(right)
		if !lok || !rok {
			return nil, false
		}
		w, _ := widen(lk, rk)
		return types.Prim(w), true
	case "==", "!=":
		// Equality is permitted between any two operands the rest of the
		// checker already considers comparable; codegen decides emission.
		return types.Prim(types.PrimBool), true
	case "<", "<=", ">", ">=":
		_, lok := numericKind(left)
		_, rok := numericKind(right)
		if lok && rok {
			return types.Prim(types.PrimBool), true
		}
		if isString(left) && isString(right) {
			return types.Prim(types.PrimBool), true
		}
		return nil, false
	case "&&", "||":
		if isBool(left) && isBool(right) {
			return types.Prim(types.PrimBool), true
		}
		return nil, false
	}
	return nil, false
}

// UnaryOpResult resolves the result type of a unary/prefix/postfix
// operator. Postfix ++/-- produce the pre-update value.
func UnaryOpResult(op string, operand *types.Type) (result *types.Type, ok bool) {
	switch op {
	case "-":
		if _, numOk := numericKind(operand); numOk {
			return operand, true
		}
		return nil, false
	case "!":
		if isBool(operand) {
			return types.Prim(types.PrimBool), true
		}
		return nil, false
	case "++pre", "--pre", "++post", "--post":
		if _, numOk := numericKind(operand); numOk {
			return operand, true
		}
		return nil, false
	}
	return nil, false
}

func isString(t *types.Type) bool {
	return t.Kind == types.KindPrimitive && t.Primitive == types.PrimString
}

func isBool(t *types.Type) bool {
	return t.Kind == types.KindPrimitive && t.Primitive == types.PrimBool
}
