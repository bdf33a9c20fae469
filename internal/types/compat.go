package types

// Equal implements the structural Equal relation: same kind,
// recursively equal component types; classes equal by canonical name
// (post-monomorphization names already encode type arguments, so name
// equality is sufficient); unions equal as sets of members.
func Equal(a, b *Type) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KindPrimitive:
		return a.Primitive == b.Primitive
	case KindArray:
		if (a.Length == nil) != (b.Length == nil) {
			return false
		}
		if a.Length != nil && *a.Length != *b.Length {
			return false
		}
		return Equal(a.Elem, b.Elem)
	case KindMap:
		return Equal(a.Key, b.Key) && Equal(a.Value, b.Value)
	case KindSet:
		return Equal(a.Elem, b.Elem)
	case KindClass, KindEnum:
		if a.Name != b.Name || len(a.TypeArgs) != len(b.TypeArgs) {
			return false
		}
		for i := range a.TypeArgs {
			if !Equal(a.TypeArgs[i], b.TypeArgs[i]) {
				return false
			}
		}
		return true
	case KindTypeAlias:
		return a.Name == b.Name && equalTypeSlices(a.TypeArgs, b.TypeArgs)
	case KindTypeParameter:
		return a.Name == b.Name
	case KindUnion:
		return equalAsSets(a.Members, b.Members)
	case KindFunction:
		if a.Concise != b.Concise || !equalTypeSlices(a.Params, b.Params) {
			return false
		}
		return Equal(a.Return, b.Return)
	case KindNullable:
		return Equal(a.NonNull, b.NonNull)
	}
	return false
}

func equalTypeSlices(a, b []*Type) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

// equalAsSets compares two union member lists ignoring order, since
// unions are equal as sets of members regardless of declaration order.
func equalAsSets(a, b []*Type) bool {
	if len(a) != len(b) {
		return false
	}
	used := make([]bool, len(b))
	for _, am := range a {
		found := false
		for i, bm := range b {
			if used[i] {
				continue
			}
			if Equal(am, bm) {
				used[i] = true
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// LiteralKind classifies an untyped literal expression for the widening
// rule in AssignableFrom ("an untyped integer literal is assignable to
// int, float, double").
type LiteralKind int

const (
	NotLiteral LiteralKind = iota
	IntLiteral
	FloatLiteral
)

// AssignableFrom implements the `S -> T` assignability relation. litKind describes
// whether the source expression is an untyped numeric literal (for the
// literal-site widening rule); pass NotLiteral for ordinary expressions.
func AssignableFrom(s, t *Type, litKind LiteralKind) bool {
	if s == nil || t == nil {
		return false
	}

	// Literal widening applies only at literal call sites.
	if litKind == IntLiteral && t.Kind == KindPrimitive {
		switch t.Primitive {
		case PrimInt, PrimFloat, PrimDouble:
			return true
		}
	}
	if litKind == FloatLiteral && t.Kind == KindPrimitive {
		switch t.Primitive {
		case PrimFloat, PrimDouble:
			return true
		}
	}

	// null only where the target is nullable.
	if s.Kind == KindPrimitive && s.Primitive == PrimNull {
		return IsNullable(t) || (t.Kind == KindPrimitive && t.Primitive == PrimNull)
	}

	// S assignable to any union member of T.
	if t.Kind == KindUnion || t.Kind == KindNullable {
		for _, member := range UnionMembers(t) {
			if AssignableFrom(s, member, litKind) {
				return true
			}
		}
		return false
	}

	// Forbid assignment from a readonly collection to a mutable target.
	if s.Kind == KindClass && s.Readonly && t.Kind == KindClass && !t.Readonly {
		return false
	}

	switch t.Kind {
	case KindPrimitive:
		return s.Kind == KindPrimitive && s.Primitive == t.Primitive
	case KindArray:
		if s.Kind != KindArray {
			return false
		}
		if t.Length != nil {
			if s.Length == nil || *s.Length != *t.Length {
				return false
			}
		}
		return AssignableFrom(s.Elem, t.Elem, NotLiteral)
	case KindMap:
		return s.Kind == KindMap && AssignableFrom(s.Key, t.Key, NotLiteral) && AssignableFrom(s.Value, t.Value, NotLiteral)
	case KindSet:
		return s.Kind == KindSet && AssignableFrom(s.Elem, t.Elem, NotLiteral)
	case KindClass:
		// A class literal / collection literal satisfies a readonly T
		// parameter regardless of the source's own readonly marker, so only
		// nominal name+args matter here.
		return s.Kind == KindClass && s.Name == t.Name && equalTypeSlices(s.TypeArgs, t.TypeArgs)
	case KindEnum:
		return s.Kind == KindEnum && s.Name == t.Name
	case KindUnion:
		// S (a union) assignable to T (a union): every member of S must be
		// assignable into some member of T.
		if s.Kind == KindUnion || s.Kind == KindNullable {
			for _, sm := range UnionMembers(s) {
				if !AssignableFrom(sm, t, litKind) {
					return false
				}
			}
			return true
		}
		for _, member := range t.Members {
			if AssignableFrom(s, member, litKind) {
				return true
			}
		}
		return false
	case KindFunction:
		if s.Kind != KindFunction || len(s.Params) != len(t.Params) {
			return false
		}
		for i := range t.Params {
			// Parameters are contravariant; source params must accept at
			// least what the target expects.
			if !AssignableFrom(t.Params[i], s.Params[i], NotLiteral) {
				return false
			}
		}
		return AssignableFrom(s.Return, t.Return, NotLiteral)
	case KindNullable:
		if s.Kind == KindPrimitive && s.Primitive == PrimNull {
			return true
		}
		return AssignableFrom(s, t.NonNull, litKind)
	case KindTypeParameter:
		return s.Kind == KindTypeParameter && s.Name == t.Name
	case KindTypeAlias:
		return s.Kind == KindTypeAlias && s.Name == t.Name
	}
	return false
}

// NarrowingCompatible implements the `x is T` compatibility predicate:
// T must appear in x's static union, or T is null and x is nullable.
func NarrowingCompatible(staticType, target *Type) bool {
	if target.Kind == KindPrimitive && target.Primitive == PrimNull {
		return IsNullable(staticType)
	}
	for _, member := range UnionMembers(staticType) {
		if Equal(member, target) {
			return true
		}
	}
	return false
}
