package unions

import "github.com/andrew24601/doofc/internal/types"

// intersect returns the set intersection of a and b by structural Equal,
// preserving a's order — the boolean-lattice "and" combination from spec
// §4.3.
func intersect(a, b []*types.Type) []*types.Type {
	var out []*types.Type
	for _, x := range a {
		for _, y := range b {
			if types.Equal(x, y) {
				out = append(out, x)
				break
			}
		}
	}
	return out
}

// union returns the set union of a and b by structural Equal, preserving
// a's order then appending b's novel members — the boolean-lattice "or"
// combination.
func union(a, b []*types.Type) []*types.Type {
	out := append([]*types.Type{}, a...)
	for _, y := range b {
		dup := false
		for _, x := range out {
			if types.Equal(x, y) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, y)
		}
	}
	return out
}

// Intersect is the exported form of the "and" combination, used when
// composing two narrowings with `&&`.
func Intersect(a, b []*types.Type) []*types.Type { return intersect(a, b) }

// Union is the exported form of the "or" combination, used when composing
// two narrowings with `||`.
func Union(a, b []*types.Type) []*types.Type { return union(a, b) }

// NarrowEquality computes the then/else member subsets for `x.d == L`
// where d is x's discriminant and L is a literal: the
// then-branch restricts to members whose discriminant equals L; the
// else-branch is the complement.
func NarrowEquality(members []*types.Type, disc *Discriminant, literal any) (thenMembers, elseMembers []*types.Type) {
	key := LiteralKey(literal)
	idx, ok := disc.Mapping[key]
	if !ok {
		// L matches no member: then-branch is unreachable (empty),
		// else-branch is unrestricted.
		return nil, members
	}
	for i, m := range members {
		if i == idx {
			thenMembers = append(thenMembers, m)
		} else {
			elseMembers = append(elseMembers, m)
		}
	}
	return thenMembers, elseMembers
}

// NarrowIs computes the then/else member subsets for `x is T`: the
// then-branch restricts to T (if present in the union), the else-branch is
// every other member.
func NarrowIs(members []*types.Type, target *types.Type) (thenMembers, elseMembers []*types.Type) {
	for _, m := range members {
		if types.Equal(m, target) {
			thenMembers = append(thenMembers, m)
		} else {
			elseMembers = append(elseMembers, m)
		}
	}
	return thenMembers, elseMembers
}

// NarrowNullCheck computes the then/else member subsets for `x == null` /
// `x != null` against x's static (possibly nullable) type.
func NarrowNullCheck(staticType *types.Type) (nullMembers, nonNullMembers []*types.Type) {
	for _, m := range types.UnionMembers(staticType) {
		if m.Kind == types.KindPrimitive && m.Primitive == types.PrimNull {
			nullMembers = append(nullMembers, m)
		} else {
			nonNullMembers = append(nonNullMembers, m)
		}
	}
	return nullMembers, nonNullMembers
}
