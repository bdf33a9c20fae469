package validator

import (
	"github.com/andrew24601/doofc/internal/ast"
	"github.com/andrew24601/doofc/internal/context"
	"github.com/andrew24601/doofc/internal/diagnostic"
	"github.com/andrew24601/doofc/internal/types"
	"github.com/andrew24601/doofc/internal/unions"
)

// condNarrowing is the flow-sensitive narrowing a boolean condition's
// top-level shape produces: the path it narrows, and the
// then/else member subsets that path is restricted to within each branch.
type condNarrowing struct {
	key   string
	thenM []*types.Type
	elseM []*types.Type
}

// deriveCondNarrowing type-checks cond and, if its top-level shape is one
// of the three narrowing forms (`x is T`, a null check, or discriminant
// equality on a member access), returns the resulting narrowing. Returns
// ok=false for any other condition shape, in which case the caller is
// still responsible for type-checking cond itself.
func (v *Validator) deriveCondNarrowing(cond *ast.Node) (condNarrowing, bool) {
	if cond == nil || cond.Kind != ast.KindBinary {
		return condNarrowing{}, false
	}

	switch cond.BinOp {
	case ast.OpIs:
		staticType, _ := v.checkExpr(cond.Left, nil)
		target := cond.Right.LiteralType
		key, haveKey := narrowKey(cond.Left)
		if target == nil {
			v.File.Diagnostics.Internal(v.File.FileName, cond.Pos.Line, cond.Pos.Column, "`is` expression missing target type")
			return condNarrowing{}, false
		}
		if !types.NarrowingCompatible(staticType, target) {
			v.errorf(cond, diagnostic.KindNarrowingViolation, "%s is never a member of %s", target, staticType)
			return condNarrowing{}, false
		}
		thenM, elseM := unions.NarrowIs(types.UnionMembers(staticType), target)
		v.File.Hints.Narrowing[cond.Left] = &context.Narrowing{Members: thenM}
		if !haveKey {
			return condNarrowing{}, false
		}
		return condNarrowing{key: key, thenM: thenM, elseM: elseM}, true

	case ast.OpEq, ast.OpNeq:
		subject, other := cond.Left, cond.Right
		if isNullLiteral(subject) {
			subject, other = cond.Right, cond.Left
		}
		if isNullLiteral(other) {
			staticType, _ := v.checkExpr(subject, nil)
			nullM, nonNullM := unions.NarrowNullCheck(staticType)
			thenM, elseM := nullM, nonNullM
			if cond.BinOp == ast.OpNeq {
				thenM, elseM = nonNullM, nullM
			}
			v.File.Hints.Narrowing[subject] = &context.Narrowing{Members: thenM}
			key, haveKey := narrowKey(subject)
			if !haveKey {
				return condNarrowing{}, false
			}
			return condNarrowing{key: key, thenM: thenM, elseM: elseM}, true
		}

		// Discriminant equality: one side is a non-computed member access,
		// the other a literal.
		member, lit := subject, other
		if member.Kind != ast.KindMember {
			member, lit = other, subject
		}
		if member.Kind != ast.KindMember || member.Computed || lit.Kind != ast.KindLiteral {
			v.checkExpr(cond.Left, nil)
			v.checkExpr(cond.Right, nil)
			return condNarrowing{}, false
		}
		objType, _ := v.checkExpr(member.Object, nil)
		v.checkExpr(member, nil)
		v.checkExpr(lit, nil)
		if objType.Kind != types.KindUnion {
			return condNarrowing{}, false
		}
		disc := unions.DetectDiscriminant(objType.Members, v.classFieldsLookup())
		if disc == nil || disc.Property != member.Property {
			return condNarrowing{}, false
		}
		key, haveKey := narrowKey(member.Object)
		if !haveKey {
			return condNarrowing{}, false
		}
		thenM, elseM := unions.NarrowEquality(objType.Members, disc, lit.LiteralValue)
		if cond.BinOp == ast.OpNeq {
			thenM, elseM = elseM, thenM
		}
		v.File.Hints.Narrowing[member.Object] = &context.Narrowing{Members: thenM}
		return condNarrowing{key: key, thenM: thenM, elseM: elseM}, true
	}
	return condNarrowing{}, false
}

// narrowKey derives a stable path string identifying an identifier or
// non-computed member-access chain, used as the key for flow-sensitive
// narrowing. Computed accesses (`a[i]`) have no stable key.
func narrowKey(n *ast.Node) (string, bool) {
	switch n.Kind {
	case ast.KindIdentifier:
		return n.IdentName, true
	case ast.KindMember:
		if n.Computed {
			return "", false
		}
		base, ok := narrowKey(n.Object)
		if !ok {
			return "", false
		}
		return base + "." + n.Property, true
	}
	return "", false
}

// pushNarrow installs members as the active narrowing for key, returning
// enough state for restoreNarrow to undo it.
func (v *Validator) pushNarrow(key string, members []*types.Type) (prev []*types.Type, had bool) {
	if key == "" {
		return nil, false
	}
	if v.narrowed == nil {
		v.narrowed = make(map[string][]*types.Type)
	}
	prev, had = v.narrowed[key]
	v.narrowed[key] = members
	return prev, had
}

func (v *Validator) restoreNarrow(key string, prev []*types.Type, had bool) {
	if key == "" {
		return
	}
	if had {
		v.narrowed[key] = prev
	} else {
		delete(v.narrowed, key)
	}
}

// narrowedType returns the active narrowed type for n if n's path is
// currently restricted, recording a per-occurrence codegen hint; otherwise
// it returns static unchanged.
func (v *Validator) narrowedType(n *ast.Node, static *types.Type) *types.Type {
	key, ok := narrowKey(n)
	if !ok {
		return static
	}
	members, ok := v.narrowed[key]
	if !ok {
		return static
	}
	v.File.Hints.Narrowing[n] = &context.Narrowing{Members: members}
	if len(members) == 1 {
		return members[0]
	}
	return &types.Type{Kind: types.KindUnion, Members: members}
}
