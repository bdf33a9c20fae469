// Package unions implements discriminant detection, narrowing and
// object-literal disambiguation over unions; union canonicalization itself
// lives in package types (types.Union).
package unions

import (
	"fmt"

	"github.com/andrew24601/doofc/internal/ast"
	"github.com/andrew24601/doofc/internal/types"
)

// ClassFields resolves a class name to its field declarations, letting this
// package stay independent of how the caller stores class symbols.
type ClassFields func(className string) ([]ast.FieldDecl, bool)

// Discriminant describes the discriminant property of a discriminated
// union: a class field declared `const name = literal` shared by every
// member, with a unique value per member.
type Discriminant struct {
	Property string
	// Mapping maps the literal's string form to the member's index in the
	// member slice DetectDiscriminant was given.
	Mapping map[string]int
}

// LiteralKey canonicalizes a Go literal value (string, number, bool) into
// the string form Discriminant.Mapping keys on, so callers matching a
// switch-case literal against a discriminant's mapping use the same
// encoding DetectDiscriminant built it with.
func LiteralKey(v any) string {
	return fmt.Sprintf("%v", v)
}

// DetectDiscriminant finds a discriminant across members, or returns nil if
// none exists: members must all be class types with a common const field
// whose literal value differs in every member.
func DetectDiscriminant(members []*types.Type, fields ClassFields) *Discriminant {
	if len(members) < 2 {
		return nil
	}

	memberFields := make([][]ast.FieldDecl, len(members))
	for i, m := range members {
		if m.Kind != types.KindClass {
			return nil
		}
		fs, ok := fields(m.Name)
		if !ok {
			return nil
		}
		memberFields[i] = fs
	}

	// Candidate properties come from the first member's const fields.
	for _, candidate := range memberFields[0] {
		if !candidate.IsConst {
			continue
		}
		mapping := make(map[string]int)
		ok := true
		for i, fs := range memberFields {
			found := false
			for _, f := range fs {
				if f.Name != candidate.Name || !f.IsConst {
					continue
				}
				key := LiteralKey(f.ConstValue)
				if _, dup := mapping[key]; dup {
					ok = false
				} else {
					mapping[key] = i
				}
				found = true
				break
			}
			if !found {
				ok = false
			}
			if !ok {
				break
			}
		}
		if ok && len(mapping) == len(members) {
			return &Discriminant{Property: candidate.Name, Mapping: mapping}
		}
	}
	return nil
}

// HasCommonMember reports whether every member of the union has a property
// named prop with the same type, making `x.prop` a valid access without
// narrowing first.
func HasCommonMember(members []*types.Type, prop string, fields ClassFields) (*types.Type, bool) {
	var common *types.Type
	for _, m := range members {
		if m.Kind != types.KindClass {
			return nil, false
		}
		fs, ok := fields(m.Name)
		if !ok {
			return nil, false
		}
		var found *types.Type
		for _, f := range fs {
			if f.Name == prop {
				found = f.Type
				if found == nil && f.IsConst {
					// An untyped `const name = literal` field has its literal's type.
					switch f.ConstValue.(type) {
					case string:
						found = types.Prim(types.PrimString)
					case bool:
						found = types.Prim(types.PrimBool)
					case float64, float32:
						found = types.Prim(types.PrimDouble)
					case int, int64:
						found = types.Prim(types.PrimInt)
					}
				}
				break
			}
		}
		if found == nil {
			return nil, false
		}
		if common == nil {
			common = found
			continue
		}
		if !types.Equal(common, found) {
			return nil, false
		}
	}
	return common, common != nil
}
