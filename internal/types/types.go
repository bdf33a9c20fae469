// Package types defines the structural type lattice shared by the validator
// and every backend: a closed tagged union of type variants plus the
// equality, assignability and narrowing-compatibility relations over them.
package types

import (
	"fmt"
	"sort"
	"strings"
)

// Kind classifies a Type's variant. The set is closed — every Type has
// exactly one Kind and the fields meaningful for it.
type Kind string

const (
	KindPrimitive     Kind = "primitive"
	KindArray         Kind = "array"
	KindMap           Kind = "map"
	KindSet           Kind = "set"
	KindClass         Kind = "class"
	KindEnum          Kind = "enum"
	KindUnion         Kind = "union"
	KindFunction      Kind = "function"
	KindNullable      Kind = "nullable"
	KindTypeAlias     Kind = "typeAlias"
	KindTypeParameter Kind = "typeParameter"
)

// Primitive names the built-in scalar types.
type Primitive string

const (
	PrimInt    Primitive = "int"
	PrimFloat  Primitive = "float"
	PrimDouble Primitive = "double"
	PrimBool   Primitive = "bool"
	PrimString Primitive = "string"
	PrimChar   Primitive = "char"
	PrimVoid   Primitive = "void"
	PrimNull   Primitive = "null"
)

// Type is a single node in the closed type lattice.
//
// Only the fields relevant to Kind are populated; the rest are zero: one
// struct, one discriminant, optional payload fields per variant.
type Type struct {
	Kind Kind

	// KindPrimitive
	Primitive Primitive

	// KindArray
	Elem   *Type
	Length *int // nil = dynamic length

	// KindMap
	Key   *Type
	Value *Type

	// KindSet uses Elem.

	// KindClass / KindEnum / KindTypeAlias
	Name     string
	TypeArgs []*Type
	Readonly bool // KindClass only: deep-immutability marker

	// KindUnion: ordered, deduplicated (see canonicalizeUnion).
	Members []*Type

	// KindFunction
	Params     []*Type
	Return     *Type
	Concise    bool // concise lambda form, no explicit braces
	ParamNames []string

	// KindNullable: sugar for union with null; NonNull is the single member.
	NonNull *Type

	// KindTypeParameter
	Constraint *Type // optional upper bound, nil if unconstrained
}

// Prim builds a primitive Type.
func Prim(p Primitive) *Type { return &Type{Kind: KindPrimitive, Primitive: p} }

// Void is the canonical void type.
var Void = Prim(PrimVoid)

// Null is the canonical null type.
var Null = Prim(PrimNull)

// Array builds a dynamic-length array type.
func Array(elem *Type) *Type { return &Type{Kind: KindArray, Elem: elem} }

// FixedArray builds a constant-length array type.
func FixedArray(elem *Type, n int) *Type {
	return &Type{Kind: KindArray, Elem: elem, Length: &n}
}

// Map builds a map type.
func Map(key, value *Type) *Type { return &Type{Kind: KindMap, Key: key, Value: value} }

// Set builds a set type.
func Set(elem *Type) *Type { return &Type{Kind: KindSet, Elem: elem} }

// Class builds a named class type, optionally generic.
func Class(name string, readonly bool, args ...*Type) *Type {
	return &Type{Kind: KindClass, Name: name, Readonly: readonly, TypeArgs: args}
}

// Enum builds a named enum type.
func Enum(name string) *Type { return &Type{Kind: KindEnum, Name: name} }

// TypeAlias builds an alias reference, eagerly resolved in most contexts.
func TypeAlias(name string, args ...*Type) *Type {
	return &Type{Kind: KindTypeAlias, Name: name, TypeArgs: args}
}

// TypeParam builds a generic binder type, used during monomorphization.
func TypeParam(name string, constraint *Type) *Type {
	return &Type{Kind: KindTypeParameter, Name: name, Constraint: constraint}
}

// Function builds a function type.
func Function(params []*Type, ret *Type, concise bool) *Type {
	return &Type{Kind: KindFunction, Params: params, Return: ret, Concise: concise}
}

// Nullable builds `T | null` in its canonical sugar form.
func Nullable(t *Type) *Type {
	if t.Kind == KindNullable {
		return t
	}
	return &Type{Kind: KindNullable, NonNull: t}
}

// Union builds a canonicalized union from members, collapsing, deduping and
// folding null into the nullable sugar form.
func Union(members ...*Type) *Type {
	return canonicalizeUnion(flattenUnion(members))
}

// flattenUnion inlines nested unions so `(A|B)|C` becomes `A|B|C` before
// canonicalization; the source language's parser never nests unions, but
// derived unions (e.g. narrowing arithmetic) can produce them.
func flattenUnion(members []*Type) []*Type {
	var out []*Type
	for _, m := range members {
		if m.Kind == KindUnion {
			out = append(out, flattenUnion(m.Members)...)
			continue
		}
		if m.Kind == KindNullable {
			out = append(out, Null, m.NonNull)
			continue
		}
		out = append(out, m)
	}
	return out
}

// canonicalizeUnion dedups, then applies the nullable/optional-primitive
// collapse rules of the type-mapping table.
func canonicalizeUnion(members []*Type) *Type {
	var deduped []*Type
	for _, m := range members {
		dup := false
		for _, d := range deduped {
			if Equal(d, m) {
				dup = true
				break
			}
		}
		if !dup {
			deduped = append(deduped, m)
		}
	}

	if len(deduped) == 1 {
		return deduped[0]
	}

	hasNull := false
	var rest []*Type
	for _, m := range deduped {
		if m.Kind == KindPrimitive && m.Primitive == PrimNull {
			hasNull = true
			continue
		}
		rest = append(rest, m)
	}

	if hasNull && len(rest) == 1 {
		return Nullable(rest[0])
	}

	result := &Type{Kind: KindUnion, Members: rest}
	if hasNull {
		return Nullable(&Type{Kind: KindUnion, Members: rest})
	}
	return result
}

// String renders a Type in the language's own surface syntax, used for
// diagnostics.
func (t *Type) String() string {
	if t == nil {
		return "<nil>"
	}
	switch t.Kind {
	case KindPrimitive:
		return string(t.Primitive)
	case KindArray:
		if t.Length != nil {
			return fmt.Sprintf("%s[%d]", t.Elem, *t.Length)
		}
		return t.Elem.String() + "[]"
	case KindMap:
		return fmt.Sprintf("Map<%s, %s>", t.Key, t.Value)
	case KindSet:
		return fmt.Sprintf("Set<%s>", t.Elem)
	case KindClass:
		s := t.Name
		if t.Readonly {
			s = "readonly " + s
		}
		if len(t.TypeArgs) > 0 {
			s += "<" + joinTypes(t.TypeArgs) + ">"
		}
		return s
	case KindEnum:
		return t.Name
	case KindTypeAlias:
		s := t.Name
		if len(t.TypeArgs) > 0 {
			s += "<" + joinTypes(t.TypeArgs) + ">"
		}
		return s
	case KindTypeParameter:
		return t.Name
	case KindUnion:
		var parts []string
		for _, m := range t.Members {
			parts = append(parts, m.String())
		}
		return strings.Join(parts, " | ")
	case KindFunction:
		var params []string
		for _, p := range t.Params {
			params = append(params, p.String())
		}
		return fmt.Sprintf("(%s) => %s", strings.Join(params, ", "), t.Return)
	case KindNullable:
		return t.NonNull.String() + " | null"
	default:
		return "<unknown>"
	}
}

func joinTypes(ts []*Type) string {
	parts := make([]string, len(ts))
	for i, t := range ts {
		parts[i] = t.String()
	}
	return strings.Join(parts, ", ")
}

// IsNullable reports whether t admits null, either directly (KindNullable)
// or as a union member.
func IsNullable(t *Type) bool {
	switch t.Kind {
	case KindNullable:
		return true
	case KindPrimitive:
		return t.Primitive == PrimNull
	case KindUnion:
		for _, m := range t.Members {
			if IsNullable(m) {
				return true
			}
		}
	}
	return false
}

// UnionMembers returns the normalized member list of t treated as a union:
// a KindUnion's Members, a KindNullable's [NonNull, null], or [t] otherwise.
func UnionMembers(t *Type) []*Type {
	switch t.Kind {
	case KindUnion:
		return t.Members
	case KindNullable:
		return []*Type{t.NonNull, Null}
	default:
		return []*Type{t}
	}
}

// IsReadonlyTainted reports whether t is a readonly collection/class whose
// mutating operations must be rejected.
func IsReadonlyTainted(t *Type) bool {
	switch t.Kind {
	case KindClass:
		return t.Readonly
	case KindArray, KindMap, KindSet:
		// Propagated taint is represented by wrapping element/value types in
		// a readonly class marker is not applicable to builtin collections;
		// callers track readonly-ness of collection *bindings* via the
		// context's variable table (see internal/context). Structural
		// collections themselves are tainted only through their element
		// type, checked with IsReadonlyTainted recursively by the caller.
		return false
	}
	return false
}

// PropagateReadonly returns a deep-readonly copy of t: the Readonly flag is
// set on every reachable class, and element/value/key types are likewise
// propagated: readonly propagates to all reachable collection element
// types.
func PropagateReadonly(t *Type) *Type {
	if t == nil {
		return nil
	}
	cp := *t
	switch t.Kind {
	case KindClass:
		cp.Readonly = true
	case KindArray:
		cp.Elem = PropagateReadonly(t.Elem)
	case KindMap:
		cp.Key = PropagateReadonly(t.Key)
		cp.Value = PropagateReadonly(t.Value)
	case KindSet:
		cp.Elem = PropagateReadonly(t.Elem)
	case KindUnion:
		cp.Members = make([]*Type, len(t.Members))
		for i, m := range t.Members {
			cp.Members[i] = PropagateReadonly(m)
		}
	case KindNullable:
		cp.NonNull = PropagateReadonly(t.NonNull)
	}
	return &cp
}

// SortedDiscriminantValues returns the keys of a discriminant-value mapping
// in deterministic order, used by backends that must emit branches in a
// stable order (e.g. C++ switch-like visit chains).
func SortedDiscriminantValues(mapping map[string]int) []string {
	keys := make([]string, 0, len(mapping))
	for k := range mapping {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
