// Package cppgen is the C++ backend (spec §4.5): it lowers a validated
// program to a header/source pair per module, performing ownership
// lowering (shared pointers, factory-wired constructors), union
// access lowering (visit/get), named-argument reordering, and reachability-
// driven JSON serializer synthesis. Class-typed values and fields are always
// std::shared_ptr; no field is lowered to std::weak_ptr. Grounded on the
// teacher's internal/codegen/emitter.go and internal/codegen/serialize.go,
// retargeted from JS string concatenation to C++ std::ostream/variant code.
package cppgen

import (
	"fmt"

	"github.com/andrew24601/doofc/internal/types"
)

// MapType renders t as the C++ type used in a field, local, or return-type
// position (§4.5's mapping table).
func MapType(t *types.Type) string {
	if t == nil {
		return "void"
	}
	switch t.Kind {
	case types.KindPrimitive:
		return mapPrimitive(t.Primitive)
	case types.KindArray:
		elem := MapType(t.Elem)
		if t.Length != nil {
			return fmt.Sprintf("std::array<%s, %d>", elem, *t.Length)
		}
		return fmt.Sprintf("std::shared_ptr<std::vector<%s>>", elem)
	case types.KindMap:
		return fmt.Sprintf("std::shared_ptr<std::map<%s, %s>>", MapType(t.Key), MapType(t.Value))
	case types.KindSet:
		return fmt.Sprintf("std::shared_ptr<std::unordered_set<%s>>", MapType(t.Elem))
	case types.KindClass:
		return fmt.Sprintf("std::shared_ptr<%s>", t.Name)
	case types.KindEnum:
		return t.Name
	case types.KindTypeAlias:
		return t.Name
	case types.KindNullable:
		return mapNullable(t.NonNull)
	case types.KindUnion:
		return mapUnion(t)
	case types.KindFunction:
		return mapFunction(t)
	}
	return "void"
}

func mapPrimitive(p types.Primitive) string {
	switch p {
	case types.PrimInt:
		return "int"
	case types.PrimFloat:
		return "float"
	case types.PrimDouble:
		return "double"
	case types.PrimBool:
		return "bool"
	case types.PrimString:
		return "std::string"
	case types.PrimChar:
		return "char"
	case types.PrimVoid:
		return "void"
	case types.PrimNull:
		return "std::nullptr_t"
	}
	return "void"
}

func mapNullable(nonNull *types.Type) string {
	if nonNull.Kind == types.KindClass {
		return fmt.Sprintf("std::shared_ptr<%s>", nonNull.Name)
	}
	if nonNull.Kind == types.KindUnion {
		return fmt.Sprintf("std::optional<%s>", mapUnion(nonNull))
	}
	return fmt.Sprintf("std::optional<%s>", MapType(nonNull))
}

func mapUnion(t *types.Type) string {
	members := make([]string, len(t.Members))
	for i, m := range t.Members {
		members[i] = variantMember(m)
	}
	return "std::variant<" + joinComma(members) + ">"
}

// variantMember renders a single union member as it appears inside
// std::variant<...>: classes stay shared_ptr, everything else uses the
// ordinary mapping.
func variantMember(t *types.Type) string {
	if t.Kind == types.KindClass {
		return fmt.Sprintf("std::shared_ptr<%s>", t.Name)
	}
	return MapType(t)
}

func mapFunction(t *types.Type) string {
	params := make([]string, len(t.Params))
	for i, p := range t.Params {
		params[i] = MapType(p)
	}
	return fmt.Sprintf("std::function<%s(%s)>", MapType(t.Return), joinComma(params))
}

// ParamType renders t as used in a parameter position: strings and classes
// pass by const reference or shared_ptr-by-value (shared_ptr copies are
// already reference-counted, so by-value is the idiomatic form); only
// std::string benefits from the extra const& to skip a copy.
func ParamType(t *types.Type) string {
	if t != nil && t.Kind == types.KindPrimitive && t.Primitive == types.PrimString {
		return "const std::string&"
	}
	return MapType(t)
}

func joinComma(ss []string) string {
	out := ""
	for i, s := range ss {
		if i > 0 {
			out += ", "
		}
		out += s
	}
	return out
}

// IsSingleClassNullable reports whether t is `C | null` for exactly one
// class C, the pointer-null lowering case.
func IsSingleClassNullable(t *types.Type) (string, bool) {
	if t == nil {
		return "", false
	}
	if t.Kind == types.KindNullable && t.NonNull.Kind == types.KindClass {
		return t.NonNull.Name, true
	}
	return "", false
}
