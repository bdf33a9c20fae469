// Package monomorph implements generic instantiation collection,
// specialization, and AST/context rewrite (spec §4.4): every distinct
// (generic declaration, concrete type-argument tuple) pair appearing
// anywhere across the program is collected once, specialized into exactly
// one concrete copy, and every referring annotation, call site, and class
// reference is rewritten to the specialized, mangled name.
package monomorph

import (
	"fmt"
	"strings"

	"github.com/zeebo/xxh3"

	"github.com/andrew24601/doofc/internal/types"
)

// maxEncodedLen caps the literal type-argument encoding folded into a
// mangled name; beyond it (deeply nested generics) the encoding is hashed
// instead with xxh3, so mangled identifiers stay bounded while remaining
// stable across runs.
const maxEncodedLen = 80

// Mangle produces a declaration's specialized name: the original name plus
// a stable encoding of each type argument, e.g. "Box__primitive_int",
// "identity__class_Widget".
func Mangle(base string, args []*types.Type) string {
	if len(args) == 0 {
		return base
	}
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = encodeTypeArg(a)
	}
	encoded := strings.Join(parts, "_")
	if len(encoded) <= maxEncodedLen {
		return base + "__" + encoded
	}
	sum := xxh3.HashString(encoded)
	return fmt.Sprintf("%s__h%016x", base, sum)
}

func encodeTypeArg(t *types.Type) string {
	if t == nil {
		return "void"
	}
	switch t.Kind {
	case types.KindPrimitive:
		return "primitive_" + string(t.Primitive)
	case types.KindClass:
		if len(t.TypeArgs) == 0 {
			return "class_" + t.Name
		}
		sub := make([]string, len(t.TypeArgs))
		for i, a := range t.TypeArgs {
			sub[i] = encodeTypeArg(a)
		}
		return "class_" + t.Name + "_" + strings.Join(sub, "_")
	case types.KindEnum:
		return "enum_" + t.Name
	case types.KindArray:
		if t.Length != nil {
			return fmt.Sprintf("fixedarray%d_%s", *t.Length, encodeTypeArg(t.Elem))
		}
		return "array_" + encodeTypeArg(t.Elem)
	case types.KindMap:
		return "map_" + encodeTypeArg(t.Key) + "_" + encodeTypeArg(t.Value)
	case types.KindSet:
		return "set_" + encodeTypeArg(t.Elem)
	case types.KindNullable:
		return "nullable_" + encodeTypeArg(t.NonNull)
	case types.KindUnion:
		sub := make([]string, len(t.Members))
		for i, m := range t.Members {
			sub[i] = encodeTypeArg(m)
		}
		return "union_" + strings.Join(sub, "_")
	default:
		return "t_" + t.String()
	}
}
