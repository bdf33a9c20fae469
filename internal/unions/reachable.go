package unions

import "github.com/andrew24601/doofc/internal/types"

// ReachableClasses adds to out every class name reachable from t through
// fields, array/set element types, map value types, or union members —
// the dependency walk the validator uses to decide which classes need
// `_toJSON`/`fromJSON` emission (spec §4.5). out doubles as the visited
// set guarding against infinite recursion on self-referential or cyclic
// class graphs; a class already in out is not re-walked.
func ReachableClasses(t *types.Type, fields ClassFields, out map[string]bool) {
	if t == nil {
		return
	}
	switch t.Kind {
	case types.KindClass:
		if out[t.Name] {
			return
		}
		out[t.Name] = true
		fs, ok := fields(t.Name)
		if !ok {
			return
		}
		for _, f := range fs {
			ReachableClasses(f.Type, fields, out)
		}
	case types.KindArray, types.KindSet:
		ReachableClasses(t.Elem, fields, out)
	case types.KindMap:
		ReachableClasses(t.Value, fields, out)
	case types.KindUnion:
		for _, m := range t.Members {
			ReachableClasses(m, fields, out)
		}
	case types.KindNullable:
		ReachableClasses(t.NonNull, fields, out)
	}
}
