package vmgen

import (
	"fmt"

	"github.com/andrew24601/doofc/internal/ast"
	"github.com/andrew24601/doofc/internal/types"
)

// ExternGlue is one extern class's registration record: the static
// dispatch table the VM's class table loads from, and the per-method
// argument marshaling plan.
type ExternGlue struct {
	ClassName string       `json:"className"`
	Methods   []ExternMethod `json:"methods"`
}

// ExternMethod describes one static entry point and how its arguments are
// validated and unwrapped before the host call, and how its return value
// is wrapped back into a VM register.
type ExternMethod struct {
	Name    string       `json:"name"`
	Params  []ExternParam `json:"params"`
	Returns string       `json:"returns"` // "void" | "value" | "handle"
}

// ExternParam is one marshaled argument: its host-facing kind and whether
// it is optional (nullable source type).
type ExternParam struct {
	Name     string `json:"name"`
	Kind     string `json:"kind"` // "int" | "float" | "double" | "bool" | "string" | "handle"
	Optional bool   `json:"optional"`
}

// BuildExternGlue walks an extern class declaration and produces its glue
// descriptor, rejecting any parameter whose type the VM boundary cannot
// marshal (container types: array, map, set — spec §4.7).
func BuildExternGlue(decl *ast.Node) (*ExternGlue, error) {
	g := &ExternGlue{ClassName: decl.Name}
	for _, m := range decl.Methods {
		if m.Body != nil {
			return nil, fmt.Errorf("extern method %s.%s must not declare a body", decl.Name, m.Name)
		}
		em := ExternMethod{Name: m.Name, Returns: externReturnKind(m.ReturnType)}
		for _, p := range m.Params {
			kind, optional, err := externParamKind(p.Type)
			if err != nil {
				return nil, fmt.Errorf("extern method %s.%s: parameter %s: %w", decl.Name, m.Name, p.Name, err)
			}
			em.Params = append(em.Params, ExternParam{Name: p.Name, Kind: kind, Optional: optional})
		}
		g.Methods = append(g.Methods, em)
	}
	return g, nil
}

func externReturnKind(t *types.Type) string {
	if t == nil || (t.Kind == types.KindPrimitive && t.Primitive == types.PrimVoid) {
		return "void"
	}
	if t.Kind == types.KindClass {
		return "handle"
	}
	return "value"
}

// externParamKind classifies a parameter type for the marshaling plan,
// unwrapping a single level of nullable-ness into the Optional flag.
// Array/map/set parameters are rejected outright: the extern boundary has
// no wire representation for them.
func externParamKind(t *types.Type) (kind string, optional bool, err error) {
	if t == nil {
		return "", false, fmt.Errorf("missing type")
	}
	if t.Kind == types.KindNullable {
		k, _, err := externParamKind(t.NonNull)
		return k, true, err
	}
	switch t.Kind {
	case types.KindPrimitive:
		switch t.Primitive {
		case types.PrimInt:
			return "int", false, nil
		case types.PrimFloat:
			return "float", false, nil
		case types.PrimDouble:
			return "double", false, nil
		case types.PrimBool:
			return "bool", false, nil
		case types.PrimString, types.PrimChar:
			return "string", false, nil
		}
	case types.KindClass:
		return "handle", false, nil
	case types.KindArray, types.KindMap, types.KindSet:
		return "", false, fmt.Errorf("container type %s is not supported at the extern boundary", t.Kind)
	}
	return "", false, fmt.Errorf("unsupported extern parameter type %s", t.Kind)
}
