package types

// Substitute returns a copy of t with every KindTypeParameter whose Name is
// a key of bindings replaced by the bound concrete type. Used by the
// monomorphizer to rewrite a generic declaration's annotations into a
// specialized copy. Composite types are copied structurally even when
// nothing in them is substituted; primitive, enum and unbound
// type-parameter nodes, and the bound types themselves, are returned
// unchanged and so are shared with t and bindings.
func Substitute(t *Type, bindings map[string]*Type) *Type {
	if t == nil {
		return nil
	}
	switch t.Kind {
	case KindTypeParameter:
		if bound, ok := bindings[t.Name]; ok {
			return bound
		}
		return t
	case KindPrimitive:
		return t
	case KindArray:
		return &Type{Kind: KindArray, Elem: Substitute(t.Elem, bindings), Length: t.Length}
	case KindMap:
		return &Type{Kind: KindMap, Key: Substitute(t.Key, bindings), Value: Substitute(t.Value, bindings)}
	case KindSet:
		return &Type{Kind: KindSet, Elem: Substitute(t.Elem, bindings)}
	case KindClass:
		args := make([]*Type, len(t.TypeArgs))
		for i, a := range t.TypeArgs {
			args[i] = Substitute(a, bindings)
		}
		return &Type{Kind: KindClass, Name: t.Name, Readonly: t.Readonly, TypeArgs: args}
	case KindEnum:
		return t
	case KindTypeAlias:
		args := make([]*Type, len(t.TypeArgs))
		for i, a := range t.TypeArgs {
			args[i] = Substitute(a, bindings)
		}
		return &Type{Kind: KindTypeAlias, Name: t.Name, TypeArgs: args}
	case KindUnion:
		members := make([]*Type, len(t.Members))
		for i, m := range t.Members {
			members[i] = Substitute(m, bindings)
		}
		return &Type{Kind: KindUnion, Members: members}
	case KindFunction:
		params := make([]*Type, len(t.Params))
		for i, p := range t.Params {
			params[i] = Substitute(p, bindings)
		}
		return &Type{Kind: KindFunction, Params: params, Return: Substitute(t.Return, bindings), Concise: t.Concise, ParamNames: t.ParamNames}
	case KindNullable:
		return &Type{Kind: KindNullable, NonNull: Substitute(t.NonNull, bindings)}
	}
	return t
}

// ContainsTypeParameter reports whether t references any type parameter,
// directly or through a reachable component — used to tell a fully
// concrete type-argument tuple (eligible for monomorphization) from one
// that still depends on an enclosing generic binder.
func ContainsTypeParameter(t *Type) bool {
	if t == nil {
		return false
	}
	switch t.Kind {
	case KindTypeParameter:
		return true
	case KindArray, KindSet:
		return ContainsTypeParameter(t.Elem)
	case KindMap:
		return ContainsTypeParameter(t.Key) || ContainsTypeParameter(t.Value)
	case KindClass, KindTypeAlias:
		for _, a := range t.TypeArgs {
			if ContainsTypeParameter(a) {
				return true
			}
		}
		return false
	case KindUnion:
		for _, m := range t.Members {
			if ContainsTypeParameter(m) {
				return true
			}
		}
		return false
	case KindFunction:
		for _, p := range t.Params {
			if ContainsTypeParameter(p) {
				return true
			}
		}
		return ContainsTypeParameter(t.Return)
	case KindNullable:
		return ContainsTypeParameter(t.NonNull)
	}
	return false
}
