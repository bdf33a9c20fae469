package monomorph

import (
	"sort"

	"github.com/andrew24601/doofc/internal/ast"
	"github.com/andrew24601/doofc/internal/context"
	"github.com/andrew24601/doofc/internal/diagnostic"
	"github.com/andrew24601/doofc/internal/types"
)

// Instance is one collected (generic declaration, concrete type-argument
// tuple) pair.
type Instance struct {
	Decl        *ast.Node // the original generic FunctionDecl/ClassDecl
	TypeArgs    []*types.Type
	MangledName string
}

// Run walks every file in g, collects every generic instantiation,
// specializes each distinct one, rewrites every referring annotation and
// call/construction site to the mangled name, and removes the now-unused
// generic originals. progs maps FileContext.FileName to that file's parsed
// Program node. It must run after every file has been validated (so
// CallDispatch hints are populated) and before any backend runs.
func Run(g *context.GlobalContext, progs map[string]*ast.Node) []Instance {
	generics := collectGenericDecls(g)
	if len(generics) == 0 {
		return nil
	}

	instKeys := map[*ast.Node]map[string]*Instance{}
	order := map[*ast.Node][]string{}

	record := func(decl *ast.Node, targs []*types.Type) *Instance {
		if instKeys[decl] == nil {
			instKeys[decl] = map[string]*Instance{}
		}
		key := encodeTuple(targs)
		if existing, ok := instKeys[decl][key]; ok {
			return existing
		}
		inst := &Instance{Decl: decl, TypeArgs: targs, MangledName: Mangle(decl.Name, targs)}
		instKeys[decl][key] = inst
		order[decl] = append(order[decl], key)
		return inst
	}

	for _, fileName := range g.FileOrder {
		fc := g.Files[fileName]
		prog := progs[fileName]
		if prog == nil {
			continue
		}

		// Call-site instantiations: explicit type arguments on a call whose
		// resolved callee (per the validator's CallDispatch hint) is a
		// generic function or method. Calls are visited in source order (an
		// ast.Walk over prog, not a range over the CallDispatch map) so
		// instantiation order — and therefore emitted specialization order —
		// is deterministic across runs.
		ast.Walk(prog, func(call *ast.Node) {
			if call.Kind != ast.KindCall {
				return
			}
			dispatch, ok := fc.Hints.CallDispatch[call]
			if !ok || dispatch.Callee == nil || len(dispatch.Callee.TypeParams) == 0 {
				return
			}
			if len(call.ExplicitTypes) != len(dispatch.Callee.TypeParams) {
				return
			}
			record(dispatch.Callee, call.ExplicitTypes)
		})

		// Positional-object constructor instantiations: `Box<int>(5)`.
		ast.Walk(prog, func(n *ast.Node) {
			if n.Kind != ast.KindPositionalObject || len(n.ExplicitTypes) == 0 {
				return
			}
			decl, ok := generics[n.ClassName]
			if !ok || len(decl.TypeParams) != len(n.ExplicitTypes) {
				return
			}
			record(decl, n.ExplicitTypes)
		})

		// Type-annotation instantiations: any reachable `ClassName<Args>`
		// type reference naming a generic class.
		ast.Walk(prog, func(n *ast.Node) {
			collectFromType(n.ReturnType, generics, record)
			collectFromType(n.VarType, generics, record)
			collectFromType(n.LiteralType, generics, record)
			collectFromType(n.AliasTarget, generics, record)
			for _, p := range n.Params {
				collectFromType(p.Type, generics, record)
			}
			for _, f := range n.Fields {
				collectFromType(f.Type, generics, record)
			}
		})
	}

	var all []Instance
	specialized := map[*ast.Node][]*Instance{}
	for decl, keys := range instKeys {
		for _, key := range order[decl] {
			inst := keys[key]
			specializeDecl(inst)
			specialized[decl] = append(specialized[decl], inst)
			all = append(all, *inst)
		}
	}

	for _, fileName := range g.FileOrder {
		fc := g.Files[fileName]
		prog := progs[fileName]
		if prog == nil {
			continue
		}
		rewriteReferences(prog, fc, instKeys)
		replaceDeclsInPlace(prog, fc, specialized)
	}

	reportUnused(g, generics, instKeys)

	return all
}

// collectGenericDecls indexes every top-level generic function or class by name,
// across every file, so type-annotation and constructor sites (which carry
// only a bare name) can be matched back to their declaration.
func collectGenericDecls(g *context.GlobalContext) map[string]*ast.Node {
	out := map[string]*ast.Node{}
	for _, fileName := range g.FileOrder {
		fc := g.Files[fileName]
		for name, fn := range fc.Functions {
			if len(fn.Decl.TypeParams) > 0 {
				out[name] = fn.Decl
			}
		}
		for name, cls := range fc.Classes {
			if len(cls.Decl.TypeParams) > 0 {
				out[name] = cls.Decl
			}
		}
	}
	return out
}

func collectFromType(t *types.Type, generics map[string]*ast.Node, record func(*ast.Node, []*types.Type) *Instance) {
	if t == nil {
		return
	}
	switch t.Kind {
	case types.KindClass:
		if decl, ok := generics[t.Name]; ok && len(t.TypeArgs) > 0 && len(t.TypeArgs) == len(decl.TypeParams) && !anyContainsTypeParameter(t.TypeArgs) {
			record(decl, t.TypeArgs)
		}
		for _, a := range t.TypeArgs {
			collectFromType(a, generics, record)
		}
	case types.KindArray:
		collectFromType(t.Elem, generics, record)
	case types.KindMap:
		collectFromType(t.Key, generics, record)
		collectFromType(t.Value, generics, record)
	case types.KindSet:
		collectFromType(t.Elem, generics, record)
	case types.KindUnion:
		for _, m := range t.Members {
			collectFromType(m, generics, record)
		}
	case types.KindNullable:
		collectFromType(t.NonNull, generics, record)
	case types.KindFunction:
		for _, p := range t.Params {
			collectFromType(p, generics, record)
		}
		collectFromType(t.Return, generics, record)
	}
}

func anyContainsTypeParameter(ts []*types.Type) bool {
	for _, t := range ts {
		if types.ContainsTypeParameter(t) {
			return true
		}
	}
	return false
}

func encodeTuple(args []*types.Type) string {
	s := ""
	for _, a := range args {
		s += encodeTypeArg(a) + "|"
	}
	return s
}

// specializeDecl clones inst.Decl, substitutes every type-parameter
// occurrence in the clone's annotations with the bound concrete type, and
// renames the clone to the mangled name.
func specializeDecl(inst *Instance) {
	clone := ast.Clone(inst.Decl)
	clone.Name = inst.MangledName
	clone.TypeParams = nil

	bindings := make(map[string]*types.Type, len(inst.Decl.TypeParams))
	for i, tp := range inst.Decl.TypeParams {
		if i < len(inst.TypeArgs) {
			bindings[tp.Name] = inst.TypeArgs[i]
		}
	}

	ast.Walk(clone, func(n *ast.Node) {
		n.ReturnType = types.Substitute(n.ReturnType, bindings)
		n.VarType = types.Substitute(n.VarType, bindings)
		n.LiteralType = types.Substitute(n.LiteralType, bindings)
		n.AliasTarget = types.Substitute(n.AliasTarget, bindings)
		for i := range n.Params {
			n.Params[i].Type = types.Substitute(n.Params[i].Type, bindings)
		}
		for i := range n.Fields {
			n.Fields[i].Type = types.Substitute(n.Fields[i].Type, bindings)
		}
		for i := range n.ExplicitTypes {
			n.ExplicitTypes[i] = types.Substitute(n.ExplicitTypes[i], bindings)
		}
	})

	inst.Decl = clone // inst.Decl now points at the specialized copy for callers that read it back
}

// rewriteReferences rewrites every call/construction site and type
// annotation in prog that names an original generic declaration with a
// type-argument tuple that was collected, to the corresponding mangled
// name, clearing the now-redundant explicit type arguments.
func rewriteReferences(prog *ast.Node, fc *context.FileContext, instKeys map[*ast.Node]map[string]*Instance) {
	ast.Walk(prog, func(n *ast.Node) {
		if n.Kind == ast.KindCall && len(n.ExplicitTypes) > 0 {
			if dispatch, ok := fc.Hints.CallDispatch[n]; ok && dispatch.Callee != nil {
				if insts, ok := instKeys[originalOf(dispatch.Callee, instKeys)]; ok {
					if inst, ok := insts[encodeTuple(n.ExplicitTypes)]; ok {
						if n.Callee.Kind == ast.KindIdentifier {
							n.Callee.IdentName = inst.MangledName
						}
						n.ExplicitTypes = nil
					}
				}
			}
		}
		if n.Kind == ast.KindPositionalObject && len(n.ExplicitTypes) > 0 {
			for decl, insts := range instKeys {
				if decl.Name != n.ClassName {
					continue
				}
				if inst, ok := insts[encodeTuple(n.ExplicitTypes)]; ok {
					n.ClassName = inst.MangledName
					n.ExplicitTypes = nil
				}
			}
		}

		n.ReturnType = rewriteTypeRef(n.ReturnType, instKeys)
		n.VarType = rewriteTypeRef(n.VarType, instKeys)
		n.LiteralType = rewriteTypeRef(n.LiteralType, instKeys)
		n.AliasTarget = rewriteTypeRef(n.AliasTarget, instKeys)
		for i := range n.Params {
			n.Params[i].Type = rewriteTypeRef(n.Params[i].Type, instKeys)
		}
		for i := range n.Fields {
			n.Fields[i].Type = rewriteTypeRef(n.Fields[i].Type, instKeys)
		}
	})
}

// originalOf maps a callee decl (which, after an earlier specialization
// pass already ran, may itself BE a specialized copy) back to the key used
// in instKeys. In this single monomorphization pass decls are always
// originals at collection time, so this is the identity function; it
// exists as the one seam a future nested-generic pass would extend.
func originalOf(decl *ast.Node, instKeys map[*ast.Node]map[string]*Instance) *ast.Node {
	return decl
}

func rewriteTypeRef(t *types.Type, instKeys map[*ast.Node]map[string]*Instance) *types.Type {
	if t == nil {
		return nil
	}
	switch t.Kind {
	case types.KindClass:
		if len(t.TypeArgs) > 0 {
			for decl, insts := range instKeys {
				if decl.Name != t.Name {
					continue
				}
				if inst, ok := insts[encodeTuple(t.TypeArgs)]; ok {
					return types.Class(inst.MangledName, t.Readonly)
				}
			}
		}
		args := make([]*types.Type, len(t.TypeArgs))
		for i, a := range t.TypeArgs {
			args[i] = rewriteTypeRef(a, instKeys)
		}
		return &types.Type{Kind: types.KindClass, Name: t.Name, Readonly: t.Readonly, TypeArgs: args}
	case types.KindArray:
		return &types.Type{Kind: types.KindArray, Elem: rewriteTypeRef(t.Elem, instKeys), Length: t.Length}
	case types.KindMap:
		return &types.Type{Kind: types.KindMap, Key: rewriteTypeRef(t.Key, instKeys), Value: rewriteTypeRef(t.Value, instKeys)}
	case types.KindSet:
		return &types.Type{Kind: types.KindSet, Elem: rewriteTypeRef(t.Elem, instKeys)}
	case types.KindUnion:
		members := make([]*types.Type, len(t.Members))
		for i, m := range t.Members {
			members[i] = rewriteTypeRef(m, instKeys)
		}
		return &types.Type{Kind: types.KindUnion, Members: members}
	case types.KindNullable:
		return &types.Type{Kind: types.KindNullable, NonNull: rewriteTypeRef(t.NonNull, instKeys)}
	case types.KindFunction:
		params := make([]*types.Type, len(t.Params))
		for i, p := range t.Params {
			params[i] = rewriteTypeRef(p, instKeys)
		}
		return &types.Type{Kind: types.KindFunction, Params: params, Return: rewriteTypeRef(t.Return, instKeys), Concise: t.Concise, ParamNames: t.ParamNames}
	}
	return t
}

// replaceDeclsInPlace removes every original generic declaration from
// prog.Decls, inserting its specialized copies (if any) in their place. An
// instantiated original is also replaced in fc's symbol tables by its
// copies; an uninstantiated one stays in the symbol tables.
func replaceDeclsInPlace(prog *ast.Node, fc *context.FileContext, specialized map[*ast.Node][]*Instance) {
	var out []*ast.Node
	for _, d := range prog.Decls {
		insts, isGeneric := specialized[d]
		if !isGeneric {
			if d.Kind == ast.KindFunctionDecl || d.Kind == ast.KindClassDecl {
				if len(d.TypeParams) > 0 {
					// Generic with zero instantiations: drop silently;
					// reportUnused records its diagnostic after this pass.
					continue
				}
			}
			out = append(out, d)
			continue
		}
		delete(fc.Functions, d.Name)
		delete(fc.Classes, d.Name)
		for _, inst := range insts {
			out = append(out, inst.Decl)
			switch d.Kind {
			case ast.KindFunctionDecl:
				fc.Functions[inst.MangledName] = &context.FuncSymbol{Decl: inst.Decl, Type: specializedFuncType(inst.Decl)}
			case ast.KindClassDecl:
				fc.Classes[inst.MangledName] = &context.ClassSymbol{Decl: inst.Decl, Type: types.Class(inst.MangledName, false)}
			}
		}
	}
	prog.Decls = out
}

func specializedFuncType(decl *ast.Node) *types.Type {
	params := make([]*types.Type, len(decl.Params))
	names := make([]string, len(decl.Params))
	for i, p := range decl.Params {
		params[i] = p.Type
		names[i] = p.Name
	}
	ret := decl.ReturnType
	if ret == nil {
		ret = types.Void
	}
	t := types.Function(params, ret, false)
	t.ParamNames = names
	return t
}

// reportUnused records a *Generic Violation* diagnostic against every
// generic declaration that collected zero instantiations anywhere in the
// program: "a generic declaration with no concrete instantiations yields a
// diagnostic, not an emitted specialization".
func reportUnused(g *context.GlobalContext, generics map[string]*ast.Node, instKeys map[*ast.Node]map[string]*Instance) {
	names := make([]string, 0, len(generics))
	for name := range generics {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, fileName := range g.FileOrder {
		fc := g.Files[fileName]
		for _, name := range names {
			decl := generics[name]
			owner, ok := fc.Functions[name]
			ownerDecl := decl
			if ok {
				ownerDecl = owner.Decl
			} else if cls, ok := fc.Classes[name]; ok {
				ownerDecl = cls.Decl
			} else {
				continue
			}
			if ownerDecl != decl {
				continue
			}
			if len(instKeys[decl]) == 0 {
				fc.Diagnostics.Error(diagnostic.KindGenericViolation, fileName, decl.Pos.Line, decl.Pos.Column,
					"generic declaration "+name+" is never instantiated")
			}
		}
	}
}
