package jsgen

import (
	"fmt"

	"github.com/andrew24601/doofc/internal/ast"
	"github.com/andrew24601/doofc/internal/emit"
	"github.com/andrew24601/doofc/internal/types"
)

// EmitToJSON writes a `toJSON()` method returning a plain object: JS's
// JSON.stringify calls toJSON automatically on anything that defines it,
// recursing into nested class instances for free, so unlike the C++
// backend this needs no reachability-driven method body beyond what the
// standard library already does per field.
func EmitToJSON(e *emit.Emitter, decl *ast.Node) {
	e.Block("toJSON()")
	e.Block("return")
	for i, f := range decl.Fields {
		sep := ","
		if i == len(decl.Fields)-1 {
			sep = ""
		}
		e.Line("%s: %s%s", f.Name, toJSONExpr("this."+f.Name, f.Type), sep)
	}
	e.EndBlockSuffix(";")
	e.EndBlock()
}

func toJSONExpr(accessor string, t *types.Type) string {
	if t != nil && t.Kind == types.KindSet {
		return fmt.Sprintf("Array.from(%s)", accessor)
	}
	if t != nil && t.Kind == types.KindMap {
		return fmt.Sprintf("Object.fromEntries(%s)", accessor)
	}
	return accessor
}

// EmitFromJSON writes the static `fromJSON`/`_fromObject` pair, recursing
// into class-typed fields via that field's own class's `_fromObject`.
func EmitFromJSON(e *emit.Emitter, decl *ast.Node) {
	e.Block("static fromJSON(text)")
	e.Line("return %s._fromObject(JSON.parse(text));", decl.Name)
	e.EndBlock()
	e.Blank()
	e.Block("static _fromObject(obj)")
	args := make([]string, len(decl.Fields))
	for i, f := range decl.Fields {
		args[i] = fromJSONExpr(fmt.Sprintf("obj.%s", f.Name), f.Type)
	}
	e.Line("return new %s(%s);", decl.Name, joinComma(args))
	e.EndBlock()
}

func fromJSONExpr(accessor string, t *types.Type) string {
	if t == nil {
		return accessor
	}
	switch t.Kind {
	case types.KindClass:
		return fmt.Sprintf("%s._fromObject(%s)", t.Name, accessor)
	case types.KindArray:
		if t.Elem != nil && t.Elem.Kind == types.KindClass {
			return fmt.Sprintf("%s.map(_e => %s._fromObject(_e))", accessor, t.Elem.Name)
		}
		return accessor
	case types.KindSet:
		return fmt.Sprintf("new Set(%s)", accessor)
	case types.KindMap:
		return fmt.Sprintf("new Map(Object.entries(%s))", accessor)
	}
	return accessor
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
