package jsgen

import (
	"strings"

	"github.com/andrew24601/doofc/internal/ast"
	"github.com/andrew24601/doofc/internal/emit"
)

// ClassGen emits one ES class: a constructor (the declared constructor's
// params, each assigned to the same-named field, then its body; or, with no
// declared constructor, one positional param per field in declaration
// order; none when the class has neither), plus one method per declared
// method. `this` needs no lowering
// the way C++'s shared_from_this does (spec §4.6: "this passes unchanged").
type ClassGen struct {
	stmtGen
}

func (g *ClassGen) Define(e *emit.Emitter, decl *ast.Node, jsonPrint, jsonFrom bool) {
	heritage := ""
	if len(decl.Heritage) > 0 {
		heritage = " extends " + decl.Heritage[0]
	}
	e.Block("class %s%s", decl.Name, heritage)

	if len(decl.Constructors) > 0 {
		ctor := decl.Constructors[0]
		params := make([]string, len(ctor.Params))
		for i, p := range ctor.Params {
			params[i] = p.Name
		}
		e.Block("constructor(%s)", strings.Join(params, ", "))
		for _, p := range ctor.Params {
			e.Line("this.%s = %s;", p.Name, p.Name)
		}
		if ctor.Body != nil {
			g.Stmt(e, ctor.Body)
		}
		e.EndBlock()
	} else if len(decl.Fields) > 0 {
		names := make([]string, len(decl.Fields))
		for i, f := range decl.Fields {
			names[i] = f.Name
		}
		e.Block("constructor(%s)", strings.Join(names, ", "))
		for _, f := range decl.Fields {
			e.Line("this.%s = %s;", f.Name, f.Name)
		}
		e.EndBlock()
	}

	for _, m := range decl.Methods {
		params := make([]string, len(m.Params))
		for i, p := range m.Params {
			params[i] = p.Name
		}
		e.Block("%s(%s)", m.Name, strings.Join(params, ", "))
		if m.Body != nil {
			g.Stmt(e, m.Body)
		}
		e.EndBlock()
	}

	if jsonPrint {
		EmitToJSON(e, decl)
	}
	if jsonFrom {
		EmitFromJSON(e, decl)
	}

	e.EndBlock()
}
