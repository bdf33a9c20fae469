package vmgen

import (
	"fmt"

	"github.com/andrew24601/doofc/internal/ast"
	"github.com/andrew24601/doofc/internal/context"
)

// Generate lowers every file in fileOrder to one bytecode Container: a
// shared field/static layout across the whole program (so cross-file
// field access agrees on indices), one FunctionBytecode per free function
// and per method, and one ExternGlue per extern class actually referenced
// from any file's CodegenHints.ExternDeps.
func Generate(progs map[string]*ast.Node, fcs map[string]*context.FileContext, fileOrder []string) (*Container, error) {
	layout := BuildLayout(progs, fileOrder)
	c := &Container{}

	externNames := map[string]bool{}
	for _, fname := range fileOrder {
		if fc := fcs[fname]; fc != nil {
			for name := range fc.Hints.ExternDeps {
				externNames[name] = true
			}
		}
	}

	for _, fname := range fileOrder {
		prog := progs[fname]
		fc := fcs[fname]
		if prog == nil {
			continue
		}
		for _, d := range prog.Decls {
			switch d.Kind {
			case ast.KindFunctionDecl:
				g := NewFuncGen(fc, layout, "", d.Params, false)
				g.CompileBody(d.Body)
				c.Functions = append(c.Functions, NewFunctionBytecode(d.Name, "", false, len(d.Params), g))

			case ast.KindClassDecl:
				c.Classes = append(c.Classes, classBytecode(d, layout))
				for _, ctor := range d.Constructors {
					g := NewFuncGen(fc, layout, d.Name, ctor.Params, true)
					g.CompileBody(ctor.Body)
					c.Functions = append(c.Functions, NewFunctionBytecode("_init", d.Name, true, len(ctor.Params), g))
				}
				for _, m := range d.Methods {
					if m.Body == nil {
						continue
					}
					g := NewFuncGen(fc, layout, d.Name, m.Params, true)
					g.CompileBody(m.Body)
					c.Functions = append(c.Functions, NewFunctionBytecode(m.Name, d.Name, true, len(m.Params), g))
				}

			case ast.KindExternClass:
				if !externNames[d.Name] {
					continue
				}
				glue, err := BuildExternGlue(d)
				if err != nil {
					return nil, fmt.Errorf("%s: %w", fname, err)
				}
				c.Externs = append(c.Externs, *glue)
			}
		}
	}

	return c, nil
}

func classBytecode(d *ast.Node, layout *ClassLayout) ClassBytecode {
	cb := ClassBytecode{Name: d.Name}
	for _, f := range d.Fields {
		cb.Fields = append(cb.Fields, f.Name)
		if f.IsConst {
			if cb.Statics == nil {
				cb.Statics = make(map[string]int)
			}
			cb.Statics[f.Name] = layout.StaticIndex[d.Name+"."+f.Name]
		}
	}
	return cb
}
