package cppgen

import (
	"fmt"

	"github.com/andrew24601/doofc/internal/ast"
	"github.com/andrew24601/doofc/internal/emit"
)

// ClassGen emits one class's header declaration and source-file method
// bodies. Every class derives from std::enable_shared_from_this so a
// method can hand out a shared_ptr to itself (spec §4.5 ownership rule 1).
type ClassGen struct {
	stmtGen
}

func NewClassGen(g stmtGen) *ClassGen { return &ClassGen{stmtGen: g} }

// DeclareHeader writes the class body (fields, constructor/factory
// signatures, method signatures) onto a header emitter. jsonPrint/jsonFrom
// report whether this class needs _toJSON/fromJSON declared.
func (g *ClassGen) DeclareHeader(e *emit.Emitter, decl *ast.Node, jsonPrint, jsonFrom bool) {
	bases := "public std::enable_shared_from_this<" + decl.Name + ">"
	for _, h := range decl.Heritage {
		bases += ", public " + h
	}
	e.Block("class %s : %s", decl.Name, bases)
	e.Dedent()
	e.Line("public:")
	e.Indent()

	if len(decl.Constructors) > 0 {
		ctor := decl.Constructors[0]
		e.Line("static std::shared_ptr<%s> _new(%s);", decl.Name, paramList(ctor.Params))
		e.Line("%s(ctor_tag, %s);", decl.Name, paramList(ctor.Params))
	} else {
		e.Line("%s() = default;", decl.Name)
	}

	for _, m := range decl.Methods {
		ret := "void"
		if m.ReturnType != nil {
			ret = MapType(m.ReturnType)
		}
		e.Line("%s %s(%s);", ret, m.Name, paramList(m.Params))
	}

	if jsonPrint {
		e.Line("std::string _toJSON() const;")
	}
	if jsonFrom {
		e.Line("static std::shared_ptr<%s> fromJSON(const std::string& text);", decl.Name)
		e.Line("static std::shared_ptr<%s> _fromJSON(const doof_json_value& v);", decl.Name)
	}

	if len(decl.Constructors) > 0 {
		e.Dedent()
		e.Line("private:")
		e.Indent()
		e.Line("struct ctor_tag {};")
	}
	for _, f := range decl.Fields {
		e.Line("%s %s;", MapType(f.Type), f.Name)
	}

	e.EndBlockSuffix(";")
}

// DefineSource writes the class's constructor/factory and method bodies
// onto a source emitter (spec §4.5 ownership rule 3: the real constructor
// is gated behind a ctor_tag so every heap allocation routes through
// make_shared inside _new).
func (g *ClassGen) DefineSource(e *emit.Emitter, decl *ast.Node) {
	if len(decl.Constructors) > 0 {
		ctor := decl.Constructors[0]
		e.Block("std::shared_ptr<%s> %s::_new(%s)", decl.Name, decl.Name, paramList(ctor.Params))
		e.Line("auto self = std::make_shared<%s>(ctor_tag{}, %s);", decl.Name, argNames(ctor.Params))
		if ctor.Body != nil {
			g.Stmt(e, ctor.Body)
		}
		e.Line("return self;")
		e.EndBlock()
		e.Blank()

		e.Block("%s::%s(ctor_tag, %s)", decl.Name, decl.Name, paramList(ctor.Params))
		e.EndBlock()
		e.Blank()
	}

	for _, m := range decl.Methods {
		ret := "void"
		if m.ReturnType != nil {
			ret = MapType(m.ReturnType)
		}
		e.Block("%s %s::%s(%s)", ret, decl.Name, m.Name, paramList(m.Params))
		if m.Body != nil {
			g.Stmt(e, m.Body)
		}
		e.EndBlock()
		e.Blank()
	}
}

func paramList(params []ast.ParamDecl) string {
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = fmt.Sprintf("%s %s", ParamType(p.Type), p.Name)
	}
	return joinComma(parts)
}

func argNames(params []ast.ParamDecl) string {
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = p.Name
	}
	return joinComma(parts)
}
