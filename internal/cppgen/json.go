package cppgen

import (
	"fmt"

	"github.com/andrew24601/doofc/internal/ast"
	"github.com/andrew24601/doofc/internal/emit"
	"github.com/andrew24601/doofc/internal/types"
)

// ClassLookup resolves a class name to its declaration, searching the
// local file first and then every imported module, the same shape
// internal/unions.ClassFields uses.
type ClassLookup func(name string) (*ast.Node, bool)

// EmitToJSON writes class's _toJSON method body plus the operator<<
// overload onto e. Only classes the validator marked in jsonPrintTypes
// receive this call (spec §4.5's reachability-driven marking); recursion
// through self-referential or cyclic fields never inlines a nested class's
// body, it calls that class's own _toJSON method, so no recursion guard is
// needed here the way the teacher's inlining JS serializer requires one.
func EmitToJSON(e *emit.Emitter, decl *ast.Node) {
	e.Line("std::string %s::_toJSON() const {", decl.Name)
	e.Indent()
	e.Line("std::ostringstream _out;")
	e.Line(`_out << "{";`)
	for i, f := range decl.Fields {
		sep := ""
		if i > 0 {
			sep = ","
		}
		e.Line(`_out << %q << %s;`, sep+`"`+f.Name+`":`, toJSONExpr("this->"+f.Name, f.Type))
	}
	e.Line(`_out << "}";`)
	e.Line("return _out.str();")
	e.Dedent()
	e.Line("}")
	e.Blank()
	e.Line("std::ostream& operator<<(std::ostream& os, const std::shared_ptr<%s>& v) {", decl.Name)
	e.Indent()
	e.Line(`os << (v ? v->_toJSON() : std::string("null"));`)
	e.Line("return os;")
	e.Dedent()
	e.Line("}")
}

// toJSONExpr returns a C++ expression serializing accessor (already a
// dereferenced field/element access) of static type t to a JSON-encoded
// std::string fragment.
func toJSONExpr(accessor string, t *types.Type) string {
	if t == nil {
		return `std::string("null")`
	}
	switch t.Kind {
	case types.KindPrimitive:
		return toJSONPrimitive(accessor, t.Primitive)
	case types.KindClass:
		return fmt.Sprintf(`(%s ? %s->_toJSON() : std::string("null"))`, accessor, accessor)
	case types.KindEnum:
		return fmt.Sprintf("doof_json_quote(%s_name(%s))", t.Name, accessor)
	case types.KindArray:
		elem := accessor + "_e"
		return fmt.Sprintf("doof_json_array(%s, [](const auto& %s) { return %s; })", accessor, elem, toJSONExpr(elem, t.Elem))
	case types.KindSet:
		elem := accessor + "_e"
		return fmt.Sprintf("doof_json_array(%s, [](const auto& %s) { return %s; })", accessor, elem, toJSONExpr(elem, t.Elem))
	case types.KindMap:
		kv := accessor + "_kv"
		return fmt.Sprintf("doof_json_map(%s, [](const auto& %s) { return %s; })", accessor, kv, toJSONExpr(kv+".second", t.Value))
	case types.KindNullable:
		if _, ok := IsSingleClassNullable(t); ok {
			return fmt.Sprintf(`(%s ? %s->_toJSON() : std::string("null"))`, accessor, accessor)
		}
		return fmt.Sprintf(`(%s.has_value() ? %s : std::string("null"))`, accessor, toJSONExpr(accessor+".value()", t.NonNull))
	case types.KindUnion:
		return fmt.Sprintf("std::visit([](auto&& _v) { return _v->_toJSON(); }, %s)", accessor)
	}
	return `doof_json_quote("<unsupported>")`
}

func toJSONPrimitive(accessor string, p types.Primitive) string {
	switch p {
	case types.PrimString, types.PrimChar:
		return fmt.Sprintf("doof_json_quote(%s)", accessor)
	case types.PrimBool:
		return fmt.Sprintf(`(%s ? std::string("true") : std::string("false"))`, accessor)
	default:
		return fmt.Sprintf("std::to_string(%s)", accessor)
	}
}

// EmitFromJSON writes class's static fromJSON(const std::string&) parser
// and the _fromJSON(const doof_json_value&) helper it delegates to, which
// recurses through class-typed fields by calling the target class's own
// _fromJSON rather than inlining it. lookup picks the same `_new` factory
// vs. bare std::make_shared construction call the backend uses everywhere
// else (§4.5 ownership rule 4), since a class with no declared constructor
// has no `_new` to route through.
func EmitFromJSON(e *emit.Emitter, decl *ast.Node, lookup ClassLookup) {
	e.Line("std::shared_ptr<%s> %s::fromJSON(const std::string& text) {", decl.Name, decl.Name)
	e.Indent()
	e.Line("doof_json_value _root = doof_json_parse(text);")
	e.Line("return %s::_fromJSON(_root);", decl.Name)
	e.Dedent()
	e.Line("}")
	e.Blank()
	e.Line("std::shared_ptr<%s> %s::_fromJSON(const doof_json_value& _v) {", decl.Name, decl.Name)
	e.Indent()
	args := make([]string, len(decl.Fields))
	for i, f := range decl.Fields {
		args[i] = fromJSONExpr(fmt.Sprintf("_v.at(%q)", f.Name), f.Type)
	}
	e.Line("return %s(%s);", factoryCall(decl.Name, lookup), joinComma(args))
	e.Dedent()
	e.Line("}")
}

func fromJSONExpr(accessor string, t *types.Type) string {
	if t == nil {
		return "nullptr"
	}
	switch t.Kind {
	case types.KindPrimitive:
		switch t.Primitive {
		case types.PrimString, types.PrimChar:
			return accessor + ".as_string()"
		case types.PrimBool:
			return accessor + ".as_bool()"
		case types.PrimInt:
			return accessor + ".as_int()"
		default:
			return accessor + ".as_double()"
		}
	case types.KindClass:
		return fmt.Sprintf("%s::_fromJSON(%s)", t.Name, accessor)
	case types.KindArray, types.KindSet:
		return fmt.Sprintf("doof_json_array_from(%s, [](const doof_json_value& _e) { return %s; })", accessor, fromJSONExpr("_e", t.Elem))
	case types.KindMap:
		return fmt.Sprintf("doof_json_map_from(%s, [](const doof_json_value& _e) { return %s; })", accessor, fromJSONExpr("_e", t.Value))
	case types.KindNullable:
		return fmt.Sprintf("(%s.is_null() ? %s : %s)", accessor, zeroValue(t), fromJSONExpr(accessor, t.NonNull))
	}
	return "nullptr"
}

func zeroValue(t *types.Type) string {
	if name, ok := IsSingleClassNullable(t); ok {
		return fmt.Sprintf("std::shared_ptr<%s>(nullptr)", name)
	}
	return "std::nullopt"
}
