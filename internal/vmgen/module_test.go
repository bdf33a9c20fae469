package vmgen

import (
	"testing"

	"github.com/andrew24601/doofc/internal/ast"
	"github.com/andrew24601/doofc/internal/context"
)

func TestGenerateEmitsOneFunctionBytecodePerFreeFunction(t *testing.T) {
	prog := &ast.Node{Decls: []*ast.Node{
		{Kind: ast.KindFunctionDecl, Name: "add", Params: []ast.ParamDecl{{Name: "a"}, {Name: "b"}}, Body: &ast.Node{Kind: ast.KindBlock}},
	}}
	fc := context.NewFileContext("a.doof")
	c, err := Generate(map[string]*ast.Node{"a.doof": prog}, map[string]*context.FileContext{"a.doof": fc}, []string{"a.doof"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(c.Functions) != 1 || c.Functions[0].Name != "add" {
		t.Errorf("Functions = %+v", c.Functions)
	}
}

func TestGenerateEmitsClassLayoutAndMethods(t *testing.T) {
	prog := &ast.Node{Decls: []*ast.Node{
		{
			Kind:   ast.KindClassDecl,
			Name:   "Counter",
			Fields: []ast.FieldDecl{{Name: "value"}},
			Methods: []*ast.Node{
				{Name: "increment", Body: &ast.Node{Kind: ast.KindBlock}},
			},
		},
	}}
	fc := context.NewFileContext("a.doof")
	c, err := Generate(map[string]*ast.Node{"a.doof": prog}, map[string]*context.FileContext{"a.doof": fc}, []string{"a.doof"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(c.Classes) != 1 || c.Classes[0].Name != "Counter" {
		t.Fatalf("Classes = %+v", c.Classes)
	}
	if len(c.Functions) != 1 || c.Functions[0].ClassName != "Counter" || !c.Functions[0].IsMethod {
		t.Errorf("Functions = %+v", c.Functions)
	}
}

func TestGenerateSkipsExternClassNotReferenced(t *testing.T) {
	prog := &ast.Node{Decls: []*ast.Node{
		{Kind: ast.KindExternClass, Name: "Logger", Methods: []*ast.Node{{Name: "log"}}},
	}}
	fc := context.NewFileContext("a.doof")
	c, err := Generate(map[string]*ast.Node{"a.doof": prog}, map[string]*context.FileContext{"a.doof": fc}, []string{"a.doof"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(c.Externs) != 0 {
		t.Errorf("Externs = %+v, want none (ExternDeps empty)", c.Externs)
	}
}

func TestGenerateIncludesReferencedExternClass(t *testing.T) {
	prog := &ast.Node{Decls: []*ast.Node{
		{Kind: ast.KindExternClass, Name: "Logger", Methods: []*ast.Node{{Name: "log"}}},
	}}
	fc := context.NewFileContext("a.doof")
	fc.Hints.ExternDeps["Logger"] = true
	c, err := Generate(map[string]*ast.Node{"a.doof": prog}, map[string]*context.FileContext{"a.doof": fc}, []string{"a.doof"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(c.Externs) != 1 || c.Externs[0].ClassName != "Logger" {
		t.Errorf("Externs = %+v", c.Externs)
	}
}
