package monomorph

import (
	"testing"

	"github.com/andrew24601/doofc/internal/ast"
	"github.com/andrew24601/doofc/internal/context"
	"github.com/andrew24601/doofc/internal/types"
)

func TestMangleSimpleTypeArgs(t *testing.T) {
	tests := []struct {
		base string
		args []*types.Type
		want string
	}{
		{"identity", []*types.Type{types.Prim(types.PrimInt)}, "identity__primitive_int"},
		{"Box", []*types.Type{types.Class("Widget", false)}, "Box__class_Widget"},
		{"noArgs", nil, "noArgs"},
	}
	for _, tc := range tests {
		if got := Mangle(tc.base, tc.args); got != tc.want {
			t.Errorf("Mangle(%q, %v) = %q, want %q", tc.base, tc.args, got, tc.want)
		}
	}
}

func TestMangleHashesLongEncodings(t *testing.T) {
	// A deeply nested generic whose literal encoding exceeds maxEncodedLen
	// should fall back to a stable hashed form, not an unbounded name.
	deep := types.Class("ReallyLongClassNameThatKeepsGoingAndGoingForever", false)
	for i := 0; i < 5; i++ {
		deep = types.Array(deep)
	}
	got := Mangle("Box", []*types.Type{deep})
	if len(got) > len("Box__h") + 16 {
		t.Errorf("mangled name %q exceeds expected hashed length", got)
	}
	got2 := Mangle("Box", []*types.Type{deep})
	if got != got2 {
		t.Errorf("hashing must be stable across calls: %q != %q", got, got2)
	}
}

// buildIdentityProgram constructs the spec §8 monomorphization scenario:
// `function identity<T>(v: T): T { return v; }` called as `identity<int>(42)`.
func buildIdentityProgram() (*ast.Node, *context.FileContext, *ast.Node) {
	tparam := types.TypeParam("T", nil)
	identityDecl := &ast.Node{
		Kind:       ast.KindFunctionDecl,
		Name:       "identity",
		TypeParams: []ast.TypeParamDecl{{Name: "T"}},
		Params:     []ast.ParamDecl{{Name: "v", Type: tparam}},
		ReturnType: tparam,
		Body: &ast.Node{Kind: ast.KindBlock, Stmts: []*ast.Node{
			{Kind: ast.KindReturnStmt, Expr: &ast.Node{Kind: ast.KindIdentifier, IdentName: "v"}},
		}},
	}

	callExpr := &ast.Node{
		Kind:          ast.KindCall,
		Callee:        &ast.Node{Kind: ast.KindIdentifier, IdentName: "identity"},
		Args:          []ast.Arg{{Value: &ast.Node{Kind: ast.KindLiteral, LiteralValue: int64(42)}}},
		ExplicitTypes: []*types.Type{types.Prim(types.PrimInt)},
	}

	mainDecl := &ast.Node{
		Kind: ast.KindFunctionDecl,
		Name: "main",
		Body: &ast.Node{Kind: ast.KindBlock, Stmts: []*ast.Node{
			{Kind: ast.KindExprStmt, Expr: callExpr},
		}},
	}

	prog := &ast.Node{Kind: ast.KindProgram, Decls: []*ast.Node{identityDecl, mainDecl}}

	fc := context.NewFileContext("main.doof")
	fc.Functions["identity"] = &context.FuncSymbol{Decl: identityDecl}
	fc.Functions["main"] = &context.FuncSymbol{Decl: mainDecl}
	fc.Hints.CallDispatch[callExpr] = &context.CallDispatch{
		Kind:   context.CalleeFunction,
		Callee: identityDecl,
	}

	return prog, fc, callExpr
}

func TestRunMonomorphizesIdentityCall(t *testing.T) {
	prog, fc, callExpr := buildIdentityProgram()

	g := context.NewGlobalContext()
	g.AddFile(fc)
	progs := map[string]*ast.Node{"main.doof": prog}

	instances := Run(g, progs)

	if len(instances) != 1 {
		t.Fatalf("expected 1 instance, got %d", len(instances))
	}
	want := "identity__primitive_int"
	if instances[0].MangledName != want {
		t.Errorf("mangled name = %q, want %q", instances[0].MangledName, want)
	}

	// The original generic must be gone from both the symbol table...
	if _, ok := fc.Functions["identity"]; ok {
		t.Error("original generic 'identity' should be removed from the function table")
	}
	// ...and the AST.
	for _, d := range prog.Decls {
		if d.Name == "identity" {
			t.Error("original generic decl should not remain in prog.Decls")
		}
	}
	// The specialized copy must be present in both.
	spec, ok := fc.Functions[want]
	if !ok {
		t.Fatalf("specialized function %q missing from function table", want)
	}
	if spec.Decl.TypeParams != nil {
		t.Error("specialized decl should have no remaining type parameters")
	}
	found := false
	for _, d := range prog.Decls {
		if d.Name == want {
			found = true
		}
	}
	if !found {
		t.Error("specialized decl should be present in prog.Decls")
	}

	// The call site must be rewritten to call the mangled name directly,
	// with no leftover explicit type arguments.
	if callExpr.Callee.IdentName != want {
		t.Errorf("call site callee = %q, want %q", callExpr.Callee.IdentName, want)
	}
	if len(callExpr.ExplicitTypes) != 0 {
		t.Error("explicit type arguments should be cleared after rewrite")
	}
}

func TestRunDedupesIdenticalInstantiations(t *testing.T) {
	prog, fc, callExpr := buildIdentityProgram()

	// A second call with the same type argument should collapse into the
	// same instance, not produce a duplicate specialization.
	callExpr2 := &ast.Node{
		Kind:          ast.KindCall,
		Callee:        &ast.Node{Kind: ast.KindIdentifier, IdentName: "identity"},
		Args:          []ast.Arg{{Value: &ast.Node{Kind: ast.KindLiteral, LiteralValue: int64(7)}}},
		ExplicitTypes: []*types.Type{types.Prim(types.PrimInt)},
	}
	prog.Decls[1].Body.Stmts = append(prog.Decls[1].Body.Stmts, &ast.Node{Kind: ast.KindExprStmt, Expr: callExpr2})
	fc.Hints.CallDispatch[callExpr2] = &context.CallDispatch{
		Kind:   context.CalleeFunction,
		Callee: fc.Functions["identity"].Decl,
	}

	g := context.NewGlobalContext()
	g.AddFile(fc)
	progs := map[string]*ast.Node{"main.doof": prog}

	instances := Run(g, progs)
	if len(instances) != 1 {
		t.Fatalf("expected exactly 1 deduped instance, got %d", len(instances))
	}
	if callExpr.Callee.IdentName != callExpr2.Callee.IdentName {
		t.Error("both calls should be rewritten to the same mangled name")
	}
}

func TestRunReportsUnusedGeneric(t *testing.T) {
	tparam := types.TypeParam("T", nil)
	neverCalled := &ast.Node{
		Kind:       ast.KindFunctionDecl,
		Name:       "neverCalled",
		TypeParams: []ast.TypeParamDecl{{Name: "T"}},
		Params:     []ast.ParamDecl{{Name: "v", Type: tparam}},
		ReturnType: tparam,
		Body:       &ast.Node{Kind: ast.KindBlock},
	}
	prog := &ast.Node{Kind: ast.KindProgram, Decls: []*ast.Node{neverCalled}}

	fc := context.NewFileContext("main.doof")
	fc.Functions["neverCalled"] = &context.FuncSymbol{Decl: neverCalled}

	g := context.NewGlobalContext()
	g.AddFile(fc)

	instances := Run(g, map[string]*ast.Node{"main.doof": prog})
	if len(instances) != 0 {
		t.Fatalf("expected no instances, got %d", len(instances))
	}
	if !fc.Diagnostics.HasErrors() {
		t.Error("an uninstantiated generic should produce a diagnostic")
	}
	if len(prog.Decls) != 0 {
		t.Error("the uninstantiated generic should be dropped from the AST")
	}
}
