package vmgen

import (
	"testing"

	"github.com/andrew24601/doofc/internal/ast"
	"github.com/andrew24601/doofc/internal/context"
	"github.com/andrew24601/doofc/internal/types"
)

func intLit(v float64) *ast.Node {
	return &ast.Node{Kind: ast.KindLiteral, LiteralValue: v}
}

func ident(name string) *ast.Node {
	return &ast.Node{Kind: ast.KindIdentifier, IdentName: name}
}

func TestCompileBinaryIntSelectsAddInt(t *testing.T) {
	fc := context.NewFileContext("t.doof")
	layout := &ClassLayout{FieldIndex: map[string]int{}, StaticIndex: map[string]int{}}
	g := NewFuncGen(fc, layout, "", []ast.ParamDecl{{Name: "a"}, {Name: "b"}}, false)

	left := ident("a")
	right := ident("b")
	fc.Hints.Types[left] = &types.Type{Kind: types.KindPrimitive, Primitive: types.PrimInt}
	n := &ast.Node{Kind: ast.KindBinary, BinOp: ast.OpAdd, Left: left, Right: right}

	g.compileExpr(n)

	found := false
	for _, instr := range g.stream.Instrs {
		if instr.Op == OpAddInt {
			found = true
		}
		if instr.Op == OpAddFloat || instr.Op == OpAddDouble || instr.Op == OpConcatStr {
			t.Errorf("unexpected opcode %s for int operands", instr.Op)
		}
	}
	if !found {
		t.Error("expected an ADD_INT instruction")
	}
}

func TestCompileBinaryStringSelectsConcat(t *testing.T) {
	fc := context.NewFileContext("t.doof")
	layout := &ClassLayout{FieldIndex: map[string]int{}, StaticIndex: map[string]int{}}
	g := NewFuncGen(fc, layout, "", []ast.ParamDecl{{Name: "a"}, {Name: "b"}}, false)

	left := ident("a")
	fc.Hints.Types[left] = &types.Type{Kind: types.KindPrimitive, Primitive: types.PrimString}
	n := &ast.Node{Kind: ast.KindBinary, BinOp: ast.OpAdd, Left: left, Right: ident("b")}

	g.compileExpr(n)

	found := false
	for _, instr := range g.stream.Instrs {
		if instr.Op == OpConcatStr {
			found = true
		}
	}
	if !found {
		t.Error("expected a CONCAT_STR instruction for string operands")
	}
}

// Spec §8's VM compound-assignment scenario: `x += y`, both float, emits
// ADD_FLOAT r(x) r(x) r(y) — a read, an opcode, and a write back into the
// same register, never a MOVE into a discarded fresh temporary.
func TestCompileBinaryCompoundAssignFloatEmitsAddFloatIntoSameRegister(t *testing.T) {
	fc := context.NewFileContext("t.doof")
	layout := &ClassLayout{FieldIndex: map[string]int{}, StaticIndex: map[string]int{}}
	g := NewFuncGen(fc, layout, "", []ast.ParamDecl{{Name: "x"}, {Name: "y"}}, false)

	left := ident("x")
	fc.Hints.Types[left] = &types.Type{Kind: types.KindPrimitive, Primitive: types.PrimFloat}
	n := &ast.Node{Kind: ast.KindBinary, BinOp: ast.OpAddAssn, Left: left, Right: ident("y")}

	result := g.compileExpr(n)
	xReg := g.locals["x"]
	if result != xReg {
		t.Errorf("compileExpr(x += y) = r%d, want the same register as x (r%d)", result, xReg)
	}

	if len(g.stream.Instrs) != 1 {
		t.Fatalf("expected exactly one instruction, got %d: %+v", len(g.stream.Instrs), g.stream.Instrs)
	}
	instr := g.stream.Instrs[0]
	if instr.Op != OpAddFloat {
		t.Errorf("opcode = %s, want ADD_FLOAT", instr.Op)
	}
	if Register(instr.A) != xReg || Register(instr.B) != xReg {
		t.Errorf("expected dst and left operand to both be x's register r%d, got A=%d B=%d", xReg, instr.A, instr.B)
	}
	if Register(instr.C) != g.locals["y"] {
		t.Errorf("expected right operand to be y's register, got C=%d", instr.C)
	}
}

func TestCompileBinaryCompoundAssignIntSelectsAddInt(t *testing.T) {
	fc := context.NewFileContext("t.doof")
	layout := &ClassLayout{FieldIndex: map[string]int{}, StaticIndex: map[string]int{}}
	g := NewFuncGen(fc, layout, "", []ast.ParamDecl{{Name: "x"}, {Name: "y"}}, false)

	left := ident("x")
	fc.Hints.Types[left] = &types.Type{Kind: types.KindPrimitive, Primitive: types.PrimInt}
	n := &ast.Node{Kind: ast.KindBinary, BinOp: ast.OpSubAssn, Left: left, Right: ident("y")}

	g.compileExpr(n)
	if len(g.stream.Instrs) != 1 || g.stream.Instrs[0].Op != OpSubInt {
		t.Errorf("expected a single SUB_INT instruction, got %+v", g.stream.Instrs)
	}
}

func TestCompileBinaryModSelectsOpcodeByType(t *testing.T) {
	tests := []struct {
		prim types.Primitive
		want Opcode
	}{
		{types.PrimInt, OpModInt},
		{types.PrimFloat, OpModFloat},
		{types.PrimDouble, OpModDouble},
	}
	for _, tc := range tests {
		fc := context.NewFileContext("t.doof")
		layout := &ClassLayout{FieldIndex: map[string]int{}, StaticIndex: map[string]int{}}
		g := NewFuncGen(fc, layout, "", []ast.ParamDecl{{Name: "a"}, {Name: "b"}}, false)

		left := ident("a")
		fc.Hints.Types[left] = &types.Type{Kind: types.KindPrimitive, Primitive: tc.prim}
		n := &ast.Node{Kind: ast.KindBinary, BinOp: ast.OpMod, Left: left, Right: ident("b")}

		g.compileExpr(n)
		found := false
		for _, instr := range g.stream.Instrs {
			if instr.Op == tc.want {
				found = true
			}
		}
		if !found {
			t.Errorf("%s %%: expected %s instruction, got %+v", tc.prim, tc.want, g.stream.Instrs)
		}
	}
}

// Spec §4.2: postfix ++/-- evaluates to the pre-update value.
func TestCompileUnaryPostIncReturnsPreUpdateValue(t *testing.T) {
	fc := context.NewFileContext("t.doof")
	layout := &ClassLayout{FieldIndex: map[string]int{}, StaticIndex: map[string]int{}}
	g := NewFuncGen(fc, layout, "", []ast.ParamDecl{{Name: "x"}}, false)

	n := &ast.Node{Kind: ast.KindUnary, UnOp: ast.OpPostInc, Operand: ident("x")}
	result := g.compileExpr(n)
	xReg := g.locals["x"]
	if result == xReg {
		t.Error("postfix ++ must return a value distinct from x's own register (the pre-update copy)")
	}

	var moveIdx, addIdx = -1, -1
	for i, instr := range g.stream.Instrs {
		if instr.Op == OpMove && Register(instr.A) == result && Register(instr.B) == xReg {
			moveIdx = i
		}
		if instr.Op == OpAddInt && Register(instr.A) == xReg {
			addIdx = i
		}
	}
	if moveIdx == -1 {
		t.Fatalf("expected a MOVE capturing x's pre-update value, got %+v", g.stream.Instrs)
	}
	if addIdx == -1 {
		t.Fatalf("expected an ADD_INT updating x, got %+v", g.stream.Instrs)
	}
	if moveIdx > addIdx {
		t.Error("the pre-update value must be captured before x is incremented")
	}
}

// Prefix ++ still evaluates to the post-update value, in x's own register.
func TestCompileUnaryPreIncReturnsUpdatedRegister(t *testing.T) {
	fc := context.NewFileContext("t.doof")
	layout := &ClassLayout{FieldIndex: map[string]int{}, StaticIndex: map[string]int{}}
	g := NewFuncGen(fc, layout, "", []ast.ParamDecl{{Name: "x"}}, false)

	n := &ast.Node{Kind: ast.KindUnary, UnOp: ast.OpPreInc, Operand: ident("x")}
	result := g.compileExpr(n)
	if xReg := g.locals["x"]; result != xReg {
		t.Errorf("prefix ++ = r%d, want x's own register r%d", result, xReg)
	}
}

func TestCompileMemberUsesFieldIndex(t *testing.T) {
	fc := context.NewFileContext("t.doof")
	layout := &ClassLayout{
		FieldIndex:  map[string]int{"Point.x": 0, "Point.y": 1},
		StaticIndex: map[string]int{},
	}
	g := NewFuncGen(fc, layout, "", []ast.ParamDecl{{Name: "p"}}, false)

	obj := ident("p")
	fc.Hints.Types[obj] = &types.Type{Kind: types.KindClass, Name: "Point"}
	n := &ast.Node{Kind: ast.KindMember, Object: obj, Property: "y"}

	g.compileExpr(n)

	var got *Instr
	for i, instr := range g.stream.Instrs {
		if instr.Op == OpGetField {
			got = &g.stream.Instrs[i]
		}
	}
	if got == nil {
		t.Fatal("expected a GET_FIELD instruction")
	}
	if got.C != 1 {
		t.Errorf("GET_FIELD field index = %d, want 1 (Point.y)", got.C)
	}
}

func TestCompileIfEmitsJumpFalseToElse(t *testing.T) {
	fc := context.NewFileContext("t.doof")
	layout := &ClassLayout{FieldIndex: map[string]int{}, StaticIndex: map[string]int{}}
	g := NewFuncGen(fc, layout, "", nil, false)

	n := &ast.Node{
		Kind: ast.KindIfStmt,
		Cond: intLit(1),
		Then: &ast.Node{Kind: ast.KindBlock},
		Else: &ast.Node{Kind: ast.KindBlock},
	}
	g.compileStmt(n)

	hasJumpFalse := false
	for _, instr := range g.stream.Instrs {
		if instr.Op == OpJumpFalse {
			hasJumpFalse = true
		}
	}
	if !hasJumpFalse {
		t.Error("expected a JUMP_FALSE instruction for the if condition")
	}
}

func TestCompileWhileLoopsBackToCondition(t *testing.T) {
	fc := context.NewFileContext("t.doof")
	layout := &ClassLayout{FieldIndex: map[string]int{}, StaticIndex: map[string]int{}}
	g := NewFuncGen(fc, layout, "", nil, false)

	n := &ast.Node{
		Kind: ast.KindWhileStmt,
		Cond: intLit(1),
		Body: &ast.Node{Kind: ast.KindBlock, Stmts: []*ast.Node{
			{Kind: ast.KindBreakStmt},
		}},
	}
	g.compileStmt(n)

	var jumps, jumpFalses int
	for _, instr := range g.stream.Instrs {
		switch instr.Op {
		case OpJump:
			jumps++
		case OpJumpFalse:
			jumpFalses++
		}
	}
	if jumps == 0 {
		t.Error("expected at least one JUMP (loop-back or break)")
	}
	if jumpFalses != 1 {
		t.Errorf("JUMP_FALSE count = %d, want 1", jumpFalses)
	}
}

func TestBuildLayoutAssignsDeclarationOrderFieldIndices(t *testing.T) {
	prog := &ast.Node{Decls: []*ast.Node{
		{
			Kind: ast.KindClassDecl,
			Name: "Point",
			Fields: []ast.FieldDecl{
				{Name: "x"},
				{Name: "y"},
			},
		},
	}}
	layout := BuildLayout(map[string]*ast.Node{"a.doof": prog}, []string{"a.doof"})
	if layout.FieldIndex["Point.x"] != 0 || layout.FieldIndex["Point.y"] != 1 {
		t.Errorf("FieldIndex = %+v, want x:0 y:1", layout.FieldIndex)
	}
}

func TestBuildLayoutAssignsStaticSlotsOnlyToConstFields(t *testing.T) {
	prog := &ast.Node{Decls: []*ast.Node{
		{
			Kind: ast.KindClassDecl,
			Name: "Shape",
			Fields: []ast.FieldDecl{
				{Name: "Circle", IsConst: true},
				{Name: "radius"},
				{Name: "Square", IsConst: true},
			},
		},
	}}
	layout := BuildLayout(map[string]*ast.Node{"a.doof": prog}, []string{"a.doof"})
	if _, ok := layout.StaticIndex["Shape.radius"]; ok {
		t.Error("non-const field radius should not receive a static slot")
	}
	if layout.StaticIndex["Shape.Circle"] == layout.StaticIndex["Shape.Square"] {
		t.Error("Circle and Square should receive distinct static slots")
	}
}

func TestSplitStaticIndexRoundTrips(t *testing.T) {
	hi, lo := SplitStaticIndex(0x1234)
	if hi != 0x12 || lo != 0x34 {
		t.Errorf("SplitStaticIndex(0x1234) = (%#x, %#x), want (0x12, 0x34)", hi, lo)
	}
}
