package vmgen

import (
	"github.com/andrew24601/doofc/internal/ast"
	"github.com/andrew24601/doofc/internal/context"
	"github.com/andrew24601/doofc/internal/types"
)

// ClassLayout assigns stable integer field indices to a class's
// declaration-order fields and a global static-symbol index to its
// `const`-discriminant fields, the scheme §4.7 requires for
// GET_FIELD/SET_FIELD and GET_STATIC/SET_STATIC.
type ClassLayout struct {
	FieldIndex  map[string]int
	StaticIndex map[string]int // "ClassName.field" -> global static slot
}

// BuildLayout walks every class declared across prog's files in a stable
// order (file order, then declaration order) and assigns indices.
func BuildLayout(progs map[string]*ast.Node, fileOrder []string) *ClassLayout {
	l := &ClassLayout{FieldIndex: make(map[string]int), StaticIndex: make(map[string]int)}
	nextStatic := 0
	for _, fname := range fileOrder {
		prog := progs[fname]
		if prog == nil {
			continue
		}
		for _, d := range prog.Decls {
			if d.Kind != ast.KindClassDecl {
				continue
			}
			for i, f := range d.Fields {
				l.FieldIndex[d.Name+"."+f.Name] = i
				if f.IsConst {
					l.StaticIndex[d.Name+"."+f.Name] = nextStatic
					nextStatic++
				}
			}
		}
	}
	return l
}

// SplitStaticIndex returns the high/low operand halves of a 16-bit static
// slot index (spec §4.7).
func SplitStaticIndex(idx int) (hi, lo int) {
	return (idx >> 8) & 0xFF, idx & 0xFF
}

// FuncGen lowers one function/method body to a register-based instruction
// stream.
type FuncGen struct {
	fc     *context.FileContext
	layout *ClassLayout
	className string // "" for free functions

	stream *Stream
	alloc  *Allocator
	loops  LoopStack
	locals map[string]Register
}

// NewFuncGen lays out register 0 as the return slot, 1..P as parameters
// (preceded by an implicit `this` register for methods), and opens the
// temporary band immediately after — locals are allocated into that same
// contiguous region at their declaration, matching §4.7's P+1..P+L band
// without requiring a separate pre-pass over declarations.
func NewFuncGen(fc *context.FileContext, layout *ClassLayout, className string, params []ast.ParamDecl, isMethod bool) *FuncGen {
	g := &FuncGen{fc: fc, layout: layout, className: className, stream: NewStream(), locals: make(map[string]Register)}
	next := Register(1)
	if isMethod {
		g.locals["this"] = next
		next++
	}
	for _, p := range params {
		g.locals[p.Name] = next
		next++
	}
	g.alloc = NewAllocator(next)
	return g
}

// Stream returns the completed instruction stream after CompileBody has run.
func (g *FuncGen) Stream() *Stream { return g.stream }

// CompileBody lowers a function body, allocating a fresh register per
// local on first declaration.
func (g *FuncGen) CompileBody(body *ast.Node) {
	g.compileStmt(body)
}

func (g *FuncGen) compileStmt(n *ast.Node) {
	if n == nil {
		return
	}
	switch n.Kind {
	case ast.KindBlock:
		for _, s := range n.Stmts {
			g.compileStmt(s)
		}
	case ast.KindVarDeclStmt:
		r := g.alloc.AllocateTemporary()
		g.locals[n.VarName] = r
		if n.VarInit != nil {
			g.compileInto(n.VarInit, r)
		}
	case ast.KindExprStmt:
		r := g.compileExpr(n.Expr)
		g.alloc.FreeTemporary(r)
	case ast.KindIfStmt:
		g.compileIf(n)
	case ast.KindWhileStmt:
		g.compileWhile(n)
	case ast.KindForStmt:
		g.compileFor(n)
	case ast.KindForOfStmt:
		g.compileForOf(n)
	case ast.KindReturnStmt:
		if n.Expr != nil {
			g.compileInto(n.Expr, 0)
		}
		g.stream.Emit(OpReturn, 0, 0, 0)
	case ast.KindBreakStmt:
		if f, ok := g.loops.Top(); ok {
			g.stream.EmitJump(OpJump, f.BreakLabel)
		}
	case ast.KindContinueStmt:
		if f, ok := g.loops.Top(); ok {
			g.stream.EmitJump(OpJump, f.ContinueLabel)
		}
	case ast.KindSwitchStmt:
		g.compileSwitch(n)
	}
}

func (g *FuncGen) compileIf(n *ast.Node) {
	cond := g.compileExpr(n.Cond)
	elseLabel := g.stream.NewLabel()
	endLabel := g.stream.NewLabel()
	g.emitCondJump(OpJumpFalse, cond, elseLabel)
	g.alloc.FreeTemporary(cond)
	g.compileStmt(n.Then)
	if n.Else != nil {
		g.stream.EmitJump(OpJump, endLabel)
		g.stream.PlaceLabel(elseLabel)
		g.compileStmt(n.Else)
		g.stream.PlaceLabel(endLabel)
	} else {
		g.stream.PlaceLabel(elseLabel)
	}
}

// emitCondJump emits a conditional jump testing reg and targeting label;
// the register-carrying operand is B since EmitJump reserves A for the
// (possibly not-yet-known) jump target.
func (g *FuncGen) emitCondJump(op Opcode, reg Register, label Label) {
	idx := g.stream.Emit(op, -1, int(reg), 0)
	if target, ok := g.stream.labels[label]; ok {
		g.stream.Instrs[idx].A = target
		return
	}
	g.stream.pending[label] = append(g.stream.pending[label], idx)
}

func (g *FuncGen) compileWhile(n *ast.Node) {
	startLabel := g.stream.NewLabel()
	endLabel := g.stream.NewLabel()
	g.loops.Push(LoopFrame{ContinueLabel: startLabel, BreakLabel: endLabel, Kind: "while"})
	g.stream.PlaceLabel(startLabel)
	cond := g.compileExpr(n.Cond)
	g.emitCondJump(OpJumpFalse, cond, endLabel)
	g.alloc.FreeTemporary(cond)
	g.compileStmt(n.Body)
	g.stream.EmitJump(OpJump, startLabel)
	g.stream.PlaceLabel(endLabel)
	g.loops.Pop()
}

func (g *FuncGen) compileFor(n *ast.Node) {
	if n.ForInit != nil {
		g.compileStmt(n.ForInit)
	}
	startLabel := g.stream.NewLabel()
	contLabel := g.stream.NewLabel()
	endLabel := g.stream.NewLabel()
	g.loops.Push(LoopFrame{ContinueLabel: contLabel, BreakLabel: endLabel, Kind: "for"})
	g.stream.PlaceLabel(startLabel)
	if n.ForCond != nil {
		cond := g.compileExpr(n.ForCond)
		g.emitCondJump(OpJumpFalse, cond, endLabel)
		g.alloc.FreeTemporary(cond)
	}
	g.compileStmt(n.Body)
	g.stream.PlaceLabel(contLabel)
	if n.ForPost != nil {
		r := g.compileExpr(n.ForPost)
		g.alloc.FreeTemporary(r)
	}
	g.stream.EmitJump(OpJump, startLabel)
	g.stream.PlaceLabel(endLabel)
	g.loops.Pop()
}

// compileForOf lowers every iterable shape to an index-counting loop over
// a materialized length (arrays/sets/strings) or a key/value pair walk for
// maps; ranges count directly without ever reading LEN.
func (g *FuncGen) compileForOf(n *ast.Node) {
	iterReg := g.compileExpr(n.Iterable)
	idxReg := g.alloc.AllocateTemporary()
	g.stream.Emit(OpLoadConst, int(idxReg), g.stream.Const(int64(0)), 0)
	lenReg := g.alloc.AllocateTemporary()
	g.stream.Emit(OpLen, int(lenReg), int(iterReg), 0)

	startLabel := g.stream.NewLabel()
	contLabel := g.stream.NewLabel()
	endLabel := g.stream.NewLabel()
	g.loops.Push(LoopFrame{ContinueLabel: contLabel, BreakLabel: endLabel, Kind: "forOf"})
	g.stream.PlaceLabel(startLabel)

	cmpReg := g.alloc.AllocateTemporary()
	g.stream.Emit(OpCmpLt, int(cmpReg), int(idxReg), int(lenReg))
	g.emitCondJump(OpJumpFalse, cmpReg, endLabel)
	g.alloc.FreeTemporary(cmpReg)

	loopVarReg := g.alloc.AllocateTemporary()
	g.locals[n.LoopVarName] = loopVarReg
	g.stream.Emit(OpGetIndex, int(loopVarReg), int(iterReg), int(idxReg))
	if n.LoopVarName2 != "" {
		valReg := g.alloc.AllocateTemporary()
		g.locals[n.LoopVarName2] = valReg
		g.stream.Emit(OpGetIndex, int(valReg), int(iterReg), int(idxReg))
	}

	g.compileStmt(n.Body)
	g.stream.PlaceLabel(contLabel)
	g.stream.Emit(OpAddInt, int(idxReg), int(idxReg), g.stream.Const(int64(1)))
	g.stream.EmitJump(OpJump, startLabel)
	g.stream.PlaceLabel(endLabel)
	g.loops.Pop()

	g.alloc.FreeTemporary(loopVarReg)
	g.alloc.FreeTemporary(lenReg)
	g.alloc.FreeTemporary(idxReg)
	g.alloc.FreeTemporary(iterReg)
}

// compileSwitch lowers each case to an equality-chain test jumping into its
// own body label, falling through to the next case's test on no match;
// `default` (empty Values) always matches. Fallthru cases omit the
// end-of-body jump so control drops into the next case's body.
func (g *FuncGen) compileSwitch(n *ast.Node) {
	subject := g.compileExpr(n.SwitchSubject)
	endLabel := g.stream.NewLabel()
	nextLabel := g.stream.NewLabel()
	outer, _ := g.loops.Top()
	g.loops.Push(LoopFrame{ContinueLabel: outer.ContinueLabel, BreakLabel: endLabel, Kind: "switch"})
	bodyLabels := make([]Label, len(n.SwitchCases))
	for i := range bodyLabels {
		bodyLabels[i] = g.stream.NewLabel()
	}
	for i, c := range n.SwitchCases {
		bodyLabel := bodyLabels[i]
		if len(c.Values) > 0 {
			matched := g.alloc.AllocateTemporary()
			for _, v := range c.Values {
				val := g.compileExpr(v)
				g.stream.Emit(OpCmpEq, int(matched), int(subject), int(val))
				g.alloc.FreeTemporary(val)
				g.emitCondJump(OpJumpTrue, matched, bodyLabel)
			}
			g.alloc.FreeTemporary(matched)
			g.stream.EmitJump(OpJump, nextLabel)
		}
		g.stream.PlaceLabel(bodyLabel)
		for _, s := range c.Body {
			g.compileStmt(s)
		}
		if !c.Fallthru {
			g.stream.EmitJump(OpJump, endLabel)
		} else if i < len(n.SwitchCases)-1 {
			g.stream.EmitJump(OpJump, bodyLabels[i+1])
		}
		g.stream.PlaceLabel(nextLabel)
		if i < len(n.SwitchCases)-1 {
			nextLabel = g.stream.NewLabel()
		}
	}
	g.stream.PlaceLabel(endLabel)
	g.loops.Pop()
	g.alloc.FreeTemporary(subject)
}

// compileInto compiles n, then moves the result into dst (eliding the
// MOVE when the expression already targeted dst directly).
func (g *FuncGen) compileInto(n *ast.Node, dst Register) {
	r := g.compileExpr(n)
	if r != dst {
		g.stream.Emit(OpMove, int(dst), int(r), 0)
		if r >= g.alloc.tempLo {
			g.alloc.FreeTemporary(r)
		}
	}
}

func (g *FuncGen) compileExpr(n *ast.Node) Register {
	switch n.Kind {
	case ast.KindLiteral:
		dst := g.alloc.AllocateTemporary()
		g.stream.Emit(OpLoadConst, int(dst), g.stream.Const(n.LiteralValue), 0)
		return dst
	case ast.KindIdentifier:
		if r, ok := g.locals[n.IdentName]; ok {
			return r
		}
		dst := g.alloc.AllocateTemporary()
		g.stream.Emit(OpLoadConst, int(dst), g.stream.Const(nil), 0)
		return dst
	case ast.KindBinary:
		return g.compileBinary(n)
	case ast.KindUnary:
		return g.compileUnary(n)
	case ast.KindMember:
		return g.compileMember(n)
	case ast.KindCall:
		return g.compileCall(n)
	case ast.KindConditional:
		return g.compileConditional(n)
	case ast.KindArrayLit:
		return g.compileArrayLit(n)
	}
	dst := g.alloc.AllocateTemporary()
	g.stream.Emit(OpLoadConst, int(dst), g.stream.Const(nil), 0)
	return dst
}

func (g *FuncGen) numericOp(base types.Primitive, intOp, floatOp, doubleOp Opcode) Opcode {
	switch base {
	case types.PrimFloat:
		return floatOp
	case types.PrimDouble:
		return doubleOp
	default:
		return intOp
	}
}

func (g *FuncGen) compileBinary(n *ast.Node) Register {
	if n.BinOp == ast.OpAssign {
		dst := g.lvalueReg(n.Left)
		g.compileInto(n.Right, dst)
		return dst
	}
	if n.BinOp.IsCompoundAssign() {
		return g.compileCompoundAssign(n)
	}

	leftT := g.fc.Hints.Types[n.Left]
	left := g.compileExpr(n.Left)
	right := g.compileExpr(n.Right)
	dst := g.alloc.AllocateTemporary()

	var op Opcode
	switch n.BinOp {
	case ast.OpAdd:
		if leftT != nil && leftT.Kind == types.KindPrimitive && leftT.Primitive == types.PrimString {
			op = OpConcatStr
		} else {
			op = g.numericOp(primOf(leftT), OpAddInt, OpAddFloat, OpAddDouble)
		}
	case ast.OpSub:
		op = g.numericOp(primOf(leftT), OpSubInt, OpSubFloat, OpSubDouble)
	case ast.OpMul:
		op = g.numericOp(primOf(leftT), OpMulInt, OpMulFloat, OpMulDouble)
	case ast.OpDiv:
		op = g.numericOp(primOf(leftT), OpDivInt, OpDivFloat, OpDivDouble)
	case ast.OpMod:
		op = g.numericOp(primOf(leftT), OpModInt, OpModFloat, OpModDouble)
	case ast.OpEq:
		op = OpCmpEq
	case ast.OpNeq:
		op = OpCmpNe
	case ast.OpLt:
		op = OpCmpLt
	case ast.OpLte:
		op = OpCmpLe
	case ast.OpGt:
		op = OpCmpGt
	case ast.OpGte:
		op = OpCmpGe
	default:
		op = OpMove
	}
	g.stream.Emit(op, int(dst), int(left), int(right))
	if left >= g.alloc.tempLo {
		g.alloc.FreeTemporary(left)
	}
	if right >= g.alloc.tempLo {
		g.alloc.FreeTemporary(right)
	}
	return dst
}

// compileCompoundAssign lowers `x op= y` (spec §4.7) into a read of the
// l-value's current register, the numeric opcode, and a write back into
// that same register — never through a fresh temporary the way a plain
// binary expression's result does.
func (g *FuncGen) compileCompoundAssign(n *ast.Node) Register {
	dst := g.lvalueReg(n.Left)
	leftT := g.fc.Hints.Types[n.Left]
	right := g.compileExpr(n.Right)

	var op Opcode
	switch n.BinOp {
	case ast.OpAddAssn:
		if leftT != nil && leftT.Kind == types.KindPrimitive && leftT.Primitive == types.PrimString {
			op = OpConcatStr
		} else {
			op = g.numericOp(primOf(leftT), OpAddInt, OpAddFloat, OpAddDouble)
		}
	case ast.OpSubAssn:
		op = g.numericOp(primOf(leftT), OpSubInt, OpSubFloat, OpSubDouble)
	case ast.OpMulAssn:
		op = g.numericOp(primOf(leftT), OpMulInt, OpMulFloat, OpMulDouble)
	case ast.OpDivAssn:
		op = g.numericOp(primOf(leftT), OpDivInt, OpDivFloat, OpDivDouble)
	case ast.OpModAssn:
		op = g.numericOp(primOf(leftT), OpModInt, OpModFloat, OpModDouble)
	}
	g.stream.Emit(op, int(dst), int(dst), int(right))
	if right >= g.alloc.tempLo {
		g.alloc.FreeTemporary(right)
	}
	return dst
}

func primOf(t *types.Type) types.Primitive {
	if t != nil && t.Kind == types.KindPrimitive {
		return t.Primitive
	}
	return types.PrimInt
}

func (g *FuncGen) compileUnary(n *ast.Node) Register {
	operand := g.compileExpr(n.Operand)
	switch n.UnOp {
	case ast.OpNeg:
		dst := g.alloc.AllocateTemporary()
		t := g.fc.Hints.Types[n.Operand]
		g.stream.Emit(g.numericOp(primOf(t), OpNegInt, OpNegFloat, OpNegDouble), int(dst), int(operand), 0)
		if operand >= g.alloc.tempLo {
			g.alloc.FreeTemporary(operand)
		}
		return dst
	case ast.OpNot:
		dst := g.alloc.AllocateTemporary()
		g.stream.Emit(OpNot, int(dst), int(operand), 0)
		if operand >= g.alloc.tempLo {
			g.alloc.FreeTemporary(operand)
		}
		return dst
	case ast.OpPreInc:
		one := g.stream.Const(int64(1))
		g.stream.Emit(OpAddInt, int(operand), int(operand), one)
		return operand
	case ast.OpPostInc:
		one := g.stream.Const(int64(1))
		pre := g.alloc.AllocateTemporary()
		g.stream.Emit(OpMove, int(pre), int(operand), 0)
		g.stream.Emit(OpAddInt, int(operand), int(operand), one)
		return pre
	case ast.OpPreDec:
		one := g.stream.Const(int64(1))
		g.stream.Emit(OpSubInt, int(operand), int(operand), one)
		return operand
	case ast.OpPostDec:
		one := g.stream.Const(int64(1))
		pre := g.alloc.AllocateTemporary()
		g.stream.Emit(OpMove, int(pre), int(operand), 0)
		g.stream.Emit(OpSubInt, int(operand), int(operand), one)
		return pre
	}
	return operand
}

// lvalueReg resolves the register an assignment target writes into: a
// bare identifier resolves to its existing register directly.
func (g *FuncGen) lvalueReg(n *ast.Node) Register {
	if n.Kind == ast.KindIdentifier {
		if r, ok := g.locals[n.IdentName]; ok {
			return r
		}
	}
	return g.alloc.AllocateTemporary()
}

func (g *FuncGen) compileMember(n *ast.Node) Register {
	obj := g.compileExpr(n.Object)
	dst := g.alloc.AllocateTemporary()
	if n.Computed {
		idx := g.compileExpr(n.Index)
		g.stream.Emit(OpGetIndex, int(dst), int(obj), int(idx))
		if idx >= g.alloc.tempLo {
			g.alloc.FreeTemporary(idx)
		}
		if obj >= g.alloc.tempLo {
			g.alloc.FreeTemporary(obj)
		}
		return dst
	}
	if objT := g.fc.Hints.Types[n.Object]; objT != nil && objT.Kind == types.KindClass {
		idx := g.layout.FieldIndex[objT.Name+"."+n.Property]
		g.stream.Emit(OpGetField, int(dst), int(obj), idx)
		if obj >= g.alloc.tempLo {
			g.alloc.FreeTemporary(obj)
		}
		return dst
	}
	g.stream.Emit(OpGetField, int(dst), int(obj), 0)
	if obj >= g.alloc.tempLo {
		g.alloc.FreeTemporary(obj)
	}
	return dst
}

func (g *FuncGen) compileConditional(n *ast.Node) Register {
	cond := g.compileExpr(n.CondTest)
	dst := g.alloc.AllocateTemporary()
	elseLabel := g.stream.NewLabel()
	endLabel := g.stream.NewLabel()
	g.emitCondJump(OpJumpFalse, cond, elseLabel)
	g.alloc.FreeTemporary(cond)
	g.compileInto(n.CondThen, dst)
	g.stream.EmitJump(OpJump, endLabel)
	g.stream.PlaceLabel(elseLabel)
	g.compileInto(n.CondElse, dst)
	g.stream.PlaceLabel(endLabel)
	return dst
}

// compileArrayLit allocates a fixed-size array and fills it positionally;
// a contiguous block is unnecessary here since NEW_ARRAY takes the
// element count directly and SET_INDEX writes one slot at a time.
func (g *FuncGen) compileArrayLit(n *ast.Node) Register {
	dst := g.alloc.AllocateTemporary()
	g.stream.Emit(OpNewArray, int(dst), len(n.Elements), 0)
	for i, el := range n.Elements {
		v := g.compileExpr(el)
		g.stream.Emit(OpSetIndex, int(dst), i, int(v))
		g.alloc.FreeTemporary(v)
	}
	return dst
}

// compileCall lowers a resolved call. Named-argument reorder is already
// resolved to PositionalOrder by the validator; the VM backend needs no
// temporaries for it the way the C++ IIFE lowering does, since the
// arguments are evaluated in source order, each straight into its slot of
// a contiguous argument block laid out in the final call order.
func (g *FuncGen) compileCall(n *ast.Node) Register {
	dispatch := g.fc.Hints.CallDispatch[n]
	order := identityOrder(len(n.Args))
	if dispatch != nil {
		order = dispatch.PositionalOrder
	}
	base := g.alloc.AllocateContiguous(len(order) + 1)
	for argIdx := range n.Args {
		for pos, ai := range order {
			if ai == argIdx {
				g.compileInto(n.Args[argIdx].Value, base+1+Register(pos))
			}
		}
	}
	if dispatch != nil && dispatch.Kind == context.CalleeMethod {
		g.stream.Emit(OpCallMeth, int(base), len(order), 0)
	} else {
		g.stream.Emit(OpCall, int(base), len(order), 0)
	}
	dst := g.alloc.AllocateTemporary()
	g.stream.Emit(OpMove, int(dst), int(base), 0)
	g.alloc.FreeContiguous(base, len(order)+1)
	return dst
}

func identityOrder(n int) []int {
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	return order
}
