package vmgen

import "testing"

func TestStreamConstInterns(t *testing.T) {
	s := NewStream()
	a := s.Const(int64(1))
	b := s.Const(int64(1))
	c := s.Const(int64(2))
	if a != b {
		t.Errorf("Const(1) twice: got %d and %d, want equal indices", a, b)
	}
	if c == a {
		t.Errorf("Const(2) collided with Const(1) index %d", a)
	}
	if len(s.Consts) != 2 {
		t.Errorf("len(Consts) = %d, want 2", len(s.Consts))
	}
}

func TestEmitJumpPatchesAlreadyPlacedLabel(t *testing.T) {
	s := NewStream()
	l := s.NewLabel()
	s.PlaceLabel(l)
	idx := s.Emit(OpLoadConst, 0, 0, 0)
	_ = idx
	s.EmitJump(OpJump, l)
	if s.Instrs[len(s.Instrs)-1].A != 0 {
		t.Errorf("jump A = %d, want 0 (label placed at instruction 0)", s.Instrs[len(s.Instrs)-1].A)
	}
}

func TestEmitJumpPatchesForwardReference(t *testing.T) {
	s := NewStream()
	l := s.NewLabel()
	jumpIdx := len(s.Instrs)
	s.EmitJump(OpJump, l)
	s.Emit(OpLoadConst, 0, 0, 0)
	target := len(s.Instrs)
	s.PlaceLabel(l)
	if got := s.Instrs[jumpIdx].A; got != target {
		t.Errorf("patched jump A = %d, want %d", got, target)
	}
}

func TestLoopStackTopAndPop(t *testing.T) {
	var ls LoopStack
	if _, ok := ls.Top(); ok {
		t.Fatal("Top() on empty stack should report ok=false")
	}
	ls.Push(LoopFrame{ContinueLabel: 1, BreakLabel: 2, Kind: "while"})
	ls.Push(LoopFrame{ContinueLabel: 3, BreakLabel: 4, Kind: "for"})
	top, ok := ls.Top()
	if !ok || top.Kind != "for" {
		t.Errorf("Top() = %+v, ok=%v, want innermost \"for\" frame", top, ok)
	}
	ls.Pop()
	top, ok = ls.Top()
	if !ok || top.Kind != "while" {
		t.Errorf("Top() after Pop() = %+v, want \"while\" frame", top)
	}
}
