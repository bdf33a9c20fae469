package validator

import (
	"github.com/andrew24601/doofc/internal/ast"
	"github.com/andrew24601/doofc/internal/context"
	"github.com/andrew24601/doofc/internal/diagnostic"
	"github.com/andrew24601/doofc/internal/types"
	"github.com/andrew24601/doofc/internal/unions"
)

// checkStmt type-checks one statement, threading definite-assignment state
// through the validator's current ScopeTracker.
func (v *Validator) checkStmt(s *ast.Node) {
	if s == nil {
		return
	}
	switch s.Kind {
	case ast.KindBlock:
		v.checkBlock(s)
	case ast.KindVarDeclStmt:
		v.checkVarDecl(s)
	case ast.KindExprStmt:
		v.checkExpr(s.Expr, nil)
	case ast.KindIfStmt:
		v.checkIf(s)
	case ast.KindWhileStmt:
		v.checkWhile(s)
	case ast.KindForStmt:
		v.checkFor(s)
	case ast.KindForOfStmt:
		v.checkForOf(s)
	case ast.KindReturnStmt:
		v.checkReturn(s)
	case ast.KindBreakStmt:
		if v.loopDepth == 0 && v.switchDepth == 0 {
			v.errorf(s, diagnostic.KindControlFlowViolation, "break outside a loop or switch")
		}
	case ast.KindContinueStmt:
		if v.loopDepth == 0 {
			v.errorf(s, diagnostic.KindControlFlowViolation, "continue outside a loop")
		}
	case ast.KindSwitchStmt:
		v.checkSwitch(s)
	default:
		v.File.Diagnostics.Internal(v.File.FileName, s.Pos.Line, s.Pos.Column, "unexpected statement kind "+string(s.Kind))
	}
}

func (v *Validator) checkBlock(s *ast.Node) {
	v.File.Hints.Scope.PushBand()
	for _, stmt := range s.Stmts {
		v.checkStmt(stmt)
	}
	v.File.Hints.Scope.PopBand()
}

func (v *Validator) checkVarDecl(s *ast.Node) {
	var declared *types.Type
	var litKind types.LiteralKind
	if s.VarInit != nil {
		declared, litKind = v.checkExpr(s.VarInit, s.VarType)
	}
	t := s.VarType
	if t == nil {
		t = declared
	} else if s.VarInit != nil && !types.AssignableFrom(declared, t, litKind) {
		v.errorf(s, diagnostic.KindTypeMismatch, "cannot initialize %q of type %s with %s", s.VarName, t, declared)
	}
	if t == nil {
		t = types.Void
	}
	if s.IsReadonly {
		t = types.PropagateReadonly(t)
	}
	v.locals[s.VarName] = t

	state := context.Unassigned
	if s.VarInit != nil {
		state = context.Assigned
	} else if types.IsNullable(t) {
		// An uninitialized nullable binding reads as null, so it is
		// trivially definitely-assigned.
		state = context.Assigned
	}
	v.File.Hints.Scope.Declare(s.VarName, state)
}

func (v *Validator) checkIf(s *ast.Node) {
	cn, narrowed := v.deriveCondNarrowing(s.Cond)
	if !narrowed {
		v.checkExpr(s.Cond, types.Prim(types.PrimBool))
	}

	before := v.File.Hints.Scope.Snapshot()

	var prevM []*types.Type
	var had bool
	if narrowed {
		prevM, had = v.pushNarrow(cn.key, cn.thenM)
	}
	v.checkStmt(s.Then)
	if narrowed {
		v.restoreNarrow(cn.key, prevM, had)
	}
	thenSnap := v.File.Hints.Scope.Snapshot()

	v.File.Hints.Scope.Restore(before)
	if s.Else != nil {
		if narrowed {
			prevM, had = v.pushNarrow(cn.key, cn.elseM)
		}
		v.checkStmt(s.Else)
		if narrowed {
			v.restoreNarrow(cn.key, prevM, had)
		}
	}
	elseSnap := v.File.Hints.Scope.Snapshot()

	v.File.Hints.Scope.Restore(context.JoinBranches(thenSnap, elseSnap))
}

func isNullLiteral(n *ast.Node) bool {
	return n != nil && n.Kind == ast.KindLiteral && n.LiteralValue == nil
}

func (v *Validator) checkWhile(s *ast.Node) {
	cn, narrowed := v.deriveCondNarrowing(s.Cond)
	if !narrowed {
		v.checkExpr(s.Cond, types.Prim(types.PrimBool))
	}
	before := v.File.Hints.Scope.Snapshot()
	var prevM []*types.Type
	var had bool
	if narrowed {
		prevM, had = v.pushNarrow(cn.key, cn.thenM)
	}
	v.loopDepth++
	v.checkStmt(s.Body)
	v.loopDepth--
	if narrowed {
		v.restoreNarrow(cn.key, prevM, had)
	}
	after := v.File.Hints.Scope.Snapshot()
	v.File.Hints.Scope.Restore(context.JoinLoop(before, after))
}

func (v *Validator) checkFor(s *ast.Node) {
	v.File.Hints.Scope.PushBand()
	if s.ForInit != nil {
		v.checkStmt(s.ForInit)
	}
	if s.ForCond != nil {
		v.checkExpr(s.ForCond, types.Prim(types.PrimBool))
	}
	before := v.File.Hints.Scope.Snapshot()
	v.loopDepth++
	v.checkStmt(s.Body)
	if s.ForPost != nil {
		v.checkExpr(s.ForPost, nil)
	}
	v.loopDepth--
	after := v.File.Hints.Scope.Snapshot()
	v.File.Hints.Scope.Restore(context.JoinLoop(before, after))
	v.File.Hints.Scope.PopBand()
}

func (v *Validator) checkForOf(s *ast.Node) {
	iterT, _ := v.checkExpr(s.Iterable, nil)

	v.File.Hints.Scope.PushBand()
	switch iterT.Kind {
	case types.KindArray, types.KindSet:
		v.locals[s.LoopVarName] = iterT.Elem
		v.File.Hints.Scope.Declare(s.LoopVarName, context.Assigned)
	case types.KindMap:
		if s.LoopVarName2 != "" {
			// `for (key, value) of someMap` destructuring (resolved open
			// question: accepted with two loop variables).
			v.locals[s.LoopVarName] = iterT.Key
			v.locals[s.LoopVarName2] = iterT.Value
			v.File.Hints.Scope.Declare(s.LoopVarName, context.Assigned)
			v.File.Hints.Scope.Declare(s.LoopVarName2, context.Assigned)
		} else {
			v.locals[s.LoopVarName] = iterT.Key
			v.File.Hints.Scope.Declare(s.LoopVarName, context.Assigned)
		}
	default:
		v.errorf(s.Iterable, diagnostic.KindTypeMismatch, "%s is not iterable", iterT)
		v.locals[s.LoopVarName] = types.Void
		v.File.Hints.Scope.Declare(s.LoopVarName, context.Assigned)
	}

	before := v.File.Hints.Scope.Snapshot()
	v.loopDepth++
	v.checkStmt(s.Body)
	v.loopDepth--
	after := v.File.Hints.Scope.Snapshot()
	v.File.Hints.Scope.Restore(context.JoinLoop(before, after))
	v.File.Hints.Scope.PopBand()
}

func (v *Validator) checkReturn(s *ast.Node) {
	var want *types.Type
	if v.currentFunc != nil {
		want = v.currentFunc.ReturnType
	}
	isVoid := want == nil || (want.Kind == types.KindPrimitive && want.Primitive == types.PrimVoid)
	if s.Expr == nil {
		if !isVoid {
			v.errorf(s, diagnostic.KindTypeMismatch, "missing return value, expected %s", want)
		}
		return
	}
	got, litKind := v.checkExpr(s.Expr, want)
	if want != nil && !types.AssignableFrom(got, want, litKind) {
		v.errorf(s.Expr, diagnostic.KindTypeMismatch, "cannot return %s as %s", got, want)
	}
}

func (v *Validator) checkSwitch(s *ast.Node) {
	subjectType, _ := v.checkExpr(s.SwitchSubject, nil)
	disc := v.detectSwitchDiscriminant(subjectType)
	subjectKey, haveSubjectKey := narrowKey(s.SwitchSubject)

	v.switchDepth++
	var branchSnaps []context.Snapshot
	before := v.File.Hints.Scope.Snapshot()
	for _, c := range s.SwitchCases {
		v.File.Hints.Scope.Restore(before)
		v.File.Hints.Scope.PushBand()

		var prevM []*types.Type
		var had, pushed bool
		for _, val := range c.Values {
			v.checkExpr(val, subjectType)
			if disc != nil && len(c.Values) == 1 {
				thenM, _ := unions.NarrowEquality(types.UnionMembers(subjectType), disc, val.LiteralValue)
				v.File.Hints.Narrowing[s.SwitchSubject] = &context.Narrowing{Members: thenM}
				if haveSubjectKey {
					prevM, had = v.pushNarrow(subjectKey, thenM)
					pushed = true
				}
			}
		}
		for _, stmt := range c.Body {
			v.checkStmt(stmt)
		}
		if pushed {
			v.restoreNarrow(subjectKey, prevM, had)
		}
		v.File.Hints.Scope.PopBand()
		branchSnaps = append(branchSnaps, v.File.Hints.Scope.Snapshot())
	}
	v.switchDepth--

	hasDefault := false
	for _, c := range s.SwitchCases {
		if len(c.Values) == 0 {
			hasDefault = true
		}
	}
	if hasDefault && len(branchSnaps) > 0 {
		v.File.Hints.Scope.Restore(context.JoinBranches(branchSnaps...))
	} else {
		v.File.Hints.Scope.Restore(before)
	}
}

func (v *Validator) detectSwitchDiscriminant(subjectType *types.Type) *unions.Discriminant {
	if subjectType.Kind != types.KindUnion {
		return nil
	}
	return unions.DetectDiscriminant(subjectType.Members, v.classFieldsLookup())
}
