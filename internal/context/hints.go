package context

import (
	"github.com/andrew24601/doofc/internal/ast"
	"github.com/andrew24601/doofc/internal/types"
)

// CalleeKind classifies what a CallDispatch record resolved to.
type CalleeKind int

const (
	CalleeFunction CalleeKind = iota
	CalleeMethod
	CalleeConstructor
	CalleeBuiltin
)

// CallDispatch is the per-call record of a resolved call expression: the
// resolved callee, the final positional argument order after any
// named-argument reorder, and whether that reorder needs temporaries
// because argument expressions have side effects.
type CallDispatch struct {
	Kind     CalleeKind
	Callee   *ast.Node // FunctionDecl/method/constructor decl; nil for builtins
	Builtin  string    // builtin name, set when Kind == CalleeBuiltin

	// PositionalOrder[i] is the index into the call's original Args slice
	// that should be evaluated/passed as positional argument i. Identity
	// order ([0,1,2,...]) means no reorder occurred.
	PositionalOrder []int

	// NeedsTemporaries is true when PositionalOrder differs from identity
	// and at least one reordered argument expression is not
	// side-effect-free, per the conservative predicate below.
	NeedsTemporaries bool
}

// IsReordered reports whether PositionalOrder differs from identity order.
func (d *CallDispatch) IsReordered() bool {
	for i, idx := range d.PositionalOrder {
		if idx != i {
			return true
		}
	}
	return false
}

// Narrowing is the per-AST-node narrowing record:
// which union members a branch restricts a subject expression to, and
// whether that restriction is "flat" (a single member, so direct field
// access is valid) or remains a generic visitor access.
type Narrowing struct {
	// Members is the restricted member-type subset, in the subject's
	// original union order.
	Members []*types.Type
}

// IsFlat reports whether the narrowing restricts to exactly one member.
func (n *Narrowing) IsFlat() bool {
	return len(n.Members) == 1
}

// ObjectInstantiation records the union member selected for an untagged
// object literal assigned to a union-of-classes target.
type ObjectInstantiation struct {
	SelectedClass string
}

// CodegenHints is the per-file hints record the validator fills in for
// the codegen backends to consume.
type CodegenHints struct {
	// JSONPrintTypes is the set of class names requiring _toJSON emission.
	JSONPrintTypes map[string]bool
	// JSONFromTypes is the set of class names requiring fromJSON emission.
	JSONFromTypes map[string]bool

	// CallDispatch is keyed by the call expression node's identity.
	CallDispatch map[*ast.Node]*CallDispatch

	// Scope is the definite-assignment scope tracker for the function body
	// currently being validated; callers push/pop per function.
	Scope *ScopeTracker

	// Narrowing is keyed by the AST node identity of the expression whose
	// static type is narrowed within a branch (typically the subject
	// identifier/member-access node as it appears in that branch).
	Narrowing map[*ast.Node]*Narrowing

	// ObjectInstantiation is keyed by the object-literal expression node.
	ObjectInstantiation map[*ast.Node]*ObjectInstantiation

	// ExternDeps is the set of extern class names referenced from this
	// file, used by the VM backend to emit glue only for classes actually
	// used.
	ExternDeps map[string]bool

	// Types is the per-expression static type table, keyed by AST node
	// identity: every expression's inferred type, recorded once by the
	// validator so a backend never re-derives it (e.g. the VM backend's
	// per-numeric-type opcode choice, the C++ backend's type mapping).
	Types map[*ast.Node]*types.Type
}

// NewCodegenHints creates an empty CodegenHints record.
func NewCodegenHints() *CodegenHints {
	return &CodegenHints{
		JSONPrintTypes:      make(map[string]bool),
		JSONFromTypes:       make(map[string]bool),
		CallDispatch:        make(map[*ast.Node]*CallDispatch),
		Narrowing:           make(map[*ast.Node]*Narrowing),
		ObjectInstantiation: make(map[*ast.Node]*ObjectInstantiation),
		ExternDeps:          make(map[string]bool),
		Types:               make(map[*ast.Node]*types.Type),
	}
}

// MarkJSONPrint records that class name (and everything reachable from it)
// must emit _toJSON / operator<<.
func (h *CodegenHints) MarkJSONPrint(name string) {
	h.JSONPrintTypes[name] = true
}

// MarkJSONFrom records that class name must emit fromJSON / _fromJSON.
func (h *CodegenHints) MarkJSONFrom(name string) {
	h.JSONFromTypes[name] = true
}
