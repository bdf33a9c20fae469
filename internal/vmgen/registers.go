// Package vmgen is the register-based VM backend (spec §4.7): a flat
// register allocator with free-list reuse, a fixed-width instruction
// stream with label patching, a loop-context stack for break/continue,
// and per-numeric-type opcode selection driven by the validator's
// per-expression type table. The bytecode container (one function's
// instruction stream, its register high-water mark, and its constant
// pool) is serialized as JSON via github.com/go-json-experiment/json —
// the fastest correctly-typed marshaler in the example pack, reused here
// the way the teacher's own JSON-heavy metadata layer would reach for it.
package vmgen

import (
	"fmt"
	"sort"
)

// Register is an index into a function's flat register file.
type Register int

// Allocator lays registers out in four contiguous bands, in order:
// the return slot (register 0), parameters (1..P, preceded by `this` for
// methods), locals (P+1..P+L), and temporaries above that. Only the
// temporary band is ever freed and reused.
type Allocator struct {
	high    Register // one past the highest register ever allocated
	tempLo  Register // first register in the temporary band
	free    []Register
	blocks  map[Register]int // contiguous-block start -> length, for allocateContiguous bookkeeping
}

// NewAllocator creates an Allocator whose temporary band begins at
// tempBase: 1 (return slot) + len(params) [+1 for `this`] + len(locals).
func NewAllocator(tempBase Register) *Allocator {
	return &Allocator{high: tempBase, tempLo: tempBase, blocks: make(map[Register]int)}
}

// AllocateTemporary draws from the LIFO free list first, falling back to
// extending the high-water mark.
func (a *Allocator) AllocateTemporary() Register {
	if n := len(a.free); n > 0 {
		r := a.free[n-1]
		a.free = a.free[:n-1]
		return r
	}
	r := a.high
	a.high++
	return r
}

// FreeTemporary returns r to the free list. Freeing a register outside the
// temporary band is a compiler-internal error: the caller must never ask
// for a local or parameter to be freed.
func (a *Allocator) FreeTemporary(r Register) {
	if r < a.tempLo {
		panic(fmt.Sprintf("vmgen: freeing non-temporary register r%d", r))
	}
	a.free = append(a.free, r)
}

// AllocateContiguous reserves n adjacent registers, never drawing from the
// single-register free list: it prefers an exact-size freed contiguous
// block (tracked separately via FreeContiguous), else extends the
// high-water mark.
func (a *Allocator) AllocateContiguous(n int) Register {
	starts := make([]Register, 0, len(a.blocks))
	for start := range a.blocks {
		starts = append(starts, start)
	}
	sort.Slice(starts, func(i, j int) bool { return starts[i] < starts[j] })
	for _, start := range starts {
		if a.blocks[start] == n {
			delete(a.blocks, start)
			return start
		}
	}
	start := a.high
	a.high += Register(n)
	return start
}

// FreeContiguous returns an n-register block to the contiguous free pool,
// merging with an adjacent block when the two abut so a later
// AllocateContiguous of the combined size can reuse them as one.
func (a *Allocator) FreeContiguous(start Register, n int) {
	starts := make([]Register, 0, len(a.blocks))
	for s := range a.blocks {
		starts = append(starts, s)
	}
	sort.Slice(starts, func(i, j int) bool { return starts[i] < starts[j] })
	for _, s := range starts {
		l := a.blocks[s]
		if s+Register(l) == start {
			delete(a.blocks, s)
			start, n = s, l+n
			break
		}
		if start+Register(n) == s {
			delete(a.blocks, s)
			n = n + l
			break
		}
	}
	a.blocks[start] = n
}

// HighWaterMark returns the number of registers the function needs.
func (a *Allocator) HighWaterMark() int { return int(a.high) }
