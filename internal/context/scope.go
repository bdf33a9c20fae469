package context

// AssignState is a variable's definite-assignment state.
type AssignState int

const (
	Unassigned AssignState = iota
	Maybe
	Assigned
)

// ScopeTracker is the stack of variable-visibility bands described in spec
// §3.3. Each band corresponds to one lexical scope (function body, block,
// loop body); declaring a variable adds it to the innermost band, and
// lookups search outward.
type ScopeTracker struct {
	bands []map[string]AssignState
}

// NewScopeTracker creates a tracker with a single top-level band.
func NewScopeTracker() *ScopeTracker {
	return &ScopeTracker{bands: []map[string]AssignState{{}}}
}

// PushBand opens a new nested scope.
func (s *ScopeTracker) PushBand() {
	s.bands = append(s.bands, map[string]AssignState{})
}

// PopBand closes the innermost scope.
func (s *ScopeTracker) PopBand() {
	if len(s.bands) > 1 {
		s.bands = s.bands[:len(s.bands)-1]
	}
}

// Declare introduces name into the innermost band with the given initial
// state. Parameters and module-level const/readonly are declared Assigned;
// `let x: T` is declared Unassigned unless T is nullable (the caller
// decides the initial state).
func (s *ScopeTracker) Declare(name string, state AssignState) {
	s.bands[len(s.bands)-1][name] = state
}

// Get returns name's current state, searching outward through bands.
func (s *ScopeTracker) Get(name string) (AssignState, bool) {
	for i := len(s.bands) - 1; i >= 0; i-- {
		if st, ok := s.bands[i][name]; ok {
			return st, true
		}
	}
	return Unassigned, false
}

// Set updates name's state in whichever band declared it. Returns false if
// name was never declared (a validator bug, not a user error).
func (s *ScopeTracker) Set(name string, state AssignState) bool {
	for i := len(s.bands) - 1; i >= 0; i-- {
		if _, ok := s.bands[i][name]; ok {
			s.bands[i][name] = state
			return true
		}
	}
	return false
}

// Snapshot captures the currently-visible state of every declared
// variable, flattened across bands, for branch-join analysis.
type Snapshot map[string]AssignState

// Snapshot returns the flattened view of every variable visible right now.
func (s *ScopeTracker) Snapshot() Snapshot {
	flat := make(Snapshot)
	for _, band := range s.bands {
		for k, v := range band {
			flat[k] = v
		}
	}
	return flat
}

// Restore writes snap's states back into whichever bands currently hold
// each variable (used after validating one branch, before validating the
// next, so branches don't see each other's tentative assignments).
func (s *ScopeTracker) Restore(snap Snapshot) {
	for name, st := range snap {
		s.Set(name, st)
	}
}

func minState(a, b AssignState) AssignState {
	if a < b {
		return a
	}
	return b
}

// JoinBranches implements the if/else join: a variable is assigned iff
// it is assigned in every branch. Variables absent from a branch's snapshot are
// treated as Unassigned in that branch.
func JoinBranches(branches ...Snapshot) Snapshot {
	result := make(Snapshot)
	if len(branches) == 0 {
		return result
	}
	seen := make(map[string]bool)
	for _, b := range branches {
		for name := range b {
			seen[name] = true
		}
	}
	for name := range seen {
		state := Assigned
		for _, b := range branches {
			st, ok := b[name]
			if !ok {
				st = Unassigned
			}
			state = minState(state, st)
		}
		result[name] = state
	}
	return result
}

// JoinLoop implements the loop join: loops conservatively
// treat the body as possibly-skipped, so a variable that became more
// assigned inside the body settles to Maybe rather than Assigned, unless
// it was already Assigned before the loop.
func JoinLoop(before, afterBody Snapshot) Snapshot {
	result := make(Snapshot)
	for name, b := range before {
		if b == Assigned {
			result[name] = Assigned
			continue
		}
		a, ok := afterBody[name]
		if ok && a > b {
			result[name] = Maybe
		} else {
			result[name] = b
		}
	}
	for name, a := range afterBody {
		if _, ok := before[name]; !ok {
			// Declared inside the loop body; outside the loop it's as if
			// the body never ran.
			if a > Unassigned {
				result[name] = Maybe
			} else {
				result[name] = Unassigned
			}
		}
	}
	return result
}
