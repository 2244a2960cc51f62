package sat

// Heuristic is the branching strategy's capability contract. The solver
// drives search through these four operations only; it never inspects a
// heuristic's internal state. This mirrors the teacher's tight coupling to
// VarOrder generalized to an interface, and matches the BranchingStrategy
// trait of the Rust program this solver's algorithms were distilled from
// (pick_branch/on_conflict/on_assign/on_unassign).
type Heuristic interface {
	// PickBranch returns the next decision literal given the current
	// assignment, or false if every variable is already assigned.
	PickBranch(assigns []LBool) (Literal, bool)

	// OnConflict is called once per conflict, after analyze has built the
	// learned clause, with the variables that appeared in the conflict
	// side's resolution (the "bumped" set). Heuristics that reward
	// conflict participation (VSIDS) use this; others may ignore it.
	OnConflict(bumped []int)

	// OnAssign is called whenever a variable is assigned, by either
	// decision or propagation.
	OnAssign(v int, val LBool)

	// OnUnassign is called whenever a variable is unassigned by
	// backtracking, with the value it held just before being unassigned.
	// Phase-saving heuristics record val here for use by a later
	// PickBranch.
	OnUnassign(v int, val LBool)
}
