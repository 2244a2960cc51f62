package sat

import "github.com/rhartert/yagh"

// VSIDSHeuristic implements the Heuristic interface with variable-state
// independent decaying sum scoring, generalizing the teacher's VarOrder into
// a self-contained implementation of the branching capability contract
// instead of a type the solver reaches into directly.
//
// Score decay (0.95) and the 1e100/1e-100 rescale thresholds are carried
// from the Rust VsidsStrategy this solver's algorithms were distilled from,
// which resolves spec.md's silence on the exact constants.
type VSIDSHeuristic struct {
	order *yagh.IntMap[float64]

	scores     []float64
	scoreInc   float64
	scoreDecay float64

	phases      []LBool
	phaseSaving bool
}

// NewVSIDSHeuristic returns a VSIDSHeuristic with nVars variables, all
// initially scored 0 and phased to initPhase, ready to be popped in
// insertion order until scores diverge.
func NewVSIDSHeuristic(nVars int, decay float64, phaseSaving bool, initPhase bool) *VSIDSHeuristic {
	h := &VSIDSHeuristic{
		order:       yagh.New[float64](0),
		scoreInc:    1,
		scoreDecay:  decay,
		phaseSaving: phaseSaving,
	}
	for v := 0; v < nVars; v++ {
		h.addVar(0, initPhase)
	}
	return h
}

func (h *VSIDSHeuristic) addVar(initScore float64, initPhase bool) {
	varID := len(h.phases)
	h.scores = append(h.scores, initScore)
	h.phases = append(h.phases, Lift(initPhase))
	h.order.GrowBy(1)
	h.order.Put(varID, -initScore)
}

// PickBranch implements Heuristic.
func (h *VSIDSHeuristic) PickBranch(assigns []LBool) (Literal, bool) {
	for {
		next, ok := h.order.Pop()
		if !ok {
			return 0, false
		}
		if assigns[next.Elem] != Unknown {
			continue // stale entry: assigned by propagation since being pushed
		}
		switch h.phases[next.Elem] {
		case False:
			return NegativeLiteral(next.Elem), true
		default:
			return PositiveLiteral(next.Elem), true
		}
	}
}

// OnConflict implements Heuristic: it bumps every variable that
// participated in the conflict's resolution and then decays the increment,
// matching the teacher's BumpScore-per-variable-then-DecayScores-once
// per-conflict cadence.
func (h *VSIDSHeuristic) OnConflict(bumped []int) {
	for _, v := range bumped {
		h.bumpScore(v)
	}
	h.scoreInc /= h.scoreDecay
	if h.scoreInc > 1e100 {
		h.rescale()
	}
}

func (h *VSIDSHeuristic) bumpScore(v int) {
	newScore := h.scores[v] + h.scoreInc
	h.scores[v] = newScore
	if h.order.Contains(v) {
		h.order.Put(v, -newScore)
	}
	if newScore > 1e100 {
		h.rescale()
	}
}

func (h *VSIDSHeuristic) rescale() {
	h.scoreInc *= 1e-100
	for v, s := range h.scores {
		newScore := s * 1e-100
		h.scores[v] = newScore
		if h.order.Contains(v) {
			h.order.Put(v, -newScore)
		}
	}
}

// OnAssign implements Heuristic. VSIDS needs no bookkeeping here: a
// variable assigned by propagation simply becomes a stale heap entry,
// discarded the next time it is popped.
func (h *VSIDSHeuristic) OnAssign(v int, val LBool) {}

// OnUnassign implements Heuristic: re-push v into the heap so it can be
// picked again, saving its last phase if phase saving is enabled.
func (h *VSIDSHeuristic) OnUnassign(v int, val LBool) {
	if h.phaseSaving {
		h.phases[v] = val
	}
	h.order.Put(v, -h.scores[v])
}
