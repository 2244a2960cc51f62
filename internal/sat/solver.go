package sat

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// LBool represents a lifted boolean. That is, a boolean that can either be
// True, False, or Unknown.
type LBool int8

const (
	Unknown LBool = 0
	True    LBool = 1
	False   LBool = -1
)

// Opposite returns the opposite of the lifted boolean as follows:
//
//	True -> False
//	False -> True
//	Unknown -> Unknown
func (l LBool) Opposite() LBool {
	return -l
}

// Lift returns a LBool corresponding to the given bool.
func Lift(b bool) LBool {
	if b {
		return True
	} else {
		return False
	}
}

func (l LBool) String() string {
	switch l {
	case True:
		return "true"
	case False:
		return "false"
	default:
		return "unknown"
	}
}

// Solver is a CDCL SAT solver: two-watched-literals Boolean constraint
// propagation, 1-UIP conflict analysis with non-chronological backjumping,
// and a pluggable branching Heuristic. It has no restart policy and no
// clause-database reduction: every clause added via AddClause or learned
// via conflict analysis lives for the solver's entire lifetime, and an
// index into s.clauses stays valid once assigned.
type Solver struct {
	clauses []*Clause

	opts      Options
	heuristic Heuristic

	watchers [][]watcher

	// assigns is indexed by Literal: assigns[l] and assigns[l.Opposite()]
	// are always kept as exact opposites. varVal mirrors the same state
	// indexed by variable, which is what the branching Heuristic needs.
	assigns []LBool
	varVal  []LBool

	trail    []Literal
	trailLim []int
	reason   []*Clause
	level    []int

	// qHead is the index of the next trail literal to propagate. Unlike
	// the teacher's separate ring-buffer propagation queue, propagation
	// here walks the trail directly: everything from qHead onward is
	// unpropagated.
	qHead int

	unsat bool

	stats Stats

	models [][]bool

	// analyzeSeen and analyzeToClear implement the seen-set used by
	// analyze. Entries are cleared by walking analyzeToClear rather than
	// zeroing the whole analyzeSeen slice, keeping clear cost O(k) in the
	// number of variables touched by one conflict rather than O(n) in the
	// number of variables in the problem.
	analyzeSeen    []bool
	analyzeToClear []int
	analyzeBumped  []int

	// Scratch buffers reused across calls to avoid repeated allocation.
	tmpWatchers []watcher
	learntBuf   []Literal
	reasonBuf   []Literal

	log *logrus.Entry
}

// watcher represents a clause attached to the watch list of a literal.
type watcher struct {
	clause *Clause

	// blocker is one of the clause's other literals. If it is already
	// true, the clause can be skipped without touching it, which is the
	// main win of the two-watched-literals scheme over naive propagation.
	blocker Literal
}

// Options configures a Solver's branching heuristic. Heuristic, when set,
// overrides the default VSIDS branching heuristic entirely; VariableDecay
// and PhaseSaving are ignored in that case since they are VSIDS-specific
// tuning knobs the caller's factory is responsible for applying itself.
type Options struct {
	Heuristic     func(nVars int) Heuristic
	VariableDecay float64
	PhaseSaving   bool
	Logger        *logrus.Logger
}

// DefaultOptions returns the options a plain `yass-xor solve` invocation
// runs with: VSIDS branching with phase saving on.
func DefaultOptions() Options {
	return Options{
		VariableDecay: 0.95,
		PhaseSaving:   true,
		Logger:        logrus.StandardLogger(),
	}
}

// Stats accumulates search counters surfaced to the CLI and to logging.
type Stats struct {
	Decisions    int64
	Propagations int64
	Conflicts    int64
}

// NewSolver returns an empty solver. Variables must be declared with
// AddVariable before clauses referencing them are added. A branching
// heuristic is built lazily from opts on the first call to Solve, unless
// UseHeuristic is called first to install one explicitly.
func NewSolver(opts Options) *Solver {
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	return &Solver{
		opts: opts,
		log:  logrus.NewEntry(opts.Logger),
	}
}

// NewDefaultSolver returns a solver configured with DefaultOptions.
func NewDefaultSolver() *Solver {
	return NewSolver(DefaultOptions())
}

func (s *Solver) NumVariables() int { return len(s.varVal) }
func (s *Solver) NumAssigns() int   { return len(s.trail) }
func (s *Solver) NumClauses() int   { return len(s.clauses) }

func (s *Solver) VarValue(v int) LBool     { return s.varVal[v] }
func (s *Solver) LitValue(l Literal) LBool { return s.assigns[l] }

func (s *Solver) decisionLevel() int { return len(s.trailLim) }

// AddVariable declares a new variable and returns its 0-based ID.
func (s *Solver) AddVariable() int {
	v := s.NumVariables()
	s.watchers = append(s.watchers, nil, nil)
	s.assigns = append(s.assigns, Unknown, Unknown)
	s.varVal = append(s.varVal, Unknown)
	s.reason = append(s.reason, nil)
	s.level = append(s.level, -1)
	s.analyzeSeen = append(s.analyzeSeen, false)
	return v
}

// UseHeuristic installs h as the branching heuristic, overriding whatever
// Options.Heuristic would otherwise build. Must be called after every
// variable has been declared (heuristics size their internal tables from
// NumVariables) and before Solve.
func (s *Solver) UseHeuristic(h Heuristic) {
	s.heuristic = h
}

// ensureHeuristic installs a branching heuristic if one was not already
// set via UseHeuristic: opts.Heuristic if the caller supplied a factory,
// otherwise a VSIDS heuristic tuned from opts.VariableDecay/PhaseSaving.
func (s *Solver) ensureHeuristic() {
	if s.heuristic != nil {
		return
	}
	if s.opts.Heuristic != nil {
		s.heuristic = s.opts.Heuristic(s.NumVariables())
		return
	}
	s.heuristic = NewVSIDSHeuristic(s.NumVariables(), s.opts.VariableDecay, s.opts.PhaseSaving, true)
}

// watch registers clause c to be revisited when literal on becomes true,
// with blocker used to short-circuit propagation while it holds.
func (s *Solver) watch(c *Clause, on Literal, blocker Literal) {
	s.watchers[on] = append(s.watchers[on], watcher{clause: c, blocker: blocker})
}

// AddClause adds a clause given as raw literals. It may only be called at
// decision level 0. Literals are sorted, de-duplicated and checked for
// tautology; a unit clause is enqueued directly without allocating a
// Clause, and an empty or already-falsified clause marks the solver
// unsatisfiable.
func (s *Solver) AddClause(lits []Literal) error {
	if s.decisionLevel() != 0 {
		return fmt.Errorf("sat: AddClause called at decision level %d, want 0", s.decisionLevel())
	}
	if s.unsat {
		return nil
	}

	buf := append([]Literal(nil), lits...)
	buf, tautology := sortDedupLiterals(buf)
	if tautology {
		return nil
	}

	// Drop literals already falsified by a prior root-level fact and bail
	// out entirely if one is already satisfied: a watch registered on an
	// already-assigned literal would never fire, since watches trigger on
	// the literal becoming false, not on it being checked after the fact.
	k := 0
	for _, l := range buf {
		switch s.LitValue(l) {
		case True:
			return nil
		case False:
			continue
		default:
			buf[k] = l
			k++
		}
	}
	buf = buf[:k]

	switch len(buf) {
	case 0:
		s.unsat = true
		return nil
	case 1:
		if !s.enqueue(buf[0], nil) {
			s.unsat = true
		}
	default:
		s.clauses = append(s.clauses, newClause(s, buf, false))
	}

	if conflict := s.Propagate(); conflict != nil {
		s.unsat = true
	}
	return nil
}

// addLearnt adds a clause produced by conflict analysis and immediately
// enqueues its asserting literal (learnt[0]), which is unit under the
// trail at the level backtrack brought the solver to.
func (s *Solver) addLearnt(lits []Literal) {
	if len(lits) == 1 {
		s.enqueue(lits[0], nil)
		return
	}
	c := newClause(s, lits, true)
	s.clauses = append(s.clauses, c)
	s.enqueue(lits[0], c)
}

// enqueue assigns l to True with from as its reason (nil for a decision
// or a root-level unit fact). Returns false if l is already assigned to
// False, i.e. a conflicting assignment.
func (s *Solver) enqueue(l Literal, from *Clause) bool {
	switch s.LitValue(l) {
	case False:
		return false
	case True:
		return true
	default:
		v := l.VarID()
		s.assigns[l] = True
		s.assigns[l.Opposite()] = False
		if l.IsPositive() {
			s.varVal[v] = True
		} else {
			s.varVal[v] = False
		}
		s.level[v] = s.decisionLevel()
		s.reason[v] = from
		s.trail = append(s.trail, l)
		if s.heuristic != nil {
			s.heuristic.OnAssign(v, s.varVal[v])
		}
		return true
	}
}

// Propagate runs unit propagation to a fixed point, returning the clause
// that falsified under the current assignment, or nil if none did. On a
// conflict, the trail and watch lists still reflect the state at the
// moment of conflict; the caller is expected to call analyze next.
func (s *Solver) Propagate() *Clause {
	for s.qHead < len(s.trail) {
		l := s.trail[s.qHead]
		s.qHead++
		s.stats.Propagations++

		s.tmpWatchers = append(s.tmpWatchers[:0], s.watchers[l]...)
		s.watchers[l] = s.watchers[l][:0]

		for i, w := range s.tmpWatchers {
			if s.LitValue(w.blocker) == True {
				s.watchers[l] = append(s.watchers[l], w)
				continue
			}
			if w.clause.Propagate(s, l) {
				continue
			}

			// Conflict: put back whatever watchers we haven't looked at
			// yet and stop, discarding the rest of the propagation queue.
			s.watchers[l] = append(s.watchers[l], s.tmpWatchers[i+1:]...)
			s.qHead = len(s.trail)
			return w.clause
		}
	}
	return nil
}

// analyze performs first-UIP conflict analysis starting from confl, the
// clause that just became empty under the current assignment. It returns
// the learned clause (the asserting literal first) and the decision level
// to backjump to. s.analyzeBumped holds every variable touched by the
// analysis, for the heuristic's OnConflict callback.
func (s *Solver) analyze(confl *Clause) ([]Literal, int) {
	nPathsToExplore := 0

	s.learntBuf = s.learntBuf[:0]
	s.learntBuf = append(s.learntBuf, 0) // placeholder for the UIP literal

	s.analyzeToClear = s.analyzeToClear[:0]
	s.analyzeBumped = s.analyzeBumped[:0]

	trailIdx := len(s.trail) - 1
	l := Literal(-1)
	backtrackLevel := 0

	for {
		if l == -1 {
			confl.explainConflict(&s.reasonBuf)
		} else {
			confl.explainAssign(&s.reasonBuf)
		}

		for _, q := range s.reasonBuf {
			v := q.VarID()
			if s.analyzeSeen[v] {
				continue
			}
			s.analyzeSeen[v] = true
			s.analyzeToClear = append(s.analyzeToClear, v)
			s.analyzeBumped = append(s.analyzeBumped, v)

			if s.level[v] == s.decisionLevel() {
				nPathsToExplore++
				continue
			}

			s.learntBuf = append(s.learntBuf, q.Opposite())
			if s.level[v] > backtrackLevel {
				backtrackLevel = s.level[v]
			}
		}

		// Walk the trail backward to the next literal that is seen, i.e.
		// the next node on the current decision level's implication path.
		for {
			l = s.trail[trailIdx]
			trailIdx--
			if s.analyzeSeen[l.VarID()] {
				break
			}
		}
		confl = s.reason[l.VarID()]

		nPathsToExplore--
		if nPathsToExplore <= 0 {
			break
		}
	}

	s.learntBuf[0] = l.Opposite()

	for _, v := range s.analyzeToClear {
		s.analyzeSeen[v] = false
	}

	return s.learntBuf, backtrackLevel
}

func (s *Solver) undoOne() {
	l := s.trail[len(s.trail)-1]
	v := l.VarID()
	val := s.varVal[v]

	s.assigns[l] = Unknown
	s.assigns[l.Opposite()] = Unknown
	s.varVal[v] = Unknown
	s.reason[v] = nil
	s.level[v] = -1

	s.trail = s.trail[:len(s.trail)-1]
	if s.qHead > len(s.trail) {
		s.qHead = len(s.trail)
	}

	if s.heuristic != nil {
		s.heuristic.OnUnassign(v, val)
	}
}

func (s *Solver) assume(l Literal) bool {
	s.trailLim = append(s.trailLim, len(s.trail))
	return s.enqueue(l, nil)
}

func (s *Solver) cancel() {
	n := len(s.trail) - s.trailLim[len(s.trailLim)-1]
	for ; n > 0; n-- {
		s.undoOne()
	}
	s.trailLim = s.trailLim[:len(s.trailLim)-1]
}

// cancelUntil backtracks to the given decision level, undoing every
// assignment made above it.
func (s *Solver) cancelUntil(level int) {
	for s.decisionLevel() > level {
		s.cancel()
	}
}

// Model returns the satisfying assignment found by the last successful
// Solve call, one bool per variable. It panics if Solve has never
// returned True: Solve backtracks to decision level 0 before returning so
// that AddClause can be called again (the Models enumeration idiom), which
// means the live assignment no longer holds the solution by the time a
// caller can reach it — Model instead returns the snapshot Solve captured
// into s.models at the moment the assignment was complete.
func (s *Solver) Model() []bool {
	if len(s.models) == 0 {
		s.log.Panic("sat: Model called before Solve returned True")
	}
	return s.models[len(s.models)-1]
}

// snapshotModel captures the current (complete) assignment as a model,
// one bool per variable. Called by Solve while the trail still reflects
// the satisfying assignment, before any backtracking.
func (s *Solver) snapshotModel() []bool {
	model := make([]bool, s.NumVariables())
	for v := range model {
		lb := s.VarValue(v)
		if lb == Unknown {
			s.log.Panic("sat: snapshotModel called with an incomplete assignment")
		}
		model[v] = lb == True
	}
	return model
}

// Models accumulates every model found by a True-returning Solve call, in
// the order they were found. Calling AddClause to forbid the last model and
// calling Solve again is the idiom for enumerating every model of an
// instance; Solve leaves the trail backtracked to level 0 on a True verdict
// specifically so that idiom works.
func (s *Solver) Models() [][]bool {
	return s.models
}

// Solve runs the CDCL loop to completion: no restarts, no periodic
// clause-database reduction. It returns True or False; Unknown is never
// returned since there is no conflict or time budget to exhaust.
func (s *Solver) Solve() LBool {
	if s.unsat {
		return False
	}
	s.ensureHeuristic()
	start := time.Now()

	for {
		conflict := s.Propagate()
		if conflict != nil {
			s.stats.Conflicts++

			if s.decisionLevel() == 0 {
				s.unsat = true
				return False
			}

			learnt, backtrackLevel := s.analyze(conflict)
			s.cancelUntil(backtrackLevel)
			s.addLearnt(learnt)
			if s.heuristic != nil {
				s.heuristic.OnConflict(s.analyzeBumped)
			}
			continue
		}

		if s.NumAssigns() == s.NumVariables() {
			s.log.WithFields(logrus.Fields{
				"conflicts":    s.stats.Conflicts,
				"propagations": s.stats.Propagations,
				"elapsed":      time.Since(start),
			}).Info("sat: solution found")
			s.models = append(s.models, s.snapshotModel())
			s.cancelUntil(0)
			return True
		}

		lit, ok := s.heuristic.PickBranch(s.varVal)
		if !ok {
			s.log.Panic("sat: heuristic found no branch but assignment is incomplete")
		}
		s.stats.Decisions++
		s.assume(lit)
	}
}
