package sat

import (
	"fmt"
	"strings"
)

// Literal represents a literal, which either represent a boolean variable or
// its negation. Encoded as 2*varID + negBit so that Opposite is a single
// XOR and VarID/IsPositive are a shift and a bit test.
type Literal int

// PositiveLiteral returns the positive literal of variable v.
func PositiveLiteral(v int) Literal {
	return Literal(v * 2)
}

// NegativeLiteral returns the negative literal of variable v.
func NegativeLiteral(v int) Literal {
	return Literal(v*2 + 1)
}

// VarID returns the ID of the literal's variable.
func (l Literal) VarID() int {
	return int(l) / 2
}

// IsPositive returns true if and only if the literal represent the value of
// its boolean variable (i.e. not its negation)
func (l Literal) IsPositive() bool {
	return l&1 == 0
}

// Opposite returns the opposite literal.
func (l Literal) Opposite() Literal {
	return l ^ 1
}

func (l Literal) String() string {
	if l.IsPositive() {
		return fmt.Sprintf("%d", l.VarID())
	} else {
		return fmt.Sprintf("!%d", l.VarID())
	}
}

// Clause is an ordered, de-duplicated disjunction of literals. Clauses added
// through Solver.AddClause start out sorted; a learnt clause starts with its
// asserting literal first, and Propagate reorders literals as watches move.
//
// Clauses are owned by the Solver and are never destroyed once created: the
// solver has no clause-database reduction, so an index into Solver.clauses
// remains stable and valid for the lifetime of the solve. literals[0] and
// literals[1] are the clause's two currently watched literals; this
// invariant is maintained by Propagate and by the constructors below and
// must never be violated elsewhere.
type Clause struct {
	literals []Literal
	learnt   bool
}

// newClause builds a clause from already de-duplicated, non-trivial literals
// (len >= 2) and registers its two watches. The caller is responsible for
// de-duplicating and checking for tautology/unit cases before calling this;
// Solver.AddClause also sorts, while Solver.addLearnt passes the learnt
// clause with its asserting literal first.
func newClause(s *Solver, literals []Literal, learnt bool) *Clause {
	c := &Clause{
		literals: append([]Literal(nil), literals...),
		learnt:   learnt,
	}

	if learnt {
		// The asserting literal (the UIP's negation) must sit at position 0;
		// the literal with the highest decision level among the rest is
		// moved to position 1 so that it is the one watched alongside it.
		// This guarantees the clause is immediately unit under the
		// backjumped trail.
		maxLevel := -1
		swapWith := 1
		for i := 1; i < len(c.literals); i++ {
			if lvl := s.level[c.literals[i].VarID()]; lvl > maxLevel {
				maxLevel = lvl
				swapWith = i
			}
		}
		c.literals[1], c.literals[swapWith] = c.literals[swapWith], c.literals[1]
	}

	s.watch(c, c.literals[0].Opposite(), c.literals[1])
	s.watch(c, c.literals[1].Opposite(), c.literals[0])

	return c
}

// Propagate is invoked when l has just become True, so that l.Opposite(),
// one of c's two watched literals, is now False. It restores the two-watched-literals invariant for c and reports
// whether c remains consistent with the current (possibly still-changing)
// assignment.
//
// Returns false only when c has become a unit clause whose remaining literal
// is also False, i.e. a conflict; in every other case c's watches have been
// repaired (possibly moved to a different literal's list) and true is
// returned. If c became unit with its first literal still unassigned, that
// literal is enqueued with c as its reason as a side effect.
func (c *Clause) Propagate(s *Solver, l Literal) bool {
	// Normalize so that literals[1] is always the literal that just became
	// False; literals[0] is then the sole candidate to be forced True.
	falsified := l.Opposite()
	if c.literals[0] == falsified {
		c.literals[0], c.literals[1] = c.literals[1], c.literals[0]
	}

	if s.LitValue(c.literals[0]) == True {
		// Already satisfied by the other watch; re-attach with an updated
		// blocker and stop here without touching the rest of the clause.
		s.watch(c, l, c.literals[0])
		return true
	}

	for i := 2; i < len(c.literals); i++ {
		if s.LitValue(c.literals[i]) != False {
			c.literals[1], c.literals[i] = c.literals[i], c.literals[1]
			s.watch(c, c.literals[1].Opposite(), c.literals[0])
			return true
		}
	}

	// No replacement watch found: every literal but literals[0] is False.
	// literals[0] must be forced True, or the clause is empty under the
	// current assignment.
	s.watch(c, l, c.literals[0])
	return s.enqueue(c.literals[0], c)
}

// explainConflict returns the negation of every literal in c, used when c is
// itself the conflicting clause passed into analyze.
func (c *Clause) explainConflict(buf *[]Literal) {
	out := (*buf)[:0]
	for _, lit := range c.literals {
		out = append(out, lit.Opposite())
	}
	*buf = out
}

// explainAssign returns the negation of every literal in c except
// literals[0], used when c is the reason an already-assigned literal was
// forced.
func (c *Clause) explainAssign(buf *[]Literal) {
	out := (*buf)[:0]
	for _, lit := range c.literals[1:] {
		out = append(out, lit.Opposite())
	}
	*buf = out
}

func (c *Clause) String() string {
	if len(c.literals) == 0 {
		return "Clause[]"
	}
	var sb strings.Builder
	sb.WriteString("Clause[")
	sb.WriteString(c.literals[0].String())
	for _, l := range c.literals[1:] {
		sb.WriteByte(' ')
		sb.WriteString(l.String())
	}
	sb.WriteByte(']')
	return sb.String()
}

// sortDedupLiterals sorts lits by encoded literal value and removes
// duplicates in place, returning the shortened slice. It also reports
// whether the clause is a tautology (contains both a literal and its
// negation), in which case the caller must discard the clause entirely.
func sortDedupLiterals(lits []Literal) ([]Literal, bool) {
	insertionSortLiterals(lits)

	tautology := false
	k := 0
	for i := 0; i < len(lits); i++ {
		if k > 0 && lits[k-1] == lits[i] {
			continue // duplicate
		}
		if k > 0 && lits[k-1].VarID() == lits[i].VarID() {
			tautology = true
		}
		lits[k] = lits[i]
		k++
	}
	return lits[:k], tautology
}

// insertionSortLiterals sorts small literal slices by encoded value.
// Clauses are almost always short, so this avoids sort.Slice's overhead.
func insertionSortLiterals(lits []Literal) {
	for i := 1; i < len(lits); i++ {
		for j := i; j > 0 && lits[j-1] > lits[j]; j-- {
			lits[j-1], lits[j] = lits[j], lits[j-1]
		}
	}
}
