package sat

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSortDedupLiterals_RemovesDuplicates(t *testing.T) {
	lits := []Literal{PositiveLiteral(2), PositiveLiteral(0), PositiveLiteral(2), PositiveLiteral(1)}
	got, tautology := sortDedupLiterals(lits)

	require.False(t, tautology)
	require.Equal(t, []Literal{PositiveLiteral(0), PositiveLiteral(1), PositiveLiteral(2)}, got)
}

func TestSortDedupLiterals_DetectsTautology(t *testing.T) {
	lits := []Literal{PositiveLiteral(0), NegativeLiteral(0)}
	_, tautology := sortDedupLiterals(lits)
	require.True(t, tautology)
}

func TestClause_PropagateForcesLastLiteral(t *testing.T) {
	s := newTestSolver(3)
	require.NoError(t, s.AddClause([]Literal{PositiveLiteral(0), PositiveLiteral(1), PositiveLiteral(2)}))

	require.True(t, s.enqueue(NegativeLiteral(0), nil))
	require.True(t, s.Propagate() == nil)
	require.True(t, s.enqueue(NegativeLiteral(1), nil))
	require.Nil(t, s.Propagate())

	require.Equal(t, True, s.LitValue(PositiveLiteral(2)))
}

func TestClause_PropagateDetectsConflict(t *testing.T) {
	s := newTestSolver(2)
	// (x0 v x1) and (x0 v !x1): forcing x0 false makes the first clause
	// require x1 true and the second require x1 false.
	require.NoError(t, s.AddClause([]Literal{PositiveLiteral(0), PositiveLiteral(1)}))
	require.NoError(t, s.AddClause([]Literal{PositiveLiteral(0), NegativeLiteral(1)}))

	require.True(t, s.enqueue(NegativeLiteral(0), nil))
	require.NotNil(t, s.Propagate())
}
