package sat

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGaussEliminate_ReducesConsistentChain(t *testing.T) {
	// x0 ^ x1 = true, x1 ^ x2 = true, x0 ^ x2 = false. Summing all three
	// mod 2 gives 0 = 0, so the system is consistent but under-determined
	// (rank 2 over 3 unknowns): elimination should reduce the redundant
	// row away and report no contradiction, without forcing any unit.
	xcs := []xorConstraint{
		{vars: []int{0, 1}, parity: true},
		{vars: []int{1, 2}, parity: true},
		{vars: []int{0, 2}, parity: false},
	}

	result := gaussEliminate(xcs, 10)
	require.False(t, result.conflict)
	require.Empty(t, result.units)
	require.NotEmpty(t, result.reduced)
}

func TestGaussEliminate_DetectsContradictionInOverdeterminedChain(t *testing.T) {
	// x0 ^ x1 = true, x1 ^ x2 = true, x0 ^ x2 = true: summing all three,
	// the variable parts cancel (each variable appears twice), leaving
	// 0 = true^true^true = true, a direct contradiction.
	xcs := []xorConstraint{
		{vars: []int{0, 1}, parity: true},
		{vars: []int{1, 2}, parity: true},
		{vars: []int{0, 2}, parity: true},
	}

	result := gaussEliminate(xcs, 10)
	require.True(t, result.conflict)
}

func TestGaussEliminate_DetectsContradiction(t *testing.T) {
	// x0 ^ x1 = true, x0 ^ x1 = false: directly contradictory.
	xcs := []xorConstraint{
		{vars: []int{0, 1}, parity: true},
		{vars: []int{0, 1}, parity: false},
	}

	result := gaussEliminate(xcs, 10)
	require.True(t, result.conflict)
}

func TestGaussEliminate_DerivesUnitFromOverlap(t *testing.T) {
	// x0 ^ x1 = true, x0 ^ x1 ^ x2 = true: eliminating x0 and x1 from the
	// second row using the first leaves x2 = false, a forced unit.
	xcs := []xorConstraint{
		{vars: []int{0, 1}, parity: true},
		{vars: []int{0, 1, 2}, parity: true},
	}

	result := gaussEliminate(xcs, 10)
	require.False(t, result.conflict)
	require.Equal(t, []Literal{NegativeLiteral(2)}, result.units)
}

func TestGaussEliminate_AbandonsRowWiderThanCap(t *testing.T) {
	// A 3-variable XOR row with a cap of 2 reduces to 3 active columns,
	// above maxXORSize: the whole result must be abandoned rather than
	// have this row quietly dropped.
	xcs := []xorConstraint{
		{vars: []int{0, 1, 2}, parity: true},
	}

	result := gaussEliminate(xcs, 2)
	require.True(t, result.abandoned)
	require.False(t, result.conflict)
	require.Empty(t, result.units)
	require.Empty(t, result.reduced)
}

func TestGaussEliminate_EmptyInputIsNoop(t *testing.T) {
	result := gaussEliminate(nil, 10)
	require.False(t, result.conflict)
	require.Empty(t, result.units)
	require.Empty(t, result.reduced)
}
