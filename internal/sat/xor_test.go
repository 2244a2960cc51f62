package sat

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func xorEncodingClauses(vars []int, parity bool) [][]Literal {
	return xorConstraint{vars: vars, parity: parity}.toClauses()
}

func TestExtractXORsSyntactic_DetectsFullEncoding(t *testing.T) {
	// x0 xor x1 xor x2 = true, plus an unrelated ordinary clause.
	clauses := xorEncodingClauses([]int{0, 1, 2}, true)
	clauses = append(clauses, []Literal{PositiveLiteral(3), PositiveLiteral(4)})

	xcs := extractXORsSyntactic(clauses)
	require.Len(t, xcs, 1)
	require.Equal(t, []int{0, 1, 2}, xcs[0].vars)
	require.True(t, xcs[0].parity)
}

func TestExtractXORsSyntactic_IgnoresIncompleteEncoding(t *testing.T) {
	clauses := xorEncodingClauses([]int{0, 1, 2}, true)
	clauses = clauses[:len(clauses)-1] // drop one clause: no longer a full encoding

	xcs := extractXORsSyntactic(clauses)
	require.Empty(t, xcs)
}

func TestExtractXORsSemantic_DetectsSmallEncoding(t *testing.T) {
	// x0 xor x1 xor x2 = false, the minimal case satisfying the 2-input
	// floor: 1 target variable plus a 2-variable input neighborhood.
	clauses := xorEncodingClauses([]int{0, 1, 2}, false)

	xcs := extractXORsSemantic(clauses)
	require.Len(t, xcs, 1)
	require.Equal(t, []int{0, 1, 2}, xcs[0].vars)
	require.False(t, xcs[0].parity)
}

func TestExtractXORsSemantic_IgnoresTooFewInputs(t *testing.T) {
	// A 2-variable biconditional has only 1 input variable for either
	// target, below minSemanticInputVars: the semantic pass must leave it
	// to the syntactic pass rather than detect it.
	clauses := xorEncodingClauses([]int{0, 1}, false)

	xcs := extractXORsSemantic(clauses)
	require.Empty(t, xcs)
}

func TestExtractXORsSemantic_DetectsForcingEncodingSyntacticPassWouldMiss(t *testing.T) {
	// The full, canonical 4-clause encoding of x0 xor x1 xor x2 = true,
	// plus one exact duplicate of its first clause. The duplicate makes
	// this bucket's clause count 5, not 2^(3-1) = 4, so the syntactic
	// exact-bucket-size check would reject it outright. The forcing check
	// tolerates the redundant clause: every input row is still forced to
	// exactly one value for the target variable, so the relation is still
	// correctly detected.
	full := xorEncodingClauses([]int{0, 1, 2}, true)
	clauses := append(append([][]Literal(nil), full...), append([]Literal(nil), full[0]...))

	require.Empty(t, extractXORsSyntactic(clauses))

	xcs := extractXORsSemantic(clauses)
	require.Len(t, xcs, 1)
	require.Equal(t, []int{0, 1, 2}, xcs[0].vars)
	require.True(t, xcs[0].parity)
}

func TestExtractXORsSemantic_RejectsInconsistentCandidates(t *testing.T) {
	// Two clauses over {0,1,2} that force the same variable to opposite
	// values for the same input row: not a valid XOR relation.
	clauses := [][]Literal{
		{NegativeLiteral(0), NegativeLiteral(1), PositiveLiteral(2)},
		{NegativeLiteral(0), NegativeLiteral(1), NegativeLiteral(2)},
	}

	xcs := extractXORsSemantic(clauses)
	require.Empty(t, xcs)
}

func TestXORConstraint_ToClausesRoundTrips(t *testing.T) {
	xc := xorConstraint{vars: []int{0, 1, 2}, parity: true}
	clauses := xc.toClauses()

	// k=3 variables -> 2^(3-1) = 4 clauses.
	require.Len(t, clauses, 4)

	detected, ok := detectXOR(xc.vars, []int{0, 1, 2, 3}, clauses)
	require.True(t, ok)
	require.Equal(t, xc.parity, detected.parity)
}
