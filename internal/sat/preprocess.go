package sat

// maxReducedXORSize bounds the width of an XOR row the Gaussian elimination
// pass will re-expand into CNF; a row of width k costs 2^(k-1) clauses to
// restate, and a row wider than this makes Preprocess abstain entirely
// rather than re-expand it. This is the third of spec.md's tunable
// extraction/elimination caps, alongside maxSyntacticXORVars and
// minSemanticInputVars/maxSemanticInputVars in xor.go.
const maxReducedXORSize = 10

// Preprocess runs the XOR-detection and GF(2) Gaussian-elimination pass of
// spec.md §4.7 once, before any clause is handed to a Solver: it detects XOR
// constraints syntactically and semantically, eliminates them as a linear
// system over GF(2), and substitutes the result back into an equivalent CNF
// clause vector. The caller replaces its clause vector with the returned
// one and builds the solver (and its watch lists) from that; there is no
// incremental re-run during search, matching the one-shot preprocessing
// model spec.md describes rather than xDarkicex-logic's periodic
// in-processing schedule.
//
// It returns ok == false only if the elimination proves the formula
// unsatisfiable by contradiction (a GF(2) row reducing to "0 = 1"), in
// which case the returned clause slice is meaningless. If a reduced row
// comes out wider than maxReducedXORSize, Preprocess abstains and returns
// the original clause vector unchanged with ok == true: the caller
// proceeds with the original clause set rather than search with a result
// that silently dropped a constraint's only representative.
func Preprocess(clauses [][]Literal) ([][]Literal, bool) {
	xcs := extractXORsSyntactic(clauses)
	seen := map[string]bool{}
	for _, xc := range xcs {
		seen[varSetKey(xc.vars)] = true
	}
	for _, xc := range extractXORsSemantic(clauses) {
		k := varSetKey(xc.vars)
		if seen[k] {
			continue
		}
		seen[k] = true
		xcs = append(xcs, xc)
	}

	if len(xcs) == 0 {
		return clauses, true
	}

	result := gaussEliminate(xcs, maxReducedXORSize)
	if result.conflict {
		return nil, false
	}
	if result.abandoned {
		// A reduced row came out wider than maxReducedXORSize: spec.md's
		// "too wide to expand safely" rule says abstain entirely rather
		// than delete source clauses for a row we can't re-assert.
		return clauses, true
	}

	consumed := map[int]bool{}
	for _, xc := range xcs {
		for _, i := range xc.sources {
			consumed[i] = true
		}
	}

	out := make([][]Literal, 0, len(clauses))
	for i, c := range clauses {
		if consumed[i] {
			continue
		}
		out = append(out, c)
	}
	for _, l := range result.units {
		out = append(out, []Literal{l})
	}
	for _, xc := range result.reduced {
		out = append(out, xc.toClauses()...)
	}

	return out, true
}
