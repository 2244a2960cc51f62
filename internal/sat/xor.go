package sat

import (
	"fmt"
	"sort"
)

// xorConstraint is a detected `v1 xor v2 xor ... xor vk = parity` constraint,
// together with the indices of the CNF clauses it was extracted from.
type xorConstraint struct {
	vars    []int // sorted, distinct variable IDs
	parity  bool
	sources []int // indices into the clause slice that encode this XOR
}

// maxSyntacticXORVars bounds how many variables a single clause bucket the
// syntactic pass will consider; the exponential clause count of an XOR
// encoding (2^(k-1) clauses for k variables) makes unbounded k impractical
// to bucket over the whole formula.
//
// minSemanticInputVars and maxSemanticInputVars bound the "input" variable
// set the semantic/forcing pass evaluates per candidate target variable,
// per spec.md §4.7(a)'s "neighbors in its small-clause neighborhood (size
// 2..4 other variables)"; the upper bound also caps how many 2^|inputs|
// truth-table rows a single candidate costs to evaluate.
const (
	maxSyntacticXORVars  = 12
	minSemanticInputVars = 2
	maxSemanticInputVars = 4
)

// extractXORsSyntactic detects XOR constraints by bucketing every clause in
// the formula by the exact set of variables it covers: a bucket of size
// 2^(k-1) over k variables is, by construction, either the full CNF
// encoding of an XOR constraint or a coincidence ruled out by detectXOR's
// distinct-sign-pattern and parity checks.
func extractXORsSyntactic(clauses [][]Literal) []xorConstraint {
	buckets := map[string][]int{}
	keyVars := map[string][]int{}

	for i, c := range clauses {
		if len(c) < 2 || len(c) > maxSyntacticXORVars {
			continue
		}
		vars, ok := distinctSortedVars(c)
		if !ok {
			continue
		}
		k := varSetKey(vars)
		if _, seen := keyVars[k]; !seen {
			keyVars[k] = vars
		}
		buckets[k] = append(buckets[k], i)
	}

	var out []xorConstraint
	for k, idxs := range buckets {
		vars := keyVars[k]
		if len(idxs) != 1<<uint(len(vars)-1) {
			continue
		}
		if xc, ok := detectXOR(vars, idxs, clauses); ok {
			out = append(out, xc)
		}
	}
	return out
}

// extractXORsSemantic detects XOR constraints using the forcing check of
// spec.md §4.7(a): for each candidate target variable v, gather its small
// clause neighborhood, take the other variables mentioned there as the
// "input" set (bounded to minSemanticInputVars..maxSemanticInputVars), and
// evaluate every candidate clause (one mentioning only v and the inputs)
// over all 2^|inputs| input assignments. Unlike the syntactic pass, this
// does not require an exact bucket-size match: it tolerates redundant or
// differently-shaped clauses as long as each row is still forced to
// exactly one value for v, which is what the final detectForcingXOR check
// verifies.
func extractXORsSemantic(clauses [][]Literal) []xorConstraint {
	maxClauseSize := maxSemanticInputVars + 1

	neighborClauses := map[int][]int{}
	for i, c := range clauses {
		if len(c) < 2 || len(c) > maxClauseSize {
			continue
		}
		vars, ok := distinctSortedVars(c)
		if !ok {
			continue
		}
		for _, v := range vars {
			neighborClauses[v] = append(neighborClauses[v], i)
		}
	}

	seen := map[string]bool{}
	var out []xorConstraint
	for v, idxs := range neighborClauses {
		inputSet := map[int]bool{}
		for _, i := range idxs {
			for _, l := range clauses[i] {
				if u := l.VarID(); u != v {
					inputSet[u] = true
				}
			}
		}
		if len(inputSet) < minSemanticInputVars || len(inputSet) > maxSemanticInputVars {
			continue
		}

		inputs := make([]int, 0, len(inputSet))
		for u := range inputSet {
			inputs = append(inputs, u)
		}
		sort.Ints(inputs)

		fullVars := append(append([]int(nil), inputs...), v)
		sort.Ints(fullVars)
		key := varSetKey(fullVars)
		if seen[key] {
			continue
		}

		// idxs already mentions only v and variables in inputSet, by
		// construction of neighborClauses/inputSet above, so it is exactly
		// the candidate set detectForcingXOR needs to evaluate.
		if xc, ok := detectForcingXOR(v, inputs, idxs, clauses); ok {
			seen[key] = true
			out = append(out, xc)
		}
	}
	return out
}

// detectForcingXOR implements the forcing/truth-table check of spec.md
// §4.7(a): over every assignment of inputs, evaluate candidates (clauses
// mentioning only v and inputs) to determine whether they force v to true,
// force it to false, force both (inconsistent — not an XOR), or force
// neither (under-constrained — not an XOR). If every assignment forces v
// to exactly one value and (forced_value XOR input_parity) is the same
// constant r across all of them, {inputs, v} is an XOR constraint with
// parity r.
func detectForcingXOR(v int, inputs []int, candidates []int, clauses [][]Literal) (xorConstraint, bool) {
	if len(candidates) == 0 {
		return xorConstraint{}, false
	}

	inputPos := make(map[int]int, len(inputs))
	for i, u := range inputs {
		inputPos[u] = i
	}

	parity := -1
	for assignment := 0; assignment < 1<<uint(len(inputs)); assignment++ {
		forcedTrue, forcedFalse := false, false
		for _, ci := range candidates {
			satisfiedByInputs := false
			var vLit Literal
			hasV := false
			for _, l := range clauses[ci] {
				if l.VarID() == v {
					vLit, hasV = l, true
					continue
				}
				bitSet := assignment>>uint(inputPos[l.VarID()])&1 == 1
				if bitSet == l.IsPositive() {
					satisfiedByInputs = true
					break
				}
			}
			if satisfiedByInputs {
				continue
			}
			if !hasV {
				// No v-literal, and the inputs alone don't satisfy the
				// clause at this row: the candidate set cannot be an XOR
				// encoding over {inputs, v}.
				return xorConstraint{}, false
			}
			if vLit.IsPositive() {
				forcedTrue = true
			} else {
				forcedFalse = true
			}
		}
		if forcedTrue == forcedFalse {
			// Both forced (inconsistent) or neither forced (under-constrained).
			return xorConstraint{}, false
		}
		forcedVal := 0
		if forcedTrue {
			forcedVal = 1
		}
		r := forcedVal ^ (popcount(assignment) % 2)
		if parity == -1 {
			parity = r
		} else if parity != r {
			return xorConstraint{}, false
		}
	}

	vars := append(append([]int(nil), inputs...), v)
	sort.Ints(vars)
	return xorConstraint{
		vars:    vars,
		parity:  parity == 1,
		sources: append([]int(nil), candidates...),
	}, true
}

// detectXOR checks whether the clauses at indices idxs, all covering
// exactly varSet, together encode the CNF form of an XOR constraint over
// varSet. Each clause forbids exactly the assignment where a literal's
// variable takes the value that makes the literal false; that forbidden
// assignment's parity must be the same constant across every clause in the
// set for the group to be a valid XOR encoding (a negative literal is false
// when its variable is true, so each one flips the parity bit). No two
// clauses may share a sign pattern, so that the set covers every forbidden
// assignment of that parity rather than repeating one.
func detectXOR(varSet []int, idxs []int, clauses [][]Literal) (xorConstraint, bool) {
	pos := make(map[int]int, len(varSet))
	for i, v := range varSet {
		pos[v] = i
	}

	forbidden := -1
	patterns := make(map[int]bool, len(idxs))
	for _, ci := range idxs {
		c := clauses[ci]
		if len(c) != len(varSet) {
			return xorConstraint{}, false
		}
		a := 0
		mask := 0
		for _, l := range c {
			p, ok := pos[l.VarID()]
			if !ok {
				return xorConstraint{}, false
			}
			if !l.IsPositive() {
				a ^= 1
				mask |= 1 << uint(p)
			}
		}
		if patterns[mask] {
			return xorConstraint{}, false
		}
		patterns[mask] = true
		if forbidden == -1 {
			forbidden = a
		} else if forbidden != a {
			return xorConstraint{}, false
		}
	}
	if forbidden == -1 {
		return xorConstraint{}, false
	}

	return xorConstraint{
		vars:    append([]int(nil), varSet...),
		parity:  forbidden == 0,
		sources: append([]int(nil), idxs...),
	}, true
}

// toClauses expands an XOR constraint back into its CNF encoding: one
// clause per sign pattern whose forbidden-assignment parity is the
// opposite of the constraint's, i.e. 2^(k-1) clauses.
func (xc xorConstraint) toClauses() [][]Literal {
	k := len(xc.vars)
	forbiddenParity := 0
	if !xc.parity {
		forbiddenParity = 1
	}

	var out [][]Literal
	for pattern := 0; pattern < 1<<uint(k); pattern++ {
		if popcount(pattern)%2 != forbiddenParity {
			continue
		}
		clause := make([]Literal, k)
		for i, v := range xc.vars {
			if pattern&(1<<uint(i)) != 0 {
				clause[i] = NegativeLiteral(v)
			} else {
				clause[i] = PositiveLiteral(v)
			}
		}
		out = append(out, clause)
	}
	return out
}

func popcount(x int) int {
	n := 0
	for x != 0 {
		n += x & 1
		x >>= 1
	}
	return n
}

func distinctSortedVars(c []Literal) ([]int, bool) {
	vars := make([]int, len(c))
	for i, l := range c {
		vars[i] = l.VarID()
	}
	sort.Ints(vars)
	for i := 1; i < len(vars); i++ {
		if vars[i] == vars[i-1] {
			return nil, false
		}
	}
	return vars, true
}

func varSetKey(vars []int) string {
	return fmt.Sprint(vars)
}
