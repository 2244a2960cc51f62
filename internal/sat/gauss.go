package sat

import "math/bits"

// gfRow is one row of an augmented matrix over GF(2): a bitset of
// coefficients (one per matrix column/variable) plus the right-hand side
// bit. Stored as []uint64 words rather than []bool, per spec's GF(2)
// row-reduction requirement; no library in this solver's dependency lineage
// offers a GF(2) bitset primitive, so this is hand-written over stdlib
// math/bits, justified in DESIGN.md.
type gfRow struct {
	words []uint64
	rhs   bool
}

func newGFRow(nCols int) gfRow {
	return gfRow{words: make([]uint64, (nCols+63)/64)}
}

func (r *gfRow) bit(i int) bool {
	return r.words[i/64]>>uint(i%64)&1 == 1
}

func (r *gfRow) setBit(i int, v bool) {
	if v {
		r.words[i/64] |= 1 << uint(i%64)
	} else {
		r.words[i/64] &^= 1 << uint(i%64)
	}
}

func (r *gfRow) xorWith(o gfRow) {
	for i := range r.words {
		r.words[i] ^= o.words[i]
	}
	r.rhs = r.rhs != o.rhs
}

// activeCols returns the column indices with a set bit, in ascending order.
func (r *gfRow) activeCols(nCols int) []int {
	var out []int
	for w := 0; w < len(r.words); w++ {
		word := r.words[w]
		for word != 0 {
			b := bits.TrailingZeros64(word)
			col := w*64 + b
			if col >= nCols {
				break
			}
			out = append(out, col)
			word &= word - 1
		}
	}
	return out
}

// gaussResult is the outcome of eliminating a set of XOR constraints.
type gaussResult struct {
	conflict  bool
	abandoned bool            // a row reduced wider than maxXORSize; caller must abstain entirely
	units     []Literal       // forced unit literals
	reduced   []xorConstraint // XOR rows that did not fully reduce to a unit
}

// gaussEliminate builds an augmented GF(2) matrix from xcs (one row per
// constraint, one column per distinct variable across all of them) and
// forward-eliminates it, following the same pivot-search/row-swap/row-XOR
// shape as a standard Gauss-Jordan pass. It then reads off each resulting
// row per spec.md §4.7(c): zero active columns with RHS 1 is a
// contradiction, zero active columns with RHS 0 is a tautology (dropped),
// one active column is a forced unit literal, and more than one (up to
// maxXORSize) becomes a smaller learned XOR constraint. A row wider than
// maxXORSize makes the whole result abandoned: re-expanding it into CNF
// would cost 2^(k-1) clauses and dropping it silently would discard the
// only remaining representative of its source clauses, so the caller must
// abstain from preprocessing entirely rather than return a partial result.
func gaussEliminate(xcs []xorConstraint, maxXORSize int) gaussResult {
	if len(xcs) == 0 {
		return gaussResult{}
	}

	varToCol := map[int]int{}
	var colToVar []int
	for _, xc := range xcs {
		for _, v := range xc.vars {
			if _, ok := varToCol[v]; !ok {
				varToCol[v] = len(colToVar)
				colToVar = append(colToVar, v)
			}
		}
	}
	nCols := len(colToVar)

	rows := make([]gfRow, len(xcs))
	for i, xc := range xcs {
		r := newGFRow(nCols)
		r.rhs = xc.parity
		for _, v := range xc.vars {
			r.setBit(varToCol[v], true)
		}
		rows[i] = r
	}

	pivotRow := 0
	for col := 0; col < nCols && pivotRow < len(rows); col++ {
		sel := -1
		for r := pivotRow; r < len(rows); r++ {
			if rows[r].bit(col) {
				sel = r
				break
			}
		}
		if sel == -1 {
			continue
		}
		rows[pivotRow], rows[sel] = rows[sel], rows[pivotRow]
		for r := range rows {
			if r != pivotRow && rows[r].bit(col) {
				rows[r].xorWith(rows[pivotRow])
			}
		}
		pivotRow++
	}

	var result gaussResult
	for _, row := range rows {
		active := row.activeCols(nCols)
		switch {
		case len(active) == 0:
			if row.rhs {
				result.conflict = true
				return result
			}
			// 0 = 0: tautological row, contributes nothing further.
		case len(active) == 1:
			v := colToVar[active[0]]
			if row.rhs {
				result.units = append(result.units, PositiveLiteral(v))
			} else {
				result.units = append(result.units, NegativeLiteral(v))
			}
		case len(active) <= maxXORSize:
			vars := make([]int, len(active))
			for i, c := range active {
				vars[i] = colToVar[c]
			}
			result.reduced = append(result.reduced, xorConstraint{
				vars:   vars,
				parity: row.rhs,
			})
		default:
			// Row reduced to more active columns than maxXORSize: it cannot
			// be re-expanded into CNF without losing information, and its
			// source clauses have no other representative in the result.
			// Per spec.md's "too wide to expand safely" rule the whole
			// elimination abstains rather than silently dropping the row.
			return gaussResult{abandoned: true}
		}
	}
	return result
}
