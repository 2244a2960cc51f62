// Package dimacs loads DIMACS CNF instances into the sat package's literal
// representation, on top of the streaming parser from
// github.com/rhartert/dimacs, generalizing the teacher's
// parsers/parsers.go (which pushed clauses straight into a solver) into a
// loader that returns a plain in-memory instance instead. The indirection
// lets the caller run preprocessing (internal/sat.Preprocess) on the clause
// vector before any Solver or watch list exists.
package dimacs

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"

	extdimacs "github.com/rhartert/dimacs"
	"github.com/rhartert/yass-xor/internal/sat"
)

// Instance is a fully parsed DIMACS CNF problem: a variable count and a
// clause vector using the solver's own Literal encoding.
type Instance struct {
	NumVars int
	Clauses [][]sat.Literal
}

func open(filename string, gzipped bool) (io.ReadCloser, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	rc := io.ReadCloser(file)
	if gzipped {
		rc, err = gzip.NewReader(rc)
		if err != nil {
			file.Close()
			return nil, err
		}
	}
	return rc, nil
}

// Load parses the DIMACS CNF file at filename (optionally gzip-compressed)
// and returns its instance.
func Load(filename string, gzipped bool) (*Instance, error) {
	r, err := open(filename, gzipped)
	if err != nil {
		return nil, fmt.Errorf("dimacs: opening %q: %w", filename, err)
	}
	defer r.Close()

	b := &instanceBuilder{}
	if err := extdimacs.ReadBuilder(r, b); err != nil {
		return nil, fmt.Errorf("dimacs: parsing %q: %w", filename, err)
	}
	return &Instance{NumVars: b.numVars, Clauses: b.clauses}, nil
}

// instanceBuilder implements github.com/rhartert/dimacs's Builder interface,
// translating its 1-based signed-integer literals into sat.Literal values.
type instanceBuilder struct {
	numVars int
	clauses [][]sat.Literal
}

func (b *instanceBuilder) Problem(problem string, nVars int, nClauses int) error {
	if problem != "cnf" {
		return fmt.Errorf("dimacs: unsupported problem type %q, want \"cnf\"", problem)
	}
	b.numVars = nVars
	b.clauses = make([][]sat.Literal, 0, nClauses)
	return nil
}

func (b *instanceBuilder) Clause(raw []int) error {
	clause := make([]sat.Literal, len(raw))
	for i, l := range raw {
		if l < 0 {
			clause[i] = sat.NegativeLiteral(-l - 1)
		} else {
			clause[i] = sat.PositiveLiteral(l - 1)
		}
	}
	b.clauses = append(b.clauses, clause)
	return nil
}

func (b *instanceBuilder) Comment(_ string) error {
	return nil
}

// ReadModels parses a `.models` file: one DIMACS-style clause line per
// model, each literal's sign giving that variable's value. This is the
// teacher's end-to-end regression oracle format, used by the root
// yass_test.go to check a solved instance's model set against a
// precomputed expectation.
func ReadModels(filename string) ([][]bool, error) {
	r, err := open(filename, false)
	if err != nil {
		return nil, fmt.Errorf("dimacs: opening %q: %w", filename, err)
	}
	defer r.Close()

	b := &modelBuilder{}
	if err := extdimacs.ReadBuilder(r, b); err != nil {
		return nil, fmt.Errorf("dimacs: parsing %q: %w", filename, err)
	}
	return b.models, nil
}

type modelBuilder struct {
	models [][]bool
}

func (b *modelBuilder) Problem(problem string, nVars int, nClauses int) error {
	return fmt.Errorf("dimacs: model files should not have a problem line")
}

func (b *modelBuilder) Comment(_ string) error {
	return nil
}

func (b *modelBuilder) Clause(raw []int) error {
	model := make([]bool, len(raw))
	for i, l := range raw {
		model[i] = l > 0
	}
	b.models = append(b.models, model)
	return nil
}
