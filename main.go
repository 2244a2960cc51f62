package main

import (
	"fmt"
	"os"
	"runtime/pprof"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rhartert/yass-xor/internal/dimacs"
	"github.com/rhartert/yass-xor/internal/sat"
)

var (
	flagGzip        bool
	flagHeuristic   string
	flagVarDecay    float64
	flagPhaseSaving bool
	flagNoXOR       bool
	flagModel       bool
	flagCPUProfile  string
	flagMemProfile  string
)

func newSolveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "solve <path>",
		Short: "Solve a DIMACS CNF instance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSolve(args[0])
		},
	}

	cmd.Flags().BoolVar(&flagGzip, "gzip", false, "instance file is gzip-compressed")
	cmd.Flags().StringVar(&flagHeuristic, "heuristic", "vsids", "branching heuristic: vsids or random")
	cmd.Flags().Float64Var(&flagVarDecay, "var-decay", 0.95, "VSIDS variable activity decay")
	cmd.Flags().BoolVar(&flagPhaseSaving, "phase-saving", true, "reuse a variable's last phase on re-decision")
	cmd.Flags().BoolVar(&flagNoXOR, "no-xor", false, "disable XOR/Gaussian-elimination preprocessing")
	cmd.Flags().BoolVar(&flagModel, "model", false, "print the variables set to true on SAT")
	cmd.Flags().StringVar(&flagCPUProfile, "cpuprof", "", "write a pprof CPU profile to this path")
	cmd.Flags().StringVar(&flagMemProfile, "memprof", "", "write a pprof heap profile to this path")

	return cmd
}

func runSolve(path string) error {
	log := logrus.StandardLogger()

	if flagCPUProfile != "" {
		f, err := os.Create(flagCPUProfile)
		if err != nil {
			return fmt.Errorf("creating cpu profile: %w", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			return fmt.Errorf("starting cpu profile: %w", err)
		}
		defer pprof.StopCPUProfile()
	}

	instance, err := dimacs.Load(path, flagGzip)
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{
		"variables": instance.NumVars,
		"clauses":   len(instance.Clauses),
	}).Info("yass-xor: instance loaded")

	clauses := instance.Clauses
	if !flagNoXOR {
		rawClauses := make([][]sat.Literal, len(clauses))
		copy(rawClauses, clauses)
		reduced, ok := sat.Preprocess(rawClauses)
		if !ok {
			fmt.Println("UNSATISFIABLE")
			return nil
		}
		log.WithFields(logrus.Fields{
			"before": len(clauses),
			"after":  len(reduced),
		}).Info("yass-xor: xor preprocessing")
		clauses = reduced
	}

	opts := sat.DefaultOptions()
	opts.PhaseSaving = flagPhaseSaving
	opts.VariableDecay = flagVarDecay
	opts.Logger = log

	switch flagHeuristic {
	case "vsids":
		// Leave opts.Heuristic unset: the solver builds a VSIDS heuristic
		// from opts.VariableDecay/PhaseSaving lazily on the first Solve.
	case "random":
		opts.Heuristic = func(int) sat.Heuristic {
			return sat.NewRandomHeuristic(1)
		}
	default:
		return fmt.Errorf("unknown heuristic %q, want \"vsids\" or \"random\"", flagHeuristic)
	}

	s := sat.NewSolver(opts)
	for i := 0; i < instance.NumVars; i++ {
		s.AddVariable()
	}

	for _, c := range clauses {
		if err := s.AddClause(c); err != nil {
			return fmt.Errorf("adding clause: %w", err)
		}
	}

	start := time.Now()
	status := s.Solve()
	elapsed := time.Since(start)

	switch status {
	case sat.True:
		fmt.Println("SATISFIABLE")
		if flagModel {
			model := s.Model()
			for v, val := range model {
				if val {
					fmt.Printf("%d ", v+1)
				}
			}
			fmt.Println("0")
		}
	case sat.False:
		fmt.Println("UNSATISFIABLE")
	}

	log.WithField("elapsed", elapsed).Info("yass-xor: solve complete")
	return nil
}

func main() {
	root := &cobra.Command{
		Use:   "yass-xor",
		Short: "A CDCL SAT solver with XOR/Gaussian-elimination preprocessing",
	}
	root.AddCommand(newSolveCmd())

	if err := root.Execute(); err != nil {
		logrus.WithError(err).Fatal("yass-xor: fatal error")
	}

	if flagMemProfile != "" {
		f, err := os.Create(flagMemProfile)
		if err != nil {
			logrus.WithError(err).Fatal("yass-xor: creating mem profile")
		}
		pprof.WriteHeapProfile(f)
		f.Close()
	}
}
