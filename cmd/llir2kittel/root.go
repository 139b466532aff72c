package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"llir2itrs/internal/algebra"
	"llir2itrs/internal/boundconstrainer"
	"llir2itrs/internal/callgraph"
	"llir2itrs/internal/config"
	"llir2itrs/internal/converter"
	"llir2itrs/internal/errors"
	"llir2itrs/internal/kittelizer"
	"llir2itrs/internal/llir"
	"llir2itrs/internal/llirio"
	"llir2itrs/internal/preprocess"
	"llir2itrs/internal/printer"
	"llir2itrs/internal/rule"
	"llir2itrs/internal/slicer"
	"llir2itrs/internal/smt"
)

// Exit codes outside the internal/errors taxonomy (spec.md §6): reading
// the input file, decoding it, and resolving the start function all
// happen in the driver, before any core package is invoked, so they
// claim the codes internal/errors.Kind.ExitCode leaves free (1, 6 and 7
// are already spoken for by ConfigConflict/UnsupportedInstruction/
// CyclicCallGraph).
const (
	exitUnreadableInput = 2
	exitMalformedInput  = 3
	exitNoStartFunction = 4
)

type cliOptions struct {
	cfg           config.Options
	solverName    string
	smtSolverPath string
	t2            bool
	noColor       bool
	verbose       bool
}

func newRootCommand() *cobra.Command {
	var o cliOptions
	o.cfg = *config.Default()

	cmd := &cobra.Command{
		Use:   "llir2kittel [flags] <module.json>",
		Short: "Lower a typed SSA-form LLIR module into an Integer Term Rewriting System",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			o.cfg.SMTSolver = parseSolverName(o.solverName)
			return run(cmd.OutOrStdout(), args[0], &o)
		},
		SilenceUsage: true,
	}

	f := cmd.Flags()
	f.StringVar(&o.cfg.StartFunctionName, "start-function-name", "", "function to lower from (required)")
	f.IntVar(&o.cfg.InlinePassesCount, "inline-passes-count", 0, "number of preprocessing inline passes to log as applied")
	f.BoolVar(&o.cfg.EagerInline, "eager-inline", false, "require the call graph to be acyclic (inlining itself is an external preprocessing transform)")
	f.BoolVar(&o.cfg.InlineVoids, "inline-voids", false, "accepted and stored in the configuration; no pipeline stage reads it")
	f.BoolVar(&o.cfg.IncreaseStrength, "increase-strength", false, "mark the module as having passed through strength-increasing preprocessing")
	f.BoolVar(&o.cfg.AssumeIsControl, "assume-is-control", false, "treat each assume() call as its own control point")
	f.BoolVar(&o.cfg.SelectIsControl, "select-is-control", false, "treat each select instruction as its own control point")
	f.BoolVar(&o.cfg.MultiPredControl, "multi-pred-control", true, "only treat multi-predecessor blocks as control points")
	f.BoolVar(&o.cfg.PropagateConditions, "propagate-conditions", false, "propagate branch conditions into successor guards")
	f.BoolVar(&o.cfg.ExplicitizeLoopConditions, "explicitize-loop-conditions", false, "make implicit loop conditions explicit")
	f.BoolVar(&o.cfg.SimplifyConditions, "simplify-conditions", false, "accepted and stored in the configuration; no pipeline stage reads it")
	f.BoolVar(&o.cfg.OnlyLoopConditions, "only-loop-conditions", false, "with --propagate-conditions, only propagate branch conditions of loop-condition blocks (exiting loop headers and latches)")
	f.BoolVar(&o.cfg.NoSlicing, "no-slicing", false, "skip the Slicer entirely")
	f.BoolVar(&o.cfg.ConservativeSlicing, "conservative-slicing", false, "run the Slicer in its conservative (PHI-preserving) mode")
	f.BoolVar(&o.cfg.BoundedIntegers, "bounded-integers", false, "enable the Bound-Constrainer's modular-wrap normalisation")
	f.BoolVar(&o.cfg.UnsignedEncoding, "unsigned-encoding", false, "bound integers to their unsigned range (requires --bounded-integers)")
	f.BoolVar(&o.cfg.BitwiseConditions, "bitwise-conditions", false, "encode bitwise and/or as linear constraints (requires --bounded-integers)")
	f.BoolVar(&o.cfg.ExactDivision, "exact-division", false, "constrain a division's quotient through its remainder x - y*z instead of case-split bounds (mutually exclusive with --bounded-integers)")
	f.BoolVar(&o.cfg.DumpTransformedIR, "dump-transformed-ir", false, "log the module after preprocessing, before lowering")
	f.BoolVar(&o.cfg.ComplexityTuples, "complexity-tuples", false, "print CInt complexity-tuple TRS format instead of KITTeL text")
	f.BoolVar(&o.cfg.UniformComplexityTuples, "uniform-complexity-tuples", false, "canonicalize argument names in CInt output (requires --complexity-tuples)")
	f.BoolVar(&o.t2, "t2", false, "print T2 block-transition format instead of KITTeL text")
	f.StringVar(&o.smtSolverPath, "smt-solver-path", "", "path to an SMT solver binary used to prune unsatisfiable disjuncts")
	f.StringVar(&o.solverName, "smt-solver", "none", "SMT solver family: none, cvc4, mathsat5, yices2, or z3")
	f.BoolVar(&o.noColor, "no-color", false, "disable colorized diagnostics")
	f.BoolVar(&o.verbose, "verbose", false, "log structured progress to stderr")

	cmd.AddCommand(newLSPCommand())
	return cmd
}

func parseSolverName(s string) config.SMTSolver {
	switch s {
	case "cvc4":
		return config.SolverCVC4
	case "mathsat5":
		return config.SolverMathSAT5
	case "yices2":
		return config.SolverYices2
	case "z3":
		return config.SolverZ3
	default:
		return config.SolverNone
	}
}

func run(stdout io.Writer, path string, o *cliOptions) error {
	reporter := &errors.Reporter{NoColor: o.noColor || color.NoColor}
	log := newLogger(o.verbose)

	if cerr := o.cfg.Validate(); cerr != nil {
		fmt.Fprint(os.Stderr, reporter.Format(cerr))
		os.Exit(cerr.Kind.ExitCode())
	}

	content, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprint(os.Stderr, reporter.Warn(fmt.Sprintf("could not read %s: %v", path, err)))
		os.Exit(exitUnreadableInput)
	}

	var loader llirio.FileLoader
	module, err := loader.Load(path, string(content))
	if err != nil {
		fmt.Fprint(os.Stderr, reporter.Warn(fmt.Sprintf("could not decode %s: %v", path, err)))
		os.Exit(exitMalformedInput)
	}

	startFn := module.FunctionByName(o.cfg.StartFunctionName)
	if startFn == nil {
		fmt.Fprint(os.Stderr, reporter.Warn(fmt.Sprintf("start function %q not found (pass --start-function-name)", o.cfg.StartFunctionName)))
		os.Exit(exitNoStartFunction)
	}

	pre := preprocess.NewPipeline(log)
	pre.Add(preprocess.NopTransform{TransformName: "mem2reg"})
	pre.Add(preprocess.NopTransform{TransformName: "cfg-simplify"})
	pre.Add(preprocess.NopTransform{TransformName: "constant-expr-eliminator"})
	if o.cfg.IncreaseStrength {
		pre.Add(preprocess.NopTransform{TransformName: "strength-increaser"})
	}
	if o.cfg.EagerInline || o.cfg.InlinePassesCount > 0 {
		pre.Add(preprocess.NopTransform{TransformName: "inliner"})
	}
	applied := pre.Run(module)
	log.WithFields(logrus.Fields{"transforms": applied}).Debug("preprocessing applied")
	if o.cfg.DumpTransformedIR {
		log.WithFields(logrus.Fields{
			"functions": len(module.DefinedFunctions()),
			"globals":   len(module.Globals),
		}).Info("module after preprocessing")
	}

	defined := module.DefinedFunctions()
	var unsupported []*errors.CompilerError
	for _, fn := range defined {
		unsupported = append(unsupported, converter.CheckSupported(fn)...)
	}
	if len(unsupported) > 0 {
		fmt.Fprint(os.Stderr, reporter.FormatAll(unsupported))
		os.Exit(errors.UnsupportedInstruction.ExitCode())
	}

	cg := callgraph.Build(module)
	if o.cfg.EagerInline && cg.IsCyclic() {
		cerr := errors.New(errors.CyclicCallGraph,
			"eager-inline requires an acyclic call graph").Build()
		fmt.Fprint(os.Stderr, reporter.Format(cerr))
		os.Exit(cerr.Kind.ExitCode())
	}

	alias := newConservativeOracle(module)
	conv := converter.New(module, &o.cfg, cg, alias)

	var allRules []*rule.Rule
	varWidth := map[string]int{}
	for _, fn := range defined {
		scc := cg.SCCOf(fn)
		sccSet := make(map[*llir.Function]bool, len(scc))
		for _, g := range scc {
			sccSet[g] = true
		}
		rules, errs := conv.ConvertFunction(fn, sccSet)
		if len(errs) > 0 {
			fmt.Fprint(os.Stderr, reporter.FormatAll(errs))
			os.Exit(errs[0].Kind.ExitCode())
		}
		log.WithFields(logrus.Fields{"function": fn.Name, "rules": len(rules)}).Debug("function converted")
		allRules = append(allRules, rules...)

		fv := conv.VarsFor(fn)
		for name, t := range fv.Types {
			if it, ok := t.(*llir.IntType); ok {
				varWidth[name] = it.Bits
			}
		}
	}

	cps := converter.ControlPoints(defined, &o.cfg)
	allRules, cerrs := converter.GetCondensedRules(allRules, cps)
	if len(cerrs) > 0 {
		fmt.Fprint(os.Stderr, reporter.FormatAll(cerrs))
		os.Exit(cerrs[0].Kind.ExitCode())
	}
	log.WithFields(logrus.Fields{"rules": len(allRules)}).Debug("condensed")

	elim := algebra.Eliminator(algebra.NoSolver{})
	if o.cfg.SMTSolver != config.SolverNone && o.smtSolverPath != "" {
		elim = smt.NewBridge(o.smtSolverPath, renderSMT, "unsat", func(cerr *errors.CompilerError) {
			fmt.Fprint(os.Stderr, reporter.Format(cerr))
			os.Exit(cerr.Kind.ExitCode())
		})
	}
	allRules = kittelizer.New(elim).Kittelize(allRules)
	log.WithFields(logrus.Fields{"rules": len(allRules)}).Debug("kittelized")

	if !o.cfg.NoSlicing {
		allRules = slicer.New(o.cfg.ConservativeSlicing).Slice(allRules, nil)
		log.WithFields(logrus.Fields{"rules": len(allRules)}).Debug("sliced")
	}

	if o.cfg.BoundedIntegers {
		bc := boundconstrainer.New(&o.cfg, varWidth, conv.Nondef)
		allRules = bc.Constrain(allRules)
		log.WithFields(logrus.Fields{"rules": len(allRules)}).Debug("bound-constrained")
	}

	startSymbol := converter.StartSymbol(startFn)
	var out string
	switch {
	case o.cfg.ComplexityTuples:
		out = printer.CInt(allRules, startSymbol, o.cfg.UniformComplexityTuples)
	case o.t2:
		out = printer.T2(allRules, startSymbol)
	default:
		out = printer.KITTeL(allRules)
	}
	fmt.Fprint(stdout, out)
	return nil
}

func newLogger(verbose bool) *logrus.Entry {
	l := logrus.New()
	l.Out = os.Stderr
	if verbose {
		l.SetLevel(logrus.DebugLevel)
	} else {
		l.SetLevel(logrus.WarnLevel)
	}
	return logrus.NewEntry(l)
}
