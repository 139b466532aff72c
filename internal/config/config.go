// Package config implements the flag-conflict-validating options
// struct of SPEC_FULL.md §1, covering every flag spec.md §6 names.
// Validate enforces the mutual-exclusion/implication rules spelled out
// there before any work is attempted (spec.md §7 kind 1).
package config

import (
	"fmt"

	"llir2itrs/internal/errors"
)

// SMTSolver selects the external SMT-solver subprocess Kittelizer's
// DNF-pruning optimiser spawns (spec.md §5, §6).
type SMTSolver int

const (
	SolverNone SMTSolver = iota
	SolverCVC4
	SolverMathSAT5
	SolverYices2
	SolverZ3
)

func (s SMTSolver) String() string {
	switch s {
	case SolverCVC4:
		return "CVC4"
	case SolverMathSAT5:
		return "MathSat5"
	case SolverYices2:
		return "Yices2"
	case SolverZ3:
		return "Z3"
	default:
		return "None"
	}
}

// Options is the full recognised-flag surface of spec.md §6.
type Options struct {
	StartFunctionName string

	// Preprocessing (spec.md §6, SPEC_FULL §3 — the fixed black-box
	// transform sequence's own knobs; the transforms themselves are
	// external).
	InlinePassesCount int
	EagerInline       bool
	InlineVoids       bool
	IncreaseStrength  bool

	// Control-point / condition shaping (spec.md §4.E, §4.C).
	AssumeIsControl           bool
	SelectIsControl           bool
	MultiPredControl          bool
	PropagateConditions       bool
	ExplicitizeLoopConditions bool
	SimplifyConditions        bool
	OnlyLoopConditions        bool

	// Slicing (component G).
	NoSlicing           bool
	ConservativeSlicing bool

	// Bit-width modelling (component H, §4.E div/rem and bitwise
	// encodings).
	BoundedIntegers   bool
	UnsignedEncoding  bool
	BitwiseConditions bool
	ExactDivision     bool

	// Output.
	DumpTransformedIR       bool
	ComplexityTuples        bool
	UniformComplexityTuples bool

	SMTSolver SMTSolver
}

// Default returns the zero-valued, most-permissive configuration:
// multi-pred-control on (spec.md §4.E: "or always, when multi-pred
// only is disabled" — the feature defaults enabled), everything else
// off, mathematical (unbounded) integers, no SMT solver.
func Default() *Options {
	return &Options{
		MultiPredControl: true,
		SMTSolver:        SolverNone,
	}
}

// Validate enforces the configuration-conflict rules spec.md §6/§7
// name, returning a ConfigConflict error (exit code 1) before any work
// is attempted. It never mutates o.
func (o *Options) Validate() *errors.CompilerError {
	if o.ExactDivision && o.BoundedIntegers {
		return errors.New(errors.ConfigConflict,
			"exact-division is mutually exclusive with bounded-integers").
			WithHelp("drop one of --exact-division or --bounded-integers").Build()
	}
	if o.UnsignedEncoding && !o.BoundedIntegers {
		return errors.New(errors.ConfigConflict,
			"unsigned-encoding requires bounded-integers").
			WithHelp("pass --bounded-integers alongside --unsigned-encoding").Build()
	}
	if o.BitwiseConditions && !o.BoundedIntegers {
		return errors.New(errors.ConfigConflict,
			"bitwise-conditions requires bounded-integers").
			WithHelp("pass --bounded-integers alongside --bitwise-conditions").Build()
	}
	if o.InlinePassesCount < 0 {
		return errors.New(errors.ConfigConflict,
			fmt.Sprintf("inline-passes-count must be non-negative, got %d", o.InlinePassesCount)).Build()
	}
	if o.UniformComplexityTuples && !o.ComplexityTuples {
		return errors.New(errors.ConfigConflict,
			"uniform-complexity-tuples requires complexity-tuples").
			WithHelp("pass --complexity-tuples alongside --uniform-complexity-tuples").Build()
	}
	return nil
}

// SignedBounds and UnsignedBounds report which range a w-bit integer
// variable must satisfy under this configuration (spec.md §3 invariant
// 5): SignedBounds (the default when bounded) means [-2^(w-1),
// 2^(w-1)-1]; UnsignedBounds means [0, 2^w-1]. Both are false when
// integers are unbounded.
func (o *Options) SignedBounds() bool { return o.BoundedIntegers && !o.UnsignedEncoding }
func (o *Options) UnsignedBounds() bool { return o.BoundedIntegers && o.UnsignedEncoding }
