// Package kittelizer implements component F of spec.md §4.F: bringing
// every rule's guard to negation-normal form, eliminating ≠ in favour
// of a disjunction, expanding to disjunctive normal form (consulting
// an external SMT oracle to prune unsatisfiable disjuncts along the
// way), and finally splitting one rule per surviving disjunct so every
// emitted rule carries a guard with no top-level Or left in it.
// Grounded on original_source/include/llvm2kittel/Kittelizer.h and
// ConstraintEliminator.h for the pass ordering.
package kittelizer

import (
	"llir2itrs/internal/algebra"
	"llir2itrs/internal/rule"
)

// Kittelizer holds the SMT-backed Eliminator consulted while expanding
// to DNF; a nil Eliminator defaults to algebra.NoSolver, keeping the
// pass functional without a configured solver (spec.md §6).
type Kittelizer struct {
	Eliminator algebra.Eliminator
}

// New builds a Kittelizer; elim may be nil.
func New(elim algebra.Eliminator) *Kittelizer {
	if elim == nil {
		elim = algebra.NoSolver{}
	}
	return &Kittelizer{Eliminator: elim}
}

// Kittelize runs every rule of rules through the NNF/≠-elimination/DNF
// pipeline and splits each surviving disjunct into its own rule.
func (k *Kittelizer) Kittelize(rules []*rule.Rule) []*rule.Rule {
	var out []*rule.Rule
	for _, r := range rules {
		out = append(out, k.splitRule(r)...)
	}
	return out
}

// splitRule implements spec.md §4.F for one rule: NNF, ≠-elimination,
// DNF expansion with SMT pruning, then one rule per surviving
// top-level disjunct. A guard that collapses entirely to False
// produces no rule at all — that transition can never fire.
func (k *Kittelizer) splitRule(r *rule.Rule) []*rule.Rule {
	nnf := r.Guard.ToNNF(false)
	noNeq := nnf.EliminateNeq()
	dnf := noNeq.ToDNF(k.Eliminator)
	disjuncts := dnf.AddDualClausesToList()

	var out []*rule.Rule
	for _, d := range disjuncts {
		if d.Kind == algebra.CFalse {
			continue
		}
		out = append(out, rule.NewRule(r.Lhs, r.Rhs, d))
	}
	return out
}
