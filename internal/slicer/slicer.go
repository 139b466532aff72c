// Package slicer implements the four-pass argument/rule pruning of
// spec.md §4.G (component G): usage slicing, constraint slicing,
// defined slicing, and a final still-used reconfirmation pass, plus
// the two optional utility passes (slice-duplicates,
// slice-trivial-nondef-constraints). Grounded on
// original_source/include/llvm2kittel/Slicer.h for the pass list and
// on the teacher's OptimizationPipeline for running a fixed sequence
// of rewrites over one accumulated value.
package slicer

import (
	"llir2itrs/internal/algebra"
	"llir2itrs/internal/rule"
)

// Slicer holds the one knob the pipeline exposes: Conservative,
// applied only by StillUsedSlicing's PHI-variable retention (spec.md
// §9 open question, recorded in DESIGN.md).
type Slicer struct {
	Conservative bool
}

func New(conservative bool) *Slicer { return &Slicer{Conservative: conservative} }

// Slice runs the default four-pass sequence.
func (s *Slicer) Slice(rules []*rule.Rule, phiVars map[string]bool) []*rule.Rule {
	rules = UsageSlicing(rules)
	rules = ConstraintSlicing(rules)
	rules = DefinedSlicing(rules)
	rules = s.StillUsedSlicing(rules, phiVars)
	return rules
}

func varName(p *algebra.Polynomial) (string, bool) {
	if !p.IsVar() {
		return "", false
	}
	vs := p.Variables()
	if len(vs) != 1 {
		return "", false
	}
	return vs[0], true
}

// liveness runs the shared argument-position fixpoint: a position of a
// symbol is live if any rule's guard reads the lhs variable bound
// there, or if it flows (by variable name) into a live position of
// whatever symbol a rule's rhs term targets. forceLive, when non-nil,
// seeds extra positions as live regardless of the above (used by
// StillUsedSlicing's conservative PHI retention).
func liveness(rules []*rule.Rule, forceLive func(symbol string, pos int, varName string) bool) map[string][]bool {
	arity := map[string]int{}
	for _, r := range rules {
		arity[r.Lhs.Symbol] = len(r.Lhs.Args)
		arity[r.Rhs.Symbol] = len(r.Rhs.Args)
	}
	live := map[string][]bool{}
	for sym, n := range arity {
		live[sym] = make([]bool, n)
	}

	mark := func(sym string, pos int) bool {
		if pos < 0 || pos >= len(live[sym]) || live[sym][pos] {
			return false
		}
		live[sym][pos] = true
		return true
	}

	if forceLive != nil {
		for _, r := range rules {
			for pos, arg := range r.Lhs.Args {
				if name, ok := varName(arg); ok && forceLive(r.Lhs.Symbol, pos, name) {
					mark(r.Lhs.Symbol, pos)
				}
			}
		}
	}

	for {
		changed := false
		for _, r := range rules {
			guardVars := map[string]bool{}
			for _, v := range r.Guard.Variables() {
				guardVars[v] = true
			}
			for pos, arg := range r.Lhs.Args {
				if name, ok := varName(arg); ok && guardVars[name] {
					if mark(r.Lhs.Symbol, pos) {
						changed = true
					}
				}
			}
			rhsSym := r.Rhs.Symbol
			for pos, arg := range r.Rhs.Args {
				if pos >= len(live[rhsSym]) || !live[rhsSym][pos] {
					continue
				}
				for _, used := range arg.Variables() {
					for lhsPos, lhsArg := range r.Lhs.Args {
						if name, ok := varName(lhsArg); ok && name == used {
							if mark(r.Lhs.Symbol, lhsPos) {
								changed = true
							}
						}
					}
				}
			}
		}
		if !changed {
			break
		}
	}
	return live
}

func dropSets(live map[string][]bool) map[string]map[int]bool {
	drop := map[string]map[int]bool{}
	for sym, positions := range live {
		d := map[int]bool{}
		for pos, isLive := range positions {
			if !isLive {
				d[pos] = true
			}
		}
		drop[sym] = d
	}
	return drop
}

func applyDrop(rules []*rule.Rule, drop map[string]map[int]bool) []*rule.Rule {
	out := make([]*rule.Rule, len(rules))
	for i, r := range rules {
		lhs := r.Lhs.DropArgs(drop[r.Lhs.Symbol])
		rhs := r.Rhs.DropArgs(drop[r.Rhs.Symbol])
		out[i] = rule.NewRule(lhs, rhs, r.Guard)
	}
	return out
}

// UsageSlicing drops argument positions that are never consulted by a
// guard and never flow into a position that is (spec.md §4.G pass 1).
func UsageSlicing(rules []*rule.Rule) []*rule.Rule {
	if len(rules) == 0 {
		return rules
	}
	live := liveness(rules, nil)
	return applyDrop(rules, dropSets(live))
}

// ConstraintSlicing folds guard atoms that are trivially true/false
// once both sides are syntactically identical polynomials (spec.md
// §4.G pass 2) — a simplification pass, not an argument-dropping one.
func ConstraintSlicing(rules []*rule.Rule) []*rule.Rule {
	out := make([]*rule.Rule, len(rules))
	for i, r := range rules {
		out[i] = rule.NewRule(r.Lhs, r.Rhs, simplifyGuard(r.Guard))
	}
	return out
}

func simplifyGuard(c *algebra.Constraint) *algebra.Constraint {
	switch c.Kind {
	case algebra.CAtom:
		if c.Lhs.Equals(c.Rhs) {
			switch c.Rel {
			case algebra.Eq, algebra.Le, algebra.Ge:
				return algebra.True
			case algebra.Ne, algebra.Lt, algebra.Gt:
				return algebra.False
			}
		}
		return c
	case algebra.CNegation:
		return algebra.Not(simplifyGuard(c.Child))
	case algebra.CAnd:
		return algebra.And(simplifyGuard(c.Left), simplifyGuard(c.Right))
	case algebra.COr:
		return algebra.Or(simplifyGuard(c.Left), simplifyGuard(c.Right))
	default:
		return c
	}
}

// DefinedSlicing drops rules whose guard is unconditionally False —
// dead transitions a rewrite can never take (spec.md §4.G pass 3).
func DefinedSlicing(rules []*rule.Rule) []*rule.Rule {
	var out []*rule.Rule
	for _, r := range rules {
		if r.Guard.Kind == algebra.CFalse {
			continue
		}
		out = append(out, r)
	}
	return out
}

// StillUsedSlicing reruns the liveness fixpoint after the guard
// simplification and dead-rule removal of the previous two passes may
// have changed what's actually read (spec.md §4.G pass 4). In
// conservative mode, every position bound to a name present in
// phiVars is force-kept live regardless of what the fixpoint would
// otherwise conclude (spec.md §9 open question: never drop a variable
// a conservative successor might still need).
func (s *Slicer) StillUsedSlicing(rules []*rule.Rule, phiVars map[string]bool) []*rule.Rule {
	if len(rules) == 0 {
		return rules
	}
	var force func(symbol string, pos int, name string) bool
	if s.Conservative && len(phiVars) > 0 {
		force = func(_ string, _ int, name string) bool { return phiVars[name] }
	}
	live := liveness(rules, force)
	return applyDrop(rules, dropSets(live))
}

// SliceDuplicates removes structurally identical rules: same lhs/rhs
// symbol, pairwise-equal argument polynomials, and structurally equal
// guards (spec.md §9 open question — exposed but not part of the
// default four-pass pipeline, matching the original driver never
// calling it).
func SliceDuplicates(rules []*rule.Rule) []*rule.Rule {
	var out []*rule.Rule
	for _, r := range rules {
		dup := false
		for _, kept := range out {
			if ruleEquals(r, kept) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, r)
		}
	}
	return out
}

func ruleEquals(a, b *rule.Rule) bool {
	if a.Lhs.Symbol != b.Lhs.Symbol || a.Rhs.Symbol != b.Rhs.Symbol {
		return false
	}
	if len(a.Lhs.Args) != len(b.Lhs.Args) || len(a.Rhs.Args) != len(b.Rhs.Args) {
		return false
	}
	for i := range a.Lhs.Args {
		if !a.Lhs.Args[i].Equals(b.Lhs.Args[i]) {
			return false
		}
	}
	for i := range a.Rhs.Args {
		if !a.Rhs.Args[i].Equals(b.Rhs.Args[i]) {
			return false
		}
	}
	return constraintEquals(a.Guard, b.Guard)
}

func constraintEquals(a, b *algebra.Constraint) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case algebra.CAtom:
		return a.Rel == b.Rel && a.Lhs.Equals(b.Lhs) && a.Rhs.Equals(b.Rhs)
	case algebra.CNegation:
		return constraintEquals(a.Child, b.Child)
	case algebra.CAnd, algebra.COr:
		return constraintEquals(a.Left, b.Left) && constraintEquals(a.Right, b.Right)
	default:
		return true
	}
}

// SliceTrivialNondefConstraints collapses every Nondef leaf of a
// guard to True: Nondef already means "assume this predicate can take
// either value" (spec.md §4.A — the float-predicate fallback), so
// once a guard has served its purpose as an input to Kittelizer's
// DNF split, a surviving Nondef conjunct carries no information a
// downstream ITRS consumer can act on and is erased rather than
// printed (spec.md §9 open question, exposed as an explicit opt-in
// utility pass rather than run by default).
func SliceTrivialNondefConstraints(rules []*rule.Rule) []*rule.Rule {
	out := make([]*rule.Rule, len(rules))
	for i, r := range rules {
		out[i] = rule.NewRule(r.Lhs, r.Rhs, eraseNondef(r.Guard))
	}
	return out
}

func eraseNondef(c *algebra.Constraint) *algebra.Constraint {
	switch c.Kind {
	case algebra.CNondef:
		return algebra.True
	case algebra.CNegation:
		return algebra.Not(eraseNondef(c.Child))
	case algebra.CAnd:
		return algebra.And(eraseNondef(c.Left), eraseNondef(c.Right))
	case algebra.COr:
		return algebra.Or(eraseNondef(c.Left), eraseNondef(c.Right))
	default:
		return c
	}
}
