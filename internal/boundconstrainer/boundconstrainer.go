// Package boundconstrainer implements component H of spec.md §4.H: once
// --bounded-integers is set, every rule-result value bound to a
// fixed-width variable is kept inside that width's representable range.
// A value that provably needs only a small, staticaly-countable number
// of modulus wraps (spec.md's norm_steps_needed) is normalised in
// place; anything else falls back to a range-guarded havoc, the same
// conservative-over-approximation pattern used for calls
// (internal/converter, DESIGN.md decision 5) rather than splicing a
// recursive normaliser symbol into the rule graph. Grounded on
// original_source/lib/Core/BoundConstrainer.cpp for the wrap-count
// decision and on internal/algebra.Polynomial.NormStepsNeeded, which
// this package is the sole caller of.
package boundconstrainer

import (
	"math/big"

	"llir2itrs/internal/algebra"
	"llir2itrs/internal/config"
	"llir2itrs/internal/rule"
)

// BoundConstrainer normalises the result of every rule for variables
// named in VarWidth (the integer-typed variables of the function being
// processed, keyed by their declared bit width).
type BoundConstrainer struct {
	Config   *config.Options
	VarWidth map[string]int
	Nondef   *rule.NondefFactory
}

// New builds a BoundConstrainer. cfg.BoundedIntegers must be true for
// Constrain to do anything; callers may still call it unconditionally.
func New(cfg *config.Options, varWidth map[string]int, nondef *rule.NondefFactory) *BoundConstrainer {
	return &BoundConstrainer{Config: cfg, VarWidth: varWidth, Nondef: nondef}
}

func (b *BoundConstrainer) bounds(w int) (low, high, modulus *big.Int) {
	modulus = algebra.PowerOfTwo(w).ConstValue()
	if b.Config.UnsignedBounds() {
		return big.NewInt(0), algebra.UnsignedMax(w).ConstValue(), modulus
	}
	return algebra.SignedMin(w).ConstValue(), algebra.SignedMax(w).ConstValue(), modulus
}

// Constrain rewrites every rule's rhs, bounding every argument position
// whose lhs-bound variable name appears in VarWidth. Positions that
// have been sliced away (rhs shorter than the lhs index expects) are
// simply skipped.
func (b *BoundConstrainer) Constrain(rules []*rule.Rule) []*rule.Rule {
	if !b.Config.BoundedIntegers {
		return rules
	}
	out := make([]*rule.Rule, len(rules))
	for i, r := range rules {
		out[i] = b.constrainRule(r)
	}
	return out
}

func (b *BoundConstrainer) constrainRule(r *rule.Rule) *rule.Rule {
	guard := r.Guard
	args := append([]*algebra.Polynomial(nil), r.Rhs.Args...)
	changed := false
	for pos, lhsArg := range r.Lhs.Args {
		if pos >= len(args) {
			break
		}
		name, ok := varName(lhsArg)
		if !ok {
			continue
		}
		w, ok := b.VarWidth[name]
		if !ok {
			continue
		}
		newArg, extraGuard := b.normalize(args[pos], w)
		args[pos] = newArg
		if extraGuard != nil {
			guard = algebra.And(guard, extraGuard)
		}
		changed = true
	}
	if !changed {
		return r
	}
	newRhs := rule.NewTerm(r.Rhs.Symbol, args)
	return rule.NewRule(r.Lhs, newRhs, guard)
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

// normalize returns the bounded replacement for poly and an optional
// extra guard clause. Values already provably in range, or whose
// required wrap count spec.md's norm_steps_needed can compute, are
// rewritten exactly; everything else becomes a fresh havoc bounded by
// [low, high] (a sound over-approximation: the wrapped value is
// somewhere in range, even if not the exact residue of poly).
func (b *BoundConstrainer) normalize(poly *algebra.Polynomial, w int) (*algebra.Polynomial, *algebra.Constraint) {
	low, high, modulus := b.bounds(w)
	steps := poly.NormStepsNeeded(low, high, modulus)
	if steps == 0 {
		return poly, nil
	}
	if steps > 0 {
		vars := poly.Variables()
		x := vars[0]
		coeff := poly.GetCoeff(algebra.NewVarMonomial(x))
		adjusted := poly.ConstValue()
		for i := 0; i < steps; i++ {
			if adjusted.Cmp(high) > 0 {
				adjusted = new(big.Int).Sub(adjusted, modulus)
			} else {
				adjusted = new(big.Int).Add(adjusted, modulus)
			}
		}
		newPoly := algebra.NewVar(x).ConstMult(coeff).Add(algebra.NewConstBig(adjusted))
		return newPoly, nil
	}
	fresh := algebra.NewVar(b.Nondef.Fresh())
	guard := algebra.And(
		algebra.NewAtom(fresh, algebra.NewConstBig(low), algebra.Ge),
		algebra.NewAtom(fresh, algebra.NewConstBig(high), algebra.Le),
	)
	return fresh, guard
}
