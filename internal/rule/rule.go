// Package rule implements the rule model of spec.md §3/§4.B: Terms
// (a function symbol plus an ordered Polynomial argument list) and
// Rules (lhs -> rhs [guard]).
package rule

import (
	"strconv"
	"strings"

	"llir2itrs/internal/algebra"
)

// Term is a function symbol applied to an ordered list of Polynomial
// arguments (spec.md §3).
type Term struct {
	Symbol string
	Args   []*algebra.Polynomial
}

// NewTerm builds a Term, copying the argument slice so callers can't
// mutate it out from under a constructed Rule afterwards (Rules are
// value-like per spec.md §3 Lifecycles).
func NewTerm(symbol string, args []*algebra.Polynomial) *Term {
	cp := make([]*algebra.Polynomial, len(args))
	copy(cp, args)
	return &Term{Symbol: symbol, Args: cp}
}

// Variables returns the set of variable names occurring across every
// argument of t.
func (t *Term) Variables() []string {
	seen := make(map[string]bool)
	var out []string
	for _, a := range t.Args {
		for _, v := range a.Variables() {
			if !seen[v] {
				seen[v] = true
				out = append(out, v)
			}
		}
	}
	return out
}

func (t *Term) String() string {
	parts := make([]string, len(t.Args))
	for i, a := range t.Args {
		parts[i] = a.String()
	}
	return t.Symbol + "(" + strings.Join(parts, ", ") + ")"
}

// Instantiate returns t with every argument substituted via sigma.
func (t *Term) Instantiate(sigma map[string]*algebra.Polynomial) *Term {
	args := make([]*algebra.Polynomial, len(t.Args))
	for i, a := range t.Args {
		args[i] = a.Instantiate(sigma)
	}
	return &Term{Symbol: t.Symbol, Args: args}
}

// DropArgs returns t with the argument positions in drop removed.
func (t *Term) DropArgs(drop map[int]bool) *Term {
	var args []*algebra.Polynomial
	for i, a := range t.Args {
		if !drop[i] {
			args = append(args, a)
		}
	}
	return &Term{Symbol: t.Symbol, Args: args}
}

// Rule is (lhs, rhs, guard): whenever the current state matches lhs
// and guard holds, the state becomes rhs (spec.md §3 GLOSSARY).
type Rule struct {
	Lhs   *Term
	Rhs   *Term
	Guard *algebra.Constraint
}

// NewRule builds a rule; guard defaults to True when nil.
func NewRule(lhs, rhs *Term, guard *algebra.Constraint) *Rule {
	if guard == nil {
		guard = algebra.True
	}
	return &Rule{Lhs: lhs, Rhs: rhs, Guard: guard}
}

// Instantiate applies sigma to rhs and guard only; lhs is the binder
// and is never substituted (spec.md §4.B).
func (r *Rule) Instantiate(sigma map[string]*algebra.Polynomial) *Rule {
	return &Rule{Lhs: r.Lhs, Rhs: r.Rhs.Instantiate(sigma), Guard: r.Guard.Instantiate(sigma)}
}

// DropArgs produces a rule where the specified argument positions are
// removed from both lhs and rhs Terms; the guard is copied unchanged —
// any of its variables that disappear from the interface become
// implicitly havoc (spec.md §4.B).
func (r *Rule) DropArgs(positions map[int]bool) *Rule {
	return &Rule{Lhs: r.Lhs.DropArgs(positions), Rhs: r.Rhs.DropArgs(positions), Guard: r.Guard}
}

// DropArgsLhsOnly narrows only the lhs, leaving rhs untouched. The
// Slicer (component G) uses this at recursive start-symbols to keep
// the caller-visible interface stable while still dropping an unused
// binder position.
func (r *Rule) DropArgsLhsOnly(positions map[int]bool) *Rule {
	return &Rule{Lhs: r.Lhs.DropArgs(positions), Rhs: r.Rhs, Guard: r.Guard}
}

func (r *Rule) String() string {
	if r.Guard.Kind == algebra.CTrue {
		return r.Lhs.String() + " -> " + r.Rhs.String()
	}
	return r.Lhs.String() + " -> " + r.Rhs.String() + " [" + r.Guard.String() + "]"
}

// NondefFactory hands out fresh havoc ("nondef") variable names,
// unique across an entire SCC's worth of rule emission, restoring the
// original's NondefFactory.h (SPEC_FULL.md §3): every instruction
// encoding that needs "a fresh havoc variable z" (spec.md §4.E) draws
// its name from the same counter so two unrelated havocs can never
// collide once rules from different functions are concatenated.
type NondefFactory struct {
	next int
}

// NewNondefFactory returns a factory starting at 0.
func NewNondefFactory() *NondefFactory { return &NondefFactory{} }

// Fresh returns a new, never-before-returned variable name.
func (f *NondefFactory) Fresh() string {
	name := "__nondef_" + strconv.Itoa(f.next)
	f.next++
	return name
}
