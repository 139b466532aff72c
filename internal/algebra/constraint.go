package algebra

import (
	"math/big"
)

// RelOp is an atomic comparison operator (spec.md §3).
type RelOp int

const (
	Eq RelOp = iota
	Ne
	Ge
	Gt
	Le
	Lt
)

func (r RelOp) String() string {
	return [...]string{"=", "!=", ">=", ">", "<=", "<"}[r]
}

func (r RelOp) negate() RelOp {
	return [...]RelOp{Ne, Eq, Lt, Le, Gt, Ge}[r]
}

// CKind discriminates the Constraint variants of spec.md §3.
type CKind int

const (
	CTrue CKind = iota
	CFalse
	CNondef
	CAtom
	CNegation
	CAnd
	COr
)

// Constraint is the constraint algebraic data type of spec.md §3:
// True/False/Nondef, Atom(lhs,rhs,relop), Negation(child),
// And(left,right)/Or(left,right) (binary; n-ary conjunctions are
// right-associated lists, per spec.md). Values are built only through
// the canonical constructors below, which fold the trivial cases
// spec.md names (True∧x=x, False∧x=False, double negation, atoms over
// two constants evaluate eagerly).
type Constraint struct {
	Kind CKind

	// CAtom
	Lhs, Rhs *Polynomial
	Rel      RelOp

	// CNegation
	Child *Constraint

	// CAnd / COr
	Left, Right *Constraint
}

// Canonical singletons.
var (
	True   = &Constraint{Kind: CTrue}
	False  = &Constraint{Kind: CFalse}
	Nondef = &Constraint{Kind: CNondef}
)

// NewAtom builds Atom(lhs,rhs,rel), evaluating it eagerly to True/False
// when both sides are constants (spec.md §3 canonical constructors).
func NewAtom(lhs, rhs *Polynomial, rel RelOp) *Constraint {
	if lhs.IsConstant() && rhs.IsConstant() {
		if evalConstAtom(lhs.ConstValue(), rhs.ConstValue(), rel) {
			return True
		}
		return False
	}
	return &Constraint{Kind: CAtom, Lhs: lhs, Rhs: rhs, Rel: rel}
}

func evalConstAtom(l, r *big.Int, rel RelOp) bool {
	cmp := l.Cmp(r)
	switch rel {
	case Eq:
		return cmp == 0
	case Ne:
		return cmp != 0
	case Ge:
		return cmp >= 0
	case Gt:
		return cmp > 0
	case Le:
		return cmp <= 0
	case Lt:
		return cmp < 0
	}
	return false
}

// And builds the canonical conjunction of a and b, folding
// True∧x=x, False∧x=False (spec.md §3).
func And(a, b *Constraint) *Constraint {
	if a.Kind == CFalse || b.Kind == CFalse {
		return False
	}
	if a.Kind == CTrue {
		return b
	}
	if b.Kind == CTrue {
		return a
	}
	return &Constraint{Kind: CAnd, Left: a, Right: b}
}

// Or builds the canonical disjunction of a and b.
func Or(a, b *Constraint) *Constraint {
	if a.Kind == CTrue || b.Kind == CTrue {
		return True
	}
	if a.Kind == CFalse {
		return b
	}
	if b.Kind == CFalse {
		return a
	}
	return &Constraint{Kind: COr, Left: a, Right: b}
}

// Not builds the canonical negation of c, folding double negation and
// flipping True/False; Nondef is invariant under negation (spec.md §3,
// §4.A).
func Not(c *Constraint) *Constraint {
	switch c.Kind {
	case CTrue:
		return False
	case CFalse:
		return True
	case CNondef:
		return Nondef
	case CNegation:
		return c.Child
	default:
		return &Constraint{Kind: CNegation, Child: c}
	}
}

// AndAll right-associates a list of constraints into a single
// conjunction (spec.md §3: "n-ary conjunctions are right-associated
// lists").
func AndAll(cs []*Constraint) *Constraint {
	if len(cs) == 0 {
		return True
	}
	acc := cs[len(cs)-1]
	for i := len(cs) - 2; i >= 0; i-- {
		acc = And(cs[i], acc)
	}
	return acc
}

// OrAll right-associates a list of constraints into a single
// disjunction.
func OrAll(cs []*Constraint) *Constraint {
	if len(cs) == 0 {
		return False
	}
	acc := cs[len(cs)-1]
	for i := len(cs) - 2; i >= 0; i-- {
		acc = Or(cs[i], acc)
	}
	return acc
}

// Variables returns the set of variable names occurring in c.
func (c *Constraint) Variables() []string {
	seen := make(map[string]bool)
	var out []string
	add := func(vs []string) {
		for _, v := range vs {
			if !seen[v] {
				seen[v] = true
				out = append(out, v)
			}
		}
	}
	var walk func(*Constraint)
	walk = func(n *Constraint) {
		switch n.Kind {
		case CAtom:
			add(n.Lhs.Variables())
			add(n.Rhs.Variables())
		case CNegation:
			walk(n.Child)
		case CAnd, COr:
			walk(n.Left)
			walk(n.Right)
		}
	}
	walk(c)
	return out
}

// Instantiate substitutes every polynomial leaf per sigma (spec.md
// §4.A).
func (c *Constraint) Instantiate(sigma map[string]*Polynomial) *Constraint {
	switch c.Kind {
	case CTrue, CFalse, CNondef:
		return c
	case CAtom:
		return NewAtom(c.Lhs.Instantiate(sigma), c.Rhs.Instantiate(sigma), c.Rel)
	case CNegation:
		return Not(c.Child.Instantiate(sigma))
	case CAnd:
		return And(c.Left.Instantiate(sigma), c.Right.Instantiate(sigma))
	case COr:
		return Or(c.Left.Instantiate(sigma), c.Right.Instantiate(sigma))
	}
	return c
}

// ToNNF pushes negation through And/Or (De Morgan), flipping atom
// relops; True/False flip under negation; Nondef is invariant
// (spec.md §4.A). negate selects whether c or ¬c is converted.
func (c *Constraint) ToNNF(negate bool) *Constraint {
	switch c.Kind {
	case CTrue:
		if negate {
			return False
		}
		return True
	case CFalse:
		if negate {
			return True
		}
		return False
	case CNondef:
		return Nondef
	case CAtom:
		if !negate {
			return c
		}
		return NewAtom(c.Lhs, c.Rhs, c.Rel.negate())
	case CNegation:
		return c.Child.ToNNF(!negate)
	case CAnd:
		if negate {
			return Or(c.Left.ToNNF(true), c.Right.ToNNF(true))
		}
		return And(c.Left.ToNNF(false), c.Right.ToNNF(false))
	case COr:
		if negate {
			return And(c.Left.ToNNF(true), c.Right.ToNNF(true))
		}
		return Or(c.Left.ToNNF(false), c.Right.ToNNF(false))
	}
	return c
}

// EliminateNeq replaces each a≠b by (a<b)∨(a>b) (spec.md §4.A).
func (c *Constraint) EliminateNeq() *Constraint {
	switch c.Kind {
	case CAtom:
		if c.Rel == Ne {
			return Or(NewAtom(c.Lhs, c.Rhs, Lt), NewAtom(c.Lhs, c.Rhs, Gt))
		}
		return c
	case CNegation:
		return Not(c.Child.EliminateNeq())
	case CAnd:
		return And(c.Left.EliminateNeq(), c.Right.EliminateNeq())
	case COr:
		return Or(c.Left.EliminateNeq(), c.Right.EliminateNeq())
	default:
		return c
	}
}

// EvaluateTrivialAtoms folds atoms whose both sides are constants into
// True/False (spec.md §4.A). NewAtom already does this eagerly, so
// this walk is a structural no-op for freshly-built trees; it matters
// after Instantiate substitutes constants into previously-symbolic
// atoms.
func (c *Constraint) EvaluateTrivialAtoms() *Constraint {
	switch c.Kind {
	case CAtom:
		return NewAtom(c.Lhs, c.Rhs, c.Rel)
	case CNegation:
		return Not(c.Child.EvaluateTrivialAtoms())
	case CAnd:
		return And(c.Left.EvaluateTrivialAtoms(), c.Right.EvaluateTrivialAtoms())
	case COr:
		return Or(c.Left.EvaluateTrivialAtoms(), c.Right.EvaluateTrivialAtoms())
	default:
		return c
	}
}

// Eliminator is the external SMT-solver capability (spec.md §4.A,
// §9): "model as a capability: fn should_eliminate(&Constraint) ->
// bool". The default NoSolver implementation always returns false,
// keeping the pipeline functional without an external solver.
type Eliminator interface {
	ShouldEliminate(c *Constraint) bool
}

// NoSolver never eliminates a disjunct; the zero value is ready to use.
type NoSolver struct{}

// ShouldEliminate always returns false.
func (NoSolver) ShouldEliminate(*Constraint) bool { return false }

// ToDNF requires NNF input; distributes And over Or, and for each
// conjunctive combination calls elim.ShouldEliminate, replacing the
// combination with False when the oracle reports it unsatisfiable
// (spec.md §4.A).
func (c *Constraint) ToDNF(elim Eliminator) *Constraint {
	switch c.Kind {
	case CAnd:
		return distribute(c.Left.ToDNF(elim), c.Right.ToDNF(elim), elim)
	case COr:
		return Or(c.Left.ToDNF(elim), c.Right.ToDNF(elim))
	default:
		return pruneConjunct(c, elim)
	}
}

func distribute(a, b *Constraint, elim Eliminator) *Constraint {
	aClauses := disjuncts(a)
	bClauses := disjuncts(b)
	var out *Constraint = False
	for _, ac := range aClauses {
		for _, bc := range bClauses {
			conj := pruneConjunct(And(ac, bc), elim)
			out = Or(out, conj)
		}
	}
	return out
}

func disjuncts(c *Constraint) []*Constraint {
	if c.Kind == COr {
		return append(disjuncts(c.Left), disjuncts(c.Right)...)
	}
	return []*Constraint{c}
}

func pruneConjunct(c *Constraint, elim Eliminator) *Constraint {
	if elim.ShouldEliminate(c) {
		return False
	}
	return c
}

// AddDualClausesToList flattens a DNF tree into a list of top-level
// disjuncts (spec.md §4.A "add_dual_clauses_to_list").
func (c *Constraint) AddDualClausesToList() []*Constraint {
	return disjuncts(c)
}

// AddAtomicsToList collects every atom leaf of c (spec.md §4.A
// "add_atomics_to_list").
func (c *Constraint) AddAtomicsToList() []*Constraint {
	var out []*Constraint
	var walk func(*Constraint)
	walk = func(n *Constraint) {
		switch n.Kind {
		case CAtom:
			out = append(out, n)
		case CNegation:
			walk(n.Child)
		case CAnd, COr:
			walk(n.Left)
			walk(n.Right)
		}
	}
	walk(c)
	return out
}

func (c *Constraint) String() string {
	switch c.Kind {
	case CTrue:
		return "True"
	case CFalse:
		return "False"
	case CNondef:
		return "Nondef"
	case CAtom:
		return c.Lhs.String() + " " + c.Rel.String() + " " + c.Rhs.String()
	case CNegation:
		return "!(" + c.Child.String() + ")"
	case CAnd:
		return "(" + c.Left.String() + " /\\ " + c.Right.String() + ")"
	case COr:
		return "(" + c.Left.String() + " \\/ " + c.Right.String() + ")"
	}
	return "?"
}
