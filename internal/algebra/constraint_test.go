package algebra

import "testing"

func TestNNFNegatesAtomRelop(t *testing.T) {
	x := NewVar("x")
	c := NewAtom(x, NewConst(0), Gt)
	neg := c.ToNNF(true)
	if neg.Kind != CAtom || neg.Rel != Le {
		t.Fatalf("to_nnf(true) of (x > 0) should be (x <= 0), got %s", neg)
	}
	pos := c.ToNNF(false)
	if pos != c {
		t.Fatalf("to_nnf(false) of an atom should be the atom itself, got %s", pos)
	}
}

func TestNNFDeMorgan(t *testing.T) {
	x := NewVar("x")
	a := NewAtom(x, NewConst(0), Gt)
	b := NewAtom(x, NewConst(10), Lt)
	conj := And(a, b)
	neg := conj.ToNNF(true)
	if neg.Kind != COr {
		t.Fatalf("negating a conjunction should yield a disjunction, got %s", neg)
	}
}

func TestEliminateNeq(t *testing.T) {
	x := NewVar("x")
	c := NewAtom(x, NewConst(0), Ne)
	got := c.EliminateNeq()
	if got.Kind != COr {
		t.Fatalf("x != 0 should eliminate to a disjunction, got %s", got)
	}
}

func TestToDNFNoSolver(t *testing.T) {
	x := NewVar("x")
	y := NewVar("y")
	a := NewAtom(x, NewConst(0), Gt)
	b := NewAtom(y, NewConst(0), Gt)
	c := NewAtom(x, NewConst(0), Lt)
	conj := And(a, Or(b, c))
	dnf := conj.ToDNF(NoSolver{})
	clauses := dnf.AddDualClausesToList()
	if len(clauses) != 2 {
		t.Fatalf("expected 2 top-level disjuncts, got %d: %s", len(clauses), dnf)
	}
}

func TestAndOrTrivialFolding(t *testing.T) {
	x := NewVar("x")
	c := NewAtom(x, NewConst(0), Gt)
	if And(True, c) != c {
		t.Fatalf("True /\\ c should fold to c")
	}
	if And(False, c) != False {
		t.Fatalf("False /\\ c should fold to False")
	}
	if Or(True, c) != True {
		t.Fatalf("True \\/ c should fold to True")
	}
}

func TestDoubleNegation(t *testing.T) {
	x := NewVar("x")
	c := NewAtom(x, NewConst(0), Gt)
	if Not(Not(c)) != c {
		t.Fatalf("double negation should fold away")
	}
}

func TestConstantAtomsFoldEagerly(t *testing.T) {
	c := NewAtom(NewConst(1), NewConst(2), Lt)
	if c != True {
		t.Fatalf("1 < 2 should fold to True eagerly")
	}
	c2 := NewAtom(NewConst(2), NewConst(1), Lt)
	if c2 != False {
		t.Fatalf("2 < 1 should fold to False eagerly")
	}
}
