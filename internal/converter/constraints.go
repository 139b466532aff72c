package converter

import (
	"llir2itrs/internal/algebra"
	"llir2itrs/internal/config"
)

func atom(l *algebra.Polynomial, rel algebra.RelOp, r *algebra.Polynomial) *algebra.Constraint {
	return algebra.NewAtom(l, r, rel)
}

func geZero(p *algebra.Polynomial) *algebra.Constraint { return atom(p, algebra.Ge, algebra.Zero) }
func ltZero(p *algebra.Polynomial) *algebra.Constraint { return atom(p, algebra.Lt, algebra.Zero) }

func negate(p *algebra.Polynomial) *algebra.Polynomial { return algebra.Zero.Sub(p) }

// divRemConstraint builds the Div/Rem constraint disjunction of
// spec.md §4.E for a division (isRem=false) or remainder (isRem=true)
// instruction `z := x op y`. signed selects the signed 7-case
// disjunction vs. the unsigned subset; exact requests the tighter
// Euclidean-identity replacement (non-bounded only, mutually exclusive
// with bounded-integers per internal/config.Validate).
func divRemConstraint(x, y, z *algebra.Polynomial, signed, isRem, exact bool) *algebra.Constraint {
	if exact && !isRem {
		return exactDivConstraint(x, y, z, signed)
	}
	if isRem {
		return remConstraint(x, y, z, signed)
	}
	return divConstraint(x, y, z, signed)
}

func divConstraint(x, y, z *algebra.Polynomial, signed bool) *algebra.Constraint {
	one, negOne := algebra.One, algebra.NegOne
	cases := []*algebra.Constraint{
		algebra.And(atom(x, algebra.Eq, algebra.Zero), atom(z, algebra.Eq, algebra.Zero)),
		algebra.And(atom(y, algebra.Eq, one), atom(z, algebra.Eq, x)),
	}
	if signed {
		cases = append(cases, algebra.And(atom(y, algebra.Eq, negOne), atom(z, algebra.Eq, negate(x))))
	}
	// y > 1 (or, unsigned, just y > 1 too since unsigned > 1 still means >1) ∧ x > 0 ∧ 0 <= z < x
	cases = append(cases, algebra.AndAll([]*algebra.Constraint{
		atom(y, algebra.Gt, one), atom(x, algebra.Gt, algebra.Zero),
		geZero(z), atom(z, algebra.Lt, x),
	}))
	if signed {
		cases = append(cases, algebra.AndAll([]*algebra.Constraint{
			atom(y, algebra.Gt, one), ltZero(x),
			atom(x, algebra.Lt, z), atom(z, algebra.Le, algebra.Zero),
		}))
		cases = append(cases, algebra.AndAll([]*algebra.Constraint{
			atom(y, algebra.Lt, negOne), atom(x, algebra.Gt, algebra.Zero),
			atom(negate(x), algebra.Lt, z), atom(z, algebra.Le, algebra.Zero),
		}))
		cases = append(cases, algebra.AndAll([]*algebra.Constraint{
			atom(y, algebra.Lt, negOne), ltZero(x),
			geZero(z), atom(z, algebra.Lt, negate(x)),
		}))
	}
	return algebra.OrAll(cases)
}

func remConstraint(x, y, z *algebra.Polynomial, signed bool) *algebra.Constraint {
	one, negOne := algebra.One, algebra.NegOne
	cases := []*algebra.Constraint{
		algebra.And(atom(x, algebra.Eq, algebra.Zero), atom(z, algebra.Eq, algebra.Zero)),
		algebra.And(atom(y, algebra.Eq, one), atom(z, algebra.Eq, algebra.Zero)),
	}
	if signed {
		cases = append(cases, algebra.And(atom(y, algebra.Eq, negOne), atom(z, algebra.Eq, algebra.Zero)))
	}
	cases = append(cases, algebra.AndAll([]*algebra.Constraint{
		atom(y, algebra.Gt, one), atom(x, algebra.Gt, algebra.Zero),
		geZero(z), atom(z, algebra.Lt, y),
	}))
	if signed {
		cases = append(cases, algebra.AndAll([]*algebra.Constraint{
			atom(y, algebra.Gt, one), ltZero(x),
			atom(negate(y), algebra.Lt, z), atom(z, algebra.Le, algebra.Zero),
		}))
		cases = append(cases, algebra.AndAll([]*algebra.Constraint{
			atom(y, algebra.Lt, negOne), atom(x, algebra.Gt, algebra.Zero),
			geZero(z), atom(z, algebra.Lt, negate(y)),
		}))
		cases = append(cases, algebra.AndAll([]*algebra.Constraint{
			atom(y, algebra.Lt, negOne), ltZero(x),
			atom(y, algebra.Lt, z), atom(z, algebra.Le, algebra.Zero),
		}))
	}
	return algebra.OrAll(cases)
}

// exactDivConstraint replaces the inequality-bodied cases of divConstraint
// with the tighter Euclidean identity x - y*z >= 0 ∧ x - y*z < |y|
// (spec.md §4.E "Exact-division"), keeping the trivial x=0/y=±1 cases.
func exactDivConstraint(x, y, z *algebra.Polynomial, signed bool) *algebra.Constraint {
	one, negOne := algebra.One, algebra.NegOne
	rem := x.Sub(y.Mult(z))
	cases := []*algebra.Constraint{
		algebra.And(atom(x, algebra.Eq, algebra.Zero), atom(z, algebra.Eq, algebra.Zero)),
		algebra.And(atom(y, algebra.Eq, one), atom(z, algebra.Eq, x)),
	}
	if signed {
		cases = append(cases, algebra.And(atom(y, algebra.Eq, negOne), atom(z, algebra.Eq, negate(x))))
	}
	posY := algebra.AndAll([]*algebra.Constraint{atom(y, algebra.Gt, one), geZero(rem), atom(rem, algebra.Lt, y)})
	cases = append(cases, posY)
	if signed {
		negY := algebra.AndAll([]*algebra.Constraint{atom(y, algebra.Lt, negOne), geZero(rem), atom(rem, algebra.Lt, negate(y))})
		cases = append(cases, negY)
	}
	return algebra.OrAll(cases)
}

// bitwiseConstraint builds the four-case And/Or constraint of spec.md
// §4.E tying a fresh havoc z to the operands of a bitwise and/or
// instruction, for the bounded+bitwise-conditions option. isOr selects
// the "or" dual; under unsigned bounding both collapse to the simpler
// z<=min / z>=max forms the spec names.
func bitwiseConstraint(x, y, z *algebra.Polynomial, isOr bool, cfg *config.Options) *algebra.Constraint {
	if cfg.UnsignedBounds() {
		if isOr {
			return algebra.And(atom(z, algebra.Ge, x), atom(z, algebra.Ge, y))
		}
		return algebra.And(atom(z, algebra.Le, x), atom(z, algebra.Le, y))
	}
	if isOr {
		return algebra.OrAll([]*algebra.Constraint{
			algebra.AndAll([]*algebra.Constraint{geZero(x), geZero(y), atom(z, algebra.Ge, x), atom(z, algebra.Ge, y)}),
			algebra.AndAll([]*algebra.Constraint{geZero(x), ltZero(y), atom(z, algebra.Le, x)}),
			algebra.AndAll([]*algebra.Constraint{ltZero(x), geZero(y), atom(z, algebra.Le, y)}),
			algebra.AndAll([]*algebra.Constraint{ltZero(x), ltZero(y), ltZero(z), atom(z, algebra.Ge, x), atom(z, algebra.Ge, y)}),
		})
	}
	return algebra.OrAll([]*algebra.Constraint{
		algebra.AndAll([]*algebra.Constraint{geZero(x), geZero(y), geZero(z), atom(z, algebra.Le, x), atom(z, algebra.Le, y)}),
		algebra.AndAll([]*algebra.Constraint{geZero(x), ltZero(y), geZero(z), atom(z, algebra.Le, x)}),
		algebra.AndAll([]*algebra.Constraint{ltZero(x), geZero(y), geZero(z), atom(z, algebra.Le, y)}),
		algebra.AndAll([]*algebra.Constraint{ltZero(x), ltZero(y), ltZero(z), atom(z, algebra.Le, x), atom(z, algebra.Le, y)}),
	})
}

// unsignedCmpUnderSignedBound builds the three-case disjunction of
// spec.md §4.E for an unsigned comparison (rel ∈ {Gt,Ge,Lt,Le}) under a
// bounded-signed integer model.
func unsignedCmpUnderSignedBound(rel algebra.RelOp, x, y *algebra.Polynomial) *algebra.Constraint {
	same := algebra.AndAll([]*algebra.Constraint{geZero(x), geZero(y), atom(x, rel, y)})
	bothNeg := algebra.AndAll([]*algebra.Constraint{ltZero(x), ltZero(y), atom(x, rel, y)})
	var crossing *algebra.Constraint
	switch rel {
	case algebra.Gt, algebra.Ge:
		crossing = algebra.And(ltZero(x), geZero(y))
	default: // Lt, Le
		crossing = algebra.And(geZero(x), ltZero(y))
	}
	return algebra.OrAll([]*algebra.Constraint{same, bothNeg, crossing})
}

// signedCmpUnderUnsignedBound is the dual of unsignedCmpUnderSignedBound,
// splitting on x <= simax(w) vs x > simax(w) in place of x >= 0 vs x < 0
// (spec.md §4.E "Signed comparison under unsigned bounding").
func signedCmpUnderUnsignedBound(rel algebra.RelOp, x, y *algebra.Polynomial, w int) *algebra.Constraint {
	simax := algebra.SignedMax(w)
	small := func(p *algebra.Polynomial) *algebra.Constraint { return atom(p, algebra.Le, simax) }
	big := func(p *algebra.Polynomial) *algebra.Constraint { return atom(p, algebra.Gt, simax) }
	same := algebra.AndAll([]*algebra.Constraint{small(x), small(y), atom(x, rel, y)})
	bothBig := algebra.AndAll([]*algebra.Constraint{big(x), big(y), atom(x, rel, y)})
	var crossing *algebra.Constraint
	switch rel {
	case algebra.Gt, algebra.Ge:
		crossing = algebra.And(big(x), small(y))
	default:
		crossing = algebra.And(small(x), big(y))
	}
	return algebra.OrAll([]*algebra.Constraint{same, bothBig, crossing})
}
