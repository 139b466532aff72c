package converter

import (
	"llir2itrs/internal/algebra"
	"llir2itrs/internal/llir"
)

var icmpRelOp = map[llir.ICmpPredicate]algebra.RelOp{
	llir.ICmpEQ:  algebra.Eq,
	llir.ICmpNE:  algebra.Ne,
	llir.ICmpSGE: algebra.Ge,
	llir.ICmpSGT: algebra.Gt,
	llir.ICmpSLE: algebra.Le,
	llir.ICmpSLT: algebra.Lt,
	llir.ICmpUGE: algebra.Ge,
	llir.ICmpUGT: algebra.Gt,
	llir.ICmpULE: algebra.Le,
	llir.ICmpULT: algebra.Lt,
}

// condOfValue implements spec.md §4.E's cond_of_value: the map from a
// boolean-typed LLIR value to the Constraint it denotes.
func (c *Converter) condOfValue(v *llir.Value) *algebra.Constraint {
	if v.IsConst() {
		return atom(c.polyOf(v), algebra.Ne, algebra.Zero)
	}
	switch d := v.Def.(type) {
	case *llir.ICmp:
		return c.icmpCondition(d)
	case *llir.FCmp:
		// Floating-point predicates are always Nondef (spec.md §9 open
		// question: the original treats every float predicate this way).
		return algebra.Nondef
	case *llir.BinOp:
		switch d.Op {
		case llir.OpAnd:
			if llir.IsBoolean(d.LHS.Type) && llir.IsBoolean(d.RHS.Type) {
				return algebra.And(c.condOfValue(d.LHS), c.condOfValue(d.RHS))
			}
		case llir.OpOr:
			if llir.IsBoolean(d.LHS.Type) && llir.IsBoolean(d.RHS.Type) {
				return algebra.Or(c.condOfValue(d.LHS), c.condOfValue(d.RHS))
			}
		case llir.OpXor:
			if llir.IsBoolean(d.LHS.Type) && d.RHS.IsConst() && d.RHS.ConstInt.Sign() != 0 {
				return algebra.Not(c.condOfValue(d.LHS))
			}
		}
	case *llir.Select:
		if llir.IsBoolean(d.A.Type) && llir.IsBoolean(d.B.Type) {
			if constBool, isConst := boolConst(d.A); isConst {
				if constBool {
					return algebra.Or(c.condOfValue(d.Cond), c.condOfValue(d.B))
				}
				return algebra.And(algebra.Not(c.condOfValue(d.Cond)), c.condOfValue(d.B))
			}
			if constBool, isConst := boolConst(d.B); isConst {
				if constBool {
					return algebra.Or(algebra.Not(c.condOfValue(d.Cond)), c.condOfValue(d.A))
				}
				return algebra.And(c.condOfValue(d.Cond), c.condOfValue(d.A))
			}
		}
	case *llir.Cast:
		if d.Op == llir.OpZExt && llir.IsBoolean(d.SrcType) {
			return c.condOfValue(d.Src)
		}
	}
	return atom(c.polyOf(v), algebra.Ne, algebra.Zero)
}

func boolConst(v *llir.Value) (value bool, isConst bool) {
	if !v.IsConst() {
		return false, false
	}
	return v.ConstInt.Sign() != 0, true
}

// icmpCondition builds the Constraint for an integer comparison,
// applying the bounded-mode cross-signedness expansion of spec.md §4.E
// when the predicate's signedness disagrees with the configured
// bit-width model.
func (c *Converter) icmpCondition(i *llir.ICmp) *algebra.Constraint {
	x, y := c.polyOf(i.LHS), c.polyOf(i.RHS)
	rel := icmpRelOp[i.Pred]
	if i.Pred == llir.ICmpEQ || i.Pred == llir.ICmpNE || !c.Config.BoundedIntegers {
		return atom(x, rel, y)
	}
	w := bitWidthOf(i.LHS.Type)
	if i.Pred.IsUnsigned() && c.Config.SignedBounds() {
		return unsignedCmpUnderSignedBound(rel, x, y)
	}
	if i.Pred.IsSigned() && c.Config.UnsignedBounds() {
		return signedCmpUnderUnsignedBound(rel, x, y, w)
	}
	return atom(x, rel, y)
}

func bitWidthOf(t llir.Type) int {
	if it, ok := t.(*llir.IntType); ok {
		return it.Bits
	}
	return 64
}
