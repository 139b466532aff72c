package converter

import (
	"math/big"

	"llir2itrs/internal/algebra"
	"llir2itrs/internal/errors"
	"llir2itrs/internal/feeders"
	"llir2itrs/internal/llir"
)

// Variant is one guarded outcome of lowering a single instruction: the
// Guard that must hold for this outcome, and the slots of V it
// overwrites (everything else passes through unchanged). Multiple
// variants model instructions that fork into several rules (select,
// zext of a bool, and zext/sext split on the source's sign under
// bounded integers), spec.md §4.E "one or more rules per instruction";
// div/rem stays a single variant whose guard is the whole disjunction.
type Variant struct {
	Guard   *algebra.Constraint
	Updates map[string]*algebra.Polynomial
}

func single(guard *algebra.Constraint, updates map[string]*algebra.Polynomial) []Variant {
	return []Variant{{Guard: guard, Updates: updates}}
}

func havoc(c *Converter, name string) *algebra.Polynomial {
	return algebra.NewVar(c.Nondef.Fresh())
}

// encodeInstruction implements the per-opcode table of spec.md §4.E,
// dispatching to the constraint builders of constraints.go for
// div/rem/bitwise and returning the one-or-two Variants that make up
// this instruction's rule(s).
func (c *Converter) encodeInstruction(f *llir.Function, fv *FuncVars, inst llir.Instruction, mayMust *feeders.MayMustMap) ([]Variant, []*errors.CompilerError) {
	switch i := inst.(type) {
	case *llir.BinOp:
		return c.encodeBinOp(i)
	case *llir.Cast:
		return c.encodeCast(i)
	case *llir.Select:
		return c.encodeSelect(i)
	case *llir.Load:
		return c.encodeLoad(i, mayMust)
	case *llir.Store:
		return c.encodeStore(i, mayMust)
	case *llir.Call:
		return c.encodeCall(i)
	}
	return single(algebra.True, nil), nil
}

func (c *Converter) encodeBinOp(i *llir.BinOp) ([]Variant, []*errors.CompilerError) {
	x, y := c.polyOf(i.LHS), c.polyOf(i.RHS)
	res := i.Res.Name
	switch i.Op {
	case llir.OpAdd:
		return single(algebra.True, map[string]*algebra.Polynomial{res: x.Add(y)}), nil
	case llir.OpSub:
		return single(algebra.True, map[string]*algebra.Polynomial{res: x.Sub(y)}), nil
	case llir.OpMul:
		return single(algebra.True, map[string]*algebra.Polynomial{res: x.Mult(y)}), nil
	case llir.OpSDiv, llir.OpUDiv, llir.OpSRem, llir.OpURem:
		return c.encodeDivRem(i)
	case llir.OpAnd, llir.OpOr:
		return c.encodeBitwise(i)
	case llir.OpXor:
		// spec.md §4.E: `xor x -1` is the bitwise-NOT identity
		// `-poly(x) - 1`; every other xor is an unconstrained havoc.
		if i.RHS.IsConst() && i.RHS.ConstInt.Cmp(big.NewInt(-1)) == 0 {
			return single(algebra.True, map[string]*algebra.Polynomial{res: negate(x).Sub(algebra.One)}), nil
		}
		return single(algebra.True, map[string]*algebra.Polynomial{res: havoc(c, res)}), nil
	}
	return single(algebra.True, map[string]*algebra.Polynomial{res: havoc(c, res)}), nil
}

func (c *Converter) encodeDivRem(i *llir.BinOp) ([]Variant, []*errors.CompilerError) {
	x, y := c.polyOf(i.LHS), c.polyOf(i.RHS)
	res := i.Res.Name
	z := algebra.NewVar(c.Nondef.Fresh())
	signed := i.Op == llir.OpSDiv || i.Op == llir.OpSRem
	isRem := i.Op == llir.OpSRem || i.Op == llir.OpURem
	exact := c.Config.ExactDivision && !isRem
	guard := divRemConstraint(x, y, z, signed, isRem, exact)
	return single(guard, map[string]*algebra.Polynomial{res: z}), nil
}

func (c *Converter) encodeBitwise(i *llir.BinOp) ([]Variant, []*errors.CompilerError) {
	res := i.Res.Name
	if !c.Config.BoundedIntegers || !c.Config.BitwiseConditions {
		return single(algebra.True, map[string]*algebra.Polynomial{res: havoc(c, res)}), nil
	}
	x, y := c.polyOf(i.LHS), c.polyOf(i.RHS)
	z := algebra.NewVar(c.Nondef.Fresh())
	guard := bitwiseConstraint(x, y, z, i.Op == llir.OpOr, c.Config)
	return single(guard, map[string]*algebra.Polynomial{res: z}), nil
}

func (c *Converter) encodeCast(i *llir.Cast) ([]Variant, []*errors.CompilerError) {
	res := i.Res.Name
	switch i.Op {
	case llir.OpFPToSI, llir.OpFPToUI, llir.OpPtrToInt, llir.OpIntToPtr:
		// Source is a float or pointer value the core never computes
		// with arithmetically (spec.md §4.E; the float case is also
		// §9's open question); the result is an unconstrained havoc.
		return single(algebra.True, map[string]*algebra.Polynomial{res: havoc(c, res)}), nil
	case llir.OpZExt:
		return c.encodeZExt(i)
	case llir.OpSExt:
		return c.encodeSExt(i)
	case llir.OpTrunc:
		// Under a bit-width model, truncation forgets the high bits and
		// is an unconstrained havoc; without one it is transparent.
		if c.Config.BoundedIntegers {
			return single(algebra.True, map[string]*algebra.Polynomial{res: havoc(c, res)}), nil
		}
		return single(algebra.True, map[string]*algebra.Polynomial{res: c.polyOf(i.Src)}), nil
	default:
		// bitcast int->int is numerically transparent.
		return single(algebra.True, map[string]*algebra.Polynomial{res: c.polyOf(i.Src)}), nil
	}
}

// encodeZExt implements spec.md §4.E's `zext` row. A `zext bool->int`
// binds the result to the constants 0/1 under the source condition's
// two truth values; a `zext int->int` under the bounded-signed
// encoding splits on the source's sign, adding 2^w_old when negative
// so the zero-extended value lands in the unsigned range. Without
// bit-width bounding it is a plain copy.
func (c *Converter) encodeZExt(i *llir.Cast) ([]Variant, []*errors.CompilerError) {
	res := i.Res.Name
	if llir.IsBoolean(i.SrcType) {
		cond := c.condOfValue(i.Src)
		return []Variant{
			{Guard: cond.ToNNF(false), Updates: map[string]*algebra.Polynomial{res: algebra.One}},
			{Guard: cond.ToNNF(true), Updates: map[string]*algebra.Polynomial{res: algebra.Zero}},
		}, nil
	}
	src := c.polyOf(i.Src)
	if c.Config.SignedBounds() {
		w := bitWidthOf(i.SrcType)
		return []Variant{
			{Guard: geZero(src), Updates: map[string]*algebra.Polynomial{res: src}},
			{Guard: ltZero(src), Updates: map[string]*algebra.Polynomial{res: src.Add(algebra.PowerOfTwo(w))}},
		}, nil
	}
	return single(algebra.True, map[string]*algebra.Polynomial{res: src}), nil
}

// encodeSExt implements spec.md §4.E's `sext` row: under the
// bounded-unsigned encoding, a sign-extension splits on whether the
// source exceeds the old type's signed maximum, adding
// 2^w_new - 2^w_old when it does (recovering the two's-complement
// negative value in the wider unsigned range). Without bounded
// unsigned encoding it is a plain copy.
func (c *Converter) encodeSExt(i *llir.Cast) ([]Variant, []*errors.CompilerError) {
	res := i.Res.Name
	src := c.polyOf(i.Src)
	if c.Config.UnsignedBounds() {
		wOld, wNew := bitWidthOf(i.SrcType), bitWidthOf(i.DstType)
		simax := algebra.SignedMax(wOld)
		shift := algebra.PowerOfTwo(wNew).Sub(algebra.PowerOfTwo(wOld))
		return []Variant{
			{Guard: atom(src, algebra.Le, simax), Updates: map[string]*algebra.Polynomial{res: src}},
			{Guard: atom(src, algebra.Gt, simax), Updates: map[string]*algebra.Polynomial{res: shift.Add(src)}},
		}, nil
	}
	return single(algebra.True, map[string]*algebra.Polynomial{res: src}), nil
}

func (c *Converter) encodeSelect(i *llir.Select) ([]Variant, []*errors.CompilerError) {
	res := i.Res.Name
	cond := c.condOfValue(i.Cond)
	return []Variant{
		{Guard: cond.ToNNF(false), Updates: map[string]*algebra.Polynomial{res: c.polyOf(i.A)}},
		{Guard: cond.ToNNF(true), Updates: map[string]*algebra.Polynomial{res: c.polyOf(i.B)}},
	}, nil
}

// encodeLoad resolves the read against the must-alias set: a single
// precisely-known cell is copied through; anything else is an
// unconstrained havoc (spec.md §4.C/§4.E).
func (c *Converter) encodeLoad(i *llir.Load, mayMust *feeders.MayMustMap) ([]Variant, []*errors.CompilerError) {
	res := i.Res.Name
	must := mayMust.Must[i]
	if len(must) == 1 {
		return single(algebra.True, map[string]*algebra.Polynomial{res: algebra.NewVar(must[0])}), nil
	}
	return single(algebra.True, map[string]*algebra.Polynomial{res: havoc(c, res)}), nil
}

// encodeStore writes the stored value's polynomial into every
// must-aliased cell and havocs every may-but-not-must cell, matching
// spec.md §4.C's may/must semantics for memory writes.
func (c *Converter) encodeStore(i *llir.Store, mayMust *feeders.MayMustMap) ([]Variant, []*errors.CompilerError) {
	val := c.polyOf(i.Val)
	must := map[string]bool{}
	updates := map[string]*algebra.Polynomial{}
	for _, cell := range mayMust.Must[i] {
		must[cell] = true
		updates[cell] = val
	}
	for _, cell := range mayMust.May[i] {
		if !must[cell] {
			updates[cell] = havoc(c, cell)
		}
	}
	return single(algebra.True, updates), nil
}

// encodeCall lowers `assume`/`nondef` intrinsics directly and, for an
// ordinary call, builds the havoc side of spec.md §4.E's "Other call"
// row: the result (if any) and every global cell reachable via
// may/must write from any candidate callee (transitively) become
// unconstrained havocs. The callee-start transition rules the same
// row also requires are emitted independently by
// calleeTransitionRules, called from emitBlock alongside this
// instruction's ordinary chain continuation.
func (c *Converter) encodeCall(i *llir.Call) ([]Variant, []*errors.CompilerError) {
	updates := map[string]*algebra.Polynomial{}
	if i.Res != nil && llir.IsInteger(i.Res.Type) && i.Intrinsic != llir.IntrinsicAssume {
		updates[i.Res.Name] = havoc(c, i.Res.Name)
	}
	if i.Intrinsic == llir.IntrinsicAssume {
		guard := algebra.True
		if len(i.Args) > 0 {
			guard = c.condOfValue(i.Args[0]).ToNNF(false)
		}
		return single(guard, updates), nil
	}
	if i.Intrinsic == llir.IntrinsicNondef {
		return single(algebra.True, updates), nil
	}
	zapped := map[string]bool{}
	for _, callee := range c.candidateCallees(i) {
		mm := c.mayMustFor(callee)
		for _, cell := range mm.MayZap(callee) {
			zapped[cell] = true
		}
		for _, transitive := range c.CallGraph.TransitivelyCalledFunctions(callee) {
			tmm := c.mayMustFor(transitive)
			for _, cell := range tmm.MayZap(transitive) {
				zapped[cell] = true
			}
		}
	}
	for cell := range zapped {
		updates[cell] = havoc(c, cell)
	}
	return single(algebra.True, updates), nil
}
