package converter

import (
	"math/big"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"llir2itrs/internal/algebra"
	"llir2itrs/internal/callgraph"
	"llir2itrs/internal/config"
	"llir2itrs/internal/llir"
)

func newConverter(m *llir.Module, cfg *config.Options) *Converter {
	cg := callgraph.Build(m)
	return New(m, cfg, cg, noAlias{})
}

func TestEncodeBinOpXorOfMinusOneIsBitwiseNot(t *testing.T) {
	c := newConverter(&llir.Module{Name: "m"}, config.Default())
	res := &llir.Value{Name: "z", Type: i32()}
	inst := &llir.BinOp{
		Op:  llir.OpXor,
		Res: res,
		LHS: &llir.Value{Name: "x", Type: i32()},
		RHS: llir.NewConstValue("-1", i32(), big.NewInt(-1)),
	}

	variants, errs := c.encodeBinOp(inst)
	require.Empty(t, errs)
	require.Len(t, variants, 1)
	assert.Equal(t, algebra.True, variants[0].Guard)

	want := algebra.NewVar("x").ConstMult(big.NewInt(-1)).Sub(algebra.One)
	assert.True(t, variants[0].Updates["z"].Equals(want))
}

func TestEncodeBinOpXorOfOtherOperandIsHavoc(t *testing.T) {
	c := newConverter(&llir.Module{Name: "m"}, config.Default())
	res := &llir.Value{Name: "z", Type: i32()}
	inst := &llir.BinOp{
		Op:  llir.OpXor,
		Res: res,
		LHS: &llir.Value{Name: "x", Type: i32()},
		RHS: &llir.Value{Name: "y", Type: i32()},
	}

	variants, errs := c.encodeBinOp(inst)
	require.Empty(t, errs)
	require.Len(t, variants, 1)
	assert.True(t, strings.HasPrefix(variants[0].Updates["z"].String(), "__nondef_"))
}

func TestEncodeCastZExtBoolToIntBindsZeroOne(t *testing.T) {
	c := newConverter(&llir.Module{Name: "m"}, config.Default())
	cond := &llir.Value{Name: "c", Type: &llir.BoolType{}}
	res := &llir.Value{Name: "z", Type: i32()}
	inst := &llir.Cast{Op: llir.OpZExt, Src: cond, SrcType: &llir.BoolType{}, DstType: i32(), Res: res}

	variants, errs := c.encodeCast(inst)
	require.Empty(t, errs)
	require.Len(t, variants, 2)
	assert.True(t, variants[0].Updates["z"].Equals(algebra.One))
	assert.True(t, variants[1].Updates["z"].Equals(algebra.Zero))
}

func TestEncodeCastZExtIntUnderSignedBoundsSplitsOnSign(t *testing.T) {
	cfg := config.Default()
	cfg.BoundedIntegers = true
	c := newConverter(&llir.Module{Name: "m"}, cfg)
	src := &llir.Value{Name: "x", Type: i32()}
	res := &llir.Value{Name: "z", Type: &llir.IntType{Bits: 64}}
	inst := &llir.Cast{Op: llir.OpZExt, Src: src, SrcType: i32(), DstType: &llir.IntType{Bits: 64}, Res: res}

	variants, errs := c.encodeCast(inst)
	require.Empty(t, errs)
	require.Len(t, variants, 2)
	assert.True(t, variants[0].Updates["z"].Equals(algebra.NewVar("x")))
	want := algebra.NewVar("x").Add(algebra.PowerOfTwo(32))
	assert.True(t, variants[1].Updates["z"].Equals(want))
}

func TestEncodeCastSExtUnderUnsignedBoundsSplitsOnSignedMax(t *testing.T) {
	cfg := config.Default()
	cfg.BoundedIntegers = true
	cfg.UnsignedEncoding = true
	c := newConverter(&llir.Module{Name: "m"}, cfg)
	src := &llir.Value{Name: "x", Type: i32()}
	res := &llir.Value{Name: "z", Type: &llir.IntType{Bits: 64}}
	inst := &llir.Cast{Op: llir.OpSExt, Src: src, SrcType: i32(), DstType: &llir.IntType{Bits: 64}, Res: res}

	variants, errs := c.encodeCast(inst)
	require.Empty(t, errs)
	require.Len(t, variants, 2)
	assert.True(t, variants[0].Updates["z"].Equals(algebra.NewVar("x")))
	shift := algebra.PowerOfTwo(64).Sub(algebra.PowerOfTwo(32))
	want := shift.Add(algebra.NewVar("x"))
	assert.True(t, variants[1].Updates["z"].Equals(want))
}

func TestEncodeCastTruncIsHavocWhenBoundedOtherwiseCopy(t *testing.T) {
	src := &llir.Value{Name: "x", Type: &llir.IntType{Bits: 64}}
	res := &llir.Value{Name: "z", Type: i32()}
	inst := &llir.Cast{Op: llir.OpTrunc, Src: src, SrcType: &llir.IntType{Bits: 64}, DstType: i32(), Res: res}

	plain := newConverter(&llir.Module{Name: "m"}, config.Default())
	variants, errs := plain.encodeCast(inst)
	require.Empty(t, errs)
	require.Len(t, variants, 1)
	assert.True(t, variants[0].Updates["z"].Equals(algebra.NewVar("x")))

	cfg := config.Default()
	cfg.BoundedIntegers = true
	bounded := newConverter(&llir.Module{Name: "m"}, cfg)
	variants, errs = bounded.encodeCast(inst)
	require.Empty(t, errs)
	require.Len(t, variants, 1)
	assert.True(t, strings.HasPrefix(variants[0].Updates["z"].String(), "__nondef_"))
}

func TestEncodeCallAssumeGuardIsConditionNNF(t *testing.T) {
	c := newConverter(&llir.Module{Name: "m"}, config.Default())
	cond := &llir.Value{Name: "c", Type: &llir.BoolType{}}
	inst := &llir.Call{Intrinsic: llir.IntrinsicAssume, Args: []*llir.Value{cond}}

	variants, errs := c.encodeCall(inst)
	require.Empty(t, errs)
	require.Len(t, variants, 1)
	want := c.condOfValue(cond).ToNNF(false)
	assert.Equal(t, want.String(), variants[0].Guard.String())
}

func TestConvertFunctionCallEmitsCalleeStartTransition(t *testing.T) {
	callee := newFunc("callee")
	callee.Params = []*llir.Param{{Name: "p", Type: i32()}}
	callee.ReturnType = i32()
	cb := addBlock(callee, "entry")
	cb.Terminator = &llir.Return{Val: &llir.Value{Name: "p", Type: i32()}}

	caller := newFunc("caller")
	caller.Params = []*llir.Param{{Name: "a", Type: i32()}}
	caller.ReturnType = i32()
	b := addBlock(caller, "entry")
	callRes := &llir.Value{Name: "r", Type: i32()}
	callInst := &llir.Call{
		Res:    callRes,
		Callee: callee,
		Args:   []*llir.Value{{Name: "a", Type: i32()}},
	}
	b.Instructions = []llir.Instruction{callInst}
	b.Terminator = &llir.Return{Val: callRes}

	m := &llir.Module{Name: "m", Functions: []*llir.Function{caller, callee}}
	c := newConverter(m, config.Default())

	// With callee outside the SCC the caller would be trivial (one
	// start->stop rule), so both are placed in the same SCC here.
	rules, errs := c.ConvertFunction(caller, map[*llir.Function]bool{caller: true, callee: true})
	require.Empty(t, errs)

	var found bool
	for _, r := range rules {
		if r.Rhs.Symbol == StartSymbol(callee) {
			found = true
			assert.Len(t, r.Rhs.Args, len(c.VarsFor(callee).Vars))
		}
	}
	assert.True(t, found, "expected a rule transitioning to %s", StartSymbol(callee))
}
