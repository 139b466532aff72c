package converter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"llir2itrs/internal/callgraph"
	"llir2itrs/internal/config"
	"llir2itrs/internal/llir"
)

func TestControlPointsStartStopAlwaysIncluded(t *testing.T) {
	f := newFunc("f")
	b := addBlock(f, "entry")
	b.Terminator = &llir.Return{Val: &llir.Value{Name: "x", Type: i32()}}

	cps := ControlPoints([]*llir.Function{f}, config.Default())
	assert.True(t, cps[StartSymbol(f)])
	assert.True(t, cps[StopSymbol(f)])
	// entry has zero predecessors; with MultiPredControl enabled (the
	// default) only multi-predecessor blocks are control points, so
	// entry's in-symbol is NOT one.
	assert.True(t, cps[blockInSymbol(b)] == (len(b.Predecessors) > 1))
}

func TestControlPointsMultiPredControlDisabledMarksEveryBlock(t *testing.T) {
	f := newFunc("f")
	b := addBlock(f, "entry")
	b.Terminator = &llir.Return{Val: &llir.Value{Name: "x", Type: i32()}}

	cfg := config.Default()
	cfg.MultiPredControl = false
	cps := ControlPoints([]*llir.Function{f}, cfg)
	assert.True(t, cps[blockInSymbol(b)])
}

// TestGetCondensedRulesLinearChain builds a two-block straight-line
// function (entry -> exit; neither block has more than one
// predecessor, so under the default config only start/stop are
// control points) and checks condensation yields one rule from
// eval_f_start to eval_f_stop.
func TestGetCondensedRulesLinearChain(t *testing.T) {
	f := newFunc("f")
	f.Params = []*llir.Param{{Name: "x", Type: i32()}}
	f.ReturnType = i32()
	entry := addBlock(f, "entry")
	exit := addBlock(f, "exit")

	res := &llir.Value{Name: "y", Type: i32()}
	addInst := &llir.BinOp{Op: llir.OpAdd, Res: res, LHS: &llir.Value{Name: "x", Type: i32()}, RHS: llir.NewConstValue("1", i32(), bigOne())}
	entry.Instructions = []llir.Instruction{addInst}
	entry.Terminator = &llir.Jump{Target: exit}
	link(entry, exit)
	exit.Terminator = &llir.Return{Val: res}

	m := &llir.Module{Name: "m", Functions: []*llir.Function{f}}
	cg := callgraph.Build(m)
	c := New(m, config.Default(), cg, noAlias{})

	rules, errs := c.ConvertFunction(f, map[*llir.Function]bool{f: true})
	require.Empty(t, errs)

	cps := ControlPoints([]*llir.Function{f}, config.Default())
	condensed, cerrs := GetCondensedRules(rules, cps)
	require.Empty(t, cerrs)
	require.NotEmpty(t, condensed)
	for _, r := range condensed {
		assert.True(t, cps[r.Lhs.Symbol], "condensed lhs %s must be a control point", r.Lhs.Symbol)
		assert.True(t, cps[r.Rhs.Symbol], "condensed rhs %s must be a control point", r.Rhs.Symbol)
	}

	// every path from start reaches stop directly once condensed.
	found := false
	for _, r := range condensed {
		if r.Lhs.Symbol == StartSymbol(f) && r.Rhs.Symbol == StopSymbol(f) {
			found = true
		}
	}
	assert.True(t, found, "expected a condensed eval_f_start -> eval_f_stop rule")
}

// TestGetCondensedRulesIdempotent checks the fixed-point property
// spec.md §8 names: condensing an already-condensed rule list (every
// lhs and rhs is already a control point) returns the same rules.
func TestGetCondensedRulesIdempotent(t *testing.T) {
	f := newFunc("f")
	f.Params = []*llir.Param{{Name: "x", Type: i32()}}
	f.ReturnType = i32()
	entry := addBlock(f, "entry")
	entry.Terminator = &llir.Return{Val: &llir.Value{Name: "x", Type: i32()}}

	m := &llir.Module{Name: "m", Functions: []*llir.Function{f}}
	cg := callgraph.Build(m)
	c := New(m, config.Default(), cg, noAlias{})

	rules, errs := c.ConvertFunction(f, map[*llir.Function]bool{f: true})
	require.Empty(t, errs)

	cps := ControlPoints([]*llir.Function{f}, config.Default())
	once, errs1 := GetCondensedRules(rules, cps)
	require.Empty(t, errs1)
	twice, errs2 := GetCondensedRules(once, cps)
	require.Empty(t, errs2)

	require.Len(t, twice, len(once))
	for i := range once {
		assert.Equal(t, once[i].Lhs.Symbol, twice[i].Lhs.Symbol)
		assert.Equal(t, once[i].Rhs.Symbol, twice[i].Rhs.Symbol)
	}
}
