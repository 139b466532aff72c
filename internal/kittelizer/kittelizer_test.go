package kittelizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"llir2itrs/internal/algebra"
	"llir2itrs/internal/rule"
)

func simpleTerm(sym string) *rule.Term {
	return rule.NewTerm(sym, []*algebra.Polynomial{algebra.NewVar("x")})
}

type alwaysEliminate struct{}

func (alwaysEliminate) ShouldEliminate(*algebra.Constraint) bool { return true }

func TestKittelizeSplitsOrIntoTwoRules(t *testing.T) {
	guard := algebra.Or(
		algebra.NewAtom(algebra.NewVar("x"), algebra.NewConst(0), algebra.Lt),
		algebra.NewAtom(algebra.NewVar("x"), algebra.NewConst(0), algebra.Ge),
	)
	r := rule.NewRule(simpleTerm("f"), simpleTerm("g"), guard)
	k := New(nil)
	out := k.Kittelize([]*rule.Rule{r})
	require.Len(t, out, 2)
	for _, o := range out {
		assert.NotEqual(t, algebra.COr, o.Guard.Kind)
	}
}

func TestKittelizeEliminatesNeq(t *testing.T) {
	guard := algebra.NewAtom(algebra.NewVar("x"), algebra.NewConst(0), algebra.Ne)
	r := rule.NewRule(simpleTerm("f"), simpleTerm("g"), guard)
	k := New(nil)
	out := k.Kittelize([]*rule.Rule{r})
	require.Len(t, out, 2)
	for _, o := range out {
		assert.NotEqual(t, algebra.Ne, o.Guard.Rel)
	}
}

func TestKittelizeDropsRuleWhenSolverProvesUnsat(t *testing.T) {
	guard := algebra.NewAtom(algebra.NewVar("x"), algebra.NewConst(0), algebra.Lt)
	r := rule.NewRule(simpleTerm("f"), simpleTerm("g"), guard)
	k := New(alwaysEliminate{})
	out := k.Kittelize([]*rule.Rule{r})
	assert.Empty(t, out)
}

func TestKittelizeKeepsTrueGuardUnchanged(t *testing.T) {
	r := rule.NewRule(simpleTerm("f"), simpleTerm("g"), algebra.True)
	k := New(nil)
	out := k.Kittelize([]*rule.Rule{r})
	require.Len(t, out, 1)
	assert.Equal(t, algebra.True, out[0].Guard)
}
