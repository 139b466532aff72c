package slicer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"llir2itrs/internal/algebra"
	"llir2itrs/internal/rule"
)

func term(sym string, vars ...string) *rule.Term {
	args := make([]*algebra.Polynomial, len(vars))
	for i, v := range vars {
		args[i] = algebra.NewVar(v)
	}
	return rule.NewTerm(sym, args)
}

func TestUsageSlicingDropsDeadArgument(t *testing.T) {
	// f(x, dead) -> f(x+1, dead) [x < 10]; the second argument is never
	// read by any guard and only ever passed through identically.
	lhs := term("f", "x", "dead")
	rhs := rule.NewTerm("f", []*algebra.Polynomial{algebra.NewVar("x").Add(algebra.One), algebra.NewVar("dead")})
	guard := algebra.NewAtom(algebra.NewVar("x"), algebra.NewConst(10), algebra.Lt)
	rules := []*rule.Rule{rule.NewRule(lhs, rhs, guard)}

	sliced := UsageSlicing(rules)
	require.Len(t, sliced, 1)
	assert.Len(t, sliced[0].Lhs.Args, 1)
	assert.Len(t, sliced[0].Rhs.Args, 1)
}

func TestUsageSlicingKeepsArgumentReadByGuard(t *testing.T) {
	lhs := term("f", "x", "y")
	rhs := rule.NewTerm("f", []*algebra.Polynomial{algebra.NewVar("x"), algebra.NewVar("y")})
	guard := algebra.NewAtom(algebra.NewVar("y"), algebra.NewConst(0), algebra.Gt)
	rules := []*rule.Rule{rule.NewRule(lhs, rhs, guard)}

	// y is read by the guard and kept; x only flows into its own
	// unread position, so it is dropped.
	sliced := UsageSlicing(rules)
	require.Len(t, sliced, 1)
	require.Len(t, sliced[0].Lhs.Args, 1)
	assert.True(t, sliced[0].Lhs.Args[0].Equals(algebra.NewVar("y")))
}

func TestConstraintSlicingFoldsTrivialAtom(t *testing.T) {
	guard := algebra.NewAtom(algebra.NewVar("x"), algebra.NewVar("x"), algebra.Eq)
	r := rule.NewRule(term("f", "x"), term("f", "x"), guard)
	out := ConstraintSlicing([]*rule.Rule{r})
	assert.Equal(t, algebra.True, out[0].Guard)
}

func TestDefinedSlicingDropsFalseGuardedRules(t *testing.T) {
	r := rule.NewRule(term("f", "x"), term("g", "x"), algebra.False)
	out := DefinedSlicing([]*rule.Rule{r})
	assert.Empty(t, out)
}

func TestStillUsedSlicingConservativeKeepsPhiVar(t *testing.T) {
	lhs := term("f", "phi_r")
	rhs := rule.NewTerm("f", []*algebra.Polynomial{algebra.NewVar("phi_r")})
	r := rule.NewRule(lhs, rhs, algebra.True)

	s := New(true)
	out := s.StillUsedSlicing([]*rule.Rule{r}, map[string]bool{"phi_r": true})
	require.Len(t, out, 1)
	assert.Len(t, out[0].Lhs.Args, 1)

	s2 := New(false)
	out2 := s2.StillUsedSlicing([]*rule.Rule{r}, map[string]bool{"phi_r": true})
	assert.Len(t, out2[0].Lhs.Args, 0)
}

func TestSliceDuplicatesRemovesStructuralCopies(t *testing.T) {
	r1 := rule.NewRule(term("f", "x"), term("g", "x"), algebra.True)
	r2 := rule.NewRule(term("f", "x"), term("g", "x"), algebra.True)
	out := SliceDuplicates([]*rule.Rule{r1, r2})
	assert.Len(t, out, 1)
}

func TestSliceTrivialNondefConstraintsErasesNondef(t *testing.T) {
	guard := algebra.And(algebra.NewAtom(algebra.NewVar("x"), algebra.NewConst(0), algebra.Ge), algebra.Nondef)
	r := rule.NewRule(term("f", "x"), term("f", "x"), guard)
	out := SliceTrivialNondefConstraints([]*rule.Rule{r})
	assert.NotEqual(t, algebra.CNondef, out[0].Guard.Kind)
}
