package printer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"llir2itrs/internal/algebra"
	"llir2itrs/internal/rule"
)

func sampleRules() []*rule.Rule {
	lhs := rule.NewTerm("eval_f_start", []*algebra.Polynomial{algebra.NewVar("x"), algebra.NewVar("y")})
	rhs := rule.NewTerm("eval_f_stop", []*algebra.Polynomial{
		algebra.NewVar("x").Add(algebra.One),
		algebra.NewVar("__nondef_0"),
	})
	guard := algebra.NewAtom(algebra.NewVar("x"), algebra.NewConst(10), algebra.Lt)
	return []*rule.Rule{rule.NewRule(lhs, rhs, guard)}
}

func TestKITTeLMatchesRuleString(t *testing.T) {
	rules := sampleRules()
	out := KITTeL(rules)
	assert.Contains(t, out, rules[0].String())
}

func TestCIntHeaderAndRuleShape(t *testing.T) {
	out := CInt(sampleRules(), "eval_f_start", false)
	assert.Contains(t, out, "(GOAL COMPLEXITY)")
	assert.Contains(t, out, "(STARTTERM (FUNCTIONSYMBOLS eval_f_start))")
	assert.Contains(t, out, "(VAR")
	assert.Contains(t, out, "Com_1(")
	assert.Contains(t, out, ":|:")
}

func TestCIntUniformRenamesToCanonicalVector(t *testing.T) {
	out := CInt(sampleRules(), "eval_f_start", true)
	assert.Contains(t, out, "x1")
	assert.Contains(t, out, "x2")
	assert.NotContains(t, out, " y ")
}

func TestT2EmitsBlockLabelsAndAssume(t *testing.T) {
	out := T2(sampleRules(), "eval_f_start")
	assert.True(t, strings.Contains(out, "FROM: 0;"))
	assert.Contains(t, out, "assume(")
	assert.Contains(t, out, "nondet();")
	assert.Contains(t, out, "TO: 1;")
}

func TestT2StagesAssignmentsThroughTemporaries(t *testing.T) {
	// x := x+1 must read the *old* x, so the temporary assignment has
	// to come before any real variable is overwritten.
	out := T2(sampleRules(), "eval_f_start")
	tmpIdx := strings.Index(out, "__t2_x :=")
	realIdx := strings.Index(out, "x := __t2_x;")
	assert.Less(t, tmpIdx, realIdx)
}
