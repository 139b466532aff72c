package errors

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReporterFormatIncludesKindAndMessage(t *testing.T) {
	r := &Reporter{NoColor: true}
	err := New(UnsupportedInstruction, "fptrunc is not lowerable").
		At(Location{Function: "f", Block: "bb0", Instruction: 3}).
		WithNote("seen while checking f").
		WithHelp("remove the instruction before lowering").
		Build()

	out := r.Format(err)
	assert.Contains(t, out, "unsupported instruction")
	assert.Contains(t, out, "fptrunc is not lowerable")
	assert.Contains(t, out, "f:bb0:#3")
	assert.Contains(t, out, "note: seen while checking f")
	assert.Contains(t, out, "help: remove the instruction before lowering")
}

func TestReporterFormatAllConcatenatesEveryError(t *testing.T) {
	r := &Reporter{NoColor: true}
	errs := []*CompilerError{
		New(UnsupportedInstruction, "a").Build(),
		New(UnsupportedInstruction, "b").Build(),
	}
	out := r.FormatAll(errs)
	assert.Contains(t, out, "a")
	assert.Contains(t, out, "b")
}

func TestExitCodesMatchSpec(t *testing.T) {
	assert.Equal(t, 1, ConfigConflict.ExitCode())
	assert.Equal(t, 6, UnsupportedInstruction.ExitCode())
	assert.Equal(t, 7, CyclicCallGraph.ExitCode())
	assert.NotEqual(t, MissingAnalysisFact.ExitCode(), UnexpectedAlgebraicShape.ExitCode())
}
