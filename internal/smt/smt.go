// Package smt implements the external SMT-solver bridge spec.md §5/§9
// describes: a synchronous spawn/wait of a child process, fed through a
// temporary input file, whose exit code and stdout are read once before
// that file is unlinked. A failed child is reported as an
// SMTSubprocessFailure (spec.md §7 kind 5) through the bridge's
// failure callback.
package smt

import (
	"bytes"
	"os"
	"os/exec"
	"strings"

	"llir2itrs/internal/algebra"
	"llir2itrs/internal/errors"
)

// Printer renders a Constraint into the query text a concrete solver
// binary accepts (e.g. SMT-LIB2). The core ships no real encoder of
// its own — that belongs to the printers/solver-specific bridges an
// embedder supplies — so Bridge takes one as a capability, matching
// spec.md §9's "model as a capability" guidance applied to the
// solver-input side of the same seam.
type Printer func(c *algebra.Constraint) string

// Bridge is a subprocess-backed algebra.Eliminator: ShouldEliminate
// spawns solverPath once per query, feeding it a temp file holding the
// rendered constraint and reading its stdout for the sat/unsat verdict.
type Bridge struct {
	SolverPath string
	Render     Printer
	// UnsatToken is the exact string the solver's stdout contains when
	// it reports the query unsatisfiable (e.g. "unsat"). A disjunct is
	// eliminated only on an exact substring match of this token,
	// mirroring the original's plain string compare against the
	// child's output.
	UnsatToken string

	onFailure func(*errors.CompilerError)
}

// NewBridge builds a Bridge. onFailure, if non-nil, is invoked with an
// SMTSubprocessFailure CompilerError whenever the input temp file
// cannot be written, the child fails to spawn, or it exits non-zero
// (spec.md §7 kind 5); the call still returns false (conservatively "don't eliminate") so the
// pipeline degrades to "keep every disjunct" rather than silently
// dropping one that was never actually proven unsatisfiable.
func NewBridge(solverPath string, render Printer, unsatToken string, onFailure func(*errors.CompilerError)) *Bridge {
	return &Bridge{SolverPath: solverPath, Render: render, UnsatToken: unsatToken, onFailure: onFailure}
}

// ShouldEliminate implements algebra.Eliminator.
func (b *Bridge) ShouldEliminate(c *algebra.Constraint) bool {
	query := b.Render(c)

	in, err := os.CreateTemp("", "llir2itrs-smt-in-*")
	if err != nil {
		b.fail("failed to create SMT input temp file", err)
		return false
	}
	inPath := in.Name()
	defer os.Remove(inPath)

	if _, err := in.WriteString(query); err != nil {
		in.Close()
		b.fail("failed to write SMT input", err)
		return false
	}
	if err := in.Close(); err != nil {
		b.fail("failed to close SMT input", err)
		return false
	}

	cmd := exec.Command(b.SolverPath, inPath)
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if _, isExitErr := err.(*exec.ExitError); isExitErr {
			b.fail("SMT solver subprocess exited with non-zero status", err)
			return false
		}
		b.fail("failed to spawn SMT solver subprocess", err)
		return false
	}

	return strings.Contains(stdout.String(), b.UnsatToken)
}

func (b *Bridge) fail(message string, cause error) {
	if b.onFailure == nil {
		return
	}
	b.onFailure(errors.New(errors.SMTSubprocessFailure, message).
		WithNote(cause.Error()).Build())
}
