package smt

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"llir2itrs/internal/algebra"
	"llir2itrs/internal/errors"
)

// fakeSolverScript writes a tiny shell script that always prints a
// fixed verdict, standing in for a real SMT-solver binary.
func fakeSolverScript(t *testing.T, verdict string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake solver script is a POSIX shell script")
	}
	dir := t.TempDir()
	path := filepath.Join(dir, "fake-solver.sh")
	contents := "#!/bin/sh\necho '" + verdict + "'\n"
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o755))
	return path
}

func TestBridgeEliminatesOnUnsatToken(t *testing.T) {
	solver := fakeSolverScript(t, "unsat")
	b := NewBridge(solver, func(c *algebra.Constraint) string { return c.String() }, "unsat", nil)
	c := algebra.NewAtom(algebra.NewVar("x"), algebra.NewConst(0), algebra.Lt)
	assert.True(t, b.ShouldEliminate(c))
}

func TestBridgeKeepsDisjunctOnSat(t *testing.T) {
	solver := fakeSolverScript(t, "sat")
	b := NewBridge(solver, func(c *algebra.Constraint) string { return c.String() }, "unsat", nil)
	c := algebra.NewAtom(algebra.NewVar("x"), algebra.NewConst(0), algebra.Lt)
	assert.False(t, b.ShouldEliminate(c))
}

func TestBridgeReportsSpawnFailure(t *testing.T) {
	var reported bool
	b := NewBridge(filepath.Join(t.TempDir(), "does-not-exist"),
		func(c *algebra.Constraint) string { return c.String() }, "unsat",
		func(*errors.CompilerError) { reported = true })
	c := algebra.NewAtom(algebra.NewVar("x"), algebra.NewConst(0), algebra.Lt)
	assert.False(t, b.ShouldEliminate(c))
	assert.True(t, reported)
}
