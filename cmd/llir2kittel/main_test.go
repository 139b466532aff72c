package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"llir2itrs/internal/config"
)

const identityFixture = `{
  "name": "m",
  "functions": [
    {
      "name": "f",
      "params": [{"name": "x", "type": "i32"}],
      "return_type": "i32",
      "blocks": [
        {"name": "entry", "terminator": {"kind": "return", "value": "x"}}
      ]
    }
  ]
}`

func writeFixture(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "m.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRunProducesKITTeLOutput(t *testing.T) {
	path := writeFixture(t, identityFixture)
	var o cliOptions
	o.cfg = *config.Default()
	o.cfg.StartFunctionName = "f"
	o.noColor = true

	var buf bytes.Buffer
	require.NoError(t, run(&buf, path, &o))
	assert.Contains(t, buf.String(), "eval_f_start")
	assert.Contains(t, buf.String(), "eval_f_stop")
}

func TestRunHonorsComplexityTuplesFormat(t *testing.T) {
	path := writeFixture(t, identityFixture)
	var o cliOptions
	o.cfg = *config.Default()
	o.cfg.StartFunctionName = "f"
	o.cfg.ComplexityTuples = true
	o.noColor = true

	var buf bytes.Buffer
	require.NoError(t, run(&buf, path, &o))
	assert.Contains(t, buf.String(), "(GOAL COMPLEXITY)")
}

func TestNewRootCommandRegistersConfigFlags(t *testing.T) {
	cmd := newRootCommand()
	for _, name := range []string{
		"start-function-name", "bounded-integers", "unsigned-encoding",
		"complexity-tuples", "uniform-complexity-tuples", "smt-solver",
	} {
		assert.NotNil(t, cmd.Flags().Lookup(name), "missing flag %s", name)
	}
}

func TestParseSolverName(t *testing.T) {
	assert.Equal(t, config.SolverZ3, parseSolverName("z3"))
	assert.Equal(t, config.SolverNone, parseSolverName("bogus"))
}

func TestNewRootCommandRegistersLSPSubcommand(t *testing.T) {
	cmd := newRootCommand()
	sub, _, err := cmd.Find([]string{"lsp"})
	require.NoError(t, err)
	assert.Equal(t, "lsp", sub.Name())
}

func TestRunAppliesPreprocessingPipelineWithoutError(t *testing.T) {
	path := writeFixture(t, identityFixture)
	var o cliOptions
	o.cfg = *config.Default()
	o.cfg.StartFunctionName = "f"
	o.cfg.EagerInline = true
	o.cfg.IncreaseStrength = true
	o.cfg.DumpTransformedIR = true
	o.verbose = true
	o.noColor = true

	var buf bytes.Buffer
	require.NoError(t, run(&buf, path, &o))
	assert.Contains(t, buf.String(), "eval_f_start")
}
