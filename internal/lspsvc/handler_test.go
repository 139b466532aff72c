package lspsvc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"llir2itrs/internal/llir"
)

type noAlias struct{}

func (noAlias) MayAlias(*llir.Value) []string        { return nil }
func (noAlias) MustAlias(*llir.Value) (string, bool) { return "", false }
func (noAlias) PartialAlias(*llir.Value) bool        { return false }

type fakeLoader struct {
	module *llir.Module
	err    error
}

func (f fakeLoader) Load(path, content string) (*llir.Module, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.module, nil
}

func identityFunction() *llir.Function {
	i32 := &llir.IntType{Bits: 32}
	fn := &llir.Function{Name: "identity", Params: []*llir.Param{{Name: "x", Type: i32}}, ReturnType: i32}
	b := &llir.Block{ID: 0, Name: "entry", Function: fn}
	x := &llir.Value{Name: "x", Type: i32}
	b.Terminator = &llir.Return{Val: x}
	fn.Blocks = []*llir.Block{b}
	return fn
}

func TestDumpRulesRendersKITTeLForLoadedModule(t *testing.T) {
	fn := identityFunction()
	module := &llir.Module{Name: "m", Functions: []*llir.Function{fn}}

	h := NewHandler(fakeLoader{module: module}, nil)
	h.mu.Lock()
	h.modules["/tmp/m.ll"] = module
	h.mu.Unlock()

	out, err := h.DumpRules("/tmp/m.ll", "identity", noAlias{})
	require.NoError(t, err)
	assert.Contains(t, out, "eval_identity_start")
	assert.Contains(t, out, "eval_identity_stop")
}

func TestDumpRulesErrorsWhenModuleNotLoaded(t *testing.T) {
	h := NewHandler(fakeLoader{}, nil)
	_, err := h.DumpRules("/tmp/missing.ll", "identity", noAlias{})
	assert.Error(t, err)
}

func TestDumpRulesErrorsWhenFunctionMissing(t *testing.T) {
	module := &llir.Module{Name: "m"}
	h := NewHandler(fakeLoader{module: module}, nil)
	h.mu.Lock()
	h.modules["/tmp/m.ll"] = module
	h.mu.Unlock()

	_, err := h.DumpRules("/tmp/m.ll", "missing", noAlias{})
	assert.Error(t, err)
}
