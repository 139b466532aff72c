package feeders

import (
	"testing"

	"llir2itrs/internal/llir"
)

// fakeOracle is a trivial AliasOracle for testing BuildMayMustMap.
type fakeOracle struct {
	may     map[*llir.Value][]string
	must    map[*llir.Value]string
	partial map[*llir.Value]bool
}

func (o *fakeOracle) MayAlias(addr *llir.Value) []string { return o.may[addr] }
func (o *fakeOracle) MustAlias(addr *llir.Value) (string, bool) {
	c, ok := o.must[addr]
	return c, ok
}
func (o *fakeOracle) PartialAlias(addr *llir.Value) bool { return o.partial[addr] }

func TestBuildMayMustMapLoadMustAlias(t *testing.T) {
	fn := &llir.Function{Name: "f"}
	b := &llir.Block{Name: "entry", Function: fn}
	addr := &llir.Value{Name: "p", Type: &llir.PointerType{Pointee: &llir.IntType{Bits: 32}}}
	res := &llir.Value{Name: "x", Type: &llir.IntType{Bits: 32}}
	ld := &llir.Load{Res: res, Address: addr}
	b.Instructions = []llir.Instruction{ld}
	fn.Blocks = []*llir.Block{b}

	oracle := &fakeOracle{
		may:  map[*llir.Value][]string{addr: {"g"}},
		must: map[*llir.Value]string{addr: "g"},
	}
	m := BuildMayMustMap(fn, oracle)
	if len(m.Must[ld]) != 1 || m.Must[ld][0] != "g" {
		t.Fatalf("expected must-alias {g}, got %v", m.Must[ld])
	}
}

func TestBuildMayMustMapLoadPartialExcludesMust(t *testing.T) {
	fn := &llir.Function{Name: "f"}
	b := &llir.Block{Name: "entry", Function: fn}
	addr := &llir.Value{Name: "p", Type: &llir.PointerType{Pointee: &llir.IntType{Bits: 32}}}
	res := &llir.Value{Name: "x", Type: &llir.IntType{Bits: 32}}
	ld := &llir.Load{Res: res, Address: addr}
	b.Instructions = []llir.Instruction{ld}
	fn.Blocks = []*llir.Block{b}

	oracle := &fakeOracle{
		may:     map[*llir.Value][]string{addr: {"g"}},
		must:    map[*llir.Value]string{addr: "g"},
		partial: map[*llir.Value]bool{addr: true},
	}
	m := BuildMayMustMap(fn, oracle)
	if len(m.Must[ld]) != 0 {
		t.Fatalf("partial alias on a load must not contribute to must, got %v", m.Must[ld])
	}
}

func TestBuildMayMustMapStorePartialAddsMayToMust(t *testing.T) {
	fn := &llir.Function{Name: "f"}
	b := &llir.Block{Name: "entry", Function: fn}
	addr := &llir.Value{Name: "p", Type: &llir.PointerType{Pointee: &llir.IntType{Bits: 32}}}
	val := &llir.Value{Name: "v", Type: &llir.IntType{Bits: 32}}
	st := &llir.Store{Address: addr, Val: val}
	b.Instructions = []llir.Instruction{st}
	fn.Blocks = []*llir.Block{b}

	oracle := &fakeOracle{
		may:     map[*llir.Value][]string{addr: {"g", "h"}},
		partial: map[*llir.Value]bool{addr: true},
	}
	m := BuildMayMustMap(fn, oracle)
	if len(m.Must[st]) != 2 {
		t.Fatalf("partial alias on a store should add may-set to must, got %v", m.Must[st])
	}
}

func TestMayZapUnionsStores(t *testing.T) {
	fn := &llir.Function{Name: "f"}
	b := &llir.Block{Name: "entry", Function: fn}
	addr1 := &llir.Value{Name: "p1"}
	addr2 := &llir.Value{Name: "p2"}
	val := &llir.Value{Name: "v"}
	st1 := &llir.Store{Address: addr1, Val: val}
	st2 := &llir.Store{Address: addr2, Val: val}
	b.Instructions = []llir.Instruction{st1, st2}
	fn.Blocks = []*llir.Block{b}

	oracle := &fakeOracle{
		may: map[*llir.Value][]string{addr1: {"g"}, addr2: {"h"}},
	}
	m := BuildMayMustMap(fn, oracle)
	zap := m.MayZap(fn)
	if len(zap) != 2 {
		t.Fatalf("expected mayZap to union both stores' cells, got %v", zap)
	}
}

// buildDiamond builds entry -> {left, right} -> join, with a branch on
// cond at entry, for TrueFalseMap tests.
func buildDiamond() (fn *llir.Function, entry, left, right, join *llir.Block, cond *llir.Value) {
	fn = &llir.Function{Name: "f"}
	entry = &llir.Block{Name: "entry", Function: fn}
	left = &llir.Block{Name: "left", Function: fn}
	right = &llir.Block{Name: "right", Function: fn}
	join = &llir.Block{Name: "join", Function: fn}

	cond = &llir.Value{Name: "c", Type: &llir.BoolType{}}
	br := &llir.Branch{Cond: cond, True: left, False: right}
	entry.Terminator = br
	entry.Successors = []*llir.Block{left, right}

	jmpL := &llir.Jump{Target: join}
	left.Terminator = jmpL
	left.Successors = []*llir.Block{join}
	left.Predecessors = []*llir.Block{entry}

	jmpR := &llir.Jump{Target: join}
	right.Terminator = jmpR
	right.Successors = []*llir.Block{join}
	right.Predecessors = []*llir.Block{entry}

	join.Predecessors = []*llir.Block{left, right}
	join.Terminator = &llir.Return{}

	fn.Blocks = []*llir.Block{entry, left, right, join}
	return
}

func TestTrueFalseMapSinglePredecessor(t *testing.T) {
	fn, _, left, right, _, cond := buildDiamond()
	tf := BuildTrueFalseMap(fn, false, nil)
	if len(tf.True[left]) != 1 || tf.True[left][0] != cond {
		t.Fatalf("left branch should know cond true, got %v", tf.True[left])
	}
	if len(tf.False[right]) != 1 || tf.False[right][0] != cond {
		t.Fatalf("right branch should know cond false, got %v", tf.False[right])
	}
}

func TestTrueFalseMapJoinIntersectsToEmpty(t *testing.T) {
	_, entry, _, _, join, _ := buildDiamond()
	tf := BuildTrueFalseMap(entry.Function, false, nil)
	if len(tf.True[join]) != 0 || len(tf.False[join]) != 0 {
		t.Fatalf("join of two divergent branches should know nothing, got true=%v false=%v",
			tf.True[join], tf.False[join])
	}
}

func TestLoopConditionBlocksMarksExitingHeader(t *testing.T) {
	fn := &llir.Function{Name: "f"}
	header := &llir.Block{Name: "header", Function: fn}
	body := &llir.Block{Name: "body", Function: fn}
	exit := &llir.Block{Name: "exit", Function: fn}

	cond := &llir.Value{Name: "c", Type: &llir.BoolType{}}
	header.Terminator = &llir.Branch{Cond: cond, True: body, False: exit}
	header.Successors = []*llir.Block{body, exit}

	body.Terminator = &llir.Jump{Target: header}
	body.Successors = []*llir.Block{header}
	body.Predecessors = []*llir.Block{header}

	header.Predecessors = []*llir.Block{body}
	exit.Predecessors = []*llir.Block{header}
	exit.Terminator = &llir.Return{}

	fn.Blocks = []*llir.Block{header, body, exit}

	blocks := LoopConditionBlocks(fn)
	if !blocks[header] {
		t.Fatalf("exiting header should be in loop condition blocks")
	}
}
