package callgraph

import (
	"testing"

	"llir2itrs/internal/llir"
)

func directCallInst(callee *llir.Function) *llir.Call {
	return &llir.Call{Callee: callee}
}

func TestBuildTransitiveClosure(t *testing.T) {
	// a calls b, b calls c: a should transitively call c.
	a := &llir.Function{Name: "a"}
	b := &llir.Function{Name: "b"}
	c := &llir.Function{Name: "c"}

	ab := &llir.Block{Name: "entry", Function: a}
	ab.Instructions = []llir.Instruction{directCallInst(b)}
	ab.Terminator = &llir.Return{}
	a.Blocks = []*llir.Block{ab}

	bb := &llir.Block{Name: "entry", Function: b}
	bb.Instructions = []llir.Instruction{directCallInst(c)}
	bb.Terminator = &llir.Return{}
	b.Blocks = []*llir.Block{bb}

	cb := &llir.Block{Name: "entry", Function: c}
	cb.Terminator = &llir.Return{}
	c.Blocks = []*llir.Block{cb}

	m := &llir.Module{Functions: []*llir.Function{a, b, c}}
	g := Build(m)

	called := g.TransitivelyCalledFunctions(a)
	found := false
	for _, f := range called {
		if f == c {
			found = true
		}
	}
	if !found {
		t.Fatalf("a should transitively call c, got %v", called)
	}
	if g.IsCyclic() {
		t.Fatalf("a->b->c is acyclic")
	}
}

func TestSCCsDetectsRecursionCycle(t *testing.T) {
	a := &llir.Function{Name: "a"}
	b := &llir.Function{Name: "b"}

	ab := &llir.Block{Name: "entry", Function: a}
	ab.Instructions = []llir.Instruction{directCallInst(b)}
	ab.Terminator = &llir.Return{}
	a.Blocks = []*llir.Block{ab}

	bb := &llir.Block{Name: "entry", Function: b}
	bb.Instructions = []llir.Instruction{directCallInst(a)}
	bb.Terminator = &llir.Return{}
	b.Blocks = []*llir.Block{bb}

	m := &llir.Module{Functions: []*llir.Function{a, b}}
	g := Build(m)

	if !g.IsCyclic() {
		t.Fatalf("mutual recursion should be cyclic")
	}
	scc := g.SCCOf(a)
	if len(scc) != 2 {
		t.Fatalf("expected a, b in the same SCC, got %v", scc)
	}
}

func TestSCCsReverseTopologicalOrder(t *testing.T) {
	// a calls b (no cycle): b's singleton SCC must close before a's.
	a := &llir.Function{Name: "a"}
	b := &llir.Function{Name: "b"}

	ab := &llir.Block{Name: "entry", Function: a}
	ab.Instructions = []llir.Instruction{directCallInst(b)}
	ab.Terminator = &llir.Return{}
	a.Blocks = []*llir.Block{ab}

	bb := &llir.Block{Name: "entry", Function: b}
	bb.Terminator = &llir.Return{}
	b.Blocks = []*llir.Block{bb}

	m := &llir.Module{Functions: []*llir.Function{a, b}}
	g := Build(m)

	sccs := g.SCCs()
	bPos, aPos := -1, -1
	for i, scc := range sccs {
		for _, f := range scc {
			if f == a {
				aPos = i
			}
			if f == b {
				bPos = i
			}
		}
	}
	if bPos == -1 || aPos == -1 || bPos >= aPos {
		t.Fatalf("expected b's SCC before a's (reverse topological), got sccs=%v", sccs)
	}
}

func TestIndirectCallOverApproximatesByPointerType(t *testing.T) {
	ptrType := &llir.PointerType{Pointee: &llir.IntType{Bits: 32}}
	a := &llir.Function{Name: "a"}
	b := &llir.Function{Name: "b", PointerType: ptrType}
	c := &llir.Function{Name: "c", PointerType: ptrType}

	ab := &llir.Block{Name: "entry", Function: a}
	indirect := &llir.Call{PointerType: ptrType}
	ab.Instructions = []llir.Instruction{indirect}
	ab.Terminator = &llir.Return{}
	a.Blocks = []*llir.Block{ab}

	bb := &llir.Block{Name: "entry", Function: b}
	bb.Terminator = &llir.Return{}
	b.Blocks = []*llir.Block{bb}

	cb := &llir.Block{Name: "entry", Function: c}
	cb.Terminator = &llir.Return{}
	c.Blocks = []*llir.Block{cb}

	m := &llir.Module{Functions: []*llir.Function{a, b, c}}
	g := Build(m)

	called := g.TransitivelyCalledFunctions(a)
	if len(called) != 2 {
		t.Fatalf("indirect call should over-approximate to both pointer-type matches, got %v", called)
	}
}
