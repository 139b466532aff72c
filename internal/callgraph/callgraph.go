// Package callgraph implements the call-hierarchy analyser of
// spec.md §4.D: enumerate defined functions, build and transitively
// close a caller-calls-callee adjacency matrix, then condense it into
// SCCs in deterministic reverse topological order.
package callgraph

import "llir2itrs/internal/llir"

// Graph is the per-module call-hierarchy: function indices, an
// adjacency matrix closed under transitivity, and the reverse
// topological ordering of its strongly-connected components.
type Graph struct {
	functions []*llir.Function
	index     map[*llir.Function]int
	direct    [][]bool // direct[i][j] == true: function i directly calls function j
	calls     [][]bool // calls[i][j] == true: function i (transitively) calls function j
	sccs      [][]*llir.Function
}

// Build enumerates every defined function of m, fills the direct-call
// adjacency matrix (over-approximating indirect calls to every defined
// function sharing the callee's pointer type), transitively closes it,
// and computes its SCCs, matching HierarchyBuilder::computeHierarchy.
func Build(m *llir.Module) *Graph {
	functions := m.DefinedFunctions()
	n := len(functions)
	index := make(map[*llir.Function]int, n)
	for i, f := range functions {
		index[f] = i
	}

	calls := make([][]bool, n)
	for i := range calls {
		calls[i] = make([]bool, n)
	}

	for _, f := range functions {
		caller := index[f]
		for _, b := range f.Blocks {
			for _, inst := range b.Instructions {
				call, ok := inst.(*llir.Call)
				if !ok || call.Intrinsic != llir.IntrinsicNone {
					continue
				}
				if call.Callee != nil {
					if callee, ok := index[call.Callee]; ok {
						calls[caller][callee] = true
					}
					continue
				}
				// Indirect call: over-approximate to every defined
				// function whose pointer type matches.
				for _, g := range functions {
					if g.PointerType != nil && call.PointerType != nil && typesEqual(g.PointerType, call.PointerType) {
						calls[caller][index[g]] = true
					}
				}
			}
		}
	}

	direct := make([][]bool, n)
	for i, row := range calls {
		direct[i] = append([]bool(nil), row...)
	}
	makeTransitive(calls)

	g := &Graph{functions: functions, index: index, direct: direct, calls: calls}
	g.sccs = g.computeSCCs()
	return g
}

func typesEqual(a, b llir.Type) bool { return a.String() == b.String() }

// makeTransitive closes calls under transitivity: if x calls y and y
// calls j then x calls j (HierarchyBuilder::makeTransitive).
func makeTransitive(calls [][]bool) {
	n := len(calls)
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			if !calls[x][y] {
				continue
			}
			for j := 0; j < n; j++ {
				if calls[y][j] {
					calls[x][j] = true
				}
			}
		}
	}
}

// TransitivelyCalledFunctions returns every function f (transitively)
// calls, per the closed matrix.
func (g *Graph) TransitivelyCalledFunctions(f *llir.Function) []*llir.Function {
	idx, ok := g.index[f]
	if !ok {
		return nil
	}
	var out []*llir.Function
	for j, callee := range g.functions {
		if g.calls[idx][j] {
			out = append(out, callee)
		}
	}
	return out
}

// IsCyclic reports whether any function (transitively) calls itself.
func (g *Graph) IsCyclic() bool {
	for i := range g.functions {
		if g.calls[i][i] {
			return true
		}
	}
	return false
}

// SCCs returns the list of strongly-connected components in reverse
// topological order (spec.md §4.D output).
func (g *Graph) SCCs() [][]*llir.Function { return g.sccs }

// SCCOf returns the strongly-connected component containing f.
func (g *Graph) SCCOf(f *llir.Function) []*llir.Function {
	for _, scc := range g.sccs {
		for _, x := range scc {
			if x == f {
				return scc
			}
		}
	}
	return nil
}

// tarjanState carries the mutable bookkeeping of one run of Tarjan's
// algorithm over the function-index graph.
type tarjanState struct {
	graph    *Graph
	index    []int // -1 == unvisited
	lowlink  []int
	onStack  []bool
	stack    []int
	counter  int
	sccs     [][]*llir.Function
}

// computeSCCs runs Tarjan's algorithm deterministically by ascending
// function index (HierarchyBuilder::getSccs), producing components in
// the order they're closed off — which is already reverse topological
// since a component closes only once every function it calls has
// already been fully explored.
func (g *Graph) computeSCCs() [][]*llir.Function {
	n := len(g.functions)
	st := &tarjanState{
		graph:   g,
		index:   make([]int, n),
		lowlink: make([]int, n),
		onStack: make([]bool, n),
	}
	for i := range st.index {
		st.index[i] = -1
	}
	for v := 0; v < n; v++ {
		if st.index[v] == -1 {
			st.strongConnect(v)
		}
	}
	return st.sccs
}

func (st *tarjanState) strongConnect(v int) {
	st.index[v] = st.counter
	st.lowlink[v] = st.counter
	st.counter++
	st.stack = append(st.stack, v)
	st.onStack[v] = true

	n := len(st.graph.functions)
	for w := 0; w < n; w++ {
		if !directCall(st.graph, v, w) {
			continue
		}
		if st.index[w] == -1 {
			st.strongConnect(w)
			if st.lowlink[w] < st.lowlink[v] {
				st.lowlink[v] = st.lowlink[w]
			}
		} else if st.onStack[w] {
			if st.index[w] < st.lowlink[v] {
				st.lowlink[v] = st.index[w]
			}
		}
	}

	if st.lowlink[v] != st.index[v] {
		return
	}
	var component []*llir.Function
	for {
		n := len(st.stack)
		w := st.stack[n-1]
		st.stack = st.stack[:n-1]
		st.onStack[w] = false
		component = append(component, st.graph.functions[w])
		if w == v {
			break
		}
	}
	st.sccs = append(st.sccs, component)
}

// directCall reports whether Tarjan should traverse edge v->w. Tarjan
// runs over the *direct*-call graph, not the transitively-closed one —
// the closure in g.calls is for TransitivelyCalledFunctions and
// mayZap-style queries, and reusing it here would collapse every SCC
// reachable from a cycle into one component. We therefore keep the
// direct adjacency matrix around for SCC discovery.
func directCall(g *Graph, v, w int) bool {
	return g.direct[v][w]
}
