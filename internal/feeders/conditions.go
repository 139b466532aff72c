package feeders

import "llir2itrs/internal/llir"

// TrueFalseMap holds, for each basic block, the set of
// predicate-valued instructions known to be true/false on entry
// (spec.md §4.C). Sets are represented as slices of *llir.Value to
// preserve insertion order (spec.md §5 determinism requirement).
type TrueFalseMap struct {
	True  map[*llir.Block][]*llir.Value
	False map[*llir.Block][]*llir.Value
}

// assumeIntrinsic reports whether inst is a call to the assume
// intrinsic, and if so returns its predicate argument.
func assumeIntrinsic(inst llir.Instruction) (*llir.Value, bool) {
	call, ok := inst.(*llir.Call)
	if !ok || call.Intrinsic != llir.IntrinsicAssume {
		return nil, false
	}
	if len(call.Args) == 0 {
		return nil, false
	}
	return call.Args[0], true
}

// nonBackEdgePredecessors returns b's predecessors excluding any back
// edge (a predecessor p such that p is dominated by b, i.e. the
// p->b edge closes a loop). dom is the function's dominator tree.
func nonBackEdgePredecessors(b *llir.Block, dom llir.Dominators) []*llir.Block {
	var out []*llir.Block
	for _, p := range b.Predecessors {
		if dom.Dominates(b, p) {
			continue // p->b is a back edge
		}
		out = append(out, p)
	}
	return out
}

// BuildTrueFalseMap computes T(b)/F(b) by forward dataflow over the
// acyclic part of the CFG (back edges excluded), meet = intersection;
// when a block has exactly one non-back-edge predecessor p, the
// corresponding branch condition of p is added to T(b) or F(b);
// assume-intrinsic calls in p also contribute to T(b). When
// onlyLoopConditions is set, only blocks in loopBlocks contribute
// branch conditions (spec.md §4.C).
func BuildTrueFalseMap(fn *llir.Function, onlyLoopConditions bool, loopBlocks map[*llir.Block]bool) *TrueFalseMap {
	dom := llir.ComputeDominators(fn)
	order := topoIsh(fn)
	tfMap := &TrueFalseMap{True: map[*llir.Block][]*llir.Value{}, False: map[*llir.Block][]*llir.Value{}}

	for _, b := range order {
		preds := nonBackEdgePredecessors(b, dom)
		if len(preds) == 0 {
			continue
		}
		// Meet = intersection across predecessors' propagated facts.
		tSets := make([][]*llir.Value, 0, len(preds))
		fSets := make([][]*llir.Value, 0, len(preds))
		for _, p := range preds {
			tSets = append(tSets, tfMap.True[p])
			fSets = append(fSets, tfMap.False[p])
		}
		tfMap.True[b] = intersectValueSets(tSets)
		tfMap.False[b] = intersectValueSets(fSets)

		if len(preds) == 1 {
			p := preds[0]
			if !onlyLoopConditions || loopBlocks[p] {
				switch term := p.Terminator.(type) {
				case *llir.Branch:
					if term.True == b {
						tfMap.True[b] = appendUnique(tfMap.True[b], term.Cond)
					}
					if term.False == b {
						tfMap.False[b] = appendUnique(tfMap.False[b], term.Cond)
					}
				}
			}
			for _, inst := range p.Instructions {
				if cond, ok := assumeIntrinsic(inst); ok {
					tfMap.True[b] = appendUnique(tfMap.True[b], cond)
				}
			}
		}
	}
	return tfMap
}

func appendUnique(vs []*llir.Value, v *llir.Value) []*llir.Value {
	for _, x := range vs {
		if x == v {
			return vs
		}
	}
	return append(vs, v)
}

func intersectValueSets(sets [][]*llir.Value) []*llir.Value {
	if len(sets) == 0 {
		return nil
	}
	present := make(map[*llir.Value]int)
	for _, s := range sets {
		seen := map[*llir.Value]bool{}
		for _, v := range s {
			if !seen[v] {
				seen[v] = true
				present[v]++
			}
		}
	}
	var out []*llir.Value
	for _, v := range sets[0] {
		if present[v] == len(sets) {
			out = appendUnique(out, v)
		}
	}
	return out
}

// topoIsh returns fn's blocks in a reverse-postorder-like traversal
// suitable for a single forward dataflow pass; exact topological order
// isn't guaranteed in the presence of loops, but entry always precedes
// its dominated blocks, which is all BuildTrueFalseMap needs since it
// only looks at already-excluded-back-edge predecessors.
func topoIsh(fn *llir.Function) []*llir.Block {
	if len(fn.Blocks) == 0 {
		return nil
	}
	var order []*llir.Block
	visited := map[*llir.Block]bool{}
	var visit func(b *llir.Block)
	visit = func(b *llir.Block) {
		if visited[b] {
			return
		}
		visited[b] = true
		for _, s := range b.Successors {
			visit(s)
		}
		order = append(order, b)
	}
	visit(fn.Blocks[0])
	for i, j := 0, len(order)-1; i < j; i, j = i+1, j-1 {
		order[i], order[j] = order[j], order[i]
	}
	return order
}

// LoopConditionBlocks is, per natural loop, the header (if exiting)
// and the latch (if exiting) (spec.md §4.C).
func LoopConditionBlocks(fn *llir.Function) map[*llir.Block]bool {
	out := map[*llir.Block]bool{}
	for _, loop := range llir.FindNaturalLoops(fn) {
		if loop.IsExiting(loop.Header) {
			out[loop.Header] = true
		}
		if loop.IsExiting(loop.Latch) {
			out[loop.Latch] = true
		}
	}
	return out
}

// ExplicitLoopCondition is one asserted bound `i rel bound` for a
// canonical induction variable (spec.md §4.C).
type ExplicitLoopCondition struct {
	Induction *llir.Value
	Rel       llir.ICmpPredicate
	Bound     *llir.Value
}

// ExplicitLoopConditionMap asserts, for loops with a canonical
// induction variable, a single exiting edge, and an icmp-conditioned
// branch, the bound `i rel bound` for every block inside the loop
// (spec.md §4.C).
func ExplicitLoopConditionMap(fn *llir.Function) map[*llir.Block][]ExplicitLoopCondition {
	out := map[*llir.Block][]ExplicitLoopCondition{}
	for _, loop := range llir.FindNaturalLoops(fn) {
		if len(loop.Exits) != 1 {
			continue
		}
		exitBlock := loop.Exits[0]
		br, ok := exitBlock.Terminator.(*llir.Branch)
		if !ok {
			continue
		}
		icmp, ok := br.Cond.Def.(*llir.ICmp)
		if !ok {
			continue
		}
		phi := canonicalInductionVar(loop, icmp)
		if phi == nil {
			continue
		}
		cond := ExplicitLoopCondition{Induction: phi, Rel: icmp.Pred, Bound: otherOperand(icmp, phi)}
		for _, b := range loop.Body {
			out[b] = append(out[b], cond)
		}
	}
	return out
}

func canonicalInductionVar(loop *llir.NaturalLoop, icmp *llir.ICmp) *llir.Value {
	for _, cand := range []*llir.Value{icmp.LHS, icmp.RHS} {
		if phi, ok := cand.Def.(*llir.Phi); ok && phi.Block() == loop.Header {
			return cand
		}
	}
	return nil
}

func otherOperand(icmp *llir.ICmp, v *llir.Value) *llir.Value {
	if icmp.LHS == v {
		return icmp.RHS
	}
	return icmp.LHS
}
