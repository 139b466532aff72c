package llir

// Dominance and natural-loop facts. spec.md §6 lists "dominator/loop
// information as consumed by C" among the abstract capabilities the
// core's input model exposes; this file provides the standard
// iterative dataflow algorithms that back those capabilities so the
// alias/condition feeders (component C) have something concrete to
// query.

// Dominators maps every reachable block to its immediate dominator
// (nil for the entry block).
type Dominators map[*Block]*Block

// ComputeDominators runs the classic iterative dominator algorithm
// (Cooper/Harvey/Kennedy) over f's reachable blocks in reverse
// postorder.
func ComputeDominators(f *Function) Dominators {
	if len(f.Blocks) == 0 {
		return Dominators{}
	}
	entry := f.Blocks[0]
	order := reversePostorder(entry)
	index := make(map[*Block]int, len(order))
	for i, b := range order {
		index[b] = i
	}

	idom := make(Dominators, len(order))
	idom[entry] = entry
	changed := true
	for changed {
		changed = false
		for _, b := range order[1:] {
			var newIdom *Block
			for _, p := range b.Predecessors {
				if idom[p] == nil {
					continue
				}
				if newIdom == nil {
					newIdom = p
					continue
				}
				newIdom = intersect(newIdom, p, idom, index)
			}
			if newIdom != nil && idom[b] != newIdom {
				idom[b] = newIdom
				changed = true
			}
		}
	}
	idom[entry] = nil
	return idom
}

func intersect(a, b *Block, idom Dominators, index map[*Block]int) *Block {
	for a != b {
		for index[a] > index[b] {
			a = idom[a]
		}
		for index[b] > index[a] {
			b = idom[b]
		}
	}
	return a
}

func reversePostorder(entry *Block) []*Block {
	var order []*Block
	visited := make(map[*Block]bool)
	var visit func(b *Block)
	visit = func(b *Block) {
		if visited[b] {
			return
		}
		visited[b] = true
		for _, s := range b.Successors {
			visit(s)
		}
		order = append(order, b)
	}
	visit(entry)
	// reverse postorder
	for i, j := 0, len(order)-1; i < j; i, j = i+1, j-1 {
		order[i], order[j] = order[j], order[i]
	}
	return order
}

// Dominates reports whether a dominates b (reflexively).
func (d Dominators) Dominates(a, b *Block) bool {
	if a == b {
		return true
	}
	for cur := d[b]; cur != nil; cur = d[cur] {
		if cur == a {
			return true
		}
	}
	return false
}

// NaturalLoop is a loop discovered from a back edge latch->header.
type NaturalLoop struct {
	Header *Block
	Latch  *Block
	Body   []*Block
	// Exits are blocks inside the loop with a successor outside it.
	Exits []*Block
}

// FindNaturalLoops discovers one natural loop per back edge (an edge
// whose target dominates its source), matching how LoopConditionBlocks
// (component C) identifies loop headers/latches.
func FindNaturalLoops(f *Function) []*NaturalLoop {
	dom := ComputeDominators(f)
	bodySet := make(map[*Block]bool)
	var loops []*NaturalLoop
	for _, b := range f.Blocks {
		for _, s := range b.Successors {
			if !dom.Dominates(s, b) {
				continue
			}
			// back edge b -> s, s is the header
			for k := range bodySet {
				delete(bodySet, k)
			}
			body := []*Block{s}
			bodySet[s] = true
			worklist := []*Block{b}
			for len(worklist) > 0 {
				n := worklist[len(worklist)-1]
				worklist = worklist[:len(worklist)-1]
				if bodySet[n] {
					continue
				}
				bodySet[n] = true
				body = append(body, n)
				worklist = append(worklist, n.Predecessors...)
			}
			var exits []*Block
			for _, n := range body {
				for _, succ := range n.Successors {
					if !bodySet[succ] {
						exits = append(exits, n)
						break
					}
				}
			}
			loops = append(loops, &NaturalLoop{Header: s, Latch: b, Body: body, Exits: exits})
		}
	}
	return loops
}

// Contains reports whether b is part of the loop body.
func (l *NaturalLoop) Contains(b *Block) bool {
	for _, x := range l.Body {
		if x == b {
			return true
		}
	}
	return false
}

// IsExiting reports whether b has a successor outside the loop.
func (l *NaturalLoop) IsExiting(b *Block) bool {
	for _, x := range l.Exits {
		if x == b {
			return true
		}
	}
	return false
}
