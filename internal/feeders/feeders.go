// Package feeders implements the alias and condition producers of
// spec.md §4.C: pure, read-only analyses over one function that the
// Converter (component E) consults while emitting rules. Per-function
// analysis state is created when visiting a function and discarded
// once its rules are emitted (spec.md §3 Lifecycles) — callers build a
// fresh set of feeders per function, never share one across functions.
package feeders

import "llir2itrs/internal/llir"

// AliasOracle is the external, out-of-scope alias-analysis collaborator
// (spec.md §1, §6): given a pointer-typed value, it reports the set of
// global cells that value may/must point to. The core never implements
// alias analysis itself; it only consumes this capability.
type AliasOracle interface {
	// MayAlias returns every global cell addr might refer to.
	MayAlias(addr *llir.Value) []string
	// MustAlias returns the single global cell addr definitely refers
	// to, or ("", false) if that can't be determined precisely.
	MustAlias(addr *llir.Value) (string, bool)
	// PartialAlias reports whether addr only partially overlaps a
	// global cell (contributes to may, never to must for loads; to
	// both may and must for stores, per spec.md §4.C).
	PartialAlias(addr *llir.Value) bool
}

// MayMustMap is the per-instruction (may-set, must-set) table of
// spec.md §4.C.
type MayMustMap struct {
	May  map[llir.Instruction][]string
	Must map[llir.Instruction][]string
}

// BuildMayMustMap walks every memory-accessing instruction of fn and
// classifies it against oracle, matching spec.md §4.C precisely: for
// loads, "partial alias" contributes only to may; for stores both
// must and partial contribute to must, and may is accumulated
// separately.
func BuildMayMustMap(fn *llir.Function, oracle AliasOracle) *MayMustMap {
	m := &MayMustMap{May: map[llir.Instruction][]string{}, Must: map[llir.Instruction][]string{}}
	for _, b := range fn.Blocks {
		for _, inst := range b.Instructions {
			switch mi := inst.(type) {
			case *llir.Load:
				ld := mi
				// partial alias contributes only to may for loads
				may := append([]string{}, oracle.MayAlias(ld.Address)...)
				m.May[inst] = may
				if cell, ok := oracle.MustAlias(ld.Address); ok && !oracle.PartialAlias(ld.Address) {
					m.Must[inst] = []string{cell}
				}
			case *llir.Store:
				st := mi
				may := append([]string{}, oracle.MayAlias(st.Address)...)
				m.May[inst] = may
				var must []string
				if cell, ok := oracle.MustAlias(st.Address); ok {
					must = append(must, cell)
				}
				if oracle.PartialAlias(st.Address) {
					must = append(must, may...)
				}
				m.Must[inst] = must
			}
		}
	}
	return m
}

// MayZap returns the union of may(i)∪must(i) over every store
// instruction in fn — the set of global cells any call to fn might
// clobber (spec.md §4.C "mayZap(f)").
func (m *MayMustMap) MayZap(fn *llir.Function) []string {
	seen := map[string]bool{}
	var out []string
	add := func(cells []string) {
		for _, c := range cells {
			if !seen[c] {
				seen[c] = true
				out = append(out, c)
			}
		}
	}
	for _, b := range fn.Blocks {
		for _, inst := range b.Instructions {
			if _, ok := inst.(*llir.Store); !ok {
				continue
			}
			add(m.May[inst])
			add(m.Must[inst])
		}
	}
	return out
}
