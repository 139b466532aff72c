// Package converter implements the two-phase per-function Converter of
// spec.md §4.E, the central component of the lowering pipeline: it
// emits rules for one function in the context of its strongly-connected
// component, using the symbolic algebra (internal/algebra), the rule
// model (internal/rule), and the alias/condition feeders
// (internal/feeders) as its only inputs. Grounded on the teacher's
// internal/ir/builder.go two-pass structure (a pre-pass that collects
// bookkeeping, then per-function lowering) and
// original_source/include/llvm2kittel/Converter.h for the exact
// per-opcode table.
package converter

import (
	"fmt"

	"llir2itrs/internal/algebra"
	"llir2itrs/internal/callgraph"
	"llir2itrs/internal/config"
	"llir2itrs/internal/errors"
	"llir2itrs/internal/feeders"
	"llir2itrs/internal/llir"
	"llir2itrs/internal/rule"
)

// Converter lowers functions of Module to ITRS rules. One Converter is
// built per driver run and reused across every function of every SCC;
// per-function FuncVars and MayMustMap are built lazily and cached,
// matching spec.md §3's "created when visiting a function and discarded
// once its rules are emitted" lifecycle (the cache here just avoids
// recomputing them twice for the same function across two call
// sites); the TrueFalseMap is rebuilt on every ConvertFunction call.
type Converter struct {
	Module    *llir.Module
	Config    *config.Options
	CallGraph *callgraph.Graph
	Alias     feeders.AliasOracle
	Nondef    *rule.NondefFactory

	varsCache    map[*llir.Function]*FuncVars
	mayMustCache map[*llir.Function]*feeders.MayMustMap
}

// New builds a Converter ready to lower fn := Module's functions.
func New(m *llir.Module, cfg *config.Options, cg *callgraph.Graph, alias feeders.AliasOracle) *Converter {
	return &Converter{
		Module:       m,
		Config:       cfg,
		CallGraph:    cg,
		Alias:        alias,
		Nondef:       rule.NewNondefFactory(),
		varsCache:    map[*llir.Function]*FuncVars{},
		mayMustCache: map[*llir.Function]*feeders.MayMustMap{},
	}
}

// FuncVars is the phase-1 output for one function: the ordered
// variable vector V (spec.md §4.E "Interface with global state") and
// an index back from name to position.
type FuncVars struct {
	Function *llir.Function
	Vars     []string
	Types    map[string]llir.Type
	index    map[string]int
}

func (fv *FuncVars) IndexOf(name string) (int, bool) { i, ok := fv.index[name]; return i, ok }

// collectVars runs phase 1 (spec.md §4.E, §9 "two-phase pass"): the
// same traversal as phase 2, differing only in that it builds the
// variable list instead of emitting rules.
func collectVars(f *llir.Function, m *llir.Module) *FuncVars {
	fv := &FuncVars{Function: f, Types: map[string]llir.Type{}, index: map[string]int{}}
	add := func(name string, t llir.Type) {
		if _, seen := fv.index[name]; seen {
			return
		}
		fv.index[name] = len(fv.Vars)
		fv.Vars = append(fv.Vars, name)
		fv.Types[name] = t
	}
	for _, p := range f.Params {
		if llir.IsInteger(p.Type) {
			add(p.Name, p.Type)
		}
	}
	for _, g := range m.Globals {
		if llir.IsInteger(g.Type) {
			add(g.Name, g.Type)
		}
	}
	for _, b := range f.Blocks {
		for _, inst := range b.Instructions {
			if r := inst.Result(); r != nil && llir.IsInteger(r.Type) {
				add(r.Name, r.Type)
			}
		}
	}
	return fv
}

// VarsFor returns (and caches) the phase-1 variable vector for f.
func (c *Converter) VarsFor(f *llir.Function) *FuncVars {
	if fv, ok := c.varsCache[f]; ok {
		return fv
	}
	fv := collectVars(f, c.Module)
	c.varsCache[f] = fv
	return fv
}

func (c *Converter) mayMustFor(f *llir.Function) *feeders.MayMustMap {
	if mm, ok := c.mayMustCache[f]; ok {
		return mm
	}
	mm := feeders.BuildMayMustMap(f, c.Alias)
	c.mayMustCache[f] = mm
	return mm
}

// polyOf returns the Polynomial denoting v: its literal value if v is a
// constant, or a reference to its V-slot variable otherwise.
func (c *Converter) polyOf(v *llir.Value) *algebra.Polynomial {
	if v.IsConst() {
		return algebra.NewConstBig(v.ConstInt)
	}
	return algebra.NewVar(v.Name)
}

func identityArgs(fv *FuncVars) []*algebra.Polynomial {
	args := make([]*algebra.Polynomial, len(fv.Vars))
	for i, name := range fv.Vars {
		args[i] = algebra.NewVar(name)
	}
	return args
}

// StartSymbol, StopSymbol name a function's two permanent control
// points (spec.md §4.E "Control points").
func StartSymbol(f *llir.Function) string { return "eval_" + f.Name + "_start" }
func StopSymbol(f *llir.Function) string  { return "eval_" + f.Name + "_stop" }

func blockInSymbol(b *llir.Block) string  { return "eval_" + b.Label() + "_in" }
func blockOutSymbol(b *llir.Block) string { return "eval_" + b.Label() + "_out" }
func instSymbol(f *llir.Function, id int) string {
	return fmt.Sprintf("eval_%s_i%d", f.Name, id)
}
func closeSymbol(b *llir.Block) string { return "eval_" + b.Label() + "_close" }

// IsTrivial reports whether f qualifies for the one-rule trivial
// shortcut (spec.md §4.E "Trivial detection"): no back edges, and
// every callee it (transitively) reaches within sccSet lies outside
// sccSet.
func (c *Converter) IsTrivial(f *llir.Function, sccSet map[*llir.Function]bool) bool {
	if len(llir.FindNaturalLoops(f)) > 0 {
		return false
	}
	for _, b := range f.Blocks {
		for _, inst := range b.Instructions {
			call, ok := inst.(*llir.Call)
			if !ok || call.Intrinsic != llir.IntrinsicNone {
				continue
			}
			for _, callee := range c.candidateCallees(call) {
				if sccSet[callee] {
					return false
				}
			}
		}
	}
	return true
}

// calleeTransitionRules implements the "Other call" row of spec.md
// §4.E and its end-to-end scenario 6: one rule per candidate callee,
// all sharing the caller-side lhs `eval_{id}(V)`, transitioning to
// that callee's own start symbol with its own variable vector.
func (c *Converter) calleeTransitionRules(call *llir.Call, curSym string, idArgs []*algebra.Polynomial) []*rule.Rule {
	lhs := rule.NewTerm(curSym, idArgs)
	var rules []*rule.Rule
	for _, callee := range c.candidateCallees(call) {
		rhs := rule.NewTerm(StartSymbol(callee), c.calleeArgs(callee, call))
		rules = append(rules, rule.NewRule(lhs, rhs, algebra.True))
	}
	return rules
}

// calleeArgs builds the argument vector a call site hands to callee's
// start symbol: actual argument polynomials for callee's own integer
// parameters, the same-named reference for every integer global
// (globals are the same cell across every function's V), and a fresh
// havoc for every other local of callee's V, which holds no defined
// value before callee itself has run.
func (c *Converter) calleeArgs(callee *llir.Function, call *llir.Call) []*algebra.Polynomial {
	calleeFV := c.VarsFor(callee)
	paramPoly := map[string]*algebra.Polynomial{}
	for idx, p := range callee.Params {
		if idx < len(call.Args) {
			paramPoly[p.Name] = c.polyOf(call.Args[idx])
		}
	}
	globals := map[string]bool{}
	for _, g := range c.Module.Globals {
		globals[g.Name] = true
	}
	args := make([]*algebra.Polynomial, len(calleeFV.Vars))
	for i, name := range calleeFV.Vars {
		switch {
		case paramPoly[name] != nil:
			args[i] = paramPoly[name]
		case globals[name]:
			args[i] = algebra.NewVar(name)
		default:
			args[i] = havoc(c, name)
		}
	}
	return args
}

// candidateCallees returns the possible targets of call: the single
// direct callee, or every defined function whose pointer type matches
// the indirect call's operand type (component D's over-approximation,
// spec.md §4.D).
func (c *Converter) candidateCallees(call *llir.Call) []*llir.Function {
	if call.Callee != nil {
		return []*llir.Function{call.Callee}
	}
	var out []*llir.Function
	for _, g := range c.Module.DefinedFunctions() {
		if g.PointerType != nil && call.PointerType != nil && g.PointerType.String() == call.PointerType.String() {
			out = append(out, g)
		}
	}
	return out
}

// ConvertFunction emits every rule of spec.md §4.E "Per-function
// emission" for f, given the set of functions in f's current SCC
// (used by the trivial check and by guard-condition scoping).
func (c *Converter) ConvertFunction(f *llir.Function, sccSet map[*llir.Function]bool) ([]*rule.Rule, []*errors.CompilerError) {
	if errs := CheckSupported(f); len(errs) > 0 {
		return nil, errs
	}

	fv := c.VarsFor(f)
	idArgs := identityArgs(fv)

	if c.IsTrivial(f, sccSet) {
		lhs := rule.NewTerm(StartSymbol(f), idArgs)
		rhs := rule.NewTerm(StopSymbol(f), idArgs)
		return []*rule.Rule{rule.NewRule(lhs, rhs, algebra.True)}, nil
	}

	loopBlocks := feeders.LoopConditionBlocks(f)
	var tfMap *feeders.TrueFalseMap
	if c.Config.PropagateConditions {
		tfMap = feeders.BuildTrueFalseMap(f, c.Config.OnlyLoopConditions, loopBlocks)
	}
	var explicitLoop map[*llir.Block][]feeders.ExplicitLoopCondition
	if c.Config.ExplicitizeLoopConditions {
		explicitLoop = feeders.ExplicitLoopConditionMap(f)
	}
	mayMust := c.mayMustFor(f)

	var rules []*rule.Rule
	for _, b := range f.Blocks {
		rs, errs := c.emitBlock(f, fv, b, tfMap, explicitLoop, mayMust)
		if len(errs) > 0 {
			return nil, errs
		}
		rules = append(rules, rs...)
	}
	return rules, nil
}

func (c *Converter) guardFor(b *llir.Block, tfMap *feeders.TrueFalseMap, explicitLoop map[*llir.Block][]feeders.ExplicitLoopCondition) *algebra.Constraint {
	g := algebra.True
	if tfMap != nil {
		for _, v := range tfMap.True[b] {
			g = algebra.And(g, c.condOfValue(v).ToNNF(false))
		}
		for _, v := range tfMap.False[b] {
			g = algebra.And(g, c.condOfValue(v).ToNNF(true))
		}
	}
	for _, cond := range explicitLoop[b] {
		rel := icmpRelOp[cond.Rel]
		g = algebra.And(g, atom(c.polyOf(cond.Induction), rel, c.polyOf(cond.Bound)))
	}
	return g
}

// emitBlock emits the rules of spec.md §4.E steps 1-5 for one block.
func (c *Converter) emitBlock(f *llir.Function, fv *FuncVars, b *llir.Block, tfMap *feeders.TrueFalseMap, explicitLoop map[*llir.Block][]feeders.ExplicitLoopCondition, mayMust *feeders.MayMustMap) ([]*rule.Rule, []*errors.CompilerError) {
	var rules []*rule.Rule
	idArgs := identityArgs(fv)

	if b == f.Blocks[0] {
		rules = append(rules, rule.NewRule(
			rule.NewTerm(StartSymbol(f), idArgs),
			rule.NewTerm(blockInSymbol(b), idArgs),
			algebra.True,
		))
	}

	guard := c.guardFor(b, tfMap, explicitLoop)

	// Collect the points that emit a rule: one per integer/void
	// instruction that isn't a phi (phis are handled at branch
	// successors) or a bare predicate (icmp/fcmp emit no rule of their
	// own, spec.md §4.E table).
	var points []llir.Instruction
	for _, inst := range b.Instructions {
		if emitsRule(inst) {
			points = append(points, inst)
		}
	}

	if len(points) == 0 {
		rules = append(rules, rule.NewRule(
			rule.NewTerm(blockInSymbol(b), idArgs),
			rule.NewTerm(blockOutSymbol(b), idArgs),
			guard,
		))
	} else {
		firstSym := instSymbol(f, points[0].ID())
		rules = append(rules, rule.NewRule(
			rule.NewTerm(blockInSymbol(b), idArgs),
			rule.NewTerm(firstSym, idArgs),
			guard,
		))

		for i, inst := range points {
			var nextSym string
			if i+1 < len(points) {
				nextSym = instSymbol(f, points[i+1].ID())
			} else {
				nextSym = closeSymbol(b)
			}
			variants, errs := c.encodeInstruction(f, fv, inst, mayMust)
			if len(errs) > 0 {
				return nil, errs
			}
			curSym := instSymbol(f, inst.ID())
			for _, v := range variants {
				args := append([]*algebra.Polynomial(nil), idArgs...)
				for name, p := range v.Updates {
					if idx, ok := fv.IndexOf(name); ok {
						args[idx] = p
					}
				}
				rules = append(rules, rule.NewRule(
					rule.NewTerm(curSym, idArgs),
					rule.NewTerm(nextSym, args),
					v.Guard,
				))
			}
			if call, ok := inst.(*llir.Call); ok && call.Intrinsic == llir.IntrinsicNone {
				rules = append(rules, c.calleeTransitionRules(call, curSym, idArgs)...)
			}
		}

		rules = append(rules, rule.NewRule(
			rule.NewTerm(closeSymbol(b), idArgs),
			rule.NewTerm(blockOutSymbol(b), idArgs),
			algebra.True,
		))
	}

	rules = append(rules, c.emitTerminator(f, fv, b)...)
	return rules, nil
}

// emitsRule reports whether inst participates in the per-instruction
// chain of spec.md §4.E step 3 — phis and bare predicates do not.
func emitsRule(inst llir.Instruction) bool {
	switch inst.Opcode() {
	case llir.OpPhi, llir.OpICmp, llir.OpFCmp:
		return false
	}
	return true
}

// emitTerminator implements spec.md §4.E step 5.
func (c *Converter) emitTerminator(f *llir.Function, fv *FuncVars, b *llir.Block) []*rule.Rule {
	idArgs := identityArgs(fv)
	switch term := b.Terminator.(type) {
	case *llir.Return:
		return []*rule.Rule{rule.NewRule(
			rule.NewTerm(blockOutSymbol(b), idArgs),
			rule.NewTerm(StopSymbol(f), idArgs),
			algebra.True,
		)}
	case *llir.Unreachable:
		// Dead code: the guard is unconditionally False so this exit
		// never actually fires.
		return []*rule.Rule{rule.NewRule(
			rule.NewTerm(blockOutSymbol(b), idArgs),
			rule.NewTerm(StopSymbol(f), idArgs),
			algebra.False,
		)}
	case *llir.Jump:
		primed := c.phiSubstitute(term.Target, b, fv)
		return []*rule.Rule{rule.NewRule(
			rule.NewTerm(blockOutSymbol(b), idArgs),
			rule.NewTerm(blockInSymbol(term.Target), primed),
			algebra.True,
		)}
	case *llir.Branch:
		trueArgs := c.phiSubstitute(term.True, b, fv)
		falseArgs := c.phiSubstitute(term.False, b, fv)
		cond := c.condOfValue(term.Cond)
		return []*rule.Rule{
			rule.NewRule(
				rule.NewTerm(blockOutSymbol(b), idArgs),
				rule.NewTerm(blockInSymbol(term.True), trueArgs),
				cond.ToNNF(false),
			),
			rule.NewRule(
				rule.NewTerm(blockOutSymbol(b), idArgs),
				rule.NewTerm(blockInSymbol(term.False), falseArgs),
				cond.ToNNF(true),
			),
		}
	}
	return nil
}

// phiSubstitute builds V' = V with each PHI-result variable of target
// replaced by the polynomial value of its incoming entry for pred
// (spec.md §4.E "Unconditional branch"/"Conditional branch").
func (c *Converter) phiSubstitute(target, pred *llir.Block, fv *FuncVars) []*algebra.Polynomial {
	args := identityArgs(fv)
	for _, inst := range target.Instructions {
		phi, ok := inst.(*llir.Phi)
		if !ok {
			continue
		}
		res := phi.Result()
		if res == nil || !llir.IsInteger(res.Type) {
			continue
		}
		incoming := phi.IncomingFrom(pred)
		if incoming == nil {
			continue
		}
		if idx, ok := fv.IndexOf(res.Name); ok {
			args[idx] = c.polyOf(incoming)
		}
	}
	return args
}
