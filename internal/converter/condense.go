package converter

import (
	"llir2itrs/internal/algebra"
	"llir2itrs/internal/config"
	"llir2itrs/internal/errors"
	"llir2itrs/internal/llir"
	"llir2itrs/internal/rule"
)

// ControlPoints computes the set of control-point function symbols
// spec.md §4.E "Control points" names for fs under cfg: eval_f_start
// and eval_f_stop are always control points; a block's entry symbol is
// one when the block has more than one predecessor, or always when
// MultiPredControl is disabled; a call to the assume intrinsic or a
// select instruction additionally becomes one when the corresponding
// cfg flag requests it.
func ControlPoints(fs []*llir.Function, cfg *config.Options) map[string]bool {
	cps := map[string]bool{}
	for _, f := range fs {
		cps[StartSymbol(f)] = true
		cps[StopSymbol(f)] = true
		for _, b := range f.Blocks {
			if len(b.Predecessors) > 1 || !cfg.MultiPredControl {
				cps[blockInSymbol(b)] = true
			}
			for _, inst := range b.Instructions {
				switch v := inst.(type) {
				case *llir.Call:
					if cfg.AssumeIsControl && v.Intrinsic == llir.IntrinsicAssume {
						cps[instSymbol(f, inst.ID())] = true
					}
				case *llir.Select:
					if cfg.SelectIsControl {
						cps[instSymbol(f, inst.ID())] = true
					}
				}
			}
		}
	}
	return cps
}

// condenseEnd is one terminal (term, guard) pair a condensation walk
// reaches once it lands on a control-point symbol.
type condenseEnd struct {
	term  *rule.Term
	guard *algebra.Constraint
}

// GetCondensedRules implements spec.md §4.E "Condensation
// (get_condensed_rules)": the rule list produced for an SCC is split by
// whether lhs is a control point; for each rule whose lhs is a control
// point, the successor graph is walked — substituting the rhs args
// into the next rule's lhs and conjoining guards — until a
// control-point symbol is reached, and the resulting rule has that
// control point as rhs. Grounded on
// original_source/include/llvm2kittel/Converter.h's getCondensedRules.
func GetCondensedRules(rules []*rule.Rule, controlPoints map[string]bool) ([]*rule.Rule, []*errors.CompilerError) {
	bySymbol := map[string][]*rule.Rule{}
	for _, r := range rules {
		bySymbol[r.Lhs.Symbol] = append(bySymbol[r.Lhs.Symbol], r)
	}

	var out []*rule.Rule
	var errs []*errors.CompilerError
	for _, r := range rules {
		if !controlPoints[r.Lhs.Symbol] {
			continue
		}
		ends, err := expandCondense(r.Rhs, r.Guard, bySymbol, controlPoints,
			map[string]bool{r.Lhs.Symbol: true})
		if err != nil {
			errs = append(errs, err)
			continue
		}
		for _, e := range ends {
			out = append(out, rule.NewRule(r.Lhs, e.term, e.guard))
		}
	}
	return out, errs
}

// expandCondense walks forward from t (the rhs of some already-fixed
// lhs), conjoining guard with each intermediate rule's own guard,
// until every branch reaches a control-point symbol. onPath guards
// against a cyclic non-control-point chain, which would be a contract
// violation (spec.md §7 kind 6): every loop header is expected to be a
// control point (it has more than one predecessor) by construction.
func expandCondense(t *rule.Term, guard *algebra.Constraint, bySymbol map[string][]*rule.Rule,
	controlPoints map[string]bool, onPath map[string]bool) ([]condenseEnd, *errors.CompilerError) {
	if controlPoints[t.Symbol] {
		return []condenseEnd{{term: t, guard: guard}}, nil
	}
	if onPath[t.Symbol] {
		return nil, errors.New(errors.UnexpectedAlgebraicShape,
			"condensation walk revisited "+t.Symbol+" without passing through a control point").Build()
	}
	next := bySymbol[t.Symbol]
	if len(next) == 0 {
		return nil, errors.New(errors.MissingAnalysisFact,
			"condensation found no outgoing rule for "+t.Symbol).Build()
	}
	nextOnPath := make(map[string]bool, len(onPath)+1)
	for k := range onPath {
		nextOnPath[k] = true
	}
	nextOnPath[t.Symbol] = true

	var out []condenseEnd
	for _, r2 := range next {
		sigma := make(map[string]*algebra.Polynomial, len(r2.Lhs.Args))
		for i, a := range r2.Lhs.Args {
			if vs := a.Variables(); len(vs) == 1 && a.IsVar() {
				sigma[vs[0]] = t.Args[i]
			}
		}
		inst := r2.Instantiate(sigma)
		ends, err := expandCondense(inst.Rhs, algebra.And(guard, inst.Guard), bySymbol, controlPoints, nextOnPath)
		if err != nil {
			return nil, err
		}
		out = append(out, ends...)
	}
	return out, nil
}
