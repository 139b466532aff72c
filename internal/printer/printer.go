// Package printer renders a finished rule list in the three output
// formats spec.md §6 names as external-printer responsibilities: the
// native KITTeL rule-transition text, the CInt/complexity-tuple TRS
// format, and the T2 block-transition format. Grounded on the
// teacher's internal/ir/printer.go for structure — an indent-tracking
// strings.Builder with one method per syntactic section — though none
// of these three formats need the indentation tracking the teacher's
// nested IR does, so it stays flat here.
package printer

import (
	"fmt"
	"sort"
	"strings"

	"llir2itrs/internal/algebra"
	"llir2itrs/internal/rule"
)

// Printer accumulates output line by line.
type Printer struct {
	output strings.Builder
}

func NewPrinter() *Printer { return &Printer{} }

func (p *Printer) writeLine(format string, args ...interface{}) {
	p.output.WriteString(fmt.Sprintf(format, args...))
	p.output.WriteString("\n")
}

// KITTeL renders rules as `lhs -> rhs [guard]`, guard omitted when
// True (spec.md §6) — exactly what rule.Rule.String already produces,
// since the Rule/Constraint/Polynomial String methods were written to
// match this format from the start.
func KITTeL(rules []*rule.Rule) string {
	p := NewPrinter()
	for _, r := range rules {
		p.writeLine("%s", r.String())
	}
	return p.output.String()
}

func varNameOf(poly *algebra.Polynomial) (string, bool) {
	if !poly.IsVar() {
		return "", false
	}
	vs := poly.Variables()
	if len(vs) != 1 {
		return "", false
	}
	return vs[0], true
}

func symbolArity(rules []*rule.Rule) map[string]int {
	arity := map[string]int{}
	for _, r := range rules {
		arity[r.Lhs.Symbol] = len(r.Lhs.Args)
		arity[r.Rhs.Symbol] = len(r.Rhs.Args)
	}
	return arity
}

// canonicalNames assigns every symbol's argument positions a stable
// x1..xk vector, used by CInt's uniform variant (spec.md §6: "renames
// arguments to a canonical vector per symbol").
func canonicalNames(arity map[string]int) map[string][]string {
	out := make(map[string][]string, len(arity))
	for sym, n := range arity {
		names := make([]string, n)
		for i := range names {
			names[i] = fmt.Sprintf("x%d", i+1)
		}
		out[sym] = names
	}
	return out
}

func uniformRule(r *rule.Rule, canonical map[string][]string) *rule.Rule {
	sigma := map[string]*algebra.Polynomial{}
	lhsNames := canonical[r.Lhs.Symbol]
	newLhsArgs := make([]*algebra.Polynomial, len(r.Lhs.Args))
	for i, a := range r.Lhs.Args {
		if name, ok := varNameOf(a); ok && i < len(lhsNames) {
			sigma[name] = algebra.NewVar(lhsNames[i])
		}
		if i < len(lhsNames) {
			newLhsArgs[i] = algebra.NewVar(lhsNames[i])
		} else {
			newLhsArgs[i] = a
		}
	}
	newLhs := rule.NewTerm(r.Lhs.Symbol, newLhsArgs)
	newRhs := r.Rhs.Instantiate(sigma)
	newGuard := r.Guard.Instantiate(sigma)
	return rule.NewRule(newLhs, newRhs, newGuard)
}

func collectVars(rules []*rule.Rule) []string {
	seen := map[string]bool{}
	var out []string
	add := func(vs []string) {
		for _, v := range vs {
			if !seen[v] {
				seen[v] = true
				out = append(out, v)
			}
		}
	}
	for _, r := range rules {
		add(r.Lhs.Variables())
		add(r.Rhs.Variables())
		add(r.Guard.Variables())
	}
	sort.Strings(out)
	return out
}

// CInt renders rules in the complexity-tuple TRS input format spec.md
// §6 describes: a header block naming the goal, the start symbol and
// the full variable vocabulary, followed by one Com_1(...)-wrapped
// rule per line — Com_1 because this system's Rule always has exactly
// one rhs term, never a nondeterministic list of successor terms.
// uniform selects the canonical-argument-vector variant.
func CInt(rules []*rule.Rule, startSymbol string, uniform bool) string {
	p := NewPrinter()
	work := rules
	if uniform {
		canonical := canonicalNames(symbolArity(rules))
		work = make([]*rule.Rule, len(rules))
		for i, r := range rules {
			work[i] = uniformRule(r, canonical)
		}
	}
	p.writeLine("(GOAL COMPLEXITY)")
	p.writeLine("(STARTTERM (FUNCTIONSYMBOLS %s))", startSymbol)
	p.writeLine("(VAR %s)", strings.Join(collectVars(work), " "))
	p.writeLine("(RULES")
	for _, r := range work {
		guard := ""
		if r.Guard.Kind != algebra.CTrue {
			guard = " :|: " + r.Guard.String()
		}
		p.writeLine("  %s -> Com_1(%s)%s", r.Lhs.String(), r.Rhs.String(), guard)
	}
	p.writeLine(")")
	return p.output.String()
}

func isNondefVar(poly *algebra.Polynomial) bool {
	name, ok := varNameOf(poly)
	return ok && strings.HasPrefix(name, "__nondef_")
}

// labelSymbols assigns every distinct symbol a stable numeric T2 block
// label, first-seen order across the rule list; startSymbol always
// gets label 0 when present.
func labelSymbols(rules []*rule.Rule, startSymbol string) map[string]int {
	labels := map[string]int{}
	next := 0
	assign := func(sym string) {
		if _, ok := labels[sym]; !ok {
			labels[sym] = next
			next++
		}
	}
	if startSymbol != "" {
		assign(startSymbol)
	}
	for _, r := range rules {
		assign(r.Lhs.Symbol)
		assign(r.Rhs.Symbol)
	}
	return labels
}

// T2 renders rules in the numeric-block transition format spec.md §6
// describes: FROM:/TO: block labels, an assume(...) for a non-trivial
// guard, then the rule's assignments. Each rule's simultaneous
// variable update is staged through a temporary per position — every
// rhs expression is evaluated against the block's entry values first,
// then copied into the real variable names — so no assignment ever
// reads a value this same rule has already overwritten (spec.md §6
// "variable renaming to avoid write-before-read hazards").
func T2(rules []*rule.Rule, startSymbol string) string {
	p := NewPrinter()
	labels := labelSymbols(rules, startSymbol)
	if startSymbol != "" {
		p.writeLine("START: %d;", labels[startSymbol])
		p.writeLine("")
	}
	for _, r := range rules {
		p.writeLine("FROM: %d;", labels[r.Lhs.Symbol])
		if r.Guard.Kind != algebra.CTrue {
			p.writeLine("  assume(%s);", r.Guard.String())
		}

		n := len(r.Lhs.Args)
		if len(r.Rhs.Args) < n {
			n = len(r.Rhs.Args)
		}
		names := make([]string, n)
		tmp := make([]string, n)
		for i := 0; i < n; i++ {
			name, _ := varNameOf(r.Lhs.Args[i])
			names[i] = name
			tmp[i] = "__t2_" + name
		}
		for i := 0; i < n; i++ {
			if isNondefVar(r.Rhs.Args[i]) {
				p.writeLine("  %s := nondet();", tmp[i])
			} else {
				p.writeLine("  %s := %s;", tmp[i], r.Rhs.Args[i].String())
			}
		}
		for i := 0; i < n; i++ {
			p.writeLine("  %s := %s;", names[i], tmp[i])
		}
		p.writeLine("TO: %d;", labels[r.Rhs.Symbol])
		p.writeLine("")
	}
	return p.output.String()
}
