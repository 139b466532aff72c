package main

import (
	"fmt"
	"strings"

	"llir2itrs/internal/algebra"
)

// renderSMT is the smt.Printer capability the driver supplies its own
// Bridge: a minimal SMT-LIB2 encoder over the linear integer
// constraints this pipeline actually produces (spec.md's arithmetic
// stays linear past the Kittelizer/Slicer stages). It declares every
// free variable as an Int and asserts the constraint in prefix form.
// A real embedder wiring a specific solver would likely bring its own,
// fuller encoder (e.g. non-linear terms, bit-vectors); this one covers
// exactly the shapes this pipeline's own algebra ever builds.
func renderSMT(c *algebra.Constraint) string {
	vars := c.Variables()
	var sb strings.Builder
	for _, v := range vars {
		sb.WriteString(fmt.Sprintf("(declare-const %s Int)\n", v))
	}
	sb.WriteString("(assert ")
	sb.WriteString(smtConstraint(c))
	sb.WriteString(")\n(check-sat)\n")
	return sb.String()
}

func smtConstraint(c *algebra.Constraint) string {
	switch c.Kind {
	case algebra.CTrue:
		return "true"
	case algebra.CFalse:
		return "false"
	case algebra.CNondef:
		return "true"
	case algebra.CAtom:
		return fmt.Sprintf("(%s %s %s)", smtRel(c.Rel), smtPoly(c.Lhs), smtPoly(c.Rhs))
	case algebra.CNegation:
		return fmt.Sprintf("(not %s)", smtConstraint(c.Child))
	case algebra.CAnd:
		return fmt.Sprintf("(and %s %s)", smtConstraint(c.Left), smtConstraint(c.Right))
	case algebra.COr:
		return fmt.Sprintf("(or %s %s)", smtConstraint(c.Left), smtConstraint(c.Right))
	default:
		return "true"
	}
}

func smtRel(r algebra.RelOp) string {
	switch r {
	case algebra.Eq:
		return "="
	case algebra.Ne:
		return "distinct"
	case algebra.Ge:
		return ">="
	case algebra.Gt:
		return ">"
	case algebra.Le:
		return "<="
	default:
		return "<"
	}
}

// smtPoly renders a polynomial as a prefix (+ ...) expression over its
// constant and each variable scaled by its linear coefficient.
func smtPoly(p *algebra.Polynomial) string {
	if p.IsConstant() {
		return p.ConstValue().String()
	}
	terms := []string{p.ConstValue().String()}
	for _, v := range p.Variables() {
		coeff := p.GetCoeff(algebra.NewVarMonomial(v))
		if coeff.Sign() == 0 {
			continue
		}
		terms = append(terms, fmt.Sprintf("(* %s %s)", coeff.String(), v))
	}
	if len(terms) == 1 {
		return terms[0]
	}
	return "(+ " + strings.Join(terms, " ") + ")"
}
