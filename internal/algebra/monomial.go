// Package algebra implements the symbolic polynomial/constraint
// algebra of spec.md §3/§4.A: monomials, polynomials with
// arbitrary-precision integer coefficients, and a constraint tree over
// atomic comparisons. Values are immutable and built only through
// canonicalising constructors (spec.md §9), mirroring the way the
// teacher's internal/ir package treats Type/Value as small, shared,
// never-mutated-after-construction trees.
package algebra

import (
	"sort"
	"strconv"
	"strings"
)

// Monomial is an unordered bag of (variable, positive power) pairs.
// The empty bag is the multiplicative identity. Equality is
// power-wise (spec.md §3).
type Monomial struct {
	// powers is kept sorted by variable name so structurally equal
	// monomials compare equal as Go values and map naturally onto a
	// deterministic string key.
	powers []power
}

type power struct {
	Var   string
	Power int
}

// oneMonomial is the empty monomial (multiplicative identity).
var oneMonomial = &Monomial{}

// NewVarMonomial returns the monomial x^1.
func NewVarMonomial(x string) *Monomial {
	return &Monomial{powers: []power{{Var: x, Power: 1}}}
}

// Empty reports whether m is the multiplicative identity.
func (m *Monomial) Empty() bool { return len(m.powers) == 0 }

// GetPower returns the power of x in m (0 if absent).
func (m *Monomial) GetPower(x string) int {
	for _, p := range m.powers {
		if p.Var == x {
			return p.Power
		}
	}
	return 0
}

// Equals reports power-wise equality.
func (m *Monomial) Equals(o *Monomial) bool {
	if len(m.powers) != len(o.powers) {
		return false
	}
	for i, p := range m.powers {
		if o.powers[i] != p {
			return false
		}
	}
	return true
}

// IsUnivariateLinear reports whether m is exactly x^1 for some x.
func (m *Monomial) IsUnivariateLinear() bool {
	return len(m.powers) == 1 && m.powers[0].Power == 1
}

// GetFirst returns the (lexicographically) first variable name in m;
// panics on the empty monomial, matching the original's precondition
// that callers only peel a factor off a non-empty monomial.
func (m *Monomial) GetFirst() string {
	if len(m.powers) == 0 {
		panic("algebra: GetFirst of empty monomial")
	}
	return m.powers[0].Var
}

// LowerFirst returns m with one factor of its first variable removed.
func (m *Monomial) LowerFirst() *Monomial {
	if len(m.powers) == 0 {
		panic("algebra: LowerFirst of empty monomial")
	}
	out := make([]power, 0, len(m.powers))
	for i, p := range m.powers {
		if i == 0 {
			if p.Power > 1 {
				out = append(out, power{Var: p.Var, Power: p.Power - 1})
			}
			continue
		}
		out = append(out, p)
	}
	return newMonomial(out)
}

// Mult returns the product monomial m*o.
func (m *Monomial) Mult(o *Monomial) *Monomial {
	merged := make(map[string]int, len(m.powers)+len(o.powers))
	for _, p := range m.powers {
		merged[p.Var] += p.Power
	}
	for _, p := range o.powers {
		merged[p.Var] += p.Power
	}
	out := make([]power, 0, len(merged))
	for v, pw := range merged {
		out = append(out, power{Var: v, Power: pw})
	}
	return newMonomial(out)
}

// Variables returns the set of variable names occurring in m.
func (m *Monomial) Variables() []string {
	out := make([]string, len(m.powers))
	for i, p := range m.powers {
		out[i] = p.Var
	}
	return out
}

func newMonomial(ps []power) *Monomial {
	sort.Slice(ps, func(i, j int) bool { return ps[i].Var < ps[j].Var })
	if len(ps) == 0 {
		return oneMonomial
	}
	return &Monomial{powers: ps}
}

func (m *Monomial) key() string {
	if len(m.powers) == 0 {
		return ""
	}
	parts := make([]string, len(m.powers))
	for i, p := range m.powers {
		parts[i] = p.Var + "^" + strconv.Itoa(p.Power)
	}
	return strings.Join(parts, "*")
}

func (m *Monomial) String() string {
	if len(m.powers) == 0 {
		return "1"
	}
	parts := make([]string, len(m.powers))
	for i, p := range m.powers {
		if p.Power == 1 {
			parts[i] = p.Var
		} else {
			parts[i] = p.Var + "^" + strconv.Itoa(p.Power)
		}
	}
	return strings.Join(parts, "*")
}
