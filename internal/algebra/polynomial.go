package algebra

import (
	"math/big"
	"sort"
	"strings"
	"sync"
)

// term is one (non-zero coefficient, monomial) pair of a Polynomial.
type term struct {
	Coeff *big.Int
	Mono  *Monomial
}

// Polynomial is a constant plus a sum of non-zero-coefficient
// monomials; no monomial shape appears twice (spec.md §3 invariant 1).
// Polynomials are immutable; every operation returns a new value.
type Polynomial struct {
	constant *big.Int
	terms    []term // sorted by monomial key for canonical, deterministic form
}

func newPolynomial(constant *big.Int, terms []term) *Polynomial {
	sort.Slice(terms, func(i, j int) bool { return terms[i].Mono.key() < terms[j].Mono.key() })
	return &Polynomial{constant: constant, terms: terms}
}

// Canonical singletons (spec.md §3, §9).
var (
	Zero    = newPolynomial(big.NewInt(0), nil)
	One     = newPolynomial(big.NewInt(1), nil)
	NegOne  = newPolynomial(big.NewInt(-1), nil)
)

// NewConst returns the constant polynomial c.
func NewConst(c int64) *Polynomial {
	switch c {
	case 0:
		return Zero
	case 1:
		return One
	case -1:
		return NegOne
	}
	return newPolynomial(big.NewInt(c), nil)
}

// NewConstBig returns the constant polynomial c.
func NewConstBig(c *big.Int) *Polynomial {
	return newPolynomial(new(big.Int).Set(c), nil)
}

// NewVar returns the polynomial consisting of the single variable x
// with coefficient 1.
func NewVar(x string) *Polynomial {
	return newPolynomial(big.NewInt(0), []term{{Coeff: big.NewInt(1), Mono: NewVarMonomial(x)}})
}

// IsConstant reports whether p has no monomial terms.
func (p *Polynomial) IsConstant() bool { return len(p.terms) == 0 }

// ConstValue returns p's constant part.
func (p *Polynomial) ConstValue() *big.Int { return new(big.Int).Set(p.constant) }

// IsVar reports whether p is exactly one variable with coefficient 1
// and zero constant — a bare variable reference.
func (p *Polynomial) IsVar() bool {
	return p.constant.Sign() == 0 && len(p.terms) == 1 &&
		p.terms[0].Coeff.Cmp(big.NewInt(1)) == 0 && p.terms[0].Mono.IsUnivariateLinear()
}

// IsSingleVariableLinear reports whether p is c1*x + c0 for a single x.
func (p *Polynomial) IsSingleVariableLinear() bool {
	return len(p.terms) == 1 && p.terms[0].Mono.IsUnivariateLinear()
}

// IsLinear reports whether every monomial of p is univariate-linear
// (spec.md §3: "every monomial is univariate-linear").
func (p *Polynomial) IsLinear() bool {
	for _, t := range p.terms {
		if !t.Mono.IsUnivariateLinear() {
			return false
		}
	}
	return true
}

// Variables returns the set of variable names occurring in p.
func (p *Polynomial) Variables() []string {
	seen := make(map[string]bool)
	var out []string
	for _, t := range p.terms {
		for _, v := range t.Mono.Variables() {
			if !seen[v] {
				seen[v] = true
				out = append(out, v)
			}
		}
	}
	sort.Strings(out)
	return out
}

// GetCoeff returns the coefficient of monomial m in p (0 if absent).
func (p *Polynomial) GetCoeff(m *Monomial) *big.Int {
	for _, t := range p.terms {
		if t.Mono.Equals(m) {
			return new(big.Int).Set(t.Coeff)
		}
	}
	return big.NewInt(0)
}

func mergeTerms(a, b []term, bSign int64) []term {
	byKey := make(map[string]*term, len(a)+len(b))
	order := make([]string, 0, len(a)+len(b))
	add := func(t term, sign int64) {
		k := t.Mono.key()
		if existing, ok := byKey[k]; ok {
			existing.Coeff.Add(existing.Coeff, new(big.Int).Mul(t.Coeff, big.NewInt(sign)))
			return
		}
		c := new(big.Int).Mul(t.Coeff, big.NewInt(sign))
		byKey[k] = &term{Coeff: c, Mono: t.Mono}
		order = append(order, k)
	}
	for _, t := range a {
		add(t, 1)
	}
	for _, t := range b {
		add(t, bSign)
	}
	out := make([]term, 0, len(order))
	for _, k := range order {
		t := byKey[k]
		if t.Coeff.Sign() != 0 {
			out = append(out, *t)
		}
	}
	return out
}

// Add returns p+q.
func (p *Polynomial) Add(q *Polynomial) *Polynomial {
	return newPolynomial(new(big.Int).Add(p.constant, q.constant), mergeTerms(p.terms, q.terms, 1))
}

// Sub returns p-q.
func (p *Polynomial) Sub(q *Polynomial) *Polynomial {
	return newPolynomial(new(big.Int).Sub(p.constant, q.constant), mergeTerms(p.terms, q.terms, -1))
}

// ConstMult returns p scaled by the integer d. Must be exact (spec.md
// §4.A): multiplication by an integer constant never rounds.
func (p *Polynomial) ConstMult(d *big.Int) *Polynomial {
	if d.Sign() == 0 {
		return Zero
	}
	terms := make([]term, 0, len(p.terms))
	for _, t := range p.terms {
		terms = append(terms, term{Coeff: new(big.Int).Mul(t.Coeff, d), Mono: t.Mono})
	}
	return newPolynomial(new(big.Int).Mul(p.constant, d), terms)
}

// Mult returns p*q exactly; spec.md §4.A requires no approximation.
func (p *Polynomial) Mult(q *Polynomial) *Polynomial {
	acc := newPolynomial(new(big.Int).Mul(p.constant, q.constant), nil)
	// constant*q's monomials
	if p.constant.Sign() != 0 {
		for _, t := range q.terms {
			acc = acc.Add(newPolynomial(big.NewInt(0), []term{{Coeff: new(big.Int).Mul(p.constant, t.Coeff), Mono: t.Mono}}))
		}
	}
	if q.constant.Sign() != 0 {
		for _, t := range p.terms {
			acc = acc.Add(newPolynomial(big.NewInt(0), []term{{Coeff: new(big.Int).Mul(q.constant, t.Coeff), Mono: t.Mono}}))
		}
	}
	for _, tp := range p.terms {
		for _, tq := range q.terms {
			c := new(big.Int).Mul(tp.Coeff, tq.Coeff)
			m := tp.Mono.Mult(tq.Mono)
			acc = acc.Add(newPolynomial(big.NewInt(0), []term{{Coeff: c, Mono: m}}))
		}
	}
	return acc
}

// Equals reports p≡q by subtraction: p≡q iff (p-q) is the zero
// constant (spec.md §4.A).
func (p *Polynomial) Equals(q *Polynomial) bool {
	d := p.Sub(q)
	return d.constant.Sign() == 0 && len(d.terms) == 0
}

// Instantiate substitutes every variable occurrence per sigma and
// re-normalises; variables absent from sigma map to themselves
// (spec.md §4.A).
func (p *Polynomial) Instantiate(sigma map[string]*Polynomial) *Polynomial {
	acc := NewConstBig(p.constant)
	for _, t := range p.terms {
		factor := NewConstBig(t.Coeff)
		m := t.Mono
		for m.Empty() == false {
			v := m.GetFirst()
			var varPoly *Polynomial
			if sub, ok := sigma[v]; ok {
				varPoly = sub
			} else {
				varPoly = NewVar(v)
			}
			factor = factor.Mult(varPoly)
			m = m.LowerFirst()
		}
		acc = acc.Add(factor)
	}
	return acc
}

// NormStepsNeeded returns, for a univariate-linear polynomial c1*x+c0,
// the number of times 2^w must be added or subtracted to bring it into
// [low, high]; returns -1 when p is non-linear or the shift count
// can't be computed with native arithmetic (spec.md §4.A — this drives
// the Bound-Constrainer's decision to generate normalisation rules or
// to keep the normaliser symbol).
func (p *Polynomial) NormStepsNeeded(low, high, modulus *big.Int) int {
	if len(p.terms) != 1 || !p.terms[0].Mono.IsUnivariateLinear() {
		return -1
	}
	if p.terms[0].Coeff.CmpAbs(big.NewInt(1)) != 0 {
		// Only a bare (possibly negated) variable can be normalised by
		// repeated +/- modulus; anything else needs the normaliser
		// symbol kept live.
		return -1
	}
	if !modulus.IsInt64() {
		return -1
	}
	c := new(big.Int).Set(p.constant)
	if !c.IsInt64() || !low.IsInt64() || !high.IsInt64() {
		return -1
	}
	steps := 0
	for c.Cmp(high) > 0 {
		c.Sub(c, modulus)
		steps++
		if steps > 1<<20 {
			return -1
		}
	}
	for c.Cmp(low) < 0 {
		c.Add(c, modulus)
		steps++
		if steps > 1<<20 {
			return -1
		}
	}
	return steps
}

func (p *Polynomial) String() string {
	var sb strings.Builder
	first := true
	for _, t := range p.terms {
		if !first {
			if t.Coeff.Sign() >= 0 {
				sb.WriteString(" + ")
			} else {
				sb.WriteString(" - ")
			}
		} else if t.Coeff.Sign() < 0 {
			sb.WriteString("-")
		}
		first = false
		abs := new(big.Int).Abs(t.Coeff)
		if abs.Cmp(big.NewInt(1)) != 0 {
			sb.WriteString(abs.String())
			sb.WriteString("*")
		}
		sb.WriteString(t.Mono.String())
	}
	if p.constant.Sign() != 0 || first {
		if !first {
			if p.constant.Sign() >= 0 {
				sb.WriteString(" + ")
			} else {
				sb.WriteString(" - ")
			}
			sb.WriteString(new(big.Int).Abs(p.constant).String())
		} else {
			sb.WriteString(p.constant.String())
		}
	}
	return sb.String()
}

// --- bit-width-indexed memoised constants (spec.md §3, §9) ---

var (
	bwMu       sync.Mutex
	simaxTbl   = map[int]*Polynomial{}
	siminUiTbl = map[int]*Polynomial{}
	siminTbl   = map[int]*Polynomial{}
	uimaxTbl   = map[int]*Polynomial{}
	pow2Tbl    = map[int]*Polynomial{}
)

// PowerOfTwo returns 2^w, memoised per bit width.
func PowerOfTwo(w int) *Polynomial {
	bwMu.Lock()
	defer bwMu.Unlock()
	if v, ok := pow2Tbl[w]; ok {
		return v
	}
	v := NewConstBig(new(big.Int).Lsh(big.NewInt(1), uint(w)))
	pow2Tbl[w] = v
	return v
}

// SignedMax returns 2^(w-1)-1, the max representable signed value.
func SignedMax(w int) *Polynomial {
	bwMu.Lock()
	defer bwMu.Unlock()
	if v, ok := simaxTbl[w]; ok {
		return v
	}
	v := NewConstBig(new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), uint(w-1)), big.NewInt(1)))
	simaxTbl[w] = v
	return v
}

// SignedMinAsUnsigned returns 2^(w-1), the bit pattern of the min
// signed value interpreted as unsigned.
func SignedMinAsUnsigned(w int) *Polynomial {
	bwMu.Lock()
	defer bwMu.Unlock()
	if v, ok := siminUiTbl[w]; ok {
		return v
	}
	v := NewConstBig(new(big.Int).Lsh(big.NewInt(1), uint(w-1)))
	siminUiTbl[w] = v
	return v
}

// SignedMin returns -2^(w-1), the min representable signed value.
func SignedMin(w int) *Polynomial {
	bwMu.Lock()
	defer bwMu.Unlock()
	if v, ok := siminTbl[w]; ok {
		return v
	}
	v := NewConstBig(new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), uint(w-1))))
	siminTbl[w] = v
	return v
}

// UnsignedMax returns 2^w-1, the max representable unsigned value.
func UnsignedMax(w int) *Polynomial {
	bwMu.Lock()
	defer bwMu.Unlock()
	if v, ok := uimaxTbl[w]; ok {
		return v
	}
	v := NewConstBig(new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), uint(w)), big.NewInt(1)))
	uimaxTbl[w] = v
	return v
}
