// Package jet implements the multivariate truncated power series algebra:
// polynomials in K variables of total degree <= M, dense by total degree
// rather than sparse indexing since M is small, used as the coefficient
// ring of the univariate series (package series) to carry jet-transport
// sensitivities.
//
// MTS implements ring.Field[MTS], so series.Series[MTS] is the
// jet-transport state: a UTS in time whose coefficients are themselves
// polynomials in the perturbed initial parameters.
package jet

import (
	"math"

	"github.com/ast-dyn/apophis/apoerr"
)

// MTS is a truncated multivariate power series: Σ c_α x^α for |α| <= M in
// K variables, with coefficients in double.
type MTS struct {
	sh *shape
	c  []float64
}

// K is the number of variables this series is defined over.
func (p MTS) K() int { return p.sh.k }

// Degree is the total-degree truncation bound M.
func (p MTS) Degree() int { return p.sh.m }

// Zero returns the zero MTS with the same (K, M) shape as p.
func (p MTS) Zero() MTS {
	return MTS{sh: p.sh, c: make([]float64, len(p.sh.exps))}
}

// One returns the constant 1 with the same (K, M) shape as p.
func (p MTS) One() MTS {
	z := p.Zero()
	z.c[z.sh.zeroIdx] = 1
	return z
}

// IsZero reports whether every coefficient is exactly zero.
func (p MTS) IsZero() bool {
	for _, v := range p.c {
		if v != 0 {
			return false
		}
	}
	return true
}

// NewZero returns the zero MTS of the given shape, the entry point for
// building every other MTS value of that shape via Zero()/One()/ConstTerm.
func NewZero(k, m int) MTS {
	sh := getShape(k, m)
	return MTS{sh: sh, c: make([]float64, len(sh.exps))}
}

// NewConst returns the constant v with shape (K, M).
func NewConst(k, m int, v float64) MTS {
	p := NewZero(k, m)
	p.c[p.sh.zeroIdx] = v
	return p
}

// ScaledVar returns the i-th scaled variable s_i * x_i of shape (K, M): the
// monomial of degree 1 in variable i, with coefficient s_i. This scaling is
// load-bearing for numerical stability, keeping later jet coefficients
// bounded; it is not cosmetic.
func ScaledVar(k, m, i int, scale float64) MTS {
	p := NewZero(k, m)
	e := make([]int8, k)
	e[i] = 1
	idx, ok := p.sh.lookup[expKey(e)]
	if !ok {
		panic("jet: degree bound too small to hold a linear variable")
	}
	p.c[idx] = scale
	return p
}

// ConstTerm returns the total-degree-0 coefficient (the value the series
// represents when every variable's perturbation is zero).
func (p MTS) ConstTerm() float64 { return p.c[p.sh.zeroIdx] }

// Coeff returns the coefficient of the monomial with exponents exp (length K).
func (p MTS) Coeff(exp []int8) float64 {
	idx, ok := p.sh.lookup[expKey(exp)]
	if !ok {
		return 0
	}
	return p.c[idx]
}

func sameShape(op string, a, b MTS) error {
	if a.sh != b.sh {
		return &apoerr.AlgebraError{Op: op, Reason: "mismatched (K, M) shapes"}
	}
	return nil
}

// Add returns a+b.
func (a MTS) Add(b MTS) MTS {
	if err := sameShape("add", a, b); err != nil {
		panic(err) // shape mismatch is a programmer error, as for series order mismatches
	}
	out := a.Zero()
	for i := range out.c {
		out.c[i] = a.c[i] + b.c[i]
	}
	return out
}

// Sub returns a-b.
func (a MTS) Sub(b MTS) MTS {
	if err := sameShape("sub", a, b); err != nil {
		panic(err)
	}
	out := a.Zero()
	for i := range out.c {
		out.c[i] = a.c[i] - b.c[i]
	}
	return out
}

// Scale returns k*a.
func (a MTS) Scale(k float64) MTS {
	out := a.Zero()
	for i := range out.c {
		out.c[i] = a.c[i] * k
	}
	return out
}

// Neg returns -a.
func (a MTS) Neg() MTS { return a.Scale(-1) }

// Mul returns the total-degree-truncated product a*b.
func (a MTS) Mul(b MTS) MTS {
	if err := sameShape("mul", a, b); err != nil {
		panic(err)
	}
	out := a.Zero()
	sh := a.sh
	for i, av := range a.c {
		if av == 0 {
			continue
		}
		for j, bv := range b.c {
			if bv == 0 {
				continue
			}
			idx := sh.indexOfSum(i, j)
			if idx < 0 {
				continue
			}
			out.c[idx] += av * bv
		}
	}
	return out
}

// convolveAt returns Σ_{exps[i]+exps[j]=exps[outIdx]} a[i]*b[j], used by Div
// and Sqrt to extract the one unknown term at each total-degree level.
func convolveAt(sh *shape, a, b []float64, outIdx int) float64 {
	var sum float64
	for i, av := range a {
		if av == 0 {
			continue
		}
		for j, bv := range b {
			if bv == 0 {
				continue
			}
			if sh.indexOfSum(i, j) == outIdx {
				sum += av * bv
			}
		}
	}
	return sum
}

// Div returns a/b. Requires b's total-degree-0 coefficient to be nonzero.
//
// Processed in ascending total-degree order (the shape's index order): at
// index t, every pair (i,j) with exps[i]+exps[j]=exps[t] other than
// (i=t, j=zeroIdx) involves only already-resolved lower-degree entries of
// the result, so convolving the partially-filled result with b at t gives
// exactly that known sum; the unknown term's coefficient is b's constant
// term, matching the univariate division recursion one total-degree level
// at a time instead of one integer index at a time.
func (a MTS) Div(b MTS) (MTS, error) {
	if err := sameShape("div", a, b); err != nil {
		return MTS{}, err
	}
	b0 := b.ConstTerm()
	if b0 == 0 {
		return MTS{}, &apoerr.AlgebraError{Op: "div", Reason: "divisor has zero constant term"}
	}
	sh := a.sh
	out := a.Zero()
	for t := range sh.exps {
		known := convolveAt(sh, out.c, b.c, t)
		out.c[t] = (a.c[t] - known) / b0
	}
	return out, nil
}

// Sqrt returns sqrt(a). Requires a's total-degree-0 coefficient to be
// strictly positive; uses the same degree-by-degree recursion as Div, with
// the two symmetric unknown-term pairs (t,zeroIdx) and (zeroIdx,t)
// contributing 2*h_t*h_0.
func (a MTS) Sqrt() (MTS, error) {
	a0 := a.ConstTerm()
	if a0 <= 0 {
		return MTS{}, &apoerr.AlgebraError{Op: "sqrt", Reason: "non-positive constant term"}
	}
	sh := a.sh
	out := a.Zero()
	h0 := math.Sqrt(a0)
	out.c[sh.zeroIdx] = h0
	for t := range sh.exps {
		if t == sh.zeroIdx {
			continue
		}
		known := convolveAt(sh, out.c, out.c, t)
		out.c[t] = (a.c[t] - known) / (2 * h0)
	}
	return out, nil
}

// Diff returns the partial derivative of p with respect to variable index i.
func (p MTS) Diff(i int) MTS {
	out := p.Zero()
	sh := p.sh
	for idx, e := range sh.exps {
		if e[i] == 0 {
			continue
		}
		lower := make([]int8, sh.k)
		copy(lower, e)
		lower[i]--
		lowIdx, ok := sh.lookup[expKey(lower)]
		if !ok {
			continue
		}
		out.c[lowIdx] += float64(e[i]) * p.c[idx]
	}
	return out
}

// Compose returns p(subs[0], ..., subs[K-1]): each of p's K variables is
// replaced by the corresponding entry of subs, and the result is truncated
// to the same (K, M) shape as p and every sub. This is the jet-transport
// chaining operation: the sensitivity map of one step composed with that of
// the next, so a perturbation threaded through several steps picks up the
// product of their Jacobians without re-deriving anything by hand.
func (p MTS) Compose(subs []MTS) MTS {
	if len(subs) != p.sh.k {
		panic(&apoerr.AlgebraError{Op: "compose", Reason: "need exactly K substitutions"})
	}
	for _, s := range subs {
		if err := sameShape("compose", p, s); err != nil {
			panic(err)
		}
	}
	out := p.Zero()
	for idx, e := range p.sh.exps {
		coeff := p.c[idx]
		if coeff == 0 {
			continue
		}
		term := p.One().Scale(coeff)
		for v, exp := range e {
			for n := int8(0); n < exp; n++ {
				term = term.Mul(subs[v])
			}
		}
		out = out.Add(term)
	}
	return out
}

// Eval evaluates p at the point x (length K).
func (p MTS) Eval(x []float64) float64 {
	var sum float64
	for idx, coeff := range p.c {
		if coeff == 0 {
			continue
		}
		term := coeff
		for v, e := range p.sh.exps[idx] {
			if e == 0 {
				continue
			}
			term *= ipow(x[v], int(e))
		}
		sum += term
	}
	return sum
}

func ipow(base float64, exp int) float64 {
	r := 1.0
	for ; exp > 0; exp-- {
		r *= base
	}
	return r
}
