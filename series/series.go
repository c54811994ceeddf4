// Package series implements the univariate truncated power series (UTS)
// algebra of spec component A: arithmetic, elementary functions,
// composition, evaluation, differentiation and integration on polynomials
// in one variable truncated at a fixed order N.
//
// Series is generic over its coefficient ring, constrained by ring.Field.
// The arithmetic primitives (Add, Sub, Mul, Div, Sqrt, Scale, Neg,
// Differentiate, Integrate, Evaluate, Compose) are written once against
// that constraint; instantiating Series[ring.Real] gives the plain double
// integrator and instantiating Series[jet.MTS] gives the jet-transport
// state, from one implementation written once against ring.Field without
// duplicating the right-hand side for each coefficient ring. The
// elementary transcendental functions (Exp, Log, Sin, Cos, Atan, and Pow
// for non-integer exponents) are only ever needed on the plain-double
// series in this system, so they are defined directly against
// Series[ring.Real] rather than threaded through the Field constraint.
package series

import (
	"github.com/ast-dyn/apophis/apoerr"
	"github.com/ast-dyn/apophis/ring"
)

// Series is a truncated power series c0 + c1·t + … + cN·t^N mod t^(N+1)
// over coefficient ring T. The order N is fixed at construction and
// preserved by every operation; mixing series of different orders is an
// AlgebraError.
type Series[T ring.Field[T]] struct {
	n int
	c []T
}

// Order returns the fixed truncation order N.
func (s Series[T]) Order() int { return s.n }

// Coeff returns c_i, or the zero element if i is out of range (absent
// coefficients are implicitly zero).
func (s Series[T]) Coeff(i int) T {
	if i < 0 || i >= len(s.c) {
		return s.zero()
	}
	return s.c[i]
}

func (s Series[T]) zero() T {
	if len(s.c) == 0 {
		var zero T
		return zero
	}
	return s.c[0].Zero()
}

// Coeffs returns the backing coefficient slice; callers must not mutate it.
func (s Series[T]) Coeffs() []T { return s.c }

// New builds a series of order n from explicit coefficients over the
// shape/ring carried by proto (e.g. a jet.MTS of the right (K,M), or any
// ring.Real), zero-padding or truncating as needed.
func New[T ring.Field[T]](n int, proto T, coeffs ...T) Series[T] {
	zero := proto.Zero()
	c := make([]T, n+1)
	for i := range c {
		c[i] = zero
	}
	copy(c, coeffs)
	return Series[T]{n: n, c: c}
}

// Const returns the constant series v of order n.
func Const[T ring.Field[T]](n int, proto, v T) Series[T] {
	s := New(n, proto)
	s.c[0] = v
	return s
}

// Zero returns the zero series of order n.
func Zero[T ring.Field[T]](n int, proto T) Series[T] { return New(n, proto) }

// Var returns the independent-variable series (t0, 1, 0, …, 0) of order n:
// the series whose evaluation at a local step s gives t0+s, via the
// identity c1=1 construction.
func Var[T ring.Field[T]](n int, t0 T) Series[T] {
	s := New(n, t0)
	s.c[0] = t0
	if n >= 1 {
		s.c[1] = t0.One()
	}
	return s
}

func sameOrder[T ring.Field[T]](op string, a, b Series[T]) error {
	if a.n != b.n {
		return &apoerr.AlgebraError{Op: op, Reason: "mismatched series orders"}
	}
	return nil
}

// Add returns a+b.
func Add[T ring.Field[T]](a, b Series[T]) (Series[T], error) {
	if err := sameOrder("add", a, b); err != nil {
		return Series[T]{}, err
	}
	out := New(a.n, a.zero())
	for i := 0; i <= a.n; i++ {
		out.c[i] = a.c[i].Add(b.c[i])
	}
	return out, nil
}

// Sub returns a-b.
func Sub[T ring.Field[T]](a, b Series[T]) (Series[T], error) {
	if err := sameOrder("sub", a, b); err != nil {
		return Series[T]{}, err
	}
	out := New(a.n, a.zero())
	for i := 0; i <= a.n; i++ {
		out.c[i] = a.c[i].Sub(b.c[i])
	}
	return out, nil
}

// Scale returns k·a.
func Scale[T ring.Field[T]](k float64, a Series[T]) Series[T] {
	out := New(a.n, a.zero())
	for i := 0; i <= a.n; i++ {
		out.c[i] = a.c[i].Scale(k)
	}
	return out
}

// Neg returns -a.
func Neg[T ring.Field[T]](a Series[T]) Series[T] { return Scale(-1, a) }

// Mul returns the truncated Cauchy product a·b.
func Mul[T ring.Field[T]](a, b Series[T]) (Series[T], error) {
	if err := sameOrder("mul", a, b); err != nil {
		return Series[T]{}, err
	}
	out := New(a.n, a.zero())
	for k := 0; k <= a.n; k++ {
		sum := a.zero()
		for i := 0; i <= k; i++ {
			sum = sum.Add(a.c[i].Mul(b.c[k-i]))
		}
		out.c[k] = sum
	}
	return out, nil
}

// Div returns a/b. Requires b's constant term to be invertible in T.
//
// Recurrence: h_0 = a_0/b_0; h_n = (a_n - Σ_{k=0}^{n-1} h_k·b_{n-k}) / b_0.
func Div[T ring.Field[T]](a, b Series[T]) (Series[T], error) {
	if err := sameOrder("div", a, b); err != nil {
		return Series[T]{}, err
	}
	out := New(a.n, a.zero())
	h0, err := a.c[0].Div(b.c[0])
	if err != nil {
		return Series[T]{}, err
	}
	out.c[0] = h0
	for nn := 1; nn <= a.n; nn++ {
		sum := a.c[nn]
		for k := 0; k < nn; k++ {
			sum = sum.Sub(out.c[k].Mul(b.c[nn-k]))
		}
		term, err := sum.Div(b.c[0])
		if err != nil {
			return Series[T]{}, err
		}
		out.c[nn] = term
	}
	return out, nil
}

// Sqrt returns √a. Requires a's constant term to be a valid domain point
// for T.Sqrt.
//
// Recurrence: h_0 = √a_0; h_n = (a_n - Σ_{k=1}^{n-1} h_k·h_{n-k}) / (2·h_0).
func Sqrt[T ring.Field[T]](a Series[T]) (Series[T], error) {
	out := New(a.n, a.zero())
	h0, err := a.c[0].Sqrt()
	if err != nil {
		return Series[T]{}, err
	}
	out.c[0] = h0
	twoH0 := h0.Scale(2)
	for nn := 1; nn <= a.n; nn++ {
		sum := a.zero()
		for k := 1; k < nn; k++ {
			sum = sum.Add(out.c[k].Mul(out.c[nn-k]))
		}
		num := a.c[nn].Sub(sum)
		term, err := num.Div(twoH0)
		if err != nil {
			return Series[T]{}, err
		}
		out.c[nn] = term
	}
	return out, nil
}

// Differentiate returns d/dt of a, as a series of the same order (the top
// coefficient is dropped, since d/dt(c_N t^N) would exceed the truncation
// order).
func Differentiate[T ring.Field[T]](a Series[T]) Series[T] {
	out := New(a.n, a.zero())
	for k := 0; k < a.n; k++ {
		out.c[k] = a.c[k+1].Scale(float64(k + 1))
	}
	return out
}

// Integrate returns ∫a dt with constant of integration c0, as a series of
// the same order: the k-th coefficient of the result equals a_{k-1}/k.
func Integrate[T ring.Field[T]](a Series[T], c0 T) Series[T] {
	out := New(a.n, a.zero())
	out.c[0] = c0
	for k := 1; k <= a.n; k++ {
		out.c[k] = a.c[k-1].Scale(1 / float64(k))
	}
	return out
}

// Evaluate evaluates a at t using Horner's scheme.
func Evaluate[T ring.Field[T]](a Series[T], t float64) T {
	v := a.c[a.n]
	for k := a.n - 1; k >= 0; k-- {
		v = v.Scale(t).Add(a.c[k])
	}
	return v
}

// PowInt raises a to a non-negative integer power by repeated squaring.
func PowInt[T ring.Field[T]](a Series[T], p int) (Series[T], error) {
	if p < 0 {
		return Series[T]{}, &apoerr.AlgebraError{Op: "pow", Reason: "negative integer exponent unsupported by PowInt"}
	}
	out := Const(a.n, a.zero(), a.zero().One())
	base := a
	for p > 0 {
		if p&1 == 1 {
			var err error
			out, err = Mul(out, base)
			if err != nil {
				return Series[T]{}, err
			}
		}
		var err error
		base, err = Mul(base, base)
		if err != nil {
			return Series[T]{}, err
		}
		p >>= 1
	}
	return out, nil
}

// Compose returns f(g(t)). Requires g's constant term to be zero, and
// requires f and g to share an order.
//
// Computed by Horner's scheme generalised to series: treat g as the
// "variable" and accumulate h = f_n; h = h·g + f_k for k = n-1 downto 0.
func Compose[T ring.Field[T]](f, g Series[T]) (Series[T], error) {
	if err := sameOrder("compose", f, g); err != nil {
		return Series[T]{}, err
	}
	if !g.c[0].IsZero() {
		return Series[T]{}, &apoerr.AlgebraError{Op: "compose", Reason: "inner series has non-zero constant term"}
	}
	h := Const(f.n, f.zero(), f.c[f.n])
	for k := f.n - 1; k >= 0; k-- {
		prod, err := Mul(h, g)
		if err != nil {
			return Series[T]{}, err
		}
		h, err = Add(prod, Const(f.n, f.zero(), f.c[k]))
		if err != nil {
			return Series[T]{}, err
		}
	}
	return h, nil
}
