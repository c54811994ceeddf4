package series

import (
	"math"

	"github.com/ast-dyn/apophis/apoerr"
	"github.com/ast-dyn/apophis/ring"
)

// Elementary transcendental functions on Series[ring.Real]. These are
// needed by the plain-double UTS propagator (component A's contract) but
// never by the jet-transport right-hand side, which only composes +, -,
// *, /, sqrt; keeping them here rather than on the generic Field
// constraint avoids requiring every coefficient ring to define exp/log/
// trig, which jet.MTS has no use for.

// Exp returns exp(a) as a series. Uses the standard UTS recursion: since
// f=exp(a) satisfies f'=a'*f, the coefficients follow
// f_n = (1/n) * Σ_{k=0}^{n-1} (n-k)*a_{n-k}*f_k.
func Exp(a Series[ring.Real]) Series[ring.Real] {
	out := New(a.n, a.c[0])
	out.c[0] = ring.Real(math.Exp(float64(a.c[0])))
	for n := 1; n <= a.n; n++ {
		var sum ring.Real
		for k := 0; k < n; k++ {
			sum += ring.Real(n-k) * a.c[n-k] * out.c[k]
		}
		out.c[n] = sum.Scale(1 / float64(n))
	}
	return out
}

// Log returns log(a), requiring a's constant term to be strictly
// positive. Derived from f=log(a) satisfying a*f'=a', so
// f_n = (n*a_n - Σ_{k=1}^{n-1} k*f_k*a_{n-k}) / (n*a_0).
func Log(a Series[ring.Real]) (Series[ring.Real], error) {
	if a.c[0] <= 0 {
		return Series[ring.Real]{}, &apoerr.AlgebraError{Op: "log", Reason: "non-positive constant term"}
	}
	out := New(a.n, a.c[0])
	out.c[0] = ring.Real(math.Log(float64(a.c[0])))
	for n := 1; n <= a.n; n++ {
		sum := float64(n) * float64(a.c[n])
		for k := 1; k < n; k++ {
			sum -= float64(k) * float64(out.c[k]) * float64(a.c[n-k])
		}
		out.c[n] = ring.Real(sum / (float64(n) * float64(a.c[0])))
	}
	return out, nil
}

// SinCos returns (sin(a), cos(a)) simultaneously; computing them jointly
// is the standard UTS technique since s'=a'*c and c'=-a'*s couple the two
// recursions.
func SinCos(a Series[ring.Real]) (sin, cos Series[ring.Real]) {
	sin = New(a.n, a.c[0])
	cos = New(a.n, a.c[0])
	s0, c0 := math.Sincos(float64(a.c[0]))
	sin.c[0] = ring.Real(s0)
	cos.c[0] = ring.Real(c0)
	for n := 1; n <= a.n; n++ {
		var sSum, cSum ring.Real
		for k := 0; k < n; k++ {
			d := ring.Real(n - k)
			sSum += d * a.c[n-k] * cos.c[k]
			cSum += d * a.c[n-k] * sin.c[k]
		}
		sin.c[n] = sSum.Scale(1 / float64(n))
		cos.c[n] = cSum.Scale(-1 / float64(n))
	}
	return sin, cos
}

// Sin returns sin(a).
func Sin(a Series[ring.Real]) Series[ring.Real] {
	s, _ := SinCos(a)
	return s
}

// Cos returns cos(a).
func Cos(a Series[ring.Real]) Series[ring.Real] {
	_, c := SinCos(a)
	return c
}

// Atan returns atan(a). Derived from f=atan(a) satisfying
// (1+a^2)*f' = a'; the coefficients follow the same quotient recursion as
// Log once g=1+a^2 is formed.
func Atan(a Series[ring.Real]) (Series[ring.Real], error) {
	aSq, err := Mul(a, a)
	if err != nil {
		return Series[ring.Real]{}, err
	}
	g, err := Add(Const(a.n, a.c[0], ring.Real(1)), aSq)
	if err != nil {
		return Series[ring.Real]{}, err
	}
	out := New(a.n, a.c[0])
	out.c[0] = ring.Real(math.Atan(float64(a.c[0])))
	for n := 1; n <= a.n; n++ {
		sum := float64(n) * float64(a.c[n])
		for k := 1; k < n; k++ {
			sum -= float64(k) * float64(out.c[k]) * float64(g.c[n-k])
		}
		out.c[n] = ring.Real(sum / (float64(n) * float64(g.c[0])))
	}
	return out, nil
}

// Pow returns a^p for a real exponent p, requiring a's constant term to be
// strictly positive (computed as exp(p*log(a))). Non-negative integer
// exponents should use PowInt instead, which needs no sign restriction on
// the constant term.
func Pow(a Series[ring.Real], p float64) (Series[ring.Real], error) {
	la, err := Log(a)
	if err != nil {
		return Series[ring.Real]{}, err
	}
	return Exp(Scale(p, la)), nil
}
