// Package forcemodel implements component D: the relativistic N-body
// right-hand side driving the asteroid's Taylor-coefficient recursion,
// written once against ring.Field[T] so instantiating T with ring.Real,
// jet.MTS, or series.Series[jet.MTS] all reuse the same code.
package forcemodel

import "github.com/ast-dyn/apophis/ring"

// Vec3 is a 3-vector over coefficient ring T.
type Vec3[T ring.Field[T]] [3]T

func vAdd[T ring.Field[T]](a, b Vec3[T]) Vec3[T] {
	return Vec3[T]{a[0].Add(b[0]), a[1].Add(b[1]), a[2].Add(b[2])}
}

func vSub[T ring.Field[T]](a, b Vec3[T]) Vec3[T] {
	return Vec3[T]{a[0].Sub(b[0]), a[1].Sub(b[1]), a[2].Sub(b[2])}
}

func vScaleT[T ring.Field[T]](a Vec3[T], k T) Vec3[T] {
	return Vec3[T]{a[0].Mul(k), a[1].Mul(k), a[2].Mul(k)}
}

func vScaleF[T ring.Field[T]](a Vec3[T], k float64) Vec3[T] {
	return Vec3[T]{a[0].Scale(k), a[1].Scale(k), a[2].Scale(k)}
}

func vDot[T ring.Field[T]](a, b Vec3[T]) T {
	return a[0].Mul(b[0]).Add(a[1].Mul(b[1])).Add(a[2].Mul(b[2]))
}

func vZero[T ring.Field[T]](proto T) Vec3[T] {
	z := proto.Zero()
	return Vec3[T]{z, z, z}
}

// constT returns the ring element representing the real value v, built
// as v·1 so it carries the correct shape (e.g. zero perturbation
// sensitivity) for whichever ring T actually is.
func constT[T ring.Field[T]](proto T, v float64) T {
	return proto.One().Scale(v)
}

func vConst[T ring.Field[T]](proto T, v [3]float64) Vec3[T] {
	return Vec3[T]{constT(proto, v[0]), constT(proto, v[1]), constT(proto, v[2])}
}

// vNorm returns |a|, requiring a's squared norm to be a valid Sqrt
// domain point (strictly positive constant term) for T.
func vNorm[T ring.Field[T]](a Vec3[T]) (T, error) {
	r2 := vDot(a, a)
	return r2.Sqrt()
}

// rotate applies a 3x3 row-major rotation (given as 9 float64 entries) to
// a ring-valued vector, used to carry oblateness accelerations between
// the inertial and a body's fixed frame without requiring the ring T to
// support mat64 multiplication directly.
func rotate[T ring.Field[T]](m [9]float64, v Vec3[T]) Vec3[T] {
	return Vec3[T]{
		v[0].Scale(m[0]).Add(v[1].Scale(m[1])).Add(v[2].Scale(m[2])),
		v[0].Scale(m[3]).Add(v[1].Scale(m[4])).Add(v[2].Scale(m[5])),
		v[0].Scale(m[6]).Add(v[1].Scale(m[7])).Add(v[2].Scale(m[8])),
	}
}
