// Package ring defines the algebraic contract the series package needs from
// a coefficient type in order to generalise the univariate truncated power
// series algebra to any coefficient ring (the multivariate jet type, in
// particular): the right-hand side, and the series algebra it lives in, is
// implemented once against Field[T] and instantiated for T=Real (the plain
// integrator) and T=jet.MTS (jet transport) without duplication.
package ring

// Field is the coefficient-ring contract a series.Series[T] needs: the four
// arithmetic operations, the two operations (Sqrt, Div) whose domain can be
// violated, and the handful of structural queries (Zero, One, IsZero)
// needed to build and truncate series without a separate factory type.
type Field[T any] interface {
	Add(T) T
	Sub(T) T
	Mul(T) T
	Div(T) (T, error)
	Sqrt() (T, error)
	Scale(float64) T
	Neg() T
	Zero() T
	One() T
	IsZero() bool
}
