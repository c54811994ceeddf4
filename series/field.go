package series

// Field-interface methods for Series[T]: once these are defined, a
// Series[T] is itself a ring.Field[Series[T]], so any right-hand side
// written once against ring.Field[T] (forcemodel.Eval, in particular)
// can be instantiated directly at T=Series[U] with no bespoke
// series-aware wrapper. This is the mechanism behind the Taylor step
// kernel's "generic" mode: the same forcemodel.Eval that runs at
// T=ring.Real for the plain-double propagator and T=jet.MTS for jet
// transport also runs at T=Series[ring.Real] or T=Series[jet.MTS] to
// produce the order-by-order Taylor coefficients of the right-hand side.
//
// Add/Sub/Mul/Scale/Neg never fail in practice (orders are fixed by
// construction and always match within a single propagation), so a
// mismatch here reflects a real bug rather than a domain condition; it
// panics rather than threading an error through an interface that has
// no room for one.
import "github.com/ast-dyn/apophis/ring"

func (s Series[T]) Add(o Series[T]) Series[T] {
	out, err := Add(s, o)
	if err != nil {
		panic(err)
	}
	return out
}

func (s Series[T]) Sub(o Series[T]) Series[T] {
	out, err := Sub(s, o)
	if err != nil {
		panic(err)
	}
	return out
}

func (s Series[T]) Mul(o Series[T]) Series[T] {
	out, err := Mul(s, o)
	if err != nil {
		panic(err)
	}
	return out
}

func (s Series[T]) Div(o Series[T]) (Series[T], error) { return Div(s, o) }

func (s Series[T]) Sqrt() (Series[T], error) { return Sqrt(s) }

func (s Series[T]) Scale(k float64) Series[T] { return Scale(k, s) }

func (s Series[T]) Neg() Series[T] { return Neg(s) }

func (s Series[T]) Zero() Series[T] { return New(s.n, s.zero()) }

func (s Series[T]) One() Series[T] { return Const(s.n, s.zero(), s.zero().One()) }

// IsZero reports whether every coefficient is zero.
func (s Series[T]) IsZero() bool {
	for _, c := range s.c {
		if !c.IsZero() {
			return false
		}
	}
	return true
}

var _ ring.Field[Series[ring.Real]] = Series[ring.Real]{}
