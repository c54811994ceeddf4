// Package events implements component G: bracket detection and
// Newton-iteration root refinement of a user-supplied scalar event
// function against an accepted Taylor step's dense jet polynomial.
package events

import (
	"math"

	"github.com/ast-dyn/apophis/forcemodel"
	"github.com/ast-dyn/apophis/ring"
	"github.com/ast-dyn/apophis/series"
	"github.com/ast-dyn/apophis/taylor"
)

// GFunc is an event function written once against the series algebra:
// given the step's own dense jet polynomial (the asteroid's state as a
// function of the local step parameter s) and the corresponding time
// series t_k+s, it returns whether the event is armed and the scalar
// value to root-find, itself as a series in s. Because
// series.Series[ring.Real] satisfies ring.Field (series/field.go), a
// GFunc can be written using the same Vec3/dot-product helpers forcemodel
// uses, composing directly with the step polynomial with no separate
// "evaluate at a point" code path: evaluating the returned series at any
// s in [0, Δt] gives g at that point for free.
type GFunc func(x forcemodel.State[series.Series[ring.Real]], t series.Series[ring.Real]) (active bool, value series.Series[ring.Real])

// Detection is one recorded root: the crossing time, the asteroid's
// state there, and the (possibly differentiated) event value at the final
// iterate: within AbsTol of zero unless the bracket collapsed or the
// Newton iteration cap was reached first.
type Detection struct {
	Time  float64
	State forcemodel.State[ring.Real]
	Value float64
}

// Detector finds sign-changing roots of a GFunc's eventOrder-th
// derivative within accepted Taylor steps.
type Detector struct {
	G          GFunc
	EventOrder int // derivative order applied to g before root-finding; 0 finds zero-crossings, >0 finds extrema
	NewtonIter int
	AbsTol     float64
}

// NewDetector returns a Detector with sane defaults for newtonIter (10)
// and absTol (1e-10) if non-positive values are given.
func NewDetector(g GFunc, eventOrder, newtonIter int, absTol float64) *Detector {
	if newtonIter <= 0 {
		newtonIter = 10
	}
	if absTol <= 0 {
		absTol = 1e-10
	}
	return &Detector{G: g, EventOrder: eventOrder, NewtonIter: newtonIter, AbsTol: absTol}
}

func evaluateState(st forcemodel.State[series.Series[ring.Real]], s float64) forcemodel.State[ring.Real] {
	ev := func(ser series.Series[ring.Real]) ring.Real { return series.Evaluate(ser, s) }
	return forcemodel.State[ring.Real]{
		R:    forcemodel.Vec3[ring.Real]{ev(st.R[0]), ev(st.R[1]), ev(st.R[2])},
		V:    forcemodel.Vec3[ring.Real]{ev(st.V[0]), ev(st.V[1]), ev(st.V[2])},
		Yark: ev(st.Yark),
		Rad:  ev(st.Rad),
	}
}

// composed returns the eventOrder-th derivative of g(x(s), t_k+s) as an
// order-N series in s, along with whether the event is armed at the
// start of the step.
func (d *Detector) composed(rec taylor.StepRecord) (h series.Series[ring.Real], armed bool) {
	order := rec.State.R[0].Order()
	tSeries := series.Var(order, ring.Real(rec.T0))
	active, g := d.G(rec.State, tSeries)
	for i := 0; i < d.EventOrder; i++ {
		g = series.Differentiate(g)
	}
	return g, active
}

func sign(v float64) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}

// Detect examines one accepted Taylor step for an event crossing, per
// evaluate g at both ends of the step, and if the event is
// armed and the sign changes, refine the root by Newton iteration
// starting from linear interpolation, falling back to bisection
// whenever a Newton step would leave the current bracket (keeping the
// method globally convergent even where g's derivative is poorly
// scaled). Returns nil, nil if no event is found in this step.
func (d *Detector) Detect(rec taylor.StepRecord) (*Detection, error) {
	h, armed := d.composed(rec)
	if !armed {
		return nil, nil
	}
	lo, hi := 0.0, rec.Dt
	if hi < lo {
		lo, hi = hi, lo
	}
	gLo := float64(series.Evaluate(h, lo))
	gHi := float64(series.Evaluate(h, hi))
	if sign(gLo) == sign(gHi) {
		return nil, nil
	}

	hPrime := series.Differentiate(h)
	// Linear-interpolation starting guess.
	s := lo - gLo*(hi-lo)/(gHi-gLo)

	const machineTol = 1e-15
	for iter := 0; iter < d.NewtonIter; iter++ {
		gv := float64(series.Evaluate(h, s))
		if math.Abs(gv) < d.AbsTol || hi-lo < machineTol {
			break
		}
		dv := float64(series.Evaluate(hPrime, s))
		next := s
		if dv != 0 {
			next = s - gv/dv
		}
		if next <= lo || next >= hi {
			next = 0.5 * (lo + hi)
		}
		gNext := float64(series.Evaluate(h, next))
		if sign(gLo) != sign(gNext) {
			hi = next
			gHi = gNext
		} else {
			lo = next
			gLo = gNext
		}
		s = next
	}

	finalValue := float64(series.Evaluate(h, s))
	return &Detection{
		Time:  rec.T0 + s,
		State: evaluateState(rec.State, s),
		Value: finalValue,
	}, nil
}
