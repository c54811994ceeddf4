// Package taylor implements components E and F: the Taylor-coefficient
// step kernel and the adaptive integrator driver built on top of it.
package taylor

import (
	"math"

	"github.com/ast-dyn/apophis/forcemodel"
	"github.com/ast-dyn/apophis/ring"
	"github.com/ast-dyn/apophis/series"
)

// RHS is forcemodel's right-hand side lifted to the coefficient ring
// Series[T]. Because series.Series[T] itself satisfies ring.Field (see
// field.go), forcemodel.Eval and forcemodel.EvalParallel — written once
// against ring.Field[T] — can be instantiated directly at T=Series[U]
// with no series-aware rewrite: evaluating them on a partial state
// series at Taylor order k yields dx_k exactly.
type RHS[T ring.Field[T]] func(s forcemodel.State[series.Series[T]], bs []forcemodel.BodyState, sunGM float64) (forcemodel.Deriv[series.Series[T]], error)

// Generic is the "generic" mode RHS: forcemodel.Eval run on the lifted
// state, evaluating the full N-body/EIH/oblateness/non-gravitational
// right-hand side serially.
func Generic[T ring.Field[T]](s forcemodel.State[series.Series[T]], bs []forcemodel.BodyState, sunGM float64) (forcemodel.Deriv[series.Series[T]], error) {
	return forcemodel.Eval(s, bs, sunGM)
}

// Parsed is the "parsed/fused" mode RHS: forcemodel.EvalParallel, which
// partitions the pairwise body loop across workers before combining the
// EIH correction, sharing intermediate per-body quantities (relative
// position, distance, Newtonian acceleration) across the oblateness and
// relativistic terms in one fused pass rather than recomputing them
// serially. Both modes must be available and must agree within
// truncation error; TestGenericAndParsedAgree checks this.
func Parsed[T ring.Field[T]](s forcemodel.State[series.Series[T]], bs []forcemodel.BodyState, sunGM float64) (forcemodel.Deriv[series.Series[T]], error) {
	workers := len(bs)
	if workers < 1 {
		workers = 1
	}
	return forcemodel.EvalParallel(s, bs, sunGM, workers)
}

func flattenState[T ring.Field[T]](s forcemodel.State[series.Series[T]]) []series.Series[T] {
	return []series.Series[T]{s.R[0], s.R[1], s.R[2], s.V[0], s.V[1], s.V[2], s.Yark, s.Rad}
}

func unflattenState[T ring.Field[T]](c []series.Series[T]) forcemodel.State[series.Series[T]] {
	return forcemodel.State[series.Series[T]]{
		R:    forcemodel.Vec3[series.Series[T]]{c[0], c[1], c[2]},
		V:    forcemodel.Vec3[series.Series[T]]{c[3], c[4], c[5]},
		Yark: c[6],
		Rad:  c[7],
	}
}

func flattenDeriv[T ring.Field[T]](d forcemodel.Deriv[series.Series[T]]) []series.Series[T] {
	return []series.Series[T]{d.R[0], d.R[1], d.R[2], d.V[0], d.V[1], d.V[2], d.Yark, d.Rad}
}

// Step runs the order-N Taylor-coefficient recursion,
// starting from the asteroid's plain state x0 at the massive bodies'
// sampled snapshot bs (itself evaluated once at the start of the step;
// the jet only ever tracks the asteroid's own sensitivities, never the
// planets'), producing an order-N Series[T] for each of the asteroid's
// eight state components (position, velocity, Yarkovsky and radiation-
// pressure scalars) whose evaluation at local parameter s=Δt gives the
// state Δt after t0.
//
// At Taylor order k, f is evaluated on the partial state (coefficients
// 0..k already exact, k+1..N still zero); the right-hand side's own
// structure guarantees dx_k depends only on x's coefficients up to k,
// so x_{k+1} = dx_k/(k+1) is exact once computed.
//
// bs is sampled once at the step's start time t0 and reused unchanged
// across every k in the loop below, rather than being re-expressed as a
// series in the step-local parameter s so that each body's position
// would itself carry order-k sensitivity to s the way the asteroid's
// own state does. Ephemeris.Interpolant is already generic in its
// coefficient ring for exactly this reason, but wiring it through here
// requires forcemodel.BodyState to become generic over T the same way
// forcemodel.State already is, so that a body's position arrives
// pre-expanded as a local Taylor series (built from the interpolant's
// own piece polynomial, re-centered at t0 via an exact Horner shift, no
// jet sensitivity involved) instead of a plain double; that
// generalization touches every BodyState call site (forcemodel, the
// scenario sampler, the variational Jacobian, the CLI's wiring); left
// as a follow-up rather than bundled into this change.
//
// The adaptive step-size rule already keeps ‖x_N‖·Δt^N near εAbs, so
// steps shrink automatically wherever the asteroid's own curvature is
// large; away from a close encounter the planets move little over one
// such step relative to the leading Newtonian term's own magnitude, so
// the frozen-body approximation's error is small next to the order-N
// truncation error it is compared against, except possibly very close
// to a flyby, where the short steps the rule already selects limit the
// exposure.
func Step[T ring.Field[T]](f RHS[T], x0 forcemodel.State[T], bs []forcemodel.BodyState, sunGM float64, order int) (forcemodel.State[series.Series[T]], error) {
	proto := x0.R[0]
	lift := func(v T) series.Series[T] { return series.Const(order, proto, v) }
	c := []series.Series[T]{
		lift(x0.R[0]), lift(x0.R[1]), lift(x0.R[2]),
		lift(x0.V[0]), lift(x0.V[1]), lift(x0.V[2]),
		lift(x0.Yark), lift(x0.Rad),
	}

	for k := 0; k < order; k++ {
		d, err := f(unflattenState(c), bs, sunGM)
		if err != nil {
			return forcemodel.State[series.Series[T]]{}, err
		}
		dc := flattenDeriv(d)
		for i := range c {
			coeffs := append([]T(nil), c[i].Coeffs()...)
			coeffs[k+1] = dc[i].Coeff(k).Scale(1 / float64(k+1))
			c[i] = series.New(order, proto, coeffs...)
		}
	}
	return unflattenState(c), nil
}

// floor below which a coefficient magnitude is ignored when selecting
// the step size: components whose magnitudes fall below a floor are
// ignored.
const magnitudeFloor = 1e-300

// safetyFactor scales the raw step-size estimate, strictly less than 1.
const safetyFactor = 0.85

// topCoeffNorms returns the max-norm, over the eight state components,
// of the order-N and order-(N-1) Taylor coefficients.
func topCoeffNorms(x forcemodel.State[series.Series[ring.Real]], order int) (normN, normNm1 float64) {
	for _, si := range flattenState(x) {
		if a := math.Abs(float64(si.Coeff(order))); a > normN {
			normN = a
		}
		if a := math.Abs(float64(si.Coeff(order - 1))); a > normNm1 {
			normNm1 = a
		}
	}
	return normN, normNm1
}

// SelectStepSize implements the step-size rule: choose Δt so
// that ‖x_N‖·Δt^N ≈ εAbs and ‖x_{N-1}‖·Δt^{N-1} ≈ εAbs, take the minimum
// over both estimates, and apply a safety factor. Coefficients at or
// below magnitudeFloor are ignored since they carry no information
// about local truncation error.
func SelectStepSize(x forcemodel.State[series.Series[ring.Real]], order int, epsAbs float64) float64 {
	normN, normNm1 := topCoeffNorms(x, order)
	var candidates []float64
	if normN > magnitudeFloor {
		candidates = append(candidates, math.Pow(epsAbs/normN, 1/float64(order)))
	}
	if normNm1 > magnitudeFloor {
		candidates = append(candidates, math.Pow(epsAbs/normNm1, 1/float64(order-1)))
	}
	if len(candidates) == 0 {
		return 1.0
	}
	dt := candidates[0]
	for _, cand := range candidates[1:] {
		if cand < dt {
			dt = cand
		}
	}
	return dt * safetyFactor
}
