package forcemodel

import (
	"github.com/ast-dyn/apophis/internal/bodies"
	"github.com/ast-dyn/apophis/ring"
	"github.com/gonum/matrix/mat64"
)

// lightspeedAUday is c expressed in AU/day, the unit system the
// right-hand side works in throughout.
const lightspeedAUday = 173.144632674

// BodyState is one massive body's precomputed state, sampled once at the
// step's start time and held fixed for the whole step: its own
// position/velocity (from the ephemeris, plain doubles since a massive
// body is never itself one of the jet's perturbed variables, so it
// carries no initial-condition sensitivity to track), its Newtonian
// acceleration from every other massive body, and the Newtonian
// potential (GM/r summed over every other massive body) at its
// location.
//
// Freezing Pos/Vel/Acc/Pot at t0 rather than re-evaluating them at
// t0+s for each Taylor coefficient k (see taylor.Step) is a deliberate,
// disclosed approximation, not a consequence of this being generic
// over T: see the note at taylor.Step.
type BodyState struct {
	Body   bodies.Body
	Pos    [3]float64 // AU
	Vel    [3]float64 // AU/day
	Acc    [3]float64 // AU/day^2, Newtonian acceleration from other massive bodies
	Pot    float64    // AU/day^2 * AU = AU^2/day^2, Newtonian potential from other massive bodies
	PoleT  float64    // days elapsed since the pole epoch, for FixedFrameRotation
}

// State is the asteroid's jet-transport state: position and velocity,
// plus the Yarkovsky and radiation-pressure scalars, carried as
// constants of motion so their sensitivity is tracked by the jet.
type State[T ring.Field[T]] struct {
	R    Vec3[T]
	V    Vec3[T]
	Yark T // Yarkovsky acceleration magnitude, AU/day^2
	Rad  T // radiation-pressure coefficient beta
}

// Deriv is the time derivative of State, the right-hand side's output.
type Deriv[T ring.Field[T]] struct {
	R    Vec3[T] // = V
	V    Vec3[T] // acceleration
	Yark T       // identically zero: a constant of motion
	Rad  T       // identically zero
}

func denseToArray(m *mat64.Dense) [9]float64 {
	var a [9]float64
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			a[3*i+j] = m.At(i, j)
		}
	}
	return a
}

// Eval computes dx/dt for the asteroid state s given the massive bodies'
// precomputed state bodies at the current Julian date, following section
// 4.D: pairwise Newtonian + EIH post-Newtonian acceleration, oblateness
// for bodies flagged Oblate, and the Yarkovsky/radiation-pressure
// non-gravitational terms.
func Eval[T ring.Field[T]](s State[T], bs []BodyState, sunGM float64) (Deriv[T], error) {
	proto := s.R[0]
	acc := vZero(proto)

	newtonian := make([]Vec3[T], len(bs))
	relPos := make([]Vec3[T], len(bs))
	rVals := make([]T, len(bs))

	for i, b := range bs {
		rel := vSub(s.R, vConst(proto, b.Pos))
		r, err := vNorm(rel)
		if err != nil {
			return Deriv[T]{}, err
		}
		r3 := r.Mul(r).Mul(r)
		mu := constT(proto, b.Body.GM)
		invR3, err := mu.Div(r3)
		if err != nil {
			return Deriv[T]{}, err
		}
		pairAcc := vScaleT(rel, invR3.Neg())
		newtonian[i] = pairAcc
		relPos[i] = rel
		rVals[i] = r
		acc = vAdd(acc, pairAcc)

		if b.Body.Oblate {
			oblAcc, err := oblateness(rel, r, b)
			if err != nil {
				return Deriv[T]{}, err
			}
			acc = vAdd(acc, oblAcc)
		}
	}

	eihAcc, err := eihCorrection(s, bs, relPos, rVals, newtonian, sunGM)
	if err != nil {
		return Deriv[T]{}, err
	}
	acc = vAdd(acc, eihAcc)

	sunIdx := -1
	for i, b := range bs {
		if b.Body.Name == "Sun" {
			sunIdx = i
			break
		}
	}
	if sunIdx >= 0 {
		sunRel := relPos[sunIdx]
		sunR := rVals[sunIdx]
		invSunR, err := proto.One().Div(sunR)
		if err != nil {
			return Deriv[T]{}, err
		}
		rHat := vScaleT(sunRel, invSunR)
		acc = vAdd(acc, vScaleT(rHat, s.Yark))
		radMag, err := constT(proto, sunGM).Div(sunR.Mul(sunR))
		if err != nil {
			return Deriv[T]{}, err
		}
		acc = vAdd(acc, vScaleT(rHat, s.Rad.Mul(radMag)))
	}

	return Deriv[T]{R: s.V, V: acc, Yark: proto.Zero(), Rad: proto.Zero()}, nil
}
