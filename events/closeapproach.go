package events

import (
	"github.com/ast-dyn/apophis/forcemodel"
	"github.com/ast-dyn/apophis/ring"
	"github.com/ast-dyn/apophis/series"
)

// linearLift builds a degree-N series linear in the local step
// parameter s, matching value v and rate of change dv at s=0 and
// carrying no higher-order terms. Over one accepted Taylor step the
// bracket width is already bounded by the same truncation tolerance
// governing the asteroid's own motion, so approximating a slowly-moving
// massive body's position by its local tangent line is accurate to the
// same order the step itself is trusted to.
func linearLift(order int, v, dv float64) series.Series[ring.Real] {
	return series.New(order, ring.Real(0), ring.Real(v), ring.Real(dv))
}

func mustSub(a, b series.Series[ring.Real]) series.Series[ring.Real] {
	out, err := series.Sub(a, b)
	if err != nil {
		panic(err)
	}
	return out
}

func mustMul(a, b series.Series[ring.Real]) series.Series[ring.Real] {
	out, err := series.Mul(a, b)
	if err != nil {
		panic(err)
	}
	return out
}

// CloseApproachG builds a close-approach event function,
// g = (x − x_earth)·(v − v_earth): the dot product of the asteroid's
// relative position and relative velocity with a massive body, whose
// zero crossing with EventOrder=0 marks a local extremum of the
// separation distance (a close approach), not a sign change of distance
// itself; passing eventOrder=0 to NewDetector is correct here because g
// is already the derivative of the squared separation distance up to a
// factor of two.
//
// bodyPos/bodyVel are the body's position and velocity (AU, AU/day) at
// the step's start time t0; they are held fixed-plus-linear across the
// step via linearLift rather than re-sampled from the ephemeris inside
// the step, since the driver only hands GFunc the asteroid's own dense
// polynomial.
func CloseApproachG(bodyPos, bodyVel [3]float64) GFunc {
	return func(x forcemodel.State[series.Series[ring.Real]], t series.Series[ring.Real]) (bool, series.Series[ring.Real]) {
		order := x.R[0].Order()
		relR := [3]series.Series[ring.Real]{
			mustSub(x.R[0], linearLift(order, bodyPos[0], bodyVel[0])),
			mustSub(x.R[1], linearLift(order, bodyPos[1], bodyVel[1])),
			mustSub(x.R[2], linearLift(order, bodyPos[2], bodyVel[2])),
		}
		relV := [3]series.Series[ring.Real]{
			mustSub(x.V[0], linearLift(order, bodyVel[0], 0)),
			mustSub(x.V[1], linearLift(order, bodyVel[1], 0)),
			mustSub(x.V[2], linearLift(order, bodyVel[2], 0)),
		}
		g := mustMul(relR[0], relV[0])
		g = mustAdd(g, mustMul(relR[1], relV[1]))
		g = mustAdd(g, mustMul(relR[2], relV[2]))
		return true, g
	}
}

func mustAdd(a, b series.Series[ring.Real]) series.Series[ring.Real] {
	out, err := series.Add(a, b)
	if err != nil {
		panic(err)
	}
	return out
}
