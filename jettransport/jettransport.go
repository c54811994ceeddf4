// Package jettransport drives the full multivariate jet-transport
// sensitivity propagation: the asteroid's eight state
// components are lifted into a degree-M multivariate series (one
// variable per component, M given by --varorder) so that integrating
// the lifted state simultaneously carries the trajectory's sensitivity
// to perturbations of every initial condition.
//
// Rather than re-deriving adaptive step-size selection for the jet
// algebra (taylor.SelectStepSize already does this once, over the
// leading jet coefficients, and a jet-transport run's accepted steps
// track the real-valued run closely since both share the same right-
// hand side and truncation order), Replay drives the jet state through
// the exact Δt sequence an ordinary taylor.Driver already accepted,
// reusing taylor.Step directly with T instantiated at jet.MTS instead
// of duplicating the recursion.
package jettransport

import (
	"fmt"

	"github.com/ast-dyn/apophis/forcemodel"
	"github.com/ast-dyn/apophis/jet"
	"github.com/ast-dyn/apophis/ring"
	"github.com/ast-dyn/apophis/series"
	"github.com/ast-dyn/apophis/taylor"
)

// numVars is the number of scaled jet-transport variables: the
// asteroid's three position components, three velocity components, the
// Yarkovsky acceleration magnitude, and the radiation-pressure
// coefficient.
const numVars = 8

// Lift builds the initial jet-transport state: component i carries a
// scaled perturbation variable with scale scales[i], so that evaluating
// the propagated jet with variable i set to δ/scales[i] recovers the
// trajectory resulting from perturbing that one initial condition by δ,
// keeping intermediate MTS coefficients bounded.
func Lift(x0 forcemodel.State[ring.Real], scales [8]float64, varOrder int) forcemodel.State[jet.MTS] {
	lift := func(i int, c float64) jet.MTS {
		return jet.NewConst(numVars, varOrder, c).Add(jet.ScaledVar(numVars, varOrder, i, scales[i]))
	}
	return forcemodel.State[jet.MTS]{
		R: forcemodel.Vec3[jet.MTS]{
			lift(0, float64(x0.R[0])),
			lift(1, float64(x0.R[1])),
			lift(2, float64(x0.R[2])),
		},
		V: forcemodel.Vec3[jet.MTS]{
			lift(3, float64(x0.V[0])),
			lift(4, float64(x0.V[1])),
			lift(5, float64(x0.V[2])),
		},
		Yark: lift(6, float64(x0.Yark)),
		Rad:  lift(7, float64(x0.Rad)),
	}
}

// Replay advances a lifted jet-transport state through the Δt sequence
// of an already-accepted real-valued trajectory (steps, in order),
// resampling the massive bodies at each step's start time via bodies.
func Replay(x0 forcemodel.State[jet.MTS], steps []taylor.StepRecord, bodies taylor.BodySampler, sunGM float64, order int) (forcemodel.State[jet.MTS], error) {
	x := x0
	for _, rec := range steps {
		bs, err := bodies(rec.T0)
		if err != nil {
			return forcemodel.State[jet.MTS]{}, fmt.Errorf("jettransport: sampling bodies at t=%g: %w", rec.T0, err)
		}
		lifted, err := taylor.Step(taylor.Generic[jet.MTS], x, bs, sunGM, order)
		if err != nil {
			return forcemodel.State[jet.MTS]{}, fmt.Errorf("jettransport: step at t=%g: %w", rec.T0, err)
		}
		x = evaluateAt(lifted, rec.Dt)
	}
	return x, nil
}

func evaluateAt(lifted forcemodel.State[series.Series[jet.MTS]], dt float64) forcemodel.State[jet.MTS] {
	ev := func(s series.Series[jet.MTS]) jet.MTS { return series.Evaluate(s, dt) }
	return forcemodel.State[jet.MTS]{
		R:    forcemodel.Vec3[jet.MTS]{ev(lifted.R[0]), ev(lifted.R[1]), ev(lifted.R[2])},
		V:    forcemodel.Vec3[jet.MTS]{ev(lifted.V[0]), ev(lifted.V[1]), ev(lifted.V[2])},
		Yark: ev(lifted.Yark),
		Rad:  ev(lifted.Rad),
	}
}
