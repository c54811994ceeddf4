package lyapunov

import (
	"github.com/ChristopherRabotin/ode"
	"github.com/gonum/matrix/mat64"

	"github.com/ast-dyn/apophis/forcemodel"
	"github.com/ast-dyn/apophis/ring"
	"github.com/ast-dyn/apophis/series"
	"github.com/ast-dyn/apophis/taylor"
)

// variational is an ode.Integrable propagating the 6x6 variational
// matrix Φ across one accepted Taylor step, Φ'=A(t)Φ, reading the
// asteroid's state at each RK4 substep off the step's own dense jet
// polynomial (rec.State) rather than re-deriving it, since the driver
// already computed it to machine precision for the step.
//
// Φ is integrated standalone via ode.RK4, decoupled from the orbit
// propagation (which the Taylor driver already performed), with the
// Jacobian supplied by automatic differentiation rather than a
// hand-derived two-body+J2 expression.
type variational struct {
	rec   taylor.StepRecord
	bs    []forcemodel.BodyState
	sunGM float64
	phi   *mat64.Dense
}

func (v *variational) stateAt(s float64) forcemodel.State[ring.Real] {
	ev := func(ser series.Series[ring.Real]) ring.Real { return series.Evaluate(ser, s) }
	return forcemodel.State[ring.Real]{
		R:    forcemodel.Vec3[ring.Real]{ev(v.rec.State.R[0]), ev(v.rec.State.R[1]), ev(v.rec.State.R[2])},
		V:    forcemodel.Vec3[ring.Real]{ev(v.rec.State.V[0]), ev(v.rec.State.V[1]), ev(v.rec.State.V[2])},
		Yark: ev(v.rec.State.Yark),
		Rad:  ev(v.rec.State.Rad),
	}
}

func (v *variational) GetState() []float64 {
	s := make([]float64, Dim*Dim)
	for i := 0; i < Dim; i++ {
		for j := 0; j < Dim; j++ {
			s[Dim*i+j] = v.phi.At(i, j)
		}
	}
	return s
}

func (v *variational) SetState(t float64, s []float64) {
	for i := 0; i < Dim; i++ {
		for j := 0; j < Dim; j++ {
			v.phi.Set(i, j, s[Dim*i+j])
		}
	}
}

func (v *variational) Stop(t float64) bool {
	if v.rec.Dt >= 0 {
		return t >= v.rec.Dt
	}
	return t <= v.rec.Dt
}

func (v *variational) Func(t float64, f []float64) []float64 {
	phi := mat64.NewDense(Dim, Dim, nil)
	for i := 0; i < Dim; i++ {
		for j := 0; j < Dim; j++ {
			phi.Set(i, j, f[Dim*i+j])
		}
	}
	a, err := Jacobian(v.stateAt(t), v.bs, v.sunGM)
	if err != nil {
		// The ode.Integrable contract has no error return; a Jacobian
		// failure here means the underlying force-model evaluation
		// itself failed, which forcemodel.Eval already reported once
		// for this same state when the Taylor driver took this step.
		panic(err)
	}
	var phiDot mat64.Dense
	phiDot.Mul(a, phi)
	fDot := make([]float64, Dim*Dim)
	for i := 0; i < Dim; i++ {
		for j := 0; j < Dim; j++ {
			fDot[Dim*i+j] = phiDot.At(i, j)
		}
	}
	return fDot
}

// substeps is the number of RK4 substeps used to integrate Φ across one
// Taylor macro-step; the macro-step itself can be many days, so Φ is
// refined by fixed subdivision rather than inheriting the driver's own
// (much coarser, since it targets the state error not the STM error)
// step size.
const substeps = 8

// PropagateMatrix advances the variational matrix phi0 across one
// accepted Taylor step, returning Φ(dt)·phi0.
func PropagateMatrix(phi0 *mat64.Dense, rec taylor.StepRecord, bs []forcemodel.BodyState, sunGM float64) *mat64.Dense {
	phi := mat64.DenseCopyOf(phi0)
	v := &variational{rec: rec, bs: bs, sunGM: sunGM, phi: phi}
	substep := rec.Dt / substeps
	ode.NewRK4(0, substep, v).Solve()
	return v.phi
}
