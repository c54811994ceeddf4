// Package lyapunov implements component H: the variational equations and
// the finite-time Lyapunov-spectrum estimator built on top of them.
package lyapunov

import (
	"github.com/ast-dyn/apophis/forcemodel"
	"github.com/ast-dyn/apophis/jet"
	"github.com/ast-dyn/apophis/ring"
	"github.com/gonum/matrix/mat64"
)

// Dim is the dimension of the variational phase space tracked by the
// Lyapunov estimator: position and velocity. Yark and Rad are carried as
// parameters of the force model, not as dynamical variables whose own
// divergence is of interest, so they are held fixed (not perturbed) when
// building the Jacobian.
const Dim = 6

// Jacobian returns the 6x6 matrix ∂(R',V')/∂(R,V) of the asteroid's
// right-hand side at state x, given the massive bodies' precomputed
// state bs, via automatic differentiation: each of the six phase-space
// coordinates is lifted to a degree-1 multivariate series in six
// variables (jet.ScaledVar), forcemodel.Eval is run once on the lifted
// state, and the resulting derivative's linear coefficients are read off
// directly as Jacobian entries.
//
// Deriving this Jacobian by hand would need re-deriving term by term for
// every force-model contribution (EIH, J3/J4, Yarkovsky, radiation
// pressure); automatic differentiation reuses forcemodel.Eval exactly as
// written, with no second derivation.
func Jacobian(x forcemodel.State[ring.Real], bs []forcemodel.BodyState, sunGM float64) (*mat64.Dense, error) {
	lift := func(v ring.Real, i int) jet.MTS {
		return jet.NewConst(Dim, 1, float64(v)).Add(jet.ScaledVar(Dim, 1, i, 1))
	}
	lifted := forcemodel.State[jet.MTS]{
		R:    forcemodel.Vec3[jet.MTS]{lift(x.R[0], 0), lift(x.R[1], 1), lift(x.R[2], 2)},
		V:    forcemodel.Vec3[jet.MTS]{lift(x.V[0], 3), lift(x.V[1], 4), lift(x.V[2], 5)},
		Yark: jet.NewConst(Dim, 1, float64(x.Yark)),
		Rad:  jet.NewConst(Dim, 1, float64(x.Rad)),
	}
	d, err := forcemodel.Eval(lifted, bs, sunGM)
	if err != nil {
		return nil, err
	}
	rows := []jet.MTS{d.R[0], d.R[1], d.R[2], d.V[0], d.V[1], d.V[2]}
	a := mat64.NewDense(Dim, Dim, nil)
	for i, row := range rows {
		for j := 0; j < Dim; j++ {
			exp := make([]int8, Dim)
			exp[j] = 1
			a.Set(i, j, row.Coeff(exp))
		}
	}
	return a, nil
}
