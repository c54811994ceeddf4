package lyapunov

import (
	"math"

	"github.com/gonum/matrix/mat64"

	"github.com/ast-dyn/apophis/forcemodel"
	"github.com/ast-dyn/apophis/taylor"
)

// Spectrum accumulates the finite-time Lyapunov exponents of the
// asteroid's trajectory via the Benettin method: a basis of tangent
// vectors Q (initially the identity) is carried forward alongside the
// trajectory through the variational matrix of each accepted step, then
// periodically re-orthonormalized; the log of each column's
// pre-normalization norm accumulates into that exponent's running sum.
type Spectrum struct {
	q          *mat64.Dense
	logSums    []float64
	elapsed    float64
	sinceReorth int
	reorthEvery int
}

// NewSpectrum returns a Spectrum starting from the identity basis,
// re-orthonormalizing every reorthEvery accepted steps (per section
// 4.H's "periodic" re-orthonormalization; reorthEvery=1 re-orthonormalizes
// after every single step, the safest and most common choice since the
// tangent vectors can otherwise align within only a handful of steps).
func NewSpectrum(reorthEvery int) *Spectrum {
	if reorthEvery < 1 {
		reorthEvery = 1
	}
	q := mat64.NewDense(Dim, Dim, nil)
	for i := 0; i < Dim; i++ {
		q.Set(i, i, 1)
	}
	return &Spectrum{q: q, logSums: make([]float64, Dim), reorthEvery: reorthEvery}
}

// Update advances the spectrum by one accepted Taylor step: propagates
// the current basis through the step's variational matrix, then (every
// reorthEvery steps) re-orthonormalizes via modified Gram-Schmidt,
// accumulating the log of each column's norm before normalization.
func (sp *Spectrum) Update(rec taylor.StepRecord, bs []forcemodel.BodyState, sunGM float64) {
	sp.q = PropagateMatrix(sp.q, rec, bs, sunGM)
	sp.elapsed += math.Abs(rec.Dt)
	sp.sinceReorth++
	if sp.sinceReorth >= sp.reorthEvery {
		sp.reorthonormalize()
		sp.sinceReorth = 0
	}
}

// reorthonormalize runs modified Gram-Schmidt over sp.q's columns,
// accumulating log(norm) per column into logSums before replacing each
// column with its unit vector.
func (sp *Spectrum) reorthonormalize() {
	cols := make([][]float64, Dim)
	for j := 0; j < Dim; j++ {
		col := make([]float64, Dim)
		for i := 0; i < Dim; i++ {
			col[i] = sp.q.At(i, j)
		}
		cols[j] = col
	}
	for j := 0; j < Dim; j++ {
		for k := 0; k < j; k++ {
			proj := dot(cols[k], cols[j])
			for i := 0; i < Dim; i++ {
				cols[j][i] -= proj * cols[k][i]
			}
		}
		n := math.Sqrt(dot(cols[j], cols[j]))
		if n <= 0 {
			n = 1e-300
		}
		sp.logSums[j] += math.Log(n)
		for i := 0; i < Dim; i++ {
			cols[j][i] /= n
		}
	}
	for j := 0; j < Dim; j++ {
		for i := 0; i < Dim; i++ {
			sp.q.Set(i, j, cols[j][i])
		}
	}
}

func dot(a, b []float64) float64 {
	var s float64
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}

// Exponents returns the current finite-time Lyapunov exponent estimate
// for each of the Dim directions, λ_i = logSums[i] / elapsed, sorted by
// the caller if a particular ordering is needed (Update's Gram-Schmidt
// order tracks the initial basis ordering, largest exponent first by
// convention since the first column accumulates the fastest-growing
// direction's stretching alone).
func (sp *Spectrum) Exponents() []float64 {
	out := make([]float64, Dim)
	if sp.elapsed == 0 {
		return out
	}
	for i, s := range sp.logSums {
		out[i] = s / sp.elapsed
	}
	return out
}

// Elapsed returns the total (unsigned) time accumulated so far.
func (sp *Spectrum) Elapsed() float64 { return sp.elapsed }
