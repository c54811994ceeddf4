// Package ephemeris implements component C: a piecewise-polynomial
// time-series interpolant, generic over the coefficient ring so the same
// interpolated ephemeris value can be produced as a plain double, a UTS,
// an MTS, or a UTS-over-MTS jet, plus Source adapters that build such
// interpolants from a JPL binary kernel or from the meeus analytic
// planetary theory.
package ephemeris

import (
	"sort"

	"github.com/ast-dyn/apophis/apoerr"
	"github.com/ast-dyn/apophis/ring"
	"github.com/ast-dyn/apophis/series"
)

// Piece is one polynomial segment of an Interpolant: valid on [T0, T0+H),
// expressed as a local-parameter series in s = t - T0 (so the 0th
// coefficient is the value at the start of the piece).
type Piece[T ring.Field[T]] struct {
	T0 float64
	H  float64
	P  series.Series[T]
}

// Interpolant is a sequence of Pieces covering a contiguous time domain,
// ordered by increasing T0, looked up by binary search. Evaluation
// substitutes the local parameter s=t-T0 into the enclosing piece's
// series using the coefficient ring's own arithmetic, so the same
// Interpolant type serves plain doubles and jets alike.
type Interpolant[T ring.Field[T]] struct {
	pieces []Piece[T]
}

// New builds an Interpolant from pieces sorted by T0. The caller is
// responsible for ensuring pieces are contiguous (T0_{i+1} == T0_i + H_i);
// New does not stitch gaps.
func New[T ring.Field[T]](pieces []Piece[T]) *Interpolant[T] {
	sorted := make([]Piece[T], len(pieces))
	copy(sorted, pieces)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].T0 < sorted[j].T0 })
	return &Interpolant[T]{pieces: sorted}
}

// Domain returns the interpolant's valid time range [lo, hi].
func (ip *Interpolant[T]) Domain() (lo, hi float64) {
	if len(ip.pieces) == 0 {
		return 0, 0
	}
	last := ip.pieces[len(ip.pieces)-1]
	return ip.pieces[0].T0, last.T0 + last.H
}

// locate returns the index of the piece covering t via binary search,
// accepting the right endpoint of the last interval as belonging to the
// last piece (per the contract's "accepts the right endpoint of the last
// interval" rule), or an EphemerisOutOfDomain error if t falls outside
// the covered range.
func (ip *Interpolant[T]) locate(t float64) (int, error) {
	n := len(ip.pieces)
	if n == 0 {
		return 0, &apoerr.EphemerisOutOfDomain{Time: t}
	}
	lo, hi := ip.Domain()
	if t < lo || t > hi {
		return 0, &apoerr.EphemerisOutOfDomain{Time: t, DomainLo: lo, DomainHi: hi}
	}
	idx := sort.Search(n, func(i int) bool { return ip.pieces[i].T0+ip.pieces[i].H > t })
	if idx == n {
		idx = n - 1
	}
	return idx, nil
}

// Evaluate returns the interpolated value at time t, by substituting the
// local parameter s=t-T0 into the enclosing piece's series via
// series.Evaluate (which uses only the ring's Add/Scale, so this works
// identically whether T is ring.Real or jet.MTS).
func (ip *Interpolant[T]) Evaluate(t float64) (T, error) {
	idx, err := ip.locate(t)
	if err != nil {
		var zero T
		return zero, err
	}
	pc := ip.pieces[idx]
	return series.Evaluate(pc.P, t-pc.T0), nil
}

// Differentiate returns a new Interpolant whose piece polynomials are the
// term-wise derivatives of this one's, used to derive velocity from a
// position interpolant or acceleration from a velocity interpolant.
func (ip *Interpolant[T]) Differentiate() *Interpolant[T] {
	out := make([]Piece[T], len(ip.pieces))
	for i, pc := range ip.pieces {
		out[i] = Piece[T]{T0: pc.T0, H: pc.H, P: series.Differentiate(pc.P)}
	}
	return &Interpolant[T]{pieces: out}
}
