package ephemeris

import (
	"github.com/ast-dyn/apophis/ring"
	"github.com/ast-dyn/apophis/series"
)

// Source supplies sampled position/velocity state for a named body at a
// given Julian date, in astronomical units and AU/day, the units the
// N-body right-hand side is written in. FromJPL and FromMeeus are the two
// concrete implementations.
type Source interface {
	State(jd float64, body string) (pos, vel [3]float64, err error)
	Domain() (lo, hi float64)
}

// Vector3 bundles the three coordinate Interpolants that together
// represent one body's position (or velocity) ephemeris.
type Vector3 struct {
	X, Y, Z *Interpolant[ring.Real]
}

// Evaluate returns the interpolated 3-vector at time t.
func (v Vector3) Evaluate(t float64) ([3]float64, error) {
	x, err := v.X.Evaluate(t)
	if err != nil {
		return [3]float64{}, err
	}
	y, err := v.Y.Evaluate(t)
	if err != nil {
		return [3]float64{}, err
	}
	z, err := v.Z.Evaluate(t)
	if err != nil {
		return [3]float64{}, err
	}
	return [3]float64{float64(x), float64(y), float64(z)}, nil
}

// Differentiate returns the term-wise derivative of each coordinate,
// used to derive an acceleration interpolant from a velocity one.
func (v Vector3) Differentiate() Vector3 {
	return Vector3{X: v.X.Differentiate(), Y: v.Y.Differentiate(), Z: v.Z.Differentiate()}
}

// Build samples src for body at the Julian dates in nodes (must be
// strictly increasing and cover at least two points) and fits a cubic
// Hermite piece per interval, matching position and velocity at both
// endpoints of the piece — the position/velocity pairs a Source already
// supplies make Hermite matching the natural fit, cheaper than fitting a
// higher-order piece from position samples alone and differentiating
// twice. The resulting position Vector3, and its exact term-wise
// derivative (the velocity Vector3), are both returned.
func Build(src Source, body string, nodes []float64) (pos, vel Vector3, err error) {
	n := len(nodes)
	xPieces := make([]Piece[ring.Real], 0, n-1)
	yPieces := make([]Piece[ring.Real], 0, n-1)
	zPieces := make([]Piece[ring.Real], 0, n-1)

	for i := 0; i < n-1; i++ {
		t0, t1 := nodes[i], nodes[i+1]
		h := t1 - t0
		p0, v0, serr := src.State(t0, body)
		if serr != nil {
			return Vector3{}, Vector3{}, serr
		}
		p1, v1, serr := src.State(t1, body)
		if serr != nil {
			return Vector3{}, Vector3{}, serr
		}
		for axis := 0; axis < 3; axis++ {
			c0 := p0[axis]
			c1 := v0[axis]
			c2 := 3*(p1[axis]-p0[axis])/(h*h) - (2*v0[axis]+v1[axis])/h
			c3 := 2*(p0[axis]-p1[axis])/(h*h*h) + (v0[axis]+v1[axis])/(h*h)
			sc := series.New(3, ring.Real(0), ring.Real(c0), ring.Real(c1), ring.Real(c2), ring.Real(c3))
			piece := Piece[ring.Real]{T0: t0, H: h, P: sc}
			switch axis {
			case 0:
				xPieces = append(xPieces, piece)
			case 1:
				yPieces = append(yPieces, piece)
			case 2:
				zPieces = append(zPieces, piece)
			}
		}
	}

	pos = Vector3{X: New(xPieces), Y: New(yPieces), Z: New(zPieces)}
	vel = pos.Differentiate()
	return pos, vel, nil
}
