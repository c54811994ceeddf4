// Package scenario wires an ephemeris.Source into the
// taylor.BodySampler the integrator driver needs: at each requested
// Julian date it evaluates every configured massive body's
// position/velocity interpolant, then precomputes the pairwise
// Newtonian acceleration and potential the N-body right-hand side
// (component D) expects each BodyState to already carry, since those
// depend only on the massive bodies' mutual geometry, never on the
// asteroid's own jet state.
package scenario

import (
	"fmt"
	"math"

	"github.com/ast-dyn/apophis/ephemeris"
	"github.com/ast-dyn/apophis/forcemodel"
	"github.com/ast-dyn/apophis/internal/bodies"
)

// Planets is the default massive-body set: the Sun plus the eight
// planets, the set the solar-system ephemeris file is assumed to cover.
var Planets = []bodies.Body{
	bodies.Sun, bodies.Mercury, bodies.Venus, bodies.Earth, bodies.Mars,
	bodies.Jupiter, bodies.Saturn, bodies.Uranus, bodies.Neptune,
}

// Sampler builds forcemodel.BodyState slices on demand by evaluating
// one ephemeris.Vector3 pair (position, velocity) per configured body.
type Sampler struct {
	bodyList []bodies.Body
	pos      []ephemeris.Vector3
	vel      []ephemeris.Vector3
	epoch    float64 // JD of the pole-orientation epoch, for PoleT
}

// NewSampler builds the position/velocity interpolants for every body
// in bodyList from src, sampled at the Julian dates in nodes (passed
// through to ephemeris.Build), and returns a Sampler ready to serve
// taylor.BodySampler calls.
func NewSampler(src ephemeris.Source, bodyList []bodies.Body, nodes []float64, epoch float64) (*Sampler, error) {
	pos := make([]ephemeris.Vector3, len(bodyList))
	vel := make([]ephemeris.Vector3, len(bodyList))
	for i, b := range bodyList {
		p, v, err := ephemeris.Build(src, b.Name, nodes)
		if err != nil {
			return nil, fmt.Errorf("scenario: building ephemeris for %s: %w", b.Name, err)
		}
		pos[i] = p
		vel[i] = v
	}
	return &Sampler{bodyList: bodyList, pos: pos, vel: vel, epoch: epoch}, nil
}

func sub(a, b [3]float64) [3]float64 {
	return [3]float64{a[0] - b[0], a[1] - b[1], a[2] - b[2]}
}

func norm(v [3]float64) float64 {
	return v[0]*v[0] + v[1]*v[1] + v[2]*v[2]
}

// At evaluates every configured body's position/velocity at Julian date
// jd, then fills in each BodyState's Acc and Pot as the Newtonian
// pairwise sum over every other configured body, with self-terms
// suppressed.
func (s *Sampler) At(jd float64) ([]forcemodel.BodyState, error) {
	n := len(s.bodyList)
	pos := make([][3]float64, n)
	vel := make([][3]float64, n)
	for i := range s.bodyList {
		p, err := s.pos[i].Evaluate(jd)
		if err != nil {
			return nil, fmt.Errorf("scenario: position of %s at jd=%g: %w", s.bodyList[i].Name, jd, err)
		}
		v, err := s.vel[i].Evaluate(jd)
		if err != nil {
			return nil, fmt.Errorf("scenario: velocity of %s at jd=%g: %w", s.bodyList[i].Name, jd, err)
		}
		pos[i] = p
		vel[i] = v
	}

	out := make([]forcemodel.BodyState, n)
	for i, b := range s.bodyList {
		var acc [3]float64
		var pot float64
		for j, ob := range s.bodyList {
			if i == j {
				continue
			}
			rel := sub(pos[j], pos[i])
			r2 := norm(rel)
			r := math.Sqrt(r2)
			invR3 := ob.GM / (r2 * r)
			acc[0] += rel[0] * invR3
			acc[1] += rel[1] * invR3
			acc[2] += rel[2] * invR3
			pot += ob.GM / r
		}
		out[i] = forcemodel.BodyState{
			Body:  b,
			Pos:   pos[i],
			Vel:   vel[i],
			Acc:   acc,
			Pot:   pot,
			PoleT: jd - s.epoch,
		}
	}
	return out, nil
}
