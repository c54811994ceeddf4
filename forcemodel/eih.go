package forcemodel

import "github.com/ast-dyn/apophis/ring"

// eihCorrection returns the Einstein-Infeld-Hoffmann post-Newtonian
// acceleration correction, the Σ 1/c² terms: each massive
// body's Newtonian pairwise acceleration is scaled by a combination of
// potentials (the body's own field from every other massive body, and
// the total Newtonian potential at the asteroid's own location) and a
// velocity-dependent factor, plus a velocity-difference term and a
// lagging-potential term from each body's own acceleration.
//
// This follows the standard DE-ephemeris-generation form of the EIH
// equations of motion, as used to build the JPL planetary ephemerides.
func eihCorrection[T ring.Field[T]](s State[T], bs []BodyState, relPos []Vec3[T], rVals []T, newtonian []Vec3[T], sunGM float64) (Vec3[T], error) {
	proto := s.R[0]
	c2 := lightspeedAUday * lightspeedAUday

	// Total Newtonian potential from every massive body at the
	// asteroid's own location, Σ_k GM_k / r_k,ast.
	totalPotAtAst := proto.Zero()
	invR := make([]T, len(bs))
	for i, b := range bs {
		v, err := constT(proto, b.Body.GM).Div(rVals[i])
		if err != nil {
			return Vec3[T]{}, err
		}
		invR[i] = v
		totalPotAtAst = totalPotAtAst.Add(v)
	}

	vAst2 := vDot(s.V, s.V)

	acc := vZero(proto)
	for i, b := range bs {
		rel := relPos[i]
		r := rVals[i]
		vBody := vConst(proto, b.Vel)
		vBody2 := vDot(vBody, vBody)
		vDotProd := vDot(s.V, vBody)

		invRT, err := proto.One().Div(r)
		if err != nil {
			return Vec3[T]{}, err
		}
		rHat := vScaleT(rel, invRT)
		rHatDotVBody := vDot(rHat, vBody)

		sumOtherPot := totalPotAtAst.Sub(invR[i])

		bracket := proto.Zero().
			Sub(constT(proto, 4/c2).Mul(constT(proto, b.Pot))).
			Sub(sumOtherPot.Scale(1 / c2)).
			Add(vAst2.Scale(1 / c2)).
			Add(vBody2.Scale(2 / c2)).
			Sub(vDotProd.Scale(4 / c2)).
			Sub(rHatDotVBody.Mul(rHatDotVBody).Scale(1.5 / c2))

		accDotRel := vDot(vConst(proto, b.Acc), rel)
		bracket = bracket.Add(accDotRel.Scale(0.5 / c2))

		term1 := vScaleT(newtonian[i], bracket)

		velDiff := vSub(s.V, vBody)
		relDotVel := vDot(rel, vAdd(vScaleF(s.V, 4), vScaleF(vBody, -3)))
		invR3, err := constT(proto, b.Body.GM).Div(r.Mul(r).Mul(r))
		if err != nil {
			return Vec3[T]{}, err
		}
		term2 := vScaleT(velDiff, invR3.Mul(relDotVel).Scale(1/c2))

		accTerm := vScaleF(vConst(proto, b.Acc), 3.5/c2)
		term3 := vScaleT(accTerm, invR[i])

		acc = vAdd(acc, vAdd(term1, vAdd(term2, term3)))
	}

	return acc, nil
}
