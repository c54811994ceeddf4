package forcemodel

import (
	"github.com/ast-dyn/apophis/ring"
)

// oblateness returns the J2(/J3/J4) acceleration on the asteroid due to
// body b, given the asteroid-relative-to-body vector rel (inertial
// frame, AU) and its norm r. The acceleration is computed in the body's
// fixed frame (where the standard zonal-harmonic formulas apply) and
// rotated back to the inertial frame, generalized to any oblate body
// and to J3/J4 rather than an Earth-only J2 term.
func oblateness[T ring.Field[T]](rel Vec3[T], r T, b BodyState) (Vec3[T], error) {
	proto := rel[0]
	rot := denseToArray(b.Body.FixedFrameRotation(b.PoleT))
	// Inverse of an orthonormal rotation is its transpose.
	rotInv := [9]float64{rot[0], rot[3], rot[6], rot[1], rot[4], rot[7], rot[2], rot[5], rot[8]}

	bf := rotate(rot, rel)
	x, y, z := bf[0], bf[1], bf[2]

	r2 := r.Mul(r)
	r5, err := invPow(proto, r, 5)
	if err != nil {
		return Vec3[T]{}, err
	}
	mu := constT(proto, b.Body.GM)
	re := constT(proto, b.Body.Radius)
	re2 := re.Mul(re)

	z2 := z.Mul(z)
	zr2, err := z2.Div(r2)
	if err != nil {
		return Vec3[T]{}, err
	}

	acc := vZero(proto)

	if b.Body.J2 != 0 {
		j2 := constT(proto, b.Body.J2)
		common := mu.Mul(j2).Mul(re2).Mul(r5).Scale(1.5)
		oneMinus5zr2 := constT(proto, 1).Sub(zr2.Scale(5))
		threeMinus5zr2 := constT(proto, 3).Sub(zr2.Scale(5))
		ax := common.Mul(x).Mul(oneMinus5zr2).Neg()
		ay := common.Mul(y).Mul(oneMinus5zr2).Neg()
		az := common.Mul(z).Mul(threeMinus5zr2).Neg()
		acc = vAdd(acc, Vec3[T]{ax, ay, az})
	}

	if b.Body.J3 != 0 {
		j3 := constT(proto, b.Body.J3)
		r7, err := invPow(proto, r, 7)
		if err != nil {
			return Vec3[T]{}, err
		}
		re3 := re2.Mul(re)
		common := mu.Mul(j3).Mul(re3).Mul(r7).Scale(2.5)
		threeMinus7zr2 := constT(proto, 3).Sub(zr2.Scale(7))
		ax := common.Mul(x).Mul(z).Mul(threeMinus7zr2).Neg()
		ay := common.Mul(y).Mul(z).Mul(threeMinus7zr2).Neg()
		z4 := z2.Mul(z2)
		z4r2, err := z4.Div(r2)
		if err != nil {
			return Vec3[T]{}, err
		}
		azTerm := z2.Scale(6).Sub(z4r2.Scale(7)).Sub(r2.Scale(0.6))
		az := common.Mul(azTerm).Neg()
		acc = vAdd(acc, Vec3[T]{ax, ay, az})
	}

	if b.Body.J4 != 0 {
		j4 := constT(proto, b.Body.J4)
		r7, err := invPow(proto, r, 7)
		if err != nil {
			return Vec3[T]{}, err
		}
		re4 := re2.Mul(re2)
		common := mu.Mul(j4).Mul(re4).Mul(r7).Scale(15.0 / 8.0)
		z4 := z2.Mul(z2)
		r4 := r2.Mul(r2)
		z4r4, err := z4.Div(r4)
		if err != nil {
			return Vec3[T]{}, err
		}
		xyTerm := constT(proto, 1).Sub(zr2.Scale(14)).Add(z4r4.Scale(21))
		ax := common.Mul(x).Mul(xyTerm)
		ay := common.Mul(y).Mul(xyTerm)
		zTerm := constT(proto, 5).Sub(zr2.Scale(70.0 / 3.0)).Add(z4r4.Scale(21))
		az := common.Mul(z).Mul(zTerm)
		acc = vAdd(acc, Vec3[T]{ax, ay, az})
	}

	return rotate(rotInv, acc), nil
}

// invPow returns 1/r^n via n repeated multiplications and one final division.
func invPow[T ring.Field[T]](proto T, r T, n int) (T, error) {
	p := proto.One()
	for i := 0; i < n; i++ {
		p = p.Mul(r)
	}
	return proto.One().Div(p)
}
