package jet

import (
	"math"
	"testing"

	"github.com/gonum/floats"
)

const testTol = 1e-9

func TestScaledVarEvaluatesLinearly(t *testing.T) {
	x := ScaledVar(2, 3, 0, 1e-8)
	if !floats.EqualWithinAbs(x.Eval([]float64{2, 0}), 2e-8, testTol*1e-8) {
		t.Fatalf("scaled variable did not evaluate linearly: got %g", x.Eval([]float64{2, 0}))
	}
}

func TestAddMulAgainstEvaluate(t *testing.T) {
	a := ScaledVar(2, 4, 0, 1)
	b := NewConst(2, 4, 3)
	sum := a.Add(b)
	prod := a.Mul(b)
	pt := []float64{0.5, -0.2}
	if !floats.EqualWithinAbs(sum.Eval(pt), a.Eval(pt)+b.Eval(pt), testTol) {
		t.Fatal("Add does not match pointwise evaluation")
	}
	if !floats.EqualWithinAbs(prod.Eval(pt), a.Eval(pt)*b.Eval(pt), testTol) {
		t.Fatal("Mul does not match pointwise evaluation")
	}
}

func TestDivRoundTrip(t *testing.T) {
	x := ScaledVar(2, 4, 0, 1)
	y := ScaledVar(2, 4, 1, 1)
	one := NewConst(2, 4, 1)
	denom := one.Add(x).Add(y.Scale(0.5)) // 1 + x + 0.5y, constant term 1
	num := x.Mul(x).Add(y)
	q, err := num.Div(denom)
	if err != nil {
		t.Fatal(err)
	}
	back := q.Mul(denom)
	pt := []float64{0.1, -0.05}
	if !floats.EqualWithinAbs(back.Eval(pt), num.Eval(pt), 1e-6) {
		t.Fatalf("(num/denom)*denom != num at point: got %g want %g", back.Eval(pt), num.Eval(pt))
	}
}

func TestDivZeroConstantTerm(t *testing.T) {
	a := NewConst(2, 3, 1)
	b := ScaledVar(2, 3, 0, 1) // zero constant term
	if _, err := a.Div(b); err == nil {
		t.Fatal("expected AlgebraError for division by MTS with zero constant term")
	}
}

func TestSqrtOfSquare(t *testing.T) {
	x := ScaledVar(2, 4, 0, 1)
	base := NewConst(2, 4, 2).Add(x) // 2+x, positive near x=0
	sq := base.Mul(base)
	root, err := sq.Sqrt()
	if err != nil {
		t.Fatal(err)
	}
	pt := []float64{0.3, 0.0}
	if !floats.EqualWithinAbs(root.Eval(pt), math.Abs(base.Eval(pt)), 1e-6) {
		t.Fatalf("sqrt(base^2) != |base|: got %g want %g", root.Eval(pt), base.Eval(pt))
	}
}

func TestDiffMatchesFiniteDifference(t *testing.T) {
	x := ScaledVar(2, 5, 0, 1)
	y := ScaledVar(2, 5, 1, 1)
	f := x.Mul(x).Mul(y).Add(y.Mul(y)) // x^2 y + y^2
	dfdx := f.Diff(0)

	h := 1e-5
	p0 := []float64{0.2, 0.3}
	p1 := []float64{0.2 + h, 0.3}
	fd := (f.Eval(p1) - f.Eval(p0)) / h
	if !floats.EqualWithinAbs(dfdx.Eval(p0), fd, 1e-3) {
		t.Fatalf("analytic derivative %g does not match finite difference %g", dfdx.Eval(p0), fd)
	}
}

func TestComposeMatchesPointwiseSubstitution(t *testing.T) {
	x := ScaledVar(2, 4, 0, 1)
	y := ScaledVar(2, 4, 1, 1)
	outer := x.Mul(x).Add(y).Add(NewConst(2, 4, 1)) // x^2 + y + 1

	u := ScaledVar(2, 4, 0, 1)
	v := ScaledVar(2, 4, 1, 1)
	subX := u.Mul(v).Add(u)        // x -> uv + u
	subY := u.Add(v.Scale(2))      // y -> u + 2v
	composed := outer.Compose([]MTS{subX, subY})

	pt := []float64{0.1, -0.2}
	subXAtPt := subX.Eval(pt)
	subYAtPt := subY.Eval(pt)
	want := subXAtPt*subXAtPt + subYAtPt + 1
	if !floats.EqualWithinAbs(composed.Eval(pt), want, testTol) {
		t.Fatalf("Compose did not match pointwise substitution: got %g want %g", composed.Eval(pt), want)
	}
}

func TestComposeWithIdentityIsNoOp(t *testing.T) {
	x := ScaledVar(2, 3, 0, 1)
	y := ScaledVar(2, 3, 1, 1)
	f := x.Mul(x).Mul(y).Add(y.Mul(y))
	identity := []MTS{x, y}
	composed := f.Compose(identity)
	pt := []float64{0.4, -0.7}
	if !floats.EqualWithinAbs(composed.Eval(pt), f.Eval(pt), testTol) {
		t.Fatalf("Compose with the identity substitution changed the series: got %g want %g", composed.Eval(pt), f.Eval(pt))
	}
}

func TestZeroAndOneShapeMatch(t *testing.T) {
	p := ScaledVar(3, 2, 2, 1e-13)
	if !p.Zero().IsZero() {
		t.Fatal("Zero() must be the zero series")
	}
	if p.One().ConstTerm() != 1 {
		t.Fatal("One() must have constant term 1")
	}
}
