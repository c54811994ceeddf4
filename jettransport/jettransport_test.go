package jettransport

import (
	"math"
	"testing"

	"github.com/ast-dyn/apophis/forcemodel"
	"github.com/ast-dyn/apophis/internal/bodies"
	"github.com/ast-dyn/apophis/ring"
	"github.com/ast-dyn/apophis/series"
	"github.com/ast-dyn/apophis/taylor"
)

func testAsteroidState() forcemodel.State[ring.Real] {
	r := func(v float64) ring.Real { return ring.Real(v) }
	return forcemodel.State[ring.Real]{
		R:    forcemodel.Vec3[ring.Real]{r(1.1), r(0.05), r(-0.02)},
		V:    forcemodel.Vec3[ring.Real]{r(-0.002), r(0.015), r(0.0001)},
		Yark: r(0),
		Rad:  r(0),
	}
}

func testMassiveBodies() []forcemodel.BodyState {
	return []forcemodel.BodyState{
		{Body: bodies.Sun, Pos: [3]float64{0, 0, 0}, Vel: [3]float64{0, 0, 0}},
		{Body: bodies.Earth, Pos: [3]float64{1, 0, 0}, Vel: [3]float64{0, 0.0172, 0}},
	}
}

func TestLiftConstantTermMatchesInitialState(t *testing.T) {
	x0 := testAsteroidState()
	scales := [8]float64{1e-8, 1e-8, 1e-8, 1e-8, 1e-8, 1e-8, 1e-13, 1e-14}
	lifted := Lift(x0, scales, 2)
	if lifted.R[0].ConstTerm() != float64(x0.R[0]) {
		t.Fatalf("expected R[0] const term %g, got %g", float64(x0.R[0]), lifted.R[0].ConstTerm())
	}
	if lifted.V[1].ConstTerm() != float64(x0.V[1]) {
		t.Fatalf("expected V[1] const term %g, got %g", float64(x0.V[1]), lifted.V[1].ConstTerm())
	}
}

func TestReplayAgreesWithPlainDoubleAtZeroPerturbation(t *testing.T) {
	x0 := testAsteroidState()
	bs := testMassiveBodies()
	const order = 4

	steps := []taylor.StepRecord{
		{StepIndex: 0, T0: 2451545.0, Dt: 0.5},
		{StepIndex: 1, T0: 2451545.5, Dt: 0.5},
	}
	sampler := func(jd float64) ([]forcemodel.BodyState, error) { return bs, nil }

	scales := [8]float64{1e-8, 1e-8, 1e-8, 1e-8, 1e-8, 1e-8, 1e-13, 1e-14}
	lifted := Lift(x0, scales, 2)
	jetFinal, err := Replay(lifted, steps, sampler, bodies.Sun.GM, order)
	if err != nil {
		t.Fatal(err)
	}

	x := x0
	for _, rec := range steps {
		stepped, serr := taylor.Step(taylor.Generic[ring.Real], x, bs, bodies.Sun.GM, order)
		if serr != nil {
			t.Fatal(serr)
		}
		ev := func(s series.Series[ring.Real]) ring.Real { return series.Evaluate(s, rec.Dt) }
		x = forcemodel.State[ring.Real]{
			R:    forcemodel.Vec3[ring.Real]{ev(stepped.R[0]), ev(stepped.R[1]), ev(stepped.R[2])},
			V:    forcemodel.Vec3[ring.Real]{ev(stepped.V[0]), ev(stepped.V[1]), ev(stepped.V[2])},
			Yark: ev(stepped.Yark),
			Rad:  ev(stepped.Rad),
		}
	}

	if math.Abs(jetFinal.R[0].ConstTerm()-float64(x.R[0])) > 1e-12 {
		t.Fatalf("jet-transport constant term should match the plain-double trajectory: %g vs %g", jetFinal.R[0].ConstTerm(), float64(x.R[0]))
	}
}
