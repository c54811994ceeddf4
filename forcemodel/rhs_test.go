package forcemodel

import (
	"math"
	"testing"

	"github.com/gonum/floats"

	"github.com/ast-dyn/apophis/internal/bodies"
	"github.com/ast-dyn/apophis/ring"
)

func testState() State[ring.Real] {
	r := func(v float64) ring.Real { return ring.Real(v) }
	return State[ring.Real]{
		R:    Vec3[ring.Real]{r(1.1), r(0.05), r(-0.02)},
		V:    Vec3[ring.Real]{r(-0.002), r(0.015), r(0.0001)},
		Yark: r(0),
		Rad:  r(0),
	}
}

func testBodies() []BodyState {
	return []BodyState{
		{Body: bodies.Sun, Pos: [3]float64{0, 0, 0}, Vel: [3]float64{0, 0, 0}, Acc: [3]float64{0, 0, 0}, Pot: 0},
		{Body: bodies.Earth, Pos: [3]float64{1, 0, 0}, Vel: [3]float64{0, 0.0172, 0}, Acc: [3]float64{-0.0003, 0, 0}, Pot: 5.9e-4},
		{Body: bodies.Jupiter, Pos: [3]float64{-2, 4, 0.1}, Vel: [3]float64{-0.006, -0.003, 0}, Acc: [3]float64{0.00001, -0.00002, 0}, Pot: 1.7e-4},
	}
}

func TestEvalProducesFiniteAcceleration(t *testing.T) {
	d, err := Eval(testState(), testBodies(), bodies.Sun.GM)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		if d.R[i] != testState().V[i] {
			t.Fatalf("dR/dt should equal V at component %d", i)
		}
		if a := float64(d.V[i]); math.IsNaN(a) || math.IsInf(a, 0) {
			t.Fatalf("acceleration component %d is not finite: %g", i, a)
		}
	}
	if d.Yark != 0 || d.Rad != 0 {
		t.Fatal("Yarkovsky and radiation-pressure states must be constants of motion")
	}
}

func TestEvalParallelMatchesSerial(t *testing.T) {
	s := testState()
	bs := testBodies()
	serial, err := Eval(s, bs, bodies.Sun.GM)
	if err != nil {
		t.Fatal(err)
	}
	parallel, err := EvalParallel(s, bs, bodies.Sun.GM, 3)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		if !floats.EqualWithinAbs(float64(serial.V[i]), float64(parallel.V[i]), 1e-12) {
			t.Fatalf("serial/parallel acceleration mismatch at component %d: %g vs %g", i, serial.V[i], parallel.V[i])
		}
	}
}

func TestYarkovskyAndRadiationPressureChangeAcceleration(t *testing.T) {
	s := testState()
	bs := testBodies()
	base, err := Eval(s, bs, bodies.Sun.GM)
	if err != nil {
		t.Fatal(err)
	}
	s.Yark = ring.Real(1e-9)
	s.Rad = ring.Real(1.2)
	withNonGrav, err := Eval(s, bs, bodies.Sun.GM)
	if err != nil {
		t.Fatal(err)
	}
	same := true
	for i := 0; i < 3; i++ {
		if base.V[i] != withNonGrav.V[i] {
			same = false
		}
	}
	if same {
		t.Fatal("enabling Yarkovsky/radiation-pressure scalars should change the acceleration")
	}
}
