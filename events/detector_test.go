package events

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
		{Body: bodies.Earth, Pos: [3]float64{1, 0, 0}, Vel: [3]float64{0, 0.0172, 0}, Acc: [3]float64{-0.0003, 0, 0}, Pot: 5.9e-4},
	}
}

func testStep(t *testing.T, t0, dt float64) taylor.StepRecord {
	t.Helper()
	x0 := testAsteroidState()
	lifted, err := taylor.Step(taylor.Generic[ring.Real], x0, testMassiveBodies(), bodies.Sun.GM, 6)
	if err != nil {
		t.Fatal(err)
	}
	return taylor.StepRecord{T0: t0, Dt: dt, State: lifted}
}

// crossingG fires when the asteroid's x-coordinate crosses a fixed
// threshold strictly between its value at the step start and end.
func crossingG(threshold float64) GFunc {
	return func(x forcemodel.State[series.Series[ring.Real]], t series.Series[ring.Real]) (bool, series.Series[ring.Real]) {
		thresholdSeries := series.Const(x.R[0].Order(), ring.Real(0), ring.Real(threshold))
		diff, err := series.Sub(x.R[0], thresholdSeries)
		if err != nil {
			panic(err)
		}
		return true, diff
	}
}

func TestDetectFindsCrossing(t *testing.T) {
	rec := testStep(t, 2451545.0, 1.0)
	x0 := float64(rec.State.R[0].Coeff(0))
	x1 := float64(series.Evaluate(rec.State.R[0], rec.Dt))
	mid := (x0 + x1) / 2
	det := NewDetector(crossingG(mid), 0, 20, 1e-12)
	d, err := det.Detect(rec)
	if err != nil {
		t.Fatal(err)
	}
	if d == nil {
		t.Fatal("expected a detected crossing")
	}
	if math.Abs(d.Value) > 1e-9 {
		t.Fatalf("refined root should have |g| near zero, got %g", d.Value)
	}
	if d.Time < rec.T0 || d.Time > rec.T0+rec.Dt {
		t.Fatalf("crossing time %g outside step bracket [%g, %g]", d.Time, rec.T0, rec.T0+rec.Dt)
	}
}

func TestDetectReturnsNilWithoutCrossing(t *testing.T) {
	rec := testStep(t, 2451545.0, 1.0)
	det := NewDetector(crossingG(1e6), 0, 20, 1e-12)
	d, err := det.Detect(rec)
	if err != nil {
		t.Fatal(err)
	}
	if d != nil {
		t.Fatal("expected no crossing for a threshold far outside the step's range")
	}
}

func TestDetectHonorsArmedFlag(t *testing.T) {
	rec := testStep(t, 2451545.0, 1.0)
	never := func(x forcemodel.State[series.Series[ring.Real]], t series.Series[ring.Real]) (bool, series.Series[ring.Real]) {
		return false, x.R[0]
	}
	det := NewDetector(never, 0, 20, 1e-12)
	d, err := det.Detect(rec)
	if err != nil {
		t.Fatal(err)
	}
	if d != nil {
		t.Fatal("disarmed events should never be reported")
	}
}
