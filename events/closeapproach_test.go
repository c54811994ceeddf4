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

func TestCloseApproachGFindsPerigee(t *testing.T) {
	// Asteroid passes Earth head-on along x, closing then receding: its
	// relative-position-dot-velocity crosses zero exactly at closest
	// approach.
	r := func(v float64) ring.Real { return ring.Real(v) }
	x0 := forcemodel.State[ring.Real]{
		R:    forcemodel.Vec3[ring.Real]{r(0.99), r(0), r(0)},
		V:    forcemodel.Vec3[ring.Real]{r(0.02), r(0), r(0)},
		Yark: r(0),
		Rad:  r(0),
	}
	bs := []forcemodel.BodyState{
		{Body: bodies.Sun, Pos: [3]float64{0, 0, 0}, Vel: [3]float64{0, 0, 0}},
		{Body: bodies.Earth, Pos: [3]float64{1, 0, 0}, Vel: [3]float64{0, 0, 0}},
	}
	lifted, err := taylor.Step(taylor.Generic[ring.Real], x0, bs, bodies.Sun.GM, 6)
	if err != nil {
		t.Fatal(err)
	}
	rec := taylor.StepRecord{StepIndex: 0, T0: 0, Dt: 1.0, State: lifted}

	g := CloseApproachG([3]float64{1, 0, 0}, [3]float64{0, 0, 0})
	det := NewDetector(g, 0, 30, 1e-14)
	d, err := det.Detect(rec)
	if err != nil {
		t.Fatal(err)
	}
	if d == nil {
		t.Fatal("expected a close-approach crossing within the step")
	}
	if math.Abs(d.Value) > 1e-10 {
		t.Fatalf("expected |g| near zero at closest approach, got %g", d.Value)
	}
}

func TestCloseApproachGArmedAndDotProductShape(t *testing.T) {
	order := 4
	proto := ring.Real(0)
	x := forcemodel.State[series.Series[ring.Real]]{
		R: forcemodel.Vec3[series.Series[ring.Real]]{
			series.Const(order, proto, ring.Real(2)),
			series.Const(order, proto, ring.Real(0)),
			series.Const(order, proto, ring.Real(0)),
		},
		V: forcemodel.Vec3[series.Series[ring.Real]]{
			series.Const(order, proto, ring.Real(0.1)),
			series.Const(order, proto, ring.Real(0)),
			series.Const(order, proto, ring.Real(0)),
		},
		Yark: series.Const(order, proto, ring.Real(0)),
		Rad:  series.Const(order, proto, ring.Real(0)),
	}
	g := CloseApproachG([3]float64{0, 0, 0}, [3]float64{0, 0, 0})
	active, value := g(x, series.Var(order, ring.Real(0)))
	if !active {
		t.Fatal("CloseApproachG should always be armed")
	}
	// rel position = (2,0,0), rel velocity = (0.1,0,0) at s=0: dot = 0.2.
	if got := float64(series.Evaluate(value, 0)); math.Abs(got-0.2) > 1e-12 {
		t.Fatalf("expected g(0)=0.2, got %g", got)
	}
}
