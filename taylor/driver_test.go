package taylor

import (
	"context"
	"math"
	"testing"

	"github.com/ast-dyn/apophis/forcemodel"
	"github.com/ast-dyn/apophis/internal/bodies"
	"github.com/ast-dyn/apophis/ring"
	"github.com/ast-dyn/apophis/series"
)

func constantBodySampler(bs []forcemodel.BodyState) BodySampler {
	return func(jd float64) ([]forcemodel.BodyState, error) {
		return bs, nil
	}
}

func TestDriverReachesEndTime(t *testing.T) {
	sink := &MemorySink{}
	d := NewDriver(6, 1e-9, bodies.Sun.GM, Generic[ring.Real], constantBodySampler(testMassiveBodies()), sink, false, 100)
	x0 := testAsteroidState()
	final, err := d.Run(context.Background(), x0, 2451545.0, 2451545.0+1.0)
	if err != nil {
		t.Fatal(err)
	}
	if d.Status() != Done {
		t.Fatalf("expected Done, got %s", d.Status())
	}
	if len(sink.Records) == 0 {
		t.Fatal("expected at least one recorded step")
	}
	last := sink.Records[len(sink.Records)-1]
	if last.T0+last.Dt != 2451545.0+1.0 {
		t.Fatalf("final step should land exactly on tEnd, landed at %g", last.T0+last.Dt)
	}
	if final.R[0] == x0.R[0] && final.V[0] == x0.V[0] {
		t.Fatal("state should have advanced")
	}
}

func TestDriverBidirectionalTime(t *testing.T) {
	sink := &MemorySink{}
	d := NewDriver(6, 1e-9, bodies.Sun.GM, Generic[ring.Real], constantBodySampler(testMassiveBodies()), sink, false, 100)
	x0 := testAsteroidState()
	_, err := d.Run(context.Background(), x0, 2451545.0, 2451545.0-1.0)
	if err != nil {
		t.Fatal(err)
	}
	if d.Status() != Done {
		t.Fatalf("expected Done, got %s", d.Status())
	}
	for _, rec := range sink.Records {
		if rec.Dt >= 0 {
			t.Fatalf("expected negative step size when propagating backward, got %g", rec.Dt)
		}
	}
}

func TestDriverCancellation(t *testing.T) {
	sink := &MemorySink{}
	d := NewDriver(6, 1e-9, bodies.Sun.GM, Generic[ring.Real], constantBodySampler(testMassiveBodies()), sink, false, 100)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	x0 := testAsteroidState()
	_, err := d.Run(ctx, x0, 2451545.0, 2451545.0+1.0)
	if err == nil {
		t.Fatal("expected a Cancelled error")
	}
	if d.Status() != Aborted {
		t.Fatalf("expected Aborted, got %s", d.Status())
	}
}

func TestDriverMaxStepsExceeded(t *testing.T) {
	sink := &MemorySink{}
	d := NewDriver(6, 1e-9, bodies.Sun.GM, Generic[ring.Real], constantBodySampler(testMassiveBodies()), sink, false, 1)
	x0 := testAsteroidState()
	_, err := d.Run(context.Background(), x0, 2451545.0, 2451545.0+1000.0)
	if err == nil {
		t.Fatal("expected a MaxStepsExceeded error")
	}
	if d.Status() != Aborted {
		t.Fatalf("MaxStepsExceeded should report Aborted with the partial trajectory, got %s", d.Status())
	}
	if len(sink.Records) != 1 {
		t.Fatalf("expected exactly 1 recorded step before the cap, got %d", len(sink.Records))
	}
}

func TestFirstNonFiniteDetectsNaN(t *testing.T) {
	x0 := testAsteroidState()
	lifted, err := Step(Generic[ring.Real], x0, testMassiveBodies(), bodies.Sun.GM, 6)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := firstNonFinite(lifted); !ok {
		t.Fatal("expected a finite state")
	}

	coeffs := append([]ring.Real(nil), lifted.V[1].Coeffs()...)
	coeffs[2] = ring.Real(math.NaN())
	lifted.V[1] = series.New(lifted.V[1].Order(), ring.Real(0), coeffs...)

	comp, ok := firstNonFinite(lifted)
	if ok {
		t.Fatal("expected a non-finite component to be detected")
	}
	if comp != 4 {
		t.Fatalf("expected component index 4 (V[1]), got %d", comp)
	}
}

func TestDriverDenseModeCarriesFullPolynomial(t *testing.T) {
	sink := &MemorySink{}
	d := NewDriver(6, 1e-9, bodies.Sun.GM, Generic[ring.Real], constantBodySampler(testMassiveBodies()), sink, true, 10)
	x0 := testAsteroidState()
	if _, err := d.Run(context.Background(), x0, 2451545.0, 2451545.0+1.0); err != nil {
		t.Fatal(err)
	}
	rec := sink.Records[0]
	if rec.State.R[0].Coeff(1) != x0.V[0] {
		t.Fatal("dense-mode record should carry the full jet polynomial, not just the end state")
	}
}
