package scenario

import (
	"testing"

	"github.com/gonum/floats"

	"github.com/ast-dyn/apophis/internal/bodies"
)

// circularSource places two bodies on fixed, non-moving points so the
// mutual Newtonian acceleration and potential are trivial to check by
// hand: a unit separation along x with known GM values.
type circularSource struct{}

func (circularSource) Domain() (lo, hi float64) { return -1e9, 1e9 }

func (circularSource) State(jd float64, body string) (pos, vel [3]float64, err error) {
	switch body {
	case "Sun":
		return [3]float64{0, 0, 0}, [3]float64{0, 0, 0}, nil
	case "Earth":
		return [3]float64{1, 0, 0}, [3]float64{0, 0, 0}, nil
	}
	return pos, vel, nil
}

func TestSamplerComputesPairwiseAccAndPot(t *testing.T) {
	bodyList := []bodies.Body{bodies.Sun, bodies.Earth}
	nodes := []float64{0, 1, 2, 3}
	s, err := NewSampler(circularSource{}, bodyList, nodes, 0)
	if err != nil {
		t.Fatal(err)
	}

	bs, err := s.At(1.5)
	if err != nil {
		t.Fatal(err)
	}
	if len(bs) != 2 {
		t.Fatalf("expected 2 body states, got %d", len(bs))
	}

	sun, earth := bs[0], bs[1]
	if sun.Body.Name != "Sun" || earth.Body.Name != "Earth" {
		t.Fatalf("unexpected body order: %s, %s", sun.Body.Name, earth.Body.Name)
	}

	// Earth pulls the Sun in the +x direction (Earth is at x=1); the Sun
	// pulls Earth in the -x direction. Both potentials equal GM_other/1.
	if !floats.EqualWithinRel(sun.Acc[0], earth.Body.GM, 1e-9) {
		t.Fatalf("expected Sun's acceleration toward Earth to be GM_earth, got %g vs %g", sun.Acc[0], earth.Body.GM)
	}
	if !floats.EqualWithinRel(-earth.Acc[0], sun.Body.GM, 1e-9) {
		t.Fatalf("expected Earth's acceleration toward the Sun to be -GM_sun, got %g vs %g", earth.Acc[0], -sun.Body.GM)
	}
	if !floats.EqualWithinRel(sun.Pot, earth.Body.GM, 1e-9) {
		t.Fatalf("expected Sun's potential from Earth to be GM_earth, got %g", sun.Pot)
	}
	if !floats.EqualWithinRel(earth.Pot, sun.Body.GM, 1e-9) {
		t.Fatalf("expected Earth's potential from the Sun to be GM_sun, got %g", earth.Pot)
	}
}

func TestSamplerPoleTTracksEpochOffset(t *testing.T) {
	bodyList := []bodies.Body{bodies.Sun, bodies.Earth}
	nodes := []float64{0, 1, 2, 3}
	s, err := NewSampler(circularSource{}, bodyList, nodes, 10)
	if err != nil {
		t.Fatal(err)
	}
	bs, err := s.At(12)
	if err != nil {
		t.Fatal(err)
	}
	for _, b := range bs {
		if b.PoleT != 2 {
			t.Fatalf("expected PoleT=2 (jd 12 minus epoch 10), got %g", b.PoleT)
		}
	}
}
