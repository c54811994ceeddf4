package bodies

import (
	"testing"

	"github.com/gonum/floats"
	"github.com/gonum/matrix/mat64"
)

func TestFromNameKnown(t *testing.T) {
	b, err := FromName("EARTH")
	if err != nil {
		t.Fatal(err)
	}
	if b.Name != "Earth" || !b.Oblate {
		t.Fatalf("unexpected body: %+v", b)
	}
}

func TestFromNameUnknown(t *testing.T) {
	if _, err := FromName("nibiru"); err == nil {
		t.Fatal("expected error for unknown body")
	}
}

func TestJAccessors(t *testing.T) {
	if Earth.J(2) != Earth.J2 || Earth.J(3) != Earth.J3 || Earth.J(4) != Earth.J4 {
		t.Fatal("J(n) does not match the underlying J2/J3/J4 fields")
	}
	if Earth.J(5) != 0 {
		t.Fatal("J(5) should be zero for an unsupported degree")
	}
}

func TestFixedFrameRotationOrthonormal(t *testing.T) {
	r := Earth.FixedFrameRotation(12.3)
	rows, cols := r.Dims()
	if rows != 3 || cols != 3 {
		t.Fatalf("rotation matrix should be 3x3, got %dx%d", rows, cols)
	}
	var prod mat64.Dense
	prod.Mul(r, r.T())
	id := mat64.NewDense(3, 3, []float64{1, 0, 0, 0, 1, 0, 0, 0, 1})
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if !floats.EqualWithinAbs(prod.At(i, j), id.At(i, j), 1e-9) {
				t.Fatalf("rotation matrix is not orthonormal at (%d,%d): got %g", i, j, prod.At(i, j))
			}
		}
	}
}
