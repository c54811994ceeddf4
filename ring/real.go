package ring

import (
	"math"

	"github.com/ast-dyn/apophis/apoerr"
)

// Real is the float64 instantiation of Field, used when the integrator
// propagates a plain double rather than a jet.
type Real float64

func (r Real) Add(o Real) Real { return r + o }
func (r Real) Sub(o Real) Real { return r - o }
func (r Real) Mul(o Real) Real { return r * o }

func (r Real) Div(o Real) (Real, error) {
	if o == 0 {
		return 0, &apoerr.AlgebraError{Op: "div", Reason: "divisor has zero constant term"}
	}
	return r / o, nil
}

func (r Real) Sqrt() (Real, error) {
	if r <= 0 {
		return 0, &apoerr.AlgebraError{Op: "sqrt", Reason: "non-positive constant term"}
	}
	return Real(math.Sqrt(float64(r))), nil
}

func (r Real) Scale(k float64) Real { return Real(float64(r) * k) }
func (r Real) Neg() Real            { return -r }
func (r Real) Zero() Real           { return 0 }
func (r Real) One() Real            { return 1 }
func (r Real) IsZero() bool         { return r == 0 }

// F returns the plain float64 value, for interop with math.* and I/O.
func (r Real) F() float64 { return float64(r) }
