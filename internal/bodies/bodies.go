// Package bodies defines the gravitating bodies of the N-body force model:
// their gravitational parameters, oblateness coefficients and pole
// orientation for body-fixed rotation.
package bodies

import (
	"fmt"
	"math"
	"strings"

	"github.com/ast-dyn/apophis/internal/vecmath"
	"github.com/gonum/matrix/mat64"
)

// AU is one astronomical unit in kilometers.
const AU = 1.49597870700e8

// gmAUDay converts a gravitational parameter from km^3/s^2 to AU^3/day^2,
// the unit system of the force model.
const gmAUDay = 86400 * 86400 / (AU * AU * AU)

// Body is a gravitating point mass, optionally an oblate spheroid.
//
// Pole orientation follows the IAU convention: RA and Dec (radians, J2000)
// give the body's spin-pole direction, and W0/WDot (radians,
// radians/day) give the prime-meridian angle at epoch and its rotation
// rate, together defining the body-fixed frame used to resolve J2/J3/J4
// oblateness accelerations.
type Body struct {
	Name   string
	Radius float64 // AU
	GM     float64 // AU^3/day^2
	J2     float64
	J3     float64
	J4     float64
	Oblate bool
	PoleRA float64 // rad
	PoleDE float64 // rad
	W0     float64 // rad
	WDot   float64 // rad/day
}

// J returns the perturbing J_n factor, or 0 for unsupported n.
func (b Body) J(n uint8) float64 {
	switch n {
	case 2:
		return b.J2
	case 3:
		return b.J3
	case 4:
		return b.J4
	default:
		return 0
	}
}

func (b Body) String() string { return b.Name + " body" }

// FixedFrameRotation returns the rotation matrix from the inertial frame
// to this body's body-fixed frame at days elapsed since the pole epoch,
// via the standard 3-1-3 Euler sequence (90°+RA, 90°-Dec, W) used to
// orient a body's spin pole and prime meridian, generalizing the
// teacher's R3R1R3 rotation to an arbitrary oblate body rather than
// Earth only.
func (b Body) FixedFrameRotation(daysElapsed float64) *mat64.Dense {
	w := b.W0 + b.WDot*daysElapsed
	rz1 := vecmath.R3(b.PoleRA + math.Pi/2)
	rx := vecmath.R1(math.Pi/2 - b.PoleDE)
	rz2 := vecmath.R3(w)
	var tmp, out mat64.Dense
	tmp.Mul(rx, rz1)
	out.Mul(rz2, &tmp)
	return &out
}

// FromName returns the predefined body matching name (case-insensitive),
// or an error if unknown.
func FromName(name string) (Body, error) {
	switch strings.ToLower(name) {
	case "sun":
		return Sun, nil
	case "mercury":
		return Mercury, nil
	case "venus":
		return Venus, nil
	case "earth":
		return Earth, nil
	case "moon", "luna":
		return Moon, nil
	case "mars":
		return Mars, nil
	case "jupiter":
		return Jupiter, nil
	case "saturn":
		return Saturn, nil
	case "uranus":
		return Uranus, nil
	case "neptune":
		return Neptune, nil
	default:
		return Body{}, fmt.Errorf("bodies: undefined body %q", name)
	}
}

// Default N-body set values below extend the inner-planet set with
// Mercury, Moon and Neptune, plus pole orientation/oblateness defaults.
// Only Earth carries Oblate=true by default: Apophis's close approaches
// are Earth-centric, so Earth is the only body whose J2/J3/J4 terms
// materially affect the trajectory at the precision this system
// targets. The other bodies keep whatever J-coefficients they have (the
// Sun and Mercury have none); Oblate is a per-Body field, and the scenario
// file has no key that sets it.

var Sun = Body{Name: "Sun", Radius: 695700 / AU, GM: 1.32712440017987e11 * gmAUDay}

var Mercury = Body{Name: "Mercury", Radius: 2439.7 / AU, GM: 2.2031780000e4 * gmAUDay}

var Venus = Body{Name: "Venus", Radius: 6051.8 / AU, GM: 3.24858599e5 * gmAUDay, J2: 0.000027}

var Earth = Body{
	Name: "Earth", Radius: 6378.1363 / AU, GM: 3.98600433e5 * gmAUDay,
	J2: 1082.6269e-6, J3: -2.5324e-6, J4: -1.6204e-6,
	Oblate: true,
	PoleRA: 0, PoleDE: 90 * math.Pi / 180,
	W0: 190.147 * math.Pi / 180, WDot: 360.9856235 * math.Pi / 180,
}

var Moon = Body{Name: "Moon", Radius: 1737.4 / AU, GM: 4.9028000e3 * gmAUDay, J2: 2.0330530e-4}

var Mars = Body{Name: "Mars", Radius: 3396.19 / AU, GM: 4.28283100e4 * gmAUDay, J2: 1964e-6, J3: 36e-6, J4: -18e-6}

var Jupiter = Body{Name: "Jupiter", Radius: 71492.0 / AU, GM: 1.266865361e8 * gmAUDay, J2: 0.01475, J4: -0.00058}

var Saturn = Body{Name: "Saturn", Radius: 60268.0 / AU, GM: 3.7931208e7 * gmAUDay, J2: 0.01645, J4: -0.001}

var Uranus = Body{Name: "Uranus", Radius: 25559.0 / AU, GM: 5.7939513e6 * gmAUDay, J2: 0.012}

var Neptune = Body{Name: "Neptune", Radius: 24764.0 / AU, GM: 6.8365300e6 * gmAUDay, J2: 0.0034}
