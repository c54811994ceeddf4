package ephemeris

import (
	"fmt"
	"math"
	"strings"

	"github.com/soniakeys/meeus/planetposition"
	"github.com/soniakeys/meeus/pluto"
)

// sunGM is the Sun's gravitational parameter in km^3/s^2, used to close
// the vis-viva relation that recovers speed from the VSOP87 position.
const sunGM = 1.32712440017987e11

// AU is one astronomical unit in kilometers, matching bodies.AU; kept
// local to avoid an import cycle between ephemeris and internal/bodies.
const AU = 1.49597870700e8

var vsopIndex = map[string]int{
	"mercury": 0,
	"venus":   1,
	"earth":   2,
	"mars":    3,
	"jupiter": 4,
	"saturn":  5,
	"uranus":  6,
	"neptune": 7,
}

// semiMajorAxisKM gives the approximate heliocentric semi-major axis used
// to close the vis-viva speed relation; exact enough for the fallback,
// low-accuracy ephemeris source this package is meant to provide.
var semiMajorAxisKM = map[string]float64{
	"mercury": 57909050,
	"venus":   108208601,
	"earth":   149598023,
	"mars":    227939282.5616,
	"jupiter": 778298361,
	"saturn":  1429394133,
	"uranus":  2875038615,
	"neptune": 4504449769,
	"pluto":   5915799000,
}

// MeeusSource is a Source backed by the VSOP87 planetary theory (and
// Pluto's dedicated series) as a standalone Source implementation.
// It reports heliocentric state (the Sun itself returns
// the zero vector), in AU and AU/day, and has no fixed time domain: it is
// a low-accuracy analytic fallback, useful for tests and for running
// without a JPL binary kernel, not a substitute for it.
type MeeusSource struct {
	dir     string
	planets map[string]*planetposition.V87Planet
}

// FromMeeus builds a MeeusSource that loads VSOP87 planet data files from
// dir on demand.
func FromMeeus(dir string) *MeeusSource {
	return &MeeusSource{dir: dir, planets: make(map[string]*planetposition.V87Planet)}
}

func (s *MeeusSource) Domain() (lo, hi float64) {
	// VSOP87 has no hard validity cutoff at the precision this source
	// targets; report an effectively unbounded domain.
	return -1e9, 1e9
}

func (s *MeeusSource) State(jd float64, body string) (pos, vel [3]float64, err error) {
	name := strings.ToLower(body)
	if name == "sun" {
		return pos, vel, nil
	}
	if name == "pluto" {
		return s.plutoState(jd)
	}
	idx, ok := vsopIndex[name]
	if !ok {
		return pos, vel, fmt.Errorf("ephemeris: meeus source has no VSOP87 series for %q", body)
	}
	planet, ok := s.planets[name]
	if !ok {
		planet, err = planetposition.LoadPlanetPath(idx, s.dir)
		if err != nil {
			return pos, vel, fmt.Errorf("ephemeris: loading VSOP87 series for %s: %w", body, err)
		}
		s.planets[name] = planet
	}
	l, b, r := planet.Position2000(jd)
	a := semiMajorAxisKM[name]
	return helioCartesian(l.Rad(), b.Rad(), r*AU, a)
}

func (s *MeeusSource) plutoState(jd float64) (pos, vel [3]float64, err error) {
	l, b, r := pluto.Heliocentric(jd)
	return helioCartesian(l.Rad(), b.Rad(), r*AU, semiMajorAxisKM["pluto"])
}

// helioCartesian converts VSOP87 ecliptic longitude/latitude and radius r
// (km) into heliocentric Cartesian position (AU) and velocity (AU/day),
// closing the speed with the vis-viva equation for semi-major axis aKM
// (km) and assuming a direction normal to the orbit pole.
func helioCartesian(l, b, r, aKM float64) (pos, vel [3]float64, err error) {
	sB, cB := math.Sincos(b)
	sL, cL := math.Sincos(l)
	pos = [3]float64{r * cB * cL / AU, r * cB * sL / AU, r * sB / AU}
	speed := math.Sqrt(2*sunGM/r-sunGM/aKM) * 86400 / AU
	dir := cross(pos, [3]float64{0, 0, -1})
	n := norm(dir)
	if n == 0 {
		return pos, vel, nil
	}
	vel = [3]float64{speed * dir[0] / n, speed * dir[1] / n, speed * dir[2] / n}
	return pos, vel, nil
}

func cross(a, b [3]float64) [3]float64 {
	return [3]float64{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

func norm(v [3]float64) float64 {
	return math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
}
