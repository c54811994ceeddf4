package ephemeris

import (
	"fmt"
	"strings"

	"github.com/mshafiee/jpleph"
)

// jplPlanets maps the lowercase body names used elsewhere in this module
// to jpleph's Planet/CenterBody constants.
var jplPlanets = map[string]jpleph.Planet{
	"mercury": jpleph.Mercury,
	"venus":   jpleph.Venus,
	"earth":   jpleph.Earth,
	"mars":    jpleph.Mars,
	"jupiter": jpleph.Jupiter,
	"saturn":  jpleph.Saturn,
	"uranus":  jpleph.Uranus,
	"neptune": jpleph.Neptune,
	"pluto":   jpleph.Pluto,
	"moon":    jpleph.Moon,
	"sun":     jpleph.Sun,
}

// JPLSource is a Source backed by a binary JPL DE-series ephemeris file
// (e.g. de405.bin), read with github.com/mshafiee/jpleph. State is
// reported relative to the solar system barycenter, in AU and AU/day.
type JPLSource struct {
	eph    *jpleph.Ephemeris
	loJD   float64
	hiJD   float64
}

// FromJPL opens filename as a binary JPL ephemeris kernel.
func FromJPL(filename string) (*JPLSource, error) {
	eph, err := jpleph.NewEphemeris(filename, false)
	if err != nil {
		return nil, fmt.Errorf("ephemeris: opening JPL kernel %q: %w", filename, err)
	}
	return &JPLSource{
		eph:  eph,
		loJD: eph.GetEphemerisDouble(jpleph.EphemerisStartJD),
		hiJD: eph.GetEphemerisDouble(jpleph.EphemerisEndJD),
	}, nil
}

// Close releases the underlying kernel file.
func (s *JPLSource) Close() error { return s.eph.Close() }

func (s *JPLSource) Domain() (lo, hi float64) { return s.loJD, s.hiJD }

func (s *JPLSource) State(jd float64, body string) (pos, vel [3]float64, err error) {
	planet, ok := jplPlanets[strings.ToLower(body)]
	if !ok {
		return pos, vel, fmt.Errorf("ephemeris: unknown JPL body %q", body)
	}
	p, v, err := s.eph.CalculatePV(jd, planet, jpleph.CenterSolarSystemBarycenter, true)
	if err != nil {
		return pos, vel, fmt.Errorf("ephemeris: JPL lookup for %s at JD %g: %w", body, jd, err)
	}
	return [3]float64{p.X, p.Y, p.Z}, [3]float64{v.DX, v.DY, v.DZ}, nil
}
