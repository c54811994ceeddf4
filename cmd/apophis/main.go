// Command apophis runs the high-order Taylor-series jet-transport
// integration of the near-Earth asteroid Apophis: forward and backward
// propagation from a reference epoch, optional
// close-approach event detection, and optional finite-time Lyapunov
// exponent accumulation, streaming the dense-output trajectory and any
// detected events to disk.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	kitlog "github.com/go-kit/kit/log"
	"github.com/soniakeys/meeus/julian"

	"github.com/ast-dyn/apophis/ephemeris"
	"github.com/ast-dyn/apophis/events"
	"github.com/ast-dyn/apophis/forcemodel"
	"github.com/ast-dyn/apophis/internal/bodies"
	"github.com/ast-dyn/apophis/internal/config"
	"github.com/ast-dyn/apophis/internal/export"
	"github.com/ast-dyn/apophis/internal/logging"
	"github.com/ast-dyn/apophis/internal/scenario"
	"github.com/ast-dyn/apophis/lyapunov"
	"github.com/ast-dyn/apophis/ring"
	"github.com/ast-dyn/apophis/taylor"
)

const daysPerYear = 365.25

// secondsPerDay converts the reference state's km/s velocity components
// to the AU/day unit system the right-hand side works in.
const secondsPerDay = 86400.0

// ephemerisStepDays is the spacing between ephemeris.Build's Hermite
// interpolation nodes; the solar-system ephemeris is smooth enough over
// a few days that a coarser grid would lose little while a finer one
// buys nothing but memory.
const ephemerisStepDays = 4.0

func main() {
	var (
		scenarioDir string
		jd0Str      string
		varOrder    int
		maxSteps    int
		nyearsBwd   float64
		nyearsFwd   float64
		order       int
		absTol      float64
		parseEqs    bool
		ssEphFile   string
		outDir      string
		lyapunovOn  bool
	)

	flag.StringVar(&scenarioDir, "scenario", "", "directory containing an optional scenario.toml")
	flag.StringVar(&jd0Str, "jd0", "", "reference epoch, RFC3339 UTC (default from scenario/built-in)")
	flag.IntVar(&varOrder, "varorder", 0, "jet-transport variational order")
	flag.IntVar(&maxSteps, "maxsteps", 0, "maximum accepted steps per direction")
	flag.Float64Var(&nyearsBwd, "nyears_bwd", 0, "years to integrate backward (negative)")
	flag.Float64Var(&nyearsFwd, "nyears_fwd", 0, "years to integrate forward")
	flag.IntVar(&order, "order", 0, "UTS order N")
	flag.Float64Var(&absTol, "abstol", 0, "absolute truncation tolerance")
	flag.BoolVar(&parseEqs, "parse_eqs", false, "use the pre-analysed (parsed/fused) right-hand side")
	flag.StringVar(&ssEphFile, "ss_eph_file", "", "solar-system ephemeris path")
	flag.StringVar(&outDir, "out", ".", "directory to write trajectory/event output files to")
	flag.BoolVar(&lyapunovOn, "lyapunov", false, "accumulate finite-time Lyapunov exponents alongside the trajectory")
	flag.Parse()

	logger := logging.New("cmd.apophis")

	cfg, err := config.Load(scenarioDir)
	if err != nil {
		logger.Log("level", "critical", "err", err)
		os.Exit(1)
	}

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "varorder":
			cfg.VarOrder = varOrder
		case "maxsteps":
			cfg.MaxSteps = maxSteps
		case "nyears_bwd":
			cfg.NYearsBwd = nyearsBwd
		case "nyears_fwd":
			cfg.NYearsFwd = nyearsFwd
		case "order":
			cfg.Order = order
		case "abstol":
			cfg.AbsTol = absTol
		case "parse_eqs":
			cfg.ParseEqs = parseEqs
		case "ss_eph_file":
			cfg.SSEphFile = ssEphFile
		}
	})
	if jd0Str != "" {
		jd0, perr := parseJD0(jd0Str)
		if perr != nil {
			logger.Log("level", "critical", "err", perr)
			os.Exit(1)
		}
		cfg.JD0 = jd0
	}

	if err := run(logger, cfg, outDir, lyapunovOn); err != nil {
		logger.Log("level", "critical", "err", err)
		os.Exit(1)
	}
}

// parseJD0 parses an RFC3339 UTC timestamp into the reference epoch, the
// same format the --jd0 flag and a scenario.toml's jd0 key both accept.
func parseJD0(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}

func run(logger kitlog.Logger, cfg config.Scenario, outDir string, lyapunovOn bool) error {
	jd0 := julian.TimeToJD(cfg.JD0)

	loJD := jd0 + cfg.NYearsBwd*daysPerYear
	hiJD := jd0 + cfg.NYearsFwd*daysPerYear
	nodes := buildNodes(loJD, hiJD)

	src, err := openEphemeris(cfg.SSEphFile)
	if err != nil {
		return fmt.Errorf("apophis: opening ephemeris: %w", err)
	}
	if closer, ok := src.(interface{ Close() error }); ok {
		defer closer.Close()
	}

	sampler, err := scenario.NewSampler(src, scenario.Planets, nodes, jd0)
	if err != nil {
		return fmt.Errorf("apophis: building body-state sampler: %w", err)
	}

	x0 := referenceState(cfg.ReferenceStateKM)

	mode := taylor.Generic[ring.Real]
	if cfg.ParseEqs {
		mode = taylor.Parsed[ring.Real]
	}

	earthPos, earthVel0, err := earthStateAt(sampler, jd0)
	if err != nil {
		return fmt.Errorf("apophis: sampling Earth state at epoch: %w", err)
	}
	detector := events.NewDetector(events.CloseApproachG(earthPos, earthVel0), 0, 20, 1e-12)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if cfg.NYearsFwd != 0 {
		if err := propagate(ctx, logger, cfg, "forward", x0, jd0, hiJD, sampler, mode, detector, lyapunovOn, outDir); err != nil {
			return err
		}
	}
	if cfg.NYearsBwd != 0 {
		if err := propagate(ctx, logger, cfg, "backward", x0, jd0, loJD, sampler, mode, detector, lyapunovOn, outDir); err != nil {
			return err
		}
	}
	return nil
}

func propagate(
	ctx context.Context,
	logger kitlog.Logger,
	cfg config.Scenario,
	label string,
	x0 forcemodel.State[ring.Real],
	t0, tEnd float64,
	sampler *scenario.Sampler,
	mode taylor.RHS[ring.Real],
	detector *events.Detector,
	lyapunovOn bool,
	outDir string,
) error {
	trajFile, err := export.NewFileSink(fmt.Sprintf("%s/trajectory-%s.ndjson", outDir, label))
	if err != nil {
		return err
	}
	defer trajFile.Close()

	eventFile, err := os.Create(fmt.Sprintf("%s/events-%s.ndjson", outDir, label))
	if err != nil {
		return err
	}
	defer eventFile.Close()

	var spectrum *lyapunov.Spectrum
	if lyapunovOn {
		spectrum = lyapunov.NewSpectrum(1)
	}

	sink := &pipeline{
		trajectory: trajFile,
		eventLog:   export.NewEventLogWriter(eventFile),
		detector:   detector,
		spectrum:   spectrum,
		bodies:     sampler.At,
		sunGM:      bodies.Sun.GM,
		logger:     logger,
	}

	driver := taylor.NewDriver(cfg.Order, cfg.AbsTol, bodies.Sun.GM, mode, sampler.At, sink, true, cfg.MaxSteps)
	_, rerr := driver.Run(ctx, x0, t0, tEnd)

	if rerr != nil {
		// Done is only ever reached on a clean arrival at tEnd, so any
		// error here, including a step-cap abort, leaves the driver
		// short of the requested span and must surface as a failure.
		logger.Log("level", "critical", "subsys", "driver", "direction", label, "status", driver.Status().String(), "err", rerr)
		return rerr
	}

	logger.Log("level", "info", "subsys", "driver", "direction", label, "status", driver.Status().String())
	if lyapunovOn && spectrum != nil {
		logger.Log("level", "info", "subsys", "lyapunov", "direction", label, "exponents", fmt.Sprintf("%v", spectrum.Exponents()), "elapsed_days", spectrum.Elapsed())
	}
	return nil
}

// buildNodes lays down an evenly spaced ephemeris.Build node schedule
// covering [loJD, hiJD], oriented so it always runs from the earlier to
// the later date regardless of which of loJD/hiJD is the forward or
// backward propagation's end.
func buildNodes(loJD, hiJD float64) []float64 {
	lo, hi := loJD, hiJD
	if hi < lo {
		lo, hi = hi, lo
	}
	span := hi - lo
	n := int(span/ephemerisStepDays) + 2
	nodes := make([]float64, n)
	for i := range nodes {
		nodes[i] = lo + float64(i)*ephemerisStepDays
	}
	if nodes[len(nodes)-1] < hi {
		nodes = append(nodes, hi)
	}
	return nodes
}

// openEphemeris opens ssEphFile as a binary JPL kernel, falling back to
// the VSOP87-backed analytic source when the file cannot be opened, so
// the integrator can still run without a binary kernel available.
func openEphemeris(ssEphFile string) (ephemeris.Source, error) {
	src, err := ephemeris.FromJPL(ssEphFile)
	if err == nil {
		return src, nil
	}
	return ephemeris.FromMeeus("."), nil
}

// referenceState converts the scenario's reference Cartesian state from
// km, km/s to the AU, AU/day unit system the right-hand side works in.
func referenceState(refKM [6]float64) forcemodel.State[ring.Real] {
	r := func(kmPerS float64) ring.Real { return ring.Real(kmPerS * secondsPerDay / bodies.AU) }
	p := func(km float64) ring.Real { return ring.Real(km / bodies.AU) }
	return forcemodel.State[ring.Real]{
		R:    forcemodel.Vec3[ring.Real]{p(refKM[0]), p(refKM[1]), p(refKM[2])},
		V:    forcemodel.Vec3[ring.Real]{r(refKM[3]), r(refKM[4]), r(refKM[5])},
		Yark: ring.Real(0),
		Rad:  ring.Real(0),
	}
}

// earthStateAt pulls Earth's position and velocity out of sampler's
// body-state sample at Julian date jd, for seeding the close-approach
// event function at the reference epoch.
func earthStateAt(sampler *scenario.Sampler, jd float64) (pos, vel [3]float64, err error) {
	bs, err := sampler.At(jd)
	if err != nil {
		return pos, vel, err
	}
	for _, b := range bs {
		if b.Body.Name == bodies.Earth.Name {
			return b.Pos, b.Vel, nil
		}
	}
	return pos, vel, fmt.Errorf("apophis: Earth not found among sampled bodies at jd=%g", jd)
}
