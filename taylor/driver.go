package taylor

import (
	"context"
	"math"

	"github.com/ast-dyn/apophis/apoerr"
	"github.com/ast-dyn/apophis/forcemodel"
	"github.com/ast-dyn/apophis/ring"
	"github.com/ast-dyn/apophis/series"
)

// Status is the adaptive integrator's state:
// Ready -> Stepping -> {Done, Aborted, Failed}.
type Status int

const (
	Ready Status = iota
	Stepping
	Done
	Aborted
	Failed
)

func (s Status) String() string {
	switch s {
	case Ready:
		return "ready"
	case Stepping:
		return "stepping"
	case Done:
		return "done"
	case Aborted:
		return "aborted"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// StepRecord is one accepted Taylor step, carrying the full jet
// polynomial the step advanced by (dense output) or, in compact
// recording mode, a degree-0 series wrapping only the evaluated end
// state.
type StepRecord struct {
	StepIndex int
	T0        float64
	Dt        float64
	State     forcemodel.State[series.Series[ring.Real]]
}

// StepSink receives accepted steps as the driver produces them.
type StepSink interface {
	Record(rec StepRecord) error
}

// MemorySink is the in-memory default StepSink, convenient for tests and
// for callers (e.g. the Lyapunov and event-detection layers) that need
// random access to the whole trajectory.
type MemorySink struct {
	Records []StepRecord
}

func (m *MemorySink) Record(rec StepRecord) error {
	m.Records = append(m.Records, rec)
	return nil
}

// BodySampler supplies the massive bodies' precomputed state at a given
// Julian date, sourced from the ephemeris interpolants (component C).
type BodySampler func(jd float64) ([]forcemodel.BodyState, error)

// Driver runs the adaptive Taylor-series integration.
type Driver struct {
	Order    int
	EpsAbs   float64
	SunGM    float64
	Mode     RHS[ring.Real]
	Bodies   BodySampler
	Sink     StepSink
	Dense    bool // true: record the full jet polynomial; false: compact (end state only)
	MaxSteps int

	status    Status
	stepIndex int
}

// NewDriver builds a Driver in the Ready state. mode is taylor.Generic
// or taylor.Parsed; both MUST produce the same trajectory within
// truncation error.
func NewDriver(order int, epsAbs, sunGM float64, mode RHS[ring.Real], bodies BodySampler, sink StepSink, dense bool, maxSteps int) *Driver {
	return &Driver{
		Order:    order,
		EpsAbs:   epsAbs,
		SunGM:    sunGM,
		Mode:     mode,
		Bodies:   bodies,
		Sink:     sink,
		Dense:    dense,
		MaxSteps: maxSteps,
		status:   Ready,
	}
}

// Status returns the driver's current state-machine status.
func (d *Driver) Status() Status { return d.status }

func constState(x forcemodel.State[ring.Real], order int) forcemodel.State[series.Series[ring.Real]] {
	lift := func(v ring.Real) series.Series[ring.Real] { return series.Const(order, ring.Real(0), v) }
	return forcemodel.State[series.Series[ring.Real]]{
		R:    forcemodel.Vec3[series.Series[ring.Real]]{lift(x.R[0]), lift(x.R[1]), lift(x.R[2])},
		V:    forcemodel.Vec3[series.Series[ring.Real]]{lift(x.V[0]), lift(x.V[1]), lift(x.V[2])},
		Yark: lift(x.Yark),
		Rad:  lift(x.Rad),
	}
}

// firstNonFinite scans every Taylor coefficient of the lifted state's eight
// components (R, V, Yark, Rad) in order and returns the index of the first
// one carrying a NaN or infinite coefficient, or (-1, true) if all are
// finite.
func firstNonFinite(lifted forcemodel.State[series.Series[ring.Real]]) (int, bool) {
	comps := []series.Series[ring.Real]{
		lifted.R[0], lifted.R[1], lifted.R[2],
		lifted.V[0], lifted.V[1], lifted.V[2],
		lifted.Yark, lifted.Rad,
	}
	for i, s := range comps {
		for _, c := range s.Coeffs() {
			f := c.F()
			if math.IsNaN(f) || math.IsInf(f, 0) {
				return i, false
			}
		}
	}
	return -1, true
}

func stateSlice(x forcemodel.State[ring.Real]) []float64 {
	return []float64{
		x.R[0].F(), x.R[1].F(), x.R[2].F(),
		x.V[0].F(), x.V[1].F(), x.V[2].F(),
		x.Yark.F(), x.Rad.F(),
	}
}

func evaluateState(lifted forcemodel.State[series.Series[ring.Real]], s float64) forcemodel.State[ring.Real] {
	ev := func(ser series.Series[ring.Real]) ring.Real { return series.Evaluate(ser, s) }
	return forcemodel.State[ring.Real]{
		R:    forcemodel.Vec3[ring.Real]{ev(lifted.R[0]), ev(lifted.R[1]), ev(lifted.R[2])},
		V:    forcemodel.Vec3[ring.Real]{ev(lifted.V[0]), ev(lifted.V[1]), ev(lifted.V[2])},
		Yark: ev(lifted.Yark),
		Rad:  ev(lifted.Rad),
	}
}

// Run propagates x0 from Julian date t0 to tEnd, which may precede t0
// (bidirectional time support: the per-step sign is taken from
// sign(tEnd-t0) and every step size is oriented the same way).
// Cooperative cancellation via ctx is only observed between steps, per
// no suspension points within a step.
//
// On MaxStepsExceeded or Cancelled, Run returns the partial trajectory
// accumulated so far alongside the error, per apoerr's propagation
// policy; on any other error the last accepted state is returned and
// the driver moves to Failed.
func (d *Driver) Run(ctx context.Context, x0 forcemodel.State[ring.Real], t0, tEnd float64) (forcemodel.State[ring.Real], error) {
	d.status = Stepping
	dir := 1.0
	if tEnd < t0 {
		dir = -1.0
	}

	x := x0
	t := t0
	for {
		if tEnd == t0 || (dir > 0 && t >= tEnd) || (dir < 0 && t <= tEnd) {
			d.status = Done
			return x, nil
		}
		if d.MaxSteps > 0 && d.stepIndex >= d.MaxSteps {
			d.status = Aborted
			return x, &apoerr.MaxStepsExceeded{MaxSteps: d.MaxSteps}
		}
		select {
		case <-ctx.Done():
			d.status = Aborted
			return x, &apoerr.Cancelled{StepIndex: d.stepIndex}
		default:
		}

		bs, err := d.Bodies(t)
		if err != nil {
			d.status = Failed
			return x, err
		}

		lifted, err := Step(d.Mode, x, bs, d.SunGM, d.Order)
		if err != nil {
			d.status = Failed
			return x, err
		}
		if comp, ok := firstNonFinite(lifted); !ok {
			// Stepping -> Failed: a right-hand-side error, same bucket as
			// StepSizeUnderflow, not the Aborted/partial-trajectory path
			// MaxStepsExceeded and Cancelled take.
			d.status = Failed
			return x, &apoerr.Divergent{Time: t, StepIndex: d.stepIndex, Component: comp, LastState: stateSlice(x)}
		}

		dt := dir * SelectStepSize(lifted, d.Order, d.EpsAbs)
		remaining := tEnd - t
		if (dir > 0 && dt > remaining) || (dir < 0 && dt < remaining) {
			dt = remaining
		}
		if dt == 0 || (dir > 0 && dt <= 0) || (dir < 0 && dt >= 0) {
			d.status = Failed
			return x, &apoerr.StepSizeUnderflow{Time: t, StepIndex: d.stepIndex, LastState: stateSlice(x)}
		}

		next := evaluateState(lifted, dt)

		if d.Sink != nil {
			rec := StepRecord{StepIndex: d.stepIndex, T0: t, Dt: dt}
			if d.Dense {
				rec.State = lifted
			} else {
				rec.State = constState(next, d.Order)
			}
			if err := d.Sink.Record(rec); err != nil {
				d.status = Failed
				return x, err
			}
		}

		x = next
		t += dt
		d.stepIndex++
	}
}
