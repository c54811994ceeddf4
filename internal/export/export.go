// Package export persists the two output artifacts of section 6: a
// serialised dense interpolant (one record per accepted Taylor step,
// piece polynomials in the jet algebra) and an optional event log, each
// streamed record by record as the driver hands each step to a sink
// rather than buffered trajectory-wide. The per-step payload is a jet polynomial, so it is
// written as one newline-delimited JSON stream any downstream tool can
// consume; no trajectory-visualisation component exists in this system,
// so no Cosmographia or other viewer-specific format is produced.
package export

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/ast-dyn/apophis/events"
	"github.com/ast-dyn/apophis/ring"
	"github.com/ast-dyn/apophis/taylor"
)

// StepPiece is one dense-output record in the serialised form persisted
// to disk: the step's start time and duration plus the jet polynomial's
// coefficients for every one of the asteroid's eight state components,
// flattened to plain float64 slices (coefficient ring ring.Real).
type StepPiece struct {
	StepIndex int         `json:"step_index"`
	T0        float64     `json:"t0"`
	Dt        float64     `json:"dt"`
	R         [3][]float64 `json:"r"`
	V         [3][]float64 `json:"v"`
	Yark      []float64   `json:"yark"`
	Rad       []float64   `json:"rad"`
}

func realCoeffs(s interface{ Coeffs() []ring.Real }) []float64 {
	c := s.Coeffs()
	out := make([]float64, len(c))
	for i, v := range c {
		out[i] = float64(v)
	}
	return out
}

// ToStepPiece converts an accepted Taylor step into its persisted form.
func ToStepPiece(rec taylor.StepRecord) StepPiece {
	return StepPiece{
		StepIndex: rec.StepIndex,
		T0:        rec.T0,
		Dt:        rec.Dt,
		R: [3][]float64{
			realCoeffs(rec.State.R[0]),
			realCoeffs(rec.State.R[1]),
			realCoeffs(rec.State.R[2]),
		},
		V: [3][]float64{
			realCoeffs(rec.State.V[0]),
			realCoeffs(rec.State.V[1]),
			realCoeffs(rec.State.V[2]),
		},
		Yark: realCoeffs(rec.State.Yark),
		Rad:  realCoeffs(rec.State.Rad),
	}
}

// EventRecord is one persisted close-approach (or other) event: the
// crossing time, the asteroid's state there, and the event value at the
// detector's final iterate: within AbsTol of zero, or taken where the
// bracket collapsed or the Newton iteration cap was reached.
type EventRecord struct {
	Time  float64    `json:"time"`
	R     [3]float64 `json:"r"`
	V     [3]float64 `json:"v"`
	Value float64    `json:"value"`
}

// ToEventRecord converts a detected event into its persisted form.
func ToEventRecord(d events.Detection) EventRecord {
	return EventRecord{
		Time: d.Time,
		R:    [3]float64{float64(d.State.R[0]), float64(d.State.R[1]), float64(d.State.R[2])},
		V:    [3]float64{float64(d.State.V[0]), float64(d.State.V[1]), float64(d.State.V[2])},
		Value: d.Value,
	}
}

// FileSink streams accepted Taylor steps to a newline-delimited JSON file
// as the driver produces them, so a long integration's dense-output
// buffer (section 5, "Memory") need not be held in memory at all. Each
// call to Record writes and flushes one StepPiece; Close must be called
// once the driver finishes.
type FileSink struct {
	f   *os.File
	w   *bufio.Writer
	enc *json.Encoder
}

// NewFileSink creates (or truncates) filename and returns a FileSink
// writing to it.
func NewFileSink(filename string) (*FileSink, error) {
	f, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("export: creating %s: %w", filename, err)
	}
	w := bufio.NewWriter(f)
	return &FileSink{f: f, w: w, enc: json.NewEncoder(w)}, nil
}

// Record implements taylor.StepSink.
func (s *FileSink) Record(rec taylor.StepRecord) error {
	if err := s.enc.Encode(ToStepPiece(rec)); err != nil {
		return fmt.Errorf("export: encoding step %d: %w", rec.StepIndex, err)
	}
	return s.w.Flush()
}

// Close flushes any buffered output and closes the underlying file.
func (s *FileSink) Close() error {
	if err := s.w.Flush(); err != nil {
		s.f.Close()
		return err
	}
	return s.f.Close()
}

var _ taylor.StepSink = (*FileSink)(nil)

// EventLogWriter appends newline-delimited JSON EventRecords to an
// io.Writer, mirroring FileSink's streaming shape for the "optional
// event log" output of section 6.
type EventLogWriter struct {
	enc *json.Encoder
}

// NewEventLogWriter wraps w for streaming event output.
func NewEventLogWriter(w io.Writer) *EventLogWriter {
	return &EventLogWriter{enc: json.NewEncoder(w)}
}

// Write appends one detected event.
func (l *EventLogWriter) Write(d events.Detection) error {
	if err := l.enc.Encode(ToEventRecord(d)); err != nil {
		return fmt.Errorf("export: encoding event at t=%g: %w", d.Time, err)
	}
	return nil
}
