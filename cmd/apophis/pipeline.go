package main

import (
	"fmt"

	kitlog "github.com/go-kit/kit/log"

	"github.com/ast-dyn/apophis/events"
	"github.com/ast-dyn/apophis/internal/bodies"
	"github.com/ast-dyn/apophis/internal/export"
	"github.com/ast-dyn/apophis/lyapunov"
	"github.com/ast-dyn/apophis/taylor"
)

// pipeline is the taylor.StepSink the driver writes every accepted step
// to: it streams the step to disk (internal/export), checks it for a
// close-approach event (events) against Earth's state at the step's
// start time, and advances the running Lyapunov
// spectrum (lyapunov), all off one step record rather than buffering
// the whole trajectory for a second pass.
type pipeline struct {
	trajectory *export.FileSink
	eventLog   *export.EventLogWriter
	detector   *events.Detector
	spectrum   *lyapunov.Spectrum
	bodies     taylor.BodySampler
	sunGM      float64
	logger     kitlog.Logger
}

func (p *pipeline) Record(rec taylor.StepRecord) error {
	if err := p.trajectory.Record(rec); err != nil {
		return err
	}

	if p.detector != nil {
		bs, err := p.bodies(rec.T0)
		if err != nil {
			return fmt.Errorf("pipeline: sampling bodies for event step %d: %w", rec.StepIndex, err)
		}
		for _, b := range bs {
			if b.Body.Name == bodies.Earth.Name {
				p.detector.G = events.CloseApproachG(b.Pos, b.Vel)
				break
			}
		}
		d, err := p.detector.Detect(rec)
		if err != nil {
			return fmt.Errorf("pipeline: event detection at step %d: %w", rec.StepIndex, err)
		}
		if d != nil {
			if err := p.eventLog.Write(*d); err != nil {
				return err
			}
			p.logger.Log("level", "notice", "subsys", "events", "t*", d.Time, "g", d.Value)
		}
	}

	if p.spectrum != nil {
		bs, err := p.bodies(rec.T0)
		if err != nil {
			return fmt.Errorf("pipeline: sampling bodies for Lyapunov step %d: %w", rec.StepIndex, err)
		}
		p.spectrum.Update(rec, bs, p.sunGM)
	}

	return nil
}

var _ taylor.StepSink = (*pipeline)(nil)
