package sim

import (
	"context"
	"fmt"

	"github.com/san-kum/celestia/internal/dynamo"
	"github.com/san-kum/celestia/internal/metrics"
	"github.com/san-kum/celestia/internal/scenario"
)

// Observer is notified after every tick of a headless run.
type Observer interface {
	OnTick(snap Snapshot, events []Event)
}

// Sample is the recorded state at one sampling point.
type Sample struct {
	Time   float64     `json:"time"`
	Bodies []BodyState `json:"bodies"`
}

type Result struct {
	Mode       string             `json:"mode"`
	Samples    []Sample           `json:"samples"`
	Events     []Event            `json:"events"`
	Metrics    map[string]float64 `json:"metrics"`
	TicksTaken int                `json:"ticks"`
	Impact     bool               `json:"impact"`
}

// Runner plays a descriptor headlessly at the configured frame rate.
type Runner struct {
	session   *Session
	metrics   []metrics.Metric
	observers []Observer
}

func NewRunner(s *Session) *Runner {
	return &Runner{session: s}
}

func (r *Runner) AddMetric(m metrics.Metric) { r.metrics = append(r.metrics, m) }
func (r *Runner) AddObserver(o Observer)     { r.observers = append(r.observers, o) }

// Run loads desc and ticks it for the configured duration. Triggerable
// scenarios are triggered on the first tick.
func (r *Runner) Run(ctx context.Context, desc *scenario.Descriptor) (*Result, error) {
	s := r.session
	cfg := s.Config()
	if err := s.Load(desc); err != nil {
		return nil, err
	}

	steps := cfg.Steps()
	result := &Result{
		Mode:    s.Mode().String(),
		Samples: make([]Sample, 0, steps/cfg.SampleEvery+2),
		Metrics: make(map[string]float64),
	}

	for _, m := range r.metrics {
		m.Reset()
	}
	r.sample(result)

	if s.Policy().Triggerable {
		if err := s.Trigger(); err != nil {
			return nil, fmt.Errorf("trigger: %w", err)
		}
	}

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		s.Tick(cfg.Dt)
		result.TicksTaken++

		events := s.Events()
		result.Events = append(result.Events, events...)
		if len(r.observers) > 0 {
			snap := s.Snapshot()
			for _, o := range r.observers {
				o.OnTick(snap, events)
			}
		}

		if (i+1)%cfg.SampleEvery == 0 || i == steps-1 {
			r.sample(result)
		}
	}

	for _, b := range s.World().Live() {
		if !b.Position.IsFinite() || !b.Velocity.IsFinite() {
			return result, fmt.Errorf("%s diverged at t=%.3f: %w", b, s.Clock(), dynamo.ErrInvalidBody)
		}
	}

	for _, m := range r.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
	result.Impact = s.ImpactHappened()
	return result, nil
}

func (r *Runner) sample(result *Result) {
	s := r.session
	snap := s.Snapshot()
	result.Samples = append(result.Samples, Sample{Time: snap.Clock, Bodies: snap.Bodies})

	accounted := s.Accounted()
	for _, m := range r.metrics {
		m.Observe(accounted, snap.Clock)
	}
}
