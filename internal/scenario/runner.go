package scenario

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/san-kum/massim/internal/dynamo"
)

// RunConfig controls a fixed-step run.
type RunConfig struct {
	Dt              float64
	Duration        float64
	SampleEvery     int     // record every n-th frame; 0 or 1 records all
	DivergenceBound float64 // 0 disables the position bound check
}

type Result struct {
	Frames     []dynamo.Frame
	Times      []float64
	Metrics    map[string]float64
	StepsTaken int
}

// Runner steps a simulation, feeding every frame to its metrics and observers.
type Runner struct {
	sim       dynamo.Simulation
	metrics   []dynamo.Metric
	observers []dynamo.Observer
	logger    *slog.Logger
}

func NewRunner(sim dynamo.Simulation, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{sim: sim, logger: logger}
}

func (r *Runner) AddMetric(m dynamo.Metric)     { r.metrics = append(r.metrics, m) }
func (r *Runner) AddObserver(o dynamo.Observer) { r.observers = append(r.observers, o) }

func (r *Runner) Simulation() dynamo.Simulation { return r.sim }

func validateRun(cfg RunConfig) error {
	if cfg.Dt <= 0 {
		return fmt.Errorf("%w: dt must be positive, got %g", dynamo.ErrInvalidArgument, cfg.Dt)
	}
	if cfg.Duration <= 0 {
		return fmt.Errorf("%w: duration must be positive, got %g", dynamo.ErrInvalidArgument, cfg.Duration)
	}
	if cfg.SampleEvery < 0 {
		return fmt.Errorf("%w: sample interval %d is negative", dynamo.ErrInvalidArgument, cfg.SampleEvery)
	}
	return nil
}

func (r *Runner) observe(f dynamo.Frame) {
	for _, m := range r.metrics {
		m.Observe(f)
	}
	for _, o := range r.observers {
		o.OnStep(f)
	}
}

// Run advances the simulation for cfg.Duration. On cancellation or
// divergence it returns the partial result along with the error.
func (r *Runner) Run(ctx context.Context, cfg RunConfig) (*Result, error) {
	if err := validateRun(cfg); err != nil {
		return nil, err
	}
	every := cfg.SampleEvery
	if every < 1 {
		every = 1
	}

	steps := int(cfg.Duration/cfg.Dt + 0.5)
	result := &Result{
		Frames:  make([]dynamo.Frame, 0, steps/every+1),
		Times:   make([]float64, 0, steps/every+1),
		Metrics: make(map[string]float64),
	}
	for _, m := range r.metrics {
		m.Reset()
	}

	record := func(f dynamo.Frame) {
		result.Frames = append(result.Frames, f.Clone())
		result.Times = append(result.Times, f.Time)
	}
	finish := func() {
		for _, m := range r.metrics {
			result.Metrics[m.Name()] = m.Value()
		}
	}

	f := r.sim.Frame()
	r.observe(f)
	record(f)

	r.logger.Debug("run started", "steps", steps, "dt", cfg.Dt, "particles", len(f.Positions))

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			finish()
			return result, &dynamo.SimulationError{
				Step:    i,
				Time:    f.Time,
				Wrapped: fmt.Errorf("%w: %v", dynamo.ErrContextCanceled, ctx.Err()),
			}
		default:
		}

		if err := r.sim.Step(cfg.Dt); err != nil {
			finish()
			return result, err
		}
		result.StepsTaken++

		f = r.sim.Frame()
		if p, ok := diverged(f, cfg.DivergenceBound); ok {
			finish()
			r.logger.Warn("simulation diverged", "step", f.Step, "particle", p)
			return result, &dynamo.SimulationError{
				Step:    f.Step,
				Time:    f.Time,
				Wrapped: fmt.Errorf("%w: particle %d beyond %g", dynamo.ErrUnstable, p, cfg.DivergenceBound),
			}
		}

		r.observe(f)
		if (i+1)%every == 0 || i == steps-1 {
			record(f)
		}
	}

	finish()
	r.logger.Debug("run finished", "steps", result.StepsTaken, "time", f.Time)
	return result, nil
}

// diverged reports the first particle whose position is not finite or
// leaves the bound.
func diverged(f dynamo.Frame, bound float64) (int, bool) {
	for i, p := range f.Positions {
		if !dynamo.IsFinite(p) {
			return i, true
		}
		if bound > 0 && math.Max(math.Abs(p.X), math.Max(math.Abs(p.Y), math.Abs(p.Z))) > bound {
			return i, true
		}
	}
	return -1, false
}

// RunWithCallback steps until the duration elapses or fn returns false.
func (r *Runner) RunWithCallback(ctx context.Context, cfg RunConfig, fn func(dynamo.Frame) bool) error {
	if err := validateRun(cfg); err != nil {
		return err
	}
	steps := int(cfg.Duration/cfg.Dt + 0.5)
	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %v", dynamo.ErrContextCanceled, ctx.Err())
		default:
		}
		if !fn(r.sim.Frame()) {
			return nil
		}
		if err := r.sim.Step(cfg.Dt); err != nil {
			return err
		}
	}
	return nil
}
