package scenario

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/massim/internal/dynamo"
)

// drift moves one particle along x at unit speed, jumping to infinity at
// blowAt when blowAt > 0.
type drift struct {
	step   int
	time   float64
	x      float64
	blowAt int
}

func (d *drift) Step(dt float64) error {
	d.step++
	d.time += dt
	d.x += dt
	if d.blowAt > 0 && d.step >= d.blowAt {
		d.x = math.Inf(1)
	}
	return nil
}

func (d *drift) Frame() dynamo.Frame {
	return dynamo.Frame{
		Step:       d.step,
		Time:       d.time,
		Positions:  []r3.Vector{{X: d.x}},
		Velocities: []r3.Vector{{X: 1}},
		Masses:     []float64{2},
	}
}

type countingObserver struct{ frames int }

func (c *countingObserver) OnStep(dynamo.Frame) { c.frames++ }

func TestRunnerRecordsEveryFrame(t *testing.T) {
	r := NewRunner(&drift{}, nil)
	obs := &countingObserver{}
	r.AddObserver(obs)

	res, err := r.Run(context.Background(), RunConfig{Dt: 0.1, Duration: 1})
	require.NoError(t, err)

	assert.Equal(t, 10, res.StepsTaken)
	assert.Len(t, res.Frames, 11)
	assert.Len(t, res.Times, 11)
	assert.Equal(t, 11, obs.frames)
	assert.InDelta(t, 1.0, res.Times[10], 1e-9)
	assert.InDelta(t, 1.0, res.Frames[10].Positions[0].X, 1e-9)
}

func TestRunnerSampling(t *testing.T) {
	r := NewRunner(&drift{}, nil)
	res, err := r.Run(context.Background(), RunConfig{Dt: 0.1, Duration: 1, SampleEvery: 3})
	require.NoError(t, err)

	// Initial frame, steps 3, 6, 9 and the final step.
	assert.Len(t, res.Frames, 5)
	assert.Equal(t, 10, res.Frames[4].Step)
}

func TestRunnerRejectsBadConfig(t *testing.T) {
	r := NewRunner(&drift{}, nil)
	for _, cfg := range []RunConfig{
		{Dt: 0, Duration: 1},
		{Dt: 0.1, Duration: 0},
		{Dt: 0.1, Duration: 1, SampleEvery: -1},
	} {
		_, err := r.Run(context.Background(), cfg)
		assert.ErrorIs(t, err, dynamo.ErrInvalidArgument)
	}
}

func TestRunnerCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := NewRunner(&drift{}, nil).Run(ctx, RunConfig{Dt: 0.1, Duration: 1})
	require.Error(t, err)
	assert.ErrorIs(t, err, dynamo.ErrContextCanceled)
	require.NotNil(t, res)
	assert.Zero(t, res.StepsTaken)
	assert.Len(t, res.Frames, 1)
}

func TestRunnerDivergence(t *testing.T) {
	r := NewRunner(&drift{blowAt: 4}, nil)
	r.AddMetric(&lastX{})
	res, err := r.Run(context.Background(), RunConfig{Dt: 0.1, Duration: 1})

	var simErr *dynamo.SimulationError
	require.True(t, errors.As(err, &simErr))
	assert.ErrorIs(t, err, dynamo.ErrUnstable)
	assert.Equal(t, 4, simErr.Step)
	assert.Equal(t, 4, res.StepsTaken)
	assert.Contains(t, res.Metrics, "last_x")
}

func TestRunnerDivergenceBound(t *testing.T) {
	_, err := NewRunner(&drift{}, nil).Run(context.Background(), RunConfig{Dt: 0.1, Duration: 1, DivergenceBound: 0.5})
	assert.ErrorIs(t, err, dynamo.ErrUnstable)
}

func TestRunWithCallbackStops(t *testing.T) {
	calls := 0
	err := NewRunner(&drift{}, nil).RunWithCallback(context.Background(), RunConfig{Dt: 0.1, Duration: 1}, func(f dynamo.Frame) bool {
		calls++
		return f.Step < 3
	})
	require.NoError(t, err)
	assert.Equal(t, 4, calls)
}

type lastX struct{ x float64 }

func (m *lastX) Name() string           { return "last_x" }
func (m *lastX) Observe(f dynamo.Frame) { m.x = f.Positions[0].X }
func (m *lastX) Value() float64         { return m.x }
func (m *lastX) Reset()                 { m.x = 0 }
