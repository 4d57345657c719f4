package metrics

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"github.com/san-kum/massim/internal/dynamo"
)

func frame(positions, velocities []r3.Vector, masses []float64, links ...dynamo.Link) dynamo.Frame {
	return dynamo.Frame{Positions: positions, Velocities: velocities, Masses: masses, Links: links}
}

func TestKineticEnergy(t *testing.T) {
	m := NewKineticEnergy()
	f := frame(
		[]r3.Vector{{}, {}},
		[]r3.Vector{{X: 2}, {Y: 100}},
		[]float64{1, math.Inf(1)},
	)

	m.Observe(f)
	if got := m.Value(); math.Abs(got-2) > 1e-12 {
		t.Errorf("expected kinetic energy 2, got %f", got)
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero energy after reset")
	}
}

func TestEnergyDrift(t *testing.T) {
	m := NewEnergyDrift(10)

	// Free fall from y=1 to y=0 trades potential for kinetic energy.
	m.Observe(frame([]r3.Vector{{Y: 1}}, []r3.Vector{{}}, []float64{1}))
	m.Observe(frame([]r3.Vector{{}}, []r3.Vector{{Y: -math.Sqrt(20)}}, []float64{1}))
	if got := m.Value(); got > 1e-9 {
		t.Errorf("expected no drift for exact free fall, got %g", got)
	}

	m.Observe(frame([]r3.Vector{{}}, []r3.Vector{{}}, []float64{1}))
	if got := m.Value(); math.Abs(got-1) > 1e-9 {
		t.Errorf("expected full drift after losing all energy, got %g", got)
	}
}

func TestStability(t *testing.T) {
	m := NewStability(10)
	m.Observe(frame([]r3.Vector{{X: 1}}, nil, nil))
	m.Observe(frame([]r3.Vector{{Y: 20}}, nil, nil))
	m.Observe(frame([]r3.Vector{{Z: math.NaN()}}, nil, nil))
	m.Observe(frame([]r3.Vector{{}}, nil, nil))

	if got := m.Value(); got != 0.5 {
		t.Errorf("expected stability 0.5, got %f", got)
	}
}

func TestMaxStrain(t *testing.T) {
	m := NewMaxStrain()
	link := dynamo.Link{A: 0, B: 1}

	m.Observe(frame([]r3.Vector{{}, {X: 2}}, nil, nil, link))
	m.Observe(frame([]r3.Vector{{}, {X: 2.5}}, nil, nil, link))
	m.Observe(frame([]r3.Vector{{}, {X: 1.8}}, nil, nil, link))

	if got := m.Value(); math.Abs(got-0.25) > 1e-12 {
		t.Errorf("expected strain 0.25, got %f", got)
	}
}
