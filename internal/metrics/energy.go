package metrics

import (
	"math"

	"github.com/san-kum/massim/internal/dynamo"
)

// FrameKinetic sums 0.5 m v² over finite masses.
func FrameKinetic(f dynamo.Frame) float64 {
	e := 0.0
	for i, v := range f.Velocities {
		if m := f.Masses[i]; !math.IsInf(m, 0) {
			e += 0.5 * m * v.Norm2()
		}
	}
	return e
}

// KineticEnergy averages the total kinetic energy over observed frames.
type KineticEnergy struct {
	name    string
	total   float64
	samples int
}

func NewKineticEnergy() *KineticEnergy {
	return &KineticEnergy{name: "kinetic_energy"}
}

func (e *KineticEnergy) Name() string { return e.name }

func (e *KineticEnergy) Observe(f dynamo.Frame) {
	e.total += FrameKinetic(f)
	e.samples++
}

func (e *KineticEnergy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.total / float64(e.samples)
}

func (e *KineticEnergy) Reset() {
	e.total = 0
	e.samples = 0
}

// EnergyDrift tracks the largest relative change of kinetic plus
// gravitational potential energy against the first observed frame.
type EnergyDrift struct {
	name          string
	gravity       float64
	initialEnergy float64
	maxDrift      float64
	samples       int
}

// NewEnergyDrift takes the magnitude of gravity along -y.
func NewEnergyDrift(gravity float64) *EnergyDrift {
	return &EnergyDrift{
		name:    "energy_drift",
		gravity: gravity,
	}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) mechanical(f dynamo.Frame) float64 {
	energy := FrameKinetic(f)
	for i, p := range f.Positions {
		if m := f.Masses[i]; !math.IsInf(m, 0) {
			energy += m * e.gravity * p.Y
		}
	}
	return energy
}

func (e *EnergyDrift) Observe(f dynamo.Frame) {
	energy := e.mechanical(f)
	if e.samples == 0 {
		e.initialEnergy = energy
	}
	e.samples++

	if e.initialEnergy != 0 {
		drift := math.Abs(energy-e.initialEnergy) / math.Abs(e.initialEnergy)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Value() float64 {
	return e.maxDrift
}

func (e *EnergyDrift) Reset() {
	e.initialEnergy = 0
	e.maxDrift = 0
	e.samples = 0
}
