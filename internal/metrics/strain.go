package metrics

import (
	"math"

	"github.com/san-kum/massim/internal/dynamo"
)

// MaxStrain records the largest relative length change of any link, measured
// against the link lengths of the first observed frame.
type MaxStrain struct {
	name  string
	rest  []float64
	worst float64
}

func NewMaxStrain() *MaxStrain {
	return &MaxStrain{name: "max_strain"}
}

func (m *MaxStrain) Name() string { return m.name }

func (m *MaxStrain) Observe(f dynamo.Frame) {
	if m.rest == nil {
		m.rest = make([]float64, len(f.Links))
		for i, l := range f.Links {
			m.rest[i] = f.Positions[l.A].Distance(f.Positions[l.B])
		}
		return
	}
	for i, l := range f.Links {
		if i >= len(m.rest) || m.rest[i] < dynamo.Epsilon {
			continue
		}
		length := f.Positions[l.A].Distance(f.Positions[l.B])
		m.worst = math.Max(m.worst, math.Abs(length-m.rest[i])/m.rest[i])
	}
}

func (m *MaxStrain) Value() float64 { return m.worst }

func (m *MaxStrain) Reset() {
	m.rest = nil
	m.worst = 0
}
