package mad

import (
	"fmt"

	"github.com/golang/geo/r3"
	"github.com/san-kum/massim/internal/dynamo"
)

// CurveSpec describes a chain of masses.
type CurveSpec struct {
	Mass       float64
	Damping    float64
	Structural SpringCoefficients
	Flexion    SpringCoefficients

	DisableStretchClamp bool
}

// Curve is a one-dimensional body: mass i is joined to i+1 by a structural
// spring and to i+2 by a flexion spring.
type Curve struct {
	*Body
	Springs *SpringForceGenerator

	structural []dynamo.Link
	flexion    []dynamo.Link
}

// NewCurve places one mass on each point.
func NewCurve(points []r3.Vector, spec CurveSpec) (*Curve, error) {
	if len(points) < 2 {
		return nil, fmt.Errorf("%w: curve needs at least 2 points, got %d", dynamo.ErrInvalidArgument, len(points))
	}
	body, err := NewBody(len(points), spec.Mass, spec.Damping)
	if err != nil {
		return nil, err
	}
	copy(body.positions, points)

	c := &Curve{Body: body, Springs: NewSpringForceGenerator(!spec.DisableStretchClamp)}
	for i := range points {
		if i+1 < len(points) && c.Springs.connect(body, i, i+1, spec.Structural) {
			c.structural = append(c.structural, dynamo.Link{A: i, B: i + 1})
		}
		if i+2 < len(points) && c.Springs.connect(body, i, i+2, spec.Flexion) {
			c.flexion = append(c.flexion, dynamo.Link{A: i, B: i + 2})
		}
	}
	return c, nil
}

// NewLineCurve splits the segment from..to into segments equal pieces.
func NewLineCurve(from, to r3.Vector, segments int, spec CurveSpec) (*Curve, error) {
	if segments < 1 {
		return nil, fmt.Errorf("%w: line curve needs at least 1 segment, got %d", dynamo.ErrInvalidArgument, segments)
	}
	points := make([]r3.Vector, segments+1)
	step := to.Sub(from).Mul(1 / float64(segments))
	for i := range points {
		points[i] = from.Add(step.Mul(float64(i)))
	}
	return NewCurve(points, spec)
}

// PinEnds fixes the first and last mass.
func (c *Curve) PinEnds() {
	c.SetFixed(0, true)
	c.SetFixed(c.Len()-1, true)
}

func (c *Curve) StructuralSprings() []dynamo.Link { return c.structural }

func (c *Curve) FlexionSprings() []dynamo.Link { return c.flexion }
