package analysis

import (
	"fmt"

	"github.com/golang/geo/r3"
	"github.com/san-kum/massim/internal/dynamo"
)

// Axis selects one coordinate of a position.
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

func ParseAxis(s string) (Axis, error) {
	switch s {
	case "x":
		return AxisX, nil
	case "y", "":
		return AxisY, nil
	case "z":
		return AxisZ, nil
	}
	return 0, fmt.Errorf("%w: unknown axis %q", dynamo.ErrInvalidArgument, s)
}

func (a Axis) String() string { return [...]string{"x", "y", "z"}[a] }

func (a Axis) of(v r3.Vector) float64 {
	switch a {
	case AxisX:
		return v.X
	case AxisZ:
		return v.Z
	default:
		return v.Y
	}
}

// Series extracts one coordinate of one particle from every frame along
// with the frame times.
func Series(frames []dynamo.Frame, particle int, axis Axis) ([]float64, []float64, error) {
	values := make([]float64, len(frames))
	times := make([]float64, len(frames))
	for i, f := range frames {
		if particle < 0 || particle >= len(f.Positions) {
			return nil, nil, fmt.Errorf("%w: particle %d not in frame %d", dynamo.ErrInvalidArgument, particle, i)
		}
		values[i] = axis.of(f.Positions[particle])
		times[i] = f.Time
	}
	return values, times, nil
}

// Differentiate estimates the rate of change of values sampled at times,
// using central differences inside and one-sided ones at the ends.
func Differentiate(values, times []float64) ([]float64, error) {
	if len(values) != len(times) {
		return nil, fmt.Errorf("%w: %d values for %d times", dynamo.ErrDimensionMismatch, len(values), len(times))
	}
	n := len(values)
	out := make([]float64, n)
	if n < 2 {
		return out, nil
	}
	slope := func(i, j int) float64 {
		if dt := times[j] - times[i]; dt != 0 {
			return (values[j] - values[i]) / dt
		}
		return 0
	}
	out[0] = slope(0, 1)
	for i := 1; i < n-1; i++ {
		out[i] = slope(i-1, i+1)
	}
	out[n-1] = slope(n-2, n-1)
	return out, nil
}
