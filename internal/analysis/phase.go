package analysis

import (
	"math"
	"strings"

	"github.com/san-kum/massim/internal/dynamo"
)

// Point is a position/velocity pair.
type Point struct {
	X, V float64
}

// PhasePortrait is a particle's trajectory in one coordinate's phase plane.
type PhasePortrait struct {
	Particle int
	Axis     Axis
	Points   []Point
}

func NewPhasePortrait(frames []dynamo.Frame, particle int, axis Axis) (*PhasePortrait, error) {
	values, times, err := Series(frames, particle, axis)
	if err != nil {
		return nil, err
	}
	vel, err := Differentiate(values, times)
	if err != nil {
		return nil, err
	}

	p := &PhasePortrait{Particle: particle, Axis: axis, Points: make([]Point, len(values))}
	for i := range values {
		p.Points[i] = Point{X: values[i], V: vel[i]}
	}
	return p, nil
}

// NewPoincareSection keeps the phase points where the coordinate crosses
// level upwards, interpolated to the crossing.
func NewPoincareSection(frames []dynamo.Frame, particle int, axis Axis, level float64) (*PhasePortrait, error) {
	full, err := NewPhasePortrait(frames, particle, axis)
	if err != nil {
		return nil, err
	}
	section := &PhasePortrait{Particle: particle, Axis: axis}
	for i := 1; i < len(full.Points); i++ {
		prev, curr := full.Points[i-1], full.Points[i]
		if prev.X < level && curr.X >= level {
			frac := (level - prev.X) / (curr.X - prev.X)
			if math.IsNaN(frac) || math.IsInf(frac, 0) {
				frac = 0.5
			}
			section.Points = append(section.Points, Point{X: level, V: prev.V + frac*(curr.V-prev.V)})
		}
	}
	return section, nil
}

// ASCII plots the portrait on a width x height character grid with the
// axes drawn where they cross the visible range.
func (p *PhasePortrait) ASCII(width, height int) string {
	if p == nil || len(p.Points) == 0 {
		return "no points"
	}

	minX, maxX := p.Points[0].X, p.Points[0].X
	minV, maxV := p.Points[0].V, p.Points[0].V
	for _, pt := range p.Points {
		minX, maxX = math.Min(minX, pt.X), math.Max(maxX, pt.X)
		minV, maxV = math.Min(minV, pt.V), math.Max(maxV, pt.V)
	}
	rangeX, rangeV := maxX-minX, maxV-minV
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeV == 0 {
		rangeV = 1
	}
	minX, maxX = minX-rangeX*0.1, maxX+rangeX*0.1
	minV, maxV = minV-rangeV*0.1, maxV+rangeV*0.1
	rangeX, rangeV = maxX-minX, maxV-minV

	grid := make([][]rune, height)
	for i := range grid {
		grid[i] = []rune(strings.Repeat(" ", width))
	}
	col := func(x float64) int { return int((x - minX) / rangeX * float64(width-1)) }
	row := func(v float64) int { return height - 1 - int((v-minV)/rangeV*float64(height-1)) }

	for _, pt := range p.Points {
		if r, c := row(pt.V), col(pt.X); r >= 0 && r < height && c >= 0 && c < width {
			grid[r][c] = '•'
		}
	}
	if minX <= 0 && maxX >= 0 {
		c := col(0)
		for r := 0; r < height; r++ {
			if grid[r][c] == ' ' {
				grid[r][c] = '│'
			}
		}
	}
	if minV <= 0 && maxV >= 0 {
		r := row(0)
		for c := 0; c < width; c++ {
			if grid[r][c] == ' ' {
				grid[r][c] = '─'
			}
		}
	}

	var sb strings.Builder
	for _, line := range grid {
		sb.WriteString(string(line))
		sb.WriteRune('\n')
	}
	return sb.String()
}
