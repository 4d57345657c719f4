package export

import (
	"fmt"
	"math"
	"strings"

	"github.com/golang/geo/r3"

	"github.com/san-kum/massim/internal/dynamo"
	"github.com/san-kum/massim/internal/viz"
)

// Plane selects the two world axes a snapshot is drawn on.
type Plane int

const (
	PlaneXY Plane = iota
	PlaneXZ
	PlaneZY
)

func ParsePlane(s string) (Plane, error) {
	switch strings.ToLower(s) {
	case "xy", "":
		return PlaneXY, nil
	case "xz":
		return PlaneXZ, nil
	case "zy":
		return PlaneZY, nil
	}
	return 0, fmt.Errorf("%w: unknown plane %q", dynamo.ErrInvalidArgument, s)
}

func (p Plane) project(v r3.Vector) (float64, float64) {
	switch p {
	case PlaneXZ:
		return v.X, v.Z
	case PlaneZY:
		return v.Z, v.Y
	default:
		return v.X, v.Y
	}
}

const svgHeader = `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`

// bounds fits world points into a width x height image with 10% padding
// and returns the mapping.
func bounds(points [][2]float64, width, height int) func(x, y float64) (float64, float64) {
	minX, maxX := math.Inf(1), math.Inf(-1)
	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, p := range points {
		minX, maxX = math.Min(minX, p[0]), math.Max(maxX, p[0])
		minY, maxY = math.Min(minY, p[1]), math.Max(maxY, p[1])
	}
	// Equal scale on both axes keeps the lattice square.
	span := math.Max(maxX-minX, maxY-minY)
	if span == 0 {
		span = 1
	}
	span *= 1.2
	cx, cy := (minX+maxX)/2, (minY+maxY)/2
	scale := float64(min(width, height)) / span
	return func(x, y float64) (float64, float64) {
		return float64(width)/2 + (x-cx)*scale, float64(height)/2 - (y-cy)*scale
	}
}

// FrameToSVG draws the frame's springs and links as lines and its particles
// as circles, projected orthographically onto plane.
func FrameToSVG(f dynamo.Frame, plane Plane, width, height int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, svgHeader, width, height, width, height)

	pts := make([][2]float64, len(f.Positions))
	for i, p := range f.Positions {
		pts[i][0], pts[i][1] = plane.project(p)
	}
	if len(pts) == 0 {
		sb.WriteString("</svg>")
		return sb.String()
	}
	toScreen := bounds(pts, width, height)

	sb.WriteString(`<g stroke="#00a8cc" stroke-width="1">` + "\n")
	for _, l := range f.Links {
		if l.A < 0 || l.B < 0 || l.A >= len(pts) || l.B >= len(pts) {
			continue
		}
		x1, y1 := toScreen(pts[l.A][0], pts[l.A][1])
		x2, y2 := toScreen(pts[l.B][0], pts[l.B][1])
		fmt.Fprintf(&sb, `<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f"/>`+"\n", x1, y1, x2, y2)
	}
	sb.WriteString("</g>\n")

	sb.WriteString(`<g fill="#ffd700">` + "\n")
	for i, p := range pts {
		x, y := toScreen(p[0], p[1])
		r := 2.5
		if f.Masses != nil && math.IsInf(f.Masses[i], 1) {
			r = 4
		}
		fmt.Fprintf(&sb, `<circle cx="%.1f" cy="%.1f" r="%.1f"/>`+"\n", x, y, r)
	}
	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// CanvasToSVG converts a braille canvas to one circle per lit dot.
func CanvasToSVG(canvas *viz.Canvas, scale float64) string {
	if canvas == nil {
		return ""
	}
	sw, sh := canvas.Size()
	width, height := int(float64(sw)*scale), int(float64(sh)*scale)

	var sb strings.Builder
	fmt.Fprintf(&sb, svgHeader, width, height, width, height)
	sb.WriteString(`<g fill="#00ff00">` + "\n")
	for y := 0; y < sh; y++ {
		for x := 0; x < sw; x++ {
			if canvas.IsSet(x, y) {
				fmt.Fprintf(&sb, `<circle cx="%.1f" cy="%.1f" r="%.1f"/>`+"\n",
					float64(x)*scale+scale/2, float64(y)*scale+scale/2, scale*0.4)
			}
		}
	}
	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// TrajectoryToSVG traces one particle's path across frames.
func TrajectoryToSVG(frames []dynamo.Frame, particle int, plane Plane, width, height int, strokeColor string) (string, error) {
	pts := make([][2]float64, 0, len(frames))
	for _, f := range frames {
		if particle < 0 || particle >= len(f.Positions) {
			return "", fmt.Errorf("%w: particle %d not in frame %d", dynamo.ErrInvalidArgument, particle, f.Step)
		}
		x, y := plane.project(f.Positions[particle])
		pts = append(pts, [2]float64{x, y})
	}
	if len(pts) < 2 {
		return "", fmt.Errorf("%w: trajectory needs at least two frames", dynamo.ErrInvalidArgument)
	}
	toScreen := bounds(pts, width, height)

	var sb strings.Builder
	fmt.Fprintf(&sb, svgHeader, width, height, width, height)
	fmt.Fprintf(&sb, `<path fill="none" stroke="%s" stroke-width="1.5" d="M`, strokeColor)
	for i, p := range pts {
		x, y := toScreen(p[0], p[1])
		if i > 0 {
			sb.WriteString(" L")
		}
		fmt.Fprintf(&sb, "%.1f,%.1f", x, y)
	}
	sb.WriteString(`"/>` + "\n</svg>")
	return sb.String(), nil
}
