package viz

import (
	"math"
	"sort"

	"github.com/golang/geo/r3"
	"github.com/san-kum/massim/internal/dynamo"
)

// Camera orbits a target point and projects world positions onto a canvas.
type Camera struct {
	Target     r3.Vector
	Distance   float64
	Extent     float64 // world-space radius that fills the shorter screen side
	RotX, RotY float64
	Zoom       float64
}

func NewCamera() *Camera {
	return &Camera{Distance: 50, Extent: 5, RotX: -0.3, RotY: 0.5, Zoom: 1}
}

func (c *Camera) RotateX(a float64) { c.RotX += a }
func (c *Camera) RotateY(a float64) { c.RotY += a }
func (c *Camera) ZoomIn()           { c.Zoom = math.Min(10, c.Zoom*1.2) }
func (c *Camera) ZoomOut()          { c.Zoom = math.Max(0.1, c.Zoom/1.2) }

// Fit centres the camera on the frame and sizes it to the frame's extent.
func (c *Camera) Fit(f dynamo.Frame) {
	if len(f.Positions) == 0 {
		return
	}
	lo, hi := f.Positions[0], f.Positions[0]
	for _, p := range f.Positions[1:] {
		lo = r3.Vector{X: math.Min(lo.X, p.X), Y: math.Min(lo.Y, p.Y), Z: math.Min(lo.Z, p.Z)}
		hi = r3.Vector{X: math.Max(hi.X, p.X), Y: math.Max(hi.Y, p.Y), Z: math.Max(hi.Z, p.Z)}
	}
	c.Target = lo.Add(hi).Mul(0.5)
	c.Extent = math.Max(hi.Sub(lo).Norm()*0.6, 1)
	c.Distance = c.Extent * 10
}

// rotate turns p about the target, first around y then around x.
func (c *Camera) rotate(p r3.Vector) r3.Vector {
	p = p.Sub(c.Target)
	cy, sy := math.Cos(c.RotY), math.Sin(c.RotY)
	p.X, p.Z = p.X*cy+p.Z*sy, -p.X*sy+p.Z*cy
	cx, sx := math.Cos(c.RotX), math.Sin(c.RotX)
	p.Y, p.Z = p.Y*cx-p.Z*sx, p.Y*sx+p.Z*cx
	return p
}

// screen maps p to dot coordinates on a sw x sh screen and reports whether
// p lies in front of the camera.
func (c *Camera) screen(p r3.Vector, sw, sh int) (int, int, float64, bool) {
	rot := c.rotate(p)
	if rot.Z >= c.Distance {
		return 0, 0, 0, false
	}
	persp := c.Distance / (c.Distance - rot.Z)
	scale := float64(min(sw, sh)) / 2 / c.Extent * c.Zoom * persp
	return int(rot.X*scale) + sw/2, int(-rot.Y*scale) + sh/2, rot.Z, true
}

// Project maps p to dot coordinates on a sw x sh screen. It returns the
// screen position, the view depth, and whether the point is visible.
func (c *Camera) Project(p r3.Vector, sw, sh int) (int, int, float64, bool) {
	sx, sy, depth, ok := c.screen(p, sw, sh)
	return sx, sy, depth, ok && sx >= 0 && sx < sw && sy >= 0 && sy < sh
}

type segment struct {
	x1, y1, x2, y2 int
	depth          float64
}

// RenderFrame draws the frame's links as lines and its particles as dots,
// far geometry first. A ground line is drawn at groundY when ground is set.
func RenderFrame(c *Canvas, f dynamo.Frame, cam *Camera, ground *float64) {
	if c == nil || cam == nil {
		return
	}
	sw, sh := c.Size()

	if ground != nil {
		span := cam.Extent * 2 / cam.Zoom
		left := r3.Vector{X: cam.Target.X - span, Y: *ground, Z: cam.Target.Z}
		right := r3.Vector{X: cam.Target.X + span, Y: *ground, Z: cam.Target.Z}
		x1, y1, _, ok1 := cam.screen(left, sw, sh)
		x2, y2, _, ok2 := cam.screen(right, sw, sh)
		if ok1 && ok2 {
			c.DrawLine(x1, y1, x2, y2)
		}
	}

	segs := make([]segment, 0, len(f.Links)+len(f.Positions))
	for _, l := range f.Links {
		if l.A < 0 || l.B < 0 || l.A >= len(f.Positions) || l.B >= len(f.Positions) {
			continue
		}
		x1, y1, d1, v1 := cam.screen(f.Positions[l.A], sw, sh)
		x2, y2, d2, v2 := cam.screen(f.Positions[l.B], sw, sh)
		if v1 && v2 {
			segs = append(segs, segment{x1, y1, x2, y2, (d1 + d2) / 2})
		}
	}
	for _, p := range f.Positions {
		if x, y, d, ok := cam.Project(p, sw, sh); ok {
			segs = append(segs, segment{x, y, x, y, d})
		}
	}

	sort.Slice(segs, func(i, j int) bool { return segs[i].depth < segs[j].depth })
	for _, s := range segs {
		if s.x1 == s.x2 && s.y1 == s.y2 {
			c.Dot(s.x1, s.y1, 1)
		} else {
			c.DrawLine(s.x1, s.y1, s.x2, s.y2)
		}
	}
}
