package particle

import (
	"fmt"

	"github.com/golang/geo/r3"
	"github.com/san-kum/massim/internal/dynamo"
)

// ForceGenerator adds force to one particle per call.
type ForceGenerator interface {
	UpdateForce(a *Arena, h Handle, dt float64)
}

// Gravity applies a constant acceleration scaled by mass.
type Gravity struct {
	Gravity r3.Vector
}

func NewGravity(g r3.Vector) *Gravity { return &Gravity{Gravity: g} }

func (g *Gravity) UpdateForce(a *Arena, h Handle, _ float64) {
	p := a.Get(h)
	if !p.HasFiniteMass() {
		return
	}
	p.AddForce(g.Gravity.Mul(p.Mass()))
}

// Drag opposes velocity with k1|v| + k2|v|².
type Drag struct {
	K1, K2 float64
}

func NewDrag(k1, k2 float64) *Drag { return &Drag{K1: k1, K2: k2} }

func (d *Drag) UpdateForce(a *Arena, h Handle, _ float64) {
	p := a.Get(h)
	speed := p.Velocity.Norm()
	if speed < dynamo.Epsilon {
		return
	}
	coeff := d.K1*speed + d.K2*speed*speed
	p.AddForce(p.Velocity.Normalize().Mul(-coeff))
}

// springForce is Hooke's law along d = p - other. It returns false for a
// zero-length spring, which exerts no force.
func springForce(d r3.Vector, restLength, k float64, slackOnly bool) (r3.Vector, bool) {
	length := d.Norm()
	if length < dynamo.Epsilon {
		return r3.Vector{}, false
	}
	if slackOnly && length <= restLength {
		return r3.Vector{}, false
	}
	return d.Mul(-k * (length - restLength) / length), true
}

// Spring connects the updated particle to Other. Register it once per end to
// act on both.
type Spring struct {
	Other          Handle
	SpringConstant float64
	RestLength     float64
}

// NewSpring fails when other is not a particle of a.
func NewSpring(a *Arena, other Handle, k, restLength float64) (*Spring, error) {
	if err := a.check(other); err != nil {
		return nil, err
	}
	return &Spring{Other: other, SpringConstant: k, RestLength: restLength}, nil
}

func (s *Spring) UpdateForce(a *Arena, h Handle, _ float64) {
	p := a.Get(h)
	d := p.Position.Sub(a.Get(s.Other).Position)
	if f, ok := springForce(d, s.RestLength, s.SpringConstant, false); ok {
		p.AddForce(f)
	}
}

// AnchoredSpring ties a particle to a world-space point that may move between frames.
type AnchoredSpring struct {
	anchor         *r3.Vector
	SpringConstant float64
	RestLength     float64
}

// NewAnchoredSpring fails when anchor is nil.
func NewAnchoredSpring(anchor *r3.Vector, k, restLength float64) (*AnchoredSpring, error) {
	if anchor == nil {
		return nil, fmt.Errorf("%w: anchored spring needs an anchor", dynamo.ErrInvalidArgument)
	}
	return &AnchoredSpring{anchor: anchor, SpringConstant: k, RestLength: restLength}, nil
}

func (s *AnchoredSpring) Anchor() r3.Vector { return *s.anchor }

// SetAnchor moves the attachment point.
func (s *AnchoredSpring) SetAnchor(anchor r3.Vector) { *s.anchor = anchor }

func (s *AnchoredSpring) UpdateForce(a *Arena, h Handle, _ float64) {
	p := a.Get(h)
	if f, ok := springForce(p.Position.Sub(*s.anchor), s.RestLength, s.SpringConstant, false); ok {
		p.AddForce(f)
	}
}

// Bungee only pulls: it exerts nothing while shorter than RestLength.
type Bungee struct {
	Other          Handle
	SpringConstant float64
	RestLength     float64
}

func NewBungee(a *Arena, other Handle, k, restLength float64) (*Bungee, error) {
	if err := a.check(other); err != nil {
		return nil, err
	}
	return &Bungee{Other: other, SpringConstant: k, RestLength: restLength}, nil
}

func (b *Bungee) UpdateForce(a *Arena, h Handle, _ float64) {
	p := a.Get(h)
	d := p.Position.Sub(a.Get(b.Other).Position)
	if f, ok := springForce(d, b.RestLength, b.SpringConstant, true); ok {
		p.AddForce(f)
	}
}

// AnchoredBungee is a Bungee attached to a world-space point.
type AnchoredBungee struct {
	anchor         *r3.Vector
	SpringConstant float64
	RestLength     float64
}

func NewAnchoredBungee(anchor *r3.Vector, k, restLength float64) (*AnchoredBungee, error) {
	if anchor == nil {
		return nil, fmt.Errorf("%w: anchored bungee needs an anchor", dynamo.ErrInvalidArgument)
	}
	return &AnchoredBungee{anchor: anchor, SpringConstant: k, RestLength: restLength}, nil
}

func (b *AnchoredBungee) Anchor() r3.Vector { return *b.anchor }

func (b *AnchoredBungee) SetAnchor(anchor r3.Vector) { *b.anchor = anchor }

func (b *AnchoredBungee) UpdateForce(a *Arena, h Handle, _ float64) {
	p := a.Get(h)
	if f, ok := springForce(p.Position.Sub(*b.anchor), b.RestLength, b.SpringConstant, true); ok {
		p.AddForce(f)
	}
}

// Buoyancy pushes a particle up out of a liquid whose surface is the plane
// y == WaterHeight. The force ramps linearly from zero at
// WaterHeight+MaxDepth to LiquidDensity*Volume at WaterHeight-MaxDepth.
type Buoyancy struct {
	MaxDepth      float64
	Volume        float64
	WaterHeight   float64
	LiquidDensity float64
}

func NewBuoyancy(maxDepth, volume, waterHeight, liquidDensity float64) (*Buoyancy, error) {
	if maxDepth <= dynamo.Epsilon {
		return nil, fmt.Errorf("%w: buoyancy max depth %g must be positive", dynamo.ErrInvalidArgument, maxDepth)
	}
	return &Buoyancy{MaxDepth: maxDepth, Volume: volume, WaterHeight: waterHeight, LiquidDensity: liquidDensity}, nil
}

// Force returns the buoyant force for a particle at height y.
func (b *Buoyancy) Force(y float64) r3.Vector {
	switch {
	case y >= b.WaterHeight+b.MaxDepth:
		return r3.Vector{}
	case y <= b.WaterHeight-b.MaxDepth:
		return r3.Vector{Y: b.LiquidDensity * b.Volume}
	default:
		return r3.Vector{Y: b.LiquidDensity * b.Volume * (b.WaterHeight + b.MaxDepth - y) / (2 * b.MaxDepth)}
	}
}

func (b *Buoyancy) UpdateForce(a *Arena, h Handle, _ float64) {
	p := a.Get(h)
	if f := b.Force(p.Position.Y); f.Y != 0 {
		p.AddForce(f)
	}
}
