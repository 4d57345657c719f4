package scenario

import (
	"fmt"
	"log/slog"

	"github.com/golang/geo/r3"
	"github.com/san-kum/massim/internal/config"
	"github.com/san-kum/massim/internal/dynamo"
	"github.com/san-kum/massim/internal/geometry"
	"github.com/san-kum/massim/internal/mad"
	"github.com/san-kum/massim/internal/particle"
)

func coefficients(s config.SpringConfig) mad.SpringCoefficients {
	return mad.SpringCoefficients{Stiffness: s.Stiffness, Damping: s.Damping}
}

// bodySystem wraps a body in a system with gravity, its springs, and the
// configured ground.
func bodySystem(cfg *config.Config, body *mad.Body, springs *mad.SpringForceGenerator) (*mad.System, error) {
	sys := mad.NewSystem()
	sys.AddBody(body)
	if err := sys.AddForceGenerator(body, springs); err != nil {
		return nil, err
	}
	if g := cfg.World.Gravity; !g.IsZero() {
		if err := sys.AddForceGenerator(body, mad.Gravity{G: g.R3()}); err != nil {
			return nil, err
		}
	}
	if cfg.World.Ground {
		sys.SetGround(&mad.Ground{Height: cfg.World.GroundHeight, Restitution: cfg.World.GroundRestitution})
	}
	return sys, nil
}

func buildVolume(cfg *config.Config, logger *slog.Logger) (dynamo.Simulation, error) {
	vc := cfg.Volume
	v, err := mad.NewVolume(mad.VolumeSpec{
		Mass:                vc.Mass,
		Scale:               vc.Scale,
		Resolution:          mad.Resolution{Cols: vc.Resolution[0], Rows: vc.Resolution[1], Slices: vc.Resolution[2]},
		Damping:             vc.Damping,
		Center:              vc.Center.R3(),
		Structural:          coefficients(vc.Structural),
		Shear:               coefficients(vc.Shear),
		Flexion:             coefficients(vc.Flexion),
		DisableStretchClamp: !vc.StretchClamp,
	})
	if err != nil {
		return nil, err
	}
	logger.Debug("built volume", "masses", v.Len(), "springs", v.Springs.Len())
	return bodySystem(cfg, v.Body, v.Springs)
}

func buildCurve(cfg *config.Config, logger *slog.Logger) (dynamo.Simulation, error) {
	cc := cfg.Curve
	c, err := mad.NewLineCurve(cc.From.R3(), cc.To.R3(), cc.Segments, mad.CurveSpec{
		Mass:                cc.Mass,
		Damping:             cc.Damping,
		Structural:          coefficients(cc.Structural),
		Flexion:             coefficients(cc.Flexion),
		DisableStretchClamp: !cc.StretchClamp,
	})
	if err != nil {
		return nil, err
	}
	if cc.PinEnds {
		c.PinEnds()
	}
	logger.Debug("built curve", "masses", c.Len(), "springs", c.Springs.Len())
	return bodySystem(cfg, c.Body, c.Springs)
}

// Mesh builds the configured cook mesh; it is not yet built.
func Mesh(cc config.CookConfig) (*geometry.TriangleMesh, error) {
	switch cc.Mesh {
	case "box":
		return geometry.NewBox(cc.Center.R3(), cc.Size.R3()), nil
	case "sphere":
		return geometry.NewUVSphere(cc.Center.R3(), cc.Radius, cc.Stacks, cc.Sectors)
	default:
		return nil, fmt.Errorf("%w: unknown mesh kind %q", dynamo.ErrInvalidArgument, cc.Mesh)
	}
}

// CookSpec converts the cook section into a cooking request.
func CookSpec(cfg *config.Config) mad.CookSpec {
	cc := cfg.Cook
	return mad.CookSpec{
		TotalMass:           cc.TotalMass,
		Step:                cc.Step,
		Damping:             cc.Damping,
		Structural:          coefficients(cc.Structural),
		Shear:               coefficients(cc.Shear),
		Flexion:             coefficients(cc.Flexion),
		Surface:             coefficients(cc.Surface),
		Internal:            coefficients(cc.Internal),
		RayDirection:        cc.RayDirection.R3(),
		Seed:                cfg.Seed,
		SurfaceSprings:      cc.SurfaceSprings,
		InternalSprings:     cc.InternalSprings,
		Neighbours:          cc.Neighbours,
		DisableStretchClamp: !cc.StretchClamp,
	}
}

// cookBuilder cooks the configured mesh parameters as the given mesh kind.
func cookBuilder(kind string) Builder {
	return func(cfg *config.Config, logger *slog.Logger) (dynamo.Simulation, error) {
		cc := cfg.Cook
		cc.Mesh = kind
		mesh, err := Mesh(cc)
		if err != nil {
			return nil, err
		}
		v, err := mad.Cook(mesh, CookSpec(cfg), logger)
		if err != nil {
			return nil, err
		}
		return bodySystem(cfg, v.Body, v.Springs)
	}
}

// particleWorld returns an empty world configured from cfg.World and the
// ground generator, if enabled, already registered.
func particleWorld(cfg *config.Config) (*particle.World, *particle.GroundContactGenerator, error) {
	w, err := particle.NewWorld(cfg.World.MaxContacts, cfg.World.Iterations)
	if err != nil {
		return nil, nil, err
	}
	var ground *particle.GroundContactGenerator
	if cfg.World.Ground {
		ground = particle.NewGroundContactGenerator(cfg.World.GroundRestitution)
		ground.Height = cfg.World.GroundHeight
		w.AddContactGenerator(ground)
	}
	return w, ground, nil
}

// addParticle stores a particle, registers gravity on it, and tracks it
// against the ground.
func addParticle(w *particle.World, ground *particle.GroundContactGenerator, gravity *particle.Gravity, pos r3.Vector, mass, damping float64) (particle.Handle, error) {
	p, err := particle.New(pos, mass, damping)
	if err != nil {
		return particle.None, err
	}
	h := w.Arena().Add(p)
	if gravity != nil {
		if err := w.Registry().Add(w.Arena(), h, gravity); err != nil {
			return particle.None, err
		}
	}
	if ground != nil {
		if err := ground.Track(w.Arena(), h); err != nil {
			return particle.None, err
		}
	}
	return h, nil
}

func gravityOf(cfg *config.Config) *particle.Gravity {
	if cfg.World.Gravity.IsZero() {
		return nil
	}
	return particle.NewGravity(cfg.World.Gravity.R3())
}

func buildRopeBridge(cfg *config.Config, logger *slog.Logger) (dynamo.Simulation, error) {
	rc := cfg.Rope
	if rc.Links < 1 {
		return nil, fmt.Errorf("%w: rope.links %d must be positive", dynamo.ErrInvalidArgument, rc.Links)
	}
	w, ground, err := particleWorld(cfg)
	if err != nil {
		return nil, err
	}
	gravity := gravityOf(cfg)

	span := float64(rc.Links) * rc.LinkLength
	start := rc.Anchor.R3().Sub(r3.Vector{X: span / 2, Y: rc.LinkLength})
	handles := make([]particle.Handle, rc.Links+1)
	for i := range handles {
		pos := start.Add(r3.Vector{X: float64(i) * rc.LinkLength})
		if handles[i], err = addParticle(w, ground, gravity, pos, rc.Mass, rc.Damping); err != nil {
			return nil, err
		}
	}

	for i := 0; i+1 < len(handles); i++ {
		// A little slack so the deck sags.
		cable, err := particle.NewCable(w.Arena(), handles[i], handles[i+1], rc.LinkLength*1.05, rc.Restitution)
		if err != nil {
			return nil, err
		}
		w.AddContactGenerator(cable)
	}

	for _, end := range []struct {
		h      particle.Handle
		anchor r3.Vector
	}{
		{handles[0], rc.Anchor.R3().Sub(r3.Vector{X: span / 2})},
		{handles[len(handles)-1], rc.Anchor.R3().Add(r3.Vector{X: span / 2})},
	} {
		anchor := end.anchor
		rod, err := particle.NewAnchoredRod(w.Arena(), end.h, &anchor, rc.LinkLength)
		if err != nil {
			return nil, err
		}
		w.AddContactGenerator(rod)
	}

	logger.Debug("built rope bridge", "particles", w.Arena().Len())
	return w, nil
}

func buildCableChain(cfg *config.Config, logger *slog.Logger) (dynamo.Simulation, error) {
	rc := cfg.Rope
	if rc.Links < 1 {
		return nil, fmt.Errorf("%w: rope.links %d must be positive", dynamo.ErrInvalidArgument, rc.Links)
	}
	w, ground, err := particleWorld(cfg)
	if err != nil {
		return nil, err
	}
	gravity := gravityOf(cfg)

	// The chain starts horizontal so it swings down.
	handles := make([]particle.Handle, rc.Links)
	for i := range handles {
		pos := rc.Anchor.R3().Add(r3.Vector{X: float64(i+1) * rc.LinkLength})
		if handles[i], err = addParticle(w, ground, gravity, pos, rc.Mass, rc.Damping); err != nil {
			return nil, err
		}
	}

	anchor := rc.Anchor.R3()
	cable, err := particle.NewAnchoredCable(w.Arena(), handles[0], &anchor, rc.LinkLength, rc.Restitution)
	if err != nil {
		return nil, err
	}
	w.AddContactGenerator(cable)

	for i := 0; i+1 < len(handles); i++ {
		rod, err := particle.NewRod(w.Arena(), handles[i], handles[i+1], rc.LinkLength)
		if err != nil {
			return nil, err
		}
		w.AddContactGenerator(rod)
	}

	logger.Debug("built cable chain", "particles", w.Arena().Len())
	return w, nil
}

func buildSprings(cfg *config.Config, logger *slog.Logger) (dynamo.Simulation, error) {
	rc := cfg.Rope
	w, ground, err := particleWorld(cfg)
	if err != nil {
		return nil, err
	}
	gravity := gravityOf(cfg)
	rest := rc.LinkLength * 2

	// Two particles hang from anchors: one on a spring, one on a bungee.
	springAnchor := rc.Anchor.R3().Sub(r3.Vector{X: 1})
	bungeeAnchor := rc.Anchor.R3().Add(r3.Vector{X: 1})

	hs, err := addParticle(w, ground, gravity, springAnchor.Sub(r3.Vector{Y: rest / 2}), rc.Mass, rc.Damping)
	if err != nil {
		return nil, err
	}
	as, err := particle.NewAnchoredSpring(&springAnchor, rc.Stiffness, rest)
	if err != nil {
		return nil, err
	}
	if err := w.Registry().Add(w.Arena(), hs, as); err != nil {
		return nil, err
	}

	hb, err := addParticle(w, ground, gravity, bungeeAnchor.Sub(r3.Vector{Y: rest / 2}), rc.Mass, rc.Damping)
	if err != nil {
		return nil, err
	}
	ab, err := particle.NewAnchoredBungee(&bungeeAnchor, rc.Stiffness, rest)
	if err != nil {
		return nil, err
	}
	if err := w.Registry().Add(w.Arena(), hb, ab); err != nil {
		return nil, err
	}

	// A free pair joined by a spring and a second pair joined by a bungee.
	pairs := []struct {
		at     r3.Vector
		bungee bool
	}{
		{rc.Anchor.R3().Add(r3.Vector{X: -3, Y: -1}), false},
		{rc.Anchor.R3().Add(r3.Vector{X: 3, Y: -1}), true},
	}
	for _, pr := range pairs {
		a, err := addParticle(w, ground, gravity, pr.at, rc.Mass, rc.Damping)
		if err != nil {
			return nil, err
		}
		b, err := addParticle(w, ground, gravity, pr.at.Add(r3.Vector{X: rest * 1.5}), rc.Mass, rc.Damping)
		if err != nil {
			return nil, err
		}
		for _, end := range [2][2]particle.Handle{{a, b}, {b, a}} {
			var fg particle.ForceGenerator
			if pr.bungee {
				fg, err = particle.NewBungee(w.Arena(), end[1], rc.Stiffness, rest)
			} else {
				fg, err = particle.NewSpring(w.Arena(), end[1], rc.Stiffness, rest)
			}
			if err != nil {
				return nil, err
			}
			if err := w.Registry().Add(w.Arena(), end[0], fg); err != nil {
				return nil, err
			}
		}
	}

	logger.Debug("built springs", "particles", w.Arena().Len(), "registrations", w.Registry().Len())
	return w, nil
}

func buildBuoyancy(cfg *config.Config, logger *slog.Logger) (dynamo.Simulation, error) {
	bc := cfg.Buoyancy
	if bc.Particles < 1 {
		return nil, fmt.Errorf("%w: buoyancy.particles %d must be positive", dynamo.ErrInvalidArgument, bc.Particles)
	}
	w, ground, err := particleWorld(cfg)
	if err != nil {
		return nil, err
	}
	gravity := gravityOf(cfg)

	float, err := particle.NewBuoyancy(bc.MaxDepth, bc.Volume, bc.WaterHeight, bc.LiquidDensity)
	if err != nil {
		return nil, err
	}
	drag := particle.NewDrag(bc.DragK1, bc.DragK2)

	for i := 0; i < bc.Particles; i++ {
		// Stagger drop heights so the particles enter the liquid one by one.
		pos := r3.Vector{X: float64(i) - float64(bc.Particles-1)/2, Y: bc.WaterHeight + 1 + 0.5*float64(i)}
		h, err := addParticle(w, ground, gravity, pos, bc.Mass, config.DefaultDamping)
		if err != nil {
			return nil, err
		}
		for _, fg := range []particle.ForceGenerator{float, drag} {
			if err := w.Registry().Add(w.Arena(), h, fg); err != nil {
				return nil, err
			}
		}
	}

	logger.Debug("built buoyancy", "particles", w.Arena().Len())
	return w, nil
}
