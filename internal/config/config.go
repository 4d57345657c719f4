package config

import (
	"fmt"
	"os"

	"github.com/golang/geo/r3"
	"github.com/san-kum/massim/internal/dynamo"
	"gopkg.in/yaml.v3"
)

const (
	DefaultDt                = 1.0 / 60
	DefaultDuration          = 10.0
	DefaultMaxContacts       = 256
	DefaultGroundRestitution = 0.2
	DefaultGravity           = -9.81
	DefaultDamping           = 0.99
	DefaultDivergenceBound   = 1e6
)

// Vec3 is written as a YAML flow sequence [x, y, z].
type Vec3 [3]float64

func (v Vec3) R3() r3.Vector { return r3.Vector{X: v[0], Y: v[1], Z: v[2]} }

func (v Vec3) IsZero() bool { return v == Vec3{} }

type Config struct {
	Scenario string  `yaml:"scenario"`
	Dt       float64 `yaml:"dt"`
	Duration float64 `yaml:"duration"`
	Seed     int64   `yaml:"seed"`

	World    WorldConfig    `yaml:"world"`
	Volume   VolumeConfig   `yaml:"volume"`
	Cook     CookConfig     `yaml:"cook"`
	Curve    CurveConfig    `yaml:"curve"`
	Rope     RopeConfig     `yaml:"rope"`
	Buoyancy BuoyancyConfig `yaml:"buoyancy"`
}

// WorldConfig covers the particle world and the shared environment.
type WorldConfig struct {
	MaxContacts int `yaml:"max_contacts"`
	// Iterations is the contact resolver budget; 0 means twice the contact count.
	Iterations        int     `yaml:"iterations"`
	Ground            bool    `yaml:"ground"`
	GroundHeight      float64 `yaml:"ground_height"`
	GroundRestitution float64 `yaml:"ground_restitution"`
	Gravity           Vec3    `yaml:"gravity"`
	// DivergenceBound fails a run once any coordinate exceeds it.
	DivergenceBound float64 `yaml:"divergence_bound"`
}

type SpringConfig struct {
	Stiffness float64 `yaml:"stiffness"`
	Damping   float64 `yaml:"damping"`
}

type VolumeConfig struct {
	Mass    float64 `yaml:"mass"`
	Scale   float64 `yaml:"scale"`
	Damping float64 `yaml:"damping"`
	// Resolution is [cols, rows, slices].
	Resolution   [3]int       `yaml:"resolution"`
	Center       Vec3         `yaml:"center"`
	Structural   SpringConfig `yaml:"structural"`
	Shear        SpringConfig `yaml:"shear"`
	Flexion      SpringConfig `yaml:"flexion"`
	StretchClamp bool         `yaml:"stretch_clamp"`
}

type CookConfig struct {
	// Mesh is "box" or "sphere".
	Mesh    string  `yaml:"mesh"`
	Size    Vec3    `yaml:"size"`
	Radius  float64 `yaml:"radius"`
	Stacks  int     `yaml:"stacks"`
	Sectors int     `yaml:"sectors"`
	Center  Vec3    `yaml:"center"`

	Step      float64 `yaml:"step"`
	TotalMass float64 `yaml:"total_mass"`
	Damping   float64 `yaml:"damping"`
	// RayDirection is used for every inside test; [0,0,0] picks random rays.
	RayDirection    Vec3 `yaml:"ray_direction"`
	SurfaceSprings  bool `yaml:"surface_springs"`
	InternalSprings bool `yaml:"internal_springs"`
	Neighbours      int  `yaml:"neighbours"`

	Structural   SpringConfig `yaml:"structural"`
	Shear        SpringConfig `yaml:"shear"`
	Flexion      SpringConfig `yaml:"flexion"`
	Surface      SpringConfig `yaml:"surface"`
	Internal     SpringConfig `yaml:"internal"`
	StretchClamp bool         `yaml:"stretch_clamp"`
}

type CurveConfig struct {
	From         Vec3         `yaml:"from"`
	To           Vec3         `yaml:"to"`
	Segments     int          `yaml:"segments"`
	Mass         float64      `yaml:"mass"`
	Damping      float64      `yaml:"damping"`
	Structural   SpringConfig `yaml:"structural"`
	Flexion      SpringConfig `yaml:"flexion"`
	PinEnds      bool         `yaml:"pin_ends"`
	StretchClamp bool         `yaml:"stretch_clamp"`
}

// RopeConfig describes particle chains joined by rods or cables.
type RopeConfig struct {
	Links       int     `yaml:"links"`
	LinkLength  float64 `yaml:"link_length"`
	Mass        float64 `yaml:"mass"`
	Damping     float64 `yaml:"damping"`
	Restitution float64 `yaml:"restitution"`
	Stiffness   float64 `yaml:"stiffness"`
	Anchor      Vec3    `yaml:"anchor"`
}

type BuoyancyConfig struct {
	Particles     int     `yaml:"particles"`
	Mass          float64 `yaml:"mass"`
	MaxDepth      float64 `yaml:"max_depth"`
	Volume        float64 `yaml:"volume"`
	WaterHeight   float64 `yaml:"water_height"`
	LiquidDensity float64 `yaml:"liquid_density"`
	DragK1        float64 `yaml:"drag_k1"`
	DragK2        float64 `yaml:"drag_k2"`
}

func DefaultConfig() *Config {
	spring := SpringConfig{Stiffness: 100, Damping: 1}
	return &Config{
		Scenario: "volume",
		Dt:       DefaultDt,
		Duration: DefaultDuration,
		Seed:     1,
		World: WorldConfig{
			MaxContacts:       DefaultMaxContacts,
			Ground:            true,
			GroundRestitution: DefaultGroundRestitution,
			Gravity:           Vec3{0, DefaultGravity, 0},
			DivergenceBound:   DefaultDivergenceBound,
		},
		Volume: VolumeConfig{
			Mass:         1,
			Scale:        1,
			Damping:      DefaultDamping,
			Resolution:   [3]int{3, 3, 3},
			Center:       Vec3{0, 3, 0},
			Structural:   spring,
			Shear:        SpringConfig{Stiffness: 50, Damping: 1},
			Flexion:      SpringConfig{Stiffness: 25, Damping: 1},
			StretchClamp: true,
		},
		Cook: CookConfig{
			Mesh:            "box",
			Size:            Vec3{2, 2, 2},
			Radius:          1,
			Stacks:          12,
			Sectors:         18,
			Center:          Vec3{0, 3, 0},
			Step:            0.5,
			TotalMass:       10,
			Damping:         DefaultDamping,
			SurfaceSprings:  true,
			InternalSprings: true,
			Neighbours:      3,
			Structural:      spring,
			Shear:           SpringConfig{Stiffness: 50, Damping: 1},
			Flexion:         SpringConfig{Stiffness: 25, Damping: 1},
			Surface:         spring,
			Internal:        spring,
			StretchClamp:    true,
		},
		Curve: CurveConfig{
			From:         Vec3{-2, 3, 0},
			To:           Vec3{2, 3, 0},
			Segments:     16,
			Mass:         0.1,
			Damping:      DefaultDamping,
			Structural:   SpringConfig{Stiffness: 200, Damping: 0.5},
			Flexion:      SpringConfig{Stiffness: 10, Damping: 0.1},
			PinEnds:      true,
			StretchClamp: true,
		},
		Rope: RopeConfig{
			Links:       8,
			LinkLength:  0.5,
			Mass:        0.2,
			Damping:     DefaultDamping,
			Restitution: 0.3,
			Stiffness:   50,
			Anchor:      Vec3{0, 5, 0},
		},
		Buoyancy: BuoyancyConfig{
			Particles:     5,
			Mass:          0.1,
			MaxDepth:      0.5,
			Volume:        0.002,
			WaterHeight:   1,
			LiquidDensity: 1000,
			DragK1:        0.5,
			DragK2:        0.1,
		},
	}
}

// Validate checks the fields every scenario relies on.
func (c *Config) Validate() error {
	switch {
	case c.Dt <= 0:
		return fmt.Errorf("%w: dt %g must be positive", dynamo.ErrInvalidArgument, c.Dt)
	case c.Duration <= 0:
		return fmt.Errorf("%w: duration %g must be positive", dynamo.ErrInvalidArgument, c.Duration)
	case c.World.MaxContacts <= 0:
		return fmt.Errorf("%w: world.max_contacts %d must be positive", dynamo.ErrInvalidArgument, c.World.MaxContacts)
	case c.World.Iterations < 0:
		return fmt.Errorf("%w: world.iterations %d is negative", dynamo.ErrInvalidArgument, c.World.Iterations)
	}
	for _, n := range c.Volume.Resolution {
		if n < 1 {
			return fmt.Errorf("%w: volume.resolution %v needs every axis >= 1", dynamo.ErrInvalidArgument, c.Volume.Resolution)
		}
	}
	return nil
}

// Steps is the number of whole frames in Duration.
func (c *Config) Steps() int { return int(c.Duration/c.Dt + 0.5) }

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Clone returns a deep copy; every field is a value type.
func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}
