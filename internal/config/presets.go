package config

import "sort"

// preset derives a complete configuration from the defaults.
func preset(scenario string, edit func(c *Config)) *Config {
	c := DefaultConfig()
	c.Scenario = scenario
	if edit != nil {
		edit(c)
	}
	return c
}

var Presets = map[string]map[string]*Config{
	"volume": {
		"drop": preset("volume", nil),
		"stiff": preset("volume", func(c *Config) {
			c.Volume.Structural = SpringConfig{Stiffness: 400, Damping: 2}
			c.Volume.Shear = SpringConfig{Stiffness: 200, Damping: 2}
			c.Volume.Flexion = SpringConfig{Stiffness: 100, Damping: 2}
			c.Dt = 1.0 / 240
		}),
		"jelly": preset("volume", func(c *Config) {
			c.Volume.Resolution = [3]int{5, 5, 5}
			c.Volume.Scale = 0.5
			c.Volume.Structural = SpringConfig{Stiffness: 40, Damping: 0.2}
			c.Volume.Shear = SpringConfig{Stiffness: 20, Damping: 0.2}
			c.Volume.Flexion = SpringConfig{Stiffness: 10, Damping: 0.2}
		}),
		"floating": preset("volume", func(c *Config) {
			c.World.Gravity = Vec3{}
			c.World.Ground = false
			c.Volume.Center = Vec3{}
		}),
	},
	"curve": {
		"bridge": preset("curve", nil),
		"hanging": preset("curve", func(c *Config) {
			c.Curve.From = Vec3{0, 4, 0}
			c.Curve.To = Vec3{4, 4, 0}
			c.Curve.PinEnds = false
		}),
	},
	"cook_box": {
		"default": preset("cook_box", nil),
		"coarse": preset("cook_box", func(c *Config) {
			c.Cook.Step = 1
			c.Cook.InternalSprings = false
		}),
	},
	"cook_sphere": {
		"default": preset("cook_sphere", func(c *Config) {
			c.Cook.Mesh = "sphere"
			c.Cook.Step = 0.4
		}),
		"fine": preset("cook_sphere", func(c *Config) {
			c.Cook.Mesh = "sphere"
			c.Cook.Step = 0.25
			c.Cook.Stacks = 16
			c.Cook.Sectors = 24
			c.Dt = 1.0 / 120
		}),
	},
	"rope_bridge": {
		"default": preset("rope_bridge", nil),
		"long": preset("rope_bridge", func(c *Config) {
			c.Rope.Links = 16
			c.Rope.LinkLength = 0.3
		}),
	},
	"cable_chain": {
		"default": preset("cable_chain", nil),
		"bouncy": preset("cable_chain", func(c *Config) {
			c.Rope.Restitution = 0.8
			c.World.GroundRestitution = 0.75
		}),
	},
	"springs": {
		"default": preset("springs", nil),
		"soft": preset("springs", func(c *Config) {
			c.Rope.Stiffness = 10
			c.Rope.Damping = 0.95
		}),
	},
	"buoyancy": {
		"default": preset("buoyancy", func(c *Config) {
			c.World.Ground = false
		}),
		"dense": preset("buoyancy", func(c *Config) {
			c.World.Ground = false
			c.Buoyancy.LiquidDensity = 400
		}),
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(scenario, name string) *Config {
	scenarioPresets, ok := Presets[scenario]
	if !ok {
		return nil
	}
	cfg, ok := scenarioPresets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

// ListPresets returns the preset names of a scenario in sorted order.
func ListPresets(scenario string) []string {
	scenarioPresets, ok := Presets[scenario]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(scenarioPresets))
	for name := range scenarioPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
