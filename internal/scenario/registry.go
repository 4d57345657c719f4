package scenario

import (
	"fmt"
	"log/slog"
	"math"
	"sort"

	"github.com/san-kum/massim/internal/config"
	"github.com/san-kum/massim/internal/dynamo"
	"github.com/san-kum/massim/internal/metrics"
)

// Builder turns a configuration into a ready-to-step simulation.
type Builder func(cfg *config.Config, logger *slog.Logger) (dynamo.Simulation, error)

type entry struct {
	build       Builder
	description string
}

type Registry struct {
	scenarios map[string]entry
}

func NewRegistry() *Registry {
	r := &Registry{scenarios: make(map[string]entry)}

	r.Register("volume", "regular spring lattice dropped onto the ground", buildVolume)
	r.Register("curve", "spring chain pinned at both ends", buildCurve)
	r.Register("cook_box", "box mesh sampled into a spring lattice", cookBuilder("box"))
	r.Register("cook_sphere", "sphere mesh sampled into a spring lattice", cookBuilder("sphere"))
	r.Register("rope_bridge", "particles joined by cables between two anchored rods", buildRopeBridge)
	r.Register("cable_chain", "rod chain swinging from an anchored cable", buildCableChain)
	r.Register("springs", "anchored springs and bungees", buildSprings)
	r.Register("buoyancy", "particles floating in a liquid with drag", buildBuoyancy)

	return r
}

// Register adds or replaces a scenario.
func (r *Registry) Register(name, description string, b Builder) {
	r.scenarios[name] = entry{build: b, description: description}
}

// Build constructs the named scenario from cfg.
func (r *Registry) Build(name string, cfg *config.Config, logger *slog.Logger) (dynamo.Simulation, error) {
	e, ok := r.scenarios[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown scenario: %s", dynamo.ErrInvalidArgument, name)
	}
	if logger == nil {
		logger = slog.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	sim, err := e.build(cfg, logger.With("scenario", name))
	if err != nil {
		return nil, fmt.Errorf("build %s: %w", name, err)
	}
	return sim, nil
}

func (r *Registry) Describe(name string) string { return r.scenarios[name].description }

// List returns the scenario names in sorted order.
func (r *Registry) List() []string {
	names := make([]string, 0, len(r.scenarios))
	for name := range r.scenarios {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultMetrics returns fresh metric instances for a run of cfg.
func (r *Registry) DefaultMetrics(cfg *config.Config) []dynamo.Metric {
	return []dynamo.Metric{
		metrics.NewKineticEnergy(),
		metrics.NewEnergyDrift(math.Abs(cfg.World.Gravity[1])),
		metrics.NewStability(cfg.World.DivergenceBound),
		metrics.NewMaxStrain(),
	}
}
