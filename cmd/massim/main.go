package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/san-kum/massim/internal/config"
	"github.com/san-kum/massim/internal/scenario"
	"github.com/san-kum/massim/internal/viz"
	"github.com/spf13/cobra"
)

var (
	dataDir    string
	verbose    bool
	dt         float64
	duration   float64
	seed       int64
	configFile string
	preset     string
	sampleRate int
	noSave     bool
	speed      int
	particle   int
	plane      string
	cookSVG    string
	snapOut    string
	configOut  string
	jsonOut    string
	csvOut     string
	pathOut    string
	width      int
	height     int
	axis       string
	level      float64
	section    bool
	braille    bool
	theme      string
)

var registry = scenario.NewRegistry()

func main() {
	rootCmd := &cobra.Command{
		Use:   "massim",
		Short: "mass aggregate physics lab",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return viz.RunMenu(registry, slog.Default())
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".massim", "data directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	runCmd := &cobra.Command{
		Use:   "run [scenario]",
		Short: "run a scenario and store the result",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runScenario,
	}
	scenarioFlags(runCmd)
	runCmd.Flags().IntVar(&sampleRate, "sample", 1, "store every n-th frame")
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "print metrics without storing the run")

	liveCmd := &cobra.Command{
		Use:   "live [scenario]",
		Short: "run a scenario with live visualization",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	scenarioFlags(liveCmd)
	liveCmd.Flags().IntVar(&speed, "speed", 1, "simulation steps per frame")
	liveCmd.Flags().StringVar(&theme, "theme", viz.Themes[0].Name, fmt.Sprintf("color theme %v", viz.ThemeNames()))

	cookCmd := &cobra.Command{
		Use:   "cook [cook_box|cook_sphere]",
		Short: "sample a mesh into a spring lattice and report its topology",
		Args:  cobra.MaximumNArgs(1),
		RunE:  cookMesh,
	}
	scenarioFlags(cookCmd)
	cookCmd.Flags().StringVar(&cookSVG, "svg", "", "write an SVG of the cooked lattice")
	cookCmd.Flags().StringVar(&plane, "plane", "xy", "projection plane for --svg (xy, xz, zy)")

	snapshotCmd := &cobra.Command{
		Use:   "snapshot [scenario]",
		Short: "simulate for --time seconds and write the final frame as SVG",
		Args:  cobra.MaximumNArgs(1),
		RunE:  snapshot,
	}
	scenarioFlags(snapshotCmd)
	snapshotCmd.Flags().StringVar(&snapOut, "out", "snapshot.svg", "output path")
	snapshotCmd.Flags().StringVar(&plane, "plane", "xy", "projection plane (xy, xz, zy)")
	snapshotCmd.Flags().IntVar(&width, "width", 800, "image width")
	snapshotCmd.Flags().IntVar(&height, "height", 600, "image height")
	snapshotCmd.Flags().BoolVar(&braille, "braille", false, "draw through the terminal camera instead of a flat projection")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	scenariosCmd := &cobra.Command{
		Use:   "scenarios",
		Short: "list available scenarios",
		RunE:  listScenarios,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets [scenario]",
		Short: "list available presets for a scenario",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			presets := config.ListPresets(args[0])
			if len(presets) == 0 {
				fmt.Printf("no presets for scenario: %s\n", args[0])
				return nil
			}
			fmt.Printf("presets for %s:\n", args[0])
			for _, p := range presets {
				fmt.Printf("  %s\n", p)
			}
			return nil
		},
	}

	configCmd := &cobra.Command{
		Use:   "config [scenario]",
		Short: "print the resolved configuration as YAML",
		Args:  cobra.MaximumNArgs(1),
		RunE:  printConfig,
	}
	scenarioFlags(configCmd)
	configCmd.Flags().StringVar(&configOut, "out", "", "write to a file instead of stdout")

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a particle's coordinates over time",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().IntVar(&particle, "particle", 0, "particle index")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "print run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run frames to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVar(&jsonOut, "out", "", "output path (default stdout)")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run positions to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().StringVar(&csvOut, "out", "", "output path (default stdout)")

	trajectoryCmd := &cobra.Command{
		Use:   "trajectory [run_id]",
		Short: "write one particle's path as SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  trajectory,
	}
	trajectoryCmd.Flags().IntVar(&particle, "particle", 0, "particle index")
	trajectoryCmd.Flags().StringVar(&plane, "plane", "xy", "projection plane (xy, xz, zy)")
	trajectoryCmd.Flags().StringVar(&pathOut, "out", "trajectory.svg", "output path")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "frequency spectrum of one particle coordinate",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().IntVar(&particle, "particle", 0, "particle index")
	analyzeCmd.Flags().StringVar(&axis, "axis", "y", "coordinate (x, y, z)")

	phaseCmd := &cobra.Command{
		Use:   "phase [run_id]",
		Short: "phase portrait of one particle coordinate",
		Args:  cobra.ExactArgs(1),
		RunE:  phaseRun,
	}
	phaseCmd.Flags().IntVar(&particle, "particle", 0, "particle index")
	phaseCmd.Flags().StringVar(&axis, "axis", "y", "coordinate (x, y, z)")
	phaseCmd.Flags().BoolVar(&section, "poincare", false, "show upward crossings of --level only")
	phaseCmd.Flags().Float64Var(&level, "level", 0, "crossing level for --poincare")

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "run every preset concurrently and report throughput",
		RunE:  bench,
	}
	benchCmd.Flags().Float64("time", 2, "simulated seconds per preset")

	rootCmd.AddCommand(runCmd, liveCmd, cookCmd, snapshotCmd, listCmd, scenariosCmd, presetsCmd,
		configCmd, plotCmd, exportCmd, exportJSONCmd, exportCSVCmd, trajectoryCmd,
		analyzeCmd, phaseCmd, benchCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func scenarioFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	cmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "duration")
	cmd.Flags().Int64Var(&seed, "seed", 1, "random seed")
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
}

// resolveConfig layers defaults, the preset, the config file, and explicitly
// set flags, in that order.
func resolveConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	name := cfg.Scenario
	if len(args) > 0 {
		name = args[0]
	}

	if preset != "" {
		cfg = config.GetPreset(name, preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(name))
		}
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
		if len(args) == 0 {
			name = cfg.Scenario
		}
	}
	cfg.Scenario = name

	if cmd.Flags().Changed("dt") {
		cfg.Dt = dt
	}
	if cmd.Flags().Changed("time") {
		cfg.Duration = duration
	}
	if cmd.Flags().Changed("seed") {
		cfg.Seed = seed
	}
	return cfg, cfg.Validate()
}
