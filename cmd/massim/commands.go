package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/massim/internal/config"
	"github.com/san-kum/massim/internal/dynamo"
	"github.com/san-kum/massim/internal/export"
	"github.com/san-kum/massim/internal/mad"
	"github.com/san-kum/massim/internal/scenario"
	"github.com/san-kum/massim/internal/storage"
	"github.com/san-kum/massim/internal/viz"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func runScenario(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	logger := slog.Default()

	sim, err := registry.Build(cfg.Scenario, cfg, logger)
	if err != nil {
		return err
	}
	runner := scenario.NewRunner(sim, logger)
	for _, m := range registry.DefaultMetrics(cfg) {
		runner.AddMetric(m)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rc := scenario.RunConfigFor(cfg)
	rc.SampleEvery = sampleRate

	fmt.Printf("running %s simulation...\n", cfg.Scenario)
	progress := viz.NewProgress(os.Stderr, cfg.Duration)
	runner.AddObserver(progress)
	start := time.Now()
	result, runErr := runner.Run(ctx, rc)
	progress.Done()
	if result == nil {
		return runErr
	}
	elapsed := time.Since(start)
	if runErr != nil {
		logger.Warn("run ended early", "steps", result.StepsTaken, "err", runErr)
	}

	fmt.Printf("completed in %v\n", elapsed)
	if !noSave {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		runID, err := st.Save(storage.RunMetadata{
			Scenario: cfg.Scenario,
			Preset:   preset,
			Seed:     cfg.Seed,
			Dt:       cfg.Dt,
			Duration: cfg.Duration,
			Metrics:  result.Metrics,
		}, result.Frames)
		if err != nil {
			return err
		}
		fmt.Printf("run id: %s\n", runID)
	}
	fmt.Printf("steps: %d\n", result.StepsTaken)
	fmt.Println("\nmetrics:")
	printMetrics(os.Stdout, result.Metrics)

	return runErr
}

func printMetrics(w io.Writer, metrics map[string]float64) {
	names := make([]string, 0, len(metrics))
	for name := range metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %s: %.6f\n", name, metrics[name])
	}
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	return viz.RunLive(registry, cfg, speed, theme, slog.Default())
}

func cookMesh(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	switch cfg.Scenario {
	case "cook_box":
		cfg.Cook.Mesh = "box"
	case "cook_sphere":
		cfg.Cook.Mesh = "sphere"
	}

	mesh, err := scenario.Mesh(cfg.Cook)
	if err != nil {
		return err
	}
	start := time.Now()
	v, err := mad.Cook(mesh, scenario.CookSpec(cfg), slog.Default())
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	bounds, err := mesh.Bounds()
	if err != nil {
		return err
	}
	res := v.Resolution()
	fmt.Printf("mesh: %s (%d triangles)\n", cfg.Cook.Mesh, mesh.Len())
	fmt.Printf("bounds: %v .. %v\n", bounds.Min, bounds.Max)
	fmt.Printf("lattice: %dx%dx%d (%d points, step %.3f)\n", res.Cols, res.Rows, res.Slices, v.LatticeCount(), cfg.Cook.Step)
	fmt.Printf("masses: %d valid of %d\n", v.ValidCount(), v.ParticleCount())
	fmt.Printf("total mass: %.4f\n", v.TotalMass())
	fmt.Printf("cooked in %v\n\n", elapsed)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "FAMILY\tSPRINGS")
	for f := mad.Structural; f <= mad.Internal; f++ {
		fmt.Fprintf(w, "%s\t%d\n", f, len(v.SpringsOf(f)))
	}
	fmt.Fprintf(w, "total\t%d\n", v.Springs.Len())
	if err := w.Flush(); err != nil {
		return err
	}

	if cookSVG == "" {
		return nil
	}
	p, err := export.ParsePlane(plane)
	if err != nil {
		return err
	}
	sys := mad.NewSystem()
	sys.AddBody(v.Body)
	if err := sys.AddForceGenerator(v.Body, v.Springs); err != nil {
		return err
	}
	return writeFile(cookSVG, export.FrameToSVG(sys.Frame(), p, 800, 600))
}

func snapshot(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	p, err := export.ParsePlane(plane)
	if err != nil {
		return err
	}
	sim, err := registry.Build(cfg.Scenario, cfg, slog.Default())
	if err != nil {
		return err
	}

	runner := scenario.NewRunner(sim, slog.Default())
	progress := viz.NewProgress(os.Stderr, cfg.Duration)
	err = runner.RunWithCallback(context.Background(), scenario.RunConfigFor(cfg), func(f dynamo.Frame) bool {
		progress.OnStep(f)
		return true
	})
	last := runner.Simulation().Frame()
	progress.OnStep(last)
	progress.Done()
	if err != nil {
		slog.Warn("snapshot taken before the run finished", "err", err)
	}

	svg := export.FrameToSVG(last, p, width, height)
	if braille {
		var ground *float64
		if cfg.World.Ground {
			ground = &cfg.World.GroundHeight
		}
		canvas := viz.NewCanvas(width/8, height/16)
		cam := viz.NewCamera()
		cam.Fit(last)
		viz.RenderFrame(canvas, last, cam, ground)
		svg = export.CanvasToSVG(canvas, 4)
	}
	if err := writeFile(snapOut, svg); err != nil {
		return err
	}
	fmt.Printf("wrote %s at t=%.3fs (%d particles, %d links)\n", snapOut, last.Time, len(last.Positions), len(last.Links))
	return nil
}

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0644)
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSCENARIO\tPRESET\tTIME\tDURATION\tDT\tPARTICLES\tFRAMES")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.2fs\t%.4fs\t%d\t%d\n",
			run.ID,
			run.Scenario,
			run.Preset,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Dt,
			run.Particles,
			run.Frames,
		)
	}

	return w.Flush()
}

func listScenarios(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SCENARIO\tPRESETS\tDESCRIPTION")
	for _, name := range registry.List() {
		fmt.Fprintf(w, "%s\t%v\t%s\n", name, config.ListPresets(name), registry.Describe(name))
	}
	return w.Flush()
}

func printConfig(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	if configOut != "" {
		return config.Save(configOut, cfg)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(data)
	return err
}

func loadRun(runID string) (*storage.RunMetadata, []dynamo.Frame, error) {
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	frames, err := st.LoadFrames(runID)
	if err != nil {
		return nil, nil, err
	}
	if len(frames) == 0 {
		return nil, nil, fmt.Errorf("run %s has no frames", runID)
	}
	return meta, frames, nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, frames, err := loadRun(args[0])
	if err != nil {
		return err
	}
	if particle < 0 || particle >= len(frames[0].Positions) {
		return fmt.Errorf("%w: particle %d out of range [0, %d)", dynamo.ErrInvalidArgument, particle, len(frames[0].Positions))
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("scenario: %s\n", meta.Scenario)
	fmt.Printf("samples: %d\n\n", len(frames))

	series := map[string][]float64{}
	axes := []string{"x", "y", "z"}
	for _, f := range frames {
		p := f.Positions[particle]
		series["x"] = append(series["x"], p.X)
		series["y"] = append(series["y"], p.Y)
		series["z"] = append(series["z"], p.Z)

		mean := 0.0
		for _, q := range f.Positions {
			mean += q.Y
		}
		series["mean height"] = append(series["mean height"], mean/float64(len(f.Positions)))
	}

	for _, axis := range axes {
		caption := fmt.Sprintf("particle %d %s vs time", particle, axis)
		fmt.Println(asciigraph.Plot(series[axis], asciigraph.Height(10), asciigraph.Width(80), asciigraph.Caption(caption)))
		fmt.Println()
	}
	fmt.Println(asciigraph.Plot(series["mean height"], asciigraph.Height(10), asciigraph.Width(80), asciigraph.Caption("mean height vs time")))
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	meta, err := storage.New(dataDir).Load(args[0])
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

// output opens path for writing, or returns stdout when path is empty.
func output(path string) (io.WriteCloser, error) {
	if path == "" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(path)
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

func exportJSON(cmd *cobra.Command, args []string) error {
	meta, frames, err := loadRun(args[0])
	if err != nil {
		return err
	}
	out, err := output(jsonOut)
	if err != nil {
		return err
	}
	if err := storage.WriteJSON(out, *meta, frames); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func exportCSV(cmd *cobra.Command, args []string) error {
	_, frames, err := loadRun(args[0])
	if err != nil {
		return err
	}
	out, err := output(csvOut)
	if err != nil {
		return err
	}
	if err := storage.WriteCSV(out, frames); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func trajectory(cmd *cobra.Command, args []string) error {
	_, frames, err := loadRun(args[0])
	if err != nil {
		return err
	}
	p, err := export.ParsePlane(plane)
	if err != nil {
		return err
	}
	svg, err := export.TrajectoryToSVG(frames, particle, p, 800, 600, "#00ff88")
	if err != nil {
		return err
	}
	if err := writeFile(pathOut, svg); err != nil {
		return err
	}
	fmt.Printf("wrote %s (%d samples)\n", pathOut, len(frames))
	return nil
}

func bench(cmd *cobra.Command, args []string) error {
	seconds, err := cmd.Flags().GetFloat64("time")
	if err != nil {
		return err
	}

	var jobs []scenario.Job
	for _, name := range registry.List() {
		for _, p := range config.ListPresets(name) {
			cfg := config.GetPreset(name, p)
			cfg.Duration = seconds
			jobs = append(jobs, scenario.Job{Name: name + "/" + p, Config: cfg})
		}
	}

	fmt.Printf("benchmarking %d presets for %.1fs each\n\n", len(jobs), seconds)
	results := scenario.RunBatch(context.Background(), registry, jobs, slog.Default())

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tPARTICLES\tSTEPS\tTIME\tSTEPS/SEC\tSTATUS")
	var failed error
	for _, r := range results {
		status := "ok"
		if r.Err != nil {
			status = r.Err.Error()
			failed = errors.Join(failed, fmt.Errorf("%s: %w", r.Job.Name, r.Err))
		}
		if r.Result == nil {
			fmt.Fprintf(w, "%s\t-\t-\t-\t-\t%s\n", r.Job.Name, status)
			continue
		}
		particles := len(r.Result.Frames[0].Positions)
		fmt.Fprintf(w, "%s\t%d\t%d\t%v\t%.0f\t%s\n",
			r.Job.Name, particles, r.Result.StepsTaken, r.Elapsed.Round(time.Microsecond),
			float64(r.Result.StepsTaken)/r.Elapsed.Seconds(), status)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	return failed
}
