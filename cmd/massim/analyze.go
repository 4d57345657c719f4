package main

import (
	"fmt"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/massim/internal/analysis"
	"github.com/san-kum/massim/internal/viz"
	"github.com/spf13/cobra"
)

func analyzeRun(cmd *cobra.Command, args []string) error {
	meta, frames, err := loadRun(args[0])
	if err != nil {
		return err
	}
	ax, err := analysis.ParseAxis(axis)
	if err != nil {
		return err
	}
	values, times, err := analysis.Series(frames, particle, ax)
	if err != nil {
		return err
	}

	// stored frames may end on a partial sampling interval
	interval := (times[len(times)-1] - times[0]) / float64(len(times)-1)
	freqs, amps, err := analysis.Spectrum(values, interval)
	if err != nil {
		return err
	}
	f, amp := analysis.DominantFrequency(freqs, amps)

	fmt.Printf("run: %s (%s)\n", meta.ID, meta.Scenario)
	fmt.Printf("particle %d %s, %d samples every %.4fs\n", particle, ax, len(values), interval)
	fmt.Printf("dominant frequency: %.4f Hz (period %.4fs, amplitude %.4f)\n\n", f, period(f), amp)

	caption := fmt.Sprintf("amplitude vs frequency, 0 to %.2f Hz", freqs[len(freqs)-1])
	fmt.Println(asciigraph.Plot(amps, asciigraph.Height(12), asciigraph.Width(80), asciigraph.Caption(caption)))
	return nil
}

func period(f float64) float64 {
	if f == 0 {
		return 0
	}
	return 1 / f
}

func phaseRun(cmd *cobra.Command, args []string) error {
	meta, frames, err := loadRun(args[0])
	if err != nil {
		return err
	}
	ax, err := analysis.ParseAxis(axis)
	if err != nil {
		return err
	}

	var portrait *analysis.PhasePortrait
	if section {
		portrait, err = analysis.NewPoincareSection(frames, particle, ax, level)
	} else {
		portrait, err = analysis.NewPhasePortrait(frames, particle, ax)
	}
	if err != nil {
		return err
	}

	fmt.Printf("run: %s (%s)\n", meta.ID, meta.Scenario)
	values, _, err := analysis.Series(frames, particle, ax)
	if err != nil {
		return err
	}
	fmt.Printf("%s over time: %s\n", ax, viz.Sparkline(values, 72))
	fmt.Printf("particle %d: %s horizontal, d%s/dt vertical, %d points\n\n", particle, ax, ax, len(portrait.Points))
	fmt.Print(portrait.ASCII(72, 24))
	return nil
}
