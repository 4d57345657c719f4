package scenario

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/san-kum/massim/internal/config"
)

// Job is one scenario run inside a batch.
type Job struct {
	Name   string
	Config *config.Config
}

type BatchResult struct {
	Job     Job
	Result  *Result
	Err     error
	Elapsed time.Duration
}

// RunBatch runs every job on its own goroutine. Each job gets a fresh
// simulation and fresh metrics; results keep the order of jobs.
func RunBatch(ctx context.Context, reg *Registry, jobs []Job, logger *slog.Logger) []BatchResult {
	if logger == nil {
		logger = slog.Default()
	}
	out := make([]BatchResult, len(jobs))

	var wg sync.WaitGroup
	for i, job := range jobs {
		wg.Add(1)
		go func(idx int, job Job) {
			defer wg.Done()
			out[idx] = BatchResult{Job: job}

			cfg := job.Config
			sim, err := reg.Build(cfg.Scenario, cfg, logger)
			if err != nil {
				out[idx].Err = err
				return
			}
			runner := NewRunner(sim, logger.With("job", job.Name))
			for _, m := range reg.DefaultMetrics(cfg) {
				runner.AddMetric(m)
			}
			start := time.Now()
			out[idx].Result, out[idx].Err = runner.Run(ctx, RunConfigFor(cfg))
			out[idx].Elapsed = time.Since(start)
		}(i, job)
	}
	wg.Wait()

	return out
}

// RunConfigFor maps a scenario configuration onto runner settings.
func RunConfigFor(cfg *config.Config) RunConfig {
	return RunConfig{
		Dt:              cfg.Dt,
		Duration:        cfg.Duration,
		DivergenceBound: cfg.World.DivergenceBound,
	}
}
