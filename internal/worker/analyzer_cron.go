package worker

// analyzer_cron.go
// Background goroutine that runs the menu analyzer on a fixed interval.
// A failed run is logged and the next tick tries again.

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

const defaultAnalyzerInterval = time.Hour

// AnalyzerRunner is satisfied by *MenuAnalyzer.
type AnalyzerRunner interface {
	RunOnce(ctx context.Context) (*Report, error)
}

// AnalyzerCronConfig holds the dependencies for the analyzer goroutine.
type AnalyzerCronConfig struct {
	Analyzer   AnalyzerRunner
	Interval   time.Duration
	RunOnStart bool

	// Ticks replaces the interval ticker when set; Interval is then ignored.
	Ticks <-chan time.Time
}

// StartAnalyzerCron launches the analyzer loop. The returned channel is
// closed once the goroutine has exited after ctx is cancelled.
func StartAnalyzerCron(ctx context.Context, cfg AnalyzerCronConfig) <-chan struct{} {
	interval := cfg.Interval
	if interval <= 0 {
		interval = defaultAnalyzerInterval
	}
	done := make(chan struct{})

	go func() {
		defer close(done)
		ticks := cfg.Ticks
		if ticks == nil {
			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			ticks = ticker.C
			log.Info().Dur("interval", interval).Msg("analyzer_cron: started")
		} else {
			log.Info().Msg("analyzer_cron: started on external ticks")
		}

		if cfg.RunOnStart {
			runAnalyzer(ctx, cfg.Analyzer)
		}
		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("analyzer_cron: shutting down")
				return
			case <-ticks:
				runAnalyzer(ctx, cfg.Analyzer)
			}
		}
	}()
	return done
}

func runAnalyzer(ctx context.Context, a AnalyzerRunner) {
	start := time.Now()
	report, err := a.RunOnce(ctx)
	if err != nil {
		log.Error().Err(err).Msg("analyzer_cron: run failed")
		return
	}
	log.Debug().Str("outcome", string(report.Outcome)).Dur("took", time.Since(start)).Msg("analyzer_cron: run complete")
}
