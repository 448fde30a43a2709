// Package reaper wires the verification session sweeper to a session store.
package reaper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/javaDevJT/auth-hooker/config"
	"github.com/javaDevJT/auth-hooker/internal/observability/metrics"
	"github.com/javaDevJT/auth-hooker/internal/ports"
	"github.com/javaDevJT/auth-hooker/internal/service"
)

// Runner runs the session sweep loop against a repository.
type Runner struct {
	reaper *service.ReaperService
	logger *slog.Logger
}

// RunnerOptions holds the dependencies for creating a Runner.
type RunnerOptions struct {
	Sessions ports.SessionRepository
	Config   config.AppConfig
	Logger   *slog.Logger
	Metrics  metrics.Recorder

	// Optional clock override for tests.
	Clock ports.Clock
}

// NewRunner creates a new sweep runner with the given options.
func NewRunner(opts RunnerOptions) (*Runner, error) {
	if opts.Sessions == nil {
		return nil, errors.New("session repository is required")
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	mgr, err := service.NewVerificationSessionManager(service.VerificationSessionManagerOptions{
		Sessions:       opts.Sessions,
		Clock:          opts.Clock,
		TTL:            opts.Config.Sessions.TTL,
		SweepRetention: opts.Config.Sweep.Retention,
		SweepBatchSize: opts.Config.Sweep.BatchSize,
		Logger:         opts.Logger,
		Metrics:        opts.Metrics,
	})
	if err != nil {
		return nil, fmt.Errorf("wire session manager: %w", err)
	}

	reaper, err := service.NewReaperService(service.ReaperServiceOptions{
		Cleaner: mgr,
		Config:  opts.Config.Sweep,
		Logger:  opts.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("wire reaper service: %w", err)
	}

	return &Runner{reaper: reaper, logger: opts.Logger}, nil
}

// Run starts the sweep loop and runs until the context is cancelled.
func (r *Runner) Run(ctx context.Context) error {
	r.logger.InfoContext(ctx, "starting session sweep runner")
	return r.reaper.Run(ctx)
}

// RunOnce performs a single sweep pass.
func (r *Runner) RunOnce(ctx context.Context) error {
	return r.reaper.RunOnce(ctx)
}
