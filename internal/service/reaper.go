package service

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/javaDevJT/auth-hooker/config"
)

// SessionCleaner performs one sweep pass. *VerificationSessionManager implements it.
type SessionCleaner interface {
	CleanupExpiredSessions(ctx context.Context) (SweepResult, error)
}

// ReaperServiceOptions groups dependencies for ReaperService.
type ReaperServiceOptions struct {
	Cleaner SessionCleaner     // Required: sweep implementation
	Config  config.SweepConfig // Required: sweep configuration
	Logger  *slog.Logger       // Optional: structured logger
}

// ReaperService runs the verification session sweep on an interval.
//
// Each pass:
// - Marks pending sessions past their expiry as expired.
// - Deletes terminal sessions older than the retention window.
type ReaperService struct {
	cleaner SessionCleaner
	config  config.SweepConfig
	logger  *slog.Logger
}

// NewReaperService constructs a new ReaperService.
func NewReaperService(opts ReaperServiceOptions) (*ReaperService, error) {
	if opts.Cleaner == nil {
		return nil, errors.New("SessionCleaner is required")
	}
	if opts.Config.Interval <= 0 {
		return nil, errors.New("sweep interval must be positive")
	}

	var logger *slog.Logger
	if opts.Logger != nil {
		logger = opts.Logger.With("component", "session_reaper")
		logger.Debug("ReaperService initialized",
			"interval", opts.Config.Interval,
			"retention", opts.Config.Retention,
			"batch_size", opts.Config.BatchSize,
		)
	}

	return &ReaperService{
		cleaner: opts.Cleaner,
		config:  opts.Config,
		logger:  logger,
	}, nil
}

// Run starts the sweep loop and runs until the context is cancelled.
// Returns nil on graceful shutdown (context.Canceled), error otherwise.
func (s *ReaperService) Run(ctx context.Context) error {
	if s.logger != nil {
		s.logger.InfoContext(ctx, "starting session reaper", "interval", s.config.Interval)
	}

	// Add jitter to prevent thundering herd if multiple instances start together
	s.waitWithJitter(ctx)

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	if err := s.RunOnce(ctx); err != nil {
		s.logCleanupError(err, "initial sweep")
	}

	return s.runLoop(ctx, ticker)
}

// RunOnce performs a single sweep pass.
func (s *ReaperService) RunOnce(ctx context.Context) error {
	res, err := s.cleaner.CleanupExpiredSessions(ctx)
	if err != nil {
		if isContextCancellation(err) {
			return err
		}
		return fmt.Errorf("sweep failed: %w", err)
	}
	if s.logger != nil {
		s.logger.DebugContext(ctx, "sweep finished",
			"expired", res.Expired,
			"deleted", res.Deleted,
			"elapsed", res.Elapsed,
		)
	}
	return nil
}

// waitWithJitter adds a random delay up to 10% of the interval.
func (s *ReaperService) waitWithJitter(ctx context.Context) {
	maxJitter := int64(s.config.Interval / 10)
	if maxJitter <= 0 {
		return
	}

	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// If crypto/rand fails, skip jitter rather than failing startup
		if s.logger != nil {
			s.logger.WarnContext(ctx, "failed to generate jitter, skipping", "error", err)
		}
		return
	}

	jitterNanos := binary.BigEndian.Uint64(buf[:]) % uint64(maxJitter)
	jitter := time.Duration(int64(jitterNanos)) // #nosec G115 - bounded by maxJitter which is int64

	select {
	case <-time.After(jitter):
	case <-ctx.Done():
	}
}

func (s *ReaperService) runLoop(ctx context.Context, ticker *time.Ticker) error {
	for {
		select {
		case <-ctx.Done():
			if s.logger != nil {
				s.logger.InfoContext(ctx, "session reaper stopping", "reason", ctx.Err())
			}
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()

		case <-ticker.C:
			if err := s.RunOnce(ctx); err != nil {
				s.logCleanupError(err, "sweep")
			}
		}
	}
}

func (s *ReaperService) logCleanupError(err error, label string) {
	if err == nil || s.logger == nil {
		return
	}

	if isContextCancellation(err) {
		s.logger.Debug(label+" cancelled by context", "error", err)
		return
	}

	s.logger.Error(label+" failed", "error", err)
}

func isContextCancellation(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
