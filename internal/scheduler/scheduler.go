package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"editorial_catalog/internal/domain"
)

// Auditor checks a catalog invariant and reports a violation as an error.
type Auditor interface {
	AuditFeatured(ctx context.Context) error
}

// Scheduler runs the featured audit on a fixed interval. It only reports;
// repairing a violation is left to an editor.
type Scheduler struct {
	auditor  Auditor
	interval time.Duration
	timeout  time.Duration
	logger   *slog.Logger
}

func NewScheduler(auditor Auditor, interval time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		auditor:  auditor,
		interval: interval,
		timeout:  30 * time.Second,
		logger:   logger.With("component", "scheduler"),
	}
}

func (s *Scheduler) Start(ctx context.Context) error {
	s.logger.Info("scheduler started", "interval", s.interval)

	s.runAudit(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return ctx.Err()
		case <-ticker.C:
			s.runAudit(ctx)
		}
	}
}

func (s *Scheduler) runAudit(ctx context.Context) {
	auditCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	err := s.auditor.AuditFeatured(auditCtx)
	switch {
	case err == nil:
		s.logger.Debug("featured audit passed")
	case errors.Is(err, domain.ErrFeaturedInvariant):
		s.logger.Warn("featured invariant violated", "error", err)
	case errors.Is(err, context.Canceled):
	default:
		s.logger.Error("featured audit failed", "error", err)
	}
}
