package jobs

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/zhikangxie107/intr.vu/internal/config"
)

// SweeperStore is the maintenance surface of the session repository.
type SweeperStore interface {
	PauseStale(cutoff time.Time) (int64, error)
	PurgeCompleted(cutoff time.Time) (int64, error)
}

// SessionSweeper periodically pauses sessions that have been idle past the
// threshold and purges completed sessions past the retention window.
type SessionSweeper struct {
	sessions SweeperStore
	cfg      config.SweeperConfig
	logger   *zap.Logger
	cron     *cron.Cron
}

func NewSessionSweeper(sessions SweeperStore, cfg config.SweeperConfig, logger *zap.Logger) *SessionSweeper {
	return &SessionSweeper{
		sessions: sessions,
		cfg:      cfg,
		logger:   logger,
		cron:     cron.New(),
	}
}

// Start schedules the sweep; a disabled sweeper is a no-op.
func (s *SessionSweeper) Start() error {
	if !s.cfg.Enabled {
		s.logger.Info("session sweeper disabled")
		return nil
	}

	_, err := s.cron.AddFunc(s.cfg.Schedule, func() {
		if err := s.RunSweep(); err != nil {
			s.logger.Error("session sweep failed", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule session sweep: %w", err)
	}

	s.cron.Start()
	s.logger.Info("session sweeper started", zap.String("schedule", s.cfg.Schedule))
	return nil
}

// Stop halts the schedule; an in-progress sweep finishes.
func (s *SessionSweeper) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

// RunSweep performs one pause-and-purge pass.
func (s *SessionSweeper) RunSweep() error {
	now := time.Now()

	paused, err := s.sessions.PauseStale(now.Add(-s.cfg.IdleThreshold))
	if err != nil {
		return fmt.Errorf("pausing stale sessions: %w", err)
	}

	purged, err := s.sessions.PurgeCompleted(now.Add(-s.cfg.Retention))
	if err != nil {
		return fmt.Errorf("purging completed sessions: %w", err)
	}

	if paused > 0 || purged > 0 {
		s.logger.Info("session sweep completed",
			zap.Int64("paused", paused),
			zap.Int64("purged", purged))
	}
	return nil
}
