package scheduler

import (
	"time"

	"github.com/ikkim/storefront-backend/pkg/logger"
	"github.com/robfig/cron/v3"
)

// Sweeper drops configuration sessions that expired at or before now
type Sweeper interface {
	SweepExpired(now time.Time) int
}

// SessionSweeper periodically evicts expired in-memory configuration sessions.
// Redis-backed sessions expire with their keys and need no sweeper.
type SessionSweeper struct {
	cron     *cron.Cron
	store    Sweeper
	schedule string
	now      func() time.Time
}

func NewSessionSweeper(store Sweeper, schedule string) *SessionSweeper {
	return &SessionSweeper{
		cron:     cron.New(),
		store:    store,
		schedule: schedule,
		now:      time.Now,
	}
}

func (s *SessionSweeper) Start() error {
	_, err := s.cron.AddFunc(s.schedule, func() {
		s.RunOnce()
	})
	if err != nil {
		logger.Error("Failed to add cron job for session sweep", err, map[string]interface{}{
			"schedule": s.schedule,
		})
		return err
	}

	s.cron.Start()
	logger.Info("Session sweeper started", map[string]interface{}{
		"schedule": s.schedule,
	})
	return nil
}

// RunOnce sweeps immediately and returns the number of sessions removed
func (s *SessionSweeper) RunOnce() int {
	removed := s.store.SweepExpired(s.now())
	if removed > 0 {
		logger.Info("Expired configuration sessions removed", map[string]interface{}{
			"removed": removed,
		})
	}
	return removed
}

func (s *SessionSweeper) Stop() {
	logger.Info("Stopping session sweeper...", nil)
	ctx := s.cron.Stop()
	<-ctx.Done()
	logger.Info("Session sweeper stopped", nil)
}
