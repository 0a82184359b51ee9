package service

import (
	"time"

	"github.com/go-co-op/gocron"

	logger "lingotrail-backend/pkg/logging"
)

// Sweeper runs the optional eager expiry pass on a low-frequency schedule.
// The engine is correct without it; it only makes abandoned sessions visible
// to reporting sooner.
type Sweeper struct {
	scheduler *gocron.Scheduler
	sessions  SessionService
	interval  time.Duration
}

func NewSweeper(sessions SessionService, interval time.Duration) *Sweeper {
	return &Sweeper{
		scheduler: gocron.NewScheduler(time.UTC),
		sessions:  sessions,
		interval:  interval,
	}
}

// Start begins running the sweep in the background.
func (s *Sweeper) Start() {
	_, err := s.scheduler.Every(s.interval).Do(func() {
		if _, err := s.sessions.SweepExpired(); err != nil {
			logger.Error("expiry sweep failed: %v", err)
		}
	})
	if err != nil {
		logger.Error("failed to schedule expiry sweep: %v", err)
		return
	}
	s.scheduler.StartAsync()
}

// Stop terminates the scheduled sweep.
func (s *Sweeper) Stop() {
	s.scheduler.Stop()
}
