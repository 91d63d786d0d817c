package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"

	"github.com/pontos/nearby-points/internal/places"
)

// refreshTimeout bounds a single session refresh.
const refreshTimeout = 30 * time.Second

// Scheduler periodically refreshes observer positions for sessions that
// asked for it and drops expired sessions.
type Scheduler struct {
	scheduler *gocron.Scheduler
	service   *places.Service
	interval  time.Duration
	logger    *zap.Logger
}

// New creates a new Scheduler.
func New(interval time.Duration, service *places.Service, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		service:   service,
		interval:  interval,
		logger:    logger,
	}
}

// Start schedules the periodic job and starts the underlying scheduler.
// A non-positive interval disables periodic refresh.
func (s *Scheduler) Start() error {
	if s.interval <= 0 {
		s.logger.Info("scheduler: periodic refresh disabled")
		return nil
	}

	_, err := s.scheduler.Every(s.interval).Do(s.RunOnce)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	s.logger.Info("scheduler: started", zap.Duration("interval", s.interval))
	return nil
}

// RunOnce purges expired sessions, then refreshes every session that has a
// stored locate request, concurrently.
func (s *Scheduler) RunOnce() {
	if purged := s.service.PurgeExpired(); purged > 0 {
		s.logger.Info("scheduler: purged expired sessions", zap.Int("count", purged))
	}

	ids := s.service.RefreshableSessions()
	if len(ids) == 0 {
		return
	}

	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()

			ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
			defer cancel()

			if err := s.service.RefreshStored(ctx, id); err != nil {
				s.logger.Warn("scheduler: refresh failed", zap.String("session", id), zap.Error(err))
			}
		}(id)
	}
	wg.Wait()
	s.logger.Debug("scheduler: refreshed sessions", zap.Int("count", len(ids)))
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
