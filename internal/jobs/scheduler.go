// Package jobs runs periodic maintenance tasks.
package jobs

import (
	"context"
	"fmt"
	"time"

	"invoice-server/internal/logging"

	"github.com/go-co-op/gocron/v2"
)

const ResetTokenPurgeJob = "reset-token-purge"

type ResetTokenPurger interface {
	PurgeExpiredResetTokens(ctx context.Context) (int64, error)
}

type Scheduler struct {
	scheduler gocron.Scheduler
	log       logging.Logger
}

func NewScheduler(log logging.Logger) (*Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}
	if log == nil {
		log = logging.Nop()
	}
	return &Scheduler{scheduler: s, log: log}, nil
}

// RegisterResetTokenPurge clears expired password reset tokens every interval,
// starting right away.
func (s *Scheduler) RegisterResetTokenPurge(purger ResetTokenPurger, interval time.Duration) error {
	_, err := s.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(s.purgeResetTokens, purger),
		gocron.WithName(ResetTokenPurgeJob),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		return fmt.Errorf("register %s: %w", ResetTokenPurgeJob, err)
	}
	return nil
}

func (s *Scheduler) purgeResetTokens(purger ResetTokenPurger) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	n, err := purger.PurgeExpiredResetTokens(ctx)
	if err != nil {
		s.log.Error(ctx, "reset token purge failed", "error", err)
		return
	}
	if n > 0 {
		s.log.Info(ctx, "expired reset tokens purged", "count", n)
	}
}

func (s *Scheduler) Start() {
	s.log.Info(context.Background(), "starting background job scheduler", "jobs", len(s.scheduler.Jobs()))
	s.scheduler.Start()
}

func (s *Scheduler) Stop() error {
	return s.scheduler.Shutdown()
}
