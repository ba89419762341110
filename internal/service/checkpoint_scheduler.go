package service

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

const checkpointTimeout = time.Minute

// Checkpointer flushes state to durable storage.
type Checkpointer interface {
	Checkpoint(ctx context.Context) error
}

// CheckpointScheduler runs Checkpoint on a cron schedule such as
// "@every 5m". Overlapping runs are skipped.
type CheckpointScheduler struct {
	cron   *cron.Cron
	target Checkpointer
	log    *logrus.Logger
}

func NewCheckpointScheduler(target Checkpointer, schedule string, log *logrus.Logger) (*CheckpointScheduler, error) {
	s := &CheckpointScheduler{
		cron:   cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		target: target,
		log:    log,
	}
	if _, err := s.cron.AddFunc(schedule, s.run); err != nil {
		return nil, fmt.Errorf("invalid checkpoint schedule %q: %w", schedule, err)
	}
	return s, nil
}

func (s *CheckpointScheduler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), checkpointTimeout)
	defer cancel()

	if err := s.target.Checkpoint(ctx); err != nil {
		s.log.Errorf("Checkpoint failed: %+v", err)
		return
	}
	s.log.Debug("Checkpoint completed")
}

func (s *CheckpointScheduler) Start() {
	s.cron.Start()
	s.log.Info("Checkpoint scheduler started")
}

// Stop waits for a running checkpoint to finish.
func (s *CheckpointScheduler) Stop() {
	<-s.cron.Stop().Done()
	s.log.Info("Checkpoint scheduler stopped")
}
