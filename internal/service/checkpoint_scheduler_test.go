package service

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
)

type countingCheckpointer struct {
	calls int
	err   error
}

func (c *countingCheckpointer) Checkpoint(ctx context.Context) error {
	c.calls++
	return c.err
}

func TestCheckpointSchedulerRejectsBadSchedule(t *testing.T) {
	log, _ := test.NewNullLogger()
	if _, err := NewCheckpointScheduler(&countingCheckpointer{}, "every now and then", log); err == nil {
		t.Fatal("NewCheckpointScheduler accepted a malformed schedule")
	}
}

func TestCheckpointSchedulerRun(t *testing.T) {
	log, hook := test.NewNullLogger()
	target := &countingCheckpointer{}
	s, err := NewCheckpointScheduler(target, "@every 5m", log)
	if err != nil {
		t.Fatalf("NewCheckpointScheduler: %v", err)
	}

	s.run()
	if target.calls != 1 {
		t.Errorf("calls = %d, want 1", target.calls)
	}

	target.err = context.DeadlineExceeded
	s.run()
	if entry := hook.LastEntry(); entry == nil || entry.Level.String() != "error" {
		t.Errorf("failed checkpoint not logged as error: %+v", entry)
	}

	s.Start()
	s.Stop()
}
