package service

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go-pharmacy-reservation/internal/domain/entity"
	"go-pharmacy-reservation/internal/store"

	"github.com/sirupsen/logrus"
)

const defaultSweepInterval = 30 * time.Second

// ExpirySweeper periodically expires reservations whose hold window has
// passed. It goes through the store's transition path, so a sweep racing a
// client's cancel of the same reservation lets exactly one of them win.
type ExpirySweeper struct {
	store    *store.Store
	audit    AuditService
	log      *logrus.Logger
	interval time.Duration
	now      func() time.Time

	startOnce sync.Once
	stopChan  chan struct{}
	wg        sync.WaitGroup
	stopped   atomic.Bool
}

func NewExpirySweeper(st *store.Store, audit AuditService, log *logrus.Logger, interval time.Duration) *ExpirySweeper {
	if interval <= 0 {
		interval = defaultSweepInterval
	}
	return &ExpirySweeper{
		store:    st,
		audit:    audit,
		log:      log,
		interval: interval,
		now:      time.Now,
		stopChan: make(chan struct{}),
	}
}

// Start launches the sweep loop. Calling it again has no effect.
func (s *ExpirySweeper) Start() {
	s.startOnce.Do(func() {
		s.wg.Add(1)
		go s.loop()
		s.log.Infof("Expiry sweeper started, interval %v", s.interval)
	})
}

// Stop ends the loop and waits for an in-progress sweep.
// Safe to call multiple times.
func (s *ExpirySweeper) Stop() {
	if s.stopped.CompareAndSwap(false, true) {
		close(s.stopChan)
		s.wg.Wait()
		s.log.Info("Expiry sweeper stopped")
	}
}

func (s *ExpirySweeper) loop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.SweepOnce(s.now())
		case <-s.stopChan:
			return
		}
	}
}

// SweepOnce expires every open reservation due at now and returns them.
func (s *ExpirySweeper) SweepOnce(now time.Time) []entity.Reservation {
	expired := s.store.ExpireDue(now)
	if len(expired) == 0 {
		return nil
	}

	ctx := context.Background()
	for _, r := range expired {
		s.audit.Record(ctx, nil, entity.AuditActionReservationExpire, "reservation", r.ID, r)
		s.log.WithFields(logrus.Fields{
			"reservation_id": r.ID,
			"medicine_id":    r.MedicineID,
			"quantity":       r.Quantity,
		}).Debug("Reservation expired")
	}
	s.log.Infof("Expired %d reservations", len(expired))
	return expired
}
