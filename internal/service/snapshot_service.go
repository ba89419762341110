package service

import (
	"context"
	"fmt"
	"time"

	"go-pharmacy-reservation/internal/domain/repository"
	"go-pharmacy-reservation/internal/store"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// SnapshotService is the durable backing of the store: it loads every
// table at start and upserts every row on checkpoint.
type SnapshotService struct {
	db              *gorm.DB
	log             *logrus.Logger
	userRepo        repository.UserRepository
	pharmacyRepo    repository.PharmacyRepository
	medicineRepo    repository.MedicineRepository
	reservationRepo repository.ReservationRepository
}

func NewSnapshotService(
	db *gorm.DB,
	log *logrus.Logger,
	userRepo repository.UserRepository,
	pharmacyRepo repository.PharmacyRepository,
	medicineRepo repository.MedicineRepository,
	reservationRepo repository.ReservationRepository,
) *SnapshotService {
	return &SnapshotService{
		db:              db,
		log:             log,
		userRepo:        userRepo,
		pharmacyRepo:    pharmacyRepo,
		medicineRepo:    medicineRepo,
		reservationRepo: reservationRepo,
	}
}

func (s *SnapshotService) Load(ctx context.Context) (*store.Snapshot, error) {
	db := s.db.WithContext(ctx)
	snapshot := &store.Snapshot{}

	var err error
	if snapshot.Users, err = s.userRepo.FindAll(db); err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}
	if snapshot.Pharmacies, err = s.pharmacyRepo.FindAll(db); err != nil {
		return nil, fmt.Errorf("load pharmacies: %w", err)
	}
	if snapshot.Medicines, err = s.medicineRepo.FindAll(db); err != nil {
		return nil, fmt.Errorf("load medicines: %w", err)
	}
	if snapshot.Reservations, err = s.reservationRepo.FindAll(db); err != nil {
		return nil, fmt.Errorf("load reservations: %w", err)
	}

	s.log.Infof("Loaded snapshot: %d users, %d pharmacies, %d medicines, %d reservations",
		len(snapshot.Users), len(snapshot.Pharmacies), len(snapshot.Medicines), len(snapshot.Reservations))
	return snapshot, nil
}

// Save writes the whole snapshot in one transaction.
func (s *SnapshotService) Save(ctx context.Context, snapshot *store.Snapshot) error {
	startTime := time.Now()

	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return fmt.Errorf("begin checkpoint: %w", tx.Error)
	}
	defer tx.Rollback()

	if err := s.userRepo.SaveAll(tx, snapshot.Users); err != nil {
		s.log.Warnf("Failed to save users: %+v", err)
		return err
	}
	if err := s.pharmacyRepo.SaveAll(tx, snapshot.Pharmacies); err != nil {
		s.log.Warnf("Failed to save pharmacies: %+v", err)
		return err
	}
	if err := s.medicineRepo.SaveAll(tx, snapshot.Medicines); err != nil {
		s.log.Warnf("Failed to save medicines: %+v", err)
		return err
	}
	if err := s.reservationRepo.SaveAll(tx, snapshot.Reservations); err != nil {
		s.log.Warnf("Failed to save reservations: %+v", err)
		return err
	}

	if err := tx.Commit().Error; err != nil {
		s.log.Warnf("Failed commit transaction: %+v", err)
		return err
	}

	s.log.Debugf("Checkpoint written in %v", time.Since(startTime))
	return nil
}
