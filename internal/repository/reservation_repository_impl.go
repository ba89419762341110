package repository

import (
	"go-pharmacy-reservation/internal/domain/entity"
	domainRepo "go-pharmacy-reservation/internal/domain/repository"

	"gorm.io/gorm"
)

type reservationRepository struct{}

func NewReservationRepository() domainRepo.ReservationRepository {
	return &reservationRepository{}
}

func (r *reservationRepository) FindAll(db *gorm.DB) ([]entity.Reservation, error) {
	return findAllByID[entity.Reservation](db)
}

func (r *reservationRepository) SaveAll(db *gorm.DB, reservations []entity.Reservation) error {
	return upsertAll(db, reservations)
}
