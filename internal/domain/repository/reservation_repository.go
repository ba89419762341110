package repository

import (
	"go-pharmacy-reservation/internal/domain/entity"

	"gorm.io/gorm"
)

type ReservationRepository interface {
	FindAll(db *gorm.DB) ([]entity.Reservation, error)
	SaveAll(db *gorm.DB, reservations []entity.Reservation) error
}
