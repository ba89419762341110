package repository

import (
	"go-pharmacy-reservation/internal/domain/entity"

	"gorm.io/gorm"
)

type PharmacyRepository interface {
	FindAll(db *gorm.DB) ([]entity.Pharmacy, error)
	SaveAll(db *gorm.DB, pharmacies []entity.Pharmacy) error
}
