package repository

import (
	"go-pharmacy-reservation/internal/domain/entity"

	"gorm.io/gorm"
)

type MedicineRepository interface {
	FindAll(db *gorm.DB) ([]entity.Medicine, error)
	SaveAll(db *gorm.DB, medicines []entity.Medicine) error
}
