package repository

import (
	"go-pharmacy-reservation/internal/domain/entity"
	domainRepo "go-pharmacy-reservation/internal/domain/repository"

	"gorm.io/gorm"
)

type medicineRepository struct{}

func NewMedicineRepository() domainRepo.MedicineRepository {
	return &medicineRepository{}
}

func (r *medicineRepository) FindAll(db *gorm.DB) ([]entity.Medicine, error) {
	return findAllByID[entity.Medicine](db)
}

func (r *medicineRepository) SaveAll(db *gorm.DB, medicines []entity.Medicine) error {
	return upsertAll(db, medicines)
}
