package repository

import (
	"go-pharmacy-reservation/internal/domain/entity"
	domainRepo "go-pharmacy-reservation/internal/domain/repository"

	"gorm.io/gorm"
)

type pharmacyRepository struct{}

func NewPharmacyRepository() domainRepo.PharmacyRepository {
	return &pharmacyRepository{}
}

func (r *pharmacyRepository) FindAll(db *gorm.DB) ([]entity.Pharmacy, error) {
	return findAllByID[entity.Pharmacy](db)
}

func (r *pharmacyRepository) SaveAll(db *gorm.DB, pharmacies []entity.Pharmacy) error {
	return upsertAll(db, pharmacies)
}
