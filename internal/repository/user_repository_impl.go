package repository

import (
	"go-pharmacy-reservation/internal/domain/entity"
	domainRepo "go-pharmacy-reservation/internal/domain/repository"

	"gorm.io/gorm"
)

type userRepository struct{}

func NewUserRepository() domainRepo.UserRepository {
	return &userRepository{}
}

func (r *userRepository) FindAll(db *gorm.DB) ([]entity.User, error) {
	return findAllByID[entity.User](db)
}

func (r *userRepository) SaveAll(db *gorm.DB, users []entity.User) error {
	return upsertAll(db, users)
}
