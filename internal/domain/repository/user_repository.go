package repository

import (
	"go-pharmacy-reservation/internal/domain/entity"

	"gorm.io/gorm"
)

type UserRepository interface {
	FindAll(db *gorm.DB) ([]entity.User, error)
	SaveAll(db *gorm.DB, users []entity.User) error
}
