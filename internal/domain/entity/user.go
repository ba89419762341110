package entity

import "time"

// UserType is the role a user account acts under
type UserType string

const (
	UserTypeAdmin      UserType = "ADMIN"
	UserTypePharmacist UserType = "PHARMACIST"
	UserTypeResident   UserType = "RESIDENT"
)

// NoPharmacy marks a user that is not attached to any pharmacy
const NoPharmacy int64 = -1

// Valid reports whether t is one of the known user types
func (t UserType) Valid() bool {
	switch t {
	case UserTypeAdmin, UserTypePharmacist, UserTypeResident:
		return true
	}
	return false
}

// User represents an account of any role
type User struct {
	ID         int64     `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Username   string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"username"`
	Password   string    `gorm:"type:text;not null" json:"-"`
	FullName   string    `gorm:"type:varchar(255);not null" json:"full_name"`
	Email      string    `gorm:"type:varchar(255)" json:"email"`
	UserType   UserType  `gorm:"type:varchar(20);not null;index" json:"user_type"`
	PharmacyID int64     `gorm:"not null;default:-1;index" json:"pharmacy_id"`
	IsActive   bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// IsAdmin checks if user is an administrator
func (u *User) IsAdmin() bool {
	return u.UserType == UserTypeAdmin
}

// IsPharmacist checks if user is a pharmacist
func (u *User) IsPharmacist() bool {
	return u.UserType == UserTypePharmacist
}

// IsResident checks if user is a resident
func (u *User) IsResident() bool {
	return u.UserType == UserTypeResident
}
