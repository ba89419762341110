package entity

import "time"

// PharmacyStatus represents the approval state of a pharmacy
type PharmacyStatus string

const (
	PharmacyStatusPending  PharmacyStatus = "PENDING"
	PharmacyStatusApproved PharmacyStatus = "APPROVED"
	PharmacyStatusRejected PharmacyStatus = "REJECTED"
)

// Pharmacy is a store registered by a pharmacist and reviewed by an admin
type Pharmacy struct {
	ID            int64          `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Name          string         `gorm:"type:varchar(255);not null" json:"name"`
	Address       string         `gorm:"type:text" json:"address"`
	ContactNumber string         `gorm:"type:varchar(50)" json:"contact_number"`
	Email         string         `gorm:"type:varchar(255)" json:"email"`
	Status        PharmacyStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

func (Pharmacy) TableName() string {
	return "pharmacies"
}

// IsApproved checks if the pharmacy is visible to residents
func (p *Pharmacy) IsApproved() bool {
	return p.Status == PharmacyStatusApproved
}

// IsPending checks if the pharmacy still awaits review
func (p *Pharmacy) IsPending() bool {
	return p.Status == PharmacyStatusPending
}
