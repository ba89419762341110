package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// MedicineStatus represents whether a medicine can be reserved
type MedicineStatus string

const (
	MedicineStatusActive   MedicineStatus = "ACTIVE"
	MedicineStatusInactive MedicineStatus = "INACTIVE"
	MedicineStatusDeleted  MedicineStatus = "DELETED"
)

// Medicine is a stock line owned by one pharmacy.
// QuantityAvailable excludes stock held by open reservations.
type Medicine struct {
	ID                int64           `gorm:"primaryKey;autoIncrement:false" json:"id"`
	PharmacyID        int64           `gorm:"not null;index" json:"pharmacy_id"`
	BrandName         string          `gorm:"type:varchar(255);not null;index" json:"brand_name"`
	GenericName       string          `gorm:"type:varchar(255);index" json:"generic_name"`
	Dosage            string          `gorm:"type:varchar(100)" json:"dosage"`
	DosageForm        string          `gorm:"type:varchar(100)" json:"dosage_form"`
	Price             decimal.Decimal `gorm:"type:numeric;not null" json:"price"`
	QuantityAvailable int             `gorm:"not null" json:"quantity_available"`
	QuantityReserved  int             `gorm:"not null" json:"quantity_reserved"`
	Category          string          `gorm:"type:varchar(100)" json:"category"`
	Status            MedicineStatus  `gorm:"type:varchar(20);not null;index" json:"status"`
	Version           int64           `gorm:"not null;default:0" json:"version"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

func (Medicine) TableName() string {
	return "medicines"
}

// EffectiveQuantity is the stock a resident can still reserve
func (m *Medicine) EffectiveQuantity() int {
	return m.QuantityAvailable
}

// IsActive checks if the medicine accepts new reservations
func (m *Medicine) IsActive() bool {
	return m.Status == MedicineStatusActive
}

// IsDeleted checks if the medicine was removed by its pharmacist
func (m *Medicine) IsDeleted() bool {
	return m.Status == MedicineStatusDeleted
}

// ValidMedicineStatus reports whether s can be set by a pharmacist
func ValidMedicineStatus(s MedicineStatus) bool {
	return s == MedicineStatusActive || s == MedicineStatusInactive
}
