package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReservationStatus represents a step of the reservation lifecycle
type ReservationStatus string

const (
	ReservationStatusPending   ReservationStatus = "PENDING"
	ReservationStatusApproved  ReservationStatus = "APPROVED"
	ReservationStatusRejected  ReservationStatus = "REJECTED"
	ReservationStatusCompleted ReservationStatus = "COMPLETED"
	ReservationStatusCancelled ReservationStatus = "CANCELLED"
	ReservationStatusExpired   ReservationStatus = "EXPIRED"
)

// PaymentMethod is how the resident intends to pay
type PaymentMethod string

const (
	PaymentMethodOnlineBank PaymentMethod = "ONLINE_BANK"
	PaymentMethodEPayment   PaymentMethod = "E_PAYMENT"
	PaymentMethodPayAtStore PaymentMethod = "PAY_AT_STORE"
)

// Valid reports whether m is a supported payment method
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodOnlineBank, PaymentMethodEPayment, PaymentMethodPayAtStore:
		return true
	}
	return false
}

// PaymentStatus is tracked independently of the reservation status
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "PENDING"
	PaymentStatusPaid    PaymentStatus = "PAID"
)

// transitions lists the legal targets for every non-terminal status
var transitions = map[ReservationStatus][]ReservationStatus{
	ReservationStatusPending: {
		ReservationStatusApproved,
		ReservationStatusRejected,
		ReservationStatusCancelled,
		ReservationStatusExpired,
	},
	ReservationStatusApproved: {
		ReservationStatusCompleted,
		ReservationStatusCancelled,
		ReservationStatusExpired,
	},
}

// CanTransition reports whether the lifecycle allows moving from s to target
func (s ReservationStatus) CanTransition(target ReservationStatus) bool {
	for _, allowed := range transitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// IsOpen reports whether a reservation in this status still holds stock
func (s ReservationStatus) IsOpen() bool {
	return s == ReservationStatusPending || s == ReservationStatusApproved
}

// ReleasesHold reports whether entering s returns held stock to available
func (s ReservationStatus) ReleasesHold() bool {
	switch s {
	case ReservationStatusRejected, ReservationStatusCancelled, ReservationStatusExpired:
		return true
	}
	return false
}

// Reservation is a resident's hold on medicine stock.
// TotalPrice is fixed at creation and never recomputed.
type Reservation struct {
	ID              int64             `gorm:"primaryKey;autoIncrement:false" json:"id"`
	UserID          int64             `gorm:"not null;index" json:"user_id"`
	MedicineID      int64             `gorm:"not null;index" json:"medicine_id"`
	PharmacyID      int64             `gorm:"not null;index" json:"pharmacy_id"`
	Quantity        int               `gorm:"not null" json:"quantity"`
	TotalPrice      decimal.Decimal   `gorm:"type:numeric;not null" json:"total_price"`
	PaymentMethod   PaymentMethod     `gorm:"type:varchar(20);not null" json:"payment_method"`
	PaymentStatus   PaymentStatus     `gorm:"type:varchar(20);not null" json:"payment_status"`
	Status          ReservationStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	ReservationTime time.Time         `gorm:"not null" json:"reservation_time"`
	ExpirationTime  time.Time         `gorm:"not null;index" json:"expiration_time"`
	Notes           string            `gorm:"type:text" json:"notes"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

func (Reservation) TableName() string {
	return "reservations"
}

// IsOpen checks if the reservation still holds stock
func (r *Reservation) IsOpen() bool {
	return r.Status.IsOpen()
}

// IsDue checks if the hold window has passed at now
func (r *Reservation) IsDue(now time.Time) bool {
	return r.IsOpen() && !now.Before(r.ExpirationTime)
}
