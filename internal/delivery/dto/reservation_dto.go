package dto

// ReserveRequest holds stock for the calling resident. Quantity is checked
// against available stock by the store.
type ReserveRequest struct {
	MedicineID    int64  `param:"medicineId" validate:"required,gt=0"`
	Quantity      int    `param:"quantity"`
	PaymentMethod string `param:"paymentMethod" validate:"required,oneof=ONLINE_BANK E_PAYMENT PAY_AT_STORE"`
	Notes         string `param:"notes" validate:"max=1000"`
}

type ReservationIDRequest struct {
	ReservationID int64 `param:"reservationId" validate:"required,gt=0"`
}

// ReservationListRequest narrows a reservation listing. PharmacyID and
// UserID default to the caller's own scope.
type ReservationListRequest struct {
	PharmacyID int64  `param:"pharmacyId" validate:"gte=0"`
	UserID     int64  `param:"userId" validate:"gte=0"`
	Status     string `param:"status" validate:"omitempty,oneof=PENDING APPROVED REJECTED COMPLETED CANCELLED EXPIRED"`
}
