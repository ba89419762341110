package dto

type PharmacyIDRequest struct {
	PharmacyID int64 `param:"pharmacyId" validate:"required,gt=0"`
}
