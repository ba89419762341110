package dto

// Request DTOs

type LoginRequest struct {
	Username string `param:"username" validate:"required"`
	Password string `param:"password" validate:"required"`
}

// RegisterRequest signs up a resident, or a pharmacist together with the
// pharmacy they run. UserType defaults to RESIDENT.
type RegisterRequest struct {
	Username        string `param:"username" validate:"required,max=100"`
	Password        string `param:"password" validate:"required"`
	FullName        string `param:"fullName" validate:"required,max=255"`
	Email           string `param:"email" validate:"omitempty,email"`
	UserType        string `param:"userType" validate:"omitempty,oneof=RESIDENT PHARMACIST"`
	PharmacyName    string `param:"pharmacyName" validate:"required_if=UserType PHARMACIST"`
	PharmacyAddress string `param:"pharmacyAddress"`
	PharmacyContact string `param:"pharmacyContact"`
	PharmacyEmail   string `param:"pharmacyEmail" validate:"omitempty,email"`
}
