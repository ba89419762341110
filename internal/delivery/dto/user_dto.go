package dto

type CreateUserRequest struct {
	Username   string `param:"username" validate:"required,max=100"`
	Password   string `param:"password" validate:"required"`
	FullName   string `param:"fullName" validate:"required,max=255"`
	Email      string `param:"email" validate:"omitempty,email"`
	UserType   string `param:"userType" validate:"required,oneof=ADMIN PHARMACIST RESIDENT"`
	PharmacyID int64  `param:"pharmacyId" validate:"required_if=UserType PHARMACIST"`
}

// UpdateUserRequest changes the fields that are present. UserID defaults
// to the caller; only administrators may name another account or change
// role, pharmacy or activity.
type UpdateUserRequest struct {
	UserID     int64   `param:"userId" validate:"gte=0"`
	Username   *string `param:"username" validate:"omitempty,min=1,max=100"`
	Password   *string `param:"password"`
	FullName   *string `param:"fullName" validate:"omitempty,max=255"`
	Email      *string `param:"email" validate:"omitempty,email"`
	UserType   *string `param:"userType" validate:"omitempty,oneof=ADMIN PHARMACIST RESIDENT"`
	PharmacyID *int64  `param:"pharmacyId"`
	IsActive   *bool   `param:"isActive"`
}

type UserIDRequest struct {
	UserID int64 `param:"userId" validate:"required,gt=0"`
}
