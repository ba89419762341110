package converter

import (
	"go-pharmacy-reservation/internal/domain/entity"
	"go-pharmacy-reservation/internal/wire"
)

// UserToRecord converts a User entity to its wire record. The password
// hash never leaves the server.
func UserToRecord(user entity.User) wire.UserRecord {
	return wire.UserRecord{
		ID:         wire.IntField(user.ID),
		Username:   user.Username,
		FullName:   user.FullName,
		Email:      user.Email,
		UserType:   string(user.UserType),
		PharmacyID: wire.IntField(user.PharmacyID),
		IsActive:   wire.BoolField(user.IsActive),
	}
}

func UsersToRecords(users []entity.User) []wire.UserRecord {
	records := make([]wire.UserRecord, len(users))
	for i, user := range users {
		records[i] = UserToRecord(user)
	}
	return records
}

func PharmacyToRecord(pharmacy entity.Pharmacy) wire.PharmacyRecord {
	return wire.PharmacyRecord{
		ID:            wire.IntField(pharmacy.ID),
		Name:          pharmacy.Name,
		Address:       pharmacy.Address,
		ContactNumber: pharmacy.ContactNumber,
		Email:         pharmacy.Email,
		Status:        string(pharmacy.Status),
	}
}

func PharmaciesToRecords(pharmacies []entity.Pharmacy) []wire.PharmacyRecord {
	records := make([]wire.PharmacyRecord, len(pharmacies))
	for i, pharmacy := range pharmacies {
		records[i] = PharmacyToRecord(pharmacy)
	}
	return records
}
