package converter

import (
	"go-pharmacy-reservation/internal/domain/entity"
	"go-pharmacy-reservation/internal/store"
	"go-pharmacy-reservation/internal/wire"
)

func ReservationToRecord(reservation entity.Reservation) wire.ReservationRecord {
	return wire.ReservationRecord{
		ID:              wire.IntField(reservation.ID),
		UserID:          wire.IntField(reservation.UserID),
		MedicineID:      wire.IntField(reservation.MedicineID),
		PharmacyID:      wire.IntField(reservation.PharmacyID),
		Quantity:        wire.IntField(int64(reservation.Quantity)),
		TotalPrice:      wire.MoneyField(reservation.TotalPrice),
		PaymentMethod:   string(reservation.PaymentMethod),
		PaymentStatus:   string(reservation.PaymentStatus),
		Status:          string(reservation.Status),
		ReservationTime: wire.TimeField(reservation.ReservationTime),
		ExpirationTime:  wire.TimeField(reservation.ExpirationTime),
		Notes:           reservation.Notes,
	}
}

// ReservationListingsToEntries converts listings to entries carrying the
// customer, medicine and pharmacy names.
func ReservationListingsToEntries(listings []store.ReservationListing) []wire.ReservationEntry {
	entries := make([]wire.ReservationEntry, len(listings))
	for i, listing := range listings {
		entries[i] = wire.ReservationEntry{
			Reservation:  ReservationToRecord(listing.Reservation),
			CustomerName: listing.CustomerName,
			MedicineName: listing.MedicineName,
			GenericName:  listing.GenericName,
			PharmacyName: listing.PharmacyName,
		}
	}
	return entries
}
