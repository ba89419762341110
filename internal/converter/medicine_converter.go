package converter

import (
	"go-pharmacy-reservation/internal/domain/entity"
	"go-pharmacy-reservation/internal/store"
	"go-pharmacy-reservation/internal/wire"
)

func MedicineToRecord(medicine entity.Medicine) wire.MedicineRecord {
	return wire.MedicineRecord{
		ID:                wire.IntField(medicine.ID),
		PharmacyID:        wire.IntField(medicine.PharmacyID),
		BrandName:         medicine.BrandName,
		GenericName:       medicine.GenericName,
		Dosage:            medicine.Dosage,
		DosageForm:        medicine.DosageForm,
		Price:             wire.MoneyField(medicine.Price),
		QuantityAvailable: wire.IntField(int64(medicine.QuantityAvailable)),
		QuantityReserved:  wire.IntField(int64(medicine.QuantityReserved)),
		EffectiveQuantity: wire.IntField(int64(medicine.EffectiveQuantity())),
		Category:          medicine.Category,
		Status:            string(medicine.Status),
	}
}

// MedicineListingsToEntries converts listings to entries carrying the
// pharmacy name.
func MedicineListingsToEntries(listings []store.MedicineListing) []wire.MedicineEntry {
	entries := make([]wire.MedicineEntry, len(listings))
	for i, listing := range listings {
		entries[i] = wire.MedicineEntry{
			Medicine:     MedicineToRecord(listing.Medicine),
			PharmacyName: listing.PharmacyName,
		}
	}
	return entries
}
