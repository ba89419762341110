package client

import (
	"go-pharmacy-reservation/internal/wire"

	"github.com/shopspring/decimal"
)

// Result is a projected response: rows on success, an empty list and the
// server's message on failure.
type Result[T any] struct {
	OK      bool
	Message string
	Rows    []T
}

// First returns the first row, if any.
func (r Result[T]) First() (T, bool) {
	var zero T
	if len(r.Rows) == 0 {
		return zero, false
	}
	return r.Rows[0], true
}

func project[R any, T any](response *wire.Response, records func(*wire.Data) []R, row func(R) T) Result[T] {
	result := Result[T]{OK: response.OK(), Message: response.Message, Rows: []T{}}
	if !result.OK {
		return result
	}
	for _, record := range records(response.Records()) {
		result.Rows = append(result.Rows, row(record))
	}
	return result
}

type UserRow struct {
	ID         int64
	Username   string
	FullName   string
	Email      string
	UserType   string
	PharmacyID int64
	Active     bool
}

func userRow(r wire.UserRecord) UserRow {
	return UserRow{
		ID:         r.ID.Int(0),
		Username:   r.Username,
		FullName:   r.FullName,
		Email:      r.Email,
		UserType:   r.UserType,
		PharmacyID: r.PharmacyID.Int(-1),
		Active:     r.IsActive.Bool(),
	}
}

type PharmacyRow struct {
	ID            int64
	Name          string
	Address       string
	ContactNumber string
	Email         string
	Status        string
}

func pharmacyRow(r wire.PharmacyRecord) PharmacyRow {
	return PharmacyRow{
		ID:            r.ID.Int(0),
		Name:          r.Name,
		Address:       r.Address,
		ContactNumber: r.ContactNumber,
		Email:         r.Email,
		Status:        r.Status,
	}
}

// MedicineRow is one medicine as listed. Price is rendered with two
// fractional digits.
type MedicineRow struct {
	ID           int64
	PharmacyID   int64
	PharmacyName string
	BrandName    string
	GenericName  string
	Dosage       string
	DosageForm   string
	Price        string
	Available    int64
	Reserved     int64
	Effective    int64
	Category     string
	Status       string
}

func medicineRow(r wire.MedicineRecord) MedicineRow {
	available := r.QuantityAvailable.Int(0)
	return MedicineRow{
		ID:          r.ID.Int(0),
		PharmacyID:  r.PharmacyID.Int(0),
		BrandName:   r.BrandName,
		GenericName: r.GenericName,
		Dosage:      r.Dosage,
		DosageForm:  r.DosageForm,
		Price:       wire.FormatMoney(r.Price.Money(decimal.Zero)),
		Available:   available,
		Reserved:    r.QuantityReserved.Int(0),
		Effective:   r.EffectiveQuantity.Int(available),
		Category:    r.Category,
		Status:      r.Status,
	}
}

func medicineEntryRow(e wire.MedicineEntry) MedicineRow {
	row := medicineRow(e.Medicine)
	row.PharmacyName = e.PharmacyName
	return row
}

// ReservationRow is one reservation as listed. Timestamps are cut to the
// minute.
type ReservationRow struct {
	ID            int64
	UserID        int64
	MedicineID    int64
	PharmacyID    int64
	CustomerName  string
	MedicineName  string
	GenericName   string
	PharmacyName  string
	Quantity      int64
	TotalPrice    string
	PaymentMethod string
	PaymentStatus string
	Status        string
	ReservedAt    string
	ExpiresAt     string
	Notes         string
}

func reservationRow(r wire.ReservationRecord) ReservationRow {
	return ReservationRow{
		ID:            r.ID.Int(0),
		UserID:        r.UserID.Int(0),
		MedicineID:    r.MedicineID.Int(0),
		PharmacyID:    r.PharmacyID.Int(0),
		Quantity:      r.Quantity.Int(0),
		TotalPrice:    wire.FormatMoney(r.TotalPrice.Money(decimal.Zero)),
		PaymentMethod: r.PaymentMethod,
		PaymentStatus: r.PaymentStatus,
		Status:        r.Status,
		ReservedAt:    r.ReservationTime.Display(),
		ExpiresAt:     r.ExpirationTime.Display(),
		Notes:         r.Notes,
	}
}

func reservationEntryRow(e wire.ReservationEntry) ReservationRow {
	row := reservationRow(e.Reservation)
	row.CustomerName = e.CustomerName
	row.MedicineName = e.MedicineName
	row.GenericName = e.GenericName
	row.PharmacyName = e.PharmacyName
	return row
}

func users(d *wire.Data) []wire.UserRecord                    { return d.Users }
func pharmacies(d *wire.Data) []wire.PharmacyRecord           { return d.Pharmacies }
func medicines(d *wire.Data) []wire.MedicineRecord            { return d.Medicines }
func medicineEntries(d *wire.Data) []wire.MedicineEntry       { return d.MedicineEntries }
func reservations(d *wire.Data) []wire.ReservationRecord      { return d.Reservations }
func reservationEntries(d *wire.Data) []wire.ReservationEntry { return d.ReservationEntries }
