package wire

import (
	"encoding/xml"
	"errors"
	"fmt"
)

type Status string

const (
	StatusSuccess Status = "SUCCESS"
	StatusFailure Status = "FAILURE"
)

var ErrUnknownStatus = errors.New("response status is neither SUCCESS nor FAILURE")

// Response is the envelope returned for every request.
type Response struct {
	XMLName xml.Name `xml:"response"`
	Status  Status   `xml:"status"`
	Message string   `xml:"message,omitempty"`
	Data    *Data    `xml:"data,omitempty"`
}

// OK reports whether the request succeeded.
func (r *Response) OK() bool {
	return r != nil && r.Status == StatusSuccess
}

// Records returns the payload, never nil.
func (r *Response) Records() *Data {
	if r == nil || r.Data == nil {
		return &Data{}
	}
	return r.Data
}

// Success builds a SUCCESS response. data may be nil.
func Success(message string, data *Data) *Response {
	return &Response{Status: StatusSuccess, Message: message, Data: data}
}

// Failure builds a FAILURE response.
func Failure(message string) *Response {
	return &Response{Status: StatusFailure, Message: message}
}

// Failuref builds a FAILURE response from a format string.
func Failuref(format string, args ...any) *Response {
	return Failure(fmt.Sprintf(format, args...))
}

// Data holds the records of a response. Each list is homogeneous; most
// responses populate at most one of them.
type Data struct {
	Token              string              `xml:"token,omitempty"`
	Users              []UserRecord        `xml:"user"`
	Pharmacies         []PharmacyRecord    `xml:"pharmacy"`
	Medicines          []MedicineRecord    `xml:"medicine"`
	Reservations       []ReservationRecord `xml:"reservation"`
	MedicineEntries    []MedicineEntry     `xml:"medicineEntry"`
	ReservationEntries []ReservationEntry  `xml:"reservationEntry"`
}

type UserRecord struct {
	ID         Field  `xml:"id"`
	Username   string `xml:"username"`
	FullName   string `xml:"fullName"`
	Email      string `xml:"email"`
	UserType   string `xml:"userType"`
	PharmacyID Field  `xml:"pharmacyId"`
	IsActive   Field  `xml:"isActive"`
}

type PharmacyRecord struct {
	ID            Field  `xml:"id"`
	Name          string `xml:"name"`
	Address       string `xml:"address"`
	ContactNumber string `xml:"contactNumber"`
	Email         string `xml:"email"`
	Status        string `xml:"status"`
}

// MedicineRecord carries both stock counters; EffectiveQuantity is the
// stock open to new reservations.
type MedicineRecord struct {
	ID                Field  `xml:"id"`
	PharmacyID        Field  `xml:"pharmacyId"`
	BrandName         string `xml:"brandName"`
	GenericName       string `xml:"genericName"`
	Dosage            string `xml:"dosage"`
	DosageForm        string `xml:"dosageForm"`
	Price             Field  `xml:"price"`
	QuantityAvailable Field  `xml:"quantityAvailable"`
	QuantityReserved  Field  `xml:"quantityReserved"`
	EffectiveQuantity Field  `xml:"effectiveQuantity"`
	Category          string `xml:"category"`
	Status            string `xml:"status"`
}

type ReservationRecord struct {
	ID              Field  `xml:"id"`
	UserID          Field  `xml:"userId"`
	MedicineID      Field  `xml:"medicineId"`
	PharmacyID      Field  `xml:"pharmacyId"`
	Quantity        Field  `xml:"quantity"`
	TotalPrice      Field  `xml:"totalPrice"`
	PaymentMethod   string `xml:"paymentMethod"`
	PaymentStatus   string `xml:"paymentStatus"`
	Status          string `xml:"status"`
	ReservationTime Field  `xml:"reservationTime"`
	ExpirationTime  Field  `xml:"expirationTime"`
	Notes           string `xml:"notes"`
}

// MedicineEntry is a medicine joined with its pharmacy's name.
type MedicineEntry struct {
	Medicine     MedicineRecord `xml:"medicine"`
	PharmacyName string         `xml:"pharmacyName"`
}

// ReservationEntry is a reservation joined with the names of the customer,
// medicine and pharmacy it references.
type ReservationEntry struct {
	Reservation  ReservationRecord `xml:"reservation"`
	CustomerName string            `xml:"customerName"`
	MedicineName string            `xml:"medicineName"`
	GenericName  string            `xml:"genericName"`
	PharmacyName string            `xml:"pharmacyName"`
}

// EncodeResponse renders a response envelope.
func EncodeResponse(r *Response) ([]byte, error) {
	out, err := xml.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("encode response: %w", err)
	}
	return out, nil
}

// DecodeResponse parses a response envelope into its typed records.
func DecodeResponse(envelope []byte) (*Response, error) {
	var r Response
	if err := xml.Unmarshal(envelope, &r); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if r.Status != StatusSuccess && r.Status != StatusFailure {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStatus, r.Status)
	}
	return &r, nil
}
