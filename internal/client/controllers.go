package client

import (
	"go-pharmacy-reservation/internal/wire"

	"github.com/shopspring/decimal"
)

// RegisterInput is a self-service sign-up. Pharmacy fields are only sent
// when UserType is PHARMACIST.
type RegisterInput struct {
	Username        string
	Password        string
	FullName        string
	Email           string
	UserType        string
	PharmacyName    string
	PharmacyAddress string
	PharmacyContact string
	PharmacyEmail   string
}

// UserInput is an account created by an administrator.
type UserInput struct {
	Username   string
	Password   string
	FullName   string
	Email      string
	UserType   string
	PharmacyID int64
}

// UserChanges lists the fields to change; nil fields are left alone.
type UserChanges struct {
	Username   *string
	Password   *string
	FullName   *string
	Email      *string
	UserType   *string
	PharmacyID *int64
	IsActive   *bool
}

func (c UserChanges) params() []wire.Param {
	var params []wire.Param
	params = optString(params, "username", c.Username)
	params = optString(params, "password", c.Password)
	params = optString(params, "fullName", c.FullName)
	params = optString(params, "email", c.Email)
	params = optString(params, "userType", c.UserType)
	if c.PharmacyID != nil {
		params = append(params, wire.Int("pharmacyId", *c.PharmacyID))
	}
	if c.IsActive != nil {
		params = append(params, wire.Bool("isActive", *c.IsActive))
	}
	return params
}

type MedicineInput struct {
	BrandName   string
	GenericName string
	Dosage      string
	DosageForm  string
	Price       decimal.Decimal
	Quantity    int64
	Category    string
	Status      string
}

// MedicineChanges lists the fields to change; nil fields are left alone.
type MedicineChanges struct {
	BrandName   *string
	GenericName *string
	Dosage      *string
	DosageForm  *string
	Price       *decimal.Decimal
	Quantity    *int64
	Category    *string
	Status      *string
}

func (c MedicineChanges) params() []wire.Param {
	var params []wire.Param
	params = optString(params, "brandName", c.BrandName)
	params = optString(params, "genericName", c.GenericName)
	params = optString(params, "dosage", c.Dosage)
	params = optString(params, "dosageForm", c.DosageForm)
	if c.Price != nil {
		params = append(params, wire.Money("price", *c.Price))
	}
	if c.Quantity != nil {
		params = append(params, wire.Int("quantity", *c.Quantity))
	}
	params = optString(params, "category", c.Category)
	params = optString(params, "status", c.Status)
	return params
}

func optString(params []wire.Param, key string, v *string) []wire.Param {
	if v == nil {
		return params
	}
	return append(params, wire.String(key, *v))
}

// controller holds what every role can do.
type controller struct {
	session *Session
}

// Login authenticates and keeps the issued token on the session.
func (c controller) Login(username, password string) (Result[UserRow], error) {
	response, err := c.session.Send(wire.ActionLogin,
		wire.String("username", username),
		wire.String("password", password),
	)
	if err != nil {
		return Result[UserRow]{}, err
	}
	if response.OK() && response.Records().Token != "" {
		c.session.SetToken(response.Records().Token)
	}
	return project(response, users, userRow), nil
}

func (c controller) Register(in RegisterInput) (Result[UserRow], error) {
	params := []wire.Param{
		wire.String("username", in.Username),
		wire.String("password", in.Password),
		wire.String("fullName", in.FullName),
		wire.String("email", in.Email),
		wire.String("userType", in.UserType),
	}
	if in.UserType == "PHARMACIST" {
		params = append(params,
			wire.String("pharmacyName", in.PharmacyName),
			wire.String("pharmacyAddress", in.PharmacyAddress),
			wire.String("pharmacyContact", in.PharmacyContact),
			wire.String("pharmacyEmail", in.PharmacyEmail),
		)
	}
	response, err := c.session.Send(wire.ActionRegister, params...)
	if err != nil {
		return Result[UserRow]{}, err
	}
	return project(response, users, userRow), nil
}

// UpdateProfile changes the caller's own account.
func (c controller) UpdateProfile(changes UserChanges) (Result[UserRow], error) {
	response, err := c.session.Send(wire.ActionUpdateUser, changes.params()...)
	if err != nil {
		return Result[UserRow]{}, err
	}
	return project(response, users, userRow), nil
}

func (c controller) Logout() {
	c.session.SetToken("")
}

func (c controller) send(action string, params ...wire.Param) (*wire.Response, error) {
	return c.session.Send(action, params...)
}

func (c controller) userResult(action string, params ...wire.Param) (Result[UserRow], error) {
	response, err := c.send(action, params...)
	if err != nil {
		return Result[UserRow]{}, err
	}
	return project(response, users, userRow), nil
}

func (c controller) pharmacyResult(action string, params ...wire.Param) (Result[PharmacyRow], error) {
	response, err := c.send(action, params...)
	if err != nil {
		return Result[PharmacyRow]{}, err
	}
	return project(response, pharmacies, pharmacyRow), nil
}

func (c controller) medicineResult(action string, params ...wire.Param) (Result[MedicineRow], error) {
	response, err := c.send(action, params...)
	if err != nil {
		return Result[MedicineRow]{}, err
	}
	return project(response, medicines, medicineRow), nil
}

func (c controller) medicineListing(action string, params ...wire.Param) (Result[MedicineRow], error) {
	response, err := c.send(action, params...)
	if err != nil {
		return Result[MedicineRow]{}, err
	}
	return project(response, medicineEntries, medicineEntryRow), nil
}

func (c controller) reservationResult(action string, params ...wire.Param) (Result[ReservationRow], error) {
	response, err := c.send(action, params...)
	if err != nil {
		return Result[ReservationRow]{}, err
	}
	return project(response, reservations, reservationRow), nil
}

func (c controller) reservationListing(action string, params ...wire.Param) (Result[ReservationRow], error) {
	response, err := c.send(action, params...)
	if err != nil {
		return Result[ReservationRow]{}, err
	}
	return project(response, reservationEntries, reservationEntryRow), nil
}

// AdminController administers accounts and pharmacies and sees every
// medicine and reservation.
type AdminController struct {
	controller
}

func NewAdminController(session *Session) *AdminController {
	return &AdminController{controller{session: session}}
}

func (c *AdminController) Users() (Result[UserRow], error) {
	return c.userResult(wire.ActionGetAllUsers)
}

func (c *AdminController) CreateUser(in UserInput) (Result[UserRow], error) {
	params := []wire.Param{
		wire.String("username", in.Username),
		wire.String("password", in.Password),
		wire.String("fullName", in.FullName),
		wire.String("email", in.Email),
		wire.String("userType", in.UserType),
	}
	if in.UserType == "PHARMACIST" {
		params = append(params, wire.Int("pharmacyId", in.PharmacyID))
	}
	return c.userResult(wire.ActionCreateUser, params...)
}

func (c *AdminController) UpdateUser(userID int64, changes UserChanges) (Result[UserRow], error) {
	params := append([]wire.Param{wire.Int("userId", userID)}, changes.params()...)
	return c.userResult(wire.ActionUpdateUser, params...)
}

func (c *AdminController) DeleteUser(userID int64) (Result[UserRow], error) {
	return c.userResult(wire.ActionDeleteUser, wire.Int("userId", userID))
}

func (c *AdminController) Pharmacies() (Result[PharmacyRow], error) {
	return c.pharmacyResult(wire.ActionGetAllPharmacies)
}

func (c *AdminController) ApprovePharmacy(pharmacyID int64) (Result[PharmacyRow], error) {
	return c.pharmacyResult(wire.ActionApprovePharmacy, wire.Int("pharmacyId", pharmacyID))
}

func (c *AdminController) RejectPharmacy(pharmacyID int64) (Result[PharmacyRow], error) {
	return c.pharmacyResult(wire.ActionRejectPharmacy, wire.Int("pharmacyId", pharmacyID))
}

func (c *AdminController) Medicines() (Result[MedicineRow], error) {
	return c.medicineListing(wire.ActionGetAllMedicines)
}

func (c *AdminController) PharmacyMedicines(pharmacyID int64) (Result[MedicineRow], error) {
	return c.medicineListing(wire.ActionGetPharmacyMedicines, wire.Int("pharmacyId", pharmacyID))
}

func (c *AdminController) Reservations() (Result[ReservationRow], error) {
	return c.reservationListing(wire.ActionGetAllReservations)
}

func (c *AdminController) PharmacyReservations(pharmacyID int64) (Result[ReservationRow], error) {
	return c.reservationListing(wire.ActionGetPharmacyReservations, wire.Int("pharmacyId", pharmacyID))
}

func (c *AdminController) UserReservations(userID int64) (Result[ReservationRow], error) {
	return c.reservationListing(wire.ActionGetUserReservations, wire.Int("userId", userID))
}

func (c *AdminController) CancelReservation(reservationID int64) (Result[ReservationRow], error) {
	return c.reservationResult(wire.ActionCancelReservation, wire.Int("reservationId", reservationID))
}

// PharmacistController manages the stock and reservations of the
// pharmacist's own pharmacy.
type PharmacistController struct {
	controller
}

func NewPharmacistController(session *Session) *PharmacistController {
	return &PharmacistController{controller{session: session}}
}

func (c *PharmacistController) Medicines() (Result[MedicineRow], error) {
	return c.medicineListing(wire.ActionGetPharmacyMedicines)
}

func (c *PharmacistController) CreateMedicine(in MedicineInput) (Result[MedicineRow], error) {
	return c.medicineResult(wire.ActionCreateMedicine,
		wire.String("brandName", in.BrandName),
		wire.String("genericName", in.GenericName),
		wire.String("dosage", in.Dosage),
		wire.String("dosageForm", in.DosageForm),
		wire.Money("price", in.Price),
		wire.Int("quantity", in.Quantity),
		wire.String("category", in.Category),
		wire.String("status", in.Status),
	)
}

func (c *PharmacistController) UpdateMedicine(medicineID int64, changes MedicineChanges) (Result[MedicineRow], error) {
	params := append([]wire.Param{wire.Int("medicineId", medicineID)}, changes.params()...)
	return c.medicineResult(wire.ActionUpdateMedicine, params...)
}

func (c *PharmacistController) DeleteMedicine(medicineID int64) (Result[MedicineRow], error) {
	return c.medicineResult(wire.ActionDeleteMedicine, wire.Int("medicineId", medicineID))
}

// Reservations lists the pharmacy's reservations, optionally only those
// in status.
func (c *PharmacistController) Reservations(status string) (Result[ReservationRow], error) {
	var params []wire.Param
	if status != "" {
		params = append(params, wire.String("status", status))
	}
	return c.reservationListing(wire.ActionGetPharmacyReservations, params...)
}

func (c *PharmacistController) ApproveReservation(reservationID int64) (Result[ReservationRow], error) {
	return c.reservationResult(wire.ActionApproveReservation, wire.Int("reservationId", reservationID))
}

func (c *PharmacistController) RejectReservation(reservationID int64) (Result[ReservationRow], error) {
	return c.reservationResult(wire.ActionRejectReservation, wire.Int("reservationId", reservationID))
}

func (c *PharmacistController) CompleteReservation(reservationID int64) (Result[ReservationRow], error) {
	return c.reservationResult(wire.ActionCompleteReservation, wire.Int("reservationId", reservationID))
}

// ResidentController browses approved pharmacies and manages the
// resident's own reservations.
type ResidentController struct {
	controller
}

func NewResidentController(session *Session) *ResidentController {
	return &ResidentController{controller{session: session}}
}

func (c *ResidentController) Pharmacies() (Result[PharmacyRow], error) {
	return c.pharmacyResult(wire.ActionGetApprovedPharmacies)
}

func (c *ResidentController) PharmacyMedicines(pharmacyID int64) (Result[MedicineRow], error) {
	return c.medicineListing(wire.ActionGetPharmacyMedicines, wire.Int("pharmacyId", pharmacyID))
}

// Search matches query against brand and generic names. A positive
// pharmacyID narrows the search to one pharmacy.
func (c *ResidentController) Search(query string, pharmacyID int64) (Result[MedicineRow], error) {
	params := []wire.Param{wire.String("query", query)}
	if pharmacyID > 0 {
		params = append(params, wire.Int("pharmacyId", pharmacyID))
	}
	return c.medicineListing(wire.ActionSearchMedicines, params...)
}

func (c *ResidentController) Reserve(medicineID, quantity int64, paymentMethod, notes string) (Result[ReservationRow], error) {
	return c.reservationResult(wire.ActionReserveMedicine,
		wire.Int("medicineId", medicineID),
		wire.Int("quantity", quantity),
		wire.String("paymentMethod", paymentMethod),
		wire.String("notes", notes),
	)
}

func (c *ResidentController) Reservations() (Result[ReservationRow], error) {
	return c.reservationListing(wire.ActionGetUserReservations)
}

func (c *ResidentController) CancelReservation(reservationID int64) (Result[ReservationRow], error) {
	return c.reservationResult(wire.ActionCancelReservation, wire.Int("reservationId", reservationID))
}
