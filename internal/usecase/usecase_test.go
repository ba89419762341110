package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"go-pharmacy-reservation/config"
	"go-pharmacy-reservation/internal/delivery/dto"
	"go-pharmacy-reservation/internal/domain/entity"
	"go-pharmacy-reservation/internal/service"
	"go-pharmacy-reservation/internal/store"
	"go-pharmacy-reservation/pkg/jwt"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"golang.org/x/crypto/bcrypt"
)

type fixture struct {
	store       *store.Store
	log         *logrus.Logger
	admin       entity.User
	pharmacist1 entity.User
	pharmacist2 entity.User
	resident1   entity.User
	resident2   entity.User
	pending     entity.User
	medicine    entity.Medicine

	auth         AuthUsecase
	users        UserUsecase
	pharmacies   PharmacyUsecase
	medicines    MedicineUsecase
	reservations ReservationUsecase
}

func mustDecimal(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }

// newFixture builds two approved pharmacies, one pending pharmacy, two
// residents, an administrator and medicine "Panadol" (10 units at 5.00)
// in the first pharmacy.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	log, _ := test.NewNullLogger()
	st := store.New(store.Options{BcryptCost: bcrypt.MinCost})
	audit := service.NewLogAuditService(log)
	jwtService := jwt.NewJWTService(config.JWTConfig{Secret: "test-secret", AccessExpiry: time.Hour})

	f := &fixture{
		store:        st,
		log:          log,
		auth:         NewAuthUsecase(st, log, audit, jwtService),
		users:        NewUserUsecase(st, log, audit),
		pharmacies:   NewPharmacyUsecase(st, log, audit),
		medicines:    NewMedicineUsecase(st, log, audit),
		reservations: NewReservationUsecase(st, log, audit),
	}

	var err error
	f.admin, err = st.CreateUser(store.NewUser{Username: "admin", Password: "admin", FullName: "Admin", UserType: entity.UserTypeAdmin})
	if err != nil {
		t.Fatalf("CreateUser admin: %v", err)
	}
	approved := func(username, pharmacy string) entity.User {
		user, p, err := st.RegisterPharmacist(
			store.NewUser{Username: username, Password: "pw", FullName: username},
			store.NewPharmacy{Name: pharmacy},
		)
		if err != nil {
			t.Fatalf("RegisterPharmacist %s: %v", username, err)
		}
		if _, err := st.SetPharmacyStatus(p.ID, entity.PharmacyStatusApproved); err != nil {
			t.Fatalf("SetPharmacyStatus: %v", err)
		}
		return user
	}
	f.pharmacist1 = approved("P1", "Central")
	f.pharmacist2 = approved("P2", "Riverside")
	f.pending, _, err = st.RegisterPharmacist(
		store.NewUser{Username: "P3", Password: "pw", FullName: "P3"},
		store.NewPharmacy{Name: "Hilltop"},
	)
	if err != nil {
		t.Fatalf("RegisterPharmacist P3: %v", err)
	}
	f.resident1, err = st.CreateUser(store.NewUser{Username: "U1", Password: "pw", FullName: "Una", UserType: entity.UserTypeResident})
	if err != nil {
		t.Fatalf("CreateUser U1: %v", err)
	}
	f.resident2, err = st.CreateUser(store.NewUser{Username: "U2", Password: "pw", FullName: "Ugo", UserType: entity.UserTypeResident})
	if err != nil {
		t.Fatalf("CreateUser U2: %v", err)
	}

	f.medicine, err = f.medicines.CreateMedicine(WithActor(context.Background(), f.pharmacist1), &dto.CreateMedicineRequest{
		BrandName:   "Panadol",
		GenericName: "Paracetamol",
		Price:       mustDecimal("5.00"),
		Quantity:    intPtr(10),
	})
	if err != nil {
		t.Fatalf("CreateMedicine: %v", err)
	}
	return f
}

func (f *fixture) as(user entity.User) context.Context {
	return WithActor(context.Background(), user)
}

func (f *fixture) stock(t *testing.T) (int, int) {
	t.Helper()
	m, err := f.store.Medicine(f.medicine.ID)
	if err != nil {
		t.Fatalf("Medicine: %v", err)
	}
	return m.QuantityAvailable, m.QuantityReserved
}

func TestReserveThenCancelRestoresStock(t *testing.T) {
	f := newFixture(t)

	r, err := f.reservations.ReserveMedicine(f.as(f.resident1), &dto.ReserveRequest{
		MedicineID:    f.medicine.ID,
		Quantity:      3,
		PaymentMethod: string(entity.PaymentMethodPayAtStore),
	})
	if err != nil {
		t.Fatalf("ReserveMedicine: %v", err)
	}
	if got := r.TotalPrice.StringFixed(2); got != "15.00" {
		t.Errorf("TotalPrice = %s, want 15.00", got)
	}
	if avail, held := f.stock(t); avail != 7 || held != 3 {
		t.Errorf("stock after reserve = %d/%d, want 7/3", avail, held)
	}

	if _, err := f.reservations.CancelReservation(f.as(f.resident2), r.ID); !errors.Is(err, store.ErrNotAuthorized) {
		t.Errorf("cancel by other resident err = %v, want ErrNotAuthorized", err)
	}

	cancelled, err := f.reservations.CancelReservation(f.as(f.resident1), r.ID)
	if err != nil {
		t.Fatalf("CancelReservation: %v", err)
	}
	if cancelled.Status != entity.ReservationStatusCancelled {
		t.Errorf("Status = %s, want CANCELLED", cancelled.Status)
	}
	if avail, held := f.stock(t); avail != 10 || held != 0 {
		t.Errorf("stock after cancel = %d/%d, want 10/0", avail, held)
	}
}

func TestPharmacistScopedToOwnPharmacy(t *testing.T) {
	f := newFixture(t)

	_, err := f.medicines.UpdateMedicine(f.as(f.pharmacist2), &dto.UpdateMedicineRequest{
		MedicineID: f.medicine.ID,
		Price:      mustDecimal("1.00"),
	})
	if !errors.Is(err, store.ErrNotAuthorized) {
		t.Fatalf("UpdateMedicine by other pharmacist err = %v, want ErrNotAuthorized", err)
	}
	m, _ := f.store.Medicine(f.medicine.ID)
	if !m.Price.Equal(decimal.RequireFromString("5")) {
		t.Errorf("price changed to %s", m.Price)
	}

	r, err := f.reservations.ReserveMedicine(f.as(f.resident1), &dto.ReserveRequest{
		MedicineID:    f.medicine.ID,
		Quantity:      2,
		PaymentMethod: string(entity.PaymentMethodEPayment),
	})
	if err != nil {
		t.Fatalf("ReserveMedicine: %v", err)
	}
	if _, err := f.reservations.ApproveReservation(f.as(f.pharmacist2), r.ID); !errors.Is(err, ErrForeignPharmacyOrder) {
		t.Errorf("ApproveReservation by other pharmacist err = %v, want ErrForeignPharmacyOrder", err)
	}
	if _, err := f.medicines.GetPharmacyMedicines(f.as(f.pharmacist2), &dto.PharmacyMedicinesRequest{PharmacyID: f.pharmacist1.PharmacyID}); !errors.Is(err, store.ErrNotAuthorized) {
		t.Errorf("GetPharmacyMedicines of other pharmacy err = %v, want ErrNotAuthorized", err)
	}
	if _, err := f.reservations.GetPharmacyReservations(f.as(f.pharmacist2), &dto.ReservationListRequest{PharmacyID: f.pharmacist1.PharmacyID}); !errors.Is(err, store.ErrNotAuthorized) {
		t.Errorf("GetPharmacyReservations of other pharmacy err = %v, want ErrNotAuthorized", err)
	}

	own, err := f.reservations.GetPharmacyReservations(f.as(f.pharmacist1), &dto.ReservationListRequest{})
	if err != nil || len(own) != 1 {
		t.Fatalf("own reservations = %d, %v; want 1", len(own), err)
	}
}

func TestReservationLifecycleThroughPharmacist(t *testing.T) {
	f := newFixture(t)
	ctx := f.as(f.pharmacist1)

	r, err := f.reservations.ReserveMedicine(f.as(f.resident1), &dto.ReserveRequest{
		MedicineID:    f.medicine.ID,
		Quantity:      4,
		PaymentMethod: string(entity.PaymentMethodOnlineBank),
	})
	if err != nil {
		t.Fatalf("ReserveMedicine: %v", err)
	}
	if _, err := f.reservations.ApproveReservation(ctx, r.ID); err != nil {
		t.Fatalf("ApproveReservation: %v", err)
	}
	done, err := f.reservations.CompleteReservation(ctx, r.ID)
	if err != nil {
		t.Fatalf("CompleteReservation: %v", err)
	}
	if done.PaymentStatus != entity.PaymentStatusPaid {
		t.Errorf("PaymentStatus = %s, want PAID", done.PaymentStatus)
	}
	if avail, held := f.stock(t); avail != 6 || held != 0 {
		t.Errorf("stock after complete = %d/%d, want 6/0", avail, held)
	}
	if _, err := f.reservations.RejectReservation(ctx, r.ID); !errors.Is(err, store.ErrInvalidState) {
		t.Errorf("RejectReservation after complete err = %v, want ErrInvalidState", err)
	}
}

func TestReserveRejectsBadQuantity(t *testing.T) {
	f := newFixture(t)
	for _, quantity := range []int{0, -1, 11} {
		_, err := f.reservations.ReserveMedicine(f.as(f.resident1), &dto.ReserveRequest{
			MedicineID:    f.medicine.ID,
			Quantity:      quantity,
			PaymentMethod: string(entity.PaymentMethodPayAtStore),
		})
		if !errors.Is(err, store.ErrInvalidQuantity) {
			t.Errorf("quantity %d: err = %v, want ErrInvalidQuantity", quantity, err)
		}
	}
	if avail, held := f.stock(t); avail != 10 || held != 0 {
		t.Errorf("stock = %d/%d, want 10/0", avail, held)
	}
}

func TestResidentPharmacyVisibility(t *testing.T) {
	f := newFixture(t)

	if _, err := f.medicines.GetPharmacyMedicines(f.as(f.resident1), &dto.PharmacyMedicinesRequest{PharmacyID: f.pending.PharmacyID}); !errors.Is(err, store.ErrPharmacyNotFound) {
		t.Errorf("pending pharmacy err = %v, want ErrPharmacyNotFound", err)
	}

	inactive := string(entity.MedicineStatusInactive)
	if _, err := f.medicines.CreateMedicine(f.as(f.pharmacist1), &dto.CreateMedicineRequest{
		BrandName: "Hidden",
		Price:     mustDecimal("1"),
		Quantity:  intPtr(1),
		Status:    inactive,
	}); err != nil {
		t.Fatalf("CreateMedicine: %v", err)
	}

	visible, err := f.medicines.GetPharmacyMedicines(f.as(f.resident1), &dto.PharmacyMedicinesRequest{PharmacyID: f.pharmacist1.PharmacyID})
	if err != nil {
		t.Fatalf("GetPharmacyMedicines: %v", err)
	}
	if len(visible) != 1 || visible[0].Medicine.BrandName != "Panadol" {
		t.Errorf("resident sees %+v, want only Panadol", visible)
	}

	all, err := f.medicines.GetPharmacyMedicines(f.as(f.pharmacist1), &dto.PharmacyMedicinesRequest{})
	if err != nil || len(all) != 2 {
		t.Errorf("pharmacist sees %d medicines, %v; want 2", len(all), err)
	}

	found := f.medicines.SearchMedicines(f.as(f.resident1), &dto.SearchMedicinesRequest{Query: "PARACET"})
	if len(found) != 1 || found[0].PharmacyName != "Central" {
		t.Errorf("search = %+v, want Panadol at Central", found)
	}
}

func TestUpdateUserRules(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name  string
		actor entity.User
		req   dto.UpdateUserRequest
		want  error
	}{
		{"other profile", f.resident1, dto.UpdateUserRequest{UserID: f.resident2.ID, FullName: strPtr("X")}, ErrForeignProfile},
		{"own role", f.resident1, dto.UpdateUserRequest{UserType: strPtr("ADMIN")}, ErrPrivilegedField},
		{"admin self deactivate", f.admin, dto.UpdateUserRequest{IsActive: new(bool)}, ErrSelfDelete},
		{"duplicate username", f.resident1, dto.UpdateUserRequest{Username: strPtr("U2")}, store.ErrDuplicateUsername},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req
			if _, err := f.users.UpdateUser(f.as(tt.actor), &req); !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}

	updated, err := f.users.UpdateUser(f.as(f.resident1), &dto.UpdateUserRequest{FullName: strPtr("Una Lee")})
	if err != nil {
		t.Fatalf("UpdateUser own profile: %v", err)
	}
	if updated.ID != f.resident1.ID || updated.FullName != "Una Lee" {
		t.Errorf("updated = %+v", updated)
	}
}

func TestDeleteUser(t *testing.T) {
	f := newFixture(t)

	if _, err := f.users.DeleteUser(f.as(f.admin), f.admin.ID); !errors.Is(err, ErrSelfDelete) {
		t.Errorf("self delete err = %v, want ErrSelfDelete", err)
	}
	deleted, err := f.users.DeleteUser(f.as(f.admin), f.resident2.ID)
	if err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}
	if deleted.IsActive {
		t.Error("deleted user still active")
	}
	if _, err := f.auth.Login(context.Background(), &dto.LoginRequest{Username: "U2", Password: "pw"}); !errors.Is(err, store.ErrInactiveUser) {
		t.Errorf("login after delete err = %v, want ErrInactiveUser", err)
	}
}

func TestLoginTokenResolvesToCurrentUser(t *testing.T) {
	f := newFixture(t)

	res, err := f.auth.Login(context.Background(), &dto.LoginRequest{Username: "U1", Password: "pw"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if res.Token == "" {
		t.Fatal("empty token")
	}
	user, err := f.auth.ResolveToken(context.Background(), res.Token)
	if err != nil {
		t.Fatalf("ResolveToken: %v", err)
	}
	if user.ID != f.resident1.ID {
		t.Errorf("resolved user %d, want %d", user.ID, f.resident1.ID)
	}
	if _, err := f.auth.ResolveToken(context.Background(), res.Token+"x"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("tampered token err = %v, want ErrInvalidToken", err)
	}
	if _, err := f.auth.Login(context.Background(), &dto.LoginRequest{Username: "U1", Password: "nope"}); !errors.Is(err, store.ErrInvalidCredentials) {
		t.Errorf("bad password err = %v, want ErrInvalidCredentials", err)
	}
}

func TestRegisterPharmacistCreatesPendingPharmacy(t *testing.T) {
	f := newFixture(t)

	res, err := f.auth.Register(context.Background(), &dto.RegisterRequest{
		Username:     "P4",
		Password:     "pw",
		FullName:     "Pia",
		UserType:     string(entity.UserTypePharmacist),
		PharmacyName: "Harbour",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if res.Pharmacy == nil || res.Pharmacy.Status != entity.PharmacyStatusPending {
		t.Fatalf("pharmacy = %+v, want PENDING", res.Pharmacy)
	}
	if res.User.PharmacyID != res.Pharmacy.ID {
		t.Errorf("user pharmacy = %d, want %d", res.User.PharmacyID, res.Pharmacy.ID)
	}

	if _, err := f.auth.Register(context.Background(), &dto.RegisterRequest{Username: "P4", Password: "pw", FullName: "Dup"}); !errors.Is(err, store.ErrDuplicateUsername) {
		t.Errorf("duplicate register err = %v, want ErrDuplicateUsername", err)
	}

	approved, err := f.pharmacies.ApprovePharmacy(f.as(f.admin), res.Pharmacy.ID)
	if err != nil || approved.Status != entity.PharmacyStatusApproved {
		t.Fatalf("ApprovePharmacy = %+v, %v", approved, err)
	}
	if _, err := f.pharmacies.RejectPharmacy(f.as(f.admin), res.Pharmacy.ID); !errors.Is(err, store.ErrInvalidState) {
		t.Errorf("reject after approve err = %v, want ErrInvalidState", err)
	}
	if got := len(f.pharmacies.GetApprovedPharmacies(context.Background())); got != 3 {
		t.Errorf("approved pharmacies = %d, want 3", got)
	}
}

func TestSeedAdminOnlyWhenEmpty(t *testing.T) {
	log, _ := test.NewNullLogger()
	st := store.New(store.Options{BcryptCost: bcrypt.MinCost})
	users := NewUserUsecase(st, log, service.NewLogAuditService(log))

	created, err := users.SeedAdmin(context.Background(), "root", "secret")
	if err != nil || !created {
		t.Fatalf("SeedAdmin on empty store = %v, %v", created, err)
	}
	created, err = users.SeedAdmin(context.Background(), "root2", "secret")
	if err != nil || created {
		t.Fatalf("SeedAdmin on populated store = %v, %v", created, err)
	}
	if _, err := st.Authenticate("root", "secret"); err != nil {
		t.Errorf("seeded admin cannot log in: %v", err)
	}
}

func TestActionsRequireActor(t *testing.T) {
	f := newFixture(t)
	if _, err := f.reservations.ReserveMedicine(context.Background(), &dto.ReserveRequest{MedicineID: f.medicine.ID, Quantity: 1}); !errors.Is(err, ErrNotLoggedIn) {
		t.Errorf("err = %v, want ErrNotLoggedIn", err)
	}
}
