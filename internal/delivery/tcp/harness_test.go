package tcp

import (
	"context"
	"testing"
	"time"

	"go-pharmacy-reservation/config"
	"go-pharmacy-reservation/internal/service"
	"go-pharmacy-reservation/internal/store"
	"go-pharmacy-reservation/internal/usecase"
	"go-pharmacy-reservation/internal/wire"
	"go-pharmacy-reservation/pkg/jwt"
	"go-pharmacy-reservation/pkg/validator"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"golang.org/x/crypto/bcrypt"
)

type harness struct {
	store  *store.Store
	router *Router
	log    *logrus.Logger
	hook   *test.Hook
}

// newHarness wires the full request path over an empty store seeded with
// administrator admin/admin.
func newHarness(t *testing.T) *harness {
	t.Helper()
	log, hook := test.NewNullLogger()
	st := store.New(store.Options{BcryptCost: bcrypt.MinCost})
	audit := service.NewLogAuditService(log)
	jwtService := jwt.NewJWTService(config.JWTConfig{Secret: "test-secret", AccessExpiry: time.Hour})
	v := validator.NewValidator()

	authUsecase := usecase.NewAuthUsecase(st, log, audit, jwtService)
	userUsecase := usecase.NewUserUsecase(st, log, audit)
	router := NewRouter(log,
		NewAuthHandler(authUsecase, v, log),
		NewUserHandler(userUsecase, v, log),
		NewPharmacyHandler(usecase.NewPharmacyUsecase(st, log, audit), v, log),
		NewMedicineHandler(usecase.NewMedicineUsecase(st, log, audit), v, log),
		NewReservationHandler(usecase.NewReservationUsecase(st, log, audit), v, log),
		NewAuthMiddleware(authUsecase, log),
	).Setup()

	if _, err := userUsecase.SeedAdmin(context.Background(), "admin", "admin"); err != nil {
		t.Fatalf("SeedAdmin: %v", err)
	}
	return &harness{store: st, router: router, log: log, hook: hook}
}

func (h *harness) call(sess *Session, action string, params ...wire.Param) *wire.Response {
	return h.router.Dispatch(context.Background(), sess, wire.EncodeRequest(action, params...))
}

func (h *harness) mustCall(t *testing.T, sess *Session, action string, params ...wire.Param) *wire.Response {
	t.Helper()
	resp := h.call(sess, action, params...)
	if !resp.OK() {
		t.Fatalf("%s failed: %s", action, resp.Message)
	}
	return resp
}

func (h *harness) login(t *testing.T, username, password string) *Session {
	t.Helper()
	sess := NewSession("test")
	h.mustCall(t, sess, wire.ActionLogin, wire.String("username", username), wire.String("password", password))
	return sess
}

// registerPharmacy signs up a pharmacist, has the administrator approve
// the pharmacy and returns the pharmacist's session and pharmacy id.
func (h *harness) registerPharmacy(t *testing.T, admin *Session, username, pharmacy string) (*Session, int64) {
	t.Helper()
	resp := h.mustCall(t, NewSession("test"), wire.ActionRegister,
		wire.String("username", username),
		wire.String("password", "pw"),
		wire.String("fullName", username),
		wire.String("userType", "PHARMACIST"),
		wire.String("pharmacyName", pharmacy),
	)
	pharmacyID := resp.Records().Pharmacies[0].ID.Int(0)
	h.mustCall(t, admin, wire.ActionApprovePharmacy, wire.Int("pharmacyId", pharmacyID))
	return h.login(t, username, "pw"), pharmacyID
}

func (h *harness) registerResident(t *testing.T, username string) *Session {
	t.Helper()
	h.mustCall(t, NewSession("test"), wire.ActionRegister,
		wire.String("username", username),
		wire.String("password", "pw"),
		wire.String("fullName", username),
	)
	return h.login(t, username, "pw")
}

func (h *harness) createMedicine(t *testing.T, pharmacist *Session, brand, price string, quantity int64) int64 {
	t.Helper()
	resp := h.mustCall(t, pharmacist, wire.ActionCreateMedicine,
		wire.String("brandName", brand),
		wire.String("genericName", "Paracetamol"),
		wire.String("price", price),
		wire.Int("quantity", quantity),
	)
	return resp.Records().Medicines[0].ID.Int(0)
}

func (h *harness) stock(t *testing.T, medicineID int64) (int, int) {
	t.Helper()
	m, err := h.store.Medicine(medicineID)
	if err != nil {
		t.Fatalf("Medicine: %v", err)
	}
	return m.QuantityAvailable, m.QuantityReserved
}
