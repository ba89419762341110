package store

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go-pharmacy-reservation/internal/domain/entity"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

var epoch = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fixture struct {
	store      *Store
	clock      *testClock
	resident   entity.User
	pharmacist entity.User
	pharmacy   entity.Pharmacy
	medicine   entity.Medicine
}

// newFixture builds a store with one approved pharmacy, its pharmacist, a
// resident and medicine M1 (10 units at 5.00).
func newFixture(t *testing.T) *fixture {
	t.Helper()
	clock := &testClock{now: epoch}
	s := New(Options{HoldWindow: time.Hour, BcryptCost: bcrypt.MinCost, Now: clock.Now})

	pharmacist, pharmacy, err := s.RegisterPharmacist(
		NewUser{Username: "pharma", Password: "secret", FullName: "Pat Pharmacist"},
		NewPharmacy{Name: "Central Pharmacy", Address: "1 Main St"},
	)
	if err != nil {
		t.Fatalf("RegisterPharmacist: %v", err)
	}
	if pharmacy, err = s.SetPharmacyStatus(pharmacy.ID, entity.PharmacyStatusApproved); err != nil {
		t.Fatalf("SetPharmacyStatus: %v", err)
	}
	resident, err := s.CreateUser(NewUser{Username: "U1", Password: "pw", FullName: "Riley Resident", UserType: entity.UserTypeResident})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	medicine, err := s.CreateMedicine(pharmacy.ID, NewMedicine{
		BrandName:         "Panadol",
		GenericName:       "Paracetamol",
		Price:             decimal.RequireFromString("5.00"),
		QuantityAvailable: 10,
	})
	if err != nil {
		t.Fatalf("CreateMedicine: %v", err)
	}
	return &fixture{store: s, clock: clock, resident: resident, pharmacist: pharmacist, pharmacy: pharmacy, medicine: medicine}
}

func (f *fixture) reserve(t *testing.T, quantity int) entity.Reservation {
	t.Helper()
	r, err := f.store.Reserve(NewReservation{
		UserID:        f.resident.ID,
		MedicineID:    f.medicine.ID,
		Quantity:      quantity,
		PaymentMethod: entity.PaymentMethodPayAtStore,
	})
	if err != nil {
		t.Fatalf("Reserve(%d): %v", quantity, err)
	}
	return r
}

func (f *fixture) stock(t *testing.T) (available, reserved int) {
	t.Helper()
	m, err := f.store.Medicine(f.medicine.ID)
	if err != nil {
		t.Fatalf("Medicine: %v", err)
	}
	return m.QuantityAvailable, m.QuantityReserved
}

func TestReserveThenCancelRestoresStock(t *testing.T) {
	f := newFixture(t)

	r := f.reserve(t, 3)
	if r.Status != entity.ReservationStatusPending {
		t.Errorf("status = %s, want PENDING", r.Status)
	}
	if got := r.TotalPrice.StringFixed(2); got != "15.00" {
		t.Errorf("total price = %s, want 15.00", got)
	}
	if !r.ExpirationTime.Equal(epoch.Add(time.Hour)) {
		t.Errorf("expiration = %v, want %v", r.ExpirationTime, epoch.Add(time.Hour))
	}
	if available, reserved := f.stock(t); available != 7 || reserved != 3 {
		t.Fatalf("after reserve: available=%d reserved=%d, want 7/3", available, reserved)
	}

	cancelled, err := f.store.Transition(r.ID, entity.ReservationStatusCancelled, nil)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if cancelled.Status != entity.ReservationStatusCancelled {
		t.Errorf("status = %s, want CANCELLED", cancelled.Status)
	}
	if available, reserved := f.stock(t); available != 10 || reserved != 0 {
		t.Fatalf("after cancel: available=%d reserved=%d, want 10/0", available, reserved)
	}
}

func TestReserveRejectsInvalidQuantities(t *testing.T) {
	f := newFixture(t)
	for _, quantity := range []int{0, -2, 11} {
		_, err := f.store.Reserve(NewReservation{
			UserID:        f.resident.ID,
			MedicineID:    f.medicine.ID,
			Quantity:      quantity,
			PaymentMethod: entity.PaymentMethodEPayment,
		})
		if !errors.Is(err, ErrInvalidQuantity) {
			t.Errorf("Reserve(%d) error = %v, want ErrInvalidQuantity", quantity, err)
		}
	}
	if available, reserved := f.stock(t); available != 10 || reserved != 0 {
		t.Fatalf("stock changed by failed reservations: %d/%d", available, reserved)
	}
	if stats := f.store.Stats(); stats.Reservations != 0 {
		t.Fatalf("reservations = %d, want 0", stats.Reservations)
	}
}

func TestReserveRequiresApprovedPharmacyAndActiveMedicine(t *testing.T) {
	f := newFixture(t)

	_, pending, err := f.store.RegisterPharmacist(
		NewUser{Username: "other", Password: "pw"},
		NewPharmacy{Name: "Pending Pharmacy"},
	)
	if err != nil {
		t.Fatal(err)
	}
	hidden, err := f.store.CreateMedicine(pending.ID, NewMedicine{BrandName: "Hidden", QuantityAvailable: 5})
	if err != nil {
		t.Fatal(err)
	}
	_, err = f.store.Reserve(NewReservation{UserID: f.resident.ID, MedicineID: hidden.ID, Quantity: 1, PaymentMethod: entity.PaymentMethodPayAtStore})
	if !errors.Is(err, ErrInvalidState) {
		t.Errorf("reserve at pending pharmacy: error = %v, want ErrInvalidState", err)
	}

	inactive := entity.MedicineStatusInactive
	if _, err := f.store.UpdateMedicine(f.pharmacy.ID, f.medicine.ID, MedicineUpdate{Status: &inactive}); err != nil {
		t.Fatal(err)
	}
	_, err = f.store.Reserve(NewReservation{UserID: f.resident.ID, MedicineID: f.medicine.ID, Quantity: 1, PaymentMethod: entity.PaymentMethodPayAtStore})
	if !errors.Is(err, ErrInvalidState) {
		t.Errorf("reserve inactive medicine: error = %v, want ErrInvalidState", err)
	}
}

func TestConcurrentReservationsNeverOversell(t *testing.T) {
	f := newFixture(t)

	const workers = 50
	var wg sync.WaitGroup
	var succeeded atomic.Int64
	start := make(chan struct{})
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := f.store.Reserve(NewReservation{
				UserID:        f.resident.ID,
				MedicineID:    f.medicine.ID,
				Quantity:      3,
				PaymentMethod: entity.PaymentMethodOnlineBank,
			})
			if err == nil {
				succeeded.Add(1)
			} else if !errors.Is(err, ErrInvalidQuantity) {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	close(start)
	wg.Wait()

	if got := succeeded.Load(); got != 3 {
		t.Fatalf("successful reservations = %d, want 3", got)
	}
	if available, reserved := f.stock(t); available != 1 || reserved != 9 {
		t.Fatalf("available=%d reserved=%d, want 1/9", available, reserved)
	}
}

func TestTwoReservationsExceedingStockOnlyOneSucceeds(t *testing.T) {
	f := newFixture(t)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, quantity := range []int{6, 7} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = f.store.Reserve(NewReservation{
				UserID:        f.resident.ID,
				MedicineID:    f.medicine.ID,
				Quantity:      quantity,
				PaymentMethod: entity.PaymentMethodPayAtStore,
			})
		}()
	}
	wg.Wait()

	if (errs[0] == nil) == (errs[1] == nil) {
		t.Fatalf("want exactly one success, got errors %v and %v", errs[0], errs[1])
	}
}

func TestLifecycleTransitions(t *testing.T) {
	tests := []struct {
		name          string
		path          []entity.ReservationStatus
		wantAvailable int
		wantReserved  int
	}{
		{"approve then complete", []entity.ReservationStatus{entity.ReservationStatusApproved, entity.ReservationStatusCompleted}, 6, 0},
		{"reject", []entity.ReservationStatus{entity.ReservationStatusRejected}, 10, 0},
		{"approve then cancel", []entity.ReservationStatus{entity.ReservationStatusApproved, entity.ReservationStatusCancelled}, 10, 0},
		{"approve only", []entity.ReservationStatus{entity.ReservationStatusApproved}, 6, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			r := f.reserve(t, 4)
			for _, status := range tt.path {
				if _, err := f.store.Transition(r.ID, status, nil); err != nil {
					t.Fatalf("transition to %s: %v", status, err)
				}
			}
			if available, reserved := f.stock(t); available != tt.wantAvailable || reserved != tt.wantReserved {
				t.Fatalf("available=%d reserved=%d, want %d/%d", available, reserved, tt.wantAvailable, tt.wantReserved)
			}
		})
	}
}

func TestIllegalTransitionsLeaveStateUnchanged(t *testing.T) {
	tests := []struct {
		name   string
		setup  []entity.ReservationStatus
		target entity.ReservationStatus
	}{
		{"complete from pending", nil, entity.ReservationStatusCompleted},
		{"approve twice", []entity.ReservationStatus{entity.ReservationStatusApproved}, entity.ReservationStatusApproved},
		{"reject approved", []entity.ReservationStatus{entity.ReservationStatusApproved}, entity.ReservationStatusRejected},
		{"cancel rejected", []entity.ReservationStatus{entity.ReservationStatusRejected}, entity.ReservationStatusCancelled},
		{"cancel completed", []entity.ReservationStatus{entity.ReservationStatusApproved, entity.ReservationStatusCompleted}, entity.ReservationStatusCancelled},
		{"cancel twice", []entity.ReservationStatus{entity.ReservationStatusCancelled}, entity.ReservationStatusCancelled},
		{"back to pending", []entity.ReservationStatus{entity.ReservationStatusApproved}, entity.ReservationStatusPending},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			r := f.reserve(t, 2)
			for _, status := range tt.setup {
				if _, err := f.store.Transition(r.ID, status, nil); err != nil {
					t.Fatalf("setup transition to %s: %v", status, err)
				}
			}
			before, _ := f.store.Reservation(r.ID)
			available, reserved := f.stock(t)

			_, err := f.store.Transition(r.ID, tt.target, nil)
			if !errors.Is(err, ErrInvalidState) {
				t.Fatalf("error = %v, want ErrInvalidState", err)
			}
			after, _ := f.store.Reservation(r.ID)
			if after.Status != before.Status {
				t.Errorf("status changed from %s to %s", before.Status, after.Status)
			}
			if a, r := f.stock(t); a != available || r != reserved {
				t.Errorf("stock changed from %d/%d to %d/%d", available, reserved, a, r)
			}
		})
	}
}

func TestGuardAbortsTransition(t *testing.T) {
	f := newFixture(t)
	r := f.reserve(t, 2)

	denied := errors.New("denied")
	_, err := f.store.Transition(r.ID, entity.ReservationStatusCancelled, func(entity.Reservation) error { return denied })
	if !errors.Is(err, denied) {
		t.Fatalf("error = %v, want guard error", err)
	}
	if got, _ := f.store.Reservation(r.ID); got.Status != entity.ReservationStatusPending {
		t.Fatalf("status = %s, want PENDING", got.Status)
	}
}

func TestExpireDueReleasesHolds(t *testing.T) {
	f := newFixture(t)
	pending := f.reserve(t, 2)
	approved := f.reserve(t, 3)
	completed := f.reserve(t, 1)
	if _, err := f.store.Transition(approved.ID, entity.ReservationStatusApproved, nil); err != nil {
		t.Fatal(err)
	}
	for _, status := range []entity.ReservationStatus{entity.ReservationStatusApproved, entity.ReservationStatusCompleted} {
		if _, err := f.store.Transition(completed.ID, status, nil); err != nil {
			t.Fatal(err)
		}
	}

	if expired := f.store.ExpireDue(epoch.Add(30 * time.Minute)); len(expired) != 0 {
		t.Fatalf("expired %d reservations before the hold window passed", len(expired))
	}

	expired := f.store.ExpireDue(epoch.Add(time.Hour))
	if len(expired) != 2 || expired[0].ID != pending.ID || expired[1].ID != approved.ID {
		t.Fatalf("expired = %+v, want reservations %d and %d", expired, pending.ID, approved.ID)
	}
	for _, r := range expired {
		if r.Status != entity.ReservationStatusExpired {
			t.Errorf("reservation %d status = %s, want EXPIRED", r.ID, r.Status)
		}
	}
	if available, reserved := f.stock(t); available != 9 || reserved != 0 {
		t.Fatalf("available=%d reserved=%d, want 9/0", available, reserved)
	}
	if again := f.store.ExpireDue(epoch.Add(2 * time.Hour)); len(again) != 0 {
		t.Fatalf("second sweep expired %d reservations", len(again))
	}
}

func TestCancelRacingExpiryReleasesOnce(t *testing.T) {
	for i := range 20 {
		f := newFixture(t)
		r := f.reserve(t, 4)

		var wg sync.WaitGroup
		var cancelErr error
		var expired []entity.Reservation
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, cancelErr = f.store.Transition(r.ID, entity.ReservationStatusCancelled, nil)
		}()
		go func() {
			defer wg.Done()
			expired = f.store.ExpireDue(epoch.Add(2 * time.Hour))
		}()
		wg.Wait()

		cancelled := cancelErr == nil
		if cancelled == (len(expired) == 1) {
			t.Fatalf("iteration %d: cancel succeeded=%v, expired=%d; want exactly one winner", i, cancelled, len(expired))
		}
		if !cancelled && !errors.Is(cancelErr, ErrInvalidState) {
			t.Fatalf("iteration %d: losing cancel error = %v, want ErrInvalidState", i, cancelErr)
		}
		if available, reserved := f.stock(t); available != 10 || reserved != 0 {
			t.Fatalf("iteration %d: available=%d reserved=%d, want 10/0", i, available, reserved)
		}
	}
}

func TestInventoryConservation(t *testing.T) {
	f := newFixture(t)
	const total = 10
	completedQuantity := 0

	check := func(step string) {
		t.Helper()
		available, reserved := f.stock(t)
		if available+reserved != total-completedQuantity {
			t.Fatalf("%s: available(%d)+reserved(%d) != %d-%d", step, available, reserved, total, completedQuantity)
		}
	}

	a := f.reserve(t, 2)
	check("reserve a")
	b := f.reserve(t, 3)
	check("reserve b")
	c := f.reserve(t, 1)
	check("reserve c")

	steps := []struct {
		id     int64
		target entity.ReservationStatus
	}{
		{a.ID, entity.ReservationStatusApproved},
		{b.ID, entity.ReservationStatusRejected},
		{a.ID, entity.ReservationStatusCompleted},
		{c.ID, entity.ReservationStatusCancelled},
		{b.ID, entity.ReservationStatusApproved},
	}
	for _, step := range steps {
		r, err := f.store.Transition(step.id, step.target, nil)
		if err == nil && r.Status == entity.ReservationStatusCompleted {
			completedQuantity += r.Quantity
		}
		check(string(step.target))
	}
	d := f.reserve(t, 5)
	check("reserve d")
	f.store.ExpireDue(d.ExpirationTime)
	check("expire")
}

func TestPriceChangeDoesNotAffectExistingTotal(t *testing.T) {
	f := newFixture(t)
	r := f.reserve(t, 3)

	price := decimal.RequireFromString("9.99")
	if _, err := f.store.UpdateMedicine(f.pharmacy.ID, f.medicine.ID, MedicineUpdate{Price: &price}); err != nil {
		t.Fatal(err)
	}
	got, _ := f.store.Reservation(r.ID)
	if !got.TotalPrice.Equal(decimal.RequireFromString("15")) {
		t.Fatalf("total price = %s, want 15", got.TotalPrice)
	}
}

func TestUpdateMedicineOfAnotherPharmacyIsNotAuthorized(t *testing.T) {
	f := newFixture(t)
	_, other, err := f.store.RegisterPharmacist(NewUser{Username: "p2", Password: "pw"}, NewPharmacy{Name: "P2"})
	if err != nil {
		t.Fatal(err)
	}

	name := "Stolen"
	_, err = f.store.UpdateMedicine(other.ID, f.medicine.ID, MedicineUpdate{BrandName: &name})
	if !errors.Is(err, ErrNotAuthorized) {
		t.Fatalf("error = %v, want ErrNotAuthorized", err)
	}
	if m, _ := f.store.Medicine(f.medicine.ID); m.BrandName != "Panadol" || m.Version != f.medicine.Version {
		t.Fatalf("medicine changed: %+v", m)
	}
}

func TestDeleteMedicineRefusedWhileHeld(t *testing.T) {
	f := newFixture(t)
	r := f.reserve(t, 1)

	if _, err := f.store.DeleteMedicine(f.pharmacy.ID, f.medicine.ID); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("delete with open hold: error = %v, want ErrInvalidState", err)
	}
	if _, err := f.store.Transition(r.ID, entity.ReservationStatusCancelled, nil); err != nil {
		t.Fatal(err)
	}
	if _, err := f.store.DeleteMedicine(f.pharmacy.ID, f.medicine.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if listings := f.store.Medicines(MedicineFilter{}); len(listings) != 0 {
		t.Fatalf("deleted medicine still listed: %+v", listings)
	}
	if _, err := f.store.UpdateMedicine(f.pharmacy.ID, f.medicine.ID, MedicineUpdate{}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("update deleted medicine: error = %v, want ErrNotFound", err)
	}
}

func TestMedicineSearch(t *testing.T) {
	f := newFixture(t)
	for _, in := range []NewMedicine{
		{BrandName: "Biogesic", GenericName: "PARACETAMOL", QuantityAvailable: 4},
		{BrandName: "Advil", GenericName: "Ibuprofen", QuantityAvailable: 2},
	} {
		if _, err := f.store.CreateMedicine(f.pharmacy.ID, in); err != nil {
			t.Fatal(err)
		}
	}

	listings := f.store.Medicines(MedicineFilter{Query: "paraCET", ApprovedOnly: true, ActiveOnly: true})
	if len(listings) != 2 {
		t.Fatalf("matches = %d, want 2", len(listings))
	}
	if listings[0].Medicine.BrandName != "Panadol" || listings[1].Medicine.BrandName != "Biogesic" {
		t.Fatalf("order = %s, %s; want Panadol, Biogesic", listings[0].Medicine.BrandName, listings[1].Medicine.BrandName)
	}
	if listings[0].PharmacyName != "Central Pharmacy" {
		t.Errorf("pharmacy name = %q", listings[0].PharmacyName)
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	f := newFixture(t)
	before := f.store.Stats()

	_, err := f.store.CreateUser(NewUser{Username: "U1", Password: "x", UserType: entity.UserTypeResident})
	if !errors.Is(err, ErrDuplicateUsername) {
		t.Fatalf("CreateUser error = %v, want ErrDuplicateUsername", err)
	}
	_, _, err = f.store.RegisterPharmacist(NewUser{Username: "pharma", Password: "x"}, NewPharmacy{Name: "Dup"})
	if !errors.Is(err, ErrDuplicateUsername) {
		t.Fatalf("RegisterPharmacist error = %v, want ErrDuplicateUsername", err)
	}
	if after := f.store.Stats(); after != before {
		t.Fatalf("stats changed: %+v -> %+v", before, after)
	}
	if _, err := f.store.CreateUser(NewUser{Username: "u1", Password: "x", UserType: entity.UserTypeResident}); err != nil {
		t.Fatalf("usernames are case-sensitive, got %v", err)
	}
}

func TestAuthenticate(t *testing.T) {
	f := newFixture(t)

	if _, err := f.store.Authenticate("U1", "pw"); err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if _, err := f.store.Authenticate("U1", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password: error = %v", err)
	}
	if _, err := f.store.Authenticate("nobody", "pw"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown user: error = %v", err)
	}
	if _, err := f.store.DeactivateUser(f.resident.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := f.store.Authenticate("U1", "pw"); !errors.Is(err, ErrInactiveUser) {
		t.Fatalf("inactive user: error = %v", err)
	}
}

func TestPharmacyReviewIsFinal(t *testing.T) {
	f := newFixture(t)
	if _, err := f.store.SetPharmacyStatus(f.pharmacy.ID, entity.PharmacyStatusRejected); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("reject approved pharmacy: error = %v, want ErrInvalidState", err)
	}
	if approved := f.store.ApprovedPharmacies(); len(approved) != 1 {
		t.Fatalf("approved pharmacies = %d, want 1", len(approved))
	}
}

type memoryBacking struct {
	saved *Snapshot
}

func (b *memoryBacking) Load(context.Context) (*Snapshot, error) { return b.saved, nil }

func (b *memoryBacking) Save(_ context.Context, snapshot *Snapshot) error {
	b.saved = snapshot
	return nil
}

func TestCloseAndLoadRoundTrip(t *testing.T) {
	f := newFixture(t)
	backing := &memoryBacking{}
	f.store.backing = backing
	f.reserve(t, 2)

	if err := f.store.Close(context.Background()); err != nil {
		t.Fatal(err)
	}

	restored := New(Options{Backing: backing, BcryptCost: bcrypt.MinCost})
	if err := restored.Load(context.Background()); err != nil {
		t.Fatal(err)
	}
	if got, want := restored.Stats(), f.store.Stats(); got != want {
		t.Fatalf("restored stats = %+v, want %+v", got, want)
	}
	u, err := restored.CreateUser(NewUser{Username: "fresh", Password: "pw", UserType: entity.UserTypeResident})
	if err != nil {
		t.Fatal(err)
	}
	if u.ID != f.resident.ID+1 {
		t.Fatalf("new user id = %d, want %d", u.ID, f.resident.ID+1)
	}
}

type recordingListener struct {
	mu       sync.Mutex
	versions []int64
}

func (l *recordingListener) StockChanged(_ context.Context, medicines []entity.Medicine) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, m := range medicines {
		l.versions = append(l.versions, m.Version)
	}
}

func TestStockListenerSeesIncreasingVersions(t *testing.T) {
	f := newFixture(t)
	listener := &recordingListener{}
	f.store.listener = listener

	r := f.reserve(t, 1)
	if _, err := f.store.Transition(r.ID, entity.ReservationStatusRejected, nil); err != nil {
		t.Fatal(err)
	}
	if len(listener.versions) != 2 || listener.versions[0] >= listener.versions[1] {
		t.Fatalf("versions = %v, want two increasing versions", listener.versions)
	}
}
