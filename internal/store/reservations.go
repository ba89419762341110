package store

import (
	"fmt"
	"time"

	"go-pharmacy-reservation/internal/domain/entity"

	"github.com/shopspring/decimal"
)

// NewReservation carries a resident's request to hold stock.
type NewReservation struct {
	UserID        int64
	MedicineID    int64
	Quantity      int
	PaymentMethod entity.PaymentMethod
	Notes         string
}

// ReservationFilter narrows a reservation listing. Zero values match
// everything.
type ReservationFilter struct {
	UserID     int64
	PharmacyID int64
	Status     entity.ReservationStatus
}

// ReservationListing is a reservation joined with the display names of
// the entities it references.
type ReservationListing struct {
	Reservation  entity.Reservation
	CustomerName string
	MedicineName string
	GenericName  string
	PharmacyName string
}

// Guard inspects a reservation under the store lock before a transition
// is applied. A non-nil error aborts the transition.
type Guard func(entity.Reservation) error

// Reserve creates a PENDING reservation and moves its quantity from
// available to reserved stock in the same critical section.
func (s *Store) Reserve(in NewReservation) (entity.Reservation, error) {
	if in.Quantity <= 0 {
		return entity.Reservation{}, fmt.Errorf("%w: quantity must be positive, got %d", ErrInvalidQuantity, in.Quantity)
	}
	if !in.PaymentMethod.Valid() {
		return entity.Reservation{}, fmt.Errorf("%w: unknown payment method %q", ErrInvalidInput, in.PaymentMethod)
	}

	s.mu.Lock()
	u, ok := s.users[in.UserID]
	if !ok {
		s.mu.Unlock()
		return entity.Reservation{}, ErrUserNotFound
	}
	if !u.IsActive {
		s.mu.Unlock()
		return entity.Reservation{}, ErrInactiveUser
	}
	m, ok := s.medicines[in.MedicineID]
	if !ok || m.IsDeleted() {
		s.mu.Unlock()
		return entity.Reservation{}, ErrMedicineNotFound
	}
	if !m.IsActive() {
		s.mu.Unlock()
		return entity.Reservation{}, fmt.Errorf("%w: medicine %d is not available for reservation", ErrInvalidState, m.ID)
	}
	if p, ok := s.pharmacies[m.PharmacyID]; !ok || !p.IsApproved() {
		s.mu.Unlock()
		return entity.Reservation{}, fmt.Errorf("%w: pharmacy of medicine %d is not approved", ErrInvalidState, m.ID)
	}
	if in.Quantity > m.QuantityAvailable {
		s.mu.Unlock()
		return entity.Reservation{}, fmt.Errorf("%w: requested %d, only %d available", ErrInvalidQuantity, in.Quantity, m.QuantityAvailable)
	}

	now := s.now()
	r := &entity.Reservation{
		ID:              s.nextReservationID,
		UserID:          in.UserID,
		MedicineID:      m.ID,
		PharmacyID:      m.PharmacyID,
		Quantity:        in.Quantity,
		TotalPrice:      m.Price.Mul(decimal.NewFromInt(int64(in.Quantity))),
		PaymentMethod:   in.PaymentMethod,
		PaymentStatus:   entity.PaymentStatusPending,
		Status:          entity.ReservationStatusPending,
		ReservationTime: now,
		ExpirationTime:  now.Add(s.holdWindow),
		Notes:           in.Notes,
		UpdatedAt:       now,
	}
	m.QuantityAvailable -= in.Quantity
	m.QuantityReserved += in.Quantity
	s.touchMedicine(m, now)
	s.reservations[r.ID] = r
	s.nextReservationID++

	created, medicine := *r, *m
	s.mu.Unlock()

	s.notify(medicine)
	return created, nil
}

// Transition moves a reservation to target if the lifecycle allows it,
// adjusting held stock accordingly. guard may be nil.
func (s *Store) Transition(id int64, target entity.ReservationStatus, guard Guard) (entity.Reservation, error) {
	s.mu.Lock()
	r, ok := s.reservations[id]
	if !ok {
		s.mu.Unlock()
		return entity.Reservation{}, ErrReservationNotFound
	}
	if guard != nil {
		if err := guard(*r); err != nil {
			s.mu.Unlock()
			return entity.Reservation{}, err
		}
	}
	medicine, err := s.transitionLocked(r, target, s.now())
	if err != nil {
		s.mu.Unlock()
		return entity.Reservation{}, err
	}
	updated := *r
	s.mu.Unlock()

	s.notify(medicine)
	return updated, nil
}

// ExpireDue moves every open reservation whose expiration time is not
// after now to EXPIRED, releasing its hold. It returns the expired
// reservations ordered by id.
func (s *Store) ExpireDue(now time.Time) []entity.Reservation {
	s.mu.Lock()
	var expired []entity.Reservation
	var changed []entity.Medicine
	for _, id := range sortedKeys(s.reservations) {
		r := s.reservations[id]
		if !r.IsDue(now) {
			continue
		}
		medicine, err := s.transitionLocked(r, entity.ReservationStatusExpired, now)
		if err != nil {
			continue
		}
		expired = append(expired, *r)
		changed = append(changed, medicine)
	}
	s.mu.Unlock()

	s.notify(changed...)
	return expired
}

// transitionLocked validates and applies one lifecycle step. Nothing is
// modified unless every check passes.
func (s *Store) transitionLocked(r *entity.Reservation, target entity.ReservationStatus, now time.Time) (entity.Medicine, error) {
	if !r.Status.CanTransition(target) {
		return entity.Medicine{}, fmt.Errorf("%w: reservation %d is %s, cannot move to %s", ErrInvalidState, r.ID, r.Status, target)
	}
	m, ok := s.medicines[r.MedicineID]
	if !ok {
		return entity.Medicine{}, ErrMedicineNotFound
	}
	if m.QuantityReserved < r.Quantity {
		return entity.Medicine{}, fmt.Errorf("%w: medicine %d holds %d units, reservation %d needs %d", ErrInvalidState, m.ID, m.QuantityReserved, r.ID, r.Quantity)
	}

	switch {
	case target.ReleasesHold():
		m.QuantityAvailable += r.Quantity
		m.QuantityReserved -= r.Quantity
		s.touchMedicine(m, now)
	case target == entity.ReservationStatusCompleted:
		m.QuantityReserved -= r.Quantity
		r.PaymentStatus = entity.PaymentStatusPaid
		s.touchMedicine(m, now)
	}
	r.Status = target
	r.UpdatedAt = now
	return *m, nil
}

// Reservation returns the reservation with the given id.
func (s *Store) Reservation(id int64) (entity.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.reservations[id]
	if !ok {
		return entity.Reservation{}, ErrReservationNotFound
	}
	return *r, nil
}

// Reservations lists reservations matching filter ordered by id.
func (s *Store) Reservations(filter ReservationFilter) []ReservationListing {
	s.mu.RLock()
	defer s.mu.RUnlock()

	listings := make([]ReservationListing, 0)
	for _, id := range sortedKeys(s.reservations) {
		r := s.reservations[id]
		if filter.UserID != 0 && r.UserID != filter.UserID {
			continue
		}
		if filter.PharmacyID != 0 && r.PharmacyID != filter.PharmacyID {
			continue
		}
		if filter.Status != "" && r.Status != filter.Status {
			continue
		}
		listing := ReservationListing{Reservation: *r}
		if u, ok := s.users[r.UserID]; ok {
			listing.CustomerName = u.FullName
		}
		if m, ok := s.medicines[r.MedicineID]; ok {
			listing.MedicineName = m.BrandName
			listing.GenericName = m.GenericName
		}
		if p, ok := s.pharmacies[r.PharmacyID]; ok {
			listing.PharmacyName = p.Name
		}
		listings = append(listings, listing)
	}
	return listings
}
