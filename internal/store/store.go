// Package store holds the authoritative in-memory collections of users,
// pharmacies, medicines and reservations.
//
// Every read-modify-write runs under one mutex, so a stock check and the
// hold that follows it can never interleave with another request or with
// the expiry sweep. Readers get copies; no pointer into the maps escapes.
package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"go-pharmacy-reservation/internal/domain/entity"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrNotAuthorized      = errors.New("not authorized")
	ErrInvalidState       = errors.New("invalid state")
	ErrInvalidQuantity    = errors.New("invalid quantity")
	ErrInvalidInput       = errors.New("invalid input")
	ErrDuplicateUsername  = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInactiveUser       = errors.New("user account is inactive")

	ErrUserNotFound        = fmt.Errorf("user %w", ErrNotFound)
	ErrPharmacyNotFound    = fmt.Errorf("pharmacy %w", ErrNotFound)
	ErrMedicineNotFound    = fmt.Errorf("medicine %w", ErrNotFound)
	ErrReservationNotFound = fmt.Errorf("reservation %w", ErrNotFound)
)

const defaultHoldWindow = 24 * time.Hour

// Snapshot is a point-in-time copy of every collection.
type Snapshot struct {
	Users        []entity.User
	Pharmacies   []entity.Pharmacy
	Medicines    []entity.Medicine
	Reservations []entity.Reservation
}

// Backing is durable storage the store loads from at start and flushes to
// on checkpoint and close.
type Backing interface {
	Load(ctx context.Context) (*Snapshot, error)
	Save(ctx context.Context, snapshot *Snapshot) error
}

// StockListener is told about every medicine whose stock or details
// changed. It is called after the store lock is released, with copies.
type StockListener interface {
	StockChanged(ctx context.Context, medicines []entity.Medicine)
}

type Options struct {
	HoldWindow time.Duration
	BcryptCost int
	Backing    Backing
	Listener   StockListener
	Now        func() time.Time
}

// Stats summarises the store contents.
type Stats struct {
	Users            int `json:"users"`
	Pharmacies       int `json:"pharmacies"`
	Medicines        int `json:"medicines"`
	Reservations     int `json:"reservations"`
	OpenReservations int `json:"open_reservations"`
}

type Store struct {
	mu sync.RWMutex

	users        map[int64]*entity.User
	usernames    map[string]int64
	pharmacies   map[int64]*entity.Pharmacy
	medicines    map[int64]*entity.Medicine
	reservations map[int64]*entity.Reservation

	nextUserID        int64
	nextPharmacyID    int64
	nextMedicineID    int64
	nextReservationID int64

	holdWindow time.Duration
	bcryptCost int
	backing    Backing
	listener   StockListener
	now        func() time.Time
}

// New creates an empty store. Call Load to restore from the backing.
func New(opts Options) *Store {
	s := &Store{
		holdWindow: opts.HoldWindow,
		bcryptCost: opts.BcryptCost,
		backing:    opts.Backing,
		listener:   opts.Listener,
		now:        opts.Now,
	}
	if s.holdWindow <= 0 {
		s.holdWindow = defaultHoldWindow
	}
	if s.bcryptCost < bcrypt.MinCost || s.bcryptCost > bcrypt.MaxCost {
		s.bcryptCost = bcrypt.DefaultCost
	}
	if s.now == nil {
		s.now = time.Now
	}
	s.reset()
	return s
}

func (s *Store) reset() {
	s.users = make(map[int64]*entity.User)
	s.usernames = make(map[string]int64)
	s.pharmacies = make(map[int64]*entity.Pharmacy)
	s.medicines = make(map[int64]*entity.Medicine)
	s.reservations = make(map[int64]*entity.Reservation)
	s.nextUserID = 1
	s.nextPharmacyID = 1
	s.nextMedicineID = 1
	s.nextReservationID = 1
}

// HoldWindow returns how long a new reservation holds stock.
func (s *Store) HoldWindow() time.Duration {
	return s.holdWindow
}

// Load replaces the store contents with the backing's snapshot. Without a
// backing the store stays empty.
func (s *Store) Load(ctx context.Context) error {
	if s.backing == nil {
		return nil
	}
	snapshot, err := s.backing.Load(ctx)
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}
	s.Restore(snapshot)
	return nil
}

// Restore replaces the store contents with snapshot.
func (s *Store) Restore(snapshot *Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.reset()
	if snapshot == nil {
		return
	}
	for i := range snapshot.Users {
		u := snapshot.Users[i]
		s.users[u.ID] = &u
		s.usernames[u.Username] = u.ID
		s.nextUserID = max(s.nextUserID, u.ID+1)
	}
	for i := range snapshot.Pharmacies {
		p := snapshot.Pharmacies[i]
		s.pharmacies[p.ID] = &p
		s.nextPharmacyID = max(s.nextPharmacyID, p.ID+1)
	}
	for i := range snapshot.Medicines {
		m := snapshot.Medicines[i]
		s.medicines[m.ID] = &m
		s.nextMedicineID = max(s.nextMedicineID, m.ID+1)
	}
	for i := range snapshot.Reservations {
		r := snapshot.Reservations[i]
		s.reservations[r.ID] = &r
		s.nextReservationID = max(s.nextReservationID, r.ID+1)
	}
}

// Snapshot copies every collection, each ordered by id.
func (s *Store) Snapshot() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := &Snapshot{
		Users:        make([]entity.User, 0, len(s.users)),
		Pharmacies:   make([]entity.Pharmacy, 0, len(s.pharmacies)),
		Medicines:    make([]entity.Medicine, 0, len(s.medicines)),
		Reservations: make([]entity.Reservation, 0, len(s.reservations)),
	}
	for _, id := range sortedKeys(s.users) {
		snapshot.Users = append(snapshot.Users, *s.users[id])
	}
	for _, id := range sortedKeys(s.pharmacies) {
		snapshot.Pharmacies = append(snapshot.Pharmacies, *s.pharmacies[id])
	}
	for _, id := range sortedKeys(s.medicines) {
		snapshot.Medicines = append(snapshot.Medicines, *s.medicines[id])
	}
	for _, id := range sortedKeys(s.reservations) {
		snapshot.Reservations = append(snapshot.Reservations, *s.reservations[id])
	}
	return snapshot
}

// Checkpoint writes the current contents to the backing, if any.
func (s *Store) Checkpoint(ctx context.Context) error {
	if s.backing == nil {
		return nil
	}
	if err := s.backing.Save(ctx, s.Snapshot()); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

// Close flushes the store to its backing.
func (s *Store) Close(ctx context.Context) error {
	return s.Checkpoint(ctx)
}

// Stats counts the entities currently held.
func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := Stats{
		Users:        len(s.users),
		Pharmacies:   len(s.pharmacies),
		Medicines:    len(s.medicines),
		Reservations: len(s.reservations),
	}
	for _, r := range s.reservations {
		if r.IsOpen() {
			stats.OpenReservations++
		}
	}
	return stats
}

// Medicines passed to notify must already be copies.
func (s *Store) notify(medicines ...entity.Medicine) {
	if s.listener == nil || len(medicines) == 0 {
		return
	}
	s.listener.StockChanged(context.Background(), medicines)
}

func (s *Store) touchMedicine(m *entity.Medicine, now time.Time) {
	m.Version++
	m.UpdatedAt = now
}

func sortedKeys[V any](m map[int64]V) []int64 {
	keys := make([]int64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
