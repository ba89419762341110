package store

import (
	"fmt"

	"go-pharmacy-reservation/internal/domain/entity"
)

// Pharmacy returns the pharmacy with the given id.
func (s *Store) Pharmacy(id int64) (entity.Pharmacy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.pharmacies[id]
	if !ok {
		return entity.Pharmacy{}, ErrPharmacyNotFound
	}
	return *p, nil
}

// Pharmacies lists every pharmacy ordered by id.
func (s *Store) Pharmacies() []entity.Pharmacy {
	return s.listPharmacies(func(*entity.Pharmacy) bool { return true })
}

// ApprovedPharmacies lists the pharmacies residents may browse.
func (s *Store) ApprovedPharmacies() []entity.Pharmacy {
	return s.listPharmacies((*entity.Pharmacy).IsApproved)
}

func (s *Store) listPharmacies(keep func(*entity.Pharmacy) bool) []entity.Pharmacy {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pharmacies := make([]entity.Pharmacy, 0, len(s.pharmacies))
	for _, id := range sortedKeys(s.pharmacies) {
		if p := s.pharmacies[id]; keep(p) {
			pharmacies = append(pharmacies, *p)
		}
	}
	return pharmacies
}

// SetPharmacyStatus moves a PENDING pharmacy to APPROVED or REJECTED.
// Reviewed pharmacies accept no further change.
func (s *Store) SetPharmacyStatus(id int64, target entity.PharmacyStatus) (entity.Pharmacy, error) {
	if target != entity.PharmacyStatusApproved && target != entity.PharmacyStatusRejected {
		return entity.Pharmacy{}, fmt.Errorf("%w: unknown pharmacy status %q", ErrInvalidInput, target)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.pharmacies[id]
	if !ok {
		return entity.Pharmacy{}, ErrPharmacyNotFound
	}
	if !p.IsPending() {
		return entity.Pharmacy{}, fmt.Errorf("%w: pharmacy %d is %s, cannot move to %s", ErrInvalidState, id, p.Status, target)
	}
	p.Status = target
	p.UpdatedAt = s.now()
	return *p, nil
}
