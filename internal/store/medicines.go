package store

import (
	"fmt"
	"strings"

	"go-pharmacy-reservation/internal/domain/entity"

	"github.com/shopspring/decimal"
)

// NewMedicine carries the fields of a medicine being added to a pharmacy.
type NewMedicine struct {
	BrandName         string
	GenericName       string
	Dosage            string
	DosageForm        string
	Price             decimal.Decimal
	QuantityAvailable int
	Category          string
	Status            entity.MedicineStatus
}

// MedicineUpdate changes the non-nil fields of a medicine. Quantity sets
// the available stock; held stock is never edited directly.
type MedicineUpdate struct {
	BrandName         *string
	GenericName       *string
	Dosage            *string
	DosageForm        *string
	Price             *decimal.Decimal
	QuantityAvailable *int
	Category          *string
	Status            *entity.MedicineStatus
}

// MedicineFilter narrows a medicine listing. Zero values match everything.
// Deleted medicines are never listed.
type MedicineFilter struct {
	PharmacyID   int64
	Query        string
	ApprovedOnly bool
	ActiveOnly   bool
}

// MedicineListing is a medicine joined with its pharmacy's name.
type MedicineListing struct {
	Medicine     entity.Medicine
	PharmacyName string
}

func validatePrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return fmt.Errorf("%w: price must not be negative", ErrInvalidInput)
	}
	return nil
}

func validateStock(quantity int) error {
	if quantity < 0 {
		return fmt.Errorf("%w: stock must not be negative", ErrInvalidQuantity)
	}
	return nil
}

// CreateMedicine adds a medicine to pharmacyID.
func (s *Store) CreateMedicine(pharmacyID int64, in NewMedicine) (entity.Medicine, error) {
	if strings.TrimSpace(in.BrandName) == "" {
		return entity.Medicine{}, fmt.Errorf("%w: brand name is required", ErrInvalidInput)
	}
	if err := validatePrice(in.Price); err != nil {
		return entity.Medicine{}, err
	}
	if err := validateStock(in.QuantityAvailable); err != nil {
		return entity.Medicine{}, err
	}
	if in.Status == "" {
		in.Status = entity.MedicineStatusActive
	}
	if !entity.ValidMedicineStatus(in.Status) {
		return entity.Medicine{}, fmt.Errorf("%w: unknown medicine status %q", ErrInvalidInput, in.Status)
	}

	s.mu.Lock()
	if _, ok := s.pharmacies[pharmacyID]; !ok {
		s.mu.Unlock()
		return entity.Medicine{}, ErrPharmacyNotFound
	}
	now := s.now()
	m := &entity.Medicine{
		ID:                s.nextMedicineID,
		PharmacyID:        pharmacyID,
		BrandName:         in.BrandName,
		GenericName:       in.GenericName,
		Dosage:            in.Dosage,
		DosageForm:        in.DosageForm,
		Price:             in.Price,
		QuantityAvailable: in.QuantityAvailable,
		Category:          in.Category,
		Status:            in.Status,
		Version:           1,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	s.medicines[m.ID] = m
	s.nextMedicineID++
	created := *m
	s.mu.Unlock()

	s.notify(created)
	return created, nil
}

// ownedMedicineLocked resolves a live medicine that belongs to pharmacyID.
func (s *Store) ownedMedicineLocked(pharmacyID, id int64) (*entity.Medicine, error) {
	m, ok := s.medicines[id]
	if !ok || m.IsDeleted() {
		return nil, ErrMedicineNotFound
	}
	if m.PharmacyID != pharmacyID {
		return nil, fmt.Errorf("%w: medicine %d belongs to another pharmacy", ErrNotAuthorized, id)
	}
	return m, nil
}

// UpdateMedicine edits a medicine owned by pharmacyID. Price changes do not
// touch the totals of existing reservations.
func (s *Store) UpdateMedicine(pharmacyID, id int64, update MedicineUpdate) (entity.Medicine, error) {
	if update.Price != nil {
		if err := validatePrice(*update.Price); err != nil {
			return entity.Medicine{}, err
		}
	}
	if update.QuantityAvailable != nil {
		if err := validateStock(*update.QuantityAvailable); err != nil {
			return entity.Medicine{}, err
		}
	}
	if update.Status != nil && !entity.ValidMedicineStatus(*update.Status) {
		return entity.Medicine{}, fmt.Errorf("%w: unknown medicine status %q", ErrInvalidInput, *update.Status)
	}
	if update.BrandName != nil && strings.TrimSpace(*update.BrandName) == "" {
		return entity.Medicine{}, fmt.Errorf("%w: brand name is required", ErrInvalidInput)
	}

	s.mu.Lock()
	m, err := s.ownedMedicineLocked(pharmacyID, id)
	if err != nil {
		s.mu.Unlock()
		return entity.Medicine{}, err
	}
	if update.BrandName != nil {
		m.BrandName = *update.BrandName
	}
	if update.GenericName != nil {
		m.GenericName = *update.GenericName
	}
	if update.Dosage != nil {
		m.Dosage = *update.Dosage
	}
	if update.DosageForm != nil {
		m.DosageForm = *update.DosageForm
	}
	if update.Price != nil {
		m.Price = *update.Price
	}
	if update.QuantityAvailable != nil {
		m.QuantityAvailable = *update.QuantityAvailable
	}
	if update.Category != nil {
		m.Category = *update.Category
	}
	if update.Status != nil {
		m.Status = *update.Status
	}
	s.touchMedicine(m, s.now())
	updated := *m
	s.mu.Unlock()

	s.notify(updated)
	return updated, nil
}

// DeleteMedicine retires a medicine owned by pharmacyID. It is refused
// while open reservations still hold its stock.
func (s *Store) DeleteMedicine(pharmacyID, id int64) (entity.Medicine, error) {
	s.mu.Lock()
	m, err := s.ownedMedicineLocked(pharmacyID, id)
	if err != nil {
		s.mu.Unlock()
		return entity.Medicine{}, err
	}
	if m.QuantityReserved > 0 {
		s.mu.Unlock()
		return entity.Medicine{}, fmt.Errorf("%w: medicine %d has %d units held by open reservations", ErrInvalidState, id, m.QuantityReserved)
	}
	m.Status = entity.MedicineStatusDeleted
	s.touchMedicine(m, s.now())
	deleted := *m
	s.mu.Unlock()

	s.notify(deleted)
	return deleted, nil
}

// Medicine returns the medicine with the given id, deleted or not.
func (s *Store) Medicine(id int64) (entity.Medicine, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.medicines[id]
	if !ok {
		return entity.Medicine{}, ErrMedicineNotFound
	}
	return *m, nil
}

// Medicines lists medicines matching filter ordered by id. Query is a
// case-insensitive substring match over brand and generic names.
func (s *Store) Medicines(filter MedicineFilter) []MedicineListing {
	query := strings.ToLower(strings.TrimSpace(filter.Query))

	s.mu.RLock()
	defer s.mu.RUnlock()

	listings := make([]MedicineListing, 0)
	for _, id := range sortedKeys(s.medicines) {
		m := s.medicines[id]
		if m.IsDeleted() {
			continue
		}
		if filter.PharmacyID != 0 && m.PharmacyID != filter.PharmacyID {
			continue
		}
		if filter.ActiveOnly && !m.IsActive() {
			continue
		}
		p, ok := s.pharmacies[m.PharmacyID]
		if filter.ApprovedOnly && (!ok || !p.IsApproved()) {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(m.BrandName), query) &&
			!strings.Contains(strings.ToLower(m.GenericName), query) {
			continue
		}
		listing := MedicineListing{Medicine: *m}
		if ok {
			listing.PharmacyName = p.Name
		}
		listings = append(listings, listing)
	}
	return listings
}
