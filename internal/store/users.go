package store

import (
	"fmt"
	"strings"

	"go-pharmacy-reservation/internal/domain/entity"

	"golang.org/x/crypto/bcrypt"
)

// NewUser carries the fields of an account being created.
// PharmacyID is only meaningful for pharmacists.
type NewUser struct {
	Username   string
	Password   string
	FullName   string
	Email      string
	UserType   entity.UserType
	PharmacyID int64
}

// NewPharmacy carries the fields of a pharmacy submitted at registration.
type NewPharmacy struct {
	Name          string
	Address       string
	ContactNumber string
	Email         string
}

// UserUpdate changes the non-nil fields of a user.
type UserUpdate struct {
	Username   *string
	Password   *string
	FullName   *string
	Email      *string
	UserType   *entity.UserType
	PharmacyID *int64
	IsActive   *bool
}

func (s *Store) hashPassword(password string) (string, error) {
	if password == "" {
		return "", fmt.Errorf("%w: password is required", ErrInvalidInput)
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}

func validateNewUser(in NewUser) error {
	if strings.TrimSpace(in.Username) == "" {
		return fmt.Errorf("%w: username is required", ErrInvalidInput)
	}
	if !in.UserType.Valid() {
		return fmt.Errorf("%w: unknown user type %q", ErrInvalidInput, in.UserType)
	}
	return nil
}

// CreateUser adds an account. Pharmacists must reference an existing
// pharmacy; other roles are detached from any pharmacy.
func (s *Store) CreateUser(in NewUser) (entity.User, error) {
	if err := validateNewUser(in); err != nil {
		return entity.User{}, err
	}
	hashed, err := s.hashPassword(in.Password)
	if err != nil {
		return entity.User{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if in.UserType == entity.UserTypePharmacist {
		if _, ok := s.pharmacies[in.PharmacyID]; !ok {
			return entity.User{}, ErrPharmacyNotFound
		}
	} else {
		in.PharmacyID = entity.NoPharmacy
	}
	return s.insertUserLocked(in, hashed)
}

// RegisterPharmacist creates a PENDING pharmacy and its pharmacist account
// together. Neither is created if the other fails.
func (s *Store) RegisterPharmacist(in NewUser, pharmacy NewPharmacy) (entity.User, entity.Pharmacy, error) {
	in.UserType = entity.UserTypePharmacist
	if err := validateNewUser(in); err != nil {
		return entity.User{}, entity.Pharmacy{}, err
	}
	if strings.TrimSpace(pharmacy.Name) == "" {
		return entity.User{}, entity.Pharmacy{}, fmt.Errorf("%w: pharmacy name is required", ErrInvalidInput)
	}
	hashed, err := s.hashPassword(in.Password)
	if err != nil {
		return entity.User{}, entity.Pharmacy{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.usernames[in.Username]; taken {
		return entity.User{}, entity.Pharmacy{}, ErrDuplicateUsername
	}

	now := s.now()
	p := &entity.Pharmacy{
		ID:            s.nextPharmacyID,
		Name:          pharmacy.Name,
		Address:       pharmacy.Address,
		ContactNumber: pharmacy.ContactNumber,
		Email:         pharmacy.Email,
		Status:        entity.PharmacyStatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	s.pharmacies[p.ID] = p
	s.nextPharmacyID++

	in.PharmacyID = p.ID
	user, err := s.insertUserLocked(in, hashed)
	if err != nil {
		delete(s.pharmacies, p.ID)
		s.nextPharmacyID--
		return entity.User{}, entity.Pharmacy{}, err
	}
	return user, *p, nil
}

func (s *Store) insertUserLocked(in NewUser, hashed string) (entity.User, error) {
	if _, taken := s.usernames[in.Username]; taken {
		return entity.User{}, ErrDuplicateUsername
	}
	now := s.now()
	u := &entity.User{
		ID:         s.nextUserID,
		Username:   in.Username,
		Password:   hashed,
		FullName:   in.FullName,
		Email:      in.Email,
		UserType:   in.UserType,
		PharmacyID: in.PharmacyID,
		IsActive:   true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	s.users[u.ID] = u
	s.usernames[u.Username] = u.ID
	s.nextUserID++
	return *u, nil
}

// Authenticate checks a username and plaintext password pair.
func (s *Store) Authenticate(username, password string) (entity.User, error) {
	s.mu.RLock()
	id, ok := s.usernames[username]
	var u entity.User
	if ok {
		u = *s.users[id]
	}
	s.mu.RUnlock()

	if !ok {
		return entity.User{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		return entity.User{}, ErrInvalidCredentials
	}
	if !u.IsActive {
		return entity.User{}, ErrInactiveUser
	}
	return u, nil
}

// User returns the user with the given id.
func (s *Store) User(id int64) (entity.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return entity.User{}, ErrUserNotFound
	}
	return *u, nil
}

// Users lists every account ordered by id.
func (s *Store) Users() []entity.User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]entity.User, 0, len(s.users))
	for _, id := range sortedKeys(s.users) {
		users = append(users, *s.users[id])
	}
	return users
}

// UpdateUser applies the non-nil fields of update.
func (s *Store) UpdateUser(id int64, update UserUpdate) (entity.User, error) {
	var hashed string
	if update.Password != nil && *update.Password != "" {
		var err error
		if hashed, err = s.hashPassword(*update.Password); err != nil {
			return entity.User{}, err
		}
	}
	if update.UserType != nil && !update.UserType.Valid() {
		return entity.User{}, fmt.Errorf("%w: unknown user type %q", ErrInvalidInput, *update.UserType)
	}
	if update.Username != nil && strings.TrimSpace(*update.Username) == "" {
		return entity.User{}, fmt.Errorf("%w: username is required", ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return entity.User{}, ErrUserNotFound
	}

	next := *u
	if update.Username != nil && *update.Username != u.Username {
		if _, taken := s.usernames[*update.Username]; taken {
			return entity.User{}, ErrDuplicateUsername
		}
		next.Username = *update.Username
	}
	if hashed != "" {
		next.Password = hashed
	}
	if update.FullName != nil {
		next.FullName = *update.FullName
	}
	if update.Email != nil {
		next.Email = *update.Email
	}
	if update.UserType != nil {
		next.UserType = *update.UserType
	}
	if update.PharmacyID != nil {
		next.PharmacyID = *update.PharmacyID
	}
	if update.IsActive != nil {
		next.IsActive = *update.IsActive
	}
	if next.UserType == entity.UserTypePharmacist {
		if _, ok := s.pharmacies[next.PharmacyID]; !ok {
			return entity.User{}, ErrPharmacyNotFound
		}
	} else {
		next.PharmacyID = entity.NoPharmacy
	}
	next.UpdatedAt = s.now()

	if next.Username != u.Username {
		delete(s.usernames, u.Username)
		s.usernames[next.Username] = id
	}
	*u = next
	return next, nil
}

// DeactivateUser soft-deletes an account. Reservations keep referencing it.
func (s *Store) DeactivateUser(id int64) (entity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return entity.User{}, ErrUserNotFound
	}
	if !u.IsActive {
		return entity.User{}, fmt.Errorf("%w: user %d is already inactive", ErrInvalidState, id)
	}
	u.IsActive = false
	u.UpdatedAt = s.now()
	return *u, nil
}
