package usecase

import (
	"context"
	"fmt"

	"go-pharmacy-reservation/internal/delivery/dto"
	"go-pharmacy-reservation/internal/domain/entity"
	"go-pharmacy-reservation/internal/service"
	"go-pharmacy-reservation/internal/store"

	"github.com/sirupsen/logrus"
)

var (
	ErrSelfDelete      = fmt.Errorf("%w: an account cannot delete itself", store.ErrNotAuthorized)
	ErrForeignProfile  = fmt.Errorf("%w: you may only update your own profile", store.ErrNotAuthorized)
	ErrPrivilegedField = fmt.Errorf("%w: only administrators may change role, pharmacy or activity", store.ErrNotAuthorized)
)

type UserUsecase interface {
	GetAllUsers(ctx context.Context) []entity.User
	CreateUser(ctx context.Context, req *dto.CreateUserRequest) (entity.User, error)
	UpdateUser(ctx context.Context, req *dto.UpdateUserRequest) (entity.User, error)
	DeleteUser(ctx context.Context, userID int64) (entity.User, error)
	SeedAdmin(ctx context.Context, username, password string) (bool, error)
}

type userUsecase struct {
	store *store.Store
	log   *logrus.Logger
	audit service.AuditService
}

func NewUserUsecase(st *store.Store, log *logrus.Logger, audit service.AuditService) UserUsecase {
	return &userUsecase{
		store: st,
		log:   log,
		audit: audit,
	}
}

func (u *userUsecase) GetAllUsers(ctx context.Context) []entity.User {
	return u.store.Users()
}

func (u *userUsecase) CreateUser(ctx context.Context, req *dto.CreateUserRequest) (entity.User, error) {
	actor, err := actorFrom(ctx)
	if err != nil {
		return entity.User{}, err
	}

	user, err := u.store.CreateUser(store.NewUser{
		Username:   req.Username,
		Password:   req.Password,
		FullName:   req.FullName,
		Email:      req.Email,
		UserType:   entity.UserType(req.UserType),
		PharmacyID: req.PharmacyID,
	})
	if err != nil {
		return entity.User{}, err
	}

	u.audit.Record(ctx, service.ActorID(actor.ID), entity.AuditActionUserCreate, "user", user.ID, user)
	u.log.Infof("User created: id=%d, type=%s, by=%d", user.ID, user.UserType, actor.ID)
	return user, nil
}

// UpdateUser edits the caller's own profile, or any account when the
// caller is an administrator.
func (u *userUsecase) UpdateUser(ctx context.Context, req *dto.UpdateUserRequest) (entity.User, error) {
	actor, err := actorFrom(ctx)
	if err != nil {
		return entity.User{}, err
	}

	targetID := req.UserID
	if targetID == 0 {
		targetID = actor.ID
	}
	if !actor.IsAdmin() {
		if targetID != actor.ID {
			return entity.User{}, ErrForeignProfile
		}
		if req.UserType != nil || req.PharmacyID != nil || req.IsActive != nil {
			return entity.User{}, ErrPrivilegedField
		}
	}
	if targetID == actor.ID && req.IsActive != nil && !*req.IsActive {
		return entity.User{}, ErrSelfDelete
	}

	update := store.UserUpdate{
		Username:   req.Username,
		Password:   req.Password,
		FullName:   req.FullName,
		Email:      req.Email,
		PharmacyID: req.PharmacyID,
		IsActive:   req.IsActive,
	}
	if req.UserType != nil {
		userType := entity.UserType(*req.UserType)
		update.UserType = &userType
	}

	user, err := u.store.UpdateUser(targetID, update)
	if err != nil {
		return entity.User{}, err
	}

	u.audit.Record(ctx, service.ActorID(actor.ID), entity.AuditActionUserUpdate, "user", user.ID, user)
	u.log.Infof("User updated: id=%d, by=%d", user.ID, actor.ID)
	return user, nil
}

// DeleteUser deactivates an account. Its reservations are kept.
func (u *userUsecase) DeleteUser(ctx context.Context, userID int64) (entity.User, error) {
	actor, err := actorFrom(ctx)
	if err != nil {
		return entity.User{}, err
	}
	if userID == actor.ID {
		return entity.User{}, ErrSelfDelete
	}

	user, err := u.store.DeactivateUser(userID)
	if err != nil {
		return entity.User{}, err
	}

	u.audit.Record(ctx, service.ActorID(actor.ID), entity.AuditActionUserDelete, "user", user.ID, nil)
	u.log.Infof("User deactivated: id=%d, by=%d", user.ID, actor.ID)
	return user, nil
}

// SeedAdmin creates an administrator when the store holds no accounts. It
// reports whether one was created.
func (u *userUsecase) SeedAdmin(ctx context.Context, username, password string) (bool, error) {
	if u.store.Stats().Users > 0 {
		return false, nil
	}
	if username == "" || password == "" {
		u.log.Warn("Store is empty and no seed administrator is configured")
		return false, nil
	}

	user, err := u.store.CreateUser(store.NewUser{
		Username: username,
		Password: password,
		FullName: "Administrator",
		UserType: entity.UserTypeAdmin,
	})
	if err != nil {
		return false, fmt.Errorf("seed administrator: %w", err)
	}

	u.audit.Record(ctx, nil, entity.AuditActionUserCreate, "user", user.ID, user)
	u.log.Infof("Seeded administrator %q", user.Username)
	return true, nil
}
