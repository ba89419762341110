package usecase

import (
	"context"
	"errors"

	"go-pharmacy-reservation/internal/delivery/dto"
	"go-pharmacy-reservation/internal/domain/entity"
	"go-pharmacy-reservation/internal/service"
	"go-pharmacy-reservation/internal/store"
	"go-pharmacy-reservation/pkg/jwt"

	"github.com/sirupsen/logrus"
)

var ErrInvalidToken = errors.New("invalid or expired session token")

type LoginResult struct {
	User  entity.User
	Token string
}

// RegisterResult holds the new account and, for pharmacists, the pending
// pharmacy created with it.
type RegisterResult struct {
	User     entity.User
	Pharmacy *entity.Pharmacy
}

type AuthUsecase interface {
	Login(ctx context.Context, req *dto.LoginRequest) (*LoginResult, error)
	Register(ctx context.Context, req *dto.RegisterRequest) (*RegisterResult, error)
	ResolveToken(ctx context.Context, token string) (entity.User, error)
	CurrentUser(ctx context.Context, userID int64) (entity.User, error)
}

type authUsecase struct {
	store      *store.Store
	log        *logrus.Logger
	audit      service.AuditService
	jwtService *jwt.JWTService
}

func NewAuthUsecase(st *store.Store, log *logrus.Logger, audit service.AuditService, jwtService *jwt.JWTService) AuthUsecase {
	return &authUsecase{
		store:      st,
		log:        log,
		audit:      audit,
		jwtService: jwtService,
	}
}

func (u *authUsecase) Login(ctx context.Context, req *dto.LoginRequest) (*LoginResult, error) {
	user, err := u.store.Authenticate(req.Username, req.Password)
	if err != nil {
		u.log.Debugf("Login refused for %q: %v", req.Username, err)
		return nil, err
	}

	token, _, err := u.jwtService.GenerateSessionToken(user.ID, user.Username, string(user.UserType))
	if err != nil {
		u.log.Warnf("Failed to sign session token: %+v", err)
		return nil, err
	}

	u.audit.Record(ctx, service.ActorID(user.ID), entity.AuditActionUserLogin, "user", user.ID, nil)
	u.log.Infof("User logged in: id=%d, type=%s", user.ID, user.UserType)
	return &LoginResult{User: user, Token: token}, nil
}

func (u *authUsecase) Register(ctx context.Context, req *dto.RegisterRequest) (*RegisterResult, error) {
	in := store.NewUser{
		Username: req.Username,
		Password: req.Password,
		FullName: req.FullName,
		Email:    req.Email,
		UserType: entity.UserType(req.UserType),
	}

	if in.UserType == entity.UserTypePharmacist {
		user, pharmacy, err := u.store.RegisterPharmacist(in, store.NewPharmacy{
			Name:          req.PharmacyName,
			Address:       req.PharmacyAddress,
			ContactNumber: req.PharmacyContact,
			Email:         req.PharmacyEmail,
		})
		if err != nil {
			return nil, err
		}
		u.audit.Record(ctx, service.ActorID(user.ID), entity.AuditActionUserRegister, "user", user.ID, user)
		u.log.Infof("Pharmacist registered: id=%d, pharmacy=%d pending review", user.ID, pharmacy.ID)
		return &RegisterResult{User: user, Pharmacy: &pharmacy}, nil
	}

	in.UserType = entity.UserTypeResident
	user, err := u.store.CreateUser(in)
	if err != nil {
		return nil, err
	}
	u.audit.Record(ctx, service.ActorID(user.ID), entity.AuditActionUserRegister, "user", user.ID, user)
	u.log.Infof("Resident registered: id=%d", user.ID)
	return &RegisterResult{User: user}, nil
}

// ResolveToken validates a session token and returns the account it was
// issued to, as it is now.
func (u *authUsecase) ResolveToken(ctx context.Context, token string) (entity.User, error) {
	claims, err := u.jwtService.ValidateToken(token)
	if err != nil {
		u.log.Debugf("Rejected session token: %v", err)
		return entity.User{}, ErrInvalidToken
	}
	user, err := u.CurrentUser(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return entity.User{}, ErrInvalidToken
		}
		return entity.User{}, err
	}
	return user, nil
}

// CurrentUser reloads an authenticated account so role and pharmacy
// changes take effect on the next request.
func (u *authUsecase) CurrentUser(ctx context.Context, userID int64) (entity.User, error) {
	user, err := u.store.User(userID)
	if err != nil {
		return entity.User{}, err
	}
	if !user.IsActive {
		return entity.User{}, store.ErrInactiveUser
	}
	return user, nil
}
