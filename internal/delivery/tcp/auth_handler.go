package tcp

import (
	"context"

	"go-pharmacy-reservation/internal/converter"
	"go-pharmacy-reservation/internal/delivery/dto"
	"go-pharmacy-reservation/internal/usecase"
	"go-pharmacy-reservation/internal/wire"
	"go-pharmacy-reservation/pkg/validator"

	"github.com/sirupsen/logrus"
)

type AuthHandler struct {
	authUsecase usecase.AuthUsecase
	validator   *validator.CustomValidator
	log         *logrus.Logger
}

func NewAuthHandler(authUsecase usecase.AuthUsecase, validator *validator.CustomValidator, log *logrus.Logger) *AuthHandler {
	return &AuthHandler{
		authUsecase: authUsecase,
		validator:   validator,
		log:         log,
	}
}

// Login binds the connection to the account and returns a session token
// that authenticates later connections.
func (h *AuthHandler) Login(ctx context.Context, sess *Session, params wire.Params) *wire.Response {
	var req dto.LoginRequest
	if resp := decode(h.validator, params, &req); resp != nil {
		return resp
	}

	result, err := h.authUsecase.Login(ctx, &req)
	if err != nil {
		return failure(h.log, "log in", err)
	}
	sess.Bind(result.User.ID)

	return wire.Success("Login successful", &wire.Data{
		Token: result.Token,
		Users: []wire.UserRecord{converter.UserToRecord(result.User)},
	})
}

func (h *AuthHandler) Register(ctx context.Context, sess *Session, params wire.Params) *wire.Response {
	var req dto.RegisterRequest
	if resp := decode(h.validator, params, &req); resp != nil {
		return resp
	}

	result, err := h.authUsecase.Register(ctx, &req)
	if err != nil {
		return failure(h.log, "register user", err)
	}

	data := &wire.Data{Users: []wire.UserRecord{converter.UserToRecord(result.User)}}
	message := "Registration successful"
	if result.Pharmacy != nil {
		data.Pharmacies = []wire.PharmacyRecord{converter.PharmacyToRecord(*result.Pharmacy)}
		message = "Registration successful, pharmacy awaiting approval"
	}
	return wire.Success(message, data)
}
