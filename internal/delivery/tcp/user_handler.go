package tcp

import (
	"context"

	"go-pharmacy-reservation/internal/converter"
	"go-pharmacy-reservation/internal/delivery/dto"
	"go-pharmacy-reservation/internal/domain/entity"
	"go-pharmacy-reservation/internal/usecase"
	"go-pharmacy-reservation/internal/wire"
	"go-pharmacy-reservation/pkg/validator"

	"github.com/sirupsen/logrus"
)

type UserHandler struct {
	userUsecase usecase.UserUsecase
	validator   *validator.CustomValidator
	log         *logrus.Logger
}

func NewUserHandler(userUsecase usecase.UserUsecase, validator *validator.CustomValidator, log *logrus.Logger) *UserHandler {
	return &UserHandler{
		userUsecase: userUsecase,
		validator:   validator,
		log:         log,
	}
}

func userData(users ...entity.User) *wire.Data {
	return &wire.Data{Users: converter.UsersToRecords(users)}
}

func (h *UserHandler) GetAllUsers(ctx context.Context, sess *Session, params wire.Params) *wire.Response {
	users := h.userUsecase.GetAllUsers(ctx)
	return wire.Success("Users retrieved successfully", userData(users...))
}

func (h *UserHandler) CreateUser(ctx context.Context, sess *Session, params wire.Params) *wire.Response {
	var req dto.CreateUserRequest
	if resp := decode(h.validator, params, &req); resp != nil {
		return resp
	}

	user, err := h.userUsecase.CreateUser(ctx, &req)
	if err != nil {
		return failure(h.log, "create user", err)
	}
	return wire.Success("User created successfully", userData(user))
}

func (h *UserHandler) UpdateUser(ctx context.Context, sess *Session, params wire.Params) *wire.Response {
	var req dto.UpdateUserRequest
	if resp := decode(h.validator, params, &req); resp != nil {
		return resp
	}

	user, err := h.userUsecase.UpdateUser(ctx, &req)
	if err != nil {
		return failure(h.log, "update user", err)
	}
	return wire.Success("User updated successfully", userData(user))
}

func (h *UserHandler) DeleteUser(ctx context.Context, sess *Session, params wire.Params) *wire.Response {
	var req dto.UserIDRequest
	if resp := decode(h.validator, params, &req); resp != nil {
		return resp
	}

	user, err := h.userUsecase.DeleteUser(ctx, req.UserID)
	if err != nil {
		return failure(h.log, "delete user", err)
	}
	return wire.Success("User deleted successfully", userData(user))
}
