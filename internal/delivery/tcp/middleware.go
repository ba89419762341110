package tcp

import (
	"context"
	"strings"

	"go-pharmacy-reservation/internal/domain/entity"
	"go-pharmacy-reservation/internal/usecase"
	"go-pharmacy-reservation/internal/wire"

	"github.com/sirupsen/logrus"
)

// Middleware wraps a handler.
type Middleware func(HandlerFunc) HandlerFunc

type AuthMiddleware struct {
	authUsecase usecase.AuthUsecase
	log         *logrus.Logger
}

func NewAuthMiddleware(authUsecase usecase.AuthUsecase, log *logrus.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		authUsecase: authUsecase,
		log:         log,
	}
}

// Authenticate resolves the caller from a token parameter, falling back
// to the account bound to the connection. A valid token rebinds the
// connection. The account is reloaded on every request so deactivation
// and role changes apply immediately.
func (m *AuthMiddleware) Authenticate(next HandlerFunc) HandlerFunc {
	return func(ctx context.Context, sess *Session, params wire.Params) *wire.Response {
		var (
			user entity.User
			err  error
		)
		if token := params.Get(wire.ParamToken); token != "" {
			user, err = m.authUsecase.ResolveToken(ctx, token)
			if err != nil {
				return failure(m.log, "resolve session token", err)
			}
			sess.Bind(user.ID)
		} else if userID, ok := sess.UserID(); ok {
			user, err = m.authUsecase.CurrentUser(ctx, userID)
			if err != nil {
				sess.Clear()
				return failure(m.log, "load session user", err)
			}
		} else {
			return wire.Failure(usecase.ErrNotLoggedIn.Error())
		}
		return next(usecase.WithActor(ctx, user), sess, params)
	}
}

// RequireRole admits only actors of the given user types. It must run
// after Authenticate.
func RequireRole(userTypes ...entity.UserType) Middleware {
	names := make([]string, len(userTypes))
	for i, t := range userTypes {
		names[i] = string(t)
	}
	allowed := strings.Join(names, " or ")

	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, sess *Session, params wire.Params) *wire.Response {
			actor, ok := usecase.ActorFromContext(ctx)
			if !ok {
				return wire.Failure(usecase.ErrNotLoggedIn.Error())
			}
			for _, t := range userTypes {
				if actor.UserType == t {
					return next(ctx, sess, params)
				}
			}
			return notAuthorized("this action requires %s", allowed)
		}
	}
}

func RequireAdmin(next HandlerFunc) HandlerFunc {
	return RequireRole(entity.UserTypeAdmin)(next)
}

func RequirePharmacist(next HandlerFunc) HandlerFunc {
	return RequireRole(entity.UserTypePharmacist)(next)
}

func RequireResident(next HandlerFunc) HandlerFunc {
	return RequireRole(entity.UserTypeResident)(next)
}
