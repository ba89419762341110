package middleware

import (
	"errors"
	"net/http"
	"strings"

	"go-pharmacy-reservation/internal/store"
	"go-pharmacy-reservation/internal/usecase"
	"go-pharmacy-reservation/pkg/response"

	"github.com/sirupsen/logrus"
)

// AuthMiddleware accepts the session tokens issued by LOGIN as bearer
// tokens, so operators can reuse an account they already hold.
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

func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			response.Unauthorized(w, "Authorization header is required")
			return
		}

		// Extract token from "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(w, "Invalid authorization header format")
			return
		}

		user, err := m.authUsecase.ResolveToken(r.Context(), parts[1])
		if err != nil {
			switch {
			case errors.Is(err, usecase.ErrInvalidToken):
				response.Unauthorized(w, "Invalid or expired token")
			case errors.Is(err, store.ErrInactiveUser):
				response.Unauthorized(w, "User account is inactive")
			default:
				m.log.Warnf("Failed to resolve bearer token: %+v", err)
				response.InternalServerError(w, "Failed to validate token")
			}
			return
		}

		next.ServeHTTP(w, r.WithContext(usecase.WithActor(r.Context(), user)))
	})
}
