package middleware

import (
	"net/http"

	"go-pharmacy-reservation/internal/domain/entity"
	"go-pharmacy-reservation/internal/usecase"
	"go-pharmacy-reservation/pkg/response"
)

// RequireRole creates a middleware that checks if the user has any of the required roles
// The user is read from context (set by AuthMiddleware)
func RequireRole(allowed ...entity.UserType) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := usecase.ActorFromContext(r.Context())
			if !ok {
				response.Unauthorized(w, "User information not found")
				return
			}

			for _, userType := range allowed {
				if actor.UserType == userType {
					next.ServeHTTP(w, r)
					return
				}
			}
			response.Forbidden(w, "You don't have permission to access this resource")
		})
	}
}

// RequireAdmin is a convenience middleware for admin-only endpoints
func RequireAdmin(next http.Handler) http.Handler {
	return RequireRole(entity.UserTypeAdmin)(next)
}
