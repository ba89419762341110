package tcp

import (
	"errors"
	"fmt"

	"go-pharmacy-reservation/internal/store"
	"go-pharmacy-reservation/internal/usecase"
	"go-pharmacy-reservation/internal/wire"

	"github.com/sirupsen/logrus"
)

const internalErrorMessage = "internal server error"

// domainErrors are reported to the client verbatim. Anything else is
// logged and replaced by a generic message.
var domainErrors = []error{
	usecase.ErrNotLoggedIn,
	usecase.ErrInvalidToken,
	store.ErrNotFound,
	store.ErrNotAuthorized,
	store.ErrInvalidState,
	store.ErrInvalidQuantity,
	store.ErrInvalidInput,
	store.ErrDuplicateUsername,
	store.ErrInvalidCredentials,
	store.ErrInactiveUser,
}

func isDomainError(err error) bool {
	for _, target := range domainErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// failure turns a usecase error into a FAILURE response.
func failure(log *logrus.Logger, action string, err error) *wire.Response {
	if isDomainError(err) {
		return wire.Failure(err.Error())
	}
	log.Warnf("Failed to %s: %+v", action, err)
	return wire.Failure(internalErrorMessage)
}

func notAuthorized(format string, args ...any) *wire.Response {
	return wire.Failure(fmt.Sprintf("%s: %s", store.ErrNotAuthorized, fmt.Sprintf(format, args...)))
}
