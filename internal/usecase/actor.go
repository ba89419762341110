package usecase

import (
	"context"
	"errors"

	"go-pharmacy-reservation/internal/domain/entity"
)

var ErrNotLoggedIn = errors.New("please log in first")

type actorKey struct{}

// WithActor returns a context carrying the authenticated account.
func WithActor(ctx context.Context, user entity.User) context.Context {
	return context.WithValue(ctx, actorKey{}, user)
}

// ActorFromContext returns the authenticated account, if any.
func ActorFromContext(ctx context.Context) (entity.User, bool) {
	user, ok := ctx.Value(actorKey{}).(entity.User)
	return user, ok
}

func actorFrom(ctx context.Context) (entity.User, error) {
	user, ok := ActorFromContext(ctx)
	if !ok {
		return entity.User{}, ErrNotLoggedIn
	}
	return user, nil
}
