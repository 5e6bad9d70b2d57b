package ports

import (
	"context"

	"github.com/a5adamaty/booking-platform/internal/core/domain"
)

// UserService defines account management operations beyond auth.
type UserService interface {
	Get(ctx context.Context, id string) (*domain.User, error)
	// List returns every account. Administrator only.
	List(ctx context.Context, actor Actor) ([]*domain.User, error)
	// UpdateProfile applies profile fields. The owning user or an
	// administrator may update; anyone else gets ErrForbidden.
	UpdateProfile(ctx context.Context, actor Actor, id string, upd ProfileUpdate) (*domain.User, error)
	// UpdateRole changes an account's role. Administrator only.
	UpdateRole(ctx context.Context, actor Actor, id string, role string) (*domain.User, error)
	// Delete removes an account. Administrator only.
	Delete(ctx context.Context, actor Actor, id string) error
}
