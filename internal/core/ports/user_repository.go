package ports

import (
	"context"

	"github.com/a5adamaty/booking-platform/internal/core/domain"
)

// ProfileUpdate carries the owner-editable profile fields. Nil pointers mean
// "leave unchanged".
type ProfileUpdate struct {
	Name      *string
	Phone     *string
	Bio       *string
	AvatarURL *string
}

// UserRepository defines persistence operations for user accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	// FindByEmail looks up a user by normalized email.
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
	UpdateProfile(ctx context.Context, id string, upd ProfileUpdate) (*domain.User, error)
	UpdateRole(ctx context.Context, id string, role string) (*domain.User, error)
	Delete(ctx context.Context, id string) error
}
