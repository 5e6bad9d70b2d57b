package ports

import (
	"context"

	"github.com/a5adamaty/booking-platform/internal/core/domain"
)

// Actor identifies the authenticated caller of a service operation. It is
// built once per request from the verified token claims and passed explicitly
// down the call chain.
type Actor struct {
	UserID string
	Role   string
}

// IsAdmin reports whether the actor holds the administrator role.
func (a Actor) IsAdmin() bool {
	return a.Role == domain.RoleAdmin
}

// RegisterInput carries the public registration fields. Role is never caller
// supplied: every registration creates a standard account.
type RegisterInput struct {
	Name     string
	Email    string
	Phone    string
	Password string
}

// AuthService implements registration and login.
type AuthService interface {
	// Register creates a standard account and returns it with a signed
	// session token so the credential authenticates immediately.
	Register(ctx context.Context, input RegisterInput) (string, *domain.User, error)
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
}
