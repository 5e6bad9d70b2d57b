package ports

import (
	"context"

	"github.com/a5adamaty/booking-platform/internal/core/domain"
)

// BookingRepository defines persistence operations for bookings.
type BookingRepository interface {
	Create(ctx context.Context, b *domain.Booking) (*domain.Booking, error)
	FindByID(ctx context.Context, id string) (*domain.Booking, error)
	// FindByUser returns all bookings owned by userID, scheduled_date
	// descending (insertion order breaks ties).
	FindByUser(ctx context.Context, userID string) ([]*domain.Booking, error)
	// ListWithOwners returns every booking with its owner's contact summary
	// joined in. Bookings whose owner record has been deleted carry a
	// zero-valued summary.
	ListWithOwners(ctx context.Context) ([]*domain.BookingWithOwner, error)
	Update(ctx context.Context, b *domain.Booking) (*domain.Booking, error)
	Delete(ctx context.Context, id string) error
}
