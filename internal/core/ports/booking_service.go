package ports

import (
	"context"

	"github.com/a5adamaty/booking-platform/internal/core/domain"
)

// CreateBookingInput carries all data needed to create a booking. The owner
// and initial status are never taken from the caller: the service forces
// UserID to the acting user and status to pending.
type CreateBookingInput struct {
	ServiceName     string
	ServiceCategory string
	ScheduledDate   string
	ScheduledTime   string
	DurationMinutes int
	// Price must be present. A nil pointer is a missing field; zero is a
	// legitimate price.
	Price *float64
	Notes string
	ProviderName    string
	Location        string
	IdempotencyKey  string
}

// UpdateBookingInput carries the business fields an owner may change after
// creation. Nil pointers mean "leave unchanged". Status and payment status
// are deliberately absent: status moves only through UpdateStatus and Cancel.
type UpdateBookingInput struct {
	ServiceName     *string
	ServiceCategory *string
	ScheduledDate   *string
	ScheduledTime   *string
	DurationMinutes *int
	Price           *float64
	Notes           *string
	ProviderName    *string
	Location        *string
}

// BookingService enforces the booking state machine and ownership rules.
type BookingService interface {
	Create(ctx context.Context, actor Actor, input CreateBookingInput) (*domain.Booking, error)
	// ListMine returns the actor's own bookings, scheduled_date descending.
	ListMine(ctx context.Context, actor Actor) ([]*domain.Booking, error)
	// ListAll returns every booking with owner contact data. Administrator only.
	ListAll(ctx context.Context, actor Actor) ([]*domain.BookingWithOwner, error)
	// Get returns one booking. ErrBookingNotFound when the id is unknown;
	// ErrForbidden when the actor is neither owner nor administrator. The
	// existence check always runs first, so the two are distinguishable.
	Get(ctx context.Context, actor Actor, id string) (*domain.Booking, error)
	// Update applies business fields under the same existence/ownership gate
	// as Get.
	Update(ctx context.Context, actor Actor, id string, input UpdateBookingInput) (*domain.Booking, error)
	// UpdateStatus moves the booking through the state machine.
	// Administrator only; invalid transitions fail with ErrInvalidTransition.
	UpdateStatus(ctx context.Context, actor Actor, id string, status domain.BookingStatus) (*domain.Booking, error)
	// Cancel sets the booking to cancelled. Owner or administrator.
	// Cancelling an already cancelled booking is an error-free no-op.
	Cancel(ctx context.Context, actor Actor, id string) (*domain.Booking, error)
	// Delete permanently removes the booking. Administrator only.
	Delete(ctx context.Context, actor Actor, id string) error
}
