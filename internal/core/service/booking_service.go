package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/a5adamaty/booking-platform/internal/api/metrics"
	"github.com/a5adamaty/booking-platform/internal/core/domain"
	"github.com/a5adamaty/booking-platform/internal/core/ports"
)

const defaultDurationMinutes = 60

// IdempotencyStore remembers which Idempotency-Key created which booking so a
// replayed create returns the original record instead of inserting twice.
// Keys are scoped per owner: the same key from two users names two entries.
type IdempotencyStore interface {
	Lookup(ctx context.Context, ownerID, key string) (string, error)
	Remember(ctx context.Context, ownerID, key, bookingID string) error
}

// BookingService enforces the booking state machine and ownership rules.
type BookingService struct {
	repo  ports.BookingRepository
	users ports.UserRepository
	idem  IdempotencyStore
	log   zerolog.Logger
}

func NewBookingService(repo ports.BookingRepository, users ports.UserRepository, idem IdempotencyStore, log zerolog.Logger) *BookingService {
	return &BookingService{repo: repo, users: users, idem: idem, log: log}
}

// Create persists a new booking owned by the actor. Status always starts at
// pending and the owner is always the caller, regardless of any supplied
// value. Validation runs before any persistence attempt.
func (s *BookingService) Create(ctx context.Context, actor ports.Actor, input ports.CreateBookingInput) (*domain.Booking, error) {
	if err := validateCreate(input); err != nil {
		return nil, err
	}

	if s.idem != nil && input.IdempotencyKey != "" {
		if id, err := s.idem.Lookup(ctx, actor.UserID, input.IdempotencyKey); err == nil && id != "" {
			existing, err := s.repo.FindByID(ctx, id)
			// The store is scoped per owner, but the replayed record must
			// still belong to the caller before it is handed back.
			if err == nil && existing.UserID == actor.UserID {
				s.log.Info().Str("idempotency_key", input.IdempotencyKey).Str("booking_id", id).Msg("idempotent replay")
				return existing, nil
			}
		}
	}

	// The caller identity comes from a verified token, but the account may
	// have been deleted since issuance.
	if _, err := s.users.FindByID(ctx, actor.UserID); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrForbidden
		}
		return nil, err
	}

	duration := input.DurationMinutes
	if duration <= 0 {
		duration = defaultDurationMinutes
	}
	location := input.Location
	if location == "" {
		location = "remote"
	}

	now := time.Now().UTC()
	booking := &domain.Booking{
		UserID:          actor.UserID,
		ServiceName:     input.ServiceName,
		ServiceCategory: input.ServiceCategory,
		ScheduledDate:   input.ScheduledDate,
		ScheduledTime:   input.ScheduledTime,
		DurationMinutes: duration,
		Price:           *input.Price,
		Notes:           input.Notes,
		ProviderName:    input.ProviderName,
		Location:        location,
		Status:          domain.StatusPending,
		PaymentStatus:   domain.PaymentUnpaid,
		IdempotencyKey:  input.IdempotencyKey,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	created, err := s.repo.Create(ctx, booking)
	if err != nil {
		s.log.Error().Err(err).Str("user_id", actor.UserID).Msg("failed to create booking")
		return nil, err
	}

	if s.idem != nil && input.IdempotencyKey != "" {
		if err := s.idem.Remember(ctx, actor.UserID, input.IdempotencyKey, created.ID); err != nil {
			s.log.Warn().Err(err).Str("idempotency_key", input.IdempotencyKey).Msg("failed to record idempotency key")
		}
	}

	metrics.BookingsCreatedTotal.WithLabelValues(created.ServiceCategory).Inc()
	s.log.Info().Str("booking_id", created.ID).Str("user_id", actor.UserID).Msg("booking created")
	return created, nil
}

// ListMine returns the actor's own bookings, scheduled_date descending.
func (s *BookingService) ListMine(ctx context.Context, actor ports.Actor) ([]*domain.Booking, error) {
	return s.repo.FindByUser(ctx, actor.UserID)
}

// ListAll returns every booking with owner contact data joined in.
func (s *BookingService) ListAll(ctx context.Context, actor ports.Actor) ([]*domain.BookingWithOwner, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	return s.repo.ListWithOwners(ctx)
}

// Get returns one booking under the existence-then-ownership gate.
func (s *BookingService) Get(ctx context.Context, actor ports.Actor, id string) (*domain.Booking, error) {
	return s.authorize(ctx, actor, id)
}

// Update applies business fields. Status and payment status are not
// updatable through this path.
func (s *BookingService) Update(ctx context.Context, actor ports.Actor, id string, input ports.UpdateBookingInput) (*domain.Booking, error) {
	booking, err := s.authorize(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if input.ServiceCategory != nil && !domain.IsServiceCategory(*input.ServiceCategory) {
		return nil, &domain.ValidationError{Fields: []string{"service_category"}}
	}
	if input.Price != nil && *input.Price < 0 {
		return nil, &domain.ValidationError{Fields: []string{"price"}}
	}

	applyUpdate(booking, input)
	booking.UpdatedAt = time.Now().UTC()

	updated, err := s.repo.Update(ctx, booking)
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("booking_id", id).Msg("booking updated")
	return updated, nil
}

// UpdateStatus moves the booking through the state machine. Administrator
// only; the transition table rejects everything out of a terminal state.
func (s *BookingService) UpdateStatus(ctx context.Context, actor ports.Actor, id string, status domain.BookingStatus) (*domain.Booking, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !status.IsValid() {
		return nil, &domain.ValidationError{Fields: []string{"status"}}
	}
	if !booking.Status.CanTransitionTo(status) {
		return nil, fmt.Errorf("%w (from %s to %s)", domain.ErrInvalidTransition, booking.Status, status)
	}

	from := booking.Status
	booking.Status = status
	booking.UpdatedAt = time.Now().UTC()

	updated, err := s.repo.Update(ctx, booking)
	if err != nil {
		return nil, err
	}

	metrics.StatusTransitionsTotal.WithLabelValues(string(from), string(status)).Inc()
	s.log.Info().Str("booking_id", id).Str("from", string(from)).Str("to", string(status)).Msg("status changed")
	return updated, nil
}

// Cancel sets the booking to cancelled under the owner-or-admin gate.
// cancelled is terminal, and cancelling again is an error-free no-op.
func (s *BookingService) Cancel(ctx context.Context, actor ports.Actor, id string) (*domain.Booking, error) {
	booking, err := s.authorize(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if booking.Status == domain.StatusCancelled {
		return booking, nil
	}

	from := booking.Status
	booking.Status = domain.StatusCancelled
	booking.UpdatedAt = time.Now().UTC()

	updated, err := s.repo.Update(ctx, booking)
	if err != nil {
		return nil, err
	}

	metrics.StatusTransitionsTotal.WithLabelValues(string(from), string(domain.StatusCancelled)).Inc()
	s.log.Info().Str("booking_id", id).Msg("booking cancelled")
	return updated, nil
}

// Delete permanently removes the booking.
func (s *BookingService) Delete(ctx context.Context, actor ports.Actor, id string) error {
	if !actor.IsAdmin() {
		return domain.ErrForbidden
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info().Str("booking_id", id).Msg("booking deleted")
	return nil
}

// authorize loads the booking and checks access. Existence is confirmed
// before ownership, so an unknown id reports ErrBookingNotFound even to a
// caller who would not have been allowed to see it.
func (s *BookingService) authorize(ctx context.Context, actor ports.Actor, id string) (*domain.Booking, error) {
	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking.UserID != actor.UserID && !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	return booking, nil
}

func validateCreate(input ports.CreateBookingInput) error {
	var missing []string
	if input.ServiceName == "" {
		missing = append(missing, "service_name")
	}
	if input.ServiceCategory == "" {
		missing = append(missing, "service_category")
	}
	if input.ScheduledDate == "" {
		missing = append(missing, "scheduled_date")
	}
	if input.ScheduledTime == "" {
		missing = append(missing, "scheduled_time")
	}
	if input.Price == nil || *input.Price < 0 {
		missing = append(missing, "price")
	}
	if len(missing) > 0 {
		return &domain.ValidationError{Fields: missing}
	}
	if !domain.IsServiceCategory(input.ServiceCategory) {
		return &domain.ValidationError{Fields: []string{"service_category"}}
	}
	return nil
}

func applyUpdate(b *domain.Booking, input ports.UpdateBookingInput) {
	if input.ServiceName != nil {
		b.ServiceName = *input.ServiceName
	}
	if input.ServiceCategory != nil {
		b.ServiceCategory = *input.ServiceCategory
	}
	if input.ScheduledDate != nil {
		b.ScheduledDate = *input.ScheduledDate
	}
	if input.ScheduledTime != nil {
		b.ScheduledTime = *input.ScheduledTime
	}
	if input.DurationMinutes != nil && *input.DurationMinutes > 0 {
		b.DurationMinutes = *input.DurationMinutes
	}
	if input.Price != nil {
		b.Price = *input.Price
	}
	if input.Notes != nil {
		b.Notes = *input.Notes
	}
	if input.ProviderName != nil {
		b.ProviderName = *input.ProviderName
	}
	if input.Location != nil {
		b.Location = *input.Location
	}
}
