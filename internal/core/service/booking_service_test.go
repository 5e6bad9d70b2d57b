package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/rs/zerolog"

	"github.com/a5adamaty/booking-platform/internal/core/domain"
	"github.com/a5adamaty/booking-platform/internal/core/ports"
)

type stubBookingRepo struct {
	bookings map[string]*domain.Booking
	owners   *stubUserRepo
	order    []string
	nextID   int
}

func newStubBookingRepo(owners *stubUserRepo) *stubBookingRepo {
	return &stubBookingRepo{bookings: make(map[string]*domain.Booking), owners: owners}
}

func cloneBooking(b *domain.Booking) *domain.Booking {
	clone := *b
	return &clone
}

func (r *stubBookingRepo) Create(_ context.Context, b *domain.Booking) (*domain.Booking, error) {
	r.nextID++
	created := cloneBooking(b)
	created.ID = fmt.Sprintf("bk-%d", r.nextID)
	r.bookings[created.ID] = cloneBooking(created)
	r.order = append(r.order, created.ID)
	return created, nil
}

func (r *stubBookingRepo) FindByID(_ context.Context, id string) (*domain.Booking, error) {
	if b, ok := r.bookings[id]; ok {
		return cloneBooking(b), nil
	}
	return nil, domain.ErrBookingNotFound
}

func (r *stubBookingRepo) FindByUser(_ context.Context, userID string) ([]*domain.Booking, error) {
	var out []*domain.Booking
	for _, id := range r.order {
		if b := r.bookings[id]; b != nil && b.UserID == userID {
			out = append(out, cloneBooking(b))
		}
	}
	// Sort scheduled_date descending, insertion order breaking ties.
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].ScheduledDate > out[j-1].ScheduledDate; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out, nil
}

func (r *stubBookingRepo) ListWithOwners(_ context.Context) ([]*domain.BookingWithOwner, error) {
	var out []*domain.BookingWithOwner
	for _, id := range r.order {
		b := r.bookings[id]
		if b == nil {
			continue
		}
		item := &domain.BookingWithOwner{Booking: *cloneBooking(b)}
		if u, ok := r.owners.users[b.UserID]; ok {
			item.Owner = domain.OwnerSummary{ID: u.ID, Name: u.Name, Email: u.Email, Phone: u.Phone}
		}
		out = append(out, item)
	}
	return out, nil
}

func (r *stubBookingRepo) Update(_ context.Context, b *domain.Booking) (*domain.Booking, error) {
	if _, ok := r.bookings[b.ID]; !ok {
		return nil, domain.ErrBookingNotFound
	}
	r.bookings[b.ID] = cloneBooking(b)
	return cloneBooking(b), nil
}

func (r *stubBookingRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.bookings[id]; !ok {
		return domain.ErrBookingNotFound
	}
	delete(r.bookings, id)
	return nil
}

type stubIdemStore struct {
	keys map[string]string
}

func newStubIdemStore() *stubIdemStore {
	return &stubIdemStore{keys: make(map[string]string)}
}

func (s *stubIdemStore) Lookup(_ context.Context, ownerID, key string) (string, error) {
	return s.keys[ownerID+":"+key], nil
}

func (s *stubIdemStore) Remember(_ context.Context, ownerID, key, bookingID string) error {
	s.keys[ownerID+":"+key] = bookingID
	return nil
}

// newBookingFixture wires a booking service with one standard owner, one
// unrelated standard user, and one admin.
func newBookingFixture(t *testing.T) (*BookingService, *stubBookingRepo, ports.Actor, ports.Actor, ports.Actor) {
	t.Helper()
	users := newStubUserRepo()
	owner := &domain.User{Email: "owner@x.com", Role: domain.RoleStandard}
	other := &domain.User{Email: "other@x.com", Role: domain.RoleStandard}
	admin := &domain.User{Email: "admin@x.com", Role: domain.RoleAdmin}
	ownerCreated, _ := users.Create(context.Background(), owner)
	otherCreated, _ := users.Create(context.Background(), other)
	adminCreated, _ := users.Create(context.Background(), admin)

	repo := newStubBookingRepo(users)
	svc := NewBookingService(repo, users, newStubIdemStore(), zerolog.Nop())

	return svc, repo,
		ports.Actor{UserID: ownerCreated.ID, Role: domain.RoleStandard},
		ports.Actor{UserID: otherCreated.ID, Role: domain.RoleStandard},
		ports.Actor{UserID: adminCreated.ID, Role: domain.RoleAdmin}
}

func floatPtr(f float64) *float64 { return &f }

func validCreateInput() ports.CreateBookingInput {
	return ports.CreateBookingInput{
		ServiceName:     "Cleaning",
		ServiceCategory: "cleaning",
		ScheduledDate:   "2026-01-10",
		ScheduledTime:   "10:00",
		Price:           floatPtr(150),
	}
}

func TestBookingService_Create_ForcesPendingAndOwner(t *testing.T) {
	svc, _, owner, _, _ := newBookingFixture(t)

	b, err := svc.Create(context.Background(), owner, validCreateInput())
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if b.Status != domain.StatusPending {
		t.Fatalf("expected pending, got %s", b.Status)
	}
	if b.UserID != owner.UserID {
		t.Fatalf("expected owner %s, got %s", owner.UserID, b.UserID)
	}
	if b.PaymentStatus != domain.PaymentUnpaid {
		t.Fatalf("expected unpaid, got %s", b.PaymentStatus)
	}
	if b.DurationMinutes != 60 {
		t.Fatalf("expected default duration 60, got %d", b.DurationMinutes)
	}
	if b.Location != "remote" {
		t.Fatalf("expected default location remote, got %q", b.Location)
	}
	if b.ID == "" {
		t.Fatalf("expected generated id")
	}
}

func TestBookingService_Create_MissingFields(t *testing.T) {
	svc, repo, owner, _, _ := newBookingFixture(t)

	_, err := svc.Create(context.Background(), owner, ports.CreateBookingInput{Price: floatPtr(-1)})
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(ve.Fields) != 5 {
		t.Fatalf("expected all 5 required fields reported, got %v", ve.Fields)
	}
	if len(repo.bookings) != 0 {
		t.Fatalf("validation failure must not persist anything")
	}
}

func TestBookingService_Create_PriceMustBePresent(t *testing.T) {
	svc, _, owner, _, _ := newBookingFixture(t)

	input := validCreateInput()
	input.Price = nil
	_, err := svc.Create(context.Background(), owner, input)
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(ve.Fields) != 1 || ve.Fields[0] != "price" {
		t.Fatalf("expected price reported missing, got %v", ve.Fields)
	}

	// Zero is a legitimate price, distinct from an absent field.
	input.Price = floatPtr(0)
	b, err := svc.Create(context.Background(), owner, input)
	if err != nil {
		t.Fatalf("zero price should be accepted: %v", err)
	}
	if b.Price != 0 {
		t.Fatalf("expected price 0, got %v", b.Price)
	}
}

func TestBookingService_Create_UnknownCategory(t *testing.T) {
	svc, _, owner, _, _ := newBookingFixture(t)

	input := validCreateInput()
	input.ServiceCategory = "plumbing"
	if _, err := svc.Create(context.Background(), owner, input); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestBookingService_Create_IdempotentReplay(t *testing.T) {
	svc, repo, owner, _, _ := newBookingFixture(t)

	input := validCreateInput()
	input.IdempotencyKey = "key-1"

	first, err := svc.Create(context.Background(), owner, input)
	if err != nil {
		t.Fatalf("first create failed: %v", err)
	}
	second, err := svc.Create(context.Background(), owner, input)
	if err != nil {
		t.Fatalf("replay failed: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("replay created a new booking: %s vs %s", second.ID, first.ID)
	}
	if len(repo.bookings) != 1 {
		t.Fatalf("expected a single persisted booking, got %d", len(repo.bookings))
	}
}

func TestBookingService_Create_IdempotencyKeyScopedPerUser(t *testing.T) {
	svc, repo, owner, other, _ := newBookingFixture(t)

	input := validCreateInput()
	input.IdempotencyKey = "shared-key"

	first, err := svc.Create(context.Background(), owner, input)
	if err != nil {
		t.Fatalf("first create failed: %v", err)
	}

	// Another user reusing the same key must get their own booking, never a
	// replay of someone else's record.
	second, err := svc.Create(context.Background(), other, input)
	if err != nil {
		t.Fatalf("second user's create failed: %v", err)
	}
	if second.ID == first.ID {
		t.Fatalf("key collision handed user %s a booking owned by %s", other.UserID, first.UserID)
	}
	if second.UserID != other.UserID {
		t.Fatalf("expected owner %s, got %s", other.UserID, second.UserID)
	}
	if len(repo.bookings) != 2 {
		t.Fatalf("expected two distinct bookings, got %d", len(repo.bookings))
	}

	// Each user's own replay still returns their original record.
	replay, err := svc.Create(context.Background(), other, input)
	if err != nil {
		t.Fatalf("replay failed: %v", err)
	}
	if replay.ID != second.ID {
		t.Fatalf("replay returned %s, want %s", replay.ID, second.ID)
	}
}

func TestBookingService_Get_NotFoundBeforeForbidden(t *testing.T) {
	svc, _, owner, other, _ := newBookingFixture(t)

	// A nonexistent id yields not-found even for a caller who would not be
	// allowed to see it.
	if _, err := svc.Get(context.Background(), other, "bk-999"); !errors.Is(err, domain.ErrBookingNotFound) {
		t.Fatalf("expected ErrBookingNotFound, got %v", err)
	}

	b, err := svc.Create(context.Background(), owner, validCreateInput())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if _, err := svc.Get(context.Background(), other, b.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for stranger, got %v", err)
	}
}

func TestBookingService_Get_OwnerAndAdmin(t *testing.T) {
	svc, _, owner, _, admin := newBookingFixture(t)

	b, _ := svc.Create(context.Background(), owner, validCreateInput())

	if _, err := svc.Get(context.Background(), owner, b.ID); err != nil {
		t.Fatalf("owner should read own booking: %v", err)
	}
	if _, err := svc.Get(context.Background(), admin, b.ID); err != nil {
		t.Fatalf("admin should read any booking: %v", err)
	}
}

func TestBookingService_Update_BusinessFieldsOnly(t *testing.T) {
	svc, _, owner, _, _ := newBookingFixture(t)

	b, _ := svc.Create(context.Background(), owner, validCreateInput())

	notes := "bring supplies"
	price := 200.0
	updated, err := svc.Update(context.Background(), owner, b.ID, ports.UpdateBookingInput{
		Notes: &notes,
		Price: &price,
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Notes != notes || updated.Price != price {
		t.Fatalf("fields not applied: %+v", updated)
	}
	if updated.Status != domain.StatusPending {
		t.Fatalf("update must not touch status, got %s", updated.Status)
	}
	if updated.UserID != owner.UserID {
		t.Fatalf("update must not change owner")
	}
}

func TestBookingService_Update_ForbiddenForStranger(t *testing.T) {
	svc, _, owner, other, _ := newBookingFixture(t)

	b, _ := svc.Create(context.Background(), owner, validCreateInput())

	notes := "x"
	if _, err := svc.Update(context.Background(), other, b.ID, ports.UpdateBookingInput{Notes: &notes}); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestBookingService_Cancel_IsIdempotentTerminal(t *testing.T) {
	svc, _, owner, _, _ := newBookingFixture(t)

	b, _ := svc.Create(context.Background(), owner, validCreateInput())

	cancelled, err := svc.Cancel(context.Background(), owner, b.ID)
	if err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if cancelled.Status != domain.StatusCancelled {
		t.Fatalf("expected cancelled, got %s", cancelled.Status)
	}

	again, err := svc.Cancel(context.Background(), owner, b.ID)
	if err != nil {
		t.Fatalf("second cancel should not error: %v", err)
	}
	if again.Status != domain.StatusCancelled {
		t.Fatalf("expected cancelled to stick, got %s", again.Status)
	}
}

func TestBookingService_Cancel_AllowedFromCompleted(t *testing.T) {
	svc, _, owner, _, admin := newBookingFixture(t)

	b, _ := svc.Create(context.Background(), owner, validCreateInput())
	if _, err := svc.UpdateStatus(context.Background(), admin, b.ID, domain.StatusConfirmed); err != nil {
		t.Fatalf("confirm failed: %v", err)
	}
	if _, err := svc.UpdateStatus(context.Background(), admin, b.ID, domain.StatusCompleted); err != nil {
		t.Fatalf("complete failed: %v", err)
	}

	// Cancel is unconditional: unlike the admin status path, it is not bound
	// by the transition table.
	cancelled, err := svc.Cancel(context.Background(), owner, b.ID)
	if err != nil {
		t.Fatalf("cancel of completed booking failed: %v", err)
	}
	if cancelled.Status != domain.StatusCancelled {
		t.Fatalf("expected cancelled, got %s", cancelled.Status)
	}
}

func TestBookingService_UpdateStatus_AdminOnly(t *testing.T) {
	svc, _, owner, _, admin := newBookingFixture(t)

	b, _ := svc.Create(context.Background(), owner, validCreateInput())

	if _, err := svc.UpdateStatus(context.Background(), owner, b.ID, domain.StatusConfirmed); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for owner, got %v", err)
	}

	confirmed, err := svc.UpdateStatus(context.Background(), admin, b.ID, domain.StatusConfirmed)
	if err != nil {
		t.Fatalf("admin confirm failed: %v", err)
	}
	if confirmed.Status != domain.StatusConfirmed {
		t.Fatalf("expected confirmed, got %s", confirmed.Status)
	}

	completed, err := svc.UpdateStatus(context.Background(), admin, b.ID, domain.StatusCompleted)
	if err != nil {
		t.Fatalf("admin complete failed: %v", err)
	}
	if completed.Status != domain.StatusCompleted {
		t.Fatalf("expected completed, got %s", completed.Status)
	}
}

func TestBookingService_UpdateStatus_RejectsInvalidTransition(t *testing.T) {
	svc, _, owner, _, admin := newBookingFixture(t)

	b, _ := svc.Create(context.Background(), owner, validCreateInput())
	if _, err := svc.Cancel(context.Background(), owner, b.ID); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}

	// cancelled is terminal: even an admin cannot move it back.
	if _, err := svc.UpdateStatus(context.Background(), admin, b.ID, domain.StatusConfirmed); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
	if _, err := svc.UpdateStatus(context.Background(), admin, b.ID, domain.StatusCompleted); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestBookingService_ListAll_RequiresAdmin(t *testing.T) {
	svc, _, owner, other, admin := newBookingFixture(t)

	if _, err := svc.Create(context.Background(), owner, validCreateInput()); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := svc.Create(context.Background(), other, validCreateInput()); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if _, err := svc.ListAll(context.Background(), owner); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for standard user, got %v", err)
	}

	all, err := svc.ListAll(context.Background(), admin)
	if err != nil {
		t.Fatalf("admin list failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected full cross-owner set, got %d", len(all))
	}
	for _, item := range all {
		if item.Owner.Email == "" {
			t.Fatalf("expected owner summary joined in: %+v", item)
		}
	}
}

func TestBookingService_ListMine_ScopedAndSorted(t *testing.T) {
	svc, _, owner, other, _ := newBookingFixture(t)

	early := validCreateInput()
	early.ScheduledDate = "2026-01-05"
	late := validCreateInput()
	late.ScheduledDate = "2026-02-01"

	if _, err := svc.Create(context.Background(), owner, early); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := svc.Create(context.Background(), owner, late); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := svc.Create(context.Background(), other, validCreateInput()); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	mine, err := svc.ListMine(context.Background(), owner)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(mine) != 2 {
		t.Fatalf("expected 2 own bookings, got %d", len(mine))
	}
	if mine[0].ScheduledDate != "2026-02-01" {
		t.Fatalf("expected scheduled_date descending, got %s first", mine[0].ScheduledDate)
	}
}

func TestBookingService_Delete_AdminOnly(t *testing.T) {
	svc, repo, owner, _, admin := newBookingFixture(t)

	b, _ := svc.Create(context.Background(), owner, validCreateInput())

	if err := svc.Delete(context.Background(), owner, b.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for owner, got %v", err)
	}
	if err := svc.Delete(context.Background(), admin, b.ID); err != nil {
		t.Fatalf("admin delete failed: %v", err)
	}
	if len(repo.bookings) != 0 {
		t.Fatalf("booking should be gone")
	}
	if err := svc.Delete(context.Background(), admin, b.ID); !errors.Is(err, domain.ErrBookingNotFound) {
		t.Fatalf("expected ErrBookingNotFound on second delete, got %v", err)
	}
}
