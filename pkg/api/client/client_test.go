package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

// fakeAPI is a minimal in-memory stand-in for the server. It tracks how many
// times each route was hit so tests can assert on re-sync behavior.
type fakeAPI struct {
	mu        http.ServeMux
	mine      []Booking
	all       []BookingWithOwner
	admin     bool
	failNext  atomic.Bool
	syncCalls atomic.Int32
}

func newFakeAPI(admin bool) *fakeAPI {
	f := &fakeAPI{admin: admin}
	f.mu.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		role := "standard"
		if f.admin {
			role = "admin"
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"token": "tok-1",
			"user":  User{ID: "user-1", Email: "a@x.com", Role: role},
		})
	})
	f.mu.HandleFunc("GET /api/bookings/my-bookings", func(w http.ResponseWriter, r *http.Request) {
		f.syncCalls.Add(1)
		writeJSON(w, http.StatusOK, map[string]any{"count": len(f.mine), "bookings": f.mine})
	})
	f.mu.HandleFunc("GET /api/bookings", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"count": len(f.all), "bookings": f.all})
	})
	f.mu.HandleFunc("POST /api/bookings", func(w http.ResponseWriter, r *http.Request) {
		if f.failNext.Swap(false) {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": "invalid status transition"})
			return
		}
		var input CreateBookingInput
		_ = json.NewDecoder(r.Body).Decode(&input)
		b := Booking{ID: "bk-new", UserID: "user-1", ServiceName: input.ServiceName, Status: "pending"}
		f.mine = append(f.mine, b)
		writeJSON(w, http.StatusCreated, b)
	})
	f.mu.HandleFunc("PATCH /api/bookings/{id}/cancel", func(w http.ResponseWriter, r *http.Request) {
		if f.failNext.Swap(false) {
			writeJSON(w, http.StatusForbidden, map[string]string{"error": "forbidden"})
			return
		}
		id := r.PathValue("id")
		for i := range f.mine {
			if f.mine[i].ID == id {
				f.mine[i].Status = "cancelled"
				writeJSON(w, http.StatusOK, f.mine[i])
				return
			}
		}
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "booking not found"})
	})
	return f
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func newTestClient(t *testing.T, f *fakeAPI) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(&f.mu)
	t.Cleanup(srv.Close)
	c, err := New(srv.URL)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c, srv
}

func TestClient_LoginEstablishesSession(t *testing.T) {
	f := newFakeAPI(false)
	c, _ := newTestClient(t, f)

	user, err := c.Login(context.Background(), "a@x.com", "secret1")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if user.ID != "user-1" {
		t.Fatalf("unexpected user: %+v", user)
	}
	if c.Token() != "tok-1" {
		t.Fatalf("expected token stored, got %q", c.Token())
	}

	c.Logout()
	if c.Token() != "" || c.User() != nil {
		t.Fatalf("logout should clear session")
	}
	if len(c.Mine()) != 0 {
		t.Fatalf("logout should clear collections")
	}
}

func TestClient_MutationSuccessRefreshesCollections(t *testing.T) {
	f := newFakeAPI(false)
	c, _ := newTestClient(t, f)
	if _, err := c.Login(context.Background(), "a@x.com", "secret1"); err != nil {
		t.Fatalf("login failed: %v", err)
	}

	created, err := c.CreateBooking(context.Background(), CreateBookingInput{
		ServiceName:     "Cleaning",
		ServiceCategory: "cleaning",
		ScheduledDate:   "2026-01-10",
		ScheduledTime:   "10:00",
		Price:           150,
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if created.Status != "pending" {
		t.Fatalf("expected pending, got %s", created.Status)
	}

	mine := c.Mine()
	if len(mine) != 1 || mine[0].ID != "bk-new" {
		t.Fatalf("collection not refreshed after create: %+v", mine)
	}
	if f.syncCalls.Load() != 1 {
		t.Fatalf("expected exactly one sync fetch, got %d", f.syncCalls.Load())
	}
}

func TestClient_MutationFailureLeavesStateUntouched(t *testing.T) {
	f := newFakeAPI(false)
	f.mine = []Booking{{ID: "bk-1", ServiceName: "Massage", Status: "confirmed"}}
	c, _ := newTestClient(t, f)
	if _, err := c.Login(context.Background(), "a@x.com", "secret1"); err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if err := c.Sync(context.Background()); err != nil {
		t.Fatalf("sync failed: %v", err)
	}
	before := c.Mine()

	f.failNext.Store(true)
	_, err := c.CreateBooking(context.Background(), CreateBookingInput{ServiceName: "x"})

	var apiErr APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Status != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", apiErr.Status)
	}
	if apiErr.Message != "invalid status transition" {
		t.Fatalf("error body not extracted: %q", apiErr.Message)
	}

	after := c.Mine()
	if len(after) != len(before) || after[0].ID != before[0].ID || after[0].Status != before[0].Status {
		t.Fatalf("failed mutation must not touch local state: before=%+v after=%+v", before, after)
	}
}

func TestClient_CancelRefreshesStatus(t *testing.T) {
	f := newFakeAPI(false)
	f.mine = []Booking{{ID: "bk-1", Status: "pending"}}
	c, _ := newTestClient(t, f)
	if _, err := c.Login(context.Background(), "a@x.com", "secret1"); err != nil {
		t.Fatalf("login failed: %v", err)
	}

	cancelled, err := c.CancelBooking(context.Background(), "bk-1")
	if err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if cancelled.Status != "cancelled" {
		t.Fatalf("expected cancelled, got %s", cancelled.Status)
	}

	mine := c.Mine()
	if len(mine) != 1 || mine[0].Status != "cancelled" {
		t.Fatalf("collection should reflect cancellation: %+v", mine)
	}
}

func TestClient_AdminSyncFetchesAllBookings(t *testing.T) {
	f := newFakeAPI(true)
	f.all = []BookingWithOwner{{
		Booking: Booking{ID: "bk-1", UserID: "user-2", Status: "pending"},
		Owner:   User{ID: "user-2", Email: "b@x.com"},
	}}
	c, _ := newTestClient(t, f)
	if _, err := c.Login(context.Background(), "a@x.com", "secret1"); err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if err := c.Sync(context.Background()); err != nil {
		t.Fatalf("sync failed: %v", err)
	}

	all := c.All()
	if len(all) != 1 || all[0].Owner.Email != "b@x.com" {
		t.Fatalf("admin collection missing owner data: %+v", all)
	}
}

func TestClient_StandardSyncSkipsAdminCollection(t *testing.T) {
	f := newFakeAPI(false)
	f.all = []BookingWithOwner{{Booking: Booking{ID: "bk-1"}}}
	c, _ := newTestClient(t, f)
	if _, err := c.Login(context.Background(), "a@x.com", "secret1"); err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if err := c.Sync(context.Background()); err != nil {
		t.Fatalf("sync failed: %v", err)
	}
	if len(c.All()) != 0 {
		t.Fatalf("standard user must not hold the admin collection")
	}
}
