package domain

import "testing"

func TestBookingStatus_CanTransitionTo(t *testing.T) {
	cases := []struct {
		from, to BookingStatus
		want     bool
	}{
		{StatusPending, StatusConfirmed, true},
		{StatusPending, StatusCancelled, true},
		{StatusPending, StatusCompleted, false},
		{StatusConfirmed, StatusCompleted, true},
		{StatusConfirmed, StatusCancelled, true},
		{StatusConfirmed, StatusPending, false},
		{StatusCompleted, StatusPending, false},
		{StatusCompleted, StatusCancelled, false},
		{StatusCancelled, StatusPending, false},
		{StatusCancelled, StatusConfirmed, false},
		{StatusCancelled, StatusCancelled, false},
	}

	for _, tc := range cases {
		if got := tc.from.CanTransitionTo(tc.to); got != tc.want {
			t.Errorf("%s -> %s: got %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestBookingStatus_IsValid(t *testing.T) {
	for _, s := range []BookingStatus{StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled} {
		if !s.IsValid() {
			t.Errorf("%s should be valid", s)
		}
	}
	if BookingStatus("shipped").IsValid() {
		t.Errorf("unknown status should not be valid")
	}
}

func TestNormalizeEmail(t *testing.T) {
	if got := NormalizeEmail(" Foo@Bar.com "); got != "foo@bar.com" {
		t.Errorf("got %q", got)
	}
}

func TestIsServiceCategory(t *testing.T) {
	if !IsServiceCategory("cleaning") {
		t.Errorf("cleaning should be a known category")
	}
	if IsServiceCategory("plumbing") {
		t.Errorf("plumbing is not a known category")
	}
}
