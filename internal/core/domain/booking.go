package domain

import "time"

// BookingStatus represents the lifecycle state of a booking.
type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusConfirmed BookingStatus = "confirmed"
	StatusCompleted BookingStatus = "completed"
	StatusCancelled BookingStatus = "cancelled"
)

// validTransitions defines the allowed state machine transitions.
// cancelled and completed are terminal: no transitions out.
var validTransitions = map[BookingStatus][]BookingStatus{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCompleted, StatusCancelled},
}

// CanTransitionTo reports whether a transition from the current status to next is valid.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsValid reports whether s is one of the known booking statuses.
func (s BookingStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// PaymentStatus tracks whether a booking has been paid for. No payment
// integration drives it; the field is carried for the storefront UI.
type PaymentStatus string

const (
	PaymentUnpaid PaymentStatus = "unpaid"
	PaymentPaid   PaymentStatus = "paid"
	PaymentFailed PaymentStatus = "failed"
)

// ServiceCategories is the fixed set of accepted service categories.
var ServiceCategories = []string{"cleaning", "consultation", "counseling", "massage", "training"}

// IsServiceCategory reports whether v is a known service category.
func IsServiceCategory(v string) bool {
	for _, c := range ServiceCategories {
		if c == v {
			return true
		}
	}
	return false
}

// Booking is the core aggregate root.
type Booking struct {
	ID              string        `json:"id" bson:"_id,omitempty"`
	UserID          string        `json:"user_id" bson:"user_id"`
	ServiceName     string        `json:"service_name" bson:"service_name"`
	ServiceCategory string        `json:"service_category" bson:"service_category"`
	ScheduledDate   string        `json:"scheduled_date" bson:"scheduled_date"`
	ScheduledTime   string        `json:"scheduled_time" bson:"scheduled_time"`
	DurationMinutes int           `json:"duration_minutes" bson:"duration_minutes"`
	Price           float64       `json:"price" bson:"price"`
	Notes           string        `json:"notes,omitempty" bson:"notes,omitempty"`
	ProviderName    string        `json:"provider_name,omitempty" bson:"provider_name,omitempty"`
	Location        string        `json:"location" bson:"location"`
	Status          BookingStatus `json:"status" bson:"status"`
	PaymentStatus   PaymentStatus `json:"payment_status" bson:"payment_status"`
	IdempotencyKey  string        `json:"-" bson:"idempotency_key,omitempty"`
	CreatedAt       time.Time     `json:"created_at" bson:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at" bson:"updated_at"`
}

// BookingWithOwner pairs a booking with its owner's contact summary for
// administrative listings.
type BookingWithOwner struct {
	Booking
	Owner OwnerSummary `json:"user"`
}

// OwnerSummary is the denormalized owner view joined into admin listings.
type OwnerSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}
