package handler

import "time"

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Request types ---

type createBookingRequest struct {
	ServiceName     string   `json:"service_name"     validate:"required"`
	ServiceCategory string   `json:"service_category" validate:"required,oneof=cleaning consultation counseling massage training"`
	ScheduledDate   string   `json:"scheduled_date"   validate:"required"`
	ScheduledTime   string   `json:"scheduled_time"   validate:"required"`
	DurationMinutes int      `json:"duration_minutes" validate:"omitempty,gte=0"`
	Price           *float64 `json:"price"            validate:"required,gte=0"`
	Notes           string   `json:"notes"`
	ProviderName    string   `json:"provider_name"`
	Location        string   `json:"location"`
}

// updateBookingRequest covers the owner-editable business fields. Absent
// fields are left unchanged. Status is deliberately not accepted here.
type updateBookingRequest struct {
	ServiceName     *string  `json:"service_name"`
	ServiceCategory *string  `json:"service_category" validate:"omitempty,oneof=cleaning consultation counseling massage training"`
	ScheduledDate   *string  `json:"scheduled_date"`
	ScheduledTime   *string  `json:"scheduled_time"`
	DurationMinutes *int     `json:"duration_minutes" validate:"omitempty,gte=0"`
	Price           *float64 `json:"price"            validate:"omitempty,gte=0"`
	Notes           *string  `json:"notes"`
	ProviderName    *string  `json:"provider_name"`
	Location        *string  `json:"location"`
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending confirmed completed cancelled"`
}

// --- Response types ---
// These are intentionally separate from domain types so the JSON contract is
// not coupled to internal changes.

type bookingResponse struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	ServiceName     string    `json:"service_name"`
	ServiceCategory string    `json:"service_category"`
	ScheduledDate   string    `json:"scheduled_date"`
	ScheduledTime   string    `json:"scheduled_time"`
	DurationMinutes int       `json:"duration_minutes"`
	Price           float64   `json:"price"`
	Notes           string    `json:"notes,omitempty"`
	ProviderName    string    `json:"provider_name,omitempty"`
	Location        string    `json:"location"`
	Status          string    `json:"status"`
	PaymentStatus   string    `json:"payment_status"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type ownerResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type bookingWithOwnerResponse struct {
	bookingResponse
	Owner ownerResponse `json:"user"`
}

type myBookingsResponse struct {
	Count    int               `json:"count"`
	Bookings []bookingResponse `json:"bookings"`
}

type allBookingsResponse struct {
	Count    int                        `json:"count"`
	Bookings []bookingWithOwnerResponse `json:"bookings"`
}

type deletedResponse struct {
	Message string `json:"message"`
}
