package handler

import (
	"github.com/a5adamaty/booking-platform/internal/core/domain"
	"github.com/a5adamaty/booking-platform/internal/core/ports"
)

// --- Request → Service input ---

func toCreateInput(req createBookingRequest, idempotencyKey string) ports.CreateBookingInput {
	return ports.CreateBookingInput{
		ServiceName:     req.ServiceName,
		ServiceCategory: req.ServiceCategory,
		ScheduledDate:   req.ScheduledDate,
		ScheduledTime:   req.ScheduledTime,
		DurationMinutes: req.DurationMinutes,
		Price:           req.Price,
		Notes:           req.Notes,
		ProviderName:    req.ProviderName,
		Location:        req.Location,
		IdempotencyKey:  idempotencyKey,
	}
}

func toUpdateInput(req updateBookingRequest) ports.UpdateBookingInput {
	return ports.UpdateBookingInput{
		ServiceName:     req.ServiceName,
		ServiceCategory: req.ServiceCategory,
		ScheduledDate:   req.ScheduledDate,
		ScheduledTime:   req.ScheduledTime,
		DurationMinutes: req.DurationMinutes,
		Price:           req.Price,
		Notes:           req.Notes,
		ProviderName:    req.ProviderName,
		Location:        req.Location,
	}
}

// --- Domain → HTTP response ---

func toBookingResponse(b *domain.Booking) bookingResponse {
	return bookingResponse{
		ID:              b.ID,
		UserID:          b.UserID,
		ServiceName:     b.ServiceName,
		ServiceCategory: b.ServiceCategory,
		ScheduledDate:   b.ScheduledDate,
		ScheduledTime:   b.ScheduledTime,
		DurationMinutes: b.DurationMinutes,
		Price:           b.Price,
		Notes:           b.Notes,
		ProviderName:    b.ProviderName,
		Location:        b.Location,
		Status:          string(b.Status),
		PaymentStatus:   string(b.PaymentStatus),
		CreatedAt:       b.CreatedAt.UTC(),
		UpdatedAt:       b.UpdatedAt.UTC(),
	}
}

func toMyBookingsResponse(bookings []*domain.Booking) myBookingsResponse {
	items := make([]bookingResponse, len(bookings))
	for i, b := range bookings {
		items[i] = toBookingResponse(b)
	}
	return myBookingsResponse{Count: len(items), Bookings: items}
}

func toAllBookingsResponse(bookings []*domain.BookingWithOwner) allBookingsResponse {
	items := make([]bookingWithOwnerResponse, len(bookings))
	for i, b := range bookings {
		items[i] = bookingWithOwnerResponse{
			bookingResponse: toBookingResponse(&b.Booking),
			Owner: ownerResponse{
				ID:    b.Owner.ID,
				Name:  b.Owner.Name,
				Email: b.Owner.Email,
				Phone: b.Owner.Phone,
			},
		}
	}
	return allBookingsResponse{Count: len(items), Bookings: items}
}
