package booking

import (
	"context"

	"github.com/mauv0809/courtside/internal/auth"
)

// BookingService owns the booking lifecycle and the blocked slots that guard it.
type BookingService interface {
	CreateBooking(ctx context.Context, actor auth.Actor, in CreateBookingInput) (*Booking, error)
	TransitionBooking(ctx context.Context, actor auth.Actor, bookingID string, action Status) (*Booking, error)
	GetBooking(ctx context.Context, actor auth.Actor, bookingID string) (*Booking, error)
	ListBookingsForUser(ctx context.Context, actor auth.Actor) ([]Booking, error)
	ListBookingsForVenue(ctx context.Context, actor auth.Actor, venueID string) ([]Booking, error)

	BlockSlot(ctx context.Context, actor auth.Actor, courtID, date, start, end, reason string) (*BlockedSlot, error)
	UnblockSlot(ctx context.Context, actor auth.Actor, slotID string) error
	ListBlockedSlots(ctx context.Context, courtID, date string) ([]BlockedSlot, error)

	// SendReminders notifies players of confirmed bookings on date and
	// returns how many reminders were delivered.
	SendReminders(ctx context.Context, date string) (int, error)
}
