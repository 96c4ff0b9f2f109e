package notifier

import "context"

// Notifier delivers booking notifications. Callers treat it as fire-and-forget:
// errors are logged and counted by the caller, never surfaced to API clients.
type Notifier interface {
	// SendBookingConfirmation tells the player their booking request was received.
	SendBookingConfirmation(ctx context.Context, to Recipient, b Booking) error
	// SendBookingStatusUpdate tells the player the owner confirmed or cancelled.
	SendBookingStatusUpdate(ctx context.Context, to Recipient, b Booking) error
	// SendBookingReminder is sent the day before a confirmed booking.
	SendBookingReminder(ctx context.Context, to Recipient, b Booking) error
	// NotifyVenueOwner is the real-time hook for the owner of the booked court.
	NotifyVenueOwner(ctx context.Context, owner Recipient, b Booking) error
}
