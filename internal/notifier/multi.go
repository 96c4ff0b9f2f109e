package notifier

import (
	"context"
	"errors"
)

// Multi fans every notification out to all channels and joins their errors.
type Multi []Notifier

var _ Notifier = Multi(nil)

func (m Multi) each(fn func(n Notifier) error) error {
	var errs []error
	for _, n := range m {
		if n == nil {
			continue
		}
		if err := fn(n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m Multi) SendBookingConfirmation(ctx context.Context, to Recipient, b Booking) error {
	return m.each(func(n Notifier) error { return n.SendBookingConfirmation(ctx, to, b) })
}

func (m Multi) SendBookingStatusUpdate(ctx context.Context, to Recipient, b Booking) error {
	return m.each(func(n Notifier) error { return n.SendBookingStatusUpdate(ctx, to, b) })
}

func (m Multi) SendBookingReminder(ctx context.Context, to Recipient, b Booking) error {
	return m.each(func(n Notifier) error { return n.SendBookingReminder(ctx, to, b) })
}

func (m Multi) NotifyVenueOwner(ctx context.Context, owner Recipient, b Booking) error {
	return m.each(func(n Notifier) error { return n.NotifyVenueOwner(ctx, owner, b) })
}
