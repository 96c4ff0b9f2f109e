package notifier

import (
	"context"
	"sync"
)

// Mock is a mock implementation of the Notifier interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu sync.Mutex

	// Spies
	SendBookingConfirmationFunc func(to Recipient, b Booking) error
	SendBookingStatusUpdateFunc func(to Recipient, b Booking) error
	SendBookingReminderFunc     func(to Recipient, b Booking) error
	NotifyVenueOwnerFunc        func(owner Recipient, b Booking) error

	// Call records
	SendBookingConfirmationCalls []Call
	SendBookingStatusUpdateCalls []Call
	SendBookingReminderCalls     []Call
	NotifyVenueOwnerCalls        []Call
}

// Call holds the arguments of one notification.
type Call struct {
	To      Recipient
	Booking Booking
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{}
}

// Reset clears all call records.
func (m *Mock) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendBookingConfirmationCalls = nil
	m.SendBookingStatusUpdateCalls = nil
	m.SendBookingReminderCalls = nil
	m.NotifyVenueOwnerCalls = nil
}

func (m *Mock) SendBookingConfirmation(_ context.Context, to Recipient, b Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendBookingConfirmationCalls = append(m.SendBookingConfirmationCalls, Call{to, b})
	if m.SendBookingConfirmationFunc != nil {
		return m.SendBookingConfirmationFunc(to, b)
	}
	return nil
}

func (m *Mock) SendBookingStatusUpdate(_ context.Context, to Recipient, b Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendBookingStatusUpdateCalls = append(m.SendBookingStatusUpdateCalls, Call{to, b})
	if m.SendBookingStatusUpdateFunc != nil {
		return m.SendBookingStatusUpdateFunc(to, b)
	}
	return nil
}

func (m *Mock) SendBookingReminder(_ context.Context, to Recipient, b Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendBookingReminderCalls = append(m.SendBookingReminderCalls, Call{to, b})
	if m.SendBookingReminderFunc != nil {
		return m.SendBookingReminderFunc(to, b)
	}
	return nil
}

func (m *Mock) NotifyVenueOwner(_ context.Context, owner Recipient, b Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.NotifyVenueOwnerCalls = append(m.NotifyVenueOwnerCalls, Call{owner, b})
	if m.NotifyVenueOwnerFunc != nil {
		return m.NotifyVenueOwnerFunc(owner, b)
	}
	return nil
}

// Calls returns copies of all call records, keyed by method name.
func (m *Mock) Calls() map[string][]Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	return map[string][]Call{
		"SendBookingConfirmation": append([]Call(nil), m.SendBookingConfirmationCalls...),
		"SendBookingStatusUpdate": append([]Call(nil), m.SendBookingStatusUpdateCalls...),
		"SendBookingReminder":     append([]Call(nil), m.SendBookingReminderCalls...),
		"NotifyVenueOwner":        append([]Call(nil), m.NotifyVenueOwnerCalls...),
	}
}
