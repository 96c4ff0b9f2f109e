package booking

import (
	"context"
	"sync"

	"github.com/mauv0809/courtside/internal/auth"
)

// MockService is a mock implementation of BookingService for testing.
// Unset spies return zero values.
type MockService struct {
	mu sync.Mutex

	CreateBookingFunc        func(ctx context.Context, actor auth.Actor, in CreateBookingInput) (*Booking, error)
	TransitionBookingFunc    func(ctx context.Context, actor auth.Actor, bookingID string, action Status) (*Booking, error)
	GetBookingFunc           func(ctx context.Context, actor auth.Actor, bookingID string) (*Booking, error)
	ListBookingsForUserFunc  func(ctx context.Context, actor auth.Actor) ([]Booking, error)
	ListBookingsForVenueFunc func(ctx context.Context, actor auth.Actor, venueID string) ([]Booking, error)
	BlockSlotFunc            func(ctx context.Context, actor auth.Actor, courtID, date, start, end, reason string) (*BlockedSlot, error)
	UnblockSlotFunc          func(ctx context.Context, actor auth.Actor, slotID string) error
	ListBlockedSlotsFunc     func(ctx context.Context, courtID, date string) ([]BlockedSlot, error)
	SendRemindersFunc        func(ctx context.Context, date string) (int, error)

	CreateBookingCalls     []CreateBookingInput
	TransitionBookingCalls []string
	SendRemindersCalls     []string
}

var _ BookingService = (*MockService)(nil)

func NewMock() *MockService {
	return &MockService{}
}

func (m *MockService) CreateBooking(ctx context.Context, actor auth.Actor, in CreateBookingInput) (*Booking, error) {
	m.mu.Lock()
	m.CreateBookingCalls = append(m.CreateBookingCalls, in)
	m.mu.Unlock()
	if m.CreateBookingFunc != nil {
		return m.CreateBookingFunc(ctx, actor, in)
	}
	return nil, nil
}

func (m *MockService) TransitionBooking(ctx context.Context, actor auth.Actor, bookingID string, action Status) (*Booking, error) {
	m.mu.Lock()
	m.TransitionBookingCalls = append(m.TransitionBookingCalls, bookingID)
	m.mu.Unlock()
	if m.TransitionBookingFunc != nil {
		return m.TransitionBookingFunc(ctx, actor, bookingID, action)
	}
	return nil, nil
}

func (m *MockService) GetBooking(ctx context.Context, actor auth.Actor, bookingID string) (*Booking, error) {
	if m.GetBookingFunc != nil {
		return m.GetBookingFunc(ctx, actor, bookingID)
	}
	return nil, nil
}

func (m *MockService) ListBookingsForUser(ctx context.Context, actor auth.Actor) ([]Booking, error) {
	if m.ListBookingsForUserFunc != nil {
		return m.ListBookingsForUserFunc(ctx, actor)
	}
	return []Booking{}, nil
}

func (m *MockService) ListBookingsForVenue(ctx context.Context, actor auth.Actor, venueID string) ([]Booking, error) {
	if m.ListBookingsForVenueFunc != nil {
		return m.ListBookingsForVenueFunc(ctx, actor, venueID)
	}
	return []Booking{}, nil
}

func (m *MockService) BlockSlot(ctx context.Context, actor auth.Actor, courtID, date, start, end, reason string) (*BlockedSlot, error) {
	if m.BlockSlotFunc != nil {
		return m.BlockSlotFunc(ctx, actor, courtID, date, start, end, reason)
	}
	return nil, nil
}

func (m *MockService) UnblockSlot(ctx context.Context, actor auth.Actor, slotID string) error {
	if m.UnblockSlotFunc != nil {
		return m.UnblockSlotFunc(ctx, actor, slotID)
	}
	return nil
}

func (m *MockService) ListBlockedSlots(ctx context.Context, courtID, date string) ([]BlockedSlot, error) {
	if m.ListBlockedSlotsFunc != nil {
		return m.ListBlockedSlotsFunc(ctx, courtID, date)
	}
	return []BlockedSlot{}, nil
}

func (m *MockService) SendReminders(ctx context.Context, date string) (int, error) {
	m.mu.Lock()
	m.SendRemindersCalls = append(m.SendRemindersCalls, date)
	m.mu.Unlock()
	if m.SendRemindersFunc != nil {
		return m.SendRemindersFunc(ctx, date)
	}
	return 0, nil
}

// RemindersRequested returns the dates SendReminders was called with.
func (m *MockService) RemindersRequested() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.SendRemindersCalls...)
}
