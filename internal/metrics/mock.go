package metrics

import "sync"

// Mock is a mock implementation of the Metrics interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu                 sync.Mutex
	bookingsCreated    int
	bookingConflicts   int
	bookingTransitions map[string]int
	blockedSlots       map[string]int
	joinRequests       map[string]int
	notifSent          map[string]int
	notifFailed        map[string]int
	eventsPublished    map[string]int
	eventsFailed       map[string]int
	requestDurations   map[string][]float64
	remindersSent      int
	startupTime        float64
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{
		bookingTransitions: make(map[string]int),
		blockedSlots:       make(map[string]int),
		joinRequests:       make(map[string]int),
		notifSent:          make(map[string]int),
		notifFailed:        make(map[string]int),
		eventsPublished:    make(map[string]int),
		eventsFailed:       make(map[string]int),
		requestDurations:   make(map[string][]float64),
	}
}

func (m *Mock) IncBookingsCreated() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bookingsCreated++
}

func (m *Mock) IncBookingConflicts() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bookingConflicts++
}

func (m *Mock) IncBookingTransitions(status string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bookingTransitions[status]++
}

func (m *Mock) IncBlockedSlots(source string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blockedSlots[source]++
}

func (m *Mock) IncJoinRequests(outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.joinRequests[outcome]++
}

func (m *Mock) IncNotifSent(channel string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notifSent[channel]++
}

func (m *Mock) IncNotifFailed(channel string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notifFailed[channel]++
}

func (m *Mock) IncEventsPublished(event string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.eventsPublished[event]++
}

func (m *Mock) IncEventsFailed(event string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.eventsFailed[event]++
}

func (m *Mock) ObserveRequestDuration(route string, seconds float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestDurations[route] = append(m.requestDurations[route], seconds)
}

func (m *Mock) IncRemindersSent(count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.remindersSent += count
}

func (m *Mock) SetStartupTime(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.startupTime = duration
}

// BookingsCreated returns the number of times IncBookingsCreated was called.
func (m *Mock) BookingsCreated() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.bookingsCreated
}

// BookingConflicts returns the number of times IncBookingConflicts was called.
func (m *Mock) BookingConflicts() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.bookingConflicts
}

func (m *Mock) BookingTransitions(status string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.bookingTransitions[status]
}

func (m *Mock) BlockedSlots(source string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.blockedSlots[source]
}

func (m *Mock) JoinRequests(outcome string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.joinRequests[outcome]
}

func (m *Mock) NotifSent(channel string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.notifSent[channel]
}

func (m *Mock) NotifFailed(channel string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.notifFailed[channel]
}

func (m *Mock) EventsPublished(event string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.eventsPublished[event]
}

func (m *Mock) EventsFailed(event string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.eventsFailed[event]
}

// RequestDurations returns the observations recorded for route.
func (m *Mock) RequestDurations(route string) []float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]float64(nil), m.requestDurations[route]...)
}

func (m *Mock) RemindersSent() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.remindersSent
}

func (m *Mock) StartupTime() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.startupTime
}
