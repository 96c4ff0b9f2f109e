package metrics

// Metrics defines the interface for collecting application metrics.
// This decouples the application from the specific metrics implementation (e.g., Prometheus).
type Metrics interface {
	IncBookingsCreated()
	IncBookingConflicts()
	IncBookingTransitions(status string)
	IncBlockedSlots(source string)
	IncJoinRequests(outcome string)
	IncNotifSent(channel string)
	IncNotifFailed(channel string)
	IncEventsPublished(event string)
	IncEventsFailed(event string)
	ObserveRequestDuration(route string, seconds float64)
	IncRemindersSent(count int)
	SetStartupTime(duration float64)
}
