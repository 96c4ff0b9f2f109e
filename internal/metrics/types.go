package metrics

import "github.com/prometheus/client_golang/prometheus"

// Service holds all the Prometheus metrics for the application.
type Service struct {
	BookingsCreated    prometheus.Counter
	BookingConflicts   prometheus.Counter
	BookingTransitions *prometheus.CounterVec
	BlockedSlots       *prometheus.CounterVec
	JoinRequests       *prometheus.CounterVec
	NotifSent          *prometheus.CounterVec
	NotifFailed        *prometheus.CounterVec
	EventsPublished    *prometheus.CounterVec
	EventsFailed       *prometheus.CounterVec
	RequestDuration    *prometheus.HistogramVec
	RemindersSent      prometheus.Counter
	StartupTimeSeconds prometheus.Gauge
}
