package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var _ Metrics = (*Service)(nil)

// NewMetricsHandler returns an http.Handler for the given Gatherer.
// If no gatherer is provided, it uses the default one.
func NewMetricsHandler(gatherer ...prometheus.Gatherer) http.Handler {
	gath := prometheus.DefaultGatherer
	if len(gatherer) > 0 {
		gath = gatherer[0]
	}
	return promhttp.HandlerFor(gath, promhttp.HandlerOpts{})
}

// NewService creates and registers the Prometheus metrics.
// If no registerer is provided, it uses the default Prometheus registerer.
func NewService(registerer ...prometheus.Registerer) *Service {
	reg := prometheus.DefaultRegisterer
	if len(registerer) > 0 {
		reg = registerer[0]
	}

	s := &Service{
		BookingsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "courtside_bookings_created_total",
			Help: "The total number of bookings created in PENDING state.",
		}),
		BookingConflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "courtside_booking_conflicts_total",
			Help: "The total number of booking attempts rejected because the slot was unavailable.",
		}),
		BookingTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "courtside_booking_transitions_total",
			Help: "The total number of booking status transitions by target status.",
		}, []string{"status"}),
		BlockedSlots: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "courtside_blocked_slots_created_total",
			Help: "The total number of blocked slots created, by source (booking or manual).",
		}, []string{"source"}),
		JoinRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "courtside_join_requests_total",
			Help: "The total number of join request events by outcome.",
		}, []string{"outcome"}),
		NotifSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "courtside_notifications_sent_total",
			Help: "The total number of notifications successfully sent, by channel.",
		}, []string{"channel"}),
		NotifFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "courtside_notifications_failed_total",
			Help: "The total number of notifications that failed to send, by channel.",
		}, []string{"channel"}),
		EventsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "courtside_events_published_total",
			Help: "The total number of domain events published.",
		}, []string{"event"}),
		EventsFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "courtside_events_failed_total",
			Help: "The total number of domain events that failed to publish.",
		}, []string{"event"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "courtside_http_request_duration_seconds",
			Help:    "The duration of HTTP requests by route pattern.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"route"}),
		RemindersSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "courtside_booking_reminders_sent_total",
			Help: "The total number of booking reminders dispatched.",
		}),
		StartupTimeSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "courtside_startup_duration_seconds",
			Help: "The duration of the application startup in seconds.",
		}),
	}

	reg.MustRegister(
		s.BookingsCreated,
		s.BookingConflicts,
		s.BookingTransitions,
		s.BlockedSlots,
		s.JoinRequests,
		s.NotifSent,
		s.NotifFailed,
		s.EventsPublished,
		s.EventsFailed,
		s.RequestDuration,
		s.RemindersSent,
		s.StartupTimeSeconds,
	)

	return s
}

func (s *Service) IncBookingsCreated() {
	s.BookingsCreated.Inc()
}

func (s *Service) IncBookingConflicts() {
	s.BookingConflicts.Inc()
}

func (s *Service) IncBookingTransitions(status string) {
	s.BookingTransitions.WithLabelValues(status).Inc()
}

func (s *Service) IncBlockedSlots(source string) {
	s.BlockedSlots.WithLabelValues(source).Inc()
}

func (s *Service) IncJoinRequests(outcome string) {
	s.JoinRequests.WithLabelValues(outcome).Inc()
}

func (s *Service) IncNotifSent(channel string) {
	s.NotifSent.WithLabelValues(channel).Inc()
}

func (s *Service) IncNotifFailed(channel string) {
	s.NotifFailed.WithLabelValues(channel).Inc()
}

func (s *Service) IncEventsPublished(event string) {
	s.EventsPublished.WithLabelValues(event).Inc()
}

func (s *Service) IncEventsFailed(event string) {
	s.EventsFailed.WithLabelValues(event).Inc()
}

func (s *Service) ObserveRequestDuration(route string, seconds float64) {
	s.RequestDuration.WithLabelValues(route).Observe(seconds)
}

func (s *Service) IncRemindersSent(count int) {
	s.RemindersSent.Add(float64(count))
}

func (s *Service) SetStartupTime(duration float64) {
	s.StartupTimeSeconds.Set(duration)
}
