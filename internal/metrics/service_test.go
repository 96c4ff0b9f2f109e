package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServiceCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	s := NewService(reg)

	s.IncBookingsCreated()
	s.IncBookingsCreated()
	s.IncBookingConflicts()
	s.IncBookingTransitions("CONFIRMED")
	s.IncBlockedSlots("booking")
	s.IncJoinRequests("accepted")
	s.IncNotifSent("email")
	s.IncNotifFailed("slack")
	s.IncEventsPublished("booking.created")
	s.IncRemindersSent(3)
	s.SetStartupTime(1.5)

	assert.Equal(t, 2.0, testutil.ToFloat64(s.BookingsCreated))
	assert.Equal(t, 1.0, testutil.ToFloat64(s.BookingConflicts))
	assert.Equal(t, 1.0, testutil.ToFloat64(s.BookingTransitions.WithLabelValues("CONFIRMED")))
	assert.Equal(t, 0.0, testutil.ToFloat64(s.BookingTransitions.WithLabelValues("CANCELLED")))
	assert.Equal(t, 1.0, testutil.ToFloat64(s.BlockedSlots.WithLabelValues("booking")))
	assert.Equal(t, 1.0, testutil.ToFloat64(s.NotifFailed.WithLabelValues("slack")))
	assert.Equal(t, 3.0, testutil.ToFloat64(s.RemindersSent))
	assert.Equal(t, 1.5, testutil.ToFloat64(s.StartupTimeSeconds))
}

func TestMetricsHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	s := NewService(reg)
	s.IncBookingsCreated()

	rr := httptest.NewRecorder()
	NewMetricsHandler(reg).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "courtside_bookings_created_total 1")
}

func TestMockRecordsCalls(t *testing.T) {
	m := NewMock()
	m.IncBookingTransitions("CANCELLED")
	m.IncBookingTransitions("CANCELLED")
	m.ObserveRequestDuration("POST /api/bookings", 0.2)

	assert.Equal(t, 2, m.BookingTransitions("CANCELLED"))
	assert.Equal(t, []float64{0.2}, m.RequestDurations("POST /api/bookings"))
}
