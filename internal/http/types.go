package http

import (
	"net/http"

	"github.com/mauv0809/courtside/internal/auth"
	"github.com/mauv0809/courtside/internal/availability"
	"github.com/mauv0809/courtside/internal/booking"
	"github.com/mauv0809/courtside/internal/config"
	"github.com/mauv0809/courtside/internal/http/handlers"
	"github.com/mauv0809/courtside/internal/invite"
	"github.com/mauv0809/courtside/internal/metrics"
	"github.com/mauv0809/courtside/internal/ratelimit"
	"github.com/mauv0809/courtside/internal/venue"
)

type Server struct {
	DB             handlers.Pinger
	Cache          handlers.CachePinger
	Venues         venue.VenueStore
	Checker        *availability.Checker
	Bookings       booking.BookingService
	Invites        invite.InviteService
	Auth           *auth.Authenticator
	Limiter        *ratelimit.Limiter
	Metrics        metrics.Metrics
	MetricsHandler http.Handler
	Cfg            config.Config
	Router         *http.ServeMux
}
