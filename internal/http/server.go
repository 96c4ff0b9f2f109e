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

// NewServer wires the API routes. db and courtCache are only used by the
// health check.
func NewServer(db handlers.Pinger, courtCache handlers.CachePinger, venues venue.VenueStore, checker *availability.Checker, bookings booking.BookingService, invites invite.InviteService, authenticator *auth.Authenticator, limiter *ratelimit.Limiter, metricsSvc metrics.Metrics, metricsHandler http.Handler, cfg config.Config) *Server {
	server := &Server{
		DB:             db,
		Cache:          courtCache,
		Venues:         venues,
		Checker:        checker,
		Bookings:       bookings,
		Invites:        invites,
		Auth:           authenticator,
		Limiter:        limiter,
		Metrics:        metricsSvc,
		MetricsHandler: metricsHandler,
		Cfg:            cfg,
		Router:         http.NewServeMux(),
	}

	server.routes()
	return server
}

func (s *Server) routes() {
	// Every API route goes through paramsMiddleware and the duration
	// observer. Routes acting on behalf of a user add auth.RequireActor.
	s.Router.Handle("GET /metrics", s.MetricsHandler)
	s.handle("GET /health", handlers.HealthCheckHandler(s.DB, s.Cache))

	// Venues and courts
	s.handle("GET /api/venues", handlers.ListVenuesHandler(s.Venues))
	s.handle("GET /api/venues/{id}", handlers.GetVenueHandler(s.Venues))
	s.handle("POST /api/venues", handlers.CreateVenueHandler(s.Venues), s.Auth.RequireActor)
	s.handle("POST /api/venues/{id}/courts", handlers.CreateCourtHandler(s.Venues), s.Auth.RequireActor)
	s.handle("GET /api/courts/{id}", handlers.GetCourtHandler(s.Venues))
	s.handle("PUT /api/courts/{id}/windows/{weekday}", handlers.SetWindowsHandler(s.Venues), s.Auth.RequireActor)
	s.handle("DELETE /api/courts/{id}", handlers.DeactivateCourtHandler(s.Venues), s.Auth.RequireActor)

	// Availability and blocked slots
	s.handle("GET /api/courts/{id}/availability", handlers.AvailabilityHandler(s.Checker))
	s.handle("GET /api/courts/{id}/free-slots", handlers.FreeSlotsHandler(s.Checker))
	s.handle("GET /api/courts/{id}/blocked-slots", handlers.ListBlockedSlotsHandler(s.Bookings))
	s.handle("POST /api/courts/{id}/blocked-slots", handlers.BlockSlotHandler(s.Bookings), s.Auth.RequireActor)
	s.handle("DELETE /api/blocked-slots/{id}", handlers.UnblockSlotHandler(s.Bookings), s.Auth.RequireActor)

	// Bookings
	s.handle("POST /api/bookings", handlers.CreateBookingHandler(s.Bookings), s.Auth.RequireActor)
	s.handle("GET /api/bookings/{id}", handlers.GetBookingHandler(s.Bookings), s.Auth.RequireActor)
	s.handle("PATCH /api/bookings/{id}", handlers.TransitionBookingHandler(s.Bookings), s.Auth.RequireActor)
	s.handle("GET /api/me/bookings", handlers.MyBookingsHandler(s.Bookings), s.Auth.RequireActor)
	s.handle("GET /api/venues/{id}/bookings", handlers.VenueBookingsHandler(s.Bookings), s.Auth.RequireActor)

	// Invites
	s.handle("GET /api/invites", handlers.ListInvitesHandler(s.Invites))
	s.handle("GET /api/invites/{id}", handlers.GetInviteHandler(s.Invites))
	s.handle("POST /api/invites", handlers.CreateInviteHandler(s.Invites), s.Auth.RequireActor)
	s.handle("POST /api/invites/{id}/join-requests", handlers.SubmitJoinRequestHandler(s.Invites), s.Limiter.Middleware, s.Auth.OptionalActor)
	s.handle("GET /api/invites/{id}/join-requests", handlers.ListJoinRequestsHandler(s.Invites), s.Auth.RequireActor)
	s.handle("PATCH /api/join-requests/{id}", handlers.ResolveJoinRequestHandler(s.Invites), s.Auth.RequireActor)
}

// handle registers h for pattern behind the common middlewares followed by
// the route specific ones.
func (s *Server) handle(pattern string, h http.Handler, extra ...Middleware) {
	middlewares := append([]Middleware{paramsMiddleware, s.observeDuration(pattern)}, extra...)
	s.Router.Handle(pattern, Chain(h, middlewares...))
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}
