package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/mauv0809/courtside/internal/apperr"
	"github.com/mauv0809/courtside/internal/auth"
	"github.com/mauv0809/courtside/internal/availability"
	"github.com/mauv0809/courtside/internal/database"
	"github.com/mauv0809/courtside/internal/metrics"
	"github.com/mauv0809/courtside/internal/notifier"
	"github.com/mauv0809/courtside/internal/pubsub"
	"github.com/mauv0809/courtside/internal/slot"
	"github.com/mauv0809/courtside/internal/user"
	"github.com/mauv0809/courtside/internal/venue"
)

var _ BookingService = (*Service)(nil)

type Option func(*Service)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New creates the booking service. A nil notifier or event client disables
// that side effect.
func New(db *sql.DB, users user.UserStore, n notifier.Notifier, events pubsub.PubSubClient, m metrics.Metrics, opts ...Option) *Service {
	if n == nil {
		n = notifier.Multi{}
	}
	if events == nil {
		events = pubsub.NewNoop()
	}
	s := &Service{db: db, users: users, notifier: n, events: events, metrics: m, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Wait blocks until every background notification and event has been sent.
func (s *Service) Wait() {
	s.wg.Wait()
}

const selectBooking = `
	SELECT b.id, b.court_id, c.name, c.venue_id, v.name, v.owner_id, b.user_id,
	       b.date, b.start_time, b.end_time, b.total_amount, b.status,
	       b.payment_status, b.notes, b.created_at, b.updated_at
	FROM bookings b
	JOIN courts c ON c.id = b.court_id
	JOIN venues v ON v.id = c.venue_id
`

func scanBooking(scanner interface{ Scan(...any) error }) (*Booking, error) {
	var (
		b                    Booking
		status, payment      string
		createdAt, updatedAt int64
	)
	err := scanner.Scan(&b.ID, &b.CourtID, &b.CourtName, &b.VenueID, &b.VenueName, &b.VenueOwnerID, &b.UserID,
		&b.Date, &b.StartTime, &b.EndTime, &b.TotalAmount, &status,
		&payment, &b.Notes, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	b.Status = Status(status)
	b.PaymentStatus = PaymentStatus(payment)
	b.CreatedAt = time.Unix(createdAt, 0)
	b.UpdatedAt = time.Unix(updatedAt, 0)
	return &b, nil
}

func loadBooking(ctx context.Context, q database.Querier, id string) (*Booking, error) {
	b, err := scanBooking(q.QueryRowContext(ctx, selectBooking+" WHERE b.id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("booking %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking %s: %w", id, err)
	}
	return b, nil
}

func queryBookings(ctx context.Context, q database.Querier, where string, args ...any) ([]Booking, error) {
	rows, err := q.QueryContext(ctx, selectBooking+" WHERE "+where+" ORDER BY b.date, b.start_time", args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	defer rows.Close()

	bookings := []Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking row: %w", err)
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}

func (s *Service) CreateBooking(ctx context.Context, actor auth.Actor, in CreateBookingInput) (*Booking, error) {
	if actor.Banned {
		return nil, apperr.Forbidden("account is suspended")
	}
	if actor.UserID == "" {
		return nil, apperr.Validation("user id is required")
	}
	day, r, err := availability.ParseRequest(in.CourtID, in.Date, in.StartTime, in.EndTime)
	if err != nil {
		return nil, err
	}
	if in.TotalAmount != nil && *in.TotalAmount <= 0 {
		return nil, apperr.Validation("total amount must be greater than zero")
	}

	var created *Booking
	err = database.RunInTx(ctx, s.db, func(tx *sql.Tx) error {
		court, err := venue.LoadCourt(ctx, tx, in.CourtID)
		if err != nil {
			return err
		}
		res, err := availability.Check(ctx, tx, court, day, r)
		if err != nil {
			return err
		}
		if !res.Available {
			return apperr.Conflict("court %s is not available on %s at %s (%s)", court.ID, in.Date, r, res.Reason)
		}

		amount := math.Round(court.PricePerHour*float64(r.Minutes())/60*100) / 100
		if in.TotalAmount != nil {
			amount = *in.TotalAmount
		}

		id := uuid.NewString()
		now := s.now().Unix()
		_, err = tx.ExecContext(ctx, `
			INSERT INTO bookings (id, court_id, user_id, date, start_time, end_time, total_amount, status, payment_status, notes, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, id, court.ID, actor.UserID, day.Format(slot.DateLayout), r.Start.String(), r.End.String(), amount,
			string(StatusPending), string(PaymentPending), in.Notes, now, now)
		if database.IsUniqueViolation(err) {
			return apperr.Conflict("court %s is already booked on %s at %s", court.ID, in.Date, r)
		}
		if err != nil {
			return fmt.Errorf("failed to insert booking: %w", err)
		}

		created, err = loadBooking(ctx, tx, id)
		return err
	})
	if err != nil {
		if errors.Is(err, apperr.ErrConflict) {
			s.metrics.IncBookingConflicts()
			log.Info("Booking rejected", "court", in.CourtID, "date", in.Date, "start", in.StartTime, "end", in.EndTime, "reason", err)
		}
		return nil, err
	}

	s.metrics.IncBookingsCreated()
	log.Info("Booking created", "booking", created.ID, "court", created.CourtID, "date", created.Date, "start", created.StartTime, "user", created.UserID)

	b := *created
	s.publish(ctx, pubsub.EventBookingCreated, s.bookingEvent(b, actor.UserID))
	s.dispatch(ctx, "booking created notifications", func(ctx context.Context) error {
		player := s.recipient(ctx, b.UserID)
		owner := s.recipient(ctx, b.VenueOwnerID)
		snap := snapshot(b, player.Name)
		return errors.Join(
			s.notifier.SendBookingConfirmation(ctx, player, snap),
			s.notifier.NotifyVenueOwner(ctx, owner, snap),
		)
	})
	return created, nil
}

// TransitionBooking confirms or cancels a pending booking. Only the owner of
// the court's venue may do so. Confirming also blocks the booked range.
func (s *Service) TransitionBooking(ctx context.Context, actor auth.Actor, bookingID string, action Status) (*Booking, error) {
	if action != StatusConfirmed && action != StatusCancelled {
		return nil, apperr.Validation("action must be %s or %s", StatusConfirmed, StatusCancelled)
	}

	var updated *Booking
	err := database.RunInTx(ctx, s.db, func(tx *sql.Tx) error {
		b, err := loadBooking(ctx, tx, bookingID)
		if err != nil {
			return err
		}
		if actor.Banned || actor.UserID != b.VenueOwnerID {
			return apperr.Forbidden("only the venue owner may confirm or cancel booking %s", b.ID)
		}
		if b.Status != StatusPending {
			return apperr.AlreadyProcessed("booking %s is already %s", b.ID, b.Status)
		}

		now := s.now().Unix()
		res, err := tx.ExecContext(ctx, `
			UPDATE bookings SET status = ?, updated_at = ? WHERE id = ? AND status = ?
		`, string(action), now, b.ID, string(StatusPending))
		if err != nil {
			return fmt.Errorf("failed to update booking %s: %w", b.ID, err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return apperr.AlreadyProcessed("booking %s is no longer pending", b.ID)
		}

		if action == StatusConfirmed {
			_, err = tx.ExecContext(ctx, `
				INSERT INTO blocked_slots (id, court_id, date, start_time, end_time, reason, booking_id, created_by, created_at)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			`, uuid.NewString(), b.CourtID, b.Date, b.StartTime, b.EndTime,
				fmt.Sprintf("Confirmed booking %s by %s", b.ID, actor.UserID), b.ID, actor.UserID, now)
			if err != nil {
				return fmt.Errorf("failed to block slot for booking %s: %w", b.ID, err)
			}
		}

		updated, err = loadBooking(ctx, tx, b.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncBookingTransitions(string(action))
	if action == StatusConfirmed {
		s.metrics.IncBlockedSlots("booking")
	}
	log.Info("Booking transitioned", "booking", updated.ID, "status", updated.Status, "actor", actor.UserID)

	event := pubsub.EventBookingCancelled
	if action == StatusConfirmed {
		event = pubsub.EventBookingConfirmed
	}
	b := *updated
	s.publish(ctx, event, s.bookingEvent(b, actor.UserID))
	s.dispatch(ctx, "booking status notification", func(ctx context.Context) error {
		player := s.recipient(ctx, b.UserID)
		return s.notifier.SendBookingStatusUpdate(ctx, player, snapshot(b, player.Name))
	})
	return updated, nil
}

// GetBooking is visible to the player who made it, the venue owner and admins.
func (s *Service) GetBooking(ctx context.Context, actor auth.Actor, bookingID string) (*Booking, error) {
	b, err := loadBooking(ctx, s.db, bookingID)
	if err != nil {
		return nil, err
	}
	if actor.UserID != b.UserID && actor.UserID != b.VenueOwnerID && !actor.IsAdmin() {
		return nil, apperr.Forbidden("booking %s belongs to another user", b.ID)
	}
	return b, nil
}

func (s *Service) ListBookingsForUser(ctx context.Context, actor auth.Actor) ([]Booking, error) {
	if actor.UserID == "" {
		return nil, apperr.Validation("user id is required")
	}
	return queryBookings(ctx, s.db, "b.user_id = ?", actor.UserID)
}

// ListBookingsForVenue backs the owner dashboard.
func (s *Service) ListBookingsForVenue(ctx context.Context, actor auth.Actor, venueID string) ([]Booking, error) {
	var ownerID string
	err := s.db.QueryRowContext(ctx, "SELECT owner_id FROM venues WHERE id = ?", venueID).Scan(&ownerID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("venue %s", venueID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get venue %s: %w", venueID, err)
	}
	if actor.UserID != ownerID && !actor.IsAdmin() {
		return nil, apperr.Forbidden("only the venue owner may list its bookings")
	}
	return queryBookings(ctx, s.db, "c.venue_id = ?", venueID)
}

func (s *Service) SendReminders(ctx context.Context, date string) (int, error) {
	bookings, err := queryBookings(ctx, s.db, "b.date = ? AND b.status = ?", date, string(StatusConfirmed))
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, b := range bookings {
		player := s.recipient(ctx, b.UserID)
		if err := s.notifier.SendBookingReminder(ctx, player, snapshot(b, player.Name)); err != nil {
			log.Error("Failed to send booking reminder", "booking", b.ID, "error", err)
			continue
		}
		sent++
	}
	s.metrics.IncRemindersSent(sent)
	log.Info("Booking reminders sent", "date", date, "bookings", len(bookings), "sent", sent)
	return sent, nil
}
