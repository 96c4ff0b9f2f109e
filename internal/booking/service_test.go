package booking_test

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/mauv0809/courtside/internal/apperr"
	"github.com/mauv0809/courtside/internal/auth"
	"github.com/mauv0809/courtside/internal/availability"
	"github.com/mauv0809/courtside/internal/booking"
	"github.com/mauv0809/courtside/internal/cache"
	"github.com/mauv0809/courtside/internal/database"
	"github.com/mauv0809/courtside/internal/metrics"
	"github.com/mauv0809/courtside/internal/notifier"
	"github.com/mauv0809/courtside/internal/pubsub"
	"github.com/mauv0809/courtside/internal/slot"
	"github.com/mauv0809/courtside/internal/user"
	"github.com/mauv0809/courtside/internal/venue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const date = "2025-03-01"

var (
	owner    = auth.Actor{UserID: "owner1", Role: user.RoleOwner}
	stranger = auth.Actor{UserID: "owner2", Role: user.RoleOwner}
	player   = auth.Actor{UserID: "player1", Role: user.RoleUser}
	player2  = auth.Actor{UserID: "player2", Role: user.RoleUser}
	admin    = auth.Actor{UserID: "admin1", Role: user.RoleAdmin}
)

type fixture struct {
	svc      *booking.Service
	venues   venue.VenueStore
	checker  *availability.Checker
	notifier *notifier.Mock
	events   *pubsub.MockPubSubClient
	metrics  *metrics.Mock
	venueID  string
	courtID  string
}

func setup(t *testing.T) (*fixture, func()) {
	t.Helper()
	return setupAt(t, ":memory:")
}

// setupAt opens the database at dbPath. A file path gives a real connection
// pool, which concurrency tests need.
func setupAt(t *testing.T, dbPath string) (*fixture, func()) {
	t.Helper()
	ctx := context.Background()

	db, teardown, err := database.InitDB(dbPath, "", "", "../../migrations")
	require.NoError(t, err)

	users := user.New(db)
	for _, u := range []user.User{
		{ID: "owner1", Name: "Olga", Email: "olga@example.com", Role: user.RoleOwner},
		{ID: "owner2", Name: "Oscar", Role: user.RoleOwner},
		{ID: "player1", Name: "Ana", Email: "ana@example.com"},
		{ID: "player2", Name: "Ben", Email: "ben@example.com"},
		{ID: "admin1", Name: "Root", Role: user.RoleAdmin},
	} {
		_, err := users.UpsertUser(ctx, u)
		require.NoError(t, err)
	}

	venues := venue.New(db, cache.NewNoop(), time.Minute)
	v, err := venues.CreateVenue(ctx, owner, venue.NewVenue{Name: "Riverside"})
	require.NoError(t, err)
	c, err := venues.CreateCourt(ctx, owner, v.ID, venue.NewCourt{Name: "Court 1", Sport: "padel", PricePerHour: 40, SlotMinutes: 60})
	require.NoError(t, err)

	f := &fixture{
		venues:   venues,
		checker:  availability.New(db, venues),
		notifier: notifier.NewMock(),
		events:   pubsub.NewMock("TEST"),
		metrics:  metrics.NewMock(),
		venueID:  v.ID,
		courtID:  c.ID,
	}
	f.svc = booking.New(db, users, f.notifier, f.events, f.metrics)

	return f, func() {
		f.svc.Wait()
		teardown()
	}
}

func (f *fixture) create(actor auth.Actor, start, end string) (*booking.Booking, error) {
	return f.svc.CreateBooking(context.Background(), actor, booking.CreateBookingInput{
		CourtID:   f.courtID,
		Date:      date,
		StartTime: start,
		EndTime:   end,
	})
}

func amount(v float64) *float64 { return &v }

func TestCreateBooking(t *testing.T) {
	f, teardown := setup(t)
	defer teardown()
	ctx := context.Background()

	b, err := f.svc.CreateBooking(ctx, player, booking.CreateBookingInput{
		CourtID:     f.courtID,
		Date:        date,
		StartTime:   "10:00",
		EndTime:     "11:00",
		TotalAmount: amount(40),
		Notes:       "bring balls",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, b.ID)
	assert.Equal(t, booking.StatusPending, b.Status)
	assert.Equal(t, booking.PaymentPending, b.PaymentStatus)
	assert.Equal(t, 40.0, b.TotalAmount)
	assert.Equal(t, "Court 1", b.CourtName)
	assert.Equal(t, "Riverside", b.VenueName)
	assert.Equal(t, "owner1", b.VenueOwnerID)
	assert.Equal(t, "bring balls", b.Notes)

	_, err = f.create(player2, "10:00", "11:00")
	assert.True(t, errors.Is(err, apperr.ErrConflict), "identical slot must conflict, got %v", err)

	f.svc.Wait()
	assert.Equal(t, 1, f.metrics.BookingsCreated())
	assert.Equal(t, 1, f.metrics.BookingConflicts())

	calls := f.notifier.Calls()
	require.Len(t, calls["SendBookingConfirmation"], 1)
	assert.Equal(t, "ana@example.com", calls["SendBookingConfirmation"][0].To.Email)
	assert.Equal(t, "Ana", calls["SendBookingConfirmation"][0].Booking.PlayerName)
	require.Len(t, calls["NotifyVenueOwner"], 1)
	assert.Equal(t, "olga@example.com", calls["NotifyVenueOwner"][0].To.Email)

	assert.Equal(t, []pubsub.EventType{pubsub.EventBookingCreated}, f.events.Topics())
	assert.Equal(t, 1, f.metrics.EventsPublished(string(pubsub.EventBookingCreated)))
}

func TestCreateBookingComputesAmount(t *testing.T) {
	f, teardown := setup(t)
	defer teardown()

	b, err := f.create(player, "09:00", "10:30")
	require.NoError(t, err)
	assert.Equal(t, 60.0, b.TotalAmount)

	b, err = f.create(player, "9:30", "9:45")
	assert.True(t, errors.Is(err, apperr.ErrConflict), "overlaps the first booking, got %v", err)
	assert.Nil(t, b)

	b, err = f.create(player, "10:30", "10:50")
	require.NoError(t, err)
	assert.Equal(t, "10:30", b.StartTime)
	assert.Equal(t, 13.33, b.TotalAmount)
}

func TestCreateBookingValidation(t *testing.T) {
	f, teardown := setup(t)
	defer teardown()
	ctx := context.Background()

	tests := []struct {
		name string
		in   booking.CreateBookingInput
	}{
		{"missing court", booking.CreateBookingInput{Date: date, StartTime: "10:00", EndTime: "11:00"}},
		{"bad date", booking.CreateBookingInput{CourtID: f.courtID, Date: "01/03/2025", StartTime: "10:00", EndTime: "11:00"}},
		{"end before start", booking.CreateBookingInput{CourtID: f.courtID, Date: date, StartTime: "11:00", EndTime: "10:00"}},
		{"bad time", booking.CreateBookingInput{CourtID: f.courtID, Date: date, StartTime: "ten", EndTime: "11:00"}},
		{"zero amount", booking.CreateBookingInput{CourtID: f.courtID, Date: date, StartTime: "10:00", EndTime: "11:00", TotalAmount: amount(0)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.CreateBooking(ctx, player, tt.in)
			assert.True(t, errors.Is(err, apperr.ErrValidation), "got %v", err)
		})
	}

	_, err := f.svc.CreateBooking(ctx, player, booking.CreateBookingInput{CourtID: "missing", Date: date, StartTime: "10:00", EndTime: "11:00"})
	assert.True(t, errors.Is(err, apperr.ErrNotFound), "got %v", err)
}

func TestCreateBookingBannedUser(t *testing.T) {
	f, teardown := setup(t)
	defer teardown()

	banned := player
	banned.Banned = true
	_, err := f.create(banned, "10:00", "11:00")
	assert.True(t, errors.Is(err, apperr.ErrForbidden), "got %v", err)
	assert.Equal(t, 0, f.metrics.BookingsCreated())
}

func TestCreateBookingOutsideWindowsAndInactiveCourt(t *testing.T) {
	f, teardown := setup(t)
	defer teardown()
	ctx := context.Background()

	morning, err := slot.NewRange("08:00", "12:00")
	require.NoError(t, err)
	_, err = f.venues.SetAvailabilityWindows(ctx, owner, f.courtID, time.Saturday, []slot.Range{morning})
	require.NoError(t, err)

	_, err = f.create(player, "12:00", "13:00")
	assert.True(t, errors.Is(err, apperr.ErrConflict), "got %v", err)

	_, err = f.create(player, "11:00", "12:00")
	require.NoError(t, err)

	require.NoError(t, f.venues.DeactivateCourt(ctx, owner, f.courtID))
	_, err = f.create(player, "08:00", "09:00")
	assert.True(t, errors.Is(err, apperr.ErrConflict), "got %v", err)
}

func TestConcurrentOverlappingCreatesHaveOneWinner(t *testing.T) {
	f, teardown := setupAt(t, filepath.Join(t.TempDir(), "courtside.db"))
	defer teardown()

	// Every range ends at 11:30 and starts two minutes after the previous
	// one, so all of them overlap but no two are identical.
	const attempts = 12
	var (
		wg        sync.WaitGroup
		start     = make(chan struct{})
		mu        sync.Mutex
		created   int
		conflicts int
	)
	for i := 0; i < attempts; i++ {
		from := slot.Clock(10*60 + 2*i).String()
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := f.create(player, from, "11:30")
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				created++
			case errors.Is(err, apperr.ErrConflict):
				conflicts++
			default:
				t.Errorf("unexpected error for %s-11:30: %v", from, err)
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, 1, created)
	assert.Equal(t, attempts-1, conflicts)

	mine, err := f.svc.ListBookingsForUser(context.Background(), player)
	require.NoError(t, err)
	assert.Len(t, mine, 1)
}

func TestConfirmBlocksSlot(t *testing.T) {
	f, teardown := setup(t)
	defer teardown()
	ctx := context.Background()

	b, err := f.create(player, "10:00", "11:00")
	require.NoError(t, err)

	confirmed, err := f.svc.TransitionBooking(ctx, owner, b.ID, booking.StatusConfirmed)
	require.NoError(t, err)
	assert.Equal(t, booking.StatusConfirmed, confirmed.Status)

	slots, err := f.svc.ListBlockedSlots(ctx, f.courtID, date)
	require.NoError(t, err)
	require.Len(t, slots, 1)
	assert.Equal(t, b.ID, slots[0].BookingID)
	assert.Equal(t, "10:00", slots[0].StartTime)
	assert.Equal(t, "11:00", slots[0].EndTime)
	assert.Contains(t, slots[0].Reason, b.ID)

	_, err = f.create(player2, "10:00", "11:00")
	assert.True(t, errors.Is(err, apperr.ErrConflict), "got %v", err)
	_, err = f.create(player2, "10:30", "11:30")
	assert.True(t, errors.Is(err, apperr.ErrConflict), "got %v", err)

	ok, err := f.checker.IsSlotAvailable(ctx, f.courtID, date, "10:00", "11:00")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = f.svc.TransitionBooking(ctx, owner, b.ID, booking.StatusCancelled)
	assert.True(t, errors.Is(err, apperr.ErrAlreadyProcessed), "got %v", err)
	_, err = f.svc.TransitionBooking(ctx, owner, b.ID, booking.StatusConfirmed)
	assert.True(t, errors.Is(err, apperr.ErrAlreadyProcessed), "got %v", err)

	f.svc.Wait()
	assert.Equal(t, 1, f.metrics.BookingTransitions("CONFIRMED"))
	assert.Equal(t, 1, f.metrics.BlockedSlots("booking"))
	calls := f.notifier.Calls()
	require.Len(t, calls["SendBookingStatusUpdate"], 1)
	assert.Equal(t, "CONFIRMED", calls["SendBookingStatusUpdate"][0].Booking.Status)
	assert.Contains(t, f.events.Topics(), pubsub.EventBookingConfirmed)
}

func TestCancelFreesSlot(t *testing.T) {
	f, teardown := setup(t)
	defer teardown()
	ctx := context.Background()

	b, err := f.create(player, "10:00", "11:00")
	require.NoError(t, err)

	cancelled, err := f.svc.TransitionBooking(ctx, owner, b.ID, booking.StatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, booking.StatusCancelled, cancelled.Status)

	slots, err := f.svc.ListBlockedSlots(ctx, f.courtID, date)
	require.NoError(t, err)
	assert.Empty(t, slots)

	_, err = f.create(player2, "10:00", "11:00")
	require.NoError(t, err)

	_, err = f.svc.TransitionBooking(ctx, owner, b.ID, booking.StatusConfirmed)
	assert.True(t, errors.Is(err, apperr.ErrAlreadyProcessed), "got %v", err)
}

func TestTransitionBookingAuthorization(t *testing.T) {
	f, teardown := setup(t)
	defer teardown()
	ctx := context.Background()

	b, err := f.create(player, "10:00", "11:00")
	require.NoError(t, err)

	for _, actor := range []auth.Actor{stranger, player, admin} {
		_, err = f.svc.TransitionBooking(ctx, actor, b.ID, booking.StatusConfirmed)
		assert.True(t, errors.Is(err, apperr.ErrForbidden), "%s: got %v", actor.UserID, err)
	}

	bannedOwner := owner
	bannedOwner.Banned = true
	_, err = f.svc.TransitionBooking(ctx, bannedOwner, b.ID, booking.StatusConfirmed)
	assert.True(t, errors.Is(err, apperr.ErrForbidden), "got %v", err)

	_, err = f.svc.TransitionBooking(ctx, owner, "missing", booking.StatusConfirmed)
	assert.True(t, errors.Is(err, apperr.ErrNotFound), "got %v", err)

	_, err = f.svc.TransitionBooking(ctx, owner, b.ID, booking.StatusPending)
	assert.True(t, errors.Is(err, apperr.ErrValidation), "got %v", err)

	got, err := f.svc.GetBooking(ctx, owner, b.ID)
	require.NoError(t, err)
	assert.Equal(t, booking.StatusPending, got.Status)
}

func TestGetAndListBookings(t *testing.T) {
	f, teardown := setup(t)
	defer teardown()
	ctx := context.Background()

	late, err := f.create(player, "15:00", "16:00")
	require.NoError(t, err)
	early, err := f.create(player, "09:00", "10:00")
	require.NoError(t, err)
	_, err = f.create(player2, "12:00", "13:00")
	require.NoError(t, err)

	_, err = f.svc.GetBooking(ctx, player, late.ID)
	require.NoError(t, err)
	_, err = f.svc.GetBooking(ctx, admin, late.ID)
	require.NoError(t, err)
	_, err = f.svc.GetBooking(ctx, player2, late.ID)
	assert.True(t, errors.Is(err, apperr.ErrForbidden), "got %v", err)

	mine, err := f.svc.ListBookingsForUser(ctx, player)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, early.ID, mine[0].ID)
	assert.Equal(t, late.ID, mine[1].ID)

	all, err := f.svc.ListBookingsForVenue(ctx, owner, f.venueID)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	_, err = f.svc.ListBookingsForVenue(ctx, stranger, f.venueID)
	assert.True(t, errors.Is(err, apperr.ErrForbidden), "got %v", err)
	_, err = f.svc.ListBookingsForVenue(ctx, owner, "missing")
	assert.True(t, errors.Is(err, apperr.ErrNotFound), "got %v", err)
}

func TestManualBlockedSlots(t *testing.T) {
	f, teardown := setup(t)
	defer teardown()
	ctx := context.Background()

	b, err := f.create(player, "10:00", "11:00")
	require.NoError(t, err)

	_, err = f.svc.BlockSlot(ctx, owner, f.courtID, date, "10:30", "12:00", "maintenance")
	assert.True(t, errors.Is(err, apperr.ErrConflict), "got %v", err)

	_, err = f.svc.BlockSlot(ctx, stranger, f.courtID, date, "12:00", "13:00", "maintenance")
	assert.True(t, errors.Is(err, apperr.ErrForbidden), "got %v", err)

	blocked, err := f.svc.BlockSlot(ctx, owner, f.courtID, date, "12:00", "14:00", "maintenance")
	require.NoError(t, err)
	assert.Empty(t, blocked.BookingID)
	assert.Equal(t, 1, f.metrics.BlockedSlots("manual"))

	_, err = f.svc.BlockSlot(ctx, admin, f.courtID, date, "13:00", "15:00", "resurfacing")
	assert.True(t, errors.Is(err, apperr.ErrConflict), "got %v", err)

	_, err = f.create(player2, "13:00", "14:00")
	assert.True(t, errors.Is(err, apperr.ErrConflict), "got %v", err)

	require.NoError(t, f.svc.UnblockSlot(ctx, owner, blocked.ID))
	_, err = f.create(player2, "13:00", "14:00")
	require.NoError(t, err)

	_, err = f.svc.TransitionBooking(ctx, owner, b.ID, booking.StatusConfirmed)
	require.NoError(t, err)
	slots, err := f.svc.ListBlockedSlots(ctx, f.courtID, "")
	require.NoError(t, err)
	require.Len(t, slots, 1)

	err = f.svc.UnblockSlot(ctx, owner, slots[0].ID)
	assert.True(t, errors.Is(err, apperr.ErrForbidden), "booking slots stay, got %v", err)
	err = f.svc.UnblockSlot(ctx, owner, "missing")
	assert.True(t, errors.Is(err, apperr.ErrNotFound), "got %v", err)

	_, err = f.svc.ListBlockedSlots(ctx, "", date)
	assert.True(t, errors.Is(err, apperr.ErrValidation), "got %v", err)
}

func TestSendReminders(t *testing.T) {
	f, teardown := setup(t)
	defer teardown()
	ctx := context.Background()

	confirmed, err := f.create(player, "10:00", "11:00")
	require.NoError(t, err)
	_, err = f.svc.TransitionBooking(ctx, owner, confirmed.ID, booking.StatusConfirmed)
	require.NoError(t, err)
	_, err = f.create(player2, "12:00", "13:00")
	require.NoError(t, err)
	f.svc.Wait()
	f.notifier.Reset()

	sent, err := f.svc.SendReminders(ctx, date)
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	assert.Equal(t, 1, f.metrics.RemindersSent())

	calls := f.notifier.Calls()["SendBookingReminder"]
	require.Len(t, calls, 1)
	assert.Equal(t, confirmed.ID, calls[0].Booking.ID)
	assert.Equal(t, "ana@example.com", calls[0].To.Email)
}

func TestNotificationFailuresAreNotReturned(t *testing.T) {
	f, teardown := setup(t)
	defer teardown()

	f.notifier.SendBookingConfirmationFunc = func(notifier.Recipient, notifier.Booking) error {
		return errors.New("smtp down")
	}
	f.events.SendMessageFunc = func(pubsub.EventType, any) error {
		return errors.New("pubsub down")
	}

	_, err := f.create(player, "10:00", "11:00")
	require.NoError(t, err)

	f.svc.Wait()
	assert.Equal(t, 1, f.metrics.EventsFailed(string(pubsub.EventBookingCreated)))
}

func TestEffectiveStatus(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		b      booking.Booking
		expect booking.Status
	}{
		{"confirmed and finished", booking.Booking{Date: "2025-03-01", EndTime: "11:00", Status: booking.StatusConfirmed}, booking.StatusCompleted},
		{"confirmed and ongoing", booking.Booking{Date: "2025-03-01", EndTime: "12:30", Status: booking.StatusConfirmed}, booking.StatusConfirmed},
		{"confirmed tomorrow", booking.Booking{Date: "2025-03-02", EndTime: "09:00", Status: booking.StatusConfirmed}, booking.StatusConfirmed},
		{"pending in the past", booking.Booking{Date: "2025-02-01", EndTime: "09:00", Status: booking.StatusPending}, booking.StatusPending},
		{"cancelled in the past", booking.Booking{Date: "2025-02-01", EndTime: "09:00", Status: booking.StatusCancelled}, booking.StatusCancelled},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expect, tt.b.EffectiveStatus(now))
		})
	}
}
