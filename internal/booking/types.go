package booking

import (
	"database/sql"
	"sync"
	"time"

	"github.com/mauv0809/courtside/internal/metrics"
	"github.com/mauv0809/courtside/internal/notifier"
	"github.com/mauv0809/courtside/internal/pubsub"
	"github.com/mauv0809/courtside/internal/slot"
	"github.com/mauv0809/courtside/internal/user"
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusCancelled Status = "CANCELLED"
	// StatusCompleted is derived by EffectiveStatus and never stored.
	StatusCompleted Status = "COMPLETED"
)

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "PENDING"
	PaymentPaid     PaymentStatus = "PAID"
	PaymentRefunded PaymentStatus = "REFUNDED"
)

// Service implements BookingService. Notifications and events run on
// background goroutines after the transaction commits; Wait blocks until they
// have finished.
type Service struct {
	db       *sql.DB
	users    user.UserStore
	notifier notifier.Notifier
	events   pubsub.PubSubClient
	metrics  metrics.Metrics
	now      func() time.Time
	wg       sync.WaitGroup
}

type Booking struct {
	ID            string        `json:"id"`
	CourtID       string        `json:"court_id"`
	CourtName     string        `json:"court_name"`
	VenueID       string        `json:"venue_id"`
	VenueName     string        `json:"venue_name"`
	VenueOwnerID  string        `json:"venue_owner_id"`
	UserID        string        `json:"user_id"`
	Date          string        `json:"date"`
	StartTime     string        `json:"start_time"`
	EndTime       string        `json:"end_time"`
	TotalAmount   float64       `json:"total_amount"`
	Status        Status        `json:"status"`
	PaymentStatus PaymentStatus `json:"payment_status"`
	Notes         string        `json:"notes,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// EffectiveStatus reports COMPLETED for a confirmed booking whose end has
// passed. Booking times are wall-clock values, read in now's location.
func (b Booking) EffectiveStatus(now time.Time) Status {
	if b.Status != StatusConfirmed {
		return b.Status
	}
	day, err := time.ParseInLocation(slot.DateLayout, b.Date, now.Location())
	if err != nil {
		return b.Status
	}
	end, err := slot.ParseClock(b.EndTime)
	if err != nil {
		return b.Status
	}
	if day.Add(time.Duration(end) * time.Minute).Before(now) {
		return StatusCompleted
	}
	return b.Status
}

// BlockedSlot is a range on a court that cannot be booked. BookingID is set
// when the slot was created by confirming a booking.
type BlockedSlot struct {
	ID        string    `json:"id"`
	CourtID   string    `json:"court_id"`
	Date      string    `json:"date"`
	StartTime string    `json:"start_time"`
	EndTime   string    `json:"end_time"`
	Reason    string    `json:"reason"`
	BookingID string    `json:"booking_id,omitempty"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

type CreateBookingInput struct {
	CourtID   string `json:"court_id"`
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	// TotalAmount is computed from the court price when nil.
	TotalAmount *float64 `json:"total_amount,omitempty"`
	Notes       string   `json:"notes,omitempty"`
}
