package venue

import (
	"database/sql"
	"sync"
	"time"

	"github.com/mauv0809/courtside/internal/cache"
	"github.com/mauv0809/courtside/internal/slot"
)

type store struct {
	db       *sql.DB
	mu       sync.RWMutex
	cache    cache.Cache
	cacheTTL time.Duration
}

type Venue struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	Name      string    `json:"name"`
	City      string    `json:"city"`
	Address   string    `json:"address"`
	Sports    []string  `json:"sports"`
	CreatedAt time.Time `json:"created_at"`
}

// Court is a bookable resource. OwnerID is the owner of the parent venue.
type Court struct {
	ID           string                        `json:"id"`
	VenueID      string                        `json:"venue_id"`
	OwnerID      string                        `json:"owner_id"`
	Name         string                        `json:"name"`
	Sport        string                        `json:"sport"`
	PricePerHour float64                       `json:"price_per_hour"`
	SlotMinutes  int                           `json:"slot_minutes"`
	Active       bool                          `json:"active"`
	Windows      map[time.Weekday][]slot.Range `json:"windows"`
	CreatedAt    time.Time                     `json:"created_at"`

	// HoursConfigured is set by the first SetAvailabilityWindows call and
	// never cleared, so closing every day leaves the court closed.
	HoursConfigured bool `json:"hours_configured"`
}

// WindowsFor returns the opening windows for day. configured is false until
// the owner sets hours for the first time; such a court is open all day.
func (c *Court) WindowsFor(day time.Weekday) (windows []slot.Range, configured bool) {
	if !c.HoursConfigured {
		return []slot.Range{{Start: 0, End: slot.EndOfDay}}, false
	}
	return c.Windows[day], true
}

type NewVenue struct {
	OwnerID string   `json:"owner_id,omitempty"`
	Name    string   `json:"name"`
	City    string   `json:"city"`
	Address string   `json:"address"`
	Sports  []string `json:"sports"`
}

type NewCourt struct {
	Name         string  `json:"name"`
	Sport        string  `json:"sport"`
	PricePerHour float64 `json:"price_per_hour"`
	SlotMinutes  int     `json:"slot_minutes"`
}
