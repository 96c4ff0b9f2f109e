package venue

import (
	"context"
	"time"

	"github.com/mauv0809/courtside/internal/auth"
	"github.com/mauv0809/courtside/internal/slot"
)

// VenueStore manages venues, their courts and the courts' weekly opening windows.
type VenueStore interface {
	CreateVenue(ctx context.Context, actor auth.Actor, in NewVenue) (*Venue, error)
	GetVenue(ctx context.Context, id string) (*Venue, error)
	ListVenues(ctx context.Context, city, sport string) ([]Venue, error)

	CreateCourt(ctx context.Context, actor auth.Actor, venueID string, in NewCourt) (*Court, error)
	GetCourt(ctx context.Context, id string) (*Court, error)
	ListCourts(ctx context.Context, venueID string) ([]Court, error)
	SetAvailabilityWindows(ctx context.Context, actor auth.Actor, courtID string, day time.Weekday, windows []slot.Range) (*Court, error)
	DeactivateCourt(ctx context.Context, actor auth.Actor, courtID string) error
}
