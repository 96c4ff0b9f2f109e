package booking

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/courtside/internal/notifier"
	"github.com/mauv0809/courtside/internal/pubsub"
)

// dispatch runs fn in the background, detached from the request context.
// Errors are logged only.
func (s *Service) dispatch(ctx context.Context, task string, fn func(ctx context.Context) error) {
	ctx = context.WithoutCancel(ctx)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := fn(ctx); err != nil {
			log.Error("Background task failed", "task", task, "error", err)
		}
	}()
}

func (s *Service) publish(ctx context.Context, event pubsub.EventType, data pubsub.BookingEvent) {
	s.dispatch(ctx, string(event), func(context.Context) error {
		if err := s.events.SendMessage(event, data); err != nil {
			s.metrics.IncEventsFailed(string(event))
			return err
		}
		s.metrics.IncEventsPublished(string(event))
		return nil
	})
}

func (s *Service) bookingEvent(b Booking, actorID string) pubsub.BookingEvent {
	return pubsub.BookingEvent{
		BookingID:   b.ID,
		CourtID:     b.CourtID,
		VenueID:     b.VenueID,
		UserID:      b.UserID,
		ActorID:     actorID,
		Date:        b.Date,
		StartTime:   b.StartTime,
		EndTime:     b.EndTime,
		Status:      string(b.Status),
		TotalAmount: b.TotalAmount,
		OccurredAt:  s.now().Unix(),
	}
}

// recipient resolves a user to a notification address. Lookup failures still
// return a recipient so channels that need no address can deliver.
func (s *Service) recipient(ctx context.Context, userID string) notifier.Recipient {
	r := notifier.Recipient{UserID: userID}
	if s.users == nil || userID == "" {
		return r
	}
	u, err := s.users.GetUser(ctx, userID)
	if err != nil {
		log.Warn("Could not load notification recipient", "user", userID, "error", err)
		return r
	}
	r.Name = u.Name
	r.Email = u.Email
	return r
}

func snapshot(b Booking, playerName string) notifier.Booking {
	return notifier.Booking{
		ID:          b.ID,
		CourtID:     b.CourtID,
		CourtName:   b.CourtName,
		VenueName:   b.VenueName,
		PlayerName:  playerName,
		Date:        b.Date,
		StartTime:   b.StartTime,
		EndTime:     b.EndTime,
		TotalAmount: b.TotalAmount,
		Status:      string(b.Status),
		Notes:       b.Notes,
	}
}
