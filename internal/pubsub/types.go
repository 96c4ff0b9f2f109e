package pubsub

import (
	"sync"

	"cloud.google.com/go/pubsub"
)

type client struct {
	client *pubsub.Client
	mu     sync.Mutex
	topics map[EventType]*pubsub.Topic
}

// EventType represents the type of event/message sent via pubsub. It doubles as the topic name.
type EventType string

const (
	EventBookingCreated      EventType = "booking.created"
	EventBookingConfirmed    EventType = "booking.confirmed"
	EventBookingCancelled    EventType = "booking.cancelled"
	EventJoinRequestAccepted EventType = "join_request.accepted"
)

// BookingEvent is the payload of the booking.* events.
type BookingEvent struct {
	BookingID   string  `msgpack:"booking_id"`
	CourtID     string  `msgpack:"court_id"`
	VenueID     string  `msgpack:"venue_id"`
	UserID      string  `msgpack:"user_id"`
	ActorID     string  `msgpack:"actor_id"`
	Date        string  `msgpack:"date"`
	StartTime   string  `msgpack:"start_time"`
	EndTime     string  `msgpack:"end_time"`
	Status      string  `msgpack:"status"`
	TotalAmount float64 `msgpack:"total_amount"`
	OccurredAt  int64   `msgpack:"occurred_at"`
}

// JoinRequestEvent is the payload of join_request.accepted.
type JoinRequestEvent struct {
	RequestID     string `msgpack:"request_id"`
	InviteID      string `msgpack:"invite_id"`
	PlayersCount  int    `msgpack:"players_count"`
	PlayersJoined int    `msgpack:"players_joined"`
	PlayersLeft   int    `msgpack:"players_left"`
	OccurredAt    int64  `msgpack:"occurred_at"`
}
