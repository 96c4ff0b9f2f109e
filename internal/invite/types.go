package invite

import (
	"database/sql"
	"sync"
	"time"

	"github.com/mauv0809/courtside/internal/metrics"
	"github.com/mauv0809/courtside/internal/pubsub"
)

// store handles database operations for invites and their join requests
type store struct {
	db      *sql.DB
	mu      sync.RWMutex
	events  pubsub.PubSubClient
	metrics metrics.Metrics
	region  string
}

// RequestStatus is the state of a join request. Requests are resolved once.
type RequestStatus string

const (
	StatusPending  RequestStatus = "PENDING"
	StatusAccepted RequestStatus = "ACCEPTED"
	StatusDeclined RequestStatus = "DECLINED"
)

// Invite looks for co-players. PlayersJoined and PlayersLeft are derived
// from the accepted join requests every time an invite is read.
type Invite struct {
	ID              string    `json:"id"`
	CreatorID       string    `json:"creator_id"`
	Venue           string    `json:"venue"`
	Sport           string    `json:"sport"`
	Date            string    `json:"date"` // YYYY-MM-DD
	Time            string    `json:"time"` // HH:MM
	PlayersRequired int       `json:"players_required"`
	PlayersJoined   int       `json:"players_joined"`
	PlayersLeft     int       `json:"players_left"`
	ContactName     string    `json:"contact_name,omitempty"`
	ContactPhone    string    `json:"contact_phone,omitempty"`
	ContactEmail    string    `json:"contact_email,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// JoinRequest asks to add PlayersCount players to an invite. UserID is empty
// for anonymous joiners.
type JoinRequest struct {
	ID           string        `json:"id"`
	InviteID     string        `json:"invite_id"`
	UserID       string        `json:"user_id,omitempty"`
	JoinerName   string        `json:"joiner_name"`
	Contact      string        `json:"contact,omitempty"`
	PlayersCount int           `json:"players_count"`
	Status       RequestStatus `json:"status"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

type NewInvite struct {
	Venue           string `json:"venue"`
	Sport           string `json:"sport"`
	Date            string `json:"date"`
	Time            string `json:"time"`
	PlayersRequired int    `json:"players_required"`
	ContactName     string `json:"contact_name"`
	ContactPhone    string `json:"contact_phone"`
	ContactEmail    string `json:"contact_email"`
}

type NewJoinRequest struct {
	JoinerName   string `json:"joiner_name"`
	Contact      string `json:"contact"`
	PlayersCount int    `json:"players_count"`
}
