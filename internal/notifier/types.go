package notifier

import "fmt"

// Recipient is who a notification is addressed to.
type Recipient struct {
	UserID string
	Name   string
	Email  string
}

// Booking is the snapshot of a booking carried by notifications.
type Booking struct {
	ID          string
	CourtID     string
	CourtName   string
	VenueName   string
	PlayerName  string
	Date        string
	StartTime   string
	EndTime     string
	TotalAmount float64
	Status      string
	Notes       string
}

func (b Booking) TimeRange() string {
	return fmt.Sprintf("%s - %s", b.StartTime, b.EndTime)
}

// Where names the court for humans, falling back to ids.
func (b Booking) Where() string {
	court := b.CourtName
	if court == "" {
		court = b.CourtID
	}
	if b.VenueName == "" {
		return court
	}
	return fmt.Sprintf("%s, %s", court, b.VenueName)
}
