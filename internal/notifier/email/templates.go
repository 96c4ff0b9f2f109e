package email

import (
	"fmt"
	"strings"

	"github.com/mauv0809/courtside/internal/notifier"
)

type Message struct {
	Subject string
	Body    string
}

func details(b notifier.Booking) []string {
	lines := []string{
		fmt.Sprintf("Court: %s", b.Where()),
		fmt.Sprintf("Date: %s", b.Date),
		fmt.Sprintf("Time: %s", b.TimeRange()),
		fmt.Sprintf("Amount: %.2f", b.TotalAmount),
		fmt.Sprintf("Booking reference: %s", b.ID),
	}
	if notes := strings.TrimSpace(b.Notes); notes != "" {
		lines = append(lines, fmt.Sprintf("Notes: %s", notes))
	}
	return lines
}

func greeting(name string) string {
	if name == "" {
		return "Hi,"
	}
	return fmt.Sprintf("Hi %s,", name)
}

func BuildBookingReceived(to notifier.Recipient, b notifier.Booking) Message {
	lines := []string{
		greeting(to.Name),
		"",
		"We received your booking request. The venue will confirm it shortly.",
		"",
	}
	return Message{
		Subject: fmt.Sprintf("Booking request received - %s", b.Where()),
		Body:    strings.Join(append(lines, details(b)...), "\n"),
	}
}

func BuildStatusUpdate(to notifier.Recipient, b notifier.Booking) Message {
	var headline, subject string
	switch b.Status {
	case "CONFIRMED":
		headline = "Good news: your booking is confirmed."
		subject = "Booking confirmed"
	case "CANCELLED":
		headline = "Your booking was cancelled by the venue."
		subject = "Booking cancelled"
	default:
		headline = fmt.Sprintf("Your booking is now %s.", strings.ToLower(b.Status))
		subject = "Booking updated"
	}
	lines := []string{greeting(to.Name), "", headline, ""}
	return Message{
		Subject: fmt.Sprintf("%s - %s", subject, b.Where()),
		Body:    strings.Join(append(lines, details(b)...), "\n"),
	}
}

func BuildReminder(to notifier.Recipient, b notifier.Booking) Message {
	lines := []string{greeting(to.Name), "", "Reminder: you have a court booked tomorrow.", ""}
	return Message{
		Subject: fmt.Sprintf("Upcoming booking reminder - %s", b.Where()),
		Body:    strings.Join(append(lines, details(b)...), "\n"),
	}
}

func BuildOwnerAlert(to notifier.Recipient, b notifier.Booking) Message {
	player := b.PlayerName
	if player == "" {
		player = "A player"
	}
	lines := []string{
		greeting(to.Name),
		"",
		fmt.Sprintf("%s requested a booking that is waiting for your decision.", player),
		"",
	}
	return Message{
		Subject: fmt.Sprintf("New booking request - %s", b.Where()),
		Body:    strings.Join(append(lines, details(b)...), "\n"),
	}
}
