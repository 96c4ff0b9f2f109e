package email

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/courtside/internal/metrics"
	"github.com/mauv0809/courtside/internal/notifier"
)

const (
	channel     = "email"
	sendTimeout = 10 * time.Second
)

var _ notifier.Notifier = &Notifier{}

// Notifier delivers booking notifications by email.
type Notifier struct {
	sender  EmailSender
	metrics metrics.Metrics
}

func NewNotifier(sender EmailSender, metrics metrics.Metrics) *Notifier {
	return &Notifier{sender: sender, metrics: metrics}
}

func (n *Notifier) send(ctx context.Context, to notifier.Recipient, msg Message) error {
	if to.Email == "" {
		log.Debug("Skipping email, recipient has no address", "user", to.UserID, "subject", msg.Subject)
		return nil
	}

	// Detach from the request so a finished handler does not abort the send.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sendTimeout)
	defer cancel()

	if err := n.sender.Send(ctx, to.Email, msg.Subject, msg.Body); err != nil {
		n.metrics.IncNotifFailed(channel)
		return err
	}
	n.metrics.IncNotifSent(channel)
	return nil
}

func (n *Notifier) SendBookingConfirmation(ctx context.Context, to notifier.Recipient, b notifier.Booking) error {
	return n.send(ctx, to, BuildBookingReceived(to, b))
}

func (n *Notifier) SendBookingStatusUpdate(ctx context.Context, to notifier.Recipient, b notifier.Booking) error {
	return n.send(ctx, to, BuildStatusUpdate(to, b))
}

func (n *Notifier) SendBookingReminder(ctx context.Context, to notifier.Recipient, b notifier.Booking) error {
	return n.send(ctx, to, BuildReminder(to, b))
}

func (n *Notifier) NotifyVenueOwner(ctx context.Context, owner notifier.Recipient, b notifier.Booking) error {
	return n.send(ctx, owner, BuildOwnerAlert(owner, b))
}
