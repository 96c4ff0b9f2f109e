package slack

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/courtside/internal/metrics"
	"github.com/mauv0809/courtside/internal/notifier"
	"github.com/slack-go/slack"
)

const channel = "slack"

// slackClient is an interface that contains the methods from the slack.Client that we use.
// This allows for easy mocking in tests.
type slackClient interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

var _ notifier.Notifier = &Notifier{}

// Notifier posts venue-owner alerts to a Slack channel. Player-facing
// notifications are left to the email channel.
type Notifier struct {
	api       slackClient
	channelID string
	metrics   metrics.Metrics
	dryRun    bool
}

// NewNotifier creates a new Notifier.
func NewNotifier(token, channelID string, metrics metrics.Metrics, dryRun bool) *Notifier {
	return &Notifier{
		api:       slack.New(token),
		channelID: channelID,
		metrics:   metrics,
		dryRun:    dryRun,
	}
}

// NewNotifierWithAPI creates a new Notifier with a specific slack.Client instance.
// Useful for tests that need to intercept API calls.
func NewNotifierWithAPI(api slackClient, channelID string, metrics metrics.Metrics, dryRun bool) *Notifier {
	return &Notifier{
		api:       api,
		channelID: channelID,
		metrics:   metrics,
		dryRun:    dryRun,
	}
}

func (s *Notifier) sendMessage(ctx context.Context, message slack.Message) (string, string, error) {
	if s.dryRun {
		jsonMsg, _ := json.MarshalIndent(message, "", "  ")
		log.Info("[Dry Run] Would send Slack message", "channel", s.channelID, "message", string(jsonMsg))
		return "dry-run-channel", "dry-run-ts", nil
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()

	channelID, timestamp, err := s.api.PostMessageContext(
		ctx,
		s.channelID,
		slack.MsgOptionBlocks(message.Blocks.BlockSet...),
		slack.MsgOptionAsUser(true),
	)
	if err != nil {
		s.metrics.IncNotifFailed(channel)
		log.Error("Failed to send Slack message", "error", err, "channel", s.channelID)
		return "", "", fmt.Errorf("failed to post message: %w", err)
	}

	s.metrics.IncNotifSent(channel)
	log.Info("Successfully sent Slack message", "channel", channelID, "timestamp", timestamp)
	return channelID, timestamp, nil
}

// SendBookingConfirmation is player-facing and not posted to Slack.
func (s *Notifier) SendBookingConfirmation(context.Context, notifier.Recipient, notifier.Booking) error {
	return nil
}

// SendBookingReminder is player-facing and not posted to Slack.
func (s *Notifier) SendBookingReminder(context.Context, notifier.Recipient, notifier.Booking) error {
	return nil
}

// SendBookingStatusUpdate keeps the owners' channel in sync with decisions.
func (s *Notifier) SendBookingStatusUpdate(ctx context.Context, to notifier.Recipient, b notifier.Booking) error {
	_, _, err := s.sendMessage(ctx, formatStatusUpdate(to, b))
	return err
}

func (s *Notifier) NotifyVenueOwner(ctx context.Context, owner notifier.Recipient, b notifier.Booking) error {
	_, _, err := s.sendMessage(ctx, formatOwnerAlert(owner, b))
	return err
}

func bookingDetails(b notifier.Booking) *slack.SectionBlock {
	text := fmt.Sprintf("Court: %s\nDate: %s\nTime: %s\nAmount: %.2f", b.Where(), b.Date, b.TimeRange(), b.TotalAmount)
	return slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", text, true, false), nil, nil)
}

// formatOwnerAlert creates the message for a booking waiting on the owner using Block Kit.
func formatOwnerAlert(owner notifier.Recipient, b notifier.Booking) slack.Message {
	blocks := make([]slack.Block, 0)

	headerText := slack.NewTextBlockObject("plain_text", "New booking request", true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))
	blocks = append(blocks, bookingDetails(b))

	player := b.PlayerName
	if player == "" {
		player = "A player"
	}
	var contextElements []slack.MixedElement
	contextElements = append(contextElements, slack.NewTextBlockObject("plain_text", fmt.Sprintf("%s is waiting for a decision.", player), true, false))
	if owner.Name != "" {
		contextElements = append(contextElements, slack.NewTextBlockObject("plain_text", fmt.Sprintf("Owner: %s", owner.Name), true, false))
	}
	if b.Notes != "" {
		contextElements = append(contextElements, slack.NewTextBlockObject("plain_text", fmt.Sprintf("Notes: %s", b.Notes), true, false))
	}
	blocks = append(blocks, slack.NewContextBlock("", contextElements...))

	return slack.NewBlockMessage(blocks...)
}

// formatStatusUpdate creates the message for a confirmed or cancelled booking.
func formatStatusUpdate(to notifier.Recipient, b notifier.Booking) slack.Message {
	blocks := make([]slack.Block, 0)

	var header string
	switch b.Status {
	case "CONFIRMED":
		header = "Booking confirmed"
	case "CANCELLED":
		header = "Booking cancelled"
	default:
		header = "Booking updated"
	}
	blocks = append(blocks, slack.NewHeaderBlock(slack.NewTextBlockObject("plain_text", header, true, false)))
	blocks = append(blocks, bookingDetails(b))

	player := to.Name
	if player == "" {
		player = b.PlayerName
	}
	if player != "" {
		blocks = append(blocks, slack.NewContextBlock("", slack.NewTextBlockObject("plain_text", fmt.Sprintf("Player: %s", player), true, false)))
	}

	return slack.NewBlockMessage(blocks...)
}
