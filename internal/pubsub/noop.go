package pubsub

import "github.com/charmbracelet/log"

// noop drops every event. It stands in when no GCP project is configured.
type noop struct{}

func NewNoop() PubSubClient { return noop{} }

func (noop) SendMessage(topic EventType, data any) error {
	log.Debug("Pub/Sub disabled, dropping event", "topic", topic)
	return nil
}

func (noop) Close() error { return nil }
