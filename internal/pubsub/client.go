package pubsub

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/pubsub"
	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"
)

const publishTimeout = 10 * time.Second

func New(ctx context.Context, projectID string) (PubSubClient, error) {
	pubSubC, err := pubsub.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create pubsub client: %w", err)
	}
	log.Info("Pub/Sub client created", "project", projectID)
	return &client{
		client: pubSubC,
		topics: make(map[EventType]*pubsub.Topic),
	}, nil
}

func (c *client) topic(t EventType) *pubsub.Topic {
	c.mu.Lock()
	defer c.mu.Unlock()
	if topic, ok := c.topics[t]; ok {
		return topic
	}
	topic := c.client.Topic(string(t))
	c.topics[t] = topic
	return topic
}

func (c *client) SendMessage(topic EventType, data any) error {
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	message, err := newMessage(topic, data)
	if err != nil {
		log.Error("MessagePack marshal error", "error", err, "topic", topic)
		return err
	}
	result := c.topic(topic).Publish(ctx, message)
	serverID, err := result.Get(ctx)
	if err != nil {
		log.Error("Failed to publish message", "error", err, "topic", topic)
		return err
	}
	log.Debug("SendMessage", "topic", topic, "serverID", serverID)
	return nil
}

func (c *client) Close() error {
	c.mu.Lock()
	for _, t := range c.topics {
		t.Stop()
	}
	c.mu.Unlock()
	return c.client.Close()
}

// newMessage encodes data as MessagePack and tags it with the event name so
// subscribers can route without decoding.
func newMessage(topic EventType, data any) (*pubsub.Message, error) {
	payload, err := msgpack.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s event: %w", topic, err)
	}
	return &pubsub.Message{
		Data:       payload,
		Attributes: map[string]string{"event": string(topic)},
	}, nil
}
