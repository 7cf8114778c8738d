package notify

import (
	"context"
	"fmt"

	"cloud.google.com/go/pubsub"
)

// PubSubConfig names the downstream topic for fan-out consumers.
type PubSubConfig struct {
	ProjectID string
	TopicID   string
}

// PubSub publishes rendered messages to a Pub/Sub topic so other consumers
// (archival, additional channels) can subscribe alongside the chat feed.
type PubSub struct {
	client *pubsub.Client
	topic  *pubsub.Topic
}

// NewPubSub connects the publisher.
func NewPubSub(ctx context.Context, cfg PubSubConfig) (*PubSub, error) {
	if cfg.ProjectID == "" || cfg.TopicID == "" {
		return nil, fmt.Errorf("pubsub project and topic are required")
	}
	client, err := pubsub.NewClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("pubsub client: %w", err)
	}
	return &PubSub{
		client: client,
		topic:  client.Topic(cfg.TopicID),
	}, nil
}

// Send publishes one message and waits for the server ack.
func (p *PubSub) Send(ctx context.Context, text string) error {
	result := p.topic.Publish(ctx, &pubsub.Message{Data: []byte(text)})
	if _, err := result.Get(ctx); err != nil {
		return fmt.Errorf("pubsub publish: %w", err)
	}
	return nil
}

// Close flushes and releases the client.
func (p *PubSub) Close() error {
	p.topic.Stop()
	return p.client.Close()
}
