package nats

import (
	"context"
	"encoding/json"
	"fmt"
)

// Publisher provides typed methods for publishing events to NATS JetStream.
type Publisher struct {
	client *Client
}

// NewPublisher creates a new Publisher. A nil client yields a no-op
// publisher so the service runs without NATS configured.
func NewPublisher(client *Client) *Publisher {
	return &Publisher{client: client}
}

// PublishProjectGenerated publishes a project.generated event.
func (p *Publisher) PublishProjectGenerated(ctx context.Context, event ProjectGeneratedEvent) error {
	if p.client == nil {
		return nil
	}
	return p.publish(ctx, SubjectProjectGenerated, event)
}

func (p *Publisher) publish(ctx context.Context, subject string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshaling event for %s: %w", subject, err)
	}
	_, err = p.client.js.Publish(ctx, subject, payload)
	if err != nil {
		return fmt.Errorf("publishing to %s: %w", subject, err)
	}
	return nil
}
