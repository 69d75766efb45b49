package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"cloud.google.com/go/pubsub"
	"github.com/dilg-bohol/issuance-harvester/internal/logging"
	"go.uber.org/zap"
)

// PubSubNotifier publishes run events to a Google Cloud Pub/Sub topic.
type PubSubNotifier struct {
	client *pubsub.Client
	topic  *pubsub.Topic
}

// NewPubSubNotifier creates a Pub/Sub client and verifies the topic exists.
// It authenticates using Application Default Credentials.
func NewPubSubNotifier(ctx context.Context, projectID, topicID string) (*PubSubNotifier, error) {
	client, err := pubsub.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create pubsub client: %w", err)
	}
	return NewPubSubNotifierWithClient(ctx, client, topicID)
}

// NewPubSubNotifierWithClient wraps an existing Pub/Sub client. Tests use
// this with a pstest-backed client. Ownership of the client transfers to the
// notifier; it is closed on failure here and by Close otherwise.
func NewPubSubNotifierWithClient(ctx context.Context, client *pubsub.Client, topicID string) (*PubSubNotifier, error) {
	topic := client.Topic(topicID)
	exists, err := topic.Exists(ctx)
	if err != nil {
		if cerr := client.Close(); cerr != nil {
			logging.L.Warn("Failed to close pubsub client after topic check failure", zap.Error(cerr))
		}
		return nil, fmt.Errorf("failed to check for topic existence: %w", err)
	}
	if !exists {
		if cerr := client.Close(); cerr != nil {
			logging.L.Warn("Failed to close pubsub client after topic check failure", zap.Error(cerr))
		}
		return nil, fmt.Errorf("pubsub topic '%s' does not exist in project '%s'", topicID, client.Project())
	}

	return &PubSubNotifier{client: client, topic: topic}, nil
}

// Publish sends the run event as JSON and blocks until the server
// acknowledges it, so delivery failures surface to the caller. The context
// bounds the wait.
func (p *PubSubNotifier) Publish(ctx context.Context, event RunEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal run event: %w", err)
	}
	result := p.topic.Publish(ctx, &pubsub.Message{Data: payload})
	if _, err := result.Get(ctx); err != nil {
		return fmt.Errorf("failed to publish run event: %w", err)
	}
	return nil
}

// Close stops the topic's publisher and closes the client connection.
func (p *PubSubNotifier) Close() error {
	p.topic.Stop()
	if err := p.client.Close(); err != nil {
		return fmt.Errorf("failed to close pubsub client: %w", err)
	}
	return nil
}
