// Package notify publishes run-completion events so downstream consumers can
// react to finished harvests without polling the store.
package notify

import (
	"context"
	"time"
)

// RunEvent summarizes one finished scrape-and-forward cycle.
type RunEvent struct {
	RunID       string    `json:"run_id"`
	Category    string    `json:"category"`
	Pages       int       `json:"pages"`
	Rows        int       `json:"rows"`
	Upserted    int       `json:"upserted"`
	Attachments int       `json:"attachments"`
	Forwarded   int       `json:"forwarded"`
	FinishedAt  time.Time `json:"finished_at"`
}

// Notifier publishes run events.
type Notifier interface {
	Publish(ctx context.Context, event RunEvent) error
	Close() error
}

// NoOpNotifier drops every event. It is the default provider.
type NoOpNotifier struct{}

// Publish for NoOpNotifier does nothing and returns no error.
func (n *NoOpNotifier) Publish(_ context.Context, _ RunEvent) error { return nil }

// Close for NoOpNotifier does nothing and returns no error.
func (n *NoOpNotifier) Close() error { return nil }
