// Package store persists issuance records. Implementations share the
// issuance.RecordStore contract: a null-safe upsert keyed by Record.Key and a
// full-table read-back for forwarding.
package store

import (
	"context"

	"github.com/dilg-bohol/issuance-harvester/internal/issuance"
)

// NoOpProvider discards every write. It is useful for dry runs and tests.
type NoOpProvider struct{}

// Upsert for NoOpProvider does nothing.
func (n *NoOpProvider) Upsert(_ context.Context, _ string, _ issuance.Record) error {
	return nil
}

// List for NoOpProvider always returns an empty table.
func (n *NoOpProvider) List(_ context.Context, _ string) ([]issuance.Record, error) {
	return nil, nil
}

// Close for NoOpProvider does nothing.
func (n *NoOpProvider) Close() error { return nil }
