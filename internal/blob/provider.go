// Package blob stores downloaded attachment binaries. One Provider interface
// covers the local filesystem default, GCS, and a no-op for dry runs, so
// every category goes through the same storage abstraction.
package blob

import "context"

// Provider writes an attachment under an object name such as
// "republic_acts/ra-11032.pdf".
type Provider interface {
	Save(ctx context.Context, objectName string, data []byte) error
}

// NoOpProvider discards attachment bytes. Download links are still recorded.
type NoOpProvider struct{}

// Save for NoOpProvider does nothing and returns no error.
func (n *NoOpProvider) Save(_ context.Context, _ string, _ []byte) error { return nil }
