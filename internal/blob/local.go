package blob

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// LocalProvider stores attachments under a root directory on the local
// filesystem, one subdirectory per category.
type LocalProvider struct {
	root string
}

// NewLocalProvider returns a provider rooted at dir, creating it if missing.
func NewLocalProvider(root string) (*LocalProvider, error) {
	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, fmt.Errorf("create attachment root %s: %w", root, err)
	}
	return &LocalProvider{root: root}, nil
}

// Save writes the attachment to <root>/<objectName>. Directory creation is
// idempotent; an existing file with the same name is overwritten.
func (l *LocalProvider) Save(ctx context.Context, objectName string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context canceled: %w", err)
	}
	target := filepath.Join(l.root, filepath.FromSlash(objectName))
	if err := os.MkdirAll(filepath.Dir(target), 0o750); err != nil {
		return fmt.Errorf("creating attachment dir for %s: %w", target, err)
	}
	if err := os.WriteFile(target, data, 0o600); err != nil {
		return fmt.Errorf("writing attachment to %s: %w", target, err)
	}
	return nil
}
