package blob

import (
	"context"
	"fmt"

	"cloud.google.com/go/storage"
	"github.com/dilg-bohol/issuance-harvester/internal/logging"
	"go.uber.org/zap"
)

// GCSProvider stores attachments in a Google Cloud Storage bucket.
type GCSProvider struct {
	Client     *storage.Client
	BucketName string
}

// NewGCSProvider initializes a GCS client and verifies bucket access.
// Authentication is handled via Application Default Credentials.
func NewGCSProvider(ctx context.Context, bucketName string) (*GCSProvider, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client: %w", err)
	}

	// Fail fast on startup if the bucket is missing or inaccessible.
	bkt := client.Bucket(bucketName)
	if _, err := bkt.Attrs(ctx); err != nil {
		if cerr := client.Close(); cerr != nil {
			logging.L.Warn("Failed to close GCS client after bucket check failure", zap.Error(cerr))
		}
		return nil, fmt.Errorf("failed to get GCS bucket '%s' attributes: %w", bucketName, err)
	}

	return &GCSProvider{
		Client:     client,
		BucketName: bucketName,
	}, nil
}

// Save uploads the attachment to the configured bucket.
func (g *GCSProvider) Save(ctx context.Context, objectName string, data []byte) error {
	wc := g.Client.Bucket(g.BucketName).Object(objectName).NewWriter(ctx)
	if _, err := wc.Write(data); err != nil {
		if cerr := wc.Close(); cerr != nil {
			logging.L.Warn("Failed to close GCS writer after write failure", zap.Error(cerr))
		}
		return fmt.Errorf("failed to write data to GCS object %s: %w", objectName, err)
	}
	// Close finalizes the upload and flushes buffered data.
	if err := wc.Close(); err != nil {
		return fmt.Errorf("failed to close GCS writer for object %s: %w", objectName, err)
	}
	return nil
}
