// Package app initializes and holds long-lived application services, acting as a dependency injection container.
package app

import (
	"context"
	"fmt"

	"github.com/dilg-bohol/issuance-harvester/internal/blob"
	"github.com/dilg-bohol/issuance-harvester/internal/issuance"
	"github.com/dilg-bohol/issuance-harvester/internal/logging"
	"github.com/dilg-bohol/issuance-harvester/internal/notify"
	"github.com/dilg-bohol/issuance-harvester/internal/store"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// App holds all the shared, long-lived services for the application: the
// logger, the record store, the attachment blob provider, and the run
// notifier. It is initialized once at startup and passed to the commands
// that need it.
type App struct {
	logger   *zap.Logger
	store    issuance.RecordStore
	blobs    blob.Provider
	notifier notify.Notifier
}

// GetLogger returns the shared zap logger instance.
func (a *App) GetLogger() *zap.Logger {
	return a.logger
}

// GetStore exposes the configured record store.
func (a *App) GetStore() issuance.RecordStore {
	return a.store
}

// GetBlobs exposes the configured attachment storage provider.
func (a *App) GetBlobs() blob.Provider {
	return a.blobs
}

// GetNotifier returns the run-completion notifier.
func (a *App) GetNotifier() notify.Notifier {
	return a.notifier
}

// NewApp creates and initializes a new App based on the application's
// configuration. It reads provider selections from Viper and fails fast if
// any critical service cannot be initialized.
func NewApp(ctx context.Context) (*App, error) {
	l := logging.L
	l.Info("Initializing application services...")

	// 1. Attachment storage provider.
	blobProviderType := viper.GetString("storage.provider")
	var blobs blob.Provider
	var err error
	switch blobProviderType {
	case "local":
		dir := viper.GetString("storage.local.dir")
		if dir == "" {
			return nil, fmt.Errorf("storage provider is 'local' but storage.local.dir is not set")
		}
		l.Info("Using local attachment storage", zap.String("dir", dir))
		blobs, err = blob.NewLocalProvider(dir)
	case "gcs":
		bucketName := viper.GetString("storage.gcs.bucket_name")
		if bucketName == "" {
			return nil, fmt.Errorf("storage provider is 'gcs' but storage.gcs.bucket_name is not set")
		}
		l.Info("Using GCS attachment storage", zap.String("bucket", bucketName))
		blobs, err = blob.NewGCSProvider(ctx, bucketName)
	case "noop":
		l.Info("Using No-Op attachment storage. Downloaded binaries will be discarded.")
		blobs = &blob.NoOpProvider{}
	default:
		return nil, fmt.Errorf("unknown storage provider: %s", blobProviderType)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize attachment storage: %w", err)
	}

	// 2. Record store provider.
	dbProviderType := viper.GetString("database.provider")
	var recordStore issuance.RecordStore
	switch dbProviderType {
	case "postgres":
		dsn := viper.GetString("database.postgres.dsn")
		if dsn == "" {
			return nil, fmt.Errorf("database provider is 'postgres' but database.postgres.dsn is not set")
		}
		l.Info("Connecting to PostgreSQL...")
		pg, err := store.NewPostgresProvider(ctx, dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		tables := make([]string, 0, 4)
		for _, cat := range issuance.BuiltinCategories() {
			tables = append(tables, cat.Table)
		}
		if err := pg.EnsureSchema(ctx, tables); err != nil {
			return nil, fmt.Errorf("failed to ensure schema: %w", err)
		}
		recordStore = pg
	case "memory":
		l.Info("Using in-memory record store. Records will not survive a restart.")
		recordStore = store.NewMemoryProvider()
	case "noop":
		l.Info("Using No-Op record store. Records will be discarded.")
		recordStore = &store.NoOpProvider{}
	default:
		return nil, fmt.Errorf("unknown database provider: %s", dbProviderType)
	}

	// 3. Run notifier provider.
	notifyProviderType := viper.GetString("notify.provider")
	var notifier notify.Notifier
	switch notifyProviderType {
	case "pubsub":
		projectID := viper.GetString("notify.gcp.project_id")
		topicID := viper.GetString("notify.gcp.topic_id")
		if projectID == "" || topicID == "" {
			return nil, fmt.Errorf("notify provider is 'pubsub' but project_id or topic_id is not set")
		}
		l.Info("Connecting to GCP Pub/Sub", zap.String("topic", topicID))
		notifier, err = notify.NewPubSubNotifier(ctx, projectID, topicID)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize notifier: %w", err)
		}
	case "noop":
		notifier = &notify.NoOpNotifier{}
	default:
		return nil, fmt.Errorf("unknown notify provider: %s", notifyProviderType)
	}

	l.Info("Application services initialized successfully.")

	return &App{
		logger:   l,
		store:    recordStore,
		blobs:    blobs,
		notifier: notifier,
	}, nil
}

// Close gracefully shuts down all services in the App container.
// It is called by a Cobra hook after the command finishes execution.
func (a *App) Close() {
	a.GetLogger().Info("Shutting down application services...")
	if err := a.GetStore().Close(); err != nil {
		a.GetLogger().Warn("Error closing record store", zap.Error(err))
	}
	if err := a.GetNotifier().Close(); err != nil {
		a.GetLogger().Warn("Error closing notifier", zap.Error(err))
	}

	// Flush buffered log entries before the process exits.
	if err := a.GetLogger().Sync(); err != nil {
		// Best effort; logging itself may be failing.
		a.GetLogger().Warn("Error syncing logger on shutdown", zap.Error(err))
	}
}
