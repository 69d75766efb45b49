package cmd

import (
	"context"
	"fmt"

	"github.com/dilg-bohol/issuance-harvester/internal/app"
	"github.com/dilg-bohol/issuance-harvester/internal/blob"
	"github.com/dilg-bohol/issuance-harvester/internal/issuance"
	"github.com/dilg-bohol/issuance-harvester/internal/logging"
	"github.com/dilg-bohol/issuance-harvester/internal/notify"
	"github.com/dilg-bohol/issuance-harvester/pkg/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var cfgFile string

// appKeyType is the key for storing the App in the context.
type appKeyType string

const appKey appKeyType = "app"

// App defines the application interface that commands will use.
// This allows us to inject a mock app during tests.
type App interface {
	Close()
	GetLogger() *zap.Logger
	GetStore() issuance.RecordStore
	GetBlobs() blob.Provider
	GetNotifier() notify.Notifier
}

// newApp is the application factory. It's a variable so we can
// replace it with a mock factory in our tests.
var newApp func(ctx context.Context) (App, error) = func(ctx context.Context) (App, error) {
	return app.NewApp(ctx)
}

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "issuance-harvester",
		Short: "Scrapes government issuance archives and forwards them downstream.",
		Long: `issuance-harvester ingests the four issuance archives of the source
government site (republic acts, presidential directives, legal opinions,
joint circulars), persists the normalized records, downloads linked PDF
attachments, and forwards each category's full table to the downstream
webhook consumer.`,

		// This hook runs AFTER config is loaded but BEFORE the subcommand's RunE.
		// This is the place to build and inject the application.
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			appInstance, err := newApp(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to initialize application services: %w", err)
			}
			ctx := context.WithValue(cmd.Context(), appKey, appInstance)
			cmd.SetContext(ctx)
			return nil
		},

		// This hook ensures services are shut down gracefully.
		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			if appInstance, ok := cmd.Context().Value(appKey).(App); ok && appInstance != nil {
				appInstance.Close()
			}
		},
	}

	// Initialize Viper configuration.
	cobra.OnInitialize(config.InitConfig)

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.harvester/config.yaml)")

	cmd.AddCommand(newHarvestCmd())
	cmd.AddCommand(newScheduleCmd())

	return cmd
}

// Execute is the main entry point.
func Execute() {
	logging.InitLogger()

	if err := newRootCmd().Execute(); err != nil {
		logging.L.Fatal("Command execution failed", zap.Error(err))
	}
}

func resolveApp(ctx context.Context) (App, error) {
	appInstance, ok := ctx.Value(appKey).(App)
	if !ok || appInstance == nil {
		return nil, fmt.Errorf("application services not initialized")
	}
	return appInstance, nil
}
