// Package config is responsible for initializing the application's configuration.
// It uses the Viper library to read settings from a config file, environment
// variables, and command-line flags, providing a unified configuration system.
package config

import (
	"strings"

	"github.com/dilg-bohol/issuance-harvester/internal/logging"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// InitConfig initializes the application's configuration using Viper.
// It sets up default values, defines configuration search paths, and enables
// reading from environment variables. This function is designed to be called
// once at application startup so that configuration is loaded and available
// to all other packages.
func InitConfig() {
	// --- Set Search Paths ---
	viper.SetConfigName("config")
	viper.AddConfigPath(".")                // Current working directory
	viper.AddConfigPath("/etc/harvester/")  // System-wide configuration
	viper.AddConfigPath("$HOME/.harvester") // User-specific configuration

	// --- Set Defaults ---
	// The source site rejects obvious bot identities, so the default user
	// agent is a plain browser string.
	const defaultUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
	viper.SetDefault("harvester.user_agent", defaultUA)
	// The source site is slow; keep the per-request timeout generous.
	viper.SetDefault("harvester.request_timeout", "60s")
	viper.SetDefault("harvester.interval", "1h")
	viper.SetDefault("harvester.search", "")
	viper.SetDefault("harvester.categories", []string{"ra", "pd", "lo", "jc"})
	viper.SetDefault("harvester.source_origin", "https://dilg.gov.ph")
	viper.SetDefault("harvester.max_attachment_bytes", 25*1024*1024)

	viper.SetDefault("forward.base_url", "http://127.0.0.1:8000")
	viper.SetDefault("forward.timeout", "30s")

	viper.SetDefault("storage.provider", "local")
	viper.SetDefault("storage.local.dir", "data/attachments")

	viper.SetDefault("database.provider", "memory")

	viper.SetDefault("notify.provider", "noop")

	viper.SetDefault("server.addr", ":8080")

	// --- Environment Variables ---
	viper.SetEnvPrefix("HARVESTER") // e.g., HARVESTER_FORWARD_BASE_URL=...
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// --- Read Config File ---
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found; defaults and environment variables apply.
			logging.L.Warn("Config file not found; using defaults and environment variables.")
		} else {
			logging.L.Error("Error reading config file", zap.Error(err))
		}
	} else {
		logging.L.Info("Using config file", zap.String("path", viper.ConfigFileUsed()))
	}
}
