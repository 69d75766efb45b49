package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/dilg-bohol/issuance-harvester/internal/metrics"
	"github.com/dilg-bohol/issuance-harvester/internal/scheduler"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var scheduleCategories []string

// newScheduleCmd creates and configures the 'schedule' subcommand, which
// runs the periodic harvester plus the ops HTTP server.
func newScheduleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Runs the harvester on a fixed interval",
		Long: `Starts the periodic scheduler: every interval, each configured category
is scraped and forwarded. A tick is skipped for a category whose previous
run is still in flight. Also serves /healthz and /metrics.`,

		RunE: runScheduleCommand,
	}
	cmd.Flags().StringSliceVar(&scheduleCategories, "category", nil,
		"category keys to schedule (ra, pd, lo, jc); defaults to the configured set")
	return cmd
}

func runScheduleCommand(cmd *cobra.Command, _ []string) error {
	appInstance, err := resolveApp(cmd.Context())
	if err != nil {
		return err
	}
	logger := appInstance.GetLogger()

	cats, err := resolveCategories(scheduleCategories)
	if err != nil {
		return err
	}

	p, err := newPipeline(appInstance)
	if err != nil {
		return err
	}

	interval := viper.GetDuration("harvester.interval")
	if interval <= 0 {
		return fmt.Errorf("harvester.interval must be > 0")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	opsServer := newOpsServer(viper.GetString("server.addr"))
	go func() {
		logger.Info("Starting ops server", zap.String("addr", opsServer.Addr))
		if err := opsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Ops server failed", zap.Error(err))
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := opsServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Ops server shutdown failed", zap.Error(err))
		}
	}()

	sched := scheduler.New(interval, cats, p.runCategory, logger)
	if err := sched.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("run scheduler: %w", err)
	}

	logger.Info("Scheduler stopped.")
	return nil
}

func newOpsServer(addr string) *http.Server {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())
	return &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
