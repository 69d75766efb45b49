// Package cmd defines and implements the CLI commands for the issuance-harvester executable.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dilg-bohol/issuance-harvester/internal/forward"
	"github.com/dilg-bohol/issuance-harvester/internal/issuance"
	"github.com/dilg-bohol/issuance-harvester/internal/notify"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var harvestCategories []string

// newHarvestCmd creates and configures the 'harvest' subcommand, which runs
// one scrape-and-forward cycle for the selected categories.
func newHarvestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "harvest",
		Short: "Runs one scrape-and-forward cycle",
		Long: `Scrapes the configured issuance archives once, upserting records and
downloading attachments, then forwards each category's full table to the
downstream webhook consumer.`,

		RunE: runHarvestCommand,
	}
	cmd.Flags().StringSliceVar(&harvestCategories, "category", nil,
		"category keys to harvest (ra, pd, lo, jc); defaults to the configured set")
	return cmd
}

func runHarvestCommand(cmd *cobra.Command, _ []string) error {
	appInstance, err := resolveApp(cmd.Context())
	if err != nil {
		return err
	}

	cats, err := resolveCategories(harvestCategories)
	if err != nil {
		return err
	}

	p, err := newPipeline(appInstance)
	if err != nil {
		return err
	}

	return harvestAll(cmd.Context(), appInstance.GetLogger(), p.runCategory, cats)
}

// harvestAll runs every category to completion. Categories are independent:
// one category's failure never prevents the others from running, so errors
// are collected and returned joined.
func harvestAll(ctx context.Context, logger *zap.Logger, run func(context.Context, issuance.Category) error, cats []issuance.Category) error {
	var errs []error
	for _, cat := range cats {
		if err := run(ctx, cat); err != nil {
			logger.Error("Category run failed",
				zap.String("category", cat.Key),
				zap.Error(err),
			)
			errs = append(errs, fmt.Errorf("%s: %w", cat.Key, err))
		}
	}
	return errors.Join(errs...)
}

// resolveCategories maps category keys (from the flag, falling back to
// configuration) to their built-in definitions.
func resolveCategories(keys []string) ([]issuance.Category, error) {
	if len(keys) == 0 {
		keys = viper.GetStringSlice("harvester.categories")
	}
	cats := make([]issuance.Category, 0, len(keys))
	for _, key := range keys {
		cat, ok := issuance.CategoryByKey(key)
		if !ok {
			return nil, fmt.Errorf("unknown category %q", key)
		}
		cats = append(cats, cat)
	}
	if len(cats) == 0 {
		return nil, errors.New("no categories configured")
	}
	return cats, nil
}

// pipeline bundles the stages shared by the harvest and schedule commands.
type pipeline struct {
	app       App
	cfg       issuance.EngineConfig
	fetcher   issuance.PageFetcher
	forwarder *forward.Forwarder
}

func newPipeline(appInstance App) (*pipeline, error) {
	fetcher, err := issuance.NewCollyFetcher(issuance.FetcherConfig{
		UserAgent:    viper.GetString("harvester.user_agent"),
		Timeout:      viper.GetDuration("harvester.request_timeout"),
		MaxBodyBytes: viper.GetInt("harvester.max_attachment_bytes"),
	}, appInstance.GetLogger())
	if err != nil {
		return nil, fmt.Errorf("init fetcher: %w", err)
	}

	forwarder := forward.New(
		viper.GetString("forward.base_url"),
		viper.GetDuration("forward.timeout"),
		appInstance.GetStore(),
		appInstance.GetLogger(),
	)

	return &pipeline{
		app: appInstance,
		cfg: issuance.EngineConfig{
			Origin: viper.GetString("harvester.source_origin"),
			Search: viper.GetString("harvester.search"),
		},
		fetcher:   fetcher,
		forwarder: forwarder,
	}, nil
}

// runCategory executes one full cycle for a category: scrape, forward,
// notify. An empty table after the scrape is a non-fatal condition.
func (p *pipeline) runCategory(ctx context.Context, cat issuance.Category) error {
	logger := p.app.GetLogger()

	engine, err := issuance.NewEngine(cat, p.cfg, p.fetcher, p.app.GetStore(), p.app.GetBlobs(), logger)
	if err != nil {
		return fmt.Errorf("init engine for %s: %w", cat.Key, err)
	}

	report, err := engine.Run(ctx)
	if err != nil {
		return fmt.Errorf("scrape %s: %w", cat.Key, err)
	}

	forwarded, err := p.forwarder.Forward(ctx, cat)
	if err != nil && !errors.Is(err, forward.ErrNothingToSend) {
		return fmt.Errorf("forward %s: %w", cat.Key, err)
	}

	event := notify.RunEvent{
		RunID:       report.RunID,
		Category:    report.Category,
		Pages:       report.Pages,
		Rows:        report.Rows,
		Upserted:    report.Upserted,
		Attachments: report.Attachments,
		Forwarded:   forwarded,
		FinishedAt:  time.Now().UTC(),
	}
	if err := p.app.GetNotifier().Publish(ctx, event); err != nil {
		logger.Warn("Failed to publish run event", zap.String("category", cat.Key), zap.Error(err))
	}

	logger.Info("Category run finished",
		zap.String("category", cat.Key),
		zap.String("run_id", report.RunID),
		zap.Int("pages", report.Pages),
		zap.Int("rows", report.Rows),
		zap.Int("discarded", report.Discarded),
		zap.Int("duplicates", report.Duplicates),
		zap.Int("upserted", report.Upserted),
		zap.Int("attachments", report.Attachments),
		zap.Int("forwarded", forwarded),
	)
	return nil
}
