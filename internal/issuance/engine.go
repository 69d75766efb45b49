package issuance

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// EngineConfig holds the per-run knobs shared by all categories.
type EngineConfig struct {
	// Origin is the scheme+host relative links are rebased against.
	Origin string
	// Search optionally restricts rows to those whose title or reference
	// contains the term (case-insensitive).
	Search string
}

// Engine runs the scrape pipeline for one category: paginate the listing,
// extract rows, resolve attachments, and upsert into the store.
type Engine struct {
	cat       Category
	fetcher   PageFetcher
	extractor *Extractor
	resolver  *Resolver
	store     RecordStore
	retry     *ExponentialRetryPolicy
	logger    *zap.Logger
}

// NewEngine wires the pipeline stages for one category.
func NewEngine(
	cat Category,
	cfg EngineConfig,
	fetcher PageFetcher,
	recordStore RecordStore,
	blobs BlobStore,
	logger *zap.Logger,
) (*Engine, error) {
	if err := cat.Validate(); err != nil {
		return nil, fmt.Errorf("validate category: %w", err)
	}
	if cfg.Origin == "" {
		return nil, fmt.Errorf("engine origin must be set")
	}
	return &Engine{
		cat:       cat,
		fetcher:   fetcher,
		extractor: NewExtractor(cfg.Origin, cat.Selectors, cfg.Search),
		resolver:  NewResolver(fetcher, blobs, cfg.Origin, cat, logger),
		store:     recordStore,
		retry:     NewExponentialRetryPolicy(),
		logger:    logger,
	}, nil
}

// Run executes one full scrape for the category. Listing-page failures abort
// the remainder of the run; records upserted from earlier pages stay
// persisted. Row-level failures never escalate past their row.
func (e *Engine) Run(ctx context.Context) (RunReport, error) {
	report := RunReport{RunID: uuid.NewString(), Category: e.cat.Key}
	seen := make(map[string]struct{})

	pageURL := e.cat.StartURL
	for page := 1; pageURL != ""; page++ {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		e.logger.Info("Fetching listing page",
			zap.String("category", e.cat.Key),
			zap.String("run_id", report.RunID),
			zap.Int("page", page),
			zap.String("url", pageURL),
		)

		body, err := e.fetchListing(ctx, pageURL)
		if err != nil {
			fetchErrors.WithLabelValues(e.cat.Key).Inc()
			return report, fmt.Errorf("fetch listing page %d: %w", page, err)
		}
		pagesFetched.WithLabelValues(e.cat.Key).Inc()
		report.Pages++

		doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
		if err != nil {
			return report, fmt.Errorf("parse listing page %d: %w", page, err)
		}
		if !e.extractor.HasListing(doc) {
			e.logger.Warn("Listing container not found; ending run",
				zap.String("category", e.cat.Key),
				zap.Int("page", page),
			)
			break
		}

		rows, discarded := e.extractor.Rows(doc)
		rowsExtracted.WithLabelValues(e.cat.Key).Add(float64(len(rows)))
		rowsDiscarded.WithLabelValues(e.cat.Key).Add(float64(discarded))
		report.Rows += len(rows)
		report.Discarded += discarded

		for i := range rows {
			rec := rows[i]
			key := rec.Key()
			if _, dup := seen[key]; dup {
				duplicatesDropped.WithLabelValues(e.cat.Key).Inc()
				report.Duplicates++
				continue
			}
			seen[key] = struct{}{}

			e.resolver.Resolve(ctx, &rec)
			if rec.File != "" {
				report.Attachments++
			}

			if err := e.store.Upsert(ctx, e.cat.Table, rec); err != nil {
				return report, fmt.Errorf("upsert record %q: %w", key, err)
			}
			recordsUpserted.WithLabelValues(e.cat.Key).Inc()
			report.Upserted++
		}

		next, found := e.extractor.NextPageURL(doc)
		switch {
		case !found:
			e.logger.Info("No more pages to scrape", zap.String("category", e.cat.Key))
			pageURL = ""
		case next == "":
			e.logger.Info("Next page link found, but no usable href; stopping",
				zap.String("category", e.cat.Key))
			pageURL = ""
		default:
			pageURL = next
		}
	}

	return report, nil
}

func (e *Engine) fetchListing(ctx context.Context, url string) ([]byte, error) {
	for attempt := 0; ; attempt++ {
		page, err := e.fetcher.Fetch(ctx, url)
		if err == nil {
			return page.Body, nil
		}
		if !e.retry.ShouldRetry(err, attempt+1) {
			return nil, err
		}
		backoff := e.retry.Backoff(attempt)
		e.logger.Warn("Listing fetch failed; retrying",
			zap.String("url", url),
			zap.Int("attempt", attempt+1),
			zap.Duration("backoff", backoff),
			zap.Error(err),
		)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}
}
