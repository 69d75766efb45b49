// Package forward delivers the persisted issuance tables to the downstream
// webhook consumer as one JSON batch per category.
package forward

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dilg-bohol/issuance-harvester/internal/issuance"
	"go.uber.org/zap"
)

// ErrNothingToSend signals an empty table. No HTTP call is made; the caller
// decides whether that matters.
var ErrNothingToSend = errors.New("no records to forward")

// RecordSource reads back the persisted table for a category.
type RecordSource interface {
	List(ctx context.Context, table string) ([]issuance.Record, error)
}

// payloadRecord is the wire shape the downstream consumer expects. The
// locally stored filename is deliberately excluded; consumers follow the
// remote download link. Category is only populated for archives that render
// one (legal opinions today) and is omitted otherwise.
type payloadRecord struct {
	Title        string `json:"title"`
	Link         string `json:"link"`
	Category     string `json:"category,omitempty"`
	Reference    string `json:"reference"`
	Date         string `json:"date"`
	DownloadLink string `json:"download_link"`
}

// Forwarder posts full-table batches to the downstream endpoint.
type Forwarder struct {
	baseURL string
	client  *http.Client
	source  RecordSource
	logger  *zap.Logger
}

// New builds a Forwarder targeting the downstream base URL.
func New(baseURL string, timeout time.Duration, source RecordSource, logger *zap.Logger) *Forwarder {
	return &Forwarder{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		source:  source,
		logger:  logger,
	}
}

// Forward reads the category's full table and POSTs it as one batch. It
// returns the number of records sent. The batch is the unit of delivery: a
// non-2xx response is a delivery failure with no retry and no partial
// re-send; the next scheduled run re-sends the whole current table.
func (f *Forwarder) Forward(ctx context.Context, cat issuance.Category) (int, error) {
	records, err := f.source.List(ctx, cat.Table)
	if err != nil {
		return 0, fmt.Errorf("list %s: %w", cat.Table, err)
	}
	if len(records) == 0 {
		f.logger.Warn("Nothing to send", zap.String("category", cat.Key))
		return 0, ErrNothingToSend
	}

	payload := make([]payloadRecord, 0, len(records))
	for _, rec := range records {
		payload = append(payload, payloadRecord{
			Title:        rec.Title,
			Link:         rec.Link,
			Category:     rec.Category,
			Reference:    rec.Reference,
			Date:         rec.Date,
			DownloadLink: rec.DownloadLink,
		})
	}
	body, err := json.Marshal(map[string][]payloadRecord{cat.PayloadKey: payload})
	if err != nil {
		return 0, fmt.Errorf("marshal batch: %w", err)
	}

	url := f.baseURL + cat.WebhookPath
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("new forward request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	f.logger.Info("Forwarding batch",
		zap.String("category", cat.Key),
		zap.String("url", url),
		zap.Int("records", len(payload)),
	)
	resp, err := f.client.Do(req)
	if err != nil {
		forwardFailures.WithLabelValues(cat.Key).Inc()
		return 0, fmt.Errorf("post batch to %s: %w", url, err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			f.logger.Debug("Failed to close forward response body", zap.Error(cerr))
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		forwardFailures.WithLabelValues(cat.Key).Inc()
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return 0, fmt.Errorf("downstream rejected batch for %s: status %d: %s",
			cat.Key, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	forwardBatches.WithLabelValues(cat.Key).Inc()
	return len(payload), nil
}
