package issuance

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	pagesFetched = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "harvester_pages_fetched_total",
		Help: "The total number of listing pages fetched.",
	}, []string{"category"})
	fetchErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "harvester_fetch_errors_total",
		Help: "The total number of listing-page fetches that failed after retries.",
	}, []string{"category"})
	rowsExtracted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "harvester_rows_extracted_total",
		Help: "The total number of candidate rows extracted from listing pages.",
	}, []string{"category"})
	rowsDiscarded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "harvester_rows_discarded_total",
		Help: "The total number of rows discarded for a missing title or link.",
	}, []string{"category"})
	duplicatesDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "harvester_duplicates_dropped_total",
		Help: "The total number of rows dropped by in-run deduplication.",
	}, []string{"category"})
	recordsUpserted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "harvester_records_upserted_total",
		Help: "The total number of records written through to the store.",
	}, []string{"category"})
	attachmentsSaved = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "harvester_attachments_saved_total",
		Help: "The total number of attachment binaries stored.",
	}, []string{"category"})
	attachmentErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "harvester_attachment_errors_total",
		Help: "The total number of attachment resolutions that degraded a row.",
	}, []string{"category"})
)
