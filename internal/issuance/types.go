package issuance

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
)

// Record is one scraped issuance. Optional fields hold the empty string when
// the source markup does not provide them.
type Record struct {
	Reference    string
	Title        string
	Link         string
	Date         string
	Category     string
	DownloadLink string
	File         string
}

// Key returns the dedup and upsert key for the record: the reference when
// present, otherwise a digest of title and date. The "td:" prefix keeps
// derived keys out of the reference namespace.
func (r Record) Key() string {
	if r.Reference != "" {
		return r.Reference
	}
	sum := sha1.Sum([]byte(r.Title + "\x1f" + r.Date))
	return "td:" + hex.EncodeToString(sum[:])
}

// RunReport summarizes one pipeline run for logging and notifications.
type RunReport struct {
	RunID       string
	Category    string
	Pages       int
	Rows        int
	Discarded   int
	Duplicates  int
	Upserted    int
	Attachments int
}

// RecordStore persists issuance records keyed by Record.Key.
type RecordStore interface {
	Upsert(ctx context.Context, table string, rec Record) error
	List(ctx context.Context, table string) ([]Record, error)
	Close() error
}

// BlobStore writes attachment binaries under an object name.
type BlobStore interface {
	Save(ctx context.Context, objectName string, data []byte) error
}

// PageFetcher fetches a URL and returns the body plus metadata.
type PageFetcher interface {
	Fetch(ctx context.Context, rawURL string) (Page, error)
}

// Page is the result returned by a PageFetcher implementation.
type Page struct {
	URL        string
	FinalURL   string
	StatusCode int
	Body       []byte
}
