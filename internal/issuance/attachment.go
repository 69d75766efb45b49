package issuance

import (
	"bytes"
	"context"
	"path"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

// Resolver visits a record's detail page, resolves the attachment control,
// and stores the downloaded binary.
type Resolver struct {
	fetcher  PageFetcher
	blobs    BlobStore
	origin   string
	category string
	sel      string
	dir      string
	ext      string
	logger   *zap.Logger
}

// NewResolver builds a resolver for one category.
func NewResolver(fetcher PageFetcher, blobs BlobStore, origin string, cat Category, logger *zap.Logger) *Resolver {
	return &Resolver{
		fetcher:  fetcher,
		blobs:    blobs,
		origin:   origin,
		category: cat.Key,
		sel:      cat.Selectors.Download,
		dir:      cat.Dir,
		ext:      cat.Extension,
		logger:   logger,
	}
}

// Resolve fills in rec.DownloadLink and rec.File when the detail page exposes
// a download control. Every failure here is row-local: it is logged, the
// fields stay empty, and the run continues.
func (r *Resolver) Resolve(ctx context.Context, rec *Record) {
	page, err := r.fetcher.Fetch(ctx, rec.Link)
	if err != nil {
		r.logger.Warn("Failed to fetch detail page",
			zap.String("title", rec.Title),
			zap.String("link", rec.Link),
			zap.Error(err),
		)
		attachmentErrors.WithLabelValues(r.category).Inc()
		return
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page.Body))
	if err != nil {
		r.logger.Warn("Failed to parse detail page", zap.String("link", rec.Link), zap.Error(err))
		attachmentErrors.WithLabelValues(r.category).Inc()
		return
	}

	href, ok := doc.Find(r.sel).First().Attr("href")
	if !ok || href == "" {
		// No download control on the detail page; not an error.
		return
	}
	rec.DownloadLink = Absolutize(r.origin, href)

	binary, err := r.fetcher.Fetch(ctx, rec.DownloadLink)
	if err != nil {
		r.logger.Warn("Failed to download attachment",
			zap.String("title", rec.Title),
			zap.String("download_link", rec.DownloadLink),
			zap.Error(err),
		)
		attachmentErrors.WithLabelValues(r.category).Inc()
		return
	}

	name := AttachmentFilename(rec.DownloadLink, rec.Title, rec.Reference, r.ext)
	if err := r.blobs.Save(ctx, path.Join(r.dir, name), binary.Body); err != nil {
		r.logger.Warn("Failed to save attachment",
			zap.String("file", name),
			zap.Error(err),
		)
		attachmentErrors.WithLabelValues(r.category).Inc()
		return
	}
	rec.File = name
	attachmentsSaved.WithLabelValues(r.category).Inc()
}
