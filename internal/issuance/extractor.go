package issuance

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// referenceLabel is the literal prefix the source site renders before the
// reference token.
const referenceLabel = "Reference No:"

// Extractor turns one listing page's markup into candidate records.
type Extractor struct {
	origin string
	sel    Selectors
	search string
}

// NewExtractor builds an extractor for one category. search, when non-empty,
// is a case-insensitive substring filter applied to title and reference.
func NewExtractor(origin string, sel Selectors, search string) *Extractor {
	return &Extractor{origin: origin, sel: sel, search: search}
}

// HasListing reports whether the page carries the listing container at all.
// Its absence means the archive ran out of content and the run should end.
func (e *Extractor) HasListing(doc *goquery.Document) bool {
	return doc.Find(e.sel.Container).Length() > 0
}

// Rows extracts the candidate records from one page, in document order.
// Rows missing a title or a link are discarded; discarded reports how many.
func (e *Extractor) Rows(doc *goquery.Document) (rows []Record, discarded int) {
	doc.Find(e.sel.Container).Find(e.sel.Row).Each(func(_ int, node *goquery.Selection) {
		rec, ok := e.row(node)
		if !ok {
			discarded++
			return
		}
		if e.search != "" && !containsFold(rec.Title, e.search) && !containsFold(rec.Reference, e.search) {
			return
		}
		rows = append(rows, rec)
	})
	return rows, discarded
}

func (e *Extractor) row(node *goquery.Selection) (Record, bool) {
	var rec Record

	anchor := node.Find(e.sel.Anchor).First()
	rec.Title = strings.TrimSpace(anchor.Text())
	href, _ := anchor.Attr("href")
	if rec.Title == "" || href == "" {
		return Record{}, false
	}
	rec.Link = Absolutize(e.origin, href)

	if ref := node.Find(e.sel.Reference).First(); ref.Length() > 0 {
		rec.Reference = strings.TrimSpace(strings.ReplaceAll(ref.Text(), referenceLabel, ""))
	}
	if e.sel.Date != "" {
		rec.Date = strings.TrimSpace(node.Find(e.sel.Date).First().Text())
	}
	if e.sel.Category != "" {
		rec.Category = strings.TrimSpace(node.Find(e.sel.Category).First().Text())
	}
	return rec, true
}

// NextPageURL locates the pagination anchor whose text contains "next".
// found is false when no such anchor exists (the normal end of the archive);
// an anchor without a usable href yields found=true with an empty URL, which
// the engine treats as an early stop rather than an error.
func (e *Extractor) NextPageURL(doc *goquery.Document) (nextURL string, found bool) {
	doc.Find(e.sel.NextPage).EachWithBreak(func(_ int, node *goquery.Selection) bool {
		if !strings.Contains(strings.ToLower(node.Text()), "next") {
			return true
		}
		found = true
		if href, ok := node.Attr("href"); ok && href != "" {
			nextURL = Absolutize(e.origin, href)
		}
		return false
	})
	return nextURL, found
}
