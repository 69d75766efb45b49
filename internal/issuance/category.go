package issuance

import "fmt"

// Selectors holds the CSS selectors that locate the pieces of a listing.
// The source site renders every archive with the same structure, but each
// category keeps its own copy so a markup change on one archive can be
// absorbed without touching the others.
type Selectors struct {
	// Container is the listing table; its absence ends the run.
	Container string
	// Row matches one issuance row inside the container.
	Row string
	// Anchor carries the title text and the detail-page href.
	Anchor string
	// Reference carries the "Reference No:" label text.
	Reference string
	// Date matches the display-date cell.
	Date string
	// NextPage matches pagination anchors; the one whose text contains
	// "next" is followed.
	NextPage string
	// Download matches the attachment control on the detail page.
	Download string
	// Category optionally matches a category label inside the row.
	Category string
}

// Category parameterizes the pipeline for one document archive.
type Category struct {
	Key         string
	Name        string
	StartURL    string
	Table       string
	Dir         string
	WebhookPath string
	PayloadKey  string
	Extension   string
	Selectors   Selectors
}

// Validate checks for obviously bad category configuration.
func (c Category) Validate() error {
	if c.Key == "" {
		return fmt.Errorf("category key must be set")
	}
	if c.StartURL == "" {
		return fmt.Errorf("category %s: start URL must be set", c.Key)
	}
	if c.Table == "" {
		return fmt.Errorf("category %s: table must be set", c.Key)
	}
	if c.Dir == "" {
		return fmt.Errorf("category %s: attachment dir must be set", c.Key)
	}
	if c.WebhookPath == "" {
		return fmt.Errorf("category %s: webhook path must be set", c.Key)
	}
	if c.PayloadKey == "" {
		return fmt.Errorf("category %s: payload key must be set", c.Key)
	}
	if c.Extension == "" {
		return fmt.Errorf("category %s: extension must be set", c.Key)
	}
	s := c.Selectors
	if s.Container == "" || s.Row == "" || s.Anchor == "" || s.NextPage == "" || s.Download == "" {
		return fmt.Errorf("category %s: selectors are incomplete", c.Key)
	}
	return nil
}

func archiveSelectors() Selectors {
	return Selectors{
		Container: "table.view_details",
		Row:       "tr",
		Anchor:    "td a",
		Reference: "td strong",
		Date:      "td[nowrap]",
		NextPage:  "li.pWord a",
		Download:  "a.btn_download",
	}
}

// BuiltinCategories returns the four document archives the harvester covers.
func BuiltinCategories() []Category {
	legalOpinions := archiveSelectors()
	legalOpinions.Category = "td strong span"

	return []Category{
		{
			Key:         "ra",
			Name:        "republic acts",
			StartURL:    "https://dilg.gov.ph/issuances-archive/ra/",
			Table:       "republic_acts",
			Dir:         "republic_acts",
			WebhookPath: "/webhook/republic-act",
			PayloadKey:  "republic_acts",
			Extension:   ".pdf",
			Selectors:   archiveSelectors(),
		},
		{
			Key:         "pd",
			Name:        "presidential directives",
			StartURL:    "https://dilg.gov.ph/issuances-archive/pd/",
			Table:       "presidential_directives",
			Dir:         "presidential_directives",
			WebhookPath: "/webhook/presidential-directive",
			PayloadKey:  "presidential_directives",
			Extension:   ".pdf",
			Selectors:   archiveSelectors(),
		},
		{
			Key:         "lo",
			Name:        "legal opinions",
			StartURL:    "https://dilg.gov.ph/legal-opinions",
			Table:       "legal_opinions",
			Dir:         "legal_opinions",
			WebhookPath: "/webhook/legal-opinion",
			PayloadKey:  "legal_opinions",
			Extension:   ".pdf",
			Selectors:   legalOpinions,
		},
		{
			Key:         "jc",
			Name:        "joint circulars",
			StartURL:    "https://dilg.gov.ph/issuances-archive/jc/",
			Table:       "joint_circulars",
			Dir:         "joint_circulars",
			WebhookPath: "/webhook/joint-circular",
			PayloadKey:  "joint_circulars",
			Extension:   ".pdf",
			Selectors:   archiveSelectors(),
		},
	}
}

// CategoryByKey looks up a built-in category.
func CategoryByKey(key string) (Category, bool) {
	for _, c := range BuiltinCategories() {
		if c.Key == key {
			return c, true
		}
	}
	return Category{}, false
}
