package crawler

import "time"

// CrawlRequest captures the parameters for one crawl run. It is immutable
// for the duration of the run.
type CrawlRequest struct {
	// SeedURL is the absolute URL the crawl starts from. Only links sharing
	// its scheme and host are followed.
	SeedURL string
	// MaxPages bounds how many URLs the run may visit.
	MaxPages int
	// BatchSize bounds how many URLs are processed concurrently per
	// controller iteration. This, not the pool size, is the parallelism cap.
	BatchSize int
	// Headless selects headless browser mode. Consumed by the browser
	// construction layer; the controller itself never reads it.
	Headless bool
}

// PageRecord is produced exactly once per successfully processed URL and is
// immutable after creation. Ownership transfers to the persistence
// collaborator.
type PageRecord struct {
	URL string `json:"url"`
	// Title is never empty: extraction falls back to the URL itself.
	Title string `json:"title"`
	// Description is empty when no source on the page yields one.
	Description string `json:"description,omitempty"`
	// Content holds the fully rendered document markup.
	Content string `json:"content"`
	// Links is sorted and duplicate-free, absolute http/https URLs only.
	Links     []string  `json:"links"`
	FetchedAt time.Time `json:"fetched_at"`
}

// Extraction is the ephemeral result of one field extraction. It exists only
// long enough to fold the value into a PageRecord and to log which strategy
// won.
type Extraction struct {
	Field    string
	Value    string
	Strategy string
}

// Found reports whether the extraction produced a usable value.
func (e Extraction) Found() bool {
	return e.Value != ""
}
