package crawler

import "context"

// Page is the renderable-page capability consumed by the engine. All methods
// may block on browser I/O and may fail with navigation, timeout, or
// evaluation errors; the engine treats every method as suspendable.
type Page interface {
	// Navigate loads the given URL in the page.
	Navigate(ctx context.Context, url string) error
	// WaitNetworkIdle blocks until network activity has quiesced.
	WaitNetworkIdle(ctx context.Context) error
	// Evaluate runs a script in the page and unmarshals the result into out.
	// A nil out discards the result.
	Evaluate(ctx context.Context, script string, out any) error
	// QueryAll returns every element matching the CSS selector. A selector
	// that matches nothing returns an empty slice, not an error.
	QueryAll(ctx context.Context, selector string) ([]Element, error)
	// CurrentURL reports the page's current location.
	CurrentURL(ctx context.Context) (string, error)
	// FullMarkup returns the complete rendered document markup.
	FullMarkup(ctx context.Context) (string, error)
	// Close releases the underlying browser resources.
	Close() error
}

// Element is a handle to a single DOM element returned by Page.QueryAll.
type Element interface {
	// Attribute returns the named attribute and whether it is present.
	Attribute(ctx context.Context, name string) (string, bool, error)
	// Text returns the element's visible text content.
	Text(ctx context.Context) (string, error)
}

// PageFactory creates a fresh renderable page. The pool calls it when no
// idle handle is available.
type PageFactory func(ctx context.Context) (Page, error)

// PageProcessor drives a single URL through rendering and extraction.
// A nil record with a nil error never occurs: failures return an error and
// the URL yields no record.
type PageProcessor interface {
	Process(ctx context.Context, url string, page Page) (*PageRecord, error)
}

// RecordSink receives ownership of finished page records.
type RecordSink interface {
	Save(ctx context.Context, record PageRecord) (string, error)
}
