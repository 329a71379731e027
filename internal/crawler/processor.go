package crawler

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"time"

	"go.uber.org/zap"
)

// Processor drives one URL through navigation, settling, extraction, and
// link harvesting on a borrowed page handle. It never touches frontier
// state: discovered links travel back inside the record and the controller
// folds them in.
type Processor struct {
	cfg    Config
	logger *zap.Logger
}

// NewProcessor constructs a Processor.
func NewProcessor(cfg Config, logger *zap.Logger) *Processor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Processor{cfg: cfg, logger: logger}
}

// Process renders rawURL on the given page and returns its record. A failure
// at the navigation or network-idle step aborts the URL: it is consumed from
// the frontier but yields no record and is not retried.
func (p *Processor) Process(ctx context.Context, rawURL string, page Page) (*PageRecord, error) {
	if err := page.Navigate(ctx, rawURL); err != nil {
		return nil, fmt.Errorf("navigate %s: %w", rawURL, err)
	}
	if err := page.WaitNetworkIdle(ctx); err != nil {
		return nil, fmt.Errorf("wait network idle %s: %w", rawURL, err)
	}

	// Deferred rendering often kicks in after network idle.
	if err := sleepCtx(ctx, p.cfg.SettleDelay); err != nil {
		return nil, err
	}

	if err := p.scrollToBottom(ctx, page); err != nil {
		p.logger.Warn("scroll to bottom", zap.String("url", rawURL), zap.Error(err))
	}

	p.cleanPage(ctx, page, rawURL)

	currentURL, err := page.CurrentURL(ctx)
	if err != nil || currentURL == "" {
		currentURL = rawURL
	}

	title := ExtractTitle(ctx, page, p.logger)
	desc := ExtractDescription(ctx, page, p.logger)
	p.logger.Debug("fields extracted",
		zap.String("url", currentURL),
		zap.String("title_strategy", title.Strategy),
		zap.String("description_strategy", desc.Strategy),
	)

	content, err := page.FullMarkup(ctx)
	if err != nil {
		p.logger.Warn("capture markup", zap.String("url", currentURL), zap.Error(err))
	}

	return &PageRecord{
		URL:         currentURL,
		Title:       title.Value,
		Description: desc.Value,
		Content:     content,
		Links:       p.harvestLinks(ctx, page, currentURL),
		FetchedAt:   time.Now().UTC(),
	}, nil
}

// scrollToBottom repeatedly scrolls to the document bottom until the scroll
// height stops growing or the attempt ceiling is reached. Infinite-scroll
// pages load more content on each pass, so this is a convergence loop: it
// terminates on a stable height or on the ceiling, whichever comes first.
func (p *Processor) scrollToBottom(ctx context.Context, page Page) error {
	var lastHeight int
	if err := page.Evaluate(ctx, "document.body.scrollHeight", &lastHeight); err != nil {
		return fmt.Errorf("read scroll height: %w", err)
	}

	for attempt := 0; attempt < p.cfg.ScrollMaxAttempts; attempt++ {
		if err := page.Evaluate(ctx, "window.scrollTo(0, document.body.scrollHeight)", nil); err != nil {
			return fmt.Errorf("scroll: %w", err)
		}
		if err := sleepCtx(ctx, p.cfg.ScrollDelay); err != nil {
			return err
		}

		var height int
		if err := page.Evaluate(ctx, "document.body.scrollHeight", &height); err != nil {
			return fmt.Errorf("read scroll height: %w", err)
		}
		if height == lastHeight {
			return nil
		}
		lastHeight = height
	}
	return nil
}

// cleanPage injects the configured normalization script and invokes it.
// The script contents are owned by the deployment; failures are logged and
// processing continues with the un-normalized page.
func (p *Processor) cleanPage(ctx context.Context, page Page, rawURL string) {
	if p.cfg.CleanupScript == "" {
		return
	}
	if err := page.Evaluate(ctx, p.cfg.CleanupScript, nil); err != nil {
		p.logger.Warn("inject cleanup script", zap.String("url", rawURL), zap.Error(err))
		return
	}
	if err := page.Evaluate(ctx, "cleanPage()", nil); err != nil {
		p.logger.Warn("run cleanPage", zap.String("url", rawURL), zap.Error(err))
	}
}

// harvestLinks collects every anchor href, resolves it against the current
// URL, and keeps only absolute http/https results. Failures on individual
// anchors are skipped; the returned list is deduplicated and sorted so the
// output is deterministic for a fixed rendered page.
func (p *Processor) harvestLinks(ctx context.Context, page Page, currentURL string) []string {
	base, err := url.Parse(currentURL)
	if err != nil {
		p.logger.Warn("parse base url", zap.String("url", currentURL), zap.Error(err))
		return nil
	}

	anchors, err := page.QueryAll(ctx, "a")
	if err != nil {
		p.logger.Warn("query anchors", zap.String("url", currentURL), zap.Error(err))
		return nil
	}

	seen := make(map[string]struct{})
	for _, a := range anchors {
		href, ok, err := a.Attribute(ctx, "href")
		if err != nil {
			p.logger.Debug("read href", zap.Error(err))
			continue
		}
		if !ok {
			continue
		}
		if abs, ok := resolveLink(base, href); ok {
			seen[abs] = struct{}{}
		}
	}

	links := make([]string, 0, len(seen))
	for link := range seen {
		links = append(links, link)
	}
	sort.Strings(links)
	return links
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
