package crawler

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Controller owns the crawl frontier: the visited and pending URL sets, the
// visit budget, and the batch loop that dispatches page processing against
// the pool.
//
// The frontier is an unordered set, not a FIFO queue: batch members are
// popped in map iteration order, so the crawl is a domain-scoped flood fill
// rather than strict breadth-first. This mirrors the pop-from-set behavior
// the engine has always had; the final visited set for a full crawl does not
// depend on pop order.
type Controller struct {
	cfg       Config
	pool      *PagePool
	processor PageProcessor
	logger    *zap.Logger
}

// NewController constructs a Controller. The controller takes ownership of
// the pool: Crawl shuts it down on exit.
func NewController(cfg Config, pool *PagePool, processor PageProcessor, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		cfg:       cfg,
		pool:      pool,
		processor: processor,
		logger:    logger,
	}
}

// dispatch pairs one batch member with its borrowed page handle and, after
// processing, its outcome.
type dispatch struct {
	url    string
	page   Page
	record *PageRecord
}

// Crawl runs the full site crawl described by req and returns one record per
// successfully processed URL. Individual page failures are logged and
// skipped; only pool breakdown (the rendering collaborator itself being
// unusable) aborts the run, returning the records gathered so far alongside
// the error.
func (c *Controller) Crawl(ctx context.Context, req CrawlRequest) ([]PageRecord, error) {
	req = c.cfg.Normalize(req)

	seed, err := NormalizeURL(req.SeedURL)
	if err != nil {
		return nil, fmt.Errorf("seed url: %w", err)
	}
	scope, err := Origin(seed)
	if err != nil {
		return nil, fmt.Errorf("seed url: %w", err)
	}

	defer c.pool.Shutdown()

	visited := make(map[string]struct{})
	pending := map[string]struct{}{seed: {}}
	var records []PageRecord

	c.logger.Info("crawl starting",
		zap.String("seed", seed),
		zap.Int("max_pages", req.MaxPages),
		zap.Int("batch_size", req.BatchSize),
	)

	for len(pending) > 0 && len(visited) < req.MaxPages {
		batch := c.nextBatch(pending, visited, req)
		if len(batch) == 0 {
			break
		}

		if err := c.acquirePages(ctx, batch); err != nil {
			return records, fmt.Errorf("acquire pages: %w", err)
		}
		c.runBatch(ctx, batch)

		// Folding is serialized here: batch goroutines have finished, so
		// the frontier sets have a single writer.
		for _, d := range batch {
			if d.record == nil {
				pagesFailed.Inc()
				continue
			}
			pagesProcessed.Inc()
			records = append(records, *d.record)
			c.foldLinks(d.record.Links, scope, visited, pending)
		}
	}

	c.logger.Info("crawl finished",
		zap.String("seed", seed),
		zap.Int("pages", len(records)),
		zap.Int("visited", len(visited)),
	)
	return records, nil
}

// nextBatch pops up to BatchSize URLs from pending, marking each visited
// before dispatch so a sibling's discovered links cannot re-queue it within
// the same iteration. URLs already visited are dropped without counting
// against the batch. The visited budget is a loop guard: a batch never grows
// past what MaxPages allows.
func (c *Controller) nextBatch(pending, visited map[string]struct{}, req CrawlRequest) []*dispatch {
	var batch []*dispatch
	for url := range pending {
		if len(batch) >= req.BatchSize || len(visited) >= req.MaxPages {
			break
		}
		delete(pending, url)
		if _, ok := visited[url]; ok {
			continue
		}
		visited[url] = struct{}{}
		batch = append(batch, &dispatch{url: url})
	}
	return batch
}

// acquirePages checks out one handle per batch member. Failure to create a
// handle means the rendering collaborator is unusable, which is fatal to the
// crawl; handles already acquired for this batch are returned first.
func (c *Controller) acquirePages(ctx context.Context, batch []*dispatch) error {
	for i, d := range batch {
		page, err := c.pool.Acquire(ctx)
		if err != nil {
			for _, prev := range batch[:i] {
				c.pool.Release(prev.page)
			}
			return err
		}
		d.page = page
	}
	return nil
}

// runBatch processes every batch member concurrently and releases all
// handles, whatever the outcomes. A per-URL failure leaves that member's
// record nil and never aborts the batch.
func (c *Controller) runBatch(ctx context.Context, batch []*dispatch) {
	var wg sync.WaitGroup
	for _, d := range batch {
		wg.Add(1)
		go func(d *dispatch) {
			defer wg.Done()
			record, err := c.processor.Process(ctx, d.url, d.page)
			if err != nil {
				c.logger.Warn("page processing failed", zap.String("url", d.url), zap.Error(err))
				return
			}
			d.record = record
		}(d)
	}
	wg.Wait()

	for _, d := range batch {
		c.pool.Release(d.page)
	}
}

// foldLinks adds a discovered link to pending iff its scheme://host equals
// the seed's and it has not been visited. Cross-origin links are always
// dropped, regardless of path.
func (c *Controller) foldLinks(links []string, scope string, visited, pending map[string]struct{}) {
	for _, link := range links {
		normalized, err := NormalizeURL(link)
		if err != nil {
			continue
		}
		origin, err := Origin(normalized)
		if err != nil || origin != scope {
			continue
		}
		if _, ok := visited[normalized]; ok {
			continue
		}
		if _, ok := pending[normalized]; ok {
			continue
		}
		pending[normalized] = struct{}{}
		linksDiscovered.Inc()
	}
}
