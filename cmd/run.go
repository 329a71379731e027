package cmd

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/sitesnap/sitesnap/internal/browser"
	"github.com/sitesnap/sitesnap/internal/config"
	"github.com/sitesnap/sitesnap/internal/crawler"
	"github.com/sitesnap/sitesnap/internal/storage/local"
	"github.com/sitesnap/sitesnap/internal/storage/postgres"
)

// runCrawl executes one full crawl run: browser and pool construction, the
// frontier loop, and record persistence. It returns how many records were
// produced; records gathered before a crawl-fatal error are persisted
// anyway.
func runCrawl(ctx context.Context, cfg config.Config, logger *zap.Logger, req crawler.CrawlRequest) (int, error) {
	crawlCfg, err := buildCrawlerConfig(cfg.Crawler)
	if err != nil {
		return 0, err
	}

	b, err := browser.New(browser.Config{
		Headless:           req.Headless,
		UserAgent:          cfg.Browser.UserAgent,
		NavigationTimeout:  cfg.Browser.NavTimeout,
		NetworkIdleWindow:  cfg.Browser.NetworkIdleWindow,
		NetworkIdleTimeout: cfg.Browser.NetworkIdleTimeout,
	}, logger)
	if err != nil {
		return 0, fmt.Errorf("launch browser: %w", err)
	}
	defer func() {
		if cerr := b.Close(); cerr != nil {
			logger.Warn("close browser", zap.Error(cerr))
		}
	}()

	pool := crawler.NewPagePool(b.NewPage, crawlCfg.PoolSize, logger)
	if err := pool.Initialize(ctx); err != nil {
		pool.Shutdown()
		return 0, fmt.Errorf("initialize page pool: %w", err)
	}

	processor := crawler.NewProcessor(crawlCfg, logger)
	controller := crawler.NewController(crawlCfg, pool, processor, logger)

	records, crawlErr := controller.Crawl(ctx, req)
	saved := persistRecords(ctx, cfg, logger, records)
	logger.Info("records persisted", zap.Int("saved", saved), zap.Int("total", len(records)))

	if crawlErr != nil {
		return len(records), fmt.Errorf("crawl %s: %w", req.SeedURL, crawlErr)
	}
	return len(records), nil
}

func persistRecords(ctx context.Context, cfg config.Config, logger *zap.Logger, records []crawler.PageRecord) int {
	store, err := local.New(cfg.Output.Directory, logger)
	if err != nil {
		logger.Error("open record store", zap.Error(err))
		return 0
	}
	saved := store.SaveAll(ctx, records)

	if cfg.DB.DSN != "" {
		saveToPostgres(ctx, cfg.DB.DSN, logger, records)
	}
	return saved
}

// saveToPostgres mirrors the records into the optional database store.
// Database trouble never fails the crawl; the filesystem copy is the source
// of truth.
func saveToPostgres(ctx context.Context, dsn string, logger *zap.Logger, records []crawler.PageRecord) {
	store, err := postgres.New(ctx, dsn)
	if err != nil {
		logger.Warn("connect postgres store", zap.Error(err))
		return
	}
	defer store.Close()

	for _, record := range records {
		if _, err := store.Save(ctx, record); err != nil {
			logger.Warn("save record to postgres", zap.String("url", record.URL), zap.Error(err))
		}
	}
}

// buildCrawlerConfig maps file configuration onto the engine config, loading
// the page-normalization script when one is configured.
func buildCrawlerConfig(c config.CrawlerConfig) (crawler.Config, error) {
	cfg := crawler.Config{
		MaxPages:          c.MaxPages,
		BatchSize:         c.BatchSize,
		PoolSize:          c.PoolSize,
		SettleDelay:       c.SettleDelay,
		ScrollMaxAttempts: c.ScrollMaxAttempts,
		ScrollDelay:       c.ScrollDelay,
		Headless:          c.Headless,
	}
	if c.CleanupScript != "" {
		script, err := os.ReadFile(c.CleanupScript)
		if err != nil {
			return crawler.Config{}, fmt.Errorf("read cleanup script %s: %w", c.CleanupScript, err)
		}
		cfg.CleanupScript = string(script)
	}
	if err := cfg.Validate(); err != nil {
		return crawler.Config{}, fmt.Errorf("crawler config: %w", err)
	}
	return cfg, nil
}
