// Package browser implements the crawler's renderable-page capability on
// headless Chrome via chromedp. One Browser owns the Chrome process; each
// page handle is an isolated tab context.
package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/sitesnap/sitesnap/internal/crawler"
)

// Config controls browser startup and per-page timing.
type Config struct {
	// Headless selects the headless Chrome mode.
	Headless bool
	// UserAgent overrides the browser user agent when non-empty.
	UserAgent string
	// NavigationTimeout bounds every page operation, navigation included.
	NavigationTimeout time.Duration
	// NetworkIdleWindow is how long the network must stay quiet before a
	// page counts as idle.
	NetworkIdleWindow time.Duration
	// NetworkIdleTimeout bounds how long WaitNetworkIdle will wait overall.
	NetworkIdleTimeout time.Duration
}

func (c *Config) applyDefaults() {
	if c.NavigationTimeout <= 0 {
		c.NavigationTimeout = 45 * time.Second
	}
	if c.NetworkIdleWindow <= 0 {
		c.NetworkIdleWindow = 500 * time.Millisecond
	}
	if c.NetworkIdleTimeout <= 0 {
		c.NetworkIdleTimeout = 30 * time.Second
	}
}

// Browser wraps a Chrome process and hands out tab-backed page handles.
type Browser struct {
	cfg           Config
	logger        *zap.Logger
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
}

// New launches Chrome and verifies it is usable with a warmup run.
func New(cfg Config, logger *zap.Logger) (*Browser, error) {
	cfg.applyDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("hide-scrollbars", true),
	)
	if cfg.Headless {
		opts = append(opts, chromedp.Flag("headless", "new"))
	} else {
		opts = append(opts, chromedp.Flag("headless", false))
	}
	if cfg.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(cfg.UserAgent))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("chromedp warmup: %w", err)
	}

	return &Browser{
		cfg:           cfg,
		logger:        logger,
		allocCancel:   allocCancel,
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
	}, nil
}

// NewPage opens a fresh tab and returns it as a crawler page handle. The
// signature matches crawler.PageFactory so a Browser plugs straight into
// the page pool.
func (b *Browser) NewPage(ctx context.Context) (crawler.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tabCtx, tabCancel := chromedp.NewContext(b.browserCtx)

	tracker := newNetworkTracker()
	chromedp.ListenTarget(tabCtx, tracker.handle)

	// The first Run materializes the tab; enabling the network domain here
	// makes the tracker see every request from the start.
	if err := chromedp.Run(tabCtx, network.Enable()); err != nil {
		tabCancel()
		return nil, fmt.Errorf("open tab: %w", err)
	}

	return &page{
		ctx:     tabCtx,
		cancel:  tabCancel,
		cfg:     b.cfg,
		tracker: tracker,
	}, nil
}

// Close tears down the browser and allocator contexts. Pages created from
// this browser become unusable.
func (b *Browser) Close() error {
	b.browserCancel()
	b.allocCancel()
	return nil
}
