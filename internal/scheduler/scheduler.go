// Package scheduler runs site crawls on recurring cron schedules.
package scheduler

import (
	"context"
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/sitesnap/sitesnap/internal/config"
)

// CrawlFunc executes one crawl for a site and reports how many records were
// produced. The driver owns nothing about how the crawl happens.
type CrawlFunc func(ctx context.Context, site config.Site) (int, error)

// Driver invokes the crawl entry point once per site per cron expression,
// or immediately via RunOnce. A failing site never prevents its siblings
// from running.
type Driver struct {
	sites  []config.Site
	run    CrawlFunc
	logger *zap.Logger
	cron   *cron.Cron
}

// New constructs a Driver over the configured sites.
func New(sites []config.Site, run CrawlFunc, logger *zap.Logger) *Driver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Driver{
		sites:  sites,
		run:    run,
		logger: logger,
	}
}

// Start registers every enabled site with the cron scheduler and starts it.
// It returns an error when a schedule expression does not parse; sites
// registered before the bad one are unscheduled again.
func (d *Driver) Start(ctx context.Context) error {
	c := cron.New()
	registered := 0
	for _, site := range d.sites {
		if !site.Enabled {
			continue
		}
		site := site
		_, err := c.AddFunc(site.Schedule, func() {
			d.runSite(ctx, site)
		})
		if err != nil {
			c.Stop()
			return fmt.Errorf("schedule site %q (%q): %w", site.Name, site.Schedule, err)
		}
		registered++
	}
	if registered == 0 {
		return fmt.Errorf("no enabled sites to schedule")
	}

	d.cron = c
	c.Start()
	d.logger.Info("scheduler started", zap.Int("sites", registered))
	return nil
}

// Stop halts the cron scheduler and waits for running jobs to finish.
func (d *Driver) Stop() {
	if d.cron == nil {
		return
	}
	<-d.cron.Stop().Done()
	d.logger.Info("scheduler stopped")
}

// RunOnce crawls the named enabled site immediately, or every enabled site
// when name is empty. Name matching is case-insensitive.
func (d *Driver) RunOnce(ctx context.Context, name string) error {
	if name != "" {
		for _, site := range d.sites {
			if site.Enabled && strings.EqualFold(site.Name, name) {
				d.runSite(ctx, site)
				return nil
			}
		}
		return fmt.Errorf("site %q not found or not enabled", name)
	}

	ran := 0
	for _, site := range d.sites {
		if !site.Enabled {
			continue
		}
		d.runSite(ctx, site)
		ran++
	}
	if ran == 0 {
		return fmt.Errorf("no enabled sites found")
	}
	return nil
}

// runSite executes one crawl and contains its failure: a broken site yields
// a log line, never a propagated error or a crash.
func (d *Driver) runSite(ctx context.Context, site config.Site) {
	d.logger.Info("site crawl starting", zap.String("site", site.Name), zap.String("url", site.URL))
	records, err := d.run(ctx, site)
	if err != nil {
		d.logger.Error("site crawl failed",
			zap.String("site", site.Name),
			zap.Int("records", records),
			zap.Error(err),
		)
		return
	}
	d.logger.Info("site crawl finished", zap.String("site", site.Name), zap.Int("records", records))
}
