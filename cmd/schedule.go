package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sitesnap/sitesnap/internal/api"
	"github.com/sitesnap/sitesnap/internal/config"
	"github.com/sitesnap/sitesnap/internal/crawler"
	"github.com/sitesnap/sitesnap/internal/scheduler"
)

// newScheduleCmd creates the 'schedule' subcommand: the recurring-crawl
// daemon, or an immediate run over the configured sites with --once.
func newScheduleCmd() *cobra.Command {
	var (
		once bool
		site string
	)

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Run site crawls on their configured cron schedules",
		Long: `Starts the recurrence daemon: every enabled site in the configuration
is crawled on its cron schedule. With --once the enabled sites (or the one
named by --site) are crawled immediately and the command exits.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			driver := scheduler.New(rootCfg.Sites, siteCrawler(rootCfg, rootLogger), rootLogger)

			if once {
				return driver.RunOnce(cmd.Context(), site)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if err := driver.Start(ctx); err != nil {
				return fmt.Errorf("start scheduler: %w", err)
			}

			var server *api.Server
			if rootCfg.Server.Port > 0 {
				server = api.NewServer(rootCfg.Server.Port, rootCfg.Sites, rootLogger)
				server.Start()
			}

			<-ctx.Done()
			rootLogger.Info("shutting down")

			driver.Stop()
			if server != nil {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					rootLogger.Warn("http shutdown", zap.Error(err))
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&once, "once", false, "run the crawls immediately and exit")
	cmd.Flags().StringVar(&site, "site", "", "with --once, crawl only the named site")

	return cmd
}

// siteCrawler adapts runCrawl to the scheduler's CrawlFunc, applying
// per-site overrides.
func siteCrawler(cfg config.Config, logger *zap.Logger) scheduler.CrawlFunc {
	return func(ctx context.Context, site config.Site) (int, error) {
		return runCrawl(ctx, cfg, logger.With(zap.String("site", site.Name)), crawler.CrawlRequest{
			SeedURL:  site.URL,
			MaxPages: site.MaxPages,
			Headless: cfg.Crawler.Headless,
		})
	}
}
