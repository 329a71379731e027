package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sitesnap/sitesnap/internal/crawler"
)

// newCrawlCmd creates the 'crawl' subcommand: a single immediate crawl of
// one seed URL.
func newCrawlCmd() *cobra.Command {
	var (
		maxPages  int
		batchSize int
		headless  bool
	)

	cmd := &cobra.Command{
		Use:   "crawl <url>",
		Short: "Crawl a website once, starting from the given URL",
		Long: `Crawls a single website immediately, following in-domain links
breadth-wise until the page budget is exhausted, and writes one JSON record
per page to the output directory.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := crawler.CrawlRequest{
				SeedURL:   args[0],
				MaxPages:  maxPages,
				BatchSize: batchSize,
				Headless:  headless,
			}
			if !cmd.Flags().Changed("headless") {
				req.Headless = rootCfg.Crawler.Headless
			}

			records, err := runCrawl(cmd.Context(), rootCfg, rootLogger, req)
			if err != nil {
				return fmt.Errorf("crawl: %w", err)
			}
			rootLogger.Info("crawl command finished", zap.Int("records", records))
			return nil
		},
	}

	cmd.Flags().IntVar(&maxPages, "max-pages", 0, "maximum pages to visit (default from config)")
	cmd.Flags().IntVar(&batchSize, "batch-size", 0, "pages processed in parallel per batch (default from config)")
	cmd.Flags().BoolVar(&headless, "headless", true, "run the browser headless")

	return cmd
}
