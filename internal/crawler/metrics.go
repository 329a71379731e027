package crawler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// pagesProcessed tracks URLs that produced a page record.
	pagesProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sitesnap_pages_processed_total",
		Help: "The total number of pages successfully processed.",
	})
	// pagesFailed tracks URLs consumed from the frontier without a record.
	pagesFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sitesnap_pages_failed_total",
		Help: "The total number of pages that failed to process.",
	})
	// linksDiscovered tracks links folded into the frontier.
	linksDiscovered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sitesnap_links_discovered_total",
		Help: "The total number of in-scope links added to the frontier.",
	})
	// poolCreations tracks page handles created on demand.
	poolCreations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sitesnap_pool_pages_created_total",
		Help: "The total number of page handles created by the pool.",
	})
	// poolReuses tracks page handles served from the idle set.
	poolReuses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sitesnap_pool_pages_reused_total",
		Help: "The total number of page handle reuses from the idle set.",
	})
)
