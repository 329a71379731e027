package crawler

import (
	"fmt"
	"time"
)

// Config holds every knob that influences page processing and crawl
// orchestration. It is decoupled from Viper so the engine can be constructed
// and tested without any configuration machinery; the config package maps
// file/env values onto it.
type Config struct {
	// MaxPages is the default visit budget when a request leaves it unset.
	MaxPages int
	// BatchSize is the default per-iteration parallelism.
	BatchSize int
	// PoolSize is the soft cap on idle page handles.
	PoolSize int
	// SettleDelay is the fixed wait after network idle, allowing deferred
	// script-driven rendering to finish. Site-dependent; tune per deployment.
	SettleDelay time.Duration
	// ScrollMaxAttempts caps the bottom-scroll convergence loop.
	ScrollMaxAttempts int
	// ScrollDelay is the wait between scroll attempts.
	ScrollDelay time.Duration
	// CleanupScript, when non-empty, is evaluated on each page before
	// extraction and is expected to define a cleanPage() function that
	// strips volatile markup. The script contents are owned by the caller.
	CleanupScript string
	// Headless is the default browser mode for requests that don't set it.
	Headless bool
}

// DefaultConfig returns the tuned defaults. The settle and scroll values are
// empirical; their correct values are site-dependent, which is why they are
// configuration rather than constants.
func DefaultConfig() Config {
	return Config{
		MaxPages:          100,
		BatchSize:         5,
		PoolSize:          5,
		SettleDelay:       2 * time.Second,
		ScrollMaxAttempts: 10,
		ScrollDelay:       time.Second,
		Headless:          true,
	}
}

// Validate checks for obviously bad configuration combinations.
func (c Config) Validate() error {
	if c.MaxPages < 1 {
		return fmt.Errorf("max pages must be >= 1")
	}
	if c.BatchSize < 1 {
		return fmt.Errorf("batch size must be >= 1")
	}
	if c.PoolSize < 1 {
		return fmt.Errorf("pool size must be >= 1")
	}
	if c.SettleDelay < 0 {
		return fmt.Errorf("settle delay must be >= 0")
	}
	if c.ScrollMaxAttempts < 0 {
		return fmt.Errorf("scroll max attempts must be >= 0")
	}
	if c.ScrollDelay < 0 {
		return fmt.Errorf("scroll delay must be >= 0")
	}
	return nil
}

// Normalize fills the request's unset fields from the config defaults.
func (c Config) Normalize(req CrawlRequest) CrawlRequest {
	if req.MaxPages < 1 {
		req.MaxPages = c.MaxPages
	}
	if req.BatchSize < 1 {
		req.BatchSize = c.BatchSize
	}
	return req
}
