package crawler

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// ErrPoolClosed is returned by Acquire after Shutdown.
var ErrPoolClosed = errors.New("page pool closed")

// PagePool bounds how many idle renderable-page handles are kept around.
// The size is a soft cap: Acquire never blocks waiting for capacity, it
// creates a new handle on demand when the idle set is empty. Callers that
// need a parallelism cap enforce it with the batch size, not the pool size;
// the pool only amortizes the cost of page creation across many fetches.
type PagePool struct {
	factory PageFactory
	size    int
	logger  *zap.Logger

	mu     sync.Mutex
	idle   []Page
	closed bool
}

// NewPagePool constructs a pool. The factory is invoked by Initialize and by
// Acquire whenever the idle set is empty.
func NewPagePool(factory PageFactory, size int, logger *zap.Logger) *PagePool {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PagePool{
		factory: factory,
		size:    size,
		logger:  logger,
	}
}

// Initialize pre-creates size handles so the first batch doesn't pay page
// startup latency. A creation failure leaves the already-created handles in
// the pool and propagates the error.
func (p *PagePool) Initialize(ctx context.Context) error {
	for i := 0; i < p.size; i++ {
		page, err := p.factory(ctx)
		if err != nil {
			return fmt.Errorf("initialize pool page %d: %w", i, err)
		}
		p.mu.Lock()
		p.idle = append(p.idle, page)
		p.mu.Unlock()
	}
	return nil
}

// Acquire returns an idle handle if one exists, else creates a new one.
// The returned handle is exclusively owned by the caller until Release.
func (p *PagePool) Acquire(ctx context.Context) (Page, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, ErrPoolClosed
	}
	if n := len(p.idle); n > 0 {
		page := p.idle[n-1]
		p.idle = p.idle[:n-1]
		p.mu.Unlock()
		poolReuses.Inc()
		return page, nil
	}
	p.mu.Unlock()

	// Creation happens outside the critical section; only the idle-set
	// mutation needs exclusion.
	page, err := p.factory(ctx)
	if err != nil {
		return nil, fmt.Errorf("create page: %w", err)
	}
	poolCreations.Inc()
	return page, nil
}

// Release returns a handle to the idle set, or disposes it when the idle
// set is already at capacity or the pool has shut down.
func (p *PagePool) Release(page Page) {
	if page == nil {
		return
	}
	p.mu.Lock()
	if !p.closed && len(p.idle) < p.size {
		p.idle = append(p.idle, page)
		p.mu.Unlock()
		return
	}
	p.mu.Unlock()

	if err := page.Close(); err != nil {
		p.logger.Warn("close surplus page", zap.Error(err))
	}
}

// Shutdown disposes every idle handle and rejects further Acquires.
// Handles currently checked out are the holder's responsibility.
func (p *PagePool) Shutdown() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	pages := p.idle
	p.idle = nil
	p.mu.Unlock()

	for _, page := range pages {
		if err := page.Close(); err != nil {
			p.logger.Warn("close pooled page", zap.Error(err))
		}
	}
}

// IdleCount reports how many handles are currently idle.
func (p *PagePool) IdleCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.idle)
}
