package crawler

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var errFactoryExhausted = errors.New("factory exhausted")

func TestPagePool_InitializePreCreates(t *testing.T) {
	t.Parallel()

	factory := &countingFactory{}
	pool := NewPagePool(factory.new, 3, zap.NewNop())

	require.NoError(t, pool.Initialize(context.Background()))
	require.Equal(t, 3, factory.count())
	require.Equal(t, 3, pool.IdleCount())
}

func TestPagePool_AcquireCreatesOnDemand(t *testing.T) {
	t.Parallel()

	factory := &countingFactory{}
	pool := NewPagePool(factory.new, 2, zap.NewNop())
	require.NoError(t, pool.Initialize(context.Background()))

	// A batch larger than the pool: 2 reused, 3 created on demand.
	var pages []Page
	for i := 0; i < 5; i++ {
		page, err := pool.Acquire(context.Background())
		require.NoError(t, err)
		pages = append(pages, page)
	}
	require.Equal(t, 5, factory.count())
	require.Equal(t, 0, pool.IdleCount())

	// Releasing all five keeps the idle set at the soft cap; the surplus
	// three are disposed.
	for _, page := range pages {
		pool.Release(page)
	}
	require.Equal(t, 2, pool.IdleCount())
	require.Equal(t, 3, factory.closedCount())
}

func TestPagePool_AcquireNeverBlocks(t *testing.T) {
	t.Parallel()

	factory := &countingFactory{}
	pool := NewPagePool(factory.new, 1, zap.NewNop())

	// Empty idle set: Acquire must create rather than wait.
	page, err := pool.Acquire(context.Background())
	require.NoError(t, err)
	require.NotNil(t, page)
	require.Equal(t, 1, factory.count())
}

func TestPagePool_FactoryErrorPropagates(t *testing.T) {
	t.Parallel()

	factory := &countingFactory{err: errFactoryExhausted}
	pool := NewPagePool(factory.new, 2, zap.NewNop())

	_, err := pool.Acquire(context.Background())
	require.ErrorIs(t, err, errFactoryExhausted)
}

func TestPagePool_ShutdownDisposesIdle(t *testing.T) {
	t.Parallel()

	factory := &countingFactory{}
	pool := NewPagePool(factory.new, 2, zap.NewNop())
	require.NoError(t, pool.Initialize(context.Background()))

	pool.Shutdown()
	require.Equal(t, 0, pool.IdleCount())
	require.Equal(t, 2, factory.closedCount())

	_, err := pool.Acquire(context.Background())
	require.ErrorIs(t, err, ErrPoolClosed)
}

func TestPagePool_ReleaseAfterShutdownCloses(t *testing.T) {
	t.Parallel()

	factory := &countingFactory{}
	pool := NewPagePool(factory.new, 2, zap.NewNop())

	page, err := pool.Acquire(context.Background())
	require.NoError(t, err)

	pool.Shutdown()
	pool.Release(page)

	require.Equal(t, 1, factory.closedCount())
	require.Equal(t, 0, pool.IdleCount())
}
