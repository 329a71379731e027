package crawler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func fastConfig() Config {
	cfg := DefaultConfig()
	cfg.SettleDelay = 0
	cfg.ScrollDelay = 0
	cfg.ScrollMaxAttempts = 3
	return cfg
}

func TestProcessor_NavigationFailureYieldsNoRecord(t *testing.T) {
	t.Parallel()

	page := &fakePage{navErr: errors.New("connection refused")}
	p := NewProcessor(fastConfig(), zap.NewNop())

	record, err := p.Process(context.Background(), "https://x.test/a", page)
	require.Error(t, err)
	require.Nil(t, record)
}

func TestProcessor_NetworkIdleFailureYieldsNoRecord(t *testing.T) {
	t.Parallel()

	page := &fakePage{idleErr: errors.New("idle timeout")}
	p := NewProcessor(fastConfig(), zap.NewNop())

	record, err := p.Process(context.Background(), "https://x.test/a", page)
	require.Error(t, err)
	require.Nil(t, record)
}

func TestProcessor_ProducesCompleteRecord(t *testing.T) {
	t.Parallel()

	page := &fakePage{
		title:   "Page A",
		current: "https://x.test/a",
		markup:  "<html><body>rendered</body></html>",
		heights: []int{100, 100},
		elements: map[string][]Element{
			"a": {
				anchor("/b"),
				anchor("https://x.test/c"),
				anchor("https://y.test/elsewhere"),
			},
		},
	}
	p := NewProcessor(fastConfig(), zap.NewNop())

	record, err := p.Process(context.Background(), "https://x.test/a", page)
	require.NoError(t, err)
	require.NotNil(t, record)

	require.Equal(t, "https://x.test/a", record.URL)
	require.Equal(t, "Page A", record.Title)
	require.Equal(t, "<html><body>rendered</body></html>", record.Content)
	require.WithinDuration(t, time.Now().UTC(), record.FetchedAt, 5*time.Second)
	// Relative hrefs resolve against the current URL; cross-domain links
	// stay in the record (only the frontier filters by domain).
	require.Equal(t, []string{
		"https://x.test/b",
		"https://x.test/c",
		"https://y.test/elsewhere",
	}, record.Links)
}

func TestProcessor_LinksDeduplicatedAndSorted(t *testing.T) {
	t.Parallel()

	page := &fakePage{
		current: "https://x.test/",
		heights: []int{10, 10},
		elements: map[string][]Element{
			"a": {
				anchor("https://x.test/z"),
				anchor("https://x.test/a"),
				anchor("https://x.test/z"),
				anchor("mailto:someone@x.test"),
				anchor("javascript:void(0)"),
				&fakeElement{attrs: map[string]string{}}, // no href
			},
		},
	}
	p := NewProcessor(fastConfig(), zap.NewNop())

	first, err := p.Process(context.Background(), "https://x.test/", page)
	require.NoError(t, err)
	require.Equal(t, []string{"https://x.test/a", "https://x.test/z"}, first.Links)

	// Re-running against the same static page yields an identical list.
	again, err := p.Process(context.Background(), "https://x.test/", page)
	require.NoError(t, err)
	require.Equal(t, first.Links, again.Links)
}

func TestProcessor_PerLinkFailureSkipped(t *testing.T) {
	t.Parallel()

	page := &fakePage{
		current: "https://x.test/",
		heights: []int{10, 10},
		elements: map[string][]Element{
			"a": {
				&fakeElement{attrErr: errors.New("stale node")},
				anchor("https://x.test/ok"),
			},
		},
	}
	p := NewProcessor(fastConfig(), zap.NewNop())

	record, err := p.Process(context.Background(), "https://x.test/", page)
	require.NoError(t, err)
	require.Equal(t, []string{"https://x.test/ok"}, record.Links)
}

func TestProcessor_ScrollStopsOnConvergence(t *testing.T) {
	t.Parallel()

	// Heights: initial read 100, then 150 (grew), then 150 (stable).
	page := &fakePage{
		current: "https://x.test/",
		heights: []int{100, 150, 150},
	}
	cfg := fastConfig()
	cfg.ScrollMaxAttempts = 10
	p := NewProcessor(cfg, zap.NewNop())

	_, err := p.Process(context.Background(), "https://x.test/", page)
	require.NoError(t, err)
	require.Equal(t, 2, page.scrolls)
}

func TestProcessor_ScrollStopsAtAttemptCeiling(t *testing.T) {
	t.Parallel()

	// Height grows forever; the ceiling must terminate the loop.
	page := &fakePage{
		current: "https://x.test/",
		heights: []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10},
	}
	cfg := fastConfig()
	cfg.ScrollMaxAttempts = 3
	p := NewProcessor(cfg, zap.NewNop())

	_, err := p.Process(context.Background(), "https://x.test/", page)
	require.NoError(t, err)
	require.Equal(t, 3, page.scrolls)
}

func TestProcessor_RunsCleanupScript(t *testing.T) {
	t.Parallel()

	page := &fakePage{
		current: "https://x.test/",
		heights: []int{10, 10},
	}
	cfg := fastConfig()
	cfg.CleanupScript = "function cleanPage() { /* strip volatile markup */ }"
	p := NewProcessor(cfg, zap.NewNop())

	_, err := p.Process(context.Background(), "https://x.test/", page)
	require.NoError(t, err)
	require.Equal(t, []string{cfg.CleanupScript, "cleanPage()"}, page.evaluated)
}
