package browser

import (
	"context"
	"fmt"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/chromedp"

	"github.com/sitesnap/sitesnap/internal/crawler"
)

// page implements crawler.Page on one chromedp tab context.
type page struct {
	ctx     context.Context
	cancel  context.CancelFunc
	cfg     Config
	tracker *networkTracker
}

// run executes chromedp actions on the tab under the navigation timeout,
// honoring cancellation of the caller's context.
func (p *page) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithTimeout(p.ctx, p.cfg.NavigationTimeout)
	defer cancel()

	stop := forwardCancel(ctx, cancel)
	defer stop()

	return chromedp.Run(runCtx, actions...)
}

func (p *page) Navigate(ctx context.Context, url string) error {
	p.tracker.reset()
	if err := p.run(ctx, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("navigate: %w", err)
	}
	return nil
}

func (p *page) WaitNetworkIdle(ctx context.Context) error {
	waitCtx, cancel := context.WithTimeout(ctx, p.cfg.NetworkIdleTimeout)
	defer cancel()
	if err := p.tracker.waitIdle(waitCtx, p.cfg.NetworkIdleWindow); err != nil {
		return fmt.Errorf("network idle: %w", err)
	}
	return nil
}

func (p *page) Evaluate(ctx context.Context, script string, out any) error {
	if err := p.run(ctx, chromedp.Evaluate(script, out)); err != nil {
		return fmt.Errorf("evaluate: %w", err)
	}
	return nil
}

func (p *page) QueryAll(ctx context.Context, selector string) ([]crawler.Element, error) {
	var nodes []*cdp.Node
	// AtLeast(0) keeps an empty match from blocking forever.
	err := p.run(ctx, chromedp.Nodes(selector, &nodes, chromedp.ByQueryAll, chromedp.AtLeast(0)))
	if err != nil {
		return nil, fmt.Errorf("query %q: %w", selector, err)
	}
	elements := make([]crawler.Element, 0, len(nodes))
	for _, n := range nodes {
		elements = append(elements, &element{page: p, id: n.NodeID})
	}
	return elements, nil
}

func (p *page) CurrentURL(ctx context.Context) (string, error) {
	var loc string
	if err := p.run(ctx, chromedp.Location(&loc)); err != nil {
		return "", fmt.Errorf("location: %w", err)
	}
	return loc, nil
}

func (p *page) FullMarkup(ctx context.Context) (string, error) {
	var html string
	if err := p.run(ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("outer html: %w", err)
	}
	return html, nil
}

func (p *page) Close() error {
	p.cancel()
	return nil
}

// element addresses one DOM node by its CDP node id.
type element struct {
	page *page
	id   cdp.NodeID
}

func (e *element) Attribute(ctx context.Context, name string) (string, bool, error) {
	var (
		value string
		ok    bool
	)
	err := e.page.run(ctx, chromedp.AttributeValue([]cdp.NodeID{e.id}, name, &value, &ok, chromedp.ByNodeID))
	if err != nil {
		return "", false, fmt.Errorf("attribute %q: %w", name, err)
	}
	return value, ok, nil
}

func (e *element) Text(ctx context.Context) (string, error) {
	var text string
	err := e.page.run(ctx, chromedp.Text([]cdp.NodeID{e.id}, &text, chromedp.ByNodeID))
	if err != nil {
		return "", fmt.Errorf("text: %w", err)
	}
	return text, nil
}

// forwardCancel propagates cancellation from the caller's context into a
// chromedp run that is otherwise bound to the tab context.
func forwardCancel(parent context.Context, cancel context.CancelFunc) func() {
	if parent == nil {
		return func() {}
	}
	done := make(chan struct{})
	go func() {
		select {
		case <-parent.Done():
			cancel()
		case <-done:
		}
	}()
	return func() { close(done) }
}
