package crawler

import (
	"context"
	"sync"
)

// fakeElement is a scripted DOM element for tests.
type fakeElement struct {
	attrs   map[string]string
	text    string
	attrErr error
	textErr error
}

func (e *fakeElement) Attribute(_ context.Context, name string) (string, bool, error) {
	if e.attrErr != nil {
		return "", false, e.attrErr
	}
	v, ok := e.attrs[name]
	return v, ok, nil
}

func (e *fakeElement) Text(_ context.Context) (string, error) {
	if e.textErr != nil {
		return "", e.textErr
	}
	return e.text, nil
}

func anchor(href string) Element {
	return &fakeElement{attrs: map[string]string{"href": href}}
}

func meta(content string) Element {
	return &fakeElement{attrs: map[string]string{"content": content}}
}

// fakePage is a scripted renderable page. Fields configure what each
// capability call observes; counters record what the engine did.
type fakePage struct {
	mu sync.Mutex

	navErr  error
	idleErr error

	title    string
	titleErr error
	current  string
	markup   string

	// heights is consumed one value per scroll-height read.
	heights   []int
	heightIdx int

	elements  map[string][]Element
	queryErrs map[string]error

	navigated []string
	scrolls   int
	evaluated []string
	closed    bool
}

func (p *fakePage) Navigate(_ context.Context, url string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.navigated = append(p.navigated, url)
	return p.navErr
}

func (p *fakePage) WaitNetworkIdle(_ context.Context) error {
	return p.idleErr
}

func (p *fakePage) Evaluate(_ context.Context, script string, out any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch script {
	case "document.title":
		if p.titleErr != nil {
			return p.titleErr
		}
		if s, ok := out.(*string); ok {
			*s = p.title
		}
	case "document.body.scrollHeight":
		h := 0
		if len(p.heights) > 0 {
			if p.heightIdx >= len(p.heights) {
				h = p.heights[len(p.heights)-1]
			} else {
				h = p.heights[p.heightIdx]
				p.heightIdx++
			}
		}
		if n, ok := out.(*int); ok {
			*n = h
		}
	case "window.scrollTo(0, document.body.scrollHeight)":
		p.scrolls++
	default:
		p.evaluated = append(p.evaluated, script)
	}
	return nil
}

func (p *fakePage) QueryAll(_ context.Context, selector string) ([]Element, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.queryErrs[selector]; err != nil {
		return nil, err
	}
	return p.elements[selector], nil
}

func (p *fakePage) CurrentURL(_ context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current != "" {
		return p.current, nil
	}
	if len(p.navigated) > 0 {
		return p.navigated[len(p.navigated)-1], nil
	}
	return "", nil
}

func (p *fakePage) FullMarkup(_ context.Context) (string, error) {
	return p.markup, nil
}

func (p *fakePage) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

func (p *fakePage) closedNow() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

// countingFactory builds fresh fake pages and tracks how many were created.
type countingFactory struct {
	mu      sync.Mutex
	created []*fakePage
	err     error
	// failAfter, when > 0, makes creation fail once that many pages exist.
	failAfter int
}

func (f *countingFactory) new(_ context.Context) (Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if f.failAfter > 0 && len(f.created) >= f.failAfter {
		return nil, errFactoryExhausted
	}
	page := &fakePage{}
	f.created = append(f.created, page)
	return page, nil
}

func (f *countingFactory) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.created)
}

func (f *countingFactory) closedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, p := range f.created {
		if p.closedNow() {
			n++
		}
	}
	return n
}
