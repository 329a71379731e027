// Package crawler implements the crawl orchestration engine: the page
// resource pool, the field extraction chains, the per-page processor, and
// the frontier controller that drives a whole site crawl.
//
// The package never talks to a browser directly. Everything it needs from
// the rendering side is expressed by the Page and Element interfaces, so
// the engine can be exercised in tests with scripted fakes and in
// production with the chromedp implementation in internal/browser.
package crawler
