package crawler

import (
	"context"
	"strings"

	"go.uber.org/zap"
)

// Strategy is one way of deriving a field's value from a rendered page.
// An error is equivalent to an empty result: logged, never propagated.
type Strategy struct {
	Name string
	Fn   func(ctx context.Context, page Page) (string, error)
}

// ExtractTitle derives the page title. The title tag is tried first and
// short-circuits on a non-empty value; the remaining strategies run
// concurrently and the first non-empty trimmed result wins. If every source
// comes up empty the page's URL is the title.
//
// The race trades determinism for latency: two runs against the same static
// page may prefer different but equally valid sources depending on
// scheduling. That is accepted behavior, not a defect.
func ExtractTitle(ctx context.Context, page Page, logger *zap.Logger) Extraction {
	if v, err := evalString(ctx, page, "document.title"); err == nil && strings.TrimSpace(v) != "" {
		return Extraction{Field: "title", Value: strings.TrimSpace(v), Strategy: "title_tag"}
	} else if err != nil {
		logger.Debug("title tag strategy failed", zap.Error(err))
	}

	ext := race(ctx, page, "title", []Strategy{
		{Name: "first_heading", Fn: firstElementText("h1")},
		{Name: "og_title", Fn: metaContent(`meta[property="og:title"]`)},
		{Name: "twitter_title", Fn: metaContent(`meta[name="twitter:title"]`)},
	}, logger)
	if ext.Found() {
		return ext
	}

	u, err := page.CurrentURL(ctx)
	if err != nil {
		logger.Debug("url fallback failed", zap.Error(err))
	}
	return Extraction{Field: "title", Value: u, Strategy: "url_fallback"}
}

// ExtractDescription derives the page description. All primary strategies
// race; the first non-empty trimmed value wins. When they all come up empty,
// every meta tag whose name contains "description" is scanned in document
// order as a last resort. An absent description is a valid outcome.
func ExtractDescription(ctx context.Context, page Page, logger *zap.Logger) Extraction {
	ext := race(ctx, page, "description", []Strategy{
		{Name: "meta_description", Fn: metaContent(`meta[name="description"]`)},
		{Name: "og_description", Fn: metaContent(`meta[property="og:description"]`)},
		{Name: "twitter_description", Fn: metaContent(`meta[name="twitter:description"]`)},
		{Name: "first_paragraph", Fn: firstElementText("p")},
	}, logger)
	if ext.Found() {
		return ext
	}

	if v, err := scanDescriptionMetas(ctx, page); err != nil {
		logger.Debug("description meta scan failed", zap.Error(err))
	} else if v != "" {
		return Extraction{Field: "description", Value: v, Strategy: "meta_scan"}
	}
	return Extraction{Field: "description"}
}

type raceResult struct {
	strategy string
	value    string
}

// race launches every strategy concurrently and returns the first completion
// with a non-empty trimmed value. Losers run to completion into a buffered
// channel and their results are discarded; no cancellation is needed for
// correctness.
func race(ctx context.Context, page Page, field string, strategies []Strategy, logger *zap.Logger) Extraction {
	results := make(chan raceResult, len(strategies))
	for _, s := range strategies {
		go func(s Strategy) {
			v, err := s.Fn(ctx, page)
			if err != nil {
				logger.Debug("extraction strategy failed",
					zap.String("field", field),
					zap.String("strategy", s.Name),
					zap.Error(err),
				)
				results <- raceResult{strategy: s.Name}
				return
			}
			results <- raceResult{strategy: s.Name, value: strings.TrimSpace(v)}
		}(s)
	}

	for range strategies {
		r := <-results
		if r.value != "" {
			return Extraction{Field: field, Value: r.value, Strategy: r.strategy}
		}
	}
	return Extraction{Field: field}
}

// metaContent reads the content attribute of the first element matching the
// selector.
func metaContent(selector string) func(ctx context.Context, page Page) (string, error) {
	return func(ctx context.Context, page Page) (string, error) {
		els, err := page.QueryAll(ctx, selector)
		if err != nil {
			return "", err
		}
		if len(els) == 0 {
			return "", nil
		}
		v, ok, err := els[0].Attribute(ctx, "content")
		if err != nil || !ok {
			return "", err
		}
		return v, nil
	}
}

// firstElementText reads the text of the first element matching the selector.
func firstElementText(selector string) func(ctx context.Context, page Page) (string, error) {
	return func(ctx context.Context, page Page) (string, error) {
		els, err := page.QueryAll(ctx, selector)
		if err != nil {
			return "", err
		}
		if len(els) == 0 {
			return "", nil
		}
		return els[0].Text(ctx)
	}
}

func scanDescriptionMetas(ctx context.Context, page Page) (string, error) {
	els, err := page.QueryAll(ctx, `meta[name*="description"]`)
	if err != nil {
		return "", err
	}
	for _, el := range els {
		v, ok, err := el.Attribute(ctx, "content")
		if err != nil || !ok {
			continue
		}
		if v = strings.TrimSpace(v); v != "" {
			return v, nil
		}
	}
	return "", nil
}

func evalString(ctx context.Context, page Page, script string) (string, error) {
	var out string
	if err := page.Evaluate(ctx, script, &out); err != nil {
		return "", err
	}
	return out, nil
}
