package extract

import (
	"log/slog"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/docscrape/docscrape/internal/config"
	"github.com/docscrape/docscrape/internal/model"
	"github.com/docscrape/docscrape/internal/urlutil"
)

// Engine extracts entries and outbound links from parsed pages according
// to one source configuration. It is safe for concurrent use: the source
// is read-only and extraction keeps no per-page state on the engine.
type Engine struct {
	src    *config.Source
	logger *slog.Logger
	now    func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for per-entry skip diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithClock replaces the scrapedAt timestamp source. Intended for tests
// that compare extracted entries for equality.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// NewEngine creates an extraction engine for the given source.
func NewEngine(src *config.Source, opts ...Option) *Engine {
	e := &Engine{
		src:    src,
		logger: slog.New(slog.DiscardHandler),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Links collects outbound links from a page: navigation links first, then
// sub-navigation links, then content links. Each href is resolved against
// the page URL, normalized, and deduplicated. First-seen order is kept so
// crawls are reproducible given deterministic fetch results.
func (e *Engine) Links(doc *goquery.Document, pageURL string) []string {
	selectors := []string{
		e.src.Selectors.NavigationLinks,
		e.src.Selectors.SubNavigationLinks,
		e.src.Selectors.ContentLinks,
	}

	seen := make(map[string]struct{})
	var links []string
	for _, selector := range selectors {
		if selector == "" {
			continue
		}
		doc.Find(selector).Each(func(_ int, a *goquery.Selection) {
			href, ok := a.Attr("href")
			if !ok {
				return
			}
			resolved := urlutil.Resolve(pageURL, href)
			if resolved == "" {
				return
			}
			normalized := urlutil.Normalize(resolved)
			if _, dup := seen[normalized]; dup {
				return
			}
			seen[normalized] = struct{}{}
			links = append(links, normalized)
		})
	}
	return links
}

// Entries extracts all entries from a page. Anchors that match no type
// pattern or whose name cannot be extracted yield no entry; both are
// per-anchor skips, never errors.
func (e *Engine) Entries(doc *goquery.Document, pageURL string) []model.Entry {
	ns := e.namespace(doc)

	var entries []model.Entry
	doc.Find(e.src.Selectors.ContentLinks).Each(func(_ int, sel *goquery.Selection) {
		if entry, ok := e.buildEntry(sel, pageURL, ns); ok {
			entries = append(entries, entry)
		}
	})
	return entries
}

// namespace collects the page-level namespace, outermost first in
// document order.
func (e *Engine) namespace(doc *goquery.Document) []string {
	selector := e.src.Selectors.Namespace
	if selector == "" {
		return nil
	}

	var ns []string
	doc.Find(selector).Each(func(_ int, el *goquery.Selection) {
		if t := strings.TrimSpace(el.Text()); t != "" {
			ns = append(ns, t)
		}
	})
	return ns
}

// classify tests the anchor text against the type patterns in fixed
// priority order. The first match wins.
func (e *Engine) classify(text string) (model.EntryType, bool) {
	checks := []struct {
		pattern *config.Pattern
		typ     model.EntryType
	}{
		{e.src.Patterns.IsClass, model.TypeClass},
		{e.src.Patterns.IsMethod, model.TypeMethod},
		{e.src.Patterns.IsFunction, model.TypeFunction},
		{e.src.Patterns.IsModule, model.TypeModule},
		{e.src.Patterns.IsProperty, model.TypeProperty},
	}
	for _, c := range checks {
		if c.pattern != nil && c.pattern.MatchString(text) {
			return c.typ, true
		}
	}
	return "", false
}

// buildEntry extracts one entry from a content-link anchor. The second
// return value is false when the anchor yields no entry.
func (e *Engine) buildEntry(sel *goquery.Selection, pageURL string, ns []string) (model.Entry, bool) {
	fullText := strings.TrimSpace(sel.Text())

	typ, ok := e.classify(fullText)
	if !ok {
		return model.Entry{}, false
	}

	nameText := fullText
	if nameSel := e.src.Selectors.Name; nameSel != "" {
		if t := firstText(sel, nameSel); t != "" {
			nameText = t
		}
	}

	name := nameText
	if p := e.src.Patterns.NameExtract; p != nil {
		extracted, ok := p.CaptureGroup(nameText)
		if !ok {
			e.logger.Debug("name pattern did not match, skipping entry",
				"text", nameText, "url", pageURL)
			return model.Entry{}, false
		}
		name = extracted
	}

	id := model.JoinID(ns, name)
	if idSel := e.src.Selectors.ID; idSel != "" {
		if idText := firstText(sel, idSel); idText != "" {
			if p := e.src.Patterns.IDExtract; p != nil {
				// Extraction failure falls back to the joined id.
				if extracted, ok := p.CaptureGroup(idText); ok {
					id = extracted
				}
			} else {
				id = idText
			}
		}
	}

	entryURL := pageURL
	if href, ok := sel.Attr("href"); ok {
		if resolved := urlutil.Resolve(pageURL, href); resolved != "" {
			entryURL = resolved
		}
	}

	entry := model.Entry{
		ID:          id,
		Type:        typ,
		Namespace:   ns,
		Name:        name,
		Description: collectText(sel, e.src.Selectors.Description),
		Source: model.Provenance{
			ConfigName:    e.src.Name,
			URL:           entryURL,
			NormalizedURL: urlutil.Normalize(entryURL),
			Version:       e.src.Version,
		},
		Examples:  e.examples(sel),
		ScrapedAt: e.now(),
	}

	if blocks := collectText(sel, e.src.Selectors.Title); len(blocks) > 0 {
		entry.Title = blocks[0]
	}

	if sigSel := e.src.Selectors.Signature; sigSel != "" {
		if text := firstText(sel, sigSel); text != "" {
			if p := e.src.Patterns.SignatureClean; p != nil {
				if cleaned, ok := p.CaptureGroup(text); ok {
					text = cleaned
				}
			}
			entry.Signature = text
		}
	}

	if len(e.src.Selectors.Parameters) > 0 {
		entry.Parameters = e.parameters(e.parameterScope(sel))
	}
	entry.Returns = e.returns(sel)

	if typ == model.TypeClass {
		if e.src.Selectors.Methods != nil {
			entry.Methods = e.methods(sel)
		}
		if e.src.Selectors.Properties != nil {
			entry.Properties = e.properties(sel)
		}
	}

	return entry, true
}

// returns extracts the return-value documentation from scope. Empty text
// yields no Returns value at all.
func (e *Engine) returns(scope *goquery.Selection) *model.Returns {
	if e.src.Selectors.Returns == "" {
		return nil
	}
	text := firstText(scope, e.src.Selectors.Returns)
	if text == "" {
		return nil
	}
	return &model.Returns{Description: text}
}
