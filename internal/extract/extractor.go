package extract

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/wishlens/pricepeek/internal/fetcher"
	"github.com/wishlens/pricepeek/internal/types"
)

// Extractor turns an arbitrary product URL into best-effort metadata. It
// fails only for invalid input and fetch failure; a page with nothing
// extractable resolves every field through its fallback chain instead.
type Extractor struct {
	fetcher *fetcher.Client
	logger  *slog.Logger
}

// New creates an Extractor on top of the given fetcher.
func New(f *fetcher.Client, logger *slog.Logger) *Extractor {
	return &Extractor{
		fetcher: f,
		logger:  logger.With("component", "extractor"),
	}
}

// ProductData fetches rawURL and derives a title, a representative image,
// and a numeric price from the page.
func (e *Extractor) ProductData(ctx context.Context, rawURL string) (*types.ProductMetadata, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return nil, fmt.Errorf("%w: %q", types.ErrInvalidURL, rawURL)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %q must be an absolute http/https URL", types.ErrInvalidURL, rawURL)
	}

	page, err := e.fetcher.Fetch(ctx, u.String())
	if err != nil {
		return nil, err
	}

	doc, err := page.Document()
	if err != nil {
		// Unparseable markup is an extraction miss, not a failure.
		e.logger.Warn("html parse failed, using fallbacks", "url", page.FinalURL, "error", err)
		return &types.ProductMetadata{
			Title:     URLTitle(page.FinalURL),
			SourceURL: page.FinalURL,
		}, nil
	}

	extractions := ExtractStructured(doc)
	fb := CollectFallbacks(doc)

	title := firstNonEmpty(
		func() string { return structuredTitle(extractions) },
		func() string { return fb.OGTitle },
		func() string { return fb.TwitterTitle },
		func() string { return fb.DocTitle },
		func() string { return URLTitle(page.FinalURL) },
	)

	pool := types.NewStringSet()
	for _, ex := range extractions {
		pool.AddAll(ex.Images)
	}
	pool.AddAll(fb.Images)
	image := SelectBestImage(pool.Values(), page.FinalURL)

	price := firstNormalizable(priceCandidates(extractions, fb))

	e.logger.Debug("extraction complete",
		"url", page.FinalURL,
		"blocks", len(extractions),
		"image_candidates", pool.Len(),
		"has_price", price != nil,
	)

	return &types.ProductMetadata{
		Title:     title,
		Image:     image,
		Price:     price,
		SourceURL: page.FinalURL,
	}, nil
}

// firstNonEmpty evaluates providers in order and returns the first
// non-empty result. Keeping the chains declarative keeps the priority
// order visible and testable on its own.
func firstNonEmpty(providers ...func() string) string {
	for _, p := range providers {
		if v := p(); v != "" {
			return v
		}
	}
	return ""
}

// structuredTitle returns the first title found across all blocks, in block
// order then traversal order.
func structuredTitle(extractions []types.Extraction) string {
	for _, ex := range extractions {
		if ex.Titles.Len() > 0 {
			return ex.Titles.Values()[0]
		}
	}
	return ""
}

// priceCandidates orders raw price strings by source priority: structured
// data first, then the meta price, then the selector price.
func priceCandidates(extractions []types.Extraction, fb *Fallbacks) []string {
	var out []string
	for _, ex := range extractions {
		out = append(out, ex.Prices.Values()...)
	}
	return append(out, fb.MetaPrice, fb.SelectorPrice)
}

// firstNormalizable returns the first candidate that normalizes, or nil.
func firstNormalizable(candidates []string) *string {
	for _, raw := range candidates {
		if raw == "" {
			continue
		}
		if canonical, ok := NormalizePrice(raw); ok {
			return &canonical
		}
	}
	return nil
}

// URLTitle synthesizes a title from the URL itself: the last path segment,
// URL-decoded, with separators replaced by spaces; the hostname when the
// path is empty. It is exported so the delivery layer can build degrade
// responses without re-running an extraction.
func URLTitle(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return strings.TrimSpace(rawURL)
	}

	segment := ""
	for _, part := range strings.Split(u.Path, "/") {
		if part != "" {
			segment = part
		}
	}
	if segment != "" {
		if decoded, err := url.PathUnescape(segment); err == nil {
			segment = decoded
		}
		replacer := strings.NewReplacer("-", " ", "_", " ", "+", " ")
		if title := collapseSpace(replacer.Replace(segment)); title != "" {
			return title
		}
	}
	return u.Hostname()
}
