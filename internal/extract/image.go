package extract

import (
	"net/url"
	"strings"
)

// scoreRule maps a URL predicate to a score delta. The weights are a
// tunable policy, not a correctness claim: they bias selection toward
// product imagery and away from logos and icons.
type scoreRule struct {
	match func(string) bool
	delta int
}

var imageScoreRules = []scoreRule{
	{func(u string) bool { return strings.Contains(u, "/img/") }, 5},
	{func(u string) bool { return strings.Contains(u, "/product") }, 4},
	{func(u string) bool { return strings.Contains(u, "secure") }, 2},
	{hasImageExt, 2},
	{func(u string) bool {
		return strings.Contains(u, "logo") || strings.Contains(u, "favicon") || strings.Contains(u, "icon")
	}, -8},
}

func hasImageExt(u string) bool {
	return strings.HasSuffix(u, ".jpg") || strings.HasSuffix(u, ".jpeg") || strings.HasSuffix(u, ".webp")
}

// SelectBestImage resolves every candidate against baseURL and returns the
// absolute URL with the strictly highest heuristic score. Ties keep the
// first-seen candidate. Candidates that fail to parse, or that resolve to a
// non-http scheme, are dropped silently. An empty pool returns "".
func SelectBestImage(candidates []string, baseURL string) string {
	base, err := url.Parse(baseURL)
	if err != nil {
		base = nil
	}

	best := ""
	bestScore := 0
	found := false

	for _, raw := range candidates {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		ref, err := url.Parse(raw)
		if err != nil {
			continue
		}
		abs := ref
		if base != nil {
			abs = base.ResolveReference(ref)
		}
		if (abs.Scheme != "http" && abs.Scheme != "https") || abs.Host == "" {
			continue
		}

		score := scoreImageURL(abs.String())
		if !found || score > bestScore {
			best = abs.String()
			bestScore = score
			found = true
		}
	}

	return best
}

// scoreImageURL applies the policy table to the lower-cased URL. Scores are
// additive, with no normalization.
func scoreImageURL(absURL string) int {
	lower := strings.ToLower(absURL)
	score := 0
	for _, rule := range imageScoreRules {
		if rule.match(lower) {
			score += rule.delta
		}
	}
	return score
}
