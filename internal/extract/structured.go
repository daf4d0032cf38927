package extract

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/wishlens/pricepeek/internal/types"
)

// titleFields are probed in priority order at every visited object.
var titleFields = []string{"name", "title", "headline"}

// priceFields are probed at every visited object; offers and
// priceSpecification wrappers are reached by the full traversal itself.
var priceFields = []string{"price", "lowPrice", "highPrice"}

// ExtractStructured parses every JSON-LD script block in the document and
// returns one Extraction per block. Blocks that fail to parse, or that hold
// non-object/non-array JSON, yield an empty extraction rather than an error.
func ExtractStructured(doc *goquery.Document) []types.Extraction {
	var results []types.Extraction

	doc.Find(`script[type="application/ld+json"]`).Each(func(i int, sel *goquery.Selection) {
		raw := strings.TrimSpace(sel.Text())
		if raw == "" {
			return
		}
		results = append(results, extractBlock(raw))
	})

	return results
}

// extractBlock parses one block's raw text and walks the resulting value
// breadth-first, collecting title, image, and price candidates at every
// object node. Structured data nests arbitrarily (a Product inside an Offer
// inside a @graph array), so every nested object value is visited, not just
// the known fields.
func extractBlock(raw string) types.Extraction {
	ex := types.NewExtraction()

	dec := json.NewDecoder(strings.NewReader(raw))
	// Keep numbers verbatim so a price of 199.00 is not rewritten to "199".
	dec.UseNumber()

	var root any
	if err := dec.Decode(&root); err != nil {
		return ex
	}

	queue := []any{root}
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]

		switch v := node.(type) {
		case map[string]any:
			collectTitle(v, ex.Titles)
			collectImages(v["image"], ex.Images)
			collectPrices(v, ex.Prices)

			// JSON object key order is lost on decode; sort for a stable
			// traversal order between runs.
			keys := make([]string, 0, len(v))
			for k := range v {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				switch v[k].(type) {
				case map[string]any, []any:
					queue = append(queue, v[k])
				}
			}
		case []any:
			for _, elem := range v {
				switch elem.(type) {
				case map[string]any, []any:
					queue = append(queue, elem)
				}
			}
		}
	}

	return ex
}

// collectTitle adds the first present title-like field of the object.
func collectTitle(obj map[string]any, out *types.StringSet) {
	for _, field := range titleFields {
		if s, ok := obj[field].(string); ok && strings.TrimSpace(s) != "" {
			out.Add(strings.TrimSpace(s))
			return
		}
	}
}

// collectImages handles the four shapes an image field takes in the wild:
// a single string, an array of strings, an array of {url: ...} objects, and
// a single {url: ...} object.
func collectImages(field any, out *types.StringSet) {
	switch v := field.(type) {
	case string:
		out.Add(strings.TrimSpace(v))
	case []any:
		for _, elem := range v {
			switch e := elem.(type) {
			case string:
				out.Add(strings.TrimSpace(e))
			case map[string]any:
				if s, ok := e["url"].(string); ok {
					out.Add(strings.TrimSpace(s))
				}
			}
		}
	case map[string]any:
		if s, ok := v["url"].(string); ok {
			out.Add(strings.TrimSpace(s))
		}
	}
}

// collectPrices adds price-like fields of the object. Prices may be numbers
// or strings; numbers were decoded as json.Number and keep their literal
// form.
func collectPrices(obj map[string]any, out *types.StringSet) {
	for _, field := range priceFields {
		switch v := obj[field].(type) {
		case string:
			out.Add(strings.TrimSpace(v))
		case json.Number:
			out.Add(v.String())
		}
	}
}
