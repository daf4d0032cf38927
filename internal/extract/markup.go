package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"

	"github.com/wishlens/pricepeek/internal/types"
)

// imageMetaSelectors are probed in order of preference; every hit joins the
// same candidate pool as structured-data images.
var imageMetaSelectors = []string{
	`meta[property="og:image:secure_url"]`,
	`meta[property="og:image:url"]`,
	`meta[property="og:image"]`,
	`meta[name="twitter:image"], meta[property="twitter:image"]`,
	`meta[name="twitter:image:src"], meta[property="twitter:image:src"]`,
}

// priceMetaSelectors are probed in order; the first non-empty content wins.
var priceMetaSelectors = []string{
	`meta[property="product:price:amount"]`,
	`meta[property="og:price:amount"]`,
	`meta[name="price"], meta[property="price"]`,
	`meta[itemprop="price:amount"]`,
	`meta[itemprop="price"]`,
}

// priceXPaths probe common DOM price conventions, in order: an exact
// "price" class, a price id, an itemprop, and finally any class merely
// containing "price".
var priceXPaths = []string{
	`//*[contains(concat(' ', normalize-space(@class), ' '), ' price ')]`,
	`//*[@id='price']`,
	`//*[@itemprop='price']`,
	`//*[contains(@class, 'price')]`,
}

// Fallbacks holds candidates gathered from meta-tag and DOM-selector
// conventions, used when structured data is absent or incomplete.
type Fallbacks struct {
	OGTitle      string
	TwitterTitle string
	DocTitle     string

	// Images preserves the preference order of the meta tags it came from.
	Images *types.StringSet

	// MetaPrice is the first non-empty known price meta attribute.
	MetaPrice string

	// SelectorPrice is the text of the first known price DOM selector; it is
	// consulted only when structured-data and meta prices are both absent.
	SelectorPrice string
}

// CollectFallbacks scans the document for Open Graph, Twitter card, and
// common price markup. It never fails: missing markup just leaves fields
// empty.
func CollectFallbacks(doc *goquery.Document) *Fallbacks {
	fb := &Fallbacks{Images: types.NewStringSet()}

	fb.OGTitle = metaContent(doc, `meta[property="og:title"]`)
	fb.TwitterTitle = metaContent(doc, `meta[name="twitter:title"], meta[property="twitter:title"]`)
	fb.DocTitle = collapseSpace(doc.Find("title").First().Text())

	for _, sel := range imageMetaSelectors {
		fb.Images.Add(metaContent(doc, sel))
	}

	for _, sel := range priceMetaSelectors {
		if content := metaContent(doc, sel); content != "" {
			fb.MetaPrice = content
			break
		}
	}

	fb.SelectorPrice = selectorPrice(doc)

	return fb
}

// metaContent returns the trimmed content attribute of the first match.
func metaContent(doc *goquery.Document, selector string) string {
	content, _ := doc.Find(selector).First().Attr("content")
	return strings.TrimSpace(content)
}

// selectorPrice probes the known price XPaths against the document tree.
// goquery and htmlquery share the x/net/html node type, so the parsed tree
// is queried directly without a second parse.
func selectorPrice(doc *goquery.Document) string {
	if len(doc.Nodes) == 0 {
		return ""
	}
	root := doc.Nodes[0]

	for _, expr := range priceXPaths {
		node, err := htmlquery.Query(root, expr)
		if err != nil || node == nil {
			continue
		}
		if text := nodeText(node); text != "" {
			return text
		}
	}
	return ""
}

// nodeText extracts a value from a matched node: the content attribute for
// meta-style elements, otherwise the collapsed inner text.
func nodeText(node *html.Node) string {
	if content := htmlquery.SelectAttr(node, "content"); strings.TrimSpace(content) != "" {
		return strings.TrimSpace(content)
	}
	return collapseSpace(htmlquery.InnerText(node))
}

// collapseSpace trims and collapses all interior whitespace runs to single
// spaces.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
