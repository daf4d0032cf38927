package extract

import (
	"testing"
)

const markupTestHTML = `<!DOCTYPE html>
<html>
<head>
    <title>  Acme   Widget  </title>
    <meta property="og:title" content="OG Widget">
    <meta name="twitter:title" content="TW Widget">
    <meta property="og:image:secure_url" content="https://cdn.acme.com/img/widget-secure.jpg">
    <meta property="og:image" content="https://cdn.acme.com/img/widget.jpg">
    <meta name="twitter:image" content="https://cdn.acme.com/img/widget-tw.jpg">
    <meta property="product:price:amount" content="49.99">
    <meta property="og:price:amount" content="48.00">
</head>
<body>
    <span class="price">  $52.00 </span>
</body>
</html>`

func TestCollectFallbacks(t *testing.T) {
	fb := CollectFallbacks(makeDoc(t, markupTestHTML))

	if fb.OGTitle != "OG Widget" {
		t.Errorf("OGTitle = %q, want %q", fb.OGTitle, "OG Widget")
	}
	if fb.TwitterTitle != "TW Widget" {
		t.Errorf("TwitterTitle = %q, want %q", fb.TwitterTitle, "TW Widget")
	}
	if fb.DocTitle != "Acme Widget" {
		t.Errorf("DocTitle = %q, want whitespace-collapsed %q", fb.DocTitle, "Acme Widget")
	}

	images := fb.Images.Values()
	if len(images) != 3 {
		t.Fatalf("images = %v, want 3 in preference order", images)
	}
	if images[0] != "https://cdn.acme.com/img/widget-secure.jpg" {
		t.Errorf("images[0] = %q, want the secure og:image first", images[0])
	}

	// product:price:amount outranks og:price:amount.
	if fb.MetaPrice != "49.99" {
		t.Errorf("MetaPrice = %q, want %q", fb.MetaPrice, "49.99")
	}

	if fb.SelectorPrice != "$52.00" {
		t.Errorf("SelectorPrice = %q, want %q", fb.SelectorPrice, "$52.00")
	}
}

func TestCollectFallbacksEmptyPage(t *testing.T) {
	fb := CollectFallbacks(makeDoc(t, "<html><head></head><body><p>nothing here</p></body></html>"))

	if fb.OGTitle != "" || fb.TwitterTitle != "" || fb.DocTitle != "" {
		t.Errorf("expected empty titles, got %q/%q/%q", fb.OGTitle, fb.TwitterTitle, fb.DocTitle)
	}
	if fb.Images.Len() != 0 {
		t.Errorf("images = %v, want none", fb.Images.Values())
	}
	if fb.MetaPrice != "" || fb.SelectorPrice != "" {
		t.Errorf("expected no prices, got meta=%q selector=%q", fb.MetaPrice, fb.SelectorPrice)
	}
}

func TestSelectorPriceOrder(t *testing.T) {
	// An exact "price" class beats an id, which beats itemprop, which beats
	// a class merely containing "price".
	html := `<html><body>
        <div id="price">20</div>
        <div class="sale-price">30</div>
        <span class="price">10</span>
        <i itemprop="price" content="25"></i>
    </body></html>`

	fb := CollectFallbacks(makeDoc(t, html))
	if fb.SelectorPrice != "10" {
		t.Errorf("SelectorPrice = %q, want the .price element's text", fb.SelectorPrice)
	}
}

func TestSelectorPriceItempropContent(t *testing.T) {
	// itemprop price carried in a content attribute, not inner text.
	html := `<html><body><meta itemprop="price" content="15.90"></body></html>`

	fb := CollectFallbacks(makeDoc(t, html))
	if fb.SelectorPrice != "15.90" {
		t.Errorf("SelectorPrice = %q, want %q", fb.SelectorPrice, "15.90")
	}
}

func TestSelectorPriceLooseClassMatch(t *testing.T) {
	html := `<html><body><span class="product-price-current">99 kr</span></body></html>`

	fb := CollectFallbacks(makeDoc(t, html))
	if fb.SelectorPrice != "99 kr" {
		t.Errorf("SelectorPrice = %q, want %q", fb.SelectorPrice, "99 kr")
	}
}
