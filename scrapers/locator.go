package scrapers

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Strategy names the heuristic that produced a candidate. Site-specific
// strategies use the retailer name.
type Strategy string

const (
	StrategyOpenGraph   Strategy = "og:image"
	StrategyTwitterCard Strategy = "twitter:image"
	StrategyJSONLD      Strategy = "json-ld"
	StrategyImgFallback Strategy = "img"
)

// Candidate is an image URL tagged with the strategy that found it
type Candidate struct {
	URL      string
	Strategy Strategy
}

const minFallbackSrcLen = 20

var (
	fallbackDenylist = []string{"sprite", "icon", "logo", "pixel", "1x1", "data:image", "svg"}
	productTokens    = []string{"product", "img"}
	reImageExt       = regexp.MustCompile(`(?i)\.(jpg|jpeg|png|webp)`)
)

// Locate finds the single most likely product image in a page. Strategies run
// in fixed priority order and the first hit wins:
//
//  1. og:image meta tag
//  2. twitter:image meta tag
//  3. retailer-specific patterns, gated on the source URL
//  4. schema.org Product JSON-LD
//  5. the first <img> that looks like a product photo
//
// The returned URL is exactly as found in the page; callers normalize it.
func Locate(html, sourceURL string) (Candidate, bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		doc = nil
	}

	if doc != nil {
		if u := metaContent(doc, "og:image"); u != "" {
			return Candidate{URL: u, Strategy: StrategyOpenGraph}, true
		}
		if u := metaContent(doc, "twitter:image"); u != "" {
			return Candidate{URL: u, Strategy: StrategyTwitterCard}, true
		}
	}

	for _, site := range GetSiteLocators(sourceURL) {
		if u := strings.TrimSpace(site.LocateImage(html, doc)); u != "" {
			return Candidate{URL: u, Strategy: Strategy(site.Name())}, true
		}
	}

	if doc == nil {
		return Candidate{}, false
	}

	if u := jsonLDProductImage(doc); u != "" {
		return Candidate{URL: u, Strategy: StrategyJSONLD}, true
	}
	if u := fallbackImage(doc); u != "" {
		return Candidate{URL: u, Strategy: StrategyImgFallback}, true
	}
	return Candidate{}, false
}

// metaContent reads <meta property|name="key" content="..."> in any attribute order
func metaContent(doc *goquery.Document, key string) string {
	var found string
	doc.Find("meta").EachWithBreak(func(i int, s *goquery.Selection) bool {
		prop := s.AttrOr("property", "")
		if prop == "" {
			prop = s.AttrOr("name", "")
		}
		if !strings.EqualFold(strings.TrimSpace(prop), key) {
			return true
		}
		found = strings.TrimSpace(s.AttrOr("content", ""))
		return found == ""
	})
	return found
}

func jsonLDProductImage(doc *goquery.Document) string {
	var found string
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(i int, s *goquery.Selection) bool {
		var data any
		if err := json.Unmarshal([]byte(s.Text()), &data); err != nil {
			// Broken structured data is common, skip the block
			return true
		}
		if product := findProduct(data); product != nil {
			found = productImage(product["image"])
		}
		return found == ""
	})
	return found
}

func findProduct(data any) map[string]any {
	switch v := data.(type) {
	case map[string]any:
		if isProductType(v["@type"]) {
			return v
		}
		if graph, ok := v["@graph"].([]any); ok {
			return findProduct(graph)
		}
	case []any:
		for _, item := range v {
			if m, ok := item.(map[string]any); ok && isProductType(m["@type"]) {
				return m
			}
		}
	}
	return nil
}

func isProductType(t any) bool {
	switch v := t.(type) {
	case string:
		return v == "Product"
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok && s == "Product" {
				return true
			}
		}
	}
	return false
}

// productImage accepts a string, an ImageObject with url, or a list of either
func productImage(image any) string {
	if list, ok := image.([]any); ok {
		if len(list) == 0 {
			return ""
		}
		image = list[0]
	}

	switch v := image.(type) {
	case string:
		return strings.TrimSpace(v)
	case map[string]any:
		if u, ok := v["url"].(string); ok {
			return strings.TrimSpace(u)
		}
	}
	return ""
}

func fallbackImage(doc *goquery.Document) string {
	var found string
	doc.Find("img").EachWithBreak(func(i int, s *goquery.Selection) bool {
		src := strings.TrimSpace(s.AttrOr("src", ""))
		if len(src) < minFallbackSrcLen || containsAny(src, fallbackDenylist) {
			return true
		}
		if containsAny(src, productTokens) || reImageExt.MatchString(src) {
			found = src
			return false
		}
		return true
	})
	return found
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
