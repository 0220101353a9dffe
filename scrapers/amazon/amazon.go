package amazon

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	reHiRes = regexp.MustCompile(`(?i)"hiRes"\s*:\s*"([^"]+)"`)
	reLarge = regexp.MustCompile(`(?i)"large"\s*:\s*"([^"]+)"`)
)

type AmazonLocator struct{}

func NewAmazonLocator() *AmazonLocator {
	return &AmazonLocator{}
}

func (l *AmazonLocator) Name() string {
	return "amazon"
}

func (l *AmazonLocator) CanScrape(url string) bool {
	// amzn.in / amzn.to short links count as Amazon too
	return strings.Contains(url, "amazon") || strings.Contains(url, "amzn")
}

func (l *AmazonLocator) LocateImage(html string, doc *goquery.Document) string {
	// 1. Image gallery JSON embedded in scripts
	if m := reHiRes.FindStringSubmatch(html); m != nil {
		return m[1]
	}
	if m := reLarge.FindStringSubmatch(html); m != nil {
		return m[1]
	}

	if doc == nil {
		return ""
	}

	// 2. Main image tags
	if src := strings.TrimSpace(doc.Find("img#landingImage").AttrOr("src", "")); src != "" {
		return src
	}
	if src := strings.TrimSpace(doc.Find("img#imgBlkFront").AttrOr("src", "")); src != "" {
		return src
	}

	// 3. data-a-dynamic-image maps URL -> [width, height]; take the biggest
	return largestDynamicImage(doc.Find("#landingImage").AttrOr("data-a-dynamic-image", ""))
}

func largestDynamicImage(raw string) string {
	if raw == "" {
		return ""
	}

	var sizes map[string][]int
	if err := json.Unmarshal([]byte(raw), &sizes); err != nil {
		return ""
	}

	best, bestArea := "", -1
	for url, dims := range sizes {
		area := 0
		if len(dims) == 2 {
			area = dims[0] * dims[1]
		}
		// Ties broken by URL so the choice is stable across map iteration
		if area > bestArea || (area == bestArea && url < best) {
			best, bestArea = url, area
		}
	}
	return best
}
