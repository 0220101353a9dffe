package flipkart

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

type FlipkartLocator struct{}

func NewFlipkartLocator() *FlipkartLocator {
	return &FlipkartLocator{}
}

func (l *FlipkartLocator) Name() string {
	return "flipkart"
}

func (l *FlipkartLocator) CanScrape(url string) bool {
	return strings.Contains(url, "flipkart")
}

func (l *FlipkartLocator) LocateImage(_ string, doc *goquery.Document) string {
	if doc == nil {
		return ""
	}

	// Main product image carries the _396cs4 class
	if src := strings.TrimSpace(doc.Find("img[class*='_396cs4']").AttrOr("src", "")); src != "" {
		return src
	}

	// Newer layouts: first image served from the rukminim CDN
	var found string
	doc.Find("img").EachWithBreak(func(i int, s *goquery.Selection) bool {
		src := s.AttrOr("src", "")
		if strings.HasPrefix(src, "https://rukminim") {
			found = src
			return false
		}
		return true
	})
	return found
}
