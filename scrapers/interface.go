package scrapers

import "github.com/PuerkitoBio/goquery"

// SiteLocator finds the product image on pages of one retailer family
type SiteLocator interface {
	// Name identifies the retailer in extraction candidates
	Name() string
	// CanScrape checks if the locator understands pages from the given URL
	CanScrape(url string) bool
	// LocateImage returns the retailer's main product image or an empty string.
	// html is the raw markup for patterns that live inside embedded JSON.
	LocateImage(html string, doc *goquery.Document) string
}
