package scrapers

import (
	"github.com/raushankrgupta/virtual-tryon/scrapers/amazon"
	"github.com/raushankrgupta/virtual-tryon/scrapers/flipkart"
	"github.com/raushankrgupta/virtual-tryon/scrapers/myntra"
)

// siteLocators are tried in this order, each gated on its own domain token
var siteLocators = []SiteLocator{
	amazon.NewAmazonLocator(),
	flipkart.NewFlipkartLocator(),
	myntra.NewMyntraLocator(),
}

// GetSiteLocators returns the locators that can handle pageURL, in priority order
func GetSiteLocators(pageURL string) []SiteLocator {
	var matched []SiteLocator
	for _, l := range siteLocators {
		if l.CanScrape(pageURL) {
			matched = append(matched, l)
		}
	}
	return matched
}
