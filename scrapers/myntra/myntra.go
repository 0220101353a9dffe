package myntra

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

type MyntraLocator struct{}

func NewMyntraLocator() *MyntraLocator {
	return &MyntraLocator{}
}

func (l *MyntraLocator) Name() string {
	return "myntra"
}

func (l *MyntraLocator) CanScrape(url string) bool {
	return strings.Contains(url, "myntra")
}

func (l *MyntraLocator) LocateImage(_ string, doc *goquery.Document) string {
	if doc == nil {
		return ""
	}

	if src := strings.TrimSpace(doc.Find("img[class*='image-grid-image']").AttrOr("src", "")); src != "" {
		return src
	}

	// The image grid is usually rendered as divs with a background-image
	var found string
	doc.Find(".image-grid-image").EachWithBreak(func(i int, s *goquery.Selection) bool {
		found = backgroundURL(s.AttrOr("style", ""))
		return found == ""
	})
	return found
}

// backgroundURL extracts url from background-image: url("...")
func backgroundURL(style string) string {
	start := strings.Index(style, "url(")
	if start == -1 {
		return ""
	}
	start += len("url(")
	end := strings.Index(style[start:], ")")
	if end == -1 {
		return ""
	}
	return strings.Trim(strings.TrimSpace(style[start:start+end]), "\"'")
}
