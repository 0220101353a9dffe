package utils

import (
	"net/url"
	"regexp"
	"strings"
)

var directImagePattern = regexp.MustCompile(`(?i)\.(jpg|jpeg|png|webp|gif)(\?.*)?$`)

// IsDirectImageURL reports whether the link already points at an image file
func IsDirectImageURL(link string) bool {
	return directImagePattern.MatchString(strings.TrimSpace(link))
}

// NormalizeImageURL turns a scraped image reference into an absolute URL.
// Protocol-relative references get https, root-relative ones are resolved
// against the origin of the page they were found on.
func NormalizeImageURL(raw, sourceURL string) string {
	raw = strings.TrimSpace(raw)
	switch {
	case raw == "":
		return raw
	case strings.HasPrefix(raw, "//"):
		return "https:" + raw
	case strings.HasPrefix(raw, "/"):
		src, err := url.Parse(sourceURL)
		if err != nil || src.Host == "" {
			return raw
		}
		return src.Scheme + "://" + src.Host + raw
	case strings.HasPrefix(raw, "http://"), strings.HasPrefix(raw, "https://"), strings.HasPrefix(raw, "data:"):
		return raw
	}

	// Plain relative paths (img/a.jpg, ../a.jpg)
	src, err := url.Parse(sourceURL)
	if err != nil || src.Host == "" {
		return raw
	}
	ref, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	return src.ResolveReference(ref).String()
}

// HostOf returns the lower-cased host of a URL or an empty string
func HostOf(link string) string {
	u, err := url.Parse(link)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}
