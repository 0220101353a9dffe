package base

import (
	"context"
	"fmt"
	"time"
)

// Renderer loads a page in a real browser and returns the rendered markup
type Renderer interface {
	Name() string
	Render(ctx context.Context, url string) (string, error)
}

// NewRenderer returns the headless renderer for name. "none" and "" return nil.
func NewRenderer(name string, timeout time.Duration) (Renderer, error) {
	switch name {
	case "", "none":
		return nil, nil
	case "chromedp":
		return NewChromeDPRenderer(timeout), nil
	case "selenium":
		return NewSeleniumRenderer(chromeDriverPath, NewPortManager(4444, 16)), nil
	default:
		return nil, fmt.Errorf("unknown renderer %q", name)
	}
}
