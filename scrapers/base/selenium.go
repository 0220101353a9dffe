package base

import (
	"context"
	"fmt"
	"time"

	"github.com/tebeka/selenium"
	"github.com/tebeka/selenium/chrome"
)

const chromeDriverPath = "/usr/local/bin/chromedriver"

// SeleniumRenderer starts a ChromeDriver per render on a pooled port
type SeleniumRenderer struct {
	DriverPath string
	ports      *PortManager
}

func NewSeleniumRenderer(driverPath string, ports *PortManager) *SeleniumRenderer {
	return &SeleniumRenderer{DriverPath: driverPath, ports: ports}
}

func (r *SeleniumRenderer) Name() string {
	return "selenium"
}

// Render loads url in a full browser and returns the page source.
// The WebDriver API is not context aware, so ctx is only checked between steps.
func (r *SeleniumRenderer) Render(ctx context.Context, url string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	port, err := r.ports.GetPort()
	if err != nil {
		return "", fmt.Errorf("port error: %w", err)
	}
	defer r.ports.ReleasePort(port)

	service, err := selenium.NewChromeDriverService(r.DriverPath, port)
	if err != nil {
		return "", fmt.Errorf("error starting Chrome driver service: %w", err)
	}
	defer service.Stop()

	userAgent := "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	caps := selenium.Capabilities{"browserName": "chrome"}
	caps.AddChrome(chrome.Capabilities{
		Args: []string{
			"--headless=new",
			"--no-sandbox",
			"--disable-dev-shm-usage",
			"--disable-blink-features=AutomationControlled",
			"--disable-extensions",
			"--disable-gpu",
			"--window-size=1920,1080",
			fmt.Sprintf("--user-agent=%s", userAgent),
		},
		ExcludeSwitches: []string{"enable-automation"},
		Prefs: map[string]interface{}{
			"profile.default_content_setting_values.notifications": 2,
		},
	})

	driver, err := selenium.NewRemote(caps, fmt.Sprintf("http://localhost:%d/wd/hub", port))
	if err != nil {
		return "", fmt.Errorf("error creating WebDriver: %w", err)
	}
	defer driver.Quit()

	if err := driver.SetPageLoadTimeout(60 * time.Second); err != nil {
		return "", fmt.Errorf("page load timeout: %w", err)
	}
	if err := driver.Get(url); err != nil {
		return "", fmt.Errorf("navigation error: %w", err)
	}

	// Hide the webdriver flag some retailers check for
	_, _ = driver.ExecuteScript(`Object.defineProperty(navigator, 'webdriver', {get: () => undefined});`, nil)

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-time.After(2 * time.Second):
	}

	html, err := driver.PageSource()
	if err != nil {
		return "", fmt.Errorf("page source error: %w", err)
	}
	return html, nil
}
