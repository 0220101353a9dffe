// Command locate fetches retailer pages and prints the garment image each one resolves to.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/raushankrgupta/virtual-tryon/scrapers"
	"github.com/raushankrgupta/virtual-tryon/scrapers/base"
	"github.com/raushankrgupta/virtual-tryon/utils"
)

type result struct {
	Input    string `json:"input"`
	FinalURL string `json:"finalUrl,omitempty"`
	Strategy string `json:"strategy,omitempty"`
	ImageURL string `json:"imageUrl,omitempty"`
	Error    string `json:"error,omitempty"`
}

func main() {
	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true})

	app := &cli.Command{
		Name:      "locate",
		Usage:     "Find the main product image on retailer pages",
		ArgsUsage: "<url> [url...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "renderer",
				Usage: "Headless fallback for blocked pages: none, chromedp or selenium",
				Value: "none",
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "Per-page fetch timeout",
				Value: 30 * time.Second,
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print results as JSON",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Verbose logging",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Bool("debug") {
				logger.SetLevel(log.DebugLevel)
			}
			if cmd.NArg() == 0 {
				return fmt.Errorf("at least one url is required")
			}

			renderer, err := base.NewRenderer(cmd.String("renderer"), cmd.Duration("timeout"))
			if err != nil {
				return err
			}
			fetcher := base.NewBaseScraper(cmd.Duration("timeout"), base.NewHostLimiter(1, 1), renderer)

			var results []result
			for _, u := range cmd.Args().Slice() {
				results = append(results, locate(ctx, logger, fetcher, u))
			}

			if cmd.Bool("json") {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(results)
			}
			for _, r := range results {
				if r.Error != "" {
					fmt.Printf("%s\n  error: %s\n", r.Input, r.Error)
					continue
				}
				fmt.Printf("%s\n  %s (%s)\n", r.Input, r.ImageURL, r.Strategy)
			}
			return nil
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		logger.Fatal("locate failed", "error", err)
	}
}

func locate(ctx context.Context, logger *log.Logger, fetcher base.Fetcher, pageURL string) result {
	res := result{Input: pageURL}

	logger.Debug("fetching", "url", pageURL)
	page, err := fetcher.Fetch(ctx, pageURL)
	if err != nil {
		logger.Warn("fetch failed", "url", pageURL, "error", err)
		res.Error = err.Error()
		return res
	}
	res.FinalURL = page.URL

	candidate, ok := scrapers.Locate(page.HTML, page.URL)
	if !ok {
		res.Error = scrapers.ErrExtractionFailed.Error()
		return res
	}
	res.Strategy = string(candidate.Strategy)
	res.ImageURL = utils.NormalizeImageURL(candidate.URL, page.URL)
	logger.Info("located", "url", pageURL, "strategy", res.Strategy)
	return res
}
