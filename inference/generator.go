package inference

import (
	"context"
	"fmt"
	"net/http"

	"github.com/raushankrgupta/virtual-tryon/config"
	"github.com/raushankrgupta/virtual-tryon/inference/gradio"
	"github.com/raushankrgupta/virtual-tryon/storage"
)

// Generator produces a try-on composite and returns its URL
type Generator interface {
	GenerateTryOn(ctx context.Context, userPhotoRef, garmentRef, description string) (string, error)
}

// NewAdapter wires the Gradio Spaces named in cfg
func NewAdapter(cfg config.InferenceConfig, store storage.BlobStore, client *http.Client) *Adapter {
	return &Adapter{
		Segmenter:       gradio.NewClient(cfg.SegmentSpaceURL, cfg.HFToken, cfg.Timeout),
		SegmentEndpoint: cfg.SegmentEndpoint,
		TryOn:           gradio.NewClient(cfg.TryOnSpaceURL, cfg.HFToken, cfg.Timeout),
		TryOnEndpoint:   cfg.TryOnEndpoint,
		Store:           store,
		Client:          client,
	}
}

// NewGenerator picks the try-on backend named by cfg.Provider
func NewGenerator(cfg config.InferenceConfig, adapter *Adapter, store storage.BlobStore, client *http.Client) (Generator, error) {
	switch cfg.Provider {
	case "", "gradio":
		return adapter, nil
	case "gemini":
		return &GeminiGenerator{
			APIKey: cfg.GeminiAPIKey,
			Model:  cfg.GeminiModel,
			Store:  store,
			Client: client,
		}, nil
	default:
		return nil, fmt.Errorf("unknown inference provider %q", cfg.Provider)
	}
}
