// Package inference wraps the remote models behind the try-on flow:
// background removal for garments and composite generation.
package inference

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/raushankrgupta/virtual-tryon/inference/gradio"
	"github.com/raushankrgupta/virtual-tryon/storage"
)

var ErrGenerationFailed = errors.New("try-on generation failed")

// GenerationError keeps the upstream message intact so it can be shown to the
// user as is. It matches ErrGenerationFailed with errors.Is.
type GenerationError struct {
	Message string
	Err     error
}

func (e *GenerationError) Error() string {
	return e.Message
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

func (e *GenerationError) Is(target error) bool {
	return target == ErrGenerationFailed
}

const (
	defaultDescription = "clothing item"
	denoiseSteps       = 30
	seed               = 42
)

// Reasons reported when background removal falls back to the original image
const (
	ReasonNoOutput     = "no_output"
	ReasonNoURL        = "no_url"
	ReasonException    = "exception"
	ReasonUploadFailed = "upload_failed"
)

// Predictor runs one endpoint of a remote model and returns its raw output array
type Predictor interface {
	Predict(ctx context.Context, endpoint string, data []any) (json.RawMessage, error)
}

// Segmentation is the outcome of background removal. URL is always usable:
// when Segmented is false it is the caller's original image.
type Segmentation struct {
	URL       string `json:"garmentUrl"`
	Segmented bool   `json:"segmented"`
	Reason    string `json:"reason,omitempty"`
	Detail    string `json:"detail,omitempty"`
}

// Adapter calls the segmentation and try-on Spaces
type Adapter struct {
	Segmenter       Predictor
	SegmentEndpoint string
	TryOn           Predictor
	TryOnEndpoint   string

	// Store receives re-uploaded segmentation results, fetched with Client
	Store  storage.BlobStore
	Client *http.Client

	Now func() time.Time
}

func (a *Adapter) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

// RemoveBackground isolates the garment in imageRef. It never fails: any
// problem returns the original reference with Segmented=false and a reason.
func (a *Adapter) RemoveBackground(ctx context.Context, imageRef string) Segmentation {
	fallback := func(reason, detail string) Segmentation {
		slog.Warn("background removal degraded", "image", imageRef, "reason", reason, "detail", detail)
		return Segmentation{URL: imageRef, Reason: reason, Detail: detail}
	}

	raw, err := a.Segmenter.Predict(ctx, a.SegmentEndpoint, []any{gradio.FileData(imageRef)})
	if err != nil {
		return fallback(ReasonException, err.Error())
	}

	out := ParseOutput(raw)
	if out.Len() == 0 {
		return fallback(ReasonNoOutput, "")
	}

	// Either [processed] / [original, processed] or [[original, processed]]
	target := out.Last()
	if first := out.First(); first.Kind == KindList {
		target = first.Last()
	}

	processed, ok := target.URL()
	if !ok {
		return fallback(ReasonNoURL, truncate(string(raw), 200))
	}

	key := fmt.Sprintf("garments/garment_%d.png", a.now().UnixMilli())
	stable, err := storage.Mirror(ctx, a.httpClient(), a.Store, processed, key, "image/png")
	if err != nil {
		return fallback(ReasonUploadFailed, err.Error())
	}

	return Segmentation{URL: stable, Segmented: true}
}

// GenerateTryOn dresses the person in userPhotoRef with the garment in garmentRef
// and returns the URL of the generated image.
func (a *Adapter) GenerateTryOn(ctx context.Context, userPhotoRef, garmentRef, description string) (string, error) {
	if description == "" {
		description = defaultDescription
	}

	data := []any{
		map[string]any{
			"background": gradio.FileData(userPhotoRef),
			"layers":     []any{},
			"composite":  nil,
		},
		gradio.FileData(garmentRef),
		description,
		true,  // is_checked: auto-mask
		false, // is_checked_crop
		denoiseSteps,
		seed,
	}

	raw, err := a.TryOn.Predict(ctx, a.TryOnEndpoint, data)
	if err != nil {
		return "", &GenerationError{Message: err.Error(), Err: err}
	}

	out := ParseOutput(raw)
	if out.Len() == 0 {
		return "", &GenerationError{Message: "Failed to generate try-on result"}
	}

	// First element is the composite, the second is the mask
	result := out.First()
	if result.Kind != KindFile && result.Kind != KindString {
		return "", &GenerationError{Message: "No result image returned"}
	}
	resultURL, ok := result.URL()
	if !ok {
		return "", &GenerationError{Message: "No result image returned"}
	}
	return resultURL, nil
}

func (a *Adapter) httpClient() *http.Client {
	if a.Client != nil {
		return a.Client
	}
	return http.DefaultClient
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
