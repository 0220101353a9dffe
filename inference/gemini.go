package inference

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/google/uuid"
	"google.golang.org/api/option"

	"github.com/raushankrgupta/virtual-tryon/storage"
)

const maxSourceImageBytes = 20 << 20

// GeminiGenerator produces try-on composites with a Gemini image model
type GeminiGenerator struct {
	APIKey string
	Model  string
	Store  storage.BlobStore
	Client *http.Client
}

// GenerateTryOn generates a virtual try-on image using Gemini and stores it
func (g *GeminiGenerator) GenerateTryOn(ctx context.Context, userPhotoRef, garmentRef, description string) (string, error) {
	if g.APIKey == "" {
		return "", &GenerationError{Message: "GEMINI_API_KEY is not set"}
	}
	if description == "" {
		description = defaultDescription
	}

	personImg, err := g.fetchImage(ctx, userPhotoRef)
	if err != nil {
		return "", &GenerationError{Message: fmt.Sprintf("failed to fetch person image: %v", err), Err: err}
	}
	garmentImg, err := g.fetchImage(ctx, garmentRef)
	if err != nil {
		return "", &GenerationError{Message: fmt.Sprintf("failed to fetch garment image: %v", err), Err: err}
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(g.APIKey))
	if err != nil {
		return "", &GenerationError{Message: fmt.Sprintf("failed to create Gemini client: %v", err), Err: err}
	}
	defer client.Close()

	model := client.GenerativeModel(g.Model)
	resp, err := model.GenerateContent(ctx,
		genai.Text(tryOnPrompt(description)),
		genai.ImageData(imageFormat(personImg), personImg),
		genai.ImageData(imageFormat(garmentImg), garmentImg),
	)
	if err != nil {
		return "", &GenerationError{Message: fmt.Sprintf("failed to generate content: %v", err), Err: err}
	}

	blob, err := firstImage(resp)
	if err != nil {
		return "", &GenerationError{Message: err.Error(), Err: err}
	}

	key := fmt.Sprintf("generated_images/%s.%s", uuid.NewString(), strings.TrimPrefix(blob.MIMEType, "image/"))
	url, err := g.Store.Upload(ctx, key, bytes.NewReader(blob.Data), blob.MIMEType)
	if err != nil {
		return "", &GenerationError{Message: fmt.Sprintf("failed to store generated image: %v", err), Err: err}
	}
	return url, nil
}

func tryOnPrompt(description string) string {
	return fmt.Sprintf(`
Dress the person in the first image with the garment in the second image.
Keep the person's face, body, pose and background exactly as they are.
Fit the garment naturally, with realistic folds, lighting and proportions.
Return a single photorealistic image.

Garment: %s
`, description)
}

// firstImage returns the first inline image of the first candidate
func firstImage(resp *genai.GenerateContentResponse) (*genai.Blob, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("no content generated")
	}

	var text []string
	for _, part := range resp.Candidates[0].Content.Parts {
		switch p := part.(type) {
		case genai.Blob:
			if strings.HasPrefix(p.MIMEType, "image/") && len(p.Data) > 0 {
				return &p, nil
			}
		case genai.Text:
			text = append(text, string(p))
		default:
			slog.Debug("ignoring gemini response part", "type", fmt.Sprintf("%T", p))
		}
	}

	if len(text) > 0 {
		return nil, fmt.Errorf("model returned text instead of an image: %s", truncate(strings.Join(text, " "), 200))
	}
	return nil, fmt.Errorf("unexpected response format (no image)")
}

// imageFormat sniffs the genai format name ("jpeg", "png", ...) of an image
func imageFormat(data []byte) string {
	mime := http.DetectContentType(data)
	if !strings.HasPrefix(mime, "image/") {
		return "jpeg"
	}
	return strings.TrimPrefix(mime, "image/")
}

func (g *GeminiGenerator) fetchImage(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	client := g.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch image, status: %d", resp.StatusCode)
	}

	return io.ReadAll(io.LimitReader(resp.Body, maxSourceImageBytes))
}
