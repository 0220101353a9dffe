package inference

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raushankrgupta/virtual-tryon/config"
)

func TestNewGenerator(t *testing.T) {
	cfg := config.InferenceConfig{
		Provider:        "gradio",
		TryOnSpaceURL:   "https://tryon.hf.space",
		TryOnEndpoint:   "tryon",
		SegmentSpaceURL: "https://segment.hf.space",
		SegmentEndpoint: "image",
	}
	adapter := NewAdapter(cfg, &fakeStore{}, http.DefaultClient)

	g, err := NewGenerator(cfg, adapter, &fakeStore{}, http.DefaultClient)
	require.NoError(t, err)
	assert.Same(t, adapter, g)

	cfg.Provider = "gemini"
	cfg.GeminiAPIKey = "key"
	cfg.GeminiModel = "gemini-2.5-flash-image"
	g, err = NewGenerator(cfg, adapter, &fakeStore{}, http.DefaultClient)
	require.NoError(t, err)
	gemini, ok := g.(*GeminiGenerator)
	require.True(t, ok)
	assert.Equal(t, "gemini-2.5-flash-image", gemini.Model)

	cfg.Provider = "dalle"
	_, err = NewGenerator(cfg, adapter, &fakeStore{}, http.DefaultClient)
	assert.Error(t, err)
}

func TestGeminiGenerator_MissingKey(t *testing.T) {
	g := &GeminiGenerator{}
	_, err := g.GenerateTryOn(context.Background(), "a", "b", "")
	assert.ErrorIs(t, err, ErrGenerationFailed)
	assert.Equal(t, "GEMINI_API_KEY is not set", err.Error())
}

func TestGeminiGenerator_PhotoFetchFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	g := &GeminiGenerator{APIKey: "key", Client: srv.Client()}
	_, err := g.GenerateTryOn(context.Background(), srv.URL+"/me.jpg", srv.URL+"/shirt.jpg", "")
	assert.ErrorIs(t, err, ErrGenerationFailed)
	assert.Contains(t, err.Error(), "failed to fetch person image")
}

func TestFirstImage(t *testing.T) {
	resp := &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
		Content: &genai.Content{Parts: []genai.Part{
			genai.Text("Here is your image"),
			genai.Blob{MIMEType: "image/png", Data: []byte("png")},
		}},
	}}}
	blob, err := firstImage(resp)
	require.NoError(t, err)
	assert.Equal(t, "image/png", blob.MIMEType)

	textOnly := &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
		Content: &genai.Content{Parts: []genai.Part{genai.Text("I cannot do that")}},
	}}}
	_, err = firstImage(textOnly)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "I cannot do that")

	_, err = firstImage(&genai.GenerateContentResponse{})
	assert.Error(t, err)
}

func TestImageFormat(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	assert.Equal(t, "png", imageFormat(png))
	assert.Equal(t, "jpeg", imageFormat([]byte{0xFF, 0xD8, 0xFF, 0xE0}))
	assert.Equal(t, "jpeg", imageFormat([]byte("plain text")))
}
