// Package gradio calls apps hosted on Hugging Face Spaces through the Gradio REST API.
package gradio

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gin-contrib/sse"
	"github.com/go-resty/resty/v2"
)

// ErrNoResult is returned when the event stream ends without a complete or error event
var ErrNoResult = errors.New("gradio stream ended without a result")

// UpstreamError carries the message of an error event from the Space
type UpstreamError struct {
	Endpoint string
	Message  string
}

func (e *UpstreamError) Error() string {
	return e.Message
}

// Client talks to a single Space
type Client struct {
	client *resty.Client
}

// NewClient creates a client for the Space at baseURL. token is the Hugging Face
// access token and may be empty for public Spaces.
func NewClient(baseURL, token string, timeout time.Duration) *Client {
	c := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout)
	if token != "" {
		c.SetAuthToken(token)
	}
	return &Client{client: c}
}

// FileData wraps a URL the way Gradio expects file inputs
func FileData(url string) map[string]any {
	return map[string]any{
		"path": url,
		"meta": map[string]string{"_type": "gradio.FileData"},
	}
}

type callResponse struct {
	EventID string `json:"event_id"`
}

// Predict queues a call to endpoint and waits for its output array
func (c *Client) Predict(ctx context.Context, endpoint string, data []any) (json.RawMessage, error) {
	endpoint = strings.TrimPrefix(endpoint, "/")
	path := "/gradio_api/call/" + endpoint

	var queued callResponse
	res, err := c.client.R().
		SetContext(ctx).
		SetBody(map[string]any{"data": data}).
		SetResult(&queued).
		Post(path)
	if err != nil {
		return nil, fmt.Errorf("queue %s: %w", endpoint, err)
	}
	if !res.IsSuccess() {
		slog.Error("gradio returned error", "endpoint", endpoint, "status_code", res.StatusCode(), "body", res.String())
		return nil, fmt.Errorf("queue %s: status %d: %s", endpoint, res.StatusCode(), strings.TrimSpace(res.String()))
	}
	if queued.EventID == "" {
		return nil, fmt.Errorf("queue %s: response has no event_id", endpoint)
	}

	res, err = c.client.R().
		SetContext(ctx).
		SetHeader("Accept", "text/event-stream").
		Get(path + "/" + queued.EventID)
	if err != nil {
		return nil, fmt.Errorf("stream %s: %w", endpoint, err)
	}
	if !res.IsSuccess() {
		return nil, fmt.Errorf("stream %s: status %d", endpoint, res.StatusCode())
	}

	return parseEventStream(endpoint, res.Body())
}

// parseEventStream picks the payload of the first complete or error event
func parseEventStream(endpoint string, body []byte) (json.RawMessage, error) {
	events, err := sse.Decode(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("read event stream: %w", err)
	}

	for _, ev := range events {
		payload, _ := ev.Data.(string)
		payload = strings.TrimSpace(payload)
		switch ev.Event {
		case "complete":
			return json.RawMessage(payload), nil
		case "error":
			return nil, &UpstreamError{Endpoint: endpoint, Message: errorMessage(payload)}
		}
	}
	return nil, ErrNoResult
}

func errorMessage(payload string) string {
	var msg string
	if err := json.Unmarshal([]byte(payload), &msg); err == nil && msg != "" {
		return msg
	}
	if payload == "" || payload == "null" {
		return "the upstream model reported an error"
	}
	return payload
}
