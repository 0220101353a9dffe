package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// ErrTooLarge is returned when the source is bigger than maxMirrorBytes
var ErrTooLarge = errors.New("mirrored object exceeds size limit")

var maxMirrorBytes int64 = 25 << 20

// Mirror downloads srcURL and stores the bytes under objectKey, so that a
// short-lived URL (for example from an inference service) gets a stable home.
func Mirror(ctx context.Context, client *http.Client, store BlobStore, srcURL, objectKey, contentType string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srcURL, nil)
	if err != nil {
		return "", err
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("bad status: %s", resp.Status)
	}

	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, maxMirrorBytes+1))
	if err != nil {
		return "", err
	}
	if int64(len(bodyBytes)) > maxMirrorBytes {
		return "", fmt.Errorf("%w: %s is larger than %d bytes", ErrTooLarge, srcURL, maxMirrorBytes)
	}

	if contentType == "" {
		contentType = resp.Header.Get("Content-Type")
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	return store.Upload(ctx, objectKey, bytes.NewReader(bodyBytes), contentType)
}
