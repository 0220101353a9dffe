package utils

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"

	"github.com/nfnt/resize"
	_ "golang.org/x/image/webp"
)

// ErrNotAnImage is returned when uploaded bytes cannot be decoded as a picture
var ErrNotAnImage = errors.New("file is not a supported image")

// MaxPhotoPixels caps width*height before a photo is decoded
const MaxPhotoPixels = 50_000_000

// PreparedPhoto is an upload-ready photo
type PreparedPhoto struct {
	Data        []byte
	ContentType string
	Ext         string
}

// PreparePhoto validates uploaded bytes and shrinks the picture so that its
// longest side is at most maxDim. maxDim <= 0 disables resizing.
// Small PNG/JPEG photos are passed through byte for byte.
func PreparePhoto(data []byte, maxDim int) (*PreparedPhoto, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotAnImage, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > MaxPhotoPixels {
		return nil, fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrNotAnImage, cfg.Width, cfg.Height, MaxPhotoPixels)
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotAnImage, err)
	}

	resized, changed := resizeWithinMax(img, maxDim)
	if !changed && (format == "jpeg" || format == "png") {
		return &PreparedPhoto{Data: data, ContentType: "image/" + format, Ext: extFor(format)}, nil
	}

	// Everything else is re-encoded; PNG keeps transparency
	var buf bytes.Buffer
	if format == "png" || format == "gif" {
		if err := png.Encode(&buf, resized); err != nil {
			return nil, fmt.Errorf("encode png: %w", err)
		}
		return &PreparedPhoto{Data: buf.Bytes(), ContentType: "image/png", Ext: "png"}, nil
	}
	if err := jpeg.Encode(&buf, resized, &jpeg.Options{Quality: 90}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return &PreparedPhoto{Data: buf.Bytes(), ContentType: "image/jpeg", Ext: "jpg"}, nil
}

// resizeWithinMax scales so the longest side is <= maxSize
func resizeWithinMax(img image.Image, maxSize int) (image.Image, bool) {
	w := img.Bounds().Dx()
	h := img.Bounds().Dy()
	longest := max(w, h)

	if maxSize <= 0 || longest <= maxSize {
		return img, false
	}

	scale := float64(maxSize) / float64(longest)
	newW := max(int(float64(w)*scale), 1)
	newH := max(int(float64(h)*scale), 1)

	return resize.Resize(uint(newW), uint(newH), img, resize.Lanczos3), true
}

func extFor(format string) string {
	if format == "jpeg" {
		return "jpg"
	}
	return format
}
