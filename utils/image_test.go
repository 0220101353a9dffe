package utils

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solidImage(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: 200, G: 80, B: 40, A: 255})
		}
	}
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestPreparePhoto_SmallPNGPassesThrough(t *testing.T) {
	data := encodePNG(t, solidImage(40, 20))

	photo, err := PreparePhoto(data, 100)
	require.NoError(t, err)
	assert.Equal(t, data, photo.Data)
	assert.Equal(t, "image/png", photo.ContentType)
	assert.Equal(t, "png", photo.Ext)
}

func TestPreparePhoto_LargeJPEGIsResized(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, solidImage(400, 200), nil))

	photo, err := PreparePhoto(buf.Bytes(), 100)
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", photo.ContentType)
	assert.Equal(t, "jpg", photo.Ext)

	cfg, _, err := image.DecodeConfig(bytes.NewReader(photo.Data))
	require.NoError(t, err)
	assert.Equal(t, 100, cfg.Width)
	assert.Equal(t, 50, cfg.Height)
}

func TestPreparePhoto_ZeroDisablesResize(t *testing.T) {
	data := encodePNG(t, solidImage(300, 300))

	photo, err := PreparePhoto(data, 0)
	require.NoError(t, err)
	assert.Equal(t, data, photo.Data)
}

func TestPreparePhoto_RejectsNonImage(t *testing.T) {
	_, err := PreparePhoto([]byte("definitely not an image"), 100)
	assert.ErrorIs(t, err, ErrNotAnImage)
}

// withPNGSize rewrites the IHDR dimensions of an encoded PNG
func withPNGSize(data []byte, w, h uint32) []byte {
	out := append([]byte(nil), data...)
	binary.BigEndian.PutUint32(out[16:20], w)
	binary.BigEndian.PutUint32(out[20:24], h)
	binary.BigEndian.PutUint32(out[29:33], crc32.ChecksumIEEE(out[12:29]))
	return out
}

func TestPreparePhoto_RejectsHugeDimensions(t *testing.T) {
	data := withPNGSize(encodePNG(t, solidImage(2, 2)), 20000, 20000)

	_, err := PreparePhoto(data, 1536)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotAnImage)
	assert.Contains(t, err.Error(), "20000x20000")
}
