// Package businessflow contains the business logic for the application.
package businessflow

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tasksms/dashboard/utils"
)

func pngDataURL(t *testing.T, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func decodeFlagDataURL(t *testing.T, dataURL string) image.Image {
	t.Helper()
	require.True(t, strings.HasPrefix(dataURL, "data:image/png;base64,"))
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(dataURL, "data:image/png;base64,"))
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(raw))
	require.NoError(t, err)
	return img
}

func TestProcessFlagImageNilPassesThrough(t *testing.T) {
	result, err := processFlagImage(nil)
	require.NoError(t, err)
	assert.Nil(t, result)

	empty := "   "
	result, err = processFlagImage(&empty)
	require.NoError(t, err)
	assert.Nil(t, result)
}

func TestProcessFlagImageRejectsGarbage(t *testing.T) {
	garbage := "data:image/png;base64,not-valid-base64!!!"
	_, err := processFlagImage(&garbage)
	require.Error(t, err)
	assert.True(t, IsInvalidFlagImage(err))

	notAnImage := "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("hello"))
	_, err = processFlagImage(&notAnImage)
	require.Error(t, err)
	assert.True(t, IsInvalidFlagImage(err))
}

func TestProcessFlagImageKeepsSmallImages(t *testing.T) {
	input := pngDataURL(t, 32, 20)

	result, err := processFlagImage(&input)
	require.NoError(t, err)
	require.NotNil(t, result)

	img := decodeFlagDataURL(t, *result)
	assert.Equal(t, 32, img.Bounds().Dx())
	assert.Equal(t, 20, img.Bounds().Dy())
}

func TestProcessFlagImageDownscalesLargeImages(t *testing.T) {
	input := pngDataURL(t, 640, 400)

	result, err := processFlagImage(&input)
	require.NoError(t, err)
	require.NotNil(t, result)

	img := decodeFlagDataURL(t, *result)
	assert.Equal(t, utils.FlagThumbnailMaxPx, img.Bounds().Dx())
	assert.LessOrEqual(t, img.Bounds().Dy(), utils.FlagThumbnailMaxPx)
	assert.Equal(t, 80, img.Bounds().Dy()) // aspect ratio preserved
}

func TestNormalizeCountryName(t *testing.T) {
	assert.Equal(t, "INDONESIA", normalizeCountryName("indonesia"))
	assert.Equal(t, "INDONESIA", normalizeCountryName("  Indonesia "))
	assert.Equal(t, "INDONESIA", normalizeCountryName("INDONESIA"))
	assert.Equal(t, "", normalizeCountryName("   "))
}

func TestProcessFlagImageAcceptsWebP(t *testing.T) {
	// Smallest valid lossy WebP: a single black pixel.
	input := "data:image/webp;base64,UklGRiQAAABXRUJQVlA4IBgAAAAwAQCdASoBAAEAAgA0JaQAA3AA/vuUAAA="

	result, err := processFlagImage(&input)
	require.NoError(t, err)
	require.NotNil(t, result)

	img := decodeFlagDataURL(t, *result)
	assert.Equal(t, 1, img.Bounds().Dx())
	assert.Equal(t, 1, img.Bounds().Dy())
}

func TestProcessFlagImageAcceptsBarePayload(t *testing.T) {
	// Payloads without the data: prefix are plain base64.
	withPrefix := pngDataURL(t, 16, 16)
	bare := strings.TrimPrefix(withPrefix, "data:image/png;base64,")

	result, err := processFlagImage(&bare)
	require.NoError(t, err)
	require.NotNil(t, result)

	img := decodeFlagDataURL(t, *result)
	assert.Equal(t, 16, img.Bounds().Dx())
}
