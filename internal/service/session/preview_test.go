package session

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/jpeg"
	"testing"

	"roomcompare/internal/geometry"
	"roomcompare/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFillPreviews(t *testing.T) {
	clean := testAsset(t, "clean.png", 400, 200)
	messy := testAsset(t, "messy.png", 100, 200)

	result := &model.Result{
		Removed: []model.Item{
			{Label: "lamp", Box: geometry.Box{X1: 0, Y1: 0, X2: 400, Y2: 200}},
			{Label: "ghost", Box: geometry.Box{X1: 500, Y1: 500, X2: 600, Y2: 600}},
		},
		Appeared: []model.Item{
			{Label: "sock", Preview: "QUJD", Box: geometry.Box{X1: 0, Y1: 0, X2: 10, Y2: 10}},
			{Label: "cup", Box: geometry.Box{X1: 10, Y1: 20, X2: 60, Y2: 120}},
		},
	}

	filled, err := fillPreviews(result, clean, messy)
	require.NoError(t, err)
	assert.Equal(t, 2, filled)

	assert.Equal(t, "QUJD", result.Appeared[0].Preview, "existing previews are kept")
	assert.Empty(t, result.Removed[1].Preview, "boxes outside the image get no preview")

	// 400x200 is fitted into 300x200.
	assert.Equal(t, image.Rect(0, 0, 300, 150), decodePreview(t, result.Removed[0].Preview).Bounds())
	// 50x100 is smaller than the thumbnail and keeps its size.
	assert.Equal(t, image.Rect(0, 0, 50, 100), decodePreview(t, result.Appeared[1].Preview).Bounds())
}

func TestFillPreviews_UndecodableSource(t *testing.T) {
	result := &model.Result{Changed: []model.Item{{Box: geometry.Box{X2: 1, Y2: 1}}}}

	_, err := fillPreviews(result, model.Asset{}, model.Asset{Data: []byte("nope")})
	assert.Error(t, err)
}

func decodePreview(t *testing.T, preview string) image.Image {
	t.Helper()

	data, err := base64.StdEncoding.DecodeString(preview)
	require.NoError(t, err)
	img, err := jpeg.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	return img
}
