package session

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"math"

	"roomcompare/internal/geometry"
	"roomcompare/internal/model"

	"github.com/disintegration/imaging"
)

const (
	previewWidth  = 300
	previewHeight = 200
)

var errEmptyCrop = errors.New("box does not overlap the image")

// fillPreviews crops a thumbnail out of the source image for every item the
// service returned without one. Returns how many previews were generated.
func fillPreviews(result *model.Result, clean, messy model.Asset) (int, error) {
	sources := [2]model.Asset{model.SlotClean: clean, model.SlotMessy: messy}
	decoded := [2]image.Image{}
	filled := 0

	for _, c := range model.Categories {
		items := result.Group(c)
		for i := range items {
			if items[i].Preview != "" {
				continue
			}

			slot := c.Source()
			if decoded[slot] == nil {
				img, err := imaging.Decode(bytes.NewReader(sources[slot].Data))
				if err != nil {
					return filled, fmt.Errorf("failed to decode %s image: %w", slot, err)
				}
				decoded[slot] = img
			}

			preview, err := cropPreview(decoded[slot], items[i].Box)
			if err != nil {
				continue
			}
			items[i].Preview = preview
			filled++
		}
	}
	return filled, nil
}

// cropPreview returns the base64 JPEG of box cut from img, fitted into the thumbnail size.
func cropPreview(img image.Image, box geometry.Box) (string, error) {
	rect := image.Rect(
		int(math.Round(box.X1)), int(math.Round(box.Y1)),
		int(math.Round(box.X2)), int(math.Round(box.Y2)),
	).Intersect(img.Bounds())
	if rect.Empty() {
		return "", errEmptyCrop
	}

	thumb := imaging.Fit(imaging.Crop(img, rect), previewWidth, previewHeight, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
