package session

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/http"

	"roomcompare/internal/geometry"
	"roomcompare/internal/model"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrUnsupportedImage is returned when uploaded bytes are not a decodable image.
var ErrUnsupportedImage = errors.New("unsupported image")

// NewAsset reads the image header to learn its natural size. Only the header
// is decoded; pixel data is left to the browser.
func NewAsset(filename, contentType string, data []byte) (model.Asset, error) {
	if len(data) == 0 {
		return model.Asset{}, fmt.Errorf("%w: empty file", ErrUnsupportedImage)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return model.Asset{}, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}

	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
		if contentType == "application/octet-stream" {
			contentType = "image/" + format
		}
	}

	return model.Asset{
		Filename:    filename,
		ContentType: contentType,
		Data:        data,
		Natural:     geometry.Size{Width: float64(cfg.Width), Height: float64(cfg.Height)},
	}, nil
}
