package annotate

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"

	"roomcompare/internal/geometry"
	"roomcompare/internal/logger"
	"roomcompare/internal/model"

	"gocv.io/x/gocv"
)

var ErrEmptyImage = errors.New("image could not be decoded")

var categoryColors = map[model.Category]color.RGBA{
	model.CategoryRemoved:  {R: 220, G: 38, B: 38},
	model.CategoryAppeared: {R: 22, G: 163, B: 74},
	model.CategoryChanged:  {R: 234, G: 179, B: 8},
}

// Renderer draws a detection box and its label onto the source image.
type Renderer struct {
	logger *logger.Logger
}

func NewRenderer(logger *logger.Logger) *Renderer {
	return &Renderer{logger: logger}
}

// Render returns a JPEG of img with box outlined in the category colour.
// The box is clamped to the image bounds.
func (r *Renderer) Render(img []byte, category model.Category, box geometry.Box, label string) ([]byte, error) {
	mat, err := gocv.IMDecode(img, gocv.IMReadColor)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	defer mat.Close()
	if mat.Empty() {
		return nil, ErrEmptyImage
	}

	c, ok := categoryColors[category]
	if !ok {
		c = color.RGBA{R: 255}
	}

	rect := clamp(box, mat.Cols(), mat.Rows())
	thickness := max(2, min(mat.Cols(), mat.Rows())/200)
	if err := gocv.Rectangle(&mat, rect, c, thickness); err != nil {
		return nil, fmt.Errorf("failed to draw rectangle: %w", err)
	}

	if label != "" {
		pt := image.Pt(rect.Min.X, rect.Min.Y-6)
		if pt.Y < 14 {
			pt.Y = rect.Min.Y + 18
		}
		if err := gocv.PutText(&mat, label, pt, gocv.FontHersheySimplex, 0.6, c, 2); err != nil {
			return nil, fmt.Errorf("failed to draw text: %w", err)
		}
	}

	buf, err := gocv.IMEncode(gocv.JPEGFileExt, mat)
	if err != nil {
		r.logger.Error("Failed to encode image: %v", err)
		return nil, err
	}
	defer buf.Close()

	out := make([]byte, buf.Len())
	copy(out, buf.GetBytes())
	return out, nil
}

func clamp(box geometry.Box, width, height int) image.Rectangle {
	x1 := clampInt(int(math.Round(math.Min(box.X1, box.X2))), 0, width-1)
	y1 := clampInt(int(math.Round(math.Min(box.Y1, box.Y2))), 0, height-1)
	x2 := clampInt(int(math.Round(math.Max(box.X1, box.X2))), 0, width-1)
	y2 := clampInt(int(math.Round(math.Max(box.Y1, box.Y2))), 0, height-1)
	return image.Rect(x1, y1, x2, y2)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
