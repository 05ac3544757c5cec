// Package geometry maps bounding boxes from an image's natural pixel space
// onto the rectangle the image occupies when it is drawn inside a container
// with contain scaling (aspect ratio kept, letterboxed on one axis).
package geometry

// Size is a width/height pair. Natural sizes are decoder pixels, client sizes
// are CSS pixels of the element the image is drawn in.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Valid reports whether both dimensions are positive.
func (s Size) Valid() bool {
	return s.Width > 0 && s.Height > 0
}

// Box is a region in natural pixel space given by its corners.
type Box struct {
	X1 float64
	Y1 float64
	X2 float64
	Y2 float64
}

// Rect is a rectangle in the container's CSS pixel space.
type Rect struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Fit returns the rectangle an image of the given natural size occupies inside
// a container of the given client size. It returns false when either size has
// a non-positive dimension, i.e. the image is not decoded or not laid out.
func Fit(natural, client Size) (Rect, bool) {
	if !natural.Valid() || !client.Valid() {
		return Rect{}, false
	}

	imgAspect := natural.Width / natural.Height
	containerAspect := client.Width / client.Height

	var r Rect
	if imgAspect > containerAspect {
		// Width-constrained: bars above and below.
		r.Width = client.Width
		r.Height = r.Width / imgAspect
		r.Top = (client.Height - r.Height) / 2
	} else {
		// Height-constrained: bars left and right.
		r.Height = client.Height
		r.Width = r.Height * imgAspect
		r.Left = (client.Width - r.Width) / 2
	}
	return r, true
}

// Project converts box into container CSS pixels. The result is a pure
// function of its inputs. When the image has not been decoded or laid out yet
// no rectangle is produced and the caller should treat the overlay as absent.
func Project(box Box, natural, client Size) (Rect, bool) {
	rendered, ok := Fit(natural, client)
	if !ok {
		return Rect{}, false
	}

	scaleX := rendered.Width / natural.Width
	scaleY := rendered.Height / natural.Height

	return Rect{
		Left:   rendered.Left + box.X1*scaleX,
		Top:    rendered.Top + box.Y1*scaleY,
		Width:  (box.X2 - box.X1) * scaleX,
		Height: (box.Y2 - box.Y1) * scaleY,
	}, true
}
