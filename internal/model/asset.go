package model

import "roomcompare/internal/geometry"

// Asset is an uploaded source image.
type Asset struct {
	Filename    string
	ContentType string
	Data        []byte
	Natural     geometry.Size // zero until decoded
}

// Decoded reports whether the natural size is known.
func (a *Asset) Decoded() bool {
	return a != nil && a.Natural.Valid()
}
