package dto

import "roomcompare/internal/model"

// SelectRequest is the body of POST /api/select.
type SelectRequest struct {
	Category model.Category `json:"category"`
	Index    int            `json:"index"`
}

// GeometryRequest is the body of POST /api/geometry: the client size of the
// element an image is drawn in.
type GeometryRequest struct {
	Slot   model.Slot `json:"slot"`
	Width  float64    `json:"width"`
	Height float64    `json:"height"`
}

// ClientMessage is an event sent by the page over the websocket.
type ClientMessage struct {
	Type     string  `json:"type"` // "select", "clear" or "geometry"
	Category string  `json:"category,omitempty"`
	Index    int     `json:"index,omitempty"`
	Slot     string  `json:"slot,omitempty"`
	Width    float64 `json:"width,omitempty"`
	Height   float64 `json:"height,omitempty"`
}

// ServerMessage is pushed to the page over the websocket.
type ServerMessage struct {
	Type  string    `json:"type"` // "snapshot" or "error"
	State *Snapshot `json:"state,omitempty"`
	Error string    `json:"error,omitempty"`
}

// ErrorResponse is the JSON body of failed API calls.
type ErrorResponse struct {
	Error string    `json:"error"`
	State *Snapshot `json:"state,omitempty"`
}
