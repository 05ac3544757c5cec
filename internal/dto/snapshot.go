package dto

import (
	"roomcompare/internal/geometry"
	"roomcompare/internal/model"
)

// Snapshot is the state of one session as rendered by the page.
type Snapshot struct {
	SessionID string          `json:"sessionId"`
	Images    []SlotInfo      `json:"images"`
	Loading   bool            `json:"loading"`
	Groups    []GroupView     `json:"groups"`
	Selection model.Selection `json:"selection"`
	Source    string          `json:"source,omitempty"` // slot the selection is drawn on
	Overlay   *geometry.Rect  `json:"overlay"`
	LastError string          `json:"lastError,omitempty"`
}

// SlotInfo describes one uploaded image.
type SlotInfo struct {
	Slot     model.Slot    `json:"slot"`
	Present  bool          `json:"present"`
	Filename string        `json:"filename,omitempty"`
	Natural  geometry.Size `json:"natural"`
	Rendered geometry.Size `json:"rendered"`
}

// GroupView is one result category.
type GroupView struct {
	Category model.Category `json:"category"`
	Source   model.Slot     `json:"source"`
	Items    []ItemView     `json:"items"`
}

// ItemView is one result thumbnail.
type ItemView struct {
	Index   int        `json:"index"`
	Label   string     `json:"label"`
	Preview string     `json:"preview"` // data URL
	Box     [4]float64 `json:"box"`
}

// Group returns the view of category c, or nil.
func (s *Snapshot) Group(c model.Category) *GroupView {
	for i := range s.Groups {
		if s.Groups[i].Category == c {
			return &s.Groups[i]
		}
	}
	return nil
}
