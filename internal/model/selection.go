package model

import "encoding/json"

// Selection is the active thumbnail: either nothing, or one item of one
// category. The zero value is "nothing selected".
type Selection struct {
	set      bool
	category Category
	index    int
}

// NoSelection returns the empty selection.
func NoSelection() Selection {
	return Selection{}
}

// Select returns a selection of item index in category c. Whether the item
// exists is checked against a Result by the caller.
func Select(c Category, index int) Selection {
	return Selection{set: true, category: c, index: index}
}

// Active returns the selected category and index, and false when nothing is selected.
func (s Selection) Active() (Category, int, bool) {
	return s.category, s.index, s.set
}

func (s Selection) IsNone() bool {
	return !s.set
}

type selectionJSON struct {
	Category Category `json:"category"`
	Index    int      `json:"index"`
}

// MarshalJSON encodes the empty selection as null.
func (s Selection) MarshalJSON() ([]byte, error) {
	if !s.set {
		return []byte("null"), nil
	}
	return json.Marshal(selectionJSON{Category: s.category, Index: s.index})
}

func (s *Selection) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*s = NoSelection()
		return nil
	}
	var v selectionJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*s = Select(v.Category, v.Index)
	return nil
}
