package model

import "roomcompare/internal/geometry"

// Item is one crop returned by the comparison service.
type Item struct {
	Label   string       `json:"label"`
	Preview string       `json:"preview"` // base64 JPEG, without the data: prefix
	Box     geometry.Box `json:"-"`
}

// BoxArray returns the box as [x1, y1, x2, y2].
func (i Item) BoxArray() [4]float64 {
	return [4]float64{i.Box.X1, i.Box.Y1, i.Box.X2, i.Box.Y2}
}

// PreviewURL is the preview as a data URL usable as an <img> source.
func (i Item) PreviewURL() string {
	if i.Preview == "" {
		return ""
	}
	return "data:image/jpeg;base64," + i.Preview
}

// Result holds the three item groups of one comparison.
type Result struct {
	Removed  []Item
	Appeared []Item
	Changed  []Item
}

// Group returns the items of category c.
func (r *Result) Group(c Category) []Item {
	if r == nil {
		return nil
	}
	switch c {
	case CategoryRemoved:
		return r.Removed
	case CategoryAppeared:
		return r.Appeared
	case CategoryChanged:
		return r.Changed
	}
	return nil
}

// SetGroup replaces the items of category c.
func (r *Result) SetGroup(c Category, items []Item) {
	switch c {
	case CategoryRemoved:
		r.Removed = items
	case CategoryAppeared:
		r.Appeared = items
	case CategoryChanged:
		r.Changed = items
	}
}

// Item returns the item a selection points at.
func (r *Result) Item(sel Selection) (Item, bool) {
	c, i, ok := sel.Active()
	if !ok {
		return Item{}, false
	}
	group := r.Group(c)
	if i < 0 || i >= len(group) {
		return Item{}, false
	}
	return group[i], true
}

// Empty reports whether no category has items.
func (r *Result) Empty() bool {
	if r == nil {
		return true
	}
	return len(r.Removed)+len(r.Appeared)+len(r.Changed) == 0
}

// Counts returns the number of items per category.
func (r *Result) Counts() map[Category]int {
	counts := make(map[Category]int, len(Categories))
	for _, c := range Categories {
		counts[c] = len(r.Group(c))
	}
	return counts
}
