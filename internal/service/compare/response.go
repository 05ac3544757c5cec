package compare

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"roomcompare/internal/geometry"
	"roomcompare/internal/model"
)

// Response is the body returned by POST /compare.
type Response struct {
	Removed  *Group `json:"removed"`
	Appeared *Group `json:"appeared"`
	Changed  *Group `json:"changed"`
}

// Group is one category: parallel arrays of previews, labels and boxes.
type Group struct {
	Images []string    `json:"images"`
	Labels []string    `json:"labels"`
	Boxes  [][]float64 `json:"boxes"`
}

func (r *Response) group(c model.Category) *Group {
	switch c {
	case model.CategoryRemoved:
		return r.Removed
	case model.CategoryAppeared:
		return r.Appeared
	case model.CategoryChanged:
		return r.Changed
	}
	return nil
}

// DecodeResponse parses and validates a comparison response.
func DecodeResponse(r io.Reader) (*model.Result, error) {
	var resp Response
	if err := json.NewDecoder(r).Decode(&resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return resp.ToResult()
}

// ToResult converts the wire shape into the domain result. A missing category
// is an empty group; a missing label falls back to the category name. The
// boxes decide how many items a group has; images may be omitted entirely, in
// which case the items carry no preview.
func (r *Response) ToResult() (*model.Result, error) {
	result := &model.Result{}

	for _, c := range model.Categories {
		g := r.group(c)
		if g == nil {
			continue
		}
		if len(g.Images) != 0 && len(g.Images) != len(g.Boxes) {
			return nil, fmt.Errorf("%w: %s has %d images but %d boxes",
				ErrMalformedResponse, c, len(g.Images), len(g.Boxes))
		}

		items := make([]model.Item, 0, len(g.Boxes))
		for i, box := range g.Boxes {
			if len(box) != 4 {
				return nil, fmt.Errorf("%w: %s box %d has %d values", ErrMalformedResponse, c, i, len(box))
			}

			label := c.String()
			if i < len(g.Labels) && g.Labels[i] != "" {
				label = g.Labels[i]
			}

			preview := ""
			if i < len(g.Images) {
				preview = stripDataURL(g.Images[i])
			}

			items = append(items, model.Item{
				Label:   label,
				Preview: preview,
				Box:     geometry.Box{X1: box[0], Y1: box[1], X2: box[2], Y2: box[3]},
			})
		}
		result.SetGroup(c, items)
	}

	return result, nil
}

// stripDataURL drops a "data:...;base64," prefix some backends include.
func stripDataURL(s string) string {
	if strings.HasPrefix(s, "data:") {
		if i := strings.Index(s, ","); i >= 0 {
			return s[i+1:]
		}
	}
	return s
}
