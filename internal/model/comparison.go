package model

import "time"

// ComparisonStatus is the outcome stored for a comparison run.
type ComparisonStatus string

const (
	ComparisonOK     ComparisonStatus = "ok"
	ComparisonFailed ComparisonStatus = "failed"
)

// Comparison is a history record of one request to the comparison service.
type Comparison struct {
	ID            int64            `json:"id"`
	SessionID     string           `json:"session_id"`
	CreatedAt     time.Time        `json:"created_at"`
	CleanFilename string           `json:"clean_filename"`
	MessyFilename string           `json:"messy_filename"`
	Duration      time.Duration    `json:"duration"`
	Status        ComparisonStatus `json:"status"`
	Error         string           `json:"error,omitempty"`
	Items         []ComparisonItem `json:"items,omitempty"`
}

// ComparisonItem is a result item without its preview.
type ComparisonItem struct {
	ID           int64    `json:"id"`
	ComparisonID int64    `json:"comparison_id"`
	Category     Category `json:"category"`
	Label        string   `json:"label"`
	X1           float64  `json:"x1"`
	Y1           float64  `json:"y1"`
	X2           float64  `json:"x2"`
	Y2           float64  `json:"y2"`
}

// CountByCategory tallies items per category.
func (c *Comparison) CountByCategory() map[Category]int {
	counts := make(map[Category]int, len(Categories))
	for _, item := range c.Items {
		counts[item.Category]++
	}
	return counts
}
