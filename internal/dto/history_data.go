package dto

import (
	"encoding/json"
	"time"

	"roomcompare/internal/model"
)

// HistoryData is a paginated response payload for the comparison history.
type HistoryData struct {
	Comparisons []ComparisonInfo `json:"comparisons"`
	TopLabels   map[string]int   `json:"topLabels"`
	Length      int              `json:"length"`
	TotalPages  int              `json:"totalPages"`
	CurrentPage int              `json:"currentPage"`
	Limit       int              `json:"pageSize"`
}

// ComparisonInfo summarises one stored comparison.
type ComparisonInfo struct {
	ID            int64                  `json:"id"`
	Date          time.Time              `json:"date"`
	TimeOfDay     time.Time              `json:"timeOfDay"`
	CleanFilename string                 `json:"cleanFilename"`
	MessyFilename string                 `json:"messyFilename"`
	DurationMS    int64                  `json:"durationMs"`
	Status        model.ComparisonStatus `json:"status"`
	Error         string                 `json:"error,omitempty"`
	Counts        map[model.Category]int `json:"counts"`
	Labels        []string               `json:"labels"`
}

// NewComparisonInfo builds the summary of c.
func NewComparisonInfo(c model.Comparison) ComparisonInfo {
	labels := make([]string, 0, len(c.Items))
	for _, item := range c.Items {
		labels = append(labels, item.Label)
	}
	return ComparisonInfo{
		ID:            c.ID,
		Date:          c.CreatedAt,
		TimeOfDay:     c.CreatedAt,
		CleanFilename: c.CleanFilename,
		MessyFilename: c.MessyFilename,
		DurationMS:    c.Duration.Milliseconds(),
		Status:        c.Status,
		Error:         c.Error,
		Counts:        c.CountByCategory(),
		Labels:        labels,
	}
}

// MarshalJSON customizes JSON output for ComparisonInfo to format date and time-of-day.
func (p ComparisonInfo) MarshalJSON() ([]byte, error) {
	type Alias ComparisonInfo
	return json.Marshal(&struct {
		Date      string `json:"date"`
		TimeOfDay string `json:"timeOfDay"`
		Alias
	}{
		Date:      p.Date.Format("02-01-2006"),
		TimeOfDay: p.TimeOfDay.Format("15:04"),
		Alias:     (Alias)(p),
	})
}

// UnmarshalJSON reads the date and time-of-day format written by MarshalJSON.
func (p *ComparisonInfo) UnmarshalJSON(data []byte) error {
	type Alias ComparisonInfo
	aux := &struct {
		Date      string `json:"date"`
		TimeOfDay string `json:"timeOfDay"`
		*Alias
	}{Alias: (*Alias)(p)}
	if err := json.Unmarshal(data, aux); err != nil {
		return err
	}

	if aux.Date != "" {
		date, err := time.Parse("02-01-2006", aux.Date)
		if err != nil {
			return err
		}
		p.Date = date
		p.TimeOfDay = date
	}
	if aux.TimeOfDay != "" {
		clock, err := time.Parse("15:04", aux.TimeOfDay)
		if err != nil {
			return err
		}
		y, m, d := p.Date.Date()
		p.TimeOfDay = time.Date(y, m, d, clock.Hour(), clock.Minute(), 0, 0, time.UTC)
	}
	return nil
}

// ComparisonDetail is one stored comparison with the boxes of its items.
type ComparisonDetail struct {
	Comparison ComparisonInfo         `json:"comparison"`
	Items      []model.ComparisonItem `json:"items"`
}
