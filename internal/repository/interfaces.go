package repository

import (
	"time"

	"roomcompare/internal/model"
)

// ComparisonFilter narrows history queries.
type ComparisonFilter struct {
	SessionID string
	Status    model.ComparisonStatus
	Since     time.Time
	Limit     int
	Offset    int
}

// ComparisonRepository defines the interface for comparison history operations.
type ComparisonRepository interface {
	// Create operations
	Insert(c *model.Comparison) (int64, error)

	// Read operations
	GetByID(id int64) (*model.Comparison, error)
	List(filter *ComparisonFilter) ([]model.Comparison, error)
	Count(filter *ComparisonFilter) (int, error)
	LabelCounts(sessionID string, limit int) (map[string]int, error) // empty sessionID counts every session

	// Delete operations
	DeleteOlderThan(t time.Time) (int64, error)
	DeleteBySession(sessionID string) (int64, error)
	DeleteAll() error
}
