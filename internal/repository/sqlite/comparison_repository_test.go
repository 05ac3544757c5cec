package sqlite

import (
	"path/filepath"
	"testing"
	"time"

	"roomcompare/internal/model"
	"roomcompare/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err, "failed to create test database")
	t.Cleanup(func() { db.Close() })
	return db
}

func sampleComparison(session string, created time.Time) *model.Comparison {
	return &model.Comparison{
		SessionID:     session,
		CreatedAt:     created,
		CleanFilename: "clean.jpg",
		MessyFilename: "messy.jpg",
		Duration:      1500 * time.Millisecond,
		Status:        model.ComparisonOK,
		Items: []model.ComparisonItem{
			{Category: model.CategoryRemoved, Label: "chair", X1: 1, Y1: 2, X2: 30, Y2: 40},
			{Category: model.CategoryAppeared, Label: "sock", X1: 5, Y1: 5, X2: 10, Y2: 10},
			{Category: model.CategoryAppeared, Label: "chair", X1: 50, Y1: 50, X2: 90, Y2: 90},
		},
	}
}

func TestComparisonRepository_InsertAndGet(t *testing.T) {
	repo := NewComparisonRepository(setupTestDB(t))

	created := time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC)
	id, err := repo.Insert(sampleComparison("s1", created))
	require.NoError(t, err)
	assert.Positive(t, id)

	got, err := repo.GetByID(id)
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, "s1", got.SessionID)
	assert.True(t, created.Equal(got.CreatedAt), "created_at %v", got.CreatedAt)
	assert.Equal(t, 1500*time.Millisecond, got.Duration)
	assert.Equal(t, model.ComparisonOK, got.Status)
	require.Len(t, got.Items, 3)
	assert.Equal(t, model.CategoryRemoved, got.Items[0].Category)
	assert.Equal(t, 30.0, got.Items[0].X2)
	assert.Equal(t, map[model.Category]int{model.CategoryRemoved: 1, model.CategoryAppeared: 2}, got.CountByCategory())
}

func TestComparisonRepository_GetByID_Missing(t *testing.T) {
	repo := NewComparisonRepository(setupTestDB(t))

	got, err := repo.GetByID(42)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestComparisonRepository_ListAndCount(t *testing.T) {
	repo := NewComparisonRepository(setupTestDB(t))
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		_, err := repo.Insert(sampleComparison("s1", base.Add(time.Duration(i)*time.Hour)))
		require.NoError(t, err)
	}
	failed := &model.Comparison{SessionID: "s2", CreatedAt: base.Add(10 * time.Hour), Status: model.ComparisonFailed, Error: "status 502"}
	_, err := repo.Insert(failed)
	require.NoError(t, err)

	all, err := repo.List(&repository.ComparisonFilter{Limit: 3})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "s2", all[0].SessionID, "newest first")
	assert.Empty(t, all[0].Items)
	assert.Len(t, all[1].Items, 3)

	page2, err := repo.List(&repository.ComparisonFilter{Limit: 3, Offset: 3})
	require.NoError(t, err)
	assert.Len(t, page2, 3)

	count, err := repo.Count(&repository.ComparisonFilter{SessionID: "s1"})
	require.NoError(t, err)
	assert.Equal(t, 5, count)

	count, err = repo.Count(&repository.ComparisonFilter{Status: model.ComparisonFailed})
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	count, err = repo.Count(&repository.ComparisonFilter{Since: base.Add(3 * time.Hour)})
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	count, err = repo.Count(nil)
	require.NoError(t, err)
	assert.Equal(t, 6, count)
}

func TestComparisonRepository_LabelCounts(t *testing.T) {
	repo := NewComparisonRepository(setupTestDB(t))
	_, err := repo.Insert(sampleComparison("s1", time.Now()))
	require.NoError(t, err)

	other := sampleComparison("s2", time.Now())
	other.Items = []model.ComparisonItem{{Category: model.CategoryChanged, Label: "lamp", X2: 10, Y2: 10}}
	_, err = repo.Insert(other)
	require.NoError(t, err)

	counts, err := repo.LabelCounts("s1", 10)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"chair": 2, "sock": 1}, counts)

	counts, err = repo.LabelCounts("", 10)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"chair": 2, "sock": 1, "lamp": 1}, counts)

	counts, err = repo.LabelCounts("", 1)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"chair": 2}, counts)
}

func TestComparisonRepository_DeleteBySession(t *testing.T) {
	repo := NewComparisonRepository(setupTestDB(t))
	now := time.Now()

	for _, session := range []string{"s1", "s1", "s2"} {
		_, err := repo.Insert(sampleComparison(session, now))
		require.NoError(t, err)
	}

	removed, err := repo.DeleteBySession("s1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	count, err := repo.Count(&repository.ComparisonFilter{SessionID: "s1"})
	require.NoError(t, err)
	assert.Zero(t, count)

	count, err = repo.Count(&repository.ComparisonFilter{SessionID: "s2"})
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	counts, err := repo.LabelCounts("", 10)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"chair": 2, "sock": 1}, counts, "items of deleted comparisons are gone")
}

func TestComparisonRepository_DeleteOlderThan(t *testing.T) {
	repo := NewComparisonRepository(setupTestDB(t))
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	_, err := repo.Insert(sampleComparison("old", now.AddDate(0, 0, -40)))
	require.NoError(t, err)
	keepID, err := repo.Insert(sampleComparison("new", now.AddDate(0, 0, -1)))
	require.NoError(t, err)

	removed, err := repo.DeleteOlderThan(now.AddDate(0, 0, -30))
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	remaining, err := repo.List(nil)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, keepID, remaining[0].ID)

	require.NoError(t, repo.DeleteAll())
	count, err := repo.Count(nil)
	require.NoError(t, err)
	assert.Zero(t, count)
}
