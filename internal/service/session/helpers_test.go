package session

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"sync"
	"testing"
	"time"

	"roomcompare/internal/model"
	"roomcompare/internal/repository"

	"github.com/stretchr/testify/require"
)

// pngBytes encodes a blank image of the given size.
func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func testAsset(t *testing.T, name string, w, h int) model.Asset {
	t.Helper()

	asset, err := NewAsset(name, "image/png", pngBytes(t, w, h))
	require.NoError(t, err)
	return asset
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// memoryHistory is an in-memory repository.ComparisonRepository.
type memoryHistory struct {
	mu          sync.Mutex
	comparisons []model.Comparison
}

func (m *memoryHistory) Insert(c *model.Comparison) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c.ID = int64(len(m.comparisons) + 1)
	m.comparisons = append(m.comparisons, *c)
	return c.ID, nil
}

func (m *memoryHistory) GetByID(id int64) (*model.Comparison, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.comparisons {
		if m.comparisons[i].ID == id {
			c := m.comparisons[i]
			return &c, nil
		}
	}
	return nil, nil
}

func (m *memoryHistory) List(filter *repository.ComparisonFilter) ([]model.Comparison, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.Comparison(nil), m.comparisons...), nil
}

func (m *memoryHistory) Count(filter *repository.ComparisonFilter) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.comparisons), nil
}

func (m *memoryHistory) LabelCounts(sessionID string, limit int) (map[string]int, error) {
	return map[string]int{}, nil
}

func (m *memoryHistory) DeleteOlderThan(t time.Time) (int64, error) {
	return 0, nil
}

func (m *memoryHistory) DeleteBySession(sessionID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.comparisons[:0]
	for _, c := range m.comparisons {
		if c.SessionID != sessionID {
			kept = append(kept, c)
		}
	}
	removed := int64(len(m.comparisons) - len(kept))
	m.comparisons = kept
	return removed, nil
}

func (m *memoryHistory) DeleteAll() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.comparisons = nil
	return nil
}
