package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"roomcompare/internal/dto"
	"roomcompare/internal/geometry"
	"roomcompare/internal/logger"
	"roomcompare/internal/model"
	"roomcompare/internal/repository"
	"roomcompare/internal/service/compare"

	"golang.org/x/time/rate"
)

var (
	ErrMissingImages    = errors.New("please upload both images before comparing")
	ErrTooManyRequests  = errors.New("comparison submitted too quickly")
	ErrInvalidSelection = errors.New("no such result item")
	ErrClosed           = errors.New("session closed")
)

// Options are shared by every session of a Store.
type Options struct {
	Comparer    compare.Comparer
	History     repository.ComparisonRepository // nil disables history
	Logger      *logger.Logger
	MinInterval time.Duration // minimum spacing between two comparisons
	Now         func() time.Time
}

// Session is the UI state of one browser: the two source images, the last
// comparison result, the active selection and the overlay derived from it.
type Session struct {
	id   string
	opts Options

	ctx    context.Context // cancelled by Close
	cancel context.CancelFunc

	mu        sync.Mutex
	images    [2]*model.Asset
	rendered  [2]geometry.Size
	loading   bool
	result    *model.Result
	selection model.Selection
	overlay   *geometry.Rect
	lastError string
	lastSeen  time.Time
	closed    bool

	generation uint64
	inflight   context.CancelFunc
	limiter    *rate.Limiter

	notifyMu   sync.Mutex // orders snapshot deliveries
	listenerMu sync.Mutex
	listeners  map[int]func(dto.Snapshot)
	nextID     int
}

// New creates a session.
func New(id string, opts Options) *Session {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = logger.Discard()
	}

	limit := rate.Inf
	if opts.MinInterval > 0 {
		limit = rate.Every(opts.MinInterval)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Session{
		id:        id,
		opts:      opts,
		ctx:       ctx,
		cancel:    cancel,
		lastSeen:  opts.Now(),
		limiter:   rate.NewLimiter(limit, 1),
		listeners: make(map[int]func(dto.Snapshot)),
	}
}

func (s *Session) ID() string {
	return s.id
}

// SetImage stores the image for slot. The slot has to be laid out again
// before an overlay can be drawn on it.
func (s *Session) SetImage(slot model.Slot, asset model.Asset) error {
	if slot != model.SlotClean && slot != model.SlotMessy {
		return fmt.Errorf("%w: %d", model.ErrUnknownSlot, slot)
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	replacing := s.loading
	if replacing {
		// the running comparison was sent the previous image
		s.abortLocked()
		s.loading = false
	}
	s.images[slot] = &asset
	s.rendered[slot] = geometry.Size{}
	s.touch()
	s.recomputeOverlay()
	s.mu.Unlock()

	if replacing {
		s.opts.Logger.Info("Session %s: comparison aborted, %s image replaced", s.id, slot)
	}
	s.opts.Logger.Info("Session %s: %s image set (%s, %.0fx%.0f)", s.id, slot, asset.Filename, asset.Natural.Width, asset.Natural.Height)
	s.notify()
	return nil
}

// Image returns the asset stored in slot.
func (s *Session) Image(slot model.Slot) (model.Asset, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if slot != model.SlotClean && slot != model.SlotMessy || s.images[slot] == nil {
		return model.Asset{}, false
	}
	return *s.images[slot], true
}

// ReportGeometry records the client size of the element slot is drawn in.
func (s *Session) ReportGeometry(slot model.Slot, width, height float64) error {
	if slot != model.SlotClean && slot != model.SlotMessy {
		return fmt.Errorf("%w: %d", model.ErrUnknownSlot, slot)
	}
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	size := geometry.Size{Width: width, Height: height}
	if s.rendered[slot] == size {
		s.touch()
		s.mu.Unlock()
		return nil
	}
	s.rendered[slot] = size
	s.touch()
	s.recomputeOverlay()
	s.mu.Unlock()

	s.notify()
	return nil
}

// Select makes item index of category c the active selection.
func (s *Session) Select(c model.Category, index int) error {
	sel := model.Select(c, index)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if _, ok := s.result.Item(sel); !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s[%d]", ErrInvalidSelection, c, index)
	}
	s.selection = sel
	s.touch()
	s.recomputeOverlay()
	s.mu.Unlock()

	s.notify()
	return nil
}

// ClearSelection removes the active selection and its overlay.
func (s *Session) ClearSelection() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.selection = model.NoSelection()
	s.overlay = nil
	s.touch()
	s.mu.Unlock()

	s.notify()
	return nil
}

// SelectedItem is the active selection resolved against the result.
type SelectedItem struct {
	Category model.Category
	Item     model.Item
	Image    model.Asset // the image the item's box refers to
}

// Selected returns the selected item and the image it refers to.
func (s *Session) Selected() (SelectedItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.result.Item(s.selection)
	if !ok {
		return SelectedItem{}, false
	}
	c, _, _ := s.selection.Active()
	asset := s.images[c.Source()]
	if asset == nil {
		return SelectedItem{}, false
	}
	return SelectedItem{Category: c, Item: item, Image: *asset}, true
}

// Reset drops all state and aborts a running comparison.
func (s *Session) Reset() {
	s.mu.Lock()
	s.abortLocked()
	s.images = [2]*model.Asset{}
	s.rendered = [2]geometry.Size{}
	s.loading = false
	s.result = nil
	s.selection = model.NoSelection()
	s.overlay = nil
	s.lastError = ""
	s.touch()
	s.mu.Unlock()

	s.opts.Logger.Info("Session %s reset", s.id)
	s.notify()
}

// Close aborts in-flight work. Every later change returns ErrClosed.
func (s *Session) Close() {
	s.mu.Lock()
	s.closed = true
	s.abortLocked()
	s.loading = false
	s.mu.Unlock()

	s.cancel()
}

// LastSeen is the time of the last state change or read through the store.
func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// Touch marks the session as active.
func (s *Session) Touch() {
	s.mu.Lock()
	s.touch()
	s.mu.Unlock()
}

func (s *Session) touch() {
	s.lastSeen = s.opts.Now()
}

// recomputeOverlay derives the overlay from the selection. Callers hold mu.
func (s *Session) recomputeOverlay() {
	s.overlay = nil

	item, ok := s.result.Item(s.selection)
	if !ok {
		s.selection = model.NoSelection()
		return
	}

	c, _, _ := s.selection.Active()
	slot := c.Source()
	asset := s.images[slot]
	if asset == nil {
		return
	}

	if rect, ok := geometry.Project(item.Box, asset.Natural, s.rendered[slot]); ok {
		s.overlay = &rect
	}
}

// abortLocked cancels the in-flight comparison, if any. Callers hold mu.
func (s *Session) abortLocked() {
	s.generation++
	if s.inflight != nil {
		s.inflight()
		s.inflight = nil
	}
}
