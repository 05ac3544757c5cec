package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"roomcompare/internal/model"
)

// job is one comparison request bound to a generation of the session.
type job struct {
	generation uint64
	ctx        context.Context
	cancel     context.CancelFunc
	stop       func() bool
	clean      model.Asset
	messy      model.Asset
	started    time.Time
}

// Compare runs a comparison and waits for it. It returns ErrMissingImages
// without contacting the service when a slot is empty. Starting a comparison
// aborts the previous one; the aborted call returns an error wrapping
// context.Canceled and its outcome is discarded.
func (s *Session) Compare(ctx context.Context) error {
	j, err := s.begin(ctx)
	if err != nil {
		return err
	}
	return s.run(j)
}

// Submit starts a comparison in the background. Validation errors are
// returned synchronously; the outcome is published through subscribers.
func (s *Session) Submit() error {
	j, err := s.begin(context.Background())
	if err != nil {
		return err
	}
	go s.run(j)
	return nil
}

func (s *Session) begin(ctx context.Context) (*job, error) {
	s.mu.Lock()

	if s.closed {
		s.mu.Unlock()
		return nil, ErrClosed
	}
	if s.images[model.SlotClean] == nil || s.images[model.SlotMessy] == nil {
		s.mu.Unlock()
		return nil, ErrMissingImages
	}
	if !s.limiter.Allow() {
		s.mu.Unlock()
		return nil, ErrTooManyRequests
	}

	s.abortLocked()

	reqCtx, cancel := context.WithCancel(s.ctx)
	stop := context.AfterFunc(ctx, cancel)

	j := &job{
		generation: s.generation,
		ctx:        reqCtx,
		cancel:     cancel,
		stop:       stop,
		clean:      *s.images[model.SlotClean],
		messy:      *s.images[model.SlotMessy],
		started:    s.opts.Now(),
	}

	s.inflight = cancel
	s.loading = true
	s.result = nil
	s.selection = model.NoSelection()
	s.overlay = nil
	s.lastError = ""
	s.touch()
	s.mu.Unlock()

	s.opts.Logger.Info("Session %s: comparing %s with %s", s.id, j.clean.Filename, j.messy.Filename)
	s.notify()
	return j, nil
}

func (s *Session) run(j *job) error {
	defer j.stop()
	defer j.cancel()

	result, err := s.opts.Comparer.Compare(j.ctx, j.clean, j.messy)
	if err == nil {
		if n, perr := fillPreviews(result, j.clean, j.messy); perr != nil {
			s.opts.Logger.Warning("Session %s: could not crop previews: %v", s.id, perr)
		} else if n > 0 {
			s.opts.Logger.Info("Session %s: cropped %d missing preview(s)", s.id, n)
		}
	}

	s.mu.Lock()
	if j.generation != s.generation {
		s.mu.Unlock()
		s.opts.Logger.Info("Session %s: discarding superseded comparison", s.id)
		if err == nil {
			err = context.Canceled
		}
		return fmt.Errorf("comparison superseded: %w", err)
	}

	s.inflight = nil
	s.loading = false
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			s.lastError = err.Error()
		}
	} else {
		s.result = result
		s.selection = model.NoSelection()
		s.overlay = nil
		s.lastError = ""
	}
	s.touch()
	s.mu.Unlock()

	if err != nil {
		if errors.Is(err, context.Canceled) {
			s.opts.Logger.Info("Session %s: comparison cancelled", s.id)
		} else {
			s.opts.Logger.Error("Session %s: comparison failed: %v", s.id, err)
		}
	} else {
		counts := result.Counts()
		s.opts.Logger.Info("Session %s: comparison done (removed=%d appeared=%d changed=%d)", s.id,
			counts[model.CategoryRemoved], counts[model.CategoryAppeared], counts[model.CategoryChanged])
	}

	s.notify()
	s.record(j, result, err)
	return err
}

// record stores the outcome in the history. Cancelled runs are not recorded.
func (s *Session) record(j *job, result *model.Result, err error) {
	if s.opts.History == nil || errors.Is(err, context.Canceled) {
		return
	}

	c := &model.Comparison{
		SessionID:     s.id,
		CreatedAt:     j.started,
		CleanFilename: j.clean.Filename,
		MessyFilename: j.messy.Filename,
		Duration:      s.opts.Now().Sub(j.started),
		Status:        model.ComparisonOK,
	}

	if err != nil {
		c.Status = model.ComparisonFailed
		c.Error = err.Error()
	} else {
		for _, cat := range model.Categories {
			for _, item := range result.Group(cat) {
				c.Items = append(c.Items, model.ComparisonItem{
					Category: cat,
					Label:    item.Label,
					X1:       item.Box.X1,
					Y1:       item.Box.Y1,
					X2:       item.Box.X2,
					Y2:       item.Box.Y2,
				})
			}
		}
	}

	if _, err := s.opts.History.Insert(c); err != nil {
		s.opts.Logger.Error("Session %s: failed to record comparison: %v", s.id, err)
	}
}
