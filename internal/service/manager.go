package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"roomcompare/internal/dto"
	"roomcompare/internal/logger"
	"roomcompare/internal/model"
	"roomcompare/internal/repository"
	"roomcompare/internal/service/annotate"
	"roomcompare/internal/service/session"
	"roomcompare/internal/service/websocket"
)

var (
	ErrNoSelection     = errors.New("no item selected")
	ErrUnknownMessage  = errors.New("unknown message type")
	ErrHistoryDisabled = errors.New("comparison history is disabled")
	ErrNotFound        = errors.New("comparison not found")
)

// Manager ties the session store to the page connections, the renderer and the history.
type Manager struct {
	store            *session.Store
	websocketService *websocket.HubService
	renderer         *annotate.Renderer
	history          repository.ComparisonRepository // nil when disabled
	logger           *logger.Logger
}

func NewManager(store *session.Store, websocketService *websocket.HubService, renderer *annotate.Renderer, history repository.ComparisonRepository, logger *logger.Logger) *Manager {
	m := &Manager{
		store:            store,
		websocketService: websocketService,
		renderer:         renderer,
		history:          history,
		logger:           logger,
	}
	store.OnCreate(m.attach)
	return m
}

// Session returns the session for id, creating it on first use.
func (m *Manager) Session(id string) *session.Session {
	return m.store.GetOrCreate(id)
}

// Touch keeps the session for id alive without creating it.
func (m *Manager) Touch(id string) bool {
	_, ok := m.store.Get(id)
	return ok
}

// attach forwards every change of s to the connections of that session.
func (m *Manager) attach(s *session.Session) {
	id := s.ID()
	s.Subscribe(func(snap dto.Snapshot) {
		payload, err := EncodeSnapshot(snap)
		if err != nil {
			m.logger.Error("Failed to encode snapshot for session %s: %v", id, err)
			return
		}
		m.websocketService.Send(id, payload)
	})
}

// EncodeSnapshot builds the websocket message carrying snap.
func EncodeSnapshot(snap dto.Snapshot) ([]byte, error) {
	return json.Marshal(dto.ServerMessage{Type: "snapshot", State: &snap})
}

// EncodeError builds the websocket message reporting err.
func EncodeError(err error) []byte {
	payload, _ := json.Marshal(dto.ServerMessage{Type: "error", Error: err.Error()})
	return payload
}

// HandleClientMessage applies an event sent by the page to the session with
// the given id. The session is looked up for every event, so a connection that
// outlived an expired session drives its replacement.
func (m *Manager) HandleClientMessage(sessionID string, msg dto.ClientMessage) error {
	s := m.Session(sessionID)

	switch msg.Type {
	case "select":
		c, err := model.ParseCategory(msg.Category)
		if err != nil {
			return err
		}
		return s.Select(c, msg.Index)

	case "clear":
		return s.ClearSelection()

	case "geometry":
		slot, err := model.ParseSlot(msg.Slot)
		if err != nil {
			return err
		}
		return s.ReportGeometry(slot, msg.Width, msg.Height)

	case "compare":
		return s.Submit()

	default:
		return fmt.Errorf("%w: %q", ErrUnknownMessage, msg.Type)
	}
}

// Annotate renders the selected item of s onto its source image.
func (m *Manager) Annotate(s *session.Session) ([]byte, error) {
	sel, ok := s.Selected()
	if !ok {
		return nil, ErrNoSelection
	}
	return m.renderer.Render(sel.Image.Data, sel.Category, sel.Item.Box, sel.Item.Label)
}

// History returns one page of stored comparisons.
func (m *Manager) History(filter *repository.ComparisonFilter) ([]model.Comparison, int, error) {
	if m.history == nil {
		return nil, 0, ErrHistoryDisabled
	}
	comparisons, err := m.history.List(filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := m.history.Count(filter)
	if err != nil {
		return nil, 0, err
	}
	return comparisons, total, nil
}

// HistoryItem returns one stored comparison of the session.
func (m *Manager) HistoryItem(sessionID string, id int64) (*model.Comparison, error) {
	if m.history == nil {
		return nil, ErrHistoryDisabled
	}
	c, err := m.history.GetByID(id)
	if err != nil {
		return nil, err
	}
	if c == nil || c.SessionID != sessionID {
		return nil, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	return c, nil
}

// TopLabels returns how often each label was reported in the session, limited to the most frequent.
func (m *Manager) TopLabels(sessionID string, limit int) (map[string]int, error) {
	if m.history == nil {
		return nil, ErrHistoryDisabled
	}
	return m.history.LabelCounts(sessionID, limit)
}

// ClearHistory removes the stored comparisons of the session.
func (m *Manager) ClearHistory(sessionID string) (int64, error) {
	if m.history == nil {
		return 0, ErrHistoryDisabled
	}
	return m.history.DeleteBySession(sessionID)
}

// RunHistoryPruner deletes comparisons older than retention every interval until ctx is done.
func (m *Manager) RunHistoryPruner(ctx context.Context, interval, retention time.Duration) error {
	if m.history == nil || retention <= 0 {
		return nil
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		m.pruneHistory(retention)

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (m *Manager) pruneHistory(retention time.Duration) {
	removed, err := m.history.DeleteOlderThan(time.Now().Add(-retention))
	if err != nil {
		m.logger.Error("Failed to prune comparison history: %v", err)
		return
	}
	if removed > 0 {
		m.logger.Info("Pruned %d comparison(s) older than %s", removed, retention)
	}
}

func (m *Manager) GetWebsocketService() *websocket.HubService {
	return m.websocketService
}

func (m *Manager) GetStore() *session.Store {
	return m.store
}

func (m *Manager) HistoryEnabled() bool {
	return m.history != nil
}
