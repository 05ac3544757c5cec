package session

import (
	"roomcompare/internal/dto"
	"roomcompare/internal/model"
)

// Snapshot returns the current state as sent to the page.
func (s *Session) Snapshot() dto.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() dto.Snapshot {
	snap := dto.Snapshot{
		SessionID: s.id,
		Loading:   s.loading,
		Selection: s.selection,
		LastError: s.lastError,
	}

	for _, slot := range model.Slots {
		info := dto.SlotInfo{Slot: slot, Rendered: s.rendered[slot]}
		if asset := s.images[slot]; asset != nil {
			info.Present = true
			info.Filename = asset.Filename
			info.Natural = asset.Natural
		}
		snap.Images = append(snap.Images, info)
	}

	if s.result != nil {
		for _, c := range model.Categories {
			group := dto.GroupView{Category: c, Source: c.Source(), Items: []dto.ItemView{}}
			for i, item := range s.result.Group(c) {
				group.Items = append(group.Items, dto.ItemView{
					Index:   i,
					Label:   item.Label,
					Preview: item.PreviewURL(),
					Box:     item.BoxArray(),
				})
			}
			snap.Groups = append(snap.Groups, group)
		}
	}

	if c, _, ok := s.selection.Active(); ok {
		snap.Source = c.Source().String()
	}
	if s.overlay != nil {
		overlay := *s.overlay
		snap.Overlay = &overlay
	}

	return snap
}

// Subscribe registers fn to receive a snapshot after every change. The
// returned function removes the subscription.
func (s *Session) Subscribe(fn func(dto.Snapshot)) func() {
	s.listenerMu.Lock()
	defer s.listenerMu.Unlock()

	id := s.nextID
	s.nextID++
	s.listeners[id] = fn

	return func() {
		s.listenerMu.Lock()
		defer s.listenerMu.Unlock()
		delete(s.listeners, id)
	}
}

// notify delivers the current state to every subscriber. Holding notifyMu
// from snapshot to delivery keeps concurrent changes from arriving out of order.
func (s *Session) notify() {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	snap := s.Snapshot()

	s.listenerMu.Lock()
	listeners := make([]func(dto.Snapshot), 0, len(s.listeners))
	for _, fn := range s.listeners {
		listeners = append(listeners, fn)
	}
	s.listenerMu.Unlock()

	for _, fn := range listeners {
		fn(snap)
	}
}
