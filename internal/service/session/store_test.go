package session

import (
	"context"
	"testing"
	"time"

	"roomcompare/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_GetOrCreate(t *testing.T) {
	store := NewStore(Options{}, time.Hour)

	_, ok := store.Get("a")
	assert.False(t, ok)

	a := store.GetOrCreate("a")
	assert.Same(t, a, store.GetOrCreate("a"))

	got, ok := store.Get("a")
	require.True(t, ok)
	assert.Same(t, a, got)
	assert.Equal(t, 1, store.Len())
}

func TestStore_Sweep(t *testing.T) {
	clock := newFakeClock()
	store := NewStore(Options{Now: clock.Now}, 10*time.Minute)

	idle := store.GetOrCreate("idle")
	store.GetOrCreate("active")

	clock.Advance(8 * time.Minute)
	store.GetOrCreate("active")

	clock.Advance(5 * time.Minute)
	assert.Equal(t, 1, store.Sweep())

	_, ok := store.Get("idle")
	assert.False(t, ok)
	_, ok = store.Get("active")
	assert.True(t, ok)

	assert.ErrorIs(t, idle.SetImage(model.SlotClean, testAsset(t, "a.png", 2, 2)), ErrClosed, "expired sessions are closed")
}

func TestStore_RunClosesOnShutdown(t *testing.T) {
	store := NewStore(Options{}, time.Hour)
	s := store.GetOrCreate("a")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- store.Run(ctx, time.Millisecond) }()

	cancel()
	require.NoError(t, <-done)

	assert.Zero(t, store.Len())
	assert.ErrorIs(t, s.Compare(context.Background()), ErrClosed)
}

func TestStore_OnCreateRunsOncePerSession(t *testing.T) {
	store := NewStore(Options{}, time.Hour)

	var created []string
	store.OnCreate(func(s *Session) { created = append(created, s.ID()) })

	store.GetOrCreate("a")
	store.GetOrCreate("a")
	store.GetOrCreate("b")

	assert.Equal(t, []string{"a", "b"}, created)
}

func TestStore_EvictsLeastRecentlySeen(t *testing.T) {
	clock := newFakeClock()
	store := NewStore(Options{Now: clock.Now}, time.Hour)
	store.SetMaxSessions(2)

	a := store.GetOrCreate("a")
	clock.Advance(time.Minute)
	b := store.GetOrCreate("b")
	clock.Advance(time.Minute)
	store.GetOrCreate("a")

	store.GetOrCreate("c")

	assert.Equal(t, 2, store.Len())
	_, ok := store.Get("b")
	assert.False(t, ok)
	got, ok := store.Get("a")
	require.True(t, ok)
	assert.Same(t, a, got)

	assert.ErrorIs(t, b.SetImage(model.SlotClean, testAsset(t, "b.png", 2, 2)), ErrClosed, "evicted sessions are closed")
}
