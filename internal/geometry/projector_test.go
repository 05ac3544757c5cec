package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const eps = 1e-9

func TestFit_WidthConstrained(t *testing.T) {
	// 4000x2000 image in a 800x600 panel: wider than the panel.
	natural := Size{Width: 4000, Height: 2000}
	client := Size{Width: 800, Height: 600}

	r, ok := Fit(natural, client)
	require.True(t, ok)

	assert.InDelta(t, 800, r.Width, eps)
	assert.InDelta(t, 400, r.Height, eps)
	assert.InDelta(t, 0, r.Left, eps)
	assert.InDelta(t, (client.Height-client.Width*natural.Height/natural.Width)/2, r.Top, eps)
}

func TestFit_HeightConstrained(t *testing.T) {
	natural := Size{Width: 1000, Height: 2000}
	client := Size{Width: 800, Height: 600}

	r, ok := Fit(natural, client)
	require.True(t, ok)

	assert.InDelta(t, 600, r.Height, eps)
	assert.InDelta(t, 300, r.Width, eps)
	assert.InDelta(t, 0, r.Top, eps)
	assert.InDelta(t, 250, r.Left, eps)
}

func TestFit_SameAspectFillsContainer(t *testing.T) {
	r, ok := Fit(Size{Width: 1600, Height: 1200}, Size{Width: 800, Height: 600})
	require.True(t, ok)
	assert.InDelta(t, 0, r.Left, eps)
	assert.InDelta(t, 0, r.Top, 1e-6)
	assert.InDelta(t, 800, r.Width, 1e-6)
	assert.InDelta(t, 600, r.Height, 1e-6)
}

func TestProject_Letterboxed(t *testing.T) {
	tests := []struct {
		name    string
		box     Box
		natural Size
		client  Size
		want    Rect
	}{
		{
			name:    "width constrained",
			box:     Box{X1: 1000, Y1: 500, X2: 2000, Y2: 1500},
			natural: Size{Width: 4000, Height: 2000},
			client:  Size{Width: 800, Height: 600},
			// scale 0.2, vertical offset 100
			want: Rect{Left: 200, Top: 200, Width: 200, Height: 200},
		},
		{
			name:    "height constrained",
			box:     Box{X1: 0, Y1: 0, X2: 500, Y2: 1000},
			natural: Size{Width: 1000, Height: 2000},
			client:  Size{Width: 800, Height: 600},
			// scale 0.3, horizontal offset 250
			want: Rect{Left: 250, Top: 0, Width: 150, Height: 300},
		},
		{
			name:    "upscaled small image",
			box:     Box{X1: 10, Y1: 10, X2: 20, Y2: 30},
			natural: Size{Width: 100, Height: 100},
			client:  Size{Width: 400, Height: 200},
			// scale 2, horizontal offset 100
			want: Rect{Left: 120, Top: 20, Width: 20, Height: 40},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Project(tt.box, tt.natural, tt.client)
			require.True(t, ok)
			assert.InDelta(t, tt.want.Left, got.Left, eps)
			assert.InDelta(t, tt.want.Top, got.Top, eps)
			assert.InDelta(t, tt.want.Width, got.Width, eps)
			assert.InDelta(t, tt.want.Height, got.Height, eps)
		})
	}
}

func TestProject_FullImageBoxMatchesFit(t *testing.T) {
	sizes := []struct {
		natural Size
		client  Size
	}{
		{Size{Width: 4032, Height: 3024}, Size{Width: 640, Height: 600}},
		{Size{Width: 3024, Height: 4032}, Size{Width: 640, Height: 600}},
		{Size{Width: 1920, Height: 1080}, Size{Width: 300, Height: 200}},
		{Size{Width: 512, Height: 512}, Size{Width: 512, Height: 512}},
	}

	for _, s := range sizes {
		box := Box{X2: s.natural.Width, Y2: s.natural.Height}
		got, ok := Project(box, s.natural, s.client)
		require.True(t, ok)

		fit, _ := Fit(s.natural, s.client)
		assert.InDelta(t, fit.Left, got.Left, eps)
		assert.InDelta(t, fit.Top, got.Top, eps)
		assert.InDelta(t, fit.Width, got.Width, eps)
		assert.InDelta(t, fit.Height, got.Height, eps)
	}
}

func TestProject_Idempotent(t *testing.T) {
	box := Box{X1: 12.5, Y1: 40, X2: 300, Y2: 280.25}
	natural := Size{Width: 1280, Height: 720}
	client := Size{Width: 633, Height: 600}

	first, ok1 := Project(box, natural, client)
	second, ok2 := Project(box, natural, client)

	assert.True(t, ok1)
	assert.True(t, ok2)
	assert.Equal(t, first, second)
}

func TestProject_NotDecoded(t *testing.T) {
	box := Box{X1: 1, Y1: 1, X2: 5, Y2: 5}

	tests := []struct {
		name    string
		natural Size
		client  Size
	}{
		{"zero natural size", Size{}, Size{Width: 800, Height: 600}},
		{"zero natural height", Size{Width: 100}, Size{Width: 800, Height: 600}},
		{"not laid out", Size{Width: 100, Height: 100}, Size{}},
		{"negative client", Size{Width: 100, Height: 100}, Size{Width: -1, Height: 600}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, ok := Project(box, tt.natural, tt.client)
			assert.False(t, ok)
			assert.Equal(t, Rect{}, r)
		})
	}
}
