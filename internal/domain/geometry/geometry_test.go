package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRect_Center(t *testing.T) {
	r := Rect{X: 10, Y: 20, Width: 100, Height: 40}
	assert.Equal(t, Point{X: 60, Y: 40}, r.Center())
}

func TestRect_Empty(t *testing.T) {
	assert.True(t, Rect{Width: 0, Height: 10}.Empty())
	assert.True(t, Rect{Width: 10, Height: -1}.Empty())
	assert.False(t, Rect{Width: 1, Height: 1}.Empty())
}

func TestViewport_Contains(t *testing.T) {
	vp := Viewport{Width: 800, Height: 600}

	tests := []struct {
		name string
		rect Rect
		want bool
	}{
		{"inside", Rect{X: 10, Y: 10, Width: 100, Height: 100}, true},
		{"touching edges", Rect{X: 0, Y: 0, Width: 800, Height: 600}, true},
		{"above", Rect{X: 10, Y: -5, Width: 10, Height: 10}, false},
		{"left", Rect{X: -1, Y: 10, Width: 10, Height: 10}, false},
		{"below", Rect{X: 10, Y: 595, Width: 10, Height: 10}, false},
		{"right", Rect{X: 795, Y: 10, Width: 10, Height: 10}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, vp.Contains(tt.rect))
		})
	}
}

func TestOffset(t *testing.T) {
	assert.Equal(t, Point{X: 15, Y: 5}, Offset(Point{X: 10, Y: 10}, 5, -5))
}

func TestInterpolate_EvenSteps(t *testing.T) {
	path := Interpolate(Point{X: 0, Y: 0}, Point{X: 100, Y: 0}, 4)

	require.Len(t, path, 4)
	assert.Equal(t, []float64{25, 50, 75, 100}, []float64{path[0].X, path[1].X, path[2].X, path[3].X})
	for _, p := range path {
		assert.Zero(t, p.Y)
	}
}

func TestInterpolate_EndsOnTarget(t *testing.T) {
	to := Point{X: 33.3, Y: 66.7}
	path := Interpolate(Point{X: 1, Y: 2}, to, 7)

	require.Len(t, path, 7)
	assert.Equal(t, to, path[len(path)-1])
}

func TestInterpolate_NoSteps(t *testing.T) {
	path := Interpolate(Point{}, Point{X: 5, Y: 5}, 0)
	assert.Equal(t, []Point{{X: 5, Y: 5}}, path)
}

func TestPoint_Dist(t *testing.T) {
	assert.InDelta(t, 5.0, Point{X: 0, Y: 0}.Dist(Point{X: 3, Y: 4}), 1e-9)
}
