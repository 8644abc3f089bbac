package diagram_test

import (
	"fmt"
	"math"
	"testing"

	"github.com/aretw0/turingviz/pkg/diagram"
	"github.com/aretw0/turingviz/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pt(x, y float64) domain.Point { return domain.Point{X: x, Y: y} }

func TestPath(t *testing.T) {
	r := diagram.NodeRadius

	tests := []struct {
		name  string
		shape diagram.Shape
		src   domain.Point
		dst   domain.Point
		want  string
		ok    bool
	}{
		{"Loop", diagram.ShapeLoop, pt(100, 100), pt(100, 100), "M 100,80 a 19,27 45 1,1 19.32,14.82", true},
		{"Straight", diagram.ShapeStraight, pt(0, 0), pt(100, 0), "M 0 0 L 80 0", true},
		{"Straight Vertical", diagram.ShapeStraight, pt(10, 10), pt(10, 110), "M 10 10 L 10 90", true},
		{"Straight Coincident", diagram.ShapeStraight, pt(5, 5), pt(5, 5), "", false},
		{"Arc Left To Right", diagram.ShapeArc, pt(0, 0), pt(100, 0), "M 14.14 -14.14 A 120 120 0 0,1 85.86 -14.14", true},
		{"Arc Right To Left", diagram.ShapeArc, pt(100, 0), pt(0, 0), "M 14.14 14.14 A 120 120 0 0,0 85.86 14.14", true},
		{"Arc Coincident", diagram.ShapeArc, pt(1, 1), pt(1, 1), "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := diagram.Path(tt.shape, tt.src, tt.dst, r)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLabelTransform(t *testing.T) {
	r := diagram.NodeRadius

	got, ok := diagram.LabelTransform(diagram.ShapeStraight, pt(0, 0), pt(100, 0), r)
	assert.True(t, ok)
	assert.Equal(t, "translate(50,0) rotate(0)", got)

	got, _ = diagram.LabelTransform(diagram.ShapeStraight, pt(0, 0), pt(0, 100), r)
	assert.Equal(t, "translate(0,50) rotate(90)", got)

	got, _ = diagram.LabelTransform(diagram.ShapeLoop, pt(100, 100), pt(100, 100), r)
	assert.Equal(t, "translate(110,50)", got)

	_, ok = diagram.LabelTransform(diagram.ShapeArc, pt(3, 3), pt(3, 3), r)
	assert.False(t, ok)
}

func TestLabelTransform_ArcDirectionsDoNotOverlap(t *testing.T) {
	r := diagram.NodeRadius
	forward, _ := diagram.LabelTransform(diagram.ShapeArc, pt(0, 0), pt(100, 0), r)
	backward, _ := diagram.LabelTransform(diagram.ShapeArc, pt(100, 0), pt(0, 0), r)

	assert.NotEqual(t, forward, backward)
	assert.Contains(t, forward, "rotate(0)")
	assert.Contains(t, backward, "rotate(180)")
}

func TestLabelTransform_ArcLabelAtApex(t *testing.T) {
	r := diagram.NodeRadius
	parse := func(t *testing.T, transform string) (x, y float64) {
		t.Helper()
		var deg float64
		_, err := fmt.Sscanf(transform, "translate(%f,%f) rotate(%f)", &x, &y, &deg)
		require.NoError(t, err, transform)
		return x, y
	}
	// Anchors sit 45 degrees off the center line, so the chord lies at
	// r*sin(45) from it and the apex lies beyond.
	anchorY := r * math.Sqrt2 / 2

	t.Run("forward bows up", func(t *testing.T) {
		got, ok := diagram.LabelTransform(diagram.ShapeArc, pt(0, 0), pt(100, 0), r)
		require.True(t, ok)
		x, y := parse(t, got)
		assert.InDelta(t, 50, x, 0.01)
		assert.Less(t, y, -anchorY)
	})

	t.Run("backward bows down", func(t *testing.T) {
		got, ok := diagram.LabelTransform(diagram.ShapeArc, pt(100, 0), pt(0, 0), r)
		require.True(t, ok)
		x, y := parse(t, got)
		assert.InDelta(t, 50, x, 0.01)
		assert.Greater(t, y, anchorY)
	})
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "0", diagram.FormatNumber(-0.001))
	assert.Equal(t, "1.5", diagram.FormatNumber(1.499999))
	assert.Equal(t, "-3.14", diagram.FormatNumber(-3.14159))
	assert.Equal(t, "42", diagram.FormatNumber(42))
}
