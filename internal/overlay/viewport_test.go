package overlay

import (
	"testing"

	"github.com/stretchr/testify/require"

	"vision-overlay/internal/domain/entity"
)

func TestNewTransform_Letterbox(t *testing.T) {
	tr, err := NewTransform(dims(200, 100), dims(100, 100))
	require.NoError(t, err)
	require.Equal(t, 0.5, tr.Scale)
	require.Equal(t, 0.0, tr.OffsetX)
	require.Equal(t, 25.0, tr.OffsetY)

	px := tr.Map(entity.NormalizedBox{X: 0, Y: 0, W: 1, H: 1})
	require.Equal(t, entity.PixelBox{X: 0, Y: 25, W: 100, H: 50}, px)
	require.Equal(t, px, tr.Content())
}

func TestNewTransform_Pillarbox(t *testing.T) {
	tr, err := NewTransform(dims(100, 200), dims(300, 200))
	require.NoError(t, err)
	require.Equal(t, 1.0, tr.Scale)
	require.Equal(t, 100.0, tr.OffsetX)
	require.Equal(t, 0.0, tr.OffsetY)
}

func TestMapBox_RoundTrip(t *testing.T) {
	source := dims(640, 480)
	boxes := Normalize([]any{
		map[string]any{"x": 64, "y": 48, "width": 128, "height": 96},
	}, source, NormalizeOptions{})
	require.Len(t, boxes, 1)

	px, err := MapBox(boxes[0], source, source)
	require.NoError(t, err)
	require.Equal(t, 64.0, px.X)
	require.Equal(t, 48.0, px.Y)
	require.Equal(t, 128.0, px.W)
	require.Equal(t, 96.0, px.H)
}

func TestNewTransform_NotReady(t *testing.T) {
	_, err := NewTransform(dims(640, 480), dims(0, 480))
	require.ErrorIs(t, err, ErrViewportNotReady)

	_, err = MapBox(entity.NormalizedBox{W: 1, H: 1}, dims(640, 480), dims(640, 0))
	require.ErrorIs(t, err, ErrViewportNotReady)

	_, err = NewTransform(dims(0, 0), dims(100, 100))
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrViewportNotReady)
}

func TestTransform_MapAllKeepsOrderAndLabels(t *testing.T) {
	tr, err := NewTransform(dims(100, 100), dims(200, 200))
	require.NoError(t, err)

	out := tr.MapAll([]entity.NormalizedBox{
		{X: 0.5, Y: 0.5, W: 0.1, H: 0.1, Label: "a"},
		{X: 0, Y: 0, W: 0.5, H: 0.5, Label: "b", Score: entity.Score(0.9)},
	})
	require.Len(t, out, 2)
	require.Equal(t, "a", out[0].Label)
	require.Equal(t, 100.0, out[0].X)
	require.Equal(t, "b", out[1].Label)
	require.Equal(t, 0.9, *out[1].Score)
}
