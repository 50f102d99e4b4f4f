package overlay

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseBox_CornerArray(t *testing.T) {
	box, ok := ParseBox([]any{10.0, 20.0, 50.0, 80.0})
	require.True(t, ok)
	require.Equal(t, ParsedBox{X: 10, Y: 20, W: 40, H: 60}, box)
}

func TestParseBox_OriginSizeArray(t *testing.T) {
	// вторая точка левее первой: это ширина и высота
	box, ok := ParseBox([]any{100.0, 120.0, 40.0, 60.0})
	require.True(t, ok)
	require.Equal(t, ParsedBox{X: 100, Y: 120, W: 40, H: 60}, box)
}

func TestParseBox_SmallOriginSizeReadAsCorners(t *testing.T) {
	// [x,y,w,h] у левого верхнего угла неотличим от пары углов
	box, ok := ParseBox([]any{2.0, 3.0, 10.0, 10.0})
	require.True(t, ok)
	require.Equal(t, ParsedBox{X: 2, Y: 3, W: 8, H: 7}, box)
}

func TestParseBox_ArrayRejectsDegenerate(t *testing.T) {
	_, ok := ParseBox([]any{10.0, 10.0, 0.0, 5.0})
	require.False(t, ok)

	_, ok = ParseBox([]any{10.0, 10.0, 5.0})
	require.False(t, ok)

	_, ok = ParseBox([]any{10.0, "abc", 5.0, 5.0})
	require.False(t, ok)
}

func TestParseBox_CornerAliases(t *testing.T) {
	cases := []map[string]any{
		{"xmin": 10, "ymin": 20, "xmax": 50, "ymax": 80},
		{"x_min": 10, "y_min": 20, "x_max": 50, "y_max": 80},
		{"x1": 10, "y1": 20, "x2": 50, "y2": 80},
		{"left": 10, "top": 20, "right": 50, "bottom": 80},
		{"col": 10, "row": 20, "maxX": 50, "maxY": 80},
		{"minX": "10", "minY": json.Number("20"), "max_x": 50.0, "max_y": 80},
	}
	for _, raw := range cases {
		box, ok := ParseBox(raw)
		require.True(t, ok, "%v", raw)
		require.Equal(t, ParsedBox{X: 10, Y: 20, W: 40, H: 60}, box, "%v", raw)
	}
}

func TestParseBox_SizeAliases(t *testing.T) {
	cases := []map[string]any{
		{"x": 10, "y": 20, "width": 40, "height": 60},
		{"cx": 10, "cy": 20, "w": 40, "h": 60},
		{"originX": 10, "originY": 20, "span_x": 40, "span_y": 60},
		{"left": 10, "top": 20, "deltaX": 40, "deltaY": 60},
		{"center_x": 30, "center_y": 50, "width": 40, "height": 60},
		{"right": 50, "bottom": 80, "width": 40, "height": 60},
	}
	for _, raw := range cases {
		box, ok := ParseBox(raw)
		require.True(t, ok, "%v", raw)
		require.Equal(t, ParsedBox{X: 10, Y: 20, W: 40, H: 60}, box, "%v", raw)
	}
}

func TestParseBox_ObjectRejects(t *testing.T) {
	_, ok := ParseBox(map[string]any{"x": 1, "y": 2})
	require.False(t, ok)

	_, ok = ParseBox(map[string]any{"width": 10, "height": 10})
	require.False(t, ok, "no origin")

	_, ok = ParseBox(map[string]any{"xmin": 50, "ymin": 50, "xmax": 10, "ymax": 90})
	require.False(t, ok, "inverted corners")

	_, ok = ParseBox(map[string]any{"x": 1, "y": 2, "width": -3, "height": 4})
	require.False(t, ok)

	_, ok = ParseBox("10,10,20,20")
	require.False(t, ok)

	_, ok = ParseBox(nil)
	require.False(t, ok)
}

func TestParseBox_NestedGeometry(t *testing.T) {
	box, ok := ParseBox(map[string]any{"label": "dent", "bbox": []any{10.0, 20.0, 50.0, 80.0}})
	require.True(t, ok)
	require.Equal(t, ParsedBox{X: 10, Y: 20, W: 40, H: 60}, box)

	box, ok = ParseBox(map[string]any{
		"box":        map[string]any{"x": 0.1, "y": 0.2, "w": 0.3, "h": 0.4},
		"normalized": true,
	})
	require.True(t, ok)
	require.True(t, box.Normalized)
}

func TestParseBox_NormalizedFlag(t *testing.T) {
	box, ok := ParseBox(map[string]any{"x": 10, "y": 10, "width": 20, "height": 20})
	require.True(t, ok)
	require.False(t, box.Normalized)

	box, ok = ParseBox(map[string]any{"x": 0.1, "y": 0.1, "width": 0.2, "height": 0.2})
	require.True(t, ok)
	require.True(t, box.Normalized, "inferred from values <= 1")

	for _, key := range []string{"normalized", "isNormalized", "relative"} {
		box, ok = ParseBox(map[string]any{"x": 2, "y": 2, "width": 3, "height": 3, key: "yes"})
		require.True(t, ok)
		require.True(t, box.Normalized, key)
	}

	box, ok = ParseBox(map[string]any{"x": 2, "y": 2, "width": 3, "height": 3, "normalized": "false"})
	require.True(t, ok)
	require.False(t, box.Normalized)
}
