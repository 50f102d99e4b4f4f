package entity

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizedBoxCenter(t *testing.T) {
	b := NormalizedBox{X: 0.1, Y: 0.2, W: 0.4, H: 0.6}
	x, y := b.Center()
	require.InDelta(t, 0.3, x, 1e-9)
	require.InDelta(t, 0.5, y, 1e-9)
}

func TestNormalizedBoxScoreOr(t *testing.T) {
	require.Equal(t, -1.0, NormalizedBox{}.ScoreOr(-1))
	require.Equal(t, 0.87, NormalizedBox{Score: Score(0.87)}.ScoreOr(-1))
}

func TestDimensionsValid(t *testing.T) {
	require.True(t, Dimensions{Width: 640, Height: 480}.Valid())
	require.False(t, Dimensions{Width: 0, Height: 480}.Valid())
	require.InDelta(t, 4.0/3.0, Dimensions{Width: 640, Height: 480}.Aspect(), 1e-9)
	require.Zero(t, Dimensions{Width: -1, Height: 1}.Aspect())
}
