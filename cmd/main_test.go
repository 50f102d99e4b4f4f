package main

import (
	"bytes"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"vision-overlay/config"
)

func TestRenderOptions(t *testing.T) {
	cfg := config.New()
	cfg.Detector.MinScore = 0.5
	cfg.Overlay.FillAlpha = 0.3
	cfg.Overlay.FrameInterval = time.Millisecond

	opts := renderOptions(cfg)
	require.Equal(t, 0.5, opts.MinScore)
	require.Equal(t, 0.3, opts.Style.FillAlpha)
	require.Equal(t, cfg.Overlay.DisplayMaxSide, opts.DisplayMaxSide)
	require.Equal(t, time.Millisecond, opts.FrameInterval)
}

func TestRenderCommand(t *testing.T) {
	dir := t.TempDir()

	img := image.NewRGBA(image.Rect(0, 0, 120, 80))
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	imagePath := filepath.Join(dir, "photo.png")
	require.NoError(t, os.WriteFile(imagePath, buf.Bytes(), 0o644))

	detectionsPath := filepath.Join(dir, "detections.json")
	require.NoError(t, os.WriteFile(detectionsPath, []byte(`{"boxes":[{"x":10,"y":10,"w":50,"h":40,"label":"dent"}]}`), 0o644))

	outPath := filepath.Join(dir, "out.jpg")
	root := newRootCommand()
	var stdout bytes.Buffer
	root.SetOut(&stdout)
	root.SetArgs([]string{"render", "-c", filepath.Join(dir, "absent.yaml"),
		"-i", imagePath, "-d", detectionsPath, "-o", outPath})

	require.NoError(t, root.Execute())
	require.Contains(t, stdout.String(), "Найдено областей: 1. dent")

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	require.NotEmpty(t, data)
}

func TestRenderCommand_LabelMode(t *testing.T) {
	dir := t.TempDir()

	img := image.NewRGBA(image.Rect(0, 0, 120, 80))
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	imagePath := filepath.Join(dir, "photo.png")
	require.NoError(t, os.WriteFile(imagePath, buf.Bytes(), 0o644))

	detectionsPath := filepath.Join(dir, "detections.json")
	require.NoError(t, os.WriteFile(detectionsPath, []byte(`[[10,10,60,50]]`), 0o644))

	root := newRootCommand()
	var stdout bytes.Buffer
	root.SetOut(&stdout)
	root.SetArgs([]string{"render", "-c", filepath.Join(dir, "absent.yaml"),
		"-i", imagePath, "-d", detectionsPath, "-l", "detection", "-o", filepath.Join(dir, "out.jpg")})

	require.NoError(t, root.Execute())
	require.Contains(t, stdout.String(), "Найдено областей: 1. Detection")
}
