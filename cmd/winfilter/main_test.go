package main

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gohugoio/winfilter"
)

func writePNG(t *testing.T, dir string, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{uint8(10 * x), uint8(10 * y), 100, 255})
		}
	}
	path := filepath.Join(dir, "photo.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())
	return path
}

func decodePNG(t *testing.T, path string) image.Image {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	return img
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	input := writePNG(t, dir, 6, 5)
	out := t.TempDir()

	var stdout, stderr bytes.Buffer
	err := run(context.Background(), []string{
		"-out", out,
		"-filter", "[median,3,3,1,1,true]",
		"-filter", "[box,3,3,1,1,false]",
		"-sequence", "[erode,3,3,1,1,true] [dilate,3,3,1,1,true]",
		"-negative",
		"-metrics",
		input,
	}, &stdout, &stderr)
	require.NoError(t, err, stderr.String())

	median := decodePNG(t, filepath.Join(out, "photo_filter-[median].png"))
	assert.Equal(t, image.Rect(0, 0, 6, 5), median.Bounds())

	box := decodePNG(t, filepath.Join(out, "photo_filter-[box].png"))
	assert.Equal(t, image.Rect(0, 0, 4, 3), box.Bounds())

	assert.FileExists(t, filepath.Join(out, "photo_sequence-[erode]+[dilate].png"))
	assert.FileExists(t, filepath.Join(out, "photo_neg_rgb.png"))
	assert.Contains(t, stderr.String(), "winfilter_filter_applied_total")
}

func TestRunInvalidFilter(t *testing.T) {
	dir := t.TempDir()
	input := writePNG(t, dir, 4, 4)

	var stdout, stderr bytes.Buffer
	err := run(context.Background(), []string{"-filter", "[median,3,3,1,1,maybe]", input}, &stdout, &stderr)
	require.Error(t, err)
	assert.ErrorIs(t, err, winfilter.ErrNotBoolean)
	assert.True(t, winfilter.IsInvalid(err))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "nothing is written when a filter is invalid")
}

func TestRunSkipsEmptyResult(t *testing.T) {
	dir := t.TempDir()
	input := writePNG(t, dir, 2, 2)

	var stdout, stderr bytes.Buffer
	err := run(context.Background(), []string{"-filter", "[max,3,3,1,1,false]", input}, &stdout, &stderr)
	require.NoError(t, err)
	assert.Contains(t, stderr.String(), "skipping empty result")
	assert.NoFileExists(t, filepath.Join(dir, "photo_filter-[dilate].png"))
}

func TestRunVersion(t *testing.T) {
	var stdout, stderr bytes.Buffer
	require.NoError(t, run(context.Background(), []string{"-version"}, &stdout, &stderr))
	assert.Equal(t, "winfilter "+Version+"\n", stdout.String())
}

func TestValidateFlags(t *testing.T) {
	dir := t.TempDir()
	input := writePNG(t, dir, 2, 2)

	valid := func() *CLIConfig {
		return &CLIConfig{Input: input, Filters: []string{"[box,1,1,0,0,true]"}, LogLevel: "info", LogFormat: "text"}
	}

	tests := []struct {
		name    string
		mutate  func(*CLIConfig)
		wantErr string
	}{
		{"valid", func(*CLIConfig) {}, ""},
		{"no input", func(c *CLIConfig) { c.Input = "" }, "missing input image"},
		{"input missing", func(c *CLIConfig) { c.Input = filepath.Join(dir, "nope.png") }, "input image not found"},
		{"nothing to do", func(c *CLIConfig) { c.Filters = nil }, "nothing to do"},
		{"empty sequence", func(c *CLIConfig) { c.Sequences = [][]string{{}} }, "empty filter sequence"},
		{"bad level", func(c *CLIConfig) { c.LogLevel = "trace" }, "invalid log level"},
		{"bad format", func(c *CLIConfig) { c.LogFormat = "xml" }, "invalid log format"},
		{"bad workers", func(c *CLIConfig) { c.Workers = -1 }, "invalid worker count"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := validateFlags(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParseFlagsEnv(t *testing.T) {
	t.Setenv("WINFILTER_WORKERS", "3")
	t.Setenv("WINFILTER_LOG_LEVEL", "debug")

	var stderr bytes.Buffer
	cfg, err := parseFlags([]string{"-sequence", "a.json  [box,3,3,1,1,true]", "in.png"}, &stderr)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "in.png", cfg.Input)
	assert.Equal(t, [][]string{{"a.json", "[box,3,3,1,1,true]"}}, cfg.Sequences)
}
