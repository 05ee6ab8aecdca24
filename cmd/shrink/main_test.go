package main

import (
	"bytes"
	"context"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shamspias/shrink/internal/report"
)

// executeCommand runs a fresh root command and captures its output.
func executeCommand(stdin string, args ...string) (string, string, error) {
	var out, errOut bytes.Buffer
	rootCmd := newRootCmd()
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	err := rootCmd.ExecuteContext(ctx)
	return out.String(), errOut.String(), err
}

func gradient(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			off := y*img.Stride + x*4
			img.Pix[off] = uint8(x * 255 / w)
			img.Pix[off+1] = uint8(y * 255 / h)
			img.Pix[off+2] = uint8((x + y) % 256)
			img.Pix[off+3] = 0xff
		}
	}
	return img
}

func writeJPEG(t *testing.T, path string, w, h int) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, jpeg.Encode(f, gradient(w, h), &jpeg.Options{Quality: 95}))
}

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, gradient(w, h)))
}

func decodeDims(t *testing.T, path string) (int, int) {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	require.NoError(t, err)
	return cfg.Width, cfg.Height
}

func TestCLINoArgs(t *testing.T) {
	_, _, err := executeCommand("")
	assert.Error(t, err)
}

func TestCLIVersion(t *testing.T) {
	out, _, err := executeCommand("", "version")
	require.NoError(t, err)
	assert.Equal(t, "shrink "+version+"\n", out)
}

func TestCLISingleFile(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "photo.jpg")
	writeJPEG(t, input, 400, 300)

	out, _, err := executeCommand("", "-w", "200", input)
	require.NoError(t, err)

	output := filepath.Join(dir, "photo_optimized.jpg")
	assert.Contains(t, out, output)
	w, h := decodeDims(t, output)
	assert.Equal(t, 200, w)
	assert.Equal(t, 150, h)
}

func TestCLITargetSizeAndFormat(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "photo.jpg")
	writeJPEG(t, input, 400, 300)
	output := filepath.Join(dir, "small.png")

	_, _, err := executeCommand("", "-t", "20", "-f", "png", "-a", "1:1", "-o", output, input)
	require.NoError(t, err)

	w, h := decodeDims(t, output)
	assert.Equal(t, w, h, "cropped to a square")
	assert.LessOrEqual(t, w, 300)
}

func TestCLIInvalidQuality(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "photo.jpg")
	writeJPEG(t, input, 40, 30)

	_, _, err := executeCommand("", "-q", "150", input)
	assert.Error(t, err)
}

func TestCLIBadInput(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "broken.jpg")
	require.NoError(t, os.WriteFile(input, []byte("garbage"), 0o644))

	_, _, err := executeCommand("", input)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode")
}

func TestCLIBatch(t *testing.T) {
	dir := t.TempDir()
	writeJPEG(t, filepath.Join(dir, "a.jpg"), 120, 80)
	writePNG(t, filepath.Join(dir, "b.png"), 60, 60)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("skip me"), 0o644))
	outDir := filepath.Join(t.TempDir(), "out")
	reportPath := filepath.Join(t.TempDir(), "report.yaml")

	out, _, err := executeCommand("", "-j", "2", "-o", outDir, "--report", reportPath, dir)
	require.NoError(t, err)
	assert.Contains(t, out, "2/2 succeeded")

	for _, name := range []string{"a_optimized.jpg", "b_optimized.jpg"} {
		_, err := os.Stat(filepath.Join(outDir, name))
		assert.NoError(t, err, name)
	}

	data, err := os.ReadFile(reportPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "run_id:")
	assert.Contains(t, string(data), "succeeded: 2")
}

func TestCLIBatchDefaultOutputAndFailure(t *testing.T) {
	dir := t.TempDir()
	writeJPEG(t, filepath.Join(dir, "good.jpg"), 80, 60)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.png"), []byte("garbage"), 0o644))

	out, _, err := executeCommand("", "--batch", dir)
	require.Error(t, err, "a failed file makes the batch fail")
	assert.Contains(t, err.Error(), "1 of 2 files failed")
	assert.Contains(t, out, "✗ bad.png")
	assert.Contains(t, out, "✓ good.jpg")

	_, err = os.Stat(filepath.Join(dir, "optimized", "good_optimized.jpg"))
	assert.NoError(t, err, "the good file is still processed")
}

func TestCLIBatchEmptyFolder(t *testing.T) {
	out, _, err := executeCommand("", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out, "No image files found")
}

func TestCLIBatchReportRecordsFailures(t *testing.T) {
	dir := t.TempDir()
	writeJPEG(t, filepath.Join(dir, "good.jpg"), 80, 60)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.bmp"), []byte("garbage"), 0o644))
	reportPath := filepath.Join(t.TempDir(), "report.yaml")

	_, _, err := executeCommand("", "--report", reportPath, dir)
	require.Error(t, err)

	rep, err := report.Read(afero.NewOsFs(), reportPath)
	require.NoError(t, err)
	require.Len(t, rep.Files, 2)
	assert.False(t, rep.Files[0].OK)
	assert.True(t, rep.Files[1].OK)
	assert.Equal(t, 1, rep.Summary.Failed)
}

func TestCLIInspect(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "photo.png")
	writePNG(t, input, 64, 48)

	out, _, err := executeCommand("", "inspect", input)
	require.NoError(t, err)
	assert.Contains(t, out, "Dimensions:  64x48")
	assert.Contains(t, out, "Mode:        RGB")
	assert.Contains(t, out, "Recommended: JPEG")
}

func TestCLIInteractive(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "photo.jpg")
	writeJPEG(t, input, 100, 100)

	stdin := strings.Join([]string{
		filepath.Join(dir, "missing.jpg"),
		input, "10", "webp",
		"quit",
	}, "\n") + "\n"
	out, _, err := executeCommand(stdin, "interactive")
	require.NoError(t, err)

	assert.Contains(t, out, "File not found")
	assert.Contains(t, out, "Original size:")
	assert.Contains(t, out, "✓ WEBP")
	_, err = os.Stat(filepath.Join(dir, "photo_optimized.webp"))
	assert.NoError(t, err)
}

func TestCLIInteractiveAcceptsGIF(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "anim.gif")
	f, err := os.Create(input)
	require.NoError(t, err)
	require.NoError(t, gif.Encode(f, gradient(40, 30), nil))
	require.NoError(t, f.Close())

	out, _, err := executeCommand(input+"\n\n\nquit\n", "interactive")
	require.NoError(t, err)
	assert.NotContains(t, out, "File not found")
	assert.Contains(t, out, "✓ JPEG")
	_, err = os.Stat(filepath.Join(dir, "anim_optimized.jpg"))
	assert.NoError(t, err)
}

func TestCLIInteractiveEOF(t *testing.T) {
	out, _, err := executeCommand("", "interactive")
	require.NoError(t, err)
	assert.Contains(t, out, "interactive mode")
}
