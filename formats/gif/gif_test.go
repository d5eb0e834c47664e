package gif

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/dockerish/mediaprobe"
	"github.com/dockerish/mediaprobe/internal/mediaio"
)

func le16(v uint16) []byte { return []byte{byte(v), byte(v >> 8)} }

func buildGIF(width, height uint16, frameCount int) []byte {
	var buf []byte
	buf = append(buf, "GIF89a"...)
	buf = append(buf, le16(width)...)
	buf = append(buf, le16(height)...)
	buf = append(buf, 0x00) // no global color table
	buf = append(buf, 0, 0) // background color index, pixel aspect ratio

	for i := 0; i < frameCount; i++ {
		buf = append(buf, 0x2C)             // image descriptor
		buf = append(buf, 0, 0, 0, 0)        // left, top
		buf = append(buf, le16(width)...)
		buf = append(buf, le16(height)...)
		buf = append(buf, 0x00) // packed: no local color table
		buf = append(buf, 2)    // LZW min code size
		buf = append(buf, 1, 0x00, 0x00) // one-byte sub-block, then terminator
	}
	buf = append(buf, 0x3B) // trailer
	return buf
}

func writeTempGIF(t *testing.T, data []byte) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "sample.gif")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write temp gif: %v", err)
	}
	return path
}

func openConstrained(t *testing.T, path string) *mediaio.Constrained {
	t.Helper()
	src, err := mediaio.OpenLocal(path)
	if err != nil {
		t.Fatalf("open local: %v", err)
	}
	t.Cleanup(func() { _ = src.Close() })
	return mediaio.NewConstrained(src)
}

func TestParseSingleFrame(t *testing.T) {
	data := buildGIF(32, 24, 1)
	path := writeTempGIF(t, data)
	view := openConstrained(t, path)

	result, err := New().Parse(view)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	img := result.(mediaprobe.Image)
	if img.WidthPx != 32 || img.HeightPx != 24 {
		t.Errorf("dimensions = %dx%d, want 32x24", img.WidthPx, img.HeightPx)
	}
	if img.HasMultipleFrames == nil || *img.HasMultipleFrames {
		t.Error("expected HasMultipleFrames = false for a single frame")
	}
	if img.NumAnimationOrVideoFrames == nil || *img.NumAnimationOrVideoFrames != 1 {
		t.Errorf("NumAnimationOrVideoFrames = %v, want 1", img.NumAnimationOrVideoFrames)
	}
}

func TestParseAnimated(t *testing.T) {
	data := buildGIF(10, 10, 3)
	path := writeTempGIF(t, data)
	view := openConstrained(t, path)

	result, err := New().Parse(view)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	img := result.(mediaprobe.Image)
	if img.HasMultipleFrames == nil || !*img.HasMultipleFrames {
		t.Error("expected HasMultipleFrames = true for 3 frames")
	}
	if img.NumAnimationOrVideoFrames == nil || *img.NumAnimationOrVideoFrames != 3 {
		t.Errorf("NumAnimationOrVideoFrames = %v, want 3", img.NumAnimationOrVideoFrames)
	}
}

func TestParseRejectsBadSignature(t *testing.T) {
	path := writeTempGIF(t, []byte("definitely not a gif"))
	view := openConstrained(t, path)

	_, err := New().Parse(view)
	if !errors.Is(err, mediaprobe.ErrFormatMismatch) {
		t.Errorf("expected format mismatch, got %v", err)
	}
}
