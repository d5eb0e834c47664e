package mp3

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/dockerish/mediaprobe"
	"github.com/dockerish/mediaprobe/internal/mediaio"
)

// buildFrameHeader builds an MPEG-1 Layer III frame header with the given
// bitrate index, sample rate index, and channel mode.
func buildFrameHeader(bitrateIndex, sampleRateIndex, channelMode byte) []byte {
	h := make([]byte, 4)
	h[0] = 0xFF
	h[1] = 0xE0 | (0x03 << 3) | (0x01 << 1) // sync cont'd, MPEG-1, Layer III
	h[2] = (bitrateIndex << 4) | (sampleRateIndex << 2)
	h[3] = channelMode << 6
	return h
}

func be32(v uint32) []byte {
	return []byte{byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)}
}

func buildCBRStream(frameCount int) []byte {
	header := buildFrameHeader(9, 0, 0) // 128kbps, 44100Hz, stereo
	var buf []byte
	for i := 0; i < frameCount; i++ {
		buf = append(buf, header...)
		buf = append(buf, make([]byte, 400)...) // filler frame payload
	}
	return buf
}

func buildVBRStreamWithXing(frames uint32) []byte {
	header := buildFrameHeader(9, 0, 0)
	var buf []byte
	buf = append(buf, header...)
	buf = append(buf, make([]byte, 32)...) // side info for stereo
	buf = append(buf, "Xing"...)
	buf = append(buf, be32(0x01)...) // flags: frames field present
	buf = append(buf, be32(frames)...)
	return buf
}

func writeTempMP3(t *testing.T, data []byte) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "sample.mp3")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write temp mp3: %v", err)
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

func TestParseCBRFrameHeader(t *testing.T) {
	data := buildCBRStream(50)
	path := writeTempMP3(t, data)
	view := openConstrained(t, path)

	result, err := New().Parse(view)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	audio := result.(mediaprobe.Audio)
	if audio.SampleRateHz != 44100 {
		t.Errorf("SampleRateHz = %d, want 44100", audio.SampleRateHz)
	}
	if audio.NumChannels != 2 {
		t.Errorf("NumChannels = %d, want 2", audio.NumChannels)
	}
	if audio.MediaDurationSeconds <= 0 {
		t.Error("expected a positive CBR duration estimate")
	}
}

func TestParseVBRWithXingHeader(t *testing.T) {
	data := buildVBRStreamWithXing(2000)
	path := writeTempMP3(t, data)
	view := openConstrained(t, path)

	result, err := New().Parse(view)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	audio := result.(mediaprobe.Audio)
	wantDuration := float64(2000) * 1152 / 44100
	if audio.MediaDurationSeconds < wantDuration-0.01 || audio.MediaDurationSeconds > wantDuration+0.01 {
		t.Errorf("MediaDurationSeconds = %v, want ~%v", audio.MediaDurationSeconds, wantDuration)
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	path := writeTempMP3(t, []byte("no frame sync anywhere in these bytes at all, repeated padding"))
	view := openConstrained(t, path)

	_, err := New().Parse(view)
	if !errors.Is(err, mediaprobe.ErrFormatMismatch) {
		t.Errorf("expected format mismatch, got %v", err)
	}
}
