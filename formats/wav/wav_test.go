package wav

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/dockerish/mediaprobe"
	"github.com/dockerish/mediaprobe/internal/mediaio"
)

func le16(v uint16) []byte { return []byte{byte(v), byte(v >> 8)} }
func le32(v uint32) []byte {
	return []byte{byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24)}
}

func buildWAV(sampleRate uint32, channels, bitsPerSample uint16, dataBytes int) []byte {
	var fmtChunk []byte
	fmtChunk = append(fmtChunk, le16(1)...) // PCM
	fmtChunk = append(fmtChunk, le16(channels)...)
	fmtChunk = append(fmtChunk, le32(sampleRate)...)
	byteRate := sampleRate * uint32(channels) * uint32(bitsPerSample) / 8
	fmtChunk = append(fmtChunk, le32(byteRate)...)
	blockAlign := channels * (bitsPerSample / 8)
	fmtChunk = append(fmtChunk, le16(blockAlign)...)
	fmtChunk = append(fmtChunk, le16(bitsPerSample)...)

	data := make([]byte, dataBytes)

	var buf []byte
	buf = append(buf, "RIFF"...)
	buf = append(buf, le32(0)...) // overall size, unused by parser
	buf = append(buf, "WAVE"...)
	buf = append(buf, "fmt "...)
	buf = append(buf, le32(uint32(len(fmtChunk)))...)
	buf = append(buf, fmtChunk...)
	buf = append(buf, "data"...)
	buf = append(buf, le32(uint32(len(data)))...)
	buf = append(buf, data...)
	return buf
}

func writeTempWAV(t *testing.T, data []byte) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "sample.wav")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write temp wav: %v", err)
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

func TestParseStereo16BitPCM(t *testing.T) {
	sampleRate := uint32(44100)
	data := buildWAV(sampleRate, 2, 16, int(sampleRate)*2*2*2) // 2 seconds
	path := writeTempWAV(t, data)
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
	if audio.MediaDurationSeconds < 1.9 || audio.MediaDurationSeconds > 2.1 {
		t.Errorf("MediaDurationSeconds = %v, want ~2", audio.MediaDurationSeconds)
	}
}

func TestParseRejectsMissingRIFF(t *testing.T) {
	path := writeTempWAV(t, []byte("not a wav file"))
	view := openConstrained(t, path)

	_, err := New().Parse(view)
	if !errors.Is(err, mediaprobe.ErrFormatMismatch) {
		t.Errorf("expected format mismatch, got %v", err)
	}
}
