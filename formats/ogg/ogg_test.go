package ogg

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/dockerish/mediaprobe"
	"github.com/dockerish/mediaprobe/internal/mediaio"
)

// buildPage constructs a single well-formed Ogg page with the given
// granule position and payload, computing its CRC-32 correctly, so tests
// can assemble minimal-but-valid streams without fixture files.
func buildPage(granule uint64, payload []byte, headerType byte) []byte {
	segments := []byte{}
	remaining := len(payload)
	for remaining > 255 {
		segments = append(segments, 255)
		remaining -= 255
	}
	segments = append(segments, byte(remaining))
	if len(payload) == 0 {
		segments = []byte{0}
	}

	header := make([]byte, 27)
	copy(header[0:4], "OggS")
	header[4] = 0 // stream_structure_version
	header[5] = headerType
	for i := 0; i < 8; i++ {
		header[6+i] = byte(granule >> (8 * i))
	}
	// serial number, sequence number left zero
	header[26] = byte(len(segments))

	page := append(header, segments...)
	page = append(page, payload...)

	crc := computeCRC(page)
	page[22] = byte(crc)
	page[23] = byte(crc >> 8)
	page[24] = byte(crc >> 16)
	page[25] = byte(crc >> 24)
	return page
}

func buildIdentHeader() []byte {
	payload := make([]byte, 30)
	payload[0] = 1 // packet_type
	copy(payload[1:7], "vorbis")
	payload[7] = 0 // vorbis_version LE u32, low byte
	payload[11] = 2 // channels
	// sample rate 44100 little-endian at offset 12
	sr := uint32(44100)
	payload[12] = byte(sr)
	payload[13] = byte(sr >> 8)
	payload[14] = byte(sr >> 16)
	payload[15] = byte(sr >> 24)
	return payload
}

func writeTempOgg(t *testing.T, pages ...[]byte) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "sample.ogg")
	var buf []byte
	for _, p := range pages {
		buf = append(buf, p...)
	}
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		t.Fatalf("write temp ogg: %v", err)
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

func TestParserLikelyMatch(t *testing.T) {
	p := New()
	cases := map[string]bool{
		"song.ogg":  true,
		"song.OGG":  true,
		"voice.oga": true,
		"clip.mp3":  false,
		"noext":     false,
	}
	for name, want := range cases {
		if got := p.LikelyMatch(name); got != want {
			t.Errorf("LikelyMatch(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestParseIdentifiesVorbisAndDuration(t *testing.T) {
	ident := buildPage(0, buildIdentHeader(), 0x02)
	last := buildPage(44100*3, []byte("payload-bytes"), 0x04)

	path := writeTempOgg(t, ident, last)
	view := openConstrained(t, path)

	p := New()
	result, err := p.Parse(view)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}

	audio, ok := result.(mediaprobe.Audio)
	if !ok {
		t.Fatalf("result type = %T, want mediaprobe.Audio", result)
	}
	if audio.Format != "ogg" {
		t.Errorf("Format = %q, want ogg", audio.Format)
	}
	if audio.SampleRateHz != 44100 {
		t.Errorf("SampleRateHz = %d, want 44100", audio.SampleRateHz)
	}
	if audio.NumChannels != 2 {
		t.Errorf("NumChannels = %d, want 2", audio.NumChannels)
	}
	if audio.MediaDurationSeconds != 3 {
		t.Errorf("MediaDurationSeconds = %v, want 3", audio.MediaDurationSeconds)
	}
}

func TestParseRejectsMissingMagic(t *testing.T) {
	path := writeTempOgg(t, []byte("not an ogg file at all"))
	view := openConstrained(t, path)

	_, err := New().Parse(view)
	if err == nil {
		t.Fatal("expected error for non-ogg input")
	}
	if !errors.Is(err, mediaprobe.ErrFormatMismatch) {
		t.Errorf("expected format mismatch, got %v", err)
	}
}

func TestParseRejectsNonVorbisCodec(t *testing.T) {
	payload := make([]byte, 30)
	payload[0] = 1
	copy(payload[1:7], "theora")
	page := buildPage(0, payload, 0x02)

	path := writeTempOgg(t, page)
	view := openConstrained(t, path)

	_, err := New().Parse(view)
	if err == nil {
		t.Fatal("expected error for non-vorbis codec")
	}
	if !errors.Is(err, mediaprobe.ErrFormatMismatch) {
		t.Errorf("expected format mismatch, got %v", err)
	}
}

func TestParseToleratesCorruptTail(t *testing.T) {
	ident := buildPage(0, buildIdentHeader(), 0x02)
	corruptTail := buildPage(44100*5, []byte("corrupted"), 0x04)
	corruptTail[len(corruptTail)-1] ^= 0xff // flip a payload byte after CRC is set

	path := writeTempOgg(t, ident, corruptTail)
	view := openConstrained(t, path)

	result, err := New().Parse(view)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	audio := result.(mediaprobe.Audio)
	if audio.MediaDurationSeconds != 0 {
		t.Errorf("MediaDurationSeconds = %v, want 0 when tail fails CRC", audio.MediaDurationSeconds)
	}
}
