// Package mp3 implements an MPEG audio (MP3) parser: ID3v2 tag skip, first
// frame header decode for sample rate/bitrate, and duration via either the
// Xing/Info VBR header (frame count * samples-per-frame / sample rate) or
// a CBR estimate (stream size / bitrate) when no VBR header is present.
package mp3

import (
	"fmt"
	"strings"

	"github.com/dockerish/mediaprobe"
	"github.com/dockerish/mediaprobe/internal/mediaio"
	"github.com/dockerish/mediaprobe/internal/saferead"
)

type Parser struct{}

func New() *Parser { return &Parser{} }

func (Parser) LikelyMatch(filename string) bool {
	return strings.HasSuffix(strings.ToLower(filename), ".mp3")
}

var bitrateTableV1L3 = [16]int{0, 32, 40, 48, 56, 64, 80, 96, 112, 128, 160, 192, 224, 256, 320, 0}
var sampleRateTableV1 = [4]int{44100, 48000, 32000, 0}

// Parse implements mediaprobe.Parser.
func (Parser) Parse(src *mediaio.Constrained) (mediaprobe.Result, error) {
	if err := skipID3v2(src); err != nil {
		return nil, err
	}

	frameOffset := src.Pos()
	header, err := findFrameHeader(src)
	if err != nil {
		return nil, err
	}

	sampleRate, bitrateKbps, samplesPerFrame, channels := decodeFrameHeader(header)
	if sampleRate == 0 || bitrateKbps == 0 {
		return nil, fmt.Errorf("mp3: unsupported/invalid frame header: %w", mediaprobe.ErrFormatMismatch)
	}

	sideInfoBytes := int64(32)
	if channels == 1 {
		sideInfoBytes = 17
	}
	_ = saferead.Skip(src, sideInfoBytes) // tolerate a short stream; Xing probe just won't match
	vbrFrames, vbrBytes := readXingHeader(src)

	size, sizeErr := src.Size()

	var duration float64
	switch {
	case vbrFrames > 0:
		duration = float64(vbrFrames) * float64(samplesPerFrame) / float64(sampleRate)
	case sizeErr == nil:
		streamBytes := size - frameOffset
		if vbrBytes > 0 {
			streamBytes = vbrBytes
		}
		bitsPerSecond := bitrateKbps * 1000
		if bitsPerSecond > 0 {
			duration = float64(streamBytes*8) / float64(bitsPerSecond)
		}
	}

	return mediaprobe.Audio{
		Format:               "mp3",
		SampleRateHz:         sampleRate,
		NumChannels:          channels,
		MediaDurationSeconds: duration,
		ContentType:          "audio/mpeg",
	}, nil
}

// skipID3v2 consumes a leading ID3v2 tag, if present, leaving src positioned
// right after it (or unchanged if there is none).
func skipID3v2(src *mediaio.Constrained) error {
	probe, err := saferead.Exact(src, 10)
	if err != nil {
		return err
	}
	if string(probe[0:3]) != "ID3" {
		return src.Seek(0)
	}
	size := synchsafe(probe[6:10])
	return src.Seek(10 + size)
}

func synchsafe(b []byte) int64 {
	return int64(b[0]&0x7f)<<21 | int64(b[1]&0x7f)<<14 | int64(b[2]&0x7f)<<7 | int64(b[3]&0x7f)
}

// findFrameHeader scans forward (tolerating stray bytes before sync, as
// real-world files sometimes carry padding) for a 4-byte MPEG frame header
// starting with the 11-bit frame sync 0xFFE.
func findFrameHeader(src *mediaio.Constrained) ([]byte, error) {
	const maxScan = 4096
	var window [4]byte
	for scanned := 0; scanned < maxScan; scanned++ {
		b, err := saferead.U8(src)
		if err != nil {
			return nil, fmt.Errorf("mp3: no frame sync found: %w", mediaprobe.ErrFormatMismatch)
		}
		window[0], window[1], window[2], window[3] = window[1], window[2], window[3], b
		if scanned < 3 {
			continue
		}
		if window[0] == 0xFF && window[1]&0xE0 == 0xE0 {
			return window[:], nil
		}
	}
	return nil, fmt.Errorf("mp3: no frame sync found within scan window: %w", mediaprobe.ErrFormatMismatch)
}

// decodeFrameHeader decodes MPEG-1 Layer III fields only; other
// version/layer combinations report a zero sample rate so the caller
// treats them as unrecognized rather than guessing.
func decodeFrameHeader(h []byte) (sampleRateHz, bitrateKbps, samplesPerFrame, channels int) {
	versionBits := (h[1] >> 3) & 0x03
	layerBits := (h[1] >> 1) & 0x03
	if versionBits != 0x03 || layerBits != 0x01 { // MPEG-1, Layer III
		return 0, 0, 0, 0
	}
	bitrateIndex := (h[2] >> 4) & 0x0F
	sampleRateIndex := (h[2] >> 2) & 0x03
	channelMode := (h[3] >> 6) & 0x03

	bitrateKbps = bitrateTableV1L3[bitrateIndex]
	sampleRateHz = sampleRateTableV1[sampleRateIndex]
	samplesPerFrame = 1152
	channels = 2
	if channelMode == 0x03 {
		channels = 1
	}
	return
}

// readXingHeader looks for a Xing/Info VBR header immediately following the
// first frame's side information, returning (0, 0) if absent. src is left
// positioned arbitrarily afterward; callers only use the return values.
func readXingHeader(src *mediaio.Constrained) (frames, bytesTotal int64) {
	tag, err := saferead.Exact(src, 4)
	if err != nil {
		return 0, 0
	}
	if string(tag) != "Xing" && string(tag) != "Info" {
		return 0, 0
	}
	flags, err := saferead.BEU32(src)
	if err != nil {
		return 0, 0
	}
	if flags&0x01 != 0 {
		if f, err := saferead.BEU32(src); err == nil {
			frames = int64(f)
		}
	}
	if flags&0x02 != 0 {
		if b, err := saferead.BEU32(src); err == nil {
			bytesTotal = int64(b)
		}
	}
	return frames, bytesTotal
}
