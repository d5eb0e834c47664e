// Package flac implements a FLAC parser: "fLaC" magic check and STREAMINFO
// metadata block decode (sample rate, channels, bits per sample, total
// samples packed across a 20/3/5/36-bit field layout).
package flac

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
	return strings.HasSuffix(strings.ToLower(filename), ".flac")
}

// Parse implements mediaprobe.Parser.
func (Parser) Parse(src *mediaio.Constrained) (mediaprobe.Result, error) {
	magic, err := saferead.Exact(src, 4)
	if err != nil {
		return nil, err
	}
	if string(magic) != "fLaC" {
		return nil, fmt.Errorf("flac: missing fLaC magic: %w", mediaprobe.ErrFormatMismatch)
	}

	blockHeader, err := saferead.Exact(src, 4)
	if err != nil {
		return nil, err
	}
	blockType := blockHeader[0] & 0x7f
	blockLen := int(blockHeader[1])<<16 | int(blockHeader[2])<<8 | int(blockHeader[3])
	if blockType != 0 {
		return nil, fmt.Errorf("flac: first metadata block is type %d, want STREAMINFO: %w", blockType, mediaprobe.ErrFormatMismatch)
	}

	body, err := saferead.Exact(src, blockLen)
	if err != nil {
		return nil, err
	}
	if len(body) < 18 {
		return nil, fmt.Errorf("flac: short STREAMINFO block: %w", mediaprobe.ErrFormatMismatch)
	}

	// Bytes 10..17 pack a 64-bit field: 20 bits sample rate, 3 bits
	// channels-1, 5 bits bits-per-sample-1, 36 bits total samples.
	var packed uint64
	for i := 0; i < 8; i++ {
		packed = packed<<8 | uint64(body[10+i])
	}
	sampleRate := int(packed >> 44)
	channels := int((packed>>41)&0x07) + 1
	totalSamples := packed & 0xFFFFFFFFF // low 36 bits

	if sampleRate == 0 {
		return nil, fmt.Errorf("flac: zero sample rate: %w", mediaprobe.ErrFormatMismatch)
	}

	var duration float64
	if totalSamples > 0 {
		duration = float64(totalSamples) / float64(sampleRate)
	}

	return mediaprobe.Audio{
		Format:               "flac",
		SampleRateHz:         sampleRate,
		NumChannels:          channels,
		MediaDurationSeconds: duration,
		ContentType:          "audio/flac",
	}, nil
}
