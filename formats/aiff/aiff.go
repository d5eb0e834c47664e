// Package aiff implements an Audio Interchange File Format parser: FORM/AIFF
// container check, COMM chunk decode (channels, sample frames, bits per
// sample, an 80-bit IEEE 754 extended sample rate).
package aiff

import (
	"fmt"
	"math"
	"strings"

	"github.com/dockerish/mediaprobe"
	"github.com/dockerish/mediaprobe/internal/mediaio"
	"github.com/dockerish/mediaprobe/internal/saferead"
)

type Parser struct{}

func New() *Parser { return &Parser{} }

func (Parser) LikelyMatch(filename string) bool {
	lower := strings.ToLower(filename)
	return strings.HasSuffix(lower, ".aiff") || strings.HasSuffix(lower, ".aif")
}

// Parse implements mediaprobe.Parser.
func (Parser) Parse(src *mediaio.Constrained) (mediaprobe.Result, error) {
	header, err := saferead.Exact(src, 12)
	if err != nil {
		return nil, err
	}
	if string(header[0:4]) != "FORM" || (string(header[8:12]) != "AIFF" && string(header[8:12]) != "AIFC") {
		return nil, fmt.Errorf("aiff: missing FORM/AIFF header: %w", mediaprobe.ErrFormatMismatch)
	}

	var (
		channels      int
		sampleFrames  uint32
		bitsPerSample int
		sampleRate    float64
		sawCOMM       bool
	)

	for {
		tag, err := saferead.Exact(src, 4)
		if err != nil {
			break
		}
		size, err := saferead.BEU32(src)
		if err != nil {
			return nil, err
		}

		if string(tag) == "COMM" {
			body, err := saferead.Exact(src, int(size))
			if err != nil {
				return nil, err
			}
			if len(body) < 18 {
				return nil, fmt.Errorf("aiff: short COMM chunk: %w", mediaprobe.ErrFormatMismatch)
			}
			channels = int(be16(body[0:2]))
			sampleFrames = be32(body[2:6])
			bitsPerSample = int(be16(body[6:8]))
			sampleRate = decodeExtendedFloat(body[8:18])
			sawCOMM = true
			break
		}

		padded := int64(size) + int64(size%2)
		if err := saferead.Skip(src, padded); err != nil {
			break
		}
	}

	if !sawCOMM || channels == 0 || sampleRate <= 0 {
		return nil, fmt.Errorf("aiff: no usable COMM chunk: %w", mediaprobe.ErrFormatMismatch)
	}

	var duration float64
	if sampleRate > 0 {
		duration = float64(sampleFrames) / sampleRate
	}
	_ = bitsPerSample

	return mediaprobe.Audio{
		Format:               "aiff",
		SampleRateHz:         int(sampleRate),
		NumChannels:          channels,
		MediaDurationSeconds: duration,
		ContentType:          "audio/aiff",
	}, nil
}

func be16(b []byte) uint16 { return uint16(b[0])<<8 | uint16(b[1]) }
func be32(b []byte) uint32 {
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}

// decodeExtendedFloat decodes the 80-bit IEEE 754 extended precision float
// AIFF's COMM chunk uses for sampleRate: 1 sign bit + 15 exponent bits + a
// 64-bit mantissa with an explicit integer bit.
func decodeExtendedFloat(b []byte) float64 {
	if len(b) < 10 {
		return 0
	}
	sign := 1.0
	if b[0]&0x80 != 0 {
		sign = -1.0
	}
	exponent := int(b[0]&0x7f)<<8 | int(b[1])
	var mantissa uint64
	for i := 0; i < 8; i++ {
		mantissa = mantissa<<8 | uint64(b[2+i])
	}
	if exponent == 0 && mantissa == 0 {
		return 0
	}
	return sign * float64(mantissa) * math.Pow(2, float64(exponent-16383-63))
}
