// Package wav implements a RIFF/WAVE parser: RIFF/WAVE container check,
// fmt chunk decode for sample rate and channel count, and a data-chunk-size
// based duration estimate.
package wav

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
	return strings.HasSuffix(strings.ToLower(filename), ".wav")
}

// Parse implements mediaprobe.Parser.
func (Parser) Parse(src *mediaio.Constrained) (mediaprobe.Result, error) {
	header, err := saferead.Exact(src, 12)
	if err != nil {
		return nil, err
	}
	if string(header[0:4]) != "RIFF" || string(header[8:12]) != "WAVE" {
		return nil, fmt.Errorf("wav: missing RIFF/WAVE header: %w", mediaprobe.ErrFormatMismatch)
	}

	var (
		sampleRate    int
		channels      int
		bitsPerSample int
		dataSize      int64
		sawFmt        bool
	)

	for {
		tag, err := saferead.Exact(src, 4)
		if err != nil {
			break // ran out of chunks; use whatever was found
		}
		size, err := saferead.LEU32(src)
		if err != nil {
			return nil, err
		}

		switch string(tag) {
		case "fmt ":
			body, err := saferead.Exact(src, int(size))
			if err != nil {
				return nil, err
			}
			if len(body) < 16 {
				return nil, fmt.Errorf("wav: short fmt chunk: %w", mediaprobe.ErrFormatMismatch)
			}
			channels = int(le16(body[2:4]))
			sampleRate = int(le32(body[4:8]))
			bitsPerSample = int(le16(body[14:16]))
			sawFmt = true
		case "data":
			dataSize = int64(size)
			if err := saferead.Skip(src, int64(size)+int64(size%2)); err != nil {
				// The stream may legitimately end right after the data
				// chunk; a short skip here still leaves dataSize usable.
				break
			}
		default:
			if err := saferead.Skip(src, int64(size)+int64(size%2)); err != nil {
				break
			}
		}
	}

	if !sawFmt || sampleRate == 0 || channels == 0 {
		return nil, fmt.Errorf("wav: no usable fmt chunk: %w", mediaprobe.ErrFormatMismatch)
	}

	var duration float64
	if bitsPerSample > 0 && dataSize > 0 {
		bytesPerSecond := float64(sampleRate) * float64(channels) * float64(bitsPerSample) / 8
		if bytesPerSecond > 0 {
			duration = float64(dataSize) / bytesPerSecond
		}
	}

	return mediaprobe.Audio{
		Format:               "wav",
		SampleRateHz:         sampleRate,
		NumChannels:          channels,
		MediaDurationSeconds: duration,
		ContentType:          "audio/wav",
	}, nil
}

func le16(b []byte) uint16 { return uint16(b[0]) | uint16(b[1])<<8 }
func le32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}
