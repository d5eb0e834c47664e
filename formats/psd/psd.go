// Package psd implements an Adobe Photoshop document parser: "8BPS" magic
// and fixed-layout header decode (channels, dimensions, depth, color mode).
package psd

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
	return strings.HasSuffix(strings.ToLower(filename), ".psd")
}

// colorModeFor maps PSD's ColorMode field (§ file header) to this module's
// ColorMode enum.
func colorModeFor(psdMode uint16, channels uint16) (mediaprobe.ColorMode, bool) {
	switch psdMode {
	case 1: // Grayscale
		return mediaprobe.ColorGrayscale, true
	case 2: // Indexed
		return mediaprobe.ColorIndexed, true
	case 3: // RGB
		if channels >= 4 {
			return mediaprobe.ColorRGBA, true
		}
		return mediaprobe.ColorRGB, true
	case 4: // CMYK
		return mediaprobe.ColorCMYK, true
	default:
		return "", false
	}
}

// Parse implements mediaprobe.Parser.
func (Parser) Parse(src *mediaio.Constrained) (mediaprobe.Result, error) {
	header, err := saferead.Exact(src, 26)
	if err != nil {
		return nil, err
	}
	if string(header[0:4]) != "8BPS" {
		return nil, fmt.Errorf("psd: missing 8BPS magic: %w", mediaprobe.ErrFormatMismatch)
	}
	version := be16(header[4:6])
	if version != 1 && version != 2 {
		return nil, fmt.Errorf("psd: unsupported version %d: %w", version, mediaprobe.ErrFormatMismatch)
	}

	channels := be16(header[12:14])
	height := be32(header[14:18])
	width := be32(header[18:22])
	psdColorMode := be16(header[24:26])

	if width == 0 || height == 0 {
		return nil, fmt.Errorf("psd: zero width/height: %w", mediaprobe.ErrFormatMismatch)
	}
	colorMode, ok := colorModeFor(psdColorMode, channels)
	if !ok {
		return nil, fmt.Errorf("psd: unrecognized color mode %d: %w", psdColorMode, mediaprobe.ErrFormatMismatch)
	}

	return mediaprobe.Image{
		Format:      "psd",
		WidthPx:     int(width),
		HeightPx:    int(height),
		ColorMode:   colorMode,
		HasAlpha:    colorMode == mediaprobe.ColorRGBA,
		ContentType: "image/vnd.adobe.photoshop",
	}, nil
}

func be16(b []byte) uint16 { return uint16(b[0])<<8 | uint16(b[1]) }
func be32(b []byte) uint32 {
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}
