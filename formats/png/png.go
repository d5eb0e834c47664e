// Package png implements the PNG reference parser: signature check, IHDR
// chunk decode, color-type-to-color-mode mapping, and APNG (acTL)
// animation detection.
package png

import (
	"fmt"
	"strings"

	"github.com/dockerish/mediaprobe"
	"github.com/dockerish/mediaprobe/internal/mediaio"
	"github.com/dockerish/mediaprobe/internal/saferead"
)

// Parser recognizes PNG and APNG images.
type Parser struct{}

// New returns a stateless PNG parser instance.
func New() *Parser { return &Parser{} }

func (Parser) LikelyMatch(filename string) bool {
	return strings.HasSuffix(strings.ToLower(filename), ".png")
}

var pngSignature = [8]byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

// colorModeFor maps the IHDR color_type byte to a ColorMode and the
// has-transparency flag reported for it (true for color types 0, 4 and 6).
func colorModeFor(colorType byte) (mode mediaprobe.ColorMode, hasAlpha bool, ok bool) {
	switch colorType {
	case 0:
		return mediaprobe.ColorGrayscale, true, true
	case 2:
		return mediaprobe.ColorRGB, false, true
	case 3:
		return mediaprobe.ColorIndexed, false, true
	case 4:
		return mediaprobe.ColorGrayscale, true, true
	case 6:
		return mediaprobe.ColorRGBA, true, true
	default:
		return "", false, false
	}
}

// Parse implements mediaprobe.Parser.
func (Parser) Parse(src *mediaio.Constrained) (mediaprobe.Result, error) {
	sig, err := saferead.Exact(src, 8)
	if err != nil {
		return nil, err
	}
	for i, b := range sig {
		if b != pngSignature[i] {
			return nil, fmt.Errorf("png: bad signature: %w", mediaprobe.ErrFormatMismatch)
		}
	}

	length, err := saferead.BEU32(src)
	if err != nil {
		return nil, err
	}
	tag, err := saferead.Exact(src, 4)
	if err != nil {
		return nil, err
	}
	if string(tag) != "IHDR" {
		return nil, fmt.Errorf("png: expected IHDR, got %q: %w", tag, mediaprobe.ErrFormatMismatch)
	}
	if length != 13 {
		return nil, fmt.Errorf("png: IHDR length %d, want 13: %w", length, mediaprobe.ErrFormatMismatch)
	}

	body, err := saferead.Exact(src, 13)
	if err != nil {
		return nil, err
	}
	width := be32(body[0:4])
	height := be32(body[4:8])
	colorType := body[9]

	// CRC trailer for IHDR; not re-verified (§4's CRC obligation is scoped
	// to OGG page validation), only skipped so the offset lines up for the
	// APNG probe.
	if err := saferead.Skip(src, 4); err != nil {
		return nil, err
	}

	if width == 0 || height == 0 {
		return nil, fmt.Errorf("png: zero width/height: %w", mediaprobe.ErrFormatMismatch)
	}
	colorMode, hasAlpha, ok := colorModeFor(colorType)
	if !ok {
		return nil, fmt.Errorf("png: unrecognized color_type %d: %w", colorType, mediaprobe.ErrFormatMismatch)
	}

	numFrames, isAPNG := probeAPNG(src)

	var hasMultipleFrames *bool
	var numAnimationFrames *int
	if isAPNG {
		v := true
		hasMultipleFrames = &v
		n := int(numFrames)
		numAnimationFrames = &n
	}

	return mediaprobe.Image{
		Format:                    "png",
		WidthPx:                   int(width),
		HeightPx:                  int(height),
		ColorMode:                 colorMode,
		HasAlpha:                  hasAlpha,
		ContentType:               "image/png",
		HasMultipleFrames:         hasMultipleFrames,
		NumAnimationOrVideoFrames: numAnimationFrames,
	}, nil
}

// probeAPNG checks whether the chunk immediately following IHDR's CRC is
// acTL, which is the APNG animation control chunk and must directly follow
// IHDR per the APNG extension, and if so decodes its num_frames field. src
// is already positioned right after IHDR's CRC when this is called.
func probeAPNG(src *mediaio.Constrained) (numFrames uint32, ok bool) {
	length, err := saferead.BEU32(src)
	if err != nil {
		return 0, false
	}
	tag, err := saferead.Exact(src, 4)
	if err != nil {
		return 0, false
	}
	if string(tag) != "acTL" || length != 8 {
		return 0, false
	}
	body, err := saferead.Exact(src, 4) // num_frames; num_plays follows but is unused here
	if err != nil {
		return 0, false
	}
	return be32(body), true
}

func be32(b []byte) uint32 {
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}
