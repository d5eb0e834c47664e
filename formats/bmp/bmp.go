// Package bmp implements a Windows BMP (BITMAPFILEHEADER + BITMAPINFOHEADER)
// parser: signature check and DIB header decode for dimensions and color
// depth.
package bmp

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
	return strings.HasSuffix(strings.ToLower(filename), ".bmp")
}

// Parse implements mediaprobe.Parser.
func (Parser) Parse(src *mediaio.Constrained) (mediaprobe.Result, error) {
	sig, err := saferead.Exact(src, 2)
	if err != nil {
		return nil, err
	}
	if string(sig) != "BM" {
		return nil, fmt.Errorf("bmp: bad signature %q: %w", sig, mediaprobe.ErrFormatMismatch)
	}
	if err := saferead.Skip(src, 12); err != nil { // file size, reserved x2, pixel data offset
		return nil, err
	}

	dibHeaderSize, err := saferead.LEU32(src)
	if err != nil {
		return nil, err
	}
	if dibHeaderSize < 40 {
		return nil, fmt.Errorf("bmp: unsupported DIB header size %d: %w", dibHeaderSize, mediaprobe.ErrFormatMismatch)
	}

	width, err := saferead.LEU32(src)
	if err != nil {
		return nil, err
	}
	heightRaw, err := saferead.LEU32(src)
	if err != nil {
		return nil, err
	}
	height := int32(heightRaw)
	if height < 0 {
		height = -height
	}

	if err := saferead.Skip(src, 2); err != nil { // color planes
		return nil, err
	}
	bitsPerPixel, err := saferead.LEU16(src)
	if err != nil {
		return nil, err
	}

	if width == 0 || height == 0 {
		return nil, fmt.Errorf("bmp: zero width/height: %w", mediaprobe.ErrFormatMismatch)
	}

	colorMode := mediaprobe.ColorRGB
	hasAlpha := false
	switch bitsPerPixel {
	case 1, 4, 8:
		colorMode = mediaprobe.ColorIndexed
	case 32:
		colorMode = mediaprobe.ColorRGBA
		hasAlpha = true
	}

	return mediaprobe.Image{
		Format:      "bmp",
		WidthPx:     int(width),
		HeightPx:    int(height),
		ColorMode:   colorMode,
		HasAlpha:    hasAlpha,
		ContentType: "image/bmp",
	}, nil
}
