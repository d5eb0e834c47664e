// Package tiff implements a baseline TIFF parser: byte-order check, IFD0
// walk for ImageWidth/ImageLength/BitsPerSample/SamplesPerPixel/
// PhotometricInterpretation tags.
package tiff

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/dockerish/mediaprobe"
	"github.com/dockerish/mediaprobe/internal/mediaio"
	"github.com/dockerish/mediaprobe/internal/saferead"
)

type Parser struct{}

func New() *Parser { return &Parser{} }

func (Parser) LikelyMatch(filename string) bool {
	lower := strings.ToLower(filename)
	return strings.HasSuffix(lower, ".tif") || strings.HasSuffix(lower, ".tiff")
}

const (
	tagImageWidth      = 256
	tagImageLength     = 257
	tagBitsPerSample   = 258
	tagSamplesPerPixel = 277
	tagPhotometric     = 262
)

// Parse implements mediaprobe.Parser.
func (Parser) Parse(src *mediaio.Constrained) (mediaprobe.Result, error) {
	header, err := saferead.Exact(src, 8)
	if err != nil {
		return nil, err
	}

	var order binary.ByteOrder
	switch string(header[0:2]) {
	case "II":
		order = binary.LittleEndian
	case "MM":
		order = binary.BigEndian
	default:
		return nil, fmt.Errorf("tiff: bad byte-order marker %q: %w", header[0:2], mediaprobe.ErrFormatMismatch)
	}
	if order.Uint16(header[2:4]) != 42 {
		return nil, fmt.Errorf("tiff: bad magic number: %w", mediaprobe.ErrFormatMismatch)
	}
	ifdOffset := order.Uint32(header[4:8])

	if err := src.Seek(int64(ifdOffset)); err != nil {
		return nil, err
	}
	numEntries, err := exactU16(src, order)
	if err != nil {
		return nil, err
	}

	tags := map[uint16]uint32{}
	for i := uint16(0); i < numEntries; i++ {
		entry, err := saferead.Exact(src, 12)
		if err != nil {
			return nil, err
		}
		tag := order.Uint16(entry[0:2])
		fieldType := order.Uint16(entry[2:4])
		value := decodeInlineValue(entry[8:12], fieldType, order)
		tags[tag] = value
	}

	width, haveWidth := tags[tagImageWidth]
	height, haveHeight := tags[tagImageLength]
	if !haveWidth || !haveHeight || width == 0 || height == 0 {
		return nil, fmt.Errorf("tiff: missing width/height tags: %w", mediaprobe.ErrFormatMismatch)
	}

	samplesPerPixel := tags[tagSamplesPerPixel]
	if samplesPerPixel == 0 {
		samplesPerPixel = 1
	}
	photometric := tags[tagPhotometric]

	colorMode := mediaprobe.ColorRGB
	switch {
	case samplesPerPixel >= 4:
		colorMode = mediaprobe.ColorCMYK
	case photometric == 3:
		colorMode = mediaprobe.ColorIndexed
	case samplesPerPixel == 1:
		colorMode = mediaprobe.ColorGrayscale
	case samplesPerPixel == 4:
		colorMode = mediaprobe.ColorRGBA
	}

	return mediaprobe.Image{
		Format:      "tiff",
		WidthPx:     int(width),
		HeightPx:    int(height),
		ColorMode:   colorMode,
		HasAlpha:    samplesPerPixel == 4 && colorMode == mediaprobe.ColorRGBA,
		ContentType: "image/tiff",
	}, nil
}

func exactU16(src *mediaio.Constrained, order binary.ByteOrder) (uint16, error) {
	b, err := saferead.Exact(src, 2)
	if err != nil {
		return 0, err
	}
	return order.Uint16(b), nil
}

// decodeInlineValue decodes a TIFF IFD entry's value field assuming the
// value fits inline (BYTE/SHORT/LONG with count 1), which covers every tag
// this parser reads.
func decodeInlineValue(b []byte, fieldType uint16, order binary.ByteOrder) uint32 {
	switch fieldType {
	case 1: // BYTE
		return uint32(b[0])
	case 3: // SHORT
		return uint32(order.Uint16(b[0:2]))
	case 4: // LONG
		return order.Uint32(b)
	default:
		return 0
	}
}
