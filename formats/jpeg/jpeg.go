// Package jpeg implements a JPEG/JFIF parser: SOI marker, SOF0-SOF3/SOF5-SOF7
// segment scan for dimensions and color components, and EXIF orientation
// extraction from an APP1 TIFF IFD0 when present.
package jpeg

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/dockerish/mediaprobe"
	"github.com/dockerish/mediaprobe/internal/mediaio"
	"github.com/dockerish/mediaprobe/internal/saferead"
)

// Parser recognizes JPEG/JFIF images. It carries Priority 0 at registration
// time, reserved for the most common format.
type Parser struct{}

func New() *Parser { return &Parser{} }

func (Parser) LikelyMatch(filename string) bool {
	lower := strings.ToLower(filename)
	return strings.HasSuffix(lower, ".jpg") || strings.HasSuffix(lower, ".jpeg")
}

const (
	markerSOI = 0xD8
	markerEOI = 0xD9
	markerAPP1 = 0xE1
)

func isSOF(marker byte) bool {
	switch marker {
	case 0xC0, 0xC1, 0xC2, 0xC3, 0xC5, 0xC6, 0xC7:
		return true
	default:
		return false
	}
}

// Parse implements mediaprobe.Parser.
func (Parser) Parse(src *mediaio.Constrained) (mediaprobe.Result, error) {
	soi, err := saferead.Exact(src, 2)
	if err != nil {
		return nil, err
	}
	if soi[0] != 0xFF || soi[1] != markerSOI {
		return nil, fmt.Errorf("jpeg: missing SOI marker: %w", mediaprobe.ErrFormatMismatch)
	}

	var (
		width, height int
		numComponents int
		orientation   *mediaprobe.Orientation
		foundSOF      bool
	)

	for {
		marker, length, ok, err := nextSegment(src)
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		if marker == markerAPP1 && orientation == nil {
			if o := readEXIFOrientation(src, length); o != nil {
				orientation = o
			}
			continue
		}
		if isSOF(marker) {
			body, err := saferead.Exact(src, length-2)
			if err != nil {
				return nil, err
			}
			if len(body) < 5 {
				return nil, fmt.Errorf("jpeg: short SOF segment: %w", mediaprobe.ErrFormatMismatch)
			}
			height = int(binary.BigEndian.Uint16(body[1:3]))
			width = int(binary.BigEndian.Uint16(body[3:5]))
			numComponents = int(body[5])
			foundSOF = true
			break
		}
		if err := saferead.Skip(src, int64(length-2)); err != nil {
			return nil, err
		}
	}

	if !foundSOF || width == 0 || height == 0 {
		return nil, fmt.Errorf("jpeg: no SOF segment found: %w", mediaprobe.ErrFormatMismatch)
	}

	colorMode := mediaprobe.ColorRGB
	if numComponents == 1 {
		colorMode = mediaprobe.ColorGrayscale
	} else if numComponents == 4 {
		colorMode = mediaprobe.ColorCMYK
	}

	return mediaprobe.Image{
		Format:      "jpeg",
		WidthPx:     width,
		HeightPx:    height,
		ColorMode:   colorMode,
		HasAlpha:    false,
		ContentType: "image/jpeg",
		Orientation: orientation,
	}, nil
}

// nextSegment reads the next marker and its length, skipping padding 0xFF
// fill bytes, and returns ok=false at EOI or end of stream.
func nextSegment(src *mediaio.Constrained) (marker byte, length int, ok bool, err error) {
	for {
		b, err := saferead.U8(src)
		if err != nil {
			return 0, 0, false, nil
		}
		if b != 0xFF {
			continue
		}
		m, err := saferead.U8(src)
		if err != nil {
			return 0, 0, false, nil
		}
		if m == 0x00 || m == 0xFF {
			continue
		}
		if m == markerEOI {
			return 0, 0, false, nil
		}
		// Markers with no payload (RST*, TEM) carry no length field.
		if (m >= 0xD0 && m <= 0xD7) || m == 0x01 {
			continue
		}
		l, err := saferead.BEU16(src)
		if err != nil {
			return 0, 0, false, err
		}
		return m, int(l), true, nil
	}
}

// readEXIFOrientation scans an APP1 segment of the given total length for
// an "Exif\0\0"-prefixed TIFF IFD0 and extracts tag 0x0112 (Orientation).
// It consumes exactly length-2 bytes from src regardless of outcome.
func readEXIFOrientation(src *mediaio.Constrained, length int) *mediaprobe.Orientation {
	body, err := saferead.Exact(src, length-2)
	if err != nil || len(body) < 8 || string(body[0:4]) != "Exif" {
		return nil
	}
	tiff := body[6:]
	if len(tiff) < 8 {
		return nil
	}

	var order binary.ByteOrder
	switch string(tiff[0:2]) {
	case "II":
		order = binary.LittleEndian
	case "MM":
		order = binary.BigEndian
	default:
		return nil
	}
	ifdOffset := order.Uint32(tiff[4:8])
	if int(ifdOffset)+2 > len(tiff) {
		return nil
	}
	numEntries := int(order.Uint16(tiff[ifdOffset : ifdOffset+2]))
	entriesStart := int(ifdOffset) + 2

	for i := 0; i < numEntries; i++ {
		entryOffset := entriesStart + i*12
		if entryOffset+12 > len(tiff) {
			break
		}
		entry := tiff[entryOffset : entryOffset+12]
		tag := order.Uint16(entry[0:2])
		if tag != 0x0112 {
			continue
		}
		value := order.Uint16(entry[8:10])
		o := orientationFromEXIF(value)
		if o == nil {
			return nil
		}
		return o
	}
	return nil
}

func orientationFromEXIF(value uint16) *mediaprobe.Orientation {
	table := map[uint16]mediaprobe.Orientation{
		1: mediaprobe.OrientationTopLeft,
		2: mediaprobe.OrientationTopRight,
		3: mediaprobe.OrientationBottomRight,
		4: mediaprobe.OrientationBottomLeft,
		5: mediaprobe.OrientationLeftTop,
		6: mediaprobe.OrientationRightTop,
		7: mediaprobe.OrientationRightBottom,
		8: mediaprobe.OrientationLeftBottom,
	}
	o, ok := table[value]
	if !ok {
		return nil
	}
	return &o
}
