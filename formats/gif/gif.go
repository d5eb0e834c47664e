// Package gif implements a GIF87a/GIF89a parser: signature check, logical
// screen descriptor decode, and a frame count via counting Image Descriptor
// blocks across the block stream.
package gif

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
	return strings.HasSuffix(strings.ToLower(filename), ".gif")
}

// Parse implements mediaprobe.Parser.
func (Parser) Parse(src *mediaio.Constrained) (mediaprobe.Result, error) {
	sig, err := saferead.Exact(src, 6)
	if err != nil {
		return nil, err
	}
	if string(sig) != "GIF87a" && string(sig) != "GIF89a" {
		return nil, fmt.Errorf("gif: bad signature %q: %w", sig, mediaprobe.ErrFormatMismatch)
	}

	screen, err := saferead.Exact(src, 7)
	if err != nil {
		return nil, err
	}
	width := int(screen[0]) | int(screen[1])<<8
	height := int(screen[2]) | int(screen[3])<<8
	packed := screen[4]
	hasGCT := packed&0x80 != 0
	gctSize := 2 << (packed & 0x07)

	if hasGCT {
		if err := saferead.Skip(src, int64(gctSize*3)); err != nil {
			return nil, err
		}
	}

	frames, err := countFrames(src)
	if err != nil {
		return nil, err
	}
	if frames == 0 {
		return nil, fmt.Errorf("gif: no image descriptor blocks found: %w", mediaprobe.ErrFormatMismatch)
	}

	hasMultipleFrames := frames > 1
	return mediaprobe.Image{
		Format:                    "gif",
		WidthPx:                   width,
		HeightPx:                  height,
		ColorMode:                 mediaprobe.ColorIndexed,
		HasAlpha:                  false,
		ContentType:               "image/gif",
		HasMultipleFrames:         &hasMultipleFrames,
		NumAnimationOrVideoFrames: &frames,
	}, nil
}

// countFrames walks the block stream (extension blocks and image
// descriptors) until the trailer byte (0x3B) and returns the number of
// image descriptor blocks encountered.
func countFrames(src *mediaio.Constrained) (int, error) {
	frames := 0
	for {
		tag, err := saferead.U8(src)
		if err != nil {
			return frames, err
		}
		switch tag {
		case 0x3B: // trailer
			return frames, nil
		case 0x21: // extension introducer
			if _, err := saferead.U8(src); err != nil { // label
				return frames, err
			}
			if err := skipSubBlocks(src); err != nil {
				return frames, err
			}
		case 0x2C: // image descriptor
			frames++
			if err := saferead.Skip(src, 8); err != nil { // left,top,width,height
				return frames, err
			}
			packed, err := saferead.U8(src)
			if err != nil {
				return frames, err
			}
			if packed&0x80 != 0 {
				lctSize := 2 << (packed & 0x07)
				if err := saferead.Skip(src, int64(lctSize*3)); err != nil {
					return frames, err
				}
			}
			if _, err := saferead.U8(src); err != nil { // LZW minimum code size
				return frames, err
			}
			if err := skipSubBlocks(src); err != nil {
				return frames, err
			}
		default:
			return frames, fmt.Errorf("gif: unexpected block tag 0x%02x: %w", tag, mediaprobe.ErrFormatMismatch)
		}
	}
}

func skipSubBlocks(src *mediaio.Constrained) error {
	for {
		size, err := saferead.U8(src)
		if err != nil {
			return err
		}
		if size == 0 {
			return nil
		}
		if err := saferead.Skip(src, int64(size)); err != nil {
			return err
		}
	}
}
