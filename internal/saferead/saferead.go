// Package saferead provides fixed-length read and numeric-decode helpers
// that fail cleanly on short input instead of panicking. Every format
// parser builds on these rather than reading the underlying mediaio.Source
// directly, so that "not enough bytes left" always surfaces the same way:
// as ErrInsufficientData, which the dispatch loop treats as "this parser
// doesn't recognize the file", not as a fault.
package saferead

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/dockerish/mediaprobe/internal/mediaio"
)

// ErrInsufficientData is returned when a read came back short.
var ErrInsufficientData = errors.New("saferead: insufficient data")

// Exact reads exactly n bytes from src at its current position, or returns
// ErrInsufficientData when the source ends first. Any other error from the
// source (an HTTP status or resource-cap failure) is returned unchanged.
func Exact(src mediaio.Source, n int) ([]byte, error) {
	buf := make([]byte, n)
	read, err := mediaio.ReadAtCurrent(src, buf)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, err
	}
	if err != nil || read < n {
		return nil, fmt.Errorf("%w: wanted %d bytes, got %d: %v", ErrInsufficientData, n, read, err)
	}
	return buf, nil
}

// Skip advances src by n bytes, validating that n bytes actually exist
// between the current position and Size (when Size is known).
func Skip(src mediaio.Source, n int64) error {
	if n < 0 {
		return fmt.Errorf("saferead: negative skip %d", n)
	}
	target := src.Pos() + n
	if size, err := src.Size(); err == nil && target > size {
		return fmt.Errorf("%w: skip past end of stream", ErrInsufficientData)
	}
	if err := src.Seek(target); err != nil {
		return fmt.Errorf("%w: %v", ErrInsufficientData, err)
	}
	return nil
}

// U8 reads a single unsigned byte.
func U8(src mediaio.Source) (uint8, error) {
	b, err := Exact(src, 1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// BEU16 reads a big-endian uint16.
func BEU16(src mediaio.Source) (uint16, error) {
	b, err := Exact(src, 2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

// LEU16 reads a little-endian uint16.
func LEU16(src mediaio.Source) (uint16, error) {
	b, err := Exact(src, 2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

// BEU32 reads a big-endian uint32.
func BEU32(src mediaio.Source) (uint32, error) {
	b, err := Exact(src, 4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

// LEU32 reads a little-endian uint32.
func LEU32(src mediaio.Source) (uint32, error) {
	b, err := Exact(src, 4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// BEU64 reads a big-endian uint64.
func BEU64(src mediaio.Source) (uint64, error) {
	b, err := Exact(src, 8)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b), nil
}

// LEU64 reads a little-endian uint64.
func LEU64(src mediaio.Source) (uint64, error) {
	b, err := Exact(src, 8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

// Field describes one grouping in a structured-unpack call: a fixed byte
// width, read as an unsigned integer in the given byte order (Endian) or,
// when Bytes is true, left as a raw byte slice (e.g. a 4-byte ASCII tag).
type Field struct {
	Name   string
	Width  int
	Endian binary.ByteOrder // nil when Bytes is true
	Bytes  bool
}

// Unpack reads a sequence of Fields from src in order and returns a map of
// field name to decoded value (uint64 for integer fields, []byte for byte
// fields). This mirrors the "parse a buffer into named integer/byte-string
// tuples" helper the design calls for, generalizing the ad hoc fixed-field
// decoding every format parser would otherwise hand-roll.
func Unpack(src mediaio.Source, fields []Field) (map[string]any, error) {
	out := make(map[string]any, len(fields))
	for _, f := range fields {
		b, err := Exact(src, f.Width)
		if err != nil {
			return nil, err
		}
		if f.Bytes {
			out[f.Name] = b
			continue
		}
		endian := f.Endian
		if endian == nil {
			endian = binary.BigEndian
		}
		switch f.Width {
		case 1:
			out[f.Name] = uint64(b[0])
		case 2:
			out[f.Name] = uint64(endian.Uint16(b))
		case 4:
			out[f.Name] = uint64(endian.Uint32(b))
		case 8:
			out[f.Name] = endian.Uint64(b)
		default:
			return nil, fmt.Errorf("saferead: unsupported integer field width %d for %q", f.Width, f.Name)
		}
	}
	return out, nil
}
