// Package ogg implements the OGG Vorbis reference parser: magic-byte
// recognition, Vorbis identification header decode, and last-page tail
// scanning with full CRC-32 validation to recover the duration.
//
// The tail-scan and page-checksum algorithm are grounded on the standard
// Ogg page CRC discipline (polynomial 0x04C11DB7, checksum field zeroed
// during the check) as implemented by the webrtc Ogg container readers in
// this codebase's reference corpus.
package ogg

import (
	"bytes"
	"fmt"
	"math"
	"strings"

	"github.com/dockerish/mediaprobe"
	"github.com/dockerish/mediaprobe/internal/mediaio"
	"github.com/dockerish/mediaprobe/internal/saferead"
)

// Parser recognizes OGG Vorbis streams.
type Parser struct{}

// New returns a stateless OGG parser instance, safe to register once and
// reuse across parses.
func New() *Parser { return &Parser{} }

func (Parser) LikelyMatch(filename string) bool {
	lower := strings.ToLower(filename)
	return strings.HasSuffix(lower, ".ogg") || strings.HasSuffix(lower, ".oga")
}

const maxOggPage = 65307 // one maximum Ogg page, per the container's own framing limit

// Parse implements mediaprobe.Parser.
func (Parser) Parse(src *mediaio.Constrained) (mediaprobe.Result, error) {
	magic, err := saferead.Exact(src, 4)
	if err != nil {
		return nil, err
	}
	if string(magic) != "OggS" {
		return nil, fmt.Errorf("ogg: missing OggS magic: %w", mediaprobe.ErrFormatMismatch)
	}

	if err := saferead.Skip(src, 28-4); err != nil {
		return nil, err
	}
	idHeader, err := saferead.Exact(src, 16)
	if err != nil {
		return nil, err
	}
	if idHeader[0] != 1 {
		return nil, fmt.Errorf("ogg: unexpected packet_type %d: %w", idHeader[0], mediaprobe.ErrFormatMismatch)
	}
	if string(idHeader[1:7]) != "vorbis" {
		return nil, fmt.Errorf("ogg: missing vorbis magic: %w", mediaprobe.ErrFormatMismatch)
	}
	channels := int(idHeader[11])
	sampleRate := int(leU32(idHeader[12:16]))
	if channels <= 0 || sampleRate <= 0 {
		return nil, fmt.Errorf("ogg: non-positive channels/sample rate: %w", mediaprobe.ErrFormatMismatch)
	}

	size, err := src.Size()
	if err != nil {
		return nil, fmt.Errorf("ogg: %v: %w", err, mediaprobe.ErrFormatMismatch)
	}

	var duration float64
	if granule, err := lastPageGranule(src, size); err == nil {
		duration = float64(granule) / float64(sampleRate)
		if math.IsInf(duration, 0) || math.IsNaN(duration) || duration < 0 {
			duration = 0
		}
	}
	// A recognized-but-unparseable tail does not invalidate the format
	// identification; it just leaves duration at zero.

	return mediaprobe.Audio{
		Format:               "ogg",
		SampleRateHz:         sampleRate,
		NumChannels:          channels,
		MediaDurationSeconds: duration,
		ContentType:          "audio/ogg",
	}, nil
}

// lastPageGranule implements the tail-scan algorithm: read the final
// min(size, maxOggPage) bytes, find every "OggS" occurrence, and validate
// candidates in descending offset order until one checksum-verifies.
func lastPageGranule(src *mediaio.Constrained, size int64) (uint64, error) {
	tailLen := int64(maxOggPage)
	if size < tailLen {
		tailLen = size
	}
	start := size - tailLen
	if err := src.Seek(start); err != nil {
		return 0, err
	}
	tail, err := saferead.Exact(src, int(tailLen))
	if err != nil {
		return 0, err
	}

	offsets := findAll(tail, []byte("OggS"))
	for i := len(offsets) - 1; i >= 0; i-- {
		if granule, ok := validatePage(tail, offsets[i]); ok {
			return granule, nil
		}
	}
	return 0, errNoValidPage
}

var errNoValidPage = fmt.Errorf("ogg: no valid page found in tail")

func findAll(haystack, needle []byte) []int {
	var offsets []int
	from := 0
	for {
		idx := bytes.Index(haystack[from:], needle)
		if idx < 0 {
			return offsets
		}
		offsets = append(offsets, from+idx)
		from += idx + 1
	}
}

// validatePage attempts to parse and CRC-validate an Ogg page header at
// offset within tail.
func validatePage(tail []byte, offset int) (granule uint64, ok bool) {
	const headerLen = 27
	if offset+headerLen > len(tail) {
		return 0, false
	}
	header := tail[offset : offset+headerLen]

	granulePos := leU64(header[6:14])
	numSegments := int(header[26])
	if numSegments == 0 {
		return 0, false
	}

	segTableStart := offset + headerLen
	segTableEnd := segTableStart + numSegments
	if segTableEnd > len(tail) {
		return 0, false
	}
	segTable := tail[segTableStart:segTableEnd]

	payloadSize := 0
	for _, s := range segTable {
		payloadSize += int(s)
	}

	pageSize := headerLen + numSegments + payloadSize
	if offset+pageSize > len(tail) {
		return 0, false
	}
	page := tail[offset : offset+pageSize]

	storedChecksum := leU32(header[22:26])
	if computeCRC(page) != storedChecksum {
		return 0, false
	}
	return granulePos, true
}

// computeCRC computes the Ogg page CRC-32 (polynomial 0x04C11DB7) over
// page, treating the 4-byte checksum field (bytes 22..25) as zero.
func computeCRC(page []byte) uint32 {
	var crc uint32
	for i, b := range page {
		if i >= 22 && i < 26 {
			b = 0
		}
		crc = (crc << 8) ^ crcTable[byte(crc>>24)^b]
	}
	return crc
}

var crcTable = generateCRCTable()

func generateCRCTable() [256]uint32 {
	const poly = 0x04c11db7
	var table [256]uint32
	for i := range table {
		r := uint32(i) << 24
		for j := 0; j < 8; j++ {
			if r&0x80000000 != 0 {
				r = (r << 1) ^ poly
			} else {
				r <<= 1
			}
		}
		table[i] = r
	}
	return table
}

func leU32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

func leU64(b []byte) uint64 {
	var v uint64
	for i := 7; i >= 0; i-- {
		v = v<<8 | uint64(b[i])
	}
	return v
}
