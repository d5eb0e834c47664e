// Package zip implements a ZIP archive parser: End Of Central Directory
// record tail-scan (the record is variable-offset due to the optional
// comment field) and a central-directory entry count.
package zip

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
	return strings.HasSuffix(strings.ToLower(filename), ".zip")
}

const (
	eocdSignature  = "PK\x05\x06"
	eocdMinLen     = 22
	maxCommentSize = 65535
)

// Parse implements mediaprobe.Parser.
func (Parser) Parse(src *mediaio.Constrained) (mediaprobe.Result, error) {
	entryCount, err := FindEOCD(src)
	if err != nil {
		return nil, err
	}

	numPages := int(entryCount)
	return mediaprobe.Document{
		Format:      "zip",
		NumPages:    &numPages,
		ContentType: "application/zip",
	}, nil
}

// FindEOCD tail-scans src for the End Of Central Directory record and
// returns the total number of central directory entries. It is exported so
// formats/docx can reuse the same scan for OOXML packages, which are ZIP
// containers under a different content type.
func FindEOCD(src *mediaio.Constrained) (uint16, error) {
	size, err := src.Size()
	if err != nil {
		return 0, fmt.Errorf("zip: %v: %w", err, mediaprobe.ErrFormatMismatch)
	}

	tailLen := int64(eocdMinLen + maxCommentSize)
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

	sig := []byte(eocdSignature)
	for offset := len(tail) - eocdMinLen; offset >= 0; offset-- {
		if string(tail[offset:offset+4]) != string(sig) {
			continue
		}
		record := tail[offset : offset+eocdMinLen]
		return le16(record[10:12]), nil
	}
	return 0, fmt.Errorf("zip: no End Of Central Directory record found: %w", mediaprobe.ErrFormatMismatch)
}

func le16(b []byte) uint16 { return uint16(b[0]) | uint16(b[1])<<8 }
