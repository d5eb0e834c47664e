// Package docx implements an OOXML (.docx) parser: it is a ZIP package, so
// recognition reuses formats/zip's End Of Central Directory scan and then
// confirms the presence of the "word/document.xml" part by walking the local
// file headers from the start of the stream before accepting the input as a
// Word document rather than a generic ZIP archive.
package docx

import (
	"fmt"
	"strings"

	"github.com/dockerish/mediaprobe"
	"github.com/dockerish/mediaprobe/formats/zip"
	"github.com/dockerish/mediaprobe/internal/mediaio"
	"github.com/dockerish/mediaprobe/internal/saferead"
)

type Parser struct{}

func New() *Parser { return &Parser{} }

func (Parser) LikelyMatch(filename string) bool {
	return strings.HasSuffix(strings.ToLower(filename), ".docx")
}

const wordDocumentPart = "word/document.xml"

// Parse implements mediaprobe.Parser.
func (Parser) Parse(src *mediaio.Constrained) (mediaprobe.Result, error) {
	if _, err := zip.FindEOCD(src); err != nil {
		return nil, err
	}

	if err := src.Seek(0); err != nil {
		return nil, err
	}
	found, err := scanForLocalFileName(src, wordDocumentPart)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("docx: %s not found in package: %w", wordDocumentPart, mediaprobe.ErrFormatMismatch)
	}

	return mediaprobe.Document{
		Format:      "docx",
		ContentType: "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	}, nil
}

// scanForLocalFileName walks the ZIP local file headers from the start of
// the stream (rather than the central directory, which may sit far past
// any single Constrained view's cap) looking for name among them.
func scanForLocalFileName(src *mediaio.Constrained, name string) (bool, error) {
	for {
		sig, err := saferead.Exact(src, 4)
		if err != nil {
			return false, nil // ran out of local file headers to scan
		}
		if string(sig) != "PK\x03\x04" {
			return false, nil
		}

		rest, err := saferead.Exact(src, 26)
		if err != nil {
			return false, err
		}
		compressedSize := le32(rest[14:18])
		nameLen := le16(rest[22:24])
		extraLen := le16(rest[24:26])

		fileName, err := saferead.Exact(src, int(nameLen))
		if err != nil {
			return false, err
		}
		if string(fileName) == name {
			return true, nil
		}

		if err := saferead.Skip(src, int64(extraLen)+int64(compressedSize)); err != nil {
			return false, nil
		}
	}
}

func le16(b []byte) uint16 { return uint16(b[0]) | uint16(b[1])<<8 }
func le32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}
