// Package pdf implements a PDF parser: "%PDF-" header check and a page
// count taken from the first "/Type /Pages" dictionary with a /Count entry
// found by a pattern scan of the first MiB. The trailer's Root reference is
// not followed.
package pdf

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/dockerish/mediaprobe"
	"github.com/dockerish/mediaprobe/internal/mediaio"
	"github.com/dockerish/mediaprobe/internal/saferead"
)

type Parser struct{}

func New() *Parser { return &Parser{} }

func (Parser) LikelyMatch(filename string) bool {
	return strings.HasSuffix(strings.ToLower(filename), ".pdf")
}

var countPattern = regexp.MustCompile(`/Type\s*/Pages[^>]*?/Count\s+(\d+)|/Count\s+(\d+)[^>]*?/Type\s*/Pages`)

const maxScanBytes = 1 << 20 // one MiB is enough to find the Pages tree in practically every PDF

// Parse implements mediaprobe.Parser.
func (Parser) Parse(src *mediaio.Constrained) (mediaprobe.Result, error) {
	magic, err := saferead.Exact(src, 5)
	if err != nil {
		return nil, err
	}
	if string(magic) != "%PDF-" {
		return nil, fmt.Errorf("pdf: missing %%PDF- header: %w", mediaprobe.ErrFormatMismatch)
	}

	size, err := src.Size()
	if err != nil {
		return nil, fmt.Errorf("pdf: %v: %w", err, mediaprobe.ErrFormatMismatch)
	}
	if err := src.Seek(0); err != nil {
		return nil, err
	}

	scanLen := int64(maxScanBytes)
	if size < scanLen {
		scanLen = size
	}
	body, err := saferead.Exact(src, int(scanLen))
	if err != nil {
		return nil, err
	}

	var numPages *int
	if match := countPattern.FindSubmatch(body); match != nil {
		raw := match[1]
		if len(raw) == 0 {
			raw = match[2]
		}
		if n, err := strconv.Atoi(string(raw)); err == nil {
			numPages = &n
		}
	}

	return mediaprobe.Document{
		Format:      "pdf",
		NumPages:    numPages,
		ContentType: "application/pdf",
	}, nil
}
