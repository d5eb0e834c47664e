package mediaio

import (
	"fmt"
	"io"
)

// Constrained wraps a Source and enforces that a parser cannot read past
// Size or seek to a negative or out-of-bounds offset. Dispatch creates one
// fresh Constrained per candidate parser, seeked to 0, so that no parser
// observes another parser's seeks — this is the per-parser isolation
// boundary required by the dispatch algorithm.
type Constrained struct {
	src Source
}

// NewConstrained wraps src. The caller is responsible for seeking src to 0
// first if per-parser isolation is required (dispatch always does this).
func NewConstrained(src Source) *Constrained {
	return &Constrained{src: src}
}

func (c *Constrained) Read(p []byte) (int, error) {
	size, sizeErr := c.src.Size()
	if sizeErr != nil {
		n, err := c.src.Read(p)
		if n == 0 && err == nil && len(p) > 0 {
			// An empty read (a remote 416) would make io.ReadFull issue the
			// same read again; report it as EOF instead.
			err = io.EOF
		}
		return n, err
	}

	remaining := size - c.src.Pos()
	if remaining <= 0 {
		// io.ReadFull (via saferead.Exact) spins forever on a (0, nil)
		// reader with no progress; reporting plain EOF here is what lets a
		// too-short or empty input unwind into ErrInsufficientData instead
		// of hanging.
		return 0, io.EOF
	}
	if int64(len(p)) > remaining {
		p = p[:remaining]
	}
	n, err := c.src.Read(p)
	if err == nil && (int64(n) >= remaining || (n == 0 && len(p) > 0)) {
		err = io.EOF
	}
	return n, err
}

func (c *Constrained) Seek(offset int64) error {
	if offset < 0 {
		return fmt.Errorf("mediaio: negative seek offset %d", offset)
	}
	if size, err := c.src.Size(); err == nil && offset > size {
		return fmt.Errorf("mediaio: seek past size: %d (size %d)", offset, size)
	}
	return c.src.Seek(offset)
}

func (c *Constrained) Pos() int64 { return c.src.Pos() }

func (c *Constrained) Size() (int64, error) { return c.src.Size() }

func (c *Constrained) Close() error { return nil } // the underlying Source owns its lifecycle
