package mediaio

import (
	"fmt"
	"io"
	"os"
)

// LocalSource wraps a random-access file handle. Size is queried once at
// open via Stat; Read/Seek/Pos operate directly against the *os.File.
type LocalSource struct {
	f    *os.File
	size int64
	pos  int64
}

// OpenLocal opens path for reading and stats it once to learn Size.
func OpenLocal(path string) (*LocalSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("mediaio: open %s: %w", path, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("mediaio: stat %s: %w", path, err)
	}
	return &LocalSource{f: f, size: info.Size()}, nil
}

func (l *LocalSource) Read(p []byte) (int, error) {
	n, err := l.f.ReadAt(p, l.pos)
	l.pos += int64(n)
	if err == io.EOF && n > 0 {
		// A short read at end of file is not an error; the next Read
		// reports io.EOF.
		err = nil
	}
	return n, err
}

func (l *LocalSource) Seek(offset int64) error {
	if offset < 0 || offset > l.size {
		return fmt.Errorf("mediaio: seek out of bounds: %d (size %d)", offset, l.size)
	}
	l.pos = offset
	return nil
}

func (l *LocalSource) Pos() int64 { return l.pos }

func (l *LocalSource) Size() (int64, error) { return l.size, nil }

func (l *LocalSource) Close() error { return l.f.Close() }
