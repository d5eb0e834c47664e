package saferead

import (
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dockerish/mediaprobe/internal/mediaio"
)

func openTemp(t *testing.T, content []byte) *mediaio.LocalSource {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "sample.bin")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	src, err := mediaio.OpenLocal(path)
	if err != nil {
		t.Fatalf("OpenLocal: %v", err)
	}
	t.Cleanup(func() { _ = src.Close() })
	return src
}

func TestExactReturnsRequestedBytes(t *testing.T) {
	src := openTemp(t, []byte("hello world"))
	b, err := Exact(src, 5)
	if err != nil {
		t.Fatalf("Exact: %v", err)
	}
	if string(b) != "hello" {
		t.Errorf("Exact = %q, want %q", b, "hello")
	}
}

func TestExactFailsOnShortInput(t *testing.T) {
	src := openTemp(t, []byte("hi"))
	_, err := Exact(src, 10)
	if !errors.Is(err, ErrInsufficientData) {
		t.Errorf("expected ErrInsufficientData, got %v", err)
	}
}

func TestSkipAdvancesPosition(t *testing.T) {
	src := openTemp(t, []byte("0123456789"))
	if err := Skip(src, 4); err != nil {
		t.Fatalf("Skip: %v", err)
	}
	b, err := Exact(src, 2)
	if err != nil || string(b) != "45" {
		t.Fatalf("Exact after skip = %q, %v, want 45, nil", b, err)
	}
}

func TestSkipRejectsPastEnd(t *testing.T) {
	src := openTemp(t, []byte("abc"))
	if err := Skip(src, 100); !errors.Is(err, ErrInsufficientData) {
		t.Errorf("expected ErrInsufficientData, got %v", err)
	}
}

func TestNumericDecoders(t *testing.T) {
	content := make([]byte, 8)
	binary.BigEndian.PutUint32(content[0:4], 0x01020304)
	binary.LittleEndian.PutUint32(content[4:8], 0x01020304)

	src := openTemp(t, content)
	be, err := BEU32(src)
	if err != nil || be != 0x01020304 {
		t.Fatalf("BEU32 = %x, %v, want 0x01020304, nil", be, err)
	}
	le, err := LEU32(src)
	if err != nil || le != 0x01020304 {
		t.Fatalf("LEU32 = %x, %v, want 0x01020304, nil", le, err)
	}
}

func TestUnpackDecodesFieldsInOrder(t *testing.T) {
	content := []byte{0x00, 0x01, 'A', 'B', 'C', 'D'}
	src := openTemp(t, content)

	fields := []Field{
		{Name: "version", Width: 2, Endian: binary.BigEndian},
		{Name: "tag", Width: 4, Bytes: true},
	}
	out, err := Unpack(src, fields)
	if err != nil {
		t.Fatalf("Unpack: %v", err)
	}
	if out["version"] != uint64(1) {
		t.Errorf("version = %v, want 1", out["version"])
	}
	if string(out["tag"].([]byte)) != "ABCD" {
		t.Errorf("tag = %v, want ABCD", out["tag"])
	}
}

// runExactWithTimeout calls Exact in a goroutine and fails the test instead
// of hanging forever if Exact never returns — this is what a Constrained
// view over an empty/short source used to do before it started forwarding
// io.EOF (see mediaio.Constrained.Read).
func runExactWithTimeout(t *testing.T, src mediaio.Source, n int) ([]byte, error) {
	t.Helper()
	type result struct {
		b   []byte
		err error
	}
	done := make(chan result, 1)
	go func() {
		b, err := Exact(src, n)
		done <- result{b, err}
	}()
	select {
	case r := <-done:
		return r.b, r.err
	case <-time.After(2 * time.Second):
		t.Fatal("Exact did not return: Constrained.Read is looping on (0, nil) instead of forwarding io.EOF")
		return nil, nil
	}
}

func TestExactThroughConstrainedOnEmptyFileFailsInsteadOfHanging(t *testing.T) {
	raw := openTemp(t, nil)
	src := mediaio.NewConstrained(raw)

	_, err := runExactWithTimeout(t, src, 8)
	if !errors.Is(err, ErrInsufficientData) {
		t.Errorf("expected ErrInsufficientData, got %v", err)
	}
}

func TestExactThroughConstrainedOnShortFileFailsInsteadOfHanging(t *testing.T) {
	raw := openTemp(t, []byte("abc")) // shorter than the requested header
	src := mediaio.NewConstrained(raw)

	_, err := runExactWithTimeout(t, src, 8)
	if !errors.Is(err, ErrInsufficientData) {
		t.Errorf("expected ErrInsufficientData, got %v", err)
	}
}
