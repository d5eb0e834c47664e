package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, content, 0o644))
	return path
}

func minimalPNG() []byte {
	// Signature + a minimally valid 1x1 truecolor IHDR chunk, CRC left as
	// zeros since the PNG parser never verifies it.
	return []byte{
		0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n',
		0x00, 0x00, 0x00, 0x0d, 'I', 'H', 'D', 'R',
		0x00, 0x00, 0x00, 0x01, // width
		0x00, 0x00, 0x00, 0x01, // height
		0x08,       // bit depth
		0x02,       // color type: truecolor
		0x00, 0x00, 0x00, // compression/filter/interlace
		0x00, 0x00, 0x00, 0x00, // CRC (unchecked)
	}
}

func TestRunProbeFirstModeIdentifiesPNG(t *testing.T) {
	path := writeTemp(t, "sample.png", minimalPNG())

	outputs := runProbe(context.Background(), []string{path}, probeOptions{})
	require.Len(t, outputs, 1)

	out := outputs[0]
	assert.Equal(t, path, out.SourcePathOrURL)
	assert.Empty(t, out.Error)
	require.NotNil(t, out.Result)
	assert.True(t, out.nonEmpty())
}

func TestRunProbeAllModeSetsAmbiguousFalseForSingleMatch(t *testing.T) {
	path := writeTemp(t, "sample.png", minimalPNG())

	outputs := runProbe(context.Background(), []string{path}, probeOptions{all: true})
	require.Len(t, outputs, 1)

	out := outputs[0]
	require.NotNil(t, out.Ambiguous)
	assert.False(t, *out.Ambiguous)
	assert.Len(t, out.Results, 1)
}

func TestRunProbeUnrecognizedInputYieldsEmptyResult(t *testing.T) {
	path := writeTemp(t, "sample.bin", []byte("not a known media format"))

	outputs := runProbe(context.Background(), []string{path}, probeOptions{})
	require.Len(t, outputs, 1)

	out := outputs[0]
	assert.Empty(t, out.Error)
	assert.Nil(t, out.Result)
	assert.False(t, out.nonEmpty())
}

func TestRunProbeProcessesMultipleInputsConcurrently(t *testing.T) {
	pngPath := writeTemp(t, "a.png", minimalPNG())
	unknownPath := writeTemp(t, "b.bin", []byte("junk"))

	outputs := runProbe(context.Background(), []string{pngPath, unknownPath}, probeOptions{})
	require.Len(t, outputs, 2)
	assert.Equal(t, pngPath, outputs[0].SourcePathOrURL)
	assert.Equal(t, unknownPath, outputs[1].SourcePathOrURL)
	assert.True(t, outputs[0].nonEmpty())
	assert.False(t, outputs[1].nonEmpty())
}

func TestIsURLDetectsHTTPPrefixes(t *testing.T) {
	assert.True(t, isURL("http://example.com/a.png"))
	assert.True(t, isURL("https://example.com/a.png"))
	assert.False(t, isURL("/local/path/a.png"))
	assert.False(t, isURL("relative/a.png"))
}
