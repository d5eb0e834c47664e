package main

import (
	"github.com/dockerish/mediaprobe"
	"github.com/dockerish/mediaprobe/formats/aiff"
	"github.com/dockerish/mediaprobe/formats/bmp"
	"github.com/dockerish/mediaprobe/formats/docx"
	"github.com/dockerish/mediaprobe/formats/flac"
	"github.com/dockerish/mediaprobe/formats/gif"
	"github.com/dockerish/mediaprobe/formats/jpeg"
	"github.com/dockerish/mediaprobe/formats/mp3"
	"github.com/dockerish/mediaprobe/formats/ogg"
	"github.com/dockerish/mediaprobe/formats/pdf"
	"github.com/dockerish/mediaprobe/formats/png"
	"github.com/dockerish/mediaprobe/formats/psd"
	"github.com/dockerish/mediaprobe/formats/tiff"
	"github.com/dockerish/mediaprobe/formats/wav"
	"github.com/dockerish/mediaprobe/formats/zip"
)

// newDefaultRegistry builds the registry this binary ships: every format
// module this repository implements, wired by hand rather than through
// package init() side effects, per the registry's own doc comment.
//
// Priority 0 is reserved for JPEG, the most common format a probe will see
// in practice; everything else is ordered roughly container-simplicity
// first so a cheap magic check fails fast before a more expensive one runs.
func newDefaultRegistry() *mediaprobe.Registry {
	return mediaprobe.New(
		mediaprobe.Descriptor{
			Parser:   jpeg.New(),
			Natures:  []mediaprobe.Nature{mediaprobe.NatureImage},
			Formats:  []mediaprobe.Format{"jpeg"},
			Priority: 0,
		},
		mediaprobe.Descriptor{
			Parser:   png.New(),
			Natures:  []mediaprobe.Nature{mediaprobe.NatureImage},
			Formats:  []mediaprobe.Format{"png"},
			Priority: 1,
		},
		mediaprobe.Descriptor{
			Parser:   gif.New(),
			Natures:  []mediaprobe.Nature{mediaprobe.NatureImage},
			Formats:  []mediaprobe.Format{"gif"},
			Priority: 2,
		},
		mediaprobe.Descriptor{
			Parser:   bmp.New(),
			Natures:  []mediaprobe.Nature{mediaprobe.NatureImage},
			Formats:  []mediaprobe.Format{"bmp"},
			Priority: 3,
		},
		mediaprobe.Descriptor{
			Parser:   tiff.New(),
			Natures:  []mediaprobe.Nature{mediaprobe.NatureImage},
			Formats:  []mediaprobe.Format{"tiff"},
			Priority: 4,
		},
		mediaprobe.Descriptor{
			Parser:   psd.New(),
			Natures:  []mediaprobe.Nature{mediaprobe.NatureImage},
			Formats:  []mediaprobe.Format{"psd"},
			Priority: 5,
		},
		mediaprobe.Descriptor{
			Parser:   wav.New(),
			Natures:  []mediaprobe.Nature{mediaprobe.NatureAudio},
			Formats:  []mediaprobe.Format{"wav"},
			Priority: 6,
		},
		mediaprobe.Descriptor{
			Parser:   aiff.New(),
			Natures:  []mediaprobe.Nature{mediaprobe.NatureAudio},
			Formats:  []mediaprobe.Format{"aiff"},
			Priority: 7,
		},
		mediaprobe.Descriptor{
			Parser:   flac.New(),
			Natures:  []mediaprobe.Nature{mediaprobe.NatureAudio},
			Formats:  []mediaprobe.Format{"flac"},
			Priority: 8,
		},
		mediaprobe.Descriptor{
			Parser:   ogg.New(),
			Natures:  []mediaprobe.Nature{mediaprobe.NatureAudio},
			Formats:  []mediaprobe.Format{"ogg"},
			Priority: 9,
		},
		mediaprobe.Descriptor{
			Parser:   mp3.New(),
			Natures:  []mediaprobe.Nature{mediaprobe.NatureAudio},
			Formats:  []mediaprobe.Format{"mp3"},
			Priority: 10,
		},
		mediaprobe.Descriptor{
			Parser:   docx.New(),
			Natures:  []mediaprobe.Nature{mediaprobe.NatureDocument},
			Formats:  []mediaprobe.Format{"docx"},
			Priority: 11,
		},
		mediaprobe.Descriptor{
			Parser:   zip.New(),
			Natures:  []mediaprobe.Nature{mediaprobe.NatureDocument},
			Formats:  []mediaprobe.Format{"zip"},
			Priority: 12,
		},
		mediaprobe.Descriptor{
			Parser:   pdf.New(),
			Natures:  []mediaprobe.Nature{mediaprobe.NatureDocument},
			Formats:  []mediaprobe.Format{"pdf"},
			Priority: 13,
		},
	)
}
