package mediaprobe

import "github.com/dockerish/mediaprobe/internal/mediaio"

// Parser is the capability type every format module implements: a
// filename-based dispatch hint and the actual header decode. Parser
// instances are created once at registration and reused across parses, so
// implementations must be stateless or internally re-entrant. Dispatch
// tries each candidate parser against a fresh view of the same bytes.
type Parser interface {
	// LikelyMatch is a filename-based heuristic that biases dispatch order.
	// It must never be used to exclude a parser — only to try it earlier.
	LikelyMatch(filename string) bool

	// Parse inspects src (already positioned at offset 0, already wrapped
	// in a fresh per-attempt Constrained view) and returns a typed Result,
	// or (nil, error) where error wraps ErrFormatMismatch/ErrInsufficientData
	// if the format is not recognized. Any other error is treated as an
	// infrastructure failure and aborts dispatch.
	Parse(src *mediaio.Constrained) (Result, error)
}

// Descriptor pairs a Parser with the registry metadata from §3: the
// natures and formats it can produce, and its dispatch priority (lower
// tries earlier; ties broken by registration order).
type Descriptor struct {
	Parser   Parser
	Natures  []Nature
	Formats  []Format
	Priority int
}

func (d Descriptor) hasNature(n Nature) bool {
	if len(d.Natures) == 0 {
		return true
	}
	for _, have := range d.Natures {
		if have == n {
			return true
		}
	}
	return false
}

func (d Descriptor) hasFormat(f Format) bool {
	if len(d.Formats) == 0 {
		return true
	}
	for _, have := range d.Formats {
		if have == f {
			return true
		}
	}
	return false
}

func (d Descriptor) matchesNatures(wanted []Nature) bool {
	if len(wanted) == 0 {
		return true
	}
	for _, n := range wanted {
		if d.hasNature(n) {
			return true
		}
	}
	return false
}

func (d Descriptor) matchesFormats(wanted []Format) bool {
	if len(wanted) == 0 {
		return true
	}
	for _, f := range wanted {
		if d.hasFormat(f) {
			return true
		}
	}
	return false
}
