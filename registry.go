package mediaprobe

import "sort"

// Registry is an immutable-after-construction table of parser descriptors.
// It is built once, at process composition time (see cmd/mediaprobe/registry.go
// for the concrete set of parsers this module ships), rather than through
// parsers self-registering from package init() functions — this keeps the
// dependency graph explicit rather than relying on implicit side effects.
//
// A Registry is safe for concurrent use by multiple simultaneous parses: it
// is read-only after New returns.
type Registry struct {
	descriptors []Descriptor
}

// New builds a Registry from the given descriptors. Registration order is
// preserved and used as the dispatch tie-breaker after priority.
func New(descriptors ...Descriptor) *Registry {
	cp := make([]Descriptor, len(descriptors))
	copy(cp, descriptors)
	return &Registry{descriptors: cp}
}

// candidates returns the descriptors matching natures/formats, split into
// the filename-hinted band and the rest, each ordered by priority then by
// original registration order. Hinted parsers are tried first; a
// non-matching hint never excludes a parser, per §4.3 step 3.
func (r *Registry) candidates(filename string, natures []Nature, formats []Format) []Descriptor {
	var hinted, rest []Descriptor

	for _, d := range r.descriptors {
		if !d.matchesNatures(natures) || !d.matchesFormats(formats) {
			continue
		}
		if d.Parser.LikelyMatch(filename) {
			hinted = append(hinted, d)
		} else {
			rest = append(rest, d)
		}
	}

	// sort.SliceStable preserves registration order among equal priorities,
	// which is the documented tie-break.
	sortByPriority(hinted)
	sortByPriority(rest)

	return append(hinted, rest...)
}

func sortByPriority(entries []Descriptor) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Priority < entries[j].Priority
	})
}
