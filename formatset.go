package mediaprobe

import "strings"

// ParseNatures splits a comma-separated --natures CLI value into a Nature
// slice. Blank segments are dropped; an empty input yields a nil slice
// (meaning "no restriction", per Options.Natures).
func ParseNatures(csv string) []Nature {
	var out []Nature
	for _, part := range strings.Split(csv, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, Nature(part))
	}
	return out
}

// ParseFormats splits a comma-separated --formats CLI value into a Format
// slice, with the same blank-segment and empty-input handling as
// ParseNatures.
func ParseFormats(csv string) []Format {
	var out []Format
	for _, part := range strings.Split(csv, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, Format(part))
	}
	return out
}
