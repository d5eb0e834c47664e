package mediaio

import (
	"strconv"
	"strings"
)

// parseContentRange parses a Content-Range header value. The standard form
// is "bytes start-end/total", but per §4.1 a bare "start-end/total" (no
// "bytes " prefix) is honored too. It returns (start, end, total, ok). When
// total is unknown ("*"), total is -1. Ported from the header-parsing
// helpers used to support resumable and parallel HTTP range transports
// elsewhere in this codebase's lineage; trimmed here to the one shape the
// remote byte source needs.
func parseContentRange(h string) (start, end, total int64, ok bool) {
	if h == "" {
		return 0, -1, -1, false
	}
	body := strings.ToLower(strings.TrimSpace(h))
	body = strings.TrimPrefix(body, "bytes ")
	body = strings.TrimSpace(body)
	seTotal := strings.SplitN(body, "/", 2)
	if len(seTotal) != 2 {
		return 0, -1, -1, false
	}
	se := strings.SplitN(strings.TrimSpace(seTotal[0]), "-", 2)
	if len(se) != 2 {
		return 0, -1, -1, false
	}
	s, err1 := strconv.ParseInt(strings.TrimSpace(se[0]), 10, 64)
	e, err2 := strconv.ParseInt(strings.TrimSpace(se[1]), 10, 64)
	totalStr := strings.TrimSpace(seTotal[1])
	t := int64(-1)
	var err3 error
	if totalStr != "*" {
		t, err3 = strconv.ParseInt(totalStr, 10, 64)
	}
	if err1 != nil || err2 != nil || (totalStr != "*" && err3 != nil) {
		return 0, -1, -1, false
	}
	return s, e, t, true
}
