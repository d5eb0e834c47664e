package mediaio

import (
	"fmt"
	"io"
	"net/http"
)

// HTTPStatusError is returned by RemoteSource.Read when the server responds
// with a status this package cannot treat as a successful or an empty-range
// read. The caller (the mediaprobe dispatch loop) is expected to classify
// it into a retriable/non-retriable infrastructure failure.
type HTTPStatusError struct {
	StatusCode int
	Status     string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("mediaio: unexpected http status %s", e.Status)
}

// RemoteSource fetches byte ranges from an HTTP(S) URL on demand. It learns
// the object's total size from a Content-Range header on the first
// response that carries one, and enforces per-parse caps on the number of
// requests issued and the number of bytes delivered.
//
// Requests are issued one at a time, in order: each Read(n) fetches the
// range starting at the current position.
type RemoteSource struct {
	url     string
	headers http.Header
	client  *http.Client

	pos  int64
	size int64 // -1 until learned

	maxRequests int
	maxBytes    int64
	requests    int
	bytesRead   int64
}

// RemoteOption configures a RemoteSource.
type RemoteOption func(*RemoteSource)

// WithHTTPClient overrides the default *http.Client (which has no timeout
// configured; callers should normally supply one with connect/read
// deadlines set, since the core never retries or cancels on its own).
func WithHTTPClient(c *http.Client) RemoteOption {
	return func(r *RemoteSource) { r.client = c }
}

// WithHeaders sets additional request headers sent with every range
// request (e.g. Authorization).
func WithHeaders(h http.Header) RemoteOption {
	return func(r *RemoteSource) {
		if h == nil {
			return
		}
		r.headers = h.Clone()
	}
}

// WithMaxRequests overrides the default cap of 10 HTTP requests per parse.
func WithMaxRequests(n int) RemoteOption {
	return func(r *RemoteSource) { r.maxRequests = n }
}

// WithMaxBytes overrides the default cap of a few MB of total bytes read
// per parse.
func WithMaxBytes(n int64) RemoteOption {
	return func(r *RemoteSource) { r.maxBytes = n }
}

const (
	defaultMaxRequests = 10
	defaultMaxBytes    = 8 << 20 // 8 MiB
)

// NewRemote constructs a RemoteSource for url. No request is made until the
// first Read or Size call.
func NewRemote(url string, opts ...RemoteOption) *RemoteSource {
	r := &RemoteSource{
		url:         url,
		client:      http.DefaultClient,
		size:        -1,
		maxRequests: defaultMaxRequests,
		maxBytes:    defaultMaxBytes,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Read implements Source. It issues GET url with a Range header covering
// [pos, pos+len(p)-1], classifies the response per the documented status
// rules, and advances pos by the number of bytes delivered.
func (r *RemoteSource) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if err := r.checkCaps(int64(len(p))); err != nil {
		return 0, err
	}

	req, err := http.NewRequest(http.MethodGet, r.url, nil)
	if err != nil {
		return 0, fmt.Errorf("mediaio: build request: %w", err)
	}
	for k, vv := range r.headers {
		for _, v := range vv {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Range", fmt.Sprintf("bytes=%d-%d", r.pos, r.pos+int64(len(p))-1))

	r.requests++
	resp, err := r.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("mediaio: request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusPartialContent:
		if s, _, total, ok := parseContentRange(resp.Header.Get("Content-Range")); ok && r.size < 0 {
			_ = s
			r.size = total
		}
		return r.deliver(resp.Body, p)

	case resp.StatusCode == http.StatusOK:
		if _, _, total, ok := parseContentRange(resp.Header.Get("Content-Range")); ok && r.size < 0 {
			r.size = total
		}
		n, err := r.deliver(resp.Body, p)
		return n, err

	case resp.StatusCode == http.StatusRequestedRangeNotSatisfiable:
		// Empty/absent read, propagated as a short read. Never overwrite a
		// previously learned size.
		return 0, nil

	default:
		// Any other status (4xx/5xx or an unexpected 1xx/3xx) is an
		// infrastructure failure, not a format-identity signal. The caller
		// classifies retriable (5xx) vs non-retriable (4xx) from StatusCode.
		return 0, &HTTPStatusError{StatusCode: resp.StatusCode, Status: resp.Status}
	}
}

func (r *RemoteSource) deliver(body io.Reader, p []byte) (int, error) {
	n, err := io.ReadFull(body, p)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return n, fmt.Errorf("mediaio: read body: %w", err)
	}
	r.pos += int64(n)
	r.bytesRead += int64(n)
	return n, nil
}

func (r *RemoteSource) checkCaps(want int64) error {
	if r.requests >= r.maxRequests {
		return &CapError{Kind: "requests", Limit: int64(r.maxRequests), Used: int64(r.requests)}
	}
	if r.bytesRead+want > r.maxBytes {
		return &CapError{Kind: "bytes", Limit: r.maxBytes, Used: r.bytesRead}
	}
	return nil
}

// CapError indicates a resource cap (max HTTP requests or max bytes read)
// was exceeded for the current parse.
type CapError struct {
	Kind  string // "requests" or "bytes"
	Limit int64
	Used  int64
}

func (e *CapError) Error() string {
	return fmt.Sprintf("mediaio: %s cap exceeded (used %d, limit %d)", e.Kind, e.Used, e.Limit)
}

func (r *RemoteSource) Seek(offset int64) error {
	if offset < 0 {
		return fmt.Errorf("mediaio: negative seek offset %d", offset)
	}
	if r.size >= 0 && offset > r.size {
		return fmt.Errorf("mediaio: seek past size: %d (size %d)", offset, r.size)
	}
	r.pos = offset
	return nil
}

func (r *RemoteSource) Pos() int64 { return r.pos }

func (r *RemoteSource) Size() (int64, error) {
	if r.size < 0 {
		return 0, ErrSizeUnknown
	}
	return r.size, nil
}

func (r *RemoteSource) Close() error { return nil }

// RequestCount and BytesRead expose read-only counters of the requests
// issued and bytes delivered so far; they never affect dispatch semantics.
func (r *RemoteSource) RequestCount() int { return r.requests }
func (r *RemoteSource) BytesRead() int64  { return r.bytesRead }
