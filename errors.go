package mediaprobe

import (
	"errors"
	"fmt"

	"github.com/dockerish/mediaprobe/internal/saferead"
)

// Sentinel errors identifying the taxonomy kinds from the design: parser-
// local failures (InsufficientData, FormatMismatch) are always swallowed by
// dispatch and converted to a nil result; infrastructure failures (the HTTP
// and resource-cap errors, InvalidInput) are surfaced to the caller
// unchanged. Callers classify with errors.Is against these sentinels.
var (
	// ErrInsufficientData means a safe-read got fewer bytes than requested.
	// It is the same sentinel internal/saferead returns, so errors.Is works
	// whether a parser wraps saferead's error or this one directly.
	ErrInsufficientData = saferead.ErrInsufficientData

	// ErrFormatMismatch means a parser's magic/structure checks failed.
	ErrFormatMismatch = errors.New("mediaprobe: format mismatch")

	// ErrResourceCapExceeded means a remote parse exceeded its request or
	// byte budget.
	ErrResourceCapExceeded = errors.New("mediaprobe: resource cap exceeded")

	// ErrInvalidInput means a bad path or an unreachable URL at the
	// DNS/connect layer.
	ErrInvalidInput = errors.New("mediaprobe: invalid input")
)

// HTTPError wraps a non-2xx/3xx HTTP response encountered by the remote
// byte source. Retriable distinguishes 5xx (might want to retry) from
// non-416 4xx (refused, not retriable).
type HTTPError struct {
	StatusCode int
	Message    string
	retriable  bool
}

func newHTTPError(status int, message string, retriable bool) *HTTPError {
	return &HTTPError{StatusCode: status, Message: message, retriable: retriable}
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("mediaprobe: http %d: %s", e.StatusCode, e.Message)
}

// Retriable reports whether the error kind is HTTPRetriable (5xx) as
// opposed to HTTPNonRetriable (4xx other than 416).
func (e *HTTPError) Retriable() bool { return e.retriable }

// Is allows errors.Is(err, ErrHTTPRetriable) / errors.Is(err, ErrHTTPNonRetriable)
// to classify an *HTTPError without the caller needing to type-assert.
func (e *HTTPError) Is(target error) bool {
	switch target {
	case ErrHTTPRetriable:
		return e.retriable
	case ErrHTTPNonRetriable:
		return !e.retriable
	default:
		return false
	}
}

// ErrHTTPRetriable and ErrHTTPNonRetriable are matched via (*HTTPError).Is;
// they are never constructed directly.
var (
	ErrHTTPRetriable    = errors.New("mediaprobe: retriable http error")
	ErrHTTPNonRetriable = errors.New("mediaprobe: non-retriable http error")
)

// isParserLocal reports whether err is a parser-local failure that dispatch
// should swallow into a nil result, as opposed to an infrastructure failure
// that must abort and propagate.
func isParserLocal(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrInsufficientData) || errors.Is(err, ErrFormatMismatch)
}
