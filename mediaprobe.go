// Package mediaprobe determines a media file's format and extracts
// format-specific intrinsic metadata (dimensions, color mode, sample rate,
// duration, orientation, frame counts, ...) without decoding the media
// payload. Callers supply a local path or an HTTP(S) URL; the dispatch
// loop tries each registered parser matching the requested natures/formats
// against a fresh, bounded view of the same bytes, in priority order, and
// returns either the first match or all matches.
package mediaprobe

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/dockerish/mediaprobe/internal/mediaio"
)

// ResultsMode selects whether dispatch returns the first matching result or
// every matching result.
type ResultsMode string

const (
	ResultsFirst ResultsMode = "first"
	ResultsAll   ResultsMode = "all"
)

// Options controls a single parse_file_at / parse_http call.
type Options struct {
	// Results selects first-match (default) or all-matches mode.
	Results ResultsMode

	// Natures restricts candidate parsers to those matching at least one
	// of these natures. Empty means no restriction.
	Natures []Nature

	// Formats restricts candidate parsers to those matching at least one
	// of these formats. Empty means no restriction.
	Formats []Format

	// Headers carries HTTP request headers through to the remote backend.
	// It is accepted and silently ignored for local parses (resolving the
	// open question from the design notes: local parses do not reject an
	// Headers value, they just have no use for it).
	Headers http.Header

	// HTTPClient overrides the default HTTP client used for parse_http.
	// Connect/read timeouts belong here — the core never retries or
	// cancels a parse on its own.
	HTTPClient *http.Client

	// MaxHTTPRequests and MaxHTTPBytes override the remote backend's
	// default resource caps (10 requests / 8 MiB) for this parse.
	MaxHTTPRequests int
	MaxHTTPBytes    int64

	// Log receives per-parse diagnostic messages at Debug level. Nil
	// disables logging.
	Log *logrus.Logger
}

func (o Options) mode() ResultsMode {
	if o.Results == "" {
		return ResultsFirst
	}
	return o.Results
}

func (o Options) logger() *logrus.Entry {
	log := o.Log
	if log == nil {
		log = logrus.New()
		log.SetLevel(logrus.PanicLevel) // effectively silent when unset
	}
	return log.WithField("component", "mediaprobe")
}

// ParseFileAt opens path as a local bounded byte source and dispatches it
// against r's registered parsers.
func (r *Registry) ParseFileAt(path string, opts Options) ([]Result, error) {
	src, err := mediaio.OpenLocal(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	defer src.Close()
	return r.dispatch(src, path, opts)
}

// ParseHTTP opens url as a remote, range-fetching bounded byte source and
// dispatches it against r's registered parsers.
func (r *Registry) ParseHTTP(url string, opts Options) ([]Result, error) {
	remoteOpts := []mediaio.RemoteOption{}
	if opts.HTTPClient != nil {
		remoteOpts = append(remoteOpts, mediaio.WithHTTPClient(opts.HTTPClient))
	}
	if opts.Headers != nil {
		remoteOpts = append(remoteOpts, mediaio.WithHeaders(opts.Headers))
	}
	if opts.MaxHTTPRequests > 0 {
		remoteOpts = append(remoteOpts, mediaio.WithMaxRequests(opts.MaxHTTPRequests))
	}
	if opts.MaxHTTPBytes > 0 {
		remoteOpts = append(remoteOpts, mediaio.WithMaxBytes(opts.MaxHTTPBytes))
	}

	src := mediaio.NewRemote(url, remoteOpts...)
	defer src.Close()
	return r.dispatch(src, url, opts)
}

// dispatch implements §4.3's procedure: filter candidates, try each in
// hinted/priority order against a fresh per-parser Constrained view, and
// aggregate results per the requested mode.
func (r *Registry) dispatch(src mediaio.Source, filename string, opts Options) ([]Result, error) {
	log := opts.logger()
	candidates := r.candidates(filename, opts.Natures, opts.Formats)

	var results []Result
	for _, d := range candidates {
		if err := src.Seek(0); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		view := mediaio.NewConstrained(src)

		result, err := d.Parser.Parse(view)
		if err != nil {
			if wrapped, isInfra := classifyFailure(err); isInfra {
				log.WithError(wrapped).Debug("aborting dispatch on infrastructure failure")
				return nil, wrapped
			}
			// Parser-local failure: this parser isn't the right one.
			log.WithError(err).Debug("parser declined input")
			continue
		}
		if result == nil {
			continue
		}

		log.WithField("nature", result.ResultNature()).Debug("parser matched")
		results = append(results, result)
		if opts.mode() == ResultsFirst {
			break
		}
	}

	if opts.mode() == ResultsFirst {
		if len(results) == 0 {
			return nil, nil
		}
		return results[:1], nil
	}
	return results, nil
}

// classifyFailure reports whether err must abort dispatch and propagate to
// the caller (HTTP errors, resource caps, invalid input) as opposed to
// being swallowed into a null result (insufficient data, format mismatch).
// When it is an infrastructure failure, it returns the error translated
// into this package's typed taxonomy (HTTPError/ErrResourceCapExceeded)
// where applicable.
func classifyFailure(err error) (wrapped error, infrastructure bool) {
	if err == nil {
		return nil, false
	}
	if isParserLocal(err) {
		return err, false
	}
	var httpStatusErr *mediaio.HTTPStatusError
	if errors.As(err, &httpStatusErr) {
		retriable := httpStatusErr.StatusCode >= 500
		message := httpStatusErr.Status
		if !retriable {
			message = fmt.Sprintf("request refused: %s", httpStatusErr.Status)
		}
		return newHTTPError(httpStatusErr.StatusCode, message, retriable), true
	}
	var capErr *mediaio.CapError
	if errors.As(err, &capErr) {
		return fmt.Errorf("%w: %v", ErrResourceCapExceeded, capErr), true
	}
	// Anything else unrecognized from a parser is treated as
	// infrastructure too, since parsers are only supposed to return
	// ErrInsufficientData/ErrFormatMismatch for "not my format".
	return err, true
}
