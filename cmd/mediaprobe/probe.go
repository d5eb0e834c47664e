package main

import (
	"context"
	"net/http"
	"os"
	"strings"

	"github.com/docker/go-units"
	"github.com/opencontainers/go-digest"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/dockerish/mediaprobe"
)

// probeOptions collects the flags newRootCmd parsed into the form runProbe
// needs, decoupling flag wiring from dispatch.
type probeOptions struct {
	all     bool
	natures []mediaprobe.Nature
	formats []mediaprobe.Format
	digest  bool
	client  *http.Client
	log     *logrus.Logger
}

// optionsEcho mirrors the options object the CLI echoes back per input, per
// spec.md §6's {source_path_or_url, options, result|results} output shapes.
type optionsEcho struct {
	Results mediaprobe.ResultsMode `json:"results"`
	Natures []mediaprobe.Nature   `json:"natures,omitempty"`
	Formats []mediaprobe.Format   `json:"formats,omitempty"`
}

// inputOutput is one element of the CLI's output array. Result is populated
// in first mode; Ambiguous/Results are populated in all mode.
type inputOutput struct {
	SourcePathOrURL string             `json:"source_path_or_url"`
	Options         optionsEcho        `json:"options"`
	Result          mediaprobe.Result  `json:"result,omitempty"`
	Ambiguous       *bool              `json:"ambiguous,omitempty"`
	Results         []mediaprobe.Result `json:"results,omitempty"`
	Digest          string             `json:"digest,omitempty"`
	Error           string             `json:"error,omitempty"`
}

func (o inputOutput) nonEmpty() bool {
	if o.Error != "" {
		return false
	}
	return o.Result != nil || len(o.Results) > 0
}

// runProbe dispatches every input concurrently, one source per goroutine,
// matching spec.md §5's "multiple parses may run concurrently in isolated
// contexts" and the teacher scheduler's errgroup-per-worker-set shape. Each
// input's own dispatch order (hinted/priority, first-match-or-all) stays
// sequential, since ordering within a single parse is meaningful.
func runProbe(ctx context.Context, inputs []string, opts probeOptions) []inputOutput {
	registry := newDefaultRegistry()
	outputs := make([]inputOutput, len(inputs))

	g, _ := errgroup.WithContext(ctx)
	for i, in := range inputs {
		i, in := i, in
		g.Go(func() error {
			outputs[i] = probeOne(registry, in, opts)
			return nil
		})
	}
	_ = g.Wait() // probeOne never returns an error; failures are recorded per-output

	return outputs
}

func probeOne(registry *mediaprobe.Registry, input string, opts probeOptions) inputOutput {
	mode := mediaprobe.ResultsFirst
	if opts.all {
		mode = mediaprobe.ResultsAll
	}

	mpOpts := mediaprobe.Options{
		Results: mode,
		Natures: opts.natures,
		Formats: opts.formats,
		Log:     opts.log,
	}

	out := inputOutput{
		SourcePathOrURL: input,
		Options: optionsEcho{
			Results: mode,
			Natures: opts.natures,
			Formats: opts.formats,
		},
	}

	var (
		results []mediaprobe.Result
		err     error
	)
	if isURL(input) {
		mpOpts.HTTPClient = opts.client
		results, err = registry.ParseHTTP(input, mpOpts)
	} else {
		if opts.log != nil {
			if info, statErr := os.Stat(input); statErr == nil {
				opts.log.WithField("size", units.HumanSize(float64(info.Size()))).Debug("probing local input")
			}
		}
		results, err = registry.ParseFileAt(input, mpOpts)
		if err == nil && opts.digest {
			out.Digest = localDigest(input)
		}
	}
	if err != nil {
		out.Error = err.Error()
		return out
	}

	if opts.all {
		ambiguous := len(results) > 1
		out.Ambiguous = &ambiguous
		out.Results = results
		return out
	}
	if len(results) > 0 {
		out.Result = results[0]
	}
	return out
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// localDigest computes a sha256 content digest of a local input. It only
// applies to local paths: re-fetching a whole remote resource just to hash
// it would defeat the bounded, range-request design of the HTTP byte
// source, so --digest is a no-op for URL inputs.
func localDigest(path string) string {
	f, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer f.Close()

	d, err := digest.Canonical.FromReader(f)
	if err != nil {
		return ""
	}
	return d.String()
}
