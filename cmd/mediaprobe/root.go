package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/dockerish/mediaprobe"
)

// exitCode is set by runE before Cobra returns and read by main after
// Execute, mirroring how the teacher's plugin entrypoint translates a
// command result into a process exit status.
var exitCode int

func newRootCmd() *cobra.Command {
	var (
		all     bool
		natures string
		formats string
		digest  bool
		verbose bool
		timeout time.Duration
	)

	c := &cobra.Command{
		Use:   "mediaprobe PATH_OR_URL [PATH_OR_URL ...]",
		Short: "Identify media file formats and extract header-level metadata",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := probeOptions{
				all:     all,
				natures: mediaprobe.ParseNatures(natures),
				formats: mediaprobe.ParseFormats(formats),
				digest:  digest,
				client:  &http.Client{Timeout: timeout},
			}
			if verbose {
				log := logrus.New()
				log.SetLevel(logrus.DebugLevel)
				opts.log = log
			}

			outputs := runProbe(cmd.Context(), args, opts)

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(outputs); err != nil {
				return fmt.Errorf("encode output: %w", err)
			}

			exitCode = 1
			for _, o := range outputs {
				if o.nonEmpty() {
					exitCode = 0
					break
				}
			}
			return nil
		},
	}

	c.Flags().BoolVar(&all, "all", false, "return every matching parser's result instead of the first match")
	c.Flags().StringVar(&natures, "natures", "", "comma-separated nature filter, e.g. image,audio")
	c.Flags().StringVar(&formats, "formats", "", "comma-separated format filter, e.g. png,jpeg")
	c.Flags().BoolVar(&digest, "digest", false, "include a content digest for local inputs")
	c.Flags().BoolVarP(&verbose, "verbose", "v", false, "emit per-parse debug logging to stderr")
	c.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "HTTP client timeout for URL inputs")

	return c
}
