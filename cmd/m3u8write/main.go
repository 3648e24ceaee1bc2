// Command m3u8write renders JSON or YAML manifests as m3u8 playlists.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	hls "github.com/MichaelMikeJones/m3u8-parser"
	"github.com/MichaelMikeJones/m3u8-parser/internal/config"
	xlog "github.com/MichaelMikeJones/m3u8-parser/internal/log"
)

// watchDebounce coalesces the burst of events editors emit on save.
var watchDebounce = 250 * time.Millisecond

type options struct {
	output            string
	outDir            string
	format            string
	configPath        string
	logLevel          string
	strict            bool
	rfcClosedCaptions bool
	watch             bool
	concurrency       int
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var opts options
	def := config.Default()

	cmd := &cobra.Command{
		Use:   "m3u8write [flags] manifest...",
		Short: "Render HLS manifests as m3u8 playlists",
		Long: `m3u8write reads manifests in JSON or YAML form and writes the
matching m3u8 playlist. A single manifest goes to stdout unless -o is given;
several manifests need --out-dir and each becomes <name>.m3u8 there.
Use "-" to read a manifest from stdin.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			applyFlags(cmd, &cfg, opts)
			if err := cfg.Validate(); err != nil {
				return err
			}

			xlog.Configure(xlog.Config{Level: cfg.LogLevel, Output: cmd.ErrOrStderr()})
			r, err := newRunner(cmd, cfg, opts, args)
			if err != nil {
				return err
			}
			if opts.watch {
				return r.watch(cmd.Context())
			}
			return r.run(cmd.Context())
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.output, "output", "o", "", "write the playlist to this file instead of stdout")
	f.StringVar(&opts.outDir, "out-dir", "", "write one <name>.m3u8 per manifest into this directory")
	f.StringVar(&opts.format, "format", def.Format, "manifest format: json, yaml or auto (by extension)")
	f.StringVar(&opts.configPath, "config", "", "YAML configuration file")
	f.StringVar(&opts.logLevel, "log-level", def.LogLevel, "log level (debug, info, warn, error)")
	f.BoolVar(&opts.strict, "strict", def.Strict, "validate manifests and fail instead of writing malformed output")
	f.BoolVar(&opts.rfcClosedCaptions, "rfc-closed-captions", def.RFCClosedCaptions, "write CLOSED-CAPTIONS=NONE unquoted")
	f.BoolVar(&opts.watch, "watch", false, "re-render whenever the manifest changes")
	f.IntVar(&opts.concurrency, "concurrency", def.Concurrency, "manifests rendered in parallel")
	cmd.MarkFlagsMutuallyExclusive("output", "out-dir")

	return cmd
}

// applyFlags lets explicitly set flags win over the file and environment.
func applyFlags(cmd *cobra.Command, cfg *config.Config, opts options) {
	f := cmd.Flags()
	if f.Changed("log-level") {
		cfg.LogLevel = opts.logLevel
	}
	if f.Changed("format") {
		cfg.Format = opts.format
	}
	if f.Changed("strict") {
		cfg.Strict = opts.strict
	}
	if f.Changed("rfc-closed-captions") {
		cfg.RFCClosedCaptions = opts.rfcClosedCaptions
	}
	if f.Changed("concurrency") {
		cfg.Concurrency = opts.concurrency
	}
}

var errUsage = errors.New("usage")

func usageErr(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", errUsage, fmt.Sprintf(format, args...))
}

func encoderFor(cfg config.Config) hls.Encoder {
	l := xlog.WithComponent("encoder")
	return hls.Encoder{
		Strict:            cfg.Strict,
		RFCClosedCaptions: cfg.RFCClosedCaptions,
		Logger:            &l,
	}
}
