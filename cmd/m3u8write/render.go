package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/renameio/v2"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	hls "github.com/MichaelMikeJones/m3u8-parser"
	"github.com/MichaelMikeJones/m3u8-parser/internal/config"
	xlog "github.com/MichaelMikeJones/m3u8-parser/internal/log"
)

// job pairs a manifest with its destination. An empty out means stdout.
type job struct {
	in  string
	out string
}

type runner struct {
	enc         hls.Encoder
	format      string
	concurrency int
	jobs        []job
	stdin       io.Reader
	stdout      io.Writer
	log         zerolog.Logger
}

func newRunner(cmd *cobra.Command, cfg config.Config, opts options, args []string) (*runner, error) {
	r := &runner{
		enc:         encoderFor(cfg),
		format:      strings.ToLower(cfg.Format),
		concurrency: cfg.Concurrency,
		stdin:       cmd.InOrStdin(),
		stdout:      cmd.OutOrStdout(),
		log:         xlog.WithComponent("cli"),
	}

	if opts.watch && len(args) != 1 {
		return nil, usageErr("--watch takes exactly one manifest")
	}
	if opts.watch && args[0] == "-" {
		return nil, usageErr("--watch cannot read stdin")
	}

	if opts.outDir == "" {
		if len(args) > 1 {
			return nil, usageErr("%d manifests given; use --out-dir", len(args))
		}
		r.jobs = []job{{in: args[0], out: opts.output}}
		return r, nil
	}

	seen := make(map[string]string, len(args))
	for _, in := range args {
		if in == "-" {
			return nil, usageErr("stdin cannot be combined with --out-dir")
		}
		out := filepath.Join(opts.outDir, outputName(in))
		if prev, ok := seen[out]; ok {
			return nil, usageErr("%s and %s both render to %s", prev, in, out)
		}
		seen[out] = in
		r.jobs = append(r.jobs, job{in: in, out: out})
	}
	return r, nil
}

// outputName maps master.json to master.m3u8.
func outputName(in string) string {
	base := filepath.Base(in)
	return strings.TrimSuffix(base, filepath.Ext(base)) + ".m3u8"
}

func (r *runner) run(ctx context.Context) error {
	if len(r.jobs) == 1 {
		return r.render(r.jobs[0])
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for _, j := range r.jobs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return r.render(j)
		})
	}
	return g.Wait()
}

func (r *runner) render(j job) error {
	m, format, err := r.decode(j.in)
	if err != nil {
		return err
	}
	text, err := r.enc.Marshal(m)
	if err != nil {
		return fmt.Errorf("%s: %w", j.in, err)
	}
	if err := r.write(j.out, text); err != nil {
		return err
	}
	r.log.Debug().
		Str(xlog.FieldEvent, "playlist.written").
		Str(xlog.FieldPath, j.in).
		Stringer(xlog.FieldFormat, format).
		Str(xlog.FieldOutput, destName(j.out)).
		Int("bytes", len(text)).
		Msg("rendered manifest")
	return nil
}

func (r *runner) decode(in string) (*hls.Manifest, hls.Format, error) {
	format, err := r.formatOf(in)
	if err != nil {
		return nil, 0, err
	}
	if in == "-" {
		m, err := hls.Decode(r.stdin, format)
		if err != nil {
			return nil, 0, fmt.Errorf("stdin: %w", err)
		}
		return m, format, nil
	}

	f, err := os.Open(in) // #nosec G304 -- operator-supplied path
	if err != nil {
		return nil, 0, err
	}
	defer func() { _ = f.Close() }()
	m, err := hls.Decode(f, format)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", in, err)
	}
	return m, format, nil
}

// formatOf resolves "auto" by file extension. Stdin defaults to JSON.
func (r *runner) formatOf(in string) (hls.Format, error) {
	if r.format != "auto" {
		return hls.ParseFormat(r.format)
	}
	if in == "-" {
		return hls.JSON, nil
	}
	f, err := hls.FormatOf(in)
	if err != nil {
		return 0, fmt.Errorf("%s: %w (set --format)", in, err)
	}
	return f, nil
}

func (r *runner) write(out, text string) error {
	if out == "" {
		_, err := io.WriteString(r.stdout, text)
		return err
	}
	return writeAtomic(out, text, r.log)
}

// writeAtomic replaces path in one rename so players polling the playlist
// never observe a partial file.
func writeAtomic(path, text string, log zerolog.Logger) error {
	pending, err := renameio.NewPendingFile(path, renameio.WithPermissions(0o644))
	if err != nil {
		return fmt.Errorf("create pending playlist: %w", err)
	}
	defer func() {
		if err := pending.Cleanup(); err != nil {
			log.Debug().Err(err).Str(xlog.FieldOutput, path).Msg("cleanup pending playlist")
		}
	}()

	if _, err := io.WriteString(pending, text); err != nil {
		return fmt.Errorf("write playlist: %w", err)
	}
	if err := pending.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}

func destName(out string) string {
	if out == "" {
		return "stdout"
	}
	return out
}
