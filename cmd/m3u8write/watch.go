package main

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	xlog "github.com/MichaelMikeJones/m3u8-parser/internal/log"
)

// watch renders the single job once, then again after each change to the
// manifest until ctx is done. Render failures are logged but do not stop
// the loop.
func (r *runner) watch(ctx context.Context) error {
	j := r.jobs[0]
	if err := r.render(j); err != nil {
		r.log.Error().Err(err).Str(xlog.FieldEvent, "watch.render_failed").Str(xlog.FieldPath, j.in).Msg("render failed")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	// Editors often replace the file, so watch the directory and filter.
	dir := filepath.Dir(j.in)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	target := filepath.Clean(j.in)

	r.log.Info().Str(xlog.FieldEvent, "watch.started").Str(xlog.FieldPath, j.in).Msg("watching manifest for changes")

	debounce := time.NewTimer(watchDebounce)
	if !debounce.Stop() {
		<-debounce.C
	}
	defer debounce.Stop()

	for {
		select {
		case <-ctx.Done():
			r.log.Info().Str(xlog.FieldEvent, "watch.stopped").Msg("watch stopped")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				r.log.Debug().Str(xlog.FieldEvent, "watch.changed").Str("op", event.Op.String()).Msg("manifest changed")
				debounce.Reset(watchDebounce)
			}

		case <-debounce.C:
			if err := r.render(j); err != nil {
				r.log.Error().Err(err).Str(xlog.FieldEvent, "watch.render_failed").Str(xlog.FieldPath, j.in).Msg("render failed")
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			r.log.Warn().Err(err).Str(xlog.FieldEvent, "watch.error").Msg("watcher error")
		}
	}
}
