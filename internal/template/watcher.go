package template

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads the registry whenever a template file in its directory
// changes. Bursts of events (editor save-and-rename, bulk copies) are
// coalesced into a single reload per debounce window. Watch blocks until ctx
// is cancelled.
func (r *Registry) Watch(ctx context.Context, debounce time.Duration) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		r.logger.Error("registry.watch.create_failed", "error", err)
		return err
	}
	defer w.Close()

	if err := w.Add(r.dir); err != nil {
		r.logger.Error("registry.watch.add_failed", "dir", r.dir, "error", err)
		return err
	}
	r.logger.Info("registry.watch.start", "dir", r.dir, "debounce", debounce.String())

	var timer *time.Timer
	reload := func() {
		r.Reload()
		r.logger.Info("registry.watch.reloaded", "templates", r.Len())
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case e, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !isTemplateFile(filepath.Base(e.Name)) {
				continue
			}
			if e.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			if debounce > 0 {
				if timer != nil {
					timer.Stop()
				}
				timer = time.AfterFunc(debounce, reload)
			} else {
				reload()
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			r.logger.Error("registry.watch.error", "error", err)
		}
	}
}
