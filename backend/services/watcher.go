package services

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/b0bbywan/go-portal-doctor/logger"
)

// watcher invalidates the unit cache when watched units start or stop.
// systemd drops an invocation:<unit> symlink in $XDG_RUNTIME_DIR/systemd/units
// for every running user unit.
type watcher struct {
	backend *Backend
	ctx     context.Context
	cancel  context.CancelFunc
	names   map[string]bool
}

func newWatcher(b *Backend) *watcher {
	ctx, cancel := context.WithCancel(b.ctx)
	names := make(map[string]bool)
	for _, name := range b.watched() {
		names[name] = true
	}
	return &watcher{
		backend: b,
		ctx:     ctx,
		cancel:  cancel,
		names:   names,
	}
}

func (w *watcher) start() error {
	unitsDir := filepath.Join(w.backend.config.XDGRuntimeDir, "systemd", "units")
	if _, err := os.Stat(unitsDir); err != nil {
		return err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := fsw.Add(unitsDir); err != nil {
		if closeErr := fsw.Close(); closeErr != nil {
			logger.Debug("[services] failed to close watcher: %v", closeErr)
		}
		return err
	}

	logger.Info("[services] watching %s", unitsDir)
	go w.loop(fsw)
	return nil
}

func (w *watcher) stop() {
	w.cancel()
}

func (w *watcher) loop(fsw *fsnotify.Watcher) {
	defer func() {
		if err := fsw.Close(); err != nil {
			logger.Warn("[services] failed to close watcher: %v", err)
		}
	}()

	for {
		select {
		case <-w.ctx.Done():
			return
		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			w.dispatch(event)
		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			logger.Error("[services] watcher error: %v", err)
		}
	}
}

func (w *watcher) dispatch(event fsnotify.Event) {
	name, ok := unitFromInvocation(filepath.Base(event.Name))
	if !ok || !w.names[name] {
		return
	}

	switch {
	case event.Has(fsnotify.Create):
		logger.Debug("[services] %s starting", name)
	case event.Has(fsnotify.Remove):
		logger.Debug("[services] %s stopping", name)
	default:
		return
	}

	if _, err := w.backend.RefreshUnit(w.ctx, name); err != nil {
		logger.Debug("[services] failed to refresh %s: %v", name, err)
		w.backend.InvalidateCache()
	}
}

// unitFromInvocation extracts the unit name from an invocation:<unit> entry.
func unitFromInvocation(basename string) (string, bool) {
	const prefix = "invocation:"
	if !strings.HasPrefix(basename, prefix) || len(basename) == len(prefix) {
		return "", false
	}
	return basename[len(prefix):], true
}
