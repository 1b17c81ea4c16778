package ingest

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

type WatchConfig struct {
	Roots       []string      // directories to watch (recursive)
	InitialScan bool          // emit files already present
	Debounce    time.Duration // coalesce write bursts per file
	SkipHidden  bool
}

// StartWatcher emits paths of supported documents created or written under
// the roots. Both channels close when ctx ends.
func StartWatcher(ctx context.Context, cfg WatchConfig, logger *slog.Logger) (<-chan string, <-chan error, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if len(cfg.Roots) == 0 {
		return nil, nil, errors.New("no roots provided")
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		logger.Error("watch.create.failed", "err", err)
		return nil, nil, err
	}

	var initial []string
	for _, root := range cfg.Roots {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			if cfg.SkipHidden && path != root && IsHidden(path) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if d.IsDir() {
				return w.Add(path)
			}
			if cfg.InitialScan && AllowedExt(filepath.Ext(path)) {
				initial = append(initial, path)
			}
			return nil
		})
		if err != nil {
			logger.Error("watch.root.failed", "root", root, "err", err)
			_ = w.Close()
			return nil, nil, err
		}
	}

	evCh := make(chan string, 256)
	errCh := make(chan error, 1)
	go watchLoop(ctx, w, cfg, logger, initial, evCh, errCh)
	return evCh, errCh, nil
}

func watchLoop(ctx context.Context, w *fsnotify.Watcher, cfg WatchConfig, logger *slog.Logger, initial []string, evCh chan<- string, errCh chan<- error) {
	defer close(evCh)
	defer close(errCh)
	defer w.Close()

	emit := func(p string) bool {
		select {
		case evCh <- p:
			return true
		case <-ctx.Done():
			return false
		}
	}
	for _, p := range initial {
		if !emit(p) {
			return
		}
	}

	// path -> time of last event; flushed once quiet for Debounce
	pending := map[string]time.Time{}
	tick := time.NewTicker(tickInterval(cfg.Debounce))
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-w.Events:
			if !ok {
				return
			}
			if e.Has(fsnotify.Create) {
				// new subdirectories join the watch; Add fails harmlessly for files
				_ = w.Add(e.Name)
			}
			if cfg.SkipHidden && IsHidden(e.Name) {
				continue
			}
			if !AllowedExt(filepath.Ext(e.Name)) || !e.Has(fsnotify.Create) && !e.Has(fsnotify.Write) {
				continue
			}
			if cfg.Debounce <= 0 {
				if !emit(e.Name) {
					return
				}
				continue
			}
			pending[e.Name] = time.Now()
		case now := <-tick.C:
			for p, last := range pending {
				if now.Sub(last) < cfg.Debounce {
					continue
				}
				delete(pending, p)
				if !emit(p) {
					return
				}
			}
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			logger.Warn("watch.error", "err", err)
			select {
			case errCh <- err:
			default:
			}
		}
	}
}

func tickInterval(debounce time.Duration) time.Duration {
	if debounce <= 0 {
		return time.Second
	}
	if d := debounce / 4; d >= 10*time.Millisecond {
		return d
	}
	return 10 * time.Millisecond
}
