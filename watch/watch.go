// Package watch regenerates the documentation whenever a library source
// file changes.
package watch

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/teranos/libref/errors"
	"github.com/teranos/libref/logger"
	"github.com/teranos/libref/pipeline"
)

// RunFunc receives the outcome of every regeneration, including the first.
type RunFunc func(*pipeline.Report, error)

// Watcher drives a pipeline from filesystem events. Bursts of events are
// collapsed into one regeneration after the debounce period, and
// regenerations never overlap.
type Watcher struct {
	p        *pipeline.Pipeline
	fsw      *fsnotify.Watcher
	debounce time.Duration
	logger   *zap.SugaredLogger

	runMu sync.Mutex

	mu      sync.Mutex
	timer   *time.Timer
	onRun   []RunFunc
	watched map[string]bool
}

// New creates a watcher for p. The debounce period comes from
// watch.debounce_ms.
func New(p *pipeline.Pipeline) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "create fsnotify watcher")
	}
	debounce := time.Duration(p.Config().Watch.DebounceMS) * time.Millisecond
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}
	return &Watcher{
		p:        p,
		fsw:      fsw,
		debounce: debounce,
		logger:   logger.ComponentLogger("watch"),
		watched:  map[string]bool{},
	}, nil
}

// OnRun registers fn to be called after each regeneration.
func (w *Watcher) OnRun(fn RunFunc) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onRun = append(w.onRun, fn)
}

// Run regenerates once, then watches the library directory (and the global
// attributes file) until ctx is cancelled. Remote sources cannot be
// watched.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsw.Close()

	if _, err := w.regenerate(ctx, false); err != nil {
		return err
	}

	lib := w.p.Library()
	if lib == nil {
		return errors.New("library was not opened")
	}
	if lib.Source.Fetched {
		return errors.WithHintf(errors.Wrapf(errors.ErrUnsupportedSource, "cannot watch fetched source %s", lib.Source.Input),
			"point library.source at a local checkout to use watch")
	}
	if err := w.addTree(lib.Root()); err != nil {
		return err
	}
	if cfg := w.p.Config(); cfg.Library.AttributesFile != "" {
		if abs, err := filepath.Abs(cfg.Path(cfg.Library.AttributesFile)); err == nil {
			w.add(filepath.Dir(abs))
		}
	}

	w.logger.Infow("Watching library for changes",
		logger.FieldDir, lib.Root(),
		logger.FieldCount, len(w.watched),
		logger.FieldDurationMS, w.debounce.Milliseconds(),
	)

	for {
		select {
		case <-ctx.Done():
			w.stopTimer()
			return nil

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if event.Op&fsnotify.Create == fsnotify.Create {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.addTree(event.Name); err != nil {
						w.logger.Warnw("Cannot watch new directory", logger.FieldDir, event.Name, logger.FieldError, err)
					}
					continue
				}
			}
			if !Relevant(event) {
				continue
			}
			w.logger.Debugw("Source changed", logger.FieldFile, event.Name, "op", event.Op.String())
			w.schedule(ctx)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warnw("Watcher error", logger.FieldError, err)
		}
	}
}

// Relevant reports whether event should trigger a regeneration: a write,
// creation, removal or rename of a Python file that is not an editor
// backup.
func Relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}
	base := filepath.Base(event.Name)
	if strings.HasPrefix(base, ".") || strings.HasSuffix(base, "~") {
		return false
	}
	return filepath.Ext(base) == ".py"
}

func (w *Watcher) schedule(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		if ctx.Err() != nil {
			return
		}
		if _, err := w.regenerate(ctx, true); err != nil {
			w.logger.Errorw("Regeneration failed", logger.FieldError, err)
		}
	})
}

func (w *Watcher) stopTimer() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
}

// regenerate runs the pipeline, rescanning the library first when reload
// is set. The rescan happens under runMu so it never lands inside a run.
func (w *Watcher) regenerate(ctx context.Context, reload bool) (*pipeline.Report, error) {
	w.runMu.Lock()
	defer w.runMu.Unlock()

	if reload {
		w.p.Reload()
	}
	report, err := w.p.Run(ctx, pipeline.FullRun.ForConfig(w.p.Config()))
	if err == nil {
		w.logger.Infow("Regenerated",
			logger.FieldRunID, report.RunID,
			logger.FieldCount, report.Pages(),
			logger.FieldDurationMS, report.Duration.Milliseconds(),
		)
	}

	w.mu.Lock()
	callbacks := append([]RunFunc(nil), w.onRun...)
	w.mu.Unlock()
	for _, fn := range callbacks {
		fn(report, err)
	}
	return report, err
}

func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		name := d.Name()
		if path != root && (strings.HasPrefix(name, ".") || name == "__pycache__") {
			return filepath.SkipDir
		}
		w.add(path)
		return nil
	})
}

func (w *Watcher) add(dir string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.watched[dir] {
		return
	}
	if err := w.fsw.Add(dir); err != nil {
		w.logger.Warnw("Cannot watch directory", logger.FieldDir, dir, logger.FieldError, err)
		return
	}
	w.watched[dir] = true
}
