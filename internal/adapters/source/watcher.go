package source

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/okian/racecurve/pkg/logger"
)

const relevantOps = fsnotify.Write | fsnotify.Create | fsnotify.Remove | fsnotify.Rename

// Watcher reports which datasets changed on disk. It watches the parent
// directories so that files replaced by rename are still noticed.
type Watcher struct {
	fsw      *fsnotify.Watcher
	byPath   map[string][]string
	dirs     map[string]struct{}
	onChange func(dataset string)
	log      logger.Logger
	done     chan struct{}
	started  bool
	watched  int
}

// NewWatcher prepares a watcher for every file source of the catalog.
// onChange is called from the watcher goroutine.
func NewWatcher(cat *Catalog, onChange func(dataset string), log logger.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if log == nil {
		log = logger.Nop()
	}
	w := &Watcher{
		fsw:      fsw,
		byPath:   map[string][]string{},
		dirs:     map[string]struct{}{},
		onChange: onChange,
		log:      log,
		done:     make(chan struct{}),
	}
	for _, s := range cat.Sources() {
		fs, ok := s.(*FileSource)
		if !ok {
			continue
		}
		abs, err := filepath.Abs(fs.Path())
		if err != nil {
			_ = fsw.Close()
			return nil, fmt.Errorf("resolve %s: %w", fs.Path(), err)
		}
		w.byPath[abs] = append(w.byPath[abs], fs.Name())
		w.dirs[filepath.Dir(abs)] = struct{}{}
	}
	return w, nil
}

// Start adds the directories and begins processing events until ctx ends
// or Stop is called. A directory that cannot be watched is logged and
// skipped; its datasets are still revalidated on every request.
func (w *Watcher) Start(ctx context.Context) error {
	for dir := range w.dirs {
		if err := w.fsw.Add(dir); err != nil {
			w.log.Warn(ctx, "directory not watched", logger.String("dir", dir), logger.Error(err))
			continue
		}
		w.watched++
	}
	w.started = true
	go w.processEvents(ctx)
	return nil
}

// Stop closes the underlying watcher and waits for the event loop.
func (w *Watcher) Stop() error {
	err := w.fsw.Close()
	if w.started {
		<-w.done
	}
	return err
}

// Watched returns how many directories are being watched.
func (w *Watcher) Watched() int { return w.watched }

func (w *Watcher) processEvents(ctx context.Context) {
	defer close(w.done)
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if event.Op&relevantOps == 0 {
				continue
			}
			for _, name := range w.byPath[filepath.Clean(event.Name)] {
				w.log.Debug(ctx, "source changed", logger.String("dataset", name), logger.String("op", event.Op.String()))
				if w.onChange != nil {
					w.onChange(name)
				}
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Warn(ctx, "watcher error", logger.Error(err))
		}
	}
}
