// Package filewatch notifies about changes to a fixed set of files.
//
// Editors and git replace files by writing a temporary file and renaming it
// over the target, which drops a watch placed on the file itself. The
// watcher therefore watches each file's parent directory and filters events
// by name. Bursts of events are coalesced into a single Change after a
// debounce window.
package filewatch

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/arthur-debert/branchtint/pkg/logging"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// DefaultDebounce is the coalescing window used when Options leaves it unset
const DefaultDebounce = 150 * time.Millisecond

// Change lists the watched files touched during one debounce window
type Change struct {
	Paths []string
	Time  time.Time
}

// Options configures a Watcher
type Options struct {
	// Debounce is the quiet period before a Change is emitted
	Debounce time.Duration

	// Name identifies the watcher in logs
	Name string
}

// Watcher watches a set of files through their parent directories
type Watcher struct {
	watcher  *fsnotify.Watcher
	files    map[string]struct{}
	debounce time.Duration
	changes  chan Change
	logger   zerolog.Logger

	closeOnce sync.Once
}

// New creates a watcher for files. Files whose parent directory does not
// exist are skipped with a debug log; at least one directory must be
// watchable.
func New(files []string, opts Options) (*Watcher, error) {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	name := opts.Name
	if name == "" {
		name = "filewatch"
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		watcher:  fw,
		files:    make(map[string]struct{}),
		debounce: opts.Debounce,
		changes:  make(chan Change, 1),
		logger:   logging.GetLogger(name),
	}

	dirs := make(map[string]struct{})
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			continue
		}
		w.files[abs] = struct{}{}
		dirs[filepath.Dir(abs)] = struct{}{}
	}

	watched := 0
	for dir := range dirs {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			w.logger.Debug().Str("dir", dir).Msg("Directory missing, not watching")
			continue
		}
		if err := fw.Add(dir); err != nil {
			w.logger.Warn().Err(err).Str("dir", dir).Msg("Failed to watch directory")
			continue
		}
		watched++
	}

	if watched == 0 {
		_ = fw.Close()
		return nil, os.ErrNotExist
	}

	return w, nil
}

// Changes returns the channel Change values are delivered on. The channel is
// closed when Run returns.
func (w *Watcher) Changes() <-chan Change {
	return w.changes
}

// Run processes filesystem events until ctx is cancelled or the watcher is
// closed. It should be run in its own goroutine.
func (w *Watcher) Run(ctx context.Context) error {
	defer close(w.changes)
	defer w.Close()

	pending := make(map[string]struct{})
	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			w.logger.Trace().Str("path", event.Name).Str("op", event.Op.String()).Msg("File event")
			pending[event.Name] = struct{}{}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}
			timerC = timer.C

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn().Err(err).Msg("Watcher error")

		case <-timerC:
			timerC = nil
			change := Change{Paths: make([]string, 0, len(pending)), Time: time.Now()}
			for p := range pending {
				change.Paths = append(change.Paths, p)
			}
			sort.Strings(change.Paths)
			clear(pending)

			select {
			case w.changes <- change:
			case <-ctx.Done():
				return nil
			}
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Rename) && !event.Has(fsnotify.Remove) {
		return false
	}
	abs, err := filepath.Abs(event.Name)
	if err != nil {
		return false
	}
	_, ok := w.files[abs]
	return ok
}

// Close stops watching and releases resources. Safe to call multiple times.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		err = w.watcher.Close()
	})
	return err
}
