// Package watch reports changes to a single file on disk.
package watch

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDelay is how long a file must stay quiet before a change is reported.
const DefaultDelay = 250 * time.Millisecond

// Watcher delivers the path of its file on Changes once a burst of writes settles.
// The parent directory is watched so editors that save by rename are seen.
type Watcher struct {
	path    string
	delay   time.Duration
	logger  *slog.Logger
	fs      *fsnotify.Watcher
	changes chan string
	done    chan struct{}
	wg      sync.WaitGroup
	once    sync.Once
}

// File starts watching path. A delay of zero uses DefaultDelay.
func File(path string, delay time.Duration, logger *slog.Logger) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	if delay <= 0 {
		delay = DefaultDelay
	}
	if logger == nil {
		logger = slog.Default()
	}

	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fs.Add(filepath.Dir(abs)); err != nil {
		fs.Close()
		return nil, fmt.Errorf("watch %s: %w", path, err)
	}

	w := &Watcher{
		path:    abs,
		delay:   delay,
		logger:  logger,
		fs:      fs,
		changes: make(chan string, 1),
		done:    make(chan struct{}),
	}
	w.wg.Add(1)
	go w.run()
	return w, nil
}

// Path is the absolute path being watched.
func (w *Watcher) Path() string { return w.path }

// Changes is closed by Close. At most one change is buffered; later ones coalesce.
func (w *Watcher) Changes() <-chan string { return w.changes }

func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		err = w.fs.Close()
		w.wg.Wait()
		close(w.changes)
	})
	return err
}

func (w *Watcher) run() {
	defer w.wg.Done()

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			w.logger.Debug("file event", slog.String("path", w.path), slog.String("op", event.Op.String()))
			if timer == nil {
				timer = time.NewTimer(w.delay)
				fire = timer.C
			} else {
				timer.Reset(w.delay)
			}
		case <-fire:
			select {
			case w.changes <- w.path:
			default:
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.logger.Warn("file watcher error", slog.String("path", w.path), slog.Any("error", err))
		}
	}
}
