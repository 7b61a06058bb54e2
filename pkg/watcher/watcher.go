// Package watcher reports changes of molecule files on disk so a viewport can
// reload them.
package watcher

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// FileWatcher calls back once per burst of writes to a watched file. The
// parent directories are watched so files replaced by rename are seen too.
type FileWatcher struct {
	watcher  *fsnotify.Watcher
	log      *slog.Logger
	mu       sync.Mutex
	files    map[string]func(string)
	dirs     map[string]int
	timers   map[string]*time.Timer
	debounce time.Duration
	done     chan struct{}
}

// NewFileWatcher creates a watcher that waits debounce after the last event
// before calling back
func NewFileWatcher(debounce time.Duration, log *slog.Logger) (*FileWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if log == nil {
		log = slog.Default()
	}

	return &FileWatcher{
		watcher:  w,
		log:      log,
		files:    make(map[string]func(string)),
		dirs:     make(map[string]int),
		timers:   make(map[string]*time.Timer),
		debounce: debounce,
		done:     make(chan struct{}),
	}, nil
}

// Watch adds files; callback receives the absolute path of a changed file
func (fw *FileWatcher) Watch(files []string, callback func(string)) error {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	for _, file := range files {
		abs, err := filepath.Abs(file)
		if err != nil {
			return fmt.Errorf("failed to resolve path %s: %w", file, err)
		}
		if _, ok := fw.files[abs]; ok {
			fw.files[abs] = callback
			continue
		}

		dir := filepath.Dir(abs)
		if fw.dirs[dir] == 0 {
			if err := fw.watcher.Add(dir); err != nil {
				return fmt.Errorf("failed to watch %s: %w", dir, err)
			}
		}
		fw.dirs[dir]++
		fw.files[abs] = callback
		fw.log.Debug("watching file", "path", abs)
	}
	return nil
}

// Unwatch stops reporting changes of the given files
func (fw *FileWatcher) Unwatch(files ...string) error {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	for _, file := range files {
		abs, err := filepath.Abs(file)
		if err != nil {
			return fmt.Errorf("failed to resolve path %s: %w", file, err)
		}
		if _, ok := fw.files[abs]; !ok {
			continue
		}
		delete(fw.files, abs)
		if t, ok := fw.timers[abs]; ok {
			t.Stop()
			delete(fw.timers, abs)
		}

		dir := filepath.Dir(abs)
		fw.dirs[dir]--
		if fw.dirs[dir] == 0 {
			delete(fw.dirs, dir)
			if err := fw.watcher.Remove(dir); err != nil {
				return fmt.Errorf("failed to unwatch %s: %w", dir, err)
			}
		}
	}
	return nil
}

// Start processes events until Close
func (fw *FileWatcher) Start() {
	go func() {
		defer close(fw.done)
		for {
			select {
			case event, ok := <-fw.watcher.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
					fw.handleFileChange(event.Name)
				}

			case err, ok := <-fw.watcher.Errors:
				if !ok {
					return
				}
				fw.log.Warn("watcher error", "error", err)
			}
		}
	}()
}

func (fw *FileWatcher) handleFileChange(path string) {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	path = filepath.Clean(path)
	callback, ok := fw.files[path]
	if !ok {
		return
	}
	if t, ok := fw.timers[path]; ok {
		t.Stop()
	}
	fw.timers[path] = time.AfterFunc(fw.debounce, func() {
		fw.log.Info("file changed", "path", path)
		callback(path)
	})
}

// Close stops the watcher and pending callbacks
func (fw *FileWatcher) Close() error {
	fw.mu.Lock()
	for _, t := range fw.timers {
		t.Stop()
	}
	fw.timers = make(map[string]*time.Timer)
	fw.mu.Unlock()
	return fw.watcher.Close()
}
