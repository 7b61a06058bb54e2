package host

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/philipparndt/gomol/internal/viewport"
	"github.com/philipparndt/gomol/pkg/watcher"
)

const reloadDebounce = 500 * time.Millisecond

// Reloader resets and reloads a viewport when one of its files changes
type Reloader struct {
	mu      sync.Mutex
	ctx     context.Context
	coord   *viewport.Coordinator
	watcher *watcher.FileWatcher
	files   map[int]Files
	log     *slog.Logger
}

// NewReloader creates a reloader; it runs until ctx is done or Close is
// called
func NewReloader(ctx context.Context, coord *viewport.Coordinator, log *slog.Logger) (*Reloader, error) {
	fw, err := watcher.NewFileWatcher(reloadDebounce, log)
	if err != nil {
		return nil, err
	}
	fw.Start()
	return &Reloader{
		ctx:     ctx,
		coord:   coord,
		watcher: fw,
		files:   make(map[int]Files),
		log:     log,
	}, nil
}

// Track replaces the files watched for viewport i
func (r *Reloader) Track(i int, files Files) error {
	r.mu.Lock()
	old, ok := r.files[i]
	r.files[i] = files
	r.mu.Unlock()

	if ok {
		if err := r.watcher.Unwatch(old.Paths()...); err != nil {
			r.log.Warn("unwatch failed", "viewport", i, "error", err)
		}
	}
	if files.Empty() {
		return nil
	}
	return r.watcher.Watch(files.Paths(), func(path string) {
		r.log.Info("file changed, reloading", "viewport", i, "file", path)
		r.Reload(i)
	})
}

// Reload resets viewport i and loads its tracked files again
func (r *Reloader) Reload(i int) {
	r.mu.Lock()
	files := r.files[i]
	r.mu.Unlock()

	if err := r.ctx.Err(); err != nil {
		return
	}
	if err := r.coord.ResetSession(r.ctx, i); err != nil {
		r.log.Warn("reload skipped", "viewport", i, "error", err)
		return
	}
	if err := Load(r.ctx, r.coord, i, files); err != nil {
		r.log.Warn("reload failed", "viewport", i, "error", err)
	}
}

// Close stops watching
func (r *Reloader) Close() error {
	return r.watcher.Close()
}
