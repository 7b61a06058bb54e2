package watcher

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func newTestWatcher(t *testing.T) *FileWatcher {
	t.Helper()
	fw, err := NewFileWatcher(50*time.Millisecond, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("NewFileWatcher failed: %v", err)
	}
	t.Cleanup(func() { fw.Close() })
	fw.Start()
	return fw
}

func TestWatchDebouncesWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "protein.pdb")
	other := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(path, []byte("ATOM\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	fw := newTestWatcher(t)
	var mu sync.Mutex
	var calls []string
	if err := fw.Watch([]string{path}, func(p string) {
		mu.Lock()
		calls = append(calls, p)
		mu.Unlock()
	}); err != nil {
		t.Fatalf("Watch failed: %v", err)
	}

	for i := 0; i < 3; i++ {
		os.WriteFile(path, []byte("ATOM\nATOM\n"), 0o644)
	}
	os.WriteFile(other, []byte("ignored"), 0o644)

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		mu.Lock()
		n := len(calls)
		mu.Unlock()
		if n > 0 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	time.Sleep(200 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if len(calls) != 1 {
		t.Fatalf("Watch failed: expected 1 debounced callback, got %d (%v)", len(calls), calls)
	}
	abs, _ := filepath.Abs(path)
	if calls[0] != abs {
		t.Errorf("Watch failed: expected %s, got %s", abs, calls[0])
	}
}

func TestUnwatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "traj.xtc")
	os.WriteFile(path, []byte{0}, 0o644)

	fw := newTestWatcher(t)
	called := make(chan string, 1)
	if err := fw.Watch([]string{path}, func(p string) { called <- p }); err != nil {
		t.Fatalf("Watch failed: %v", err)
	}
	if err := fw.Unwatch(path); err != nil {
		t.Fatalf("Unwatch failed: %v", err)
	}
	os.WriteFile(path, []byte{1}, 0o644)

	select {
	case p := <-called:
		t.Errorf("Unwatch failed: unexpected callback for %s", p)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatchMissingDirectory(t *testing.T) {
	fw := newTestWatcher(t)
	err := fw.Watch([]string{filepath.Join(t.TempDir(), "missing", "a.pdb")}, func(string) {})
	if err == nil {
		t.Errorf("Watch failed: expected error for a missing directory")
	}
}
