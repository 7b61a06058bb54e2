package host

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/philipparndt/gomol/internal/platform/config"
	"github.com/philipparndt/gomol/internal/platform/logger"
	"github.com/philipparndt/gomol/internal/viewport"
	"github.com/philipparndt/gomol/pkg/engine"
	"github.com/philipparndt/gomol/pkg/molengine"
)

type fakeCanvas struct{}

func (fakeCanvas) Refresh()         {}
func (fakeCanvas) Size() (int, int) { return 640, 480 }

type fakeContainer struct{}

func (fakeContainer) SetFullScreen(bool) error { return nil }
func (fakeContainer) FullScreen() bool         { return false }

func xyz(n int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d\ncarbon chain\n", n)
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "C %.3f 0.000 0.000\n", float64(i)*1.5)
	}
	return b.String()
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func newCoordinator(t *testing.T, n int) *viewport.Coordinator {
	t.Helper()
	log := logger.Discard()
	sessions := make([]*viewport.Session, n)
	for i := range sessions {
		sessions[i] = viewport.NewSession(viewport.Options{
			Name:    fmt.Sprintf("viewport-%d", i+1),
			Factory: molengine.Factory(log),
			Engine:  engine.Config{AnimationFPS: 30},
			Logger:  log,
		})
		if err := sessions[i].Mount(context.Background(), fakeCanvas{}, fakeContainer{}); err != nil {
			t.Fatalf("Mount failed: %v", err)
		}
	}
	coord := viewport.NewCoordinator(sessions, log, nil)
	t.Cleanup(func() { _ = coord.Close(context.Background()) })
	return coord
}

func TestClassify(t *testing.T) {
	tests := []struct {
		path     string
		expected Kind
	}{
		{"protein.PDB", Topology},
		{"/data/run.gro", Topology},
		{"run.xtc", Trajectory},
		{"run.lammpstrj", Trajectory},
		{"notes.txt", Unknown},
		{"noext", Unknown},
	}
	for _, tt := range tests {
		if got := Classify(tt.path); got != tt.expected {
			t.Errorf("Classify(%s) failed: expected %v, got %v", tt.path, tt.expected, got)
		}
	}
}

func TestSort(t *testing.T) {
	files, unknown := Sort([]string{"a.xtc", "a.pdb", "readme.md", "b.gro"})

	if files.Topology != "b.gro" {
		t.Errorf("Sort failed: expected topology b.gro, got %s", files.Topology)
	}
	if files.Trajectory != "a.xtc" {
		t.Errorf("Sort failed: expected trajectory a.xtc, got %s", files.Trajectory)
	}
	if len(unknown) != 1 || unknown[0] != "readme.md" {
		t.Errorf("Sort failed: expected [readme.md] unknown, got %v", unknown)
	}
	if got := files.Paths(); len(got) != 2 {
		t.Errorf("Paths failed: expected 2 paths, got %v", got)
	}
	if !(Files{}).Empty() {
		t.Errorf("Empty failed: expected zero Files to be empty")
	}
}

func TestNextRepresentation(t *testing.T) {
	types := []engine.RepresentationType{{Tag: "cartoon"}, {Tag: "spacefill"}, {Tag: "line"}}

	tests := []struct {
		current  string
		step     int
		expected string
	}{
		{"cartoon", 1, "spacefill"},
		{"line", 1, "cartoon"},
		{"cartoon", -1, "line"},
		{"unknown", 1, "cartoon"},
	}
	for _, tt := range tests {
		if got := NextRepresentation(tt.current, types, tt.step); got != tt.expected {
			t.Errorf("NextRepresentation(%s, %d) failed: expected %s, got %s", tt.current, tt.step, tt.expected, got)
		}
	}
	if got := NextRepresentation("cartoon", nil, 1); got != "cartoon" {
		t.Errorf("NextRepresentation failed: expected cartoon without types, got %s", got)
	}
}

func TestNextColor(t *testing.T) {
	if got := NextColor(Backgrounds[len(Backgrounds)-1], Backgrounds, 1); got != Backgrounds[0] {
		t.Errorf("NextColor failed: expected wrap to %s, got %s", Backgrounds[0], got)
	}
}

func TestNotice(t *testing.T) {
	err := fmt.Errorf("%w: a load is in progress", viewport.ErrPreconditionNotMet)
	if got := Notice(1, err); !strings.HasPrefix(got, "Viewport 2: not now") {
		t.Errorf("Notice failed: expected a hint for viewport 2, got %q", got)
	}

	other := Notice(0, errors.New("boom"))
	if other != "Viewport 1: boom" {
		t.Errorf("Notice failed: expected %q, got %q", "Viewport 1: boom", other)
	}
}

func TestLoadAndDrop(t *testing.T) {
	dir := t.TempDir()
	coord := newCoordinator(t, 2)
	ctx := context.Background()

	path := writeFile(t, dir, "chain.xyz", xyz(4))
	if err := Load(ctx, coord, 1, Files{Topology: path}); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !coord.Loaded(1) || coord.Loaded(0) {
		t.Errorf("Load failed: expected only viewport 2 loaded")
	}

	notes := filepath.Join(dir, "notes.txt")
	unknown, err := Drop(ctx, coord, 0, []string{notes, path})
	if err != nil {
		t.Fatalf("Drop failed: %v", err)
	}
	if len(unknown) != 1 || unknown[0] != notes {
		t.Errorf("Drop failed: expected %s to be skipped, got %v", notes, unknown)
	}
	if state := coord.Session(0).State(); state != viewport.StateTopologyLoaded {
		t.Errorf("Drop failed: expected %v in viewport 1, got %v", viewport.StateTopologyLoaded, state)
	}

	unknown, err = Drop(ctx, coord, 0, []string{notes})
	if err != nil || len(unknown) != 1 {
		t.Errorf("Drop failed: expected only unknown files back, got %v %v", unknown, err)
	}

	if _, err := Drop(ctx, coord, 0, []string{path}); !errors.Is(err, viewport.ErrPreconditionNotMet) {
		t.Errorf("Drop failed: expected %v for a second topology, got %v", viewport.ErrPreconditionNotMet, err)
	}
}

func TestReloaderReloadsChangedFile(t *testing.T) {
	dir := t.TempDir()
	coord := newCoordinator(t, 1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	path := writeFile(t, dir, "chain.xyz", xyz(3))
	files := Files{Topology: path}
	if err := Load(ctx, coord, 0, files); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	r, err := NewReloader(ctx, coord, logger.Discard())
	if err != nil {
		t.Fatalf("NewReloader failed: %v", err)
	}
	defer r.Close()
	if err := r.Track(0, files); err != nil {
		t.Fatalf("Track failed: %v", err)
	}

	writeFile(t, dir, "chain.xyz", xyz(5))

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		snap := coord.Session(0).Snapshot()
		if snap.AtomCount == 5 && snap.State == viewport.StateTopologyLoaded {
			return
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Errorf("Reload failed: expected 5 atoms after the file changed, got %d", coord.Session(0).Snapshot().AtomCount)
}

func TestNewSessions(t *testing.T) {
	cfg := config.Config{
		Viewports:             2,
		Background:            "#102030",
		StructureColor:        "ff0000",
		DefaultRepresentation: "spacefill",
		AnimationFPS:          24,
	}
	sessions, err := NewSessions(cfg, logger.Discard(), nil)
	if err != nil {
		t.Fatalf("NewSessions failed: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("NewSessions failed: expected 2 sessions, got %d", len(sessions))
	}
	if name := sessions[1].Name(); name != "viewport-2" {
		t.Errorf("NewSessions failed: expected viewport-2, got %s", name)
	}
	snap := sessions[0].Snapshot()
	if snap.Background != "#102030" || snap.StructureColor != "#ff0000" {
		t.Errorf("NewSessions failed: expected configured colors, got %s and %s", snap.Background, snap.StructureColor)
	}

	cfg.Background = "not a color"
	if _, err := NewSessions(cfg, logger.Discard(), nil); err == nil {
		t.Errorf("NewSessions failed: expected an error for an invalid background")
	}
}
