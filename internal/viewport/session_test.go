package viewport

import (
	"context"
	"encoding/json"
	"errors"
	"image/color"
	"strings"
	"testing"

	"github.com/philipparndt/gomol/pkg/engine"
)

func TestMountRequiresTargets(t *testing.T) {
	s := NewSession(Options{Factory: newFakeEngine().factory()})

	err := s.Mount(context.Background(), nil, &fakeContainer{})
	if !errors.Is(err, ErrResourceUnavailable) {
		t.Errorf("Mount failed: expected %v, got %v", ErrResourceUnavailable, err)
	}
	if s.Ready() {
		t.Errorf("Ready failed: expected false")
	}
}

func TestMountInitializeFailure(t *testing.T) {
	f := newFakeEngine()
	f.setFail("Initialize", errBoom)
	s := NewSession(Options{Factory: f.factory()})

	err := s.Mount(context.Background(), fakeCanvas{}, &fakeContainer{})
	if !errors.Is(err, ErrResourceUnavailable) || StageOf(err) != StageMount {
		t.Errorf("Mount failed: expected resource failure at mount, got %v", err)
	}
}

func TestMountAppliesBackground(t *testing.T) {
	f := newFakeEngine()
	bg := color.RGBA{R: 10, G: 20, B: 30, A: 255}
	s := NewSession(Options{Factory: f.factory(), Background: bg})
	if err := s.Mount(context.Background(), fakeCanvas{}, &fakeContainer{}); err != nil {
		t.Fatalf("Mount failed: %v", err)
	}
	props := f.lastCanvasProps()
	if props.Background == nil || *props.Background != bg {
		t.Errorf("Mount failed: expected background %v, got %+v", bg, props)
	}
	if err := s.Mount(context.Background(), fakeCanvas{}, &fakeContainer{}); !errors.Is(err, ErrPreconditionNotMet) {
		t.Errorf("second Mount failed: expected %v, got %v", ErrPreconditionNotMet, err)
	}
}

func TestUnmount(t *testing.T) {
	s, f := loadedSession(t)
	if err := s.Unmount(); err != nil {
		t.Fatalf("Unmount failed: %v", err)
	}
	if !f.disposed {
		t.Errorf("Unmount failed: expected the engine to be disposed")
	}
	if s.Ready() || s.Engine() != nil {
		t.Errorf("Unmount failed: session still ready")
	}
	if err := s.ToggleSpin(); !errors.Is(err, ErrPreconditionNotMet) {
		t.Errorf("ToggleSpin failed: expected %v after unmount, got %v", ErrPreconditionNotMet, err)
	}
	if err := s.Unmount(); err != nil {
		t.Errorf("second Unmount failed: %v", err)
	}
}

func TestRemountStartsEmpty(t *testing.T) {
	s, _ := loadedSession(t)
	ctx := context.Background()
	if err := s.LoadTrajectory(ctx, "traj.xtc"); err != nil {
		t.Fatalf("LoadTrajectory failed: %v", err)
	}
	if err := s.Unmount(); err != nil {
		t.Fatalf("Unmount failed: %v", err)
	}
	if snap := s.Snapshot(); snap.State != StateEmpty || snap.AtomCount != 0 || snap.FrameCount != 0 || snap.TopologyFile != "" || len(snap.RepresentationTypes) != 0 {
		t.Errorf("Unmount failed: expected an empty session, got %+v", snap)
	}

	fresh := newFakeEngine()
	s.opts.Factory = fresh.factory()
	if err := s.Mount(ctx, fakeCanvas{}, &fakeContainer{}); err != nil {
		t.Fatalf("Mount failed: %v", err)
	}
	if s.State() != StateEmpty {
		t.Errorf("State failed: expected %v after remount, got %v", StateEmpty, s.State())
	}
	if err := s.LoadTopology(ctx, "protein.pdb"); err != nil {
		t.Fatalf("LoadTopology after remount failed: %v", err)
	}
	if err := s.LoadTrajectory(ctx, "traj.xtc"); err != nil {
		t.Errorf("LoadTrajectory after remount failed: %v", err)
	}
	if s.State() != StateTrajectoryLoaded {
		t.Errorf("State failed: expected %v, got %v", StateTrajectoryLoaded, s.State())
	}
}

func TestReset(t *testing.T) {
	s, _ := loadedSession(t)
	ctx := context.Background()
	if err := s.LoadTrajectory(ctx, "traj.xtc"); err != nil {
		t.Fatalf("LoadTrajectory failed: %v", err)
	}
	s.ToggleSpin()
	s.SetStructureColor(ctx, "#ff0000")

	if err := s.Reset(ctx); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}
	snap := s.Snapshot()
	if snap.State != StateEmpty || snap.FrameCount != 0 || snap.AtomCount != 0 || snap.Spinning || snap.TopologyFile != "" {
		t.Errorf("Reset failed: got %+v", snap)
	}
	if snap.StructureColor != "#ff0000" {
		t.Errorf("Reset failed: expected the structure color to survive, got %s", snap.StructureColor)
	}
	if err := s.LoadTopology(ctx, "protein.cif"); err != nil {
		t.Errorf("LoadTopology after Reset failed: %v", err)
	}
}

func TestSnapshotJSON(t *testing.T) {
	s, _ := loadedSession(t)
	data, err := json.Marshal(s.Snapshot())
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	for _, want := range []string{`"state":"topology_loaded"`, `"representation":"cartoon"`, `"background":"#000000"`} {
		if !strings.Contains(string(data), want) {
			t.Errorf("Snapshot failed: expected %s in %s", want, data)
		}
	}
}

func TestLoadStateString(t *testing.T) {
	if StateTrajectoryLoading.String() != "trajectory_loading" {
		t.Errorf("String failed: got %s", StateTrajectoryLoading)
	}
	if LoadState(99).String() != "unknown" {
		t.Errorf("String failed: expected unknown")
	}
	if !StateTopologyLoading.Loading() || StateTopologyLoaded.Loading() {
		t.Errorf("Loading failed")
	}
}

func TestStageError(t *testing.T) {
	err := engineFailed(StageMerge, engine.ErrStaleRef)
	if !errors.Is(err, ErrEngineOperationFailed) || !errors.Is(err, engine.ErrStaleRef) {
		t.Errorf("StageError failed: expected both kind and cause to match")
	}
	if !strings.HasPrefix(err.Error(), "merge: ") {
		t.Errorf("Error failed: got %q", err.Error())
	}
	if StageOf(errBoom) != "" {
		t.Errorf("StageOf failed: expected no stage")
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in       string
		expected color.RGBA
		ok       bool
	}{
		{"#000000", color.RGBA{A: 255}, true},
		{"#ff8000", color.RGBA{R: 255, G: 128, A: 255}, true},
		{"#fff", color.RGBA{R: 255, G: 255, B: 255, A: 255}, true},
		{"00ff00", color.RGBA{G: 255, A: 255}, true},
		{"red", color.RGBA{}, false},
		{"", color.RGBA{}, false},
	}
	for _, tt := range tests {
		got, err := ParseColor(tt.in)
		if (err == nil) != tt.ok {
			t.Errorf("ParseColor(%q) failed: expected ok=%v, got error %v", tt.in, tt.ok, err)
			continue
		}
		if tt.ok && got != tt.expected {
			t.Errorf("ParseColor(%q) failed: expected %v, got %v", tt.in, tt.expected, got)
		}
	}
	if HexColor(color.RGBA{R: 255, G: 128, A: 255}) != "#ff8000" {
		t.Errorf("HexColor failed: got %s", HexColor(color.RGBA{R: 255, G: 128, A: 255}))
	}
}
