package viewport

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/philipparndt/gomol/pkg/engine"
)

func newMountedSession(t *testing.T) (*Session, *fakeEngine) {
	t.Helper()
	f := newFakeEngine()
	s := NewSession(Options{Name: "test", Factory: f.factory()})
	if err := s.Mount(context.Background(), fakeCanvas{}, &fakeContainer{}); err != nil {
		t.Fatalf("Mount failed: %v", err)
	}
	return s, f
}

func loadedSession(t *testing.T) (*Session, *fakeEngine) {
	t.Helper()
	s, f := newMountedSession(t)
	if err := s.LoadTopology(context.Background(), "/data/protein.pdb"); err != nil {
		t.Fatalf("LoadTopology failed: %v", err)
	}
	return s, f
}

// selecting protein.pdb reaches TopologyLoaded with the ribbon default
func TestLoadTopology(t *testing.T) {
	s, f := loadedSession(t)

	if s.State() != StateTopologyLoaded {
		t.Fatalf("State failed: expected %v, got %v", StateTopologyLoaded, s.State())
	}
	if len(s.RepresentationTypes()) == 0 {
		t.Errorf("RepresentationTypes failed: expected a non-empty list")
	}
	if got := s.Representation().Type; got != "cartoon" {
		t.Errorf("Representation failed: expected cartoon, got %s", got)
	}

	asset := f.assets[0]
	if asset.Label != "protein.pdb" || asset.Binary {
		t.Errorf("SubmitAsset failed: expected non-binary protein.pdb, got %+v", asset)
	}

	reprs := f.representations()
	if len(reprs) != 1 || reprs[0].tag != MainTag {
		t.Fatalf("representations failed: expected only the main slot, got %+v", reprs)
	}
	if reprs[0].params.ColorTheme != engine.UniformColor(white) {
		t.Errorf("color failed: expected uniform white, got %+v", reprs[0].params.ColorTheme)
	}

	snap := s.Snapshot()
	if snap.AtomCount != 42 || snap.TopologyFile != "/data/protein.pdb" {
		t.Errorf("Snapshot failed: got %+v", snap)
	}
}

func TestRepresentationTypesExcludeAdvanced(t *testing.T) {
	s, _ := loadedSession(t)

	for _, typ := range s.RepresentationTypes() {
		if excludedRepresentations[typ.Tag] {
			t.Errorf("RepresentationTypes failed: %s must not be offered", typ.Tag)
		}
	}
	if n := len(s.RepresentationTypes()); n != 4 {
		t.Errorf("RepresentationTypes failed: expected 4 types, got %d", n)
	}
}

func TestDefaultRepresentationFallsBack(t *testing.T) {
	f := newFakeEngine()
	f.types = f.types[1:] // no cartoon
	s := NewSession(Options{Factory: f.factory()})
	s.Mount(context.Background(), fakeCanvas{}, &fakeContainer{})

	if err := s.LoadTopology(context.Background(), "ligand.sdf"); err != nil {
		t.Fatalf("LoadTopology failed: %v", err)
	}
	if got := s.Representation().Type; got != "ball-and-stick" {
		t.Errorf("Representation failed: expected ball-and-stick, got %s", got)
	}
}

func TestLoadTopologyRejected(t *testing.T) {
	ctx := context.Background()

	unmounted := NewSession(Options{Factory: newFakeEngine().factory()})
	if err := unmounted.LoadTopology(ctx, "protein.pdb"); !errors.Is(err, ErrPreconditionNotMet) {
		t.Errorf("not ready failed: expected %v, got %v", ErrPreconditionNotMet, err)
	}

	s, f := loadedSession(t)
	calls := len(f.assets)
	if err := s.LoadTopology(ctx, "other.pdb"); !errors.Is(err, ErrPreconditionNotMet) {
		t.Errorf("second topology failed: expected %v, got %v", ErrPreconditionNotMet, err)
	}
	if s.State() != StateTopologyLoaded {
		t.Errorf("State failed: expected %v, got %v", StateTopologyLoaded, s.State())
	}
	if len(f.assets) != calls {
		t.Errorf("SubmitAsset failed: expected no engine call for a rejected load")
	}
}

func TestLoadTopologyUnsupportedFormat(t *testing.T) {
	s, f := newMountedSession(t)

	for _, name := range []string{"notes.txt", "protein", ""} {
		err := s.LoadTopology(context.Background(), name)
		if !errors.Is(err, ErrUnsupportedFormat) {
			t.Errorf("LoadTopology(%q) failed: expected %v, got %v", name, ErrUnsupportedFormat, err)
		}
	}
	if s.State() != StateEmpty {
		t.Errorf("State failed: expected %v, got %v", StateEmpty, s.State())
	}
	if len(f.assets) != 0 {
		t.Errorf("SubmitAsset failed: expected no call, got %d", len(f.assets))
	}
	if snap := s.Snapshot(); snap.Loading {
		t.Errorf("Snapshot failed: session still in flight")
	}
}

func TestLoadTopologyFailureAllowsRetry(t *testing.T) {
	stages := map[string]Stage{
		"SubmitAsset":          StageSubmit,
		"ParseTopology":        StageParseTopology,
		"DeriveModel":          StageDeriveModel,
		"ApplyDefaultPreset":   StagePreset,
		"UpsertRepresentation": StageRepresentation,
	}
	for method, stage := range stages {
		t.Run(method, func(t *testing.T) {
			s, f := newMountedSession(t)
			f.setFail(method, errBoom)

			err := s.LoadTopology(context.Background(), "protein.pdb")
			if !errors.Is(err, ErrEngineOperationFailed) || !errors.Is(err, errBoom) {
				t.Fatalf("LoadTopology failed: expected engine failure wrapping boom, got %v", err)
			}
			if StageOf(err) != stage {
				t.Errorf("StageOf failed: expected %s, got %s", stage, StageOf(err))
			}
			if s.State() != StateEmpty {
				t.Errorf("State failed: expected %v, got %v", StateEmpty, s.State())
			}
			s.mu.Lock()
			model := s.model
			s.mu.Unlock()
			if model != "" {
				t.Errorf("model failed: expected no retained model, got %s", model)
			}
			if n := len(f.representations()); n != 0 {
				t.Errorf("representations failed: expected cleanup, got %d", n)
			}

			f.setFail(method, nil)
			if err := s.LoadTopology(context.Background(), "protein.pdb"); err != nil {
				t.Errorf("retry failed: %v", err)
			}
		})
	}
}

// selecting traj.xtc after the topology reaches TrajectoryLoaded and plays
func TestLoadTrajectory(t *testing.T) {
	s, f := loadedSession(t)
	if err := s.SetRepresentation(context.Background(), "spacefill"); err != nil {
		t.Fatalf("SetRepresentation failed: %v", err)
	}

	if err := s.LoadTrajectory(context.Background(), "/data/traj.xtc"); err != nil {
		t.Fatalf("LoadTrajectory failed: %v", err)
	}
	if s.State() != StateTrajectoryLoaded {
		t.Fatalf("State failed: expected %v, got %v", StateTrajectoryLoaded, s.State())
	}
	snap := s.Snapshot()
	if snap.FrameCount <= 0 {
		t.Errorf("FrameCount failed: expected > 0, got %d", snap.FrameCount)
	}
	if !snap.Animating || !s.Animating() {
		t.Errorf("Animating failed: expected playback to start")
	}
	if !f.assets[1].Binary {
		t.Errorf("SubmitAsset failed: expected the trajectory as binary")
	}

	reprs := f.representations()
	if len(reprs) != 1 || reprs[0].tag != MainTag || reprs[0].params.Type != "spacefill" {
		t.Errorf("representations failed: expected the main slot with spacefill, got %+v", reprs)
	}

	s.mu.Lock()
	model := s.model
	s.mu.Unlock()
	if model != "" {
		t.Errorf("model failed: expected the model ref to be cleared, got %s", model)
	}
}

// selecting traj.xtc before any topology stays Empty
func TestLoadTrajectoryBeforeTopology(t *testing.T) {
	s, f := newMountedSession(t)

	err := s.LoadTrajectory(context.Background(), "traj.xtc")
	if !errors.Is(err, ErrPreconditionNotMet) {
		t.Errorf("LoadTrajectory failed: expected %v, got %v", ErrPreconditionNotMet, err)
	}
	if s.State() != StateEmpty {
		t.Errorf("State failed: expected %v, got %v", StateEmpty, s.State())
	}
	if len(f.assets) != 0 {
		t.Errorf("SubmitAsset failed: expected no engine call")
	}
}

func TestSecondTrajectoryRejected(t *testing.T) {
	s, _ := loadedSession(t)
	ctx := context.Background()
	if err := s.LoadTrajectory(ctx, "traj.xtc"); err != nil {
		t.Fatalf("LoadTrajectory failed: %v", err)
	}
	if err := s.LoadTrajectory(ctx, "traj2.dcd"); !errors.Is(err, ErrPreconditionNotMet) {
		t.Errorf("second LoadTrajectory failed: expected %v, got %v", ErrPreconditionNotMet, err)
	}
	if err := s.LoadTopology(ctx, "protein.pdb"); !errors.Is(err, ErrPreconditionNotMet) {
		t.Errorf("LoadTopology failed: expected %v, got %v", ErrPreconditionNotMet, err)
	}
	if s.State() != StateTrajectoryLoaded {
		t.Errorf("State failed: expected %v, got %v", StateTrajectoryLoaded, s.State())
	}
}

func TestLoadTrajectoryUnsupportedFormat(t *testing.T) {
	s, _ := loadedSession(t)
	err := s.LoadTrajectory(context.Background(), "traj.mp4")
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("LoadTrajectory failed: expected %v, got %v", ErrUnsupportedFormat, err)
	}
	if s.State() != StateTopologyLoaded {
		t.Errorf("State failed: expected %v, got %v", StateTopologyLoaded, s.State())
	}
}

func TestLoadTrajectoryFailureKeepsTopology(t *testing.T) {
	stages := map[string]Stage{
		"SubmitAsset":              StageSubmit,
		"ParseCoordinates":         StageParseCoordinates,
		"MergeModelAndCoordinates": StageMerge,
		"ApplyDefaultPreset":       StagePreset,
	}
	for method, stage := range stages {
		t.Run(method, func(t *testing.T) {
			s, f := loadedSession(t)
			f.setFail(method, errBoom)

			err := s.LoadTrajectory(context.Background(), "traj.dcd")
			if !errors.Is(err, errBoom) || StageOf(err) != stage {
				t.Fatalf("LoadTrajectory failed: expected %s failure, got %v", stage, err)
			}
			if s.State() != StateTopologyLoaded {
				t.Errorf("State failed: expected %v, got %v", StateTopologyLoaded, s.State())
			}
			reprs := f.representations()
			if len(reprs) != 1 || reprs[0].tag != MainTag {
				t.Errorf("representations failed: expected prior visuals intact, got %+v", reprs)
			}

			f.setFail(method, nil)
			if err := s.LoadTrajectory(context.Background(), "traj.dcd"); err != nil {
				t.Errorf("retry failed: %v", err)
			}
		})
	}
}

func TestLoadTrajectoryAnimationFailure(t *testing.T) {
	s, f := loadedSession(t)
	f.anim.failErr = errBoom

	err := s.LoadTrajectory(context.Background(), "traj.xtc")
	if StageOf(err) != StageAnimation {
		t.Errorf("LoadTrajectory failed: expected animation stage, got %v", err)
	}
	if s.State() != StateTopologyLoaded {
		t.Errorf("State failed: expected %v, got %v", StateTopologyLoaded, s.State())
	}

	live := f.Structures()
	s.mu.Lock()
	structure := s.structure
	s.mu.Unlock()
	if len(live) != 1 || structure != live[0] {
		t.Fatalf("structure failed: expected session to hold the live structure %v, got %s", live, structure)
	}
	snap := s.Snapshot()
	if snap.Animating || snap.FrameCount != 1 {
		t.Errorf("Snapshot failed: expected a still single frame, got %+v", snap)
	}
	if f.anim.Current() {
		t.Errorf("Animation failed: expected the topology frame to be bound again")
	}
	reprs := f.representations()
	if len(reprs) != 1 || reprs[0].tag != MainTag || reprs[0].structure != structure {
		t.Errorf("representations failed: expected the main slot on %s, got %+v", structure, reprs)
	}

	if err := s.SetRepresentation(context.Background(), "spacefill"); err != nil {
		t.Fatalf("SetRepresentation failed: %v", err)
	}
	calls := f.upsertCalls()
	if last := calls[len(calls)-1]; last.structure != structure {
		t.Errorf("SetRepresentation failed: expected upsert on %s, got %s", structure, last.structure)
	}

	f.anim.mu.Lock()
	f.anim.failErr = nil
	f.anim.mu.Unlock()
	if err := s.LoadTrajectory(context.Background(), "traj.xtc"); err != nil {
		t.Errorf("retry failed: %v", err)
	}
	if !s.Animating() {
		t.Errorf("Animating failed: expected playback after retry")
	}
}

func TestInFlightGuard(t *testing.T) {
	s, f := newMountedSession(t)
	f.block = make(chan struct{})
	f.entered = make(chan struct{})

	done := make(chan error)
	go func() { done <- s.LoadTopology(context.Background(), "protein.pdb") }()
	<-f.entered

	if err := s.LoadTopology(context.Background(), "protein.pdb"); !errors.Is(err, ErrPreconditionNotMet) {
		t.Errorf("concurrent LoadTopology failed: expected %v, got %v", ErrPreconditionNotMet, err)
	}
	if err := s.LoadTrajectory(context.Background(), "traj.xtc"); !errors.Is(err, ErrPreconditionNotMet) {
		t.Errorf("concurrent LoadTrajectory failed: expected %v, got %v", ErrPreconditionNotMet, err)
	}
	if err := s.Reset(context.Background()); !errors.Is(err, ErrPreconditionNotMet) {
		t.Errorf("Reset failed: expected %v while loading, got %v", ErrPreconditionNotMet, err)
	}
	if snap := s.Snapshot(); !snap.Loading || snap.State != StateTopologyLoading {
		t.Errorf("Snapshot failed: expected loading, got %+v", snap)
	}

	close(f.block)
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("LoadTopology failed: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("LoadTopology did not finish")
	}
	if len(f.assets) != 1 {
		t.Errorf("SubmitAsset failed: expected 1 call, got %d", len(f.assets))
	}
}

func TestUnmountDuringLoad(t *testing.T) {
	s, f := newMountedSession(t)
	f.block = make(chan struct{})
	f.entered = make(chan struct{})

	done := make(chan error)
	go func() { done <- s.LoadTopology(context.Background(), "protein.pdb") }()
	<-f.entered
	if err := s.Unmount(); err != nil {
		t.Fatalf("Unmount failed: %v", err)
	}
	close(f.block)

	err := <-done
	if !errors.Is(err, ErrResourceUnavailable) && !errors.Is(err, ErrEngineOperationFailed) {
		t.Errorf("LoadTopology failed: expected failure after unmount, got %v", err)
	}
	if s.State() != StateEmpty {
		t.Errorf("State failed: expected %v, got %v", StateEmpty, s.State())
	}
}
