package viewport

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"time"

	"github.com/philipparndt/gomol/pkg/engine"
	"github.com/philipparndt/gomol/pkg/format"
)

// transition is the state captured when a load acquires the session
type transition struct {
	engine         engine.Engine
	from           LoadState
	model          engine.Ref
	trajectory     engine.Ref
	structure      engine.Ref
	representation string
	started        time.Time
}

// acquire checks the preconditions of a transition and marks the session in
// flight before any engine call is made
func (s *Session) acquire(from, to LoadState, resolve func() error) (*transition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.ready {
		return nil, s.reject(notMet("engine not ready"))
	}
	if s.inFlight {
		return nil, s.reject(notMet("a load is in progress"))
	}
	if s.state != from {
		switch {
		case from == StateEmpty:
			return nil, s.reject(notMet("a topology is already loaded"))
		case s.state == StateEmpty:
			return nil, s.reject(notMet("load a topology before a trajectory"))
		default:
			return nil, s.reject(notMet("a trajectory is already loaded"))
		}
	}
	if err := resolve(); err != nil {
		s.lastErr = err
		s.log.Warn("file rejected", "error", err)
		return nil, err
	}

	s.inFlight = true
	s.state = to
	return &transition{
		engine:         s.engine,
		from:           from,
		model:          s.model,
		trajectory:     s.trajectory,
		structure:      s.structure,
		representation: s.representation,
		started:        time.Now(),
	}, nil
}

// fail releases the session back to the state the transition started from.
// A session unmounted during the load was already cleared by Unmount.
func (s *Session) fail(t *transition, err error) error {
	s.mu.Lock()
	if s.engine == t.engine {
		s.state = t.from
		s.inFlight = false
		s.structure = t.structure
	}
	s.lastErr = err
	s.mu.Unlock()

	s.metrics.IncFailure(string(StageOf(err)))
	s.log.Error("load failed", "stage", StageOf(err), "error", err)
	return err
}

// stillMounted must be called with s.mu held
func (s *Session) stillMounted(t *transition) error {
	if s.engine != t.engine {
		return &StageError{Stage: StageMount, Kind: ErrResourceUnavailable, Err: errors.New("viewport was unmounted during the load")}
	}
	return nil
}

// LoadTopology runs Empty -> TopologyLoading -> TopologyLoaded for the file
// at path. On failure the session is back at StateEmpty with no model
// retained and the user may retry.
func (s *Session) LoadTopology(ctx context.Context, path string) error {
	var f format.Topology
	t, err := s.acquire(StateEmpty, StateTopologyLoading, func() error {
		var ok bool
		if f, ok = format.ResolveTopology(path); !ok {
			return &StageError{Stage: StageResolve, Kind: ErrUnsupportedFormat, Err: fmt.Errorf("topology file %s", filepath.Base(path))}
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.log.Info("loading topology", "file", path, "format", f)

	eng := t.engine
	asset, err := eng.SubmitAsset(ctx, engine.Asset{Label: filepath.Base(path), Path: path, Binary: false})
	if err != nil {
		return s.fail(t, engineFailed(StageSubmit, err))
	}
	traj, err := eng.ParseTopology(ctx, asset, f)
	if err != nil {
		return s.fail(t, engineFailed(StageParseTopology, err))
	}
	model, err := eng.DeriveModel(ctx, traj)
	if err != nil {
		return s.fail(t, engineFailed(StageDeriveModel, err))
	}
	if err := eng.ApplyDefaultPreset(ctx, traj); err != nil {
		return s.fail(t, engineFailed(StagePreset, err))
	}

	types := filterRepresentationTypes(eng.RepresentationTypes())
	if len(types) == 0 {
		s.clearRepresentations(ctx, eng)
		return s.fail(t, engineFailed(StagePreset, errors.New("engine advertises no representation types")))
	}
	structure, err := s.replacePreset(ctx, eng)
	if err != nil {
		s.clearRepresentations(ctx, eng)
		return s.fail(t, err)
	}

	selected := pickRepresentation(types, s.opts.DefaultRepresentation)
	s.mu.Lock()
	theme := engine.UniformColor(s.structureColor)
	s.mu.Unlock()
	if err := s.commitRepresentation(ctx, eng, structure, selected, theme); err != nil {
		s.clearRepresentations(ctx, eng)
		return s.fail(t, err)
	}

	stats := eng.Statistics()
	atoms := stats.AtomCount(structure)
	frames := stats.FrameCount(traj)

	s.mu.Lock()
	if err := s.stillMounted(t); err != nil {
		s.mu.Unlock()
		return s.fail(t, err)
	}
	s.state = StateTopologyLoaded
	s.inFlight = false
	s.model = model
	s.trajectory = traj
	s.structure = structure
	s.representationTypes = types
	s.representation = selected
	s.structureColor = theme.Value
	s.atomCount = atoms
	s.frameCount = frames
	s.topologyFile = path
	s.lastErr = nil
	s.mu.Unlock()

	s.metrics.IncTransition(StateTopologyLoaded.String())
	s.log.Info("topology loaded",
		"file", filepath.Base(path),
		"atoms", atoms,
		"representation", selected,
		"duration", time.Since(t.started).Round(time.Millisecond),
	)
	return nil
}

// LoadTrajectory runs TopologyLoaded -> TrajectoryLoading -> TrajectoryLoaded
// for the coordinate file at path. On failure the topology is preserved and
// the user may retry.
func (s *Session) LoadTrajectory(ctx context.Context, path string) error {
	var f format.Coordinates
	t, err := s.acquire(StateTopologyLoaded, StateTrajectoryLoading, func() error {
		var ok bool
		if f, ok = format.ResolveCoordinates(path); !ok {
			return &StageError{Stage: StageResolve, Kind: ErrUnsupportedFormat, Err: fmt.Errorf("trajectory file %s", filepath.Base(path))}
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.log.Info("loading trajectory", "file", path, "format", f)

	eng := t.engine
	asset, err := eng.SubmitAsset(ctx, engine.Asset{Label: filepath.Base(path), Path: path, Binary: true})
	if err != nil {
		return s.fail(t, engineFailed(StageSubmit, err))
	}
	coords, err := eng.ParseCoordinates(ctx, asset, f)
	if err != nil {
		return s.fail(t, engineFailed(StageParseCoordinates, err))
	}
	merged, err := eng.MergeModelAndCoordinates(ctx, t.model, coords)
	if err != nil {
		return s.fail(t, engineFailed(StageMerge, err))
	}

	// from here on the single-frame visuals are replaced
	if err := s.removeRepresentations(ctx, eng); err != nil {
		s.restore(ctx, t)
		return s.fail(t, err)
	}
	if err := eng.ApplyDefaultPreset(ctx, merged); err != nil {
		s.restore(ctx, t)
		return s.fail(t, engineFailed(StagePreset, err))
	}
	structure, err := s.replacePreset(ctx, eng)
	if err != nil {
		s.restore(ctx, t)
		return s.fail(t, err)
	}

	// the structure color may have changed while loading
	s.mu.Lock()
	theme := engine.UniformColor(s.structureColor)
	s.mu.Unlock()
	if err := s.commitRepresentation(ctx, eng, structure, t.representation, theme); err != nil {
		s.restore(ctx, t)
		return s.fail(t, err)
	}

	stats := eng.Statistics()
	atoms := stats.AtomCount(structure)
	frames := stats.FrameCount(merged)

	if anim := eng.Animation(); anim.Current() && !anim.IsPlaying() {
		if err := anim.Start(ctx); err != nil {
			s.restore(ctx, t)
			return s.fail(t, engineFailed(StageAnimation, err))
		}
	}

	s.mu.Lock()
	if err := s.stillMounted(t); err != nil {
		s.mu.Unlock()
		return s.fail(t, err)
	}
	s.state = StateTrajectoryLoaded
	s.inFlight = false
	s.model = ""
	s.trajectory = merged
	s.structure = structure
	s.structureColor = theme.Value
	s.atomCount = atoms
	s.frameCount = frames
	s.trajectoryFile = path
	s.lastErr = nil
	s.mu.Unlock()

	s.metrics.IncTransition(StateTrajectoryLoaded.String())
	s.log.Info("trajectory loaded",
		"file", filepath.Base(path),
		"atoms", atoms,
		"frames", frames,
		"duration", time.Since(t.started).Round(time.Millisecond),
	)
	return nil
}

// replacePreset removes the representations the preset created so that the
// tagged main slot is the only one, and returns the materialized structure
func (s *Session) replacePreset(ctx context.Context, eng engine.Engine) (engine.Ref, error) {
	structures := eng.Structures()
	if len(structures) == 0 {
		return "", engineFailed(StagePreset, errors.New("preset produced no structure"))
	}
	if err := s.removeRepresentations(ctx, eng); err != nil {
		return "", err
	}
	return structures[0], nil
}

func (s *Session) removeRepresentations(ctx context.Context, eng engine.Engine) error {
	for _, ref := range eng.Representations() {
		if err := eng.RemoveRepresentation(ctx, ref); err != nil {
			return engineFailed(StagePreset, fmt.Errorf("remove representation %s: %w", ref, err))
		}
	}
	return nil
}

// clearRepresentations drops whatever a failed topology load left behind
func (s *Session) clearRepresentations(ctx context.Context, eng engine.Engine) {
	if err := s.removeRepresentations(ctx, eng); err != nil {
		s.log.Warn("failed to clean up after failed load", "error", err)
	}
}

// restore brings the single-frame topology back after a failed trajectory
// phase. When the merged preset already replaced the previous structure, the
// topology is materialized again and t.structure follows the new one.
func (s *Session) restore(ctx context.Context, t *transition) {
	eng := t.engine
	if anim := eng.Animation(); anim.IsPlaying() {
		if err := anim.Stop(ctx); err != nil {
			s.log.Warn("failed to stop animation", "error", err)
		}
	}
	if t.structure == "" || t.representation == "" {
		return
	}

	if !slices.Contains(eng.Structures(), t.structure) {
		t.structure = ""
		if err := eng.ApplyDefaultPreset(ctx, t.trajectory); err != nil {
			s.log.Warn("failed to restore topology", "error", err)
			return
		}
		structure, err := s.replacePreset(ctx, eng)
		if err != nil {
			s.log.Warn("failed to restore topology", "error", err)
			return
		}
		t.structure = structure
	}

	s.mu.Lock()
	theme := engine.UniformColor(s.structureColor)
	s.mu.Unlock()
	if err := s.commitRepresentation(ctx, eng, t.structure, t.representation, theme); err != nil {
		s.log.Warn("failed to restore representation", "error", err)
	}
}
