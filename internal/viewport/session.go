// Package viewport holds the viewer core: sessions that drive an engine
// through the two phase load pipeline, the representation reconciler, the
// animation controller, viewport controls and the coordinator that routes
// host events to the active session.
package viewport

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"log/slog"
	"sync"

	"github.com/philipparndt/gomol/internal/platform/logger"
	"github.com/philipparndt/gomol/internal/platform/metrics"
	"github.com/philipparndt/gomol/pkg/engine"
)

// Options configures a session
type Options struct {
	Name                  string
	Factory               engine.Factory
	Engine                engine.Config
	Background            color.RGBA
	StructureColor        color.RGBA
	DefaultRepresentation string
	Logger                *slog.Logger
	Metrics               *metrics.Metrics
}

// DefaultRepresentation is the ribbon style selected after a topology load
const DefaultRepresentation = "cartoon"

// Session is one independent viewer instance owning one engine
type Session struct {
	mu      sync.Mutex
	name    string
	opts    Options
	log     *slog.Logger
	metrics *metrics.Metrics

	engine    engine.Engine
	canvas    engine.Canvas
	container engine.Container
	ready     bool

	state    LoadState
	inFlight bool

	background          color.RGBA
	structureColor      color.RGBA
	representation      string
	representationTypes []engine.RepresentationType
	stereo              bool
	spinning            bool
	projection          engine.Projection

	structure  engine.Ref
	model      engine.Ref // retained from topology load until the merge
	trajectory engine.Ref
	frameCount int
	atomCount  int

	topologyFile   string
	trajectoryFile string
	lastErr        error
}

// NewSession creates an unmounted session
func NewSession(opts Options) *Session {
	if opts.Logger == nil {
		opts.Logger = logger.Discard()
	}
	if opts.DefaultRepresentation == "" {
		opts.DefaultRepresentation = DefaultRepresentation
	}
	if opts.Background == (color.RGBA{}) {
		opts.Background = color.RGBA{A: 255}
	}
	if opts.StructureColor == (color.RGBA{}) {
		opts.StructureColor = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	}
	if opts.Name == "" {
		opts.Name = "viewport"
	}

	return &Session{
		name:           opts.Name,
		opts:           opts,
		log:            opts.Logger.With("viewport", opts.Name),
		metrics:        opts.Metrics,
		background:     opts.Background,
		structureColor: opts.StructureColor,
		projection:     engine.Perspective,
	}
}

// Name returns the session name used in logs
func (s *Session) Name() string {
	return s.name
}

// Mount creates the engine and binds it to the canvas and container
func (s *Session) Mount(ctx context.Context, canvas engine.Canvas, container engine.Container) error {
	if canvas == nil || container == nil {
		return &StageError{Stage: StageMount, Kind: ErrResourceUnavailable, Err: errors.New("canvas and container are required")}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.engine != nil {
		return notMet("%s is already mounted", s.name)
	}

	eng, err := s.createEngine(ctx, canvas, container)
	if err != nil {
		return err
	}
	s.engine = eng
	s.canvas = canvas
	s.container = container
	s.ready = true
	s.log.Info("viewport mounted")
	return nil
}

// createEngine must be called with s.mu held
func (s *Session) createEngine(ctx context.Context, canvas engine.Canvas, container engine.Container) (engine.Engine, error) {
	if s.opts.Factory == nil {
		return nil, &StageError{Stage: StageMount, Kind: ErrResourceUnavailable, Err: errors.New("no engine factory")}
	}
	cfg := s.opts.Engine
	cfg.Background = s.background

	eng, err := s.opts.Factory(cfg)
	if err != nil {
		return nil, engineFailed(StageMount, err)
	}
	ok, err := eng.Initialize(ctx, canvas, container)
	if err != nil || !ok {
		eng.Dispose()
		if err == nil {
			err = errors.New("engine refused the canvas")
		}
		return nil, &StageError{Stage: StageMount, Kind: ErrResourceUnavailable, Err: err}
	}
	if err := eng.SetCanvasProps(engine.CanvasProps{Background: &s.background}); err != nil {
		eng.Dispose()
		return nil, engineFailed(StageMount, err)
	}
	return eng, nil
}

// Unmount disposes the engine and drops the loaded data; a later Mount starts
// from StateEmpty. A transition still in flight fails when it next reaches
// the engine.
func (s *Session) Unmount() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.engine == nil {
		return nil
	}

	err := s.engine.Dispose()
	s.engine = nil
	s.ready = false
	s.clearLoad()
	s.log.Info("viewport unmounted")
	if err != nil {
		return engineFailed(StageMount, err)
	}
	return nil
}

// Ready reports whether the engine is mounted
func (s *Session) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ready
}

// State returns the load state
func (s *Session) State() LoadState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Engine returns the engine, nil when unmounted. Hosts use it to draw.
func (s *Session) Engine() engine.Engine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine
}

// Reset returns the session to StateEmpty on a fresh engine bound to the same
// canvas and container. Colors are kept.
func (s *Session) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready {
		return s.reject(notMet("engine not ready"))
	}
	if s.inFlight {
		return s.reject(notMet("a load is in progress"))
	}

	if anim := s.engine.Animation(); anim.IsPlaying() {
		if err := anim.Stop(ctx); err != nil {
			s.log.Warn("failed to stop animation before reset", "error", err)
		}
	}
	if err := s.engine.Dispose(); err != nil {
		s.log.Warn("failed to dispose engine", "error", err)
	}
	s.engine = nil
	s.ready = false

	eng, err := s.createEngine(ctx, s.canvas, s.container)
	if err != nil {
		s.lastErr = err
		return err
	}
	s.engine = eng
	s.ready = true
	s.clearLoad()
	s.log.Info("viewport reset")
	return nil
}

// clearLoad must be called with s.mu held. Colors are kept.
func (s *Session) clearLoad() {
	s.state = StateEmpty
	s.inFlight = false
	s.representation = ""
	s.representationTypes = nil
	s.stereo = false
	s.spinning = false
	s.projection = engine.Perspective
	s.structure = ""
	s.model = ""
	s.trajectory = ""
	s.frameCount = 0
	s.atomCount = 0
	s.topologyFile = ""
	s.trajectoryFile = ""
	s.lastErr = nil
}

// reject must be called with s.mu held
func (s *Session) reject(err error) error {
	s.metrics.IncRejected()
	s.log.Warn("request rejected", "error", err)
	return err
}

// Snapshot is a copy of the session state for hosts and the status endpoint
type Snapshot struct {
	Name                string    `json:"name"`
	Ready               bool      `json:"ready"`
	State               LoadState `json:"state"`
	Loading             bool      `json:"loading"`
	TopologyFile        string    `json:"topologyFile,omitempty"`
	TrajectoryFile      string    `json:"trajectoryFile,omitempty"`
	Background          string    `json:"background"`
	StructureColor      string    `json:"structureColor"`
	Representation      string    `json:"representation,omitempty"`
	RepresentationTypes []string  `json:"representationTypes,omitempty"`
	Spinning            bool      `json:"spinning"`
	Stereo              bool      `json:"stereo"`
	Projection          string    `json:"projection"`
	Animating           bool      `json:"animating"`
	AtomCount           int       `json:"atomCount"`
	FrameCount          int       `json:"frameCount"`
	LastError           string    `json:"lastError,omitempty"`
}

// Snapshot returns the current state
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		Name:           s.name,
		Ready:          s.ready,
		State:          s.state,
		Loading:        s.inFlight,
		TopologyFile:   s.topologyFile,
		TrajectoryFile: s.trajectoryFile,
		Background:     HexColor(s.background),
		StructureColor: HexColor(s.structureColor),
		Representation: s.representation,
		Spinning:       s.spinning,
		Stereo:         s.stereo,
		Projection:     string(s.projection),
		AtomCount:      s.atomCount,
		FrameCount:     s.frameCount,
	}
	for _, t := range s.representationTypes {
		snap.RepresentationTypes = append(snap.RepresentationTypes, t.Tag)
	}
	if s.engine != nil {
		snap.Animating = s.engine.Animation().IsPlaying()
	}
	if s.lastErr != nil {
		snap.LastError = s.lastErr.Error()
	}
	return snap
}

// Files returns the loaded topology and trajectory paths
func (s *Session) Files() (topology, trajectory string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.topologyFile, s.trajectoryFile
}

func (s *Session) String() string {
	return fmt.Sprintf("%s (%s)", s.name, s.State())
}
