// Package molengine is an in-process molecular engine implementing
// engine.Engine. Files are parsed with gochem into a small state tree
// (assets, trajectories, models, coordinate sets, structures and
// representations); renderers draw from Scene snapshots.
package molengine

import (
	"context"
	"fmt"
	"image/color"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/philipparndt/gomol/pkg/engine"
	"github.com/philipparndt/gomol/pkg/geometry"
)

// Atom is one particle of a topology
type Atom struct {
	Name   string
	Symbol string
	Radius float64 // van der Waals radius in Å
}

type trajectory struct {
	atoms     []Atom
	frames    [][]geometry.Vector3
	dependsOn []engine.Ref
}

type model struct {
	trajectory engine.Ref
	atoms      []Atom
	frames     [][]geometry.Vector3
}

type coordinateSet struct {
	asset  engine.Ref
	frames [][]geometry.Vector3
}

type structure struct {
	trajectory engine.Ref
	atoms      []Atom
	frames     [][]geometry.Vector3
	bonds      [][2]int
	trace      []int
}

type representation struct {
	structure engine.Ref
	tag       string
	params    engine.RepresentationParams
}

// Engine is the gochem backed engine. The zero value is not usable; call New.
type Engine struct {
	mu  sync.Mutex
	cfg engine.Config
	log *slog.Logger

	canvas      engine.Canvas
	container   engine.Container
	initialized bool
	disposed    bool

	assets          map[engine.Ref]engine.Asset
	trajectories    map[engine.Ref]*trajectory
	models          map[engine.Ref]*model
	coordinates     map[engine.Ref]*coordinateSet
	structures      map[engine.Ref]*structure
	representations map[engine.Ref]*representation
	order           []engine.Ref

	view      viewState
	animation *animation
	tempFiles []string

	lastRefresh    time.Time
	refreshPending bool
}

// New creates an engine. It satisfies engine.Factory when wrapped with
// Factory.
func New(cfg engine.Config, log *slog.Logger) *Engine {
	if log == nil {
		log = slog.Default()
	}
	if cfg.AnimationFPS <= 0 {
		cfg.AnimationFPS = 30
	}
	if cfg.Background == (color.RGBA{}) {
		cfg.Background = color.RGBA{A: 255}
	}

	e := &Engine{
		cfg:             cfg,
		log:             log,
		assets:          make(map[engine.Ref]engine.Asset),
		trajectories:    make(map[engine.Ref]*trajectory),
		models:          make(map[engine.Ref]*model),
		coordinates:     make(map[engine.Ref]*coordinateSet),
		structures:      make(map[engine.Ref]*structure),
		representations: make(map[engine.Ref]*representation),
		view:            newViewState(cfg.Background),
	}
	e.animation = newAnimation(e, cfg.AnimationFPS)
	return e
}

// Factory returns an engine.Factory producing molengine engines that log to log
func Factory(log *slog.Logger) engine.Factory {
	return func(cfg engine.Config) (engine.Engine, error) {
		return New(cfg, log), nil
	}
}

// Initialize binds the engine to its canvas and container
func (e *Engine) Initialize(ctx context.Context, canvas engine.Canvas, container engine.Container) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if canvas == nil || container == nil {
		return false, fmt.Errorf("canvas and container are required")
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.disposed {
		return false, fmt.Errorf("engine already disposed")
	}
	e.canvas = canvas
	e.container = container
	e.initialized = true
	return true, nil
}

// Dispose stops playback and releases every state node. The engine cannot be
// used afterwards.
func (e *Engine) Dispose() error {
	e.animation.halt()

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.disposed {
		return nil
	}
	e.disposed = true
	e.initialized = false
	e.assets = map[engine.Ref]engine.Asset{}
	e.trajectories = map[engine.Ref]*trajectory{}
	e.models = map[engine.Ref]*model{}
	e.coordinates = map[engine.Ref]*coordinateSet{}
	e.structures = map[engine.Ref]*structure{}
	e.representations = map[engine.Ref]*representation{}
	e.order = nil
	e.removeTempFiles()
	return nil
}

// checkReady must be called with e.mu held
func (e *Engine) checkReady() error {
	if !e.initialized || e.disposed {
		return engine.ErrNotInitialized
	}
	return nil
}

// newRef must be called with e.mu held
func (e *Engine) newRef(kind string) engine.Ref {
	ref := engine.Ref(kind + ":" + uuid.NewString())
	e.order = append(e.order, ref)
	return ref
}

// forget must be called with e.mu held
func (e *Engine) forget(ref engine.Ref) {
	for i, r := range e.order {
		if r == ref {
			e.order = append(e.order[:i], e.order[i+1:]...)
			return
		}
	}
}

// SubmitAsset registers a file with the engine
func (e *Engine) SubmitAsset(ctx context.Context, asset engine.Asset) (engine.Ref, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if asset.Path == "" && asset.Data == nil {
		return "", fmt.Errorf("asset %q has neither path nor data", asset.Label)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.checkReady(); err != nil {
		return "", err
	}
	if asset.ID == "" {
		asset.ID = uuid.NewString()
	}
	ref := e.newRef("asset")
	e.assets[ref] = asset
	e.log.Debug("asset submitted", "ref", ref, "label", asset.Label, "binary", asset.Binary)
	return ref, nil
}

// assetPath returns a file path for the asset, spilling in-memory data to a
// temporary file when needed
func (e *Engine) assetPath(ref engine.Ref) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.checkReady(); err != nil {
		return "", err
	}
	asset, ok := e.assets[ref]
	if !ok {
		return "", fmt.Errorf("asset %s: %w", ref, engine.ErrStaleRef)
	}
	if asset.Path != "" {
		return asset.Path, nil
	}
	path, err := spillToTemp(asset)
	if err != nil {
		return "", err
	}
	e.tempFiles = append(e.tempFiles, path)
	asset.Path = path
	e.assets[ref] = asset
	return path, nil
}

// Structures lists materialized structures in creation order
func (e *Engine) Structures() []engine.Ref {
	e.mu.Lock()
	defer e.mu.Unlock()
	var refs []engine.Ref
	for _, ref := range e.order {
		if _, ok := e.structures[ref]; ok {
			refs = append(refs, ref)
		}
	}
	return refs
}

// Representations lists representation nodes in creation order
func (e *Engine) Representations() []engine.Ref {
	e.mu.Lock()
	defer e.mu.Unlock()
	var refs []engine.Ref
	for _, ref := range e.order {
		if _, ok := e.representations[ref]; ok {
			refs = append(refs, ref)
		}
	}
	return refs
}

// refresh asks the canvas to repaint, at most cfg.MaxFPS times a second.
// Requests inside the interval collapse into one repaint at its end. Must be
// called without e.mu held.
func (e *Engine) refresh() {
	e.mu.Lock()
	canvas := e.canvas
	if canvas == nil {
		e.mu.Unlock()
		return
	}
	if e.cfg.MaxFPS > 0 {
		now := time.Now()
		if wait := e.lastRefresh.Add(time.Second / time.Duration(e.cfg.MaxFPS)).Sub(now); wait > 0 {
			if !e.refreshPending {
				e.refreshPending = true
				time.AfterFunc(wait, e.flushRefresh)
			}
			e.mu.Unlock()
			return
		}
		e.lastRefresh = now
	}
	e.mu.Unlock()
	canvas.Refresh()
}

func (e *Engine) flushRefresh() {
	e.mu.Lock()
	e.refreshPending = false
	e.lastRefresh = time.Now()
	canvas := e.canvas
	if e.disposed {
		canvas = nil
	}
	e.mu.Unlock()
	if canvas != nil {
		canvas.Refresh()
	}
}
