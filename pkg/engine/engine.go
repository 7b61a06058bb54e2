// Package engine defines the capability contract between the viewport core
// and a molecular rendering engine. The core never touches an engine's
// scene graph directly; it only calls the methods below.
package engine

import (
	"context"
	"errors"
	"image/color"
	"time"

	"github.com/philipparndt/gomol/pkg/format"
	"github.com/philipparndt/gomol/pkg/geometry"
)

var (
	// ErrStaleRef is returned when a ref no longer names a live state node
	ErrStaleRef = errors.New("stale ref")
	// ErrNoParser is returned when a format is recognized but cannot be parsed
	ErrNoParser = errors.New("no parser for format")
	// ErrNotInitialized is returned by engine calls made before Initialize
	ErrNotInitialized = errors.New("engine not initialized")
)

// Ref names a node in the engine's state tree (asset, trajectory, model,
// coordinates, structure or representation)
type Ref string

// Asset is a file handed to the engine by the host
type Asset struct {
	ID     string
	Label  string
	Path   string // file reference; used when Data is nil
	Data   []byte
	Binary bool
}

// RepresentationType is one entry of the engine's representation registry
type RepresentationType struct {
	Tag   string
	Label string
}

// ColorTheme colors a representation. Only the "uniform" theme is used by
// the core: one color for every atom.
type ColorTheme struct {
	Name  string
	Value color.RGBA
}

// UniformColor returns the uniform color theme for c
func UniformColor(c color.RGBA) ColorTheme {
	return ColorTheme{Name: "uniform", Value: c}
}

// RepresentationParams configures a tagged representation
type RepresentationParams struct {
	Type       string
	ColorTheme ColorTheme
}

// Projection is the camera projection mode
type Projection string

const (
	Perspective  Projection = "perspective"
	Orthographic Projection = "orthographic"
)

// SpinProps configures the trackball spin animation
type SpinProps struct {
	Speed float64
}

// StereoProps configures side-by-side stereo rendering
type StereoProps struct {
	Enabled       bool
	EyeSeparation float64
	Focus         float64
}

// CanvasProps is a partial update of canvas properties; nil fields are left
// unchanged
type CanvasProps struct {
	Background *color.RGBA
	Spin       *SpinProps
	Stereo     *StereoProps
	Projection *Projection
}

// Canvas is the drawing surface an engine renders into
type Canvas interface {
	// Refresh requests a repaint
	Refresh()
	// Size returns the drawable size in pixels
	Size() (width, height int)
}

// Container is the element hosting the canvas
type Container interface {
	SetFullScreen(on bool) error
	FullScreen() bool
}

// Animation controls trajectory frame playback
type Animation interface {
	// Current reports whether an animation is defined for the loaded trajectory
	Current() bool
	IsPlaying() bool
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// Statistics exposes counts derived from loaded data
type Statistics interface {
	AtomCount(structure Ref) int
	FrameCount(trajectory Ref) int
}

// Config configures a new engine
type Config struct {
	Background   color.RGBA
	AnimationFPS int
	// MaxFPS caps canvas repaint requests; 0 means no cap
	MaxFPS int
}

// Factory creates an engine; one engine per viewport session
type Factory func(cfg Config) (Engine, error)

// Engine is the rendering engine contract
type Engine interface {
	Initialize(ctx context.Context, canvas Canvas, container Container) (bool, error)
	Dispose() error

	SubmitAsset(ctx context.Context, asset Asset) (Ref, error)
	ParseTopology(ctx context.Context, asset Ref, f format.Topology) (Ref, error)
	DeriveModel(ctx context.Context, trajectory Ref) (Ref, error)
	ParseCoordinates(ctx context.Context, asset Ref, f format.Coordinates) (Ref, error)
	MergeModelAndCoordinates(ctx context.Context, model, coordinates Ref) (Ref, error)
	ApplyDefaultPreset(ctx context.Context, trajectory Ref) error

	// Structures lists materialized structures in creation order
	Structures() []Ref
	// Representations lists representation nodes in creation order
	Representations() []Ref
	RepresentationTypes() []RepresentationType
	UpsertRepresentation(ctx context.Context, structure Ref, tag string, params RepresentationParams) error
	RemoveRepresentation(ctx context.Context, representation Ref) error

	SetCanvasProps(props CanvasProps) error
	BoundingSphere() geometry.Sphere
	FocusCamera(center geometry.Vector3, radius float64, duration time.Duration)

	Animation() Animation
	Statistics() Statistics
}
