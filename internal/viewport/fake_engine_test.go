package viewport

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"sync"
	"time"

	"github.com/philipparndt/gomol/pkg/engine"
	"github.com/philipparndt/gomol/pkg/format"
	"github.com/philipparndt/gomol/pkg/geometry"
)

type upsertCall struct {
	structure engine.Ref
	tag       string
	params    engine.RepresentationParams
}

type focusCall struct {
	center   geometry.Vector3
	radius   float64
	duration time.Duration
}

type fakeRepr struct {
	ref       engine.Ref
	structure engine.Ref
	tag       string
	params    engine.RepresentationParams
}

// fakeEngine records calls and keeps just enough state to behave like a
// real engine. failOn makes the named method return the given error.
type fakeEngine struct {
	mu sync.Mutex

	initialized bool
	disposed    bool
	failOn      map[string]error
	block       chan struct{} // ParseTopology waits on it when set
	entered     chan struct{}

	nextID      int
	assets      []engine.Asset
	models      map[engine.Ref]bool
	coords      map[engine.Ref]int
	trajFrames  map[engine.Ref]int
	structures  []engine.Ref
	reprs       []*fakeRepr
	frames      int
	atoms       int
	types       []engine.RepresentationType
	upserts     []upsertCall
	canvasProps []engine.CanvasProps
	focus       []focusCall
	anim        fakeAnimation
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{
		failOn:     map[string]error{},
		models:     map[engine.Ref]bool{},
		coords:     map[engine.Ref]int{},
		trajFrames: map[engine.Ref]int{},
		atoms:      42,
		types: []engine.RepresentationType{
			{Tag: "cartoon", Label: "Cartoon"},
			{Tag: "ball-and-stick", Label: "Ball & Stick"},
			{Tag: "gaussian-volume", Label: "Gaussian Volume"},
			{Tag: "gaussian-surface", Label: "Gaussian Surface"},
			{Tag: "spacefill", Label: "Spacefill"},
			{Tag: "cross-link-restraint", Label: "Cross Link Restraint"},
			{Tag: "ellipsoid", Label: "Ellipsoid"},
			{Tag: "carbohydrate", Label: "Carbohydrate"},
			{Tag: "interactions", Label: "Non-covalent Interactions"},
			{Tag: "molecular-surface", Label: "Molecular Surface"},
		},
	}
}

func (f *fakeEngine) factory() engine.Factory {
	return func(engine.Config) (engine.Engine, error) { return f, nil }
}

func (f *fakeEngine) ref(kind string) engine.Ref {
	f.nextID++
	return engine.Ref(fmt.Sprintf("%s:%d", kind, f.nextID))
}

func (f *fakeEngine) fail(method string) error {
	if err, ok := f.failOn[method]; ok {
		return err
	}
	return nil
}

func (f *fakeEngine) setFail(method string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		delete(f.failOn, method)
		return
	}
	f.failOn[method] = err
}

func (f *fakeEngine) Initialize(ctx context.Context, canvas engine.Canvas, container engine.Container) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("Initialize"); err != nil {
		return false, err
	}
	f.initialized = true
	f.disposed = false
	return true, nil
}

func (f *fakeEngine) Dispose() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.disposed = true
	f.structures = nil
	f.reprs = nil
	f.anim.mu.Lock()
	f.anim.playing = false
	f.anim.frames = 0
	f.anim.mu.Unlock()
	return nil
}

func (f *fakeEngine) SubmitAsset(ctx context.Context, asset engine.Asset) (engine.Ref, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("SubmitAsset"); err != nil {
		return "", err
	}
	f.assets = append(f.assets, asset)
	return f.ref("asset"), nil
}

func (f *fakeEngine) ParseTopology(ctx context.Context, asset engine.Ref, _ format.Topology) (engine.Ref, error) {
	f.mu.Lock()
	block, entered := f.block, f.entered
	f.mu.Unlock()
	if block != nil {
		entered <- struct{}{}
		<-block
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("ParseTopology"); err != nil {
		return "", err
	}
	ref := f.ref("trajectory")
	f.trajFrames[ref] = 1
	return ref, nil
}

func (f *fakeEngine) DeriveModel(ctx context.Context, traj engine.Ref) (engine.Ref, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("DeriveModel"); err != nil {
		return "", err
	}
	ref := f.ref("model")
	f.models[ref] = true
	return ref, nil
}

func (f *fakeEngine) ParseCoordinates(ctx context.Context, asset engine.Ref, _ format.Coordinates) (engine.Ref, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("ParseCoordinates"); err != nil {
		return "", err
	}
	ref := f.ref("coordinates")
	f.coords[ref] = 10
	return ref, nil
}

func (f *fakeEngine) MergeModelAndCoordinates(ctx context.Context, model, coords engine.Ref) (engine.Ref, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("MergeModelAndCoordinates"); err != nil {
		return "", err
	}
	if !f.models[model] {
		return "", fmt.Errorf("model %s: %w", model, engine.ErrStaleRef)
	}
	frames, ok := f.coords[coords]
	if !ok {
		return "", fmt.Errorf("coordinates %s: %w", coords, engine.ErrStaleRef)
	}
	ref := f.ref("trajectory")
	f.trajFrames[ref] = frames
	return ref, nil
}

func (f *fakeEngine) ApplyDefaultPreset(ctx context.Context, traj engine.Ref) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("ApplyDefaultPreset"); err != nil {
		return err
	}
	frames, ok := f.trajFrames[traj]
	if !ok {
		return engine.ErrStaleRef
	}
	f.structures = []engine.Ref{f.ref("structure")}
	f.reprs = nil
	for _, typ := range []string{"cartoon", "ball-and-stick"} {
		f.reprs = append(f.reprs, &fakeRepr{
			ref:       f.ref("representation"),
			structure: f.structures[0],
			tag:       "preset",
			params:    engine.RepresentationParams{Type: typ},
		})
	}
	f.frames = frames
	f.anim.mu.Lock()
	f.anim.frames = frames
	f.anim.playing = false
	f.anim.mu.Unlock()
	return nil
}

func (f *fakeEngine) Structures() []engine.Ref {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]engine.Ref(nil), f.structures...)
}

func (f *fakeEngine) Representations() []engine.Ref {
	f.mu.Lock()
	defer f.mu.Unlock()
	var refs []engine.Ref
	for _, r := range f.reprs {
		refs = append(refs, r.ref)
	}
	return refs
}

func (f *fakeEngine) RepresentationTypes() []engine.RepresentationType {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]engine.RepresentationType(nil), f.types...)
}

func (f *fakeEngine) UpsertRepresentation(ctx context.Context, structure engine.Ref, tag string, params engine.RepresentationParams) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upserts = append(f.upserts, upsertCall{structure: structure, tag: tag, params: params})
	if err := f.fail("UpsertRepresentation"); err != nil {
		return err
	}
	for _, r := range f.reprs {
		if r.structure == structure && r.tag == tag {
			r.params = params
			return nil
		}
	}
	f.reprs = append(f.reprs, &fakeRepr{ref: f.ref("representation"), structure: structure, tag: tag, params: params})
	return nil
}

func (f *fakeEngine) RemoveRepresentation(ctx context.Context, ref engine.Ref) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("RemoveRepresentation"); err != nil {
		return err
	}
	for i, r := range f.reprs {
		if r.ref == ref {
			f.reprs = append(f.reprs[:i], f.reprs[i+1:]...)
			return nil
		}
	}
	return engine.ErrStaleRef
}

func (f *fakeEngine) SetCanvasProps(props engine.CanvasProps) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("SetCanvasProps"); err != nil {
		return err
	}
	f.canvasProps = append(f.canvasProps, props)
	return nil
}

func (f *fakeEngine) BoundingSphere() geometry.Sphere {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.structures) == 0 {
		return geometry.Sphere{}
	}
	return geometry.Sphere{Center: geometry.NewVector3(1, 2, 3), Radius: 12}
}

func (f *fakeEngine) FocusCamera(center geometry.Vector3, radius float64, duration time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.focus = append(f.focus, focusCall{center: center, radius: radius, duration: duration})
}

func (f *fakeEngine) Animation() engine.Animation {
	return &f.anim
}

func (f *fakeEngine) Statistics() engine.Statistics {
	return fakeStats{f}
}

// snapshot helpers

func (f *fakeEngine) representations() []fakeRepr {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []fakeRepr
	for _, r := range f.reprs {
		out = append(out, *r)
	}
	return out
}

func (f *fakeEngine) upsertCalls() []upsertCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]upsertCall(nil), f.upserts...)
}

func (f *fakeEngine) lastCanvasProps() engine.CanvasProps {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.canvasProps) == 0 {
		return engine.CanvasProps{}
	}
	return f.canvasProps[len(f.canvasProps)-1]
}

type fakeStats struct{ f *fakeEngine }

func (s fakeStats) AtomCount(ref engine.Ref) int {
	s.f.mu.Lock()
	defer s.f.mu.Unlock()
	for _, r := range s.f.structures {
		if r == ref {
			return s.f.atoms
		}
	}
	return 0
}

func (s fakeStats) FrameCount(ref engine.Ref) int {
	s.f.mu.Lock()
	defer s.f.mu.Unlock()
	return s.f.trajFrames[ref]
}

type fakeAnimation struct {
	mu      sync.Mutex
	frames  int
	playing bool
	starts  int
	stops   int
	failErr error
}

func (a *fakeAnimation) Current() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.frames > 1
}

func (a *fakeAnimation) IsPlaying() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.playing
}

func (a *fakeAnimation) Start(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.failErr != nil {
		return a.failErr
	}
	a.starts++
	a.playing = true
	return nil
}

func (a *fakeAnimation) Stop(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stops++
	a.playing = false
	return nil
}

type fakeCanvas struct{}

func (fakeCanvas) Refresh()         {}
func (fakeCanvas) Size() (int, int) { return 800, 600 }

type fakeContainer struct {
	full bool
	err  error
}

func (c *fakeContainer) SetFullScreen(on bool) error {
	if c.err != nil {
		return c.err
	}
	c.full = on
	return nil
}

func (c *fakeContainer) FullScreen() bool { return c.full }

var errBoom = errors.New("boom")

var white = color.RGBA{R: 255, G: 255, B: 255, A: 255}
