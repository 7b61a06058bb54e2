package molengine

import (
	"image/color"

	"github.com/philipparndt/gomol/pkg/engine"
	"github.com/philipparndt/gomol/pkg/geometry"
)

// SceneAtom is one atom of the current frame
type SceneAtom struct {
	Position geometry.Vector3
	Radius   float64
	Symbol   string
}

// Layer is one representation applied to a structure
type Layer struct {
	Type  string
	Theme string
	Color color.RGBA
	Atoms []SceneAtom
	Bonds [][2]int
	Trace []int
}

// Camera is the interpolated view point
type Camera struct {
	Target   geometry.Vector3
	Distance float64
}

// Scene is an immutable snapshot of everything a renderer needs
type Scene struct {
	Background color.RGBA
	Projection engine.Projection
	Stereo     engine.StereoProps
	SpinAngle  float64 // radians around the Y axis
	Camera     Camera
	Frame      int
	FrameCount int
	Layers     []Layer
	// Moving is set while spin or a camera move changes the view without
	// further engine calls; renderers keep repainting while it is set
	Moving bool
}

// Empty reports whether there is nothing to draw
func (s Scene) Empty() bool {
	return len(s.Layers) == 0
}

// Bounds returns the axis-aligned box around the atoms of the current frame
func (s Scene) Bounds() geometry.BoundingBox {
	box := geometry.NewBoundingBox()
	for _, l := range s.Layers {
		for _, a := range l.Atoms {
			box.Extend(a.Position)
		}
	}
	return box
}

// Spun returns p rotated by the spin angle about the vertical axis through
// the camera target
func (s Scene) Spun(p geometry.Vector3) geometry.Vector3 {
	if s.SpinAngle == 0 {
		return p
	}
	c := s.Camera.Target
	return c.Add(p.Sub(c).RotateY(s.SpinAngle))
}

// Scene takes a snapshot of the state to draw
func (e *Engine) Scene() Scene {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.view.advanceSpin()
	target, distance := e.view.camera()
	scene := Scene{
		Background: e.view.background,
		Projection: e.view.projection,
		Stereo:     e.view.stereo,
		SpinAngle:  e.view.spinAngle,
		Camera:     Camera{Target: target, Distance: distance},
		Frame:      e.view.frame,
		Moving:     e.view.spinSpeed != 0 || e.view.moving(),
	}

	for _, ref := range e.order {
		r, ok := e.representations[ref]
		if !ok {
			continue
		}
		s, ok := e.structures[r.structure]
		if !ok {
			continue
		}
		if len(s.frames) > scene.FrameCount {
			scene.FrameCount = len(s.frames)
		}
		frame := s.frames[e.frameIndex(s)]
		atoms := make([]SceneAtom, len(s.atoms))
		for i, a := range s.atoms {
			atoms[i] = SceneAtom{Position: frame[i], Radius: a.Radius, Symbol: a.Symbol}
		}
		scene.Layers = append(scene.Layers, Layer{
			Type:  r.params.Type,
			Theme: r.params.ColorTheme.Name,
			Color: r.params.ColorTheme.Value,
			Atoms: atoms,
			Bonds: s.bonds,
			Trace: s.trace,
		})
	}
	return scene
}
