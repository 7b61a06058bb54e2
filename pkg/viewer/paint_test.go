package viewer

import (
	"image/color"
	"testing"

	"github.com/philipparndt/gomol/pkg/engine"
	"github.com/philipparndt/gomol/pkg/geometry"
	"github.com/philipparndt/gomol/pkg/molengine"
)

var (
	black = color.RGBA{0, 0, 0, 255}
	red   = color.RGBA{255, 0, 0, 255}
)

func singleAtom(typ string) molengine.Scene {
	return molengine.Scene{
		Background: black,
		Projection: engine.Perspective,
		Camera:     molengine.Camera{Distance: 10},
		Layers: []molengine.Layer{{
			Type:  typ,
			Theme: "uniform",
			Color: red,
			Atoms: []molengine.SceneAtom{{Radius: 1.5, Symbol: "O"}},
		}},
	}
}

func TestRenderEmptyScene(t *testing.T) {
	scene := molengine.Scene{Background: color.RGBA{10, 20, 30, 255}}
	img := Render(scene, NewCamera(geometry.Vector3{}, 10), 32, 16)

	if got := img.RGBAAt(5, 5); got != scene.Background {
		t.Errorf("Render failed: expected background %v, got %v", scene.Background, got)
	}
	if b := img.Bounds(); b.Dx() != 32 || b.Dy() != 16 {
		t.Errorf("Render failed: expected 32x16, got %v", b)
	}
}

func TestRenderSpacefillAtom(t *testing.T) {
	img := Render(singleAtom("spacefill"), NewCamera(geometry.Vector3{}, 10), 64, 64)

	center := img.RGBAAt(32, 32)
	if center == black || center.R == 0 {
		t.Errorf("Render failed: expected a red pixel at the center, got %v", center)
	}
	if corner := img.RGBAAt(0, 0); corner != black {
		t.Errorf("Render failed: expected background at the corner, got %v", corner)
	}
}

func TestRenderFollowsSceneCamera(t *testing.T) {
	scene := singleAtom("spacefill")
	scene.Projection = engine.Orthographic
	scene.Camera.Distance = 25

	cam := NewCamera(geometry.Vector3{}, 10)
	Render(scene, cam, 16, 16)

	if cam.Distance != 25 {
		t.Errorf("Render failed: expected camera distance 25, got %v", cam.Distance)
	}
	if cam.Projection != engine.Orthographic {
		t.Errorf("Render failed: expected orthographic projection, got %v", cam.Projection)
	}
}

func TestRenderStereoDrawsTwoViews(t *testing.T) {
	scene := singleAtom("spacefill")
	scene.Stereo = engine.StereoProps{Enabled: true, EyeSeparation: 0.06, Focus: 3}

	img := Render(scene, NewCamera(geometry.Vector3{}, 10), 128, 64)

	if left := img.RGBAAt(32, 32); left.R == 0 {
		t.Errorf("Render failed: expected the atom in the left view, got %v", left)
	}
	if right := img.RGBAAt(96, 32); right.R == 0 {
		t.Errorf("Render failed: expected the atom in the right view, got %v", right)
	}
	if middle := img.RGBAAt(64, 2); middle != black {
		t.Errorf("Render failed: expected background between the views, got %v", middle)
	}
}

func TestFrameDepthTest(t *testing.T) {
	f := newFrame(4, 4, black)
	f.plot(1, 1, 5, red)
	f.plot(1, 1, 9, color.RGBA{0, 255, 0, 255})

	if got := f.img.RGBAAt(1, 1); got != red {
		t.Errorf("plot failed: expected the closer color %v, got %v", red, got)
	}
}
