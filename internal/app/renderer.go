package app

import (
	"image/color"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/philipparndt/gomol/pkg/geometry"
	"github.com/philipparndt/gomol/pkg/molengine"
)

const (
	sphereRings   = 10
	sphereSlices  = 10
	bondRadius    = 0.12
	traceRadius   = 0.35
	cylinderSides = 6
	pointRadius   = 0.15
)

func toRaylib(v geometry.Vector3) rl.Vector3 {
	return rl.Vector3{X: float32(v.X), Y: float32(v.Y), Z: float32(v.Z)}
}

func toColor(c color.RGBA) rl.Color {
	return rl.NewColor(c.R, c.G, c.B, c.A)
}

// ensureTargets resizes the eye render textures to the viewport bounds
func (v *ViewState) ensureTargets(stereo bool) {
	w, h := int32(v.bounds.Width), int32(v.bounds.Height)
	if stereo {
		w /= 2
	}
	if w < 1 || h < 1 {
		return
	}
	if w == v.eyeW && h == v.eyeH && v.eyes[0].ID != 0 {
		return
	}
	v.unloadTargets()
	v.eyes[0] = rl.LoadRenderTexture(w, h)
	v.eyes[1] = rl.LoadRenderTexture(w, h)
	v.eyeW, v.eyeH = w, h
}

func (v *ViewState) unloadTargets() {
	for i := range v.eyes {
		if v.eyes[i].ID != 0 {
			rl.UnloadRenderTexture(v.eyes[i])
			v.eyes[i] = rl.RenderTexture2D{}
		}
	}
}

// renderEyes draws the scene into the eye textures; must run outside
// BeginDrawing
func (v *ViewState) renderEyes(scene molengine.Scene) {
	stereo := scene.Stereo.Enabled
	v.ensureTargets(stereo)
	if v.eyeW == 0 {
		return
	}

	offsets := []float32{0}
	if stereo {
		sep := float32(scene.Stereo.EyeSeparation*scene.Camera.Distance) * v.Camera.zoom / 2
		offsets = []float32{-sep, sep}
	}

	for i, offset := range offsets {
		cam := v.Camera.update(scene, offset)
		rl.BeginTextureMode(v.eyes[i])
		rl.ClearBackground(toColor(scene.Background))
		rl.BeginMode3D(cam)
		drawLayers(scene)
		rl.EndMode3D()
		rl.EndTextureMode()
	}
}

// blit copies the eye textures into the viewport bounds
func (v *ViewState) blit(stereo bool) {
	if v.eyeW == 0 {
		return
	}
	// render textures are stored upside down
	src := rl.Rectangle{X: 0, Y: 0, Width: float32(v.eyeW), Height: -float32(v.eyeH)}
	rl.DrawTextureRec(v.eyes[0].Texture, src, rl.Vector2{X: v.bounds.X, Y: v.bounds.Y}, rl.White)
	if stereo {
		pos := rl.Vector2{X: v.bounds.X + float32(v.eyeW), Y: v.bounds.Y}
		rl.DrawTextureRec(v.eyes[1].Texture, src, pos, rl.White)
	}
}

func drawLayers(scene molengine.Scene) {
	for _, layer := range scene.Layers {
		style := layer.Style()
		if style.Alpha == 0 {
			continue
		}

		positions := make([]rl.Vector3, len(layer.Atoms))
		for i, a := range layer.Atoms {
			positions[i] = toRaylib(scene.Spun(a.Position))
		}
		colorOf := func(i int) rl.Color {
			c := layer.AtomColor(i)
			c.A = style.Alpha
			return toColor(c)
		}

		for i, a := range layer.Atoms {
			switch {
			case style.AtomScale > 0:
				r := float32(a.Radius * style.AtomScale)
				rl.DrawSphereEx(positions[i], r, sphereRings, sphereSlices, colorOf(i))
			case style.Points:
				rl.DrawSphereEx(positions[i], pointRadius, 4, 4, colorOf(i))
			}
		}

		if style.Bonds {
			for _, b := range layer.Bonds {
				start, end := positions[b[0]], positions[b[1]]
				mid := rl.Vector3Lerp(start, end, 0.5)
				if style.AtomScale > 0 {
					rl.DrawCylinderEx(start, mid, bondRadius, bondRadius, cylinderSides, colorOf(b[0]))
					rl.DrawCylinderEx(mid, end, bondRadius, bondRadius, cylinderSides, colorOf(b[1]))
				} else {
					rl.DrawLine3D(start, mid, colorOf(b[0]))
					rl.DrawLine3D(mid, end, colorOf(b[1]))
				}
			}
		}

		if style.Trace {
			for i := 1; i < len(layer.Trace); i++ {
				a, b := layer.Trace[i-1], layer.Trace[i]
				rl.DrawCylinderEx(positions[a], positions[b], traceRadius, traceRadius, cylinderSides, colorOf(b))
				rl.DrawSphereEx(positions[b], traceRadius, 4, 6, colorOf(b))
			}
		}
	}
}
