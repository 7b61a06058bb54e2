package viewer

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/philipparndt/gomol/pkg/molengine"
)

const (
	traceWidth = 3
	pointSize  = 2
)

// Render paints scene into a width x height image. The camera follows the
// scene's target, distance and projection; its orbit and zoom are kept.
func Render(scene molengine.Scene, cam *Camera, width, height int) *image.RGBA {
	cam.Target = scene.Camera.Target
	if scene.Camera.Distance > 0 {
		cam.Distance = scene.Camera.Distance
	}
	cam.Projection = scene.Projection

	if !scene.Stereo.Enabled || width < 2 {
		f := newFrame(width, height, scene.Background)
		paintLayers(f, scene, cam)
		return f.img
	}

	// side by side, left eye on the left
	half := width / 2
	sep := scene.Stereo.EyeSeparation * cam.Distance * cam.Zoom / 2
	out := image.NewRGBA(image.Rect(0, 0, width, height))
	for i, offset := range []float64{-sep, sep} {
		f := newFrame(half, height, scene.Background)
		paintLayers(f, scene, cam.Stereo(offset))
		dst := image.Rect(i*half, 0, (i+1)*half, height)
		draw.Draw(out, dst, f.img, image.Point{}, draw.Src)
	}
	return out
}

func paintLayers(f *frame, scene molengine.Scene, cam *Camera) {
	w, h := float64(f.width), float64(f.height)

	for _, layer := range scene.Layers {
		style := layer.Style()
		if style.Alpha == 0 {
			continue
		}

		type projected struct{ x, y, z, scale float64 }
		pts := make([]projected, len(layer.Atoms))
		for i, a := range layer.Atoms {
			p := scene.Spun(a.Position)
			x, y, z, s := cam.Project(p, w, h)
			pts[i] = projected{x, y, z, s}
		}

		colorOf := func(i int) color.RGBA {
			c := layer.AtomColor(i)
			c.A = style.Alpha
			return c
		}

		for i, p := range pts {
			if p.z <= nearPlane {
				continue
			}
			switch {
			case style.AtomScale > 0:
				r := layer.Atoms[i].Radius * style.AtomScale * p.scale
				f.fillSphere(p.x, p.y, p.z, r, colorOf(i))
			case style.Points:
				f.fillSphere(p.x, p.y, p.z, pointSize, colorOf(i))
			}
		}

		if style.Bonds {
			for _, b := range layer.Bonds {
				a, c := pts[b[0]], pts[b[1]]
				if a.z <= nearPlane || c.z <= nearPlane {
					continue
				}
				// each half takes the color of its atom
				mx, my, mz := (a.x+c.x)/2, (a.y+c.y)/2, (a.z+c.z)/2
				f.drawLine(int(a.x), int(a.y), a.z, int(mx), int(my), mz, 1, colorOf(b[0]))
				f.drawLine(int(mx), int(my), mz, int(c.x), int(c.y), c.z, 1, colorOf(b[1]))
			}
		}

		if style.Trace {
			for i := 1; i < len(layer.Trace); i++ {
				a, c := pts[layer.Trace[i-1]], pts[layer.Trace[i]]
				if a.z <= nearPlane || c.z <= nearPlane {
					continue
				}
				f.drawLine(int(a.x), int(a.y), a.z, int(c.x), int(c.y), c.z, traceWidth, colorOf(layer.Trace[i]))
			}
		}
	}
}
