package viewer

import (
	"image"
	"image/color"
	"math"
)

// frame is an image with a depth buffer
type frame struct {
	img    *image.RGBA
	zbuf   []float64
	width  int
	height int
}

func newFrame(width, height int, background color.RGBA) *frame {
	f := &frame{
		img:    image.NewRGBA(image.Rect(0, 0, width, height)),
		zbuf:   make([]float64, width*height),
		width:  width,
		height: height,
	}
	for i := range f.zbuf {
		f.zbuf[i] = math.Inf(1)
	}
	for i := 0; i < len(f.img.Pix); i += 4 {
		f.img.Pix[i] = background.R
		f.img.Pix[i+1] = background.G
		f.img.Pix[i+2] = background.B
		f.img.Pix[i+3] = 255
	}
	return f
}

// plot writes col if z is closer than what is already there
func (f *frame) plot(x, y int, z float64, col color.RGBA) {
	if x < 0 || y < 0 || x >= f.width || y >= f.height {
		return
	}
	idx := y*f.width + x
	if z >= f.zbuf[idx] {
		return
	}
	if col.A < 255 {
		col = blend(f.img.RGBAAt(x, y), col)
	} else {
		f.zbuf[idx] = z
	}
	f.img.SetRGBA(x, y, col)
}

func blend(dst, src color.RGBA) color.RGBA {
	a := float64(src.A) / 255
	mix := func(d, s uint8) uint8 {
		return uint8(float64(s)*a + float64(d)*(1-a))
	}
	return color.RGBA{mix(dst.R, src.R), mix(dst.G, src.G), mix(dst.B, src.B), 255}
}

// fillSphere draws a shaded disc whose depth bulges toward the viewer so
// that intersecting spheres resolve correctly
func (f *frame) fillSphere(cx, cy, z, radius float64, col color.RGBA) {
	if radius < 0.5 {
		f.plot(int(cx), int(cy), z, col)
		return
	}
	minY := int(math.Max(0, math.Floor(cy-radius)))
	maxY := int(math.Min(float64(f.height-1), math.Ceil(cy+radius)))
	minX := int(math.Max(0, math.Floor(cx-radius)))
	maxX := int(math.Min(float64(f.width-1), math.Ceil(cx+radius)))

	r2 := radius * radius
	for y := minY; y <= maxY; y++ {
		dy := float64(y) + 0.5 - cy
		for x := minX; x <= maxX; x++ {
			dx := float64(x) + 0.5 - cx
			d2 := dx*dx + dy*dy
			if d2 > r2 {
				continue
			}
			nz := math.Sqrt(1 - d2/r2)
			// light from the upper left
			light := 0.35 + 0.65*math.Max(0, (-dx*0.4-dy*0.4)/radius+nz*0.8)
			f.plot(x, y, z-nz*radius, shade(col, light))
		}
	}
}

// drawLine draws a depth tested line using Bresenham's algorithm, widened
// to width pixels
func (f *frame) drawLine(x1, y1 int, z1 float64, x2, y2 int, z2 float64, width int, col color.RGBA) {
	dx := abs(x2 - x1)
	dy := abs(y2 - y1)

	sx, sy := 1, 1
	if x1 > x2 {
		sx = -1
	}
	if y1 > y2 {
		sy = -1
	}

	steps := dx
	if dy > steps {
		steps = dy
	}
	half := width / 2

	err := dx - dy
	for i := 0; ; i++ {
		z := z1
		if steps > 0 {
			z = z1 + (z2-z1)*float64(i)/float64(steps)
		}
		for ox := -half; ox <= half; ox++ {
			for oy := -half; oy <= half; oy++ {
				f.plot(x1+ox, y1+oy, z, col)
			}
		}

		if x1 == x2 && y1 == y2 {
			break
		}

		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x1 += sx
		}
		if e2 < dx {
			err += dx
			y1 += sy
		}
	}
}

func shade(c color.RGBA, light float64) color.RGBA {
	scale := func(v uint8) uint8 {
		return uint8(math.Min(255, float64(v)*light))
	}
	return color.RGBA{scale(c.R), scale(c.G), scale(c.B), c.A}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
