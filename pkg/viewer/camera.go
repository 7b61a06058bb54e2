package viewer

import (
	"math"

	"github.com/philipparndt/gomol/pkg/engine"
	"github.com/philipparndt/gomol/pkg/geometry"
)

const (
	minZoom   = 0.05
	nearPlane = 0.01
)

// Camera orbits a target. Target and base distance follow the engine, the
// orbit angles and the zoom factor are local to the view.
type Camera struct {
	Target     geometry.Vector3
	Up         geometry.Vector3
	FOV        float64 // Field of view in radians
	Distance   float64
	Zoom       float64
	RotationX  float64 // Rotation around X axis (vertical)
	RotationY  float64 // Rotation around Y axis (horizontal)
	Projection engine.Projection

	// EyeOffset shifts the eye sideways, used for stereo pairs
	EyeOffset float64
}

// NewCamera creates a camera looking at target from distance
func NewCamera(target geometry.Vector3, distance float64) *Camera {
	return &Camera{
		Target:     target,
		Up:         geometry.NewVector3(0, 1, 0),
		FOV:        math.Pi / 4,
		Distance:   distance,
		Zoom:       1,
		Projection: engine.Perspective,
	}
}

// Position returns the eye position derived from the orbit angles
func (c *Camera) Position() geometry.Vector3 {
	d := c.Distance * c.Zoom
	x := d * math.Cos(c.RotationX) * math.Sin(c.RotationY)
	y := d * math.Sin(c.RotationX)
	z := d * math.Cos(c.RotationX) * math.Cos(c.RotationY)
	return c.Target.Add(geometry.NewVector3(x, y, z))
}

// Rotate rotates the camera by the given angles
func (c *Camera) Rotate(deltaX, deltaY float64) {
	c.RotationX += deltaX
	c.RotationY += deltaY

	// Clamp X rotation to prevent gimbal lock
	maxAngle := math.Pi/2 - 0.1
	if c.RotationX > maxAngle {
		c.RotationX = maxAngle
	}
	if c.RotationX < -maxAngle {
		c.RotationX = -maxAngle
	}
}

// ZoomBy scales the zoom factor by 1+delta
func (c *Camera) ZoomBy(delta float64) {
	c.Zoom *= 1.0 + delta
	if c.Zoom < minZoom {
		c.Zoom = minZoom
	}
}

// Stereo returns a copy of the camera shifted by offset along its right axis
func (c *Camera) Stereo(offset float64) *Camera {
	eye := *c
	eye.EyeOffset = offset
	return &eye
}

func (c *Camera) basis() (eye, forward, right, up geometry.Vector3) {
	pos := c.Position()
	forward = c.Target.Sub(pos).Normalize()
	right = forward.Cross(c.Up).Normalize()
	up = right.Cross(forward).Normalize()
	eye = pos.Add(right.Mul(c.EyeOffset))
	return eye, forward, right, up
}

// Project projects a 3D point to screen coordinates. It returns the screen
// position, the depth along the view axis and the number of pixels per world
// unit at that depth.
func (c *Camera) Project(point geometry.Vector3, width, height float64) (x, y, depth, scale float64) {
	eye, forward, right, up := c.basis()

	relative := point.Sub(eye)
	cx := relative.Dot(right)
	cy := relative.Dot(up)
	depth = relative.Dot(forward)

	fovScale := math.Tan(c.FOV / 2)
	half := height / 2

	if c.Projection == engine.Orthographic {
		// the frustum slice at the target distance is kept on screen
		scale = half / (c.Distance * c.Zoom * fovScale)
	} else {
		z := depth
		if z <= nearPlane {
			z = nearPlane
		}
		scale = half / (z * fovScale)
	}

	x = cx*scale + width/2
	y = -cy*scale + half
	return x, y, depth, scale
}
