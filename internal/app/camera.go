package app

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/philipparndt/gomol/pkg/engine"
	"github.com/philipparndt/gomol/pkg/molengine"
)

const (
	defaultAngleX = 0.3
	defaultAngleY = 0.3
	fovy          = 45.0
	maxPitch      = 1.5
	minZoom       = 0.05
)

func newCameraState() CameraState {
	return CameraState{
		angleX: defaultAngleX,
		angleY: defaultAngleY,
		zoom:   1,
		camera: rl.Camera3D{
			Up:         rl.Vector3{X: 0, Y: 1, Z: 0},
			Fovy:       fovy,
			Projection: rl.CameraPerspective,
		},
	}
}

// rotate changes the orbit angles by a mouse delta
func (c *CameraState) rotate(delta rl.Vector2) {
	c.angleY -= delta.X * 0.01
	c.angleX += delta.Y * 0.01

	// Clamp vertical rotation
	if c.angleX > maxPitch {
		c.angleX = maxPitch
	}
	if c.angleX < -maxPitch {
		c.angleX = -maxPitch
	}
}

func (c *CameraState) zoomBy(wheel float32) {
	c.zoom *= 1 - wheel*0.1
	if c.zoom < minZoom {
		c.zoom = minZoom
	}
}

func (c *CameraState) reset() {
	c.angleX = defaultAngleX
	c.angleY = defaultAngleY
	c.zoom = 1
}

// update places the camera around the scene target. eyeOffset shifts it
// sideways for stereo pairs.
func (c *CameraState) update(scene molengine.Scene, eyeOffset float32) rl.Camera3D {
	target := rl.Vector3{
		X: float32(scene.Camera.Target.X),
		Y: float32(scene.Camera.Target.Y),
		Z: float32(scene.Camera.Target.Z),
	}
	distance := float32(scene.Camera.Distance) * c.zoom

	x := distance * float32(math.Cos(float64(c.angleX))) * float32(math.Sin(float64(c.angleY)))
	y := distance * float32(math.Sin(float64(c.angleX)))
	z := distance * float32(math.Cos(float64(c.angleX))) * float32(math.Cos(float64(c.angleY)))
	position := rl.Vector3{X: target.X + x, Y: target.Y + y, Z: target.Z + z}

	if eyeOffset != 0 {
		forward := rl.Vector3Normalize(rl.Vector3Subtract(target, position))
		right := rl.Vector3Normalize(rl.Vector3CrossProduct(forward, c.camera.Up))
		shift := rl.Vector3Scale(right, eyeOffset)
		position = rl.Vector3Add(position, shift)
		target = rl.Vector3Add(target, shift)
	}

	c.camera.Position = position
	c.camera.Target = target
	if scene.Projection == engine.Orthographic {
		// orthographic fovy is the visible height in world units
		c.camera.Projection = rl.CameraOrthographic
		c.camera.Fovy = 2 * distance * float32(math.Tan(fovy/2*math.Pi/180))
	} else {
		c.camera.Projection = rl.CameraPerspective
		c.camera.Fovy = fovy
	}
	return c.camera
}
