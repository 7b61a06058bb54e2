package molengine

import (
	"fmt"
	"image/color"
	"time"

	"github.com/philipparndt/gomol/pkg/engine"
	"github.com/philipparndt/gomol/pkg/geometry"
)

const (
	spinRadiansPerSecond = 1.0 // at speed 1
	sphereMargin         = 2.0 // Å
	focusDistanceFactor  = 2.5
)

// cameraMove animates the focus point and distance
type cameraMove struct {
	fromTarget, toTarget     geometry.Vector3
	fromDistance, toDistance float64
	start                    time.Time
	duration                 time.Duration
}

type viewState struct {
	background color.RGBA
	projection engine.Projection
	stereo     engine.StereoProps
	spinSpeed  float64
	spinAngle  float64
	spinSince  time.Time
	move       cameraMove
	focused    bool
	frame      int
	now        func() time.Time
}

func newViewState(background color.RGBA) viewState {
	return viewState{
		background: background,
		projection: engine.Perspective,
		move:       cameraMove{fromDistance: 50, toDistance: 50},
		now:        time.Now,
	}
}

// advanceSpin folds elapsed spin into spinAngle
func (v *viewState) advanceSpin() {
	now := v.now()
	if v.spinSpeed != 0 && !v.spinSince.IsZero() {
		v.spinAngle += now.Sub(v.spinSince).Seconds() * v.spinSpeed * spinRadiansPerSecond
	}
	v.spinSince = now
}

// camera returns the interpolated camera target and distance
func (v *viewState) camera() (geometry.Vector3, float64) {
	m := v.move
	if m.duration <= 0 {
		return m.toTarget, m.toDistance
	}
	t := float64(v.now().Sub(m.start)) / float64(m.duration)
	if t >= 1 {
		return m.toTarget, m.toDistance
	}
	if t < 0 {
		t = 0
	}
	// ease out
	t = 1 - (1-t)*(1-t)
	return m.fromTarget.Lerp(m.toTarget, t), m.fromDistance + (m.toDistance-m.fromDistance)*t
}

// moving reports whether a camera move is in progress
func (v *viewState) moving() bool {
	m := v.move
	return m.duration > 0 && v.now().Before(m.start.Add(m.duration))
}

// SetCanvasProps applies a partial update of the canvas properties
func (e *Engine) SetCanvasProps(props engine.CanvasProps) error {
	e.mu.Lock()
	if err := e.checkReady(); err != nil {
		e.mu.Unlock()
		return err
	}
	if props.Projection != nil {
		switch *props.Projection {
		case engine.Perspective, engine.Orthographic:
		default:
			e.mu.Unlock()
			return fmt.Errorf("unknown projection %q", *props.Projection)
		}
	}

	if props.Background != nil {
		e.view.background = *props.Background
	}
	if props.Spin != nil {
		e.view.advanceSpin()
		e.view.spinSpeed = props.Spin.Speed
	}
	if props.Stereo != nil {
		e.view.stereo = *props.Stereo
	}
	if props.Projection != nil {
		e.view.projection = *props.Projection
	}
	e.mu.Unlock()

	e.refresh()
	return nil
}

// BoundingSphere returns the bounding sphere of the current frame of every
// structure
func (e *Engine) BoundingSphere() geometry.Sphere {
	e.mu.Lock()
	defer e.mu.Unlock()

	var points []geometry.Vector3
	for _, s := range e.structures {
		points = append(points, s.frames[e.frameIndex(s)]...)
	}
	return geometry.BoundingSphere(points, sphereMargin)
}

// frameIndex must be called with e.mu held
func (e *Engine) frameIndex(s *structure) int {
	if e.view.frame < len(s.frames) {
		return e.view.frame
	}
	return 0
}

// FocusCamera moves the camera to look at center from a distance that fits
// radius, animated over duration
func (e *Engine) FocusCamera(center geometry.Vector3, radius float64, duration time.Duration) {
	e.mu.Lock()
	target, distance := e.view.camera()
	e.view.focused = true
	e.view.move = cameraMove{
		fromTarget:   target,
		toTarget:     center,
		fromDistance: distance,
		toDistance:   radius * focusDistanceFactor,
		start:        e.view.now(),
		duration:     duration,
	}
	e.mu.Unlock()

	e.refresh()
}
