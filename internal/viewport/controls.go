package viewport

import (
	"context"
	"errors"
	"time"

	"github.com/philipparndt/gomol/pkg/engine"
)

const (
	spinSpeed        = 0.27
	stereoEyeSep     = 0.06
	stereoFocus      = 3.0
	recenterDuration = 500 * time.Millisecond
)

// SetBackgroundColor parses value (#rgb or #rrggbb) and applies it
func (s *Session) SetBackgroundColor(value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready {
		return s.reject(notMet("engine not ready"))
	}
	c, err := ParseColor(value)
	if err != nil {
		return s.reject(notMet("%v", err))
	}
	if err := s.engine.SetCanvasProps(engine.CanvasProps{Background: &c}); err != nil {
		return s.controlErr(StageCanvas, err)
	}
	s.background = c
	return nil
}

// SetStructureColor stores the color and, when a structure is shown,
// re-upserts the main representation with it and the current type. While a
// load is running only the stored color changes; the load applies it.
func (s *Session) SetStructureColor(ctx context.Context, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready {
		return s.reject(notMet("engine not ready"))
	}
	c, err := ParseColor(value)
	if err != nil {
		return s.reject(notMet("%v", err))
	}
	if !s.state.HasStructure() || s.inFlight {
		s.structureColor = c
		return nil
	}
	return s.upsertRepresentation(ctx, s.representation, &c)
}

// ToggleSpin turns the trackball spin on at a fixed speed or off
func (s *Session) ToggleSpin() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready {
		return s.reject(notMet("engine not ready"))
	}

	on := !s.spinning
	speed := 0.0
	if on {
		speed = spinSpeed
	}
	if err := s.engine.SetCanvasProps(engine.CanvasProps{Spin: &engine.SpinProps{Speed: speed}}); err != nil {
		return s.controlErr(StageCanvas, err)
	}
	s.spinning = on
	return nil
}

// Spinning reports whether spin is on
func (s *Session) Spinning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.spinning
}

// ToggleStereo turns side-by-side stereo on or off. Stereo needs the
// perspective projection, so enabling it switches back to perspective.
func (s *Session) ToggleStereo() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready {
		return s.reject(notMet("engine not ready"))
	}

	on := !s.stereo
	props := engine.CanvasProps{
		Stereo: &engine.StereoProps{Enabled: on, EyeSeparation: stereoEyeSep, Focus: stereoFocus},
	}
	projection := s.projection
	if on && projection != engine.Perspective {
		projection = engine.Perspective
		props.Projection = &projection
	}
	if err := s.engine.SetCanvasProps(props); err != nil {
		return s.controlErr(StageCanvas, err)
	}
	s.stereo = on
	s.projection = projection
	return nil
}

// SetProjection switches between "perspective" and "orthographic"
func (s *Session) SetProjection(mode string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready {
		return s.reject(notMet("engine not ready"))
	}

	p := engine.Projection(mode)
	if p != engine.Perspective && p != engine.Orthographic {
		return s.reject(notMet("unknown projection %q", mode))
	}
	if err := s.engine.SetCanvasProps(engine.CanvasProps{Projection: &p}); err != nil {
		return s.controlErr(StageCanvas, err)
	}
	s.projection = p
	return nil
}

// Projection returns the camera projection
func (s *Session) Projection() engine.Projection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.projection
}

// Recenter animates the camera onto the bounding sphere of the scene
func (s *Session) Recenter() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready {
		return s.reject(notMet("engine not ready"))
	}

	sphere := s.engine.BoundingSphere()
	if sphere.Radius <= 0 {
		return nil
	}
	s.engine.FocusCamera(sphere.Center, sphere.Radius, recenterDuration)
	return nil
}

// ToggleFullscreen flips the container between windowed and fullscreen
func (s *Session) ToggleFullscreen() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready {
		return s.reject(notMet("engine not ready"))
	}
	if s.container == nil {
		return s.controlErr(StageFullscreen, errors.New("no container"))
	}
	if err := s.container.SetFullScreen(!s.container.FullScreen()); err != nil {
		return s.controlErr(StageFullscreen, err)
	}
	return nil
}

// controlErr must be called with s.mu held
func (s *Session) controlErr(stage Stage, err error) error {
	err = engineFailed(stage, err)
	s.lastErr = err
	s.log.Error("control failed", "stage", stage, "error", err)
	return err
}
