package viewport

import (
	"context"
)

// ToggleAnimation pauses a playing trajectory or resumes a paused one. It is
// a no-op when the trajectory has no animation.
func (s *Session) ToggleAnimation(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready {
		return s.reject(notMet("engine not ready"))
	}

	anim := s.engine.Animation()
	if !anim.Current() {
		return nil
	}
	if anim.IsPlaying() {
		return s.animationErr(anim.Stop(ctx))
	}
	return s.animationErr(anim.Start(ctx))
}

// StartAnimation starts playback; idempotent
func (s *Session) StartAnimation(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready {
		return s.reject(notMet("engine not ready"))
	}

	anim := s.engine.Animation()
	if !anim.Current() || anim.IsPlaying() {
		return nil
	}
	return s.animationErr(anim.Start(ctx))
}

// StopAnimation stops playback; idempotent
func (s *Session) StopAnimation(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready {
		return s.reject(notMet("engine not ready"))
	}

	anim := s.engine.Animation()
	if !anim.IsPlaying() {
		return nil
	}
	return s.animationErr(anim.Stop(ctx))
}

// Animating reports whether frames are playing
func (s *Session) Animating() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ready && s.engine.Animation().IsPlaying()
}

// animationErr must be called with s.mu held
func (s *Session) animationErr(err error) error {
	if err == nil {
		return nil
	}
	err = engineFailed(StageAnimation, err)
	s.lastErr = err
	s.log.Error("animation control failed", "error", err)
	return err
}
