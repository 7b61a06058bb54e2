package molengine

import (
	"context"
	"sync"
	"time"

	"github.com/philipparndt/gomol/pkg/engine"
)

// animation loops over the frames of the current structure
type animation struct {
	mu      sync.Mutex
	e       *Engine
	fps     int
	frames  int
	playing bool
	stop    chan struct{}
	done    chan struct{}
}

func newAnimation(e *Engine, fps int) *animation {
	return &animation{e: e, fps: fps}
}

// bind attaches the animation to a structure with the given frame count,
// halting any playback of the previous one
func (a *animation) bind(frames int) {
	a.halt()
	a.mu.Lock()
	a.frames = frames
	a.mu.Unlock()
}

// Current reports whether a multi-frame animation is defined
func (a *animation) Current() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.frames > 1
}

// IsPlaying reports whether frames are advancing
func (a *animation) IsPlaying() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.playing
}

// Start begins playback; a no-op when playing or nothing to animate
func (a *animation) Start(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.playing || a.frames <= 1 {
		return nil
	}
	a.playing = true
	a.stop = make(chan struct{})
	a.done = make(chan struct{})
	go a.run(a.frames, a.stop, a.done)
	return nil
}

// Stop pauses playback at the current frame
func (a *animation) Stop(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	a.halt()
	return nil
}

func (a *animation) halt() {
	a.mu.Lock()
	if !a.playing {
		a.mu.Unlock()
		return
	}
	a.playing = false
	close(a.stop)
	done := a.done
	a.mu.Unlock()
	<-done
}

func (a *animation) run(frames int, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(time.Second / time.Duration(a.fps))
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			a.e.mu.Lock()
			a.e.view.frame = (a.e.view.frame + 1) % frames
			a.e.mu.Unlock()
			a.e.refresh()
		}
	}
}

// Animation returns the playback controller
func (e *Engine) Animation() engine.Animation {
	return e.animation
}

// Statistics returns the counts of loaded data
func (e *Engine) Statistics() engine.Statistics {
	return stats{e}
}

type stats struct{ e *Engine }

// AtomCount returns the element count of a structure, 0 if unknown
func (s stats) AtomCount(ref engine.Ref) int {
	s.e.mu.Lock()
	defer s.e.mu.Unlock()
	if st, ok := s.e.structures[ref]; ok {
		return len(st.atoms)
	}
	return 0
}

// FrameCount returns the number of frames of a trajectory, 0 if unknown
func (s stats) FrameCount(ref engine.Ref) int {
	s.e.mu.Lock()
	defer s.e.mu.Unlock()
	if t, ok := s.e.trajectories[ref]; ok {
		return len(t.frames)
	}
	return 0
}
