package viewport

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/philipparndt/gomol/internal/platform/logger"
	"github.com/philipparndt/gomol/internal/platform/metrics"
)

// NotifyFunc receives errors raised by routed requests
type NotifyFunc func(viewport int, err error)

// Coordinator owns a fixed set of sessions and routes host events to the
// active one. Inactive sessions keep running.
type Coordinator struct {
	mu       sync.Mutex
	sessions []*Session
	loaded   []bool
	active   int
	notify   NotifyFunc
	log      *slog.Logger
	metrics  *metrics.Metrics
}

// NewCoordinator creates a coordinator over sessions; the first is active
func NewCoordinator(sessions []*Session, log *slog.Logger, m *metrics.Metrics) *Coordinator {
	if log == nil {
		log = logger.Discard()
	}
	return &Coordinator{
		sessions: sessions,
		loaded:   make([]bool, len(sessions)),
		log:      log,
		metrics:  m,
	}
}

// SetNotify installs the error callback
func (c *Coordinator) SetNotify(fn NotifyFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notify = fn
}

// Len returns the number of sessions
func (c *Coordinator) Len() int {
	return len(c.sessions)
}

// Active returns the active session index
func (c *Coordinator) Active() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

func (c *Coordinator) checkIndex(i int) error {
	if i < 0 || i >= len(c.sessions) {
		return notMet("viewport %d out of range [0, %d)", i, len(c.sessions))
	}
	return nil
}

// SetActive makes session i the target of routed events
func (c *Coordinator) SetActive(i int) error {
	if err := c.checkIndex(i); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active != i {
		c.log.Debug("active viewport changed", "from", c.active, "to", i)
	}
	c.active = i
	return nil
}

// Session returns session i, or nil when i is out of range
func (c *Coordinator) Session(i int) *Session {
	if c.checkIndex(i) != nil {
		return nil
	}
	return c.sessions[i]
}

// ActiveSession returns the active session
func (c *Coordinator) ActiveSession() *Session {
	return c.sessions[c.Active()]
}

// Loaded reports whether session i shows a structure
func (c *Coordinator) Loaded(i int) bool {
	if c.checkIndex(i) != nil {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loaded[i]
}

// LoadedCount returns the number of sessions showing a structure
func (c *Coordinator) LoadedCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loadedCountLocked()
}

func (c *Coordinator) loadedCountLocked() int {
	n := 0
	for _, l := range c.loaded {
		if l {
			n++
		}
	}
	return n
}

// Snapshots returns the state of every session in order
func (c *Coordinator) Snapshots() []Snapshot {
	out := make([]Snapshot, len(c.sessions))
	for i, s := range c.sessions {
		out[i] = s.Snapshot()
	}
	return out
}

func (c *Coordinator) setLoaded(i int, loaded bool) {
	c.mu.Lock()
	c.loaded[i] = loaded
	n := c.loadedCountLocked()
	c.mu.Unlock()
	c.metrics.SetLoadedViewports(n)
}

// route runs fn on the active session and reports its error
func (c *Coordinator) route(op string, fn func(*Session) error) error {
	c.mu.Lock()
	i := c.active
	c.mu.Unlock()

	err := fn(c.sessions[i])
	if err != nil {
		c.report(i, op, err)
	}
	return err
}

func (c *Coordinator) report(i int, op string, err error) {
	c.log.Debug("request failed", "viewport", i, "op", op, "error", err)
	c.mu.Lock()
	notify := c.notify
	c.mu.Unlock()
	if notify != nil {
		notify(i, err)
	}
}

// LoadTopology loads a topology file into the active session
func (c *Coordinator) LoadTopology(ctx context.Context, path string) error {
	c.mu.Lock()
	i := c.active
	c.mu.Unlock()
	return c.LoadTopologyInto(ctx, i, path)
}

// LoadTopologyInto loads a topology file into session i regardless of which
// session is active
func (c *Coordinator) LoadTopologyInto(ctx context.Context, i int, path string) error {
	if err := c.checkIndex(i); err != nil {
		c.report(i, "load_topology", err)
		return err
	}
	if err := c.sessions[i].LoadTopology(ctx, path); err != nil {
		c.report(i, "load_topology", err)
		return err
	}
	c.setLoaded(i, true)
	return nil
}

// LoadTrajectory loads a coordinate file into the active session
func (c *Coordinator) LoadTrajectory(ctx context.Context, path string) error {
	return c.route("load_trajectory", func(s *Session) error { return s.LoadTrajectory(ctx, path) })
}

// LoadTrajectoryInto loads a coordinate file into session i
func (c *Coordinator) LoadTrajectoryInto(ctx context.Context, i int, path string) error {
	if err := c.checkIndex(i); err != nil {
		c.report(i, "load_trajectory", err)
		return err
	}
	err := c.sessions[i].LoadTrajectory(ctx, path)
	if err != nil {
		c.report(i, "load_trajectory", err)
	}
	return err
}

// SetRepresentation routes to Session.SetRepresentation
func (c *Coordinator) SetRepresentation(ctx context.Context, typ string) error {
	return c.route("set_representation", func(s *Session) error { return s.SetRepresentation(ctx, typ) })
}

// SetBackgroundColor routes to Session.SetBackgroundColor
func (c *Coordinator) SetBackgroundColor(value string) error {
	return c.route("set_background", func(s *Session) error { return s.SetBackgroundColor(value) })
}

// SetStructureColor routes to Session.SetStructureColor
func (c *Coordinator) SetStructureColor(ctx context.Context, value string) error {
	return c.route("set_structure_color", func(s *Session) error { return s.SetStructureColor(ctx, value) })
}

// ToggleSpin routes to Session.ToggleSpin
func (c *Coordinator) ToggleSpin() error {
	return c.route("toggle_spin", (*Session).ToggleSpin)
}

// ToggleStereo routes to Session.ToggleStereo
func (c *Coordinator) ToggleStereo() error {
	return c.route("toggle_stereo", (*Session).ToggleStereo)
}

// SetProjection routes to Session.SetProjection
func (c *Coordinator) SetProjection(mode string) error {
	return c.route("set_projection", func(s *Session) error { return s.SetProjection(mode) })
}

// Recenter routes to Session.Recenter
func (c *Coordinator) Recenter() error {
	return c.route("recenter", (*Session).Recenter)
}

// ToggleFullscreen routes to Session.ToggleFullscreen
func (c *Coordinator) ToggleFullscreen() error {
	return c.route("toggle_fullscreen", (*Session).ToggleFullscreen)
}

// ToggleAnimation routes to Session.ToggleAnimation
func (c *Coordinator) ToggleAnimation(ctx context.Context) error {
	return c.route("toggle_animation", func(s *Session) error { return s.ToggleAnimation(ctx) })
}

// Reset clears the active session
func (c *Coordinator) Reset(ctx context.Context) error {
	c.mu.Lock()
	i := c.active
	c.mu.Unlock()
	return c.ResetSession(ctx, i)
}

// ResetSession clears session i
func (c *Coordinator) ResetSession(ctx context.Context, i int) error {
	if err := c.checkIndex(i); err != nil {
		c.report(i, "reset", err)
		return err
	}
	if err := c.sessions[i].Reset(ctx); err != nil {
		c.report(i, "reset", err)
		return err
	}
	c.setLoaded(i, false)
	return nil
}

// Close stops playback and unmounts every session concurrently
func (c *Coordinator) Close(ctx context.Context) error {
	var g errgroup.Group
	for _, s := range c.sessions {
		s := s
		g.Go(func() error {
			if s.Animating() {
				if err := s.StopAnimation(ctx); err != nil {
					c.log.Warn("failed to stop animation", "viewport", s.Name(), "error", err)
				}
			}
			return s.Unmount()
		})
	}
	err := g.Wait()
	for i := range c.sessions {
		c.setLoaded(i, false)
	}
	return err
}
