package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/philipparndt/gomol/internal/host"
	"github.com/philipparndt/gomol/internal/viewport"
)

// offscreen stands in for a window when nothing is shown
type offscreen struct {
	width, height int
}

func (o offscreen) Refresh() {}

func (o offscreen) Size() (int, int) { return o.width, o.height }

func (o offscreen) SetFullScreen(bool) error { return errors.New("no window") }

func (o offscreen) FullScreen() bool { return false }

// loadHeadless mounts a single session off screen and loads paths into it.
// Playback is stopped so the first frame stays current.
func loadHeadless(ctx context.Context, paths []string, width, height int) (*viewport.Session, error) {
	files, unknown := host.Sort(paths)
	if len(unknown) > 0 {
		return nil, fmt.Errorf("unsupported file: %s", unknown[0])
	}
	if files.Topology == "" {
		return nil, errors.New("a topology file is required")
	}

	single := cfg
	single.Viewports = 1
	sessions, err := host.NewSessions(single, log, nil)
	if err != nil {
		return nil, err
	}
	s := sessions[0]
	surface := offscreen{width: width, height: height}
	if err := s.Mount(ctx, surface, surface); err != nil {
		return nil, err
	}

	if err := s.LoadTopology(ctx, files.Topology); err != nil {
		_ = s.Unmount()
		return nil, err
	}
	if files.Trajectory != "" {
		if err := s.LoadTrajectory(ctx, files.Trajectory); err != nil {
			_ = s.Unmount()
			return nil, err
		}
		if err := s.StopAnimation(ctx); err != nil {
			log.Warn("failed to stop playback", "error", err)
		}
	}
	return s, nil
}
