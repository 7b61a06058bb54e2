// Package host holds the logic shared by the window hosts: classifying
// dropped files, loading file sets into viewports, cycling through
// representations and palettes, formatting notices and reloading viewports
// when their files change on disk.
package host

import (
	"context"

	"github.com/philipparndt/gomol/internal/viewport"
	"github.com/philipparndt/gomol/pkg/format"
	"github.com/philipparndt/gomol/pkg/molengine"
)

// Kind is the role a file plays in a load
type Kind int

const (
	Unknown Kind = iota
	Topology
	Trajectory
)

func (k Kind) String() string {
	switch k {
	case Topology:
		return "topology"
	case Trajectory:
		return "trajectory"
	default:
		return "unknown"
	}
}

// Classify tells from the file name whether path is a topology or a
// trajectory file
func Classify(path string) Kind {
	if _, ok := format.ResolveTopology(path); ok {
		return Topology
	}
	if _, ok := format.ResolveCoordinates(path); ok {
		return Trajectory
	}
	return Unknown
}

// Files is what gets loaded into one viewport
type Files struct {
	Topology   string
	Trajectory string
}

// Empty reports whether no file is set
func (f Files) Empty() bool {
	return f.Topology == "" && f.Trajectory == ""
}

// Paths returns the set files
func (f Files) Paths() []string {
	var paths []string
	for _, p := range []string{f.Topology, f.Trajectory} {
		if p != "" {
			paths = append(paths, p)
		}
	}
	return paths
}

// Sort assigns paths to their role. Later files of the same kind win;
// unknown files are returned separately.
func Sort(paths []string) (Files, []string) {
	var files Files
	var unknown []string
	for _, p := range paths {
		switch Classify(p) {
		case Topology:
			files.Topology = p
		case Trajectory:
			files.Trajectory = p
		default:
			unknown = append(unknown, p)
		}
	}
	return files, unknown
}

// Load loads files into viewport i, topology first
func Load(ctx context.Context, coord *viewport.Coordinator, i int, files Files) error {
	if files.Topology != "" {
		if err := coord.LoadTopologyInto(ctx, i, files.Topology); err != nil {
			return err
		}
	}
	if files.Trajectory != "" {
		return coord.LoadTrajectoryInto(ctx, i, files.Trajectory)
	}
	return nil
}

// Drop loads dropped paths into viewport i, topology first. Paths that are
// neither topology nor trajectory files are returned without being loaded.
func Drop(ctx context.Context, coord *viewport.Coordinator, i int, paths []string) ([]string, error) {
	files, unknown := Sort(paths)
	if files.Empty() {
		return unknown, nil
	}
	return unknown, Load(ctx, coord, i, files)
}

// SceneSource is implemented by engines that expose a drawable scene
type SceneSource interface {
	Scene() molengine.Scene
}
