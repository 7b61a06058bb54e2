package molengine

import (
	"context"
	"fmt"
	"io"

	chem "github.com/rmera/gochem"
	"github.com/rmera/gochem/traj/dcd"
	"github.com/rmera/gochem/traj/xtc"
	v3 "github.com/rmera/gochem/v3"

	"github.com/philipparndt/gomol/pkg/engine"
	"github.com/philipparndt/gomol/pkg/format"
	"github.com/philipparndt/gomol/pkg/geometry"
)

// frameSource is the part of gochem's trajectory readers used here
type frameSource interface {
	Next(output *v3.Matrix, box ...[]float64) error
	Len() int
}

// coordinate formats readCoordinates has a reader for
var coordinateReaders = map[format.Coordinates]bool{
	format.DCD:       true,
	format.XTC:       true,
	format.LAMMPSTrj: true,
}

// CoordinateExtensions lists the trajectory extensions the engine can read
func CoordinateExtensions() []string {
	var out []string
	for _, ext := range format.CoordinateExtensions() {
		if f, ok := format.ResolveCoordinates(ext); ok && coordinateReaders[f] {
			out = append(out, ext)
		}
	}
	return out
}

// readCoordinates reads every frame of a trajectory file
func readCoordinates(path string, f format.Coordinates) ([][]geometry.Vector3, error) {
	switch f {
	case format.DCD:
		src, err := dcd.New(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open dcd file: %w", err)
		}
		return readFrames(src)
	case format.XTC:
		src, err := xtc.New(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open xtc file: %w", err)
		}
		return readFrames(src)
	case format.LAMMPSTrj:
		return readLAMMPSTrj(path)
	default:
		return nil, fmt.Errorf("%s: %w", f, engine.ErrNoParser)
	}
}

func readFrames(src frameSource) ([][]geometry.Vector3, error) {
	if c, ok := src.(io.Closer); ok {
		defer c.Close()
	}

	var frames [][]geometry.Vector3
	for {
		m := v3.Zeros(src.Len())
		if err := src.Next(m); err != nil {
			if _, ok := err.(chem.LastFrameError); ok {
				break
			}
			return nil, fmt.Errorf("failed to read frame %d: %w", len(frames), err)
		}
		frames = append(frames, positions(m))
	}
	return frames, nil
}

// ParseCoordinates parses a submitted asset into a coordinate set
func (e *Engine) ParseCoordinates(ctx context.Context, asset engine.Ref, f format.Coordinates) (engine.Ref, error) {
	path, err := e.assetPath(asset)
	if err != nil {
		return "", err
	}

	frames, err := readCoordinates(path, f)
	if err != nil {
		return "", err
	}
	if len(frames) == 0 {
		return "", fmt.Errorf("%s contains no frames", path)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.checkReady(); err != nil {
		return "", err
	}
	if _, ok := e.assets[asset]; !ok {
		return "", fmt.Errorf("asset %s: %w", asset, engine.ErrStaleRef)
	}
	ref := e.newRef("coordinates")
	e.coordinates[ref] = &coordinateSet{asset: asset, frames: frames}
	e.log.Debug("coordinates parsed", "ref", ref, "format", f, "frames", len(frames))
	return ref, nil
}

// MergeModelAndCoordinates builds a trajectory that depends on both the
// model (atoms) and the coordinate set (frames)
func (e *Engine) MergeModelAndCoordinates(ctx context.Context, modelRef, coordsRef engine.Ref) (engine.Ref, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.checkReady(); err != nil {
		return "", err
	}
	m, ok := e.models[modelRef]
	if !ok {
		return "", fmt.Errorf("model %s: %w", modelRef, engine.ErrStaleRef)
	}
	c, ok := e.coordinates[coordsRef]
	if !ok {
		return "", fmt.Errorf("coordinates %s: %w", coordsRef, engine.ErrStaleRef)
	}
	if n := len(c.frames[0]); n != len(m.atoms) {
		return "", fmt.Errorf("atom count mismatch: model has %d atoms, coordinates have %d", len(m.atoms), n)
	}

	ref := e.newRef("trajectory")
	e.trajectories[ref] = &trajectory{
		atoms:     m.atoms,
		frames:    c.frames,
		dependsOn: []engine.Ref{modelRef, coordsRef},
	}
	return ref, nil
}
