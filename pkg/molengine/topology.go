package molengine

import (
	"context"
	"fmt"

	chem "github.com/rmera/gochem"
	v3 "github.com/rmera/gochem/v3"

	"github.com/philipparndt/gomol/pkg/engine"
	"github.com/philipparndt/gomol/pkg/format"
	"github.com/philipparndt/gomol/pkg/geometry"
)

// topology formats readTopology has a reader for
var topologyReaders = map[format.Topology]bool{
	format.PDB:   true,
	format.PDBQT: true,
	format.MMCIF: true,
	format.XYZ:   true,
	format.GRO:   true,
	format.MOL:   true,
	format.SDF:   true,
	format.MOL2:  true,
}

// TopologyExtensions lists the topology extensions the engine can read
func TopologyExtensions() []string {
	var out []string
	for _, ext := range format.TopologyExtensions() {
		if f, ok := format.ResolveTopology(ext); ok && topologyReaders[f] {
			out = append(out, ext)
		}
	}
	return out
}

// readTopology parses a structure file into atoms and coordinate frames
func readTopology(path string, f format.Topology) ([]Atom, [][]geometry.Vector3, error) {
	var mol *chem.Molecule
	var err error

	switch f {
	case format.PDB, format.PDBQT:
		mol, err = chem.PDBFileRead(path, false)
	case format.MMCIF:
		mol, err = chem.PDBxFileRead(path)
	case format.XYZ:
		mol, err = chem.XYZFileRead(path)
	case format.GRO:
		return readGRO(path)
	case format.MOL, format.SDF:
		return readMOL(path)
	case format.MOL2:
		return readMOL2(path)
	default:
		return nil, nil, fmt.Errorf("%s: %w", f, engine.ErrNoParser)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read %s file: %w", f, err)
	}
	atoms, frames := fromMolecule(mol)
	return atoms, frames, nil
}

func fromMolecule(mol *chem.Molecule) ([]Atom, [][]geometry.Vector3) {
	atoms := make([]Atom, mol.Len())
	for i := range atoms {
		at := mol.Atom(i)
		atoms[i] = Atom{
			Name:   at.Name,
			Symbol: at.Symbol,
			Radius: vdwRadius(at.Symbol, at.Vdw),
		}
	}

	frames := make([][]geometry.Vector3, 0, len(mol.Coords))
	for _, coords := range mol.Coords {
		frames = append(frames, positions(coords))
	}
	return atoms, frames
}

func positions(m *v3.Matrix) []geometry.Vector3 {
	n := m.NVecs()
	out := make([]geometry.Vector3, n)
	for i := 0; i < n; i++ {
		out[i] = geometry.NewVector3(m.At(i, 0), m.At(i, 1), m.At(i, 2))
	}
	return out
}

// ParseTopology parses a submitted asset into a trajectory node
func (e *Engine) ParseTopology(ctx context.Context, asset engine.Ref, f format.Topology) (engine.Ref, error) {
	path, err := e.assetPath(asset)
	if err != nil {
		return "", err
	}

	atoms, frames, err := readTopology(path, f)
	if err != nil {
		return "", err
	}
	if len(atoms) == 0 || len(frames) == 0 {
		return "", fmt.Errorf("%s contains no atoms", path)
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
	ref := e.newRef("trajectory")
	e.trajectories[ref] = &trajectory{atoms: atoms, frames: frames, dependsOn: []engine.Ref{asset}}
	e.log.Debug("topology parsed", "ref", ref, "format", f, "atoms", len(atoms), "frames", len(frames))
	return ref, nil
}

// DeriveModel creates a model from the first frame of a trajectory
func (e *Engine) DeriveModel(ctx context.Context, traj engine.Ref) (engine.Ref, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.checkReady(); err != nil {
		return "", err
	}
	t, ok := e.trajectories[traj]
	if !ok {
		return "", fmt.Errorf("trajectory %s: %w", traj, engine.ErrStaleRef)
	}
	ref := e.newRef("model")
	e.models[ref] = &model{trajectory: traj, atoms: t.atoms, frames: t.frames[:1]}
	return ref, nil
}
