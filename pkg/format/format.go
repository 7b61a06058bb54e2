// Package format maps file names to the topology and coordinate formats
// understood by the engine. Resolution looks only at the lower-cased
// extension.
package format

import (
	"path/filepath"
	"sort"
	"strings"
)

// Topology identifies a structure file format
type Topology string

// Coordinates identifies a trajectory (coordinate frames) file format
type Coordinates string

const (
	MMCIF          Topology = "mmcif"
	PDB            Topology = "pdb"
	PDBQT          Topology = "pdbqt"
	GRO            Topology = "gro"
	XYZ            Topology = "xyz"
	MOL            Topology = "mol"
	SDF            Topology = "sdf"
	MOL2           Topology = "mol2"
	LAMMPSData     Topology = "lammps_data"
	LAMMPSTrajData Topology = "lammps_traj_data"
)

const (
	DCD       Coordinates = "dcd"
	XTC       Coordinates = "xtc"
	TRR       Coordinates = "trr"
	NCTraj    Coordinates = "nctraj"
	LAMMPSTrj Coordinates = "lammpstrj"
)

var topologyByExt = map[string]Topology{
	"mmcif": MMCIF,
	"cif":   MMCIF,
	"pdb":   PDB,
	"pdbqt": PDBQT,
	"gro":   GRO,
	"xyz":   XYZ,
	"mol":   MOL,
	"sdf":   SDF,
	"mol2":  MOL2,
	"data":  LAMMPSData,
	"traj":  LAMMPSTrajData,
}

var coordinatesByExt = map[string]Coordinates{
	"dcd":          DCD,
	"xtc":          XTC,
	"trr":          TRR,
	"nc":           NCTraj,
	"nctraj":       NCTraj,
	"lammpstrj":    LAMMPSTrj,
	"lammpstrjtxt": LAMMPSTrj,
}

// extension returns the lower-cased extension without the leading dot
func extension(filename string) string {
	ext := filepath.Ext(filepath.Base(filename))
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// ResolveTopology returns the topology format for filename.
// The second value is false when the extension is not a known topology format.
func ResolveTopology(filename string) (Topology, bool) {
	f, ok := topologyByExt[extension(filename)]
	return f, ok
}

// ResolveCoordinates returns the coordinate format for filename.
// The second value is false when the extension is not a known coordinate format.
func ResolveCoordinates(filename string) (Coordinates, bool) {
	f, ok := coordinatesByExt[extension(filename)]
	return f, ok
}

// TopologyExtensions lists the known topology extensions, with leading dot
func TopologyExtensions() []string {
	return sortedKeys(topologyByExt)
}

// CoordinateExtensions lists the known coordinate extensions, with leading dot
func CoordinateExtensions() []string {
	return sortedKeys(coordinatesByExt)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, "."+k)
	}
	sort.Strings(keys)
	return keys
}
