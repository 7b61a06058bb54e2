package molengine

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/philipparndt/gomol/pkg/geometry"
)

const nmToAngstrom = 10.0

// readGRO reads a GROMACS structure file. Concatenated frames are read as a
// multi-frame topology.
func readGRO(path string) ([]Atom, [][]geometry.Vector3, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	var atoms []Atom
	var frames [][]geometry.Vector3

	for scanner.Scan() {
		title := scanner.Text()
		if !scanner.Scan() {
			if len(frames) > 0 && strings.TrimSpace(title) == "" {
				break
			}
			return nil, nil, fmt.Errorf("gro: missing atom count")
		}
		countLine := strings.TrimSpace(scanner.Text())
		count, err := strconv.Atoi(countLine)
		if err != nil {
			return nil, nil, fmt.Errorf("gro: invalid atom count %q: %w", countLine, err)
		}

		frame := make([]geometry.Vector3, count)
		for i := 0; i < count; i++ {
			if !scanner.Scan() {
				return nil, nil, fmt.Errorf("gro: expected %d atoms, got %d", count, i)
			}
			name, pos, err := parseGROAtom(scanner.Text())
			if err != nil {
				return nil, nil, fmt.Errorf("gro: atom %d: %w", i+1, err)
			}
			frame[i] = pos
			if len(frames) == 0 {
				symbol := symbolFromName(name)
				atoms = append(atoms, Atom{Name: name, Symbol: symbol, Radius: vdwRadius(symbol, 0)})
			}
		}
		if len(frames) > 0 && count != len(atoms) {
			return nil, nil, fmt.Errorf("gro: frame %d has %d atoms, expected %d", len(frames), count, len(atoms))
		}
		frames = append(frames, frame)

		scanner.Scan() // box vectors
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("error reading gro: %w", err)
	}
	return atoms, frames, nil
}

// parseGROAtom reads the fixed-column atom record %5d%-5s%5s%5d%8.3f%8.3f%8.3f
func parseGROAtom(line string) (string, geometry.Vector3, error) {
	if len(line) < 44 {
		return "", geometry.Vector3{}, fmt.Errorf("record too short")
	}
	name := strings.TrimSpace(line[10:15])
	var xyz [3]float64
	for k := 0; k < 3; k++ {
		field := strings.TrimSpace(line[20+8*k : 28+8*k])
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return "", geometry.Vector3{}, fmt.Errorf("invalid coordinate %q", field)
		}
		xyz[k] = v * nmToAngstrom
	}
	return name, geometry.NewVector3(xyz[0], xyz[1], xyz[2]), nil
}

type lammpsAtom struct {
	id  int
	pos geometry.Vector3
}

// readLAMMPSTrj reads a LAMMPS text dump. Atoms are ordered by id so frames
// line up with the topology; scaled coordinates are unwrapped with the box.
func readLAMMPSTrj(path string) ([][]geometry.Vector3, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	var frames [][]geometry.Vector3
	var count int
	var box [3][2]float64

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case strings.HasPrefix(line, "ITEM: NUMBER OF ATOMS"):
			if !scanner.Scan() {
				return nil, fmt.Errorf("lammpstrj: missing atom count")
			}
			count, err = strconv.Atoi(strings.TrimSpace(scanner.Text()))
			if err != nil {
				return nil, fmt.Errorf("lammpstrj: invalid atom count: %w", err)
			}

		case strings.HasPrefix(line, "ITEM: BOX BOUNDS"):
			for k := 0; k < 3; k++ {
				if !scanner.Scan() {
					return nil, fmt.Errorf("lammpstrj: truncated box bounds")
				}
				fields := strings.Fields(scanner.Text())
				if len(fields) < 2 {
					return nil, fmt.Errorf("lammpstrj: invalid box bounds")
				}
				box[k][0], _ = strconv.ParseFloat(fields[0], 64)
				box[k][1], _ = strconv.ParseFloat(fields[1], 64)
			}

		case strings.HasPrefix(line, "ITEM: ATOMS"):
			columns := strings.Fields(strings.TrimPrefix(line, "ITEM: ATOMS"))
			frame, err := readLAMMPSAtoms(scanner, columns, count, box)
			if err != nil {
				return nil, fmt.Errorf("lammpstrj: frame %d: %w", len(frames), err)
			}
			frames = append(frames, frame)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading lammpstrj: %w", err)
	}
	return frames, nil
}

func readLAMMPSAtoms(scanner *bufio.Scanner, columns []string, count int, box [3][2]float64) ([]geometry.Vector3, error) {
	idCol := -1
	posCol := [3]int{-1, -1, -1}
	scaled := false
	for i, c := range columns {
		switch c {
		case "id":
			idCol = i
		case "x", "xu":
			posCol[0] = i
		case "y", "yu":
			posCol[1] = i
		case "z", "zu":
			posCol[2] = i
		case "xs", "xsu":
			posCol[0], scaled = i, true
		case "ys", "ysu":
			posCol[1], scaled = i, true
		case "zs", "zsu":
			posCol[2], scaled = i, true
		}
	}
	if posCol[0] < 0 || posCol[1] < 0 || posCol[2] < 0 {
		return nil, fmt.Errorf("no position columns in %v", columns)
	}

	atoms := make([]lammpsAtom, 0, count)
	for i := 0; i < count; i++ {
		if !scanner.Scan() {
			return nil, fmt.Errorf("expected %d atoms, got %d", count, i)
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) < len(columns) {
			return nil, fmt.Errorf("atom line %d has %d columns, expected %d", i+1, len(fields), len(columns))
		}
		var xyz [3]float64
		for k, col := range posCol {
			v, err := strconv.ParseFloat(fields[col], 64)
			if err != nil {
				return nil, fmt.Errorf("invalid coordinate %q", fields[col])
			}
			if scaled {
				v = box[k][0] + v*(box[k][1]-box[k][0])
			}
			xyz[k] = v
		}
		id := i
		if idCol >= 0 {
			id, _ = strconv.Atoi(fields[idCol])
		}
		atoms = append(atoms, lammpsAtom{id: id, pos: geometry.NewVector3(xyz[0], xyz[1], xyz[2])})
	}

	sort.Slice(atoms, func(i, j int) bool { return atoms[i].id < atoms[j].id })
	frame := make([]geometry.Vector3, len(atoms))
	for i, a := range atoms {
		frame[i] = a.pos
	}
	return frame, nil
}

// readMOL reads an MDL molfile or SD file (V2000 connection tables). Further
// SD records with the same atom count are read as frames, such as conformers
// of one molecule; the first record with another count ends the read.
func readMOL(path string) ([]Atom, [][]geometry.Vector3, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	var atoms []Atom
	var frames [][]geometry.Vector3

	for {
		// header block: name, program, comment
		header := 0
		for header < 3 && scanner.Scan() {
			header++
		}
		if header < 3 {
			break
		}
		if !scanner.Scan() {
			return nil, nil, fmt.Errorf("mol: missing counts line")
		}
		counts := scanner.Text()
		if strings.Contains(counts, "V3000") {
			return nil, nil, fmt.Errorf("mol: V3000 connection tables are not supported")
		}
		count, err := molAtomCount(counts)
		if err != nil {
			return nil, nil, err
		}
		if len(frames) > 0 && count != len(atoms) {
			break
		}

		frame := make([]geometry.Vector3, count)
		for i := 0; i < count; i++ {
			if !scanner.Scan() {
				return nil, nil, fmt.Errorf("mol: expected %d atoms, got %d", count, i)
			}
			fields := strings.Fields(scanner.Text())
			if len(fields) < 4 {
				return nil, nil, fmt.Errorf("mol: atom %d: record too short", i+1)
			}
			pos, err := parseXYZFields(fields[:3])
			if err != nil {
				return nil, nil, fmt.Errorf("mol: atom %d: %w", i+1, err)
			}
			frame[i] = pos
			if len(frames) == 0 {
				symbol := fields[3]
				atoms = append(atoms, Atom{Name: symbol, Symbol: symbol, Radius: vdwRadius(symbol, 0)})
			}
		}
		frames = append(frames, frame)

		// bonds, properties and SD data up to the record separator
		for scanner.Scan() {
			if strings.HasPrefix(scanner.Text(), "$$$$") {
				break
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("error reading mol: %w", err)
	}
	return atoms, frames, nil
}

// molAtomCount reads the fixed-width atom count of a V2000 counts line
func molAtomCount(line string) (int, error) {
	field := line
	if len(field) > 3 {
		field = field[:3]
	}
	count, err := strconv.Atoi(strings.TrimSpace(field))
	if err != nil {
		return 0, fmt.Errorf("mol: invalid counts line %q", line)
	}
	return count, nil
}

// readMOL2 reads the ATOM sections of a Tripos MOL2 file. Further molecules
// are frames and must have the atom count of the first.
func readMOL2(path string) ([]Atom, [][]geometry.Vector3, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	var atoms []Atom
	var frames [][]geometry.Vector3
	var frame []geometry.Vector3
	inAtoms := false

	flush := func() error {
		if frame == nil {
			return nil
		}
		if len(frames) > 0 && len(frame) != len(atoms) {
			return fmt.Errorf("mol2: molecule %d has %d atoms, expected %d", len(frames)+1, len(frame), len(atoms))
		}
		frames = append(frames, frame)
		frame = nil
		return nil
	}

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(line, "@<TRIPOS>") {
			if inAtoms {
				if err := flush(); err != nil {
					return nil, nil, err
				}
			}
			inAtoms = line == "@<TRIPOS>ATOM"
			if inAtoms {
				frame = []geometry.Vector3{}
			}
			continue
		}
		if !inAtoms || line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 6 {
			return nil, nil, fmt.Errorf("mol2: atom %d: record too short", len(frame)+1)
		}
		pos, err := parseXYZFields(fields[2:5])
		if err != nil {
			return nil, nil, fmt.Errorf("mol2: atom %d: %w", len(frame)+1, err)
		}
		frame = append(frame, pos)
		if len(frames) == 0 {
			symbol, _, _ := strings.Cut(fields[5], ".")
			atoms = append(atoms, Atom{Name: fields[1], Symbol: symbol, Radius: vdwRadius(symbol, 0)})
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("error reading mol2: %w", err)
	}
	if inAtoms {
		if err := flush(); err != nil {
			return nil, nil, err
		}
	}
	return atoms, frames, nil
}

func parseXYZFields(fields []string) (geometry.Vector3, error) {
	var xyz [3]float64
	for k, field := range fields {
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return geometry.Vector3{}, fmt.Errorf("invalid coordinate %q", field)
		}
		xyz[k] = v
	}
	return geometry.NewVector3(xyz[0], xyz[1], xyz[2]), nil
}
