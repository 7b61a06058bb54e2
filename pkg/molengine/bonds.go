package molengine

import (
	"math"
	"strings"

	"github.com/philipparndt/gomol/pkg/geometry"
)

const (
	bondTolerance = 0.45 // Å added to the sum of covalent radii
	bondCellSize  = 3.0  // Å; larger than the longest expected bond
	minBondLength = 0.4
)

type cell [3]int

func cellOf(p geometry.Vector3) cell {
	return cell{
		int(math.Floor(p.X / bondCellSize)),
		int(math.Floor(p.Y / bondCellSize)),
		int(math.Floor(p.Z / bondCellSize)),
	}
}

// inferBonds connects atoms closer than the sum of their covalent radii plus
// a tolerance, using a uniform grid so only neighboring cells are compared
func inferBonds(atoms []Atom, pos []geometry.Vector3) [][2]int {
	grid := make(map[cell][]int, len(pos))
	for i, p := range pos {
		c := cellOf(p)
		grid[c] = append(grid[c], i)
	}

	var bonds [][2]int
	for i, p := range pos {
		ci := cellOf(p)
		ri := lookupElement(atoms[i].Symbol).covalent
		for dx := -1; dx <= 1; dx++ {
			for dy := -1; dy <= 1; dy++ {
				for dz := -1; dz <= 1; dz++ {
					for _, j := range grid[cell{ci[0] + dx, ci[1] + dy, ci[2] + dz}] {
						if j <= i {
							continue
						}
						d := p.Distance(pos[j])
						limit := ri + lookupElement(atoms[j].Symbol).covalent + bondTolerance
						if d > minBondLength && d <= limit {
							bonds = append(bonds, [2]int{i, j})
						}
					}
				}
			}
		}
	}
	return bonds
}

// backboneTrace returns the indices of alpha carbons and nucleic acid
// phosphates in file order; used by the cartoon-like representations
func backboneTrace(atoms []Atom) []int {
	var trace []int
	for i, a := range atoms {
		if (a.Name == "CA" && !strings.EqualFold(a.Symbol, "CA")) || a.Name == "P" {
			trace = append(trace, i)
		}
	}
	return trace
}
