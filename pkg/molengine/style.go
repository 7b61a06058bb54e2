package molengine

import (
	"image/color"
	"strings"
)

// Style tells a renderer how to draw a layer
type Style struct {
	AtomScale float64 // sphere radius as a fraction of the vdW radius; 0 hides atoms
	Bonds     bool
	Trace     bool
	Points    bool
	Alpha     uint8
}

var styles = map[string]Style{
	"spacefill":         {AtomScale: 1, Alpha: 255},
	"molecular-surface": {AtomScale: 1.1, Alpha: 140},
	"ball-and-stick":    {AtomScale: 0.25, Bonds: true, Alpha: 255},
	"line":              {Bonds: true, Alpha: 255},
	"point":             {Points: true, Alpha: 255},
	"cartoon":           {Trace: true, Alpha: 255},
	"backbone":          {Trace: true, Alpha: 255},
	"putty":             {Trace: true, AtomScale: 0.1, Alpha: 255},
}

// Style returns the drawing style of the layer. Trace based styles fall back
// to ball-and-stick when the structure has no backbone.
func (l Layer) Style() Style {
	s, ok := styles[l.Type]
	if !ok {
		return styles["ball-and-stick"]
	}
	if s.Trace && len(l.Trace) < 2 {
		return styles["ball-and-stick"]
	}
	return s
}

// CPK colors
var elementColors = map[string]color.RGBA{
	"H":  {255, 255, 255, 255},
	"C":  {144, 144, 144, 255},
	"N":  {48, 80, 248, 255},
	"O":  {255, 13, 13, 255},
	"F":  {144, 224, 80, 255},
	"P":  {255, 128, 0, 255},
	"S":  {255, 255, 48, 255},
	"CL": {31, 240, 31, 255},
	"BR": {166, 41, 41, 255},
	"NA": {171, 92, 242, 255},
	"K":  {143, 64, 212, 255},
	"MG": {138, 255, 0, 255},
	"CA": {61, 255, 0, 255},
	"FE": {224, 102, 51, 255},
	"ZN": {125, 128, 176, 255},
}

var defaultElementColor = color.RGBA{255, 20, 147, 255}

// AtomColor returns the color of atom i of the layer
func (l Layer) AtomColor(i int) color.RGBA {
	if l.Theme == "uniform" {
		return l.Color
	}
	if c, ok := elementColors[strings.ToUpper(l.Atoms[i].Symbol)]; ok {
		return c
	}
	return defaultElementColor
}
