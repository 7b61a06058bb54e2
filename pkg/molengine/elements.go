package molengine

import (
	"strings"
	"unicode"
)

type element struct {
	vdw      float64
	covalent float64
}

var elements = map[string]element{
	"H":  {1.20, 0.31},
	"C":  {1.70, 0.76},
	"N":  {1.55, 0.71},
	"O":  {1.52, 0.66},
	"F":  {1.47, 0.57},
	"P":  {1.80, 1.07},
	"S":  {1.80, 1.05},
	"CL": {1.75, 1.02},
	"BR": {1.85, 1.20},
	"NA": {2.27, 1.66},
	"K":  {2.75, 2.03},
	"MG": {1.73, 1.41},
	"CA": {2.31, 1.76},
	"FE": {2.00, 1.32},
	"ZN": {1.39, 1.22},
}

var defaultElement = element{vdw: 1.60, covalent: 0.75}

// ions whose names are also their element symbol in force-field files
var ionNames = map[string]bool{"NA": true, "CL": true, "MG": true, "ZN": true, "FE": true, "K": true, "BR": true}

func lookupElement(symbol string) element {
	if el, ok := elements[strings.ToUpper(symbol)]; ok {
		return el
	}
	return defaultElement
}

// vdwRadius prefers the radius reported by the reader
func vdwRadius(symbol string, reported float64) float64 {
	if reported > 0 {
		return reported
	}
	return lookupElement(symbol).vdw
}

// symbolFromName guesses the element from an atom name such as "CA", "OW"
// or "HB2". Names of common ions map to the ion.
func symbolFromName(name string) string {
	trimmed := strings.TrimLeftFunc(strings.TrimSpace(name), unicode.IsDigit)
	upper := strings.ToUpper(trimmed)
	if ionNames[upper] {
		return upper
	}
	for _, r := range upper {
		if unicode.IsLetter(r) {
			return string(r)
		}
	}
	return "X"
}
