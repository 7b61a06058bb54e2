package host

import (
	"github.com/philipparndt/gomol/pkg/engine"
)

// Backgrounds and StructureColors are the palettes cycled through by the
// keyboard controls
var (
	Backgrounds     = []string{"#000000", "#ffffff", "#1e2228", "#0f1219"}
	StructureColors = []string{"#ffffff", "#ff5a36", "#36a2ff", "#7ed957", "#ffd23f"}
)

// NextRepresentation returns the type step positions after current. An
// unknown current starts from the first type.
func NextRepresentation(current string, types []engine.RepresentationType, step int) string {
	if len(types) == 0 {
		return current
	}
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = t.Tag
	}
	return next(current, names, step)
}

// NextColor returns the palette entry step positions after current
func NextColor(current string, palette []string, step int) string {
	return next(current, palette, step)
}

func next(current string, values []string, step int) string {
	if len(values) == 0 {
		return current
	}
	for i, v := range values {
		if v == current {
			n := len(values)
			return values[((i+step)%n+n)%n]
		}
	}
	return values[0]
}
