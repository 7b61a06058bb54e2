package viewport

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// ParseColor accepts #rgb and #rrggbb values
func ParseColor(value string) (color.RGBA, error) {
	v := strings.TrimSpace(value)
	if v != "" && !strings.HasPrefix(v, "#") {
		v = "#" + v
	}
	c, err := colorful.Hex(v)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q: %w", value, err)
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}, nil
}

// HexColor formats c as #rrggbb
func HexColor(c color.RGBA) string {
	cf, _ := colorful.MakeColor(color.RGBA{R: c.R, G: c.G, B: c.B, A: 255})
	return cf.Hex()
}
