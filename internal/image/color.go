package imagepkg

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

var black = color.NRGBA{A: 0xff}

// ParseHexColor parses "#rgb" or "#rrggbb" (the leading # is optional).
func ParseHexColor(s string) (color.NRGBA, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if (len(h) != 3 && len(h) != 6) || strings.Trim(h, "0123456789abcdefABCDEF") != "" {
		return color.NRGBA{}, fmt.Errorf("invalid hex color %q", s)
	}
	c, err := colorful.Hex("#" + h)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid hex color %q: %w", s, err)
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 0xff}, nil
}

// BackgroundColor derives a flat fill from a theme background style.
// A plain hex color is used as is. For a linear-gradient only the first color
// stop is used. Anything else falls back to black.
func BackgroundColor(bgStyle string) color.NRGBA {
	style := strings.TrimSpace(bgStyle)
	if strings.HasPrefix(style, "linear-gradient") {
		parts := strings.Split(style, ",")
		if len(parts) < 2 {
			return black
		}
		fields := strings.Fields(parts[1])
		if len(fields) == 0 {
			return black
		}
		style = fields[0]
	}
	c, err := ParseHexColor(style)
	if err != nil {
		return black
	}
	return c
}
