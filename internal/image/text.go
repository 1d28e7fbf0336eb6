package imagepkg

import (
	"image"
	"image/color"
	"image/draw"
	"strings"

	"github.com/muesli/reflow/wordwrap"
	"github.com/muesli/reflow/wrap"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// Wrap breaks text on whitespace into lines of at most width runes.
// Words longer than width are split across lines.
func Wrap(text string, width int) []string {
	if width < 1 {
		width = 1
	}
	joined := strings.Join(strings.Fields(text), " ")
	wrapped := wrap.String(wordwrap.String(joined, width), width)

	var lines []string
	for _, line := range strings.Split(wrapped, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		// reflow measures display cells; zero-width runes can still push the
		// rune count past width.
		for r := []rune(line); len(r) > 0; {
			n := min(len(r), width)
			lines = append(lines, string(r[:n]))
			r = r[n:]
		}
	}
	return lines
}

// LineHeight is the distance from the top of the line box to the lowest
// inked pixel of line.
func LineHeight(face font.Face, line string) int {
	b, _ := font.BoundString(face, line)
	return (face.Metrics().Ascent + b.Max.Y).Ceil()
}

// DrawLines draws lines left-aligned with the first line's top at (x, y),
// advancing by each line's height plus gap. It returns the next free y.
func DrawLines(dst draw.Image, face font.Face, c color.Color, x, y int, lines []string, gap int) int {
	if face == nil {
		return y
	}
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: face,
	}
	ascent := face.Metrics().Ascent
	for _, line := range lines {
		d.Dot = fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y) + ascent}
		d.DrawString(line)
		y += LineHeight(face, line) + gap
	}
	return y
}
