package imagepkg

import (
	"fmt"
	"os"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

type Weight int

const (
	WeightBold Weight = iota
	WeightRegular
)

// BuiltinSource is reported when no candidate font file could be loaded.
const BuiltinSource = "builtin"

// FontLoader resolves faces from candidate font files, tried in order, with
// the embedded Go fonts as the last resort. Parsed files are cached.
type FontLoader struct {
	Bold    []string
	Regular []string

	mu     sync.Mutex
	parsed map[string]*opentype.Font
}

func NewFontLoader(bold, regular []string) *FontLoader {
	return &FontLoader{
		Bold:    bold,
		Regular: regular,
		parsed:  map[string]*opentype.Font{},
	}
}

// Face returns a face of the given weight and size and the file it came from.
func (l *FontLoader) Face(w Weight, size float64) (font.Face, string, error) {
	candidates, builtin := l.Bold, gobold.TTF
	if w == WeightRegular {
		candidates, builtin = l.Regular, goregular.TTF
	}

	for _, path := range candidates {
		f, err := l.load(path)
		if err != nil {
			continue
		}
		face, err := newFace(f, size)
		if err != nil {
			continue
		}
		return face, path, nil
	}

	f, err := opentype.Parse(builtin)
	if err != nil {
		return nil, "", fmt.Errorf("parse builtin font: %w", err)
	}
	face, err := newFace(f, size)
	if err != nil {
		return nil, "", fmt.Errorf("builtin font face: %w", err)
	}
	return face, BuiltinSource, nil
}

func (l *FontLoader) load(path string) (*opentype.Font, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.parsed == nil {
		l.parsed = map[string]*opentype.Font{}
	}
	if f, ok := l.parsed[path]; ok {
		return f, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	l.parsed[path] = f
	return f, nil
}

func newFace(f *opentype.Font, size float64) (font.Face, error) {
	return opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
}
