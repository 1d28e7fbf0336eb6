package cover

import (
	"strings"

	imagepkg "github.com/youruser/coverapp/internal/image"
)

const (
	LayoutStack = "stack"

	DefaultTitleSize  = 80
	DefaultFontFamily = "Inter"

	// MaxTitleSize keeps a single glyph within the canvas height.
	MaxTitleSize = imagepkg.CoverHeight

	TitleWrapWidth    = 20
	SubtitleWrapWidth = 30
)

// Theme is the caller's background style and dark/light flag.
type Theme struct {
	BgStyle string `json:"bgStyle"`
	IsDark  bool   `json:"isDark"`
}

type Font struct {
	Family string `json:"family"`
}

// Request describes one cover. Numeric fields are float64 because the
// editor sends slider values that are not always integral.
type Request struct {
	LibraryName     string   `json:"libraryName"`
	SubTitle        string   `json:"subTitle"`
	Posters         []string `json:"posters"`
	BackdropURL     string   `json:"backdropUrl"`
	Theme           *Theme   `json:"theme"`
	LayoutMode      string   `json:"layoutMode"`
	CurrentFont     *Font    `json:"currentFont"`
	ActiveTextColor string   `json:"activeTextColor"`
	TitleX          float64  `json:"titleX"`
	TitleY          float64  `json:"titleY"`
	TitleGap        float64  `json:"titleGap"`
	TitleSize       float64  `json:"titleSize"`
	GridIntensity   float64  `json:"gridIntensity"`
	PosterX         float64  `json:"posterX"`
	FanSpread       float64  `json:"fanSpread"`
	FanRotation     float64  `json:"fanRotation"`
	CycleIndex      float64  `json:"cycleIndex"`
	QRText          string   `json:"qrText"`
}

// Normalize fills in defaults for fields the editor may omit.
func (r *Request) Normalize() {
	if r.Theme == nil {
		r.Theme = &Theme{}
	}
	if r.CurrentFont == nil {
		r.CurrentFont = &Font{}
	}
	if strings.TrimSpace(r.CurrentFont.Family) == "" {
		r.CurrentFont.Family = DefaultFontFamily
	}
	if r.TitleSize <= 0 {
		r.TitleSize = DefaultTitleSize
	}
	if r.TitleSize > MaxTitleSize {
		r.TitleSize = MaxTitleSize
	}
	r.LayoutMode = strings.TrimSpace(r.LayoutMode)
	r.BackdropURL = strings.TrimSpace(r.BackdropURL)

	// Blank entries keep their slot so the first three positions match what
	// the editor shows; the generator skips them when drawing.
	for i, p := range r.Posters {
		r.Posters[i] = strings.TrimSpace(p)
	}
}

// StackedPosters returns the poster slots that will be drawn: the first
// limit entries in stack mode, none otherwise. Slots may be blank.
func (r *Request) StackedPosters(limit int) []string {
	if r.LayoutMode != LayoutStack {
		return nil
	}
	if len(r.Posters) > limit {
		return r.Posters[:limit]
	}
	return r.Posters
}

// Result is a rendered cover.
type Result struct {
	Path   string
	PNG    []byte
	Width  int
	Height int
}
