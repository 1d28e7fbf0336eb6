package cover

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"math"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/image/font"

	imagepkg "github.com/youruser/coverapp/internal/image"
	"github.com/youruser/coverapp/internal/metrics"
	"github.com/youruser/coverapp/internal/util"
)

var defaultTextColor = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}

// Generator renders cover requests to PNG files under OutputDir.
type Generator struct {
	Fetcher   *imagepkg.Fetcher
	Fonts     *imagepkg.FontLoader
	OutputDir string
	Logger    *zap.Logger
}

func NewGenerator(fetcher *imagepkg.Fetcher, fonts *imagepkg.FontLoader, outputDir string, logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{
		Fetcher:   fetcher,
		Fonts:     fonts,
		OutputDir: outputDir,
		Logger:    logger,
	}
}

// Generate composes the cover described by req and writes it to a file
// unique to this call. Backdrop, poster and QR failures only drop that layer.
func (g *Generator) Generate(ctx context.Context, req Request) (*Result, error) {
	req.Normalize()
	log := g.logger().With(
		zap.String("layout", req.LayoutMode),
		zap.String("font_family", req.CurrentFont.Family),
	)

	textColor, err := imagepkg.ParseHexColor(req.ActiveTextColor)
	if err != nil {
		log.Warn("invalid text color, using white", zap.String("color", req.ActiveTextColor))
		textColor = defaultTextColor
	}

	layers := imagepkg.Layers{
		Background:     imagepkg.BackgroundColor(req.Theme.BgStyle),
		DarkenBackdrop: req.Theme.IsDark,
		TextColor:      textColor,
		TextX:          round(req.TitleX),
		TextY:          round(req.TitleY),
	}

	if req.BackdropURL != "" {
		img, err := g.Fetcher.DownloadImage(ctx, req.BackdropURL)
		if err != nil {
			log.Warn("backdrop skipped", zap.String("url", req.BackdropURL), zap.Error(err))
			metrics.FetchFailed("backdrop")
		} else {
			layers.Backdrop = img
		}
	}

	for i, u := range req.StackedPosters(imagepkg.MaxStackPosters) {
		if u == "" {
			log.Warn("poster skipped", zap.Int("slot", i), zap.String("reason", "empty url"))
			metrics.FetchFailed("poster")
			continue
		}
		img, err := g.Fetcher.DownloadImage(ctx, u)
		if err != nil {
			log.Warn("poster skipped", zap.String("url", u), zap.Error(err))
			metrics.FetchFailed("poster")
			continue
		}
		layers.Posters = append(layers.Posters, img)
	}

	if req.QRText != "" {
		qr, err := imagepkg.GenerateQRImage(req.QRText, imagepkg.QRSize)
		if err != nil {
			log.Warn("qr badge skipped", zap.Error(err))
		} else {
			layers.QR = qr
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	titleFace, err := g.face(log, imagepkg.WeightBold, req.TitleSize)
	if err != nil {
		return nil, err
	}
	defer titleFace.Close()
	subFace, err := g.face(log, imagepkg.WeightRegular, math.Max(1, math.Floor(req.TitleSize/2)))
	if err != nil {
		return nil, err
	}
	defer subFace.Close()

	gap := round(req.TitleGap)
	layers.Title = imagepkg.TextLayer{
		Lines: imagepkg.Wrap(req.LibraryName, TitleWrapWidth),
		Face:  titleFace,
		Gap:   gap,
	}
	layers.Subtitle = imagepkg.TextLayer{
		Lines: imagepkg.Wrap(req.SubTitle, SubtitleWrapWidth),
		Face:  subFace,
		Gap:   halfGap(gap),
	}

	canvas := imagepkg.ComposeCover(layers)
	res, err := g.save(canvas)
	if err != nil {
		return nil, err
	}

	metrics.CoverGenerated(layoutLabel(req.LayoutMode))
	log.Info("cover generated",
		zap.String("path", res.Path),
		zap.Int("posters", len(layers.Posters)),
		zap.Bool("backdrop", layers.Backdrop != nil),
	)
	return res, nil
}

func (g *Generator) face(log *zap.Logger, w imagepkg.Weight, size float64) (font.Face, error) {
	face, src, err := g.Fonts.Face(w, size)
	if err != nil {
		return nil, fmt.Errorf("load font: %w", err)
	}
	if src == imagepkg.BuiltinSource {
		log.Warn("no font file available, using builtin font", zap.Int("weight", int(w)))
	}
	return face, nil
}

func (g *Generator) save(canvas image.Image) (*Result, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, canvas, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encode cover: %w", err)
	}
	path := filepath.Join(g.OutputDir, "cover_"+uuid.NewString()+".png")
	if err := util.WriteFile(path, buf.Bytes()); err != nil {
		return nil, fmt.Errorf("write cover: %w", err)
	}
	b := canvas.Bounds()
	return &Result{
		Path:   path,
		PNG:    buf.Bytes(),
		Width:  b.Dx(),
		Height: b.Dy(),
	}, nil
}

func (g *Generator) logger() *zap.Logger {
	if g.Logger == nil {
		return zap.NewNop()
	}
	return g.Logger
}

func layoutLabel(mode string) string {
	switch mode {
	case LayoutStack:
		return mode
	case "":
		return "none"
	default:
		return "other"
	}
}

func round(v float64) int {
	return int(math.Round(v))
}

// halfGap floors toward negative infinity so negative gaps tighten the
// subtitle by the same rounding as positive ones widen it.
func halfGap(gap int) int {
	return int(math.Floor(float64(gap) / 2))
}
