package imagepkg

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
)

const (
	CoverWidth  = 800
	CoverHeight = 1200

	// Stacked posters are 70% of the canvas.
	PosterWidth     = CoverWidth * 7 / 10
	PosterHeight    = CoverHeight * 7 / 10
	StackStep       = 50
	MaxStackPosters = 3

	QRSize   = 160
	QRMargin = 32

	DarkBackdropFactor = 0.7
)

// TextLayer is a block of pre-wrapped lines drawn with one face.
type TextLayer struct {
	Lines []string
	Face  font.Face
	Gap   int
}

// Layers describes everything drawn onto a cover, bottom to top.
type Layers struct {
	Background     color.NRGBA
	Backdrop       image.Image
	DarkenBackdrop bool
	Posters        []image.Image
	QR             image.Image

	TextColor color.NRGBA
	TextX     int
	TextY     int
	Title     TextLayer
	Subtitle  TextLayer
}

// ComposeCover renders the layers onto a CoverWidth x CoverHeight canvas.
func ComposeCover(l Layers) *image.NRGBA {
	canvas := imaging.New(CoverWidth, CoverHeight, l.Background)

	if l.Backdrop != nil {
		b := imaging.Resize(Opaque(l.Backdrop), CoverWidth, CoverHeight, imaging.Lanczos)
		if l.DarkenBackdrop {
			b = Darken(b, DarkBackdropFactor)
		}
		canvas = imaging.Paste(canvas, b, image.Pt(0, 0))
	}

	x := CoverWidth/2 - PosterWidth/2
	y := CoverHeight/2 - PosterHeight/2
	for i, p := range l.Posters {
		if i >= MaxStackPosters {
			break
		}
		r := imaging.Resize(p, PosterWidth, PosterHeight, imaging.Lanczos)
		canvas = imaging.Overlay(canvas, r, image.Pt(x, y), 1.0)
		y += StackStep
	}

	if l.QR != nil {
		q := imaging.Resize(l.QR, QRSize, QRSize, imaging.NearestNeighbor)
		canvas = imaging.Paste(canvas, q, image.Pt(CoverWidth-QRMargin-QRSize, CoverHeight-QRMargin-QRSize))
	}

	next := DrawLines(canvas, l.Title.Face, l.TextColor, l.TextX, l.TextY, l.Title.Lines, l.Title.Gap)
	DrawLines(canvas, l.Subtitle.Face, l.TextColor, l.TextX, next, l.Subtitle.Lines, l.Subtitle.Gap)

	return canvas
}

// Opaque drops the alpha channel, keeping the stored color of every pixel.
// The backdrop fully replaces the background rather than blending with it.
func Opaque(img image.Image) *image.NRGBA {
	return imaging.AdjustFunc(img, func(c color.NRGBA) color.NRGBA {
		c.A = 0xff
		return c
	})
}

// Darken multiplies every color channel by factor, keeping alpha.
func Darken(img image.Image, factor float64) *image.NRGBA {
	scale := func(v uint8) uint8 {
		s := float64(v)*factor + 0.5
		if s > 255 {
			return 255
		}
		if s < 0 {
			return 0
		}
		return uint8(s)
	}
	return imaging.AdjustFunc(img, func(c color.NRGBA) color.NRGBA {
		return color.NRGBA{R: scale(c.R), G: scale(c.G), B: scale(c.B), A: c.A}
	})
}
