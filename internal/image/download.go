package imagepkg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"net/http"
	"time"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"

	"github.com/youruser/coverapp/internal/util"
)

var ErrTooManyPixels = errors.New("image has too many pixels")

// Fetcher downloads and decodes remote images.
type Fetcher struct {
	Client    *http.Client
	MaxBytes  int64
	MaxPixels int64
}

// NewFetcher returns a Fetcher whose requests time out after timeout.
// Bodies above maxBytes and images above maxPixels are rejected.
func NewFetcher(timeout time.Duration, maxBytes, maxPixels int64) *Fetcher {
	return &Fetcher{
		Client:    &http.Client{Timeout: timeout},
		MaxBytes:  maxBytes,
		MaxPixels: maxPixels,
	}
}

// DownloadImage downloads an image from url and returns it decoded.
// The header is checked against MaxPixels before any pixel data is decoded.
func (f *Fetcher) DownloadImage(ctx context.Context, url string) (image.Image, error) {
	body, err := util.GetBytes(ctx, f.Client, url, f.MaxBytes)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", url, err)
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", url, err)
	}
	if f.MaxPixels > 0 && int64(cfg.Width)*int64(cfg.Height) > f.MaxPixels {
		return nil, fmt.Errorf("decode %s: %w: %dx%d exceeds %d", url, ErrTooManyPixels, cfg.Width, cfg.Height, f.MaxPixels)
	}
	img, err := imaging.Decode(bytes.NewReader(body), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", url, err)
	}
	return img, nil
}
