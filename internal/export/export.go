// Package export encodes flattened canvases to disk formats. It is a
// sink: a failed encode or write never mutates in-memory editing state.
package export

import (
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"github.com/gbabichev/screensnip/internal/render"
)

// Format names an output encoding.
type Format string

const (
	FormatPNG  Format = "png"
	FormatJPEG Format = "jpeg"
	FormatBMP  Format = "bmp"
	FormatTIFF Format = "tiff"
)

// DefaultJPEGQuality is used when Options.JPEGQuality is zero.
const DefaultJPEGQuality = 90

// ParseFormat normalizes a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "png", "":
		return FormatPNG, nil
	case "jpg", "jpeg":
		return FormatJPEG, nil
	case "bmp":
		return FormatBMP, nil
	case "tif", "tiff":
		return FormatTIFF, nil
	}
	return "", fmt.Errorf("unknown image format %q", s)
}

// FormatForPath derives the format from a file extension, defaulting to
// PNG when the extension is missing or unknown.
func FormatForPath(path string) Format {
	f, err := ParseFormat(strings.TrimPrefix(filepath.Ext(path), "."))
	if err != nil {
		return FormatPNG
	}
	return f
}

// Options selects the encoding and optional post effects.
type Options struct {
	Format      Format
	JPEGQuality int
	// Shadow, when non-nil, composites a drop shadow around the image
	// before encoding.
	Shadow *render.ShadowOptions
}

// Encode writes img to w in the selected format.
func Encode(w io.Writer, img *image.RGBA, opts Options) error {
	if img == nil || img.Bounds().Empty() {
		return fmt.Errorf("encode: empty image")
	}
	if opts.Shadow != nil {
		img = render.ApplyShadow(img, *opts.Shadow).Image
	}
	switch opts.Format {
	case FormatPNG, "":
		return png.Encode(w, img)
	case FormatJPEG:
		q := opts.JPEGQuality
		if q <= 0 {
			q = DefaultJPEGQuality
		}
		if q > 100 {
			q = 100
		}
		return jpeg.Encode(w, flattenAlpha(img), &jpeg.Options{Quality: q})
	case FormatBMP:
		return bmp.Encode(w, img)
	case FormatTIFF:
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	}
	return fmt.Errorf("unknown image format %q", opts.Format)
}

// Save encodes img to path, creating parent directories as needed. The
// file is written to a temporary name and renamed into place so a
// failed encode never leaves a truncated image behind.
func Save(path string, img *image.RGBA, opts Options) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("save image: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".screensnip-*")
	if err != nil {
		return fmt.Errorf("save image: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := Encode(tmp, img, opts); err != nil {
		tmp.Close()
		return fmt.Errorf("save image: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("save image: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("save image: %w", err)
	}
	return nil
}

// flattenAlpha composites onto white; JPEG has no alpha channel.
func flattenAlpha(img *image.RGBA) *image.RGBA {
	b := img.Bounds()
	out := image.NewRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := img.RGBAAt(x, y)
			if c.A == 255 {
				out.SetRGBA(x, y, c)
				continue
			}
			a := uint32(c.A)
			blend := func(v uint8) uint8 {
				return uint8((uint32(v)*a + 255*(255-a)) / 255)
			}
			out.SetRGBA(x, y, color.RGBA{R: blend(c.R), G: blend(c.G), B: blend(c.B), A: 255})
		}
	}
	return out
}
