// Package render holds export-time image effects that operate on plain
// pixel buffers, independent of the annotation model.
package render

import (
	"image"
	"image/color"
	"image/draw"
)

// ShadowOptions configures the drop shadow composited behind an image
// at export time.
type ShadowOptions struct {
	// Radius is the blur radius in pixels.
	Radius int
	// Offset displaces the shadow relative to the image.
	Offset image.Point
	// Opacity is the shadow strength in [0,1]; zero disables the
	// effect.
	Opacity float64
}

// DefaultShadowOptions is tuned for typical screenshot sizes.
func DefaultShadowOptions() ShadowOptions {
	return ShadowOptions{Radius: 24, Offset: image.Pt(16, 16), Opacity: 0.55}
}

// ShadowResult is the composited image plus how far the original
// content shifted inside the expanded canvas.
type ShadowResult struct {
	Image  *image.RGBA
	Offset image.Point
}

// ApplyShadow composites img over a blurred black silhouette of itself.
// The result has a zero-based origin large enough to hold both the
// image and the displaced shadow; Offset reports where the original
// top-left corner landed.
func ApplyShadow(img *image.RGBA, opts ShadowOptions) ShadowResult {
	if img == nil || img.Bounds().Empty() || opts.Opacity <= 0 {
		return ShadowResult{Image: img}
	}
	opacity := opts.Opacity
	if opacity > 1 {
		opacity = 1
	}
	radius := opts.Radius
	if radius < 0 {
		radius = 0
	}

	src := img.Bounds()
	padded := src.Inset(-radius)
	shadow := padded.Add(opts.Offset)
	composite := src.Union(shadow)

	dst := image.NewRGBA(composite.Sub(composite.Min))
	if dst.Bounds().Empty() {
		return ShadowResult{Image: img}
	}

	// Silhouette of the image alpha, blurred into the shadow mask.
	mask := image.NewGray(padded.Sub(padded.Min))
	for y := src.Min.Y; y < src.Max.Y; y++ {
		for x := src.Min.X; x < src.Max.X; x++ {
			if a := img.RGBAAt(x, y).A; a > 0 {
				mask.SetGray(x-padded.Min.X, y-padded.Min.Y, color.Gray{Y: a})
			}
		}
	}
	blurred := boxBlur(mask, radius)

	alpha := uint8(opacity*255 + 0.5)
	shadowOrigin := shadow.Min.Sub(composite.Min)
	draw.DrawMask(dst, blurred.Bounds().Add(shadowOrigin),
		image.NewUniform(color.RGBA{0, 0, 0, alpha}), image.Point{},
		blurred, blurred.Bounds().Min, draw.Over)
	draw.Draw(dst, src.Sub(composite.Min), img, src.Min, draw.Over)

	return ShadowResult{Image: dst, Offset: src.Min.Sub(composite.Min)}
}

// boxBlur runs a separable box blur over a grayscale mask using
// per-row and per-column prefix sums.
func boxBlur(src *image.Gray, radius int) *image.Gray {
	if radius <= 0 {
		out := image.NewGray(src.Bounds())
		copy(out.Pix, src.Pix)
		return out
	}
	w := src.Bounds().Dx()
	h := src.Bounds().Dy()
	tmp := image.NewGray(src.Bounds())
	dst := image.NewGray(src.Bounds())

	sum := make([]int, w+1)
	for y := 0; y < h; y++ {
		row := y * src.Stride
		for x := 0; x < w; x++ {
			sum[x+1] = sum[x] + int(src.Pix[row+x])
		}
		for x := 0; x < w; x++ {
			lo, hi := clampRange(x, radius, w)
			tmp.Pix[y*tmp.Stride+x] = uint8((sum[hi+1] - sum[lo]) / (hi - lo + 1))
		}
	}

	col := make([]int, h+1)
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			col[y+1] = col[y] + int(tmp.Pix[y*tmp.Stride+x])
		}
		for y := 0; y < h; y++ {
			lo, hi := clampRange(y, radius, h)
			dst.Pix[y*dst.Stride+x] = uint8((col[hi+1] - col[lo]) / (hi - lo + 1))
		}
	}
	return dst
}

func clampRange(i, radius, n int) (lo, hi int) {
	lo = i - radius
	if lo < 0 {
		lo = 0
	}
	hi = i + radius
	if hi >= n {
		hi = n - 1
	}
	return lo, hi
}
