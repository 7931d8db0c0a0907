// Package raster flattens a drawable list onto a base bitmap. Geometry is
// converted from authoring space to pixel space up front; shapes are then
// painted in z-order with gg so the merged image matches what the editor
// previews.
package raster

import (
	"image"
	"image/draw"
	"log"
	"strconv"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/gbabichev/screensnip/internal/drawable"
	"github.com/gbabichev/screensnip/internal/geom"
)

var (
	fontOnce   sync.Once
	fontParsed *truetype.Font
	fontErr    error

	faceMu    sync.Mutex
	faceCache = map[float64]font.Face{}
)

func face(size float64) font.Face {
	fontOnce.Do(func() {
		fontParsed, fontErr = truetype.Parse(goregular.TTF)
	})
	if fontErr != nil {
		log.Printf("parse font: %v", fontErr)
		return nil
	}
	faceMu.Lock()
	defer faceMu.Unlock()
	if f, ok := faceCache[size]; ok {
		return f
	}
	f := truetype.NewFace(fontParsed, &truetype.Options{Size: size, DPI: 72, Hinting: font.HintingFull})
	faceCache[size] = f
	return f
}

// Flatten replays list onto a copy of base and returns the merged image.
// base is never mutated. conv maps the authoring space the drawables live in
// onto base's pixel dimensions.
func Flatten(base *image.RGBA, list []drawable.Drawable, conv geom.Converter) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, base.Bounds().Dx(), base.Bounds().Dy()))
	draw.Draw(dst, dst.Bounds(), base, base.Bounds().Min, draw.Src)
	if len(list) == 0 {
		return dst
	}
	if !conv.Valid() {
		conv = geom.Converter{Authoring: geom.FromImageRect(base.Bounds()).Size(), Image: geom.FromImageRect(base.Bounds()).Size()}
	}
	dc := gg.NewContextForRGBA(dst)
	for _, d := range list {
		paint(dc, d, conv)
	}
	return dst
}

// strokeScale converts an authoring-space stroke width to pixels. Stroke
// width does not stretch per axis, so the two scales are averaged.
func strokeScale(conv geom.Converter, w float64) float64 {
	s := w * (conv.ScaleX() + conv.ScaleY()) / 2
	if s < 1 {
		s = 1
	}
	return s
}

func paint(dc *gg.Context, d drawable.Drawable, conv geom.Converter) {
	switch v := d.(type) {
	case drawable.Line:
		paintLine(dc, v, conv)
	case drawable.Rect:
		paintRect(dc, v, conv)
	case drawable.Oval:
		paintOval(dc, v, conv)
	case drawable.Text:
		paintText(dc, v, conv)
	case drawable.Badge:
		paintBadge(dc, v, conv)
	case drawable.Highlight:
		paintHighlight(dc, v, conv)
	case drawable.PastedImage:
		paintPasted(dc, v, conv)
	default:
		log.Printf("flatten: unknown drawable %T", d)
	}
}

func paintLine(dc *gg.Context, l drawable.Line, conv geom.Converter) {
	a := conv.AuthoringToImage(l.Start)
	b := conv.AuthoringToImage(l.End)
	w := strokeScale(conv, l.Width)
	dc.SetColor(l.Color)
	dc.SetLineWidth(w)
	dc.DrawLine(a.X, a.Y, b.X, b.Y)
	dc.Stroke()
	if l.Arrow {
		paintArrowHead(dc, a, b, w)
	}
}

// paintArrowHead fills a triangular head at b pointing away from a, sized
// with the stroke so thick arrows stay readable.
func paintArrowHead(dc *gg.Context, a, b geom.Point, width float64) {
	dx := b.X - a.X
	dy := b.Y - a.Y
	length := geom.Pt(dx, dy).Dist(geom.Pt(0, 0))
	if length < 0.1 {
		return
	}
	dx /= length
	dy /= length
	size := 6 + width*2
	const flare = 0.5
	dc.MoveTo(b.X, b.Y)
	dc.LineTo(b.X-size*dx+size*dy*flare, b.Y-size*dy-size*dx*flare)
	dc.LineTo(b.X-size*dx-size*dy*flare, b.Y-size*dy+size*dx*flare)
	dc.ClosePath()
	dc.Fill()
}

func paintRect(dc *gg.Context, r drawable.Rect, conv geom.Converter) {
	frame := conv.AuthoringRectToImage(r.Frame)
	c := frame.Mid()
	dc.Push()
	dc.RotateAbout(r.Rotation(), c.X, c.Y)
	dc.SetColor(r.Color)
	dc.SetLineWidth(strokeScale(conv, r.Width))
	dc.DrawRectangle(frame.X, frame.Y, frame.W, frame.H)
	dc.Stroke()
	dc.Pop()
}

func paintOval(dc *gg.Context, o drawable.Oval, conv geom.Converter) {
	frame := conv.AuthoringRectToImage(o.Frame)
	c := frame.Mid()
	dc.SetColor(o.Color)
	dc.SetLineWidth(strokeScale(conv, o.Width))
	dc.DrawEllipse(c.X, c.Y, frame.W/2, frame.H/2)
	dc.Stroke()
}

func paintText(dc *gg.Context, t drawable.Text, conv geom.Converter) {
	frame := conv.AuthoringRectToImage(t.Frame)
	c := frame.Mid()
	dc.Push()
	defer dc.Pop()
	dc.RotateAbout(t.Rotation(), c.X, c.Y)
	if t.HasBG {
		dc.SetColor(t.Background)
		dc.DrawRectangle(frame.X, frame.Y, frame.W, frame.H)
		dc.Fill()
	}
	f := face(t.FontSize * conv.ScaleY())
	if f == nil {
		return
	}
	dc.SetFontFace(f)
	dc.SetColor(t.Color)
	const pad = 2.0
	dc.DrawStringWrapped(t.Value, frame.X+pad, frame.Y+pad, 0, 0, frame.W-2*pad, 1.2, gg.AlignLeft)
}

func paintBadge(dc *gg.Context, b drawable.Badge, conv geom.Converter) {
	frame := conv.AuthoringRectToImage(b.Frame)
	c := frame.Mid()
	radius := frame.W / 2
	if frame.H > frame.W {
		radius = frame.H / 2
	}
	dc.SetColor(b.Fill)
	dc.DrawCircle(c.X, c.Y, radius)
	dc.Fill()
	f := face(radius)
	if f == nil {
		return
	}
	dc.SetFontFace(f)
	dc.SetColor(b.TextColor)
	dc.DrawStringAnchored(strconv.Itoa(b.Value), c.X, c.Y, 0.5, 0.5)
}

func paintHighlight(dc *gg.Context, hl drawable.Highlight, conv geom.Converter) {
	frame := conv.AuthoringRectToImage(hl.Frame)
	dc.SetColor(hl.Color)
	dc.DrawRectangle(frame.X, frame.Y, frame.W, frame.H)
	dc.Fill()
}

func paintPasted(dc *gg.Context, pi drawable.PastedImage, conv geom.Converter) {
	frame := conv.AuthoringRectToImage(pi.Frame)
	b := pi.Source.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 || frame.Empty() {
		return
	}
	c := frame.Mid()
	dc.Push()
	defer dc.Pop()
	dc.RotateAbout(pi.Rotation(), c.X, c.Y)
	dc.Translate(frame.X, frame.Y)
	dc.Scale(frame.W/float64(b.Dx()), frame.H/float64(b.Dy()))
	dc.DrawImage(pi.Source, 0, 0)
}

// Crop returns a copy of rect from img. Areas of rect outside img are left
// transparent so a crop overshooting the bitmap still yields a full-size
// result.
func Crop(img *image.RGBA, rect image.Rectangle) *image.RGBA {
	if rect.Empty() {
		return img
	}
	out := image.NewRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	src := rect.Intersect(img.Bounds())
	if !src.Empty() {
		draw.Draw(out, src.Sub(rect.Min), img, src.Min, draw.Src)
	}
	return out
}
