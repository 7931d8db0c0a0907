package ui

import (
	"image"
	"image/color"
	"image/draw"
	"log"

	"golang.org/x/exp/shiny/screen"
	xdraw "golang.org/x/image/draw"

	"github.com/gbabichev/screensnip/internal/drawable"
	"github.com/gbabichev/screensnip/internal/geom"
)

var (
	backdropLight = color.RGBA{220, 220, 220, 255}
	backdropDark  = color.RGBA{192, 192, 192, 255}
	handleFill    = color.RGBA{255, 255, 255, 255}
	handleBorder  = color.RGBA{30, 30, 30, 255}
)

// paint renders the flattened canvas into a window buffer, then the
// interactive overlay: selection handles, the creation rubber band,
// and the crop region.
func (v *Viewer) paint(s screen.Screen, w screen.Window) {
	if v.winW <= 0 || v.winH <= 0 {
		return
	}
	b, err := s.NewBuffer(image.Point{v.winW, v.winH})
	if err != nil {
		log.Printf("new buffer: %v", err)
		return
	}
	defer b.Release()
	dst := b.RGBA()

	drawCheckerboard(dst, dst.Bounds(), 16, backdropLight, backdropDark)

	flat := v.ed.Canvas().Flatten()
	xdraw.ApproxBiLinear.Scale(dst, v.fit, flat, flat.Bounds(), draw.Over, nil)

	if sel, ok := v.ed.Canvas().Selected(); ok {
		v.drawSelection(dst, sel)
	}
	if band, ok := v.ed.RubberBand(); ok {
		drawDashedRect(dst, v.displayRect(band), 4, 1, color.White, color.Black)
	}
	if region, ok := v.ed.CropRegion(); ok {
		r := v.displayRect(region)
		drawDashedRect(dst, r, 4, 2, color.White, color.Black)
		for _, hr := range cropHandleRects(r) {
			draw.Draw(dst, hr, &image.Uniform{handleFill}, image.Point{}, draw.Src)
			drawRectOutline(dst, hr, handleBorder)
		}
	}

	w.Upload(image.Point{}, b, b.Bounds())
	w.Publish()
}

// displayRect maps an authoring-space rect into window pixels.
func (v *Viewer) displayRect(r geom.Rect) image.Rectangle {
	min := v.view.AuthoringToDisplay(geom.Pt(r.X, r.Y))
	max := v.view.AuthoringToDisplay(geom.Pt(r.MaxX(), r.MaxY()))
	return image.Rect(
		v.fit.Min.X+int(min.X), v.fit.Min.Y+int(min.Y),
		v.fit.Min.X+int(max.X), v.fit.Min.Y+int(max.Y),
	)
}

func (v *Viewer) displayPoint(p geom.Point) image.Point {
	d := v.view.AuthoringToDisplay(p)
	return image.Pt(v.fit.Min.X+int(d.X), v.fit.Min.Y+int(d.Y))
}

// drawSelection marks the selected drawable with its handles: line
// endpoints for lines, corner grips plus the rotate grip for frames.
func (v *Viewer) drawSelection(dst *image.RGBA, d drawable.Drawable) {
	if line, ok := d.(drawable.Line); ok {
		drawHandle(dst, v.displayPoint(line.Start))
		drawHandle(dst, v.displayPoint(line.End))
		return
	}
	bounds := d.Bounds()
	drawDashedRect(dst, v.displayRect(bounds), 4, 1, color.White, handleBorder)
	for _, p := range []geom.Point{
		{X: bounds.X, Y: bounds.Y},
		{X: bounds.MaxX(), Y: bounds.Y},
		{X: bounds.MaxX(), Y: bounds.MaxY()},
		{X: bounds.X, Y: bounds.MaxY()},
	} {
		drawHandle(dst, v.displayPoint(p))
	}
	if _, ok := d.(drawable.Rotatable); ok {
		grip := geom.Pt(bounds.Mid().X, bounds.Y-20)
		drawHandle(dst, v.displayPoint(grip))
	}
}

func drawHandle(dst *image.RGBA, at image.Point) {
	r := image.Rect(at.X-4, at.Y-4, at.X+4, at.Y+4)
	draw.Draw(dst, r, &image.Uniform{handleFill}, image.Point{}, draw.Src)
	drawRectOutline(dst, r, handleBorder)
}

func drawRectOutline(dst *image.RGBA, r image.Rectangle, c color.Color) {
	for x := r.Min.X; x < r.Max.X; x++ {
		dst.Set(x, r.Min.Y, c)
		dst.Set(x, r.Max.Y-1, c)
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		dst.Set(r.Min.X, y, c)
		dst.Set(r.Max.X-1, y, c)
	}
}

// drawDashedRect alternates two colors along each edge so the marquee
// stays visible over any background.
func drawDashedRect(dst *image.RGBA, r image.Rectangle, dash, thickness int, c1, c2 color.Color) {
	drawDashedLine(dst, r.Min.X, r.Min.Y, r.Max.X, r.Min.Y, dash, thickness, c1, c2)
	drawDashedLine(dst, r.Min.X, r.Max.Y-1, r.Max.X, r.Max.Y-1, dash, thickness, c1, c2)
	drawDashedLine(dst, r.Min.X, r.Min.Y, r.Min.X, r.Max.Y, dash, thickness, c1, c2)
	drawDashedLine(dst, r.Max.X-1, r.Min.Y, r.Max.X-1, r.Max.Y, dash, thickness, c1, c2)
}

func drawDashedLine(dst *image.RGBA, x0, y0, x1, y1, dash, thickness int, c1, c2 color.Color) {
	if dash <= 0 {
		dash = 4
	}
	if x0 == x1 {
		for y := y0; y < y1; y++ {
			c := c1
			if (y/dash)%2 == 1 {
				c = c2
			}
			for t := 0; t < thickness; t++ {
				dst.Set(x0+t, y, c)
			}
		}
		return
	}
	for x := x0; x < x1; x++ {
		c := c1
		if (x/dash)%2 == 1 {
			c = c2
		}
		for t := 0; t < thickness; t++ {
			dst.Set(x, y0+t, c)
		}
	}
}

// cropHandleRects returns the four corner grips of the crop marquee in
// window pixels.
func cropHandleRects(r image.Rectangle) []image.Rectangle {
	const half = 5
	corners := []image.Point{
		r.Min,
		{r.Max.X, r.Min.Y},
		r.Max,
		{r.Min.X, r.Max.Y},
	}
	out := make([]image.Rectangle, 0, len(corners))
	for _, c := range corners {
		out = append(out, image.Rect(c.X-half, c.Y-half, c.X+half, c.Y+half))
	}
	return out
}

// drawCheckerboard fills rect with the alternating backdrop used
// behind transparent regions.
func drawCheckerboard(dst *image.RGBA, rect image.Rectangle, size int, light, dark color.Color) {
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			if ((x/size)+(y/size))%2 == 0 {
				dst.Set(x, y, light)
			} else {
				dst.Set(x, y, dark)
			}
		}
	}
}
