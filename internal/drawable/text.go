package drawable

import (
	"image/color"
	"math"

	"github.com/gbabichev/screensnip/internal/geom"
)

// Text is a rotatable text box with an optional background fill.
type Text struct {
	id         string
	Frame      geom.Rect
	Value      string
	FontSize   float64
	Color      color.RGBA
	Background color.RGBA
	HasBG      bool
	rotation   float64
}

// NewText creates a text box covering frame.
func NewText(frame geom.Rect, value string, style Style) Text {
	size := style.FontSize
	if size <= 0 {
		size = 16
	}
	return Text{
		id:         newID(),
		Frame:      frame.Canon(),
		Value:      value,
		FontSize:   size,
		Color:      style.Stroke,
		Background: style.Fill,
		HasBG:      style.HasFill,
	}
}

func (t Text) ID() string { return t.id }

func (t Text) Kind() Kind { return KindText }

func (t Text) Bounds() geom.Rect { return RotatedBounds(t.Frame, t.rotation) }

func (t Text) Rotation() float64 { return t.rotation }

// WithValue returns the text box with its string replaced, used when the
// editor finishes an inline edit.
func (t Text) WithValue(value string) Text {
	t.Value = value
	return t
}

// HitTest checks containment in the local rotated frame with a small outward
// tolerance.
func (t Text) HitTest(p geom.Point) bool {
	local := geom.RotateAbout(p, t.Frame.Mid(), -t.rotation)
	return t.Frame.Inset(-hitSlop / 2).Contains(local)
}

func (t Text) HandleHitTest(p geom.Point) Handle {
	return rotatedHandleHit(t.Frame, t.rotation, p, true)
}

func (t Text) Moved(delta geom.Point) Drawable {
	t.Frame = t.Frame.Translate(delta)
	return t
}

func (t Text) Resizing(h Handle, to geom.Point, lockAspect bool) (Drawable, bool) {
	frame, ok := resizeRect(t.Frame, t.rotation, h, to)
	if !ok {
		return t, false
	}
	t.Frame = frame
	return t, true
}

func (t Text) Rotating(from, to geom.Point, snap bool) Drawable {
	t.rotation = accumulateRotation(t.rotation, t.Frame.Mid(), from, to, snap)
	return t
}

// Badge is a numbered circular marker. Its frame is kept square; the counter
// value is assigned by the canvas when the badge is created.
type Badge struct {
	id        string
	Frame     geom.Rect
	Value     int
	Fill      color.RGBA
	TextColor color.RGBA
}

// NewBadge creates a numbered badge. The frame is squared to its larger
// dimension around its own center.
func NewBadge(frame geom.Rect, value int, style Style) Badge {
	fill := style.Fill
	if !style.HasFill {
		fill = style.Stroke
	}
	return Badge{
		id:        newID(),
		Frame:     squared(frame.Canon()),
		Value:     value,
		Fill:      fill,
		TextColor: badgeTextColor(fill),
	}
}

// badgeTextColor picks black or white by fill luminance so the counter stays
// legible on any palette color.
func badgeTextColor(fill color.RGBA) color.RGBA {
	brightness := 0.299*float64(fill.R) + 0.587*float64(fill.G) + 0.114*float64(fill.B)
	if brightness < 128 {
		return color.RGBA{255, 255, 255, 255}
	}
	return color.RGBA{0, 0, 0, 255}
}

func squared(r geom.Rect) geom.Rect {
	side := math.Max(r.W, r.H)
	c := r.Mid()
	return geom.XYWH(c.X-side/2, c.Y-side/2, side, side)
}

func (b Badge) ID() string { return b.id }

func (b Badge) Kind() Kind { return KindBadge }

func (b Badge) Bounds() geom.Rect { return b.Frame }

// HitTest checks membership in the circumscribed circle.
func (b Badge) HitTest(p geom.Point) bool {
	radius := math.Max(b.Frame.W, b.Frame.H)/2 + hitSlop/2
	return p.Dist(b.Frame.Mid()) <= radius
}

func (b Badge) HandleHitTest(p geom.Point) Handle {
	return rotatedHandleHit(b.Frame, 0, p, false)
}

func (b Badge) Moved(delta geom.Point) Drawable {
	b.Frame = b.Frame.Translate(delta)
	return b
}

// Resizing keeps the badge square by growing both axes to the larger of the
// two resized dimensions.
func (b Badge) Resizing(h Handle, to geom.Point, lockAspect bool) (Drawable, bool) {
	frame, ok := resizeRect(b.Frame, 0, h, to)
	if !ok {
		return b, false
	}
	b.Frame = squared(frame)
	return b, true
}
