package drawable

import (
	"image/color"
	"math"

	"github.com/gbabichev/screensnip/internal/geom"
)

// Rect is a stroked, rotatable rectangle outline.
type Rect struct {
	id       string
	Frame    geom.Rect
	Color    color.RGBA
	Width    float64
	rotation float64
}

// NewRect creates a stroked rectangle covering frame.
func NewRect(frame geom.Rect, style Style) Rect {
	w := style.StrokeWidth
	if w <= 0 {
		w = 2
	}
	return Rect{id: newID(), Frame: frame.Canon(), Color: style.Stroke, Width: w}
}

func (r Rect) ID() string { return r.id }

func (r Rect) Kind() Kind { return KindRect }

func (r Rect) Bounds() geom.Rect { return RotatedBounds(r.Frame, r.rotation) }

func (r Rect) Rotation() float64 { return r.rotation }

// HitTest is a border band test evaluated in the unrotated local frame: the
// point must fall inside an outward inset of the frame but outside an inward
// inset, so the rectangle interior stays click-through.
func (r Rect) HitTest(p geom.Point) bool {
	local := geom.RotateAbout(p, r.Frame.Mid(), -r.rotation)
	band := hitSlop + r.Width/2
	outer := r.Frame.Inset(-band)
	inner := r.Frame.Inset(band)
	if inner.Empty() {
		return outer.Contains(local)
	}
	return outer.Contains(local) && !inner.Contains(local)
}

func (r Rect) HandleHitTest(p geom.Point) Handle {
	return rotatedHandleHit(r.Frame, r.rotation, p, true)
}

func (r Rect) Moved(delta geom.Point) Drawable {
	r.Frame = r.Frame.Translate(delta)
	return r
}

func (r Rect) Resizing(h Handle, to geom.Point, lockAspect bool) (Drawable, bool) {
	frame, ok := resizeRect(r.Frame, r.rotation, h, to)
	if !ok {
		return r, false
	}
	r.Frame = frame
	return r, true
}

func (r Rect) Rotating(from, to geom.Point, snap bool) Drawable {
	r.rotation = accumulateRotation(r.rotation, r.Frame.Mid(), from, to, snap)
	return r
}

// Oval is a stroked ellipse inscribed in its bounding rectangle. Unlike Rect
// its hit test is a filled-ellipse membership test, preserved from the
// source behavior.
type Oval struct {
	id    string
	Frame geom.Rect
	Color color.RGBA
	Width float64
}

// NewOval creates an ellipse inscribed in frame.
func NewOval(frame geom.Rect, style Style) Oval {
	w := style.StrokeWidth
	if w <= 0 {
		w = 2
	}
	return Oval{id: newID(), Frame: frame.Canon(), Color: style.Stroke, Width: w}
}

func (o Oval) ID() string { return o.id }

func (o Oval) Kind() Kind { return KindOval }

func (o Oval) Bounds() geom.Rect { return o.Frame }

func (o Oval) HitTest(p geom.Point) bool {
	rx := o.Frame.W / 2
	ry := o.Frame.H / 2
	if rx <= 0 || ry <= 0 {
		return false
	}
	c := o.Frame.Mid()
	dx := (p.X - c.X) / rx
	dy := (p.Y - c.Y) / ry
	return dx*dx+dy*dy <= 1
}

func (o Oval) HandleHitTest(p geom.Point) Handle {
	return rotatedHandleHit(o.Frame, 0, p, false)
}

func (o Oval) Moved(delta geom.Point) Drawable {
	o.Frame = o.Frame.Translate(delta)
	return o
}

func (o Oval) Resizing(h Handle, to geom.Point, lockAspect bool) (Drawable, bool) {
	frame, ok := resizeRect(o.Frame, 0, h, to)
	if !ok {
		return o, false
	}
	o.Frame = frame
	return o, true
}

// Highlight is a translucent fill with no stroke, used to call out a region
// without obscuring it.
type Highlight struct {
	id    string
	Frame geom.Rect
	Color color.RGBA
}

// DefaultHighlightAlpha is the fill opacity applied when the style carries a
// fully opaque color.
const DefaultHighlightAlpha = 0x66

// NewHighlight creates a translucent highlight covering frame.
func NewHighlight(frame geom.Rect, style Style) Highlight {
	c := style.Fill
	if !style.HasFill {
		c = style.Stroke
	}
	if c.A == math.MaxUint8 {
		c.A = DefaultHighlightAlpha
	}
	return Highlight{id: newID(), Frame: frame.Canon(), Color: c}
}

func (hl Highlight) ID() string { return hl.id }

func (hl Highlight) Kind() Kind { return KindHighlight }

func (hl Highlight) Bounds() geom.Rect { return hl.Frame }

func (hl Highlight) HitTest(p geom.Point) bool {
	return hl.Frame.Inset(-hitSlop / 2).Contains(p)
}

func (hl Highlight) HandleHitTest(p geom.Point) Handle {
	return rotatedHandleHit(hl.Frame, 0, p, false)
}

func (hl Highlight) Moved(delta geom.Point) Drawable {
	hl.Frame = hl.Frame.Translate(delta)
	return hl
}

func (hl Highlight) Resizing(h Handle, to geom.Point, lockAspect bool) (Drawable, bool) {
	frame, ok := resizeRect(hl.Frame, 0, h, to)
	if !ok {
		return hl, false
	}
	hl.Frame = frame
	return hl, true
}
