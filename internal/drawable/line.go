package drawable

import (
	"image/color"
	"math"

	"github.com/gbabichev/screensnip/internal/geom"
)

// Line is a straight stroke between two endpoints, optionally tipped with an
// arrowhead at the end point.
type Line struct {
	id    string
	Start geom.Point
	End   geom.Point
	Color color.RGBA
	Width float64
	Arrow bool
}

// NewLine creates a line drawable from the given endpoints.
func NewLine(start, end geom.Point, style Style) Line {
	w := style.StrokeWidth
	if w <= 0 {
		w = 2
	}
	return Line{
		id:    newID(),
		Start: start,
		End:   end,
		Color: style.Stroke,
		Width: w,
		Arrow: style.Arrow,
	}
}

func (l Line) ID() string { return l.id }

func (l Line) Kind() Kind { return KindLine }

func (l Line) Bounds() geom.Rect {
	return geom.FromPoints(l.Start, l.End).Inset(-l.Width / 2)
}

// HitTest reports whether p lies within the grab band around the segment.
// The band is never narrower than the minimum slop so hairlines stay
// selectable.
func (l Line) HitTest(p geom.Point) bool {
	band := math.Max(hitSlop, l.Width+hitSlop)
	return geom.SegmentDistance(p, l.Start, l.End) <= band
}

// HandleHitTest checks the two endpoint handles. Lines have no rotate grip.
func (l Line) HandleHitTest(p geom.Point) Handle {
	if p.Dist(l.Start) <= handleRadius {
		return HandleLineStart
	}
	if p.Dist(l.End) <= handleRadius {
		return HandleLineEnd
	}
	return HandleNone
}

func (l Line) Moved(delta geom.Point) Drawable {
	l.Start = l.Start.Add(delta)
	l.End = l.End.Add(delta)
	return l
}

// Resizing drags one endpoint to a new position. Endpoint drags are always
// accepted; a line has no minimum dimension.
func (l Line) Resizing(h Handle, to geom.Point, lockAspect bool) (Drawable, bool) {
	switch h {
	case HandleLineStart:
		l.Start = to
	case HandleLineEnd:
		l.End = to
	default:
		return l, false
	}
	return l, true
}
