// Package drawable implements the annotation object model. Every annotation
// is an immutable value; edits return a modified copy carrying the same
// identifier, so z-ordered lists of drawables can be snapshotted by copying
// the slice.
package drawable

import (
	"image/color"
	"math"

	"github.com/google/uuid"

	"github.com/gbabichev/screensnip/internal/geom"
)

// Handle names a control point of a shape engaged during a drag.
type Handle int

const (
	HandleNone Handle = iota
	HandleLineStart
	HandleLineEnd
	HandleTopLeft
	HandleTopRight
	HandleBottomRight
	HandleBottomLeft
	HandleRotate
)

// String returns a short name for debugging and log output.
func (h Handle) String() string {
	switch h {
	case HandleNone:
		return "none"
	case HandleLineStart:
		return "line-start"
	case HandleLineEnd:
		return "line-end"
	case HandleTopLeft:
		return "top-left"
	case HandleTopRight:
		return "top-right"
	case HandleBottomRight:
		return "bottom-right"
	case HandleBottomLeft:
		return "bottom-left"
	case HandleRotate:
		return "rotate"
	default:
		return "unknown"
	}
}

// IsCorner reports whether h is one of the four rectangle corner handles.
func (h Handle) IsCorner() bool {
	switch h {
	case HandleTopLeft, HandleTopRight, HandleBottomRight, HandleBottomLeft:
		return true
	}
	return false
}

// Kind discriminates the drawable variants.
type Kind int

const (
	KindLine Kind = iota
	KindRect
	KindOval
	KindText
	KindBadge
	KindHighlight
	KindPastedImage
)

const (
	// MinDimension is the floor below which a resize is rejected outright.
	MinDimension = 8.0

	hitSlop          = 6.0
	handleRadius     = 8.0
	rotateGripOffset = 20.0
)

// Style carries the visual attributes applied when a drawable is created.
// Each variant reads only the fields relevant to it.
type Style struct {
	Stroke      color.RGBA
	Fill        color.RGBA
	HasFill     bool
	StrokeWidth float64
	FontSize    float64
	Arrow       bool
}

// Drawable is one annotation object. Implementations are value types; Moved
// and Resizing return modified copies with the identifier preserved.
type Drawable interface {
	ID() string
	Kind() Kind
	Bounds() geom.Rect
	HitTest(p geom.Point) bool
	HandleHitTest(p geom.Point) Handle
	Moved(delta geom.Point) Drawable
	// Resizing returns the resized drawable and true, or the receiver
	// unchanged and false when the result would shrink below MinDimension.
	Resizing(h Handle, to geom.Point, lockAspect bool) (Drawable, bool)
}

// Rotatable is implemented by the variants that carry a rotation angle.
type Rotatable interface {
	Drawable
	Rotation() float64
	// Rotating accumulates the signed angular delta swept between the two
	// pointer positions around the shape center. snap rounds the result to
	// 15 degree increments.
	Rotating(from, to geom.Point, snap bool) Drawable
}

func newID() string { return uuid.NewString() }

// cornerPoint returns the unrotated world position of a corner handle.
func cornerPoint(r geom.Rect, h Handle) geom.Point {
	switch h {
	case HandleTopLeft:
		return geom.Pt(r.X, r.Y)
	case HandleTopRight:
		return geom.Pt(r.MaxX(), r.Y)
	case HandleBottomRight:
		return geom.Pt(r.MaxX(), r.MaxY())
	case HandleBottomLeft:
		return geom.Pt(r.X, r.MaxY())
	}
	return r.Mid()
}

func oppositeCorner(h Handle) Handle {
	switch h {
	case HandleTopLeft:
		return HandleBottomRight
	case HandleTopRight:
		return HandleBottomLeft
	case HandleBottomRight:
		return HandleTopLeft
	case HandleBottomLeft:
		return HandleTopRight
	}
	return HandleNone
}

var cornerHandles = []Handle{HandleTopLeft, HandleTopRight, HandleBottomRight, HandleBottomLeft}

// resizeRect computes the rect that results from dragging the given corner
// handle to a new world point while the opposite corner stays fixed in world
// space, even under rotation. It reports false when either resulting
// dimension falls below MinDimension.
func resizeRect(r geom.Rect, rotation float64, h Handle, to geom.Point) (geom.Rect, bool) {
	if !h.IsCorner() {
		return r, false
	}
	center := r.Mid()
	fixedWorld := geom.RotateAbout(cornerPoint(r, oppositeCorner(h)), center, rotation)
	newCenter := geom.Pt((fixedWorld.X+to.X)/2, (fixedWorld.Y+to.Y)/2)
	dragLocal := geom.RotateAbout(to, newCenter, -rotation)
	fixedLocal := geom.RotateAbout(fixedWorld, newCenter, -rotation)
	w := math.Abs(dragLocal.X - fixedLocal.X)
	hgt := math.Abs(dragLocal.Y - fixedLocal.Y)
	if w < MinDimension || hgt < MinDimension {
		return r, false
	}
	return geom.XYWH(newCenter.X-w/2, newCenter.Y-hgt/2, w, hgt), true
}

// rotatedHandleHit checks the four rotated corner handles, and the rotate
// grip when withRotate is set, returning the handle whose world position is
// within handleRadius of p.
func rotatedHandleHit(r geom.Rect, rotation float64, p geom.Point, withRotate bool) Handle {
	center := r.Mid()
	if withRotate {
		grip := geom.RotateAbout(rotateGripPoint(r), center, rotation)
		if p.Dist(grip) <= handleRadius {
			return HandleRotate
		}
	}
	for _, h := range cornerHandles {
		world := geom.RotateAbout(cornerPoint(r, h), center, rotation)
		if p.Dist(world) <= handleRadius {
			return h
		}
	}
	return HandleNone
}

// rotateGripPoint returns the unrotated rotate-grip position, hovering above
// the top edge midpoint.
func rotateGripPoint(r geom.Rect) geom.Point {
	return geom.Pt(r.X+r.W/2, r.Y-rotateGripOffset)
}

// accumulateRotation adds the signed pointer delta around center to the
// current rotation, optionally snapping to 15 degree steps.
func accumulateRotation(current float64, center, from, to geom.Point, snap bool) float64 {
	next := current + geom.AngularDelta(center, from, to)
	if snap {
		next = geom.SnapAngle(next, 15*math.Pi/180)
	}
	return next
}

// RotatedBounds returns the axis-aligned bounds of r rotated about its
// center, useful for damage regions and selection chrome.
func RotatedBounds(r geom.Rect, rotation float64) geom.Rect {
	if rotation == 0 {
		return r
	}
	center := r.Mid()
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, h := range cornerHandles {
		world := geom.RotateAbout(cornerPoint(r, h), center, rotation)
		minX = math.Min(minX, world.X)
		minY = math.Min(minY, world.Y)
		maxX = math.Max(maxX, world.X)
		maxY = math.Max(maxY, world.Y)
	}
	return geom.XYWH(minX, minY, maxX-minX, maxY-minY)
}
