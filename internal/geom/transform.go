package geom

import "math"

// Converter maps between the fixed authoring space in which annotation
// geometry is stored and the pixel space of the base bitmap. Both spaces are
// top-left origin with Y growing downward; the two axes scale independently,
// so non-uniform stretching is permitted.
//
// Capture selections arrive in bottom-left-origin desktop coordinates; use
// FlipRectY at that boundary before converting to pixels.
type Converter struct {
	Authoring Size
	Image     Size
}

// Valid reports whether both spaces have usable dimensions.
func (c Converter) Valid() bool {
	return !c.Authoring.Empty() && !c.Image.Empty()
}

// ScaleX returns the pixels-per-authoring-unit factor on the X axis.
func (c Converter) ScaleX() float64 { return c.Image.W / c.Authoring.W }

// ScaleY returns the pixels-per-authoring-unit factor on the Y axis.
func (c Converter) ScaleY() float64 { return c.Image.H / c.Authoring.H }

// AuthoringToImage converts an authoring-space point to pixel coordinates.
func (c Converter) AuthoringToImage(p Point) Point {
	return Point{X: p.X * c.ScaleX(), Y: p.Y * c.ScaleY()}
}

// ImageToAuthoring converts a pixel-space point back to authoring space.
func (c Converter) ImageToAuthoring(p Point) Point {
	return Point{X: p.X / c.ScaleX(), Y: p.Y / c.ScaleY()}
}

// AuthoringRectToImage converts an authoring-space rect to a pixel rect.
func (c Converter) AuthoringRectToImage(r Rect) Rect {
	r = r.Canon()
	return Rect{
		X: r.X * c.ScaleX(),
		Y: r.Y * c.ScaleY(),
		W: r.W * c.ScaleX(),
		H: r.H * c.ScaleY(),
	}
}

// ImageRectToAuthoring is the inverse of AuthoringRectToImage.
func (c Converter) ImageRectToAuthoring(r Rect) Rect {
	r = r.Canon()
	return Rect{
		X: r.X / c.ScaleX(),
		Y: r.Y / c.ScaleY(),
		W: r.W / c.ScaleX(),
		H: r.H / c.ScaleY(),
	}
}

// FlipPointY converts a point between bottom-left-origin and top-left-origin
// spaces of the given height. The conversion is its own inverse.
func FlipPointY(p Point, height float64) Point {
	return Point{X: p.X, Y: height - p.Y}
}

// FlipRectY converts a rect between bottom-left-origin and top-left-origin
// spaces of the given height. The conversion is its own inverse.
func FlipRectY(r Rect, height float64) Rect {
	r = r.Canon()
	return Rect{X: r.X, Y: height - r.MaxY(), W: r.W, H: r.H}
}

// Viewport maps between the on-screen fitted display space and authoring
// space. Both spaces share orientation; only the per-axis scale differs, so
// the viewport may resize freely without moving authored geometry.
type Viewport struct {
	Display   Size
	Authoring Size
}

// DisplayToAuthoring converts a display-space point to authoring space.
func (v Viewport) DisplayToAuthoring(p Point) Point {
	return Point{
		X: p.X * v.Authoring.W / v.Display.W,
		Y: p.Y * v.Authoring.H / v.Display.H,
	}
}

// AuthoringToDisplay converts an authoring-space point to display space.
func (v Viewport) AuthoringToDisplay(p Point) Point {
	return Point{
		X: p.X * v.Display.W / v.Authoring.W,
		Y: p.Y * v.Display.H / v.Authoring.H,
	}
}

// RotateAbout rotates p around center by angle radians.
func RotateAbout(p, center Point, angle float64) Point {
	s, c := math.Sincos(angle)
	dx := p.X - center.X
	dy := p.Y - center.Y
	return Point{
		X: center.X + dx*c - dy*s,
		Y: center.Y + dx*s + dy*c,
	}
}

// NormalizeAngle wraps angle into [-pi, pi].
func NormalizeAngle(angle float64) float64 {
	for angle > math.Pi {
		angle -= 2 * math.Pi
	}
	for angle < -math.Pi {
		angle += 2 * math.Pi
	}
	return angle
}

// SnapAngle rounds angle to the nearest multiple of increment.
func SnapAngle(angle, increment float64) float64 {
	if increment == 0 {
		return angle
	}
	return math.Round(angle/increment) * increment
}

// AngularDelta returns the signed angle, normalized to [-pi, pi], swept when
// moving from the direction center->from to the direction center->to.
func AngularDelta(center, from, to Point) float64 {
	a0 := math.Atan2(from.Y-center.Y, from.X-center.X)
	a1 := math.Atan2(to.Y-center.Y, to.X-center.X)
	return NormalizeAngle(a1 - a0)
}

// SegmentDistance returns the shortest distance from p to the segment a-b.
func SegmentDistance(p, a, b Point) float64 {
	abx := b.X - a.X
	aby := b.Y - a.Y
	lenSq := abx*abx + aby*aby
	if lenSq == 0 {
		return p.Dist(a)
	}
	t := ((p.X-a.X)*abx + (p.Y-a.Y)*aby) / lenSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return p.Dist(Point{a.X + t*abx, a.Y + t*aby})
}
