package geom

import (
	"image"
	"math"
)

// Point is a location in one of the editor coordinate spaces.
type Point struct {
	X, Y float64
}

// Size is a width/height pair.
type Size struct {
	W, H float64
}

// Rect is an axis-aligned rectangle described by its origin and size. The
// origin is the corner nearest the coordinate-space origin once the rect is
// canonical, so callers should Canon rects built from arbitrary drag points.
type Rect struct {
	X, Y, W, H float64
}

// Pt is shorthand for Point{x, y}.
func Pt(x, y float64) Point { return Point{X: x, Y: y} }

// Sz is shorthand for Size{w, h}.
func Sz(w, h float64) Size { return Size{W: w, H: h} }

// XYWH is shorthand for Rect{x, y, w, h}.
func XYWH(x, y, w, h float64) Rect { return Rect{X: x, Y: y, W: w, H: h} }

// Add returns p translated by q.
func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }

// Sub returns p translated by -q.
func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }

// Dist returns the Euclidean distance between p and q.
func (p Point) Dist(q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// Empty reports whether the size has no area.
func (s Size) Empty() bool { return s.W <= 0 || s.H <= 0 }

// FromPoints builds the canonical rectangle spanned by two opposite corners.
func FromPoints(a, b Point) Rect {
	return Rect{
		X: math.Min(a.X, b.X),
		Y: math.Min(a.Y, b.Y),
		W: math.Abs(a.X - b.X),
		H: math.Abs(a.Y - b.Y),
	}
}

// Canon returns r with non-negative width and height.
func (r Rect) Canon() Rect {
	if r.W < 0 {
		r.X += r.W
		r.W = -r.W
	}
	if r.H < 0 {
		r.Y += r.H
		r.H = -r.H
	}
	return r
}

// Empty reports whether r covers no area.
func (r Rect) Empty() bool { return r.W <= 0 || r.H <= 0 }

// MaxX returns the coordinate of the far edge on the X axis.
func (r Rect) MaxX() float64 { return r.X + r.W }

// MaxY returns the coordinate of the far edge on the Y axis.
func (r Rect) MaxY() float64 { return r.Y + r.H }

// Mid returns the center point of r.
func (r Rect) Mid() Point { return Point{r.X + r.W/2, r.Y + r.H/2} }

// Size returns the dimensions of r.
func (r Rect) Size() Size { return Size{r.W, r.H} }

// Contains reports whether p lies inside r, edges included.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.MaxX() && p.Y >= r.Y && p.Y <= r.MaxY()
}

// Inset shrinks r by d on every side. A negative d grows the rect.
func (r Rect) Inset(d float64) Rect {
	return Rect{X: r.X + d, Y: r.Y + d, W: r.W - 2*d, H: r.H - 2*d}
}

// Translate returns r moved by delta.
func (r Rect) Translate(delta Point) Rect {
	return Rect{X: r.X + delta.X, Y: r.Y + delta.Y, W: r.W, H: r.H}
}

// Intersect returns the overlap of r and o, or an empty rect when they are
// disjoint.
func (r Rect) Intersect(o Rect) Rect {
	x0 := math.Max(r.X, o.X)
	y0 := math.Max(r.Y, o.Y)
	x1 := math.Min(r.MaxX(), o.MaxX())
	y1 := math.Min(r.MaxY(), o.MaxY())
	if x1 <= x0 || y1 <= y0 {
		return Rect{}
	}
	return Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

// Union returns the smallest rect covering both r and o.
func (r Rect) Union(o Rect) Rect {
	if r.Empty() {
		return o
	}
	if o.Empty() {
		return r
	}
	x0 := math.Min(r.X, o.X)
	y0 := math.Min(r.Y, o.Y)
	x1 := math.Max(r.MaxX(), o.MaxX())
	y1 := math.Max(r.MaxY(), o.MaxY())
	return Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

// Area returns the surface covered by r, zero for empty rects.
func (r Rect) Area() float64 {
	if r.Empty() {
		return 0
	}
	return r.W * r.H
}

// ImageRect converts r to an image.Rectangle, rounding outward so the pixel
// rect always covers the float rect.
func (r Rect) ImageRect() image.Rectangle {
	return image.Rect(
		int(math.Floor(r.X)),
		int(math.Floor(r.Y)),
		int(math.Ceil(r.MaxX())),
		int(math.Ceil(r.MaxY())),
	)
}

// FromImageRect converts an image.Rectangle into a Rect.
func FromImageRect(r image.Rectangle) Rect {
	return Rect{
		X: float64(r.Min.X),
		Y: float64(r.Min.Y),
		W: float64(r.Dx()),
		H: float64(r.Dy()),
	}
}

// ClampRect restricts r to lie within bounds. The result may be empty.
func ClampRect(r image.Rectangle, bounds image.Rectangle) image.Rectangle {
	return r.Intersect(bounds)
}
