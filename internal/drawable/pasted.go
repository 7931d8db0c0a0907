package drawable

import (
	"image"
	"math"

	"github.com/gbabichev/screensnip/internal/geom"
)

// PastedImage is a bitmap dropped onto the canvas. The source pixels are
// never mutated; scaling happens at flatten time. The natural aspect ratio is
// cached at creation so aspect-locked resizes do not drift as the frame is
// reshaped.
type PastedImage struct {
	id       string
	Frame    geom.Rect
	Source   image.Image
	aspect   float64
	rotation float64
}

// NewPastedImage places src into frame. An empty frame takes the source's
// natural size at the frame origin.
func NewPastedImage(frame geom.Rect, src image.Image) PastedImage {
	b := src.Bounds()
	if frame.Empty() {
		frame = geom.XYWH(frame.X, frame.Y, float64(b.Dx()), float64(b.Dy()))
	}
	aspect := 1.0
	if b.Dy() > 0 {
		aspect = float64(b.Dx()) / float64(b.Dy())
	}
	return PastedImage{id: newID(), Frame: frame.Canon(), Source: src, aspect: aspect}
}

func (pi PastedImage) ID() string { return pi.id }

func (pi PastedImage) Kind() Kind { return KindPastedImage }

func (pi PastedImage) Bounds() geom.Rect { return RotatedBounds(pi.Frame, pi.rotation) }

func (pi PastedImage) Rotation() float64 { return pi.rotation }

// Aspect returns the cached natural width/height ratio of the source bitmap.
func (pi PastedImage) Aspect() float64 { return pi.aspect }

func (pi PastedImage) HitTest(p geom.Point) bool {
	local := geom.RotateAbout(p, pi.Frame.Mid(), -pi.rotation)
	return pi.Frame.Inset(-hitSlop / 2).Contains(local)
}

func (pi PastedImage) HandleHitTest(p geom.Point) Handle {
	return rotatedHandleHit(pi.Frame, pi.rotation, p, true)
}

func (pi PastedImage) Moved(delta geom.Point) Drawable {
	pi.Frame = pi.Frame.Translate(delta)
	return pi
}

// Resizing resizes the frame with the opposite corner fixed. When lockAspect
// is set the natural aspect ratio is restored by adjusting whichever
// dimension requires the smaller correction, keeping the new center.
func (pi PastedImage) Resizing(h Handle, to geom.Point, lockAspect bool) (Drawable, bool) {
	frame, ok := resizeRect(pi.Frame, pi.rotation, h, to)
	if !ok {
		return pi, false
	}
	if lockAspect && pi.aspect > 0 {
		w := frame.W
		hgt := frame.H
		wFromH := hgt * pi.aspect
		hFromW := w / pi.aspect
		if math.Abs(wFromH-w) <= math.Abs(hFromW-hgt) {
			w = wFromH
		} else {
			hgt = hFromW
		}
		if w < MinDimension || hgt < MinDimension {
			return pi, false
		}
		c := frame.Mid()
		frame = geom.XYWH(c.X-w/2, c.Y-hgt/2, w, hgt)
	}
	pi.Frame = frame
	return pi, true
}

func (pi PastedImage) Rotating(from, to geom.Point, snap bool) Drawable {
	pi.rotation = accumulateRotation(pi.rotation, pi.Frame.Mid(), from, to, snap)
	return pi
}
