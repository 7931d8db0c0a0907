package drawable

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/gbabichev/screensnip/internal/geom"
)

const eps = 1e-6

var testStyle = Style{Stroke: color.RGBA{255, 0, 0, 255}, StrokeWidth: 2}

func rectsClose(t *testing.T, got, want geom.Rect) {
	t.Helper()
	if math.Abs(got.X-want.X) > eps || math.Abs(got.Y-want.Y) > eps ||
		math.Abs(got.W-want.W) > eps || math.Abs(got.H-want.H) > eps {
		t.Fatalf("rect = %+v, want %+v", got, want)
	}
}

func TestLineHitTest(t *testing.T) {
	l := NewLine(geom.Pt(0, 0), geom.Pt(100, 0), testStyle)
	if !l.HitTest(geom.Pt(50, 0)) {
		t.Fatalf("midpoint must always hit")
	}
	if !l.HitTest(geom.Pt(50, 7)) {
		t.Fatalf("point within band must hit")
	}
	if l.HitTest(geom.Pt(50, 20)) {
		t.Fatalf("point outside band must miss")
	}
	if l.HitTest(geom.Pt(130, 0)) {
		t.Fatalf("point past endpoint must miss")
	}
}

func TestLineBandTracksWidth(t *testing.T) {
	wide := NewLine(geom.Pt(0, 0), geom.Pt(100, 0), Style{Stroke: testStyle.Stroke, StrokeWidth: 10})
	if !wide.HitTest(geom.Pt(50, 14)) {
		t.Fatalf("wide line band should cover width+slop")
	}
}

func TestLineHandles(t *testing.T) {
	l := NewLine(geom.Pt(10, 10), geom.Pt(90, 40), testStyle)
	if h := l.HandleHitTest(geom.Pt(11, 9)); h != HandleLineStart {
		t.Fatalf("start handle = %v", h)
	}
	if h := l.HandleHitTest(geom.Pt(89, 41)); h != HandleLineEnd {
		t.Fatalf("end handle = %v", h)
	}
	if h := l.HandleHitTest(geom.Pt(50, 25)); h != HandleNone {
		t.Fatalf("segment body is not a handle, got %v", h)
	}
	moved, ok := l.Resizing(HandleLineEnd, geom.Pt(200, 200), false)
	if !ok {
		t.Fatalf("endpoint drag rejected")
	}
	if got := moved.(Line).End; got != geom.Pt(200, 200) {
		t.Fatalf("end = %v", got)
	}
	if moved.ID() != l.ID() {
		t.Fatalf("resize must preserve identity")
	}
}

func TestRectBorderBandHitTest(t *testing.T) {
	r := NewRect(geom.XYWH(10, 10, 100, 50), testStyle)
	if r.HitTest(geom.Pt(60, 35)) {
		t.Fatalf("interior must be click-through")
	}
	if !r.HitTest(geom.Pt(60, 10)) {
		t.Fatalf("top edge must hit")
	}
	if !r.HitTest(geom.Pt(110, 35)) {
		t.Fatalf("right edge must hit")
	}
	if r.HitTest(geom.Pt(200, 200)) {
		t.Fatalf("far point must miss")
	}
}

func TestRectHitTestRotated(t *testing.T) {
	r := NewRect(geom.XYWH(-50, -25, 100, 50), testStyle)
	quarter := r.Rotating(geom.Pt(1, 0), geom.Pt(0, 1), false).(Rect)
	// After a 90 degree turn the long edge lies along the Y axis.
	if !quarter.HitTest(geom.Pt(25, 0)) {
		t.Fatalf("rotated edge must hit")
	}
	if quarter.HitTest(geom.Pt(45, 0)) {
		t.Fatalf("point beyond rotated edge must miss")
	}
}

func TestOvalFilledHitTest(t *testing.T) {
	o := NewOval(geom.XYWH(0, 0, 100, 50), testStyle)
	if !o.HitTest(geom.Pt(50, 25)) {
		t.Fatalf("centroid must always hit")
	}
	if !o.HitTest(geom.Pt(95, 25)) {
		t.Fatalf("point inside ellipse must hit")
	}
	if o.HitTest(geom.Pt(95, 45)) {
		t.Fatalf("bounding-box corner is outside the ellipse")
	}
}

func TestHighlightAndBadgeCentroidHit(t *testing.T) {
	hl := NewHighlight(geom.XYWH(0, 0, 40, 30), testStyle)
	if !hl.HitTest(geom.Pt(20, 15)) {
		t.Fatalf("highlight centroid must hit")
	}
	b := NewBadge(geom.XYWH(0, 0, 24, 24), 1, testStyle)
	if !b.HitTest(b.Frame.Mid()) {
		t.Fatalf("badge centroid must hit")
	}
	if !b.HitTest(geom.Pt(26, 12)) {
		t.Fatalf("circumscribed circle edge must hit")
	}
	if b.HitTest(geom.Pt(40, 40)) {
		t.Fatalf("point outside circle must miss")
	}
}

func TestHighlightTranslucentFill(t *testing.T) {
	hl := NewHighlight(geom.XYWH(0, 0, 10, 10), Style{Stroke: color.RGBA{255, 255, 0, 255}})
	if hl.Color.A == 255 {
		t.Fatalf("highlight fill must not be opaque")
	}
}

func TestCreationThenCornerResizeScenario(t *testing.T) {
	// Drag from (10,10) to (110,60) with the rect tool.
	r := NewRect(geom.FromPoints(geom.Pt(10, 10), geom.Pt(110, 60)), testStyle)
	rectsClose(t, r.Frame, geom.XYWH(10, 10, 100, 50))
	// Then drag the bottom-right handle to (210,160).
	resized, ok := r.Resizing(HandleBottomRight, geom.Pt(210, 160), false)
	if !ok {
		t.Fatalf("resize rejected")
	}
	rectsClose(t, resized.(Rect).Frame, geom.XYWH(10, 10, 200, 150))
}

func TestResizeInverse(t *testing.T) {
	shapes := []Drawable{
		NewRect(geom.XYWH(20, 30, 80, 60), testStyle),
		NewOval(geom.XYWH(20, 30, 80, 60), testStyle),
		NewPastedImage(geom.XYWH(20, 30, 80, 60), image.NewRGBA(image.Rect(0, 0, 40, 30))),
	}
	for _, s := range shapes {
		orig := geom.XYWH(20, 30, 80, 60)
		corner := geom.Pt(100, 90) // bottom-right of orig
		stretched, ok := s.Resizing(HandleBottomRight, geom.Pt(150, 140), false)
		if !ok {
			t.Fatalf("%T: stretch rejected", s)
		}
		restored, ok := stretched.Resizing(HandleBottomRight, corner, false)
		if !ok {
			t.Fatalf("%T: restore rejected", s)
		}
		var frame geom.Rect
		switch v := restored.(type) {
		case Rect:
			frame = v.Frame
		case Oval:
			frame = v.Frame
		case PastedImage:
			frame = v.Frame
		}
		rectsClose(t, frame, orig)
	}
}

func TestResizeKeepsOppositeCornerUnderRotation(t *testing.T) {
	r := NewRect(geom.XYWH(-40, -20, 80, 40), testStyle)
	rotated := r.Rotating(geom.Pt(1, 0), geom.Pt(math.Cos(0.5), math.Sin(0.5)), false).(Rect)
	// World position of the top-left corner before the resize.
	fixedBefore := geom.RotateAbout(geom.Pt(rotated.Frame.X, rotated.Frame.Y), rotated.Frame.Mid(), rotated.Rotation())
	resized, ok := rotated.Resizing(HandleBottomRight, geom.Pt(90, 70), false)
	if !ok {
		t.Fatalf("rotated resize rejected")
	}
	after := resized.(Rect)
	fixedAfter := geom.RotateAbout(geom.Pt(after.Frame.X, after.Frame.Y), after.Frame.Mid(), after.Rotation())
	if fixedBefore.Dist(fixedAfter) > eps {
		t.Fatalf("opposite corner moved: %v -> %v", fixedBefore, fixedAfter)
	}
}

func TestResizeBelowFloorRejected(t *testing.T) {
	r := NewRect(geom.XYWH(10, 10, 100, 50), testStyle)
	got, ok := r.Resizing(HandleBottomRight, geom.Pt(14, 12), false)
	if ok {
		t.Fatalf("sub-minimum resize must be rejected")
	}
	rectsClose(t, got.(Rect).Frame, geom.XYWH(10, 10, 100, 50))
}

func TestRotationAccumulatesSignedDeltas(t *testing.T) {
	target := 1.2
	steps := 24
	r := NewRect(geom.XYWH(-40, -20, 80, 40), testStyle)
	many := Drawable(r)
	prev := geom.Pt(100, 0)
	for i := 1; i <= steps; i++ {
		angle := target * float64(i) / float64(steps)
		next := geom.Pt(100*math.Cos(angle), 100*math.Sin(angle))
		many = many.(Rotatable).Rotating(prev, next, false)
		prev = next
	}
	single := r.Rotating(geom.Pt(100, 0), geom.Pt(100*math.Cos(target), 100*math.Sin(target)), false)
	if math.Abs(many.(Rotatable).Rotation()-single.(Rotatable).Rotation()) > 1e-9 {
		t.Fatalf("accumulated %v != single %v", many.(Rotatable).Rotation(), single.(Rotatable).Rotation())
	}
	if math.Abs(single.(Rotatable).Rotation()-target) > 1e-9 {
		t.Fatalf("rotation = %v, want %v", single.(Rotatable).Rotation(), target)
	}
}

func TestRotationSnaps(t *testing.T) {
	r := NewRect(geom.XYWH(-40, -20, 80, 40), testStyle)
	got := r.Rotating(geom.Pt(100, 0), geom.Pt(100*math.Cos(0.23), 100*math.Sin(0.23)), true)
	inc := 15 * math.Pi / 180
	rot := got.(Rotatable).Rotation()
	if math.Abs(rot-math.Round(rot/inc)*inc) > 1e-9 {
		t.Fatalf("rotation %v is not snapped", rot)
	}
}

func TestBadgeStaysSquare(t *testing.T) {
	b := NewBadge(geom.XYWH(0, 0, 30, 18), 4, testStyle)
	if math.Abs(b.Frame.W-b.Frame.H) > eps {
		t.Fatalf("badge frame not square: %+v", b.Frame)
	}
	resized, ok := b.Resizing(HandleBottomRight, geom.Pt(60, 40), false)
	if !ok {
		t.Fatalf("badge resize rejected")
	}
	f := resized.(Badge).Frame
	if math.Abs(f.W-f.H) > eps {
		t.Fatalf("badge frame not square after resize: %+v", f)
	}
}

func TestBadgeTextColorByLuminance(t *testing.T) {
	dark := NewBadge(geom.XYWH(0, 0, 20, 20), 1, Style{Stroke: color.RGBA{10, 10, 40, 255}})
	if dark.TextColor != (color.RGBA{255, 255, 255, 255}) {
		t.Fatalf("dark fill needs white text, got %v", dark.TextColor)
	}
	light := NewBadge(geom.XYWH(0, 0, 20, 20), 1, Style{Stroke: color.RGBA{250, 250, 100, 255}})
	if light.TextColor != (color.RGBA{0, 0, 0, 255}) {
		t.Fatalf("light fill needs black text, got %v", light.TextColor)
	}
}

func TestPastedImageAspectLock(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 200, 100)) // aspect 2.0
	pi := NewPastedImage(geom.XYWH(0, 0, 200, 100), src)
	resized, ok := pi.Resizing(HandleBottomRight, geom.Pt(120, 100), true)
	if !ok {
		t.Fatalf("aspect-locked resize rejected")
	}
	f := resized.(PastedImage).Frame
	if math.Abs(f.W/f.H-2.0) > eps {
		t.Fatalf("aspect not preserved: %+v", f)
	}
}

func TestPastedImageUnlockedResizeDistorts(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 200, 100))
	pi := NewPastedImage(geom.XYWH(0, 0, 200, 100), src)
	resized, ok := pi.Resizing(HandleBottomRight, geom.Pt(120, 100), false)
	if !ok {
		t.Fatalf("resize rejected")
	}
	rectsClose(t, resized.(PastedImage).Frame, geom.XYWH(0, 0, 120, 100))
}

func TestHandleHitTestCornersAndRotateGrip(t *testing.T) {
	r := NewRect(geom.XYWH(10, 10, 100, 50), testStyle)
	cases := []struct {
		p    geom.Point
		want Handle
	}{
		{geom.Pt(10, 10), HandleTopLeft},
		{geom.Pt(110, 10), HandleTopRight},
		{geom.Pt(110, 60), HandleBottomRight},
		{geom.Pt(10, 60), HandleBottomLeft},
		{geom.Pt(60, -10), HandleRotate},
		{geom.Pt(60, 35), HandleNone},
	}
	for _, tc := range cases {
		if got := r.HandleHitTest(tc.p); got != tc.want {
			t.Fatalf("handle at %v = %v, want %v", tc.p, got, tc.want)
		}
	}
	// Ovals expose corners but never a rotate grip.
	o := NewOval(geom.XYWH(10, 10, 100, 50), testStyle)
	if got := o.HandleHitTest(geom.Pt(60, -10)); got != HandleNone {
		t.Fatalf("oval rotate grip = %v", got)
	}
}

func TestMovedPreservesIdentity(t *testing.T) {
	shapes := []Drawable{
		NewLine(geom.Pt(0, 0), geom.Pt(10, 10), testStyle),
		NewRect(geom.XYWH(0, 0, 20, 20), testStyle),
		NewOval(geom.XYWH(0, 0, 20, 20), testStyle),
		NewText(geom.XYWH(0, 0, 40, 20), "hi", testStyle),
		NewBadge(geom.XYWH(0, 0, 20, 20), 7, testStyle),
		NewHighlight(geom.XYWH(0, 0, 20, 20), testStyle),
		NewPastedImage(geom.XYWH(0, 0, 20, 20), image.NewRGBA(image.Rect(0, 0, 4, 4))),
	}
	for _, s := range shapes {
		moved := s.Moved(geom.Pt(5, 5))
		if moved.ID() != s.ID() {
			t.Fatalf("%T: Moved changed identity", s)
		}
		if moved.Bounds() == s.Bounds() {
			t.Fatalf("%T: Moved did not translate bounds", s)
		}
	}
}

func TestUniqueIDs(t *testing.T) {
	a := NewRect(geom.XYWH(0, 0, 10, 10), testStyle)
	b := NewRect(geom.XYWH(0, 0, 10, 10), testStyle)
	if a.ID() == b.ID() {
		t.Fatalf("ids must be unique")
	}
	if a.ID() == "" {
		t.Fatalf("id must not be empty")
	}
}
