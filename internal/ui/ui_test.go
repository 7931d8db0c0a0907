package ui

import (
	"image"
	"image/color"
	"testing"

	"github.com/gbabichev/screensnip/internal/canvas"
	"github.com/gbabichev/screensnip/internal/drawable"
	"github.com/gbabichev/screensnip/internal/editor"
	"github.com/gbabichev/screensnip/internal/geom"
)

func TestFitRectPreservesAspect(t *testing.T) {
	cases := []struct {
		w, h, winW, winH int
		want             image.Rectangle
	}{
		{200, 100, 400, 400, image.Rect(0, 100, 400, 300)},
		{100, 200, 400, 400, image.Rect(100, 0, 300, 400)},
		{400, 400, 200, 200, image.Rect(0, 0, 200, 200)},
	}
	for _, tc := range cases {
		got := fitRect(tc.w, tc.h, tc.winW, tc.winH)
		if got != tc.want {
			t.Fatalf("fitRect(%d,%d,%d,%d) = %v, want %v", tc.w, tc.h, tc.winW, tc.winH, got, tc.want)
		}
	}
}

func TestResizePinsAuthoringSpace(t *testing.T) {
	cv := canvas.New(image.NewRGBA(image.Rect(0, 0, 200, 100)))
	v := NewViewer(editor.New(cv, drawable.Style{}))

	v.resize(400, 200)
	if got := cv.AuthoringSize(); got != geom.Sz(400, 200) {
		t.Fatalf("authoring size %v", got)
	}
	// A later window resize changes the viewport but not the document.
	v.resize(800, 400)
	if got := cv.AuthoringSize(); got != geom.Sz(400, 200) {
		t.Fatalf("authoring size drifted to %v", got)
	}
	if v.view.Display != geom.Sz(800, 400) {
		t.Fatalf("display size %v", v.view.Display)
	}
}

func TestToAuthoringAccountsForFitOffset(t *testing.T) {
	cv := canvas.New(image.NewRGBA(image.Rect(0, 0, 200, 100)))
	v := NewViewer(editor.New(cv, drawable.Style{}))

	// 400x400 window around a 2:1 image: fit is (0,100)-(400,300).
	v.resize(400, 400)
	got := v.toAuthoring(200, 200)
	if got != geom.Pt(200, 100) {
		t.Fatalf("center maps to %v", got)
	}
	if p := v.toAuthoring(0, 100); p != geom.Pt(0, 0) {
		t.Fatalf("fit origin maps to %v", p)
	}
}

func TestDashedRectStaysInsideBounds(t *testing.T) {
	dst := image.NewRGBA(image.Rect(0, 0, 50, 50))
	drawDashedRect(dst, image.Rect(10, 10, 40, 40), 4, 2, color.White, color.Black)
	if dst.RGBAAt(10, 10).A == 0 {
		t.Fatal("marquee corner not drawn")
	}
	if dst.RGBAAt(5, 5).A != 0 {
		t.Fatal("marquee leaked outside its rect")
	}
}

func TestCropHandleRectsCentered(t *testing.T) {
	rects := cropHandleRects(image.Rect(10, 10, 110, 60))
	if len(rects) != 4 {
		t.Fatalf("got %d handles", len(rects))
	}
	if rects[0].Min != image.Pt(5, 5) || rects[2].Max != image.Pt(115, 65) {
		t.Fatalf("handle placement %v %v", rects[0], rects[2])
	}
}
