package editor

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/gbabichev/screensnip/internal/canvas"
	"github.com/gbabichev/screensnip/internal/drawable"
	"github.com/gbabichev/screensnip/internal/geom"
)

func newTestEditor(w, h int) *Editor {
	base := image.NewRGBA(image.Rect(0, 0, w, h))
	cv := canvas.New(base)
	cv.EstablishAuthoringSize(geom.Sz(float64(w), float64(h)))
	return New(cv, drawable.Style{Stroke: color.RGBA{255, 0, 0, 255}, StrokeWidth: 2})
}

func drainEvents(e *Editor) []Event {
	var out []Event
	for {
		select {
		case ev := <-e.Events():
			out = append(out, ev)
		default:
			return out
		}
	}
}

func hasEvent(events []Event, kind EventKind) bool {
	for _, ev := range events {
		if ev.Kind == kind {
			return true
		}
	}
	return false
}

func TestRectCreationThenHandleResize(t *testing.T) {
	e := newTestEditor(400, 300)
	e.SetTool(ToolRect)
	e.MouseDown(geom.Pt(10, 10), 1, false)
	e.MouseDrag(geom.Pt(60, 35), false)
	e.MouseDrag(geom.Pt(110, 60), false)
	e.MouseUp(geom.Pt(110, 60), 1, false)

	if e.Canvas().Len() != 1 {
		t.Fatalf("creation drag should append one drawable, got %d", e.Canvas().Len())
	}
	d, _ := e.Canvas().Selected()
	if got := d.Bounds(); got != geom.XYWH(10, 10, 100, 50) {
		t.Fatalf("created rect = %v", got)
	}

	e.SetTool(ToolPointer)
	e.MouseDown(geom.Pt(110, 60), 1, false)
	if e.Canvas().ActiveHandle() != drawable.HandleBottomRight {
		t.Fatalf("expected bottom-right handle, got %v", e.Canvas().ActiveHandle())
	}
	e.MouseDrag(geom.Pt(160, 110), false)
	e.MouseDrag(geom.Pt(210, 160), false)
	e.MouseUp(geom.Pt(210, 160), 1, false)

	d, _ = e.Canvas().Selected()
	if got := d.Bounds(); got != geom.XYWH(10, 10, 200, 150) {
		t.Fatalf("resized rect = %v", got)
	}
}

func TestCreationUndoRemovesDrawable(t *testing.T) {
	e := newTestEditor(200, 200)
	e.SetTool(ToolOval)
	e.MouseDown(geom.Pt(20, 20), 1, false)
	e.MouseDrag(geom.Pt(80, 80), false)
	e.MouseUp(geom.Pt(80, 80), 1, false)
	if e.Canvas().Len() != 1 {
		t.Fatal("oval not created")
	}
	if !e.Undo() {
		t.Fatal("undo failed")
	}
	if e.Canvas().Len() != 0 {
		t.Fatal("undo did not remove the created drawable")
	}
}

func TestClickBelowThresholdIsNotADrag(t *testing.T) {
	e := newTestEditor(200, 200)
	r := drawable.NewRect(geom.XYWH(50, 50, 60, 40), e.Style())
	e.Canvas().Append(r)

	e.MouseDown(geom.Pt(80, 50), 1, false)
	e.MouseDrag(geom.Pt(82, 52), false)
	e.MouseUp(geom.Pt(82, 52), 1, false)

	d, _ := e.Canvas().ByID(r.ID())
	if d.Bounds() != geom.XYWH(50, 50, 60, 40) {
		t.Fatalf("sub-threshold movement mutated the drawable: %v", d.Bounds())
	}
	if e.Canvas().CanUndo() {
		t.Fatal("sub-threshold movement pushed a snapshot")
	}
}

func TestOneSnapshotPerContinuousDrag(t *testing.T) {
	e := newTestEditor(300, 300)
	r := drawable.NewRect(geom.XYWH(50, 50, 60, 40), e.Style())
	e.Canvas().Append(r)

	e.MouseDown(geom.Pt(80, 50), 1, false)
	e.MouseDrag(geom.Pt(100, 70), false)
	e.MouseDrag(geom.Pt(120, 90), false)
	e.MouseDrag(geom.Pt(140, 110), false)
	e.MouseUp(geom.Pt(140, 110), 1, false)

	d, _ := e.Canvas().ByID(r.ID())
	if d.Bounds().X != 110 || d.Bounds().Y != 110 {
		t.Fatalf("move drag not applied: %v", d.Bounds())
	}
	if !e.Undo() {
		t.Fatal("undo failed")
	}
	d, _ = e.Canvas().ByID(r.ID())
	if d.Bounds() != geom.XYWH(50, 50, 60, 40) {
		t.Fatalf("single undo should revert the whole drag, got %v", d.Bounds())
	}
	if e.Canvas().CanUndo() {
		t.Fatal("drag pushed more than one snapshot")
	}
}

func TestPointerClickOnEmptyClearsSelection(t *testing.T) {
	e := newTestEditor(200, 200)
	r := drawable.NewRect(geom.XYWH(50, 50, 40, 40), e.Style())
	e.Canvas().Append(r)
	drainEvents(e)

	e.MouseDown(geom.Pt(150, 150), 1, false)
	e.MouseUp(geom.Pt(150, 150), 1, false)
	if e.Canvas().SelectedID() != "" {
		t.Fatal("click on empty area should clear selection")
	}
	events := drainEvents(e)
	if !hasEvent(events, EventSelectionChanged) {
		t.Fatal("no selection event emitted")
	}
}

func TestDoubleClickTextRequestsEditing(t *testing.T) {
	e := newTestEditor(200, 200)
	txt := drawable.NewText(geom.XYWH(40, 40, 80, 30), "hello", drawable.Style{FontSize: 14, Stroke: color.RGBA{0, 0, 0, 255}})
	e.Canvas().Append(txt)
	drainEvents(e)

	e.MouseDown(geom.Pt(60, 50), 2, false)
	e.MouseUp(geom.Pt(60, 50), 2, false)
	events := drainEvents(e)
	found := false
	for _, ev := range events {
		if ev.Kind == EventEditText && ev.ID == txt.ID() {
			found = true
		}
	}
	if !found {
		t.Fatal("double click on text should request editing")
	}
}

func TestRotateGripDrag(t *testing.T) {
	e := newTestEditor(300, 300)
	r := drawable.NewRect(geom.XYWH(40, 40, 40, 40), e.Style())
	e.Canvas().Append(r)

	// Grip sits above the frame's top edge midpoint.
	e.MouseDown(geom.Pt(60, 20), 1, false)
	if e.Canvas().ActiveHandle() != drawable.HandleRotate {
		t.Fatalf("expected rotate grip, got %v", e.Canvas().ActiveHandle())
	}
	e.MouseDrag(geom.Pt(100, 60), false)
	e.MouseUp(geom.Pt(100, 60), 1, false)

	d, _ := e.Canvas().ByID(r.ID())
	rot, ok := d.(drawable.Rotatable)
	if !ok {
		t.Fatal("rect should be rotatable")
	}
	if got := rot.Rotation(); math.Abs(got-math.Pi/2) > 1e-9 {
		t.Fatalf("rotation = %v, want pi/2", got)
	}
}

func TestBadgeValuesIncrement(t *testing.T) {
	e := newTestEditor(300, 300)
	e.SetTool(ToolBadge)
	for i := 0; i < 2; i++ {
		x := float64(20 + i*60)
		e.MouseDown(geom.Pt(x, 20), 1, false)
		e.MouseDrag(geom.Pt(x+30, 50), false)
		e.MouseUp(geom.Pt(x+30, 50), 1, false)
	}
	list := e.Canvas().Drawables()
	if len(list) != 2 {
		t.Fatalf("want 2 badges, got %d", len(list))
	}
	first := list[0].(drawable.Badge)
	second := list[1].(drawable.Badge)
	if first.Value != 1 || second.Value != 2 {
		t.Fatalf("badge values %d, %d", first.Value, second.Value)
	}
}

func TestTextValueEditPushesSnapshot(t *testing.T) {
	e := newTestEditor(200, 200)
	txt := drawable.NewText(geom.XYWH(40, 40, 80, 30), "", drawable.Style{FontSize: 14})
	e.Canvas().Append(txt)

	if err := e.SetTextValue(txt.ID(), "note"); err != nil {
		t.Fatalf("set value: %v", err)
	}
	d, _ := e.Canvas().ByID(txt.ID())
	if d.(drawable.Text).Value != "note" {
		t.Fatal("value not applied")
	}
	e.Undo()
	d, _ = e.Canvas().ByID(txt.ID())
	if d.(drawable.Text).Value != "" {
		t.Fatal("undo did not revert the text edit")
	}
	if err := e.SetTextValue("missing", "x"); err != canvas.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteSelection(t *testing.T) {
	e := newTestEditor(200, 200)
	r := drawable.NewRect(geom.XYWH(50, 50, 40, 40), e.Style())
	e.Canvas().Append(r)

	e.DeleteSelection()
	if e.Canvas().Len() != 0 {
		t.Fatal("delete did not remove the selection")
	}
	e.Undo()
	if e.Canvas().Len() != 1 {
		t.Fatal("undo did not restore the deleted drawable")
	}
}

func TestPasteImageCenteredAndShrunk(t *testing.T) {
	e := newTestEditor(200, 100)
	src := image.NewRGBA(image.Rect(0, 0, 400, 100))
	d := e.PasteImage(src)

	b := d.Bounds()
	if b.W != 200 || b.H != 50 {
		t.Fatalf("paste should shrink to fit, got %v", b)
	}
	if b.Mid() != geom.Pt(100, 50) {
		t.Fatalf("paste should center, mid = %v", b.Mid())
	}
	if e.Canvas().SelectedID() != d.ID() {
		t.Fatal("pasted image should be selected")
	}
}

func TestCropDraftBelowMinimumDiscarded(t *testing.T) {
	e := newTestEditor(200, 200)
	e.SetTool(ToolCrop)
	e.MouseDown(geom.Pt(10, 10), 1, false)
	e.MouseDrag(geom.Pt(16, 13), false)
	e.MouseUp(geom.Pt(16, 13), 1, false)
	if e.CropPhase() != CropIdle {
		t.Fatalf("tiny draft should be discarded, phase = %v", e.CropPhase())
	}
}

func TestCropDraftCommitMoveResize(t *testing.T) {
	e := newTestEditor(200, 200)
	e.SetTool(ToolCrop)

	e.MouseDown(geom.Pt(20, 20), 1, false)
	e.MouseDrag(geom.Pt(120, 100), false)
	e.MouseUp(geom.Pt(120, 100), 1, false)
	if e.CropPhase() != CropCommitted {
		t.Fatalf("phase = %v", e.CropPhase())
	}
	r, _ := e.CropRegion()
	if r != geom.XYWH(20, 20, 100, 80) {
		t.Fatalf("committed region = %v", r)
	}

	// Drag from inside moves it.
	e.MouseDown(geom.Pt(70, 60), 1, false)
	e.MouseDrag(geom.Pt(90, 80), false)
	e.MouseUp(geom.Pt(90, 80), 1, false)
	r, _ = e.CropRegion()
	if r != geom.XYWH(40, 40, 100, 80) {
		t.Fatalf("moved region = %v", r)
	}

	// Drag on the bottom-right grip resizes with the opposite corner
	// fixed.
	e.MouseDown(geom.Pt(140, 120), 1, false)
	e.MouseDrag(geom.Pt(180, 160), false)
	e.MouseUp(geom.Pt(180, 160), 1, false)
	r, _ = e.CropRegion()
	if r != geom.XYWH(40, 40, 140, 120) {
		t.Fatalf("resized region = %v", r)
	}
}

func TestCropMoveClampsToAuthoringSpace(t *testing.T) {
	e := newTestEditor(200, 200)
	e.SetTool(ToolCrop)
	e.MouseDown(geom.Pt(100, 100), 1, false)
	e.MouseDrag(geom.Pt(180, 180), false)
	e.MouseUp(geom.Pt(180, 180), 1, false)

	e.MouseDown(geom.Pt(140, 140), 1, false)
	e.MouseDrag(geom.Pt(600, 600), false)
	e.MouseUp(geom.Pt(600, 600), 1, false)
	r, _ := e.CropRegion()
	if r.MaxX() > 200 || r.MaxY() > 200 || r.X < 0 || r.Y < 0 {
		t.Fatalf("region escaped the authoring space: %v", r)
	}
}

func TestConfirmCropDiscardsDrawables(t *testing.T) {
	e := newTestEditor(200, 200)
	e.Canvas().Append(drawable.NewRect(geom.XYWH(10, 10, 50, 50), e.Style()))

	e.SetTool(ToolCrop)
	e.MouseDown(geom.Pt(20, 20), 1, false)
	e.MouseDrag(geom.Pt(120, 100), false)
	e.MouseUp(geom.Pt(120, 100), 1, false)
	drainEvents(e)

	if err := e.ConfirmCrop(); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if got := e.Canvas().Base().Bounds(); got.Dx() != 100 || got.Dy() != 80 {
		t.Fatalf("cropped base %v", got)
	}
	if e.Canvas().Len() != 0 {
		t.Fatal("confirm should discard drawables")
	}
	if e.CropPhase() != CropIdle {
		t.Fatal("confirm should reset the crop machine")
	}
	events := drainEvents(e)
	if !hasEvent(events, EventCanvasReplaced) {
		t.Fatal("no canvas-replaced event")
	}

	if !e.Undo() {
		t.Fatal("undo after crop failed")
	}
	if got := e.Canvas().Base().Bounds(); got.Dx() != 200 {
		t.Fatalf("undo did not restore pre-crop base: %v", got)
	}
	if e.Canvas().Len() != 1 {
		t.Fatal("undo did not restore drawables")
	}
}

func TestCancelCropKeepsCanvas(t *testing.T) {
	e := newTestEditor(200, 200)
	e.SetTool(ToolCrop)
	e.MouseDown(geom.Pt(20, 20), 1, false)
	e.MouseDrag(geom.Pt(120, 100), false)
	e.MouseUp(geom.Pt(120, 100), 1, false)

	e.CancelCrop()
	if e.CropPhase() != CropIdle {
		t.Fatal("cancel did not reset the crop machine")
	}
	if got := e.Canvas().Base().Bounds(); got.Dx() != 200 {
		t.Fatalf("cancel mutated the canvas: %v", got)
	}
	if e.Canvas().CanUndo() {
		t.Fatal("cancel pushed a snapshot")
	}
}

func TestSwitchingAwayFromCropCancels(t *testing.T) {
	e := newTestEditor(200, 200)
	e.SetTool(ToolCrop)
	e.MouseDown(geom.Pt(20, 20), 1, false)
	e.MouseDrag(geom.Pt(120, 100), false)
	e.MouseUp(geom.Pt(120, 100), 1, false)

	e.SetTool(ToolPointer)
	if e.CropPhase() != CropIdle {
		t.Fatal("tool switch should cancel the crop region")
	}
}

func TestArrowToolCreatesArrowLine(t *testing.T) {
	e := newTestEditor(400, 300)
	e.SetTool(ToolArrow)
	e.MouseDown(geom.Pt(10, 10), 1, false)
	e.MouseDrag(geom.Pt(110, 60), false)
	e.MouseUp(geom.Pt(110, 60), 1, false)

	d, ok := e.Canvas().Selected()
	if !ok {
		t.Fatal("arrow drag appended nothing")
	}
	ln, ok := d.(drawable.Line)
	if !ok {
		t.Fatalf("expected a line, got %T", d)
	}
	if !ln.Arrow {
		t.Fatal("arrow flag not set")
	}
	if ln.Start != geom.Pt(10, 10) || ln.End != geom.Pt(110, 60) {
		t.Fatalf("endpoints = %v %v", ln.Start, ln.End)
	}
}

func TestPasteToolPlacesAtClick(t *testing.T) {
	e := newTestEditor(400, 300)
	src := image.NewRGBA(image.Rect(0, 0, 40, 20))
	e.ArmPaste(src)
	if e.Tool() != ToolPaste {
		t.Fatalf("ArmPaste left tool %v", e.Tool())
	}

	e.MouseDown(geom.Pt(100, 100), 1, false)
	e.MouseUp(geom.Pt(100, 100), 1, false)

	d, ok := e.Canvas().Selected()
	if !ok {
		t.Fatal("click placed nothing")
	}
	if got := d.Bounds(); got != geom.XYWH(80, 90, 40, 20) {
		t.Fatalf("placed frame = %v", got)
	}
	if e.Tool() != ToolPointer {
		t.Fatalf("paste should fall back to the pointer, got %v", e.Tool())
	}
	if !e.Canvas().CanUndo() {
		t.Fatal("paste did not push a snapshot")
	}

	// A second click with nothing pending is a no-op.
	e.SetTool(ToolPaste)
	e.MouseDown(geom.Pt(50, 50), 1, false)
	e.MouseUp(geom.Pt(50, 50), 1, false)
	if e.Canvas().Len() != 1 {
		t.Fatalf("unarmed paste appended, len = %d", e.Canvas().Len())
	}
}
