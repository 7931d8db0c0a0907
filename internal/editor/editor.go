// Package editor drives the interaction state machine: per-tool drag
// lifecycles that create or mutate drawables on a canvas, and the crop
// sub-machine that operates on the canvas itself. All coordinates arriving
// here are already in authoring space; the hosting view is responsible for
// the display-space conversion.
package editor

import (
	"image"

	"github.com/gbabichev/screensnip/internal/canvas"
	"github.com/gbabichev/screensnip/internal/drawable"
	"github.com/gbabichev/screensnip/internal/geom"
)

// Tool selects what a drag does.
type Tool int

const (
	ToolPointer Tool = iota
	ToolLine
	ToolArrow
	ToolRect
	ToolOval
	ToolText
	ToolBadge
	ToolHighlight
	ToolPaste
	ToolCrop
)

func (t Tool) String() string {
	switch t {
	case ToolPointer:
		return "pointer"
	case ToolLine:
		return "line"
	case ToolArrow:
		return "arrow"
	case ToolRect:
		return "rect"
	case ToolOval:
		return "oval"
	case ToolText:
		return "text"
	case ToolBadge:
		return "badge"
	case ToolHighlight:
		return "highlight"
	case ToolPaste:
		return "paste"
	case ToolCrop:
		return "crop"
	}
	return "unknown"
}

// dragThreshold is the authoring-space distance that turns a press into a
// drag rather than a click.
const dragThreshold = 5.0

// EventKind tags an editor event.
type EventKind int

const (
	// EventSelectionChanged fires when the selected drawable changes.
	EventSelectionChanged EventKind = iota
	// EventEditText asks the host to open a text editing affordance for
	// the drawable named in the event.
	EventEditText
	// EventCanvasReplaced fires when the base bitmap is swapped, after a
	// crop confirm or an external replacement.
	EventCanvasReplaced
	// EventCropChanged fires when the crop region drafts, moves, resizes,
	// commits, or is cancelled.
	EventCropChanged
)

// Event is the typed signal the editor emits instead of cross-component
// notifications. Hosts read them from Events.
type Event struct {
	Kind EventKind
	ID   string
}

// Editor owns the interaction state for one canvas.
type Editor struct {
	cv       *canvas.Canvas
	tool     Tool
	style    drawable.Style
	styleFor func(drawable.Kind) drawable.Style

	events chan Event

	// drag state
	pressed       bool
	pressPoint    geom.Point
	lastPoint     geom.Point
	dragging      bool
	snapshotTaken bool
	targetID      string
	handle        drawable.Handle

	// pending holds the image the paste tool will place on its next
	// click.
	pending image.Image

	crop cropState
}

// New creates an editor over the given canvas with the pointer tool
// active.
func New(cv *canvas.Canvas, style drawable.Style) *Editor {
	return &Editor{
		cv:     cv,
		tool:   ToolPointer,
		style:  style,
		events: make(chan Event, 16),
	}
}

// Canvas returns the canvas this editor drives.
func (e *Editor) Canvas() *canvas.Canvas { return e.cv }

// Events returns the editor's event stream. Sends never block; events are
// dropped if the host falls behind.
func (e *Editor) Events() <-chan Event { return e.events }

func (e *Editor) emit(kind EventKind, id string) {
	select {
	case e.events <- Event{Kind: kind, ID: id}:
	default:
	}
}

// Tool returns the active tool.
func (e *Editor) Tool() Tool { return e.tool }

// SetTool switches tools. Switching away from crop cancels any pending
// crop region.
func (e *Editor) SetTool(t Tool) {
	if e.tool == ToolCrop && t != ToolCrop {
		e.CancelCrop()
	}
	e.tool = t
	e.resetDrag()
}

// Style returns the style applied to newly created drawables.
func (e *Editor) Style() drawable.Style { return e.style }

// SetStyle changes the style applied to newly created drawables.
func (e *Editor) SetStyle(s drawable.Style) { e.style = s }

// SetStyleSource installs a per-kind style lookup, letting presets give
// highlights, badges, and text their own colors. A nil source falls back
// to the flat style set with SetStyle.
func (e *Editor) SetStyleSource(fn func(drawable.Kind) drawable.Style) { e.styleFor = fn }

func (e *Editor) styleForKind(k drawable.Kind) drawable.Style {
	if e.styleFor != nil {
		return e.styleFor(k)
	}
	return e.style
}

func (e *Editor) resetDrag() {
	e.pressed = false
	e.dragging = false
	e.snapshotTaken = false
	e.targetID = ""
	e.handle = drawable.HandleNone
}

// snapshotOnce pushes exactly one undo snapshot per continuous drag, at
// the first movement past threshold.
func (e *Editor) snapshotOnce() {
	if e.snapshotTaken {
		return
	}
	e.cv.PushUndoSnapshot()
	e.snapshotTaken = true
}

// MouseDown begins a gesture at p. clicks carries the host's click count
// for classifying zero-movement releases.
func (e *Editor) MouseDown(p geom.Point, clicks int, shift bool) {
	e.resetDrag()
	e.pressed = true
	e.pressPoint = p
	e.lastPoint = p

	if e.tool == ToolCrop {
		e.cropMouseDown(p)
		return
	}

	d, ok := e.cv.HitTopmost(p)
	if !ok {
		if e.tool == ToolPointer {
			if e.cv.SelectedID() != "" {
				e.cv.ClearSelection()
				e.emit(EventSelectionChanged, "")
			}
		}
		return
	}
	if e.cv.SelectedID() != d.ID() {
		e.cv.Select(d.ID())
		e.emit(EventSelectionChanged, d.ID())
	}
	e.targetID = d.ID()
	e.handle = d.HandleHitTest(p)
	e.cv.SetActiveHandle(e.handle)
}

// MouseDrag continues a gesture. shift locks aspect ratio on resize and
// snaps rotation to 15 degree increments.
func (e *Editor) MouseDrag(p geom.Point, shift bool) {
	if !e.pressed {
		return
	}
	if !e.dragging && p.Dist(e.pressPoint) < dragThreshold {
		return
	}
	if e.tool == ToolCrop {
		e.dragging = true
		e.cropMouseDrag(p)
		e.lastPoint = p
		return
	}
	if e.targetID == "" {
		// Creation tools draw a rubber band; nothing is appended until
		// release. Pointer with no hit is a no-op drag.
		if !e.dragging {
			e.dragging = true
			if e.tool != ToolPointer && e.tool != ToolPaste {
				e.snapshotOnce()
			}
		}
		e.lastPoint = p
		return
	}

	if !e.dragging {
		e.dragging = true
		e.snapshotOnce()
	}
	e.applyTransform(p, shift)
	e.lastPoint = p
}

func (e *Editor) applyTransform(p geom.Point, shift bool) {
	_, _ = e.cv.Mutate(e.targetID, func(d drawable.Drawable) drawable.Drawable {
		switch {
		case e.handle == drawable.HandleRotate:
			rot, ok := d.(drawable.Rotatable)
			if !ok {
				return d
			}
			return rot.Rotating(e.lastPoint, p, shift)
		case e.handle != drawable.HandleNone:
			next, ok := d.Resizing(e.handle, p, shift)
			if !ok {
				return d
			}
			return next
		default:
			return d.Moved(p.Sub(e.lastPoint))
		}
	})
}

// MouseUp ends a gesture at p.
func (e *Editor) MouseUp(p geom.Point, clicks int, shift bool) {
	if !e.pressed {
		return
	}
	defer e.resetDrag()

	if e.tool == ToolCrop {
		e.cropMouseUp(p)
		return
	}

	if !e.dragging {
		e.clickRelease(p, clicks)
		return
	}

	if e.targetID != "" {
		// Pointer transform already applied incrementally.
		return
	}
	if e.tool == ToolPointer {
		return
	}
	if e.tool == ToolPaste {
		e.placePendingAt(p)
		return
	}
	e.snapshotOnce()
	d := e.buildDrawable(e.pressPoint, p)
	if d == nil {
		return
	}
	e.cv.Append(d)
	e.emit(EventSelectionChanged, d.ID())
	if d.Kind() == drawable.KindText {
		e.emit(EventEditText, d.ID())
	}
}

// clickRelease classifies a zero-movement release by click count: a
// single click only selects (already done on press); a double click on a
// text drawable asks the host to start editing it.
func (e *Editor) clickRelease(p geom.Point, clicks int) {
	if e.tool == ToolPaste {
		e.placePendingAt(p)
		return
	}
	if clicks < 2 || e.targetID == "" {
		return
	}
	d, ok := e.cv.ByID(e.targetID)
	if ok && d.Kind() == drawable.KindText {
		e.emit(EventEditText, d.ID())
	}
}

func (e *Editor) buildDrawable(from, to geom.Point) drawable.Drawable {
	frame := geom.FromPoints(from, to)
	switch e.tool {
	case ToolLine:
		return drawable.NewLine(from, to, e.styleForKind(drawable.KindLine))
	case ToolArrow:
		st := e.styleForKind(drawable.KindLine)
		st.Arrow = true
		return drawable.NewLine(from, to, st)
	case ToolRect:
		return drawable.NewRect(frame, e.styleForKind(drawable.KindRect))
	case ToolOval:
		return drawable.NewOval(frame, e.styleForKind(drawable.KindOval))
	case ToolText:
		return drawable.NewText(frame, "", e.styleForKind(drawable.KindText))
	case ToolBadge:
		return drawable.NewBadge(frame, e.cv.NextBadgeValue(), e.styleForKind(drawable.KindBadge))
	case ToolHighlight:
		return drawable.NewHighlight(frame, e.styleForKind(drawable.KindHighlight))
	}
	return nil
}

// RubberBand reports the in-progress creation drag rectangle for the host
// to render, false when no creation drag is active.
func (e *Editor) RubberBand() (geom.Rect, bool) {
	if !e.dragging || e.targetID != "" || e.tool == ToolPointer || e.tool == ToolCrop {
		return geom.Rect{}, false
	}
	return geom.FromPoints(e.pressPoint, e.lastPoint), true
}

// DeleteSelection removes the selected drawable and pushes an undo
// snapshot.
func (e *Editor) DeleteSelection() {
	id := e.cv.SelectedID()
	if id == "" {
		return
	}
	e.cv.PushUndoSnapshot()
	if err := e.cv.Delete(id); err != nil {
		return
	}
	e.emit(EventSelectionChanged, "")
}

// ArmPaste holds src for the paste tool, which places it centered on the
// next click.
func (e *Editor) ArmPaste(src image.Image) {
	e.pending = src
	e.SetTool(ToolPaste)
}

func (e *Editor) placePendingAt(p geom.Point) {
	if e.pending == nil {
		return
	}
	frame := e.pasteFrame(e.pending)
	frame = geom.XYWH(p.X-frame.W/2, p.Y-frame.H/2, frame.W, frame.H)
	e.cv.PushUndoSnapshot()
	d := drawable.NewPastedImage(frame, e.pending)
	e.cv.Append(d)
	e.pending = nil
	e.tool = ToolPointer
	e.emit(EventSelectionChanged, d.ID())
}

// pasteFrame is the natural logical frame for src centered in the
// authoring space, shrunk to fit if necessary.
func (e *Editor) pasteFrame(src image.Image) geom.Rect {
	auth := e.cv.AuthoringSize()
	if auth.Empty() {
		auth = geom.FromImageRect(e.cv.Base().Bounds()).Size()
	}
	w := float64(src.Bounds().Dx())
	h := float64(src.Bounds().Dy())
	if w > auth.W {
		h *= auth.W / w
		w = auth.W
	}
	if h > auth.H {
		w *= auth.H / h
		h = auth.H
	}
	return geom.XYWH((auth.W-w)/2, (auth.H-h)/2, w, h)
}

// PasteImage places an image drawable at the center of the authoring
// space at its natural logical size, shrunk to fit if necessary.
func (e *Editor) PasteImage(src image.Image) drawable.Drawable {
	frame := e.pasteFrame(src)

	e.cv.PushUndoSnapshot()
	d := drawable.NewPastedImage(frame, src)
	e.cv.Append(d)
	e.emit(EventSelectionChanged, d.ID())
	return d
}

// SetTextValue rewrites the string of a text drawable, pushing an undo
// snapshot when the value actually changes.
func (e *Editor) SetTextValue(id, value string) error {
	d, ok := e.cv.ByID(id)
	if !ok {
		return canvas.ErrNotFound
	}
	txt, ok := d.(drawable.Text)
	if !ok || txt.Value == value {
		return nil
	}
	e.cv.PushUndoSnapshot()
	_, err := e.cv.Mutate(id, func(d drawable.Drawable) drawable.Drawable {
		t, ok := d.(drawable.Text)
		if !ok {
			return d
		}
		return t.WithValue(value)
	})
	return err
}

// Undo pops one undo step and notifies the host, since the base bitmap
// may have changed.
func (e *Editor) Undo() bool {
	if !e.cv.Undo() {
		return false
	}
	e.emit(EventCanvasReplaced, "")
	return true
}

// Redo reverses one undo step.
func (e *Editor) Redo() bool {
	if !e.cv.Redo() {
		return false
	}
	e.emit(EventCanvasReplaced, "")
	return true
}
