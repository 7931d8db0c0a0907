package editor

import (
	"github.com/gbabichev/screensnip/internal/canvas"
	"github.com/gbabichev/screensnip/internal/drawable"
	"github.com/gbabichev/screensnip/internal/geom"
)

// CropPhase names where the crop sub-machine is.
type CropPhase int

const (
	// CropIdle means no region has been drafted.
	CropIdle CropPhase = iota
	// CropDrafting means a new region is being rubber-banded.
	CropDrafting
	// CropCommitted means a region exists and can be moved, resized, or
	// confirmed.
	CropCommitted
)

// minCropSize is the authoring-space floor below which a drafted region
// is discarded on release.
const minCropSize = 8.0

// cropAction is the committed region's inner state during a drag.
type cropAction int

const (
	cropActionNone cropAction = iota
	cropActionMoving
	cropActionResizing
)

type cropState struct {
	phase  CropPhase
	region geom.Rect
	action cropAction
	handle drawable.Handle
}

// CropPhase reports the crop sub-machine phase.
func (e *Editor) CropPhase() CropPhase { return e.crop.phase }

// CropRegion returns the committed or drafting crop region, false when
// the sub-machine is idle.
func (e *Editor) CropRegion() (geom.Rect, bool) {
	if e.crop.phase == CropIdle {
		return geom.Rect{}, false
	}
	return e.crop.region, true
}

func (e *Editor) cropMouseDown(p geom.Point) {
	switch e.crop.phase {
	case CropIdle:
		e.crop.phase = CropDrafting
		e.crop.region = geom.FromPoints(p, p)
	case CropCommitted:
		if h := cropHandleAt(e.crop.region, p); h != drawable.HandleNone {
			e.crop.action = cropActionResizing
			e.crop.handle = h
			return
		}
		if e.crop.region.Contains(p) {
			e.crop.action = cropActionMoving
			return
		}
		// Outside the region: start drafting a replacement.
		e.crop.phase = CropDrafting
		e.crop.region = geom.FromPoints(p, p)
		e.crop.action = cropActionNone
		e.emit(EventCropChanged, "")
	}
}

func (e *Editor) cropMouseDrag(p geom.Point) {
	switch e.crop.phase {
	case CropDrafting:
		e.crop.region = geom.FromPoints(e.pressPoint, p)
		e.emit(EventCropChanged, "")
	case CropCommitted:
		switch e.crop.action {
		case cropActionMoving:
			e.crop.region = e.clampCrop(e.crop.region.Translate(p.Sub(e.lastPoint)))
			e.emit(EventCropChanged, "")
		case cropActionResizing:
			e.crop.region = e.clampCrop(resizeCropRegion(e.crop.region, e.crop.handle, p))
			e.emit(EventCropChanged, "")
		}
	}
}

func (e *Editor) cropMouseUp(p geom.Point) {
	switch e.crop.phase {
	case CropDrafting:
		r := geom.FromPoints(e.pressPoint, p)
		if r.W < minCropSize || r.H < minCropSize {
			e.crop = cropState{}
			e.emit(EventCropChanged, "")
			return
		}
		e.crop.phase = CropCommitted
		e.crop.region = e.clampCrop(r)
		e.emit(EventCropChanged, "")
	case CropCommitted:
		e.crop.action = cropActionNone
		e.crop.handle = drawable.HandleNone
	}
}

// clampCrop keeps the region inside the authoring space.
func (e *Editor) clampCrop(r geom.Rect) geom.Rect {
	auth := e.cv.AuthoringSize()
	if auth.Empty() {
		auth = geom.FromImageRect(e.cv.Base().Bounds()).Size()
	}
	if r.X < 0 {
		r.X = 0
	}
	if r.Y < 0 {
		r.Y = 0
	}
	if r.MaxX() > auth.W {
		r.X = auth.W - r.W
	}
	if r.MaxY() > auth.H {
		r.Y = auth.H - r.H
	}
	if r.X < 0 {
		r.X = 0
		r.W = auth.W
	}
	if r.Y < 0 {
		r.Y = 0
		r.H = auth.H
	}
	return r
}

// ConfirmCrop flattens the canvas, crops it to the committed region, and
// discards all drawables. No-op when no region is committed.
func (e *Editor) ConfirmCrop() error {
	if e.crop.phase != CropCommitted {
		return nil
	}
	region := e.crop.region
	pixel := e.cv.Converter().AuthoringRectToImage(region).ImageRect().Intersect(e.cv.Base().Bounds())
	if pixel.Dx() <= 1 || pixel.Dy() <= 1 {
		return canvas.ErrDegenerateCrop
	}
	e.cv.PushUndoSnapshot()
	if err := e.cv.CommitCrop(region); err != nil {
		return err
	}
	e.crop = cropState{}
	e.emit(EventCropChanged, "")
	e.emit(EventCanvasReplaced, "")
	return nil
}

// CancelCrop discards the draft or committed region without touching the
// canvas.
func (e *Editor) CancelCrop() {
	if e.crop.phase == CropIdle {
		return
	}
	e.crop = cropState{}
	e.emit(EventCropChanged, "")
}

// cropHandleAt checks the four corner grips of the committed region.
func cropHandleAt(r geom.Rect, p geom.Point) drawable.Handle {
	const grip = 8.0
	corners := []struct {
		h  drawable.Handle
		pt geom.Point
	}{
		{drawable.HandleTopLeft, geom.Pt(r.X, r.Y)},
		{drawable.HandleTopRight, geom.Pt(r.MaxX(), r.Y)},
		{drawable.HandleBottomRight, geom.Pt(r.MaxX(), r.MaxY())},
		{drawable.HandleBottomLeft, geom.Pt(r.X, r.MaxY())},
	}
	for _, c := range corners {
		if p.Dist(c.pt) <= grip {
			return c.h
		}
	}
	return drawable.HandleNone
}

// resizeCropRegion drags one corner while the opposite corner stays
// fixed. The region has no rotation, so this is plain corner arithmetic.
func resizeCropRegion(r geom.Rect, h drawable.Handle, to geom.Point) geom.Rect {
	var fixed geom.Point
	switch h {
	case drawable.HandleTopLeft:
		fixed = geom.Pt(r.MaxX(), r.MaxY())
	case drawable.HandleTopRight:
		fixed = geom.Pt(r.X, r.MaxY())
	case drawable.HandleBottomRight:
		fixed = geom.Pt(r.X, r.Y)
	case drawable.HandleBottomLeft:
		fixed = geom.Pt(r.MaxX(), r.Y)
	default:
		return r
	}
	next := geom.FromPoints(fixed, to)
	if next.W < minCropSize || next.H < minCropSize {
		return r
	}
	return next
}
