// Package canvas owns the annotation document: the base bitmap, the z-ordered
// drawable list, the fixed authoring space, and the snapshot stacks that back
// undo/redo. All mutation happens on the caller's goroutine; the canvas has
// no locking of its own.
package canvas

import (
	"errors"
	"image"

	"github.com/gbabichev/screensnip/internal/drawable"
	"github.com/gbabichev/screensnip/internal/geom"
	"github.com/gbabichev/screensnip/internal/raster"
)

var (
	// ErrNotFound reports a mutation against an id that is not on the canvas.
	ErrNotFound = errors.New("drawable not found")
	// ErrDegenerateCrop reports a crop rect that maps to less than one pixel.
	ErrDegenerateCrop = errors.New("crop region too small")
)

// Snapshot is one unit of undo/redo: the base bitmap reference plus a copy
// of the drawable list. Drawables are immutable values, so copying the slice
// is a deep enough copy.
type Snapshot struct {
	base      *image.RGBA
	drawables []drawable.Drawable
	authoring geom.Size
	nextBadge int
}

// Canvas is the annotation document.
type Canvas struct {
	base      *image.RGBA
	drawables []drawable.Drawable
	authoring geom.Size
	nextBadge int

	selectedID   string
	activeHandle drawable.Handle

	undo []Snapshot
	redo []Snapshot
}

// New creates a canvas over the given base bitmap.
func New(base *image.RGBA) *Canvas {
	return &Canvas{base: base, nextBadge: 1}
}

// Base returns the current base bitmap.
func (c *Canvas) Base() *image.RGBA { return c.base }

// Drawables returns the z-ordered drawable list; index order is paint order,
// so later entries sit on top. The returned slice is a copy.
func (c *Canvas) Drawables() []drawable.Drawable {
	out := make([]drawable.Drawable, len(c.drawables))
	copy(out, c.drawables)
	return out
}

// Len returns the number of drawables on the canvas.
func (c *Canvas) Len() int { return len(c.drawables) }

// EstablishAuthoringSize fixes the authoring space from the first fitted
// viewport size. Once set it does not change while objects exist; it resets
// only when the drawable list is cleared by a crop or a base replacement.
func (c *Canvas) EstablishAuthoringSize(s geom.Size) {
	if !c.authoring.Empty() {
		return
	}
	if s.Empty() {
		return
	}
	c.authoring = s
}

// AuthoringSize returns the fixed authoring-space size, zero until
// established.
func (c *Canvas) AuthoringSize() geom.Size { return c.authoring }

// Converter maps the authoring space onto the base bitmap's pixels.
func (c *Canvas) Converter() geom.Converter {
	auth := c.authoring
	imgSize := geom.FromImageRect(c.base.Bounds()).Size()
	if auth.Empty() {
		auth = imgSize
	}
	return geom.Converter{Authoring: auth, Image: imgSize}
}

// NextBadgeValue hands out the monotonically increasing badge counter.
func (c *Canvas) NextBadgeValue() int {
	v := c.nextBadge
	c.nextBadge++
	return v
}

// Append adds d on top of the z-order and selects it.
func (c *Canvas) Append(d drawable.Drawable) {
	c.drawables = append(c.drawables, d)
	c.selectedID = d.ID()
	c.activeHandle = drawable.HandleNone
}

// ByID looks up a drawable.
func (c *Canvas) ByID(id string) (drawable.Drawable, bool) {
	for _, d := range c.drawables {
		if d.ID() == id {
			return d, true
		}
	}
	return nil, false
}

// Mutate replaces the drawable with the given id by op's result. The op
// receives the current value; returning it unchanged is a no-op.
func (c *Canvas) Mutate(id string, op func(drawable.Drawable) drawable.Drawable) (drawable.Drawable, error) {
	for i, d := range c.drawables {
		if d.ID() == id {
			next := op(d)
			if next == nil || next.ID() != id {
				return d, nil
			}
			c.drawables[i] = next
			return next, nil
		}
	}
	return nil, ErrNotFound
}

// Delete removes the drawable with the given id, clearing the selection if
// it pointed at it.
func (c *Canvas) Delete(id string) error {
	for i, d := range c.drawables {
		if d.ID() == id {
			c.drawables = append(c.drawables[:i], c.drawables[i+1:]...)
			if c.selectedID == id {
				c.selectedID = ""
				c.activeHandle = drawable.HandleNone
			}
			return nil
		}
	}
	return ErrNotFound
}

// HitTopmost hit-tests existing drawables top-to-bottom in z-order and
// returns the first hit, preferring handle hits on the selected drawable.
func (c *Canvas) HitTopmost(p geom.Point) (drawable.Drawable, bool) {
	for i := len(c.drawables) - 1; i >= 0; i-- {
		d := c.drawables[i]
		if d.HitTest(p) || d.HandleHitTest(p) != drawable.HandleNone {
			return d, true
		}
	}
	return nil, false
}

// Select marks the drawable with the given id as selected.
func (c *Canvas) Select(id string) {
	c.selectedID = id
	c.activeHandle = drawable.HandleNone
}

// ClearSelection drops the selection and active handle.
func (c *Canvas) ClearSelection() {
	c.selectedID = ""
	c.activeHandle = drawable.HandleNone
}

// Selected returns the selected drawable, if any.
func (c *Canvas) Selected() (drawable.Drawable, bool) {
	if c.selectedID == "" {
		return nil, false
	}
	return c.ByID(c.selectedID)
}

// SelectedID returns the selected drawable's id, empty when nothing is
// selected.
func (c *Canvas) SelectedID() string { return c.selectedID }

// SetActiveHandle records which handle of the selection a drag engages.
func (c *Canvas) SetActiveHandle(h drawable.Handle) { c.activeHandle = h }

// ActiveHandle returns the engaged handle.
func (c *Canvas) ActiveHandle() drawable.Handle { return c.activeHandle }

func (c *Canvas) snapshot() Snapshot {
	list := make([]drawable.Drawable, len(c.drawables))
	copy(list, c.drawables)
	return Snapshot{base: c.base, drawables: list, authoring: c.authoring, nextBadge: c.nextBadge}
}

func (c *Canvas) restore(s Snapshot) {
	c.base = s.base
	c.drawables = s.drawables
	c.authoring = s.authoring
	c.nextBadge = s.nextBadge
	if _, ok := c.ByID(c.selectedID); !ok {
		c.ClearSelection()
	}
}

// PushUndoSnapshot records the current state as an undo step and clears the
// redo stack, the standard linear-history invariant.
func (c *Canvas) PushUndoSnapshot() {
	c.undo = append(c.undo, c.snapshot())
	c.redo = c.redo[:0]
}

// Undo restores the most recent snapshot. It reports false when the undo
// stack is empty.
func (c *Canvas) Undo() bool {
	if len(c.undo) == 0 {
		return false
	}
	c.redo = append(c.redo, c.snapshot())
	last := c.undo[len(c.undo)-1]
	c.undo = c.undo[:len(c.undo)-1]
	c.restore(last)
	return true
}

// Redo reverses the most recent undo. It reports false when the redo stack
// is empty.
func (c *Canvas) Redo() bool {
	if len(c.redo) == 0 {
		return false
	}
	c.undo = append(c.undo, c.snapshot())
	last := c.redo[len(c.redo)-1]
	c.redo = c.redo[:len(c.redo)-1]
	c.restore(last)
	return true
}

// CanUndo reports whether an undo step is available.
func (c *Canvas) CanUndo() bool { return len(c.undo) > 0 }

// CanRedo reports whether a redo step is available.
func (c *Canvas) CanRedo() bool { return len(c.redo) > 0 }

// Flatten merges all drawables into a copy of the base bitmap. The canvas
// itself is not modified.
func (c *Canvas) Flatten() *image.RGBA {
	return raster.Flatten(c.base, c.drawables, c.Converter())
}

// CommitCrop flattens the canvas, crops to the authoring-space rect mapped
// into pixels, and replaces the document with the result. All drawables are
// discarded — their authoring space is invalidated by the crop — and the
// authoring size resets so the next viewport fit re-establishes it.
func (c *Canvas) CommitCrop(r geom.Rect) error {
	pixel := c.Converter().AuthoringRectToImage(r).ImageRect()
	pixel = pixel.Intersect(c.base.Bounds())
	if pixel.Dx() <= 1 || pixel.Dy() <= 1 {
		return ErrDegenerateCrop
	}
	flat := c.Flatten()
	c.base = raster.Crop(flat, pixel)
	c.clearObjects()
	return nil
}

// Replace swaps in a new base bitmap, discarding all drawables and the
// authoring space. Undo snapshots taken before the replacement still restore
// the previous document.
func (c *Canvas) Replace(base *image.RGBA) {
	c.base = base
	c.clearObjects()
}

func (c *Canvas) clearObjects() {
	c.drawables = nil
	c.authoring = geom.Size{}
	c.nextBadge = 1
	c.ClearSelection()
}
