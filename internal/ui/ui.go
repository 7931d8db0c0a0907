// Package ui hosts the annotation editor in a shiny window. It owns
// the display-space viewport and converts window events into
// authoring-space editor calls; all document state lives in the canvas.
package ui

import (
	"image"
	"log"
	"time"

	"golang.org/x/exp/shiny/driver"
	"golang.org/x/exp/shiny/screen"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/lifecycle"
	"golang.org/x/mobile/event/mouse"
	"golang.org/x/mobile/event/paint"
	"golang.org/x/mobile/event/size"

	"github.com/gbabichev/screensnip/internal/editor"
	"github.com/gbabichev/screensnip/internal/geom"
)

// doubleClickWindow is the longest gap between presses still counted
// as a double click.
const doubleClickWindow = 400 * time.Millisecond

// Viewer presents one canvas for interactive annotation.
type Viewer struct {
	ed *editor.Editor

	onSave func(*image.RGBA) error
	onCopy func(*image.RGBA) error
	paste  func() (image.Image, error)

	winW, winH int
	fit        image.Rectangle
	view       geom.Viewport

	lastPress  time.Time
	clickCount int
	dragActive bool
	shiftDown  bool

	textTarget string
	textBuf    []rune
}

// Option configures a Viewer.
type Option func(*Viewer)

// WithOnSave installs the save callback invoked on Ctrl+S with the
// flattened image.
func WithOnSave(fn func(*image.RGBA) error) Option {
	return func(v *Viewer) { v.onSave = fn }
}

// WithOnCopy installs the clipboard callback invoked on Ctrl+C.
func WithOnCopy(fn func(*image.RGBA) error) Option {
	return func(v *Viewer) { v.onCopy = fn }
}

// WithPaste installs the clipboard image source used on Ctrl+V.
func WithPaste(fn func() (image.Image, error)) Option {
	return func(v *Viewer) { v.paste = fn }
}

// NewViewer creates a viewer over the given editor.
func NewViewer(ed *editor.Editor, opts ...Option) *Viewer {
	v := &Viewer{ed: ed}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Run opens the window and blocks until it closes.
func (v *Viewer) Run() { driver.Main(v.main) }

func (v *Viewer) main(s screen.Screen) {
	base := v.ed.Canvas().Base().Bounds()
	w, err := s.NewWindow(&screen.NewWindowOptions{
		Width:  clampInt(base.Dx(), 320, 1600),
		Height: clampInt(base.Dy(), 240, 1000),
		Title:  "ScreenSnip",
	})
	if err != nil {
		log.Printf("new window: %v", err)
		return
	}
	defer w.Release()

	// Editor events arrive on their own channel; forward them as paint
	// requests so the window reflects every state change.
	done := make(chan struct{})
	defer close(done)
	go func() {
		for {
			select {
			case ev := <-v.ed.Events():
				if ev.Kind == editor.EventEditText {
					v.textTarget = ev.ID
					v.textBuf = v.textBuf[:0]
				}
				w.Send(paint.Event{})
			case <-done:
				return
			}
		}
	}()

	for {
		switch e := w.NextEvent().(type) {
		case lifecycle.Event:
			if e.To == lifecycle.StageDead {
				return
			}
		case size.Event:
			v.resize(e.WidthPx, e.HeightPx)
		case paint.Event:
			v.paint(s, w)
		case mouse.Event:
			v.mouseEvent(e)
			w.Send(paint.Event{})
		case key.Event:
			if v.keyEvent(e) {
				return
			}
			w.Send(paint.Event{})
		case error:
			log.Printf("window event: %v", e)
		}
	}
}

// resize refits the canvas into the new window and pins the authoring
// space on the first fit.
func (v *Viewer) resize(w, h int) {
	if w <= 0 || h <= 0 {
		return
	}
	v.winW, v.winH = w, h
	cv := v.ed.Canvas()
	base := cv.Base().Bounds()
	v.fit = fitRect(base.Dx(), base.Dy(), w, h)
	display := geom.Sz(float64(v.fit.Dx()), float64(v.fit.Dy()))

	cv.EstablishAuthoringSize(display)
	auth := cv.AuthoringSize()
	if auth.Empty() {
		auth = display
	}
	v.view = geom.Viewport{Display: display, Authoring: auth}
}

// toAuthoring maps a window coordinate through the fitted image origin
// into authoring space.
func (v *Viewer) toAuthoring(x, y float32) geom.Point {
	p := geom.Pt(float64(x)-float64(v.fit.Min.X), float64(y)-float64(v.fit.Min.Y))
	return v.view.DisplayToAuthoring(p)
}

func (v *Viewer) mouseEvent(e mouse.Event) {
	v.shiftDown = e.Modifiers&key.ModShift != 0
	p := v.toAuthoring(e.X, e.Y)

	switch {
	case e.Button == mouse.ButtonLeft && e.Direction == mouse.DirPress:
		now := time.Now()
		if now.Sub(v.lastPress) <= doubleClickWindow {
			v.clickCount++
		} else {
			v.clickCount = 1
		}
		v.lastPress = now
		v.dragActive = true
		v.commitTextEntry()
		v.ed.MouseDown(p, v.clickCount, v.shiftDown)
	case e.Button == mouse.ButtonLeft && e.Direction == mouse.DirRelease:
		v.dragActive = false
		v.ed.MouseUp(p, v.clickCount, v.shiftDown)
	case e.Direction == mouse.DirNone && v.dragActive:
		v.ed.MouseDrag(p, v.shiftDown)
	}
}

// keyEvent handles shortcuts; it reports true when the window should
// close.
func (v *Viewer) keyEvent(e key.Event) bool {
	if e.Direction == key.DirRelease {
		return false
	}
	if v.textTarget != "" {
		return v.textEntryKey(e)
	}

	ctrl := e.Modifiers&key.ModControl != 0 || e.Modifiers&key.ModMeta != 0
	shift := e.Modifiers&key.ModShift != 0
	switch {
	case ctrl && e.Code == key.CodeZ && shift:
		v.ed.Redo()
	case ctrl && e.Code == key.CodeZ:
		v.ed.Undo()
	case ctrl && e.Code == key.CodeY:
		v.ed.Redo()
	case ctrl && e.Code == key.CodeS:
		v.save()
	case ctrl && e.Code == key.CodeC:
		v.copyToClipboard()
	case ctrl && e.Code == key.CodeV:
		v.pasteFromClipboard()
	case e.Code == key.CodeDeleteForward || e.Code == key.CodeDeleteBackspace:
		v.ed.DeleteSelection()
	case e.Code == key.CodeReturnEnter:
		if v.ed.Tool() == editor.ToolCrop {
			if err := v.ed.ConfirmCrop(); err != nil {
				log.Printf("crop: %v", err)
			}
		}
	case e.Code == key.CodeEscape:
		if v.ed.Tool() == editor.ToolCrop {
			v.ed.CancelCrop()
		} else {
			v.ed.Canvas().ClearSelection()
		}
	case e.Code == key.CodeQ && ctrl:
		return true
	default:
		v.toolKey(e.Code)
	}
	return false
}

func (v *Viewer) toolKey(code key.Code) {
	tools := map[key.Code]editor.Tool{
		key.CodeV: editor.ToolPointer,
		key.CodeL: editor.ToolLine,
		key.CodeA: editor.ToolArrow,
		key.CodeR: editor.ToolRect,
		key.CodeO: editor.ToolOval,
		key.CodeT: editor.ToolText,
		key.CodeB: editor.ToolBadge,
		key.CodeH: editor.ToolHighlight,
		key.CodeC: editor.ToolCrop,
	}
	if tool, ok := tools[code]; ok {
		v.ed.SetTool(tool)
	}
}

// textEntryKey routes keystrokes into the text drawable being edited.
func (v *Viewer) textEntryKey(e key.Event) bool {
	switch e.Code {
	case key.CodeReturnEnter, key.CodeEscape:
		v.commitTextEntry()
	case key.CodeDeleteBackspace:
		if len(v.textBuf) > 0 {
			v.textBuf = v.textBuf[:len(v.textBuf)-1]
		}
	default:
		if e.Rune > 0 {
			v.textBuf = append(v.textBuf, e.Rune)
		}
	}
	return false
}

func (v *Viewer) commitTextEntry() {
	if v.textTarget == "" {
		return
	}
	id := v.textTarget
	v.textTarget = ""
	if len(v.textBuf) == 0 {
		return
	}
	if err := v.ed.SetTextValue(id, string(v.textBuf)); err != nil {
		log.Printf("set text: %v", err)
	}
	v.textBuf = v.textBuf[:0]
}

func (v *Viewer) save() {
	if v.onSave == nil {
		return
	}
	if err := v.onSave(v.ed.Canvas().Flatten()); err != nil {
		log.Printf("save: %v", err)
	}
}

func (v *Viewer) copyToClipboard() {
	if v.onCopy == nil {
		return
	}
	if err := v.onCopy(v.ed.Canvas().Flatten()); err != nil {
		log.Printf("copy: %v", err)
	}
}

func (v *Viewer) pasteFromClipboard() {
	if v.paste == nil {
		return
	}
	img, err := v.paste()
	if err != nil {
		log.Printf("paste: %v", err)
		return
	}
	v.ed.PasteImage(img)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// fitRect scales a w*h image into the window while preserving aspect,
// centered.
func fitRect(w, h, winW, winH int) image.Rectangle {
	if w <= 0 || h <= 0 {
		return image.Rect(0, 0, winW, winH)
	}
	scale := float64(winW) / float64(w)
	if s := float64(winH) / float64(h); s < scale {
		scale = s
	}
	fw := int(float64(w) * scale)
	fh := int(float64(h) * scale)
	x := (winW - fw) / 2
	y := (winH - fh) / 2
	return image.Rect(x, y, x+fw, y+fh)
}
