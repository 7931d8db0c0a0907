// Package capture turns a selection rectangle in desktop-wide logical
// coordinates into a pixel-exact crop of one display's native frame
// buffer. Selections use a bottom-left origin; pixel buffers use a
// top-left origin, so the pipeline flips the vertical axis against the
// captured buffer's pixel height.
package capture

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"sync/atomic"
	"time"

	"github.com/gbabichev/screensnip/internal/geom"
)

var (
	// ErrNoDisplay means no display's frame intersects the selection.
	ErrNoDisplay = errors.New("no display intersects the selection")
	// ErrEmptyIntersection means the chosen display's frame and the
	// selection share no area.
	ErrEmptyIntersection = errors.New("selection does not overlap the display")
	// ErrDegenerateCrop means the mapped pixel rectangle is a pixel or
	// less on a side.
	ErrDegenerateCrop = errors.New("selection maps to a degenerate pixel region")
	// ErrCaptureInFlight rejects a request while another capture is
	// outstanding on the same session.
	ErrCaptureInFlight = errors.New("capture already in flight")
	// ErrCaptureTimeout means the backend did not deliver a frame in
	// time; the session is torn down.
	ErrCaptureTimeout = errors.New("capture timed out")
	// ErrSessionClosed rejects requests against a torn-down session.
	ErrSessionClosed = errors.New("capture session closed")
)

// Display describes one physical display. Frame is in desktop-wide
// logical units with a bottom-left origin.
type Display struct {
	Index   int
	Name    string
	Frame   geom.Rect
	Primary bool
}

// Result is a completed region capture: the cropped native-resolution
// pixels plus the per-axis scale and logical size that keep the image
// consistent with further authoring.
type Result struct {
	Image       *image.RGBA
	Display     Display
	ScaleX      float64
	ScaleY      float64
	LogicalSize geom.Size
}

// DefaultTimeout bounds how long a capture waits for a frame.
const DefaultTimeout = 4 * time.Second

// Session owns at most one in-flight capture. A second request while
// one is outstanding is rejected, not queued. A timeout tears the
// session down; create a new one to capture again.
type Session struct {
	timeout  time.Duration
	inFlight atomic.Bool
	closed   atomic.Bool
}

// Option adjusts a Session.
type Option func(*Session)

// WithTimeout overrides the frame delivery timeout.
func WithTimeout(d time.Duration) Option {
	return func(s *Session) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// NewSession creates a capture session.
func NewSession(opts ...Option) *Session {
	s := &Session{timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Closed reports whether the session has been torn down.
func (s *Session) Closed() bool { return s.closed.Load() }

// Displays enumerates the current display layout.
func Displays() ([]Display, error) {
	return backend.Displays()
}

// BeginRegionCapture captures the part of the desktop covered by sel,
// a rectangle in desktop-wide logical coordinates with a bottom-left
// origin. On any failure the session reports an error without producing
// a partial image.
func (s *Session) BeginRegionCapture(ctx context.Context, sel geom.Rect) (*Result, error) {
	if s.closed.Load() {
		return nil, ErrSessionClosed
	}
	if !s.inFlight.CompareAndSwap(false, true) {
		return nil, ErrCaptureInFlight
	}
	defer s.inFlight.Store(false)

	sel = sel.Canon()
	displays, err := backend.Displays()
	if err != nil {
		return nil, fmt.Errorf("enumerate displays: %w", err)
	}
	disp, ok := chooseDisplay(displays, sel)
	if !ok {
		return nil, ErrNoDisplay
	}
	inter := sel.Intersect(disp.Frame)
	if inter.Empty() {
		return nil, ErrEmptyIntersection
	}

	buf, err := s.frame(ctx, disp)
	if err != nil {
		return nil, err
	}

	pixelW := float64(buf.Bounds().Dx())
	pixelH := float64(buf.Bounds().Dy())
	scaleX := pixelW / disp.Frame.W
	scaleY := pixelH / disp.Frame.H

	// Display-local, scaled to pixels, then flipped to the buffer's
	// top-left origin.
	local := inter.Translate(geom.Pt(-disp.Frame.X, -disp.Frame.Y))
	pixel := geom.XYWH(local.X*scaleX, local.Y*scaleY, local.W*scaleX, local.H*scaleY)
	pixel = geom.FlipRectY(pixel, pixelH)

	clamped := geom.ClampRect(pixel.ImageRect(), buf.Bounds())
	if clamped.Dx() <= 1 || clamped.Dy() <= 1 {
		return nil, ErrDegenerateCrop
	}

	return &Result{
		Image:   cropBuffer(buf, clamped),
		Display: disp,
		ScaleX:  scaleX,
		ScaleY:  scaleY,
		LogicalSize: geom.Sz(
			float64(clamped.Dx())/scaleX,
			float64(clamped.Dy())/scaleY,
		),
	}, nil
}

// frame fetches one full native-resolution frame from the backend,
// bounded by the session timeout. A timeout tears the session down.
func (s *Session) frame(ctx context.Context, disp Display) (*image.RGBA, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	type frameResult struct {
		img *image.RGBA
		err error
	}
	ch := make(chan frameResult, 1)
	go func() {
		img, err := backend.Frame(ctx, disp)
		ch <- frameResult{img, err}
	}()

	select {
	case res := <-ch:
		if res.err != nil {
			return nil, fmt.Errorf("capture frame: %w", res.err)
		}
		if res.img == nil || res.img.Bounds().Empty() {
			return nil, fmt.Errorf("capture frame: empty buffer")
		}
		return res.img, nil
	case <-ctx.Done():
		s.closed.Store(true)
		return nil, ErrCaptureTimeout
	}
}

// chooseDisplay picks the display whose frame shares the largest area
// with the selection. Ties keep the earlier display in enumeration
// order.
func chooseDisplay(displays []Display, sel geom.Rect) (Display, bool) {
	best := Display{}
	bestArea := 0.0
	found := false
	for _, d := range displays {
		area := sel.Intersect(d.Frame).Area()
		if area > bestArea {
			best = d
			bestArea = area
			found = true
		}
	}
	return best, found
}

// cropBuffer copies the given pixel rectangle out of the buffer into a
// zero-origin image.
func cropBuffer(buf *image.RGBA, r image.Rectangle) *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	draw.Draw(out, out.Bounds(), buf, r.Min, draw.Src)
	return out
}
