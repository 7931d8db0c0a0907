package capture

import (
	"context"
	"errors"
	"fmt"
	"image"

	"github.com/kbinani/screenshot"

	"github.com/gbabichev/screensnip/internal/geom"
)

// screenBackend captures through the OS frame buffer APIs. Display
// frames are reported in desktop-wide logical units with a bottom-left
// origin; the desktop origin is the bottom-left corner of the virtual
// screen union.
type screenBackend struct{}

func newBackend() platformBackend { return screenBackend{} }

func (screenBackend) Displays() ([]Display, error) {
	n := screenshot.NumActiveDisplays()
	if n == 0 {
		return nil, errors.New("no active displays")
	}
	bounds := make([]image.Rectangle, n)
	union := screenshot.GetDisplayBounds(0)
	for i := 0; i < n; i++ {
		bounds[i] = screenshot.GetDisplayBounds(i)
		union = union.Union(bounds[i])
	}
	names := displayNames()
	desktopH := float64(union.Dy())

	displays := make([]Display, 0, n)
	for i, b := range bounds {
		local := b.Sub(union.Min)
		frame := geom.FlipRectY(geom.FromImageRect(local), desktopH)
		name := fmt.Sprintf("display-%d", i)
		if i < len(names) && names[i] != "" {
			name = names[i]
		}
		displays = append(displays, Display{
			Index:   i,
			Name:    name,
			Frame:   frame,
			Primary: i == 0,
		})
	}
	return displays, nil
}

func (screenBackend) Frame(ctx context.Context, d Display) (*image.RGBA, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if d.Index < 0 || d.Index >= screenshot.NumActiveDisplays() {
		return nil, fmt.Errorf("display %d no longer present", d.Index)
	}
	bounds := screenshot.GetDisplayBounds(d.Index)
	if img, err := grabDisplay(ctx, bounds); err == nil {
		return img, nil
	} else if !errors.Is(err, errGrabUnsupported) {
		return nil, err
	}
	return screenshot.CaptureRect(bounds)
}

// errGrabUnsupported tells Frame to fall through to the direct frame
// buffer path.
var errGrabUnsupported = errors.New("compositor grab unsupported")
