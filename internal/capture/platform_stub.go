//go:build !linux && !freebsd && !openbsd && !netbsd && !dragonfly

package capture

import (
	"context"
	"image"
)

func displayNames() []string { return nil }

func grabDisplay(ctx context.Context, bounds image.Rectangle) (*image.RGBA, error) {
	return nil, errGrabUnsupported
}
