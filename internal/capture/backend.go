package capture

import (
	"context"
	"image"
)

// platformBackend is the seam between the pipeline and the OS: it
// enumerates displays and streams exactly one full-resolution frame per
// call. Tests swap the package-level backend for a fake.
type platformBackend interface {
	Displays() ([]Display, error)
	Frame(ctx context.Context, d Display) (*image.RGBA, error)
}

var backend platformBackend = newBackend()
