// Package config reads and writes the application rc file: output
// defaults, capture tuning, notification switches, and inline style
// presets.
package config

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/gbabichev/screensnip/internal/style"
)

// Notify holds the per-event notification switches.
type Notify struct {
	Capture bool
	Save    bool
	Copy    bool
}

// Config holds the application configuration.
type Config struct {
	// Style names the active preset, resolved through the style loader
	// when it does not match an inline [style.NAME] section.
	Style   string
	SaveDir string
	// Format is the default output encoding (png, jpeg, bmp, tiff).
	Format string
	// JPEGQuality is the jpeg encoder quality, 1-100.
	JPEGQuality int
	// CaptureTimeout bounds how long a capture waits for a frame.
	CaptureTimeout time.Duration
	// Shadow composites a drop shadow on export.
	Shadow bool
	Notify Notify
	Styles map[string]*style.Style
}

// New returns a Config with defaults.
func New() *Config {
	return &Config{
		Format:         "png",
		JPEGQuality:    90,
		CaptureTimeout: 4 * time.Second,
		Styles:         make(map[string]*style.Style),
	}
}

// ActiveStyle resolves the configured preset, preferring inline
// sections over the loader search path.
func (c *Config) ActiveStyle(loader *style.Loader) (*style.Style, error) {
	if c.Style == "" {
		return style.Default(), nil
	}
	if s, ok := c.Styles[c.Style]; ok {
		return s, nil
	}
	return loader.Load(c.Style)
}

// String renders the configuration in rc format, suitable for writing
// back to disk.
func (c *Config) String() string {
	var sb strings.Builder

	if c.Style != "" {
		fmt.Fprintf(&sb, "style = %s\n", c.Style)
	}
	if c.SaveDir != "" {
		fmt.Fprintf(&sb, "save_dir = %s\n", c.SaveDir)
	}
	fmt.Fprintf(&sb, "format = %s\n", c.Format)
	fmt.Fprintf(&sb, "jpeg_quality = %d\n", c.JPEGQuality)
	fmt.Fprintf(&sb, "capture_timeout_ms = %d\n", c.CaptureTimeout.Milliseconds())
	fmt.Fprintf(&sb, "shadow = %v\n", c.Shadow)
	sb.WriteString("\n[notify]\n")
	fmt.Fprintf(&sb, "capture = %v\n", c.Notify.Capture)
	fmt.Fprintf(&sb, "save = %v\n", c.Notify.Save)
	fmt.Fprintf(&sb, "copy = %v\n", c.Notify.Copy)

	names := make([]string, 0, len(c.Styles))
	for name := range c.Styles {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		s := c.Styles[name]
		fmt.Fprintf(&sb, "\n[style.%s]\n", name)
		fmt.Fprintf(&sb, "Name: %s\n", s.Name)
		fmt.Fprintf(&sb, "Stroke: %s\n", style.FormatColor(s.Stroke))
		fmt.Fprintf(&sb, "StrokeWidth: %g\n", s.StrokeWidth)
		fmt.Fprintf(&sb, "TextColor: %s\n", style.FormatColor(s.TextColor))
		fmt.Fprintf(&sb, "TextBackground: %s\n", style.FormatColor(s.TextBackground))
		fmt.Fprintf(&sb, "FontSize: %g\n", s.FontSize)
		fmt.Fprintf(&sb, "BadgeFill: %s\n", style.FormatColor(s.BadgeFill))
		fmt.Fprintf(&sb, "HighlightFill: %s\n", style.FormatColor(s.HighlightFill))
		fmt.Fprintf(&sb, "Arrow: %v\n", s.Arrow)
	}
	return sb.String()
}
