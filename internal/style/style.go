// Package style defines annotation appearance presets: stroke and fill
// colors, stroke width, and font sizing for newly created drawables.
package style

import (
	"embed"
	"image/color"
	"strings"

	"github.com/gbabichev/screensnip/internal/drawable"
)

//go:embed defaults/*.style
var embeddedStyles embed.FS

// EmbeddedNames lists the presets compiled into the binary, without the
// .style extension.
func EmbeddedNames() []string {
	entries, err := embeddedStyles.ReadDir("defaults")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".style"))
	}
	return names
}

// Style is one named preset.
type Style struct {
	Name string

	// Outlined shapes and lines.
	Stroke      color.RGBA
	StrokeWidth float64

	// Text boxes.
	TextColor      color.RGBA
	TextBackground color.RGBA
	FontSize       float64

	// Filled shapes.
	BadgeFill     color.RGBA
	HighlightFill color.RGBA

	// Arrow draws a head on new lines.
	Arrow bool
}

// Default returns the built-in fallback preset.
func Default() *Style {
	return &Style{
		Name:           "Default",
		Stroke:         color.RGBA{230, 56, 48, 255},
		StrokeWidth:    2,
		TextColor:      color.RGBA{230, 56, 48, 255},
		TextBackground: color.RGBA{255, 255, 255, 0},
		FontSize:       16,
		BadgeFill:      color.RGBA{230, 56, 48, 255},
		HighlightFill:  color.RGBA{255, 235, 59, 255},
		Arrow:          false,
	}
}

// Drawable maps the preset onto the shape model's style for the given
// kind. Highlights take the translucent fill; badges the badge fill.
func (s *Style) Drawable(kind drawable.Kind) drawable.Style {
	out := drawable.Style{
		Stroke:      s.Stroke,
		StrokeWidth: s.StrokeWidth,
		FontSize:    s.FontSize,
		Arrow:       s.Arrow,
	}
	switch kind {
	case drawable.KindHighlight:
		out.Fill = s.HighlightFill
		out.HasFill = true
	case drawable.KindBadge:
		out.Fill = s.BadgeFill
		out.HasFill = true
	case drawable.KindText:
		out.Stroke = s.TextColor
		if s.TextBackground.A > 0 {
			out.Fill = s.TextBackground
			out.HasFill = true
		}
	}
	return out
}
