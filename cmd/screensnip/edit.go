package main

import (
	"flag"
	"fmt"
	"image"
	"image/draw"
	"os"

	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"

	"github.com/gbabichev/screensnip/internal/canvas"
	"github.com/gbabichev/screensnip/internal/clipboard"
	"github.com/gbabichev/screensnip/internal/drawable"
	"github.com/gbabichev/screensnip/internal/editor"
	"github.com/gbabichev/screensnip/internal/export"
	"github.com/gbabichev/screensnip/internal/render"
	"github.com/gbabichev/screensnip/internal/ui"
)

type editCmd struct {
	file          string
	fromClipboard bool
	output        string
	shadow        bool
	*root
	fs *flag.FlagSet
}

func (c *editCmd) FlagSet() *flag.FlagSet {
	return c.fs
}

func parseEditCmd(args []string, r *root) (*editCmd, error) {
	fs := flag.NewFlagSet("edit", flag.ExitOnError)
	c := &editCmd{root: r, fs: fs}
	fs.Usage = usageFunc(c)
	fs.StringVar(&c.file, "file", "", "open this image file")
	fs.BoolVar(&c.fromClipboard, "from-clipboard", false, "open the image currently on the clipboard")
	fs.BoolVar(&c.fromClipboard, "from-clip", false, "open the image currently on the clipboard (alias)")
	fs.StringVar(&c.output, "output", "", "save to this path (default: the input file, or a timestamped name)")
	fs.BoolVar(&c.shadow, "shadow", r.config.Shadow, "apply a drop shadow when saving")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if c.file == "" && fs.NArg() > 0 {
		c.file = fs.Arg(0)
	}
	if c.file == "" && !c.fromClipboard {
		return nil, &UsageError{of: c}
	}
	if c.file != "" && c.fromClipboard {
		return nil, fmt.Errorf("-from-clipboard cannot be combined with a file")
	}
	return c, nil
}

func (c *editCmd) Run() error {
	var (
		src image.Image
		err error
	)
	if c.fromClipboard {
		src, err = clipboard.ReadImage()
		if err != nil {
			return fmt.Errorf("failed to read image from clipboard: %w", err)
		}
	} else {
		src, err = loadImage(c.file)
		if err != nil {
			return err
		}
	}
	if c.output == "" {
		c.output = c.file
	}
	return c.open(toRGBA(src))
}

// open runs the annotation window over img, blocking until it closes.
func (c *editCmd) open(img *image.RGBA) error {
	cv := canvas.New(img)
	ed := editor.New(cv, c.activeStyle.Drawable(drawable.KindRect))
	ed.SetStyleSource(c.activeStyle.Drawable)

	v := ui.NewViewer(ed,
		ui.WithOnSave(func(flat *image.RGBA) error {
			path := c.output
			if path == "" {
				format, err := export.ParseFormat(c.config.Format)
				if err != nil {
					format = export.FormatPNG
				}
				path = defaultOutputPath(c.config.SaveDir, format)
			}
			opts := export.Options{
				Format:      export.FormatForPath(path),
				JPEGQuality: c.config.JPEGQuality,
			}
			if c.shadow {
				def := render.DefaultShadowOptions()
				opts.Shadow = &def
			}
			if err := export.Save(path, flat, opts); err != nil {
				return err
			}
			c.notifySave(path)
			return nil
		}),
		ui.WithOnCopy(func(flat *image.RGBA) error {
			if err := clipboard.WriteImage(flat); err != nil {
				return err
			}
			c.notifyCopy("annotated image")
			return nil
		}),
		ui.WithPaste(clipboard.ReadImage),
	)
	v.Run()
	return nil
}

func loadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return img, nil
}

func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
	return out
}
