package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gbabichev/screensnip/internal/capture"
	"github.com/gbabichev/screensnip/internal/clipboard"
	"github.com/gbabichev/screensnip/internal/export"
	"github.com/gbabichev/screensnip/internal/geom"
	"github.com/gbabichev/screensnip/internal/render"
)

// Swapped out in tests.
var (
	captureRegionFn = func(ctx context.Context, timeout time.Duration, sel geom.Rect) (*capture.Result, error) {
		session := capture.NewSession(capture.WithTimeout(timeout))
		return session.BeginRegionCapture(ctx, sel)
	}
	listDisplaysFn = capture.Displays
)

type captureCmd struct {
	output        string
	stdout        bool
	toClipboard   bool
	format        string
	jpegQuality   int
	region        string
	display       int
	timeout       time.Duration
	openEditor    bool
	shadow        bool
	shadowRadius  int
	shadowOffset  string
	shadowPoint   image.Point
	shadowOpacity float64
	*root
	fs *flag.FlagSet
}

func (c *captureCmd) FlagSet() *flag.FlagSet {
	return c.fs
}

func parseCaptureCmd(args []string, r *root) (*captureCmd, error) {
	fs := flag.NewFlagSet("capture", flag.ExitOnError)
	c := &captureCmd{root: r, fs: fs}
	fs.Usage = usageFunc(c)
	defaults := render.DefaultShadowOptions()
	fs.StringVar(&c.output, "output", "", "write the capture to this file path (default: timestamped name in the save directory)")
	fs.BoolVar(&c.stdout, "stdout", false, "write encoded image data to stdout")
	fs.BoolVar(&c.toClipboard, "to-clipboard", false, "copy the capture to the clipboard")
	fs.BoolVar(&c.toClipboard, "to-clip", false, "copy the capture to the clipboard (alias)")
	fs.StringVar(&c.format, "format", r.config.Format, "output encoding: png, jpeg, bmp, or tiff")
	fs.IntVar(&c.jpegQuality, "jpeg-quality", r.config.JPEGQuality, "jpeg encoder quality, 1-100")
	fs.StringVar(&c.region, "region", "", "capture rectangle x,y,w,h in logical units, origin at the bottom-left of the desktop")
	fs.IntVar(&c.display, "display", -1, "capture this display index in full (ignored when -region is given)")
	fs.DurationVar(&c.timeout, "timeout", r.config.CaptureTimeout, "give up waiting for a frame after this long")
	fs.BoolVar(&c.openEditor, "edit", false, "open the capture in the annotation window instead of writing it")
	fs.BoolVar(&c.shadow, "shadow", r.config.Shadow, "apply a drop shadow to the captured image")
	fs.IntVar(&c.shadowRadius, "shadow-radius", defaults.Radius, "drop shadow blur radius in pixels")
	fs.StringVar(&c.shadowOffset, "shadow-offset", formatShadowOffset(defaults.Offset), "drop shadow offset as dx,dy")
	fs.Float64Var(&c.shadowOpacity, "shadow-opacity", defaults.Opacity, "drop shadow opacity between 0 and 1")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	pt, err := parseShadowOffset(c.shadowOffset)
	if err != nil {
		return nil, err
	}
	c.shadowPoint = pt
	if c.stdout && c.toClipboard {
		return nil, fmt.Errorf("-stdout cannot be used with -to-clipboard")
	}
	if c.stdout && c.openEditor {
		return nil, fmt.Errorf("-stdout cannot be used with -edit")
	}
	if c.region == "" && fs.NArg() > 0 {
		c.region = strings.TrimSpace(strings.Join(fs.Args(), " "))
	}
	return c, nil
}

func (c *captureCmd) Run() error {
	sel, err := c.selection()
	if err != nil {
		return err
	}
	res, err := captureRegionFn(context.Background(), c.timeout, sel)
	if err != nil {
		return fmt.Errorf("failed to capture region: %w", err)
	}
	img := res.Image
	c.notifyCapture(fmt.Sprintf("%dx%d from %s", img.Bounds().Dx(), img.Bounds().Dy(), res.Display.Name), img)

	if c.openEditor {
		return c.runEditorWith(img)
	}
	if c.toClipboard {
		if err := clipboard.WriteImage(img); err != nil {
			return fmt.Errorf("failed to copy capture to clipboard: %w", err)
		}
		c.notifyCopy("capture")
		return nil
	}

	opts, err := c.exportOptions()
	if err != nil {
		return err
	}
	if c.stdout {
		return export.Encode(os.Stdout, img, opts)
	}
	path := c.output
	if path == "" {
		path = defaultOutputPath(c.config.SaveDir, opts.Format)
	} else if !c.flagWasSet("format") {
		opts.Format = export.FormatForPath(path)
	}
	if err := export.Save(path, img, opts); err != nil {
		return err
	}
	c.notifySave(path)
	fmt.Fprintln(os.Stdout, path)
	return nil
}

func (c *captureCmd) runEditorWith(img *image.RGBA) error {
	e := &editCmd{root: c.root, output: c.output}
	return e.open(img)
}

// selection resolves the flags into a logical desktop rectangle.
func (c *captureCmd) selection() (geom.Rect, error) {
	if c.region != "" {
		return parseRegion(c.region)
	}
	displays, err := listDisplaysFn()
	if err != nil {
		return geom.Rect{}, fmt.Errorf("failed to enumerate displays: %w", err)
	}
	if len(displays) == 0 {
		return geom.Rect{}, capture.ErrNoDisplay
	}
	if c.display >= 0 {
		for _, d := range displays {
			if d.Index == c.display {
				return d.Frame, nil
			}
		}
		return geom.Rect{}, fmt.Errorf("display %d not found", c.display)
	}
	for _, d := range displays {
		if d.Primary {
			return d.Frame, nil
		}
	}
	return displays[0].Frame, nil
}

func (c *captureCmd) exportOptions() (export.Options, error) {
	format, err := export.ParseFormat(c.format)
	if err != nil {
		return export.Options{}, err
	}
	opts := export.Options{Format: format, JPEGQuality: c.jpegQuality}
	if c.shadow {
		opts.Shadow = &render.ShadowOptions{
			Radius:  c.shadowRadius,
			Offset:  c.shadowPoint,
			Opacity: c.shadowOpacity,
		}
	}
	return opts, nil
}

func (c *captureCmd) flagWasSet(name string) bool {
	set := false
	c.fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}

func parseRegion(s string) (geom.Rect, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return geom.Rect{}, fmt.Errorf("region must be x,y,w,h, got %q", s)
	}
	vals := make([]float64, 4)
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return geom.Rect{}, fmt.Errorf("invalid region component %q: %w", part, err)
		}
		vals[i] = v
	}
	r := geom.XYWH(vals[0], vals[1], vals[2], vals[3]).Canon()
	if r.Empty() {
		return geom.Rect{}, fmt.Errorf("region %q has no area", s)
	}
	return r, nil
}

func parseShadowOffset(s string) (image.Point, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return image.Point{}, fmt.Errorf("shadow offset must be dx,dy, got %q", s)
	}
	dx, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return image.Point{}, fmt.Errorf("invalid shadow offset %q: %w", s, err)
	}
	dy, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return image.Point{}, fmt.Errorf("invalid shadow offset %q: %w", s, err)
	}
	return image.Pt(dx, dy), nil
}

func formatShadowOffset(pt image.Point) string {
	return fmt.Sprintf("%d,%d", pt.X, pt.Y)
}

func defaultOutputPath(dir string, format export.Format) string {
	ext := string(format)
	if format == export.FormatJPEG {
		ext = "jpg"
	}
	name := fmt.Sprintf("screensnip-%s.%s", time.Now().Format("20060102-150405"), ext)
	if dir == "" {
		return name
	}
	return filepath.Join(dir, name)
}
