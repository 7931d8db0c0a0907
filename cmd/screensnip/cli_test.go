package main

import (
	"context"
	"errors"
	"flag"
	"image"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gbabichev/screensnip/internal/capture"
	"github.com/gbabichev/screensnip/internal/config"
	"github.com/gbabichev/screensnip/internal/export"
	"github.com/gbabichev/screensnip/internal/geom"
	"github.com/gbabichev/screensnip/internal/style"
)

func testRoot() *root {
	return &root{
		fs:          flag.NewFlagSet("screensnip", flag.ContinueOnError),
		program:     "screensnip",
		config:      config.New(),
		activeStyle: style.Default(),
	}
}

func swapCapture(t *testing.T, fn func(context.Context, time.Duration, geom.Rect) (*capture.Result, error)) {
	t.Helper()
	original := captureRegionFn
	captureRegionFn = fn
	t.Cleanup(func() { captureRegionFn = original })
}

func swapDisplays(t *testing.T, displays []capture.Display, err error) {
	t.Helper()
	original := listDisplaysFn
	listDisplaysFn = func() ([]capture.Display, error) { return displays, err }
	t.Cleanup(func() { listDisplaysFn = original })
}

func TestCaptureRunError(t *testing.T) {
	sentinel := errors.New("boom")
	swapCapture(t, func(context.Context, time.Duration, geom.Rect) (*capture.Result, error) {
		return nil, sentinel
	})

	cmd, err := parseCaptureCmd([]string{"-region", "0,0,10,10", "-stdout"}, testRoot())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	runErr := cmd.Run()
	if runErr == nil {
		t.Fatalf("expected error")
	}
	if !errors.Is(runErr, sentinel) {
		t.Fatalf("expected wrapped error, got %v", runErr)
	}
	if want := "failed to capture region"; !strings.Contains(runErr.Error(), want) {
		t.Fatalf("expected error to contain %q, got %v", want, runErr)
	}
}

func TestCaptureSavesFile(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	swapCapture(t, func(_ context.Context, _ time.Duration, sel geom.Rect) (*capture.Result, error) {
		if sel.W != 10 || sel.H != 10 {
			t.Fatalf("unexpected selection %+v", sel)
		}
		return &capture.Result{Image: img, Display: capture.Display{Name: "fake"}}, nil
	})

	path := filepath.Join(t.TempDir(), "out.png")
	cmd, err := parseCaptureCmd([]string{"-region", "0,0,10,10", "-output", path}, testRoot())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if err := cmd.Run(); err != nil {
		t.Fatalf("run: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected output file: %v", err)
	}
}

func TestCaptureFlagConflicts(t *testing.T) {
	if _, err := parseCaptureCmd([]string{"-stdout", "-to-clipboard"}, testRoot()); err == nil {
		t.Fatalf("expected -stdout/-to-clipboard conflict")
	}
	if _, err := parseCaptureCmd([]string{"-stdout", "-edit"}, testRoot()); err == nil {
		t.Fatalf("expected -stdout/-edit conflict")
	}
}

func TestSelectionFallsBackToPrimaryDisplay(t *testing.T) {
	swapDisplays(t, []capture.Display{
		{Index: 0, Frame: geom.XYWH(0, 0, 1920, 1080)},
		{Index: 1, Frame: geom.XYWH(1920, 0, 2560, 1440), Primary: true},
	}, nil)

	cmd, err := parseCaptureCmd(nil, testRoot())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	sel, err := cmd.selection()
	if err != nil {
		t.Fatalf("selection: %v", err)
	}
	if sel != geom.XYWH(1920, 0, 2560, 1440) {
		t.Fatalf("expected primary display frame, got %+v", sel)
	}
}

func TestSelectionByDisplayIndex(t *testing.T) {
	swapDisplays(t, []capture.Display{
		{Index: 0, Frame: geom.XYWH(0, 0, 1920, 1080), Primary: true},
		{Index: 1, Frame: geom.XYWH(1920, 0, 2560, 1440)},
	}, nil)

	cmd, err := parseCaptureCmd([]string{"-display", "1"}, testRoot())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	sel, err := cmd.selection()
	if err != nil {
		t.Fatalf("selection: %v", err)
	}
	if sel != geom.XYWH(1920, 0, 2560, 1440) {
		t.Fatalf("expected display 1 frame, got %+v", sel)
	}

	cmd, err = parseCaptureCmd([]string{"-display", "7"}, testRoot())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if _, err := cmd.selection(); err == nil {
		t.Fatalf("expected missing display error")
	}
}

func TestParseRegion(t *testing.T) {
	r, err := parseRegion("10, 20, 300, 200")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if r != geom.XYWH(10, 20, 300, 200) {
		t.Fatalf("got %+v", r)
	}
	if _, err := parseRegion("10,20,300"); err == nil {
		t.Fatalf("expected arity error")
	}
	if _, err := parseRegion("10,20,0,200"); err == nil {
		t.Fatalf("expected empty region error")
	}
	if _, err := parseRegion("a,b,c,d"); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestParseShadowOffset(t *testing.T) {
	pt, err := parseShadowOffset("4,-2")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if pt != image.Pt(4, -2) {
		t.Fatalf("got %v", pt)
	}
	if _, err := parseShadowOffset("4"); err == nil {
		t.Fatalf("expected arity error")
	}
	if got := formatShadowOffset(image.Pt(16, 16)); got != "16,16" {
		t.Fatalf("got %q", got)
	}
}

func TestDefaultOutputPath(t *testing.T) {
	path := defaultOutputPath("/tmp/shots", export.FormatJPEG)
	if filepath.Dir(path) != "/tmp/shots" {
		t.Fatalf("expected save dir honored, got %q", path)
	}
	if !strings.HasSuffix(path, ".jpg") {
		t.Fatalf("expected .jpg suffix, got %q", path)
	}
	if !strings.HasPrefix(filepath.Base(path), "screensnip-") {
		t.Fatalf("expected screensnip- prefix, got %q", path)
	}
}
