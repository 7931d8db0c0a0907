//go:build linux || freebsd || openbsd || netbsd || dragonfly

package capture

import (
	"context"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"os"
	"strings"

	"github.com/godbus/dbus/v5"
	"github.com/jezek/xgb"
	"github.com/jezek/xgb/randr"
	"github.com/jezek/xgb/xproto"
)

func runningOnWayland() bool {
	sessionType := strings.ToLower(strings.TrimSpace(os.Getenv("XDG_SESSION_TYPE")))
	if sessionType == "wayland" {
		return true
	}
	return os.Getenv("WAYLAND_DISPLAY") != ""
}

// displayNames resolves monitor names through the X RandR extension,
// in CRTC enumeration order. Name resolution is best effort; an empty
// slice falls back to index-based names.
func displayNames() []string {
	conn, err := xgb.NewConn()
	if err != nil {
		return nil
	}
	defer conn.Close()

	setup := xproto.Setup(conn)
	if setup == nil {
		return nil
	}
	screen := setup.DefaultScreen(conn)
	if screen == nil {
		return nil
	}
	if err := randr.Init(conn); err != nil {
		return nil
	}
	res, err := randr.GetScreenResources(conn, screen.Root).Reply()
	if err != nil {
		return nil
	}

	var names []string
	for _, output := range res.Outputs {
		info, err := randr.GetOutputInfo(conn, output, res.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}
		if info.Connection != randr.ConnectionConnected || info.Crtc == 0 {
			continue
		}
		names = append(names, strings.TrimSpace(string(info.Name)))
	}
	return names
}

// grabDisplay captures one display through the desktop portal when the
// session runs under a Wayland compositor, where direct frame buffer
// reads are refused. On X11 it reports errGrabUnsupported so the
// caller uses the direct path.
func grabDisplay(ctx context.Context, bounds image.Rectangle) (*image.RGBA, error) {
	if !runningOnWayland() {
		return nil, errGrabUnsupported
	}
	full, err := portalScreenshot(ctx)
	if err != nil {
		return nil, err
	}
	crop := bounds.Intersect(full.Bounds())
	if crop.Empty() {
		return nil, fmt.Errorf("display bounds outside portal screenshot")
	}
	out := image.NewRGBA(image.Rect(0, 0, crop.Dx(), crop.Dy()))
	draw.Draw(out, out.Bounds(), full, crop.Min, draw.Src)
	return out, nil
}

// portalScreenshot asks the XDG desktop portal for a full-desktop
// screenshot over D-Bus and loads the file it hands back.
func portalScreenshot(ctx context.Context) (*image.RGBA, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("dbus connect: %w", err)
	}
	defer conn.Close()

	obj := conn.Object("org.freedesktop.portal.Desktop", "/org/freedesktop/portal/desktop")
	opts := map[string]dbus.Variant{
		"interactive": dbus.MakeVariant(false),
	}
	var handle dbus.ObjectPath
	call := obj.Call("org.freedesktop.portal.Screenshot.Screenshot", 0, "", opts)
	if call.Err != nil {
		return nil, fmt.Errorf("portal screenshot call: %w", call.Err)
	}
	if err := call.Store(&handle); err != nil {
		return nil, fmt.Errorf("portal screenshot response: %w", err)
	}

	sigc := make(chan *dbus.Signal, 1)
	conn.Signal(sigc)
	rule := fmt.Sprintf("type='signal',interface='org.freedesktop.portal.Request',member='Response',path='%s'", handle)
	if err := conn.BusObject().Call("org.freedesktop.DBus.AddMatch", 0, rule).Err; err != nil {
		return nil, fmt.Errorf("portal screenshot subscribe: %w", err)
	}
	defer conn.BusObject().Call("org.freedesktop.DBus.RemoveMatch", 0, rule)

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case sig, ok := <-sigc:
			if !ok {
				return nil, fmt.Errorf("portal screenshot: signal channel closed")
			}
			if sig.Path != handle || sig.Name != "org.freedesktop.portal.Request.Response" {
				continue
			}
			if len(sig.Body) < 2 {
				return nil, fmt.Errorf("portal screenshot: malformed response")
			}
			res, ok := sig.Body[1].(map[string]dbus.Variant)
			if !ok {
				return nil, fmt.Errorf("portal screenshot: malformed response body")
			}
			uriVar, ok := res["uri"]
			if !ok {
				return nil, fmt.Errorf("portal screenshot: response carried no uri")
			}
			uri, _ := uriVar.Value().(string)
			path := strings.TrimPrefix(uri, "file://")
			defer os.Remove(path)
			return loadPortalPNG(path)
		}
	}
}

func loadPortalPNG(path string) (*image.RGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("portal screenshot open: %w", err)
	}
	defer f.Close()
	decoded, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("portal screenshot decode: %w", err)
	}
	if rgba, ok := decoded.(*image.RGBA); ok {
		return rgba, nil
	}
	out := image.NewRGBA(decoded.Bounds())
	draw.Draw(out, out.Bounds(), decoded, decoded.Bounds().Min, draw.Src)
	return out, nil
}
