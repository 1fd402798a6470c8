//go:build darwin

package macos

import (
	"sync/atomic"

	"github.com/progrium/darwinkit/macos/appkit"
	"github.com/progrium/darwinkit/macos/foundation"
	"github.com/progrium/darwinkit/objc"

	"github.com/slipbar/slipbar/internal/geometry"
)

// rectFromFoundation converts an AppKit rect (already bottom-left origin)
// into the geometry type.
func rectFromFoundation(r foundation.Rect) geometry.Rect {
	return geometry.NewRect(
		float64(r.Origin.X), float64(r.Origin.Y),
		float64(r.Size.Width), float64(r.Size.Height),
	)
}

// flipFromCG converts a CoreGraphics rect (top-left origin, Y down) into
// AppKit global coordinates, given the full height of the main display.
func flipFromCG(x, y, w, h, mainHeight float64) geometry.Rect {
	return geometry.NewRect(x, mainHeight-y-h, w, h)
}

// Desktop is the live macOS implementation of geometry.Desktop.
type Desktop struct {
	// spaceCounter increments on every active-space change notification.
	// Only equality between reads matters, so a counter is as good as the
	// private CGS space id, without the private API.
	spaceCounter atomic.Uint64
	spaceToken   objc.Object
}

var _ geometry.Desktop = (*Desktop)(nil)

// NewDesktop builds the desktop query surface and starts counting space
// changes. Call Close when done.
func NewDesktop() *Desktop {
	d := &Desktop{}
	nc := appkit.Workspace_SharedWorkspace().NotificationCenter()
	d.spaceToken = nc.AddObserverForNameObjectQueueUsingBlock(
		foundation.NotificationName("NSWorkspaceActiveSpaceDidChangeNotification"),
		nil,
		foundation.OperationQueue_MainQueue(),
		func(foundation.Notification) { d.spaceCounter.Add(1) },
	)
	return d
}

// Close removes the space-change observer.
func (d *Desktop) Close() {
	nc := appkit.Workspace_SharedWorkspace().NotificationCenter()
	nc.RemoveObserver(d.spaceToken)
}

// MouseLocation reports the pointer in global AppKit coordinates.
func (d *Desktop) MouseLocation() (geometry.Point, bool) {
	p := appkit.Event_MouseLocation()
	return geometry.Point{X: float64(p.X), Y: float64(p.Y)}, true
}

// MainScreen reports the screen carrying the menu bar, including the notch
// frame when the display has one.
func (d *Desktop) MainScreen() (geometry.Screen, bool) {
	screen := appkit.Screen_MainScreen()
	if screen.Ptr() == nil {
		return geometry.Screen{}, false
	}
	s := geometry.Screen{
		Frame:        rectFromFoundation(screen.Frame()),
		VisibleFrame: rectFromFoundation(screen.VisibleFrame()),
	}
	if notch, ok := notchFrame(screen, s.Frame); ok {
		s.Notch = &notch
	}
	return s, true
}

// notchFrame derives the camera-housing cutout from the auxiliary top areas:
// the gap between the top-left and top-right usable areas is the notch. Both
// properties report zero rects on displays without a cutout.
func notchFrame(screen appkit.Screen, frame geometry.Rect) (geometry.Rect, bool) {
	left := objc.Call[foundation.Rect](screen, objc.Sel("auxiliaryTopLeftArea"))
	right := objc.Call[foundation.Rect](screen, objc.Sel("auxiliaryTopRightArea"))
	l := rectFromFoundation(left)
	r := rectFromFoundation(right)
	if l.IsEmpty() || r.IsEmpty() {
		return geometry.Rect{}, false
	}
	gap := r.MinX() - l.MaxX()
	if gap <= 0 {
		return geometry.Rect{}, false
	}
	return geometry.NewRect(l.MaxX(), l.MinY(), gap, frame.MaxY()-l.MinY()), true
}

// ActiveSpaceID returns the space-change counter.
func (d *Desktop) ActiveSpaceID() uint64 {
	return d.spaceCounter.Load()
}

// AppInfo looks the owning application up through NSRunningApplication.
func (d *Desktop) AppInfo(pid int32) (geometry.AppInfo, bool) {
	app := appkit.RunningApplication_RunningApplicationWithProcessIdentifier(int(pid))
	if app.Ptr() == nil {
		return geometry.AppInfo{}, false
	}
	info := geometry.AppInfo{
		Name:     app.LocalizedName(),
		BundleID: app.BundleIdentifier(),
		Active:   app.IsActive(),
	}
	switch app.ActivationPolicy() {
	case appkit.ApplicationActivationPolicyRegular:
		info.Policy = geometry.PolicyRegular
	case appkit.ApplicationActivationPolicyAccessory:
		info.Policy = geometry.PolicyAccessory
	default:
		info.Policy = geometry.PolicyProhibited
	}
	return info, true
}

// OnScreenWindows returns the CoreGraphics window list front to back,
// flipped into AppKit coordinates.
func (d *Desktop) OnScreenWindows() []geometry.Window {
	screen, ok := d.MainScreen()
	if !ok {
		return nil
	}
	return copyWindowList(screen.Frame.MaxY())
}

// MenuBarItemFrames returns the frames of all menu bar item windows. Item
// windows live on the status window level and sit inside the bar band.
func (d *Desktop) MenuBarItemFrames(screen geometry.Screen) []geometry.Rect {
	return copyMenuBarItemFrames(screen.Frame.MaxY())
}

// ApplicationMenuFrame probes the frontmost app's menu bar extents through
// the Accessibility API.
func (d *Desktop) ApplicationMenuFrame(screen geometry.Screen) (geometry.Rect, bool) {
	return applicationMenuFrame(screen.Frame.MaxY())
}
