// Package geometry holds the screen-space types and hit-testing predicates
// the event coordinator uses to decide what the mouse is pointing at.
//
// All coordinates are AppKit global coordinates: origin at the bottom-left
// of the main screen, Y increasing upward. The pkg/macos layer converts
// CoreGraphics (top-left origin) frames before they reach this package.
package geometry

// Point is a location in global screen coordinates.
type Point struct {
	X float64
	Y float64
}

// Size is a width/height pair in points.
type Size struct {
	Width  float64
	Height float64
}

// Rect is an axis-aligned rectangle in global screen coordinates.
type Rect struct {
	Origin Point
	Size   Size
}

// NewRect builds a Rect from origin and size components.
func NewRect(x, y, w, h float64) Rect {
	return Rect{Origin: Point{X: x, Y: y}, Size: Size{Width: w, Height: h}}
}

func (r Rect) MinX() float64 { return r.Origin.X }
func (r Rect) MaxX() float64 { return r.Origin.X + r.Size.Width }
func (r Rect) MinY() float64 { return r.Origin.Y }
func (r Rect) MaxY() float64 { return r.Origin.Y + r.Size.Height }

// IsEmpty reports whether the rect has no area.
func (r Rect) IsEmpty() bool {
	return r.Size.Width <= 0 || r.Size.Height <= 0
}

// Contains reports whether p lies inside r. Matches CGRectContainsPoint
// semantics: the minimum edges are inclusive, the maximum edges exclusive,
// so two abutting rects never both claim the shared edge.
func (r Rect) Contains(p Point) bool {
	if r.IsEmpty() {
		return false
	}
	return p.X >= r.MinX() && p.X < r.MaxX() &&
		p.Y >= r.MinY() && p.Y < r.MaxY()
}

// InsetBy returns r shrunk by dx horizontally and dy vertically on each
// side. Negative values grow the rect.
func (r Rect) InsetBy(dx, dy float64) Rect {
	return Rect{
		Origin: Point{X: r.Origin.X + dx, Y: r.Origin.Y + dy},
		Size:   Size{Width: r.Size.Width - 2*dx, Height: r.Size.Height - 2*dy},
	}
}

// Union returns the smallest rect containing both r and o. Empty rects are
// ignored.
func (r Rect) Union(o Rect) Rect {
	if r.IsEmpty() {
		return o
	}
	if o.IsEmpty() {
		return r
	}
	minX := min(r.MinX(), o.MinX())
	minY := min(r.MinY(), o.MinY())
	maxX := max(r.MaxX(), o.MaxX())
	maxY := max(r.MaxY(), o.MaxY())
	return NewRect(minX, minY, maxX-minX, maxY-minY)
}

// Screen describes one display as the coordinator sees it.
type Screen struct {
	// Frame is the full display frame.
	Frame Rect
	// VisibleFrame excludes the menu bar and the Dock. The band between
	// VisibleFrame's top and Frame's top is the menu bar.
	VisibleFrame Rect
	// Notch is the camera-housing cutout frame, nil on screens without one.
	Notch *Rect
}

// MenuBarHeight returns the height of the menu bar band on this screen.
func (s Screen) MenuBarHeight() float64 {
	return s.Frame.MaxY() - s.VisibleFrame.MaxY()
}

// MenuBarFrame returns the menu bar band as a frame spanning the full screen
// width.
func (s Screen) MenuBarFrame() Rect {
	return NewRect(s.Frame.Origin.X, s.VisibleFrame.MaxY(), s.Frame.Size.Width, s.MenuBarHeight())
}

// Window is one entry of the front-to-back on-screen window list.
type Window struct {
	WindowID  uint32
	OwnerPID  int32
	OwnerName string
	// Title is the window name. Empty when the OS withholds it (no screen
	// recording permission) or the window is untitled.
	Title    string
	Layer    int
	Frame    Rect
	OnScreen bool
}

// ActivationPolicy mirrors NSApplication.ActivationPolicy for the owning
// application of a window.
type ActivationPolicy int

const (
	PolicyRegular    ActivationPolicy = iota // ordinary app with Dock icon
	PolicyAccessory                          // agent app, no Dock icon
	PolicyProhibited                         // background-only process
)

// AppInfo is the owning-application metadata smart rehide inspects.
type AppInfo struct {
	Name     string
	BundleID string
	Active   bool
	Policy   ActivationPolicy
}

// Desktop is the live OS-state query surface. Every method is a synchronous
// read of current state; when the data is transiently unavailable the method
// reports ok=false (or an empty slice) rather than returning an error.
//
// pkg/macos provides the real implementation; tests substitute fakes.
type Desktop interface {
	// MouseLocation returns the current pointer location.
	MouseLocation() (Point, bool)
	// MainScreen returns the screen carrying the menu bar.
	MainScreen() (Screen, bool)
	// ApplicationMenuFrame returns the frame of the frontmost app's menu
	// region in the menu bar. The reported frame may start mid-screen.
	ApplicationMenuFrame(screen Screen) (Rect, bool)
	// MenuBarItemFrames returns the bounding frames of all menu bar item
	// windows currently on screen, queried fresh each call.
	MenuBarItemFrames(screen Screen) []Rect
	// OnScreenWindows returns the window list ordered front to back.
	OnScreenWindows() []Window
	// ActiveSpaceID identifies the active virtual desktop. Only equality
	// between two reads is meaningful.
	ActiveSpaceID() uint64
	// AppInfo looks up the owning application of a window by pid.
	AppInfo(pid int32) (AppInfo, bool)
}
