// Package events defines the neutral input-event model the coordinator
// consumes, and the lifecycle contract every OS event source honors. The
// darwin implementations live in pkg/macos; tests drive handlers directly.
package events

import "github.com/slipbar/slipbar/internal/geometry"

// Kind enumerates the raw signals the coordinator reacts to.
type Kind int

const (
	MouseMoved Kind = iota
	LeftMouseDown
	LeftMouseUp
	LeftMouseDragged
	RightMouseDown
	ScrollWheel
	// SpaceChanged fires when the active virtual desktop changes.
	SpaceChanged
	// ScreenChanged fires when display parameters change (resolution,
	// arrangement, menu bar auto-hide entering or leaving fullscreen).
	ScreenChanged
	// ControlItemFrameChanged fires when a control item's window moves,
	// which happens when the OS re-lays-out the status bar.
	ControlItemFrameChanged
)

func (k Kind) String() string {
	switch k {
	case MouseMoved:
		return "mouse-moved"
	case LeftMouseDown:
		return "left-mouse-down"
	case LeftMouseUp:
		return "left-mouse-up"
	case LeftMouseDragged:
		return "left-mouse-dragged"
	case RightMouseDown:
		return "right-mouse-down"
	case ScrollWheel:
		return "scroll-wheel"
	case SpaceChanged:
		return "space-changed"
	case ScreenChanged:
		return "screen-changed"
	case ControlItemFrameChanged:
		return "control-item-frame-changed"
	default:
		return "unknown"
	}
}

// Modifier is a bitmask of held modifier keys.
type Modifier uint32

const (
	ModShift Modifier = 1 << iota
	ModControl
	ModOption
	ModCommand
)

// Has reports whether all bits of mod are held.
func (m Modifier) Has(mod Modifier) bool { return m&mod == mod }

// Event is one raw input occurrence, already translated out of the OS
// representation.
type Event struct {
	Kind      Kind
	Location  geometry.Point
	Modifiers Modifier
	// ScrollDeltaX/Y are only meaningful for ScrollWheel events.
	ScrollDeltaX float64
	ScrollDeltaY float64
}

// Handler consumes one event. Handlers run on the main UI context.
type Handler func(Event)

// Source is one OS-level event registration. Start and Stop are idempotent;
// implementations must release their OS registration on finalization even if
// Stop was never called, since a leaked monitor keeps receiving events and
// retains memory indefinitely.
type Source interface {
	Start() error
	Stop()
}

// SourceFactory hands the coordinator its event sources without exposing OS
// types. The factory decides scope (local vs global vs tap) per signal:
//
//   - MouseMonitor installs a universal monitor (local and global NSEvent
//     monitors under one mask and one callback) because macOS only delivers
//     events to the scope matching which process is key.
//   - MouseMovedTap installs a low-level HID event tap; mouse-moved fires far
//     too often for the monitor API.
//   - SpaceObserver / ScreenObserver / ControlItemObserver register
//     notification observers surfaced as synthetic events.
type SourceFactory interface {
	MouseMonitor(kinds []Kind, h Handler) Source
	MouseMovedTap(h Handler) Source
	SpaceObserver(h Handler) Source
	ScreenObserver(h Handler) Source
	ControlItemObserver(h Handler) Source
}

// Universal composes a local and a global source so feature code never
// special-cases which scope fired.
type Universal struct {
	local  Source
	global Source
}

// NewUniversal pairs the two scoped sources.
func NewUniversal(local, global Source) *Universal {
	return &Universal{local: local, global: global}
}

// Start starts both scopes; if the global scope fails the local one is
// rolled back so the pair is never half-started.
func (u *Universal) Start() error {
	if err := u.local.Start(); err != nil {
		return err
	}
	if err := u.global.Start(); err != nil {
		u.local.Stop()
		return err
	}
	return nil
}

// Stop stops both scopes.
func (u *Universal) Stop() {
	u.local.Stop()
	u.global.Stop()
}
