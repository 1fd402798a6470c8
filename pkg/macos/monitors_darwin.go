//go:build darwin

package macos

import (
	"fmt"
	"runtime"

	"github.com/progrium/darwinkit/macos/appkit"
	"github.com/progrium/darwinkit/macos/foundation"
	"github.com/progrium/darwinkit/objc"

	"github.com/slipbar/slipbar/internal/diaglog"
	"github.com/slipbar/slipbar/internal/events"
	"github.com/slipbar/slipbar/internal/geometry"
)

func eventMask(kinds []events.Kind) appkit.EventMask {
	var mask appkit.EventMask
	for _, k := range kinds {
		switch k {
		case events.LeftMouseDown:
			mask |= appkit.EventMaskLeftMouseDown
		case events.LeftMouseUp:
			mask |= appkit.EventMaskLeftMouseUp
		case events.LeftMouseDragged:
			mask |= appkit.EventMaskLeftMouseDragged
		case events.RightMouseDown:
			mask |= appkit.EventMaskRightMouseDown
		case events.ScrollWheel:
			mask |= appkit.EventMaskScrollWheel
		case events.MouseMoved:
			mask |= appkit.EventMaskMouseMoved
		}
	}
	return mask
}

func kindOf(ev appkit.Event) (events.Kind, bool) {
	switch ev.Type() {
	case appkit.EventTypeLeftMouseDown:
		return events.LeftMouseDown, true
	case appkit.EventTypeLeftMouseUp:
		return events.LeftMouseUp, true
	case appkit.EventTypeLeftMouseDragged:
		return events.LeftMouseDragged, true
	case appkit.EventTypeRightMouseDown:
		return events.RightMouseDown, true
	case appkit.EventTypeScrollWheel:
		return events.ScrollWheel, true
	case appkit.EventTypeMouseMoved:
		return events.MouseMoved, true
	default:
		return 0, false
	}
}

func modifiersOf(ev appkit.Event) events.Modifier {
	var mods events.Modifier
	flags := ev.ModifierFlags()
	if flags&appkit.EventModifierFlagShift != 0 {
		mods |= events.ModShift
	}
	if flags&appkit.EventModifierFlagControl != 0 {
		mods |= events.ModControl
	}
	if flags&appkit.EventModifierFlagOption != 0 {
		mods |= events.ModOption
	}
	if flags&appkit.EventModifierFlagCommand != 0 {
		mods |= events.ModCommand
	}
	return mods
}

func translate(ev appkit.Event) (events.Event, bool) {
	kind, ok := kindOf(ev)
	if !ok {
		return events.Event{}, false
	}
	loc := appkit.Event_MouseLocation()
	out := events.Event{
		Kind:      kind,
		Location:  geometry.Point{X: float64(loc.X), Y: float64(loc.Y)},
		Modifiers: modifiersOf(ev),
	}
	if kind == events.ScrollWheel {
		out.ScrollDeltaX = ev.ScrollingDeltaX()
		out.ScrollDeltaY = ev.ScrollingDeltaY()
	}
	return out, true
}

// globalMonitor delivers events targeted at other applications.
type globalMonitor struct {
	mask    appkit.EventMask
	handler events.Handler
	token   objc.Object
}

func (m *globalMonitor) Start() error {
	m.token = appkit.Event_AddGlobalMonitorForEventsMatchingMaskHandler(m.mask,
		func(ev appkit.Event) {
			if out, ok := translate(ev); ok {
				m.handler(out)
			}
		})
	if m.token.Ptr() == nil {
		return fmt.Errorf("NSEvent global monitor rejected (input monitoring permission required)")
	}
	// A source dropped without Stop must still release its OS registration.
	runtime.SetFinalizer(m, (*globalMonitor).Stop)
	return nil
}

func (m *globalMonitor) Stop() {
	runtime.SetFinalizer(m, nil)
	if m.token.Ptr() != nil {
		appkit.Event_RemoveMonitor(m.token)
		m.token = objc.Object{}
	}
}

// localMonitor delivers events targeted at slipbar itself (its status items
// and the bar panel). The event is passed through unmodified.
type localMonitor struct {
	mask    appkit.EventMask
	handler events.Handler
	token   objc.Object
}

func (m *localMonitor) Start() error {
	m.token = appkit.Event_AddLocalMonitorForEventsMatchingMaskHandler(m.mask,
		func(ev appkit.Event) appkit.Event {
			if out, ok := translate(ev); ok {
				m.handler(out)
			}
			return ev
		})
	if m.token.Ptr() == nil {
		return fmt.Errorf("NSEvent local monitor rejected")
	}
	runtime.SetFinalizer(m, (*localMonitor).Stop)
	return nil
}

func (m *localMonitor) Stop() {
	runtime.SetFinalizer(m, nil)
	if m.token.Ptr() != nil {
		appkit.Event_RemoveMonitor(m.token)
		m.token = objc.Object{}
	}
}

// notificationSource adapts one NSNotification name to an events.Source.
type notificationSource struct {
	center  foundation.NotificationCenter
	name    string
	kind    events.Kind
	handler events.Handler
	token   objc.Object
}

func (s *notificationSource) Start() error {
	s.token = s.center.AddObserverForNameObjectQueueUsingBlock(
		foundation.NotificationName(s.name),
		nil,
		foundation.OperationQueue_MainQueue(),
		func(foundation.Notification) {
			s.handler(events.Event{Kind: s.kind})
		},
	)
	runtime.SetFinalizer(s, (*notificationSource).Stop)
	return nil
}

func (s *notificationSource) Stop() {
	runtime.SetFinalizer(s, nil)
	if s.token.Ptr() != nil {
		s.center.RemoveObserver(s.token)
		s.token = objc.Object{}
	}
}

// SourceFactory builds the live event sources for the coordinator.
type SourceFactory struct {
	diag *diaglog.Logger
}

var _ events.SourceFactory = (*SourceFactory)(nil)

// NewSourceFactory builds a factory. diag may be nil.
func NewSourceFactory(diag *diaglog.Logger) *SourceFactory {
	if diag == nil {
		diag = diaglog.NewNoOp()
	}
	return &SourceFactory{diag: diag}
}

// MouseMonitor composes the local and global NSEvent monitors for the click,
// drag and scroll kinds.
func (f *SourceFactory) MouseMonitor(kinds []events.Kind, h events.Handler) events.Source {
	mask := eventMask(kinds)
	f.diag.Log(diaglog.LogEntry{
		Component: diaglog.ComponentMonitors,
		Event:     diaglog.EventMonitorInstall,
	})
	return events.NewUniversal(
		&localMonitor{mask: mask, handler: h},
		&globalMonitor{mask: mask, handler: h},
	)
}

// MouseMovedTap returns the listen-only CGEventTap for mouse-moved events.
func (f *SourceFactory) MouseMovedTap(h events.Handler) events.Source {
	return &mouseMovedTap{handler: h, diag: f.diag}
}

// SpaceObserver signals active-space changes.
func (f *SourceFactory) SpaceObserver(h events.Handler) events.Source {
	return &notificationSource{
		center:  appkit.Workspace_SharedWorkspace().NotificationCenter(),
		name:    "NSWorkspaceActiveSpaceDidChangeNotification",
		kind:    events.SpaceChanged,
		handler: h,
	}
}

// ScreenObserver signals display-parameter changes (resolution, arrangement,
// menu bar autohide).
func (f *SourceFactory) ScreenObserver(h events.Handler) events.Source {
	return &notificationSource{
		center:  foundation.NotificationCenter_DefaultCenter(),
		name:    "NSApplicationDidChangeScreenParametersNotification",
		kind:    events.ScreenChanged,
		handler: h,
	}
}

// ControlItemObserver signals status item window moves; items shift whenever
// the OS relayouts the menu bar.
func (f *SourceFactory) ControlItemObserver(h events.Handler) events.Source {
	return &notificationSource{
		center:  foundation.NotificationCenter_DefaultCenter(),
		name:    "NSWindowDidMoveNotification",
		kind:    events.ControlItemFrameChanged,
		handler: h,
	}
}
