// Package coordinator owns the event sources and the decision logic that
// turns raw input events, live geometry and current settings into section
// show/hide actions.
//
// Everything here runs confined to the main UI context: sources deliver raw
// events from arbitrary OS callback threads, and the coordinator funnels
// each one through its Dispatcher before touching any state. Delayed work is
// a scheduled resumption on the same context, never a sleep.
package coordinator

import (
	"log"
	"time"

	"github.com/slipbar/slipbar/internal/config"
	"github.com/slipbar/slipbar/internal/diaglog"
	"github.com/slipbar/slipbar/internal/events"
	"github.com/slipbar/slipbar/internal/geometry"
	"github.com/slipbar/slipbar/internal/section"
)

const (
	// clickToggleDelay defers the blank-space click toggle so it never
	// races the OS's own click handling of the status item under the
	// pointer.
	clickToggleDelay = 50 * time.Millisecond
	// contextMenuDelay keeps the context menu from being dismissed by the
	// same right-click event that requested it.
	contextMenuDelay = 100 * time.Millisecond
	// smartRehideDelay gives window focus time to settle before the click
	// target is inspected.
	smartRehideDelay = 250 * time.Millisecond
	// scrollThreshold is the dead zone for scroll-to-show/hide; trackpad
	// jitter stays below it.
	scrollThreshold = 5.0

	dockBundleID = "com.apple.dock"
)

// Dispatcher funnels a function onto the main UI context. The darwin
// implementation wraps the main dispatch queue.
type Dispatcher interface {
	Dispatch(f func())
}

// Scheduler runs a function once after a delay. The function may fire on any
// goroutine; the coordinator re-dispatches it itself.
type Scheduler interface {
	AfterFunc(d time.Duration, f func())
}

// TimerScheduler is the production Scheduler backed by time.AfterFunc.
type TimerScheduler struct{}

func (TimerScheduler) AfterFunc(d time.Duration, f func()) { time.AfterFunc(d, f) }

// MenuPresenter opens the app's context menu. Implemented by pkg/macos.
type MenuPresenter interface {
	ShowContextMenu(at geometry.Point)
}

// FrameFunc reports a live window frame, ok=false when there is none.
type FrameFunc func() (geometry.Rect, bool)

// Config wires the coordinator's collaborators. Desktop, Sections, Settings,
// Factory and Dispatcher are required; the rest default to inert no-ops.
type Config struct {
	Desktop    geometry.Desktop
	Sections   *section.Manager
	Settings   func() config.Settings
	Factory    events.SourceFactory
	Dispatcher Dispatcher
	Scheduler  Scheduler
	Menu       MenuPresenter
	// PanelFrame reports the floating bar panel's frame.
	PanelFrame FrameFunc
	// OwnIconFrame reports the app's own primary status icon frame.
	OwnIconFrame FrameFunc
	Log          *diaglog.Logger
}

// Coordinator is the event-driven state machine at the center of the app.
type Coordinator struct {
	desktop  geometry.Desktop
	sections *section.Manager
	settings func() config.Settings
	factory  events.SourceFactory
	dispatch Dispatcher
	sched    Scheduler
	menu     MenuPresenter
	panel    FrameFunc
	ownIcon  FrameFunc
	diag     *diaglog.Logger

	sources []events.Source

	enabled      bool
	enabledStack []bool

	dragging        bool
	hoverSuppressed bool
	hoverPending    bool

	// gen invalidates delayed continuations scheduled before a StopAll or
	// teardown; continuations from an older generation no-op silently.
	gen uint64

	// timedGen re-arms the timed rehide: only the newest arm may fire.
	timedGen uint64

	nextDragObserver int
	dragObservers    map[int]func(bool)
}

// New builds a coordinator. It installs nothing until PerformSetup.
func New(cfg Config) *Coordinator {
	c := &Coordinator{
		desktop:       cfg.Desktop,
		sections:      cfg.Sections,
		settings:      cfg.Settings,
		factory:       cfg.Factory,
		dispatch:      cfg.Dispatcher,
		sched:         cfg.Scheduler,
		menu:          cfg.Menu,
		panel:         cfg.PanelFrame,
		ownIcon:       cfg.OwnIconFrame,
		diag:          cfg.Log,
		enabled:       true,
		dragObservers: make(map[int]func(bool)),
	}
	if c.sched == nil {
		c.sched = TimerScheduler{}
	}
	if c.panel == nil {
		c.panel = func() (geometry.Rect, bool) { return geometry.Rect{}, false }
	}
	if c.ownIcon == nil {
		c.ownIcon = func() (geometry.Rect, bool) { return geometry.Rect{}, false }
	}
	if c.diag == nil {
		c.diag = diaglog.NewNoOp()
	}
	return c
}

// PerformSetup installs every event source. A source that fails to install
// (missing input-monitoring permission, usually) is logged and left inert;
// the permission onboarding flow re-attempts setup later.
func (c *Coordinator) PerformSetup() {
	if c.sources != nil {
		return
	}
	entry := func(ev events.Event) {
		c.dispatch.Dispatch(func() { c.route(ev) })
	}

	monitorKinds := []events.Kind{
		events.LeftMouseDown,
		events.LeftMouseUp,
		events.LeftMouseDragged,
		events.RightMouseDown,
		events.ScrollWheel,
	}
	c.sources = []events.Source{
		c.factory.MouseMonitor(monitorKinds, entry),
		c.factory.MouseMovedTap(entry),
		c.factory.SpaceObserver(entry),
		c.factory.ScreenObserver(entry),
		c.factory.ControlItemObserver(entry),
	}
	for _, src := range c.sources {
		if err := src.Start(); err != nil {
			log.Printf("[coordinator] event source failed to start, feature inert: %v", err)
		}
	}
}

// TearDown stops every source and invalidates pending delayed work.
func (c *Coordinator) TearDown() {
	for _, src := range c.sources {
		src.Stop()
	}
	c.sources = nil
	c.gen++
}

// StopAll pushes the current enabled state and forces event handling off.
// Paired with StartAll it nests: unrelated callers (an editor overlay, a
// drag session) can each suspend and resume without clobbering one another.
func (c *Coordinator) StopAll() {
	c.enabledStack = append(c.enabledStack, c.enabled)
	c.enabled = false
	c.gen++
}

// StartAll restores the enabled state saved by the matching StopAll,
// defaulting to enabled when the stack is empty.
func (c *Coordinator) StartAll() {
	if n := len(c.enabledStack); n > 0 {
		c.enabled = c.enabledStack[n-1]
		c.enabledStack = c.enabledStack[:n-1]
	} else {
		c.enabled = true
	}
}

// IsEnabled reports whether handlers currently run.
func (c *Coordinator) IsEnabled() bool { return c.enabled }

// IsDraggingMenuBarItem reports the published drag latch.
func (c *Coordinator) IsDraggingMenuBarItem() bool { return c.dragging }

// HoverSuppressed reports the transient show-on-hover suppression flag.
func (c *Coordinator) HoverSuppressed() bool { return c.hoverSuppressed }

// OnDragChanged registers an observer of the drag latch (the appearance
// overlay suppresses its rendering during a drag). Returns an unregister
// function.
func (c *Coordinator) OnDragChanged(f func(bool)) (remove func()) {
	id := c.nextDragObserver
	c.nextDragObserver++
	c.dragObservers[id] = f
	return func() { delete(c.dragObservers, id) }
}

func (c *Coordinator) setDragging(dragging bool) {
	if c.dragging == dragging {
		return
	}
	c.dragging = dragging
	for _, f := range c.dragObservers {
		f(dragging)
	}
}

func (c *Coordinator) setSuppressed(suppressed bool, reason string) {
	if c.hoverSuppressed == suppressed {
		return
	}
	c.hoverSuppressed = suppressed
	event := diaglog.EventSuppressSet
	if !suppressed {
		event = diaglog.EventSuppressCleared
	}
	c.diag.Log(diaglog.LogEntry{
		Component: diaglog.ComponentCoordinator,
		Event:     event,
		Reason:    reason,
	})
}

// route fans one raw event out to its handlers. Handler order within one
// event is fixed: the suppression latch always observes a mouse-down before
// the click and rehide handlers act on it.
func (c *Coordinator) route(ev events.Event) {
	if !c.enabled || c.desktop == nil || c.sections == nil || c.settings == nil {
		return
	}
	switch ev.Kind {
	case events.MouseMoved,
		events.SpaceChanged,
		events.ScreenChanged,
		events.ControlItemFrameChanged:
		c.updateHover()
	case events.LeftMouseDown:
		c.latchSuppression(ev)
		c.handleLeftClick(ev)
		c.scheduleSmartRehide(ev)
	case events.RightMouseDown:
		c.latchSuppression(ev)
		c.handleRightClick(ev)
	case events.LeftMouseUp:
		c.handleLeftUp(ev)
	case events.LeftMouseDragged:
		c.handleDrag(ev)
	case events.ScrollWheel:
		c.handleScroll(ev)
	}
}

// after schedules f on the UI context once d elapses. The continuation
// no-ops silently when the coordinator was disabled or invalidated in the
// meantime; that is expected steady-state behavior, not a fault.
func (c *Coordinator) after(d time.Duration, f func()) {
	g := c.gen
	c.sched.AfterFunc(d, func() {
		c.dispatch.Dispatch(func() {
			if !c.enabled || g != c.gen {
				return
			}
			f()
		})
	})
}

// afterHover schedules a hover continuation. The pending flag must clear
// when the timer fires whether or not the continuation still applies;
// clearing it only inside the continuation would leave hover wedged after a
// StopAll during the delay.
func (c *Coordinator) afterHover(d time.Duration, f func()) {
	g := c.gen
	c.sched.AfterFunc(d, func() {
		c.dispatch.Dispatch(func() {
			c.hoverPending = false
			if !c.enabled || g != c.gen {
				return
			}
			f()
		})
	})
}
