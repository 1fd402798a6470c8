package coordinator

import (
	"github.com/slipbar/slipbar/internal/config"
	"github.com/slipbar/slipbar/internal/diaglog"
	"github.com/slipbar/slipbar/internal/events"
	"github.com/slipbar/slipbar/internal/geometry"
	"github.com/slipbar/slipbar/internal/section"
)

// probe is one consistent read of the pointer and screen. Geometry that can
// shift between events (item frames, the app menu) is queried fresh at each
// predicate call instead.
type probe struct {
	mouse  geometry.Point
	screen geometry.Screen
}

// probe returns ok=false on transient unavailability (no main screen, no
// pointer); callers treat that as "predicate false" and no-op.
func (c *Coordinator) probe() (probe, bool) {
	mouse, ok := c.desktop.MouseLocation()
	if !ok {
		return probe{}, false
	}
	screen, ok := c.desktop.MainScreen()
	if !ok {
		return probe{}, false
	}
	return probe{mouse: mouse, screen: screen}, true
}

func (c *Coordinator) sentinel() (geometry.Rect, bool) {
	return c.sections.Section(section.AlwaysVisible).ControlItem().Frame()
}

func (c *Coordinator) inMenuBar(p probe) bool {
	sentinel, known := c.sentinel()
	return geometry.MouseInMenuBar(p.mouse, p.screen, sentinel, known)
}

func (c *Coordinator) inEmptySpace(p probe) bool {
	sentinel, known := c.sentinel()
	appMenu, _ := c.desktop.ApplicationMenuFrame(p.screen)
	items := c.desktop.MenuBarItemFrames(p.screen)
	return geometry.MouseInEmptyMenuBarSpace(p.mouse, p.screen, sentinel, known, appMenu, items)
}

func (c *Coordinator) inAppMenu(p probe) bool {
	appMenu, ok := c.desktop.ApplicationMenuFrame(p.screen)
	return ok && geometry.MouseInApplicationMenu(p.mouse, p.screen, appMenu)
}

func (c *Coordinator) inPanel(mouse geometry.Point) bool {
	frame, ok := c.panel()
	return ok && geometry.MouseInPanel(mouse, frame)
}

func (c *Coordinator) inOwnIcon(mouse geometry.Point) bool {
	frame, ok := c.ownIcon()
	return ok && geometry.MouseInControlIcon(mouse, frame)
}

// ── Show on hover ────────────────────────────────────────────────────────────

// updateHover runs on every mouse-moved tap event and is re-evaluated on
// space changes, screen-parameter changes and control item frame changes,
// since the menu bar can slide in or out of view in fullscreen without the
// mouse moving at all.
func (c *Coordinator) updateHover() {
	s := c.settings()
	if !s.ShowOnHover || c.hoverSuppressed || c.dragging || c.hoverPending {
		return
	}
	p, ok := c.probe()
	if !ok {
		return
	}

	if c.sections.IsHidden(section.Hidden) {
		if !c.inEmptySpace(p) {
			return
		}
		c.hoverPending = true
		c.afterHover(s.HoverDelay(), func() {
			// Mandatory re-check: the mouse may have left during the
			// delay, and showing anyway is a visible glitch.
			if !c.settings().ShowOnHover || c.hoverSuppressed {
				return
			}
			q, ok := c.probe()
			if !ok || !c.inEmptySpace(q) {
				c.diag.Log(diaglog.LogEntry{
					Component: diaglog.ComponentCoordinator,
					Event:     diaglog.EventHoverCancelled,
					Reason:    "mouse left empty space during delay",
				})
				return
			}
			c.sections.Show(section.Hidden)
			c.armTimedRehide()
			c.diag.Log(diaglog.LogEntry{
				Component: diaglog.ComponentCoordinator,
				Event:     diaglog.EventHoverShow,
			})
		})
		return
	}

	// Section is shown: hide once the pointer has left both the menu bar
	// and the bar panel.
	if c.inMenuBar(p) || c.inPanel(p.mouse) {
		return
	}
	c.hoverPending = true
	c.afterHover(s.HoverDelay(), func() {
		if !c.settings().ShowOnHover || c.hoverSuppressed {
			return
		}
		q, ok := c.probe()
		if !ok {
			return
		}
		if c.inMenuBar(q) || c.inPanel(q.mouse) {
			c.diag.Log(diaglog.LogEntry{
				Component: diaglog.ComponentCoordinator,
				Event:     diaglog.EventHoverCancelled,
				Reason:    "mouse returned during delay",
			})
			return
		}
		c.sections.Hide(section.Hidden)
		c.diag.Log(diaglog.LogEntry{
			Component: diaglog.ComponentCoordinator,
			Event:     diaglog.EventHoverHide,
		})
	})
}

// ── Hover suppression latch ──────────────────────────────────────────────────

// shouldSuppressHover is the suppression policy for a mouse-down: clicking
// this app's own icon while nothing is shown, or clicking into the
// application menu, makes a hover-triggered auto-show semantically wrong for
// the rest of the interaction. Kept as one function so the conditions can be
// tuned without touching the routing.
func (c *Coordinator) shouldSuppressHover(p probe) bool {
	if c.inOwnIcon(p.mouse) && !c.sections.AnyVisible() {
		return true
	}
	return c.inAppMenu(p)
}

// latchSuppression fires on both mouse-down kinds, before the click and
// rehide handlers. It only sets the flag; clearing is owned by the click and
// rehide handlers' bookkeeping.
func (c *Coordinator) latchSuppression(ev events.Event) {
	p, ok := c.probe()
	if !ok {
		return
	}
	if c.shouldSuppressHover(p) {
		c.setSuppressed(true, "clicked "+ev.Kind.String()+" inside item or app menu")
	}
}

// ── Show/hide on click ───────────────────────────────────────────────────────

func (c *Coordinator) handleLeftClick(ev events.Event) {
	p, ok := c.probe()
	if !ok || !c.inEmptySpace(p) {
		return
	}
	// A blank-space click always cancels any pending hover auto-show/hide,
	// independent of the show-on-click setting.
	c.setSuppressed(true, "blank-space click")

	s := c.settings()
	if !s.ShowOnClick {
		return
	}
	target := section.Hidden
	if s.AlwaysHiddenEnabled && ev.Modifiers.Has(s.AlwaysHiddenMod()) {
		target = section.AlwaysHidden
	}
	c.after(clickToggleDelay, func() {
		c.sections.Toggle(target)
		if !c.sections.IsHidden(target) {
			c.armTimedRehide()
		}
		c.diag.Log(diaglog.LogEntry{
			Component: diaglog.ComponentCoordinator,
			Event:     diaglog.EventClickToggle,
			Payload:   map[string]interface{}{"section": target.String()},
		})
	})
}

// ── Secondary context menu ───────────────────────────────────────────────────

func (c *Coordinator) handleRightClick(ev events.Event) {
	if c.menu == nil || !c.settings().SecondaryContextMenu {
		return
	}
	p, ok := c.probe()
	if !ok || !c.inEmptySpace(p) {
		return
	}
	c.setSuppressed(true, "blank-space right-click")
	at := p.mouse
	c.after(contextMenuDelay, func() {
		c.menu.ShowContextMenu(at)
		c.diag.Log(diaglog.LogEntry{
			Component: diaglog.ComponentCoordinator,
			Event:     diaglog.EventContextMenu,
		})
	})
}

// ── Smart rehide ─────────────────────────────────────────────────────────────

// topmostTitledWindow walks the front-to-back window list for the first
// normal-layer, titled, on-screen window under the point. Desktop-level and
// overlay windows are excluded by the layer check.
func topmostTitledWindow(windows []geometry.Window, at geometry.Point) (geometry.Window, bool) {
	for _, w := range windows {
		if w.Layer != 0 || !w.OnScreen || w.Title == "" {
			continue
		}
		if w.Frame.Contains(at) {
			return w, true
		}
	}
	return geometry.Window{}, false
}

func (c *Coordinator) scheduleSmartRehide(ev events.Event) {
	s := c.settings()
	if !s.AutoRehide || s.RehideStrategy != config.RehideSmart {
		return
	}
	p, ok := c.probe()
	if !ok {
		return
	}
	if c.inOwnIcon(p.mouse) || c.inPanel(p.mouse) {
		return
	}
	if !c.sections.AnyVisible() || c.inMenuBar(p) {
		return
	}

	spaceBefore := c.desktop.ActiveSpaceID()
	clicked := p.mouse
	c.after(smartRehideDelay, func() {
		if c.desktop.ActiveSpaceID() != spaceBefore {
			// A space-switching click is ambiguous; default to hiding.
			c.rehide("space changed")
			return
		}
		win, ok := topmostTitledWindow(c.desktop.OnScreenWindows(), clicked)
		if !ok {
			c.skipRehide("no titled window under click")
			return
		}
		app, ok := c.desktop.AppInfo(win.OwnerPID)
		if !ok {
			c.skipRehide("window owner unknown")
			return
		}
		// The Dock is the explicit exception: clicking it always leaves
		// the menu bar context.
		if app.BundleID == dockBundleID {
			c.rehide("clicked the Dock")
			return
		}
		if app.Active && app.Policy == geometry.PolicyRegular {
			c.rehide("clicked into a foreground application")
			return
		}
		c.skipRehide("owner inactive or non-regular policy")
	})
}

func (c *Coordinator) rehide(reason string) {
	c.sections.Hide(section.Hidden)
	// Rehide ends the interaction; hover may auto-show again afterwards.
	c.setSuppressed(false, "rehide")
	c.diag.Log(diaglog.LogEntry{
		Component: diaglog.ComponentCoordinator,
		Event:     diaglog.EventRehide,
		Reason:    reason,
	})
}

func (c *Coordinator) skipRehide(reason string) {
	c.diag.Log(diaglog.LogEntry{
		Component: diaglog.ComponentCoordinator,
		Event:     diaglog.EventRehideSkipped,
		Reason:    reason,
	})
}

// armTimedRehide (timed strategy) hides a fixed interval after the newest
// show. Re-arming invalidates older arms via timedGen.
func (c *Coordinator) armTimedRehide() {
	s := c.settings()
	if !s.AutoRehide || s.RehideStrategy != config.RehideTimed {
		return
	}
	c.timedGen++
	g := c.timedGen
	c.after(s.RehideInterval(), func() {
		if g != c.timedGen || !c.sections.AnyVisible() {
			return
		}
		// Keep the sections up while the user is still in the bar.
		if p, ok := c.probe(); ok && c.inMenuBar(p) {
			c.armTimedRehide()
			return
		}
		c.rehide("timed interval elapsed")
	})
}

// ── Drag to rearrange ────────────────────────────────────────────────────────

func (c *Coordinator) handleDrag(ev events.Event) {
	if c.dragging || !ev.Modifiers.Has(events.ModCommand) {
		return
	}
	p, ok := c.probe()
	if !ok || !c.inMenuBar(p) {
		return
	}
	// Latched: subsequent drag events do not re-trigger.
	c.setDragging(true)
	if c.settings().ShowAllSectionsOnUserDrag {
		c.sections.Show(section.AlwaysHidden)
	} else {
		// Expose the dividers so the hidden item can be dragged out,
		// without collapsing the sections themselves.
		c.sections.BeginDividerReveal()
	}
	c.diag.Log(diaglog.LogEntry{
		Component: diaglog.ComponentCoordinator,
		Event:     diaglog.EventDragBegin,
	})
}

func (c *Coordinator) handleLeftUp(ev events.Event) {
	if c.dragging {
		c.setDragging(false)
		c.sections.EndDividerReveal()
		c.diag.Log(diaglog.LogEntry{
			Component: diaglog.ComponentCoordinator,
			Event:     diaglog.EventDragEnd,
		})
	}

	// Re-evaluate the suppression latch: once the interaction ends with
	// the pointer away from the bar, hover-to-show is meaningful again.
	if !c.hoverSuppressed {
		return
	}
	p, ok := c.probe()
	if !ok {
		return
	}
	if !c.inMenuBar(p) && !c.inOwnIcon(p.mouse) && !c.inPanel(p.mouse) {
		c.setSuppressed(false, "mouse-up outside menu bar")
	}
}

// ── Scroll to show/hide ──────────────────────────────────────────────────────

func (c *Coordinator) handleScroll(ev events.Event) {
	if !c.settings().ShowOnScroll {
		return
	}
	p, ok := c.probe()
	if !ok || !c.inMenuBar(p) {
		return
	}
	// Average the axes so diagonal trackpad gestures behave; the dead zone
	// swallows per-event jitter.
	avg := (ev.ScrollDeltaX + ev.ScrollDeltaY) / 2
	switch {
	case avg > scrollThreshold:
		c.sections.Show(section.Hidden)
		c.armTimedRehide()
		c.diag.Log(diaglog.LogEntry{
			Component: diaglog.ComponentCoordinator,
			Event:     diaglog.EventScrollShow,
			Payload:   map[string]interface{}{"delta": avg},
		})
	case avg < -scrollThreshold:
		c.sections.Hide(section.Hidden)
		c.diag.Log(diaglog.LogEntry{
			Component: diaglog.ComponentCoordinator,
			Event:     diaglog.EventScrollHide,
			Payload:   map[string]interface{}{"delta": avg},
		})
	}
}
