package geometry

// notchPadding vertically pads the reported notch frame by one point so a
// pointer resting exactly on the cutout's edge still counts as inside it.
const notchPadding = 1.0

// panelMargin outsets the bar panel's frame on all sides before hit testing,
// so the pointer drifting a few points past the panel edge does not flicker
// the hide handler.
const panelMargin = 15.0

// MouseInMenuBar reports whether mouse lies in the menu bar band of screen:
// the vertical strip between the visible frame's top and the full frame's
// top. sentinel is the window frame of the always-visible control item; when
// sentinelKnown is true the item must be vertically on screen, which
// distinguishes "the OS is currently hiding the menu bar" (fullscreen,
// auto-hide) from a pointer that merely has a high Y coordinate.
func MouseInMenuBar(mouse Point, screen Screen, sentinel Rect, sentinelKnown bool) bool {
	if screen.MenuBarHeight() <= 0 {
		return false
	}
	if sentinelKnown {
		if sentinel.MinY() < screen.Frame.MinY() || sentinel.MaxY() > screen.Frame.MaxY() {
			return false
		}
	}
	return mouse.Y > screen.VisibleFrame.MaxY() && mouse.Y <= screen.Frame.MaxY() &&
		mouse.X >= screen.Frame.MinX() && mouse.X < screen.Frame.MaxX()
}

// MouseInApplicationMenu reports whether mouse lies in the frontmost app's
// menu region. The OS-reported frame can start mid-screen (it excludes the
// Apple menu on some configurations), so the leading edge is normalized to
// the screen's leading edge first; without that, the leftmost sliver of the
// menu bar would read as empty space.
func MouseInApplicationMenu(mouse Point, screen Screen, appMenu Rect) bool {
	if appMenu.IsEmpty() {
		return false
	}
	normalized := NewRect(
		screen.Frame.MinX(),
		appMenu.MinY(),
		appMenu.MaxX()-screen.Frame.MinX(),
		appMenu.Size.Height,
	)
	return normalized.Contains(mouse)
}

// MouseInMenuBarItem reports whether mouse lies inside any of the given menu
// bar item frames. Callers must query the frames fresh for every test; items
// shift while the mouse moves.
func MouseInMenuBarItem(mouse Point, itemFrames []Rect) bool {
	for _, frame := range itemFrames {
		if frame.Contains(mouse) {
			return true
		}
	}
	return false
}

// MouseInNotch reports whether the screen has a notch cutout and mouse lies
// inside it, padded by one point vertically.
func MouseInNotch(mouse Point, screen Screen) bool {
	if screen.Notch == nil {
		return false
	}
	return screen.Notch.InsetBy(0, -notchPadding).Contains(mouse)
}

// MouseInEmptyMenuBarSpace composes the four menu bar predicates: the mouse
// is in the bar but over neither the application menu, an item, nor the
// notch. This is the gate for every click/hover-on-blank-space feature.
func MouseInEmptyMenuBarSpace(mouse Point, screen Screen, sentinel Rect, sentinelKnown bool, appMenu Rect, itemFrames []Rect) bool {
	return MouseInMenuBar(mouse, screen, sentinel, sentinelKnown) &&
		!MouseInApplicationMenu(mouse, screen, appMenu) &&
		!MouseInMenuBarItem(mouse, itemFrames) &&
		!MouseInNotch(mouse, screen)
}

// MouseInPanel reports whether mouse lies within the floating bar panel's
// frame, outset by the forgiveness margin.
func MouseInPanel(mouse Point, panel Rect) bool {
	if panel.IsEmpty() {
		return false
	}
	return panel.InsetBy(-panelMargin, -panelMargin).Contains(mouse)
}

// MouseInControlIcon reports whether mouse lies within the app's own primary
// status icon frame.
func MouseInControlIcon(mouse Point, icon Rect) bool {
	return icon.Contains(mouse)
}
