// Package section models the three menu bar sections and the status-bar
// control items that make their boundaries real. The event coordinator
// mutates sections; everything else observes them.
package section

import "log"

// Name identifies one of the three fixed sections. They are created once at
// startup and live for the process lifetime.
type Name int

const (
	AlwaysVisible Name = iota
	Hidden
	AlwaysHidden
)

// Names lists the sections in nesting order, outermost first.
func Names() []Name { return []Name{AlwaysVisible, Hidden, AlwaysHidden} }

func (n Name) String() string {
	switch n {
	case AlwaysVisible:
		return "always-visible"
	case Hidden:
		return "hidden"
	case AlwaysHidden:
		return "always-hidden"
	default:
		return "unknown"
	}
}

// ParseName maps the string form back to a Name.
func ParseName(s string) (Name, bool) {
	switch s {
	case "always-visible":
		return AlwaysVisible, true
	case "hidden":
		return Hidden, true
	case "always-hidden":
		return AlwaysHidden, true
	default:
		return 0, false
	}
}

// Section is one logical grouping of menu bar items controlled as a unit.
type Section struct {
	name    Name
	enabled bool
	item    *ControlItem
}

// Name returns the section's fixed identity.
func (s *Section) Name() Name { return s.name }

// Enabled reports whether the section participates in the menu bar. Only
// AlwaysHidden can be disabled.
func (s *Section) Enabled() bool { return s.enabled }

// IsHidden is derived from the control item's display state, never stored
// separately.
func (s *Section) IsHidden() bool { return s.item.State().ItemsHidden }

// ControlItem returns the section's status bar handle.
func (s *Section) ControlItem() *ControlItem { return s.item }

// Manager owns the three sections and enforces the nesting invariant on
// every operation:
//
//	AlwaysHidden shown ⇒ Hidden shown ⇒ AlwaysVisible shown
//
// Hiding an outer section forces inner sections hidden; showing an inner
// section forces outer sections shown. All methods are confined to the main
// UI context; Manager performs no locking of its own.
type Manager struct {
	sections map[Name]*Section

	nextObserver int
	observers    map[int]func(Name)

	// assert is the development-build invariant hook. In production it
	// logs and the operation clamps to the nearest valid state.
	assert func(msg string)
}

// NewManager builds the three sections over the given handles.
func NewManager(alwaysVisible, hidden, alwaysHidden StatusItemHandle) *Manager {
	m := &Manager{
		sections: map[Name]*Section{
			AlwaysVisible: {name: AlwaysVisible, enabled: true, item: NewControlItem(alwaysVisible)},
			Hidden:        {name: Hidden, enabled: true, item: NewControlItem(hidden)},
			AlwaysHidden:  {name: AlwaysHidden, enabled: true, item: NewControlItem(alwaysHidden)},
		},
		observers: make(map[int]func(Name)),
		assert: func(msg string) {
			log.Printf("[section] invariant violation: %s", msg)
		},
	}
	// The controllable sections start hidden; showing is always an explicit
	// user or coordinator action.
	m.sections[Hidden].item.SetState(HideItems(true))
	m.sections[AlwaysHidden].item.SetState(HideItems(true))
	return m
}

// SetAssertFunc replaces the invariant hook (tests install a failing one).
func (m *Manager) SetAssertFunc(f func(msg string)) { m.assert = f }

// Section returns the section with the given name.
func (m *Manager) Section(name Name) *Section { return m.sections[name] }

// Observe registers a callback fired after any section's visible state or
// enablement changes. The returned function unregisters it.
func (m *Manager) Observe(f func(Name)) (unobserve func()) {
	id := m.nextObserver
	m.nextObserver++
	m.observers[id] = f
	return func() { delete(m.observers, id) }
}

func (m *Manager) notify(name Name) {
	for _, f := range m.observers {
		f(name)
	}
}

// IsHidden reports the section's derived hidden state. Disabled sections
// report hidden.
func (m *Manager) IsHidden(name Name) bool {
	s := m.sections[name]
	if !s.enabled {
		return true
	}
	return s.IsHidden()
}

// AnyVisible reports whether at least one controllable section (Hidden or
// AlwaysHidden) is currently shown.
func (m *Manager) AnyVisible() bool {
	return !m.IsHidden(Hidden) || !m.IsHidden(AlwaysHidden)
}

// Show makes the named section visible, forcing every outer section visible
// with it. Showing an already-shown section is a no-op.
func (m *Manager) Show(name Name) {
	switch name {
	case AlwaysVisible:
		m.setHidden(AlwaysVisible, false)
	case Hidden:
		m.setHidden(AlwaysVisible, false)
		m.setHidden(Hidden, false)
	case AlwaysHidden:
		m.setHidden(AlwaysVisible, false)
		m.setHidden(Hidden, false)
		m.setHidden(AlwaysHidden, false)
	}
}

// Hide makes the named section hidden, forcing every inner section hidden
// with it. Hiding an already-hidden section is a no-op. AlwaysVisible can
// never hide; the call clamps to hiding the inner sections only.
func (m *Manager) Hide(name Name) {
	switch name {
	case AlwaysVisible:
		m.assert("attempt to hide the always-visible section")
		m.setHidden(Hidden, true)
		m.setHidden(AlwaysHidden, true)
	case Hidden:
		m.setHidden(Hidden, true)
		m.setHidden(AlwaysHidden, true)
	case AlwaysHidden:
		m.setHidden(AlwaysHidden, true)
	}
}

// Toggle flips the named section between shown and hidden, preserving the
// nesting invariant through Show/Hide.
func (m *Manager) Toggle(name Name) {
	if m.IsHidden(name) {
		m.Show(name)
	} else {
		m.Hide(name)
	}
}

// setHidden applies one section's state change through its control item.
// Disabled sections are skipped: they have no status bar presence to drive.
func (m *Manager) setHidden(name Name, hidden bool) {
	s := m.sections[name]
	if !s.enabled {
		return
	}
	if name == AlwaysVisible && hidden {
		// Clamp: the outermost section has no hidden rendering.
		return
	}
	if s.IsHidden() == hidden {
		return
	}
	if hidden {
		s.item.SetState(HideItems(true))
	} else {
		s.item.SetState(ShowItems())
	}
	m.notify(name)
}

// SetEnabled enables or disables a section. Only AlwaysHidden may be
// disabled; requests for other sections clamp to enabled.
func (m *Manager) SetEnabled(name Name, enabled bool) {
	s := m.sections[name]
	if !enabled && name != AlwaysHidden {
		m.assert("attempt to disable section " + name.String())
		return
	}
	if s.enabled == enabled {
		return
	}
	s.enabled = enabled
	if enabled {
		s.item.handle.Add()
		// A re-enabled inner section starts hidden.
		s.item.SetState(HideItems(true))
	} else {
		s.item.handle.Remove()
	}
	m.notify(name)
}

// SetShowsDividers toggles the divider glyph on all control items.
func (m *Manager) SetShowsDividers(show bool) {
	for _, name := range Names() {
		m.sections[name].item.SetShowsDivider(show)
	}
}

// BeginDividerReveal collapses every hidden section's control item to its
// standard width without showing the section, so a command-drag can reach
// the divider of a hidden section. Visible state is unchanged.
func (m *Manager) BeginDividerReveal() {
	for _, name := range Names() {
		s := m.sections[name]
		if s.enabled && s.IsHidden() {
			s.item.SetState(HideItems(false))
		}
	}
}

// EndDividerReveal restores the expanded width of sections that are still
// hidden.
func (m *Manager) EndDividerReveal() {
	for _, name := range Names() {
		s := m.sections[name]
		if s.enabled && s.IsHidden() {
			s.item.SetState(HideItems(true))
		}
	}
}
