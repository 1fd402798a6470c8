package section

import "github.com/slipbar/slipbar/internal/geometry"

// ControlItemState describes how a section's status-bar handle presents
// itself. There are exactly two shapes: the section's items are shown, or
// they are hidden, with a flag saying whether the handle is expanded.
type ControlItemState struct {
	// ItemsHidden is false for the ShowItems shape, true for HideItems.
	ItemsHidden bool
	// Expanded only applies when ItemsHidden is true. An expanded handle
	// takes an enormous width, pushing every sibling item past the screen
	// edge. That is the only hiding mechanism available to us: the OS owns
	// status item layout, and removing our own item would collide with the
	// OS's native item-removal semantics.
	Expanded bool
}

// The two shapes, as constructors.

// ShowItems is the state of a control item whose section is visible.
func ShowItems() ControlItemState {
	return ControlItemState{}
}

// HideItems is the state of a control item whose section is hidden.
func HideItems(expanded bool) ControlItemState {
	return ControlItemState{ItemsHidden: true, Expanded: expanded}
}

// Status item lengths, in points. ExpandedLength is deliberately far wider
// than any display so the pushed items can never scroll back into view.
const (
	StandardLength = 25.0
	ExpandedLength = 10000.0
)

// Length returns the status item length this state renders at.
func (s ControlItemState) Length() float64 {
	if s.ItemsHidden && s.Expanded {
		return ExpandedLength
	}
	return StandardLength
}

// StatusItemHandle is the OS-facing half of a control item: a persistent
// status bar entry. pkg/macos implements it over NSStatusItem; tests use a
// fake.
type StatusItemHandle interface {
	// ApplyState renders the given state. showsDivider selects whether the
	// handle draws its divider glyph while collapsed.
	ApplyState(state ControlItemState, showsDivider bool)
	// Frame returns the handle's current window frame in global
	// coordinates, ok=false while the item has no window.
	Frame() (geometry.Rect, bool)
	// Remove releases the status bar entry (used when a section is
	// disabled). Add re-creates it.
	Remove()
	Add()
}

// ControlItem is one persistent status bar entry delimiting a section
// boundary.
type ControlItem struct {
	handle       StatusItemHandle
	state        ControlItemState
	showsDivider bool
}

// NewControlItem wraps handle in the ShowItems state.
func NewControlItem(handle StatusItemHandle) *ControlItem {
	ci := &ControlItem{handle: handle, state: ShowItems()}
	handle.ApplyState(ci.state, ci.showsDivider)
	return ci
}

// State returns the current display state.
func (ci *ControlItem) State() ControlItemState { return ci.state }

// SetState renders a new display state. Setting the current state is a
// no-op.
func (ci *ControlItem) SetState(state ControlItemState) {
	if state == ci.state {
		return
	}
	ci.state = state
	ci.handle.ApplyState(state, ci.showsDivider)
}

// SetShowsDivider toggles the divider glyph and re-renders.
func (ci *ControlItem) SetShowsDivider(show bool) {
	if show == ci.showsDivider {
		return
	}
	ci.showsDivider = show
	ci.handle.ApplyState(ci.state, ci.showsDivider)
}

// Frame returns the item's live window frame.
func (ci *ControlItem) Frame() (geometry.Rect, bool) {
	return ci.handle.Frame()
}

// Position returns the screen-relative X of the item's trailing edge,
// re-derived from the live window frame. The bar panel is placed in the
// strip trailing this edge. Items with no window report ok=false.
func (ci *ControlItem) Position() (float64, bool) {
	frame, ok := ci.handle.Frame()
	if !ok {
		return 0, false
	}
	return frame.MaxX(), true
}
