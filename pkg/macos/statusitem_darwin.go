//go:build darwin

package macos

import (
	"github.com/progrium/darwinkit/macos/appkit"

	"github.com/slipbar/slipbar/internal/geometry"
	"github.com/slipbar/slipbar/internal/section"
)

// SF Symbol names for the three section control items. Symbols render
// correctly in both menu bar appearances without shipping image assets.
const (
	SymbolPrimary = "line.3.horizontal"
	SymbolDivider = "chevron.left"
)

// StatusItem wraps one NSStatusItem as a section control item handle.
type StatusItem struct {
	item   appkit.StatusItem
	symbol string
	// added mirrors whether the item currently exists in the status bar.
	added bool
}

var _ section.StatusItemHandle = (*StatusItem)(nil)

// NewStatusItem creates a status item rendering the given SF Symbol. Items
// are created trailing-most first; macOS inserts each new item to the left
// of existing ones.
func NewStatusItem(symbol string) *StatusItem {
	s := &StatusItem{symbol: symbol}
	s.Add()
	return s
}

// ApplyState renders a control item state. Hiding with the expanded flag
// stretches the item so every sibling to its left is pushed past the screen
// edge; that is the entire hiding mechanism.
func (s *StatusItem) ApplyState(state section.ControlItemState, showsDivider bool) {
	if !s.added {
		return
	}
	s.item.SetLength(state.Length())
	button := s.item.Button()
	if state.ItemsHidden && state.Expanded {
		// An expanded item shows no glyph; its visible part is off screen
		// anyway and an image would stretch with the frame.
		button.SetImage(appkit.Image{})
		return
	}
	symbol := s.symbol
	if !showsDivider && symbol == SymbolDivider {
		// Divider glyphs are optional; collapse to a blank standard-width
		// item when the user turned them off.
		button.SetImage(appkit.Image{})
		return
	}
	button.SetImage(appkit.Image_ImageWithSystemSymbolNameAccessibilityDescription(symbol, ""))
}

// Frame reports the item's window frame in global AppKit coordinates.
func (s *StatusItem) Frame() (geometry.Rect, bool) {
	if !s.added {
		return geometry.Rect{}, false
	}
	button := s.item.Button()
	window := button.Window()
	if window.Ptr() == nil {
		return geometry.Rect{}, false
	}
	return rectFromFoundation(window.Frame()), true
}

// Remove releases the status bar entry. Used when a section is disabled.
func (s *StatusItem) Remove() {
	if !s.added {
		return
	}
	appkit.StatusBar_SystemStatusBar().RemoveStatusItem(s.item)
	s.added = false
}

// Add (re-)creates the status bar entry.
func (s *StatusItem) Add() {
	if s.added {
		return
	}
	s.item = appkit.StatusBar_SystemStatusBar().StatusItemWithLength(appkit.VariableStatusItemLength)
	s.item.SetVisible(true)
	s.added = true
	s.ApplyState(section.ShowItems(), true)
}

// SetMenu attaches the right-click menu to the item's button.
func (s *StatusItem) SetMenu(menu appkit.Menu) {
	if s.added {
		s.item.SetMenu(menu)
	}
}
