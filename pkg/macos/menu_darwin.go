//go:build darwin

package macos

import (
	"github.com/progrium/darwinkit/macos/appkit"
	"github.com/progrium/darwinkit/macos/foundation"
	"github.com/progrium/darwinkit/objc"

	"github.com/slipbar/slipbar/internal/geometry"
)

// MenuActions are the callbacks the context menu invokes. Each runs on the
// main thread via the menu item target.
type MenuActions struct {
	ToggleHidden       func()
	ToggleAlwaysHidden func()
	ToggleBarPanel     func()
	OpenSettings       func()
	CheckForUpdates    func()
	Quit               func()
}

// ContextMenu presents slipbar's secondary menu at an arbitrary screen
// location (blank-space right-clicks have no status item to anchor on).
type ContextMenu struct {
	menu appkit.Menu
}

// NewContextMenu builds the menu once; items are enabled statically and the
// handlers decide what applies.
func NewContextMenu(actions MenuActions) *ContextMenu {
	menu := appkit.NewMenuWithTitle("Slipbar")

	addItem := func(title, keyEquiv string, action func()) {
		if action == nil {
			return
		}
		item := appkit.NewMenuItemWithAction(title, keyEquiv, func(objc.Object) { action() })
		menu.AddItem(item)
	}

	addItem("Toggle Hidden Section", "h", actions.ToggleHidden)
	addItem("Toggle Always-Hidden Section", "", actions.ToggleAlwaysHidden)
	addItem("Show Hidden Items Below Bar", "b", actions.ToggleBarPanel)
	menu.AddItem(appkit.MenuItem_SeparatorItem())
	addItem("Settings…", ",", actions.OpenSettings)
	addItem("Check for Updates…", "", actions.CheckForUpdates)
	menu.AddItem(appkit.MenuItem_SeparatorItem())
	addItem("Quit Slipbar", "q", actions.Quit)

	return &ContextMenu{menu: menu}
}

// ShowContextMenu pops the menu up at the given global location. Satisfies
// the coordinator's MenuPresenter interface.
func (m *ContextMenu) ShowContextMenu(at geometry.Point) {
	m.menu.PopUpMenuPositioningItemAtLocationInView(
		nil,
		foundation.Point{X: at.X, Y: at.Y},
		appkit.View{},
	)
}

// Menu exposes the underlying NSMenu so it can double as a status item menu.
func (m *ContextMenu) Menu() appkit.Menu { return m.menu }
