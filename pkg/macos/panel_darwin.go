//go:build darwin

package macos

import (
	"image/color"

	"github.com/progrium/darwinkit/macos/appkit"
	"github.com/progrium/darwinkit/macos/foundation"

	"github.com/slipbar/slipbar/internal/geometry"
)

const (
	barPanelHeight = 36.0
	// Status window level, the same layer the menu bar items live on. The
	// panel sits one above so it is never obscured by them.
	barPanelLevel = 25 + 1
)

// BarPanel is the borderless floating strip shown just below the menu bar
// when the real bar has no room for the hidden items. It is an overflow
// surface, not a window the user interacts with through the window manager.
type BarPanel struct {
	panel   appkit.Panel
	visible bool
}

// NewBarPanel builds the panel offscreen. Must run on the main thread.
func NewBarPanel() *BarPanel {
	panel := appkit.PanelClass.Alloc().InitWithContentRectStyleMaskBackingDefer(
		foundation.Rect{Size: foundation.Size{Width: 1, Height: barPanelHeight}},
		appkit.WindowStyleMaskBorderless|appkit.WindowStyleMaskNonactivatingPanel,
		appkit.BackingStoreBuffered,
		false,
	)
	panel.SetLevel(appkit.WindowLevel(barPanelLevel))
	panel.SetOpaque(false)
	panel.SetHasShadow(true)
	panel.SetHidesOnDeactivate(false)
	panel.SetCollectionBehavior(
		appkit.WindowCollectionBehaviorCanJoinAllSpaces |
			appkit.WindowCollectionBehaviorStationary |
			appkit.WindowCollectionBehaviorIgnoresCycle,
	)
	return &BarPanel{panel: panel}
}

// Show places the panel flush against the trailing edge of screen, directly
// under its menu bar, and orders it front without stealing focus.
func (p *BarPanel) Show(screen geometry.Screen, width float64) {
	if width < 1 {
		width = 1
	}
	frame := geometry.NewRect(
		screen.Frame.MaxX()-width,
		screen.VisibleFrame.MaxY()-barPanelHeight,
		width,
		barPanelHeight,
	)
	p.panel.SetFrameDisplay(foundation.Rect{
		Origin: foundation.Point{X: frame.Origin.X, Y: frame.Origin.Y},
		Size:   foundation.Size{Width: frame.Size.Width, Height: frame.Size.Height},
	}, true)
	p.panel.OrderFrontRegardless()
	p.visible = true
}

// Hide orders the panel out. Safe to call when already hidden.
func (p *BarPanel) Hide() {
	p.panel.OrderOut(nil)
	p.visible = false
}

// Visible reports whether the panel is currently ordered in.
func (p *BarPanel) Visible() bool { return p.visible }

// Frame reports the panel's frame while visible; ok=false when hidden, so
// hit tests skip it entirely. Satisfies the coordinator's FrameFunc shape.
func (p *BarPanel) Frame() (geometry.Rect, bool) {
	if !p.visible {
		return geometry.Rect{}, false
	}
	f := p.panel.Frame()
	return geometry.NewRect(
		float64(f.Origin.X), float64(f.Origin.Y),
		float64(f.Size.Width), float64(f.Size.Height),
	), true
}

// SetTint paints the panel background so it blends with the wallpaper strip
// behind the menu bar. Alpha is fixed; the sampled color only carries hue.
func (p *BarPanel) SetTint(c color.NRGBA) {
	bg := appkit.Color_ColorWithSRGBRedGreenBlueAlpha(
		float64(c.R)/255, float64(c.G)/255, float64(c.B)/255, 0.9,
	)
	p.panel.SetBackgroundColor(bg)
}
