package geometry

import "testing"

// testScreen is a 1600x1000 display with a 24pt menu bar.
func testScreen() Screen {
	return Screen{
		Frame:        NewRect(0, 0, 1600, 1000),
		VisibleFrame: NewRect(0, 80, 1600, 896), // dock below, menu bar above
	}
}

func sentinelOnScreen() Rect {
	return NewRect(1200, 978, 20, 22)
}

func TestRectContains_EdgeSemantics(t *testing.T) {
	r := NewRect(10, 10, 20, 20)

	tests := []struct {
		name string
		p    Point
		want bool
	}{
		{"interior", Point{20, 20}, true},
		{"min edges inclusive", Point{10, 10}, true},
		{"max x exclusive", Point{30, 20}, false},
		{"max y exclusive", Point{20, 30}, false},
		{"outside", Point{5, 5}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.Contains(tt.p); got != tt.want {
				t.Errorf("Contains(%v) = %v, want %v", tt.p, got, tt.want)
			}
		})
	}
}

func TestMouseInMenuBar(t *testing.T) {
	screen := testScreen()
	sentinel := sentinelOnScreen()

	tests := []struct {
		name          string
		mouse         Point
		sentinel      Rect
		sentinelKnown bool
		want          bool
	}{
		{"inside band", Point{400, 988}, sentinel, true, true},
		{"top edge inclusive", Point{400, 1000}, sentinel, true, true},
		{"below band", Point{400, 976}, sentinel, true, false},
		{"off screen x", Point{-10, 988}, sentinel, true, false},
		{"sentinel off screen means bar hidden", Point{400, 988}, NewRect(1200, 1010, 20, 22), true, false},
		{"sentinel unknown falls back to band", Point{400, 988}, Rect{}, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MouseInMenuBar(tt.mouse, screen, tt.sentinel, tt.sentinelKnown)
			if got != tt.want {
				t.Errorf("MouseInMenuBar(%v) = %v, want %v", tt.mouse, got, tt.want)
			}
		})
	}
}

func TestMouseInApplicationMenu_NormalizesLeadingEdge(t *testing.T) {
	screen := testScreen()
	// OS reports the app menu starting mid-screen (x=40), e.g. past the
	// Apple menu. The region left of x=40 must still count as app menu,
	// never as empty space.
	appMenu := NewRect(40, 976, 300, 24)

	if !MouseInApplicationMenu(Point{10, 988}, screen, appMenu) {
		t.Error("point left of the reported frame should hit after normalization")
	}
	if !MouseInApplicationMenu(Point{200, 988}, screen, appMenu) {
		t.Error("point inside the reported frame should hit")
	}
	if MouseInApplicationMenu(Point{400, 988}, screen, appMenu) {
		t.Error("point past the trailing edge should miss")
	}
	if MouseInApplicationMenu(Point{200, 988}, screen, Rect{}) {
		t.Error("empty app menu frame should never hit")
	}
}

func TestMouseInNotch_Padding(t *testing.T) {
	screen := testScreen()
	notch := NewRect(700, 978, 200, 22)
	screen.Notch = &notch

	if !MouseInNotch(Point{800, 988}, screen) {
		t.Error("point inside notch should hit")
	}
	// One point below the notch's bottom edge: covered by the 1pt pad.
	if !MouseInNotch(Point{800, 977.5}, screen) {
		t.Error("point within vertical padding should hit")
	}
	if MouseInNotch(Point{800, 976}, screen) {
		t.Error("point below padded notch should miss")
	}
	if MouseInNotch(Point{800, 988}, testScreen()) {
		t.Error("screen without notch should never hit")
	}
}

// The composite predicate must be false whenever any exclusion conjunct is
// true, even for abutting frames with zero gap between them.
func TestMouseInEmptyMenuBarSpace_Composition(t *testing.T) {
	screen := testScreen()
	notch := NewRect(700, 976, 200, 24)
	screen.Notch = &notch
	sentinel := sentinelOnScreen()

	appMenu := NewRect(0, 976, 300, 24)
	// First item frame directly abuts the application menu: no gap.
	items := []Rect{
		NewRect(300, 976, 40, 24),
		NewRect(340, 976, 40, 24),
	}

	tests := []struct {
		name  string
		mouse Point
		want  bool
	}{
		{"inside app menu", Point{150, 988}, false},
		{"app menu / item boundary", Point{300, 988}, false},
		{"inside item", Point{320, 988}, false},
		{"item / item boundary", Point{340, 988}, false},
		{"just past last item", Point{380, 988}, true},
		{"inside notch", Point{800, 988}, false},
		{"empty space right of notch", Point{950, 988}, true},
		{"below menu bar", Point{950, 900}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MouseInEmptyMenuBarSpace(tt.mouse, screen, sentinel, true, appMenu, items)
			if got != tt.want {
				t.Errorf("MouseInEmptyMenuBarSpace(%v) = %v, want %v", tt.mouse, got, tt.want)
			}
			// Cross-check the invariant directly.
			if got && (MouseInApplicationMenu(tt.mouse, screen, appMenu) ||
				MouseInMenuBarItem(tt.mouse, items) ||
				MouseInNotch(tt.mouse, screen)) {
				t.Error("empty space reported true while an exclusion predicate is true")
			}
		})
	}
}

func TestMouseInPanel_Margin(t *testing.T) {
	panel := NewRect(500, 700, 400, 200)

	if !MouseInPanel(Point{600, 750}, panel) {
		t.Error("point inside panel should hit")
	}
	if !MouseInPanel(Point{490, 750}, panel) {
		t.Error("point within 15pt margin should hit")
	}
	if MouseInPanel(Point{480, 750}, panel) {
		t.Error("point past the margin should miss")
	}
	if MouseInPanel(Point{600, 750}, Rect{}) {
		t.Error("empty panel frame should never hit")
	}
}

func TestRectUnion(t *testing.T) {
	a := NewRect(0, 0, 10, 10)
	b := NewRect(20, 5, 10, 10)
	u := a.Union(b)
	if u.MinX() != 0 || u.MinY() != 0 || u.MaxX() != 30 || u.MaxY() != 15 {
		t.Errorf("unexpected union: %+v", u)
	}
	if got := a.Union(Rect{}); got != a {
		t.Errorf("union with empty rect should be identity, got %+v", got)
	}
}
