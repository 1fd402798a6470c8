package section

import (
	"math/rand"
	"testing"

	"github.com/slipbar/slipbar/internal/geometry"
)

// fakeHandle records ApplyState calls and serves a configurable frame.
type fakeHandle struct {
	state        ControlItemState
	showsDivider bool
	applyCount   int
	frame        geometry.Rect
	hasFrame     bool
	present      bool
}

func newFakeHandle() *fakeHandle { return &fakeHandle{present: true} }

func (h *fakeHandle) ApplyState(state ControlItemState, showsDivider bool) {
	h.state = state
	h.showsDivider = showsDivider
	h.applyCount++
}

func (h *fakeHandle) Frame() (geometry.Rect, bool) { return h.frame, h.hasFrame }
func (h *fakeHandle) Remove()                      { h.present = false }
func (h *fakeHandle) Add()                         { h.present = true }

func newTestManager() (*Manager, *fakeHandle, *fakeHandle, *fakeHandle) {
	av, hid, ah := newFakeHandle(), newFakeHandle(), newFakeHandle()
	m := NewManager(av, hid, ah)
	return m, av, hid, ah
}

func TestManagerStartsHidden(t *testing.T) {
	m, av, hid, ah := newTestManager()

	if m.IsHidden(AlwaysVisible) {
		t.Error("always-visible must start shown")
	}
	if !m.IsHidden(Hidden) || !m.IsHidden(AlwaysHidden) {
		t.Error("controllable sections must start hidden")
	}
	if av.state.ItemsHidden {
		t.Error("always-visible control item must start in ShowItems")
	}
	if !hid.state.Expanded || !ah.state.Expanded {
		t.Error("hidden control items must start at expanded width")
	}
}

// checkNesting asserts: AlwaysHidden shown ⇒ Hidden shown ⇒ AlwaysVisible
// shown.
func checkNesting(t *testing.T, m *Manager) {
	t.Helper()
	if !m.IsHidden(AlwaysHidden) && m.IsHidden(Hidden) {
		t.Fatal("nesting violated: always-hidden shown while hidden section is hidden")
	}
	if !m.IsHidden(Hidden) && m.IsHidden(AlwaysVisible) {
		t.Fatal("nesting violated: hidden shown while always-visible is hidden")
	}
}

func TestNestingInvariant_DirectedOperations(t *testing.T) {
	m, _, _, _ := newTestManager()
	m.Hide(Hidden)

	// Showing the innermost section forces the outer ones visible.
	m.Show(AlwaysHidden)
	if m.IsHidden(Hidden) || m.IsHidden(AlwaysVisible) || m.IsHidden(AlwaysHidden) {
		t.Fatal("Show(AlwaysHidden) must show every section")
	}

	// Hiding the hidden section forces always-hidden to hide with it.
	m.Hide(Hidden)
	if !m.IsHidden(AlwaysHidden) {
		t.Fatal("Hide(Hidden) must also hide always-hidden")
	}
	if m.IsHidden(AlwaysVisible) {
		t.Fatal("always-visible must never report hidden")
	}

	// Hiding always-hidden alone leaves the hidden section shown.
	m.Show(AlwaysHidden)
	m.Hide(AlwaysHidden)
	if m.IsHidden(Hidden) {
		t.Fatal("Hide(AlwaysHidden) must not hide the hidden section")
	}
	checkNesting(t, m)
}

func TestNestingInvariant_RandomSequences(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	m, _, _, _ := newTestManager()
	m.SetAssertFunc(func(string) {}) // random sequences may poke AlwaysVisible

	names := Names()
	for i := 0; i < 2000; i++ {
		name := names[rng.Intn(len(names))]
		switch rng.Intn(3) {
		case 0:
			m.Show(name)
		case 1:
			m.Hide(name)
		case 2:
			m.Toggle(name)
		}
		checkNesting(t, m)
	}
}

func TestShowHide_Idempotent(t *testing.T) {
	m, _, hid, _ := newTestManager()

	m.Hide(Hidden)
	applied := hid.applyCount
	m.Hide(Hidden)
	m.Hide(Hidden)
	if hid.applyCount != applied {
		t.Fatalf("repeated Hide changed control item state %d extra times", hid.applyCount-applied)
	}

	m.Show(Hidden)
	applied = hid.applyCount
	m.Show(Hidden)
	if hid.applyCount != applied {
		t.Fatal("repeated Show must not touch the control item")
	}
}

func TestHideAlwaysVisible_ClampsAndAsserts(t *testing.T) {
	m, av, _, _ := newTestManager()
	asserted := false
	m.SetAssertFunc(func(string) { asserted = true })

	m.Show(AlwaysHidden)
	m.Hide(AlwaysVisible)

	if !asserted {
		t.Error("hiding always-visible should trip the invariant hook")
	}
	if m.IsHidden(AlwaysVisible) {
		t.Error("always-visible must stay shown")
	}
	if !m.IsHidden(Hidden) || !m.IsHidden(AlwaysHidden) {
		t.Error("clamped hide should still hide the inner sections")
	}
	if av.state.ItemsHidden {
		t.Error("always-visible control item must never enter HideItems")
	}
}

func TestSetEnabled(t *testing.T) {
	m, _, _, ah := newTestManager()

	m.SetEnabled(AlwaysHidden, false)
	if ah.present {
		t.Error("disabling a section must remove its status item")
	}
	if !m.IsHidden(AlwaysHidden) {
		t.Error("a disabled section reports hidden")
	}

	// Show of a disabled section must not resurrect its control item.
	m.Show(AlwaysHidden)
	if ah.present {
		t.Error("Show must skip disabled sections")
	}

	m.SetEnabled(AlwaysHidden, true)
	if !ah.present {
		t.Error("re-enabling must restore the status item")
	}
	if !m.IsHidden(AlwaysHidden) {
		t.Error("a re-enabled section starts hidden")
	}

	// Only AlwaysHidden may be disabled.
	asserted := false
	m.SetAssertFunc(func(string) { asserted = true })
	m.SetEnabled(Hidden, false)
	if !asserted || !m.Section(Hidden).Enabled() {
		t.Error("disabling the hidden section must clamp to enabled")
	}
}

func TestDividerReveal(t *testing.T) {
	m, _, hid, ah := newTestManager()
	m.Hide(Hidden)

	m.BeginDividerReveal()
	if !hid.state.ItemsHidden || hid.state.Expanded {
		t.Error("reveal should collapse the hidden section's item without showing it")
	}
	if m.IsHidden(Hidden) != true {
		t.Error("reveal must not change visible state")
	}

	// A section shown mid-drag stays shown after the reveal ends.
	m.Show(Hidden)
	m.EndDividerReveal()
	if hid.state.ItemsHidden {
		t.Error("shown section must keep ShowItems after EndDividerReveal")
	}
	if !ah.state.Expanded {
		t.Error("still-hidden section must return to expanded width")
	}
}

func TestControlItemPosition(t *testing.T) {
	h := newFakeHandle()
	ci := NewControlItem(h)

	if _, ok := ci.Position(); ok {
		t.Error("position must be unknown without a window frame")
	}
	h.frame = geometry.NewRect(1200, 978, 20, 22)
	h.hasFrame = true
	pos, ok := ci.Position()
	if !ok || pos != 1220 {
		t.Errorf("Position() = %v, %v; want trailing edge 1220", pos, ok)
	}
}

func TestObserve(t *testing.T) {
	m, _, _, _ := newTestManager()
	m.Show(AlwaysHidden)
	var changed []Name
	unobserve := m.Observe(func(n Name) { changed = append(changed, n) })

	m.Hide(Hidden) // hides Hidden and AlwaysHidden
	if len(changed) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(changed))
	}

	unobserve()
	m.Show(Hidden)
	if len(changed) != 2 {
		t.Error("unobserved callback must not fire")
	}
}

func TestStateLengths(t *testing.T) {
	if ShowItems().Length() != StandardLength {
		t.Error("shown items render at standard length")
	}
	if HideItems(false).Length() != StandardLength {
		t.Error("collapsed divider renders at standard length")
	}
	if HideItems(true).Length() != ExpandedLength {
		t.Error("expanded state renders at the enormous length")
	}
}
