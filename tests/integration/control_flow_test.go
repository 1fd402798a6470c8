// Integration tests for the file-based control surface: the command file, the
// status snapshot, and the section cascades they drive. Everything here runs
// against a fake HOME and fake status item handles; no GUI is involved.
package integration

import (
	"os"
	"testing"
	"time"

	"github.com/slipbar/slipbar/internal/config"
	"github.com/slipbar/slipbar/internal/coordinator"
	"github.com/slipbar/slipbar/internal/events"
	"github.com/slipbar/slipbar/internal/geometry"
	"github.com/slipbar/slipbar/internal/ipc"
	"github.com/slipbar/slipbar/internal/section"
	"github.com/slipbar/slipbar/testutil"
)

type nullHandle struct{}

func (nullHandle) ApplyState(section.ControlItemState, bool) {}
func (nullHandle) Frame() (geometry.Rect, bool)              { return geometry.Rect{}, false }
func (nullHandle) Remove()                                   {}
func (nullHandle) Add()                                      {}

func newSections() *section.Manager {
	return section.NewManager(nullHandle{}, nullHandle{}, nullHandle{})
}

// applyCommand mirrors the dispatch the app performs for each control
// command.
func applyCommand(cmd ipc.Command, sections *section.Manager) {
	switch cmd {
	case ipc.CmdShow:
		sections.Show(section.Hidden)
	case ipc.CmdHide:
		sections.Hide(section.Hidden)
	case ipc.CmdToggle:
		sections.Toggle(section.Hidden)
	case ipc.CmdShowAlwaysHidden:
		sections.Show(section.AlwaysHidden)
	case ipc.CmdToggleAlwaysHidden:
		sections.Toggle(section.AlwaysHidden)
	}
}

func snapshotOf(sections *section.Manager) ipc.StatusSnapshot {
	snap := ipc.StatusSnapshot{
		Sections:  make(map[string]ipc.SectionStatus, 3),
		Timestamp: time.Now(),
	}
	for _, name := range section.Names() {
		s := sections.Section(name)
		snap.Sections[name.String()] = ipc.SectionStatus{
			Hidden:  s.IsHidden(),
			Enabled: s.Enabled(),
		}
	}
	return snap
}

func TestCommandFileDrivesSectionCascade(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	sections := newSections()

	// show-always-hidden through the command file must cascade: the outer
	// hidden section comes along.
	testutil.AssertNoError(t, ipc.WriteCommand(ipc.CmdShowAlwaysHidden), "write command")
	cmd, err := ipc.ReadCommand()
	testutil.AssertNoError(t, err, "read command")
	testutil.AssertEqual(t, ipc.CmdShowAlwaysHidden, cmd, "command round trip")

	applyCommand(cmd, sections)
	testutil.AssertFalse(t, sections.IsHidden(section.AlwaysHidden), "always-hidden shown")
	testutil.AssertFalse(t, sections.IsHidden(section.Hidden), "hidden cascaded shown")

	// hide through the command file must cascade the other way.
	testutil.AssertNoError(t, ipc.WriteCommand(ipc.CmdHide), "write hide")
	cmd, err = ipc.ReadCommand()
	testutil.AssertNoError(t, err, "read hide")

	applyCommand(cmd, sections)
	testutil.AssertTrue(t, sections.IsHidden(section.Hidden), "hidden hidden")
	testutil.AssertTrue(t, sections.IsHidden(section.AlwaysHidden), "always-hidden cascaded hidden")

	// The file is read-and-clear: a second read yields nothing.
	cmd, err = ipc.ReadCommand()
	testutil.AssertNoError(t, err, "re-read command")
	testutil.AssertEqual(t, ipc.Command(""), cmd, "command cleared after read")
}

func TestStatusSnapshotRoundTrip(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	sections := newSections()
	sections.Show(section.Hidden)
	sections.SetEnabled(section.AlwaysHidden, false)

	snap := snapshotOf(sections)
	snap.LastAction = "integration"
	testutil.AssertNoError(t, ipc.WriteStatus(&snap), "write status")

	got, err := ipc.ReadStatus()
	testutil.AssertNoError(t, err, "read status")
	testutil.AssertEqual(t, "integration", got.LastAction, "last action")
	testutil.AssertFalse(t, got.Sections["hidden"].Hidden, "hidden section state")
	testutil.AssertFalse(t, got.Sections["always-hidden"].Enabled, "always-hidden enablement")

	raw, err := os.ReadFile(ipc.StatusPath())
	testutil.AssertNoError(t, err, "read raw status file")
	testutil.AssertJSONValid(t, string(raw), "status file")
	testutil.AssertJSONContainsKey(t, string(raw), "sections", "status file")
}

// fakeSource fails or succeeds on Start per its err field.
type fakeSource struct{ err error }

func (s *fakeSource) Start() error { return s.err }
func (s *fakeSource) Stop()        {}

type fakeFactory struct{ tapErr error }

func (f *fakeFactory) MouseMonitor([]events.Kind, events.Handler) events.Source {
	return &fakeSource{}
}
func (f *fakeFactory) MouseMovedTap(events.Handler) events.Source {
	return &fakeSource{err: f.tapErr}
}
func (f *fakeFactory) SpaceObserver(events.Handler) events.Source       { return &fakeSource{} }
func (f *fakeFactory) ScreenObserver(events.Handler) events.Source      { return &fakeSource{} }
func (f *fakeFactory) ControlItemObserver(events.Handler) events.Source { return &fakeSource{} }

type inlineDispatcher struct{}

func (inlineDispatcher) Dispatch(f func()) { f() }

// A source that cannot start (typically a missing input-monitoring
// permission) must leave the rest of the app functional and be visible in
// the log.
func TestFailedEventSourceIsLoggedNotFatal(t *testing.T) {
	lc := testutil.NewLogCapture()
	lc.Start()
	defer lc.Stop()

	coord := coordinator.New(coordinator.Config{
		Desktop:    nil,
		Sections:   newSections(),
		Settings:   config.DefaultSettings,
		Factory:    &fakeFactory{tapErr: os.ErrPermission},
		Dispatcher: inlineDispatcher{},
	})
	coord.PerformSetup()
	defer coord.TearDown()

	testutil.AssertTrue(t, lc.Contains("event source failed to start"),
		"failed source logged")
	testutil.AssertEqual(t, 1, lc.Count("event source failed to start"),
		"exactly one source failed")
	testutil.AssertTrue(t, coord.IsEnabled(), "coordinator still enabled")
}
