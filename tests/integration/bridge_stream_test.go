package integration

import (
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/slipbar/slipbar/internal/bridge"
	"github.com/slipbar/slipbar/internal/ipc"
	"github.com/slipbar/slipbar/internal/section"
	"github.com/slipbar/slipbar/testutil"
)

// TestBridgeRoundTrip wires a section manager to a bridge server the way the
// app does and drives it from a websocket client: the client's toggle command
// mutates the sections, and the resulting snapshot comes back on the stream.
func TestBridgeRoundTrip(t *testing.T) {
	sections := newSections()

	var mu sync.Mutex
	srv := bridge.NewServer(func(cmd ipc.Command) {
		mu.Lock()
		defer mu.Unlock()
		applyCommand(cmd, sections)
	}, nil)

	// Every section change publishes a fresh snapshot, like the app's
	// observer does. The observer fires synchronously from applyCommand, so
	// the command handler's lock is already held here.
	unobserve := sections.Observe(func(section.Name) {
		srv.Publish(snapshotOf(sections))
	})
	defer unobserve()

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + bridge.StreamPath
	client, err := bridge.DialURL(url)
	testutil.AssertNoError(t, err, "dial bridge")
	t.Cleanup(func() { client.Close() })

	testutil.AssertEventually(t, func() bool { return srv.ClientCount() == 1 },
		time.Second, 10*time.Millisecond, "client connected")

	// Sections start hidden; a toggle command must show the hidden section
	// and stream the new state back.
	testutil.AssertTrue(t, sections.IsHidden(section.Hidden), "sections begin hidden")
	testutil.AssertNoError(t, client.Send(ipc.CmdToggle), "send toggle")

	testutil.AssertEventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return !sections.IsHidden(section.Hidden)
	}, time.Second, 10*time.Millisecond, "toggle applied")

	snap, err := client.Next()
	testutil.AssertNoError(t, err, "receive snapshot")
	testutil.AssertFalse(t, snap.Sections["hidden"].Hidden, "streamed hidden state")
	testutil.AssertTrue(t, snap.Sections["always-visible"].Enabled, "always-visible present")
}

// TestBridgeLateSubscriberSeesCurrentState mirrors slipbarctl connecting long
// after the app started: the first message must be the latest snapshot, not
// nothing.
func TestBridgeLateSubscriberSeesCurrentState(t *testing.T) {
	sections := newSections()
	sections.Show(section.Hidden)

	srv := bridge.NewServer(nil, nil)
	srv.Publish(snapshotOf(sections))

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + bridge.StreamPath
	client, err := bridge.DialURL(url)
	testutil.AssertNoError(t, err, "dial bridge")
	t.Cleanup(func() { client.Close() })

	snap, err := client.Next()
	testutil.AssertNoError(t, err, "receive snapshot")
	testutil.AssertFalse(t, snap.Sections["hidden"].Hidden, "late subscriber state")
}
