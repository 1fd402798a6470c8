package bridge

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/slipbar/slipbar/internal/ipc"
)

func newTestBridge(t *testing.T, onCommand func(ipc.Command)) (*Server, *Client) {
	t.Helper()
	srv := NewServer(onCommand, nil)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + StreamPath
	client, err := DialURL(url)
	if err != nil {
		t.Fatalf("DialURL: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return srv, client
}

func snapshot(action string) ipc.StatusSnapshot {
	return ipc.StatusSnapshot{
		Sections: map[string]ipc.SectionStatus{
			"hidden": {Hidden: true, Enabled: true},
		},
		EventsEnabled: true,
		LastAction:    action,
		Timestamp:     time.Now().UTC(),
	}
}

func TestPublishReachesClient(t *testing.T) {
	srv, client := newTestBridge(t, nil)

	waitForClients(t, srv, 1)
	srv.Publish(snapshot("hover_show"))

	snap, err := client.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if snap.LastAction != "hover_show" {
		t.Errorf("LastAction = %q, want hover_show", snap.LastAction)
	}
	if !snap.Sections["hidden"].Hidden {
		t.Error("section state lost in transit")
	}
}

func TestLateClientGetsLatestSnapshotOnConnect(t *testing.T) {
	srv := NewServer(nil, nil)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	srv.Publish(snapshot("click_toggle")) // published before anyone connects

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + StreamPath
	client, err := DialURL(url)
	if err != nil {
		t.Fatalf("DialURL: %v", err)
	}
	defer client.Close()

	snap, err := client.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if snap.LastAction != "click_toggle" {
		t.Errorf("late client got %q, want the pre-connect snapshot", snap.LastAction)
	}
}

func TestClientCommandReachesHandler(t *testing.T) {
	got := make(chan ipc.Command, 1)
	srv, client := newTestBridge(t, func(cmd ipc.Command) { got <- cmd })
	waitForClients(t, srv, 1)

	if err := client.Send(ipc.CmdToggle); err != nil {
		t.Fatalf("Send: %v", err)
	}
	select {
	case cmd := <-got:
		if cmd != ipc.CmdToggle {
			t.Errorf("cmd = %q, want %q", cmd, ipc.CmdToggle)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("command never reached the handler")
	}
}

func TestUnknownCommandIsTolerated(t *testing.T) {
	got := make(chan ipc.Command, 1)
	srv, client := newTestBridge(t, func(cmd ipc.Command) { got <- cmd })
	waitForClients(t, srv, 1)

	if err := client.Send(ipc.Command("frobnicate")); err != nil {
		t.Fatalf("Send: %v", err)
	}
	// The connection must survive; a valid command after it still works.
	if err := client.Send(ipc.CmdPause); err != nil {
		t.Fatalf("Send after unknown: %v", err)
	}
	select {
	case cmd := <-got:
		if cmd != ipc.CmdPause {
			t.Errorf("cmd = %q, want %q (unknown command must be dropped)", cmd, ipc.CmdPause)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("valid command after an unknown one never arrived")
	}
}

func TestShutdownClosesClients(t *testing.T) {
	srv, client := newTestBridge(t, nil)
	waitForClients(t, srv, 1)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}

	if _, err := client.Next(); err == nil {
		t.Error("client read must fail after server shutdown")
	}
}

func TestListenAndServeBindError(t *testing.T) {
	first := NewServer(nil, nil)
	if err := first.ListenAndServe("127.0.0.1:0"); err != nil {
		t.Fatalf("ListenAndServe: %v", err)
	}
	defer first.Shutdown(context.Background())

	second := NewServer(nil, nil)
	if err := second.ListenAndServe("127.0.0.1:1"); err == nil {
		t.Error("binding a privileged port must fail synchronously")
		second.Shutdown(context.Background())
	}
}

func waitForClients(t *testing.T, srv *Server, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for srv.ClientCount() < n {
		if time.Now().After(deadline) {
			t.Fatalf("client count never reached %d", n)
		}
		time.Sleep(5 * time.Millisecond)
	}
}
