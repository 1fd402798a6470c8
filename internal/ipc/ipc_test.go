package ipc

import (
	"os"
	"testing"
	"time"
)

func TestStatusRoundTrip(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	want := &StatusSnapshot{
		Sections: map[string]SectionStatus{
			"always-visible": {Hidden: false, Enabled: true},
			"hidden":         {Hidden: true, Enabled: true},
			"always-hidden":  {Hidden: true, Enabled: false},
		},
		EventsEnabled: true,
		ShowOnHover:   true,
		Strategy:      "smart",
		LastAction:    "hover_show",
		Timestamp:     time.Now().UTC().Truncate(time.Second),
	}
	if err := WriteStatus(want); err != nil {
		t.Fatalf("WriteStatus: %v", err)
	}

	got, err := ReadStatus()
	if err != nil {
		t.Fatalf("ReadStatus: %v", err)
	}
	if got.Sections["hidden"].Hidden != true || got.Sections["always-hidden"].Enabled != false {
		t.Errorf("section states did not survive the round trip: %+v", got.Sections)
	}
	if !got.EventsEnabled || got.LastAction != "hover_show" || got.Strategy != "smart" {
		t.Errorf("unexpected snapshot: %+v", got)
	}
	if !got.Timestamp.Equal(want.Timestamp) {
		t.Errorf("timestamp = %v, want %v", got.Timestamp, want.Timestamp)
	}
}

func TestReadStatus_Missing(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	if _, err := ReadStatus(); !os.IsNotExist(err) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}

func TestCommandReadAndClear(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	if err := WriteCommand(CmdToggle); err != nil {
		t.Fatalf("WriteCommand: %v", err)
	}
	cmd, err := ReadCommand()
	if err != nil {
		t.Fatalf("ReadCommand: %v", err)
	}
	if cmd != CmdToggle {
		t.Errorf("cmd = %q, want %q", cmd, CmdToggle)
	}

	// Second read must see an empty file: commands execute once.
	cmd, err = ReadCommand()
	if err != nil {
		t.Fatalf("ReadCommand after clear: %v", err)
	}
	if cmd != "" {
		t.Errorf("command re-read after clear: %q", cmd)
	}
}

func TestReadCommand_MissingFileIsNotAnError(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	cmd, err := ReadCommand()
	if err != nil || cmd != "" {
		t.Errorf("got (%q, %v), want empty and nil", cmd, err)
	}
}

func TestReadCommand_UnknownCommandDropped(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	if err := os.MkdirAll(cacheDir(), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(CommandPath(), []byte("self-destruct\n"), 0644); err != nil {
		t.Fatal(err)
	}
	cmd, err := ReadCommand()
	if err != nil || cmd != "" {
		t.Errorf("unknown command must be dropped, got (%q, %v)", cmd, err)
	}
}

func TestKnownCommands(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	for _, c := range []Command{
		CmdShow, CmdHide, CmdToggle, CmdShowAlwaysHidden,
		CmdToggleAlwaysHidden, CmdPause, CmdResume, CmdQuit,
	} {
		if err := WriteCommand(c); err != nil {
			t.Fatalf("WriteCommand(%q): %v", c, err)
		}
		got, err := ReadCommand()
		if err != nil || got != c {
			t.Errorf("round trip of %q failed: (%q, %v)", c, got, err)
		}
	}
}
