package diaglog

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDisabledLoggerIsNoOp(t *testing.T) {
	t.Setenv("SLIPBAR_DEBUG_EVENTS", "")
	path := filepath.Join(t.TempDir(), "events.log")

	l, err := New(path)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	l.Log(LogEntry{Component: ComponentCoordinator, Event: EventHoverShow})
	if err := l.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("disabled logger must not create the log file")
	}

	// Nil logger is safe too.
	var nilLogger *Logger
	nilLogger.Log(LogEntry{Event: EventHoverShow})
	_ = nilLogger.Close()
}

func TestLogWritesNDJSONWithSession(t *testing.T) {
	t.Setenv("SLIPBAR_DEBUG_EVENTS", "true")
	path := filepath.Join(t.TempDir(), "events.log")

	l, err := New(path)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	l.Log(LogEntry{Component: ComponentCoordinator, Event: EventHoverShow})
	l.Log(LogEntry{Component: ComponentEventTap, Event: EventTapReenable, Reason: "timeout"})
	if err := l.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	var entries []LogEntry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var e LogEntry
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			t.Fatalf("line is not valid JSON: %v", err)
		}
		entries = append(entries, e)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Timestamp == "" {
		t.Error("timestamp must be stamped automatically")
	}
	if entries[0].SessionID == "" || entries[0].SessionID != entries[1].SessionID {
		t.Error("all entries of one run must share a session id")
	}
	if entries[1].Reason != "timeout" {
		t.Errorf("reason = %q", entries[1].Reason)
	}
}

func TestRedact(t *testing.T) {
	payload := map[string]interface{}{
		"title":  "Quarterly review.docx",
		"owner":  "Microsoft Word",
		"layer":  0,
		"nested": map[string]interface{}{"bundle_id": "com.microsoft.Word", "x": 12.5},
		"list":   []interface{}{map[string]interface{}{"window_title": "secret"}},
	}

	got := Redact(payload).(map[string]interface{})
	if got["title"] != "[REDACTED]" || got["owner"] != "[REDACTED]" {
		t.Error("window title and owner must be redacted")
	}
	if got["layer"] != 0 {
		t.Error("non-sensitive values must pass through")
	}
	nested := got["nested"].(map[string]interface{})
	if nested["bundle_id"] != "[REDACTED]" || nested["x"] != 12.5 {
		t.Error("nested maps must be redacted recursively")
	}
	item := got["list"].([]interface{})[0].(map[string]interface{})
	if item["window_title"] != "[REDACTED]" {
		t.Error("maps inside slices must be redacted")
	}
	// Original untouched.
	if payload["title"] != "Quarterly review.docx" {
		t.Error("Redact must not mutate its input")
	}
}

func TestRollingWriterTruncatesAtCap(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roll.log")
	rw, err := newRollingWriter(path, 64)
	if err != nil {
		t.Fatal(err)
	}
	defer rw.close()

	line := []byte(strings.Repeat("a", 30) + "\n")
	for i := 0; i < 3; i++ { // third write would exceed 64 bytes
		if _, err := rw.Write(line); err != nil {
			t.Fatal(err)
		}
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Size() != int64(len(line)) {
		t.Errorf("expected only the freshest write after truncation, size=%d", info.Size())
	}
}
