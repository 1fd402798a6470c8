// Package diaglog provides structured NDJSON diagnostic logging for Slipbar's
// event decisions. Activated by SLIPBAR_DEBUG_EVENTS=true. When the env var
// is absent, all Log calls are no-ops and no file is created.
package diaglog

import (
	"encoding/json"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ── Component labels ─────────────────────────────────────────────────────────

const (
	ComponentCoordinator = "coordinator"
	ComponentEventTap    = "event-tap"
	ComponentMonitors    = "event-monitors"
	ComponentSections    = "sections"
	ComponentBridge      = "bridge"
	ComponentApp         = "slipbar"
)

// ── Event names ──────────────────────────────────────────────────────────────

const (
	EventTapInstall      = "tap_install"
	EventTapReenable     = "tap_reenable"
	EventMonitorInstall  = "monitor_install"
	EventHoverShow       = "hover_show"
	EventHoverHide       = "hover_hide"
	EventHoverCancelled  = "hover_cancelled"
	EventClickToggle     = "click_toggle"
	EventContextMenu     = "context_menu"
	EventRehide          = "rehide"
	EventRehideSkipped   = "rehide_skipped"
	EventDragBegin       = "drag_begin"
	EventDragEnd         = "drag_end"
	EventScrollShow      = "scroll_show"
	EventScrollHide      = "scroll_hide"
	EventSuppressSet     = "suppress_set"
	EventSuppressCleared = "suppress_cleared"
	EventSectionChange   = "section_change"
	EventBridgeClient    = "bridge_client"
)

// ── LogEntry ─────────────────────────────────────────────────────────────────

// LogEntry is one structured event record written as a single JSON line.
type LogEntry struct {
	Timestamp string      `json:"ts"`                   // RFC3339Nano
	Component string      `json:"component"`            // see Component* constants
	Event     string      `json:"event"`                // see Event* constants
	SessionID string      `json:"session_id,omitempty"` // uuid per process run
	Reason    string      `json:"reason,omitempty"`
	Payload   interface{} `json:"payload,omitempty"` // redacted before write
}

// ── Logger ───────────────────────────────────────────────────────────────────

// Logger writes LogEntry values to a rolling NDJSON file. When debug mode is
// disabled every Log call is a no-op.
type Logger struct {
	rw      *rollingWriter
	mu      sync.Mutex
	session string
	enabled bool
}

// New opens (or creates) the NDJSON log file at path. If debug mode is
// disabled, path is ignored and a no-op logger is returned. Every entry the
// returned logger writes carries the same per-run session id.
func New(path string) (*Logger, error) {
	if !IsDebugEnabled() {
		return &Logger{enabled: false}, nil
	}
	rw, err := newRollingWriter(path, 10*1024*1024)
	if err != nil {
		return nil, err
	}
	return &Logger{rw: rw, session: uuid.NewString(), enabled: true}, nil
}

// Log serialises entry to JSON, appends a newline, and writes to the rolling
// file. Window titles and owner names in the payload are redacted first.
func (l *Logger) Log(entry LogEntry) {
	if l == nil || !l.enabled {
		return
	}
	if entry.Timestamp == "" {
		entry.Timestamp = time.Now().UTC().Format(time.RFC3339Nano)
	}
	if entry.SessionID == "" {
		entry.SessionID = l.session
	}
	if entry.Payload != nil {
		entry.Payload = Redact(entry.Payload)
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return
	}
	data = append(data, '\n')

	l.mu.Lock()
	defer l.mu.Unlock()
	_, _ = l.rw.Write(data)
}

// Close flushes and closes the underlying file. Safe on nil/disabled logger.
func (l *Logger) Close() error {
	if l == nil || !l.enabled || l.rw == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.rw.close()
}

// IsDebugEnabled reports whether SLIPBAR_DEBUG_EVENTS is set to "true".
func IsDebugEnabled() bool {
	return os.Getenv("SLIPBAR_DEBUG_EVENTS") == "true"
}

// NewNoOp returns a logger where every Log call is a no-op. Use as a safe
// fallback when New fails (e.g., disk full, permissions error).
func NewNoOp() *Logger {
	return &Logger{enabled: false}
}
