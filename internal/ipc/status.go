// Package ipc is the file-based half of slipbar's control surface: the app
// publishes a status snapshot to ~/.cache/slipbar/status.json on every state
// change, and drains one-shot commands from ~/.cache/slipbar/cmd.txt. The
// websocket bridge covers live streaming; these files cover scripts and
// anything that just wants to cat a JSON file.
package ipc

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// SectionStatus is one section's externally visible state.
type SectionStatus struct {
	Hidden  bool `json:"hidden"`
	Enabled bool `json:"enabled"`
}

// StatusSnapshot is the complete app state at a point in time. Keys are the
// section names: "always-visible", "hidden", "always-hidden".
type StatusSnapshot struct {
	Sections map[string]SectionStatus `json:"sections"`

	EventsEnabled bool `json:"events_enabled"` // coordinator handling events
	Dragging      bool `json:"dragging"`       // command-drag in progress

	ShowOnHover  bool   `json:"show_on_hover"`
	ShowOnClick  bool   `json:"show_on_click"`
	ShowOnScroll bool   `json:"show_on_scroll"`
	AutoRehide   bool   `json:"auto_rehide"`
	Strategy     string `json:"rehide_strategy"`

	LastAction string    `json:"last_action"`
	LastError  string    `json:"last_error"`
	Timestamp  time.Time `json:"timestamp"`
}

func cacheDir() string {
	return filepath.Join(os.Getenv("HOME"), ".cache", "slipbar")
}

// StatusPath returns the status file location.
func StatusPath() string {
	return filepath.Join(cacheDir(), "status.json")
}

// WriteStatus persists the snapshot atomically so readers never observe a
// torn file.
func WriteStatus(status *StatusSnapshot) error {
	if err := os.MkdirAll(cacheDir(), 0755); err != nil {
		return err
	}
	return atomicWriteJSON(StatusPath(), status)
}

// ReadStatus loads the last published snapshot.
func ReadStatus() (*StatusSnapshot, error) {
	data, err := os.ReadFile(StatusPath())
	if err != nil {
		return nil, err
	}
	var status StatusSnapshot
	if err := json.Unmarshal(data, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// atomicWriteJSON writes data through a temp file and rename.
func atomicWriteJSON(path string, data interface{}) error {
	dir := filepath.Dir(path)
	tmpFile, err := os.CreateTemp(dir, "status-*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmpFile.Name()

	defer func() {
		if tmpFile != nil {
			tmpFile.Close()
			os.Remove(tmpPath)
		}
	}()

	encoder := json.NewEncoder(tmpFile)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return err
	}
	if err := tmpFile.Sync(); err != nil {
		return err
	}
	if err := tmpFile.Close(); err != nil {
		return err
	}
	tmpFile = nil // rename succeeded path owns the file now

	return os.Rename(tmpPath, path)
}
