// Package config loads and validates the slipbar settings file.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/slipbar/slipbar/internal/events"
)

// RehideStrategy selects how the auto-rehide feature decides to hide.
type RehideStrategy string

const (
	// RehideSmart infers from the click target whether the user left the
	// menu bar context for a real foreground application.
	RehideSmart RehideStrategy = "smart"
	// RehideTimed hides a fixed interval after the last show.
	RehideTimed RehideStrategy = "timed"
)

// Settings is the persisted user configuration. The coordinator reads a
// fresh copy at every decision point so live reloads take effect
// immediately.
type Settings struct {
	ShowOnHover        bool `json:"show_on_hover"`
	ShowOnHoverDelayMS int  `json:"show_on_hover_delay_ms"`
	ShowOnClick        bool `json:"show_on_click"`
	ShowOnScroll       bool `json:"show_on_scroll"`

	AutoRehide            bool           `json:"auto_rehide"`
	RehideStrategy        RehideStrategy `json:"rehide_strategy"`
	RehideIntervalSeconds int            `json:"rehide_interval_seconds"`

	SecondaryContextMenu      bool `json:"secondary_context_menu"`
	ShowAllSectionsOnUserDrag bool `json:"show_all_sections_on_user_drag"`

	// AlwaysHiddenModifier names the key that redirects a blank-space click
	// to the always-hidden section: "option", "control" or "shift".
	AlwaysHiddenModifier string `json:"always_hidden_modifier"`
	AlwaysHiddenEnabled  bool   `json:"always_hidden_enabled"`

	ShowSectionDividers bool `json:"show_section_dividers"`

	// BridgeListenAddr is the loopback address of the status/command
	// websocket bridge. Empty disables the bridge.
	BridgeListenAddr string `json:"bridge_listen_addr"`
}

// DefaultSettings returns the configuration written on first run.
func DefaultSettings() Settings {
	return Settings{
		ShowOnHover:               true,
		ShowOnHoverDelayMS:        200,
		ShowOnClick:               true,
		ShowOnScroll:              true,
		AutoRehide:                true,
		RehideStrategy:            RehideSmart,
		RehideIntervalSeconds:     15,
		SecondaryContextMenu:      true,
		ShowAllSectionsOnUserDrag: true,
		AlwaysHiddenModifier:      "option",
		AlwaysHiddenEnabled:       true,
		ShowSectionDividers:       false,
		BridgeListenAddr:          "127.0.0.1:4457",
	}
}

// HoverDelay returns the configured hover delay as a duration.
func (s Settings) HoverDelay() time.Duration {
	return time.Duration(s.ShowOnHoverDelayMS) * time.Millisecond
}

// RehideInterval returns the timed-strategy interval as a duration.
func (s Settings) RehideInterval() time.Duration {
	return time.Duration(s.RehideIntervalSeconds) * time.Second
}

// AlwaysHiddenMod maps the configured modifier name to its event bitmask.
func (s Settings) AlwaysHiddenMod() events.Modifier {
	switch s.AlwaysHiddenModifier {
	case "control":
		return events.ModControl
	case "shift":
		return events.ModShift
	default:
		return events.ModOption
	}
}

// Validate checks Settings for sanity.
func (s Settings) Validate() error {
	if s.ShowOnHoverDelayMS < 0 || s.ShowOnHoverDelayMS > 2000 {
		return fmt.Errorf("show_on_hover_delay_ms must be between 0 and 2000, got %d", s.ShowOnHoverDelayMS)
	}
	switch s.RehideStrategy {
	case RehideSmart, RehideTimed:
	default:
		return fmt.Errorf("rehide_strategy must be %q or %q, got %q", RehideSmart, RehideTimed, s.RehideStrategy)
	}
	if s.RehideIntervalSeconds < 1 || s.RehideIntervalSeconds > 3600 {
		return fmt.Errorf("rehide_interval_seconds must be between 1 and 3600, got %d", s.RehideIntervalSeconds)
	}
	switch s.AlwaysHiddenModifier {
	case "option", "control", "shift":
	default:
		return fmt.Errorf("always_hidden_modifier must be option, control or shift, got %q", s.AlwaysHiddenModifier)
	}
	return nil
}

// Dir returns the slipbar configuration directory, creating it if needed.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(home, ".config", "slipbar")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	return dir, nil
}

// Path returns the settings file path.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "settings.json"), nil
}

// Load reads the settings file at path. A missing file yields the defaults
// and writes them back so the user has a file to edit.
func Load(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			s := DefaultSettings()
			if err := Save(path, s); err != nil {
				return Settings{}, fmt.Errorf("failed to write default settings: %w", err)
			}
			return s, nil
		}
		return Settings{}, err
	}

	s := DefaultSettings() // absent fields keep their defaults
	if err := json.Unmarshal(data, &s); err != nil {
		return Settings{}, fmt.Errorf("failed to parse settings: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Save writes the settings file with indentation for hand editing.
func Save(path string, s Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Store is a settings holder safe to read from the UI context while the
// fsnotify reload goroutine replaces the value.
type Store struct {
	mu sync.RWMutex
	s  Settings
}

// NewStore seeds a store with the given settings.
func NewStore(s Settings) *Store {
	return &Store{s: s}
}

// Get returns the current settings by value.
func (st *Store) Get() Settings {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.s
}

// Set replaces the current settings.
func (st *Store) Set(s Settings) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.s = s
}
