// Package layout exports and imports the user-facing menu bar configuration
// as a YAML document: settings plus per-section enablement, in a format meant
// for hand editing and dotfile repos. The JSON settings file stays the
// runtime source of truth; layout files are an interchange format.
package layout

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/slipbar/slipbar/internal/config"
	"github.com/slipbar/slipbar/internal/section"
)

// Version is the layout schema version written to new exports.
const Version = 1

// SectionLayout is one section's persisted shape.
type SectionLayout struct {
	Name    string `yaml:"name"`
	Enabled bool   `yaml:"enabled"`
}

// Layout is the complete exportable configuration.
type Layout struct {
	Version  int             `yaml:"version"`
	Settings Settings        `yaml:"settings"`
	Sections []SectionLayout `yaml:"sections"`
}

// Settings mirrors config.Settings with YAML naming. Kept as its own type so
// the YAML schema can evolve independently of the JSON settings file.
type Settings struct {
	ShowOnHover        bool `yaml:"show_on_hover"`
	ShowOnHoverDelayMS int  `yaml:"show_on_hover_delay_ms"`
	ShowOnClick        bool `yaml:"show_on_click"`
	ShowOnScroll       bool `yaml:"show_on_scroll"`

	AutoRehide            bool   `yaml:"auto_rehide"`
	RehideStrategy        string `yaml:"rehide_strategy"`
	RehideIntervalSeconds int    `yaml:"rehide_interval_seconds"`

	SecondaryContextMenu      bool `yaml:"secondary_context_menu"`
	ShowAllSectionsOnUserDrag bool `yaml:"show_all_sections_on_user_drag"`

	AlwaysHiddenModifier string `yaml:"always_hidden_modifier"`

	ShowSectionDividers bool `yaml:"show_section_dividers"`

	BridgeListenAddr string `yaml:"bridge_listen_addr"`
}

// FromState captures the current settings and section enablement.
func FromState(s config.Settings, sections *section.Manager) Layout {
	l := FromSettings(s)
	l.Sections = l.Sections[:0]
	for _, name := range section.Names() {
		l.Sections = append(l.Sections, SectionLayout{
			Name:    name.String(),
			Enabled: sections.Section(name).Enabled(),
		})
	}
	return l
}

// FromSettings builds a layout from persisted settings alone, for callers
// without access to the live section manager (the CLI, mainly). Section
// enablement is derived from the settings: only always-hidden can be off.
func FromSettings(s config.Settings) Layout {
	l := Layout{
		Version: Version,
		Settings: Settings{
			ShowOnHover:               s.ShowOnHover,
			ShowOnHoverDelayMS:        s.ShowOnHoverDelayMS,
			ShowOnClick:               s.ShowOnClick,
			ShowOnScroll:              s.ShowOnScroll,
			AutoRehide:                s.AutoRehide,
			RehideStrategy:            string(s.RehideStrategy),
			RehideIntervalSeconds:     s.RehideIntervalSeconds,
			SecondaryContextMenu:      s.SecondaryContextMenu,
			ShowAllSectionsOnUserDrag: s.ShowAllSectionsOnUserDrag,
			AlwaysHiddenModifier:      s.AlwaysHiddenModifier,
			ShowSectionDividers:       s.ShowSectionDividers,
			BridgeListenAddr:          s.BridgeListenAddr,
		},
	}
	for _, name := range section.Names() {
		enabled := true
		if name == section.AlwaysHidden {
			enabled = s.AlwaysHiddenEnabled
		}
		l.Sections = append(l.Sections, SectionLayout{Name: name.String(), Enabled: enabled})
	}
	return l
}

// ToSettings converts the layout back into runtime settings. Unknown fields
// were already dropped by the YAML decode; validation happens on the result.
func (l Layout) ToSettings() (config.Settings, error) {
	s := config.DefaultSettings()
	s.ShowOnHover = l.Settings.ShowOnHover
	s.ShowOnHoverDelayMS = l.Settings.ShowOnHoverDelayMS
	s.ShowOnClick = l.Settings.ShowOnClick
	s.ShowOnScroll = l.Settings.ShowOnScroll
	s.AutoRehide = l.Settings.AutoRehide
	s.RehideStrategy = config.RehideStrategy(l.Settings.RehideStrategy)
	s.RehideIntervalSeconds = l.Settings.RehideIntervalSeconds
	s.SecondaryContextMenu = l.Settings.SecondaryContextMenu
	s.ShowAllSectionsOnUserDrag = l.Settings.ShowAllSectionsOnUserDrag
	s.AlwaysHiddenModifier = l.Settings.AlwaysHiddenModifier
	s.ShowSectionDividers = l.Settings.ShowSectionDividers
	s.BridgeListenAddr = l.Settings.BridgeListenAddr

	for _, sec := range l.Sections {
		name, ok := section.ParseName(sec.Name)
		if !ok {
			return config.Settings{}, fmt.Errorf("unknown section %q in layout", sec.Name)
		}
		if name == section.AlwaysHidden {
			s.AlwaysHiddenEnabled = sec.Enabled
		} else if !sec.Enabled {
			return config.Settings{}, fmt.Errorf("section %q cannot be disabled", sec.Name)
		}
	}
	if err := s.Validate(); err != nil {
		return config.Settings{}, err
	}
	return s, nil
}

// Validate checks structural sanity before the layout is applied.
func (l Layout) Validate() error {
	if l.Version != Version {
		return fmt.Errorf("unsupported layout version %d (this slipbar reads version %d)", l.Version, Version)
	}
	seen := map[string]bool{}
	for _, sec := range l.Sections {
		if _, ok := section.ParseName(sec.Name); !ok {
			return fmt.Errorf("unknown section %q", sec.Name)
		}
		if seen[sec.Name] {
			return fmt.Errorf("duplicate section %q", sec.Name)
		}
		seen[sec.Name] = true
	}
	return nil
}

// Export writes the layout to path as YAML.
func Export(path string, l Layout) error {
	data, err := yaml.Marshal(l)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Import reads and validates a layout file.
func Import(path string) (Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Layout{}, err
	}
	var l Layout
	if err := yaml.Unmarshal(data, &l); err != nil {
		return Layout{}, fmt.Errorf("failed to parse layout: %w", err)
	}
	if err := l.Validate(); err != nil {
		return Layout{}, err
	}
	return l, nil
}
