// config.go - engine configuration. Defaults, overlaid by an optional YAML
// file, overlaid in turn by command line flags (applied in main).
package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type AudioSettings struct {
	Type      string  `yaml:"type"`
	Level     float64 `yaml:"level"`
	Frequency float64 `yaml:"frequency"`
}

type MIDISettings struct {
	Enabled    bool   `yaml:"enabled"`
	PortPrefix string `yaml:"port_prefix"`
	KnobCCBase int    `yaml:"knob_cc_base"`
}

type Config struct {
	Listen        string        `yaml:"listen"`
	ModesDir      string        `yaml:"modes_dir"`
	DefaultMode   string        `yaml:"default_mode"`
	Display       string        `yaml:"display"`
	AudioMonitor  bool          `yaml:"audio_monitor"`
	TerminalKnobs bool          `yaml:"terminal_knobs"`
	AutoStart     bool          `yaml:"autostart"`
	Audio         AudioSettings `yaml:"audio"`
	MIDI          MIDISettings  `yaml:"midi"`
}

func DefaultConfig() Config {
	return Config{
		Listen:    ":5001",
		ModesDir:  "modes",
		Display:   "ebiten",
		AutoStart: true,
		Audio: AudioSettings{
			Type:      AUDIO_TYPE_SINE,
			Level:     0.5,
			Frequency: 440,
		},
		MIDI: MIDISettings{
			KnobCCBase: DEFAULT_KNOB_CC_BASE,
		},
	}
}

// LoadConfig overlays the YAML file at path onto the defaults. A missing
// file leaves the defaults untouched; a file that exists but does not parse
// is an error.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) DisplayBackend() int {
	switch c.Display {
	case "none", "off", "headless":
		return DISPLAY_BACKEND_HEADLESS
	}
	return DISPLAY_BACKEND_EBITEN
}
