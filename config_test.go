// config_test.go - configuration loading tests.
package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestConfig_Defaults(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Listen != ":5001" {
		t.Errorf("expected default listen :5001, got %q", cfg.Listen)
	}
	if cfg.ModesDir != "modes" {
		t.Errorf("expected default modes dir, got %q", cfg.ModesDir)
	}
	if !cfg.AutoStart {
		t.Error("expected autostart on by default")
	}
	if cfg.Audio.Type != AUDIO_TYPE_SINE || cfg.Audio.Level != 0.5 || cfg.Audio.Frequency != 440 {
		t.Errorf("expected sine 0.5 440 defaults, got %+v", cfg.Audio)
	}
	if cfg.MIDI.KnobCCBase != DEFAULT_KNOB_CC_BASE {
		t.Errorf("expected CC base %d, got %d", DEFAULT_KNOB_CC_BASE, cfg.MIDI.KnobCCBase)
	}
	if cfg.MIDI.Enabled {
		t.Error("expected MIDI off by default")
	}
}

func TestConfig_PartialFileOverlaysDefaults(t *testing.T) {
	dir, err := os.MkdirTemp("", "luma-config-test")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "luma.yaml")
	content := `
listen: ":8080"
audio:
  type: noise
  level: 0.9
  frequency: 440
midi:
  enabled: true
  port_prefix: "nano"
  knob_cc_base: 30
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.Listen != ":8080" {
		t.Errorf("expected listen override, got %q", cfg.Listen)
	}
	if cfg.ModesDir != "modes" {
		t.Errorf("expected default modes dir preserved, got %q", cfg.ModesDir)
	}
	if cfg.Audio.Type != AUDIO_TYPE_NOISE || cfg.Audio.Level != 0.9 {
		t.Errorf("expected audio overrides, got %+v", cfg.Audio)
	}
	if !cfg.MIDI.Enabled || cfg.MIDI.PortPrefix != "nano" || cfg.MIDI.KnobCCBase != 30 {
		t.Errorf("expected MIDI overrides, got %+v", cfg.MIDI)
	}
}

func TestConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/luma.yaml")
	if err != nil {
		t.Fatalf("expected missing file to be fine, got %v", err)
	}
	if cfg.Listen != ":5001" {
		t.Errorf("expected defaults, got %q", cfg.Listen)
	}

	cfg, err = LoadConfig("")
	if err != nil {
		t.Fatalf("expected empty path to be fine, got %v", err)
	}
	if cfg.ModesDir != "modes" {
		t.Errorf("expected defaults, got %q", cfg.ModesDir)
	}
}

func TestConfig_ParseErrorReported(t *testing.T) {
	dir, err := os.MkdirTemp("", "luma-config-test")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "broken.yaml")
	if err := os.WriteFile(path, []byte("listen: [unclosed"), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	_, err = LoadConfig(path)
	if err == nil {
		t.Fatal("expected parse error, got nil")
	}
	if !strings.Contains(err.Error(), "failed to parse config") {
		t.Errorf("expected parse error message, got %q", err.Error())
	}
}

func TestConfig_DisplayBackendMapping(t *testing.T) {
	cases := []struct {
		display string
		want    int
	}{
		{"none", DISPLAY_BACKEND_HEADLESS},
		{"off", DISPLAY_BACKEND_HEADLESS},
		{"headless", DISPLAY_BACKEND_HEADLESS},
		{"ebiten", DISPLAY_BACKEND_EBITEN},
		{"", DISPLAY_BACKEND_EBITEN},
		{"anything", DISPLAY_BACKEND_EBITEN},
	}
	for _, c := range cases {
		cfg := Config{Display: c.display}
		if got := cfg.DisplayBackend(); got != c.want {
			t.Errorf("expected backend %d for %q, got %d", c.want, c.display, got)
		}
	}
}
