// engine.go - render driver. Owns the canonical screen surface, the shared
// context, and the mode host, and serializes control-plane mutations against
// frame rendering with a single mutex.
package main

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const (
	SCREEN_WIDTH  = 1280
	SCREEN_HEIGHT = 720

	FRAME_DATA_URI_PREFIX = "data:image/jpeg;base64,"

	UPLOAD_DIR_NAME = "luma-uploaded-modes"
)

type Engine struct {
	mu       sync.Mutex
	screen   *Surface
	etc      *Etc
	host     *ModeHost
	modesDir string
}

func NewEngine(modesDir string) *Engine {
	screen := NewSurface(SCREEN_WIDTH, SCREEN_HEIGHT)
	etc := NewEtc(SCREEN_WIDTH, SCREEN_HEIGHT)
	return &Engine{
		screen:   screen,
		etc:      etc,
		host:     NewModeHost(screen, etc),
		modesDir: modesDir,
	}
}

func (e *Engine) ModesDir() string { return e.modesDir }

// SetModesDir points the engine at a different mode library. The directory
// must exist.
func (e *Engine) SetModesDir(dir string) error {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("invalid modes directory: %s", dir)
	}
	e.mu.Lock()
	e.modesDir = dir
	e.mu.Unlock()
	return nil
}

// SetKnob stores a knob value, clamped to 0..1. Indexes outside 1..5 are
// ignored. The value reaches the running mode on its next frame.
func (e *Engine) SetKnob(index int, value float64) {
	e.mu.Lock()
	e.etc.SetKnob(index, clamp01(value))
	e.mu.Unlock()
}

func (e *Engine) Knob(index int) float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.etc.Knob(index)
}

// ConfigureAudio switches the synthesized audio source.
func (e *Engine) ConfigureAudio(audioType string, level, frequency float64) {
	e.mu.Lock()
	e.etc.ConfigureAudio(audioType, level, frequency)
	e.mu.Unlock()
}

// IngestAudio feeds captured unsigned 8-bit samples into the audio state.
func (e *Engine) IngestAudio(data []byte) {
	e.mu.Lock()
	e.etc.IngestAudio(data)
	e.mu.Unlock()
}

// AudioConfig reports the current audio type, level and frequency.
func (e *Engine) AudioConfig() (string, float64, float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.etc.AudioType, e.etc.AudioLevel, e.etc.AudioFrequency
}

// LoadMode loads the mode at path, which may be relative to the modes
// directory. On success the returned message names the loaded mode.
func (e *Engine) LoadMode(path string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if path == "" {
		return "", fmt.Errorf("no mode path provided")
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(e.modesDir, path)
	}
	return e.host.Load(path)
}

// LoadModeSource materializes uploaded script source as a mode directory
// under the system temp dir and loads it. filename is the original upload
// name; its stem becomes the mode name.
func (e *Engine) LoadModeSource(filename, source string) (string, error) {
	if strings.TrimSpace(source) == "" {
		return "", fmt.Errorf("uploaded mode source is empty")
	}
	name := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	if name == "" {
		name = "mode"
	}
	dir := filepath.Join(os.TempDir(), UPLOAD_DIR_NAME, UPLOAD_PREFIX+name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, MODE_ENTRY_FILE), []byte(source), 0o644); err != nil {
		return "", fmt.Errorf("failed to write uploaded mode: %w", err)
	}
	if _, err := e.LoadMode(dir); err != nil {
		return "", err
	}
	return fmt.Sprintf("Uploaded mode %q loaded successfully", filename), nil
}

// ListModes reports the mode directories available under the modes dir.
func (e *Engine) ListModes() ([]string, error) {
	e.mu.Lock()
	dir := e.modesDir
	e.mu.Unlock()
	return ListModes(dir)
}

// RenderFrame produces one frame: push knobs into the mode, advance the
// audio state (unless captured audio has latched), run setup once, run draw,
// and encode the screen as a JPEG data URI.
func (e *Engine) RenderFrame() (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.host.HasMode() {
		return "", fmt.Errorf("no mode loaded")
	}

	e.host.RefreshKnobs()

	if !(e.etc.AudioType == AUDIO_TYPE_FILE && e.etc.FileAudioReceived) {
		e.etc.GenerateAudio()
	}
	e.host.RefreshAudio()

	if err := e.host.RunSetup(); err != nil {
		return "", err
	}
	drawErr := e.host.RunDraw()
	// Note-on flags are visible to the mode for exactly one frame.
	e.etc.MIDINoteNew = false
	if drawErr != nil {
		return "", drawErr
	}

	data, err := encodeFrameJPEG(e.screen)
	if err != nil {
		return "", fmt.Errorf("failed to encode frame: %w", err)
	}
	return FRAME_DATA_URI_PREFIX + base64.StdEncoding.EncodeToString(data), nil
}

// ScreenSnapshot copies the current screen pixels for a display backend.
func (e *Engine) ScreenSnapshot() []uint8 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.screen.Snapshot()
}

func (e *Engine) ScreenSize() (int, int) {
	return SCREEN_WIDTH, SCREEN_HEIGHT
}

type EngineStatus struct {
	ModeLoaded     bool               `json:"mode_loaded"`
	CurrentMode    string             `json:"current_mode"`
	Knobs          map[string]float64 `json:"knobs"`
	Resolution     [2]int             `json:"resolution"`
	FrameCount     int                `json:"frame_count"`
	AudioType      string             `json:"audio_type"`
	AudioLevel     float64            `json:"audio_level"`
	AudioFrequency float64            `json:"audio_frequency"`
}

func (e *Engine) Status() EngineStatus {
	e.mu.Lock()
	defer e.mu.Unlock()
	return EngineStatus{
		ModeLoaded:  e.host.HasMode(),
		CurrentMode: e.etc.Mode,
		Knobs: map[string]float64{
			"knob1": e.etc.Knob1,
			"knob2": e.etc.Knob2,
			"knob3": e.etc.Knob3,
			"knob4": e.etc.Knob4,
			"knob5": e.etc.Knob5,
		},
		Resolution:     [2]int{e.etc.XRes, e.etc.YRes},
		FrameCount:     e.etc.FrameCount,
		AudioType:      e.etc.AudioType,
		AudioLevel:     e.etc.AudioLevel,
		AudioFrequency: e.etc.AudioFrequency,
	}
}

// Close releases the current mode's interpreter.
func (e *Engine) Close() {
	e.mu.Lock()
	e.host.Close()
	e.mu.Unlock()
}
