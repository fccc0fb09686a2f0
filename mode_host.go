// mode_host.go - loads Lua mode programs and drives their lifecycle hooks.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	lua "github.com/yuin/gopher-lua"
)

const (
	MODE_ENTRY_FILE = "main.lua"
	UPLOAD_PREFIX   = "uploaded-"
)

// modeProgram is one loaded mode: its interpreter, its lifecycle hooks, and
// the cached binding handles used for per-frame refreshes. The whole value
// is installed or discarded as a unit; no partially constructed program is
// ever visible.
type modeProgram struct {
	state *lua.LState
	setup lua.LValue     // lua.LNil when the mode declares none
	draw  *lua.LFunction // required
	binds *luaBindings
	name  string
	dir   string
}

// ModeHost owns the current mode program. It carries no lock of its own:
// the engine mutex serializes loads, knob refreshes, and hook invocations,
// which also guarantees single-goroutine access to each lua.LState.
type ModeHost struct {
	screen      *Surface
	etc         *Etc
	current     *modeProgram
	initialized bool // setup has completed for the current program
}

func NewModeHost(screen *Surface, etc *Etc) *ModeHost {
	return &ModeHost{screen: screen, etc: etc}
}

// Load reads <dir>/main.lua into a fresh interpreter with the full drawing
// and context API bound, runs its top-level code once, and installs its
// hooks. On success the previous program is torn down and the one-time-init
// flag rearms. On any failure the previous program keeps rendering and the
// returned error carries the Lua message and stack trace.
func (h *ModeHost) Load(dir string) (string, error) {
	entry := filepath.Join(dir, MODE_ENTRY_FILE)
	if _, err := os.Stat(entry); err != nil {
		return "", fmt.Errorf("%s not found in %s", MODE_ENTRY_FILE, dir)
	}

	L := lua.NewState()
	binds := bindModeAPI(L, h.screen, h.etc, dir)
	binds.refreshKnobs(L, h.etc)
	binds.refreshAudio(h.etc)

	if err := L.DoFile(entry); err != nil {
		L.Close()
		return "", luaFailure("error loading mode", err)
	}

	drawFn, ok := L.GetGlobal("draw").(*lua.LFunction)
	if !ok {
		L.Close()
		return "", fmt.Errorf("mode must declare a draw function")
	}

	name := strings.TrimPrefix(filepath.Base(filepath.Clean(dir)), UPLOAD_PREFIX)

	old := h.current
	h.current = &modeProgram{
		state: L,
		setup: L.GetGlobal("setup"),
		draw:  drawFn,
		binds: binds,
		name:  name,
		dir:   dir,
	}
	h.initialized = false
	h.etc.Mode = name
	if old != nil {
		old.state.Close()
	}
	return fmt.Sprintf("Mode '%s' loaded successfully", name), nil
}

// HasMode reports whether a draw hook is installed.
func (h *ModeHost) HasMode() bool { return h.current != nil }

// CurrentName returns the display name of the loaded mode, or "".
func (h *ModeHost) CurrentName() string {
	if h.current == nil {
		return ""
	}
	return h.current.name
}

// RefreshKnobs re-binds the knob values into the mode's bare-name globals.
// The context bindings read the live fields, so they need no push.
func (h *ModeHost) RefreshKnobs() {
	if h.current == nil {
		return
	}
	h.current.binds.refreshKnobs(h.current.state, h.etc)
}

// RefreshAudio pushes the current audio buffers and MIDI table into the
// mode's cached Lua tables.
func (h *ModeHost) RefreshAudio() {
	if h.current == nil {
		return
	}
	h.current.binds.refreshAudio(h.etc)
}

// RunSetup invokes the mode's setup hook if it exists and has not yet
// completed for this program. The init flag is set only after setup returns
// cleanly, so a failing setup is retried on the next frame rather than
// silently skipped.
func (h *ModeHost) RunSetup() error {
	if h.current == nil || h.initialized {
		return nil
	}
	fn, ok := h.current.setup.(*lua.LFunction)
	if !ok {
		return nil
	}
	err := h.current.state.CallByParam(lua.P{Fn: fn, NRet: 0, Protect: true},
		h.current.binds.screenUD, h.current.binds.etcUD)
	if err != nil {
		return luaFailure("error in setup", err)
	}
	h.initialized = true
	return nil
}

// RunDraw invokes the mode's per-frame draw hook.
func (h *ModeHost) RunDraw() error {
	if h.current == nil {
		return fmt.Errorf("no mode loaded")
	}
	err := h.current.state.CallByParam(lua.P{Fn: h.current.draw, NRet: 0, Protect: true},
		h.current.binds.screenUD, h.current.binds.etcUD)
	if err != nil {
		return luaFailure("error in draw", err)
	}
	return nil
}

// Close tears down the current program.
func (h *ModeHost) Close() {
	if h.current != nil {
		h.current.state.Close()
		h.current = nil
	}
}

// luaFailure flattens a gopher-lua error into one message that keeps the
// script's own error text and stack trace visible to the control plane.
func luaFailure(prefix string, err error) error {
	if apiErr, ok := err.(*lua.ApiError); ok {
		msg := apiErr.Object.String()
		if apiErr.StackTrace != "" {
			return fmt.Errorf("%s: %s\n%s", prefix, msg, apiErr.StackTrace)
		}
		return fmt.Errorf("%s: %s", prefix, msg)
	}
	return fmt.Errorf("%s: %w", prefix, err)
}

// ListModes scans a directory for subdirectories that contain the mode
// entry file, sorted by name. Used by the control plane's mode browser.
func ListModes(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("failed to read modes directory: %w", err)
	}
	var names []string
	for _, ent := range entries {
		if !ent.IsDir() {
			continue
		}
		if _, err := os.Stat(filepath.Join(root, ent.Name(), MODE_ENTRY_FILE)); err == nil {
			names = append(names, ent.Name())
		}
	}
	return names, nil
}
