// main.go - Main entry point for the Luma Engine audio-visual synthesizer.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
)

const DEFAULT_CONFIG_FILE = "luma.yaml"

func boilerPlate() {
	fmt.Println("\n\033[38;2;64;224;208m██╗     ██╗   ██╗███╗   ███╗ █████╗     ███████╗███╗   ██╗ ██████╗ ██╗███╗   ██╗███████╗\033[0m\n\033[38;2;102;183;196m██║     ██║   ██║████╗ ████║██╔══██╗    ██╔════╝████╗  ██║██╔════╝ ██║████╗  ██║██╔════╝\033[0m\n\033[38;2;140;142;184m██║     ██║   ██║██╔████╔██║███████║    █████╗  ██╔██╗ ██║██║  ███╗██║██╔██╗ ██║█████╗\033[0m\n\033[38;2;178;101;172m██║     ██║   ██║██║╚██╔╝██║██╔══██║    ██╔══╝  ██║╚██╗██║██║   ██║██║██║╚██╗██║██╔══╝\033[0m\n\033[38;2;216;60;160m███████╗╚██████╔╝██║ ╚═╝ ██║██║  ██║    ███████╗██║ ╚████║╚██████╔╝██║██║ ╚████║███████╗\033[0m\n\033[38;2;255;20;147m╚══════╝ ╚═════╝ ╚═╝     ╚═╝╚═╝  ╚═╝    ╚══════╝╚═╝  ╚═══╝ ╚═════╝ ╚═╝╚═╝  ╚═══╝╚══════╝\033[0m")
	fmt.Println("\nA Lua-scriptable, audio-reactive visual synthesizer.")
	fmt.Println("https://github.com/lumasynth/LumaEngine")
}

// nextMode picks the entry after current in names, wrapping at the end.
// Unknown or empty current selects the first entry.
func nextMode(names []string, current string) string {
	if len(names) == 0 {
		return ""
	}
	for i, name := range names {
		if name == current {
			return names[(i+1)%len(names)]
		}
	}
	return names[0]
}

func main() {
	boilerPlate()

	var (
		configPath  string
		listen      string
		modesDir    string
		defaultMode string
		display     string
		trackPath   string
		monitorOn   bool
		midiOn      bool
		midiPort    string
		terminalOn  bool
		noAutoStart bool
	)

	flagSet := flag.NewFlagSet(os.Args[0], flag.ContinueOnError)
	flagSet.SetOutput(io.Discard)
	flagSet.StringVar(&configPath, "config", DEFAULT_CONFIG_FILE, "configuration file (YAML)")
	flagSet.StringVar(&listen, "listen", "", "HTTP listen address (overrides config)")
	flagSet.StringVar(&modesDir, "modes", "", "modes directory (overrides config)")
	flagSet.StringVar(&defaultMode, "mode", "", "mode to load at startup (overrides config)")
	flagSet.StringVar(&display, "display", "", "display backend: ebiten, headless (overrides config)")
	flagSet.StringVar(&trackPath, "track", "", "WAV/MP3 file to play as the audio source")
	flagSet.BoolVar(&monitorOn, "monitor", false, "play the simulated audio on the host soundcard")
	flagSet.BoolVar(&midiOn, "midi", false, "open a hardware MIDI input port")
	flagSet.StringVar(&midiPort, "midi-port", "", "MIDI port name prefix (first port if empty)")
	flagSet.BoolVar(&terminalOn, "terminal", false, "interactive knob control on this terminal")
	flagSet.BoolVar(&noAutoStart, "no-autostart", false, "do not start rendering at boot")

	flagSet.Usage = func() {
		flagSet.SetOutput(os.Stdout)
		fmt.Println("Usage: ./luma_engine [-config luma.yaml] [-listen :5001] [-modes modes] [-mode NAME] [-display ebiten|headless] [-track file.wav] [-monitor] [-midi] [-terminal] [-no-autostart]")
		flagSet.PrintDefaults()
	}

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	cfg, err := LoadConfig(configPath)
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if listen != "" {
		cfg.Listen = listen
	}
	if modesDir != "" {
		cfg.ModesDir = modesDir
	}
	if defaultMode != "" {
		cfg.DefaultMode = defaultMode
	}
	if display != "" {
		cfg.Display = display
	}
	if monitorOn {
		cfg.AudioMonitor = true
	}
	if midiOn {
		cfg.MIDI.Enabled = true
	}
	if midiPort != "" {
		cfg.MIDI.PortPrefix = midiPort
	}
	if terminalOn {
		cfg.TerminalKnobs = true
	}
	if noAutoStart {
		cfg.AutoStart = false
	}

	engine := NewEngine(cfg.ModesDir)
	defer engine.Close()
	engine.ConfigureAudio(cfg.Audio.Type, cfg.Audio.Level, cfg.Audio.Frequency)

	tracks := NewTrackPlayer(engine)
	defer tracks.Stop()

	loop := NewFrameLoop(engine, nil)

	server, err := NewControlServer(engine, loop, tracks, cfg.MIDI.KnobCCBase)
	if err != nil {
		fmt.Printf("Failed to initialize control server: %v\n", err)
		os.Exit(1)
	}
	loop.AttachSink(server)

	cycleMode := func() (string, error) {
		names, err := engine.ListModes()
		if err != nil {
			return "", err
		}
		next := nextMode(names, engine.Status().CurrentMode)
		if next == "" {
			return "", fmt.Errorf("no modes found in %s", engine.ModesDir())
		}
		return engine.LoadMode(next)
	}
	pasteMode := func(source string) (string, error) {
		return engine.LoadModeSource("pasted-mode.lua", source)
	}
	statusLine := func() string {
		st := engine.Status()
		state := "stopped"
		if loop.Running() {
			state = "running"
		}
		return fmt.Sprintf("%s | %s | frame %d", st.CurrentMode, state, st.FrameCount)
	}

	controls := &DisplayControls{
		Knob:       engine.Knob,
		SetKnob:    engine.SetKnob,
		CycleMode:  cycleMode,
		PasteMode:  pasteMode,
		StatusLine: statusLine,
	}
	displayOut, err := NewDisplayOutput(cfg.DisplayBackend(), controls)
	if err != nil {
		fmt.Printf("Failed to initialize display: %v\n", err)
		os.Exit(1)
	}
	if err := displayOut.Start(); err != nil {
		fmt.Printf("Failed to start display: %v\n", err)
		os.Exit(1)
	}
	defer displayOut.Close()
	loop.AttachDisplay(displayOut)

	if cfg.AudioMonitor {
		monitor, err := NewAudioMonitor(AUDIO_MONITOR_OTO, engine.AudioConfig)
		if err != nil {
			fmt.Printf("Failed to initialize audio monitor: %v\n", err)
			os.Exit(1)
		}
		if err := monitor.Start(); err != nil {
			fmt.Printf("Failed to start audio monitor: %v\n", err)
			os.Exit(1)
		}
		defer monitor.Close()
	}

	if cfg.MIDI.Enabled {
		port, err := OpenMIDIInput(engine, cfg.MIDI.PortPrefix, uint8(cfg.MIDI.KnobCCBase))
		if err != nil {
			fmt.Printf("Warning: %v\n", err)
		} else {
			defer port.Close()
		}
	}

	if trackPath != "" {
		msg, err := tracks.Play(trackPath)
		if err != nil {
			fmt.Printf("Failed to play track: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(msg)
	}

	if cfg.DefaultMode != "" {
		msg, err := engine.LoadMode(cfg.DefaultMode)
		if err != nil {
			fmt.Printf("Failed to load mode %q: %v\n", cfg.DefaultMode, err)
			os.Exit(1)
		}
		fmt.Println(msg)
	} else if names, err := engine.ListModes(); err == nil && len(names) > 0 {
		if msg, err := engine.LoadMode(names[0]); err != nil {
			fmt.Printf("Warning: failed to load mode %q: %v\n", names[0], err)
		} else {
			fmt.Println(msg)
		}
	} else {
		fmt.Printf("Warning: no modes found in %s\n", cfg.ModesDir)
	}

	serverErr := server.Start(cfg.Listen)
	defer server.Close()
	fmt.Printf("Control server listening on %s\n", cfg.Listen)
	if strings.HasPrefix(cfg.Listen, ":") {
		fmt.Printf("Control panel: http://localhost%s/\n", cfg.Listen)
	}

	if cfg.AutoStart {
		if err := loop.Start(); err != nil {
			fmt.Printf("Failed to start rendering: %v\n", err)
		}
	}
	defer loop.Stop()

	quit := make(chan struct{})
	var quitOnce sync.Once
	requestQuit := func() {
		quitOnce.Do(func() { close(quit) })
	}

	var termKnobs *TerminalKnobs
	if cfg.TerminalKnobs {
		termKnobs = NewTerminalKnobs(TerminalControls{
			Knob:      engine.Knob,
			SetKnob:   engine.SetKnob,
			CycleMode: cycleMode,
			StartLoop: loop.Start,
			StopLoop:  loop.Stop,
			Quit:      requestQuit,
		})
		termKnobs.Start()
		defer termKnobs.Stop()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		fmt.Printf("\nReceived %v, shutting down\n", sig)
	case err := <-serverErr:
		if err != nil {
			fmt.Printf("Control server error: %v\n", err)
		}
	case <-quit:
		fmt.Println("\nShutting down")
	}
}
