//go:build cgo && !headless

// midi_input_rtmidi.go - rtmidi-backed MIDI port listener.
package main

import (
	"fmt"
	"strings"

	midi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
)

type MIDIPort struct {
	driver *rtmididrv.Driver
	in     drivers.In
	stop   func()
}

// OpenMIDIInput opens the first input port whose name starts with
// portPrefix (or the first port of all, when the prefix is empty) and
// routes its messages into the engine.
func OpenMIDIInput(engine *Engine, portPrefix string, knobCCBase uint8) (*MIDIPort, error) {
	driver, err := rtmididrv.New()
	if err != nil {
		return nil, fmt.Errorf("failed to open MIDI driver: %w", err)
	}

	ins, err := driver.Ins()
	if err != nil {
		driver.Close()
		return nil, fmt.Errorf("failed to list MIDI inputs: %w", err)
	}

	var in drivers.In
	for _, candidate := range ins {
		if portPrefix == "" || strings.HasPrefix(candidate.String(), portPrefix) {
			in = candidate
			break
		}
	}
	if in == nil {
		driver.Close()
		return nil, fmt.Errorf("no MIDI input matching %q", portPrefix)
	}

	if err := in.Open(); err != nil {
		driver.Close()
		return nil, fmt.Errorf("failed to open MIDI input %s: %w", in, err)
	}

	handler := NewMIDIInput(engine, knobCCBase)
	stop, err := midi.ListenTo(in, handler.HandleMessage)
	if err != nil {
		in.Close()
		driver.Close()
		return nil, fmt.Errorf("failed to listen on MIDI input %s: %w", in, err)
	}

	fmt.Printf("MIDI input: %s (knobs on CC %d-%d)\n", in, knobCCBase, knobCCBase+4)
	return &MIDIPort{driver: driver, in: in, stop: stop}, nil
}

func (p *MIDIPort) Close() {
	if p.stop != nil {
		p.stop()
	}
	if p.in != nil && p.in.IsOpen() {
		p.in.Close()
	}
	if p.driver != nil {
		p.driver.Close()
	}
}
