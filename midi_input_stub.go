//go:build !cgo || headless

package main

import "fmt"

type MIDIPort struct{}

func OpenMIDIInput(engine *Engine, portPrefix string, knobCCBase uint8) (*MIDIPort, error) {
	return nil, fmt.Errorf("MIDI input is not available in this build")
}

func (p *MIDIPort) Close() {}
