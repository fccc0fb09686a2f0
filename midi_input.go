// midi_input.go - MIDI message handling. Hardware controllers map onto the
// same surface the modes already read: note state, the five knobs (via a
// configurable CC range) and a running clock counter.
package main

import (
	midi "gitlab.com/gomidi/midi/v2"
)

// DEFAULT_KNOB_CC_BASE is the first of five consecutive controller numbers
// mapped onto knob1..knob5. CC 21-25 is the common assignment on small
// controllers.
const DEFAULT_KNOB_CC_BASE = 21

const midiClockByte = 0xF8

// MIDIInput translates incoming messages into engine state changes. Safe to
// call from a driver callback goroutine.
type MIDIInput struct {
	engine     *Engine
	knobCCBase uint8
}

func NewMIDIInput(engine *Engine, knobCCBase uint8) *MIDIInput {
	return &MIDIInput{engine: engine, knobCCBase: knobCCBase}
}

func (mi *MIDIInput) HandleMessage(msg midi.Message, _ int32) {
	var channel, key, velocity, cc, value uint8
	switch {
	case len(msg) > 0 && msg[0] == midiClockByte:
		mi.engine.MIDIClockTick()
	case msg.GetNoteStart(&channel, &key, &velocity):
		mi.engine.NoteOn(int(key), int(velocity))
	case msg.GetNoteEnd(&channel, &key):
		mi.engine.NoteOff(int(key))
	case msg.GetControlChange(&channel, &cc, &value):
		if idx := int(cc) - int(mi.knobCCBase); idx >= 0 && idx < 5 {
			mi.engine.SetKnob(idx+1, float64(value)/127.0)
		}
	}
}

// NoteOn records a held note. The new-note flag stays up until the next
// frame has been drawn.
func (e *Engine) NoteOn(note, velocity int) {
	if note < 0 || note > 127 {
		return
	}
	e.mu.Lock()
	e.etc.MIDINote = note
	e.etc.MIDIVelocity = velocity
	e.etc.MIDINoteNew = true
	e.etc.MIDINotes[note] = 1
	e.mu.Unlock()
}

func (e *Engine) NoteOff(note int) {
	if note < 0 || note > 127 {
		return
	}
	e.mu.Lock()
	e.etc.MIDINotes[note] = 0
	e.mu.Unlock()
}

func (e *Engine) MIDIClockTick() {
	e.mu.Lock()
	e.etc.MIDIClk++
	e.mu.Unlock()
}
