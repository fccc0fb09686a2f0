// etc.go - the shared execution context handed to every mode invocation.
package main

import "math"

// Etc is the single mutable record modes read each frame: audio buffers and
// derived metrics, knob values, screen metadata, and MIDI state. It is
// created once at engine start and persists across mode loads; the engine
// mutex serializes all access (mode code only ever touches it mid-frame,
// under that lock).
type Etc struct {
	// Audio buffers, 100 samples, roughly +/-32768. AudioLeft, AudioRight
	// and AudioInR are aliases refreshed from the mono buffer every frame.
	AudioIn    []float32
	AudioLeft  []float32
	AudioRight []float32
	AudioInR   []float32

	AudioPeak  float64 // max |sample| normalized to [0,1]
	AudioPeakR float64
	AudioTrig  bool
	Trig       bool // alias, kept synchronized with AudioTrig

	Knob1 float64
	Knob2 float64
	Knob3 float64
	Knob4 float64
	Knob5 float64

	Mode string
	XRes int
	YRes int

	// Audio simulation configuration.
	AudioLevel        float64
	AudioFrequency    float64
	AudioType         string
	FrameCount        int
	FileAudioReceived bool // one-way latch until the type switches back to file

	// MIDI state.
	MIDINoteNew  bool
	MIDINote     int
	MIDIVelocity int
	MIDINotes    [128]int
	MIDIClk      int

	BgColor   Color
	FgColor   Color
	AutoClear bool
	FPS       int

	Screen *Surface // canonical screen surface, set by the engine

	scratch []float32 // reused by peak detection
}

// NewEtc builds the context with the synthesizer's power-on defaults.
func NewEtc(xres, yres int) *Etc {
	return &Etc{
		AudioIn:        make([]float32, AUDIO_BUFFER_SIZE),
		AudioLeft:      make([]float32, AUDIO_BUFFER_SIZE),
		AudioRight:     make([]float32, AUDIO_BUFFER_SIZE),
		AudioInR:       make([]float32, AUDIO_BUFFER_SIZE),
		Knob1:          0.5,
		Knob2:          0.5,
		Knob3:          0.5,
		Knob4:          0.5,
		Knob5:          0.5,
		Mode:           "unknown",
		XRes:           xres,
		YRes:           yres,
		AudioFrequency: 440.0,
		AudioType:      AUDIO_TYPE_SINE,
		MIDINote:       60,
		MIDIVelocity:   127,
		BgColor:        Color{0, 0, 0},
		FgColor:        Color{255, 255, 255},
		AutoClear:      true,
		FPS:            TARGET_FPS,
	}
}

// Knob returns knob index 1..5, or 0 for anything else.
func (e *Etc) Knob(index int) float64 {
	switch index {
	case 1:
		return e.Knob1
	case 2:
		return e.Knob2
	case 3:
		return e.Knob3
	case 4:
		return e.Knob4
	case 5:
		return e.Knob5
	}
	return 0
}

// SetKnob stores a pre-clamped knob value. Out-of-range indices are ignored.
func (e *Etc) SetKnob(index int, value float64) {
	switch index {
	case 1:
		e.Knob1 = value
	case 2:
		e.Knob2 = value
	case 3:
		e.Knob3 = value
	case 4:
		e.Knob4 = value
	case 5:
		e.Knob5 = value
	}
}

// ColorPicker maps [0,1] around a full-saturation hue wheel.
func (e *Etc) ColorPicker(value float64) Color {
	return hueWheel(clamp01(value) * 360)
}

// ColorPickerBG is the background palette: the plain hue wheel.
func (e *Etc) ColorPickerBG(value float64) Color {
	return hueWheel(clamp01(value) * 360)
}

// ColorPickerFG is the foreground palette, offset half a turn so foreground
// and background picks at the same knob value stay contrasting.
func (e *Etc) ColorPickerFG(value float64) Color {
	return hueWheel(math.Mod(clamp01(value)*360+180, 360))
}

func hueWheel(hue float64) Color {
	h := hue / 60
	x := uint8(255 * (1 - math.Abs(math.Mod(h, 2)-1)))
	switch {
	case h < 1:
		return Color{255, x, 0}
	case h < 2:
		return Color{x, 255, 0}
	case h < 3:
		return Color{0, 255, x}
	case h < 4:
		return Color{0, x, 255}
	case h < 5:
		return Color{x, 0, 255}
	default:
		return Color{255, 0, x}
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
