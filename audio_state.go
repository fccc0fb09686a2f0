// audio_state.go - per-frame audio synthesis, external ingestion, and the
// derived peak/trigger metrics.
package main

import (
	"math"
	"math/rand"

	"github.com/viterin/vek/vek32"
)

const (
	AUDIO_BUFFER_SIZE = 100   // samples per frame, matching the hardware
	SAMPLE_RATE       = 44100 // virtual rate for the synthetic generators

	// Peak normalization divisors differ between synthesized and externally
	// ingested audio; the hardware behaves this way and modes are tuned to
	// it, so both constants stay.
	PEAK_DIVISOR_SIM  = 32767.0
	PEAK_DIVISOR_LIVE = 32768.0

	TRIG_THRESHOLD_SIM  = 0.3
	TRIG_THRESHOLD_LIVE = 0.1

	AUDIO_TYPE_SINE    = "sine"
	AUDIO_TYPE_NOISE   = "noise"
	AUDIO_TYPE_BEAT    = "beat"
	AUDIO_TYPE_SILENCE = "silence"
	AUDIO_TYPE_FILE    = "file"
)

// GenerateAudio synthesizes the next 100-sample buffer from the current
// configuration and refreshes every derived field. The sine and beat
// generators accumulate phase across frames through the running sample index
// so consecutive buffers join seamlessly. Unknown types, and file type
// before any external audio has arrived, fall back to the sine generator.
func (e *Etc) GenerateAudio() {
	e.FrameCount++

	switch e.AudioType {
	case AUDIO_TYPE_SILENCE:
		clear(e.AudioIn)
	case AUDIO_TYPE_NOISE:
		amp := e.AudioLevel * 32767
		for i := range e.AudioIn {
			e.AudioIn[i] = float32((rand.Float64()*2 - 1) * amp)
		}
	case AUDIO_TYPE_BEAT:
		amp := e.AudioLevel * 32767
		for i := range e.AudioIn {
			t := e.sampleTime(i)
			phase := math.Mod(t*2.0, 1.0)
			if phase < 0.1 {
				envelope := (0.1 - phase) / 0.1
				e.AudioIn[i] = float32(amp * envelope * math.Sin(2*math.Pi*60*t))
			} else {
				e.AudioIn[i] = 0
			}
		}
	default: // sine, file before latch, unknown
		amp := e.AudioLevel * 32767
		for i := range e.AudioIn {
			t := e.sampleTime(i)
			e.AudioIn[i] = float32(amp * math.Sin(2*math.Pi*e.AudioFrequency*t))
		}
	}

	e.refreshDerived(PEAK_DIVISOR_SIM, TRIG_THRESHOLD_SIM)
}

func (e *Etc) sampleTime(i int) float64 {
	return float64(e.FrameCount*AUDIO_BUFFER_SIZE+i) / SAMPLE_RATE
}

// IngestAudio consumes a raw byte capture (0-255, 128 = silence), strides it
// down to exactly 100 samples, rescales to the +/-32768 range modes expect,
// and latches external-audio mode. Empty input is a silent no-op that leaves
// all existing audio state untouched.
func (e *Etc) IngestAudio(data []byte) {
	if len(data) == 0 {
		return
	}
	e.FileAudioReceived = true

	step := len(data) / AUDIO_BUFFER_SIZE
	if step < 1 {
		step = 1
	}
	for i := 0; i < AUDIO_BUFFER_SIZE; i++ {
		idx := i * step
		if idx < len(data) {
			e.AudioIn[i] = (float32(data[idx]) - 128) * 256
		} else {
			e.AudioIn[i] = 0
		}
	}

	e.refreshDerived(PEAK_DIVISOR_LIVE, TRIG_THRESHOLD_LIVE)
}

// ConfigureAudio updates the simulation parameters. Switching to file type
// re-arms the external-audio latch; switching away clears any stale external
// samples to silence (the next synthetic frame overwrites them anyway).
func (e *Etc) ConfigureAudio(audioType string, level, frequency float64) {
	e.AudioType = audioType
	e.AudioLevel = clamp01(level)
	e.AudioFrequency = frequency

	if audioType == AUDIO_TYPE_FILE {
		e.FileAudioReceived = false
		return
	}
	clear(e.AudioIn)
	clear(e.AudioLeft)
	clear(e.AudioRight)
	clear(e.AudioInR)
}

// refreshDerived copies the mono buffer into the stereo aliases and
// recomputes peak and trigger state.
func (e *Etc) refreshDerived(divisor, threshold float64) {
	copy(e.AudioLeft, e.AudioIn)
	copy(e.AudioRight, e.AudioIn)
	copy(e.AudioInR, e.AudioIn)

	if e.scratch == nil {
		e.scratch = make([]float32, AUDIO_BUFFER_SIZE)
	}
	copy(e.scratch, e.AudioIn)
	vek32.Abs_Inplace(e.scratch)
	peak := float64(vek32.Max(e.scratch)) / divisor

	e.AudioPeak = peak
	e.AudioPeakR = peak
	e.AudioTrig = peak > threshold
	e.Trig = e.AudioTrig
}
