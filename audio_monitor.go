// audio_monitor.go - speaker monitoring of the synthesized audio. The
// monitor renders the engine's current audio configuration continuously at
// the device rate so the operator hears what the modes are visualizing.
package main

import (
	"fmt"
	"math"
	"math/rand"
)

// AudioConfigFunc reports the audio settings the monitor should render:
// type, level and frequency.
type AudioConfigFunc func() (string, float64, float64)

type AudioMonitor interface {
	Start() error
	Stop()
	Close()
	IsStarted() bool
}

// Predefined audio monitor backend types
const (
	AUDIO_MONITOR_OTO = iota // OTO v3 speaker output
	AUDIO_MONITOR_NONE
)

func NewAudioMonitor(backend int, config AudioConfigFunc) (AudioMonitor, error) {
	switch backend {
	case AUDIO_MONITOR_OTO:
		return NewOtoMonitor(config)
	case AUDIO_MONITOR_NONE:
		return &NullMonitor{}, nil
	}
	return nil, fmt.Errorf("unknown audio monitor backend: %d", backend)
}

// NullMonitor swallows everything.
type NullMonitor struct {
	started bool
}

func (m *NullMonitor) Start() error    { m.started = true; return nil }
func (m *NullMonitor) Stop()           { m.started = false }
func (m *NullMonitor) Close()          { m.started = false }
func (m *NullMonitor) IsStarted() bool { return m.started }

// monitorSynth is an io.Reader producing little-endian float32 mono samples
// for the configured audio type. Sample position runs continuously so tones
// stay phase-coherent across reads.
type monitorSynth struct {
	config    AudioConfigFunc
	sampleIdx int64
	sampleBuf []float32
}

func newMonitorSynth(config AudioConfigFunc) *monitorSynth {
	return &monitorSynth{
		config:    config,
		sampleBuf: make([]float32, 4096),
	}
}

func (ms *monitorSynth) Read(p []byte) (int, error) {
	audioType, level, frequency := ms.config()

	numSamples := len(p) / 4
	if len(ms.sampleBuf) < numSamples {
		ms.sampleBuf = make([]float32, numSamples)
	}
	samples := ms.sampleBuf[:numSamples]

	for i := 0; i < numSamples; i++ {
		t := float64(ms.sampleIdx) / SAMPLE_RATE
		ms.sampleIdx++
		samples[i] = ms.sample(audioType, level, frequency, t)
	}

	encodeFloat32LE(p, samples)
	return numSamples * 4, nil
}

func (ms *monitorSynth) sample(audioType string, level, frequency, t float64) float32 {
	switch audioType {
	case AUDIO_TYPE_SINE:
		return float32(level * math.Sin(2*math.Pi*frequency*t))
	case AUDIO_TYPE_NOISE:
		return float32(level * (rand.Float64()*2 - 1))
	case AUDIO_TYPE_BEAT:
		beatPhase := math.Mod(t*2, 1.0)
		if beatPhase < 0.1 {
			envelope := (0.1 - beatPhase) / 0.1
			return float32(level * envelope * math.Sin(2*math.Pi*60*t))
		}
		return 0
	default:
		// silence, captured audio, unknown
		return 0
	}
}

func encodeFloat32LE(dst []byte, samples []float32) {
	for i, v := range samples {
		bits := math.Float32bits(v)
		dst[i*4] = byte(bits)
		dst[i*4+1] = byte(bits >> 8)
		dst[i*4+2] = byte(bits >> 16)
		dst[i*4+3] = byte(bits >> 24)
	}
}
