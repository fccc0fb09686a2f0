// audio_track.go - audio file playback source. Decodes a WAV or MP3 track
// to mono samples and feeds it through the captured-audio ingestion path in
// frame-sized windows, so modes see file audio exactly the way they see
// live capture.
package main

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-audio/wav"
	mp3 "github.com/hajimehoshi/go-mp3"
)

// Track holds a decoded audio file: mono samples in -1..1 at the file's own
// sample rate.
type Track struct {
	Name    string
	Rate    int
	Samples []float32
}

// LoadTrack decodes path by extension. Supported: .wav, .mp3.
func LoadTrack(path string) (*Track, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open track: %w", err)
	}
	defer f.Close()

	name := filepath.Base(path)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		return loadWAVTrack(f, name)
	case ".mp3":
		return loadMP3Track(f, name)
	}
	return nil, fmt.Errorf("unsupported track format: %s", path)
}

func loadWAVTrack(f *os.File, name string) (*Track, error) {
	decoder := wav.NewDecoder(f)
	if !decoder.IsValidFile() {
		return nil, fmt.Errorf("invalid WAV file: %s", name)
	}
	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to decode WAV: %w", err)
	}
	bitDepth := int(decoder.SampleBitDepth())
	if bitDepth == 0 {
		bitDepth = 16
	}
	factor := math.Pow(2, float64(bitDepth-1))

	nch := buf.Format.NumChannels
	if nch < 1 {
		nch = 1
	}
	nframes := len(buf.Data) / nch
	samples := make([]float32, nframes)
	for i := 0; i < nframes; i++ {
		sum := 0.0
		for ch := 0; ch < nch; ch++ {
			sum += float64(buf.Data[i*nch+ch])
		}
		samples[i] = float32(sum / float64(nch) / factor)
	}

	return &Track{Name: name, Rate: buf.Format.SampleRate, Samples: samples}, nil
}

func loadMP3Track(f *os.File, name string) (*Track, error) {
	decoder, err := mp3.NewDecoder(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode MP3: %w", err)
	}

	// go-mp3 always emits signed 16-bit little-endian stereo.
	raw, err := io.ReadAll(decoder)
	if err != nil {
		return nil, fmt.Errorf("failed to read MP3 stream: %w", err)
	}
	nframes := len(raw) / 4
	samples := make([]float32, nframes)
	for i := 0; i < nframes; i++ {
		l := int16(uint16(raw[i*4]) | uint16(raw[i*4+1])<<8)
		r := int16(uint16(raw[i*4+2]) | uint16(raw[i*4+3])<<8)
		samples[i] = float32((int(l) + int(r)) / 2)
	}
	for i := range samples {
		samples[i] /= 32768
	}

	return &Track{Name: name, Rate: decoder.SampleRate(), Samples: samples}, nil
}

// TrackPlayer streams a loaded track into the engine at frame cadence.
type TrackPlayer struct {
	engine *Engine

	mu      sync.Mutex
	track   *Track
	pos     int
	running atomic.Bool
	done    chan struct{}
}

func NewTrackPlayer(engine *Engine) *TrackPlayer {
	return &TrackPlayer{engine: engine}
}

// Play loads the track at path and starts streaming it. Any playing track
// is stopped first. The engine is switched to captured-audio mode so the
// first window latches.
func (p *TrackPlayer) Play(path string) (string, error) {
	track, err := LoadTrack(path)
	if err != nil {
		return "", err
	}
	if len(track.Samples) == 0 {
		return "", fmt.Errorf("track is empty: %s", track.Name)
	}

	p.Stop()

	p.mu.Lock()
	p.track = track
	p.pos = 0
	p.done = make(chan struct{})
	p.mu.Unlock()

	p.engine.ConfigureAudio(AUDIO_TYPE_FILE, 1.0, 0)
	p.running.Store(true)
	go p.run(track, p.done)

	return fmt.Sprintf("Playing track %q (%.1fs)", track.Name,
		float64(len(track.Samples))/float64(track.Rate)), nil
}

// Stop halts streaming. The engine keeps its last ingested window.
func (p *TrackPlayer) Stop() {
	p.mu.Lock()
	done := p.done
	p.mu.Unlock()
	if p.running.CompareAndSwap(true, false) && done != nil {
		<-done
	}
}

func (p *TrackPlayer) Playing() bool { return p.running.Load() }

func (p *TrackPlayer) TrackName() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.track == nil {
		return ""
	}
	return p.track.Name
}

func (p *TrackPlayer) run(track *Track, done chan struct{}) {
	defer close(done)

	period := time.Second / TARGET_FPS
	window := track.Rate / TARGET_FPS
	if window < AUDIO_BUFFER_SIZE {
		window = AUDIO_BUFFER_SIZE
	}
	buf := make([]byte, window)

	for p.running.Load() {
		start := time.Now()

		p.mu.Lock()
		pos := p.pos
		for i := 0; i < window; i++ {
			buf[i] = sampleToCaptureByte(track.Samples[(pos+i)%len(track.Samples)])
		}
		p.pos = (pos + window) % len(track.Samples)
		p.mu.Unlock()

		p.engine.IngestAudio(buf)

		if sleep := period - time.Since(start); sleep > 0 {
			time.Sleep(sleep)
		}
	}
}

// sampleToCaptureByte maps -1..1 to the unsigned capture format (128 is
// silence).
func sampleToCaptureByte(s float32) byte {
	v := int(math.Round(float64(s)*127)) + 128
	if v < 0 {
		v = 0
	}
	if v > 255 {
		v = 255
	}
	return byte(v)
}
