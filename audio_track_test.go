// audio_track_test.go - tests for track decoding and frame-cadence playback.
package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// writeWAV encodes data as a 16-bit PCM WAV file at path. data is interleaved
// when channels > 1.
func writeWAV(t *testing.T, path string, rate, channels int, data []int) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create %s: %v", path, err)
	}
	defer f.Close()

	enc := wav.NewEncoder(f, rate, 16, channels, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: channels, SampleRate: rate},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatalf("failed to encode WAV: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("failed to finalize WAV: %v", err)
	}
}

func trackDir(t *testing.T) string {
	t.Helper()
	dir, err := os.MkdirTemp("", "luma-track-test")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })
	return dir
}

func TestTrack_SampleToCaptureByte(t *testing.T) {
	cases := []struct {
		sample float32
		want   byte
	}{
		{0, 128},
		{1.0, 255},
		{-1.0, 1},
		{0.5, 192},
		{-0.5, 64},
		{2.5, 255},
		{-2.5, 0},
	}
	for _, c := range cases {
		if got := sampleToCaptureByte(c.sample); got != c.want {
			t.Errorf("sampleToCaptureByte(%v): expected %d, got %d", c.sample, c.want, got)
		}
	}
}

func TestTrack_MissingFile(t *testing.T) {
	_, err := LoadTrack(filepath.Join(trackDir(t), "nope.wav"))
	if err == nil {
		t.Fatal("expected error for missing file, got nil")
	}
	if !strings.Contains(err.Error(), "failed to open track") {
		t.Errorf("expected open failure, got %q", err)
	}
}

func TestTrack_UnsupportedFormat(t *testing.T) {
	path := filepath.Join(trackDir(t), "song.ogg")
	if err := os.WriteFile(path, []byte("OggS"), 0o644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}
	_, err := LoadTrack(path)
	if err == nil {
		t.Fatal("expected error for unsupported extension, got nil")
	}
	if !strings.Contains(err.Error(), "unsupported track format") {
		t.Errorf("expected unsupported-format error, got %q", err)
	}
}

func TestTrack_InvalidWAV(t *testing.T) {
	path := filepath.Join(trackDir(t), "bad.wav")
	if err := os.WriteFile(path, []byte("not really a wave"), 0o644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}
	_, err := LoadTrack(path)
	if err == nil {
		t.Fatal("expected error for invalid WAV, got nil")
	}
	if !strings.Contains(err.Error(), "invalid WAV file") {
		t.Errorf("expected invalid-WAV error, got %q", err)
	}
}

func TestTrack_InvalidMP3(t *testing.T) {
	path := filepath.Join(trackDir(t), "bad.mp3")
	if err := os.WriteFile(path, []byte("this is not an mp3 stream"), 0o644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}
	_, err := LoadTrack(path)
	if err == nil {
		t.Fatal("expected error for invalid MP3, got nil")
	}
	if !strings.Contains(err.Error(), "failed to decode MP3") {
		t.Errorf("expected MP3 decode error, got %q", err)
	}
}

func TestTrack_MonoWAVNormalized(t *testing.T) {
	path := filepath.Join(trackDir(t), "tone.wav")
	data := make([]int, 256)
	for i := range data {
		if i%2 == 0 {
			data[i] = 16384
		} else {
			data[i] = -16384
		}
	}
	writeWAV(t, path, 44100, 1, data)

	track, err := LoadTrack(path)
	if err != nil {
		t.Fatalf("failed to load track: %v", err)
	}
	if track.Name != "tone.wav" {
		t.Errorf("expected name tone.wav, got %q", track.Name)
	}
	if track.Rate != 44100 {
		t.Errorf("expected rate 44100, got %d", track.Rate)
	}
	if len(track.Samples) != 256 {
		t.Fatalf("expected 256 samples, got %d", len(track.Samples))
	}
	if track.Samples[0] != 0.5 {
		t.Errorf("expected sample 0 = 0.5, got %v", track.Samples[0])
	}
	if track.Samples[1] != -0.5 {
		t.Errorf("expected sample 1 = -0.5, got %v", track.Samples[1])
	}
}

func TestTrack_StereoWAVMixesToMono(t *testing.T) {
	path := filepath.Join(trackDir(t), "stereo.wav")
	data := make([]int, 20)
	for i := 0; i < len(data); i += 2 {
		data[i] = 8192
		data[i+1] = 16384
	}
	writeWAV(t, path, 22050, 2, data)

	track, err := LoadTrack(path)
	if err != nil {
		t.Fatalf("failed to load track: %v", err)
	}
	if track.Rate != 22050 {
		t.Errorf("expected rate 22050, got %d", track.Rate)
	}
	if len(track.Samples) != 10 {
		t.Fatalf("expected 10 mono frames, got %d", len(track.Samples))
	}
	// (8192 + 16384) / 2 / 32768
	if track.Samples[0] != 0.375 {
		t.Errorf("expected mixed sample 0.375, got %v", track.Samples[0])
	}
}

func TestTrackPlayer_PlayAndStop(t *testing.T) {
	e, _ := newTestEngine(t)
	p := NewTrackPlayer(e)
	defer p.Stop()

	path := filepath.Join(trackDir(t), "beat.wav")
	data := make([]int, 256)
	for i := range data {
		data[i] = 16384
	}
	writeWAV(t, path, 44100, 1, data)

	msg, err := p.Play(path)
	if err != nil {
		t.Fatalf("failed to play track: %v", err)
	}
	if msg != `Playing track "beat.wav" (0.0s)` {
		t.Errorf("unexpected play message %q", msg)
	}
	if !p.Playing() {
		t.Error("expected Playing true after Play")
	}
	if p.TrackName() != "beat.wav" {
		t.Errorf("expected track name beat.wav, got %q", p.TrackName())
	}

	audioType, level, _ := e.AudioConfig()
	if audioType != AUDIO_TYPE_FILE {
		t.Errorf("expected audio type %q, got %q", AUDIO_TYPE_FILE, audioType)
	}
	if level != 1.0 {
		t.Errorf("expected level 1.0, got %v", level)
	}

	waitFor(t, "file audio to latch", func() bool {
		e.mu.Lock()
		defer e.mu.Unlock()
		return e.etc.FileAudioReceived
	})

	// Every track sample is 0.5, so every capture byte is 192 and every
	// ingested value is (192-128)*256.
	e.mu.Lock()
	got := e.etc.AudioIn[0]
	e.mu.Unlock()
	if got != 16384 {
		t.Errorf("expected ingested sample 16384, got %v", got)
	}

	p.Stop()
	if p.Playing() {
		t.Error("expected Playing false after Stop")
	}
}

func TestTrackPlayer_EmptyTrack(t *testing.T) {
	e, _ := newTestEngine(t)
	p := NewTrackPlayer(e)

	path := filepath.Join(trackDir(t), "empty.wav")
	writeWAV(t, path, 44100, 1, nil)

	_, err := p.Play(path)
	if err == nil {
		t.Fatal("expected error for empty track, got nil")
	}
	if !strings.Contains(err.Error(), "track is empty") {
		t.Errorf("expected empty-track error, got %q", err)
	}
	if p.Playing() {
		t.Error("expected Playing false after failed Play")
	}
}

func TestTrackPlayer_RestartSwitchesTrack(t *testing.T) {
	e, _ := newTestEngine(t)
	p := NewTrackPlayer(e)
	defer p.Stop()

	dir := trackDir(t)
	first := filepath.Join(dir, "first.wav")
	second := filepath.Join(dir, "second.wav")
	data := make([]int, 128)
	for i := range data {
		data[i] = 8192
	}
	writeWAV(t, first, 44100, 1, data)
	writeWAV(t, second, 44100, 1, data)

	if _, err := p.Play(first); err != nil {
		t.Fatalf("failed to play first track: %v", err)
	}
	if _, err := p.Play(second); err != nil {
		t.Fatalf("failed to play second track: %v", err)
	}
	if p.TrackName() != "second.wav" {
		t.Errorf("expected current track second.wav, got %q", p.TrackName())
	}
	if !p.Playing() {
		t.Error("expected Playing true after restart")
	}
}
