//go:build !headless

// audio_monitor_oto.go - OTO v3 audio monitor implementation
package main

import (
	"sync"

	"github.com/ebitengine/oto/v3"
)

type OtoMonitor struct {
	ctx     *oto.Context
	player  *oto.Player
	started bool
	mutex   sync.Mutex
}

func NewOtoMonitor(config AudioConfigFunc) (AudioMonitor, error) {
	op := &oto.NewContextOptions{
		SampleRate:   SAMPLE_RATE,
		ChannelCount: 1,
		Format:       oto.FormatFloat32LE,
	}

	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, err
	}
	<-ready

	m := &OtoMonitor{ctx: ctx}
	m.player = ctx.NewPlayer(newMonitorSynth(config))
	return m, nil
}

func (m *OtoMonitor) Start() error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if !m.started && m.player != nil {
		m.player.Play()
		m.started = true
	}
	return nil
}

func (m *OtoMonitor) Stop() {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.started && m.player != nil {
		m.player.Pause()
		m.started = false
	}
}

func (m *OtoMonitor) Close() {
	m.Stop()
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.player != nil {
		m.player.Close()
		m.player = nil
	}
}

func (m *OtoMonitor) IsStarted() bool {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return m.started
}
