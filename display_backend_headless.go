// display_backend_headless.go - no-op display backend. Used for headless
// builds and whenever a local window is disabled; frames are counted and
// dropped.
package main

import "sync/atomic"

type HeadlessDisplay struct {
	started    bool
	frameCount uint64
}

func NewHeadlessDisplay(controls *DisplayControls) (DisplayOutput, error) {
	return &HeadlessDisplay{}, nil
}

func (h *HeadlessDisplay) Start() error {
	h.started = true
	return nil
}

func (h *HeadlessDisplay) Stop() error {
	h.started = false
	return nil
}

func (h *HeadlessDisplay) Close() error {
	h.started = false
	return nil
}

func (h *HeadlessDisplay) IsStarted() bool {
	return h.started
}

func (h *HeadlessDisplay) UpdateFrame(pixels []byte) {
	atomic.AddUint64(&h.frameCount, 1)
}

func (h *HeadlessDisplay) GetFrameCount() uint64 {
	return atomic.LoadUint64(&h.frameCount)
}
