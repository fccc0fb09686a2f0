// frame_loop_test.go - paced render loop tests.
package main

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

// recordingSink captures everything the loop publishes; calls arrive from
// the render goroutine.
type recordingSink struct {
	mu       sync.Mutex
	frames   []string
	statuses []string
}

func (s *recordingSink) PublishFrame(dataURI string) {
	s.mu.Lock()
	s.frames = append(s.frames, dataURI)
	s.mu.Unlock()
}

func (s *recordingSink) PublishStatus(level, message string) {
	s.mu.Lock()
	s.statuses = append(s.statuses, level+": "+message)
	s.mu.Unlock()
}

func (s *recordingSink) frameCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.frames)
}

func (s *recordingSink) firstFrame() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.frames) == 0 {
		return ""
	}
	return s.frames[0]
}

func (s *recordingSink) statusCount(level string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, status := range s.statuses {
		if strings.HasPrefix(status, level+": ") {
			n++
		}
	}
	return n
}

func (s *recordingSink) lastStatus() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.statuses) == 0 {
		return ""
	}
	return s.statuses[len(s.statuses)-1]
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestFrameLoop_DeliversFrames(t *testing.T) {
	e, root := newTestEngine(t)
	writeMode(t, root, "flat", `function draw(screen, etc) screen:fill({8, 8, 8}) end`)
	if _, err := e.LoadMode("flat"); err != nil {
		t.Fatalf("failed to load mode: %v", err)
	}

	sink := &recordingSink{}
	loop := NewFrameLoop(e, nil)
	loop.AttachSink(sink)

	if err := loop.Start(); err != nil {
		t.Fatalf("failed to start loop: %v", err)
	}
	if !loop.Running() {
		t.Error("expected loop running after start")
	}
	waitFor(t, "frames", func() bool { return sink.frameCount() >= 2 })
	loop.Stop()

	if loop.Running() {
		t.Error("expected loop stopped")
	}
	if !strings.HasPrefix(sink.firstFrame(), FRAME_DATA_URI_PREFIX) {
		t.Errorf("expected data URI frames, got %.32q", sink.firstFrame())
	}

	// The render goroutine has exited; no further frames may arrive.
	count := sink.frameCount()
	time.Sleep(50 * time.Millisecond)
	if sink.frameCount() != count {
		t.Error("expected no frames after stop")
	}
}

func TestFrameLoop_DoubleStart(t *testing.T) {
	e, root := newTestEngine(t)
	writeMode(t, root, "flat", `function draw(screen, etc) end`)
	if _, err := e.LoadMode("flat"); err != nil {
		t.Fatalf("failed to load mode: %v", err)
	}

	loop := NewFrameLoop(e, &recordingSink{})
	if err := loop.Start(); err != nil {
		t.Fatalf("failed to start loop: %v", err)
	}
	defer loop.Stop()

	if err := loop.Start(); !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("expected ErrAlreadyRunning, got %v", err)
	}

	loop.Stop()
	if err := loop.Start(); err != nil {
		t.Errorf("expected restart after stop, got %v", err)
	}
}

func TestFrameLoop_StopIdleIsNoOp(t *testing.T) {
	e, _ := newTestEngine(t)
	loop := NewFrameLoop(e, &recordingSink{})
	loop.Stop()
	if loop.Running() {
		t.Error("expected idle loop to stay stopped")
	}
}

func TestFrameLoop_HaltsAfterRepeatedErrors(t *testing.T) {
	e, root := newTestEngine(t)
	writeMode(t, root, "broken", `
function draw(screen, etc)
	error("render failure")
end
`)
	if _, err := e.LoadMode("broken"); err != nil {
		t.Fatalf("failed to load mode: %v", err)
	}

	sink := &recordingSink{}
	loop := NewFrameLoop(e, sink)
	if err := loop.Start(); err != nil {
		t.Fatalf("failed to start loop: %v", err)
	}

	waitFor(t, "error shutdown", func() bool { return !loop.Running() })
	loop.Stop()

	status := sink.lastStatus()
	if !strings.Contains(status, "Stopped after 10 errors") {
		t.Errorf("expected error-budget status, got %q", status)
	}
	if !strings.HasPrefix(status, "error: ") {
		t.Errorf("expected error level, got %q", status)
	}
	if sink.frameCount() != 0 {
		t.Errorf("expected no frames from a failing mode, got %d", sink.frameCount())
	}
}

func TestFrameLoop_RestartAfterErrorShutdownGetsFreshBudget(t *testing.T) {
	e, root := newTestEngine(t)
	writeMode(t, root, "broken", `
function draw(screen, etc)
	error("render failure")
end
`)
	if _, err := e.LoadMode("broken"); err != nil {
		t.Fatalf("failed to load mode: %v", err)
	}

	sink := &recordingSink{}
	loop := NewFrameLoop(e, sink)
	if err := loop.Start(); err != nil {
		t.Fatalf("failed to start loop: %v", err)
	}
	waitFor(t, "first error shutdown", func() bool { return !loop.Running() })

	// The restarted session must not inherit the exhausted error counter:
	// it gets the full budget before stopping again.
	if err := loop.Start(); err != nil {
		t.Fatalf("failed to restart after error shutdown: %v", err)
	}
	waitFor(t, "second error shutdown", func() bool { return !loop.Running() })
	loop.Stop()

	if got := sink.statusCount("warning"); got != 2*MAX_CONSECUTIVE_ERRORS {
		t.Errorf("expected %d render warnings across two sessions, got %d",
			2*MAX_CONSECUTIVE_ERRORS, got)
	}
	if got := sink.statusCount("error"); got != 2 {
		t.Errorf("expected one terminal status per session, got %d", got)
	}
}
