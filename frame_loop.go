// frame_loop.go - paced render loop. Renders at the target rate on a
// background goroutine, publishes frames to a sink, and shuts itself down
// after too many consecutive render failures.
package main

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

const (
	TARGET_FPS             = 30
	MAX_CONSECUTIVE_ERRORS = 10
)

var ErrAlreadyRunning = errors.New("rendering already running")

// FrameSink receives rendered frames and loop status messages. Both calls
// arrive from the render goroutine.
type FrameSink interface {
	PublishFrame(dataURI string)
	PublishStatus(level, message string)
}

type FrameLoop struct {
	engine  *Engine
	sink    FrameSink
	display DisplayOutput

	mu      sync.Mutex
	running atomic.Bool
	done    chan struct{}
}

func NewFrameLoop(engine *Engine, sink FrameSink) *FrameLoop {
	return &FrameLoop{engine: engine, sink: sink}
}

// AttachSink sets the frame sink. Call before Start.
func (l *FrameLoop) AttachSink(sink FrameSink) {
	l.sink = sink
}

// AttachDisplay mirrors rendered frames to a local display backend. Call
// before Start.
func (l *FrameLoop) AttachDisplay(d DisplayOutput) {
	l.display = d
}

func (l *FrameLoop) Running() bool { return l.running.Load() }

// Start launches the render goroutine.
func (l *FrameLoop) Start() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.running.Load() {
		return ErrAlreadyRunning
	}
	// A loop that stopped itself on the error budget clears the running
	// flag before its goroutine exits; wait it out so two render
	// goroutines never overlap.
	if l.done != nil {
		<-l.done
	}
	l.running.Store(true)
	l.done = make(chan struct{})
	go l.run(l.done)
	return nil
}

// Stop halts rendering at the next tick boundary and waits for the render
// goroutine to exit. Stopping an idle loop is a no-op.
func (l *FrameLoop) Stop() {
	l.mu.Lock()
	done := l.done
	stopped := l.running.CompareAndSwap(true, false)
	l.mu.Unlock()
	if stopped && done != nil {
		<-done
	}
}

func (l *FrameLoop) run(done chan struct{}) {
	defer close(done)

	period := time.Second / TARGET_FPS
	frames := 0
	errCount := 0

	fmt.Println("Render loop started")

	for l.running.Load() {
		start := time.Now()

		dataURI, err := l.engine.RenderFrame()
		if err == nil {
			l.publishFrame(dataURI)
			frames++
			errCount = 0
			if frames%TARGET_FPS == 0 {
				fmt.Printf("Rendered %d frames\n", frames)
			}
		} else {
			errCount++
			fmt.Printf("Render error (%d): %v\n", errCount, err)
			l.publishStatus("warning", fmt.Sprintf("Render error: %v", err))
			if errCount >= MAX_CONSECUTIVE_ERRORS {
				fmt.Println("Too many consecutive errors, stopping render loop")
				l.publishStatus("error", fmt.Sprintf("Stopped after %d errors: %v", MAX_CONSECUTIVE_ERRORS, err))
				l.running.Store(false)
				break
			}
		}

		if sleep := period - time.Since(start); sleep > 0 {
			time.Sleep(sleep)
		}
	}

	fmt.Println("Render loop stopped")
}

func (l *FrameLoop) publishFrame(dataURI string) {
	if l.sink != nil {
		l.sink.PublishFrame(dataURI)
	}
	if l.display != nil {
		l.display.UpdateFrame(l.engine.ScreenSnapshot())
	}
}

func (l *FrameLoop) publishStatus(level, message string) {
	if l.sink != nil {
		l.sink.PublishStatus(level, message)
	}
}
