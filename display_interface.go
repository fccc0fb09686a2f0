// display_interface.go - local display backend interface and factory.
package main

import "fmt"

// DisplayError provides detailed error context for display operations
type DisplayError struct {
	Operation string // What operation was being attempted
	Details   string // Additional error context
	Err       error  // Underlying error if any
}

func (e *DisplayError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("display %s failed: %s: %v", e.Operation, e.Details, e.Err)
	}
	return fmt.Sprintf("display %s failed: %s", e.Operation, e.Details)
}

func (e *DisplayError) Unwrap() error { return e.Err }

// DisplayOutput mirrors rendered frames to a local window (or swallows them
// when headless). UpdateFrame takes raw RGBA pixels at engine resolution.
type DisplayOutput interface {
	Start() error
	Stop() error
	Close() error
	IsStarted() bool
	UpdateFrame(pixels []byte)
	GetFrameCount() uint64
}

// DisplayControls are the callbacks a display backend drives in response to
// local keyboard input. Any of them may be nil.
type DisplayControls struct {
	Knob       func(index int) float64
	SetKnob    func(index int, value float64)
	CycleMode  func() (string, error)
	PasteMode  func(source string) (string, error)
	StatusLine func() string
}

// Predefined display backend types
const (
	DISPLAY_BACKEND_EBITEN = iota // Pure Go Ebiten window
	DISPLAY_BACKEND_HEADLESS
)

// KNOB_STEP is the per-keypress knob increment shared by the window and
// terminal controls.
const KNOB_STEP = 0.05

// NewDisplayOutput creates a display output using the specified backend.
func NewDisplayOutput(backend int, controls *DisplayControls) (DisplayOutput, error) {
	switch backend {
	case DISPLAY_BACKEND_EBITEN:
		return NewEbitenDisplay(controls)
	case DISPLAY_BACKEND_HEADLESS:
		return NewHeadlessDisplay(controls)
	}
	return nil, &DisplayError{
		Operation: "backend creation",
		Details:   fmt.Sprintf("unknown backend type: %d", backend),
	}
}
