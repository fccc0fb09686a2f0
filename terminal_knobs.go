// terminal_knobs.go - interactive knob control on the launching terminal.
// Digits select a knob, +/- and the arrow keys adjust it, Tab cycles modes,
// s/x start and stop rendering, q quits. Only instantiated in main.go for
// interactive use — never in tests.
package main

import (
	"fmt"
	"os"
	"sync"
	"syscall"
	"time"

	"golang.org/x/term"
)

type TerminalControls struct {
	Knob      func(index int) float64
	SetKnob   func(index int, value float64)
	CycleMode func() (string, error)
	StartLoop func() error
	StopLoop  func()
	Quit      func()
}

type TerminalKnobs struct {
	controls     TerminalControls
	stopCh       chan struct{}
	done         chan struct{}
	stopped      sync.Once
	fd           int
	nonblockSet  bool
	oldTermState *term.State

	selected int
	escState int
}

func NewTerminalKnobs(controls TerminalControls) *TerminalKnobs {
	return &TerminalKnobs{
		controls: controls,
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
		selected: 1,
	}
}

// Start sets stdin to raw non-blocking mode and begins reading in a
// goroutine. Call Stop() to restore stdin.
func (h *TerminalKnobs) Start() {
	h.fd = int(os.Stdin.Fd())

	oldState, err := term.MakeRaw(h.fd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "terminal_knobs: failed to set raw mode: %v\n", err)
		close(h.done)
		return
	}
	h.oldTermState = oldState

	if err := syscall.SetNonblock(h.fd, true); err != nil {
		fmt.Fprintf(os.Stderr, "terminal_knobs: failed to set nonblocking stdin: %v\n", err)
		_ = term.Restore(h.fd, h.oldTermState)
		h.oldTermState = nil
		close(h.done)
		return
	}
	h.nonblockSet = true

	fmt.Print("Terminal knobs: [1-5] select, [+/-] or arrows adjust, [Tab] next mode, [s]tart, [x] stop, [q]uit\r\n")

	go func() {
		defer close(h.done)
		buf := make([]byte, 1)

		for {
			select {
			case <-h.stopCh:
				return
			default:
			}

			n, err := syscall.Read(h.fd, buf)
			if n > 0 {
				h.handleByte(buf[0])
			}
			if err == syscall.EAGAIN || err == syscall.EWOULDBLOCK {
				time.Sleep(5 * time.Millisecond)
				continue
			}
			if err != nil {
				return
			}
			if n == 0 {
				time.Sleep(5 * time.Millisecond)
			}
		}
	}()
}

// Stop terminates the reading goroutine and restores stdin.
func (h *TerminalKnobs) Stop() {
	h.stopped.Do(func() {
		close(h.stopCh)
	})
	<-h.done
	if h.nonblockSet {
		_ = syscall.SetNonblock(h.fd, false)
		h.nonblockSet = false
	}
	if h.oldTermState != nil {
		_ = term.Restore(h.fd, h.oldTermState)
		h.oldTermState = nil
	}
}

func (h *TerminalKnobs) handleByte(b byte) {
	// Arrow keys arrive as ESC [ A / ESC [ B in raw mode.
	switch h.escState {
	case 1:
		if b == '[' {
			h.escState = 2
		} else {
			h.escState = 0
		}
		return
	case 2:
		switch b {
		case 'A':
			h.adjust(KNOB_STEP)
		case 'B':
			h.adjust(-KNOB_STEP)
		}
		h.escState = 0
		return
	}
	if b == 0x1B {
		h.escState = 1
		return
	}

	switch {
	case b >= '1' && b <= '5':
		h.selected = int(b - '0')
		h.printKnob()
	case b == '+' || b == '=':
		h.adjust(KNOB_STEP)
	case b == '-' || b == '_':
		h.adjust(-KNOB_STEP)
	case b == '\t':
		if h.controls.CycleMode != nil {
			if msg, err := h.controls.CycleMode(); err != nil {
				fmt.Printf("%v\r\n", err)
			} else {
				fmt.Printf("%s\r\n", msg)
			}
		}
	case b == 's':
		if h.controls.StartLoop != nil {
			if err := h.controls.StartLoop(); err != nil {
				fmt.Printf("%v\r\n", err)
			}
		}
	case b == 'x':
		if h.controls.StopLoop != nil {
			h.controls.StopLoop()
		}
	case b == 'q' || b == 0x03:
		if h.controls.Quit != nil {
			h.controls.Quit()
		}
	}
}

func (h *TerminalKnobs) adjust(delta float64) {
	if h.controls.Knob == nil || h.controls.SetKnob == nil {
		return
	}
	h.controls.SetKnob(h.selected, h.controls.Knob(h.selected)+delta)
	h.printKnob()
}

func (h *TerminalKnobs) printKnob() {
	if h.controls.Knob == nil {
		return
	}
	fmt.Printf("\rknob%d = %.2f   ", h.selected, h.controls.Knob(h.selected))
}
