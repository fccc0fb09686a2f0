//go:build !headless

// display_backend_ebiten.go - Ebiten display backend. Shows the rendered
// frames in a window and maps local keys onto the knob and mode controls:
// 1-5 select a knob, arrows adjust it, Tab cycles modes, Ctrl+Shift+V loads
// a mode script from the clipboard, F12 toggles the status bar.
package main

import (
	"fmt"
	"image/color"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"golang.design/x/clipboard"
	"golang.org/x/image/font/basicfont"
)

type EbitenDisplay struct {
	running      bool
	window       *ebiten.Image
	width        int
	height       int
	frameBuffer  []byte
	bufferMutex  sync.RWMutex
	frameCount   uint64
	vsyncChan    chan struct{}
	done         chan struct{}
	controls     *DisplayControls
	selectedKnob int

	clipboardOnce sync.Once
	clipboardOK   bool
	showStatusBar bool
}

func NewEbitenDisplay(controls *DisplayControls) (DisplayOutput, error) {
	return &EbitenDisplay{
		width:         SCREEN_WIDTH,
		height:        SCREEN_HEIGHT,
		frameBuffer:   make([]byte, SCREEN_WIDTH*SCREEN_HEIGHT*4),
		vsyncChan:     make(chan struct{}, 1),
		done:          make(chan struct{}),
		controls:      controls,
		selectedKnob:  1,
		showStatusBar: true,
	}, nil
}

func (d *EbitenDisplay) Start() error {
	if d.running {
		return nil
	}
	d.bufferMutex.Lock()
	d.done = make(chan struct{})
	d.bufferMutex.Unlock()
	d.running = true
	ebiten.SetWindowSize(d.width, d.height)
	ebiten.SetWindowTitle("Luma Engine")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetRunnableOnUnfocused(true)
	ebiten.SetVsyncEnabled(true)

	go func() {
		defer func() {
			d.running = false
			d.bufferMutex.RLock()
			done := d.done
			d.bufferMutex.RUnlock()
			select {
			case <-done:
			default:
				close(done)
			}
		}()
		if err := ebiten.RunGame(d); err != nil {
			fmt.Printf("Ebiten error: %v\n", err)
		}
	}()

	// Wait for first Draw call to ensure Ebiten is ready
	<-d.vsyncChan
	return nil
}

func (d *EbitenDisplay) Stop() error {
	d.running = false
	return nil
}

func (d *EbitenDisplay) Close() error {
	return d.Stop()
}

func (d *EbitenDisplay) IsStarted() bool {
	return d.running
}

func (d *EbitenDisplay) Done() <-chan struct{} {
	d.bufferMutex.RLock()
	done := d.done
	d.bufferMutex.RUnlock()
	return done
}

func (d *EbitenDisplay) UpdateFrame(pixels []byte) {
	d.bufferMutex.Lock()
	copy(d.frameBuffer, pixels)
	d.bufferMutex.Unlock()
}

func (d *EbitenDisplay) GetFrameCount() uint64 {
	return d.frameCount
}

func (d *EbitenDisplay) Update() error {
	if ebiten.IsWindowBeingClosed() {
		return ebiten.Termination
	}
	if !d.running {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF12) {
		d.bufferMutex.Lock()
		d.showStatusBar = !d.showStatusBar
		d.bufferMutex.Unlock()
	}
	d.handleKeyboardInput()
	return nil
}

func (d *EbitenDisplay) handleKeyboardInput() {
	if d.controls == nil {
		return
	}

	knobKeys := []ebiten.Key{ebiten.KeyDigit1, ebiten.KeyDigit2, ebiten.KeyDigit3, ebiten.KeyDigit4, ebiten.KeyDigit5}
	for i, key := range knobKeys {
		if inpututil.IsKeyJustPressed(key) {
			d.selectedKnob = i + 1
		}
	}

	if repeating(ebiten.KeyArrowUp) {
		d.adjustKnob(KNOB_STEP)
	}
	if repeating(ebiten.KeyArrowDown) {
		d.adjustKnob(-KNOB_STEP)
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyTab) && d.controls.CycleMode != nil {
		if msg, err := d.controls.CycleMode(); err != nil {
			fmt.Printf("Mode cycle failed: %v\n", err)
		} else {
			fmt.Println(msg)
		}
	}

	ctrl := ebiten.IsKeyPressed(ebiten.KeyControlLeft) || ebiten.IsKeyPressed(ebiten.KeyControlRight)
	shift := ebiten.IsKeyPressed(ebiten.KeyShiftLeft) || ebiten.IsKeyPressed(ebiten.KeyShiftRight)
	if ctrl && shift && inpututil.IsKeyJustPressed(ebiten.KeyV) {
		d.handleClipboardPaste()
	}
}

// repeating fires on the initial press and then at a steady rate while the
// key is held.
func repeating(key ebiten.Key) bool {
	dur := inpututil.KeyPressDuration(key)
	return dur == 1 || (dur >= 20 && dur%3 == 0)
}

func (d *EbitenDisplay) adjustKnob(delta float64) {
	if d.controls.Knob == nil || d.controls.SetKnob == nil {
		return
	}
	d.controls.SetKnob(d.selectedKnob, d.controls.Knob(d.selectedKnob)+delta)
}

func (d *EbitenDisplay) handleClipboardPaste() {
	if d.controls.PasteMode == nil {
		return
	}
	d.clipboardOnce.Do(func() {
		d.clipboardOK = clipboard.Init() == nil
	})
	if !d.clipboardOK {
		return
	}
	data := clipboard.Read(clipboard.FmtText)
	if len(data) == 0 {
		return
	}
	if msg, err := d.controls.PasteMode(string(data)); err != nil {
		fmt.Printf("Clipboard mode load failed: %v\n", err)
	} else {
		fmt.Println(msg)
	}
}

func (d *EbitenDisplay) Draw(screen *ebiten.Image) {
	if d.window == nil {
		d.window = ebiten.NewImage(d.width, d.height)
	}

	d.bufferMutex.RLock()
	d.window.WritePixels(d.frameBuffer)
	showStatusBar := d.showStatusBar
	d.bufferMutex.RUnlock()
	screen.DrawImage(d.window, nil)
	if showStatusBar {
		d.drawStatusBar(screen)
	}

	d.frameCount++
	select {
	case d.vsyncChan <- struct{}{}:
	default:
	}
}

func (d *EbitenDisplay) Layout(_, _ int) (int, int) {
	return d.width, d.height
}

func (d *EbitenDisplay) drawStatusBar(screen *ebiten.Image) {
	face := basicfont.Face7x13
	labelColor := color.RGBA{190, 190, 190, 255}
	valueColor := color.RGBA{0, 220, 90, 255}

	baseline := d.height - 6
	line := fmt.Sprintf("Knob %d", d.selectedKnob)
	if d.controls != nil && d.controls.Knob != nil {
		line = fmt.Sprintf("Knob %d: %.2f", d.selectedKnob, d.controls.Knob(d.selectedKnob))
	}
	text.Draw(screen, line, face, 8, baseline, valueColor)
	x := 8 + text.BoundString(face, line).Dx() + 12

	if d.controls != nil && d.controls.StatusLine != nil {
		text.Draw(screen, d.controls.StatusLine(), face, x, baseline, labelColor)
	}
}
